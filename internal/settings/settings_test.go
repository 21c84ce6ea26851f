package settings_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/micro-nova/inventory-go/internal/settings"
)

func TestDefaults(t *testing.T) {
	s, err := settings.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Backend.Timeout != 10*time.Second {
		t.Errorf("Backend.Timeout = %v, want 10s", s.Backend.Timeout)
	}
	if s.Storage.Driver != "json" {
		t.Errorf("Storage.Driver = %q, want json", s.Storage.Driver)
	}
	if s.HTTP.Addr != ":8090" || s.Mock.Addr != ":8080" {
		t.Errorf("addrs = %q, %q", s.HTTP.Addr, s.Mock.Addr)
	}
	if !s.Backup.Enabled {
		t.Error("Backup.Enabled = false, want true")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("INVENTORY_BACKEND_URL", "http://inventory.local:8080/api")
	t.Setenv("INVENTORY_BACKEND_TIMEOUT", "3s")
	t.Setenv("INVENTORY_BACKEND_RATE_LIMIT", "2.5")
	t.Setenv("INVENTORY_STORAGE_DRIVER", "SQLite")
	t.Setenv("INVENTORY_STORAGE_DIR", "/tmp/inv")
	t.Setenv("INVENTORY_LOG_DEBUG", "true")

	s, err := settings.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Backend.URL != "http://inventory.local:8080/api" {
		t.Errorf("Backend.URL = %q", s.Backend.URL)
	}
	if s.Backend.Timeout != 3*time.Second {
		t.Errorf("Backend.Timeout = %v", s.Backend.Timeout)
	}
	if s.Backend.RateLimit != 2.5 {
		t.Errorf("Backend.RateLimit = %v", s.Backend.RateLimit)
	}
	if s.Storage.Driver != "sqlite" || s.Storage.Dir != "/tmp/inv" {
		t.Errorf("Storage = %+v", s.Storage)
	}
	if !s.Log.Debug {
		t.Error("Log.Debug = false")
	}
	if got := s.BackupDir(); got != filepath.Join("/tmp/inv", "backups") {
		t.Errorf("BackupDir() = %q", got)
	}
	if cfg := s.StorageConfig(); cfg.Driver != "sqlite" || cfg.Dir != "/tmp/inv" {
		t.Errorf("StorageConfig() = %+v", cfg)
	}
}

func TestEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "INVENTORY_STORAGE_REDIS_PREFIX=kitchen\nINVENTORY_BACKEND_API_KEY=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	// Variables already set win over the file.
	t.Setenv("INVENTORY_BACKEND_API_KEY", "from-env")
	t.Setenv("INVENTORY_STORAGE_REDIS_PREFIX", "")
	os.Unsetenv("INVENTORY_STORAGE_REDIS_PREFIX")

	s, err := settings.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Backend.APIKey != "from-env" {
		t.Errorf("Backend.APIKey = %q, want from-env", s.Backend.APIKey)
	}
	if s.Storage.RedisPrefix != "kitchen" {
		t.Errorf("Storage.RedisPrefix = %q, want kitchen", s.Storage.RedisPrefix)
	}
}

func TestMissingEnvFile(t *testing.T) {
	if _, err := settings.Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("Load() with missing env file error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() *settings.Settings {
		s, err := settings.Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		return s
	}

	tests := []struct {
		name   string
		mutate func(*settings.Settings)
		errSub string
	}{
		{"bad driver", func(s *settings.Settings) { s.Storage.Driver = "mongo" }, "unsupported storage driver"},
		{"redis without addr", func(s *settings.Settings) { s.Storage.Driver = "redis" }, "redis_addr"},
		{"json without dir", func(s *settings.Settings) { s.Storage.Dir = "" }, "storage.dir"},
		{"negative timeout", func(s *settings.Settings) { s.Backend.Timeout = -time.Second }, "timeout"},
		{"negative rate", func(s *settings.Settings) { s.Backend.RateLimit = -1 }, "rate_limit"},
		{"bad url", func(s *settings.Settings) { s.Backend.URL = "ftp://x" }, "http or https"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(s)
			err := s.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.errSub)
			}
		})
	}

	s := base()
	s.Storage.Driver = "memory"
	s.Storage.Dir = ""
	if err := s.Validate(); err != nil {
		t.Errorf("memory driver without dir: Validate() error = %v", err)
	}
}
