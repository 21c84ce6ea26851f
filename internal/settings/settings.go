// Package settings loads the configuration of the inventory binaries from
// defaults, an optional .env file and INVENTORY_* environment variables.
// Command-line flags are applied on top by each command.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/micro-nova/inventory-go/internal/storage"
)

// EnvPrefix is the prefix of every environment variable read.
const EnvPrefix = "INVENTORY"

// Settings is the full configuration.
type Settings struct {
	Backend BackendSettings
	Storage StorageSettings
	HTTP    HTTPSettings
	Log     LogSettings
	Mock    MockSettings
	Backup  BackupSettings
}

// BackendSettings configures the REST client.
type BackendSettings struct {
	URL             string // "" means discover over mDNS
	APIKey          string
	Timeout         time.Duration // 0 disables the per-request timeout
	RateLimit       float64       // requests per second, 0 disables
	RateBurst       int
	DiscoverTimeout time.Duration
}

// StorageSettings selects the persistence driver.
type StorageSettings struct {
	Driver        string
	Dir           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// HTTPSettings configures the local bridge.
type HTTPSettings struct {
	Addr string
}

// LogSettings configures logging.
type LogSettings struct {
	Debug bool
}

// MockSettings configures cmd/inventory-mock.
type MockSettings struct {
	Addr      string
	Advertise bool
}

// BackupSettings configures snapshot backups.
type BackupSettings struct {
	Enabled bool
	Dir     string // "" means <storage dir>/backups
}

// StorageConfig converts the storage settings for storage.Open.
func (s *Settings) StorageConfig() storage.Config {
	return storage.Config{
		Driver:        s.Storage.Driver,
		Dir:           s.Storage.Dir,
		RedisAddr:     s.Storage.RedisAddr,
		RedisPassword: s.Storage.RedisPassword,
		RedisDB:       s.Storage.RedisDB,
		RedisPrefix:   s.Storage.RedisPrefix,
	}
}

// BackupDir returns the directory backups are written to.
func (s *Settings) BackupDir() string {
	if s.Backup.Dir != "" {
		return s.Backup.Dir
	}
	return filepath.Join(s.Storage.Dir, "backups")
}

// DefaultStateDir returns ~/.config/inventory, or a relative directory when
// the home directory is unknown.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".inventory"
	}
	return filepath.Join(home, ".config", "inventory")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("backend.rate_limit", 0.0)
	v.SetDefault("backend.rate_burst", 1)
	v.SetDefault("backend.discover_timeout", 5*time.Second)

	v.SetDefault("storage.driver", storage.DriverJSON)
	v.SetDefault("storage.dir", DefaultStateDir())
	v.SetDefault("storage.redis_addr", "")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", "")

	v.SetDefault("http.addr", ":8090")
	v.SetDefault("log.debug", false)

	v.SetDefault("mock.addr", ":8080")
	v.SetDefault("mock.advertise", true)

	v.SetDefault("backup.enabled", true)
	v.SetDefault("backup.dir", "")
}

// Load reads envFile (if it exists; "" skips it) into the process
// environment without overriding variables already set, then resolves every
// key against INVENTORY_* variables and the defaults.
func Load(envFile string) (*Settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("settings: load %s: %w", envFile, err)
			}
			slog.Debug("settings: no env file, using environment", "file", envFile)
		} else {
			slog.Info("settings: env file loaded", "file", envFile)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	s := &Settings{
		Backend: BackendSettings{
			URL:             strings.TrimSpace(v.GetString("backend.url")),
			APIKey:          v.GetString("backend.api_key"),
			Timeout:         v.GetDuration("backend.timeout"),
			RateLimit:       v.GetFloat64("backend.rate_limit"),
			RateBurst:       v.GetInt("backend.rate_burst"),
			DiscoverTimeout: v.GetDuration("backend.discover_timeout"),
		},
		Storage: StorageSettings{
			Driver:        strings.ToLower(v.GetString("storage.driver")),
			Dir:           v.GetString("storage.dir"),
			RedisAddr:     v.GetString("storage.redis_addr"),
			RedisPassword: v.GetString("storage.redis_password"),
			RedisDB:       v.GetInt("storage.redis_db"),
			RedisPrefix:   v.GetString("storage.redis_prefix"),
		},
		HTTP: HTTPSettings{Addr: v.GetString("http.addr")},
		Log:  LogSettings{Debug: v.GetBool("log.debug")},
		Mock: MockSettings{
			Addr:      v.GetString("mock.addr"),
			Advertise: v.GetBool("mock.advertise"),
		},
		Backup: BackupSettings{
			Enabled: v.GetBool("backup.enabled"),
			Dir:     v.GetString("backup.dir"),
		},
	}
	return s, nil
}

// Validate checks the settings for values no component can work with.
func (s *Settings) Validate() error {
	switch s.Storage.Driver {
	case storage.DriverJSON, storage.DriverSQLite, storage.DriverRedis, storage.DriverMemory:
	default:
		return fmt.Errorf("settings: unsupported storage driver %q", s.Storage.Driver)
	}
	if s.Storage.Driver == storage.DriverRedis && s.Storage.RedisAddr == "" {
		return fmt.Errorf("settings: storage.redis_addr is required for the redis driver")
	}
	if (s.Storage.Driver == storage.DriverJSON || s.Storage.Driver == storage.DriverSQLite) && s.Storage.Dir == "" {
		return fmt.Errorf("settings: storage.dir is required for the %s driver", s.Storage.Driver)
	}
	if s.Backend.Timeout < 0 {
		return fmt.Errorf("settings: backend.timeout must not be negative")
	}
	if s.Backend.RateLimit < 0 {
		return fmt.Errorf("settings: backend.rate_limit must not be negative")
	}
	if s.Backend.URL != "" && !strings.HasPrefix(s.Backend.URL, "http://") && !strings.HasPrefix(s.Backend.URL, "https://") {
		return fmt.Errorf("settings: backend.url %q must be http or https", s.Backend.URL)
	}
	return nil
}
