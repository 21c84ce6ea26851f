package identity_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/micro-nova/inventory-go/internal/identity"
)

func TestGetVersion_Fallback(t *testing.T) {
	dir := t.TempDir()
	got := identity.GetVersionFromDir(dir)
	if got != identity.DefaultVersion {
		t.Errorf("GetVersionFromDir(%q) = %q; want %q", dir, got, identity.DefaultVersion)
	}
	if got := identity.GetVersionFromDir(""); got != identity.DefaultVersion {
		t.Errorf("GetVersionFromDir(\"\") = %q; want %q", got, identity.DefaultVersion)
	}
}

func TestGetVersion_FromFile(t *testing.T) {
	dir := t.TempDir()
	want := "1.2.3"
	data, _ := json.Marshal(map[string]interface{}{"version": want})
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), data, 0644); err != nil {
		t.Fatal(err)
	}

	if got := identity.GetVersionFromDir(dir); got != want {
		t.Errorf("GetVersionFromDir(%q) = %q; want %q", dir, got, want)
	}
}

func TestGetVersion_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := identity.GetVersionFromDir(dir); got != identity.DefaultVersion {
		t.Errorf("GetVersionFromDir with invalid JSON = %q; want %q", got, identity.DefaultVersion)
	}
}

func TestGetHostname(t *testing.T) {
	if h := identity.GetHostname(); h == "" {
		t.Error("GetHostname() returned empty string")
	}
}

func TestUserAgent(t *testing.T) {
	info := identity.Info{Hostname: "kitchen", Version: "1.2.3"}
	if got := info.UserAgent("inventoryd"); got != "inventoryd/1.2.3 (kitchen)" {
		t.Errorf("UserAgent() = %q", got)
	}
}

func TestLoad(t *testing.T) {
	info := identity.Load(t.TempDir())
	if info.Hostname == "" || info.Version != identity.DefaultVersion {
		t.Errorf("Load() = %+v", info)
	}
}
