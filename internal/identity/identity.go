// Package identity reports who this inventory process is: hostname and
// software version, used for the User-Agent and the mDNS TXT records.
package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DefaultVersion is the fallback version string when metadata.json is not found.
const DefaultVersion = "0.1.0"

const fallbackHostname = "inventory"

// Info holds process identity information.
type Info struct {
	Hostname string `json:"hostname"`
	Version  string `json:"version"`
}

// Load collects the identity, reading the version from dir/metadata.json.
func Load(dir string) Info {
	return Info{
		Hostname: GetHostname(),
		Version:  GetVersionFromDir(dir),
	}
}

// UserAgent returns the User-Agent the backend client sends for program.
func (i Info) UserAgent(program string) string {
	return program + "/" + i.Version + " (" + i.Hostname + ")"
}

// GetHostname returns the system hostname.
func GetHostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return fallbackHostname
	}
	return h
}

// GetVersionFromDir reads the version from dir/metadata.json.
// Falls back to DefaultVersion if dir is empty or the file is missing or
// unreadable.
func GetVersionFromDir(dir string) string {
	if dir == "" {
		return DefaultVersion
	}

	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return DefaultVersion
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return DefaultVersion
	}

	if v, ok := meta["version"].(string); ok && v != "" {
		return v
	}
	return DefaultVersion
}
