// Package config handles operator-tunable settings for vmselector.
//
// Settings are stored as JSON at ~/.config/vmselector/config.json (or the
// platform-equivalent path returned by os.UserConfigDir). The file is
// optional and operator-authored; the tool itself never writes it. Missing
// file or missing fields fall back to the defaults below.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	appDir   = "vmselector"
	fileName = "config.json"
)

// Default ceilings for sizing fields. Values above a ceiling are rejected
// as excessive rather than accepted, so a MB-for-GB typo fails loudly.
const (
	DefaultMaxRAMGB     = 1024
	DefaultMaxCPUCores  = 128
	DefaultMaxStorageGB = 10000
)

// DefaultBackendCommand is the build backend invoked to turn a
// configuration into a bootable VM runner.
const DefaultBackendCommand = "nix-vm-build"

// pathOverride, when non-empty, replaces the default config file path.
// Intended for testing. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override, reverting to the default. Intended for testing.
func ResetPath() { pathOverride = "" }

// Limits holds the sanity ceilings applied to sizing fields.
type Limits struct {
	MaxRAMGB     int `json:"max_ram_gb,omitempty"`
	MaxCPUCores  int `json:"max_cpu_cores,omitempty"`
	MaxStorageGB int `json:"max_storage_gb,omitempty"`
}

// Settings holds operator preferences that apply to every invocation.
type Settings struct {
	Limits Limits `json:"limits,omitempty"`

	// BackendCommand overrides the build backend executable.
	BackendCommand string `json:"backend_command,omitempty"`
}

// DefaultSettings returns the built-in settings used when no config file
// exists.
func DefaultSettings() *Settings {
	return &Settings{
		Limits: Limits{
			MaxRAMGB:     DefaultMaxRAMGB,
			MaxCPUCores:  DefaultMaxCPUCores,
			MaxStorageGB: DefaultMaxStorageGB,
		},
		BackendCommand: DefaultBackendCommand,
	}
}

// Path returns the absolute path to the config file.
// If SetPath has been called, that value is returned instead.
func Path() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the config file from disk and returns the parsed Settings
// merged over the defaults. If the file does not exist, the defaults are
// returned (not an error).
func Load() (*Settings, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return settings, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var file Settings
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	if file.Limits.MaxRAMGB > 0 {
		settings.Limits.MaxRAMGB = file.Limits.MaxRAMGB
	}
	if file.Limits.MaxCPUCores > 0 {
		settings.Limits.MaxCPUCores = file.Limits.MaxCPUCores
	}
	if file.Limits.MaxStorageGB > 0 {
		settings.Limits.MaxStorageGB = file.Limits.MaxStorageGB
	}
	if file.BackendCommand != "" {
		settings.BackendCommand = file.BackendCommand
	}

	return settings, nil
}
