package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the configuration file name looked up in the
	// current directory.
	DefaultConfigFile = "crawler-config.yml"

	// legacyConfigPath is where older checkouts keep the file.
	legacyConfigPath = "crawler/crawler-config.yml"

	// xdgConfigFile is the file name inside XDGConfigDir.
	xdgConfigFile = "config.yml"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadError reports a configuration file that exists but cannot be used.
type LoadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load configuration file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying read or parse error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadConfigFile loads the seed list from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound; unreadable or
// malformed files yield a *LoadError. Callers decide whether a missing
// file matters based on whether the path was given explicitly.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, &LoadError{Path: path, Err: err}
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if cf.URLs == nil {
		cf.URLs = []string{}
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. crawler-config.yml in the current directory
//  3. crawler/crawler-config.yml in the current directory
//  4. config.yml in the XDG config directory (~/.config/linkcrawl on Linux)
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		for _, name := range []string{DefaultConfigFile, legacyConfigPath} {
			candidate := filepath.Join(cwd, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), xdgConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}
