package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "DEVICE_INVENTORY_CONFIG"
	// ConfigFileName is the default config file name
	ConfigFileName = "device-inventory.yaml"
	// ConfigDirName is the config and data directory name under XDG
	ConfigDirName = "device-inventory"

	databaseFileName     = "inventory.db"
	activeDeviceFileName = "active.json"
)

// FindConfigPath searches for config file in priority order:
// 1. $DEVICE_INVENTORY_CONFIG (explicit path)
// 2. ./device-inventory.yaml (working directory)
// 3. $XDG_CONFIG_HOME/device-inventory/config.yaml
// 4. ~/.config/device-inventory/config.yaml
// 5. /etc/device-inventory/config.yaml
//
// Returns empty string if no config file found
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	if fileExists(ConfigFileName) {
		if abs, err := filepath.Abs(ConfigFileName); err == nil {
			return abs
		}
		return ConfigFileName
	}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		path := filepath.Join(xdgHome, ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	if home := os.Getenv("HOME"); home != "" {
		path := filepath.Join(home, ".config", ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	systemPath := filepath.Join("/etc", ConfigDirName, "config.yaml")
	if fileExists(systemPath) {
		return systemPath
	}

	return ""
}

// DefaultDataDir returns where the alias database lives unless configured otherwise:
// $XDG_DATA_HOME/device-inventory, else ~/.local/share/device-inventory, else ./.device-inventory
func DefaultDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, ConfigDirName)
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "share", ConfigDirName)
	}
	return "." + ConfigDirName
}

// DatabasePath returns the alias database file inside the data directory
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, databaseFileName)
}

// ActiveDevicePath returns the active device file inside the data directory
func (c *Config) ActiveDevicePath() string {
	return filepath.Join(c.DataDir, activeDeviceFileName)
}

// EnsureDataDir creates the data directory if it doesn't exist
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0700)
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	dir := filepath.Dir(configPath)
	return os.MkdirAll(dir, 0755)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
