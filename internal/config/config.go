// Package config provides configuration management for device-inventory.
//
// The config file holds settings; the alias database and the active device live in the
// data directory, which the config file may point elsewhere.
//
// Config file locations (priority order):
//  1. $DEVICE_INVENTORY_CONFIG
//  2. ./device-inventory.yaml
//  3. $XDG_CONFIG_HOME/device-inventory/config.yaml
//  4. ~/.config/device-inventory/config.yaml
//  5. /etc/device-inventory/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"deviceinventory/internal/domain"
)

const (
	// DefaultLoanBaseURL is the loan service API root
	DefaultLoanBaseURL = "https://www.axis.com/partner_pages/adp_virtual_loan_tool/api"
	// DefaultLogLevel is the stderr log level
	DefaultLogLevel = "warn"
)

// DefaultServices are the mDNS service types Axis devices announce
var DefaultServices = []string{
	"_axis-video._tcp.local",
	"_axis-bwsc._tcp.local",
	"_axis-nvr._tcp.local",
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Probe.Timeout == 0 {
		c.Probe.Timeout = Duration(5 * time.Second)
	}
	if c.Loan.BaseURL == "" {
		c.Loan.BaseURL = DefaultLoanBaseURL
	}
	if c.Loan.Gateway == "" {
		c.Loan.Gateway = domain.DefaultGateway
	}
	if c.Loan.Timeout == 0 {
		c.Loan.Timeout = Duration(30 * time.Second)
	}
	if c.Discovery.Method == "" {
		c.Discovery.Method = DiscoveryMDNS
	}
	if len(c.Discovery.Services) == 0 {
		c.Discovery.Services = append([]string(nil), DefaultServices...)
	}
	if c.Discovery.Timeout == 0 {
		c.Discovery.Timeout = Duration(2 * time.Second)
		if c.Discovery.Method == DiscoveryNmap {
			c.Discovery.Timeout = Duration(2 * time.Minute)
		}
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	switch c.Discovery.Method {
	case DiscoveryMDNS:
	case DiscoveryNmap:
		if len(c.Discovery.Targets) == 0 {
			return fmt.Errorf("discovery method %s needs at least one target", c.Discovery.Method)
		}
	default:
		return fmt.Errorf("unknown discovery method %q", c.Discovery.Method)
	}
	if c.Probe.Concurrency < 0 {
		return fmt.Errorf("probe concurrency must not be negative, got %d", c.Probe.Concurrency)
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Data: %s, Offline: %t, Log level: %s\n", c.DataDir, c.Offline, c.Log.Level)
	summary += fmt.Sprintf("Probe timeout: %s, Loan gateway: %s\n", c.Probe.Timeout.Duration(), c.Loan.Gateway)
	summary += fmt.Sprintf("Discovery: %s (%s)", c.Discovery.Method, c.Discovery.Timeout.Duration())
	return summary
}
