package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version   int             `yaml:"version"`
	DataDir   string          `yaml:"data_dir,omitempty"`
	Offline   bool            `yaml:"offline"`
	Log       LogConfig       `yaml:"log"`
	Probe     ProbeConfig     `yaml:"probe"`
	Loan      LoanConfig      `yaml:"loan"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"` // stderr level; the log file always gets everything
}

// ProbeConfig holds device enrichment settings
type ProbeConfig struct {
	Timeout     Duration `yaml:"timeout"`
	Concurrency int      `yaml:"concurrency,omitempty"` // 0 = one probe per device at once
}

// LoanConfig holds loan service settings
type LoanConfig struct {
	BaseURL string   `yaml:"base_url"`
	Gateway string   `yaml:"gateway"`
	Timeout Duration `yaml:"timeout"`
}

// DiscoveryMethod selects how LAN devices are found
type DiscoveryMethod string

const (
	DiscoveryMDNS DiscoveryMethod = "mdns"
	DiscoveryNmap DiscoveryMethod = "nmap"
)

// DiscoveryConfig holds LAN discovery settings
type DiscoveryConfig struct {
	Method    DiscoveryMethod `yaml:"method"`
	Services  []string        `yaml:"services,omitempty"`  // mDNS service types
	Timeout   Duration        `yaml:"timeout"`
	Interface string          `yaml:"interface,omitempty"` // mDNS multicast interface
	Targets   []string        `yaml:"targets,omitempty"`   // nmap targets (CIDR or host)
	// Ports makes nmap probe these ports instead of a ping sweep, e.g. "80,443"
	Ports             string `yaml:"ports,omitempty"`
	SkipHostDiscovery bool   `yaml:"skip_host_discovery,omitempty"` // nmap -Pn
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
