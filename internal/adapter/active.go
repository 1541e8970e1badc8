package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"deviceinventory/internal/domain"
)

// Environment variables describing the active device
const (
	EnvDeviceHost       = "AXIS_DEVICE_IP"
	EnvDeviceUser       = "AXIS_DEVICE_USER"
	EnvDevicePass       = "AXIS_DEVICE_PASS"
	EnvDeviceHTTPPort   = "AXIS_DEVICE_HTTP_PORT"
	EnvDeviceHTTPSPort  = "AXIS_DEVICE_HTTPS_PORT"
	EnvDeviceSSHPort    = "AXIS_DEVICE_SSH_PORT"
	EnvDeviceSelfSigned = "AXIS_DEVICE_HTTPS_SELF_SIGNED"
)

var activeEnvKeys = []string{
	EnvDeviceHost, EnvDeviceUser, EnvDevicePass,
	EnvDeviceHTTPPort, EnvDeviceHTTPSPort, EnvDeviceSSHPort,
	EnvDeviceSelfSigned,
}

// ActiveStore reads and writes the device activated on this machine.
// The environment takes precedence over the file.
type ActiveStore struct {
	path   string
	getenv func(string) string
}

// NewActiveStore creates a store backed by the file at path and the process environment
func NewActiveStore(path string) *ActiveStore {
	return &ActiveStore{path: path, getenv: os.Getenv}
}

// ReadActive returns the active device, or nil if none is activated
func (s *ActiveStore) ReadActive() (*domain.ActiveDevice, error) {
	d, err := s.FromEnv()
	if err != nil || d != nil {
		return d, err
	}
	return s.FromFile()
}

// FromEnv returns the device described by the environment, or nil if the host is unset
func (s *ActiveStore) FromEnv() (*domain.ActiveDevice, error) {
	host := s.getenv(EnvDeviceHost)
	if host == "" {
		return nil, nil
	}
	d := &domain.ActiveDevice{
		Host: host,
		Credentials: domain.Credentials{
			Username: s.getenv(EnvDeviceUser),
			Password: domain.Password(s.getenv(EnvDevicePass)),
		},
	}
	for key, port := range map[string]*uint16{
		EnvDeviceHTTPPort:  &d.HTTP,
		EnvDeviceHTTPSPort: &d.HTTPS,
		EnvDeviceSSHPort:   &d.SSH,
	} {
		v := s.getenv(key)
		if v == "" {
			continue
		}
		p, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%s=%q: not a port number", key, v)
		}
		*port = uint16(p)
	}
	return d, nil
}

// FromFile returns the device stored in the file, or nil if there is none
func (s *ActiveStore) FromFile() (*domain.ActiveDevice, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read active device: %w", err)
	}
	var d domain.ActiveDevice
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse active device %s: %w", s.path, err)
	}
	return &d, nil
}

// Write stores the device in the file
func (s *ActiveStore) Write(d domain.ActiveDevice) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal active device: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write active device: %w", err)
	}
	return nil
}

// Clear removes the file; a missing file is not an error
func (s *ActiveStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove active device: %w", err)
	}
	return nil
}

// Environ returns KEY=VALUE pairs describing the device
func Environ(d domain.ActiveDevice) []string {
	env := []string{
		EnvDeviceHost + "=" + d.Host,
		EnvDeviceUser + "=" + d.Username,
		EnvDevicePass + "=" + d.Password.Reveal(),
	}
	for _, p := range []struct {
		key  string
		port uint16
	}{
		{EnvDeviceHTTPPort, d.HTTP},
		{EnvDeviceHTTPSPort, d.HTTPS},
		{EnvDeviceSSHPort, d.SSH},
	} {
		if p.port != 0 {
			env = append(env, p.key+"="+strconv.FormatUint(uint64(p.port), 10))
		}
	}
	return append(env, EnvDeviceSelfSigned+"=1")
}

// ExportLines returns shell statements that activate the device in the current shell
func ExportLines(d domain.ActiveDevice) []string {
	env := Environ(d)
	lines := make([]string, len(env))
	for i, kv := range env {
		lines[i] = "export " + kv
	}
	return lines
}

// UnsetLines returns shell statements that deactivate any device in the current shell
func UnsetLines() []string {
	lines := make([]string, len(activeEnvKeys))
	for i, key := range activeEnvKeys {
		lines[i] = "unset " + key
	}
	return lines
}
