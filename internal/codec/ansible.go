package codec

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"deviceinventory/internal/domain"

	"gopkg.in/yaml.v3"
)

// AnsibleCodec handles Ansible inventory import/export.
// Devices are grouped by architecture so playbooks can pick the matching build.
type AnsibleCodec struct{}

// NewAnsibleCodec creates a new Ansible codec
func NewAnsibleCodec() *AnsibleCodec {
	return &AnsibleCodec{}
}

// Format returns the codec format identifier
func (c *AnsibleCodec) Format() string {
	return "ansible-inventory"
}

// ansibleInventory represents the Ansible inventory structure
type ansibleInventory struct {
	All ansibleGroup `yaml:"all"`
}

type ansibleGroup struct {
	Children map[string]ansibleGroupDef `yaml:"children,omitempty"`
	Hosts    map[string]ansibleHost     `yaml:"hosts,omitempty"`
}

type ansibleGroupDef struct {
	Hosts map[string]ansibleHost `yaml:"hosts,omitempty"`
}

type ansibleHost struct {
	AnsibleHost     string `yaml:"ansible_host,omitempty"`
	AnsiblePort     uint16 `yaml:"ansible_port,omitempty"`
	AnsibleUser     string `yaml:"ansible_user,omitempty"`
	AnsiblePassword string `yaml:"ansible_password,omitempty"`
	HTTPPort        uint16 `yaml:"http_port,omitempty"`
	HTTPSPort       uint16 `yaml:"https_port,omitempty"`
	Model           string `yaml:"model,omitempty"`
	Firmware        string `yaml:"firmware,omitempty"`
	Serial          string `yaml:"serial,omitempty"`
}

var unsafeHostChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Parse imports inventory entries from an Ansible inventory. Hosts in several groups are
// read once.
func (c *AnsibleCodec) Parse(r io.Reader) (map[string]domain.InventoryDevice, error) {
	var inv ansibleInventory
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&inv); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse Ansible inventory: %w", err)
	}

	devices := make(map[string]domain.InventoryDevice)
	add := func(alias string, h ansibleHost) {
		if _, seen := devices[alias]; seen {
			return
		}
		host := h.AnsibleHost
		if host == "" {
			host = alias
		}
		d := domain.InventoryDevice{
			Alias: alias,
			Host:  host,
			Credentials: domain.Credentials{
				Username: h.AnsibleUser,
				Password: domain.Password(h.AnsiblePassword),
			},
			Ports: domain.Ports{HTTP: h.HTTPPort, HTTPS: h.HTTPSPort},
			Model: h.Model,
		}
		if h.AnsiblePort != 22 {
			d.SSH = h.AnsiblePort
		}
		devices[alias] = d
	}

	for _, group := range inv.All.Children {
		for alias, h := range group.Hosts {
			add(alias, h)
		}
	}
	for alias, h := range inv.All.Hosts {
		add(alias, h)
	}
	return devices, nil
}

// Export writes every contactable device. Devices nobody holds credentials for are kept so
// playbooks can still reach their unauthenticated endpoints.
func (c *AnsibleCodec) Export(devices []*domain.Device, w io.Writer) error {
	inv := ansibleInventory{
		All: ansibleGroup{
			Children: make(map[string]ansibleGroupDef),
		},
	}

	for _, d := range devices {
		httpPort, ok := d.HTTPPort()
		if !ok {
			continue
		}
		row := NewRow(d)

		host := ansibleHost{
			AnsibleHost: row.Host,
			AnsiblePort: row.SSHPort,
			Model:       row.Model,
			Firmware:    row.Firmware,
			Serial:      row.Serial,
		}
		if httpPort != 80 {
			host.HTTPPort = httpPort
		}
		if row.HTTPSPort != 443 {
			host.HTTPSPort = row.HTTPSPort
		}
		if creds, ok := d.Credentials(); ok {
			host.AnsibleUser = creds.Username
			host.AnsiblePassword = creds.Password.Reveal()
		}

		groupName := row.Architecture
		if groupName == "" {
			groupName = "unknown_architecture"
		}
		group, ok := inv.All.Children[groupName]
		if !ok {
			group = ansibleGroupDef{Hosts: make(map[string]ansibleHost)}
		}
		group.Hosts[hostName(row)] = host
		inv.All.Children[groupName] = group
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&inv); err != nil {
		return fmt.Errorf("failed to encode Ansible inventory: %w", err)
	}
	return nil
}

// hostName returns the alias when there is one, otherwise a name derived from the fingerprint
func hostName(r Row) string {
	if r.Alias != "" {
		return r.Alias
	}
	name := unsafeHostChars.ReplaceAllString(r.Fingerprint, "_")
	return strings.Trim(name, "_")
}
