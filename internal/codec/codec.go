package codec

import (
	"fmt"
	"io"

	"deviceinventory/internal/domain"
)

// Importer reads inventory entries from a serialized snapshot
type Importer interface {
	Parse(r io.Reader) (map[string]domain.InventoryDevice, error)
	Format() string
}

// Exporter renders fused devices
type Exporter interface {
	Export(devices []*domain.Device, w io.Writer) error
	Format() string
}

// Unknown is shown in place of attributes no source could supply
const Unknown = "---"

// Row is the flat, serializable view of a device. Empty fields are unknown.
type Row struct {
	Priority     uint8    `json:"priority" yaml:"priority"`
	Status       string   `json:"status,omitempty" yaml:"status,omitempty"`
	Alias        string   `json:"alias,omitempty" yaml:"alias,omitempty"`
	Serial       string   `json:"serial,omitempty" yaml:"serial,omitempty"`
	Model        string   `json:"model,omitempty" yaml:"model,omitempty"`
	Architecture string   `json:"architecture,omitempty" yaml:"architecture,omitempty"`
	Firmware     string   `json:"firmware,omitempty" yaml:"firmware,omitempty"`
	Host         string   `json:"host" yaml:"host"`
	HTTPPort     uint16   `json:"http_port,omitempty" yaml:"http_port,omitempty"`
	HTTPSPort    uint16   `json:"https_port,omitempty" yaml:"https_port,omitempty"`
	SSHPort      uint16   `json:"ssh_port,omitempty" yaml:"ssh_port,omitempty"`
	Fingerprint  string   `json:"fingerprint" yaml:"fingerprint"`
	Sources      []string `json:"sources" yaml:"sources"`
}

// NewRow flattens a device
func NewRow(d *domain.Device) Row {
	r := Row{
		Priority:    d.Priority(),
		Host:        d.Host(),
		Fingerprint: d.Fingerprint(),
	}
	if s, ok := d.Status(); ok {
		r.Status = s.String()
	}
	r.Alias, _ = d.Alias()
	r.Serial, _ = d.Serial()
	r.Model, _ = d.Model()
	if a, ok := d.Architecture(); ok {
		r.Architecture = string(a)
	}
	if v, ok := d.Firmware(); ok {
		r.Firmware = v.String()
	}
	r.HTTPPort, _ = d.HTTPPort()
	r.HTTPSPort, _ = d.HTTPSPort()
	r.SSHPort, _ = d.SSHPort()
	for _, k := range d.Sources() {
		r.Sources = append(r.Sources, k.String())
	}
	return r
}

// Rows flattens every device, keeping their order
func Rows(devices []*domain.Device) []Row {
	rows := make([]Row, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, NewRow(d))
	}
	return rows
}

// ExporterFor returns the exporter for a format name
func ExporterFor(format string, colored bool) (Exporter, error) {
	switch format {
	case "", "table":
		return NewTableCodec(colored), nil
	case "json":
		return NewJSONCodec(), nil
	case "yaml":
		return NewYAMLCodec(), nil
	case "ansible-inventory", "ansible":
		return NewAnsibleCodec(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected table, json, yaml or ansible-inventory)", format)
	}
}

// ImporterFor returns the inventory importer for a format name
func ImporterFor(format string) (Importer, error) {
	switch format {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml":
		return NewYAMLCodec(), nil
	case "ansible-inventory", "ansible":
		return NewAnsibleCodec(), nil
	default:
		return nil, fmt.Errorf("unknown inventory format %q (expected json, yaml or ansible-inventory)", format)
	}
}
