package codec

import (
	"fmt"
	"io"

	"deviceinventory/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML device listings and inventory snapshots
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlListing is the document written for device listings
type yamlListing struct {
	Devices []Row `yaml:"devices"`
}

// Parse reads an inventory snapshot keyed by alias
func (c *YAMLCodec) Parse(r io.Reader) (map[string]domain.InventoryDevice, error) {
	var devices map[string]domain.InventoryDevice
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&devices); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return withAliases(devices), nil
}

// Export writes the devices as a YAML document
func (c *YAMLCodec) Export(devices []*domain.Device, w io.Writer) error {
	return c.encode(&yamlListing{Devices: Rows(devices)}, w)
}

// ExportInventory writes an inventory snapshot keyed by alias
func (c *YAMLCodec) ExportInventory(devices map[string]domain.InventoryDevice, w io.Writer) error {
	return c.encode(devices, w)
}

func (c *YAMLCodec) encode(v any, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}
