package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"deviceinventory/internal/domain"
)

// JSONCodec handles JSON device listings and inventory snapshots
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse reads an inventory snapshot keyed by alias
func (c *JSONCodec) Parse(r io.Reader) (map[string]domain.InventoryDevice, error) {
	var devices map[string]domain.InventoryDevice
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&devices); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return withAliases(devices), nil
}

// Export writes the devices as a JSON array
func (c *JSONCodec) Export(devices []*domain.Device, w io.Writer) error {
	return c.encode(Rows(devices), w)
}

// ExportInventory writes an inventory snapshot keyed by alias
func (c *JSONCodec) ExportInventory(devices map[string]domain.InventoryDevice, w io.Writer) error {
	return c.encode(devices, w)
}

func (c *JSONCodec) encode(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// withAliases copies each key into its entry
func withAliases(devices map[string]domain.InventoryDevice) map[string]domain.InventoryDevice {
	if devices == nil {
		return map[string]domain.InventoryDevice{}
	}
	for alias, d := range devices {
		d.Alias = alias
		devices[alias] = d
	}
	return devices
}
