package repository

import (
	"context"

	"deviceinventory/internal/domain"
)

// Repository defines the interface for alias database access
type Repository interface {
	// ReadDevices returns every entry keyed by alias
	ReadDevices(ctx context.Context) (map[string]domain.InventoryDevice, error)
	// WriteDevices replaces all entries with the given snapshot
	WriteDevices(ctx context.Context, devices map[string]domain.InventoryDevice) error

	// ReadCookie returns the stored loan service session, if any
	ReadCookie(ctx context.Context) (string, bool, error)
	// WriteCookie stores the loan service session
	WriteCookie(ctx context.Context, cookie string) error

	// Close releases resources
	Close() error
}
