package service

//go:generate mockgen -destination=mock_service.go -package=service deviceinventory/internal/service Prober,LoanService,LANDiscoverer,InventoryStore,ActiveStore

import (
	"context"

	"deviceinventory/internal/domain"
)

// Prober asks a device for the details only the device itself knows.
type Prober interface {
	Probe(ctx context.Context, target domain.ProbeTarget) (*domain.ProbeResult, error)
}

// LoanService reads and manages loans of remotely hosted devices.
type LoanService interface {
	Loans(ctx context.Context) ([]domain.Loan, error)
	Catalog(ctx context.Context) ([]domain.CatalogDevice, error)
	CancelLoan(ctx context.Context, loanID uint32) error
	// CreateLoan borrows a catalog device running the given firmware and returns the loan id
	CreateLoan(ctx context.Context, loanableID uint16, firmware string) (uint32, error)
}

// LANDiscoverer finds devices on the local network.
type LANDiscoverer interface {
	Name() string
	Discover(ctx context.Context) ([]domain.DiscoveredDevice, error)
}

// InventoryStore holds the user's named devices.
type InventoryStore interface {
	ReadDevices(ctx context.Context) (map[string]domain.InventoryDevice, error)
	WriteDevices(ctx context.Context, devices map[string]domain.InventoryDevice) error
}

// ActiveSource reports the device currently selected for other tools.
type ActiveSource interface {
	ReadActive() (*domain.ActiveDevice, error)
}

// ActiveStore persists the active device.
type ActiveStore interface {
	ActiveSource
	FromEnv() (*domain.ActiveDevice, error)
	FromFile() (*domain.ActiveDevice, error)
	Write(d domain.ActiveDevice) error
	Clear() error
}
