package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"

	"deviceinventory/internal/domain"
)

var (
	// ErrAliasExists is returned when adding an alias that is already taken
	ErrAliasExists = errors.New("alias already exists")
	// ErrNoCredentials is returned when activating a device nobody has credentials for
	ErrNoCredentials = errors.New("device has no known credentials")
	// ErrNotLoaned is returned when returning a device that is not on loan
	ErrNotLoaned = errors.New("device is not on loan")
	// ErrOffline is returned by operations that need the loan service when none is configured
	ErrOffline = errors.New("loan service is not available offline")
	// ErrNotLoanable is returned when ensuring a catalog device that is not free to borrow
	ErrNotLoanable = errors.New("device cannot be borrowed")
)

// Ensurable accepts the devices Acquire can make usable: the active device, inventory entries,
// loans and connected catalog devices.
func Ensurable(d *domain.Device) bool {
	if d.Has(domain.SourceActive) || d.Has(domain.SourceInventory) || d.Has(domain.SourceLoan) {
		return true
	}
	c, ok := d.Catalog()
	return ok && c.Status == domain.StatusConnected
}

// InventoryService manages the alias database and the active device
type InventoryService struct {
	store  InventoryStore
	active ActiveStore
	loans  LoanService
	logger *logrus.Logger
}

// NewInventoryService creates an inventory service. loans may be nil when offline.
func NewInventoryService(store InventoryStore, active ActiveStore, loans LoanService, logger *logrus.Logger) *InventoryService {
	return &InventoryService{
		store:  store,
		active: active,
		loans:  loans,
		logger: logger,
	}
}

// Snapshot returns every inventory entry keyed by alias
func (s *InventoryService) Snapshot(ctx context.Context) (map[string]domain.InventoryDevice, error) {
	return s.store.ReadDevices(ctx)
}

// Restore replaces the inventory with the given entries
func (s *InventoryService) Restore(ctx context.Context, devices map[string]domain.InventoryDevice) error {
	for alias, d := range devices {
		if err := validateEntry(alias, d); err != nil {
			return err
		}
	}
	return s.store.WriteDevices(ctx, devices)
}

// Add stores a new entry. An existing alias is only replaced when force is set.
func (s *InventoryService) Add(ctx context.Context, alias string, d domain.InventoryDevice, force bool) error {
	if err := validateEntry(alias, d); err != nil {
		return err
	}
	devices, err := s.store.ReadDevices(ctx)
	if err != nil {
		return err
	}
	if _, ok := devices[alias]; ok && !force {
		return fmt.Errorf("%w: %s", ErrAliasExists, alias)
	}
	d.Alias = alias
	devices[alias] = d
	return s.store.WriteDevices(ctx, devices)
}

// Remove deletes entries whose alias matches pattern and returns the removed aliases
func (s *InventoryService) Remove(ctx context.Context, pattern string) ([]string, error) {
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid alias pattern %q: %w", pattern, err)
	}
	devices, err := s.store.ReadDevices(ctx)
	if err != nil {
		return nil, err
	}

	var removed []string
	for alias := range devices {
		if g.Match(strings.ToLower(alias)) {
			removed = append(removed, alias)
			delete(devices, alias)
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	sort.Strings(removed)
	if err := s.store.WriteDevices(ctx, devices); err != nil {
		return nil, err
	}
	return removed, nil
}

// Import replaces every entry created from a loan with the current loans
func (s *InventoryService) Import(ctx context.Context) (map[string]domain.InventoryDevice, error) {
	if s.loans == nil {
		return nil, ErrOffline
	}
	loans, err := s.loans.Loans(ctx)
	if err != nil {
		return nil, err
	}
	devices, err := s.store.ReadDevices(ctx)
	if err != nil {
		return nil, err
	}

	for alias, d := range devices {
		if d.LoanID != 0 {
			delete(devices, alias)
		}
	}
	for _, l := range loans {
		devices[l.Alias()] = l.Inventory()
	}
	if err := s.store.WriteDevices(ctx, devices); err != nil {
		return nil, err
	}
	s.logger.Infof("Imported %d loaned devices", len(loans))
	return devices, nil
}

// Activate makes d the active device on this machine
func (s *InventoryService) Activate(d *domain.Device) (domain.ActiveDevice, error) {
	a, ok := d.ActiveDevice()
	if !ok {
		return domain.ActiveDevice{}, fmt.Errorf("activate %s: %w", d.Fingerprint(), ErrNoCredentials)
	}
	if err := s.active.Write(a); err != nil {
		return domain.ActiveDevice{}, err
	}
	s.logger.Debugf("Activated %s", d.Fingerprint())
	return a, nil
}

// Acquire makes d usable and returns what to activate. Loans are imported into the inventory
// first and catalog devices are borrowed. active reports that d already is the active device.
func (s *InventoryService) Acquire(ctx context.Context, d *domain.Device) (a domain.ActiveDevice, active bool, err error) {
	if cur, ok := d.Active(); ok {
		return cur, true, nil
	}
	if d.Has(domain.SourceInventory) {
		if a, ok := d.ActiveDevice(); ok {
			return a, false, nil
		}
		return a, false, fmt.Errorf("activate %s: %w", d.Fingerprint(), ErrNoCredentials)
	}
	if s.loans == nil {
		return a, false, ErrOffline
	}

	if _, ok := d.Loan(); ok {
		if _, err := s.Import(ctx); err != nil {
			return a, false, err
		}
		if a, ok := d.ActiveDevice(); ok {
			return a, false, nil
		}
		return a, false, fmt.Errorf("activate %s: %w", d.Fingerprint(), ErrNoCredentials)
	}

	c, ok := d.Catalog()
	if !ok || c.Status != domain.StatusConnected {
		return a, false, fmt.Errorf("%s: %w", d.Fingerprint(), ErrNotLoanable)
	}
	loanID, err := s.loans.CreateLoan(ctx, c.ID, c.Firmware)
	if err != nil {
		return a, false, err
	}
	devices, err := s.Import(ctx)
	if err != nil {
		return a, false, err
	}
	for _, entry := range devices {
		if entry.LoanID == loanID {
			return entry.Active(), false, nil
		}
	}
	return a, false, fmt.Errorf("loan %d of device %d is missing from the loan service", loanID, c.ID)
}

// Use writes a as the active device
func (s *InventoryService) Use(a domain.ActiveDevice) error {
	if err := s.active.Write(a); err != nil {
		return err
	}
	s.logger.Debugf("Activated %s", a.Fingerprint())
	return nil
}

// Deactivate clears the active device file. It reports whether an active device is still
// set through the environment, which only the calling shell can unset.
func (s *InventoryService) Deactivate(dryRun bool) (bool, error) {
	fromFile, err := s.active.FromFile()
	if err != nil {
		return false, err
	}
	if fromFile != nil {
		if dryRun {
			s.logger.Warn("Would clear the active device on filesystem")
		} else {
			s.logger.Debug("Clearing the active device on filesystem")
			if err := s.active.Clear(); err != nil {
				return false, err
			}
		}
	}
	fromEnv, err := s.active.FromEnv()
	if err != nil {
		return false, err
	}
	return fromEnv != nil, nil
}

// Return cancels the loan of d and forgets it locally. It reports whether the device is
// still active through the environment.
func (s *InventoryService) Return(ctx context.Context, d *domain.Device) (bool, error) {
	if s.loans == nil {
		return false, ErrOffline
	}
	loan, ok := d.Loan()
	if !ok {
		return false, fmt.Errorf("return %s: %w", d.Fingerprint(), ErrNotLoaned)
	}
	if err := s.loans.CancelLoan(ctx, loan.ID); err != nil {
		return false, err
	}
	s.logger.Infof("Returned loan %d (%s)", loan.ID, loan.Alias())

	fp := d.Fingerprint()
	devices, err := s.store.ReadDevices(ctx)
	if err != nil {
		return false, err
	}
	forgotten := 0
	for alias, entry := range devices {
		if entry.Fingerprint() == fp {
			delete(devices, alias)
			forgotten++
		}
	}
	if forgotten > 0 {
		if err := s.store.WriteDevices(ctx, devices); err != nil {
			return false, err
		}
	}

	fromFile, err := s.active.FromFile()
	if err != nil {
		return false, err
	}
	if fromFile != nil && fromFile.Fingerprint() == fp {
		if err := s.active.Clear(); err != nil {
			return false, err
		}
	}
	fromEnv, err := s.active.FromEnv()
	if err != nil {
		return false, err
	}
	return fromEnv != nil && fromEnv.Fingerprint() == fp, nil
}

func validateEntry(alias string, d domain.InventoryDevice) error {
	if alias == "" {
		return errors.New("alias is required")
	}
	if d.Host == "" {
		return fmt.Errorf("%s: host is required", alias)
	}
	return nil
}
