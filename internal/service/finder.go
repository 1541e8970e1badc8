package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/sirupsen/logrus"

	"deviceinventory/internal/domain"
	"deviceinventory/internal/filter"
)

// ErrNoMatch is returned when no device satisfies a query
var ErrNoMatch = errors.New("no matching device found")

// Sources bundles the collaborators each source kind is read from.
// A nil collaborator makes its source unavailable.
type Sources struct {
	Active    ActiveSource
	Inventory InventoryStore
	Loans     LoanService
	LAN       LANDiscoverer
}

// Query describes which sources to fuse and which devices to keep
type Query struct {
	Sources []domain.SourceKind
	// Explicit makes a failing source abort the query instead of being skipped
	Explicit bool
	Probe    bool
	Filter   *filter.Filter
}

// Finder fuses observations from every requested source into devices
type Finder struct {
	sources  Sources
	enricher *Enricher
	logger   *logrus.Logger
}

// NewFinder creates a finder. Without an enricher, probe requests are ignored.
func NewFinder(sources Sources, enricher *Enricher, logger *logrus.Logger) *Finder {
	return &Finder{
		sources:  sources,
		enricher: enricher,
		logger:   logger,
	}
}

// Find returns the devices matching q, most preferred first
func (f *Finder) Find(ctx context.Context, q Query) ([]*domain.Device, error) {
	table, err := f.Collect(ctx, q.Sources, q.Explicit)
	if err != nil {
		return nil, err
	}

	switch {
	case q.Probe && f.enricher != nil:
		if err := f.enricher.Enrich(ctx, table); err != nil {
			return nil, err
		}
	default:
		if q.Probe {
			f.logger.Warn("Probing was requested but no prober is configured")
		}
		// nothing more will be learned about any device
		for _, d := range table.Devices() {
			if err := table.SetProbeState(d.Fingerprint(), domain.ProbeFinal); err != nil {
				return nil, err
			}
		}
	}

	devices := table.Devices()
	if q.Filter == nil {
		return devices, nil
	}
	return filter.Select(q.Filter, devices), nil
}

// FindOne returns the most preferred device matching q that satisfies accept
func (f *Finder) FindOne(ctx context.Context, q Query, accept func(*domain.Device) bool) (*domain.Device, error) {
	devices, err := f.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	var candidates []*domain.Device
	for _, d := range devices {
		if accept == nil || accept(d) {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoMatch
	}
	if len(candidates) > 1 {
		f.logger.Warnf("Found %d matching devices, using the first one", len(candidates))
	}
	return candidates[0], nil
}

// Collect reads every requested source and folds the observations into a table.
// Sources are read in precedence order so the first conflict reported is against the
// most trusted source.
func (f *Finder) Collect(ctx context.Context, kinds []domain.SourceKind, explicit bool) (*domain.Table, error) {
	wanted := make(map[domain.SourceKind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}

	table := domain.NewTable()
	for _, kind := range domain.AllSources {
		if !wanted[kind] {
			continue
		}
		n, err := f.collect(ctx, table, kind)
		var conflict *domain.ConflictError
		switch {
		case errors.As(err, &conflict):
			return nil, err
		case err != nil && (explicit || ctx.Err() != nil):
			return nil, fmt.Errorf("%s source: %w", kind, err)
		case err != nil:
			f.logger.Warnf("Skipping %s source: %v", kind, err)
		default:
			f.logger.Debugf("Folded %d %s observations", n, kind)
		}
	}
	return table, nil
}

func (f *Finder) collect(ctx context.Context, table *domain.Table, kind domain.SourceKind) (int, error) {
	switch kind {
	case domain.SourceActive:
		if f.sources.Active == nil {
			return 0, errUnavailable
		}
		d, err := f.sources.Active.ReadActive()
		if err != nil || d == nil {
			return 0, err
		}
		return 1, table.Fold(*d)

	case domain.SourceInventory:
		if f.sources.Inventory == nil {
			return 0, errUnavailable
		}
		devices, err := f.sources.Inventory.ReadDevices(ctx)
		if err != nil {
			return 0, err
		}
		// Aliases sharing a fingerprint replace each other; fold in reverse order so the
		// alphabetically first one is kept.
		aliases := slices.Sorted(maps.Keys(devices))
		for _, alias := range slices.Backward(aliases) {
			d := devices[alias]
			d.Alias = alias
			if err := table.Fold(d); err != nil {
				return 0, err
			}
		}
		return len(devices), nil

	case domain.SourceLoan:
		if f.sources.Loans == nil {
			return 0, errUnavailable
		}
		loans, err := f.sources.Loans.Loans(ctx)
		if err != nil {
			return 0, err
		}
		return len(loans), domain.FoldAll(table, loans)

	case domain.SourceDiscovered:
		if f.sources.LAN == nil {
			return 0, errUnavailable
		}
		devices, err := f.sources.LAN.Discover(ctx)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", f.sources.LAN.Name(), err)
		}
		return len(devices), domain.FoldAll(table, devices)

	case domain.SourceCatalog:
		if f.sources.Loans == nil {
			return 0, errUnavailable
		}
		devices, err := f.sources.Loans.Catalog(ctx)
		if err != nil {
			return 0, err
		}
		return len(devices), domain.FoldAll(table, devices)
	}
	return 0, fmt.Errorf("unknown source %s", kind)
}

var errUnavailable = errors.New("source is not available")
