package service

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"deviceinventory/internal/domain"
	"deviceinventory/internal/filter"
)

func TestFinderJoinsActiveAndInventory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	active := NewMockActiveStore(ctrl)
	active.EXPECT().ReadActive().Return(&domain.ActiveDevice{Host: "192.168.0.90", Credentials: rootCredentials()}, nil)
	store := NewMockInventoryStore(ctrl)
	store.EXPECT().ReadDevices(gomock.Any()).Return(map[string]domain.InventoryDevice{
		"cam1": {Host: "192.168.0.90", Credentials: rootCredentials()},
	}, nil)

	finder := NewFinder(Sources{Active: active, Inventory: store}, nil, createTestLogger())
	devices, err := finder.Find(context.Background(), Query{Sources: domain.AllSources})
	require.NoError(t, err)
	require.Len(t, devices, 1)

	d := devices[0]
	alias, ok := d.Alias()
	assert.True(t, ok)
	assert.Equal(t, "cam1", alias)
	assert.Equal(t, uint8(0), d.Priority())
	assert.Equal(t, []domain.SourceKind{domain.SourceActive, domain.SourceInventory}, d.Sources())
}

func TestFinderKeepsFirstAliasOfSharedFingerprint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockInventoryStore(ctrl)
	store.EXPECT().ReadDevices(gomock.Any()).DoAndReturn(
		func(context.Context) (map[string]domain.InventoryDevice, error) {
			return map[string]domain.InventoryDevice{
				"cam1-old": {Host: "10.0.0.5"},
				"cam1":     {Host: "10.0.0.5"},
				"cam0-new": {Host: "10.0.0.6"},
			}, nil
		}).AnyTimes()

	finder := NewFinder(Sources{Inventory: store}, nil, createTestLogger())
	f, err := filter.Compile(filter.Criteria{Alias: "cam1"})
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		devices, err := finder.Find(context.Background(), Query{
			Sources: []domain.SourceKind{domain.SourceInventory},
			Filter:  f,
		})
		require.NoError(t, err)
		require.Len(t, devices, 1, "run %d", i)
		alias, _ := devices[0].Alias()
		assert.Equal(t, "cam1", alias)
	}
}

func TestFinderWithoutEnrichmentMarksDevicesFinal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockInventoryStore(ctrl)
	store.EXPECT().ReadDevices(gomock.Any()).Return(map[string]domain.InventoryDevice{
		"cam1": {Host: "10.0.0.5", Credentials: rootCredentials()},
		"cam2": {Host: "10.0.0.6"},
	}, nil)

	finder := NewFinder(Sources{Inventory: store}, nil, createTestLogger())
	devices, err := finder.Find(context.Background(), Query{Sources: []domain.SourceKind{domain.SourceInventory}})
	require.NoError(t, err)
	require.Len(t, devices, 2)
	for _, d := range devices {
		assert.Equal(t, domain.ProbeFinal, d.ProbeState(), d.Fingerprint())
	}
}

func TestFinderSourceFailures(t *testing.T) {
	discoverErr := errors.New("no multicast route")

	t.Run("implicit source is skipped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		lan := NewMockLANDiscoverer(ctrl)
		lan.EXPECT().Name().Return("mdns").AnyTimes()
		lan.EXPECT().Discover(gomock.Any()).Return(nil, discoverErr)
		store := NewMockInventoryStore(ctrl)
		store.EXPECT().ReadDevices(gomock.Any()).Return(map[string]domain.InventoryDevice{
			"cam1": {Host: "10.0.0.5"},
		}, nil)

		finder := NewFinder(Sources{Inventory: store, LAN: lan}, nil, createTestLogger())
		devices, err := finder.Find(context.Background(), Query{Sources: domain.AllSources})
		require.NoError(t, err)
		assert.Len(t, devices, 1)
	})

	t.Run("explicit source aborts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		lan := NewMockLANDiscoverer(ctrl)
		lan.EXPECT().Name().Return("mdns").AnyTimes()
		lan.EXPECT().Discover(gomock.Any()).Return(nil, discoverErr)

		finder := NewFinder(Sources{LAN: lan}, nil, createTestLogger())
		_, err := finder.Find(context.Background(), Query{
			Sources:  []domain.SourceKind{domain.SourceDiscovered},
			Explicit: true,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, discoverErr)
	})

	t.Run("explicit unavailable source aborts", func(t *testing.T) {
		finder := NewFinder(Sources{}, nil, createTestLogger())
		_, err := finder.Find(context.Background(), Query{
			Sources:  []domain.SourceKind{domain.SourceLoan},
			Explicit: true,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loan source")
	})
}

func TestFinderConflictIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	active := NewMockActiveStore(ctrl)
	active.EXPECT().ReadActive().Return(&domain.ActiveDevice{
		Host:  "10.0.0.5",
		Ports: domain.Ports{HTTPS: 8443},
	}, nil)
	store := NewMockInventoryStore(ctrl)
	store.EXPECT().ReadDevices(gomock.Any()).Return(map[string]domain.InventoryDevice{
		"cam1": {Host: "10.0.0.5", Ports: domain.Ports{HTTPS: 9443}},
	}, nil)

	finder := NewFinder(Sources{Active: active, Inventory: store}, nil, createTestLogger())
	_, err := finder.Find(context.Background(), Query{Sources: domain.AllSources})

	var conflict *domain.ConflictError
	require.True(t, errors.As(err, &conflict), "expected conflict, got %v", err)
	assert.Equal(t, "https port", conflict.Attribute)
}

func TestFinderFiltersByFirmwareRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loans := NewMockLoanService(ctrl)
	loans.EXPECT().Loans(gomock.Any()).Return(nil, nil)
	loans.EXPECT().Catalog(gomock.Any()).Return([]domain.CatalogDevice{
		{ID: 1, Host: domain.DefaultGateway, ExternalIP: netip.MustParseAddr("10.0.1.1"), Firmware: "11.5.64", Status: domain.StatusConnected},
		{ID: 2, Host: domain.DefaultGateway, ExternalIP: netip.MustParseAddr("10.0.1.2"), Firmware: "10.12.0", Status: domain.StatusConnected},
		{ID: 3, Host: domain.DefaultGateway, ExternalIP: netip.MustParseAddr("10.0.1.3"), Status: domain.StatusConnected},
	}, nil)

	f, err := filter.Compile(filter.Criteria{Firmware: ">=11.0, <12.0"})
	require.NoError(t, err)

	finder := NewFinder(Sources{Loans: loans}, nil, createTestLogger())
	devices, err := finder.Find(context.Background(), Query{
		Sources: []domain.SourceKind{domain.SourceLoan, domain.SourceCatalog},
		Filter:  f,
	})
	require.NoError(t, err)
	require.Len(t, devices, 1)
	c, ok := devices[0].Catalog()
	require.True(t, ok)
	assert.Equal(t, uint16(1), c.ID)
}

func TestFinderFindOne(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockInventoryStore(ctrl)
	store.EXPECT().ReadDevices(gomock.Any()).Return(map[string]domain.InventoryDevice{
		"cam1": {Host: "10.0.0.9"},
		"cam2": {Host: "10.0.0.10", Credentials: rootCredentials()},
	}, nil).Times(2)

	finder := NewFinder(Sources{Inventory: store}, nil, createTestLogger())
	q := Query{Sources: []domain.SourceKind{domain.SourceInventory}}

	d, err := finder.FindOne(context.Background(), q, nil)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.9", d.Host())

	_, err = finder.FindOne(context.Background(), q, func(d *domain.Device) bool {
		_, ok := d.Loan()
		return ok
	})
	assert.ErrorIs(t, err, ErrNoMatch)
}
