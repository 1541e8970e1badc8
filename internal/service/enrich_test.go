package service

import (
	"context"
	"errors"
	"io"
	"net/netip"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"deviceinventory/internal/domain"
)

func createTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func rootCredentials() domain.Credentials {
	return domain.Credentials{Username: "root", Password: "pass"}
}

func TestEnrichMergesProbeResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	prober := NewMockProber(ctrl)
	table := domain.NewTable()
	require.NoError(t, table.Fold(domain.InventoryDevice{Alias: "cam1", Host: "192.168.0.90", Credentials: rootCredentials()}))
	require.NoError(t, table.Fold(domain.DiscoveredDevice{Host: "192.168.0.91", HardwareID: "ACCC8E000001"}))

	prober.EXPECT().Probe(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(
		func(_ context.Context, target domain.ProbeTarget) (*domain.ProbeResult, error) {
			switch target.Host {
			case "192.168.0.90":
				require.NotNil(t, target.Credentials)
				assert.Equal(t, "root", target.Credentials.Username)
				return &domain.ProbeResult{
					Architecture: domain.ArchAarch64,
					Firmware:     semver.MustParse("11.9.60"),
					Model:        "M3215-LVE",
					Serial:       "ACCC8E000000",
				}, nil
			default:
				assert.Nil(t, target.Credentials)
				return &domain.ProbeResult{Model: "P1455-LE", Firmware: semver.MustParse("10.12.220")}, nil
			}
		})

	enricher := NewEnricher(prober, time.Second, 0, createTestLogger())
	require.NoError(t, enricher.Enrich(context.Background(), table))

	cam1, ok := table.Lookup("192.168.0.90:80")
	require.True(t, ok)
	assert.Equal(t, domain.ProbeEnriched, cam1.ProbeState())
	arch, ok := cam1.Architecture()
	assert.True(t, ok)
	assert.Equal(t, domain.ArchAarch64, arch)
	model, _ := cam1.Model()
	assert.Equal(t, "M3215-LVE", model)

	lan, ok := table.Lookup("192.168.0.91:80")
	require.True(t, ok)
	assert.Equal(t, domain.ProbeEnriched, lan.ProbeState())
	_, ok = lan.Architecture()
	assert.False(t, ok, "anonymous probe cannot read the architecture")
}

func TestEnrichSkipsDevicesThatMustNotBeContacted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	prober := NewMockProber(ctrl)
	table := domain.NewTable()
	require.NoError(t, table.Fold(domain.CatalogDevice{
		ID:         7,
		Host:       "195.60.68.14",
		ExternalIP: netip.MustParseAddr("10.0.1.7"),
		Model:      "Q1656",
		Status:     domain.StatusOnLoan,
	}))

	enricher := NewEnricher(prober, time.Second, 0, createTestLogger())
	require.NoError(t, enricher.Enrich(context.Background(), table))

	d := table.Devices()[0]
	assert.Equal(t, domain.ProbeFinal, d.ProbeState())
}

func TestEnrichTimeoutLeavesOtherDevicesEnriched(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	prober := NewMockProber(ctrl)
	table := domain.NewTable()
	for _, host := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		require.NoError(t, table.Fold(domain.InventoryDevice{Alias: host, Host: host, Credentials: rootCredentials()}))
	}

	prober.EXPECT().Probe(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(
		func(ctx context.Context, target domain.ProbeTarget) (*domain.ProbeResult, error) {
			if target.Host == "10.0.0.2" {
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return &domain.ProbeResult{Architecture: domain.ArchArmv7hf, Firmware: semver.MustParse("9.80.1")}, nil
		})

	logger, hook := logtest.NewNullLogger()
	enricher := NewEnricher(prober, 50*time.Millisecond, 0, logger)
	start := time.Now()
	require.NoError(t, enricher.Enrich(context.Background(), table))
	assert.Less(t, time.Since(start), 2*time.Second)

	states := map[string]domain.ProbeState{}
	for _, d := range table.Devices() {
		states[d.Host()] = d.ProbeState()
	}
	assert.Equal(t, map[string]domain.ProbeState{
		"10.0.0.1": domain.ProbeEnriched,
		"10.0.0.2": domain.ProbeFailed,
		"10.0.0.3": domain.ProbeEnriched,
	}, states)

	var warnings []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings = append(warnings, e)
		}
	}
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "10.0.0.2")
}

func TestEnrichReturnsConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	external := netip.MustParseAddr("10.0.1.2")
	table := domain.NewTable()
	require.NoError(t, table.Fold(domain.Loan{
		ID:          11,
		LoanableID:  2,
		Host:        domain.DefaultGateway,
		ExternalIP:  external,
		Credentials: rootCredentials(),
		Status:      domain.StatusOnLoan,
	}))
	require.NoError(t, table.Fold(domain.CatalogDevice{
		ID:           2,
		Host:         domain.DefaultGateway,
		ExternalIP:   external,
		Architecture: domain.ArchAarch64,
	}))

	prober := NewMockProber(ctrl)
	prober.EXPECT().Probe(gomock.Any(), gomock.Any()).Return(&domain.ProbeResult{Architecture: domain.ArchArmv7hf}, nil)

	enricher := NewEnricher(prober, time.Second, 1, createTestLogger())
	err := enricher.Enrich(context.Background(), table)

	var conflict *domain.ConflictError
	require.True(t, errors.As(err, &conflict), "expected conflict, got %v", err)
	assert.Equal(t, "architecture", conflict.Attribute)
	assert.Contains(t, err.Error(), "catalog")
	assert.Contains(t, err.Error(), "probe")
}

func TestEnrichRespectsConcurrencyLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	table := domain.NewTable()
	for _, host := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"} {
		require.NoError(t, table.Fold(domain.DiscoveredDevice{Host: host, HardwareID: "ACCC8E000001"}))
	}

	running := make(chan struct{}, 4)
	maxSeen := 0
	prober := NewMockProber(ctrl)
	prober.EXPECT().Probe(gomock.Any(), gomock.Any()).Times(4).DoAndReturn(
		func(_ context.Context, _ domain.ProbeTarget) (*domain.ProbeResult, error) {
			running <- struct{}{}
			if n := len(running); n > maxSeen {
				maxSeen = n
			}
			time.Sleep(10 * time.Millisecond)
			<-running
			return nil, errors.New("connection refused")
		})

	enricher := NewEnricher(prober, time.Second, 1, createTestLogger())
	require.NoError(t, enricher.Enrich(context.Background(), table))
	assert.Equal(t, 1, maxSeen)
	for _, d := range table.Devices() {
		assert.Equal(t, domain.ProbeFailed, d.ProbeState())
	}
}
