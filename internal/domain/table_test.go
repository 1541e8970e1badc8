package domain

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/Masterminds/semver/v3"
)

func mustFirmware(t *testing.T, s string) *semver.Version {
	t.Helper()
	v, err := CoerceFirmware(s)
	if err != nil {
		t.Fatalf("coerce %s: %v", s, err)
	}
	return v
}

func TestTableFoldJoinsSources(t *testing.T) {
	table := NewTable()
	inv := InventoryDevice{
		Alias:       "cam1",
		Host:        "10.0.0.5",
		Credentials: Credentials{Username: "root", Password: "pass"},
	}
	active := ActiveDevice{
		Host:        "10.0.0.5",
		Credentials: Credentials{Username: "root", Password: "pass"},
	}

	if err := table.Fold(inv); err != nil {
		t.Fatalf("fold inventory: %v", err)
	}
	if err := table.Fold(active); err != nil {
		t.Fatalf("fold active: %v", err)
	}

	if table.Len() != 1 {
		t.Fatalf("expected 1 device, got %d", table.Len())
	}
	d, ok := table.Lookup("10.0.0.5:80")
	if !ok {
		t.Fatal("expected device with fingerprint 10.0.0.5:80")
	}
	if alias, ok := d.Alias(); !ok || alias != "cam1" {
		t.Errorf("expected alias cam1, got %q", alias)
	}
	if d.Priority() != 0 {
		t.Errorf("expected priority 0, got %d", d.Priority())
	}
	if got := d.Priorities(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("expected priorities [0 1], got %v", got)
	}
}

func TestTableFoldReplacesSameKind(t *testing.T) {
	table := NewTable()
	first := InventoryDevice{Alias: "old", Host: "10.0.0.7"}
	second := InventoryDevice{Alias: "new", Host: "10.0.0.7"}

	if err := table.Fold(first); err != nil {
		t.Fatal(err)
	}
	if err := table.Fold(second); err != nil {
		t.Fatal(err)
	}

	d, _ := table.Lookup("10.0.0.7:80")
	if alias, _ := d.Alias(); alias != "new" {
		t.Errorf("expected later observation to win, got %q", alias)
	}
}

func TestTableFoldIdempotent(t *testing.T) {
	loan := Loan{
		ID:          7,
		LoanableID:  51,
		Host:        DefaultGateway,
		ExternalIP:  netip.MustParseAddr("10.1.2.51"),
		Credentials: Credentials{Username: "VLTuser", Password: "secret"},
		Model:       "M3085-V",
		Status:      StatusOnLoan,
	}

	once := NewTable()
	twice := NewTable()
	if err := once.Fold(loan); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := twice.Fold(loan); err != nil {
			t.Fatal(err)
		}
	}

	a, _ := once.Lookup(loan.Fingerprint())
	b, _ := twice.Lookup(loan.Fingerprint())
	if *a != *b {
		t.Errorf("expected identical records, got %+v and %+v", a, b)
	}
}

func TestTableFoldOrderIndependent(t *testing.T) {
	obs := []Observation{
		ActiveDevice{Host: "10.0.0.5"},
		InventoryDevice{Alias: "cam2", Host: "10.0.0.6"},
		DiscoveredDevice{Host: "10.0.0.5", HardwareID: "ACCC8E000001"},
		CatalogDevice{Host: DefaultGateway, ExternalIP: netip.MustParseAddr("10.1.1.95"), Status: StatusConnected},
	}

	forward := NewTable()
	backward := NewTable()
	for i := range obs {
		if err := forward.Fold(obs[i]); err != nil {
			t.Fatal(err)
		}
		if err := backward.Fold(obs[len(obs)-1-i]); err != nil {
			t.Fatal(err)
		}
	}

	if forward.Len() != 3 || backward.Len() != 3 {
		t.Fatalf("expected 3 devices each, got %d and %d", forward.Len(), backward.Len())
	}
	for _, d := range forward.Devices() {
		if _, ok := backward.Lookup(d.Fingerprint()); !ok {
			t.Errorf("expected %s in both tables", d.Fingerprint())
		}
	}
}

func TestDeviceNeverEmpty(t *testing.T) {
	table := NewTable()
	if err := table.Fold(DiscoveredDevice{Host: "10.0.0.9", HardwareID: "ACCC8E000009"}); err != nil {
		t.Fatal(err)
	}
	for _, d := range table.Devices() {
		if len(d.Sources()) == 0 {
			t.Errorf("expected at least one source on %s", d.Fingerprint())
		}
		if len(d.Priorities()) == 0 {
			t.Errorf("expected at least one priority on %s", d.Fingerprint())
		}
	}
}

func TestArchitectureConflict(t *testing.T) {
	table := NewTable()
	catalog := CatalogDevice{
		Host:         DefaultGateway,
		ExternalIP:   netip.MustParseAddr("10.1.1.95"),
		Architecture: ArchAarch64,
		Status:       StatusConnected,
	}
	if err := table.Fold(catalog); err != nil {
		t.Fatal(err)
	}

	err := table.Enrich(catalog.Fingerprint(), ProbeResult{Architecture: ArchArmv7hf})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Attribute != "architecture" {
		t.Errorf("expected attribute architecture, got %s", conflict.Attribute)
	}
	if conflict.Source != "catalog" || conflict.Other != "probe" {
		t.Errorf("expected catalog and probe, got %s and %s", conflict.Source, conflict.Other)
	}

	d, _ := table.Lookup(catalog.Fingerprint())
	if arch, _ := d.Architecture(); arch != ArchAarch64 {
		t.Errorf("expected rejected result to leave aarch64, got %s", arch)
	}
}

func TestFirmwareConflict(t *testing.T) {
	table := NewTable()
	catalog := CatalogDevice{
		Host:       DefaultGateway,
		ExternalIP: netip.MustParseAddr("10.1.1.95"),
		Firmware:   "11.5.23.4",
	}
	if err := table.Fold(catalog); err != nil {
		t.Fatal(err)
	}

	t.Run("equal firmware merges", func(t *testing.T) {
		if err := table.Enrich(catalog.Fingerprint(), ProbeResult{Firmware: mustFirmware(t, "11.5.23.4")}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("different build metadata conflicts", func(t *testing.T) {
		err := table.Enrich(catalog.Fingerprint(), ProbeResult{Firmware: mustFirmware(t, "11.5.23.5")})
		var conflict *ConflictError
		if !errors.As(err, &conflict) || conflict.Attribute != "firmware" {
			t.Errorf("expected firmware conflict, got %v", err)
		}
	})
}

func TestHostPortConflict(t *testing.T) {
	table := NewTable()
	if err := table.Fold(InventoryDevice{Alias: "cam", Host: "10.0.0.5", Ports: Ports{HTTPS: 8443}}); err != nil {
		t.Fatal(err)
	}

	err := table.Fold(ActiveDevice{Host: "10.0.0.5"})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Attribute != "https port" {
		t.Errorf("expected https port, got %s", conflict.Attribute)
	}
	d, _ := table.Lookup("10.0.0.5:80")
	if d.Has(SourceActive) {
		t.Error("expected conflicting observation to be rejected")
	}
}

func TestEnrichUnknownFingerprint(t *testing.T) {
	table := NewTable()
	err := table.Enrich("10.9.9.9:80", ProbeResult{})
	if !errors.Is(err, ErrUnknownFingerprint) {
		t.Errorf("expected ErrUnknownFingerprint, got %v", err)
	}
}

func TestDeviceAccessors(t *testing.T) {
	table := NewTable()
	loan := Loan{
		ID:          7,
		LoanableID:  51,
		Host:        DefaultGateway,
		ExternalIP:  netip.MustParseAddr("10.1.2.51"),
		Credentials: Credentials{Username: "VLTuser", Password: "loanpass"},
		Model:       "M3085-V",
		Status:      StatusOnLoan,
	}
	inv := loan.Inventory()
	inv.Password = "stale"
	for _, o := range []Observation{loan, inv} {
		if err := table.Fold(o); err != nil {
			t.Fatal(err)
		}
	}
	d, _ := table.Lookup(loan.Fingerprint())

	t.Run("inventory credentials take precedence", func(t *testing.T) {
		c, ok := d.Credentials()
		if !ok || c.Password.Reveal() != "stale" {
			t.Errorf("expected inventory password, got %q", c.Password.Reveal())
		}
	})

	t.Run("model falls back to loan", func(t *testing.T) {
		if m, _ := d.Model(); m != "M3085-V" {
			t.Errorf("expected M3085-V, got %s", m)
		}
	})

	t.Run("probe model wins once enriched", func(t *testing.T) {
		if err := table.Enrich(d.Fingerprint(), ProbeResult{Model: "AXIS M3085-V", Serial: "B8A44F000001"}); err != nil {
			t.Fatal(err)
		}
		if m, _ := d.Model(); m != "AXIS M3085-V" {
			t.Errorf("expected probe model, got %s", m)
		}
		if s, _ := d.Serial(); s != "B8A44F000001" {
			t.Errorf("expected probe serial, got %s", s)
		}
		if d.ProbeState() != ProbeEnriched {
			t.Errorf("expected enriched, got %s", d.ProbeState())
		}
	})

	t.Run("status from loan", func(t *testing.T) {
		if s, ok := d.Status(); !ok || s != StatusOnLoan {
			t.Errorf("expected on-loan, got %s", s)
		}
	})

	t.Run("active device keeps gateway ports", func(t *testing.T) {
		a, ok := d.ActiveDevice()
		if !ok {
			t.Fatal("expected activatable device")
		}
		if a.Host != DefaultGateway || a.HTTP != 12051 || a.HTTPS != 42051 || a.SSH != 22051 {
			t.Errorf("unexpected active device %+v", a)
		}
	})

	t.Run("alias of imported loan", func(t *testing.T) {
		if alias, _ := d.Alias(); alias != "vlt-51" {
			t.Errorf("expected vlt-51, got %s", alias)
		}
	})
}

func TestCatalogIsNotProbed(t *testing.T) {
	table := NewTable()
	catalog := CatalogDevice{Host: DefaultGateway, ExternalIP: netip.MustParseAddr("10.1.1.95"), Status: StatusOnLoan}
	if err := table.Fold(catalog); err != nil {
		t.Fatal(err)
	}
	d, _ := table.Lookup(catalog.Fingerprint())
	if !d.NeedsProbe() {
		t.Error("expected catalog device without details to need a probe")
	}
	if _, ok := d.ProbeTarget(); ok {
		t.Error("expected no probe target for a catalog-only device")
	}
	if d.Priority() != 5 {
		t.Errorf("expected priority 5, got %d", d.Priority())
	}
}

func TestDevicesSorted(t *testing.T) {
	table := NewTable()
	obs := []Observation{
		CatalogDevice{Host: DefaultGateway, ExternalIP: netip.MustParseAddr("10.1.1.95"), Status: StatusConnected},
		DiscoveredDevice{Host: "10.0.0.20", HardwareID: "ACCC8E000020"},
		DiscoveredDevice{Host: "10.0.0.3", HardwareID: "ACCC8E000003"},
		InventoryDevice{Alias: "b", Host: "10.0.0.5", Ports: Ports{HTTP: 8081}},
		InventoryDevice{Alias: "a", Host: "10.0.0.5", Ports: Ports{HTTP: 8080}},
		ActiveDevice{Host: "10.0.0.100"},
	}
	for _, o := range obs {
		if err := table.Fold(o); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{
		"10.0.0.100:80",
		"10.0.0.5:8080",
		"10.0.0.5:8081",
		"10.0.0.3:80",
		"10.0.0.20:80",
		"195.60.68.14:11095",
	}
	got := table.Devices()
	if len(got) != len(want) {
		t.Fatalf("expected %d devices, got %d", len(want), len(got))
	}
	for i, d := range got {
		if d.Fingerprint() != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], d.Fingerprint())
		}
	}
}

func TestPasswordMasked(t *testing.T) {
	c := Credentials{Username: "root", Password: "hunter2"}
	for _, s := range []string{c.Password.String(), c.Password.GoString()} {
		if s != "***" {
			t.Errorf("expected masked password, got %s", s)
		}
	}
	if c.Password.Reveal() != "hunter2" {
		t.Errorf("expected revealed password, got %s", c.Password.Reveal())
	}
}

func TestParseHardwareID(t *testing.T) {
	for _, in := range []string{"ac:cc:8e:12:34:56", "ACCC8E123456", "ac-cc-8e-12-34-56"} {
		got, err := ParseHardwareID(in)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", in, err)
			continue
		}
		if got != "ACCC8E123456" {
			t.Errorf("%s: expected ACCC8E123456, got %s", in, got)
		}
	}
	for _, in := range []string{"", "ACCC8E12345", "ACCC8E12345G"} {
		if _, err := ParseHardwareID(in); err == nil {
			t.Errorf("%s: expected error", in)
		}
	}
}

func TestParseStatusAndArchitecture(t *testing.T) {
	if s, err := ParseStatus("on-loan"); err != nil || s != StatusOnLoan {
		t.Errorf("expected on-loan, got %v %v", s, err)
	}
	if s, err := ParseStatus("status-4"); err != nil || s.String() != "status-4" {
		t.Errorf("expected status-4, got %v %v", s, err)
	}
	if _, err := ParseStatus("lost"); err == nil {
		t.Error("expected error for unknown status")
	}
	if a, err := ParseArchitecture("ARMV7HF"); err != nil || a != ArchArmv7hf {
		t.Errorf("expected armv7hf, got %v %v", a, err)
	}
	if _, err := ParseArchitecture("x86_64"); err == nil {
		t.Error("expected error for unknown architecture")
	}
}
