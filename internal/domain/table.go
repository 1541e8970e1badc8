package domain

import (
	"cmp"
	"fmt"
	"net/netip"
	"slices"
)

// Table accumulates observations into devices keyed by fingerprint.
// It is not safe for concurrent use.
type Table struct {
	devices map[string]*Device
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{devices: make(map[string]*Device)}
}

// Len returns the number of devices
func (t *Table) Len() int { return len(t.devices) }

// Lookup returns the device with the given fingerprint
func (t *Table) Lookup(fingerprint string) (*Device, bool) {
	d, ok := t.devices[fingerprint]
	return d, ok
}

// Fold adds an observation. A device is created for a new fingerprint; otherwise the
// observation replaces any earlier one of the same kind. If the result would contradict
// another source, the device is left unchanged and a *ConflictError is returned.
func (t *Table) Fold(obs Observation) error {
	fp := obs.Fingerprint()
	d, ok := t.devices[fp]
	if !ok {
		t.devices[fp] = newDevice(obs)
		return nil
	}

	kind := obs.Kind()
	prev := d.slots[kind]
	d.slots[kind] = obs
	if err := d.Validate(); err != nil {
		d.slots[kind] = prev
		return err
	}
	return nil
}

// FoldAll folds every observation, stopping at the first conflict
func FoldAll[O Observation](t *Table, observations []O) error {
	for _, o := range observations {
		if err := t.Fold(o); err != nil {
			return err
		}
	}
	return nil
}

// Enrich merges a probe result into the device it was requested for
func (t *Table) Enrich(fingerprint string, result ProbeResult) error {
	d, ok := t.devices[fingerprint]
	if !ok {
		return fmt.Errorf("enrich: %w: %s", ErrUnknownFingerprint, fingerprint)
	}
	prev := d.probe
	d.probe = &result
	if err := d.Validate(); err != nil {
		d.probe = prev
		d.state = ProbeFailed
		return err
	}
	d.state = ProbeEnriched
	return nil
}

// SetProbeState records enrichment progress for a device
func (t *Table) SetProbeState(fingerprint string, state ProbeState) error {
	d, ok := t.devices[fingerprint]
	if !ok {
		return fmt.Errorf("probe state: %w: %s", ErrUnknownFingerprint, fingerprint)
	}
	d.state = state
	return nil
}

// Devices returns all devices sorted by priority, host and HTTP port
func (t *Table) Devices() []*Device {
	out := make([]*Device, 0, len(t.devices))
	for _, d := range t.devices {
		out = append(out, d)
	}
	slices.SortFunc(out, Compare)
	return out
}

// Compare orders devices by preferred priority, then host, then HTTP port.
// The fingerprint breaks remaining ties so the order is stable across runs.
func Compare(a, b *Device) int {
	if c := cmp.Compare(a.Priority(), b.Priority()); c != 0 {
		return c
	}
	if c := compareHosts(a.Host(), b.Host()); c != 0 {
		return c
	}
	pa, _ := a.HTTPPort()
	pb, _ := b.HTTPPort()
	if c := cmp.Compare(pa, pb); c != 0 {
		return c
	}
	return cmp.Compare(a.fingerprint, b.fingerprint)
}

// compareHosts orders IP addresses numerically and everything else lexically, addresses first
func compareHosts(a, b string) int {
	ipA, errA := netip.ParseAddr(a)
	ipB, errB := netip.ParseAddr(b)
	switch {
	case errA == nil && errB == nil:
		return ipA.Compare(ipB)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}
