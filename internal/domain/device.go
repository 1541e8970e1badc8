package domain

import (
	"strconv"

	"github.com/Masterminds/semver/v3"
)

// ProbeState tracks enrichment of a record during one invocation
type ProbeState int

const (
	ProbeUnprobed ProbeState = iota
	ProbeProbing
	ProbeEnriched
	ProbeFailed
	ProbeFinal // no probe was requested or possible
)

func (s ProbeState) String() string {
	switch s {
	case ProbeUnprobed:
		return "unprobed"
	case ProbeProbing:
		return "probing"
	case ProbeEnriched:
		return "enriched"
	case ProbeFailed:
		return "probe-failed"
	case ProbeFinal:
		return "final"
	default:
		return "probe-state(" + strconv.Itoa(int(s)) + ")"
	}
}

// ProbeTarget is what a probe needs to reach a device
type ProbeTarget struct {
	Fingerprint string
	Host        string
	HTTPPort    uint16
	HTTPSPort   uint16
	Credentials *Credentials
}

// ProbeResult is what a device reports about itself. Zero values mean unknown.
type ProbeResult struct {
	Architecture Architecture
	Firmware     *semver.Version
	Model        string
	Serial       string
}

// Device is the fused view of every observation sharing a fingerprint.
// It holds at most one observation per source kind and at least one overall.
type Device struct {
	fingerprint string
	slots       [numSources]Observation
	probe       *ProbeResult
	state       ProbeState
}

func newDevice(obs Observation) *Device {
	d := &Device{fingerprint: obs.Fingerprint()}
	d.slots[obs.Kind()] = obs
	return d
}

// Fingerprint returns the identity key shared by all observations of the device
func (d *Device) Fingerprint() string { return d.fingerprint }

// ProbeState returns how far enrichment got for this record
func (d *Device) ProbeState() ProbeState { return d.state }

// Has reports whether an observation from the given source is present
func (d *Device) Has(kind SourceKind) bool { return d.slots[kind] != nil }

// Sources returns the kinds of the present observations in precedence order
func (d *Device) Sources() []SourceKind {
	var kinds []SourceKind
	for _, k := range AllSources {
		if d.Has(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Active returns the active device observation, if present
func (d *Device) Active() (ActiveDevice, bool) {
	v, ok := d.slots[SourceActive].(ActiveDevice)
	return v, ok
}

// Inventory returns the alias database observation, if present
func (d *Device) Inventory() (InventoryDevice, bool) {
	v, ok := d.slots[SourceInventory].(InventoryDevice)
	return v, ok
}

// Loan returns the loan observation, if present
func (d *Device) Loan() (Loan, bool) {
	v, ok := d.slots[SourceLoan].(Loan)
	return v, ok
}

// Discovered returns the LAN observation, if present
func (d *Device) Discovered() (DiscoveredDevice, bool) {
	v, ok := d.slots[SourceDiscovered].(DiscoveredDevice)
	return v, ok
}

// Catalog returns the catalog observation, if present
func (d *Device) Catalog() (CatalogDevice, bool) {
	v, ok := d.slots[SourceCatalog].(CatalogDevice)
	return v, ok
}

// ProbeResult returns the enrichment result, if a probe succeeded
func (d *Device) ProbeResult() (ProbeResult, bool) {
	if d.probe == nil {
		return ProbeResult{}, false
	}
	return *d.probe, true
}

// present yields the observations in the given kinds' order, skipping absent ones
func (d *Device) present(kinds ...SourceKind) []Observation {
	var out []Observation
	for _, k := range kinds {
		if d.slots[k] != nil {
			out = append(out, d.slots[k])
		}
	}
	return out
}

func (d *Device) resolveHost() (string, bool, error) {
	var claims []claim[string]
	for _, o := range d.present(SourceActive, SourceInventory, SourceLoan, SourceDiscovered, SourceCatalog) {
		if h := o.facts().host; h != "" {
			claims = append(claims, claim[string]{o.Kind().String(), h})
		}
	}
	return resolve(d.fingerprint, "host", claims, func(s string) string { return s })
}

func (d *Device) resolvePort(attribute string, pick func(facts) uint16) (uint16, bool, error) {
	var claims []claim[uint16]
	for _, o := range d.present(SourceActive, SourceInventory, SourceLoan, SourceDiscovered) {
		if p := pick(o.facts()); p != 0 {
			claims = append(claims, claim[uint16]{o.Kind().String(), p})
		}
	}
	return resolve(d.fingerprint, attribute, claims, func(p uint16) string {
		return strconv.FormatUint(uint64(p), 10)
	})
}

func (d *Device) resolveArchitecture() (Architecture, bool, error) {
	var claims []claim[Architecture]
	if c, ok := d.Catalog(); ok && c.Architecture != "" {
		claims = append(claims, claim[Architecture]{SourceCatalog.String(), c.Architecture})
	}
	if d.probe != nil && d.probe.Architecture != "" {
		claims = append(claims, claim[Architecture]{probeSource, d.probe.Architecture})
	}
	return resolve(d.fingerprint, "architecture", claims, func(a Architecture) string { return string(a) })
}

func (d *Device) resolveFirmware() (*semver.Version, bool, error) {
	var catalog *semver.Version
	if c, ok := d.Catalog(); ok && c.Firmware != "" {
		// An uncoercible catalog firmware is treated as unknown.
		catalog, _ = CoerceFirmware(c.Firmware)
	}
	var probed *semver.Version
	if d.probe != nil {
		probed = d.probe.Firmware
	}
	switch {
	case catalog != nil && probed != nil:
		if !sameFirmware(catalog, probed) {
			return nil, false, &ConflictError{
				Fingerprint: d.fingerprint,
				Attribute:   "firmware",
				Source:      SourceCatalog.String(),
				Value:       catalog.String(),
				Other:       probeSource,
				OtherValue:  probed.String(),
			}
		}
		return catalog, true, nil
	case catalog != nil:
		return catalog, true, nil
	case probed != nil:
		return probed, true, nil
	default:
		return nil, false, nil
	}
}

// Validate checks that no two present sources disagree on a single-valued attribute
func (d *Device) Validate() error {
	if _, _, err := d.resolveHost(); err != nil {
		return err
	}
	if _, _, err := d.resolvePort("http port", func(f facts) uint16 { return f.httpPort }); err != nil {
		return err
	}
	if _, _, err := d.resolvePort("https port", func(f facts) uint16 { return f.httpsPort }); err != nil {
		return err
	}
	if _, _, err := d.resolveArchitecture(); err != nil {
		return err
	}
	if _, _, err := d.resolveFirmware(); err != nil {
		return err
	}
	return nil
}

// Host returns the address the device is reached at
func (d *Device) Host() string {
	h, _, _ := d.resolveHost()
	return h
}

// HTTPPort returns the effective HTTP port, if the device may be contacted
func (d *Device) HTTPPort() (uint16, bool) {
	p, ok, _ := d.resolvePort("http port", func(f facts) uint16 { return f.httpPort })
	return p, ok
}

// HTTPSPort returns the effective HTTPS port, if the device may be contacted
func (d *Device) HTTPSPort() (uint16, bool) {
	p, ok, _ := d.resolvePort("https port", func(f facts) uint16 { return f.httpsPort })
	return p, ok
}

// SSHPort returns the effective SSH port, if known
func (d *Device) SSHPort() (uint16, bool) {
	for _, o := range d.present(SourceActive, SourceInventory, SourceLoan) {
		switch v := o.(type) {
		case ActiveDevice:
			return v.EffectiveSSH(), true
		case InventoryDevice:
			return v.EffectiveSSH(), true
		case Loan:
			return v.Ports().EffectiveSSH(), true
		}
	}
	return 0, false
}

// Credentials returns the credentials for the device's management API, if known.
// The first source in precedence order wins; they are not required to agree.
func (d *Device) Credentials() (Credentials, bool) {
	for _, o := range d.present(SourceActive, SourceInventory, SourceLoan) {
		if c := o.facts().credentials; c != nil {
			return *c, true
		}
	}
	return Credentials{}, false
}

// Alias returns the alias database key of the device
func (d *Device) Alias() (string, bool) {
	if inv, ok := d.Inventory(); ok {
		return inv.Alias, true
	}
	return "", false
}

// Model returns the product name, preferring what the device reports itself
func (d *Device) Model() (string, bool) {
	if d.probe != nil && d.probe.Model != "" {
		return d.probe.Model, true
	}
	for _, o := range d.present(SourceLoan, SourceCatalog, SourceInventory) {
		if m := o.facts().model; m != "" {
			return m, true
		}
	}
	return "", false
}

// Serial returns the serial number, preferring what the device reports itself over its MAC
func (d *Device) Serial() (string, bool) {
	if d.probe != nil && d.probe.Serial != "" {
		return d.probe.Serial, true
	}
	if disc, ok := d.Discovered(); ok && disc.HardwareID != "" {
		return disc.HardwareID, true
	}
	return "", false
}

// Status returns the loan service status of the device
func (d *Device) Status() (Status, bool) {
	for _, o := range d.present(SourceLoan, SourceCatalog) {
		if s := o.facts().status; s != StatusUnknown {
			return s, true
		}
	}
	return StatusUnknown, false
}

// Architecture returns the CPU architecture of the device
func (d *Device) Architecture() (Architecture, bool) {
	a, ok, _ := d.resolveArchitecture()
	return a, ok
}

// Firmware returns the firmware version of the device
func (d *Device) Firmware() (*semver.Version, bool) {
	v, ok, _ := d.resolveFirmware()
	return v, ok
}

// NeedsProbe reports whether the device lacks details a probe could supply
func (d *Device) NeedsProbe() bool {
	_, hasArch := d.Architecture()
	_, hasFirmware := d.Firmware()
	return !hasArch || !hasFirmware
}

// ProbeTarget returns what a probe needs to reach the device.
// Devices without a known port must not be contacted.
func (d *Device) ProbeTarget() (ProbeTarget, bool) {
	httpPort, hasHTTP := d.HTTPPort()
	httpsPort, hasHTTPS := d.HTTPSPort()
	if !hasHTTP && !hasHTTPS {
		return ProbeTarget{}, false
	}
	t := ProbeTarget{
		Fingerprint: d.fingerprint,
		Host:        d.Host(),
		HTTPPort:    httpPort,
		HTTPSPort:   httpsPort,
	}
	if c, ok := d.Credentials(); ok {
		t.Credentials = &c
	}
	return t, true
}

// ActiveDevice converts the record into something that can be activated
func (d *Device) ActiveDevice() (ActiveDevice, bool) {
	creds, ok := d.Credentials()
	if !ok {
		return ActiveDevice{}, false
	}
	a := ActiveDevice{Host: d.Host(), Credentials: creds}
	if p, ok := d.HTTPPort(); ok && p != 80 {
		a.HTTP = p
	}
	if p, ok := d.HTTPSPort(); ok && p != 443 {
		a.HTTPS = p
	}
	if p, ok := d.SSHPort(); ok && p != 22 {
		a.SSH = p
	}
	return a, true
}

// Priorities returns a tag per present source; lower tags are preferred
func (d *Device) Priorities() []uint8 {
	var tags []uint8
	if d.Has(SourceActive) {
		tags = append(tags, 0)
	}
	if d.Has(SourceInventory) {
		tags = append(tags, 1)
	}
	if d.Has(SourceLoan) {
		tags = append(tags, 2)
	}
	if d.Has(SourceDiscovered) {
		tags = append(tags, 3)
	}
	if c, ok := d.Catalog(); ok {
		switch c.Status {
		case StatusConnected:
			tags = append(tags, 4)
		case StatusOnLoan:
			tags = append(tags, 5)
		default:
			tags = append(tags, 6)
		}
	}
	return tags
}

// Priority returns the most preferred tag
func (d *Device) Priority() uint8 {
	tags := d.Priorities()
	lowest := tags[0]
	for _, t := range tags[1:] {
		if t < lowest {
			lowest = t
		}
	}
	return lowest
}
