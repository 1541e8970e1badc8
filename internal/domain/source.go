package domain

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// SourceKind identifies where an observation of a device came from
type SourceKind int

const (
	SourceActive     SourceKind = iota // device activated on this machine
	SourceInventory                    // alias database entry
	SourceLoan                         // device on loan to the current user
	SourceDiscovered                   // device found on the LAN
	SourceCatalog                      // device listed by the loan service but not on loan

	numSources
)

// AllSources lists every source kind in precedence order
var AllSources = []SourceKind{SourceActive, SourceInventory, SourceLoan, SourceDiscovered, SourceCatalog}

var sourceNames = [numSources]string{"active", "inventory", "loan", "discovered", "catalog"}

func (k SourceKind) String() string {
	if k < 0 || k >= numSources {
		return "source(" + strconv.Itoa(int(k)) + ")"
	}
	return sourceNames[k]
}

// ParseSourceKind parses the name of a source kind
func ParseSourceKind(s string) (SourceKind, error) {
	for i, name := range sourceNames {
		if strings.EqualFold(s, name) {
			return SourceKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown source %q (expected one of %s)", s, strings.Join(sourceNames[:], ", "))
}

// Observation is a single source's partial view of a device
type Observation interface {
	Kind() SourceKind
	Fingerprint() string
	facts() facts
}

// facts holds the comparable fields an observation can supply. Zero values mean unknown.
type facts struct {
	host        string
	httpPort    uint16
	httpsPort   uint16
	credentials *Credentials
	model       string
	serial      string
	status      Status
}

// Ports holds the ports a device's services are remapped to. Zero means not remapped.
type Ports struct {
	HTTP  uint16 `json:"http_port,omitempty" yaml:"http_port,omitempty"`
	HTTPS uint16 `json:"https_port,omitempty" yaml:"https_port,omitempty"`
	SSH   uint16 `json:"ssh_port,omitempty" yaml:"ssh_port,omitempty"`
}

// EffectiveHTTP returns the port HTTP is reachable on
func (p Ports) EffectiveHTTP() uint16 { return orDefault(p.HTTP, 80) }

// EffectiveHTTPS returns the port HTTPS is reachable on
func (p Ports) EffectiveHTTPS() uint16 { return orDefault(p.HTTPS, 443) }

// EffectiveSSH returns the port SSH is reachable on
func (p Ports) EffectiveSSH() uint16 { return orDefault(p.SSH, 22) }

func orDefault(port, def uint16) uint16 {
	if port == 0 {
		return def
	}
	return port
}

// ActiveDevice is the device activated on this machine
type ActiveDevice struct {
	Host string `json:"host"`
	Ports
	Credentials
}

func (d ActiveDevice) Kind() SourceKind { return SourceActive }

func (d ActiveDevice) Fingerprint() string { return Fingerprint(d.Host, d.EffectiveHTTP()) }

func (d ActiveDevice) facts() facts {
	creds := d.Credentials
	return facts{
		host:        d.Host,
		httpPort:    d.EffectiveHTTP(),
		httpsPort:   d.EffectiveHTTPS(),
		credentials: &creds,
	}
}

// InventoryDevice is an entry in the local alias database
type InventoryDevice struct {
	Alias string `json:"-" yaml:"-"`
	Host  string `json:"host" yaml:"host"`
	Credentials `yaml:",inline"`
	Ports       `yaml:",inline"`
	Model       string `json:"model,omitempty" yaml:"model,omitempty"`
	LoanID      uint32 `json:"loan_id,omitempty" yaml:"loan_id,omitempty"`
}

func (d InventoryDevice) Kind() SourceKind { return SourceInventory }

func (d InventoryDevice) Fingerprint() string { return Fingerprint(d.Host, d.EffectiveHTTP()) }

func (d InventoryDevice) facts() facts {
	creds := d.Credentials
	return facts{
		host:        d.Host,
		httpPort:    d.EffectiveHTTP(),
		httpsPort:   d.EffectiveHTTPS(),
		credentials: &creds,
		model:       d.Model,
	}
}

// Active converts the entry into an activatable device
func (d InventoryDevice) Active() ActiveDevice {
	return ActiveDevice{Host: d.Host, Ports: d.Ports, Credentials: d.Credentials}
}

// DiscoveredDevice is a device found on the LAN. LAN devices are assumed not to be port-remapped.
type DiscoveredDevice struct {
	Host       string `json:"host"`
	HardwareID string `json:"hardware_id"`
}

func (d DiscoveredDevice) Kind() SourceKind { return SourceDiscovered }

func (d DiscoveredDevice) Fingerprint() string { return Fingerprint(d.Host, 80) }

func (d DiscoveredDevice) facts() facts {
	return facts{host: d.Host, httpPort: 80, httpsPort: 443, serial: d.HardwareID}
}

// Loan is a device on loan to the current user, reachable through the loan service gateway
type Loan struct {
	ID         uint32     `json:"id"`
	LoanableID uint16     `json:"loanable_id"`
	Host       string     `json:"host"`
	ExternalIP netip.Addr `json:"external_ip"`
	InternalIP string     `json:"internal_ip"`
	Credentials
	Model  string `json:"model"`
	Status Status `json:"status"`
}

func (l Loan) Kind() SourceKind { return SourceLoan }

func (l Loan) Fingerprint() string { return Fingerprint(l.Host, l.Ports().EffectiveHTTP()) }

// Ports returns the gateway ports forwarded to the device
func (l Loan) Ports() Ports { return GatewayPorts(l.ExternalIP) }

// Alias returns the inventory alias used for imported loans
func (l Loan) Alias() string { return fmt.Sprintf("vlt-%d", l.LoanableID) }

// InternalPort returns the port part of the internal address
func (l Loan) InternalPort() (uint16, error) {
	_, port, err := net.SplitHostPort(l.InternalIP)
	if err != nil {
		return 0, fmt.Errorf("internal ip %q: %w", l.InternalIP, err)
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("internal ip %q: invalid port: %w", l.InternalIP, err)
	}
	return uint16(p), nil
}

// Inventory converts the loan into an alias database entry
func (l Loan) Inventory() InventoryDevice {
	return InventoryDevice{
		Alias:       l.Alias(),
		Host:        l.Host,
		Credentials: l.Credentials,
		Ports:       l.Ports(),
		Model:       l.Model,
		LoanID:      l.ID,
	}
}

func (l Loan) facts() facts {
	creds := l.Credentials
	ports := l.Ports()
	return facts{
		host:        l.Host,
		httpPort:    ports.EffectiveHTTP(),
		httpsPort:   ports.EffectiveHTTPS(),
		credentials: &creds,
		model:       l.Model,
		status:      l.Status,
	}
}

// CatalogDevice is a device listed by the loan service. It may be in use by someone else
// and is never contacted, so it contributes no ports.
type CatalogDevice struct {
	ID           uint16       `json:"id"`
	Host         string       `json:"host"`
	ExternalIP   netip.Addr   `json:"external_ip"`
	Model        string       `json:"model"`
	Architecture Architecture `json:"architecture"`
	Firmware     string       `json:"firmware_version"`
	Status       Status       `json:"status"`
}

func (d CatalogDevice) Kind() SourceKind { return SourceCatalog }

func (d CatalogDevice) Fingerprint() string {
	return Fingerprint(d.Host, GatewayPorts(d.ExternalIP).EffectiveHTTP())
}

func (d CatalogDevice) facts() facts {
	return facts{host: d.Host, model: d.Model, status: d.Status}
}
