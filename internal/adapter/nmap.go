package adapter

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
	"github.com/sirupsen/logrus"

	"deviceinventory/internal/domain"
)

// NmapDiscoverer finds devices on the local network with an nmap host sweep.
// MAC addresses are only reported for hosts on a directly attached segment.
type NmapDiscoverer struct {
	targets           []string
	timeout           time.Duration
	portRange         string
	skipHostDiscovery bool
	vendor            string
	logger            *logrus.Logger
}

// NewNmapDiscoverer creates a new nmap-based discoverer
// targets: list of CIDR ranges or individual IPs to sweep
func NewNmapDiscoverer(targets []string, opts ...NmapOption) *NmapDiscoverer {
	n := &NmapDiscoverer{
		targets: targets,
		timeout: 2 * time.Minute,
		logger:  logrus.New(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Name returns the discoverer identifier
func (n *NmapDiscoverer) Name() string {
	return "nmap"
}

// Discover sweeps every target and returns one observation per host that is up and has a MAC
func (n *NmapDiscoverer) Discover(ctx context.Context) ([]domain.DiscoveredDevice, error) {
	if len(n.targets) == 0 {
		return nil, fmt.Errorf("nmap: no targets configured")
	}
	targets, err := expandTargets(n.targets)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	opts := []nmap.Option{nmap.WithTargets(targets...)}
	if n.portRange != "" {
		opts = append(opts, nmap.WithPorts(n.portRange))
	} else {
		opts = append(opts, nmap.WithPingScan())
	}
	if n.skipHostDiscovery {
		opts = append(opts, nmap.WithSkipHostDiscovery())
	}

	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	n.logger.Debugf("nmap: scanning %v", targets)
	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if warnings != nil && len(*warnings) > 0 {
		n.logger.Debugf("nmap: warnings: %v", *warnings)
	}

	return n.processResults(result)
}

// processResults converts scan results into discovered observations
func (n *NmapDiscoverer) processResults(result *nmap.Run) ([]domain.DiscoveredDevice, error) {
	if result == nil {
		return nil, fmt.Errorf("nil scan result")
	}

	found := make(map[string]domain.DiscoveredDevice)
	for _, host := range result.Hosts {
		if host.Status.State != "up" {
			continue
		}

		var ip, mac, vendor string
		for _, addr := range host.Addresses {
			switch addr.AddrType {
			case "ipv4":
				ip = addr.Addr
			case "mac":
				mac = addr.Addr
				vendor = addr.Vendor
			}
		}
		if ip == "" {
			continue
		}
		if mac == "" {
			n.logger.Debugf("nmap: skipping %s: no mac address reported", ip)
			continue
		}
		if n.vendor != "" && !strings.Contains(strings.ToLower(vendor), strings.ToLower(n.vendor)) {
			n.logger.Debugf("nmap: skipping %s: vendor %q", ip, vendor)
			continue
		}

		hwid, err := domain.ParseHardwareID(mac)
		if err != nil {
			n.logger.Warnf("nmap: skipping %s: %v", ip, err)
			continue
		}
		found[ip] = domain.DiscoveredDevice{Host: ip, HardwareID: hwid}
	}

	devices := make([]domain.DiscoveredDevice, 0, len(found))
	for _, d := range found {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Host < devices[j].Host })
	n.logger.Debugf("nmap: found %d devices", len(devices))
	return devices, nil
}

// expandTargets validates CIDR targets, leaving expansion to nmap
func expandTargets(targets []string) ([]string, error) {
	var expanded []string
	for _, target := range targets {
		if strings.Contains(target, "/") {
			_, ipNet, err := net.ParseCIDR(target)
			if err != nil {
				return nil, fmt.Errorf("invalid CIDR %s: %w", target, err)
			}
			expanded = append(expanded, ipNet.String())
		} else {
			expanded = append(expanded, target)
		}
	}
	return expanded, nil
}
