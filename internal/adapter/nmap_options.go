package adapter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// NmapOption is a functional option for configuring NmapDiscoverer
type NmapOption func(*NmapDiscoverer)

// WithTimeout sets the timeout for the entire nmap sweep
func WithTimeout(d time.Duration) NmapOption {
	return func(n *NmapDiscoverer) {
		n.timeout = d
	}
}

// WithPortRange probes the given ports instead of a plain ping sweep.
// Format: "80,443,8080" or "1-1000" or "22,80-443,8080". An invalid range is ignored;
// check it with ParsePortRange first.
func WithPortRange(ports string) NmapOption {
	return func(n *NmapDiscoverer) {
		if validated, err := ParsePortRange(ports); err == nil {
			n.portRange = validated
		}
	}
}

// WithSkipHostDiscovery sets whether to treat all hosts as online (-Pn)
func WithSkipHostDiscovery(skip bool) NmapOption {
	return func(n *NmapDiscoverer) {
		n.skipHostDiscovery = skip
	}
}

// WithVendor keeps only hosts whose MAC vendor contains s, case-insensitively
func WithVendor(s string) NmapOption {
	return func(n *NmapDiscoverer) {
		n.vendor = s
	}
}

// WithNmapLogger sets the logger
func WithNmapLogger(l *logrus.Logger) NmapOption {
	return func(n *NmapDiscoverer) {
		n.logger = l
	}
}

// ParsePortRange validates a port range string in nmap format
func ParsePortRange(portRange string) (string, error) {
	for _, part := range strings.Split(portRange, ",") {
		part = strings.TrimSpace(part)
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil || start < 1 || start > 65535 {
				return "", fmt.Errorf("invalid port number: %s", lo)
			}
			end, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || end < 1 || end > 65535 || end < start {
				return "", fmt.Errorf("invalid port number: %s", hi)
			}
			continue
		}
		port, err := strconv.Atoi(part)
		if err != nil || port < 1 || port > 65535 {
			return "", fmt.Errorf("invalid port number: %s", part)
		}
	}
	return portRange, nil
}
