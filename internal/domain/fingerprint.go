package domain

import (
	"net"
	"net/netip"
	"strconv"
)

// DefaultGateway is the loan service address that forwards ports to loaned devices
const DefaultGateway = "195.60.68.14"

// Port bands on the gateway, offset by the suffix encoded in a device's external IP
const (
	gatewayHTTPBase  = 10000
	gatewaySSHBase   = 20000
	gatewayHTTPSBase = 40000
)

// Fingerprint returns the identity key of a device reachable at host with HTTP on port.
// Observations of the same physical device from any source share a fingerprint.
func Fingerprint(host string, httpPort uint16) string {
	return net.JoinHostPort(host, strconv.FormatUint(uint64(httpPort), 10))
}

// PortSuffix returns the offset the gateway adds to each port band for a device,
// 1000 times the third octet plus the fourth.
func PortSuffix(externalIP netip.Addr) (uint16, bool) {
	ip := externalIP.Unmap()
	if !ip.Is4() {
		return 0, false
	}
	o := ip.As4()
	return 1000*uint16(o[2]) + uint16(o[3]), true
}

// GatewayPorts returns the gateway ports forwarded to a device with the given external IP.
// Addresses that are not IPv4 yield no remapping.
func GatewayPorts(externalIP netip.Addr) Ports {
	suffix, ok := PortSuffix(externalIP)
	if !ok {
		return Ports{}
	}
	return Ports{
		HTTP:  gatewayHTTPBase + suffix,
		HTTPS: gatewayHTTPSBase + suffix,
		SSH:   gatewaySSHBase + suffix,
	}
}
