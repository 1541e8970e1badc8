package adapter

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"

	"deviceinventory/internal/domain"
)

var mdnsGroup = &net.UDPAddr{IP: net.IPv4(224, 0, 0, 251), Port: 5353}

const macAddressKey = "macaddress="

// MDNSDiscoverer finds devices announcing Axis service types on the local network
type MDNSDiscoverer struct {
	services []string
	timeout  time.Duration
	iface    string
	logger   *logrus.Logger
}

// MDNSOption is a functional option for configuring MDNSDiscoverer
type MDNSOption func(*MDNSDiscoverer)

// WithMDNSTimeout sets how long to collect responses
func WithMDNSTimeout(d time.Duration) MDNSOption {
	return func(m *MDNSDiscoverer) {
		m.timeout = d
	}
}

// WithMDNSInterface sends queries on the named interface instead of the system default
func WithMDNSInterface(name string) MDNSOption {
	return func(m *MDNSDiscoverer) {
		m.iface = name
	}
}

// WithMDNSLogger sets the logger
func WithMDNSLogger(l *logrus.Logger) MDNSOption {
	return func(m *MDNSDiscoverer) {
		m.logger = l
	}
}

// NewMDNSDiscoverer creates a discoverer querying the given service types
func NewMDNSDiscoverer(services []string, opts ...MDNSOption) *MDNSDiscoverer {
	m := &MDNSDiscoverer{
		services: services,
		timeout:  2 * time.Second,
		logger:   logrus.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the discoverer identifier
func (m *MDNSDiscoverer) Name() string {
	return "mdns"
}

// Discover sends one-shot queries from an ephemeral port and collects the unicast replies
// until the timeout or ctx expires.
func (m *MDNSDiscoverer) Discover(ctx context.Context) ([]domain.DiscoveredDevice, error) {
	query, err := m.buildQuery()
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero})
	if err != nil {
		return nil, fmt.Errorf("open mdns socket: %w", err)
	}
	defer conn.Close()

	pc := ipv4.NewPacketConn(conn)
	if err := pc.SetMulticastTTL(255); err != nil {
		m.logger.Debugf("mdns: set multicast ttl: %v", err)
	}
	if m.iface != "" {
		ifi, err := net.InterfaceByName(m.iface)
		if err != nil {
			return nil, fmt.Errorf("mdns interface %s: %w", m.iface, err)
		}
		if err := pc.SetMulticastInterface(ifi); err != nil {
			return nil, fmt.Errorf("mdns interface %s: %w", m.iface, err)
		}
	}

	deadline := time.Now().Add(m.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("mdns: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { conn.SetReadDeadline(time.Now()) })
	defer stop()

	if _, err := pc.WriteTo(query, nil, mdnsGroup); err != nil {
		return nil, fmt.Errorf("send mdns query: %w", err)
	}
	m.logger.Debugf("mdns: queried %v, collecting responses for %s", m.services, time.Until(deadline).Round(time.Millisecond))

	found := make(map[string]domain.DiscoveredDevice)
	buf := make([]byte, 9000)
	for {
		n, src, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				break
			}
			return nil, fmt.Errorf("read mdns response: %w", err)
		}
		var msg layers.DNS
		if err := msg.DecodeFromBytes(buf[:n], gopacket.NilDecodeFeedback); err != nil {
			m.logger.Debugf("mdns: undecodable packet from %s: %v", src, err)
			continue
		}
		for _, d := range m.parseResponse(&msg) {
			found[d.Host] = d
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	devices := make([]domain.DiscoveredDevice, 0, len(found))
	for _, d := range found {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Host < devices[j].Host })
	m.logger.Debugf("mdns: found %d devices", len(devices))
	return devices, nil
}

// buildQuery serializes one PTR question per service type
func (m *MDNSDiscoverer) buildQuery() ([]byte, error) {
	msg := &layers.DNS{
		ID:     uint16(rand.N(1 << 16)),
		OpCode: layers.DNSOpCodeQuery,
	}
	for _, s := range m.services {
		msg.Questions = append(msg.Questions, layers.DNSQuestion{
			Name:  []byte(trimDot(s)),
			Type:  layers.DNSTypePTR,
			Class: layers.DNSClassIN,
		})
	}
	buf := gopacket.NewSerializeBuffer()
	if err := msg.SerializeTo(buf, gopacket.SerializeOptions{FixLengths: true}); err != nil {
		return nil, fmt.Errorf("build mdns query: %w", err)
	}
	return buf.Bytes(), nil
}

// parseResponse extracts one observation per announced service instance that names both a
// host and a MAC address
func (m *MDNSDiscoverer) parseResponse(msg *layers.DNS) []domain.DiscoveredDevice {
	records := make([]layers.DNSResourceRecord, 0, len(msg.Answers)+len(msg.Additionals))
	records = append(records, msg.Answers...)
	records = append(records, msg.Additionals...)

	var instances []string
	seen := make(map[string]bool)
	targets := make(map[string]string)
	macs := make(map[string]string)
	addrs := make(map[string]string)

	addInstance := func(name string) {
		if !seen[name] {
			seen[name] = true
			instances = append(instances, name)
		}
	}

	for _, rr := range records {
		name := strings.ToLower(trimDot(string(rr.Name)))
		switch rr.Type {
		case layers.DNSTypePTR:
			if m.isService(name) {
				addInstance(strings.ToLower(trimDot(string(rr.PTR))))
			}
		case layers.DNSTypeSRV:
			targets[name] = trimDot(string(rr.SRV.Name))
			if m.isInstance(name) {
				addInstance(name)
			}
		case layers.DNSTypeTXT:
			for _, txt := range rr.TXTs {
				if v, ok := cutPrefixFold(string(txt), macAddressKey); ok {
					macs[name] = v
				}
			}
		case layers.DNSTypeA:
			if ip := rr.IP.To4(); ip != nil {
				addrs[strings.ToLower(trimDot(string(rr.Name)))] = ip.String()
			}
		}
	}

	var devices []domain.DiscoveredDevice
	for _, inst := range instances {
		target := targets[inst]
		if target == "" {
			m.logger.Warnf("mdns: skipping %s: response names no host", inst)
			continue
		}
		host := target
		if ip, ok := addrs[strings.ToLower(target)]; ok {
			host = ip
		}
		raw, ok := macs[inst]
		if !ok {
			m.logger.Warnf("mdns: skipping %s: response has no %s", inst, strings.TrimSuffix(macAddressKey, "="))
			continue
		}
		hwid, err := domain.ParseHardwareID(raw)
		if err != nil {
			m.logger.Warnf("mdns: skipping %s: %v", inst, err)
			continue
		}
		devices = append(devices, domain.DiscoveredDevice{Host: host, HardwareID: hwid})
	}
	return devices
}

func (m *MDNSDiscoverer) isService(name string) bool {
	for _, s := range m.services {
		if strings.EqualFold(name, trimDot(s)) {
			return true
		}
	}
	return false
}

func (m *MDNSDiscoverer) isInstance(name string) bool {
	for _, s := range m.services {
		if strings.HasSuffix(name, "."+strings.ToLower(trimDot(s))) {
			return true
		}
	}
	return false
}

func trimDot(s string) string {
	return strings.TrimSuffix(s, ".")
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}
