package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"deviceinventory/internal/domain"
)

const (
	systemReadyPath     = "axis-cgi/systemready.cgi"
	basicDeviceInfoPath = "axis-cgi/basicdeviceinfo.cgi"

	maxResponseBytes = 1 << 20
)

// VapixProber reads device details from a device's own management API
type VapixProber struct {
	client *http.Client
	logger *logrus.Logger
}

// VapixOption is a functional option for configuring VapixProber
type VapixOption func(*VapixProber)

// WithHTTPClient replaces the HTTP client used to reach devices
func WithHTTPClient(c *http.Client) VapixOption {
	return func(p *VapixProber) {
		p.client = c
	}
}

// WithVapixLogger sets the logger
func WithVapixLogger(l *logrus.Logger) VapixOption {
	return func(p *VapixProber) {
		p.logger = l
	}
}

// NewVapixProber creates a prober that accepts self-signed device certificates
func NewVapixProber(opts ...VapixOption) *VapixProber {
	p := &VapixProber{
		client: newDeviceClient(),
		logger: logrus.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type jsonRPCRequest struct {
	APIVersion string `json:"apiVersion"`
	Method     string `json:"method"`
	Params     any    `json:"params,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type jsonRPCResponse[T any] struct {
	APIVersion string        `json:"apiVersion"`
	Method     string        `json:"method"`
	Data       *T            `json:"data"`
	Error      *jsonRPCError `json:"error"`
}

type systemReadyData struct {
	SystemReady string `json:"systemready"`
	NeedSetup   string `json:"needsetup"`
	Uptime      string `json:"uptime,omitempty"`
}

type propertiesData struct {
	PropertyList properties `json:"propertyList"`
}

// properties is the union of the unrestricted and restricted basic device information
type properties struct {
	Architecture  string `json:"Architecture,omitempty"`
	Brand         string `json:"Brand"`
	BuildDate     string `json:"BuildDate"`
	HardwareID    string `json:"HardwareID"`
	ProdFullName  string `json:"ProdFullName"`
	ProdNbr       string `json:"ProdNbr"`
	ProdShortName string `json:"ProdShortName"`
	ProdType      string `json:"ProdType"`
	ProdVariant   string `json:"ProdVariant"`
	SerialNumber  string `json:"SerialNumber"`
	Soc           string `json:"Soc,omitempty"`
	Version       string `json:"Version"`
	WebURL        string `json:"WebURL"`
}

// Probe reads model, serial, firmware and, with credentials, architecture from a device.
// HTTPS is tried before HTTP. The caller bounds the call with ctx.
func (p *VapixProber) Probe(ctx context.Context, target domain.ProbeTarget) (*domain.ProbeResult, error) {
	base, err := p.detectScheme(ctx, target)
	if err != nil {
		return nil, err
	}

	var info propertiesData
	req := jsonRPCRequest{APIVersion: "1.0", Method: "getAllUnrestrictedProperties"}
	if err := p.call(ctx, base, basicDeviceInfoPath, req, target.Credentials, &info); err != nil {
		return nil, fmt.Errorf("basic device info: %w", err)
	}

	props := info.PropertyList
	result := &domain.ProbeResult{
		Model:  props.ProdShortName,
		Serial: strings.ToUpper(props.SerialNumber),
	}
	if props.Version != "" {
		fw, err := domain.CoerceFirmware(props.Version)
		if err != nil {
			return nil, fmt.Errorf("basic device info: %w", err)
		}
		result.Firmware = fw
	}

	if target.Credentials == nil {
		p.logger.Debugf("%s: no credentials, architecture stays unknown", target.Fingerprint)
		return result, nil
	}

	var restricted propertiesData
	req = jsonRPCRequest{APIVersion: "1.0", Method: "getAllProperties"}
	if err := p.call(ctx, base, basicDeviceInfoPath, req, target.Credentials, &restricted); err != nil {
		p.logger.Debugf("%s: restricted properties: %v", target.Fingerprint, err)
		return result, nil
	}
	if a := restricted.PropertyList.Architecture; a != "" {
		arch, err := domain.ParseArchitecture(a)
		if err != nil {
			return nil, fmt.Errorf("basic device info: %w", err)
		}
		result.Architecture = arch
	}

	return result, nil
}

// detectScheme returns the base URL of the first endpoint that answers the readiness check
func (p *VapixProber) detectScheme(ctx context.Context, target domain.ProbeTarget) (string, error) {
	var candidates []string
	if target.HTTPSPort != 0 {
		candidates = append(candidates, baseURL("https", target.Host, target.HTTPSPort))
	}
	if target.HTTPPort != 0 {
		candidates = append(candidates, baseURL("http", target.Host, target.HTTPPort))
	}

	var errs []string
	for _, base := range candidates {
		var ready systemReadyData
		req := jsonRPCRequest{APIVersion: "1", Method: "systemready", Params: map[string]int{"timeout": 1}}
		err := p.call(ctx, base, systemReadyPath, req, nil, &ready)
		if err == nil {
			if ready.SystemReady != "yes" {
				p.logger.Debugf("%s: answered but reports systemready=%q", base, ready.SystemReady)
			}
			p.logger.Tracef("%s: using %s", target.Fingerprint, base)
			return base, nil
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrNotReady, target.Fingerprint, ctx.Err())
		}
		errs = append(errs, err.Error())
	}
	return "", fmt.Errorf("%w: %s: %s", ErrNotReady, target.Fingerprint, strings.Join(errs, "; "))
}

// call posts a JSON-RPC request and decodes the data member of the response into out
func (p *VapixProber) call(ctx context.Context, base, path string, req jsonRPCRequest, creds *domain.Credentials, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", req.Method, err)
	}

	url := base + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if creds != nil {
		httpReq.SetBasicAuth(creds.Username, creds.Password.Reveal())
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s: %w", url, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("post %s: %w", url, ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("post %s: unexpected status %s", url, resp.Status)
	}

	var envelope jsonRPCResponse[json.RawMessage]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode %s: %w", req.Method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%s: error %d: %s", req.Method, envelope.Error.Code, envelope.Error.Message)
	}
	if envelope.Data == nil {
		return fmt.Errorf("%s: response has no data", req.Method)
	}
	if err := json.Unmarshal(*envelope.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", req.Method, err)
	}
	return nil
}

func baseURL(scheme, host string, port uint16) string {
	return scheme + "://" + net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10)) + "/"
}
