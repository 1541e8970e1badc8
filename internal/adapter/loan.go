package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"deviceinventory/internal/domain"
)

const (
	loanReason   = "ACAP test"
	loanDuration = 8 * time.Hour
)

// CookieStore provides the loan service session
type CookieStore interface {
	ReadCookie(ctx context.Context) (string, bool, error)
}

// LoanClient talks to the loan service on behalf of the logged in user
type LoanClient struct {
	baseURL string
	gateway string
	cookies CookieStore
	client  *http.Client
	logger  *logrus.Logger
	now     func() time.Time
}

// LoanOption is a functional option for configuring LoanClient
type LoanOption func(*LoanClient)

// WithGateway sets the address loaned devices are reached through
func WithGateway(host string) LoanOption {
	return func(c *LoanClient) {
		c.gateway = host
	}
}

// WithLoanTimeout sets the timeout for each request to the loan service
func WithLoanTimeout(d time.Duration) LoanOption {
	return func(c *LoanClient) {
		c.client.Timeout = d
	}
}

// WithLoanLogger sets the logger
func WithLoanLogger(l *logrus.Logger) LoanOption {
	return func(c *LoanClient) {
		c.logger = l
	}
}

// NewLoanClient creates a client for the loan service API rooted at baseURL
func NewLoanClient(baseURL string, cookies CookieStore, opts ...LoanOption) *LoanClient {
	c := &LoanClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		gateway: domain.DefaultGateway,
		cookies: cookies,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logrus.New(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    []string        `json:"meta,omitempty"`
}

type loanableResponse struct {
	ExternalIP string `json:"external_ip"`
	InternalIP string `json:"internal_ip"`
	ID         uint16 `json:"id"`
	Model      string `json:"model"`
}

type loanResponse struct {
	ID               uint32           `json:"id"`
	Loanable         loanableResponse `json:"loanable"`
	Username         string           `json:"username"`
	Password         string           `json:"password"`
	Status           uint8            `json:"status"`
	SelectedFirmware string           `json:"selected_firmware"`
}

type createLoanRequest struct {
	Reason           string `json:"reason"`
	LoanStart        string `json:"loan_start"`
	LoanEnd          string `json:"loan_end"`
	LoanableID       uint16 `json:"loanable_id"`
	SelectedFirmware string `json:"selected_firmware"`
	TimeOption       string `json:"time_option"`
}

type newLoanResponse struct {
	ID       uint32 `json:"id"`
	Loanable struct {
		ID         uint16 `json:"id"`
		InternalIP string `json:"internal_ip"`
		Model      string `json:"model"`
	} `json:"loanable"`
}

type deviceResponse struct {
	Architecture    string `json:"architecture"`
	ExternalIP      string `json:"external_ip"`
	FirmwareVersion string `json:"firmware_version"`
	ID              uint16 `json:"id"`
	Model           string `json:"model"`
	Status          uint8  `json:"status"`
}

// Loans fetches the ongoing loans of the current user
func (c *LoanClient) Loans(ctx context.Context) ([]domain.Loan, error) {
	var raw []loanResponse
	if err := c.do(ctx, http.MethodGet, "user/loans", nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch loans: %w", err)
	}

	loans := make([]domain.Loan, 0, len(raw))
	for _, r := range raw {
		ip, err := netip.ParseAddr(r.Loanable.ExternalIP)
		if err != nil || !ip.Unmap().Is4() {
			c.logger.Warnf("Skipping loan %d: invalid external ip %q", r.ID, r.Loanable.ExternalIP)
			continue
		}
		loan := domain.Loan{
			ID:         r.ID,
			LoanableID: r.Loanable.ID,
			Host:       c.gateway,
			ExternalIP: ip,
			InternalIP: r.Loanable.InternalIP,
			Credentials: domain.Credentials{
				Username: r.Username,
				Password: domain.Password(r.Password),
			},
			Model:  r.Loanable.Model,
			Status: domain.Status(r.Status),
		}
		if port, err := loan.InternalPort(); err != nil {
			c.logger.Debugf("Loan %d: %v", r.ID, err)
		} else if want := loan.Ports().HTTP; port != want {
			c.logger.Warnf("Loan %d: internal port %d does not match gateway port %d", r.ID, port, want)
		}
		loans = append(loans, loan)
	}
	c.logger.Debugf("Fetched %d loans", len(loans))
	return loans, nil
}

// Catalog fetches the devices listed by the loan service, excluding those on loan to the current user
func (c *LoanClient) Catalog(ctx context.Context) ([]domain.CatalogDevice, error) {
	var raw []deviceResponse
	if err := c.do(ctx, http.MethodGet, "user/devices", nil, &raw); err != nil {
		return nil, fmt.Errorf("fetch devices: %w", err)
	}

	devices := make([]domain.CatalogDevice, 0, len(raw))
	for _, r := range raw {
		ip, err := netip.ParseAddr(r.ExternalIP)
		if err != nil || !ip.Unmap().Is4() {
			c.logger.Warnf("Skipping device %d: invalid external ip %q", r.ID, r.ExternalIP)
			continue
		}
		d := domain.CatalogDevice{
			ID:         r.ID,
			Host:       c.gateway,
			ExternalIP: ip,
			Model:      r.Model,
			Firmware:   r.FirmwareVersion,
			Status:     domain.Status(r.Status),
		}
		if r.Architecture != "" {
			arch, err := domain.ParseArchitecture(r.Architecture)
			if err != nil {
				c.logger.Warnf("Device %d: %v", r.ID, err)
			}
			d.Architecture = arch
		}
		if r.FirmwareVersion != "" {
			if _, err := domain.CoerceFirmware(r.FirmwareVersion); err != nil {
				c.logger.Warnf("Device %d: %v", r.ID, err)
			}
		}
		devices = append(devices, d)
	}
	c.logger.Debugf("Fetched %d catalog devices", len(devices))
	return devices, nil
}

// CancelLoan returns a loaned device
func (c *LoanClient) CancelLoan(ctx context.Context, loanID uint32) error {
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("user/loans/%d/cancel", loanID), nil, nil); err != nil {
		return fmt.Errorf("cancel loan %d: %w", loanID, err)
	}
	return nil
}

// CreateLoan borrows a catalog device for loanDuration and returns the new loan's id
func (c *LoanClient) CreateLoan(ctx context.Context, loanableID uint16, firmware string) (uint32, error) {
	start := c.now().UTC()
	req := createLoanRequest{
		Reason:           loanReason,
		LoanStart:        start.Format(time.RFC3339),
		LoanEnd:          start.Add(loanDuration).Format(time.RFC3339),
		LoanableID:       loanableID,
		SelectedFirmware: firmware,
		TimeOption:       "hours",
	}
	var created newLoanResponse
	if err := c.do(ctx, http.MethodPost, "user/loans", req, &created); err != nil {
		return 0, fmt.Errorf("create loan of device %d: %w", loanableID, err)
	}
	c.logger.Infof("Created loan %d of device %d until %s", created.ID, created.Loanable.ID, req.LoanEnd)
	return created.ID, nil
}

// do sends a request with the stored session and decodes the data member of the envelope into out.
// A non-nil body is sent as JSON.
func (c *LoanClient) do(ctx context.Context, method, path string, body, out any) error {
	cookie, ok, err := c.cookies.ReadCookie(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return ErrNoSession
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	url := c.baseURL + "/" + path
	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Cookie", cookie)
	req.Header.Set("Accept", "application/json")

	c.logger.Tracef("%s %s", method, url)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes*8))
	if err != nil {
		return fmt.Errorf("read %s: %w", url, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w (session may have expired)", method, url, ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%s %s: unexpected status %s", method, url, resp.Status)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	if !env.Success {
		return fmt.Errorf("%s %s: not successful", method, url)
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%s %s: response was a success, but data was missing", method, url)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", url, err)
	}
	return nil
}
