package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deviceinventory/internal/domain"
)

type staticCookie string

func (c staticCookie) ReadCookie(context.Context) (string, bool, error) {
	return string(c), c != "", nil
}

const loansBody = `{
  "success": true,
  "data": [
    {
      "id": 4711,
      "loanable": {"external_ip": "10.1.2.51", "internal_ip": "172.25.1.51:12051", "id": 51, "model": "M3085-V"},
      "username": "VLTuser",
      "password": "nYy3cuvX",
      "status": 3,
      "selected_firmware": "11.5.23"
    },
    {
      "id": 4712,
      "loanable": {"external_ip": "not-an-ip", "internal_ip": "", "id": 52, "model": "P1465-LE"},
      "username": "VLTuser",
      "password": "x",
      "status": 3
    }
  ],
  "meta": []
}`

const devicesBody = `{
  "success": true,
  "data": [
    {"architecture": "aarch64", "external_ip": "10.1.1.95", "firmware_version": "11.8.61", "id": 95, "model": "Q1656", "status": 1},
    {"architecture": "armv7hf", "external_ip": "10.1.0.7", "firmware_version": "LTS-2020", "id": 7, "model": "M1065-L", "status": 3}
  ]
}`

func newLoanServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/user/loans", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != "session=abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, loansBody)
	})
	mux.HandleFunc("/user/devices", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, devicesBody)
	})
	mux.HandleFunc("/user/loans/4711/cancel", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		io.WriteString(w, `{"success": true}`)
	})
	mux.HandleFunc("/user/loans/1/cancel", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success": false}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestLoans(t *testing.T) {
	srv := newLoanServer(t)
	client := NewLoanClient(srv.URL, staticCookie("session=abc"), WithLoanLogger(quietLogger()))

	loans, err := client.Loans(context.Background())
	require.NoError(t, err)
	require.Len(t, loans, 1, "loan with invalid external ip is skipped")

	loan := loans[0]
	assert.Equal(t, uint32(4711), loan.ID)
	assert.Equal(t, domain.DefaultGateway, loan.Host)
	assert.Equal(t, "VLTuser", loan.Username)
	assert.Equal(t, "nYy3cuvX", loan.Password.Reveal())
	assert.Equal(t, domain.StatusOnLoan, loan.Status)
	assert.Equal(t, "195.60.68.14:12051", loan.Fingerprint())
	assert.Equal(t, "vlt-51", loan.Alias())
}

func TestLoansCustomGateway(t *testing.T) {
	srv := newLoanServer(t)
	client := NewLoanClient(srv.URL+"/", staticCookie("session=abc"), WithGateway("gw.example"), WithLoanLogger(quietLogger()))

	loans, err := client.Loans(context.Background())
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, "gw.example:12051", loans[0].Fingerprint())
}

func TestCatalog(t *testing.T) {
	srv := newLoanServer(t)
	client := NewLoanClient(srv.URL, staticCookie("session=abc"), WithLoanLogger(quietLogger()))

	devices, err := client.Catalog(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, domain.ArchAarch64, devices[0].Architecture)
	assert.Equal(t, domain.StatusConnected, devices[0].Status)
	assert.Equal(t, "195.60.68.14:11095", devices[0].Fingerprint())

	assert.Equal(t, "LTS-2020", devices[1].Firmware, "uncoercible firmware is kept raw")
}

func TestLoanClientWithoutSession(t *testing.T) {
	srv := newLoanServer(t)
	client := NewLoanClient(srv.URL, staticCookie(""), WithLoanLogger(quietLogger()))

	_, err := client.Loans(context.Background())
	assert.True(t, errors.Is(err, ErrNoSession), "got %v", err)
}

func TestLoanClientExpiredSession(t *testing.T) {
	srv := newLoanServer(t)
	client := NewLoanClient(srv.URL, staticCookie("session=old"), WithLoanLogger(quietLogger()))

	_, err := client.Loans(context.Background())
	assert.True(t, errors.Is(err, ErrUnauthorized), "got %v", err)
}

func TestCancelLoan(t *testing.T) {
	srv := newLoanServer(t)
	client := NewLoanClient(srv.URL, staticCookie("session=abc"), WithLoanLogger(quietLogger()))

	assert.NoError(t, client.CancelLoan(context.Background(), 4711))

	err := client.CancelLoan(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not successful")
}

func TestCreateLoan(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/user/loans" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "session=abc", r.Header.Get("Cookie"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"success": true, "data": {"id": 4713, "loanable": {"id": 95, "internal_ip": "172.25.1.95:11095", "model": "Q1656"}, "username": "VLTuser", "password": "p"}}`)
	}))
	t.Cleanup(srv.Close)

	client := NewLoanClient(srv.URL, staticCookie("session=abc"), WithLoanLogger(quietLogger()))
	client.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }

	id, err := client.CreateLoan(context.Background(), 95, "11.8.61")
	require.NoError(t, err)
	assert.Equal(t, uint32(4713), id)

	assert.Equal(t, "ACAP test", got["reason"])
	assert.Equal(t, "2024-03-01T09:00:00Z", got["loan_start"])
	assert.Equal(t, "2024-03-01T17:00:00Z", got["loan_end"])
	assert.Equal(t, float64(95), got["loanable_id"])
	assert.Equal(t, "11.8.61", got["selected_firmware"])
	assert.Equal(t, "hours", got["time_option"])
}

func TestCreateLoanRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success": false, "meta": ["device is already on loan"]}`)
	}))
	t.Cleanup(srv.Close)

	client := NewLoanClient(srv.URL, staticCookie("session=abc"), WithLoanLogger(quietLogger()))
	_, err := client.CreateLoan(context.Background(), 7, "10.12.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create loan of device 7")
}
