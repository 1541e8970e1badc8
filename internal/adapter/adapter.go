package adapter

import (
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"
)

var (
	// ErrNoSession is returned by the loan service client when no session cookie is stored
	ErrNoSession = errors.New("no loan service session")
	// ErrNotReady is returned when no endpoint of a device answers the readiness check
	ErrNotReady = errors.New("device not reachable")
	// ErrUnauthorized is returned when a remote rejects the supplied credentials
	ErrUnauthorized = errors.New("unauthorized")
)

// newDeviceClient returns an HTTP client for talking to devices, which serve self-signed certificates
func newDeviceClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: 5 * time.Second,
			}).DialContext,
			TLSClientConfig:     &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
			TLSHandshakeTimeout: 5 * time.Second,
			MaxIdleConnsPerHost: 2,
		},
	}
}
