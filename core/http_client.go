package core

import (
	"crypto/tls"
	"net/http"
	"time"
)

// GetHTTPClient builds an HTTP client with the given timeout and the
// configured TLS verification policy.
//
// Provider calls carry their own timeout (exceeding it classifies as a
// network error for retry purposes), so every client handed to a provider
// adapter comes from here.
func GetHTTPClient(cfg *Config, timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
	}
	if cfg != nil && cfg.AllowSelfSignedCerts {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
