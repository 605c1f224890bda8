// Package transport provides the HTTP plumbing used by the client.
package transport

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Doer executes HTTP requests. *http.Client satisfies it, as does any
// test double built on RoundTripFunc.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RoundTripFunc is an adapter to allow ordinary functions as HTTP
// round trippers.
type RoundTripFunc func(req *http.Request) (*http.Response, error)

// RoundTrip calls f(req).
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// httpConfig holds the tunables for NewHTTPClient.
type httpConfig struct {
	timeout             time.Duration
	maxIdleConns        int
	maxIdleConnsPerHost int
	maxConnsPerHost     int
	idleConnTimeout     time.Duration
	tlsHandshakeTimeout time.Duration
	transport           http.RoundTripper
}

// HTTPOption configures NewHTTPClient.
type HTTPOption func(*httpConfig)

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *httpConfig) {
		c.timeout = d
	}
}

// WithMaxIdleConns sets the connection pool size.
func WithMaxIdleConns(n int) HTTPOption {
	return func(c *httpConfig) {
		c.maxIdleConns = n
	}
}

// WithMaxIdleConnsPerHost sets the per-host idle connection limit.
func WithMaxIdleConnsPerHost(n int) HTTPOption {
	return func(c *httpConfig) {
		c.maxIdleConnsPerHost = n
	}
}

// WithIdleConnTimeout sets how long idle connections are kept open.
func WithIdleConnTimeout(d time.Duration) HTTPOption {
	return func(c *httpConfig) {
		c.idleConnTimeout = d
	}
}

// WithTransport provides a custom round tripper, overriding the pooled
// defaults entirely.
func WithTransport(rt http.RoundTripper) HTTPOption {
	return func(c *httpConfig) {
		c.transport = rt
	}
}

// NewHTTPClient creates an *http.Client tuned for long-lived API usage:
// pooled keep-alive connections, HTTP/2 when available, TLS 1.2 minimum.
func NewHTTPClient(opts ...HTTPOption) *http.Client {
	cfg := &httpConfig{
		timeout:             60 * time.Second,
		maxIdleConns:        128,
		maxIdleConnsPerHost: 32,
		maxConnsPerHost:     64,
		idleConnTimeout:     90 * time.Second,
		tlsHandshakeTimeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	transport := cfg.transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   15 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          cfg.maxIdleConns,
			MaxIdleConnsPerHost:   cfg.maxIdleConnsPerHost,
			MaxConnsPerHost:       cfg.maxConnsPerHost,
			IdleConnTimeout:       cfg.idleConnTimeout,
			TLSHandshakeTimeout:   cfg.tlsHandshakeTimeout,
			ExpectContinueTimeout: 1 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		}
	}

	return &http.Client{
		Timeout:   cfg.timeout,
		Transport: transport,
	}
}
