// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package httpx builds the HTTP clients every API surface shares: one place
// for TLS policy, timeouts, connection pooling, cookie jars, and default
// headers.
package httpx

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	// ErrInvalidTLSConfig is returned when the TLS mode cannot be realised,
	// e.g. an unreadable CA bundle.
	ErrInvalidTLSConfig = errors.New("httpx: invalid TLS configuration")

	// ErrInvalidHeaderValue is returned when a default header name or value
	// is not a valid HTTP field.
	ErrInvalidHeaderValue = errors.New("httpx: invalid header value")
)

// TLSMode selects how server certificates are verified.
type TLSMode int

const (
	// TLSSystemRoots verifies against the system trust store.
	TLSSystemRoots TLSMode = iota
	// TLSCustomCA verifies against a caller-supplied PEM bundle.
	TLSCustomCA
	// TLSAcceptAllInvalid disables chain and hostname verification.
	// Controllers ship self-signed certificates; this is an explicit
	// opt-in, never a default.
	TLSAcceptAllInvalid
)

const (
	defaultTimeout               = 15 * time.Second
	defaultDialTimeout           = 5 * time.Second
	defaultIdleConnTimeout       = 90 * time.Second
	defaultExpectContinueTimeout = 1 * time.Second
	defaultMaxIdleConns          = 16
	defaultMaxIdleConnsPerHost   = 8
)

// Options parameterize a client build.
type Options struct {
	Mode           TLSMode
	CAPath         string // required for TLSCustomCA
	Timeout        time.Duration
	DefaultHeaders map[string]string
	Jar            http.CookieJar // optional; shared session cookies
	EnableTracing  bool           // wrap the transport with otelhttp
}

// New builds an *http.Client per the options. Clients built from equal
// options share pooled connections through their own transport.
func New(opts Options) (*http.Client, error) {
	tlsCfg, err := tlsConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := validateHeaders(opts.DefaultHeaders); err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	dialTimeout := timeout
	if dialTimeout > defaultDialTimeout {
		dialTimeout = defaultDialTimeout
	}

	var rt http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		TLSClientConfig:       tlsCfg,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          defaultMaxIdleConns,
		MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   dialTimeout,
		ExpectContinueTimeout: defaultExpectContinueTimeout,
	}
	if len(opts.DefaultHeaders) > 0 {
		rt = &headerRoundTripper{next: rt, headers: opts.DefaultHeaders}
	}
	if opts.EnableTracing {
		rt = otelhttp.NewTransport(rt)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: rt,
		Jar:       opts.Jar,
	}, nil
}

// TLSClientConfig exposes the tls.Config for non-http.Client dialers (the
// websocket client mirrors the transport policy).
func TLSClientConfig(mode TLSMode, caPath string) (*tls.Config, error) {
	return tlsConfig(Options{Mode: mode, CAPath: caPath})
}

func tlsConfig(opts Options) (*tls.Config, error) {
	switch opts.Mode {
	case TLSSystemRoots:
		return &tls.Config{MinVersion: tls.VersionTLS12}, nil
	case TLSCustomCA:
		if opts.CAPath == "" {
			return nil, fmt.Errorf("%w: custom CA mode requires a bundle path", ErrInvalidTLSConfig)
		}
		pem, err := os.ReadFile(opts.CAPath)
		if err != nil {
			return nil, fmt.Errorf("%w: read CA bundle %s: %v", ErrInvalidTLSConfig, opts.CAPath, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: no certificates in %s", ErrInvalidTLSConfig, opts.CAPath)
		}
		return &tls.Config{MinVersion: tls.VersionTLS12, RootCAs: pool}, nil
	case TLSAcceptAllInvalid:
		// InsecureSkipVerify disables both chain and hostname checks.
		return &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: true}, nil //nolint:gosec
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", ErrInvalidTLSConfig, opts.Mode)
	}
}

func validateHeaders(headers map[string]string) error {
	for k, v := range headers {
		if k == "" || strings.ContainsAny(k, " \t\r\n:") {
			return fmt.Errorf("%w: header name %q", ErrInvalidHeaderValue, k)
		}
		if strings.ContainsAny(v, "\r\n") {
			return fmt.Errorf("%w: header %q", ErrInvalidHeaderValue, k)
		}
	}
	return nil
}

// headerRoundTripper injects default headers without clobbering per-request
// values.
type headerRoundTripper struct {
	next    http.RoundTripper
	headers map[string]string
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for k, v := range h.headers {
		if clone.Header.Get(k) == "" {
			clone.Header.Set(k, v)
		}
	}
	return h.next.RoundTrip(clone)
}
