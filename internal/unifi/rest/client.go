// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package rest is the typed client for the integration API
// (/integration/v1/...). Authentication is an X-API-KEY header the
// transport injects; the key never appears in logs.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/unictl/internal/log"
	"github.com/ManuGH/unictl/internal/metrics"
	"github.com/ManuGH/unictl/internal/unifi"
)

// HeaderAPIKey is the authentication header name. The value is sensitive.
const HeaderAPIKey = "X-API-KEY"

const bodyPreviewLimit = 200

// Client issues typed JSON requests against an integration API base URL.
// It is safe for concurrent use.
type Client struct {
	base   string // normalized, ends in "/"
	http   *http.Client
	logger zerolog.Logger
}

// New builds a client on the given normalized base URL (see
// unifi.IntegrationBaseURL) and transport.
func New(base string, httpClient *http.Client) *Client {
	return &Client{
		base:   base,
		http:   httpClient,
		logger: log.WithComponent("rest"),
	}
}

// BaseURL returns the normalized base the client was built with.
func (c *Client) BaseURL() string {
	return c.base
}

// apiError is the error envelope the integration API returns on failures.
type apiError struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	StatusName string `json:"statusName"`
}

// do performs one request. path is relative to the base (e.g. "v1/sites"),
// out may be nil for operations whose body is discarded.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &unifi.ValidationError{Message: fmt.Sprintf("encode request body: %v", err)}
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return &unifi.ValidationError{Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveAPIRequest("rest", path, 0, time.Since(start).Seconds())
		return &unifi.TransportError{Err: err}
	}
	defer res.Body.Close()
	metrics.ObserveAPIRequest("rest", path, res.StatusCode, time.Since(start).Seconds())

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 1<<20))
			return nil
		}
		raw, err := io.ReadAll(res.Body)
		if err != nil {
			return &unifi.TransportError{Err: err}
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return &unifi.DeserializationError{
				Message:     err.Error(),
				BodyPreview: preview(raw),
			}
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	switch res.StatusCode {
	case http.StatusUnauthorized:
		return unifi.ErrInvalidAPIKey
	case http.StatusNotFound:
		return unifi.ErrNotFound
	}

	var ae apiError
	msg := ""
	code := ""
	if err := json.Unmarshal(raw, &ae); err == nil && ae.Message != "" {
		msg = ae.Message
		code = ae.Code
	} else if len(raw) > 0 {
		msg = preview(raw)
	} else {
		msg = res.Status
	}
	c.logger.Debug().
		Str(log.FieldMethod, method).
		Str(log.FieldEndpoint, path).
		Int(log.FieldStatus, res.StatusCode).
		Msg("integration API error")
	return &unifi.IntegrationError{Status: res.StatusCode, Message: msg, Code: code}
}

func preview(raw []byte) string {
	if len(raw) > bodyPreviewLimit {
		raw = raw[:bodyPreviewLimit]
	}
	return string(raw)
}

// get is a generic GET helper; methods can't be generic.
func get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	err := c.do(ctx, http.MethodGet, path, query, nil, &out)
	return out, err
}

// post creates a resource and decodes the representation the server echoes.
func post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.do(ctx, http.MethodPost, path, nil, body, &out)
	return out, err
}

// put replaces a resource and decodes the result.
func put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.do(ctx, http.MethodPut, path, nil, body, &out)
	return out, err
}

// patch partially updates a resource and decodes the result.
func patch[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.do(ctx, http.MethodPatch, path, nil, body, &out)
	return out, err
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
