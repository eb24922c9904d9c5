// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package unifi

import (
	"errors"
	"fmt"
)

var (
	// ErrControllerDisconnected is returned for any operation attempted
	// outside the Connected state.
	ErrControllerDisconnected = errors.New("controller is not connected")

	// ErrInvalidAPIKey is the distinct sentinel for a 401 from the
	// integration API, so callers can surface a re-auth flow.
	ErrInvalidAPIKey = errors.New("api key rejected by controller")

	// ErrNotFound is a 404 from the integration API. The refresh path
	// downgrades it to "endpoint unsupported on this firmware".
	ErrNotFound = errors.New("not found")
)

// AuthError covers session login failures and credential plumbing failures.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.Message
}

// SiteNotFoundError reports that the configured site matched nothing.
type SiteNotFoundError struct {
	Name string
}

func (e *SiteNotFoundError) Error() string {
	return fmt.Sprintf("site %q not found on controller", e.Name)
}

// DeviceNotFoundError reports a device id/mac that resolved to nothing.
type DeviceNotFoundError struct {
	ID string
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("device %q not found", e.ID)
}

// ClientNotFoundError reports a client id/mac that resolved to nothing.
type ClientNotFoundError struct {
	ID string
}

func (e *ClientNotFoundError) Error() string {
	return fmt.Sprintf("client %q not found", e.ID)
}

// IntegrationError is any non-2xx integration API response other than 401
// and 404, with the controller's own message and code when parseable.
type IntegrationError struct {
	Status  int
	Message string
	Code    string
}

func (e *IntegrationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("controller returned %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("controller returned %d: %s", e.Status, e.Message)
}

// DeserializationError is a 2xx response whose body did not decode into the
// expected shape. BodyPreview keeps the first bytes for diagnosis.
type DeserializationError struct {
	Message     string
	BodyPreview string
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("decode response: %s (body: %.200s)", e.Message, e.BodyPreview)
}

// TransportError wraps lower-level I/O and TLS failures.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError reports invalid caller input before any request is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message
}

// UnsupportedError reports an operation that needs an API surface the
// current configuration does not provide.
type UnsupportedError struct {
	Op       string
	Required string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s requires %s, which this configuration does not provide", e.Op, e.Required)
}
