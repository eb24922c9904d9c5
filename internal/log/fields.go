// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSite      = "site"
	FieldSiteID    = "site_id"
	FieldEntityID  = "entity_id"
	FieldDeviceMAC = "device_mac"
	FieldClientMAC = "client_mac"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldTask      = "task"
	FieldCommand   = "command"

	// API fields
	FieldPlatform = "platform"
	FieldEndpoint = "endpoint"
	FieldMethod   = "method"
	FieldStatus   = "status"
	FieldBaseURL  = "base_url"

	// Stream fields
	FieldStreamKey = "stream_key"
	FieldAttempt   = "attempt"
	FieldLagged    = "lagged"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
)
