// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package domain defines the canonical entities the controller runtime
// mirrors, independent of any wire schema.
package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IDKind discriminates the two identifier namespaces a controller exposes.
type IDKind uint8

const (
	// IDKindUUID identifies entities addressed by the integration REST API.
	IDKindUUID IDKind = iota + 1
	// IDKindLegacy identifies entities known only to the session API.
	IDKindLegacy
)

// EntityID is a tagged union over the two identifier namespaces. The zero
// value is "no id". Equality is structural, so EntityID is usable as a map
// key.
type EntityID struct {
	Kind  IDKind
	Value string
}

// NewUUID wraps a parsed UUID.
func NewUUID(u uuid.UUID) EntityID {
	return EntityID{Kind: IDKindUUID, Value: u.String()}
}

// ParseUUID builds a UUID-kind id from its string form.
func ParseUUID(s string) (EntityID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return EntityID{}, fmt.Errorf("parse entity uuid %q: %w", s, err)
	}
	return NewUUID(u), nil
}

// LegacyID wraps an opaque legacy identifier.
func LegacyID(s string) EntityID {
	return EntityID{Kind: IDKindLegacy, Value: s}
}

// IsZero reports whether no identifier is set.
func (id EntityID) IsZero() bool {
	return id.Kind == 0
}

// UUID returns the parsed UUID when the id belongs to the REST namespace.
func (id EntityID) UUID() (uuid.UUID, bool) {
	if id.Kind != IDKindUUID {
		return uuid.UUID{}, false
	}
	u, err := uuid.Parse(id.Value)
	if err != nil {
		return uuid.UUID{}, false
	}
	return u, true
}

// String returns the raw identifier value, the display form.
func (id EntityID) String() string {
	return id.Value
}

// MacAddress is a normalized colon-separated lower-hex MAC. The canonical
// form makes equality and map keying case-insensitive by construction.
type MacAddress string

// ParseMac normalizes s into canonical form. Accepted separators are ":",
// "-", and "." (Cisco dotted triplets), as well as bare 12-digit hex.
func ParseMac(s string) (MacAddress, error) {
	hex := strings.ToLower(strings.TrimSpace(s))
	hex = strings.NewReplacer(":", "", "-", "", ".", "").Replace(hex)
	if len(hex) != 12 {
		return "", fmt.Errorf("invalid mac address %q", s)
	}
	for _, r := range hex {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return "", fmt.Errorf("invalid mac address %q", s)
		}
	}
	var b strings.Builder
	b.Grow(17)
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(hex[i : i+2])
	}
	return MacAddress(b.String()), nil
}

// MustMac is ParseMac for constants and tests; it panics on invalid input.
func MustMac(s string) MacAddress {
	m, err := ParseMac(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m MacAddress) String() string {
	return string(m)
}
