// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureAndComponentField(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "unictl-test", Version: "v0.0.0-test"})

	l := WithComponent("rest")
	l.Info().Str(FieldEndpoint, "v1/sites").Msg("listing sites")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "unictl-test", entry["service"])
	assert.Equal(t, "rest", entry[FieldComponent])
	assert.Equal(t, "v1/sites", entry[FieldEndpoint])
	assert.Equal(t, "listing sites", entry["message"])
}

func TestConfigureIsOnce(t *testing.T) {
	var first, second bytes.Buffer
	Configure(Config{Output: &first, Service: "first"})
	Configure(Config{Output: &second, Service: "second"})

	l := Base()
	l.Info().Msg("still on the first writer")
	assert.Zero(t, second.Len())
}

func TestDeriveAttachesFields(t *testing.T) {
	l := Derive(nil)
	assert.NotNil(t, l)

	l2 := WithComponentFromContext(t.Context(), "controller")
	assert.NotNil(t, l2)
}
