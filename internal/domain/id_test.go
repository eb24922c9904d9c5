// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMacNormalizes(t *testing.T) {
	cases := []struct {
		in   string
		want MacAddress
	}{
		{"AA:BB:CC:00:11:22", "aa:bb:cc:00:11:22"},
		{"aa-bb-cc-00-11-22", "aa:bb:cc:00:11:22"},
		{"aabb.cc00.1122", "aa:bb:cc:00:11:22"},
		{"AABBCC001122", "aa:bb:cc:00:11:22"},
		{"  aa:bb:cc:00:11:22  ", "aa:bb:cc:00:11:22"},
	}
	for _, tc := range cases {
		got, err := ParseMac(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseMacCaseVariantsCompareEqual(t *testing.T) {
	a := MustMac("AA:BB:CC:00:11:22")
	b := MustMac("aa:bb:cc:00:11:22")
	assert.Equal(t, a, b)

	// Canonical forms behave as identical map keys.
	m := map[MacAddress]int{a: 1}
	m[b]++
	assert.Len(t, m, 1)
	assert.Equal(t, 2, m[a])
}

func TestParseMacRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "aa:bb:cc", "zz:bb:cc:00:11:22", "aa:bb:cc:00:11:22:33", "hello"} {
		_, err := ParseMac(in)
		assert.Error(t, err, in)
	}
}

func TestEntityIDTaggedUnion(t *testing.T) {
	uid, err := ParseUUID("22222222-2222-4222-8222-222222222222")
	require.NoError(t, err)
	assert.Equal(t, IDKindUUID, uid.Kind)
	assert.Equal(t, "22222222-2222-4222-8222-222222222222", uid.String())

	_, ok := uid.UUID()
	assert.True(t, ok)

	leg := LegacyID("5f1e4d2a9c")
	assert.Equal(t, IDKindLegacy, leg.Kind)
	_, ok = leg.UUID()
	assert.False(t, ok)

	// Structural equality across construction paths.
	other, err := ParseUUID("22222222-2222-4222-8222-222222222222")
	require.NoError(t, err)
	assert.Equal(t, uid, other)
	assert.NotEqual(t, uid, leg)

	_, err = ParseUUID("not-a-uuid")
	assert.Error(t, err)
	assert.True(t, EntityID{}.IsZero())
}
