// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package registry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Sanitize
// =============================================================================

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Foo", "Foo"},
		{`"lodash"`, "lodash"},
		{`"lodash/fp"`, "lodash_fp"},
		{`"a\b"`, "a_b"},
		{`'single'`, `'single'`},
		{"`tpl`", "`tpl`"},
		{"~/home", "__home"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{`"a/b\c~d"`, "plain", `''`, "__", "x/y/z", "`tpl`"}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
		assert.False(t, strings.ContainsAny(once, "\"/\\~"), "input %q produced %q", in, once)
	}
}

func TestIsSkipped(t *testing.T) {
	for _, name := range []string{"export=", "Map", "Symbol", "Error", "escape", "unescape"} {
		assert.True(t, IsSkipped(name), name)
	}
	for _, name := range []string{"error", "map", "Foo", ""} {
		assert.False(t, IsSkipped(name), name)
	}
	assert.Len(t, skipList, 6)
}

// =============================================================================
// Tiers
// =============================================================================

func TestKind_Tier(t *testing.T) {
	tests := []struct {
		kind Kind
		want Tier
	}{
		{KindType, TierSimple},
		{KindVariable, TierSimple},
		{KindFunction, TierCallable},
		{KindArray, TierCallable},
		{KindObject, TierStructured},
		{KindEnum, TierStructured},
		{KindClass, TierDeclared},
		{KindInterface, TierDeclared},
		{KindNamespace, TierDeclared},
		{KindModule, TierDeclared},
		{KindMember, TierNone},
		{Kind("bogus"), TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Tier())
		})
	}
}

// =============================================================================
// Upsert
// =============================================================================

func TestRegistry_Upsert_Create(t *testing.T) {
	r := New()

	res := r.Upsert(`"my/mod"`, KindModule, "/*doc */\n")
	assert.Equal(t, UpsertCreated, res)

	e, ok := r.lookup("my_mod")
	require.True(t, ok)
	assert.Equal(t, "my_mod", e.Name)
	assert.Equal(t, KindModule, e.Kind)
	assert.Equal(t, "/*doc */\n", e.Documentation)
}

func TestRegistry_Upsert_IgnoresEmptyAndMember(t *testing.T) {
	r := New()
	assert.Equal(t, UpsertIgnored, r.Upsert("", KindClass, ""))
	assert.Equal(t, UpsertIgnored, r.Upsert("x", KindMember, ""))
	assert.Equal(t, 0, r.Len())
}

// A function re-registered as a variable stays a function.
func TestRegistry_Upsert_NoDowngrade(t *testing.T) {
	r := New()
	r.Upsert("f", KindFunction, "first")
	res := r.Upsert("f", KindVariable, "second")

	assert.Equal(t, UpsertKept, res)
	e, _ := r.lookup("f")
	assert.Equal(t, KindFunction, e.Kind)
	assert.Equal(t, "first", e.Documentation)
}

func TestRegistry_Upsert_SameTierKeepsFirst(t *testing.T) {
	r := New()
	r.Upsert("a", KindFunction, "")
	r.Upsert("a", KindArray, "")
	e, _ := r.lookup("a")
	assert.Equal(t, KindFunction, e.Kind)

	r.Upsert("b", KindEnum, "")
	r.Upsert("b", KindObject, "")
	e, _ = r.lookup("b")
	assert.Equal(t, KindEnum, e.Kind)

	r.Upsert("c", KindNamespace, "")
	r.Upsert("c", KindClass, "")
	e, _ = r.lookup("c")
	assert.Equal(t, KindNamespace, e.Kind)
}

func TestRegistry_Upsert_UpgradeRefreshesDocumentation(t *testing.T) {
	r := New()
	r.Upsert("X", KindVariable, "old")
	res := r.Upsert("X", KindInterface, "new")

	assert.Equal(t, UpsertUpgraded, res)
	e, _ := r.lookup("X")
	assert.Equal(t, KindInterface, e.Kind)
	assert.Equal(t, "new", e.Documentation)
}

func TestRegistry_Upsert_Monotonic(t *testing.T) {
	sequences := [][]Kind{
		{KindVariable, KindFunction, KindObject, KindClass},
		{KindClass, KindObject, KindFunction, KindVariable},
		{KindType, KindEnum, KindArray, KindType},
		{KindArray, KindModule, KindVariable, KindInterface},
		{KindFunction, KindFunction, KindType},
	}

	for i, seq := range sequences {
		r := New()
		maxTier := TierNone
		for _, k := range seq {
			r.Upsert("n", k, "")
			if k.Tier() > maxTier {
				maxTier = k.Tier()
			}
		}
		e, ok := r.lookup("n")
		require.True(t, ok)
		assert.Equal(t, maxTier, e.Kind.Tier(), "sequence %d", i)
	}
}

// Upgrading a kind never moves the entry.
func TestRegistry_Entries_InsertionOrder(t *testing.T) {
	r := New()
	r.Upsert("b", KindVariable, "")
	r.Upsert("a", KindVariable, "")
	r.Upsert("c", KindVariable, "")
	r.Upsert("b", KindClass, "")

	var names []string
	for _, e := range r.Entries() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"b", "a", "c"}, names)
}

func TestRegistry_Upsert_MergeDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := New(WithLogger(logger), WithMergeDiagnostics(true))
	r.Upsert("X", KindVariable, "")
	r.Upsert("X", KindClass, "")
	r.Upsert("X", KindFunction, "")

	out := buf.String()
	assert.Contains(t, out, "already defined, overwriting")
	assert.Contains(t, out, "already defined, not overwriting")
}

func TestRegistry_Upsert_QuietWithoutMergeDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	r := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	r.Upsert("X", KindVariable, "")
	r.Upsert("X", KindClass, "")
	assert.Empty(t, buf.String())
}

// =============================================================================
// AttachMember
// =============================================================================

func TestRegistry_AttachMember(t *testing.T) {
	r := New()
	r.Upsert(`"a/b"`, KindModule, "")

	require.True(t, r.AttachMember(`"a/b"`, "x/y", "doc"))
	require.True(t, r.AttachMember("a_b", "z", ""))

	e, _ := r.lookup("a_b")
	require.Equal(t, 2, len(e.Members()))

	m, ok := e.member("x/y")
	require.True(t, ok, "member names are not sanitized")
	assert.Equal(t, KindMember, m.Kind)
	assert.Equal(t, "doc", m.Documentation)
}

func TestRegistry_AttachMember_MissingOwner(t *testing.T) {
	var buf bytes.Buffer
	r := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	assert.False(t, r.AttachMember("Ghost", "m", ""))
	assert.Equal(t, 0, r.Len())
	assert.Contains(t, buf.String(), "no entry for member owner")
}

// The last write wins for members and keeps the first position.
func TestRegistry_AttachMember_LastWriteWins(t *testing.T) {
	r := New()
	r.Upsert("Owner", KindInterface, "")
	r.AttachMember("Owner", "a", "/*first */\n")
	r.AttachMember("Owner", "b", "")
	r.AttachMember("Owner", "a", "/*second */\n")

	e, _ := r.lookup("Owner")
	members := e.Members()
	require.Len(t, members, 2)
	assert.Equal(t, "a", members[0].Name)
	assert.Equal(t, "/*second */\n", members[0].Documentation)
	assert.Equal(t, "b", members[1].Name)
}
