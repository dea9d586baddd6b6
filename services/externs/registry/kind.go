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

// Kind is the output category of an Entry.
//
// The string value is what ends up in diagnostics; the emitter switches on the
// constant, never on the text.
type Kind string

const (
	KindVariable  Kind = "variable"
	KindArray     Kind = "array"
	KindFunction  Kind = "function"
	KindType      Kind = "type"
	KindEnum      Kind = "enum"
	KindObject    Kind = "object"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindNamespace Kind = "namespace"
	KindModule    Kind = "module"

	// KindMember is only ever stored inside Entry.Members.
	KindMember Kind = "member"
)

// Tier is the precedence class of a Kind.
//
// A registered name may only move to a strictly higher tier. Tiers are
// nested: everything a lower tier may be overwritten by, a higher tier may
// be too.
type Tier int

const (
	// TierNone is returned for kinds that never appear at top level.
	TierNone Tier = iota

	// TierSimple covers type aliases and plain variables.
	TierSimple

	// TierCallable covers functions and arrays.
	TierCallable

	// TierStructured covers object literals and enums.
	TierStructured

	// TierDeclared covers classes, interfaces, namespaces and modules.
	TierDeclared
)

// Tier returns the precedence tier of k.
func (k Kind) Tier() Tier {
	switch k {
	case KindType, KindVariable:
		return TierSimple
	case KindFunction, KindArray:
		return TierCallable
	case KindObject, KindEnum:
		return TierStructured
	case KindClass, KindInterface, KindNamespace, KindModule:
		return TierDeclared
	default:
		return TierNone
	}
}

// IsTopLevel reports whether k may be stored as a top-level entry.
func (k Kind) IsTopLevel() bool {
	return k.Tier() != TierNone
}

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}
