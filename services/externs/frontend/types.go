// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package frontend

import "strings"

// TypeFlags classify a checker type.
type TypeFlags uint32

const (
	TypeAny TypeFlags = 1 << iota
	TypePrimitive
	TypeEnum
	TypeParameter
	TypeObject
	TypeAnonymous
	TypeArray
	TypeTuple
	TypeUnion
	TypeIntersection

	// TypeReference marks class and interface instance types.
	TypeReference

	// TypeUnresolved marks references to names no file declares.
	TypeUnresolved

	// TypeStructured is the set of flags that make a type structured.
	TypeStructured = TypeObject | TypeUnion | TypeIntersection
)

// Type is a checker type. Types are created by the Checker only.
type Type struct {
	Flags TypeFlags

	text   string
	symbol *Symbol
	elem   *Type
	types  []*Type

	props     []*Symbol
	propsDone bool
}

// IsStructured reports whether the type is an object, union or intersection.
func (t *Type) IsStructured() bool {
	return t != nil && t.Flags&TypeStructured != 0
}

// IsAnonymous reports whether the type has no declared name: type literals,
// function types and the value side of classes, enums and namespaces.
func (t *Type) IsAnonymous() bool {
	return t != nil && t.Flags&TypeAnonymous != 0
}

// Symbol returns the declaring symbol, or nil.
func (t *Type) Symbol() *Symbol {
	if t == nil {
		return nil
	}
	return t.symbol
}

// Elem returns the element type of an array type.
func (t *Type) Elem() *Type {
	if t == nil {
		return nil
	}
	return t.elem
}

// Types returns the constituents of a union, intersection or tuple.
func (t *Type) Types() []*Type {
	if t == nil {
		return nil
	}
	return t.types
}

// String returns the printed form.
func (t *Type) String() string {
	if t == nil {
		return "any"
	}
	return t.text
}

func (t *Type) isNullable() bool {
	return t.Flags&TypePrimitive != 0 && (t.text == "null" || t.text == "undefined")
}

// needsParens reports whether the printed form must be parenthesized as an
// array element or union constituent.
func (t *Type) needsParens() bool {
	if t.Flags&(TypeUnion|TypeIntersection) != 0 {
		return true
	}
	fn := strings.HasPrefix(t.text, "(") || strings.HasPrefix(t.text, "new ") || strings.HasPrefix(t.text, "<")
	return fn && strings.Contains(t.text, "=>")
}
