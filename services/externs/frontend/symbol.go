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

// SymbolFlags classify what a symbol declares.
type SymbolFlags uint32

const (
	SymbolVariable SymbolFlags = 1 << iota
	SymbolProperty
	SymbolEnumMember
	SymbolFunction
	SymbolClass
	SymbolInterface
	SymbolEnum
	SymbolModule
	SymbolTypeLiteral
	SymbolMethod
	SymbolConstructor
	SymbolAccessor
	SymbolSignature
	SymbolTypeAlias
	SymbolAlias

	// SymbolPrototype marks the prototype property of a class value.
	SymbolPrototype

	// SymbolTransient marks symbols the checker synthesizes while computing
	// the properties of unions, intersections and tuples.
	SymbolTransient

	// SymbolValue is every meaning that exists at runtime.
	SymbolValue = SymbolVariable | SymbolProperty | SymbolEnumMember |
		SymbolFunction | SymbolClass | SymbolEnum | SymbolModule |
		SymbolMethod | SymbolAccessor

	// SymbolType is every meaning usable in a type position.
	SymbolType = SymbolClass | SymbolInterface | SymbolEnum | SymbolTypeAlias |
		SymbolTypeLiteral

	// SymbolNamespace is every meaning usable left of a dot.
	SymbolNamespace = SymbolModule | SymbolEnum | SymbolClass
)

// Has reports whether any bit of f is set.
func (fl SymbolFlags) Has(f SymbolFlags) bool {
	return fl&f != 0
}

// SymbolOrigin records who created a symbol.
type SymbolOrigin int

const (
	// OriginDeclared symbols come from source declarations.
	OriginDeclared SymbolOrigin = iota

	// OriginSynthetic symbols are made up by the caller (for example the
	// console seed). They have no declarations and no documentation.
	OriginSynthetic
)

// Symbol is a named entity created by the binder or the checker.
type Symbol struct {
	Name         string
	Flags        SymbolFlags
	Origin       SymbolOrigin
	Declarations []*Node

	// Members holds instance members of classes, interfaces and type literals.
	Members *SymbolTable

	// Exports holds exported namespace members, static class members and
	// enum members.
	Exports *SymbolTable

	// Locals holds non-exported namespace members.
	Locals *SymbolTable

	Parent *Symbol

	// typ is preset for transient symbols.
	typ *Type

	// aliasTarget is the local name an export alias points at.
	aliasTarget string
}

// NewSyntheticSymbol creates a symbol that carries only a name.
func NewSyntheticSymbol(name string) *Symbol {
	return &Symbol{Name: name, Origin: OriginSynthetic}
}

// IsSynthetic reports whether the symbol has no source declarations by origin.
func (s *Symbol) IsSynthetic() bool {
	return s != nil && s.Origin == OriginSynthetic
}

// IsTransient reports whether the checker synthesized the symbol.
func (s *Symbol) IsTransient() bool {
	return s != nil && s.Flags.Has(SymbolTransient)
}

// ValueDeclaration returns the first declaration that carries a type
// annotation or an initializer, falling back to the first declaration.
func (s *Symbol) ValueDeclaration() *Node {
	if s == nil || len(s.Declarations) == 0 {
		return nil
	}
	for _, d := range s.Declarations {
		if d.Type != nil || d.Init != nil {
			return d
		}
	}
	return s.Declarations[0]
}

func (s *Symbol) addDeclaration(n *Node, flags SymbolFlags) {
	s.Flags |= flags
	s.Declarations = append(s.Declarations, n)
	n.symbol = s
}

// SymbolTable is an insertion-ordered name to symbol map.
// All methods accept a nil receiver.
type SymbolTable struct {
	order  []string
	byName map[string]*Symbol
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]*Symbol)}
}

// Lookup returns the symbol stored under name, or nil.
func (t *SymbolTable) Lookup(name string) *Symbol {
	if t == nil {
		return nil
	}
	return t.byName[name]
}

// Symbols returns all symbols in first-insertion order.
func (t *SymbolTable) Symbols() []*Symbol {
	if t == nil {
		return nil
	}
	out := make([]*Symbol, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.byName[name])
	}
	return out
}

// Len returns the number of symbols.
func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// declare merges n into the symbol stored under name, creating it if needed.
func (t *SymbolTable) declare(name string, flags SymbolFlags, n *Node, parent *Symbol) *Symbol {
	sym, ok := t.byName[name]
	if !ok {
		sym = &Symbol{Name: name, Parent: parent}
		t.byName[name] = sym
		t.order = append(t.order, name)
	}
	sym.addDeclaration(n, flags)
	return sym
}

// redeclare makes n the only declaration of name. The symbol keeps its
// position in the table.
func (t *SymbolTable) redeclare(name string, flags SymbolFlags, n *Node, parent *Symbol) *Symbol {
	sym, ok := t.byName[name]
	if !ok {
		return t.declare(name, flags, n, parent)
	}
	sym.Flags = 0
	sym.Declarations = nil
	sym.addDeclaration(n, flags)
	return sym
}

// set stores sym, replacing any previous entry in place.
func (t *SymbolTable) set(sym *Symbol) {
	if _, ok := t.byName[sym.Name]; !ok {
		t.order = append(t.order, sym.Name)
	}
	t.byName[sym.Name] = sym
}
