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

import (
	"strconv"
	"strings"
)

// maxAliasDepth bounds export alias chains.
const maxAliasDepth = 8

// Checker answers symbol and type queries over a bound Program.
//
// Types are computed on first request and cached. Circular references
// (a type alias naming itself, a variable initialized from itself) resolve
// to any.
type Checker struct {
	program *Program

	anyType    *Type
	primitives map[string]*Type

	symbolTypes   map[*Symbol]*Type
	instanceTypes map[*Symbol]*Type
	enumTypes     map[*Symbol]*Type
	prototypes    map[*Symbol]*Symbol
	resolving     map[*Symbol]bool
}

func newChecker(p *Program) *Checker {
	return &Checker{
		program:       p,
		anyType:       &Type{Flags: TypeAny, text: "any", propsDone: true},
		primitives:    make(map[string]*Type),
		symbolTypes:   make(map[*Symbol]*Type),
		instanceTypes: make(map[*Symbol]*Type),
		enumTypes:     make(map[*Symbol]*Type),
		prototypes:    make(map[*Symbol]*Symbol),
		resolving:     make(map[*Symbol]bool),
	}
}

// =============================================================================
// Queries
// =============================================================================

// SymbolAtLocation returns the symbol a declaration node declares.
func (c *Checker) SymbolAtLocation(n *Node) *Symbol {
	return n.Symbol()
}

// TypeOfSymbol returns the value type of sym.
//
// Variables and properties use their annotation, else their initializer.
// Classes, enums, namespaces, functions and methods get an anonymous object
// type describing their value side. Enum members get their enum's type.
// Synthetic symbols and pure type declarations are any.
func (c *Checker) TypeOfSymbol(sym *Symbol) *Type {
	if sym == nil || sym.IsSynthetic() {
		return c.anyType
	}
	if sym.typ != nil {
		return sym.typ
	}
	if t, ok := c.symbolTypes[sym]; ok {
		return t
	}
	if c.resolving[sym] {
		return c.anyType
	}

	c.resolving[sym] = true
	t := c.computeTypeOfSymbol(sym)
	delete(c.resolving, sym)

	c.symbolTypes[sym] = t
	return t
}

func (c *Checker) computeTypeOfSymbol(sym *Symbol) *Type {
	switch {
	case sym.Flags.Has(SymbolVariable | SymbolProperty | SymbolAccessor):
		d := sym.ValueDeclaration()
		if d == nil {
			return c.anyType
		}
		if d.Type != nil {
			return c.typeFromExpr(d.Type, d)
		}
		if d.Init != nil {
			return c.typeFromInit(d.Init, d)
		}
		return c.anyType
	case sym.Flags.Has(SymbolClass | SymbolEnum | SymbolModule | SymbolFunction | SymbolMethod):
		return &Type{Flags: TypeObject | TypeAnonymous, symbol: sym, text: "typeof " + sym.Name}
	case sym.Flags.Has(SymbolEnumMember):
		return c.enumType(sym.Parent)
	case sym.Flags.Has(SymbolAlias):
		if target := c.resolveAlias(sym); target != nil {
			return c.TypeOfSymbol(target)
		}
	}
	return c.anyType
}

// IsStructuredType reports whether t is an object, union or intersection.
func (c *Checker) IsStructuredType(t *Type) bool {
	return t.IsStructured()
}

// TypeToString returns the printed form of t.
func (c *Checker) TypeToString(t *Type) string {
	return t.String()
}

// PropertiesOfType returns the named properties of t in declaration order.
//
// Call, construct and index signatures and constructors are not properties.
// Interface and class instance types include inherited properties after
// their own. Union properties are those present in every constituent;
// intersection properties those present in any. Both, like tuple elements,
// are transient symbols.
func (c *Checker) PropertiesOfType(t *Type) []*Symbol {
	if t == nil {
		return nil
	}
	if t.propsDone {
		return t.props
	}
	t.propsDone = true
	t.props = c.computeProperties(t)
	return t.props
}

// ExportsOfModule returns the exported symbols of a namespace, module, enum
// or class (static side), in declaration order.
func (c *Checker) ExportsOfModule(sym *Symbol) []*Symbol {
	if sym == nil {
		return nil
	}
	return sym.Exports.Symbols()
}

// DocumentationComment returns the JSDoc lines of every declaration of sym.
func (c *Checker) DocumentationComment(sym *Symbol) []string {
	if sym == nil || sym.IsSynthetic() {
		return nil
	}
	var out []string
	for _, d := range sym.Declarations {
		out = append(out, d.Doc...)
	}
	return out
}

// =============================================================================
// Written types
// =============================================================================

func (c *Checker) typeFromExpr(te *TypeExpr, ctx *Node) *Type {
	if te == nil {
		return c.anyType
	}
	switch te.Kind {
	case TypeExprKeyword:
		if te.Name == "any" || te.Name == "unknown" {
			return c.anyType
		}
		return c.primitive(te.Name)
	case TypeExprLiteral:
		return c.primitive(te.Text)
	case TypeExprReference:
		return c.typeFromReference(te, ctx)
	case TypeExprArray:
		var elem *TypeExpr
		if len(te.Elems) > 0 {
			elem = te.Elems[0]
		}
		return c.arrayOf(c.typeFromExpr(elem, ctx))
	case TypeExprTuple:
		t := &Type{Flags: TypeObject | TypeTuple}
		texts := make([]string, 0, len(te.Elems))
		for _, e := range te.Elems {
			et := c.typeFromExpr(e, ctx)
			t.types = append(t.types, et)
			texts = append(texts, et.text)
		}
		t.text = "[" + strings.Join(texts, ", ") + "]"
		return t
	case TypeExprUnion:
		return c.union(c.typesFromExprs(te.Elems, ctx))
	case TypeExprIntersection:
		return c.intersection(c.typesFromExprs(te.Elems, ctx))
	case TypeExprFunction, TypeExprConstructor:
		return &Type{Flags: TypeObject | TypeAnonymous, text: te.Text, propsDone: true}
	case TypeExprObject:
		if te.Literal == nil {
			return c.anyType
		}
		return &Type{Flags: TypeObject | TypeAnonymous, symbol: te.Literal.symbol, text: te.Text}
	case TypeExprQuery:
		sym := c.resolveName(te.Name, ctx, SymbolValue)
		if sym == nil {
			return c.anyType
		}
		return c.TypeOfSymbol(sym)
	}
	return c.anyType
}

func (c *Checker) typesFromExprs(elems []*TypeExpr, ctx *Node) []*Type {
	out := make([]*Type, 0, len(elems))
	for _, e := range elems {
		out = append(out, c.typeFromExpr(e, ctx))
	}
	return out
}

func (c *Checker) typeFromReference(te *TypeExpr, ctx *Node) *Type {
	name := te.Name
	if !strings.Contains(name, ".") && isTypeParameter(name, ctx) {
		return &Type{Flags: TypeParameter, text: name, propsDone: true}
	}
	if (name == "Array" || name == "ReadonlyArray") && len(te.Elems) == 1 {
		return c.arrayOf(c.typeFromExpr(te.Elems[0], ctx))
	}

	sym := c.resolveName(name, ctx, SymbolType)
	if sym == nil {
		return &Type{Flags: TypeObject | TypeUnresolved, text: te.Text, propsDone: true}
	}

	switch {
	case sym.Flags.Has(SymbolClass | SymbolInterface):
		return c.instanceType(sym, te)
	case sym.Flags.Has(SymbolEnum):
		return c.enumType(sym)
	case sym.Flags.Has(SymbolTypeAlias):
		return c.aliasedType(sym)
	}
	return c.anyType
}

func isTypeParameter(name string, ctx *Node) bool {
	for n := ctx; n != nil; n = n.Parent {
		for _, p := range n.TypeParams {
			if p == name {
				return true
			}
		}
	}
	return false
}

func (c *Checker) instanceType(sym *Symbol, te *TypeExpr) *Type {
	if len(te.Elems) == 0 {
		if t, ok := c.instanceTypes[sym]; ok {
			return t
		}
		t := &Type{Flags: TypeObject | TypeReference, symbol: sym, text: sym.Name}
		c.instanceTypes[sym] = t
		return t
	}
	return &Type{Flags: TypeObject | TypeReference, symbol: sym, text: te.Text}
}

func (c *Checker) enumType(sym *Symbol) *Type {
	if sym == nil {
		return c.anyType
	}
	if t, ok := c.enumTypes[sym]; ok {
		return t
	}
	t := &Type{Flags: TypeEnum, symbol: sym, text: sym.Name, propsDone: true}
	c.enumTypes[sym] = t
	return t
}

func (c *Checker) aliasedType(sym *Symbol) *Type {
	if c.resolving[sym] {
		return c.anyType
	}
	var decl *Node
	for _, d := range sym.Declarations {
		if d.Kind == KindTypeAliasDeclaration {
			decl = d
			break
		}
	}
	if decl == nil {
		return c.anyType
	}
	c.resolving[sym] = true
	defer delete(c.resolving, sym)
	return c.typeFromExpr(decl.Type, decl)
}

func (c *Checker) primitive(name string) *Type {
	if t, ok := c.primitives[name]; ok {
		return t
	}
	t := &Type{Flags: TypePrimitive, text: name, propsDone: true}
	c.primitives[name] = t
	return t
}

func (c *Checker) arrayOf(elem *Type) *Type {
	text := elem.text + "[]"
	if elem.needsParens() {
		text = "(" + elem.text + ")[]"
	}
	return &Type{Flags: TypeObject | TypeArray, elem: elem, text: text, propsDone: true}
}

// union builds a union type. any absorbs the union; null and undefined
// constituents are dropped, as without strict null checks.
func (c *Checker) union(types []*Type) *Type {
	var kept []*Type
	seen := make(map[*Type]bool)
	for _, t := range types {
		if t.Flags&TypeAny != 0 {
			return c.anyType
		}
		if t.isNullable() || seen[t] {
			continue
		}
		seen[t] = true
		kept = append(kept, t)
	}
	switch len(kept) {
	case 0:
		return c.anyType
	case 1:
		return kept[0]
	}
	return &Type{Flags: TypeUnion, types: kept, text: joinTypes(kept, " | ")}
}

func (c *Checker) intersection(types []*Type) *Type {
	if len(types) == 1 {
		return types[0]
	}
	for _, t := range types {
		if t.Flags&TypeAny != 0 {
			return c.anyType
		}
	}
	return &Type{Flags: TypeIntersection, types: types, text: joinTypes(types, " & ")}
}

func joinTypes(types []*Type, sep string) string {
	parts := make([]string, 0, len(types))
	for _, t := range types {
		if t.needsParens() {
			parts = append(parts, "("+t.text+")")
		} else {
			parts = append(parts, t.text)
		}
	}
	return strings.Join(parts, sep)
}

// =============================================================================
// Inferred types
// =============================================================================

func (c *Checker) typeFromInit(e *Expr, decl *Node) *Type {
	switch e.Kind {
	case ExprLiteral:
		switch e.Name {
		case "number":
			return c.primitive("number")
		case "string", "template_string":
			return c.primitive("string")
		case "true", "false":
			return c.primitive("boolean")
		case "regex":
			return c.typeFromReference(&TypeExpr{Kind: TypeExprReference, Name: "RegExp", Text: "RegExp"}, decl)
		}
		return c.anyType
	case ExprArray:
		return c.arrayOf(c.anyType)
	case ExprObject:
		t := &Type{Flags: TypeObject | TypeAnonymous, propsDone: true}
		fields := make([]string, 0, len(e.Props))
		for _, name := range e.Props {
			t.props = append(t.props, c.transient(name, c.anyType))
			fields = append(fields, name+": any;")
		}
		if len(fields) == 0 {
			t.text = "{}"
		} else {
			t.text = "{ " + strings.Join(fields, " ") + " }"
		}
		return t
	case ExprFunction:
		return &Type{Flags: TypeObject | TypeAnonymous, text: "() => any", propsDone: true}
	case ExprNew:
		return c.typeFromReference(&TypeExpr{Kind: TypeExprReference, Name: e.Name, Text: e.Name}, decl)
	case ExprIdentifier:
		if sym := c.resolveName(e.Name, decl, SymbolValue); sym != nil {
			return c.TypeOfSymbol(sym)
		}
	}
	return c.anyType
}

// =============================================================================
// Properties
// =============================================================================

func (c *Checker) computeProperties(t *Type) []*Symbol {
	switch {
	case t.Flags&TypeUnion != 0:
		return c.unionProperties(t.types)
	case t.Flags&TypeIntersection != 0:
		return c.intersectionProperties(t.types)
	case t.Flags&TypeTuple != 0:
		out := make([]*Symbol, 0, len(t.types))
		for i, et := range t.types {
			out = append(out, c.transient(strconv.Itoa(i), et))
		}
		return out
	case t.Flags&TypeReference != 0:
		return c.instanceProperties(t.symbol)
	case t.Flags&TypeAnonymous != 0 && t.symbol != nil:
		return c.valueProperties(t.symbol)
	}
	return nil
}

func (c *Checker) valueProperties(sym *Symbol) []*Symbol {
	if sym.Flags.Has(SymbolTypeLiteral) {
		return namedMembers(sym.Members)
	}
	if !sym.Flags.Has(SymbolClass | SymbolEnum | SymbolModule) {
		return nil
	}
	out := sym.Exports.Symbols()
	if sym.Flags.Has(SymbolClass) {
		out = append(out, c.prototypeOf(sym))
	}
	return out
}

// prototypeOf returns the prototype property of a class. It is a declared
// property, not a transient one, and is created once per class.
func (c *Checker) prototypeOf(class *Symbol) *Symbol {
	if p, ok := c.prototypes[class]; ok {
		return p
	}
	p := &Symbol{
		Name:   "prototype",
		Flags:  SymbolProperty | SymbolPrototype,
		Parent: class,
		typ:    c.instanceType(class, &TypeExpr{}),
	}
	c.prototypes[class] = p
	return p
}

func (c *Checker) instanceProperties(sym *Symbol) []*Symbol {
	props := namedMembers(sym.Members)
	seen := make(map[string]bool, len(props))
	for _, p := range props {
		seen[p.Name] = true
	}

	for _, d := range sym.Declarations {
		for _, h := range d.Heritage {
			base := c.typeFromExpr(h, d)
			if base.Flags&TypeReference == 0 || base.symbol == sym {
				continue
			}
			for _, p := range c.PropertiesOfType(base) {
				if seen[p.Name] {
					continue
				}
				seen[p.Name] = true
				props = append(props, p)
			}
		}
	}
	return props
}

func (c *Checker) unionProperties(types []*Type) []*Symbol {
	if len(types) == 0 {
		return nil
	}
	var out []*Symbol
	for _, p := range c.PropertiesOfType(types[0]) {
		memberTypes := []*Type{c.TypeOfSymbol(p)}
		inAll := true
		for _, other := range types[1:] {
			q := findProperty(c.PropertiesOfType(other), p.Name)
			if q == nil {
				inAll = false
				break
			}
			memberTypes = append(memberTypes, c.TypeOfSymbol(q))
		}
		if inAll {
			out = append(out, c.transient(p.Name, c.union(memberTypes)))
		}
	}
	return out
}

func (c *Checker) intersectionProperties(types []*Type) []*Symbol {
	var out []*Symbol
	seen := make(map[string]bool)
	for _, t := range types {
		for _, p := range c.PropertiesOfType(t) {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			out = append(out, c.transient(p.Name, c.TypeOfSymbol(p)))
		}
	}
	return out
}

func (c *Checker) transient(name string, t *Type) *Symbol {
	return &Symbol{Name: name, Flags: SymbolProperty | SymbolTransient, typ: t}
}

func findProperty(props []*Symbol, name string) *Symbol {
	for _, p := range props {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// namedMembers drops signatures and constructors from a member table.
func namedMembers(t *SymbolTable) []*Symbol {
	var out []*Symbol
	for _, s := range t.Symbols() {
		if s.Flags.Has(SymbolSignature | SymbolConstructor) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// =============================================================================
// Name resolution
// =============================================================================

// resolveName resolves a possibly dotted name as seen from ctx.
func (c *Checker) resolveName(name string, ctx *Node, meaning SymbolFlags) *Symbol {
	parts := strings.Split(name, ".")
	first := meaning
	if len(parts) > 1 {
		first = SymbolNamespace
	}

	sym := c.resolveIdentifier(parts[0], ctx, first, nil)
	for i, part := range parts[1:] {
		if sym == nil {
			return nil
		}
		next := c.resolveAlias(sym.Exports.Lookup(part))
		want := SymbolNamespace
		if i == len(parts)-2 {
			want = meaning
		}
		if next == nil || !next.Flags.Has(want) {
			return nil
		}
		sym = next
	}
	return sym
}

// resolveIdentifier walks the enclosing namespaces of ctx outward, then the
// file scope, then the global scope. exclude is never returned.
func (c *Checker) resolveIdentifier(name string, ctx *Node, meaning SymbolFlags, exclude *Symbol) *Symbol {
	match := func(s *Symbol) *Symbol {
		if s == nil || s == exclude {
			return nil
		}
		s = c.resolveAlias(s)
		if s == nil || !s.Flags.Has(meaning) {
			return nil
		}
		return s
	}

	for n := ctx; n != nil; n = n.Parent {
		switch n.Kind {
		case KindModuleDeclaration:
			if n.symbol == nil {
				continue
			}
			if s := match(n.symbol.Locals.Lookup(name)); s != nil {
				return s
			}
			if s := match(n.symbol.Exports.Lookup(name)); s != nil {
				return s
			}
		case KindSourceFile:
			if n.File != nil && n.File.locals != c.program.globals {
				if s := match(n.File.locals.Lookup(name)); s != nil {
					return s
				}
			}
		}
	}
	return match(c.program.globals.Lookup(name))
}

// resolveAlias follows export aliases to the symbol they name. Non-alias
// symbols are returned unchanged.
func (c *Checker) resolveAlias(sym *Symbol) *Symbol {
	for depth := 0; sym != nil && sym.Flags.Has(SymbolAlias); depth++ {
		if depth >= maxAliasDepth || sym.aliasTarget == "" || len(sym.Declarations) == 0 {
			return nil
		}
		target := c.resolveIdentifierAny(sym.aliasTarget, sym.Declarations[0], sym)
		if target == sym {
			return nil
		}
		sym = target
	}
	return sym
}

// resolveIdentifierAny resolves a dotted alias target without following
// further aliases at the first step.
func (c *Checker) resolveIdentifierAny(name string, ctx *Node, exclude *Symbol) *Symbol {
	parts := strings.Split(name, ".")
	var sym *Symbol
	for n := ctx; n != nil && sym == nil; n = n.Parent {
		switch n.Kind {
		case KindModuleDeclaration:
			if n.symbol != nil {
				sym = pick(exclude, n.symbol.Locals.Lookup(parts[0]), n.symbol.Exports.Lookup(parts[0]))
			}
		case KindSourceFile:
			if n.File != nil {
				sym = pick(exclude, n.File.locals.Lookup(parts[0]))
			}
		}
	}
	if sym == nil {
		sym = pick(exclude, c.program.globals.Lookup(parts[0]))
	}
	for _, part := range parts[1:] {
		if sym == nil {
			return nil
		}
		sym = sym.Exports.Lookup(part)
	}
	return sym
}

func pick(exclude *Symbol, candidates ...*Symbol) *Symbol {
	for _, s := range candidates {
		if s != nil && s != exclude {
			return s
		}
	}
	return nil
}
