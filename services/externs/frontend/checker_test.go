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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checkerFixture = `
interface Foo {
	bar: { a: string; b(): void };
	baz: string;
	cb: () => void;
}
interface Base { x: number }
interface Derived extends Base { y: string }
interface P { a: string; b: string }
interface Q { a: number }
interface G<T> { v: T }

declare class C {
	constructor();
	static s: number;
	m(): void;
}
declare enum E { A, B }
declare namespace NS {
	interface Inner { z: number }
	var inner: Inner;
}
type Alias = Foo;

declare var arr: string[];
declare var arr2: Array<number>;
declare var maybe: string | null;
declare var inst: Foo;
declare var aliased: Alias;
declare var qualified: NS.Inner;
declare var date: Date;
declare var pq: P | Q;
declare var tuple: [string, number];
declare var ctor: typeof C;
declare var lit: { k: number };
declare var fns: (() => void)[];
declare var bool: boolean;
declare var num = 1;
declare var obj = { a: 1 };
`

func fixtureProgram(t *testing.T) (*Program, *Checker) {
	t.Helper()
	p := NewProgram(parse(t, "fixture.d.ts", checkerFixture))
	return p, p.Checker()
}

func global(t *testing.T, p *Program, name string) *Symbol {
	t.Helper()
	sym := p.Globals().Lookup(name)
	require.NotNil(t, sym, name)
	return sym
}

func propNames(syms []*Symbol) []string {
	var out []string
	for _, s := range syms {
		out = append(out, s.Name)
	}
	return out
}

func TestChecker_VariableTypes(t *testing.T) {
	p, c := fixtureProgram(t)

	tests := []struct {
		name       string
		text       string
		structured bool
	}{
		{"arr", "string[]", true},
		{"arr2", "number[]", true},
		{"maybe", "string", false},
		{"inst", "Foo", true},
		{"aliased", "Foo", true},
		{"qualified", "Inner", true},
		{"date", "Date", true},
		{"pq", "P | Q", true},
		{"tuple", "[string, number]", true},
		{"ctor", "typeof C", true},
		{"fns", "(() => void)[]", true},
		{"bool", "boolean", false},
		{"num", "number", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ := c.TypeOfSymbol(global(t, p, tt.name))
			assert.Equal(t, tt.text, c.TypeToString(typ))
			assert.Equal(t, tt.structured, c.IsStructuredType(typ))
		})
	}
}

func TestChecker_PropertySignatureTypes(t *testing.T) {
	p, c := fixtureProgram(t)
	foo := global(t, p, "Foo")

	bar := foo.Members.Lookup("bar")
	require.NotNil(t, bar)
	barType := c.TypeOfSymbol(bar)
	assert.True(t, barType.IsStructured())
	assert.True(t, barType.IsAnonymous())
	props := c.PropertiesOfType(barType)
	assert.Equal(t, []string{"a", "b"}, propNames(props))
	for _, prop := range props {
		assert.False(t, prop.IsTransient())
	}

	baz := c.TypeOfSymbol(foo.Members.Lookup("baz"))
	assert.False(t, baz.IsStructured())

	cb := c.TypeOfSymbol(foo.Members.Lookup("cb"))
	assert.True(t, cb.IsAnonymous())
	assert.Empty(t, c.PropertiesOfType(cb))
}

func TestChecker_InstanceProperties(t *testing.T) {
	p, c := fixtureProgram(t)

	inst := c.TypeOfSymbol(global(t, p, "inst"))
	assert.Equal(t, []string{"bar", "baz", "cb"}, propNames(c.PropertiesOfType(inst)))

	derived := global(t, p, "Derived")
	typ := c.instanceType(derived, &TypeExpr{})
	assert.Equal(t, []string{"y", "x"}, propNames(c.PropertiesOfType(typ)))

	assert.Empty(t, c.PropertiesOfType(c.TypeOfSymbol(global(t, p, "date"))))
}

func TestChecker_ClassValueSide(t *testing.T) {
	p, c := fixtureProgram(t)
	cls := global(t, p, "C")

	assert.Equal(t, []string{"__constructor", "m"}, propNames(cls.Members.Symbols()))
	assert.Equal(t, []string{"s"}, propNames(c.ExportsOfModule(cls)))

	props := c.PropertiesOfType(c.TypeOfSymbol(cls))
	require.Len(t, props, 2)
	assert.Equal(t, "s", props[0].Name)
	assert.False(t, props[0].IsTransient())
	assert.Equal(t, "prototype", props[1].Name)
	assert.False(t, props[1].IsTransient())
	assert.True(t, props[1].Flags.Has(SymbolProperty|SymbolPrototype))
	assert.Same(t, props[1], c.PropertiesOfType(c.TypeOfSymbol(cls))[1])
}

func TestChecker_Enum(t *testing.T) {
	p, c := fixtureProgram(t)
	e := global(t, p, "E")

	typ := c.TypeOfSymbol(e)
	assert.True(t, typ.IsAnonymous())
	props := c.PropertiesOfType(typ)
	assert.Equal(t, []string{"A", "B"}, propNames(props))
	for _, prop := range props {
		assert.True(t, prop.Flags.Has(SymbolEnumMember))
		assert.False(t, c.TypeOfSymbol(prop).IsStructured())
	}
}

func TestChecker_Namespace(t *testing.T) {
	p, c := fixtureProgram(t)
	ns := global(t, p, "NS")

	assert.True(t, ns.Flags.Has(SymbolModule))
	assert.Equal(t, []string{"Inner", "inner"}, propNames(c.ExportsOfModule(ns)))
}

func TestChecker_TransientProperties(t *testing.T) {
	p, c := fixtureProgram(t)

	pq := c.PropertiesOfType(c.TypeOfSymbol(global(t, p, "pq")))
	require.Len(t, pq, 1)
	assert.Equal(t, "a", pq[0].Name)
	assert.True(t, pq[0].IsTransient())

	tuple := c.PropertiesOfType(c.TypeOfSymbol(global(t, p, "tuple")))
	assert.Equal(t, []string{"0", "1"}, propNames(tuple))
	assert.True(t, tuple[0].IsTransient())

	obj := c.TypeOfSymbol(global(t, p, "obj"))
	assert.True(t, obj.IsStructured())
	objProps := c.PropertiesOfType(obj)
	require.Len(t, objProps, 1)
	assert.True(t, objProps[0].IsTransient())
}

func TestChecker_TypeParameter(t *testing.T) {
	p, c := fixtureProgram(t)
	v := global(t, p, "G").Members.Lookup("v")
	require.NotNil(t, v)
	assert.False(t, c.TypeOfSymbol(v).IsStructured())
}

func TestChecker_MemberRedeclarationLastWins(t *testing.T) {
	p := NewProgram(
		parse(t, "one.d.ts", "interface Foo {\n\t/** first */\n\tbar: string;\n\tkeep: number;\n}\n"),
		parse(t, "two.d.ts", "interface Foo {\n\t/** second */\n\tbar: string;\n}\n"),
	)
	c := p.Checker()
	foo := global(t, p, "Foo")

	assert.Len(t, foo.Declarations, 2)
	assert.Equal(t, []string{"bar", "keep"}, propNames(foo.Members.Symbols()))

	bar := foo.Members.Lookup("bar")
	require.Len(t, bar.Declarations, 1)
	assert.Equal(t, []string{"second"}, c.DocumentationComment(bar))
}

func TestChecker_ModuleScopes(t *testing.T) {
	p := NewProgram(
		parse(t, "script.d.ts", "declare var shared: number;\n"),
		parse(t, "mod.d.ts", "export declare var local: number;\nexport = local;\n"),
	)

	assert.NotNil(t, p.Globals().Lookup("shared"))
	assert.Nil(t, p.Globals().Lookup("local"))

	mod := p.SourceFiles()[1]
	require.True(t, mod.IsExternalModule)
	assert.NotNil(t, mod.locals.Lookup("local"))

	alias := mod.locals.Lookup("export=")
	require.NotNil(t, alias)
	assert.Equal(t, "number", p.Checker().TypeToString(p.Checker().TypeOfSymbol(alias)))
}

func TestChecker_SyntheticSymbol(t *testing.T) {
	_, c := fixtureProgram(t)
	sym := NewSyntheticSymbol("console")

	assert.True(t, sym.IsSynthetic())
	assert.Nil(t, c.DocumentationComment(sym))
	assert.False(t, c.IsStructuredType(c.TypeOfSymbol(sym)))
	assert.Empty(t, c.ExportsOfModule(sym))
}
