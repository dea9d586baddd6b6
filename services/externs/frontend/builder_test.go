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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, name, src string) *SourceFile {
	t.Helper()
	f, err := ParseSource(context.Background(), name, []byte(src))
	require.NoError(t, err)
	require.NotNil(t, f)
	return f
}

func childNames(n *Node) []string {
	var out []string
	for _, c := range n.Children {
		out = append(out, c.Name)
	}
	return out
}

func TestParseSource_Interface(t *testing.T) {
	f := parse(t, "a.d.ts", `interface Foo {
	bar: string;
	"1x": number;
	baz(): void;
}`)

	assert.True(t, f.IsDeclarationFile)
	assert.False(t, f.IsExternalModule)
	require.Len(t, f.Statements(), 1)

	foo := f.Statements()[0]
	assert.Equal(t, KindInterfaceDeclaration, foo.Kind)
	assert.Equal(t, "Foo", foo.Name)
	assert.True(t, foo.ParentIsSourceFile())
	assert.Equal(t, []string{"bar", "1x", "baz"}, childNames(foo))
	assert.Equal(t, KindPropertySignature, foo.Children[0].Kind)
	assert.Equal(t, KindMethodSignature, foo.Children[2].Kind)
	require.NotNil(t, foo.Children[0].Type)
	assert.Equal(t, TypeExprKeyword, foo.Children[0].Type.Kind)
}

func TestParseSource_Modifiers(t *testing.T) {
	f := parse(t, "m.ts", `export declare function f(): void;
declare var v: number;
export const c = 1, d = "x";
abstract class A {}
`)

	assert.False(t, f.IsDeclarationFile)
	assert.True(t, f.IsExternalModule)
	stmts := f.Statements()
	require.Len(t, stmts, 4)

	assert.Equal(t, KindFunctionDeclaration, stmts[0].Kind)
	assert.True(t, stmts[0].Flags.Has(FlagExport|FlagAmbient))

	assert.Equal(t, KindVariableStatement, stmts[1].Kind)
	assert.False(t, stmts[1].IsExported())
	require.Len(t, stmts[1].Children, 1)
	assert.Equal(t, "v", stmts[1].Children[0].Name)

	require.Len(t, stmts[2].Children, 2)
	for _, d := range stmts[2].Children {
		assert.Equal(t, KindVariableDeclaration, d.Kind)
		assert.True(t, d.IsExported(), d.Name)
		require.NotNil(t, d.Init)
		assert.Equal(t, ExprLiteral, d.Init.Kind)
	}

	assert.Equal(t, KindClassDeclaration, stmts[3].Kind)
	assert.True(t, stmts[3].Flags.Has(FlagAbstract))
}

func TestParseSource_Modules(t *testing.T) {
	f := parse(t, "n.d.ts", `declare namespace A.B {
	var x: number;
}
declare module "foo/bar" {
	export function g(): void;
}
declare module Plain {}
`)

	stmts := f.Statements()
	require.Len(t, stmts, 3)

	a := stmts[0]
	assert.Equal(t, KindModuleDeclaration, a.Kind)
	assert.Equal(t, "A", a.Name)
	assert.True(t, a.Flags.Has(FlagNamespace))
	require.Len(t, a.Children, 1)

	b := a.Children[0]
	assert.Equal(t, KindModuleDeclaration, b.Kind)
	assert.Equal(t, "B", b.Name)
	assert.True(t, b.IsExported())
	require.Len(t, b.Children, 1)
	assert.Equal(t, KindModuleBlock, b.Children[0].Kind)

	assert.Equal(t, `"foo/bar"`, stmts[1].Name)
	assert.False(t, stmts[1].Flags.Has(FlagNamespace))

	assert.Equal(t, "Plain", stmts[2].Name)
	assert.False(t, stmts[2].Flags.Has(FlagNamespace))
}

func TestParseSource_Class(t *testing.T) {
	f := parse(t, "c.d.ts", `declare class C extends Base {
	constructor(a: string);
	static make(): C;
	name: string;
	[key: string]: any;
}`)

	require.Len(t, f.Statements(), 1)
	c := f.Statements()[0]
	assert.Equal(t, "C", c.Name)
	require.Len(t, c.Heritage, 1)
	assert.Equal(t, "Base", c.Heritage[0].Name)

	kinds := make(map[NodeKind]*Node)
	for _, m := range c.Children {
		kinds[m.Kind] = m
	}
	require.Contains(t, kinds, KindConstructor)
	require.Contains(t, kinds, KindPropertyDeclaration)
	require.Contains(t, kinds, KindIndexSignature)
	assert.Equal(t, "name", kinds[KindPropertyDeclaration].Name)
}

func TestParseSource_Enum(t *testing.T) {
	f := parse(t, "e.d.ts", `declare enum Color { Red, Green = 2, "Blue" }`)
	require.Len(t, f.Statements(), 1)
	e := f.Statements()[0]
	assert.Equal(t, KindEnumDeclaration, e.Kind)
	assert.Equal(t, []string{"Red", "Green", "Blue"}, childNames(e))
}

func TestParseSource_JSDoc(t *testing.T) {
	f := parse(t, "d.d.ts", `/**
 * Hello
 * world
 * @param x ignored
 */
export interface I {
	/** member doc */
	m: string;
	// not jsdoc
	n: string;
}
`)

	require.Len(t, f.Statements(), 1)
	i := f.Statements()[0]
	assert.Equal(t, []string{"Hello", "world"}, i.Doc)
	require.Len(t, i.Children, 2)
	assert.Equal(t, []string{"member doc"}, i.Children[0].Doc)
	assert.Nil(t, i.Children[1].Doc)
}

func TestParseSource_Directives(t *testing.T) {
	f := parse(t, "lib.d.ts", `/// <reference path="b.d.ts" />
/// <reference no-default-lib="true"/>
/// <reference path='./sub/c.d.ts'/>
declare var x: number;
`)

	assert.Equal(t, []string{"b.d.ts", "./sub/c.d.ts"}, f.ReferencedFiles)
	assert.True(t, f.HasNoDefaultLib)
}

func TestParseSource_InvalidUTF8(t *testing.T) {
	_, err := ParseSource(context.Background(), "bad.d.ts", []byte{0xff, 0xfe, 0xfd})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidContent))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "bad.d.ts", perr.FilePath)
}

func TestParseSource_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ParseSource(ctx, "x.d.ts", []byte("declare var x: number;"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseJSDoc(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"single line", "/** Hello */", []string{"Hello"}},
		{"multi line", "/**\n * a\n *   b\n */", []string{"a", "  b"}},
		{"tags dropped", "/**\n * a\n * @returns x\n * more\n */", []string{"a"}},
		{"only tags", "/** @deprecated */", nil},
		{"plain block", "/* nope */", nil},
		{"line comment", "// nope", nil},
		{"empty", "/**/", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseJSDoc(tt.raw))
		})
	}
}
