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
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// DefaultMaxFileSize is the default per-file size limit.
const DefaultMaxFileSize int64 = 20 * 1024 * 1024

// WarnFileSize is the size above which a parse logs a warning.
const WarnFileSize = 2 * 1024 * 1024

var (
	referencePathPattern = regexp.MustCompile(`^///\s*<reference\s+path\s*=\s*["']([^"']+)["']`)
	noDefaultLibPattern  = regexp.MustCompile(`^///\s*<reference\s+no-default-lib\s*=\s*["']true["']`)
)

// ParseSource parses one file into a SourceFile without binding it.
//
// Description:
//
//	Uses the tsx grammar for .tsx files and the typescript grammar otherwise.
//	Syntax errors do not fail the parse: tree-sitter recovers and the
//	declarations it could still recognise are kept. SourceFile.SyntaxErrors
//	reports whether recovery happened.
//
// Inputs:
//   - ctx: Cancellation context.
//   - fileName: Name recorded in the SourceFile; decides the dialect and
//     whether the file is a declaration file (".d.ts" suffix).
//   - content: UTF-8 source text.
//
// Outputs:
//   - *SourceFile: The declaration tree.
//   - error: ErrFileTooLarge, ErrInvalidContent or ErrParseFailed wrapped in
//     a ParseError.
func ParseSource(ctx context.Context, fileName string, content []byte) (*SourceFile, error) {
	return parseSource(ctx, fileName, content, DefaultMaxFileSize, slog.Default())
}

func parseSource(ctx context.Context, fileName string, content []byte, maxSize int64, logger *slog.Logger) (*SourceFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if int64(len(content)) > maxSize {
		return nil, &ParseError{
			FilePath: fileName,
			Message:  fmt.Sprintf("size %d exceeds limit %d", len(content), maxSize),
			Cause:    ErrFileTooLarge,
		}
	}
	if len(content) > WarnFileSize {
		logger.Warn("parsing large file",
			slog.String("file", fileName),
			slog.Int("size_bytes", len(content)))
	}
	if !utf8.Valid(content) {
		return nil, &ParseError{FilePath: fileName, Message: "content is not valid UTF-8", Cause: ErrInvalidContent}
	}

	ctx, span := startParseSpan(ctx, fileName, len(content))
	defer span.End()
	start := time.Now()

	parser := sitter.NewParser()
	dialect := "typescript"
	if strings.HasSuffix(fileName, ".tsx") {
		parser.SetLanguage(tsx.GetLanguage())
		dialect = "tsx"
	} else {
		parser.SetLanguage(typescript.GetLanguage())
	}

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		recordParseMetrics(ctx, dialect, time.Since(start), 0, false)
		return nil, &ParseError{FilePath: fileName, Message: "tree-sitter parse failed", Cause: fmt.Errorf("%w: %v", ErrParseFailed, err)}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		recordParseMetrics(ctx, dialect, time.Since(start), 0, false)
		return nil, &ParseError{FilePath: fileName, Message: "tree-sitter returned nil root node", Cause: ErrParseFailed}
	}

	file := &SourceFile{
		FileName:          fileName,
		IsDeclarationFile: strings.HasSuffix(fileName, ".d.ts"),
		SyntaxErrors:      root.HasError(),
	}
	file.Root = &Node{Kind: KindSourceFile, File: file, Line: 1}

	b := &builder{content: content, file: file}
	b.scanDirectives(root)
	b.statements(root, file.Root, 0)

	if file.SyntaxErrors {
		logger.Warn("source contains syntax errors",
			slog.String("file", fileName))
	}

	setParseSpanResult(span, b.nodes, file.SyntaxErrors)
	recordParseMetrics(ctx, dialect, time.Since(start), b.nodes, true)
	return file, nil
}

// builder converts a tree-sitter tree into declaration nodes.
type builder struct {
	content []byte
	file    *SourceFile
	nodes   int
}

func (b *builder) text(n *sitter.Node) string {
	return string(b.content[n.StartByte():n.EndByte()])
}

func (b *builder) newNode(kind NodeKind, ts *sitter.Node) *Node {
	b.nodes++
	return &Node{
		Kind:   kind,
		File:   b.file,
		Line:   int(ts.StartPoint().Row) + 1,
		Column: int(ts.StartPoint().Column),
	}
}

// scanDirectives reads the triple-slash comments before the first statement.
func (b *builder) scanDirectives(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "comment" {
			return
		}
		text := b.text(child)
		if !strings.HasPrefix(text, "///") {
			continue
		}
		if m := referencePathPattern.FindStringSubmatch(text); m != nil {
			b.file.ReferencedFiles = append(b.file.ReferencedFiles, m[1])
		}
		if noDefaultLibPattern.MatchString(text) {
			b.file.HasNoDefaultLib = true
		}
	}
}

func (b *builder) statements(container *sitter.Node, parent *Node, mods NodeFlags) {
	for i := 0; i < int(container.NamedChildCount()); i++ {
		child := container.NamedChild(i)
		b.statement(child, parent, mods, child)
	}
}

// statement dispatches one statement. mods carries modifiers collected from
// wrapping export and declare nodes; anchor is the outermost wrapper and is
// where the JSDoc comment sits.
func (b *builder) statement(ts *sitter.Node, parent *Node, mods NodeFlags, anchor *sitter.Node) {
	switch ts.Type() {
	case "export_statement":
		b.exportStatement(ts, parent, mods, anchor)
	case "ambient_declaration":
		b.ambientDeclaration(ts, parent, mods, anchor)
	case "expression_statement":
		// namespace Foo {} without declare parses as an expression.
		for i := 0; i < int(ts.NamedChildCount()); i++ {
			if inner := ts.NamedChild(i); inner.Type() == "internal_module" {
				b.module(inner, parent, mods|FlagNamespace, anchor)
			}
		}
	case "class_declaration", "class":
		b.class(ts, parent, mods, anchor)
	case "abstract_class_declaration":
		b.class(ts, parent, mods|FlagAbstract, anchor)
	case "interface_declaration":
		b.iface(ts, parent, mods, anchor)
	case "enum_declaration":
		b.enum(ts, parent, mods, anchor)
	case "type_alias_declaration":
		b.typeAlias(ts, parent, mods, anchor)
	case "function_declaration", "function_signature", "generator_function_declaration":
		b.function(ts, parent, mods, anchor)
	case "lexical_declaration", "variable_declaration":
		b.variableStatement(ts, parent, mods, anchor)
	case "module":
		b.module(ts, parent, mods, anchor)
	case "internal_module":
		b.module(ts, parent, mods|FlagNamespace, anchor)
	case "import_statement":
		if parent.Kind == KindSourceFile {
			b.file.IsExternalModule = true
		}
	}
}

func (b *builder) exportStatement(ts *sitter.Node, parent *Node, mods NodeFlags, anchor *sitter.Node) {
	if parent.Kind == KindSourceFile {
		b.file.IsExternalModule = true
	}

	mods |= FlagExport
	isAssignment := false
	for i := 0; i < int(ts.ChildCount()); i++ {
		switch ts.Child(i).Type() {
		case "default":
			mods |= FlagDefault
		case "=":
			isAssignment = true
		}
	}

	if decl := ts.ChildByFieldName("declaration"); decl != nil {
		b.statement(decl, parent, mods, anchor)
		return
	}

	for i := 0; i < int(ts.NamedChildCount()); i++ {
		child := ts.NamedChild(i)
		switch child.Type() {
		case "export_clause":
			n := b.newNode(KindExportDeclaration, ts)
			n.Flags = mods
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "export_specifier" {
					continue
				}
				nameNode := spec.ChildByFieldName("name")
				if nameNode == nil {
					continue
				}
				s := ExportSpecifier{Local: b.text(nameNode), Exported: b.text(nameNode)}
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					s.Exported = b.text(alias)
				}
				n.Specifiers = append(n.Specifiers, s)
			}
			parent.addChild(n)
			return
		case "comment", "decorator", "string":
			continue
		default:
			if !isAssignment && !mods.Has(FlagDefault) {
				continue
			}
			if isDeclarationType(child.Type()) {
				b.statement(child, parent, mods, anchor)
				return
			}
			n := b.newNode(KindExportAssignment, ts)
			n.Flags = mods
			n.Name = "default"
			if isAssignment {
				n.Name = "export="
			}
			n.Target = strings.TrimSpace(b.text(child))
			n.Doc = b.jsDoc(anchor)
			parent.addChild(n)
			return
		}
	}
}

func isDeclarationType(t string) bool {
	switch t {
	case "class_declaration", "class", "abstract_class_declaration", "interface_declaration",
		"enum_declaration", "type_alias_declaration", "function_declaration",
		"function_signature", "generator_function_declaration", "lexical_declaration",
		"variable_declaration", "module", "internal_module", "ambient_declaration":
		return true
	}
	return false
}

func (b *builder) ambientDeclaration(ts *sitter.Node, parent *Node, mods NodeFlags, anchor *sitter.Node) {
	mods |= FlagAmbient
	global := false
	for i := 0; i < int(ts.ChildCount()); i++ {
		child := ts.Child(i)
		if !child.IsNamed() {
			if child.Type() == "global" {
				global = true
			}
			continue
		}
		if global && child.Type() == "statement_block" {
			n := b.newNode(KindModuleDeclaration, ts)
			n.Name = "global"
			n.Flags = mods | FlagGlobal
			n.Doc = b.jsDoc(anchor)
			parent.addChild(n)
			block := b.newNode(KindModuleBlock, child)
			n.addChild(block)
			b.statements(child, block, 0)
			continue
		}
		b.statement(child, parent, mods, anchor)
	}
}

// jsDoc returns the lines of the /** */ comment directly before anchor.
func (b *builder) jsDoc(anchor *sitter.Node) []string {
	if anchor == nil {
		return nil
	}
	prev := anchor.PrevSibling()
	for prev != nil && !prev.IsNamed() && (prev.Type() == ";" || prev.Type() == ",") {
		prev = prev.PrevSibling()
	}
	if prev == nil || prev.Type() != "comment" {
		return nil
	}
	return ParseJSDoc(b.text(prev))
}

// =============================================================================
// Declarations
// =============================================================================

func (b *builder) module(ts *sitter.Node, parent *Node, mods NodeFlags, anchor *sitter.Node) {
	nameNode := nameOf(ts)
	if nameNode == nil {
		return
	}
	ambient := mods.Has(FlagAmbient) || b.file.IsDeclarationFile || inAmbientModule(parent)

	var names []string
	switch nameNode.Type() {
	case "string":
		names = []string{`"` + stringContent(b.text(nameNode)) + `"`}
	default:
		names = strings.Split(strings.Join(strings.Fields(b.text(nameNode)), ""), ".")
	}

	outer := b.newNode(KindModuleDeclaration, ts)
	outer.Name = names[0]
	outer.Flags = mods
	if ambient {
		outer.Flags |= FlagAmbient
	}
	outer.Doc = b.jsDoc(anchor)
	parent.addChild(outer)

	// namespace A.B.C {} nests exported modules.
	innermost := outer
	for _, name := range names[1:] {
		inner := b.newNode(KindModuleDeclaration, ts)
		inner.Name = name
		inner.Flags = FlagExport | (outer.Flags & (FlagNamespace | FlagAmbient))
		innermost.addChild(inner)
		innermost = inner
	}

	body := ts.ChildByFieldName("body")
	if body == nil {
		return
	}
	block := b.newNode(KindModuleBlock, body)
	innermost.addChild(block)
	b.statements(body, block, 0)
}

func inAmbientModule(n *Node) bool {
	for ; n != nil; n = n.Parent {
		if n.Kind == KindModuleDeclaration && n.Flags.Has(FlagAmbient) {
			return true
		}
	}
	return false
}

func (b *builder) class(ts *sitter.Node, parent *Node, mods NodeFlags, anchor *sitter.Node) {
	n := b.newNode(KindClassDeclaration, ts)
	n.Flags = mods
	n.Doc = b.jsDoc(anchor)
	if nameNode := nameOf(ts); nameNode != nil {
		n.Name = b.text(nameNode)
	}
	if n.Name == "" && mods.Has(FlagDefault) {
		n.Name = "default"
	}
	if n.Name == "" {
		return
	}

	var body *sitter.Node
	for i := 0; i < int(ts.ChildCount()); i++ {
		child := ts.Child(i)
		switch child.Type() {
		case "type_parameters":
			n.TypeParams = b.typeParameters(child)
		case "class_heritage":
			n.Heritage = append(n.Heritage, b.classHeritage(child, n)...)
		case "class_body":
			body = child
		case "abstract":
			n.Flags |= FlagAbstract
		}
	}
	parent.addChild(n)

	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		if m := b.classMember(body.NamedChild(i), n); m != nil {
			n.addChild(m)
		}
	}
}

func (b *builder) classHeritage(ts *sitter.Node, owner *Node) []*TypeExpr {
	var out []*TypeExpr
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		clause := ts.NamedChild(i)
		if clause.Type() != "extends_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			gc := clause.NamedChild(j)
			switch gc.Type() {
			case "identifier", "member_expression", "nested_identifier":
				name := strings.Join(strings.Fields(b.text(gc)), "")
				out = append(out, &TypeExpr{Kind: TypeExprReference, Name: name, Text: name})
			case "type_arguments":
				if len(out) > 0 {
					last := out[len(out)-1]
					last.Elems = b.typeArguments(gc, owner)
					last.Text += collapse(b.text(gc))
				}
			default:
				if te := b.typeExpr(gc, owner); te.Kind == TypeExprReference {
					out = append(out, te)
				}
			}
		}
	}
	return out
}

func (b *builder) classMember(ts *sitter.Node, owner *Node) *Node {
	var n *Node
	switch ts.Type() {
	case "method_definition", "method_signature", "abstract_method_signature":
		n = b.newNode(KindMethodDeclaration, ts)
		n.Name = b.memberName(nameOf(ts))
		if n.Name == "constructor" {
			n.Kind = KindConstructor
		}
		if ts.Type() == "abstract_method_signature" {
			n.Flags |= FlagAbstract
		}
	case "public_field_definition", "property_definition", "field_definition":
		n = b.newNode(KindPropertyDeclaration, ts)
		n.Name = b.memberName(nameOf(ts))
		if t := ts.ChildByFieldName("type"); t != nil {
			n.Type = b.typeExpr(t, n)
		}
		if v := ts.ChildByFieldName("value"); v != nil {
			n.Init = b.expr(v)
		}
	case "index_signature":
		n = b.newNode(KindIndexSignature, ts)
	default:
		return nil
	}

	for i := 0; i < int(ts.ChildCount()); i++ {
		switch ts.Child(i).Type() {
		case "static":
			n.Flags |= FlagStatic
		case "abstract":
			n.Flags |= FlagAbstract
		case "get":
			if n.Kind == KindMethodDeclaration {
				n.Kind = KindGetAccessor
			}
		case "set":
			if n.Kind == KindMethodDeclaration {
				n.Kind = KindSetAccessor
			}
		}
	}
	if n.Name == "" && n.Kind != KindIndexSignature {
		return nil
	}
	n.Doc = b.jsDoc(ts)
	return n
}

func (b *builder) iface(ts *sitter.Node, parent *Node, mods NodeFlags, anchor *sitter.Node) {
	n := b.newNode(KindInterfaceDeclaration, ts)
	n.Flags = mods
	n.Doc = b.jsDoc(anchor)
	if nameNode := nameOf(ts); nameNode != nil {
		n.Name = b.text(nameNode)
	}
	if n.Name == "" {
		return
	}

	var body *sitter.Node
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		child := ts.NamedChild(i)
		switch child.Type() {
		case "type_parameters":
			n.TypeParams = b.typeParameters(child)
		case "extends_type_clause", "extends_clause":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if te := b.typeExpr(child.NamedChild(j), n); te.Kind == TypeExprReference {
					n.Heritage = append(n.Heritage, te)
				}
			}
		case "object_type", "interface_body":
			body = child
		}
	}
	parent.addChild(n)

	if body != nil {
		b.typeMembers(body, n)
	}
}

// typeMembers adds the members of an interface body or object type to owner.
func (b *builder) typeMembers(body *sitter.Node, owner *Node) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		ts := body.NamedChild(i)
		var n *Node
		switch ts.Type() {
		case "property_signature":
			n = b.newNode(KindPropertySignature, ts)
			n.Name = b.memberName(nameOf(ts))
			if t := ts.ChildByFieldName("type"); t != nil {
				n.Type = b.typeExpr(t, n)
			}
		case "method_signature":
			n = b.newNode(KindMethodSignature, ts)
			n.Name = b.memberName(nameOf(ts))
			for j := 0; j < int(ts.ChildCount()); j++ {
				switch ts.Child(j).Type() {
				case "get":
					n.Kind = KindGetAccessor
				case "set":
					n.Kind = KindSetAccessor
				}
			}
		case "call_signature":
			n = b.newNode(KindCallSignature, ts)
		case "construct_signature":
			n = b.newNode(KindConstructSignature, ts)
		case "index_signature":
			n = b.newNode(KindIndexSignature, ts)
		default:
			continue
		}
		if n.Name == "" && (n.Kind == KindPropertySignature || n.Kind == KindMethodSignature) {
			continue
		}
		n.Doc = b.jsDoc(ts)
		owner.addChild(n)
	}
}

func (b *builder) enum(ts *sitter.Node, parent *Node, mods NodeFlags, anchor *sitter.Node) {
	n := b.newNode(KindEnumDeclaration, ts)
	n.Flags = mods
	n.Doc = b.jsDoc(anchor)
	if nameNode := nameOf(ts); nameNode != nil {
		n.Name = b.text(nameNode)
	}
	if n.Name == "" {
		return
	}
	parent.addChild(n)

	body := ts.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		nameNode := child
		switch child.Type() {
		case "enum_assignment":
			nameNode = nameOf(child)
		case "property_identifier", "string", "number", "identifier":
		default:
			continue
		}
		if nameNode == nil {
			continue
		}
		m := b.newNode(KindEnumMember, child)
		m.Name = b.memberName(nameNode)
		m.Doc = b.jsDoc(child)
		n.addChild(m)
	}
}

func (b *builder) typeAlias(ts *sitter.Node, parent *Node, mods NodeFlags, anchor *sitter.Node) {
	n := b.newNode(KindTypeAliasDeclaration, ts)
	n.Flags = mods
	n.Doc = b.jsDoc(anchor)
	if nameNode := nameOf(ts); nameNode != nil {
		n.Name = b.text(nameNode)
	}
	if n.Name == "" {
		return
	}
	if tp := ts.ChildByFieldName("type_parameters"); tp != nil {
		n.TypeParams = b.typeParameters(tp)
	}
	if v := ts.ChildByFieldName("value"); v != nil {
		n.Type = b.typeExpr(v, n)
	}
	parent.addChild(n)
}

func (b *builder) function(ts *sitter.Node, parent *Node, mods NodeFlags, anchor *sitter.Node) {
	n := b.newNode(KindFunctionDeclaration, ts)
	n.Flags = mods
	n.Doc = b.jsDoc(anchor)
	if nameNode := nameOf(ts); nameNode != nil {
		n.Name = b.text(nameNode)
	}
	if n.Name == "" && mods.Has(FlagDefault) {
		n.Name = "default"
	}
	if n.Name == "" {
		return
	}
	parent.addChild(n)
}

// variableStatement builds a VariableStatement whose declarators inherit
// the statement's export flag.
func (b *builder) variableStatement(ts *sitter.Node, parent *Node, mods NodeFlags, anchor *sitter.Node) {
	stmt := b.newNode(KindVariableStatement, ts)
	stmt.Flags = mods
	doc := b.jsDoc(anchor)
	stmt.Doc = doc

	for i := 0; i < int(ts.NamedChildCount()); i++ {
		child := ts.NamedChild(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil || nameNode.Type() != "identifier" {
			continue
		}
		d := b.newNode(KindVariableDeclaration, child)
		d.Name = b.text(nameNode)
		d.Flags = mods & (FlagExport | FlagAmbient)
		d.Doc = doc
		if t := child.ChildByFieldName("type"); t != nil {
			d.Type = b.typeExpr(t, d)
		}
		if v := child.ChildByFieldName("value"); v != nil {
			d.Init = b.expr(v)
		}
		stmt.addChild(d)
	}
	parent.addChild(stmt)
}

func (b *builder) typeParameters(ts *sitter.Node) []string {
	var out []string
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		child := ts.NamedChild(i)
		if child.Type() != "type_parameter" {
			continue
		}
		if name := child.ChildByFieldName("name"); name != nil {
			out = append(out, b.text(name))
		} else if child.NamedChildCount() > 0 {
			out = append(out, b.text(child.NamedChild(0)))
		}
	}
	return out
}

// memberName returns the symbol name of a property name node.
func (b *builder) memberName(ts *sitter.Node) string {
	if ts == nil {
		return ""
	}
	switch ts.Type() {
	case "string":
		return stringContent(b.text(ts))
	case "computed_property_name":
		inner := strings.Trim(collapse(b.text(ts)), "[]")
		if rest, ok := strings.CutPrefix(inner, "Symbol."); ok {
			return "__@" + rest
		}
		return "__computed"
	default:
		return b.text(ts)
	}
}

// =============================================================================
// Types and expressions
// =============================================================================

func (b *builder) typeExpr(ts *sitter.Node, owner *Node) *TypeExpr {
	switch ts.Type() {
	case "type_annotation", "opting_type_annotation", "omitting_type_annotation",
		"parenthesized_type", "readonly_type":
		for i := 0; i < int(ts.NamedChildCount()); i++ {
			if child := ts.NamedChild(i); child.Type() != "comment" {
				return b.typeExpr(child, owner)
			}
		}
		return &TypeExpr{Kind: TypeExprOther, Text: collapse(b.text(ts))}
	}

	te := &TypeExpr{Text: collapse(b.text(ts))}
	switch ts.Type() {
	case "predefined_type":
		te.Kind = TypeExprKeyword
		te.Name = te.Text
	case "existential_type":
		te.Kind = TypeExprKeyword
		te.Name = "any"
	case "literal_type":
		if te.Text == "null" || te.Text == "undefined" {
			te.Kind = TypeExprKeyword
			te.Name = te.Text
		} else {
			te.Kind = TypeExprLiteral
			te.Name = te.Text
		}
	case "type_identifier", "nested_type_identifier", "identifier":
		te.Kind = TypeExprReference
		te.Name = strings.ReplaceAll(te.Text, " ", "")
	case "generic_type":
		te.Kind = TypeExprReference
		if name := ts.ChildByFieldName("name"); name != nil {
			te.Name = collapse(b.text(name))
		} else if ts.NamedChildCount() > 0 {
			te.Name = collapse(b.text(ts.NamedChild(0)))
		}
		te.Name = strings.ReplaceAll(te.Name, " ", "")
		for i := 0; i < int(ts.NamedChildCount()); i++ {
			if child := ts.NamedChild(i); child.Type() == "type_arguments" {
				te.Elems = b.typeArguments(child, owner)
			}
		}
	case "array_type":
		te.Kind = TypeExprArray
		if ts.NamedChildCount() > 0 {
			te.Elems = []*TypeExpr{b.typeExpr(ts.NamedChild(0), owner)}
		}
	case "tuple_type":
		te.Kind = TypeExprTuple
		for i := 0; i < int(ts.NamedChildCount()); i++ {
			te.Elems = append(te.Elems, b.typeExpr(ts.NamedChild(i), owner))
		}
	case "union_type":
		te.Kind = TypeExprUnion
		te.Elems = b.flatten(ts, "union_type", owner)
	case "intersection_type":
		te.Kind = TypeExprIntersection
		te.Elems = b.flatten(ts, "intersection_type", owner)
	case "function_type":
		te.Kind = TypeExprFunction
	case "constructor_type":
		te.Kind = TypeExprConstructor
	case "object_type":
		te.Kind = TypeExprObject
		te.Literal = b.typeLiteral(ts, owner)
	case "type_query":
		te.Kind = TypeExprQuery
		te.Name = strings.ReplaceAll(strings.TrimSpace(strings.TrimPrefix(te.Text, "typeof")), " ", "")
	default:
		te.Kind = TypeExprOther
	}
	return te
}

func (b *builder) flatten(ts *sitter.Node, kind string, owner *Node) []*TypeExpr {
	var out []*TypeExpr
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		child := ts.NamedChild(i)
		if child.Type() == kind {
			out = append(out, b.flatten(child, kind, owner)...)
			continue
		}
		out = append(out, b.typeExpr(child, owner))
	}
	return out
}

func (b *builder) typeArguments(ts *sitter.Node, owner *Node) []*TypeExpr {
	var out []*TypeExpr
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		out = append(out, b.typeExpr(ts.NamedChild(i), owner))
	}
	return out
}

// typeLiteral builds the TypeLiteral node of an object type and hangs it
// under owner.
func (b *builder) typeLiteral(ts *sitter.Node, owner *Node) *Node {
	n := b.newNode(KindTypeLiteral, ts)
	n.Name = "__type"
	b.typeMembers(ts, n)
	if owner != nil {
		owner.addChild(n)
	}
	return n
}

func (b *builder) expr(ts *sitter.Node) *Expr {
	e := &Expr{Text: collapse(b.text(ts))}
	switch ts.Type() {
	case "number", "string", "template_string", "true", "false", "null", "undefined", "regex":
		e.Kind = ExprLiteral
		e.Name = ts.Type()
	case "array":
		e.Kind = ExprArray
	case "object":
		e.Kind = ExprObject
		for i := 0; i < int(ts.NamedChildCount()); i++ {
			child := ts.NamedChild(i)
			switch child.Type() {
			case "pair":
				if key := child.ChildByFieldName("key"); key != nil {
					e.Props = append(e.Props, b.memberName(key))
				}
			case "method_definition":
				if key := child.ChildByFieldName("name"); key != nil {
					e.Props = append(e.Props, b.memberName(key))
				}
			case "shorthand_property_identifier":
				e.Props = append(e.Props, b.text(child))
			}
		}
	case "arrow_function", "function", "function_expression", "generator_function":
		e.Kind = ExprFunction
	case "new_expression":
		e.Kind = ExprNew
		if c := ts.ChildByFieldName("constructor"); c != nil {
			e.Name = strings.ReplaceAll(collapse(b.text(c)), " ", "")
		}
	case "identifier", "member_expression":
		e.Kind = ExprIdentifier
		e.Name = strings.ReplaceAll(e.Text, " ", "")
	case "parenthesized_expression":
		if ts.NamedChildCount() > 0 {
			return b.expr(ts.NamedChild(0))
		}
	default:
		e.Kind = ExprOther
	}
	return e
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stringContent strips the quotes of a string literal.
func stringContent(raw string) string {
	if len(raw) >= 2 {
		q := raw[0]
		if (q == '"' || q == '\'' || q == '`') && raw[len(raw)-1] == q {
			return raw[1 : len(raw)-1]
		}
	}
	return raw
}

// nameOf returns the name field of a declaration, falling back to the first
// child that can carry a name.
func nameOf(ts *sitter.Node) *sitter.Node {
	if n := ts.ChildByFieldName("name"); n != nil {
		return n
	}
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		switch child := ts.NamedChild(i); child.Type() {
		case "identifier", "type_identifier", "property_identifier", "string", "number", "nested_identifier":
			return child
		}
	}
	return nil
}
