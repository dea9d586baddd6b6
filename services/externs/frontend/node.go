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

// NodeKind identifies the syntactic kind of a declaration tree node.
type NodeKind int

const (
	KindOther NodeKind = iota
	KindSourceFile
	KindClassDeclaration
	KindInterfaceDeclaration
	KindModuleDeclaration
	KindModuleBlock
	KindEnumDeclaration
	KindEnumMember
	KindPropertySignature
	KindPropertyDeclaration
	KindMethodSignature
	KindMethodDeclaration
	KindConstructor
	KindCallSignature
	KindConstructSignature
	KindIndexSignature
	KindGetAccessor
	KindSetAccessor
	KindVariableStatement
	KindVariableDeclaration
	KindFunctionDeclaration
	KindTypeAliasDeclaration
	KindExportAssignment
	KindExportDeclaration
	KindTypeLiteral
)

var nodeKindNames = map[NodeKind]string{
	KindOther:                "Other",
	KindSourceFile:           "SourceFile",
	KindClassDeclaration:     "ClassDeclaration",
	KindInterfaceDeclaration: "InterfaceDeclaration",
	KindModuleDeclaration:    "ModuleDeclaration",
	KindModuleBlock:          "ModuleBlock",
	KindEnumDeclaration:      "EnumDeclaration",
	KindEnumMember:           "EnumMember",
	KindPropertySignature:    "PropertySignature",
	KindPropertyDeclaration:  "PropertyDeclaration",
	KindMethodSignature:      "MethodSignature",
	KindMethodDeclaration:    "MethodDeclaration",
	KindConstructor:          "Constructor",
	KindCallSignature:        "CallSignature",
	KindConstructSignature:   "ConstructSignature",
	KindIndexSignature:       "IndexSignature",
	KindGetAccessor:          "GetAccessor",
	KindSetAccessor:          "SetAccessor",
	KindVariableStatement:    "VariableStatement",
	KindVariableDeclaration:  "VariableDeclaration",
	KindFunctionDeclaration:  "FunctionDeclaration",
	KindTypeAliasDeclaration: "TypeAliasDeclaration",
	KindExportAssignment:     "ExportAssignment",
	KindExportDeclaration:    "ExportDeclaration",
	KindTypeLiteral:          "TypeLiteral",
}

// String returns the kind name.
func (k NodeKind) String() string {
	if s, ok := nodeKindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// NodeFlags are modifier bits carried by a node.
type NodeFlags uint32

const (
	// FlagExport marks a declaration written with the export keyword, or a
	// variable declarator of an exported statement.
	FlagExport NodeFlags = 1 << iota

	// FlagAbstract marks abstract classes and members.
	FlagAbstract

	// FlagNamespace marks modules declared with the namespace keyword.
	FlagNamespace

	// FlagAmbient marks declarations written with declare.
	FlagAmbient

	// FlagStatic marks static class members.
	FlagStatic

	// FlagDefault marks export default declarations.
	FlagDefault

	// FlagGlobal marks the module of a declare global { } block.
	FlagGlobal
)

// Has reports whether all bits in f are set.
func (fl NodeFlags) Has(f NodeFlags) bool {
	return fl&f == f
}

// ExportSpecifier is one name of an export { a as b } clause.
type ExportSpecifier struct {
	// Local is the name inside the module.
	Local string

	// Exported is the name seen from outside. Equal to Local without "as".
	Exported string
}

// Node is one node of a declaration tree.
//
// Only declaration-bearing syntax is modelled. Expressions and statements
// that cannot declare anything become KindOther nodes or are dropped.
type Node struct {
	Kind  NodeKind
	Flags NodeFlags

	// Name is the declared name. String-named modules keep double quotes.
	Name string

	Parent   *Node
	Children []*Node
	File     *SourceFile

	// Line is 1-indexed, Column 0-indexed.
	Line   int
	Column int

	// Type is the annotated type (property, variable, alias value).
	Type *TypeExpr

	// Init is the initializer of a variable declaration.
	Init *Expr

	// Heritage lists extends clauses (class: one, interface: any number).
	Heritage []*TypeExpr

	// TypeParams are the declared generic parameter names.
	TypeParams []string

	// Target is the expression text of export = Target.
	Target string

	// Specifiers are the names of an export { } clause.
	Specifiers []ExportSpecifier

	// Doc holds the JSDoc lines attached to this declaration.
	Doc []string

	symbol *Symbol
}

// IsExported reports whether the node carries the export modifier.
func (n *Node) IsExported() bool {
	return n != nil && n.Flags.Has(FlagExport)
}

// ParentIsSourceFile reports whether n is a top-level statement.
func (n *Node) ParentIsSourceFile() bool {
	return n != nil && n.Parent != nil && n.Parent.Kind == KindSourceFile
}

// Symbol returns the symbol bound to this declaration, or nil.
func (n *Node) Symbol() *Symbol {
	if n == nil {
		return nil
	}
	return n.symbol
}

func (n *Node) addChild(child *Node) {
	if child == nil {
		return
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// TypeExprKind identifies the form of a written type.
type TypeExprKind int

const (
	TypeExprOther TypeExprKind = iota
	TypeExprKeyword
	TypeExprLiteral
	TypeExprReference
	TypeExprArray
	TypeExprTuple
	TypeExprUnion
	TypeExprIntersection
	TypeExprFunction
	TypeExprConstructor
	TypeExprObject
	TypeExprQuery
)

// TypeExpr is a written type annotation.
type TypeExpr struct {
	Kind TypeExprKind

	// Text is the source text with whitespace collapsed.
	Text string

	// Name is the keyword (string, number, ...) or the dotted reference name.
	Name string

	// Elems are the element type (array), members (tuple, union,
	// intersection) or type arguments (reference).
	Elems []*TypeExpr

	// Literal is the TypeLiteral node of an object type.
	Literal *Node
}

// ExprKind identifies the form of a variable initializer.
type ExprKind int

const (
	ExprOther ExprKind = iota
	ExprLiteral
	ExprArray
	ExprObject
	ExprFunction
	ExprNew
	ExprIdentifier
)

// Expr is a variable initializer, reduced to what type inference needs.
type Expr struct {
	Kind ExprKind
	Text string

	// Name is the constructor of new expressions or the dotted identifier.
	Name string

	// Props are the property names of an object literal.
	Props []string
}
