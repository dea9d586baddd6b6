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

// bind creates symbols for every file, in program order.
//
// Script files share the global table. A file with top-level import or export
// is a module and gets its own table.
func (p *Program) bind() {
	for _, f := range p.files {
		scope := p.globals
		if f.IsExternalModule {
			f.locals = NewSymbolTable()
			scope = f.locals
		} else {
			f.locals = p.globals
		}
		b := &binder{program: p, file: f}
		b.statements(f.Statements(), scope, nil, false)
	}
}

type binder struct {
	program *Program
	file    *SourceFile
}

// statements binds a statement list. With a container, exported (or
// export-context) declarations go to its Exports and the rest to its Locals;
// without one they go to scope.
func (b *binder) statements(nodes []*Node, scope *SymbolTable, container *Symbol, exportContext bool) {
	for _, n := range nodes {
		table := scope
		if container != nil {
			table = container.Locals
			if n.IsExported() || exportContext {
				table = container.Exports
			}
			if n.Kind == KindExportAssignment || n.Kind == KindExportDeclaration {
				table = container.Exports
			}
		}
		b.declaration(n, table, container)
	}
}

func (b *binder) declaration(n *Node, table *SymbolTable, container *Symbol) {
	switch n.Kind {
	case KindClassDeclaration:
		sym := table.declare(n.Name, SymbolClass, n, container)
		ensureTables(sym)
		for _, m := range n.Children {
			b.classMember(m, sym)
		}

	case KindInterfaceDeclaration:
		sym := table.declare(n.Name, SymbolInterface, n, container)
		ensureTables(sym)
		b.typeMembers(n, sym)

	case KindEnumDeclaration:
		sym := table.declare(n.Name, SymbolEnum, n, container)
		ensureTables(sym)
		for _, m := range n.Children {
			if m.Kind == KindEnumMember {
				sym.Exports.redeclare(m.Name, SymbolEnumMember, m, sym)
			}
		}

	case KindModuleDeclaration:
		b.module(n, table, container)

	case KindVariableStatement:
		for _, d := range n.Children {
			if d.Kind != KindVariableDeclaration {
				continue
			}
			target := table
			if container != nil && d.IsExported() {
				target = container.Exports
			}
			target.declare(d.Name, SymbolVariable, d, container)
			b.typeExpr(d.Type)
		}

	case KindFunctionDeclaration:
		table.declare(n.Name, SymbolFunction, n, container)

	case KindTypeAliasDeclaration:
		table.declare(n.Name, SymbolTypeAlias, n, container)
		b.typeExpr(n.Type)

	case KindExportAssignment:
		sym := table.declare(n.Name, SymbolAlias, n, container)
		sym.aliasTarget = n.Target

	case KindExportDeclaration:
		for _, s := range n.Specifiers {
			sym := table.declare(s.Exported, SymbolAlias, n, container)
			sym.aliasTarget = s.Local
		}
	}
}

func (b *binder) module(n *Node, table *SymbolTable, container *Symbol) {
	sym := table.declare(n.Name, SymbolModule, n, container)
	ensureTables(sym)

	for _, child := range n.Children {
		switch child.Kind {
		case KindModuleDeclaration:
			b.module(child, sym.Exports, sym)
		case KindModuleBlock:
			if n.Flags.Has(FlagGlobal) {
				// Global augmentations declare into the global scope; the
				// module symbol lists what they declared.
				b.statements(child.Children, b.program.globals, nil, false)
				for _, stmt := range child.Children {
					for _, s := range declaredSymbols(stmt) {
						sym.Exports.set(s)
					}
				}
				continue
			}
			exportContext := n.Flags.Has(FlagAmbient) && !hasExplicitExports(child)
			b.statements(child.Children, nil, sym, exportContext)
		}
	}
}

func (b *binder) classMember(m *Node, owner *Symbol) {
	table := owner.Members
	if m.Flags.Has(FlagStatic) {
		table = owner.Exports
	}
	switch m.Kind {
	case KindPropertyDeclaration:
		table.redeclare(m.Name, SymbolProperty, m, owner)
		b.typeExpr(m.Type)
	case KindMethodDeclaration:
		table.redeclare(m.Name, SymbolMethod, m, owner)
	case KindGetAccessor, KindSetAccessor:
		table.redeclare(m.Name, SymbolAccessor, m, owner)
	case KindConstructor:
		owner.Members.redeclare("__constructor", SymbolConstructor, m, owner)
	case KindIndexSignature:
		owner.Members.redeclare("__index", SymbolSignature, m, owner)
	}
}

// typeMembers binds the members of an interface or type literal node.
func (b *binder) typeMembers(n *Node, owner *Symbol) {
	for _, m := range n.Children {
		switch m.Kind {
		case KindPropertySignature:
			owner.Members.redeclare(m.Name, SymbolProperty, m, owner)
			b.typeExpr(m.Type)
		case KindMethodSignature:
			owner.Members.redeclare(m.Name, SymbolMethod, m, owner)
		case KindGetAccessor, KindSetAccessor:
			owner.Members.redeclare(m.Name, SymbolAccessor, m, owner)
		case KindCallSignature:
			owner.Members.redeclare("__call", SymbolSignature, m, owner)
		case KindConstructSignature:
			owner.Members.redeclare("__new", SymbolSignature, m, owner)
		case KindIndexSignature:
			owner.Members.redeclare("__index", SymbolSignature, m, owner)
		}
	}
}

// typeExpr binds every type literal nested in te.
func (b *binder) typeExpr(te *TypeExpr) {
	if te == nil {
		return
	}
	if te.Literal != nil && te.Literal.symbol == nil {
		sym := &Symbol{Name: "__type", Members: NewSymbolTable()}
		sym.addDeclaration(te.Literal, SymbolTypeLiteral)
		b.typeMembers(te.Literal, sym)
	}
	for _, e := range te.Elems {
		b.typeExpr(e)
	}
}

func ensureTables(sym *Symbol) {
	if sym.Members == nil {
		sym.Members = NewSymbolTable()
	}
	if sym.Exports == nil {
		sym.Exports = NewSymbolTable()
	}
	if sym.Locals == nil {
		sym.Locals = NewSymbolTable()
	}
}

func hasExplicitExports(block *Node) bool {
	for _, n := range block.Children {
		if n.Kind == KindExportAssignment || n.Kind == KindExportDeclaration {
			return true
		}
	}
	return false
}

func declaredSymbols(n *Node) []*Symbol {
	if n.Kind == KindVariableStatement {
		var out []*Symbol
		for _, d := range n.Children {
			if d.symbol != nil {
				out = append(out, d.symbol)
			}
		}
		return out
	}
	if n.symbol != nil {
		return []*Symbol{n.symbol}
	}
	return nil
}
