// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package walker

import "github.com/AleutianAI/dtsexterns/services/externs/frontend"

// HandlerKind names an entry of the dispatch table.
type HandlerKind int

const (
	HandleNone HandlerKind = iota
	HandleClass
	HandleInterface
	HandleModule
	HandleEnum
	HandlePropertySignature
	HandleStructuredVariable
	HandleFunction
	HandleVariable
	HandleVariableStatement
	HandleModuleBlock
	HandleTypeAlias
)

var handlerKindNames = map[HandlerKind]string{
	HandleNone:               "none",
	HandleClass:              "class",
	HandleInterface:          "interface",
	HandleModule:             "module",
	HandleEnum:               "enum",
	HandlePropertySignature:  "property-signature",
	HandleStructuredVariable: "structured-variable",
	HandleFunction:           "function",
	HandleVariable:           "variable",
	HandleVariableStatement:  "variable-statement",
	HandleModuleBlock:        "module-block",
	HandleTypeAlias:          "type-alias",
}

func (k HandlerKind) String() string {
	if s, ok := handlerKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Classification is the verdict for one node.
type Classification struct {
	Handler HandlerKind

	// Structured is true when the node passed the structure test.
	Structured bool

	// Recurse asks Visit to visit the node's children after the handler.
	Recurse bool
}

// structuredHandlers maps structured node kinds to their handler. Every
// structured handler recurses except the structured variable, which
// discovers its members from its type.
var structuredHandlers = map[frontend.NodeKind]Classification{
	frontend.KindClassDeclaration:     {Handler: HandleClass, Structured: true, Recurse: true},
	frontend.KindInterfaceDeclaration: {Handler: HandleInterface, Structured: true, Recurse: true},
	frontend.KindModuleDeclaration:    {Handler: HandleModule, Structured: true, Recurse: true},
	frontend.KindEnumDeclaration:      {Handler: HandleEnum, Structured: true, Recurse: true},
	frontend.KindPropertySignature:    {Handler: HandlePropertySignature, Structured: true, Recurse: true},
	frontend.KindVariableDeclaration:  {Handler: HandleStructuredVariable, Structured: true},
}

var simpleHandlers = map[frontend.NodeKind]HandlerKind{
	frontend.KindFunctionDeclaration:  HandleFunction,
	frontend.KindVariableDeclaration:  HandleVariable,
	frontend.KindVariableStatement:    HandleVariableStatement,
	frontend.KindModuleBlock:          HandleModuleBlock,
	frontend.KindTypeAliasDeclaration: HandleTypeAlias,
}

// classify returns the handler for n.
func (w *Walker) classify(n *frontend.Node) Classification {
	if w.isStructured(n) {
		if c, ok := structuredHandlers[n.Kind]; ok {
			return c
		}
		return Classification{Handler: HandleNone, Structured: true}
	}
	return Classification{Handler: simpleHandlers[n.Kind]}
}

// isStructured holds the structure policy:
//   - a property signature whose symbol is a non-transient property or enum
//     member and whose type is an anonymous object type;
//   - a variable declaration whose type is structured;
//   - a class, interface, module or enum declaration that is not abstract.
func (w *Walker) isStructured(n *frontend.Node) bool {
	switch n.Kind {
	case frontend.KindPropertySignature:
		sym := w.checker.SymbolAtLocation(n)
		if sym == nil || sym.IsTransient() {
			return false
		}
		if !sym.Flags.Has(frontend.SymbolProperty | frontend.SymbolEnumMember) {
			return false
		}
		t := w.checker.TypeOfSymbol(sym)
		return w.checker.IsStructuredType(t) && t.IsAnonymous()
	case frontend.KindVariableDeclaration:
		sym := w.checker.SymbolAtLocation(n)
		if sym == nil {
			return false
		}
		return w.checker.IsStructuredType(w.checker.TypeOfSymbol(sym))
	case frontend.KindClassDeclaration, frontend.KindInterfaceDeclaration,
		frontend.KindModuleDeclaration, frontend.KindEnumDeclaration:
		return !n.Flags.Has(frontend.FlagAbstract)
	}
	return false
}
