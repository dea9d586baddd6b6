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

import (
	"log/slog"
	"regexp"

	"github.com/AleutianAI/dtsexterns/services/externs/frontend"
	"github.com/AleutianAI/dtsexterns/services/externs/registry"
)

// handlerFunc records n in reg. Expansion handlers visit children themselves
// with the same traversal context.
type handlerFunc func(w *Walker, tc Context, reg *registry.Registry, n *frontend.Node)

// handlers is the single dispatch table. HandleNone has no entry.
//
// It is filled in init: handleChildren reaches back into Visit, which reads
// the table.
var handlers map[HandlerKind]handlerFunc

func init() {
	handlers = map[HandlerKind]handlerFunc{
		HandleClass:              handleMembered(registry.KindClass),
		HandleInterface:          handleMembered(registry.KindInterface),
		HandleModule:             handleModule,
		HandleEnum:               handleEnum,
		HandlePropertySignature:  handlePropertySignature,
		HandleStructuredVariable: handleStructuredVariable,
		HandleFunction:           handleSimple(registry.KindFunction),
		HandleVariable:           handleVariable,
		HandleVariableStatement:  handleChildren,
		HandleModuleBlock:        handleChildren,
		HandleTypeAlias:          handleSimple(registry.KindType),
	}
}

var arrayTypeText = regexp.MustCompile(`\[\]$`)

func (w *Walker) symbolOf(n *frontend.Node) *frontend.Symbol {
	sym := w.checker.SymbolAtLocation(n)
	if sym == nil {
		w.logger.Error("declaration has no symbol",
			slog.String("kind", n.Kind.String()),
			slog.String("name", n.Name))
	}
	return sym
}

// handleMembered records classes and interfaces with every entry of their
// member table.
func handleMembered(kind registry.Kind) handlerFunc {
	return func(w *Walker, _ Context, reg *registry.Registry, n *frontend.Node) {
		sym := w.symbolOf(n)
		if sym == nil {
			return
		}
		reg.Upsert(sym.Name, kind, w.documentation(sym))
		for _, m := range sym.Members.Symbols() {
			reg.AttachMember(sym.Name, m.Name, w.documentation(m))
		}
	}
}

func handleModule(w *Walker, _ Context, reg *registry.Registry, n *frontend.Node) {
	sym := w.symbolOf(n)
	if sym == nil {
		return
	}
	kind := registry.KindModule
	if n.Flags.Has(frontend.FlagNamespace) {
		kind = registry.KindNamespace
	}
	reg.Upsert(sym.Name, kind, w.documentation(sym))
	for _, e := range w.checker.ExportsOfModule(sym) {
		reg.AttachMember(sym.Name, e.Name, w.documentation(e))
	}
}

func handleEnum(w *Walker, _ Context, reg *registry.Registry, n *frontend.Node) {
	sym := w.symbolOf(n)
	if sym == nil {
		return
	}
	reg.Upsert(sym.Name, registry.KindEnum, w.documentation(sym))
	for _, p := range w.checker.PropertiesOfType(w.checker.TypeOfSymbol(sym)) {
		if p.IsTransient() || !p.Flags.Has(frontend.SymbolValue) {
			continue
		}
		reg.AttachMember(sym.Name, p.Name, w.documentation(p))
	}
}

// handlePropertySignature records a property whose type is an object literal
// type as an object of its own.
func handlePropertySignature(w *Walker, _ Context, reg *registry.Registry, n *frontend.Node) {
	sym := w.symbolOf(n)
	if sym == nil {
		return
	}
	w.recordObject(reg, sym, w.checker.TypeOfSymbol(sym))
}

func handleStructuredVariable(w *Walker, _ Context, reg *registry.Registry, n *frontend.Node) {
	sym := w.symbolOf(n)
	if sym == nil {
		return
	}
	t := w.checker.TypeOfSymbol(sym)
	if arrayTypeText.MatchString(w.checker.TypeToString(t)) {
		reg.Upsert(sym.Name, registry.KindArray, w.documentation(sym))
		return
	}
	w.recordObject(reg, sym, t)
}

func (w *Walker) recordObject(reg *registry.Registry, sym *frontend.Symbol, t *frontend.Type) {
	reg.Upsert(sym.Name, registry.KindObject, w.documentation(sym))
	for _, p := range w.checker.PropertiesOfType(t) {
		if p.IsTransient() {
			continue
		}
		reg.AttachMember(sym.Name, p.Name, w.documentation(p))
	}
}

// handleVariable records a plain variable. Structured variables are routed
// to handleStructuredVariable by classify, so reaching here with one is a
// classification bug and the node is dropped.
func handleVariable(w *Walker, _ Context, reg *registry.Registry, n *frontend.Node) {
	sym := w.symbolOf(n)
	if sym == nil {
		return
	}
	if t := w.checker.TypeOfSymbol(sym); w.checker.IsStructuredType(t) {
		w.logger.Error("structured variable reached the plain variable handler",
			slog.String("name", sym.Name),
			slog.String("type", w.checker.TypeToString(t)))
		return
	}
	reg.Upsert(sym.Name, registry.KindVariable, w.documentation(sym))
}

func handleSimple(kind registry.Kind) handlerFunc {
	return func(w *Walker, _ Context, reg *registry.Registry, n *frontend.Node) {
		sym := w.symbolOf(n)
		if sym == nil {
			return
		}
		reg.Upsert(sym.Name, kind, w.documentation(sym))
	}
}

// handleChildren expands variable statements and module blocks.
func handleChildren(w *Walker, tc Context, reg *registry.Registry, n *frontend.Node) {
	for _, child := range n.Children {
		w.Visit(tc, reg, child)
	}
}
