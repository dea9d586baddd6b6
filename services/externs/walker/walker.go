// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package walker visits declaration trees and records what they declare in
// a registry.
//
// Every node goes through the same three steps:
//
//  1. Eligibility: is the node visible at all (see Context)?
//  2. Classification: classify returns which handler runs and whether its
//     children are visited afterwards.
//  3. Dispatch: one table maps the classification to its handler.
//
// The registry is passed explicitly through every call. The walker itself
// holds no per-run state and can be reused across runs.
package walker

import (
	"io"
	"log/slog"

	"github.com/AleutianAI/dtsexterns/services/externs/frontend"
	"github.com/AleutianAI/dtsexterns/services/externs/registry"
)

// Checker is the part of the front end the walker queries.
type Checker interface {
	SymbolAtLocation(n *frontend.Node) *frontend.Symbol
	TypeOfSymbol(sym *frontend.Symbol) *frontend.Type
	TypeToString(t *frontend.Type) string
	IsStructuredType(t *frontend.Type) bool
	PropertiesOfType(t *frontend.Type) []*frontend.Symbol
	ExportsOfModule(sym *frontend.Symbol) []*frontend.Symbol
	DocumentationComment(sym *frontend.Symbol) []string
}

var _ Checker = (*frontend.Checker)(nil)

// Context is the traversal context of one file. It is passed by value down
// the whole walk and never changes within a file.
type Context struct {
	// IsDeclarationFile makes every node eligible.
	IsDeclarationFile bool

	// ParseAll makes every node eligible in ordinary source files too.
	ParseAll bool
}

// eligible reports whether n may be processed. Ineligible nodes are skipped
// together with their subtree.
func (tc Context) eligible(n *frontend.Node) bool {
	return tc.IsDeclarationFile || tc.ParseAll || n.IsExported() || n.ParentIsSourceFile()
}

// Option configures a Walker.
type Option func(*Walker)

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Walker classifies declaration nodes and runs their handlers.
type Walker struct {
	checker Checker
	logger  *slog.Logger
}

// New creates a Walker querying checker.
func New(checker Checker, opts ...Option) *Walker {
	w := &Walker{
		checker: checker,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WalkFile visits every top-level statement of f.
func (w *Walker) WalkFile(reg *registry.Registry, f *frontend.SourceFile, parseAll bool) {
	tc := Context{
		IsDeclarationFile: f.IsDeclarationFile,
		ParseAll:          parseAll,
	}
	for _, n := range f.Statements() {
		w.Visit(tc, reg, n)
	}
}

// Visit processes n and, when its classification asks for it, its children.
func (w *Walker) Visit(tc Context, reg *registry.Registry, n *frontend.Node) {
	if n == nil || !tc.eligible(n) {
		return
	}

	c := w.classify(n)
	h, ok := handlers[c.Handler]
	if !ok {
		if c.Structured {
			w.logger.Error("unknown structured node kind",
				slog.String("kind", n.Kind.String()),
				slog.String("name", n.Name))
		}
		return
	}

	h(w, tc, reg, n)

	if c.Recurse {
		for _, child := range n.Children {
			w.Visit(tc, reg, child)
		}
	}
}

// Seed records owner with the given kind and attaches members, without any
// declaration behind them. Used for synthetic entries.
func (w *Walker) Seed(reg *registry.Registry, kind registry.Kind, owner *frontend.Symbol, members []*frontend.Symbol) {
	reg.Upsert(owner.Name, kind, w.documentation(owner))
	for _, m := range members {
		reg.AttachMember(owner.Name, m.Name, w.documentation(m))
	}
}

func (w *Walker) documentation(sym *frontend.Symbol) string {
	return FormatDocumentation(w.checker.DocumentationComment(sym))
}
