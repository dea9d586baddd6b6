// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package frontend turns TypeScript source files into bound declaration trees
// and answers the type queries the extern generator needs.
//
// # Pipeline
//
// LoadProgram reads the root files and everything they pull in through
// triple-slash reference directives, parses each file with tree-sitter into a
// declaration tree (ParseSource), then binds all files into symbols. The
// Checker computes types lazily on top of the bound program.
//
// # Scope
//
// This is a declaration-level front end. It models exactly what a .d.ts file
// can say: classes, interfaces, namespaces, enums, functions, variables, type
// aliases and the types written on them. Bodies and expressions are ignored,
// except variable initializers, which are reduced far enough to infer a type.
// There is no default library: references to names like Array<T> are handled
// specially, every other unresolved name is an opaque object type.
//
// # Thread Safety
//
// LoadProgram parses files concurrently. A loaded Program and its Checker
// are not safe for concurrent use.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// SourceFile is one parsed input file.
type SourceFile struct {
	FileName string

	// Root is the KindSourceFile node.
	Root *Node

	// IsDeclarationFile is true for names ending in .d.ts.
	IsDeclarationFile bool

	// IsExternalModule is true when the file has top-level import or export.
	IsExternalModule bool

	// HasNoDefaultLib is true when the file carries
	// /// <reference no-default-lib="true"/>.
	HasNoDefaultLib bool

	// ReferencedFiles are the raw /// <reference path> values.
	ReferencedFiles []string

	// SyntaxErrors reports that tree-sitter had to recover from errors.
	SyntaxErrors bool

	resolvedRefs []string
	locals       *SymbolTable
}

// Statements returns the top-level declaration nodes.
func (f *SourceFile) Statements() []*Node {
	if f == nil || f.Root == nil {
		return nil
	}
	return f.Root.Children
}

// Program is a set of bound source files.
type Program struct {
	files   []*SourceFile
	globals *SymbolTable
	checker *Checker
}

// NewProgram binds already parsed files, in the given order.
func NewProgram(files ...*SourceFile) *Program {
	p := &Program{
		files:   files,
		globals: NewSymbolTable(),
	}
	p.bind()
	return p
}

// SourceFiles returns the files in program order.
func (p *Program) SourceFiles() []*SourceFile {
	return p.files
}

// Globals returns the global scope.
func (p *Program) Globals() *SymbolTable {
	return p.globals
}

// Checker returns the program's type checker, creating it on first use.
func (p *Program) Checker() *Checker {
	if p.checker == nil {
		p.checker = newChecker(p)
	}
	return p.checker
}

// LoadOption configures LoadProgram.
type LoadOption func(*loader)

// WithLogger sets the logger for warnings about missing references and
// syntax errors.
func WithLogger(logger *slog.Logger) LoadOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMaxFileSize sets the per-file size limit. Non-positive values are ignored.
func WithMaxFileSize(bytes int64) LoadOption {
	return func(l *loader) {
		if bytes > 0 {
			l.maxFileSize = bytes
		}
	}
}

// WithConcurrency bounds the number of files parsed at once.
func WithConcurrency(n int) LoadOption {
	return func(l *loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithReadFile replaces os.ReadFile. Missing files must report fs.ErrNotExist.
func WithReadFile(read func(path string) ([]byte, error)) LoadOption {
	return func(l *loader) {
		if read != nil {
			l.readFile = read
		}
	}
}

// WithReferences controls whether reference directives are followed.
// Enabled by default.
func WithReferences(follow bool) LoadOption {
	return func(l *loader) {
		l.followReferences = follow
	}
}

type loader struct {
	logger           *slog.Logger
	maxFileSize      int64
	concurrency      int
	readFile         func(string) ([]byte, error)
	followReferences bool
}

// LoadProgram parses the root files and their referenced files, then binds
// them into a Program.
//
// Description:
//
//	Files are parsed in waves: first all roots, then every newly referenced
//	file, until no new file shows up. Each wave runs concurrently under an
//	errgroup. The resulting order matches the TypeScript compiler: for every
//	root in caller order, its referenced files come first, depth-first,
//	each file once.
//
// Inputs:
//   - ctx: Cancellation context.
//   - paths: Root file paths. Duplicates (after filepath.Clean) are dropped.
//   - opts: Load options.
//
// Outputs:
//   - *Program: The bound program.
//   - error: ErrNoInputs, or the first root read/parse failure. Referenced
//     files that do not exist are logged and skipped.
func LoadProgram(ctx context.Context, paths []string, opts ...LoadOption) (*Program, error) {
	if len(paths) == 0 {
		return nil, ErrNoInputs
	}

	l := &loader{
		logger:           slog.Default(),
		maxFileSize:      DefaultMaxFileSize,
		concurrency:      runtime.NumCPU(),
		readFile:         os.ReadFile,
		followReferences: true,
	}
	for _, opt := range opts {
		opt(l)
	}

	ctx, span := tracer.Start(ctx, "frontend.LoadProgram",
		trace.WithAttributes(attribute.Int("frontend.root_count", len(paths))))
	defer span.End()

	var roots []string
	queued := make(map[string]bool)
	for _, p := range paths {
		clean := filepath.Clean(p)
		if queued[clean] {
			continue
		}
		queued[clean] = true
		roots = append(roots, clean)
	}
	isRoot := make(map[string]bool, len(roots))
	for _, r := range roots {
		isRoot[r] = true
	}

	parsed := make(map[string]*SourceFile)
	pending := roots
	for len(pending) > 0 {
		results := make([]*SourceFile, len(pending))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(l.concurrency)
		for i, path := range pending {
			g.Go(func() error {
				f, err := l.load(gctx, path)
				if err != nil {
					if !isRoot[path] && errors.Is(err, ErrFileNotFound) {
						l.logger.Warn("referenced file not found",
							slog.String("file", path))
						return nil
					}
					return err
				}
				results[i] = f
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "load failed")
			return nil, err
		}

		var next []string
		for i, path := range pending {
			f := results[i]
			if f == nil {
				continue
			}
			parsed[path] = f
			if !l.followReferences {
				continue
			}
			for _, ref := range f.ReferencedFiles {
				resolved := resolveReference(f.FileName, ref)
				f.resolvedRefs = append(f.resolvedRefs, resolved)
				if queued[resolved] {
					continue
				}
				queued[resolved] = true
				next = append(next, resolved)
			}
		}
		recordReferencesResolved(ctx, len(next))
		pending = next
	}

	ordered := orderFiles(roots, parsed)
	span.SetAttributes(attribute.Int("frontend.file_count", len(ordered)))
	return NewProgram(ordered...), nil
}

func (l *loader) load(ctx context.Context, path string) (*SourceFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load canceled: %w", err)
	}
	content, err := l.readFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ParseError{FilePath: path, Message: "file not found", Cause: ErrFileNotFound}
		}
		return nil, wrapParseError(err, path)
	}
	return parseSource(ctx, path, content, l.maxFileSize, l.logger)
}

// resolveReference resolves ref relative to the referencing file. A path
// without extension is taken to name a declaration file.
func resolveReference(from, ref string) string {
	resolved := ref
	if !filepath.IsAbs(ref) {
		resolved = filepath.Join(filepath.Dir(from), ref)
	}
	if filepath.Ext(resolved) == "" {
		resolved += ".d.ts"
	}
	return filepath.Clean(resolved)
}

// orderFiles lists parsed files depth-first, references before referrers.
func orderFiles(roots []string, parsed map[string]*SourceFile) []*SourceFile {
	visited := make(map[string]bool)
	var out []*SourceFile

	var visit func(path string)
	visit = func(path string) {
		if visited[path] {
			return
		}
		visited[path] = true
		f, ok := parsed[path]
		if !ok {
			return
		}
		for _, ref := range f.resolvedRefs {
			visit(ref)
		}
		out = append(out, f)
	}

	for _, r := range roots {
		visit(r)
	}
	return out
}
