// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package generator turns TypeScript declaration files into extern stubs.
//
// A run loads a program, walks every eligible file into a fresh registry and
// renders the registry in the configured style. The registry lives exactly as
// long as one run; a Generator can be reused and called again.
package generator

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/dtsexterns/services/externs/emit"
	"github.com/AleutianAI/dtsexterns/services/externs/frontend"
	"github.com/AleutianAI/dtsexterns/services/externs/registry"
	"github.com/AleutianAI/dtsexterns/services/externs/telemetry"
	"github.com/AleutianAI/dtsexterns/services/externs/walker"
)

// ConsoleName is the name of the synthetic console entry.
const ConsoleName = "console"

// ConsoleMembers are the members of the synthetic console entry, in output
// order.
var ConsoleMembers = []string{
	"log", "info", "warn", "error", "dir", "time", "timeEnd", "trace", "assert",
}

// Options controls one generation run. The zero value processes declaration
// files only, in object style, without documentation.
type Options struct {
	// AddConsole seeds the registry with the synthetic console entry.
	AddConsole bool

	// AllowNonDeclarationFiles also processes .ts and .tsx sources.
	AllowNonDeclarationFiles bool

	// ParseAll makes every node of a non-declaration file eligible, not just
	// exported and top-level ones.
	ParseAll bool

	// KeepDocumentation emits documentation comments.
	KeepDocumentation bool

	// ListFiles logs every processed file.
	ListFiles bool

	// Debug logs skipped files and kind overwrites.
	Debug bool

	// Style selects the serializer for structured entries.
	Style emit.Style
}

// Generator runs the extern pipeline.
type Generator struct {
	opts     Options
	logger   *slog.Logger
	loadOpts []frontend.LoadOption
}

// New creates a Generator.
//
// Inputs:
//   - opts: Run options.
//   - logger: Diagnostics sink. Nil discards.
//   - loadOpts: Extra options for program loading.
//
// Outputs:
//   - *Generator: Ready to use.
func New(opts Options, logger *slog.Logger, loadOpts ...frontend.LoadOption) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{
		opts:     opts,
		logger:   logger,
		loadOpts: loadOpts,
	}
}

// Options returns the options the Generator was created with.
func (g *Generator) Options() Options {
	return g.opts
}

// Generate loads paths and returns the extern text.
//
// Description:
//
//	The program is loaded with the front end (following reference
//	directives), then handed to GenerateProgram. With no paths an empty
//	program is used, so only seeded entries can appear.
//
// Inputs:
//   - ctx: Cancellation context for loading.
//   - paths: Input files in caller order.
//
// Outputs:
//   - string: The externs.
//   - error: A load failure. Diagnostics never fail a run.
func (g *Generator) Generate(ctx context.Context, paths []string) (string, error) {
	ctx, span := tracer.Start(ctx, "generator.Generate",
		trace.WithAttributes(attribute.Int("generator.input_count", len(paths))))
	defer span.End()

	program := frontend.NewProgram()
	if len(paths) > 0 {
		logger := telemetry.LoggerWithTrace(ctx, g.logger)
		opts := append([]frontend.LoadOption{frontend.WithLogger(logger)}, g.loadOpts...)
		p, err := frontend.LoadProgram(ctx, paths, opts...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "load failed")
			return "", err
		}
		program = p
	}

	return g.GenerateProgram(ctx, program), nil
}

// GenerateProgram walks an already loaded program and renders the result.
func (g *Generator) GenerateProgram(ctx context.Context, program *frontend.Program) string {
	start := time.Now()
	span := trace.SpanFromContext(ctx)
	logger := telemetry.LoggerWithTrace(ctx, g.logger)

	reg := registry.New(
		registry.WithLogger(logger),
		registry.WithMergeDiagnostics(g.opts.Debug),
	)
	w := walker.New(program.Checker(), walker.WithLogger(logger))

	if g.opts.AddConsole {
		seedConsole(w, reg)
	}

	var processed, skipped int
	for _, f := range program.SourceFiles() {
		if !g.eligible(f) {
			skipped++
			if g.opts.Debug {
				logger.Info("skipping file",
					slog.String("file", f.FileName),
					slog.Bool("declaration", f.IsDeclarationFile),
					slog.Bool("no_default_lib", f.HasNoDefaultLib))
			}
			continue
		}
		processed++
		if g.opts.ListFiles {
			logger.Info("processing file", slog.String("file", f.FileName))
		}
		w.WalkFile(reg, f, g.opts.ParseAll)
	}

	e := emit.New(g.opts.Style,
		emit.WithDocumentation(g.opts.KeepDocumentation),
		emit.WithLogger(logger))
	out := e.Render(reg)

	span.SetAttributes(
		attribute.Int("generator.files_processed", processed),
		attribute.Int("generator.entry_count", reg.Len()),
	)
	recordRunMetrics(ctx, time.Since(start), processed, skipped, reg.Len(), g.opts.Style)
	return out
}

// eligible reports whether f is walked: never default-library files,
// declaration files always, other sources only when allowed.
func (g *Generator) eligible(f *frontend.SourceFile) bool {
	if f.HasNoDefaultLib {
		return false
	}
	return f.IsDeclarationFile || g.opts.AllowNonDeclarationFiles
}

func seedConsole(w *walker.Walker, reg *registry.Registry) {
	members := make([]*frontend.Symbol, 0, len(ConsoleMembers))
	for _, name := range ConsoleMembers {
		members = append(members, frontend.NewSyntheticSymbol(name))
	}
	w.Seed(reg, registry.KindClass, frontend.NewSyntheticSymbol(ConsoleName), members)
}
