// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package emit renders a registry into extern stub text.
//
// Simple kinds always render the same way. Structured kinds (enum, object,
// class, interface, namespace, module) go through one of two styles:
//
//	prototype:  function Foo() {};
//	            Foo.prototype.bar;
//
//	object:     var Foo = {
//	            	 bar: function() {}
//	            	,baz: function() {}
//	            };
//
// The styles disagree on members whose name starts with a digit: prototype
// drops them, object keeps them with a quoted key. Existing externs depend on
// that, so it is kept as is.
package emit

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/AleutianAI/dtsexterns/services/externs/registry"
)

// ErrUnknownStyle is returned by ParseStyle for unrecognized style names.
var ErrUnknownStyle = errors.New("unknown output style")

// Style selects the renderer for structured kinds.
type Style int

const (
	// StyleObject renders structured entries as object literals.
	StyleObject Style = iota

	// StylePrototype renders structured entries as a constructor function
	// plus one prototype line per member.
	StylePrototype
)

// String returns the canonical style name.
func (s Style) String() string {
	switch s {
	case StyleObject:
		return "object"
	case StylePrototype:
		return "prototype"
	default:
		return "unknown"
	}
}

// ParseStyle accepts the canonical names and the short forms obj and proto.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "object", "obj":
		return StyleObject, nil
	case "prototype", "proto":
		return StylePrototype, nil
	default:
		return StyleObject, fmt.Errorf("%w: %q (want obj or proto)", ErrUnknownStyle, s)
	}
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithDocumentation emits stored documentation before entries and members.
func WithDocumentation(keep bool) Option {
	return func(e *Emitter) {
		e.keepDocs = keep
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Emitter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Emitter turns registry entries into extern stubs.
type Emitter struct {
	style    Style
	keepDocs bool
	logger   *slog.Logger
}

// New creates an Emitter for the given style.
func New(style Style, opts ...Option) *Emitter {
	e := &Emitter{
		style:  style,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render serializes every entry of reg in insertion order.
//
// Each rendered entry is followed by a blank line. Skip-listed names and
// entries of unknown kind produce no output at all.
func (e *Emitter) Render(reg *registry.Registry) string {
	var b strings.Builder
	for _, entry := range reg.Entries() {
		e.writeEntry(&b, entry)
	}
	return b.String()
}

// writeEntry serializes one entry and reports whether anything was written.
func (e *Emitter) writeEntry(b *strings.Builder, entry *registry.Entry) bool {
	if registry.IsSkipped(entry.Name) {
		return false
	}

	var body string
	switch entry.Kind {
	case registry.KindVariable, registry.KindType:
		body = "var " + entry.Name + ";\n"
	case registry.KindArray:
		body = "var " + entry.Name + " = [];\n"
	case registry.KindFunction:
		body = "function " + entry.Name + "() {};\n"
	case registry.KindEnum, registry.KindObject,
		registry.KindClass, registry.KindInterface,
		registry.KindNamespace, registry.KindModule:
		if e.style == StylePrototype {
			body = e.prototype(entry)
		} else {
			body = e.object(entry)
		}
	default:
		e.logger.Error("unknown entry kind",
			slog.String("name", entry.Name),
			slog.String("kind", entry.Kind.String()))
		return false
	}

	if e.keepDocs {
		b.WriteString(entry.Documentation)
	}
	b.WriteString(body)
	b.WriteString("\n")
	return true
}

// prototype renders:
//
//	function NAME() {};
//	NAME.prototype.MEMBER;
func (e *Emitter) prototype(entry *registry.Entry) string {
	var b strings.Builder
	b.WriteString("function " + entry.Name + "() {};\n")

	for _, m := range entry.Members() {
		if registry.IsSkipped(m.Name) || startsWithDigit(m.Name) {
			continue
		}
		if e.keepDocs {
			b.WriteString(m.Documentation)
		}
		b.WriteString(entry.Name + ".prototype." + m.Name + ";\n")
	}
	return b.String()
}

// object renders:
//
//	var NAME = {
//		 a: function() {}
//		,"1b": function() {}
//	};
func (e *Emitter) object(entry *registry.Entry) string {
	var b strings.Builder
	b.WriteString("var " + entry.Name + " = {\n")

	first := true
	for _, m := range entry.Members() {
		if registry.IsSkipped(m.Name) {
			continue
		}
		if e.keepDocs {
			b.WriteString(m.Documentation)
		}
		if first {
			b.WriteString("\t ")
			first = false
		} else {
			b.WriteString("\t,")
		}
		if startsWithDigit(m.Name) {
			b.WriteString(`"` + m.Name + `": function() {}` + "\n")
		} else {
			b.WriteString(m.Name + ": function() {}\n")
		}
	}

	b.WriteString("};\n")
	return b.String()
}

func startsWithDigit(name string) bool {
	return name != "" && name[0] >= '0' && name[0] <= '9'
}
