// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package registry accumulates one output entry per distinct exported name.
//
// A Registry lives for exactly one generation run. It is filled by the
// declaration walker and read by the emitter; nothing else mutates it.
//
// # Merge policy
//
// Top-level entries obey a tier rule (see Kind.Tier): re-registering a name
// replaces its kind and documentation only when the new kind sits in a
// strictly higher tier. Members are not tiered; the last write wins.
//
// # Ordering
//
// Entries and members iterate in first-insertion order. Upgrading an entry's
// kind never moves it.
//
// # Thread Safety
//
// Registry is not safe for concurrent use. A generation run is single-threaded.
package registry

import (
	"io"
	"log/slog"
)

// Entry is the unit of record for one top-level name, or for one member of
// such a name when Kind is KindMember.
type Entry struct {
	// Name is the registry key: sanitized for top-level entries, raw for
	// members.
	Name string

	// Kind is the output category.
	Kind Kind

	// Documentation is the formatted comment block, or "" when there is none.
	Documentation string

	memberOrder []string
	members     map[string]*Entry
}

// Members returns the entry's members in first-insertion order.
func (e *Entry) Members() []*Entry {
	out := make([]*Entry, 0, len(e.memberOrder))
	for _, name := range e.memberOrder {
		out = append(out, e.members[name])
	}
	return out
}

func (e *Entry) member(name string) (*Entry, bool) {
	m, ok := e.members[name]
	return m, ok
}

// UpsertResult describes what Upsert did.
type UpsertResult int

const (
	// UpsertIgnored means the name was empty or the kind cannot be top-level.
	UpsertIgnored UpsertResult = iota

	// UpsertCreated means a new entry was added.
	UpsertCreated

	// UpsertUpgraded means an existing entry moved to a higher tier.
	UpsertUpgraded

	// UpsertKept means an existing entry was left as it was.
	UpsertKept
)

// String returns a short label for diagnostics.
func (r UpsertResult) String() string {
	switch r {
	case UpsertIgnored:
		return "ignored"
	case UpsertCreated:
		return "created"
	case UpsertUpgraded:
		return "upgraded"
	case UpsertKept:
		return "kept"
	default:
		return "unknown"
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the diagnostics logger. A nil logger discards diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMergeDiagnostics enables informational diagnostics whenever a
// re-registration overwrites, or declines to overwrite, an existing entry.
func WithMergeDiagnostics(enabled bool) Option {
	return func(r *Registry) {
		r.mergeDiagnostics = enabled
	}
}

// Registry is a name-keyed, insertion-ordered store of entries.
type Registry struct {
	order   []string
	entries map[string]*Entry

	logger           *slog.Logger
	mergeDiagnostics bool
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*Entry),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Upsert registers name with the given kind and documentation.
//
// Description:
//
//	The name is sanitized before lookup. A new name gets a fresh entry. An
//	existing name has its kind and documentation replaced only when kind is
//	in a strictly higher tier than the stored kind; otherwise nothing changes.
//
// Inputs:
//   - name: Declared name (raw or already sanitized).
//   - kind: Output category. Must be a top-level kind.
//   - documentation: Formatted comment block, may be "".
//
// Outputs:
//   - UpsertResult: What happened to the registry.
func (r *Registry) Upsert(name string, kind Kind, documentation string) UpsertResult {
	if name == "" {
		return UpsertIgnored
	}
	if !kind.IsTopLevel() {
		r.logger.Error("refusing non top-level kind",
			slog.String("name", name),
			slog.String("kind", kind.String()))
		return UpsertIgnored
	}

	key := Sanitize(name)
	existing, ok := r.entries[key]
	if !ok {
		r.order = append(r.order, key)
		r.entries[key] = &Entry{
			Name:          key,
			Kind:          kind,
			Documentation: documentation,
			members:       make(map[string]*Entry),
		}
		return UpsertCreated
	}

	if kind.Tier() > existing.Kind.Tier() {
		if r.mergeDiagnostics {
			r.logger.Info("already defined, overwriting",
				slog.String("name", key),
				slog.String("was", existing.Kind.String()),
				slog.String("now", kind.String()))
		}
		existing.Kind = kind
		existing.Documentation = documentation
		return UpsertUpgraded
	}

	if r.mergeDiagnostics && kind != existing.Kind {
		r.logger.Info("already defined, not overwriting",
			slog.String("name", key),
			slog.String("kept", existing.Kind.String()),
			slog.String("offered", kind.String()))
	}
	return UpsertKept
}

// AttachMember records member under owner.
//
// The owner name is sanitized; the member name is kept as given. The owner
// must already exist, otherwise the inconsistency is logged and the member
// dropped. An existing member is overwritten unconditionally.
//
// Outputs:
//   - bool: True if the member was stored.
func (r *Registry) AttachMember(owner, member, documentation string) bool {
	if owner == "" || member == "" {
		return false
	}

	entry, ok := r.lookup(owner)
	if !ok {
		r.logger.Error("no entry for member owner",
			slog.String("owner", owner),
			slog.String("member", member))
		return false
	}

	if _, seen := entry.member(member); !seen {
		entry.memberOrder = append(entry.memberOrder, member)
	}
	entry.members[member] = &Entry{
		Name:          member,
		Kind:          KindMember,
		Documentation: documentation,
	}
	return true
}

// lookup returns the entry stored under the sanitized form of name.
func (r *Registry) lookup(name string) (*Entry, bool) {
	e, ok := r.entries[Sanitize(name)]
	return e, ok
}

// Entries returns all entries in first-insertion order.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.entries[key])
	}
	return out
}

// Len returns the number of top-level entries.
func (r *Registry) Len() int {
	return len(r.order)
}
