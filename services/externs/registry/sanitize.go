// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package registry

import "strings"

// nameReplacer drops double quotes and flattens path separators. Only double
// quotes ever reach a symbol name.
//
// String-named modules ("lodash/fp", "~/x") would otherwise produce
// identifiers the extern consumer cannot parse.
var nameReplacer = strings.NewReplacer(
	`"`, "",
	"/", "_",
	`\`, "_",
	"~", "_",
)

// Sanitize converts a declared symbol name into a registry key.
//
// Sanitize is idempotent and its output never contains double quotes or path
// separator characters.
//
// Example:
//
//	Sanitize(`"lodash/fp"`) // lodash_fp
func Sanitize(name string) string {
	return nameReplacer.Replace(name)
}

// skipList holds names the consumer already knows from its default externs,
// plus artifacts of how some declarations are walked (export=).
var skipList = map[string]struct{}{
	"export=":  {},
	"Map":      {},
	"Symbol":   {},
	"Error":    {},
	"escape":   {},
	"unescape": {},
}

// IsSkipped reports whether name must never appear in generated output,
// either as a top-level entry or as a member.
func IsSkipped(name string) bool {
	_, ok := skipList[name]
	return ok
}
