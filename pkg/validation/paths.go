// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks user-provided input paths before they reach the
// generator.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidInput wraps every rejected input path.
var ErrInvalidInput = errors.New("invalid input path")

// sourceExtensions are the suffixes the front end can parse.
var sourceExtensions = []string{".d.ts", ".ts", ".tsx"}

// ValidateInputPath rejects paths the front end cannot read as TypeScript.
//
// Valid paths:
//   - are non-empty and contain no NUL or newline
//   - end in .d.ts, .ts or .tsx (case-sensitive, like the compiler)
//   - do not name a directory (trailing separator)
//
// Example:
//
//	if err := validation.ValidateInputPath(path); err != nil {
//	    return err
//	}
func ValidateInputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidInput)
	}
	if strings.ContainsAny(path, "\x00\n\r") {
		return fmt.Errorf("%w: %q contains control characters", ErrInvalidInput, path)
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return fmt.Errorf("%w: %q is a directory", ErrInvalidInput, path)
	}
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(path, ext) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (want .d.ts, .ts or .tsx)", ErrInvalidInput, path)
}

// ValidateInputPaths validates every path and reports all invalid ones at
// once.
func ValidateInputPaths(paths []string) error {
	var invalid []string
	for _, p := range paths {
		if err := ValidateInputPath(p); err != nil {
			invalid = append(invalid, fmt.Sprintf("%q", p))
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(invalid, ", "))
	}
	return nil
}
