// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// stdinToTemp copies r into a temporary .d.ts file.
//
// Outputs:
//   - string: The temporary file path.
//   - func(): Removes the file.
//   - error: Non-nil if the copy failed; nothing is left behind.
func stdinToTemp(r io.Reader, logger *slog.Logger) (string, func(), error) {
	if isTerminal(r) {
		logger.Info("reading declarations from stdin, end with Ctrl-D")
	}

	tmp, err := os.CreateTemp("", "dtsexterns-*.d.ts")
	if err != nil {
		return "", nil, fmt.Errorf("create stdin buffer: %w", err)
	}
	name := tmp.Name()
	cleanup := func() { os.Remove(name) }

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("read stdin: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("read stdin: %w", err)
	}
	return name, cleanup, nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
