// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package frontend

import (
	"errors"
	"fmt"
)

// Sentinel errors for load failures. Check with errors.Is.
var (
	// ErrNoInputs is returned by LoadProgram when no root file is given.
	ErrNoInputs = errors.New("no input files")

	// ErrFileNotFound indicates a root file that does not exist.
	// Missing referenced files are logged and skipped instead.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileTooLarge indicates a file above the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidContent indicates content that is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")

	// ErrParseFailed indicates tree-sitter produced no tree at all.
	// Syntax errors inside an otherwise parsed file are not fatal.
	ErrParseFailed = errors.New("parse failed")
)

// ParseError locates a load failure in a source file.
//
// Example:
//
//	var perr *ParseError
//	if errors.As(err, &perr) {
//	    fmt.Printf("%s:%d: %s\n", perr.FilePath, perr.Line, perr.Message)
//	}
type ParseError struct {
	// FilePath is the file the error belongs to.
	FilePath string

	// Line is 1-indexed, 0 when unknown.
	Line int

	// Column is 0-indexed.
	Column int

	// Message describes the failure.
	Message string

	// Cause is the wrapped error, may be nil.
	Cause error
}

// Error formats the error as "file:line:col: message", dropping unknown parts.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.FilePath, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// wrapParseError attaches filePath to err unless it already is a ParseError.
func wrapParseError(err error, filePath string) error {
	if err == nil {
		return nil
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		return err
	}
	return &ParseError{
		FilePath: filePath,
		Message:  err.Error(),
		Cause:    err,
	}
}
