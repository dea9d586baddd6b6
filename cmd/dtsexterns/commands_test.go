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
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/dtsexterns/pkg/validation"
	"github.com/AleutianAI/dtsexterns/services/externs/config"
)

type result struct {
	stdout, stderr string
	err            error
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRoot_FilesToStdout(t *testing.T) {
	path := writeFile(t, t.TempDir(), "v.d.ts", "declare var V: string[];\n")

	res := execute(t, "", path)
	require.NoError(t, res.err)
	assert.Equal(t, "var V = [];\n\n", res.stdout)
}

func TestRoot_Stdin(t *testing.T) {
	res := execute(t, "declare function f(): void;\n")
	require.NoError(t, res.err)
	assert.Equal(t, "function f() {};\n\n", res.stdout)
}

func TestRoot_StyleAndConsole(t *testing.T) {
	res := execute(t, "", "-s", "proto", "-c")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "function console() {};\nconsole.prototype.log;\n"))
}

func TestRoot_KeepCommentsAndList(t *testing.T) {
	path := writeFile(t, t.TempDir(), "d.d.ts", "/** Says hi */\ndeclare function hi(): void;\n")

	res := execute(t, "", "-k", "-l", path)
	require.NoError(t, res.err)
	assert.Equal(t, "/*Says hi */\nfunction hi() {};\n\n", res.stdout)
	assert.Contains(t, res.stderr, "processing file")

	res = execute(t, "", "-l", "--log-level", "error", path)
	require.NoError(t, res.err)
	assert.NotContains(t, res.stderr, "processing file")
}

func TestRoot_AllowTS(t *testing.T) {
	path := writeFile(t, t.TempDir(), "m.ts", "export function fromSource(): void {}\n")

	res := execute(t, "", path)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	res = execute(t, "", "-a", path)
	require.NoError(t, res.err)
	assert.Equal(t, "function fromSource() {};\n\n", res.stdout)
}

func TestRoot_OutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.d.ts", "declare function f(): void;\n")
	out := filepath.Join(dir, "externs.js")

	res := execute(t, "", "-o", out, path)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "function f() {};\n\n", string(data))
}

func TestRoot_ConfigFileAndOverride(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "cfg.yaml", "style: proto\nadd_console: true\n")
	path := writeFile(t, dir, "i.d.ts", "interface I { a: string }\n")

	res := execute(t, "", "--config", cfg, path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "function I() {};\nI.prototype.a;\n")
	assert.Contains(t, res.stdout, "function console() {};\n")

	res = execute(t, "", "--config", cfg, "-s", "obj", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "var I = {\n\t a: function() {}\n};\n")
}

func TestRoot_ConfigFileAloneIsValidated(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "cfg.yaml", "style: diagonal\n")
	path := writeFile(t, dir, "i.d.ts", "interface I { a: string }\n")

	res := execute(t, "", "--config", cfg, path)
	assert.True(t, errors.Is(res.err, config.ErrInvalidConfig))

	res = execute(t, "", "--config", cfg, "--style", "proto", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "function I() {};\nI.prototype.a;\n")
}

func TestRoot_Errors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.d.ts", "declare var a: number;\n")

	res := execute(t, "", "-s", "fancy", path)
	assert.True(t, errors.Is(res.err, config.ErrInvalidConfig))

	res = execute(t, "", "--log-level", "loud", path)
	assert.True(t, errors.Is(res.err, config.ErrInvalidConfig))

	res = execute(t, "", "--watch", path)
	assert.True(t, errors.Is(res.err, config.ErrInvalidConfig))

	res = execute(t, "", "--watch", "-o", filepath.Join(dir, "out.js"))
	assert.True(t, errors.Is(res.err, ErrWatchNeedsFiles))

	res = execute(t, "", "--config", filepath.Join(dir, "missing.yaml"), path)
	assert.True(t, errors.Is(res.err, config.ErrConfigNotFound))

	res = execute(t, "", filepath.Join(dir, "missing.d.ts"))
	assert.Error(t, res.err)

	res = execute(t, "", filepath.Join(dir, "app.js"))
	assert.True(t, errors.Is(res.err, validation.ErrInvalidInput))
}

func TestRoot_MetricsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.d.ts", "declare var a: number;\n")
	metrics := filepath.Join(dir, "run.prom")

	res := execute(t, "", "--metrics-file", metrics, path)
	require.NoError(t, res.err)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dtsexterns_files_processed")
}

func TestStdinToTemp(t *testing.T) {
	path, cleanup, err := stdinToTemp(strings.NewReader("declare var x: number;"), nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".d.ts"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "declare var x: number;", string(data))

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.js")
	require.NoError(t, writeFileAtomic(path, []byte("one")))
	require.NoError(t, writeFileAtomic(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
