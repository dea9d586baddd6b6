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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/dtsexterns/pkg/logging"
	"github.com/AleutianAI/dtsexterns/services/externs/config"
	"github.com/AleutianAI/dtsexterns/services/externs/generator"
	"github.com/AleutianAI/dtsexterns/services/externs/telemetry"
	"github.com/AleutianAI/dtsexterns/services/externs/watch"
)

// ErrWatchNeedsFiles is returned for --watch without input files.
var ErrWatchNeedsFiles = errors.New("watch needs input files")

func run(cmd *cobra.Command, opts config.Options, logDir string, files []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return err
	}
	if opts.Debug {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{
		Level:   level,
		Service: "dtsexterns",
		LogDir:  logDir,
		Writer:  cmd.ErrOrStderr(),
	})
	defer logger.Close()

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = version
	tcfg.TraceExporter = opts.Telemetry.TraceExporter
	tcfg.MetricExporter = opts.Telemetry.MetricsExporter
	tcfg.MetricsFile = opts.Telemetry.MetricsFile
	tcfg.OTLPEndpoint = opts.Telemetry.OTLPEndpoint
	tcfg.Writer = cmd.ErrOrStderr()
	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	genOpts, err := opts.Generator()
	if err != nil {
		return err
	}
	gen := generator.New(genOpts, logger.Slog())

	if len(files) == 0 {
		if opts.Watch {
			return ErrWatchNeedsFiles
		}
		path, cleanup, err := stdinToTemp(cmd.InOrStdin(), logger.Slog())
		if err != nil {
			return err
		}
		defer cleanup()
		files = []string{path}
	}

	if err := generateOnce(ctx, gen, files, opts, cmd.OutOrStdout()); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}
	return watchAndRegenerate(ctx, gen, files, opts, logger.Slog())
}

func generateOnce(ctx context.Context, gen *generator.Generator, files []string, opts config.Options, stdout io.Writer) error {
	out, err := gen.Generate(ctx, files)
	if err != nil {
		return err
	}
	if opts.WritesStdout() {
		_, err = io.WriteString(stdout, out)
		return err
	}
	return writeFileAtomic(opts.Output, []byte(out))
}

// writeFileAtomic replaces path so that watchers of the output never see a
// partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// watchAndRegenerate blocks until ctx is canceled, regenerating the output
// after every debounced batch of input changes.
func watchAndRegenerate(ctx context.Context, gen *generator.Generator, files []string, opts config.Options, logger *slog.Logger) error {
	w, err := watch.New(files, func(changes []watch.Change) {
		for _, c := range changes {
			logger.Info("input changed", slog.String("file", c.Path), slog.String("op", c.Op.String()))
		}
		if err := generateOnce(ctx, gen, files, opts, io.Discard); err != nil {
			logger.Error("regeneration failed", slog.String("error", err.Error()))
			return
		}
		logger.Info("externs regenerated", slog.String("output", opts.Output))
	}, &watch.Options{Logger: logger})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	logger.Info("watching inputs", slog.Int("files", len(files)))

	<-ctx.Done()
	w.Stop()
	return nil
}
