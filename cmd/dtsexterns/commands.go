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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/dtsexterns/pkg/validation"
	"github.com/AleutianAI/dtsexterns/services/externs/config"
)

// cliFlags holds raw flag values. Only flags the user set override the
// config file.
type cliFlags struct {
	configPath    string
	output        string
	style         string
	addConsole    bool
	keepComments  bool
	list          bool
	allowTS       bool
	parseAll      bool
	debug         bool
	watch         bool
	traceExporter string
	metricsFile   string
	logDir        string
	logLevel      string
}

func newRootCmd() *cobra.Command {
	f := &cliFlags{}

	cmd := &cobra.Command{
		Use:   "dtsexterns [flags] [file...]",
		Short: "Generate extern stubs from TypeScript declaration files",
		Long: `dtsexterns reads TypeScript declaration files and writes one extern stub
per declared name, for compilers that need to know which names exist.

Files pulled in through /// <reference path="..."/> are read as well. With no
file arguments, declarations are read from standard input.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(cmd, f)
			if err != nil {
				return err
			}
			if err := validation.ValidateInputPaths(args); err != nil {
				return err
			}
			return run(cmd, opts, f.logDir, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML options file (default "+config.DefaultFile+" if present)")
	fl.StringVarP(&f.output, "output", "o", config.StdoutOutput, "output file, or stdout")
	fl.StringVarP(&f.style, "style", "s", "obj", "output style: obj or proto")
	fl.BoolVarP(&f.addConsole, "add-console", "c", false, "add a synthetic console object")
	fl.BoolVarP(&f.keepComments, "keep-comments", "k", false, "keep documentation comments")
	fl.BoolVarP(&f.list, "list", "l", false, "log every processed file")
	fl.BoolVarP(&f.allowTS, "allow-ts", "a", false, "also process .ts and .tsx files")
	fl.BoolVarP(&f.parseAll, "parse-all", "p", false, "in .ts files, process non-exported declarations too")
	fl.BoolVar(&f.debug, "debug", false, "debug logging and merge diagnostics")
	fl.BoolVar(&f.watch, "watch", false, "regenerate when an input file changes")
	fl.StringVar(&f.traceExporter, "trace-exporter", "none", "trace exporter: none, stdout or otlp")
	fl.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	fl.StringVar(&f.logDir, "log-dir", "", "also write JSON logs to this directory")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn or error")

	return cmd
}

// overrideFlags are the flags that map onto config.Options fields.
var overrideFlags = []string{
	"output", "style", "add-console", "keep-comments", "list", "allow-ts",
	"parse-all", "debug", "watch", "trace-exporter", "metrics-file", "log-level",
}

// resolveOptions layers explicitly set flags over the config file and
// validates the result. Without such flags the file is loaded as is.
func resolveOptions(cmd *cobra.Command, f *cliFlags) (config.Options, error) {
	changed := cmd.Flags().Changed
	overridden := false
	for _, name := range overrideFlags {
		if changed(name) {
			overridden = true
			break
		}
	}
	if !overridden {
		return config.Load(f.configPath)
	}

	opts, err := config.Read(f.configPath)
	if err != nil {
		return opts, err
	}

	if changed("output") {
		opts.Output = f.output
	}
	if changed("style") {
		opts.Style = f.style
	}
	if changed("add-console") {
		opts.AddConsole = f.addConsole
	}
	if changed("keep-comments") {
		opts.KeepComments = f.keepComments
	}
	if changed("list") {
		opts.List = f.list
	}
	if changed("allow-ts") {
		opts.AllowTS = f.allowTS
	}
	if changed("parse-all") {
		opts.ParseAll = f.parseAll
	}
	if changed("debug") {
		opts.Debug = f.debug
	}
	if changed("watch") {
		opts.Watch = f.watch
	}
	if changed("trace-exporter") {
		opts.Telemetry.TraceExporter = f.traceExporter
	}
	if changed("log-level") {
		opts.LogLevel = f.logLevel
	}
	if changed("metrics-file") {
		opts.SetMetricsFile(f.metricsFile)
	}

	return opts, opts.Validate()
}
