// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates generator options.
//
// Options come from three layers, later ones winning: built-in defaults, a
// YAML file, then command-line flags the caller applies on top.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/dtsexterns/services/externs/emit"
	"github.com/AleutianAI/dtsexterns/services/externs/generator"
)

// DefaultFile is read from the working directory when no file is named.
const DefaultFile = ".dtsexterns.yaml"

// StdoutOutput names standard output as the output destination.
const StdoutOutput = "stdout"

var (
	// ErrConfigNotFound is returned when an explicitly named file is missing.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// =============================================================================
// Options
// =============================================================================

// Options is the complete run configuration.
type Options struct {
	AddConsole   bool   `yaml:"add_console"`
	AllowTS      bool   `yaml:"allow_ts"`
	ParseAll     bool   `yaml:"parse_all"`
	KeepComments bool   `yaml:"keep_comments"`
	List         bool   `yaml:"list"`
	Debug        bool   `yaml:"debug"`
	LogLevel     string `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	Style        string `yaml:"style" validate:"required,style"`

	// Output is a file path or "stdout".
	Output string `yaml:"output" validate:"required"`

	// Watch regenerates on input changes. Needs a file output.
	Watch bool `yaml:"watch"`

	Telemetry TelemetryOptions `yaml:"telemetry"`
}

// TelemetryOptions selects exporters.
type TelemetryOptions struct {
	TraceExporter   string `yaml:"trace_exporter" validate:"oneof=none stdout otlp"`
	MetricsExporter string `yaml:"metrics_exporter" validate:"oneof=none stdout prometheus"`

	// MetricsFile receives the Prometheus text dump on shutdown.
	MetricsFile string `yaml:"metrics_file"`

	// OTLPEndpoint is host:port of the collector. Empty uses the exporter
	// default or OTEL_EXPORTER_OTLP_ENDPOINT.
	OTLPEndpoint string `yaml:"otlp_endpoint" validate:"omitempty,hostname_port"`
}

// Default returns the built-in defaults.
func Default() Options {
	return Options{
		Style:    "obj",
		Output:   StdoutOutput,
		LogLevel: "info",
		Telemetry: TelemetryOptions{
			TraceExporter:   "none",
			MetricsExporter: "none",
		},
	}
}

// Generator converts the options into generator options.
func (o Options) Generator() (generator.Options, error) {
	style, err := emit.ParseStyle(o.Style)
	if err != nil {
		return generator.Options{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return generator.Options{
		AddConsole:               o.AddConsole,
		AllowNonDeclarationFiles: o.AllowTS,
		ParseAll:                 o.ParseAll,
		KeepDocumentation:        o.KeepComments,
		ListFiles:                o.List,
		Debug:                    o.Debug,
		Style:                    style,
	}, nil
}

// SetMetricsFile sets the Prometheus textfile path. A file with the metrics
// exporter left at "none" selects the prometheus exporter.
func (o *Options) SetMetricsFile(path string) {
	o.Telemetry.MetricsFile = path
	if path != "" && o.Telemetry.MetricsExporter == "none" {
		o.Telemetry.MetricsExporter = "prometheus"
	}
}

// WritesStdout reports whether output goes to standard output.
func (o Options) WritesStdout() bool {
	return o.Output == "" || o.Output == StdoutOutput || o.Output == "-"
}

// =============================================================================
// Validation
// =============================================================================

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("style", validateStyle); err != nil {
		panic(fmt.Sprintf("config: register style validation: %v", err))
	}
}

func validateStyle(fl validator.FieldLevel) bool {
	_, err := emit.ParseStyle(fl.Field().String())
	return err == nil
}

// Validate checks field constraints and cross-field rules.
//
// Outputs:
//   - error: Wraps ErrInvalidConfig, nil when valid.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %q)", fe.Namespace(), fe.Tag(), fmt.Sprint(fe.Value())))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if o.Watch && o.WritesStdout() {
		return fmt.Errorf("%w: watch requires a file output", ErrInvalidConfig)
	}
	return nil
}

// =============================================================================
// Loading
// =============================================================================

// Load reads options from the YAML file at path on top of the defaults and
// validates the result.
//
// Outputs:
//   - Options: Defaults merged with the file.
//   - error: ErrConfigNotFound, a parse error, or ErrInvalidConfig.
func Load(path string) (Options, error) {
	opts, err := Read(path)
	if err != nil {
		return opts, err
	}
	return opts, opts.Validate()
}

// Read is Load without validation, for callers that layer flags on top
// before validating.
//
// Description:
//
//	With an empty path, DefaultFile is tried and silently skipped when
//	missing. A named file must exist. Unknown keys are rejected.
//
// Inputs:
//   - path: YAML file, or "".
//
// Outputs:
//   - Options: Defaults merged with the file.
//   - error: ErrConfigNotFound or a read/parse error.
func Read(path string) (Options, error) {
	opts := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return opts, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return opts, nil
		}
		return opts, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := decode(data, &opts); err != nil {
		return opts, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	opts.SetMetricsFile(opts.Telemetry.MetricsFile)
	return opts, nil
}

func decode(data []byte, opts *Options) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(opts); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
