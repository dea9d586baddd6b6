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
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("dtsexterns.frontend")
	meter  = otel.Meter("dtsexterns.frontend")
)

var (
	parseLatency  metric.Float64Histogram
	parseTotal    metric.Int64Counter
	nodesBuilt    metric.Int64Histogram
	parseErrors   metric.Int64Counter
	filesResolved metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		parseLatency, err = meter.Float64Histogram(
			"dtsexterns_parse_duration_seconds",
			metric.WithDescription("Duration of declaration file parsing"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseTotal, err = meter.Int64Counter(
			"dtsexterns_parse_total",
			metric.WithDescription("Total number of parsed files"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesBuilt, err = meter.Int64Histogram(
			"dtsexterns_nodes_built",
			metric.WithDescription("Declaration nodes built per file"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseErrors, err = meter.Int64Counter(
			"dtsexterns_parse_errors_total",
			metric.WithDescription("Total number of failed parses"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		filesResolved, err = meter.Int64Counter(
			"dtsexterns_references_resolved_total",
			metric.WithDescription("Files pulled in through reference directives"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordParseMetrics records one file parse.
func recordParseMetrics(ctx context.Context, dialect string, duration time.Duration, nodeCount int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("dialect", dialect),
		attribute.Bool("success", success),
	)
	parseLatency.Record(ctx, duration.Seconds(), attrs)
	parseTotal.Add(ctx, 1, attrs)

	if success {
		nodesBuilt.Record(ctx, int64(nodeCount),
			metric.WithAttributes(attribute.String("dialect", dialect)))
	} else {
		parseErrors.Add(ctx, 1,
			metric.WithAttributes(attribute.String("dialect", dialect)))
	}
}

func recordReferencesResolved(ctx context.Context, n int) {
	if n == 0 {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}
	filesResolved.Add(ctx, int64(n))
}

// startParseSpan starts the span for one file parse. Caller ends it.
func startParseSpan(ctx context.Context, filePath string, contentSize int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "frontend.parseFile",
		trace.WithAttributes(
			attribute.String("frontend.file", filePath),
			attribute.Int("frontend.content_size", contentSize),
		),
	)
}

func setParseSpanResult(span trace.Span, nodeCount int, hasSyntaxErrors bool) {
	span.SetAttributes(
		attribute.Int("frontend.node_count", nodeCount),
		attribute.Bool("frontend.syntax_errors", hasSyntaxErrors),
	)
}
