// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generator

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AleutianAI/dtsexterns/services/externs/emit"
)

var (
	tracer = otel.Tracer("dtsexterns.generator")
	meter  = otel.Meter("dtsexterns.generator")
)

var (
	runLatency     metric.Float64Histogram
	filesProcessed metric.Int64Counter
	filesSkipped   metric.Int64Counter
	entriesEmitted metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runLatency, err = meter.Float64Histogram(
			"dtsexterns_generate_duration_seconds",
			metric.WithDescription("Duration of walking and rendering one program"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		filesProcessed, err = meter.Int64Counter(
			"dtsexterns_files_processed_total",
			metric.WithDescription("Files walked into the registry"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		filesSkipped, err = meter.Int64Counter(
			"dtsexterns_files_skipped_total",
			metric.WithDescription("Files skipped as default library or non-declaration"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		entriesEmitted, err = meter.Int64Counter(
			"dtsexterns_entries_total",
			metric.WithDescription("Top-level registry entries rendered"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordRunMetrics(ctx context.Context, d time.Duration, processed, skipped, entries int, style emit.Style) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("style", style.String()))
	runLatency.Record(ctx, d.Seconds(), attrs)
	filesProcessed.Add(ctx, int64(processed), attrs)
	filesSkipped.Add(ctx, int64(skipped), attrs)
	entriesEmitted.Add(ctx, int64(entries), attrs)
}
