// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dispatcher

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "aleutian.reasoning.dispatcher"

// Package-level meter for dispatch operations.
var meter = otel.Meter(instrumentationName)

// OTel instruments, exported through whichever meter provider the process
// installed (see services/reasoning/telemetry).
var (
	runLatency    metric.Float64Histogram
	runTotal      metric.Int64Counter
	runConfidence metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runLatency, err = meter.Float64Histogram(
			"reasoning_run_duration_seconds",
			metric.WithDescription("Duration of reasoning strategy runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runTotal, err = meter.Int64Counter(
			"reasoning_run_total",
			metric.WithDescription("Total number of reasoning strategy runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runConfidence, err = meter.Float64Histogram(
			"reasoning_run_confidence",
			metric.WithDescription("Confidence reported by reasoning strategy runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordRunMetrics records one run on the OTel instruments.
func recordRunMetrics(ctx context.Context, method string, duration time.Duration, confidence float64, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.Bool("success", success),
	)
	runLatency.Record(ctx, duration.Seconds(), attrs)
	runTotal.Add(ctx, 1, attrs)
	runConfidence.Record(ctx, confidence, metric.WithAttributes(
		attribute.String("method", method),
	))
}
