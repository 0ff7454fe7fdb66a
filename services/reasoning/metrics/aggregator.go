// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package metrics aggregates per-run reasoning metrics in memory and exports
// them to Prometheus.
package metrics

import (
	"log/slog"
	"maps"
	"math"
	"slices"
	"sync"
	"time"
)

// Record is the metric record of one strategy execution.
type Record struct {
	Method        string         `json:"method_name"`
	ExecutionTime time.Duration  `json:"execution_time_ns"`
	Confidence    float64        `json:"confidence_score"`
	StepsCount    int            `json:"steps_count"`
	Success       bool           `json:"success"`
	Error         string         `json:"error_message,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Summary aggregates the records of one method, or of all methods.
type Summary struct {
	TotalRuns        int           `json:"total_runs"`
	SuccessRate      float64       `json:"success_rate"`
	AvgExecutionTime time.Duration `json:"avg_execution_time_ns"`
	AvgConfidence    float64       `json:"avg_confidence"`
	MethodName       string        `json:"method_name,omitempty"`
}

// =============================================================================
// Aggregator
// =============================================================================

// Aggregator is an append-only, in-memory log of metric records with an
// explicit reset.
//
// Thread Safety: Safe for concurrent use.
type Aggregator struct {
	mu      sync.RWMutex
	records []Record
	logger  *slog.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithLogger sets the aggregator's logger.
func WithLogger(l *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAggregator creates an empty aggregator.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Record appends rec. A zero Timestamp is set to now.
func (a *Aggregator) Record(rec Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	a.mu.Lock()
	a.records = append(a.records, rec)
	a.mu.Unlock()

	a.logger.Debug("Reasoning metrics recorded",
		slog.String("method", rec.Method),
		slog.Duration("execution_time", rec.ExecutionTime),
		slog.Float64("confidence", rec.Confidence),
		slog.Bool("success", rec.Success))
}

// Summary aggregates the records of method, or of every method when method
// is empty. An empty or unmatched filter yields a zeroed summary.
func (a *Aggregator) Summary(method string) Summary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := Summary{MethodName: method}
	var (
		successes  int
		totalTime  time.Duration
		confidence float64
	)
	for i := range a.records {
		r := &a.records[i]
		if method != "" && r.Method != method {
			continue
		}
		s.TotalRuns++
		if r.Success {
			successes++
		}
		totalTime += r.ExecutionTime
		confidence += r.Confidence
	}

	if s.TotalRuns == 0 {
		return s
	}
	n := float64(s.TotalRuns)
	s.SuccessRate = float64(successes) / n
	s.AvgExecutionTime = totalTime / time.Duration(s.TotalRuns)
	s.AvgConfidence = confidence / n
	return s
}

// ByMethod returns a summary per method that has at least one record.
func (a *Aggregator) ByMethod() map[string]Summary {
	a.mu.RLock()
	methods := make(map[string]struct{})
	for i := range a.records {
		methods[a.records[i].Method] = struct{}{}
	}
	a.mu.RUnlock()

	out := make(map[string]Summary, len(methods))
	for _, m := range slices.Sorted(maps.Keys(methods)) {
		out[m] = a.Summary(m)
	}
	return out
}

// Percentile returns the nearest-rank p-th percentile (0-100) of execution
// time for method, or for every method when method is empty.
// It returns 0 when no record matches.
func (a *Aggregator) Percentile(method string, p float64) time.Duration {
	a.mu.RLock()
	var times []time.Duration
	for i := range a.records {
		if method == "" || a.records[i].Method == method {
			times = append(times, a.records[i].ExecutionTime)
		}
	}
	a.mu.RUnlock()

	if len(times) == 0 {
		return 0
	}
	slices.Sort(times)

	p = math.Max(0, math.Min(100, p))
	rank := int(math.Ceil(p / 100 * float64(len(times))))
	if rank < 1 {
		rank = 1
	}
	return times[rank-1]
}

// Records returns a copy of the log in insertion order.
func (a *Aggregator) Records() []Record {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.records)
}

// Len returns the number of records.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}

// Reset clears the log.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.records = nil
	a.mu.Unlock()
	a.logger.Info("Metrics history cleared")
}
