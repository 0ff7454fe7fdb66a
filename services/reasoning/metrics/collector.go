// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace  = "reasoning"
	strategySubsystem = "strategy"
	selectorSubsystem = "selector"
)

// Run statuses used as the status label.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Collector exports strategy runs and selector detections to Prometheus.
//
// A nil *Collector is valid and records nothing.
//
// Thread Safety: Safe for concurrent use.
type Collector struct {
	runs       *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	confidence *prometheus.HistogramVec
	detections *prometheus.CounterVec
}

// NewCollector registers the reasoning metrics with reg. A nil reg uses the
// default Prometheus registerer.
//
// Registering twice with the same registerer panics, as with promauto.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		// Labels: method, status (success, error)
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: strategySubsystem,
			Name:      "runs_total",
			Help:      "Total strategy executions by method and status",
		}, []string{"method", "status"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: strategySubsystem,
			Name:      "duration_seconds",
			Help:      "Strategy execution time in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method"}),

		confidence: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: strategySubsystem,
			Name:      "confidence",
			Help:      "Distribution of strategy confidence scores",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
		}, []string{"method"}),

		// Labels: method (recommended), domain (detected)
		detections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: selectorSubsystem,
			Name:      "detections_total",
			Help:      "Total selector detections by recommended method and domain",
		}, []string{"method", "domain"}),
	}
}

// ObserveRun records one strategy execution.
func (c *Collector) ObserveRun(method string, success bool, elapsed time.Duration, confidence float64) {
	if c == nil {
		return
	}
	status := StatusSuccess
	if !success {
		status = StatusError
	}
	c.runs.WithLabelValues(method, status).Inc()
	c.duration.WithLabelValues(method).Observe(elapsed.Seconds())
	c.confidence.WithLabelValues(method).Observe(confidence)
}

// ObserveRecord records a metric record.
func (c *Collector) ObserveRecord(rec Record) {
	c.ObserveRun(rec.Method, rec.Success, rec.ExecutionTime, rec.Confidence)
}

// ObserveDetection records one selector detection.
func (c *Collector) ObserveDetection(method, domain string) {
	if c == nil {
		return
	}
	c.detections.WithLabelValues(method, domain).Inc()
}
