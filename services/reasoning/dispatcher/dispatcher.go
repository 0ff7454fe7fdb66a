// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dispatcher routes reasoning requests to a named strategy, contains
// strategy faults, and records one metric per run.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/metrics"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/selector"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategies"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

// =============================================================================
// Options
// =============================================================================

type options struct {
	strategies     strategies.Config
	selector       selector.Config
	rand           strategy.RandSource
	logger         *slog.Logger
	collector      *metrics.Collector
	tracerProvider trace.TracerProvider
}

// Option configures a Dispatcher.
type Option func(*options)

// WithStrategyConfig sets the per-strategy tunables.
func WithStrategyConfig(cfg strategies.Config) Option {
	return func(o *options) {
		o.strategies = cfg
	}
}

// WithSelectorConfig sets the selector configuration.
func WithSelectorConfig(cfg selector.Config) Option {
	return func(o *options) {
		o.selector = cfg
	}
}

// WithRand injects the random source shared by every strategy.
func WithRand(r strategy.RandSource) Option {
	return func(o *options) {
		if r != nil {
			o.rand = r
		}
	}
}

// WithSeed is shorthand for WithRand(strategy.NewSeededSource(seed)).
func WithSeed(seed int64) Option {
	return WithRand(strategy.NewSeededSource(seed))
}

// WithLogger sets the logger passed to the selector and every strategy.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCollector exports runs and detections to Prometheus.
func WithCollector(c *metrics.Collector) Option {
	return func(o *options) {
		o.collector = c
	}
}

// WithTracerProvider sets the provider spans are started from. The default
// is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

// =============================================================================
// Dispatcher
// =============================================================================

// Dispatcher owns one instance of every strategy and routes requests by
// method name.
//
// Description:
//
//	Execute never lets a strategy fault escape. An error, a panic, a nil
//	result, an empty trace or a cancelled context becomes a result
//	carrying the original document, confidence 0, a single
//	"Error: <msg>" step and metadata["error"]. Every Execute that names a
//	known method appends exactly one record to the aggregator.
//
// Thread Safety: Safe for concurrent use. The strategy set is immutable
// after New; the aggregator is the only shared mutable state.
type Dispatcher struct {
	strategies map[string]strategy.Strategy
	order      []string
	aggregator *metrics.Aggregator
	collector  *metrics.Collector
	selector   *selector.Selector
	logger     *slog.Logger
	tracer     trace.Tracer
}

// New builds a dispatcher around aggregator. A nil aggregator gets a fresh
// one; zero configs take their defaults.
//
// Example:
//
//	agg := metrics.NewAggregator()
//	d := dispatcher.New(agg, dispatcher.WithSeed(42))
//	result, err := d.Execute(ctx, "mcts", doc, nil)
func New(aggregator *metrics.Aggregator, opts ...Option) *Dispatcher {
	o := options{
		strategies: strategies.DefaultConfig(),
		selector:   selector.DefaultConfig(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if aggregator == nil {
		aggregator = metrics.NewAggregator(metrics.WithLogger(o.logger))
	}
	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	strategyOpts := []strategy.Option{strategy.WithLogger(o.logger)}
	if o.rand != nil {
		strategyOpts = append(strategyOpts, strategy.WithRand(o.rand))
	}

	d := &Dispatcher{
		strategies: make(map[string]strategy.Strategy),
		aggregator: aggregator,
		collector:  o.collector,
		selector: selector.New(o.selector,
			selector.WithLogger(o.logger),
			selector.WithTracerProvider(tp)),
		logger: o.logger,
		tracer: tp.Tracer(instrumentationName),
	}
	for _, s := range strategies.NewAll(o.strategies, strategyOpts...) {
		d.strategies[s.Name()] = s
		d.order = append(d.order, s.Name())
	}

	d.logger.Info("Reasoning dispatcher initialized", slog.Int("strategies_count", len(d.order)))
	return d
}

// Execute runs the named strategy on doc.
//
// Inputs:
//
//	ctx - Checked before the strategy starts; a cancelled context takes the
//	      fault path.
//	name - Method identifier, see ListStrategies.
//	doc - The document. Nil is treated as empty. Never mutated.
//	hints - Optional context passed through to the strategy.
//
// Outputs:
//
//	*strategy.Result - Stamped with RunID, Method, ExecutionTime and Timestamp.
//	error - Non-nil only for an unknown method (ErrInvalidMethod).
func (d *Dispatcher) Execute(ctx context.Context, name string, doc *document.Document, hints strategy.Hints) (*strategy.Result, error) {
	s, ok := d.strategies[name]
	if !ok {
		return nil, &InvalidMethodError{Method: name, Available: d.ListStrategies()}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if doc == nil {
		doc = document.New()
	}

	runID := uuid.NewString()
	ctx, span := d.tracer.Start(ctx, "dispatcher.Dispatcher.Execute",
		trace.WithAttributes(
			attribute.String("reasoning.method", name),
			attribute.String("reasoning.run_id", runID),
		),
	)
	defer span.End()

	logger := d.logger.With(slog.String("method", name), slog.String("run_id", runID))
	logger.Info("Executing reasoning strategy")

	start := time.Now()
	if !s.Validate(doc) {
		logger.Warn("Requirements validation failed")
	}

	// The strategy works on its own copy so a fault can return doc untouched.
	result, err := d.run(ctx, s, doc.DeepCopy(), hints)
	elapsed := time.Since(start)

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
		logger.Error("Reasoning execution failed", slog.String("error", errMsg))
		span.RecordError(err)
		span.SetStatus(codes.Error, errMsg)
		result = faultResult(doc, errMsg)
	}

	result.Confidence = strategy.Clamp01(result.Confidence)
	result.RunID = runID
	result.Method = name
	result.ExecutionTime = elapsed
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now()
	}

	rec := metrics.Record{
		Method:        name,
		ExecutionTime: elapsed,
		Confidence:    result.Confidence,
		StepsCount:    len(result.Steps),
		Success:       err == nil,
		Error:         errMsg,
		Timestamp:     result.Timestamp,
		Metadata:      document.CloneMap(result.Metadata),
	}
	d.aggregator.Record(rec)
	d.collector.ObserveRecord(rec)
	recordRunMetrics(ctx, name, elapsed, result.Confidence, err == nil)

	span.SetAttributes(
		attribute.Float64("reasoning.confidence", result.Confidence),
		attribute.Int("reasoning.steps", len(result.Steps)),
		attribute.Bool("reasoning.success", err == nil),
	)

	logger.Info("Reasoning execution completed",
		slog.Duration("execution_time", elapsed),
		slog.Float64("confidence", result.Confidence),
		slog.Bool("success", err == nil))

	return result, nil
}

// run calls Reason and converts every fault into an error.
func (d *Dispatcher) run(ctx context.Context, s strategy.Strategy, doc *document.Document, hints strategy.Hints) (res *strategy.Result, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: %v", ErrStrategyPanic, r)
		}
	}()

	res, err = s.Reason(ctx, doc, hints)
	switch {
	case err != nil:
		return nil, err
	case res == nil || res.Enhanced == nil:
		return nil, ErrNilResult
	case len(res.Steps) == 0:
		return nil, ErrEmptyTrace
	}
	return res, nil
}

// faultResult builds the result returned in place of a failed run.
func faultResult(doc *document.Document, msg string) *strategy.Result {
	return strategy.NewResult(
		doc.DeepCopy(),
		[]string{"Error: " + msg},
		0,
		map[string]any{"error": msg},
	)
}

// AutoExecute detects the best strategy for doc and executes it.
func (d *Dispatcher) AutoExecute(ctx context.Context, doc *document.Document, hints strategy.Hints) (*strategy.Result, selector.Detection, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	d.logger.Info("Auto-detecting reasoning strategy")

	det := d.Detect(ctx, doc, hints)
	d.logger.Info("Strategy auto-detected",
		slog.String("recommended", det.Recommended),
		slog.Float64("confidence", det.Confidence),
		slog.String("domain", det.DetectedDomain))

	result, err := d.Execute(ctx, det.Recommended, doc, hints)
	return result, det, err
}

// Detect recommends a strategy for doc without running it.
func (d *Dispatcher) Detect(ctx context.Context, doc *document.Document, hints strategy.Hints) selector.Detection {
	if ctx == nil {
		ctx = context.Background()
	}
	det := d.selector.Detect(ctx, doc, hints)
	d.collector.ObserveDetection(det.Recommended, det.DetectedDomain)
	return det
}

// Compare runs several strategies concurrently on the same document.
//
// Description:
//
//	Every name is checked before anything runs, so an unknown method
//	fails the whole call with ErrInvalidMethod and records nothing.
//	Results come back in request order.
func (d *Dispatcher) Compare(ctx context.Context, names []string, doc *document.Document, hints strategy.Hints) ([]*strategy.Result, error) {
	if len(names) == 0 {
		return nil, ErrNoMethods
	}
	for _, name := range names {
		if _, ok := d.strategies[name]; !ok {
			return nil, &InvalidMethodError{Method: name, Available: d.ListStrategies()}
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := d.tracer.Start(ctx, "dispatcher.Dispatcher.Compare",
		trace.WithAttributes(attribute.StringSlice("reasoning.methods", names)),
	)
	defer span.End()

	results := make([]*strategy.Result, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			res, err := d.Execute(gctx, name, doc, hints)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return results, nil
}

// ListStrategies returns the method names in dispatcher order.
func (d *Dispatcher) ListStrategies() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// GetStrategy returns the strategy registered under name.
func (d *Dispatcher) GetStrategy(name string) (strategy.Strategy, bool) {
	s, ok := d.strategies[name]
	return s, ok
}

// Describe returns the metadata of the named strategy.
func (d *Dispatcher) Describe(name string) (strategy.Metadata, error) {
	s, ok := d.strategies[name]
	if !ok {
		return strategy.Metadata{}, &InvalidMethodError{Method: name, Available: d.ListStrategies()}
	}
	return s.Describe(), nil
}

// Methods returns the selector's method catalogue, optionally filtered by
// domain.
func (d *Dispatcher) Methods(domain string) []selector.MethodInfo {
	return d.selector.Methods(domain)
}

// Metrics returns the aggregator the dispatcher records into.
func (d *Dispatcher) Metrics() *metrics.Aggregator {
	return d.aggregator
}

// MetricsSummary summarizes recorded runs of method, or of every method
// when method is empty.
func (d *Dispatcher) MetricsSummary(method string) metrics.Summary {
	return d.aggregator.Summary(method)
}
