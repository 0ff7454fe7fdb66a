// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package strategy defines the contract shared by every reasoning strategy.
//
// A strategy takes a specification document and returns an enhanced copy,
// a human-readable trace of what it did, and a heuristic confidence. The
// set of strategies is closed; the dispatcher selects one by name.
//
// # Contract
//
//   - Reason must not mutate its input and must return a non-empty trace
//     with confidence in [0,1].
//   - Reason returns faults to the caller. Containment is the dispatcher's job.
//   - Validate is advisory; a false result never blocks execution.
//
// # Randomness
//
// Strategies that sample draw only from a RandSource injected via WithRand,
// so a fixed seed reproduces a run exactly.
package strategy

import (
	"context"
	"log/slog"
	"time"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
)

// Strategy method identifiers, in dispatcher order.
const (
	MethodMCTS                = "mcts"
	MethodBeamSearch          = "beam_search"
	MethodChainOfThought      = "chain_of_thought"
	MethodTreeOfThoughts      = "tree_of_thoughts"
	MethodSelfConsistency     = "self_consistency"
	MethodReAct               = "react"
	MethodReflexion           = "reflexion"
	MethodBestFirstSearch     = "best_first_search"
	MethodAStar               = "astar"
	MethodMetaPrompting       = "meta_prompting"
	MethodIterativeRefinement = "iterative_refinement"
	MethodGraphOfThoughts     = "graph_of_thoughts"
)

// AllMethods returns every method identifier in dispatcher order.
func AllMethods() []string {
	return []string{
		MethodMCTS,
		MethodBeamSearch,
		MethodChainOfThought,
		MethodTreeOfThoughts,
		MethodSelfConsistency,
		MethodReAct,
		MethodReflexion,
		MethodBestFirstSearch,
		MethodAStar,
		MethodMetaPrompting,
		MethodIterativeRefinement,
		MethodGraphOfThoughts,
	}
}

// Hints is the optional context mapping passed alongside a document.
type Hints map[string]any

// String returns the hint as a string, or "" when absent or not a string.
func (h Hints) String(key string) string {
	if h == nil {
		return ""
	}
	s, _ := h[key].(string)
	return s
}

// Strategy is one pluggable search or refinement algorithm.
type Strategy interface {
	// Name returns the method identifier.
	Name() string

	// Reason enhances a private copy of doc and reports what it did.
	Reason(ctx context.Context, doc *document.Document, hints Hints) (*Result, error)

	// Validate checks the lightweight precondition.
	Validate(doc *document.Document) bool

	// Describe returns static metadata for introspection.
	Describe() Metadata
}

// =============================================================================
// Result
// =============================================================================

// Result is the outcome of one strategy run.
//
// Strategies fill Enhanced, Steps, Confidence and Metadata. The dispatcher
// stamps RunID, Method, ExecutionTime and Timestamp before handing it out;
// after that the result is treated as immutable.
type Result struct {
	RunID         string             `json:"run_id"`
	Method        string             `json:"method_used"`
	Enhanced      *document.Document `json:"enhanced_requirements"`
	Steps         []string           `json:"reasoning_steps"`
	Confidence    float64            `json:"confidence"`
	Metadata      map[string]any     `json:"metadata"`
	ExecutionTime time.Duration      `json:"execution_time_ns"`
	Timestamp     time.Time          `json:"timestamp"`
}

// NewResult builds a result with the timestamp set to now.
func NewResult(enhanced *document.Document, steps []string, confidence float64, metadata map[string]any) *Result {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Result{
		Enhanced:   enhanced,
		Steps:      steps,
		Confidence: confidence,
		Metadata:   metadata,
		Timestamp:  time.Now(),
	}
}

// Failed reports whether the result came from the fault path.
func (r *Result) Failed() bool {
	if r == nil {
		return true
	}
	_, ok := r.Metadata["error"]
	return ok
}

// =============================================================================
// Metadata
// =============================================================================

// Metadata describes a strategy for introspection and UI display.
type Metadata struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	UseCases    []string       `json:"use_cases" yaml:"use_cases"`
	Parameters  map[string]any `json:"parameters" yaml:"parameters"`
	Strengths   []string       `json:"strengths" yaml:"strengths"`
	Limitations []string       `json:"limitations" yaml:"limitations"`
}

// =============================================================================
// Options
// =============================================================================

// Options carries the collaborators every strategy accepts.
type Options struct {
	Rand   RandSource
	Logger *slog.Logger
}

// Option configures Options.
type Option func(*Options)

// WithRand injects the random source.
func WithRand(r RandSource) Option {
	return func(o *Options) {
		if r != nil {
			o.Rand = r
		}
	}
}

// WithLogger injects the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// ApplyOptions resolves options against defaults: a time-seeded source and
// slog.Default().
func ApplyOptions(opts ...Option) Options {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Rand == nil {
		o.Rand = NewSeededSource(time.Now().UnixNano())
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// =============================================================================
// Base
// =============================================================================

// Base holds the collaborators shared by all strategies and implements the
// common precondition check. Strategies embed it.
type Base struct {
	name   string
	logger *slog.Logger
	rand   RandSource
}

// NewBase builds a Base for the named strategy.
func NewBase(name string, opts ...Option) Base {
	o := ApplyOptions(opts...)
	return Base{
		name:   name,
		logger: o.Logger.With(slog.String("strategy", name)),
		rand:   o.Rand,
	}
}

// Name returns the method identifier.
func (b *Base) Name() string {
	return b.name
}

// Logger returns the strategy-scoped logger.
func (b *Base) Logger() *slog.Logger {
	return b.logger
}

// Rand returns the injected random source.
func (b *Base) Rand() RandSource {
	return b.rand
}

// Validate checks the lightweight precondition shared by every strategy.
//
// Description:
//
//	Fails for an empty document, and for a document with neither fields
//	nor a data_type hint. Failures are logged at warn level and are
//	advisory only.
func (b *Base) Validate(doc *document.Document) bool {
	if doc.IsEmpty() {
		b.logger.Warn("Empty requirements provided")
		return false
	}
	if !doc.HasFields() && doc.DataType == "" {
		b.logger.Warn("Requirements missing both fields and data_type")
		return false
	}
	return true
}
