// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package selector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

func TestTables(t *testing.T) {
	assert.Len(t, domainMethod, 37)
	assert.Len(t, domainKeywords, 7)
	assert.Len(t, catalogue, len(strategy.AllMethods()))
	for _, m := range strategy.AllMethods() {
		assert.Contains(t, explanations, m)
	}
	for _, d := range KnownDomains() {
		_, ok := MethodForDomain(d)
		assert.True(t, ok, d)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name         string
		doc          *document.Document
		hints        strategy.Hints
		recommended  string
		confidence   float64
		domain       string
		alternatives []string
	}{
		{
			name:         "explicit financial domain",
			doc:          &document.Document{Domain: "financial"},
			recommended:  strategy.MethodMCTS,
			confidence:   1.0,
			domain:       "financial",
			alternatives: []string{strategy.MethodIterativeRefinement, strategy.MethodChainOfThought, strategy.MethodReflexion},
		},
		{
			name:         "empty document",
			doc:          document.New(),
			recommended:  strategy.MethodIterativeRefinement,
			confidence:   0,
			domain:       GeneralDomain,
			alternatives: []string{strategy.MethodChainOfThought, strategy.MethodReflexion},
		},
		{
			name:         "nil document",
			doc:          nil,
			recommended:  strategy.MethodIterativeRefinement,
			confidence:   0,
			domain:       GeneralDomain,
			alternatives: []string{strategy.MethodChainOfThought, strategy.MethodReflexion},
		},
		{
			name: "keywords",
			doc: &document.Document{
				DataType: "trading fraud detection transactions",
				Fields:   []document.Field{{Name: "amount", Type: "float"}},
			},
			recommended:  strategy.MethodMCTS,
			confidence:   2.0 / 19.0 * 5,
			domain:       "financial",
			alternatives: []string{strategy.MethodIterativeRefinement, strategy.MethodChainOfThought, strategy.MethodReflexion},
		},
		{
			name:         "tie goes to table order",
			doc:          &document.Document{DataType: "audit schedule"},
			recommended:  strategy.MethodSelfConsistency,
			confidence:   0.5,
			domain:       "compliance",
			alternatives: []string{strategy.MethodAStar, strategy.MethodIterativeRefinement, strategy.MethodChainOfThought},
		},
		{
			name:         "use_case hint overrides domain",
			doc:          &document.Document{Domain: "healthcare"},
			hints:        strategy.Hints{HintUseCase: "Fraud Detection"},
			recommended:  strategy.MethodMCTS,
			confidence:   1.0,
			domain:       "fraud_detection",
			alternatives: []string{strategy.MethodIterativeRefinement, strategy.MethodChainOfThought, strategy.MethodReflexion},
		},
		{
			name:         "query hint joins the corpus",
			doc:          document.New(),
			hints:        strategy.Hints{HintQuery: "patient diagnosis records"},
			recommended:  strategy.MethodChainOfThought,
			confidence:   2.0 / 16.0 * 5,
			domain:       "healthcare",
			alternatives: []string{strategy.MethodIterativeRefinement, strategy.MethodReflexion},
		},
		{
			name:         "explicit reasoning method",
			doc:          &document.Document{Domain: "healthcare", ReasoningMethod: "astar"},
			recommended:  strategy.MethodAStar,
			confidence:   1.0,
			domain:       "healthcare",
			alternatives: []string{strategy.MethodChainOfThought, strategy.MethodIterativeRefinement, strategy.MethodReflexion},
		},
		{
			name:         "unknown reasoning method is ignored",
			doc:          &document.Document{Domain: "network", ReasoningMethod: "magic"},
			recommended:  strategy.MethodGraphOfThoughts,
			confidence:   1.0,
			domain:       "network",
			alternatives: []string{strategy.MethodIterativeRefinement, strategy.MethodChainOfThought, strategy.MethodReflexion},
		},
		{
			name:         "unroutable domain falls back to keywords",
			doc:          &document.Document{Domain: "astronomy", Fields: []document.Field{{Name: "event_timestamp"}}},
			recommended:  strategy.MethodBestFirstSearch,
			confidence:   2.0 / 11.0 * 5,
			domain:       "timeseries",
			alternatives: []string{strategy.MethodIterativeRefinement, strategy.MethodChainOfThought, strategy.MethodReflexion},
		},
	}

	s := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := s.Detect(context.Background(), tt.doc, tt.hints)

			assert.Equal(t, tt.recommended, d.Recommended)
			assert.InDelta(t, tt.confidence, d.Confidence, 1e-9)
			assert.Equal(t, tt.domain, d.DetectedDomain)
			assert.Equal(t, tt.alternatives, d.Alternatives)
			assert.NotContains(t, d.Alternatives, d.Recommended)
			assert.LessOrEqual(t, len(d.Alternatives), 3)
			assert.Equal(t, d.Confidence < 0.75, d.NeedsConfirmation)
		})
	}
}

func TestDetect_Explanation(t *testing.T) {
	s := New(DefaultConfig())

	d := s.Detect(context.Background(), &document.Document{Domain: "risk_management"}, nil)
	assert.Equal(t, "Risk Management domain detected. "+explanations[strategy.MethodMCTS], d.Explanation)

	d = s.Detect(context.Background(), nil, nil)
	assert.Equal(t,
		explanations[strategy.MethodIterativeRefinement]+" This is a general-purpose approach suitable for various data types.",
		d.Explanation)
}

func TestDetect_ScoresAndCorpus(t *testing.T) {
	doc := &document.Document{
		Constraints: []document.Constraint{
			document.TextConstraint("stock price feed"),
			document.RuleConstraint(map[string]any{"type": "range", "field": "forex"}),
		},
		Relationships: []document.Relationship{{From: "a", To: "b", Extra: map[string]any{"note": "follower graph"}}},
	}
	d := New(DefaultConfig()).Detect(context.Background(), doc, nil)

	assert.InDelta(t, 2.0/19.0*5, d.Scores["financial"], 1e-9)
	assert.InDelta(t, 1.0/15.0*5, d.Scores["ecommerce"], 1e-9)
	assert.InDelta(t, 2.0/13.0*5, d.Scores["network"], 1e-9)
	assert.Equal(t, "network", d.DetectedDomain)
	assert.Equal(t, strategy.MethodGraphOfThoughts, d.Recommended)
	assert.Equal(t, []string{strategy.MethodMCTS, strategy.MethodBeamSearch, strategy.MethodIterativeRefinement}, d.Alternatives)
}

func TestDetect_Threshold(t *testing.T) {
	doc := &document.Document{DataType: "patient diagnosis"}

	assert.True(t, New(DefaultConfig()).Detect(context.Background(), doc, nil).NeedsConfirmation)
	assert.False(t, New(Config{ConfidenceThreshold: 0.5}).Detect(context.Background(), doc, nil).NeedsConfirmation)
	assert.Equal(t, 0.75, New(Config{}).Threshold())
}

func TestDetect_RecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	s := New(DefaultConfig(), WithTracerProvider(tp))
	s.Detect(context.Background(), &document.Document{Domain: "graph"}, nil)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "selector.Selector.Detect", spans[0].Name())

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, strategy.MethodGraphOfThoughts, attrs["selector.recommended"])
	assert.Equal(t, "graph", attrs["selector.domain"])
}

func TestMethods(t *testing.T) {
	s := New(DefaultConfig())

	all := s.Methods("")
	require.Len(t, all, 12)
	for i, m := range strategy.AllMethods() {
		assert.Equal(t, m, all[i].Method)
		assert.NotEmpty(t, all[i].Domains)
	}

	social := s.Methods("social")
	require.Len(t, social, 1)
	assert.Equal(t, strategy.MethodGraphOfThoughts, social[0].Method)

	general := s.Methods("general")
	require.Len(t, general, 1)
	assert.Equal(t, strategy.MethodIterativeRefinement, general[0].Method)

	fraud := s.Methods("Fraud Detection")
	require.Len(t, fraud, 1)
	assert.Equal(t, strategy.MethodMCTS, fraud[0].Method)

	assert.Empty(t, s.Methods("astronomy"))

	// Returned slices are copies.
	all[0].Domains[0] = "mutated"
	assert.Equal(t, "financial", s.Methods("")[0].Domains[0])
}

func TestNormalizeDomain(t *testing.T) {
	assert.Equal(t, "multi_table", normalizeDomain(" Multi-Table "))
	assert.Equal(t, "", normalizeDomain("   "))
}
