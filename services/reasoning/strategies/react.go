// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package strategies

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

// reactCycle is one thought/action pair.
type reactCycle struct {
	thought string
	action  string
	reason  func(*document.Document)
	act     func(*document.Document) []string
}

// =============================================================================
// ReAct
// =============================================================================

// ReAct interleaves an enhancement ("thought") with a check of its effect
// ("action") for types, constraints and quality.
//
// Thread Safety: Safe for concurrent use.
type ReAct struct {
	strategy.Base
}

// NewReAct creates the ReAct strategy.
func NewReAct(opts ...strategy.Option) *ReAct {
	return &ReAct{Base: strategy.NewBase(strategy.MethodReAct, opts...)}
}

// Reason implements strategy.Strategy.
func (r *ReAct) Reason(_ context.Context, doc *document.Document, _ strategy.Hints) (*strategy.Result, error) {
	r.Logger().Info("Starting ReAct reasoning")

	enhanced := doc.DeepCopy()
	steps := []string{"Starting ReAct (Reasoning + Acting)"}

	cycles := []reactCycle{
		{"Analyzing field type specifications", "Validating field type consistency", inferFieldTypes, validateFieldTypes},
		{"Determining appropriate constraints", "Checking constraint feasibility", addRealtimeConstraints, validateConstraints},
		{"Establishing quality requirements", "Verifying quality requirements", enableQualityValidation, validateQuality},
	}

	for i, c := range cycles {
		steps = append(steps, fmt.Sprintf("Thought %d: %s", i+1, c.thought))
		c.reason(enhanced)
		steps = append(steps, fmt.Sprintf("Action %d: %s", i+1, c.action))
		steps = append(steps, c.act(enhanced)...)
	}

	steps = append(steps, fmt.Sprintf("Thought %d: Requirements validated and finalized", len(cycles)+1))

	confidence := r.confidence(enhanced)
	steps = append(steps, fmt.Sprintf("Completed ReAct reasoning with confidence: %.2f", confidence))

	r.Logger().Info("ReAct reasoning completed", slog.Float64("confidence", confidence))

	return strategy.NewResult(enhanced, steps, confidence, map[string]any{
		"cycles":            len(cycles),
		"actions_performed": len(cycles),
	}), nil
}

func inferFieldTypes(doc *document.Document) {
	for i := range doc.Fields {
		f := &doc.Fields[i]
		if f.HasType() {
			continue
		}
		name := strings.ToLower(f.Name)
		switch {
		case strings.Contains(name, "email"):
			f.Type = "email"
		case strings.Contains(name, "date"), strings.Contains(name, "time"):
			f.Type = "datetime"
		case strings.Contains(name, "age"), strings.Contains(name, "count"):
			f.Type = "integer"
		default:
			f.Type = "string"
		}
	}
}

func validateFieldTypes(doc *document.Document) []string {
	var out []string
	for i := range doc.Fields {
		f := &doc.Fields[i]
		name := f.Name
		if name == "" {
			name = "unknown"
		}
		if f.HasType() {
			out = append(out, fmt.Sprintf("  ✓ Validated '%s' as %s", name, f.Type))
		} else {
			out = append(out, fmt.Sprintf("  ⚠ Field '%s' has unknown type", name))
		}
	}
	return out
}

func addRealtimeConstraints(doc *document.Document) {
	doc.EnsureConstraints()
	doc.AddConstraint(document.RuleConstraint(map[string]any{
		"type":    "realtime_validation",
		"enabled": true,
	}))
	for i := range doc.Fields {
		if strings.ToLower(doc.Fields[i].Name) == "id" {
			doc.Fields[i].Unique = true
			doc.Fields[i].Required = true
		}
	}
}

func validateConstraints(doc *document.Document) []string {
	if len(doc.Constraints) == 0 {
		return []string{"  ⚠ No constraints defined"}
	}
	out := []string{fmt.Sprintf("  ✓ Found %d constraints", len(doc.Constraints))}
	for _, c := range doc.Constraints {
		if !c.IsText() && c.Rule["type"] == "realtime_validation" {
			out = append(out, "  ✓ Real-time validation enabled")
			break
		}
	}
	return out
}

func enableQualityValidation(doc *document.Document) {
	quality := doc.EnsureQuality()
	quality["validation_enabled"] = true
	quality["quality_level"] = "high"
}

func validateQuality(doc *document.Document) []string {
	var out []string
	if enabled, _ := doc.QualityRequirements["validation_enabled"].(bool); enabled {
		out = append(out, "  ✓ Quality validation enabled")
	}
	if level, ok := doc.QualityRequirements["quality_level"]; ok && level != nil && level != "" {
		out = append(out, fmt.Sprintf("  ✓ Quality level set to %v", level))
	}
	return out
}

func (r *ReAct) confidence(doc *document.Document) float64 {
	score := 0.5
	if doc.HasFields() {
		score += 0.2
	}
	if doc.Constraints != nil {
		score += 0.15
	}
	if doc.HasQuality() {
		score += 0.15
	}
	return min(1.0, score)
}

// Describe implements strategy.Strategy.
func (r *ReAct) Describe() strategy.Metadata {
	return strategy.Metadata{
		Name:        strategy.MethodReAct,
		Description: "ReAct - Interleaves reasoning with actions for real-time validation",
		UseCases: []string{
			"Real-time data validation",
			"API-integrated data generation",
			"External validation requirements",
			"Dynamic constraint checking",
		},
		Parameters: map[string]any{},
		Strengths: []string{
			"Validates during reasoning",
			"Catches issues early",
			"Good for external validation",
			"Iterative refinement",
		},
		Limitations: []string{
			"May be slower due to actions",
			"Depends on external services",
			"More complex implementation",
		},
	}
}

var _ strategy.Strategy = (*ReAct)(nil)
