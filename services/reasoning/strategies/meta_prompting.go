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

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

// Enhancement focuses picked by meta-analysis.
const (
	FocusConstraint   = "constraint_focused"
	FocusQuality      = "quality_focused"
	FocusRelationship = "relationship_focused"
	FocusBalanced     = "balanced"
)

const (
	generationMetadataKey   = "generation_metadata"
	constraintValidationKey = "constraint_validation"
	referentialIntegrityKey = "referential_integrity"
)

type metaAnalysis struct {
	domain     string
	complexity string
	focus      string
}

// =============================================================================
// Meta-Prompting
// =============================================================================

// MetaPrompting analyzes a document's shape and applies the enhancement
// bundle that fits it.
//
// Description:
//
//	Meta-analysis detects the domain, grades complexity (low, medium, high)
//	and picks a focus: constraint, quality, relationship or balanced. The
//	focus bundle is applied and the analysis is stamped under
//	generation_metadata.
//
// Thread Safety: Safe for concurrent use.
type MetaPrompting struct {
	strategy.Base
}

// NewMetaPrompting creates the meta-prompting strategy.
func NewMetaPrompting(opts ...strategy.Option) *MetaPrompting {
	return &MetaPrompting{Base: strategy.NewBase(strategy.MethodMetaPrompting, opts...)}
}

// Reason implements strategy.Strategy.
func (m *MetaPrompting) Reason(_ context.Context, doc *document.Document, _ strategy.Hints) (*strategy.Result, error) {
	m.Logger().Info("Starting Meta-Prompting reasoning")

	steps := []string{
		"Starting Meta-Prompting (Adaptive Reasoning)",
		"Analyzing requirements to determine optimal strategy",
	}

	analysis := analyzeMeta(doc)
	steps = append(steps,
		"Domain detected: "+analysis.domain,
		"Complexity level: "+analysis.complexity,
		"Recommended sub-strategy: "+analysis.focus,
	)

	enhanced := doc.DeepCopy()
	switch analysis.focus {
	case FocusConstraint:
		steps = append(steps, "Applying constraint-focused enhancements")
		enhanced.EnsureConstraints()
		enhanced.SetExtension(constraintValidationKey, map[string]any{"enabled": true, "level": "strict"})
	case FocusQuality:
		steps = append(steps, "Applying quality-focused enhancements")
		quality := enhanced.EnsureQuality()
		quality["quality_level"] = "very_high"
		quality["validation_required"] = true
		quality["null_percentage"] = 0.0
	case FocusRelationship:
		steps = append(steps, "Applying relationship-focused enhancements")
		enhanced.EnsureRelationships()
		enhanced.SetExtension(referentialIntegrityKey, map[string]any{"enabled": true, "cascade": true})
	default:
		steps = append(steps, "Applying balanced enhancements")
		enhanced.EnsureQuality()["quality_level"] = "high"
		enhanced.EnsureConstraints()
		if len(enhanced.Constraints) == 0 {
			enhanced.AddTextConstraint("Data must be valid")
		}
	}

	steps = append(steps, "Applying cross-domain refinements")
	enhanced.SetExtension(generationMetadataKey, map[string]any{
		"domain":     analysis.domain,
		"complexity": analysis.complexity,
		"strategy":   analysis.focus,
	})

	confidence := m.confidence(analysis, enhanced)
	steps = append(steps, fmt.Sprintf("Meta-prompting completed with confidence: %.2f", confidence))

	m.Logger().Info("Meta-Prompting completed",
		slog.String("strategy", analysis.focus),
		slog.Float64("confidence", confidence))

	return strategy.NewResult(enhanced, steps, confidence, map[string]any{
		"domain":        analysis.domain,
		"complexity":    analysis.complexity,
		"strategy_used": analysis.focus,
	}), nil
}

// analyzeMeta grades the document and picks a focus.
func analyzeMeta(doc *document.Document) metaAnalysis {
	a := metaAnalysis{domain: "general", focus: FocusBalanced}
	if d := strategy.ExtractDomain(doc); d != "" {
		a.domain = d
	}
	if doc == nil {
		a.complexity = "low"
		return a
	}

	score := 0
	switch n := len(doc.Fields); {
	case n > 20:
		score += 2
	case n > 10:
		score++
	}
	if len(doc.Relationships) > 0 {
		score += 2
	}
	if len(doc.Constraints) > 5 {
		score++
	}

	switch {
	case score >= 4:
		a.complexity = "high"
	case score >= 2:
		a.complexity = "medium"
	default:
		a.complexity = "low"
	}

	switch {
	case len(doc.Constraints) > len(doc.Fields):
		a.focus = FocusConstraint
	case doc.HasQuality():
		a.focus = FocusQuality
	case len(doc.Relationships) > 0:
		a.focus = FocusRelationship
	}

	return a
}

func (m *MetaPrompting) confidence(a metaAnalysis, doc *document.Document) float64 {
	score := 0.6
	if a.domain != "general" {
		score += 0.1
	}
	if a.focus != FocusBalanced {
		score += 0.1
	}
	if doc.HasQuality() {
		score += 0.1
	}
	if doc.Constraints != nil {
		score += 0.1
	}
	return min(1.0, score)
}

// Describe implements strategy.Strategy.
func (m *MetaPrompting) Describe() strategy.Metadata {
	return strategy.Metadata{
		Name:        strategy.MethodMetaPrompting,
		Description: "Meta-Prompting - Dynamically adapts strategy based on requirements",
		UseCases: []string{
			"Multi-domain data generation",
			"Adaptive strategy selection",
			"Cross-functional datasets",
			"Unknown or varied domains",
		},
		Parameters: map[string]any{},
		Strengths: []string{
			"Adapts to requirements",
			"Works across domains",
			"Flexible and versatile",
			"Good for mixed datasets",
		},
		Limitations: []string{
			"May not specialize as well",
			"Requires good meta-analysis",
			"More complex logic",
		},
	}
}

var _ strategy.Strategy = (*MetaPrompting)(nil)
