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
	"math"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

const refinementMetadataKey = "metadata"

// =============================================================================
// Iterative Refinement
// =============================================================================

// IterativeRefinement improves a document one phase per pass and stops when
// the quality score stops moving.
//
// Description:
//
//	Passes run fields, constraints, quality, relationships, then polish for
//	every later pass. After each pass the document is scored; from the
//	second pass on, a change smaller than ConvergenceThreshold ends the run.
//
// Thread Safety: Safe for concurrent use.
type IterativeRefinement struct {
	strategy.Base
	cfg IterativeRefinementConfig
}

// NewIterativeRefinement creates the iterative refinement strategy.
func NewIterativeRefinement(cfg IterativeRefinementConfig, opts ...strategy.Option) *IterativeRefinement {
	return &IterativeRefinement{
		Base: strategy.NewBase(strategy.MethodIterativeRefinement, opts...),
		cfg:  cfg.withDefaults(),
	}
}

// Reason implements strategy.Strategy.
func (it *IterativeRefinement) Reason(_ context.Context, doc *document.Document, _ strategy.Hints) (*strategy.Result, error) {
	it.Logger().Info("Starting Iterative Refinement reasoning", slog.Int("max_iterations", it.cfg.MaxIterations))

	current := doc.DeepCopy()
	steps := []string{
		"Starting Iterative Refinement",
		fmt.Sprintf("Maximum refinement passes: %d", it.cfg.MaxIterations),
	}

	var scores []float64
	converged := false

	for pass := 0; pass < it.cfg.MaxIterations; pass++ {
		steps = append(steps, fmt.Sprintf("--- Refinement Pass %d ---", pass+1))

		var notes []string
		current, notes = it.refine(current, pass)
		steps = append(steps, notes...)

		quality := it.evaluate(current)
		scores = append(scores, quality)
		steps = append(steps, fmt.Sprintf("Quality score: %.3f", quality))

		if pass > 0 && math.Abs(scores[pass]-scores[pass-1]) < it.cfg.ConvergenceThreshold {
			steps = append(steps, "✓ Converged - quality improvement minimal")
			converged = true
			break
		}
	}

	final := scores[len(scores)-1]
	confidence := strategy.Clamp01(final)
	steps = append(steps,
		fmt.Sprintf("Completed %d refinement passes", len(scores)),
		fmt.Sprintf("Final quality score: %.3f", final),
		fmt.Sprintf("Completed Iterative Refinement with confidence: %.2f", confidence),
	)

	it.Logger().Info("Iterative Refinement completed",
		slog.Int("passes", len(scores)),
		slog.Float64("final_quality", final))

	return strategy.NewResult(current, steps, confidence, map[string]any{
		"refinement_passes":   len(scores),
		"quality_progression": scores,
		"converged":           converged,
	}), nil
}

// refine applies the phase for pass to a copy of doc.
func (it *IterativeRefinement) refine(doc *document.Document, pass int) (*document.Document, []string) {
	refined := doc.DeepCopy()
	switch pass {
	case 0:
		return refined, it.refineFields(refined)
	case 1:
		return refined, it.refineConstraints(refined)
	case 2:
		return refined, it.refineQuality(refined)
	case 3:
		return refined, it.refineRelationships(refined)
	default:
		return refined, it.polish(refined)
	}
}

func (it *IterativeRefinement) refineFields(doc *document.Document) []string {
	var notes []string
	for i := range doc.Fields {
		f := &doc.Fields[i]
		name := f.Name
		if name == "" {
			name = "unknown"
		}
		if !f.HasType() {
			f.Type = "string"
			notes = append(notes, fmt.Sprintf("  + Added default type 'string' to field '%s'", name))
		}
		if !f.HasDescription() {
			f.Description = "Field for " + name
			notes = append(notes, fmt.Sprintf("  + Added description to field '%s'", name))
		}
	}
	return notes
}

func (it *IterativeRefinement) refineConstraints(doc *document.Document) []string {
	var notes []string
	if doc.Constraints == nil {
		doc.EnsureConstraints()
		notes = append(notes, "  + Initialized constraints list")
	}
	if len(doc.Constraints) == 0 {
		doc.AddTextConstraint("Data must be valid and consistent")
		notes = append(notes, "  + Added basic validity constraint")
	}
	return notes
}

func (it *IterativeRefinement) refineQuality(doc *document.Document) []string {
	var notes []string
	if !doc.HasQuality() {
		notes = append(notes, "  + Initialized quality requirements")
	}
	quality := doc.EnsureQuality()
	if _, ok := quality["quality_level"]; !ok {
		quality["quality_level"] = "high"
		notes = append(notes, "  + Set quality level to 'high'")
	}
	if _, ok := quality["null_percentage"]; !ok {
		quality["null_percentage"] = 0.05
		notes = append(notes, "  + Set null percentage to 5%")
	}
	return notes
}

func (it *IterativeRefinement) refineRelationships(doc *document.Document) []string {
	var notes []string
	if doc.Relationships == nil {
		doc.EnsureRelationships()
		notes = append(notes, "  + Initialized relationships list")
	}
	for _, name := range doc.FieldNames() {
		rel, ok := strategy.ForeignKeyFor(name)
		if !ok {
			continue
		}
		doc.Relationships = append(doc.Relationships, rel)
		notes = append(notes, fmt.Sprintf("  + Detected relationship: %s → %s", rel.From, rel.To))
	}
	return notes
}

func (it *IterativeRefinement) polish(doc *document.Document) []string {
	var notes []string
	meta, ok := doc.Extensions[refinementMetadataKey].(map[string]any)
	if !ok {
		meta = map[string]any{
			"refined":           true,
			"refinement_method": strategy.MethodIterativeRefinement,
		}
		doc.SetExtension(refinementMetadataKey, meta)
		notes = append(notes, "  + Added refinement metadata")
	}
	meta["complete"] = true
	notes = append(notes, "  + Marked requirements as complete")
	return notes
}

// evaluate scores completeness, capped at 1.
func (it *IterativeRefinement) evaluate(doc *document.Document) float64 {
	score := 0.2

	if len(doc.Fields) > 0 {
		score += 0.2
		complete := 0
		for i := range doc.Fields {
			if doc.Fields[i].HasType() && doc.Fields[i].HasDescription() {
				complete++
			}
		}
		if complete == len(doc.Fields) {
			score += 0.2
		}
	}
	if len(doc.Constraints) > 0 {
		score += 0.1
	}
	if doc.HasQuality() {
		score += 0.15
	}
	if len(doc.Relationships) > 0 {
		score += 0.15
	}

	return min(1.0, score)
}

// Describe implements strategy.Strategy.
func (it *IterativeRefinement) Describe() strategy.Metadata {
	return strategy.Metadata{
		Name:        strategy.MethodIterativeRefinement,
		Description: "Iterative Refinement - Progressively improves quality through multiple passes",
		UseCases: []string{
			"General data generation",
			"Quality improvement",
			"Incremental enhancement",
			"Default fallback strategy",
		},
		Parameters: map[string]any{
			"max_iterations":        it.cfg.MaxIterations,
			"convergence_threshold": it.cfg.ConvergenceThreshold,
		},
		Strengths: []string{
			"Works for all domains",
			"Steady quality improvement",
			"Good default choice",
			"Predictable behavior",
		},
		Limitations: []string{
			"May be slower than single-pass",
			"Not specialized for any domain",
			"Generic approach",
		},
	}
}

var _ strategy.Strategy = (*IterativeRefinement)(nil)
