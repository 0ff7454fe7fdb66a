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
	"reflect"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

const complianceKey = "compliance"

// votedQualityKeys are the quality settings reconciled by majority vote.
var votedQualityKeys = []string{"quality_level", "validation_required"}

// =============================================================================
// Self-Consistency
// =============================================================================

// SelfConsistency generates independent enhancement samples and keeps the
// configuration the samples agree on.
//
// Description:
//
//	Each sample raises quality, adds one of two validation constraints
//	(by sample index parity) and marks an audit trail. Sample order is
//	shuffled through the strategy's RandSource. The first sample is
//	reconciled with the majority vote on the quality settings, and
//	confidence is its mean similarity to all samples.
//
// Thread Safety: Safe for concurrent use.
type SelfConsistency struct {
	strategy.Base
	cfg SelfConsistencyConfig
}

// NewSelfConsistency creates the self-consistency strategy.
func NewSelfConsistency(cfg SelfConsistencyConfig, opts ...strategy.Option) *SelfConsistency {
	return &SelfConsistency{
		Base: strategy.NewBase(strategy.MethodSelfConsistency, opts...),
		cfg:  cfg.withDefaults(),
	}
}

// Reason implements strategy.Strategy.
func (s *SelfConsistency) Reason(_ context.Context, doc *document.Document, _ strategy.Hints) (*strategy.Result, error) {
	s.Logger().Info("Starting Self-Consistency reasoning", slog.Int("samples", s.cfg.Samples))

	steps := []string{
		"Initializing Self-Consistency reasoning",
		fmt.Sprintf("Generating %d independent enhancement samples", s.cfg.Samples),
	}

	order := make([]int, s.cfg.Samples)
	for i := range order {
		order[i] = i
	}
	s.Rand().Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	candidates := make([]*document.Document, 0, s.cfg.Samples)
	for n, idx := range order {
		candidates = append(candidates, s.sample(doc, idx))
		steps = append(steps, fmt.Sprintf("Generated sample %d/%d", n+1, s.cfg.Samples))
	}

	selected := s.mostConsistent(candidates)
	steps = append(steps,
		"Analyzing consistency across samples",
		"Selected most consistent configuration",
	)

	confidence := strategy.Clamp01(consistencyScore(candidates, selected))
	steps = append(steps, fmt.Sprintf("Consistency confidence: %.2f", confidence))

	s.Logger().Info("Self-Consistency completed",
		slog.Int("samples", s.cfg.Samples),
		slog.Float64("confidence", confidence))

	return strategy.NewResult(selected, steps, confidence, map[string]any{
		"samples":           s.cfg.Samples,
		"consistency_score": confidence,
		"sample_order":      order,
	}), nil
}

// sample builds one independent enhancement of doc.
func (s *SelfConsistency) sample(doc *document.Document, index int) *document.Document {
	enhanced := doc.DeepCopy()

	quality := enhanced.EnsureQuality()
	quality["quality_level"] = "high"
	quality["validation_required"] = true

	enhanced.EnsureConstraints()
	if index%2 == 0 {
		enhanced.AddTextConstraint("All fields must be validated")
	} else {
		enhanced.AddTextConstraint("Data must pass integrity checks")
	}

	switch existing := enhanced.Extensions[complianceKey].(type) {
	case nil:
		enhanced.SetExtension(complianceKey, []any{"audit_trail_required"})
	case []any:
		enhanced.Extensions[complianceKey] = append(existing, "audit_trail_required")
	default:
		enhanced.Extensions[complianceKey] = []any{existing, "audit_trail_required"}
	}

	return enhanced
}

// mostConsistent applies the majority vote on quality settings to a copy of
// the first candidate.
func (s *SelfConsistency) mostConsistent(candidates []*document.Document) *document.Document {
	result := candidates[0].DeepCopy()
	quality := result.EnsureQuality()

	for _, key := range votedQualityKeys {
		var votes []any
		for _, c := range candidates {
			if v, ok := c.QualityRequirements[key]; ok && v != nil {
				votes = append(votes, v)
			}
		}
		if winner, ok := majority(votes); ok {
			quality[key] = winner
		}
	}

	return result
}

// majority returns the most frequent vote; ties go to the value seen first.
func majority(votes []any) (any, bool) {
	if len(votes) == 0 {
		return nil, false
	}
	counts := make(map[string]int, len(votes))
	values := make(map[string]any, len(votes))
	var order []string
	for _, v := range votes {
		k := fmt.Sprintf("%T:%v", v, v)
		if _, seen := counts[k]; !seen {
			order = append(order, k)
			values[k] = v
		}
		counts[k]++
	}
	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return values[best], true
}

// consistencyScore is the mean similarity of selected to every candidate.
func consistencyScore(candidates []*document.Document, selected *document.Document) float64 {
	if len(candidates) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range candidates {
		total += similarity(selected, c)
	}
	return total / float64(len(candidates))
}

// similarity compares quality keys and the constraint sets of two
// documents. It is 0.5 when nothing is comparable.
func similarity(a, b *document.Document) float64 {
	score, comparisons := 0.0, 0

	if a.HasQuality() && b.HasQuality() {
		keys := make(map[string]struct{})
		for k := range a.QualityRequirements {
			keys[k] = struct{}{}
		}
		for k := range b.QualityRequirements {
			keys[k] = struct{}{}
		}
		for k := range keys {
			comparisons++
			va, okA := a.QualityRequirements[k]
			vb, okB := b.QualityRequirements[k]
			if okA && okB && reflect.DeepEqual(va, vb) {
				score++
			}
		}
	}

	if a.Constraints != nil && b.Constraints != nil {
		ca, cb := constraintSet(a), constraintSet(b)
		if len(ca) > 0 && len(cb) > 0 {
			comparisons++
			inter := 0
			union := len(cb)
			for k := range ca {
				if _, ok := cb[k]; ok {
					inter++
				} else {
					union++
				}
			}
			score += float64(inter) / float64(union)
		}
	}

	if comparisons == 0 {
		return 0.5
	}
	return score / float64(comparisons)
}

func constraintSet(doc *document.Document) map[string]struct{} {
	set := make(map[string]struct{}, len(doc.Constraints))
	for _, c := range doc.Constraints {
		if c.IsText() {
			set[c.Text] = struct{}{}
			continue
		}
		set[fmt.Sprint(c.Rule)] = struct{}{}
	}
	return set
}

// Describe implements strategy.Strategy.
func (s *SelfConsistency) Describe() strategy.Metadata {
	return strategy.Metadata{
		Name:        strategy.MethodSelfConsistency,
		Description: "Self-Consistency - Generates multiple solutions and selects most consistent",
		UseCases: []string{
			"Compliance data generation",
			"High-quality validation scenarios",
			"Audit and regulatory data",
			"Safety-critical data",
		},
		Parameters: map[string]any{
			"samples": s.cfg.Samples,
		},
		Strengths: []string{
			"High confidence in results",
			"Reduces variance",
			"Excellent for compliance",
			"Robust to noise",
		},
		Limitations: []string{
			"Computationally expensive",
			"Slower than single-pass methods",
			"May be conservative",
		},
	}
}

var _ strategy.Strategy = (*SelfConsistency)(nil)
