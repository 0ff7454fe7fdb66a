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
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

// variationParamsKey is the open-mapping key beam search writes variation
// presets under.
const variationParamsKey = "variation_params"

type candidate struct {
	doc   *document.Document
	score float64
}

// =============================================================================
// Beam Search
// =============================================================================

// BeamSearch keeps the top-k candidate documents over a fixed number of
// enhancement rounds.
//
// Description:
//
//	Round 0 enhances fields (descriptions or example slots), round 1 applies
//	quality presets and later rounds apply variation presets. After each
//	round the successors are scored, stably sorted and cut to BeamWidth.
//
// Thread Safety: Safe for concurrent use.
type BeamSearch struct {
	strategy.Base
	cfg BeamSearchConfig
}

// NewBeamSearch creates the beam search strategy.
func NewBeamSearch(cfg BeamSearchConfig, opts ...strategy.Option) *BeamSearch {
	return &BeamSearch{
		Base: strategy.NewBase(strategy.MethodBeamSearch, opts...),
		cfg:  cfg.withDefaults(),
	}
}

// Reason implements strategy.Strategy.
func (b *BeamSearch) Reason(_ context.Context, doc *document.Document, _ strategy.Hints) (*strategy.Result, error) {
	b.Logger().Info("Starting Beam Search reasoning",
		slog.Int("beam_width", b.cfg.BeamWidth),
		slog.Int("max_depth", b.cfg.MaxDepth))

	steps := []string{
		"Initializing Beam Search",
		fmt.Sprintf("Beam width: %d", b.cfg.BeamWidth),
		fmt.Sprintf("Search depth: %d", b.cfg.MaxDepth),
	}

	root := doc.DeepCopy()
	beam := []candidate{{doc: root, score: b.score(root)}}
	generated := 0

	for depth := 0; depth < b.cfg.MaxDepth; depth++ {
		steps = append(steps, fmt.Sprintf("Depth %d: Expanding candidates", depth+1))

		var successors []candidate
		for _, c := range beam {
			for _, v := range b.expand(c.doc, depth) {
				successors = append(successors, candidate{doc: v, score: b.score(v)})
			}
		}
		generated += len(successors)
		steps = append(steps, fmt.Sprintf("Generated %d candidate variations", len(successors)))

		if len(successors) == 0 {
			steps = append(steps, "No new candidates; keeping current beam")
			continue
		}

		sort.SliceStable(successors, func(i, j int) bool {
			return successors[i].score > successors[j].score
		})
		if len(successors) > b.cfg.BeamWidth {
			successors = successors[:b.cfg.BeamWidth]
		}
		beam = successors

		steps = append(steps, fmt.Sprintf("Retained top %d candidates (scores: %s)",
			len(beam), formatScores(beam, 3)))
	}

	best := beam[0]
	for _, c := range beam[1:] {
		if c.score > best.score {
			best = c
		}
	}

	confidence := strategy.Clamp01(best.score)
	steps = append(steps,
		fmt.Sprintf("Explored %d configurations", generated),
		fmt.Sprintf("Selected best configuration with score: %.3f", best.score),
		fmt.Sprintf("Completed Beam Search with confidence: %.2f", confidence),
	)

	b.Logger().Info("Beam Search completed",
		slog.Int("final_beam_size", len(beam)),
		slog.Float64("best_score", best.score))

	return strategy.NewResult(best.doc, steps, confidence, map[string]any{
		"beam_width":       b.cfg.BeamWidth,
		"max_depth":        b.cfg.MaxDepth,
		"final_candidates": len(beam),
		"best_score":       best.score,
	}), nil
}

// expand returns the successors of doc for the given round.
func (b *BeamSearch) expand(doc *document.Document, depth int) []*document.Document {
	switch depth {
	case 0:
		return b.enhanceFields(doc)
	case 1:
		return b.applyPresets(doc, b.cfg.QualityPresets, func(d *document.Document, preset map[string]any) {
			d.QualityRequirements = preset
		})
	default:
		return b.applyPresets(doc, b.cfg.VariationPresets, func(d *document.Document, preset map[string]any) {
			d.SetExtension(variationParamsKey, preset)
		})
	}
}

// enhanceFields yields one variant with descriptions filled in and one with
// empty example slots, for fields lacking them.
func (b *BeamSearch) enhanceFields(doc *document.Document) []*document.Document {
	described := doc.DeepCopy()
	for i := range described.Fields {
		f := &described.Fields[i]
		if !f.HasDescription() {
			name := f.Name
			if name == "" {
				name = "field"
			}
			f.Description = "Enhanced description for " + name
		}
	}

	withExamples := doc.DeepCopy()
	for i := range withExamples.Fields {
		f := &withExamples.Fields[i]
		if f.Examples == nil {
			f.Examples = []any{}
		}
	}

	return []*document.Document{described, withExamples}
}

// applyPresets yields one variant per preset; each preset is cloned.
func (b *BeamSearch) applyPresets(doc *document.Document, presets []map[string]any, apply func(*document.Document, map[string]any)) []*document.Document {
	out := make([]*document.Document, 0, len(presets))
	for _, preset := range presets {
		v := doc.DeepCopy()
		apply(v, document.CloneMap(preset))
		out = append(out, v)
	}
	return out
}

// score rates a candidate by completeness, capped at 1.
func (b *BeamSearch) score(doc *document.Document) float64 {
	score := 0.0

	if doc.HasFields() {
		score += 0.3
		for i := range doc.Fields {
			if doc.Fields[i].HasDescription() {
				score += 0.05
			}
			if doc.Fields[i].Examples != nil {
				score += 0.03
			}
		}
	}
	if doc.HasQuality() {
		score += 0.2
	}
	if _, ok := doc.Extension(variationParamsKey); ok {
		score += 0.1
	}
	if doc.Constraints != nil {
		score += 0.15
	}

	return min(1.0, score)
}

// formatScores renders up to n scores as "[0.500 0.450]".
func formatScores(beam []candidate, n int) string {
	parts := make([]string, 0, n)
	for i := 0; i < len(beam) && i < n; i++ {
		parts = append(parts, fmt.Sprintf("%.3f", beam[i].score))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Describe implements strategy.Strategy.
func (b *BeamSearch) Describe() strategy.Metadata {
	return strategy.Metadata{
		Name:        strategy.MethodBeamSearch,
		Description: "Beam Search - Maintains top-k best candidates for diverse high-quality outputs",
		UseCases: []string{
			"E-commerce product catalogs",
			"Retail inventory data",
			"Marketing campaign data",
			"Product variant generation",
		},
		Parameters: map[string]any{
			"beam_width": b.cfg.BeamWidth,
			"max_depth":  b.cfg.MaxDepth,
		},
		Strengths: []string{
			"Ensures diverse outputs",
			"Maintains quality threshold",
			"Efficient exploration",
			"Good for variant generation",
		},
		Limitations: []string{
			"May miss optimal solution",
			"Beam width needs tuning",
			"Memory intensive for large beams",
		},
	}
}

var _ strategy.Strategy = (*BeamSearch)(nil)
