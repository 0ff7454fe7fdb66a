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

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

// =============================================================================
// Monte-Carlo Tree Search
// =============================================================================

// MCTS explores a tree of document variants with UCB1 selection.
//
// Description:
//
//	Each round selects a node by descending through fully expanded nodes
//	by max UCB1, expands one random variant when the node has been visited,
//	scores the node with a completeness heuristic plus bounded jitter, and
//	backpropagates. The result is the root child with the best average.
//
// Thread Safety: Safe for concurrent use; each Reason call builds its own tree.
type MCTS struct {
	strategy.Base
	cfg MCTSConfig
}

// NewMCTS creates the MCTS strategy.
func NewMCTS(cfg MCTSConfig, opts ...strategy.Option) *MCTS {
	return &MCTS{
		Base: strategy.NewBase(strategy.MethodMCTS, opts...),
		cfg:  cfg.withDefaults(),
	}
}

// Reason implements strategy.Strategy.
func (m *MCTS) Reason(ctx context.Context, doc *document.Document, _ strategy.Hints) (*strategy.Result, error) {
	m.Logger().Info("Starting MCTS reasoning", slog.Int("iterations", m.cfg.Iterations))

	steps := []string{
		"Initializing Monte Carlo Tree Search",
		fmt.Sprintf("Running %d simulations", m.cfg.Iterations),
	}

	root := newSearchNode(doc.DeepCopy(), nil)

	for i := 0; i < m.cfg.Iterations; i++ {
		node := m.selectNode(root)

		if node.visits > 0 && len(node.children) < m.cfg.MaxChildren {
			node = newSearchNode(m.createVariation(node.doc), node)
		}

		node.backpropagate(m.simulate(node.doc))

		if (i+1)%20 == 0 {
			steps = append(steps, fmt.Sprintf("Completed %d/%d simulations", i+1, m.cfg.Iterations))
			strategy.RecordPhase(ctx, "mcts.simulations", attribute.Int("completed", i+1))
		}
	}

	best := root.bestChild()
	if best == nil {
		best = root
		steps = append(steps, "Too few simulations to expand the root; keeping the original configuration")
	}

	steps = append(steps,
		fmt.Sprintf("Explored %d requirement variations", len(root.children)),
		"Selected optimal requirement configuration",
		fmt.Sprintf("Best configuration quality score: %.3f (visits=%d)", best.avgValue(), best.visits),
	)

	confidence := strategy.Clamp01(best.avgValue())
	steps = append(steps, fmt.Sprintf("Completed MCTS reasoning with confidence: %.2f", confidence))

	m.Logger().Info("MCTS reasoning completed",
		slog.Int("nodes_explored", len(root.children)),
		slog.Int("tree_size", root.size()),
		slog.Float64("confidence", confidence))

	return strategy.NewResult(best.doc, steps, confidence, map[string]any{
		"iterations":     m.cfg.Iterations,
		"nodes_explored": len(root.children),
		"tree_size":      root.size(),
		"best_visits":    best.visits,
		"best_value":     best.value,
	}), nil
}

// selectNode descends from root through fully expanded nodes by max UCB1.
func (m *MCTS) selectNode(root *searchNode) *searchNode {
	node := root
	for !node.isLeaf() && len(node.children) >= m.cfg.MaxChildren {
		next := node.children[0]
		bestScore := next.ucb1(m.cfg.ExplorationFactor)
		for _, child := range node.children[1:] {
			if score := child.ucb1(m.cfg.ExplorationFactor); score > bestScore {
				next, bestScore = child, score
			}
		}
		node = next
	}
	return node
}

// simulate scores a document by completeness, plus jitter in [-0.1, 0.1).
func (m *MCTS) simulate(doc *document.Document) float64 {
	score := 0.0

	if doc.HasFields() {
		score += 0.3
		for i := range doc.Fields {
			if doc.Fields[i].HasType() {
				score += 0.05
			}
			if doc.Fields[i].Constraints != nil {
				score += 0.05
			}
		}
	}
	if len(doc.Constraints) > 0 {
		score += 0.2
	}
	if len(doc.Relationships) > 0 {
		score += 0.2
	}
	if doc.HasQuality() {
		score += 0.15
	}

	score += m.Rand().Uniform(-0.1, 0.1)
	return strategy.Clamp01(score)
}

// createVariation returns a copy of doc with quality and distribution hints added.
func (m *MCTS) createVariation(doc *document.Document) *document.Document {
	variation := doc.DeepCopy()

	quality := variation.EnsureQuality()
	if _, ok := quality["precision"]; !ok {
		quality["precision"] = strategy.Choice(m.Rand(), m.cfg.PrecisionChoices)
	}
	if _, ok := quality["referential_integrity"]; !ok {
		quality["referential_integrity"] = true
	}

	for i := range variation.Fields {
		f := &variation.Fields[i]
		if f.IsNumeric() && f.Distribution == "" {
			f.Distribution = strategy.Choice(m.Rand(), m.cfg.DistributionChoices)
		}
	}

	return variation
}

// Describe implements strategy.Strategy.
func (m *MCTS) Describe() strategy.Metadata {
	return strategy.Metadata{
		Name:        strategy.MethodMCTS,
		Description: "Monte Carlo Tree Search - Explores multiple generation paths to find optimal data distributions",
		UseCases: []string{
			"Financial data generation",
			"Risk analysis scenarios",
			"Portfolio optimization",
			"Fraud detection patterns",
			"Trading data with correlations",
		},
		Parameters: map[string]any{
			"iterations":         m.cfg.Iterations,
			"exploration_factor": m.cfg.ExplorationFactor,
			"max_children":       m.cfg.MaxChildren,
		},
		Strengths: []string{
			"Explores diverse solution space",
			"Balances exploration and exploitation",
			"Finds optimal distributions for correlated data",
			"Handles uncertainty well",
		},
		Limitations: []string{
			"Computationally intensive",
			"May require tuning of exploration factor",
			"Performance depends on simulation quality",
		},
	}
}

var _ strategy.Strategy = (*MCTS)(nil)
