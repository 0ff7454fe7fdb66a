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

const cascadeRulesKey = "cascade_rules"

type thoughtNode struct {
	doc      *document.Document
	depth    int
	score    float64
	children []*thoughtNode
}

// =============================================================================
// Tree of Thoughts
// =============================================================================

// TreeOfThoughts builds a full tree of enhancement branches and returns the
// best scoring leaf.
//
// Description:
//
//	Branch 0 strengthens relationships, branch 1 strengthens constraints and
//	every further branch strengthens data quality. The tree has
//	Branches^MaxDepth leaves.
//
// Thread Safety: Safe for concurrent use.
type TreeOfThoughts struct {
	strategy.Base
	cfg TreeOfThoughtsConfig
}

// NewTreeOfThoughts creates the tree of thoughts strategy.
func NewTreeOfThoughts(cfg TreeOfThoughtsConfig, opts ...strategy.Option) *TreeOfThoughts {
	return &TreeOfThoughts{
		Base: strategy.NewBase(strategy.MethodTreeOfThoughts, opts...),
		cfg:  cfg.withDefaults(),
	}
}

// Reason implements strategy.Strategy.
func (t *TreeOfThoughts) Reason(_ context.Context, doc *document.Document, _ strategy.Hints) (*strategy.Result, error) {
	t.Logger().Info("Starting Tree of Thoughts reasoning",
		slog.Int("branches", t.cfg.Branches),
		slog.Int("max_depth", t.cfg.MaxDepth))

	steps := []string{
		"Initializing Tree of Thoughts",
		fmt.Sprintf("Exploring %d branches per node", t.cfg.Branches),
		fmt.Sprintf("Maximum depth: %d", t.cfg.MaxDepth),
	}

	root := &thoughtNode{doc: doc.DeepCopy()}
	t.build(root, &steps)

	leaves := collectLeaves(root, nil)
	best := leaves[0]
	for _, leaf := range leaves {
		leaf.score = t.evaluate(leaf)
		if leaf.score > best.score {
			best = leaf
		}
	}

	steps = append(steps,
		fmt.Sprintf("Explored %d complete thought paths", len(leaves)),
		fmt.Sprintf("Best path score: %.3f", best.score),
		"Selected optimal requirement configuration",
		fmt.Sprintf("Completed Tree of Thoughts with confidence: %.2f", best.score),
	)

	t.Logger().Info("Tree of Thoughts completed",
		slog.Int("leaf_nodes", len(leaves)),
		slog.Float64("best_score", best.score))

	return strategy.NewResult(best.doc, steps, strategy.Clamp01(best.score), map[string]any{
		"branches":       t.cfg.Branches,
		"max_depth":      t.cfg.MaxDepth,
		"paths_explored": len(leaves),
		"best_score":     best.score,
	}), nil
}

// build expands node depth-first until MaxDepth.
func (t *TreeOfThoughts) build(node *thoughtNode, steps *[]string) {
	if node.depth >= t.cfg.MaxDepth {
		return
	}
	*steps = append(*steps, fmt.Sprintf("Depth %d: Generating %d thought branches", node.depth+1, t.cfg.Branches))

	for i := 0; i < t.cfg.Branches; i++ {
		child := &thoughtNode{doc: t.branch(node.doc, i), depth: node.depth + 1}
		node.children = append(node.children, child)
		t.build(child, steps)
	}
}

// branch returns a copy of doc enhanced by the family picked by index.
func (t *TreeOfThoughts) branch(doc *document.Document, index int) *document.Document {
	b := doc.DeepCopy()
	switch index {
	case 0:
		b.EnsureRelationships()
		b.Relationships = append(b.Relationships, document.Relationship{
			Type:  "referential_integrity",
			Extra: map[string]any{"enforce": true},
		})
		b.SetExtension(cascadeRulesKey, map[string]any{
			"on_delete": "cascade",
			"on_update": "cascade",
		})
	case 1:
		b.EnsureConstraints()
		for i := range b.Fields {
			switch strings.ToLower(b.Fields[i].Name) {
			case "id", "email", "username":
				b.Fields[i].Unique = true
			}
		}
		b.AddConstraint(document.RuleConstraint(map[string]any{
			"type":        "check",
			"description": "Validate data consistency",
		}))
	default:
		quality := b.EnsureQuality()
		quality["referential_integrity"] = true
		quality["null_percentage"] = 0.02
		quality["duplicate_percentage"] = 0.0
	}
	return b
}

// evaluate scores a leaf; deeper leaves earn a refinement bonus.
func (t *TreeOfThoughts) evaluate(node *thoughtNode) float64 {
	score := 0.5
	if len(node.doc.Relationships) > 0 {
		score += 0.2
	}
	if len(node.doc.Constraints) > 0 {
		score += 0.15
	}
	if node.doc.HasQuality() {
		score += 0.15
	}
	score += float64(node.depth) * 0.05
	return min(1.0, score)
}

func collectLeaves(node *thoughtNode, acc []*thoughtNode) []*thoughtNode {
	if len(node.children) == 0 {
		return append(acc, node)
	}
	for _, child := range node.children {
		acc = collectLeaves(child, acc)
	}
	return acc
}

// Describe implements strategy.Strategy.
func (t *TreeOfThoughts) Describe() strategy.Metadata {
	return strategy.Metadata{
		Name:        strategy.MethodTreeOfThoughts,
		Description: "Tree of Thoughts - Explores multiple reasoning branches for complex relational data",
		UseCases: []string{
			"Multi-table database generation",
			"Complex relational data",
			"Interconnected datasets",
			"Schema design assistance",
		},
		Parameters: map[string]any{
			"branches":  t.cfg.Branches,
			"max_depth": t.cfg.MaxDepth,
		},
		Strengths: []string{
			"Excellent for relational data",
			"Explores multiple strategies",
			"Finds optimal schema designs",
			"Good for complex relationships",
		},
		Limitations: []string{
			"Exponential complexity",
			"Memory intensive",
			"May be overkill for simple schemas",
		},
	}
}

var _ strategy.Strategy = (*TreeOfThoughts)(nil)
