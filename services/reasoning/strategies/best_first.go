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
	"container/heap"
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

const temporalConstraint = "Maintain temporal ordering"

var temporalKeywords = []string{"time", "date", "timestamp"}

type prioritizedNode struct {
	priority float64
	doc      *document.Document
	depth    int
	seq      int
}

// priorityQueue is a max-heap on priority; earlier insertions win ties.
type priorityQueue []*prioritizedNode

func (q priorityQueue) Len() int { return len(q) }
func (q priorityQueue) Less(i, j int) bool {
	if q[i].priority == q[j].priority {
		return q[i].seq < q[j].seq
	}
	return q[i].priority > q[j].priority
}
func (q priorityQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *priorityQueue) Push(x any)   { *q = append(*q, x.(*prioritizedNode)) }
func (q *priorityQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

// =============================================================================
// Best-First Search
// =============================================================================

// BestFirst expands the most promising document first, for sequential and
// time-series data.
//
// Description:
//
//	The queue is ordered by a temporal-signal heuristic. Every popped node is
//	scored with a separate completeness evaluation, and the best evaluated
//	node is returned. Nodes are expanded only while depth < MaxDepth.
//
// Thread Safety: Safe for concurrent use.
type BestFirst struct {
	strategy.Base
	cfg BestFirstConfig
}

// NewBestFirst creates the best-first search strategy.
func NewBestFirst(cfg BestFirstConfig, opts ...strategy.Option) *BestFirst {
	return &BestFirst{
		Base: strategy.NewBase(strategy.MethodBestFirstSearch, opts...),
		cfg:  cfg.withDefaults(),
	}
}

// Reason implements strategy.Strategy.
func (b *BestFirst) Reason(_ context.Context, doc *document.Document, _ strategy.Hints) (*strategy.Result, error) {
	b.Logger().Info("Starting Best-First Search reasoning", slog.Int("max_nodes", b.cfg.MaxNodes))

	steps := []string{
		"Initializing Best-First Search",
		fmt.Sprintf("Maximum nodes to explore: %d", b.cfg.MaxNodes),
	}

	start := doc.DeepCopy()
	queue := &priorityQueue{{priority: b.heuristic(start), doc: start}}
	seq := 0

	var best *prioritizedNode
	bestScore := math.Inf(-1)
	explored := 0

	for queue.Len() > 0 && explored < b.cfg.MaxNodes {
		current := heap.Pop(queue).(*prioritizedNode)
		explored++

		steps = append(steps, fmt.Sprintf("Exploring node %d (priority: %.3f, depth: %d)",
			explored, current.priority, current.depth))

		if score := b.evaluate(current.doc); score > bestScore {
			bestScore = score
			best = current
			steps = append(steps, fmt.Sprintf("  → New best score: %.3f", score))
		}

		if current.depth < b.cfg.MaxDepth {
			for _, succ := range b.successors(current) {
				seq++
				succ.seq = seq
				heap.Push(queue, succ)
			}
		}
	}

	confidence := strategy.Clamp01(bestScore)
	steps = append(steps,
		fmt.Sprintf("Explored %d nodes", explored),
		fmt.Sprintf("Best configuration score: %.3f", bestScore),
		fmt.Sprintf("Completed Best-First Search with confidence: %.2f", confidence),
	)

	b.Logger().Info("Best-First Search completed",
		slog.Int("nodes_explored", explored),
		slog.Float64("best_score", bestScore))

	return strategy.NewResult(best.doc, steps, confidence, map[string]any{
		"nodes_explored": explored,
		"best_score":     bestScore,
		"final_depth":    best.depth,
	}), nil
}

// heuristic rates how promising a document is for temporal data; higher is better.
func (b *BestFirst) heuristic(doc *document.Document) float64 {
	score := 0.0

	for i := range doc.Fields {
		f := &doc.Fields[i]
		if containsAny(strings.ToLower(f.Name), temporalKeywords...) {
			score += 0.3
		}
		if containsAny(strings.ToLower(f.Type), "datetime", "timestamp") {
			score += 0.2
		}
	}

	for _, c := range doc.StringConstraints() {
		if containsAny(strings.ToLower(c), "sequential", "order") {
			score += 0.2
		}
	}

	if _, ok := doc.QualityRequirements["temporal_consistency"]; ok {
		score += 0.2
	}

	return score
}

// evaluate scores document completeness, capped at 1.
func (b *BestFirst) evaluate(doc *document.Document) float64 {
	score := 0.3
	if doc.HasFields() {
		score += 0.2
	}
	if doc.Constraints != nil {
		score += 0.15
	}
	if doc.HasQuality() {
		score += 0.15
	}
	if hasTemporalField(doc) {
		score += 0.2
	}
	return min(1.0, score)
}

// successors adds the temporal ordering constraint or temporal consistency.
// Actions already applied are skipped.
func (b *BestFirst) successors(node *prioritizedNode) []*prioritizedNode {
	var out []*prioritizedNode

	if !node.doc.HasTextConstraint(temporalConstraint) {
		v := node.doc.DeepCopy()
		v.EnsureConstraints()
		v.AddTextConstraint(temporalConstraint)
		out = append(out, &prioritizedNode{priority: b.heuristic(v), doc: v, depth: node.depth + 1})
	}

	if _, ok := node.doc.QualityRequirements["temporal_consistency"]; !ok {
		v := node.doc.DeepCopy()
		v.EnsureQuality()["temporal_consistency"] = true
		out = append(out, &prioritizedNode{priority: b.heuristic(v), doc: v, depth: node.depth + 1})
	}

	return out
}

func hasTemporalField(doc *document.Document) bool {
	for _, name := range doc.FieldNames() {
		if containsAny(strings.ToLower(name), temporalKeywords...) {
			return true
		}
	}
	return false
}

// Describe implements strategy.Strategy.
func (b *BestFirst) Describe() strategy.Metadata {
	return strategy.Metadata{
		Name:        strategy.MethodBestFirstSearch,
		Description: "Best-First Search - Prioritizes most promising paths for sequential data",
		UseCases: []string{
			"Time-series data generation",
			"Sequential pattern generation",
			"Temporal data with ordering",
			"Event streams",
		},
		Parameters: map[string]any{
			"max_nodes": b.cfg.MaxNodes,
			"max_depth": b.cfg.MaxDepth,
		},
		Strengths: []string{
			"Efficient for sequential data",
			"Prioritizes promising paths",
			"Good heuristic-based exploration",
			"Fast convergence",
		},
		Limitations: []string{
			"Depends on heuristic quality",
			"May miss optimal solution",
			"Not exhaustive",
		},
	}
}

var _ strategy.Strategy = (*BestFirst)(nil)
