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
	"fmt"
	"math"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
)

// searchNode is a node in the MCTS variant tree.
//
// Thread Safety: Not safe for concurrent use. A tree belongs to one run.
type searchNode struct {
	doc      *document.Document
	parent   *searchNode
	children []*searchNode
	depth    int

	visits int
	value  float64
}

// newSearchNode creates a node holding doc, attached to parent when non-nil.
func newSearchNode(doc *document.Document, parent *searchNode) *searchNode {
	n := &searchNode{doc: doc, parent: parent}
	if parent != nil {
		n.depth = parent.depth + 1
		parent.children = append(parent.children, n)
	}
	return n
}

// avgValue returns value/max(visits,1).
func (n *searchNode) avgValue() float64 {
	return n.value / float64(max(n.visits, 1))
}

// isLeaf returns true if the node has no children.
func (n *searchNode) isLeaf() bool {
	return len(n.children) == 0
}

// ucb1 scores the node for selection under its parent.
//
// Description:
//
//	UCB1 = value/visits + c * sqrt(ln(parent visits) / visits).
//	Unvisited nodes score +Inf so they are always tried first.
//
// Inputs:
//
//	c - Exploration constant (sqrt(2) by default).
//
// Outputs:
//
//	float64 - The UCB1 score.
func (n *searchNode) ucb1(c float64) float64 {
	if n.visits == 0 {
		return math.Inf(1)
	}
	exploitation := n.value / float64(n.visits)
	parentVisits := 1
	if n.parent != nil && n.parent.visits > 0 {
		parentVisits = n.parent.visits
	}
	exploration := c * math.Sqrt(math.Log(float64(parentVisits))/float64(n.visits))
	return exploitation + exploration
}

// backpropagate adds one visit and the score to n and every ancestor.
func (n *searchNode) backpropagate(score float64) {
	for node := n; node != nil; node = node.parent {
		node.visits++
		node.value += score
	}
}

// bestChild returns the child with the highest average value, or nil.
// Ties keep the earliest child.
func (n *searchNode) bestChild() *searchNode {
	var best *searchNode
	for _, child := range n.children {
		if best == nil || child.avgValue() > best.avgValue() {
			best = child
		}
	}
	return best
}

// size counts n and all its descendants.
func (n *searchNode) size() int {
	total := 1
	for _, child := range n.children {
		total += child.size()
	}
	return total
}

// String returns a short debug representation.
func (n *searchNode) String() string {
	return fmt.Sprintf("searchNode{depth=%d, visits=%d, avg=%.3f, children=%d}",
		n.depth, n.visits, n.avgValue(), len(n.children))
}
