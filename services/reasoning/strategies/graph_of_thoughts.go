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

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

const graphPropertiesKey = "graph_properties"

// thoughtGraph is an undirected graph over field nodes, in insertion order.
type thoughtGraph struct {
	order []string
	edges map[string]map[string]struct{}
}

func newThoughtGraph() *thoughtGraph {
	return &thoughtGraph{edges: make(map[string]map[string]struct{})}
}

func (g *thoughtGraph) addNode(id string) {
	if _, ok := g.edges[id]; ok {
		return
	}
	g.order = append(g.order, id)
	g.edges[id] = make(map[string]struct{})
}

func (g *thoughtGraph) has(id string) bool {
	_, ok := g.edges[id]
	return ok
}

func (g *thoughtGraph) connect(a, b string) {
	g.edges[a][b] = struct{}{}
	g.edges[b][a] = struct{}{}
}

func (g *thoughtGraph) degree(id string) int { return len(g.edges[id]) }

func (g *thoughtGraph) nodeCount() int { return len(g.order) }

type graphAnalysis struct {
	components     int
	avgConnections float64
	density        float64
}

// =============================================================================
// Graph of Thoughts
// =============================================================================

// GraphOfThoughts models fields as a graph and annotates the document with
// the graph's shape.
//
// Description:
//
//	Fields become nodes. Declared relationships and shared name tokens
//	become edges. The analysis (components, average degree, density) is
//	written under graph_properties, together with graph constraints and a
//	graph_consistency quality flag.
//
// Thread Safety: Safe for concurrent use.
type GraphOfThoughts struct {
	strategy.Base
}

// NewGraphOfThoughts creates the graph of thoughts strategy.
func NewGraphOfThoughts(opts ...strategy.Option) *GraphOfThoughts {
	return &GraphOfThoughts{Base: strategy.NewBase(strategy.MethodGraphOfThoughts, opts...)}
}

// Reason implements strategy.Strategy.
func (g *GraphOfThoughts) Reason(ctx context.Context, doc *document.Document, _ strategy.Hints) (*strategy.Result, error) {
	g.Logger().Info("Starting Graph of Thoughts reasoning")

	steps := []string{
		"Starting Graph of Thoughts reasoning",
		"Modeling requirements as interconnected graph",
		"Phase 1: Building thought graph",
	}

	graph := buildThoughtGraph(doc)
	steps = append(steps, fmt.Sprintf("  Created graph with %d nodes", graph.nodeCount()))

	steps = append(steps, "Phase 2: Analyzing graph structure")
	analysis := analyzeGraph(graph)
	steps = append(steps,
		fmt.Sprintf("  Identified %d connected components", analysis.components),
		fmt.Sprintf("  Average connections per node: %.2f", analysis.avgConnections),
		fmt.Sprintf("  Graph density: %.3f", analysis.density),
	)
	strategy.RecordPhase(ctx, "graph.analyzed",
		attribute.Int("nodes", graph.nodeCount()),
		attribute.Float64("density", analysis.density))

	steps = append(steps, "Phase 3: Enhancing requirements using graph insights")
	enhanced := g.enhance(doc, graph, analysis)
	steps = append(steps,
		"  + Added graph-based relationships",
		"  + Enhanced with network properties",
		"  + Applied graph constraints",
	)

	confidence := g.confidence(analysis, enhanced)
	steps = append(steps, fmt.Sprintf("Graph of Thoughts completed with confidence: %.2f", confidence))

	g.Logger().Info("Graph of Thoughts completed",
		slog.Int("nodes", graph.nodeCount()),
		slog.Float64("confidence", confidence))

	return strategy.NewResult(enhanced, steps, confidence, map[string]any{
		"graph_nodes":          graph.nodeCount(),
		"connected_components": analysis.components,
		"avg_connections":      analysis.avgConnections,
		"density":              analysis.density,
	}), nil
}

// buildThoughtGraph creates a node per field, then links declared
// relationships and fields sharing a name token.
func buildThoughtGraph(doc *document.Document) *thoughtGraph {
	graph := newThoughtGraph()
	if doc == nil {
		return graph
	}

	for _, name := range doc.FieldNames() {
		if name == "" {
			name = "unknown"
		}
		graph.addNode("field_" + name)
	}

	for _, rel := range doc.Relationships {
		from := "field_" + rel.From
		to := "field_" + strings.SplitN(rel.To, ".", 2)[0]
		if graph.has(from) && graph.has(to) {
			graph.connect(from, to)
		}
	}

	for i, a := range graph.order {
		for _, b := range graph.order[i+1:] {
			if namesRelated(strings.TrimPrefix(a, "field_"), strings.TrimPrefix(b, "field_")) {
				graph.connect(a, b)
			}
		}
	}

	return graph
}

// namesRelated reports whether two field names share a token.
func namesRelated(a, b string) bool {
	tokens := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ReplaceAll(strings.ToLower(a), "_", " ")) {
		tokens[w] = struct{}{}
	}
	for _, w := range strings.Fields(strings.ReplaceAll(strings.ToLower(b), "_", " ")) {
		if _, ok := tokens[w]; ok {
			return true
		}
	}
	return false
}

// analyzeGraph approximates components as isolated nodes plus one for the
// connected remainder.
func analyzeGraph(graph *thoughtGraph) graphAnalysis {
	n := graph.nodeCount()
	if n == 0 {
		return graphAnalysis{}
	}

	isolated, total := 0, 0
	for _, id := range graph.order {
		d := graph.degree(id)
		if d == 0 {
			isolated++
		}
		total += d
	}

	components := isolated
	if n-isolated > 0 {
		components++
	}

	maxEdges := 1.0
	if n > 1 {
		maxEdges = float64(n*(n-1)) / 2
	}

	return graphAnalysis{
		components:     components,
		avgConnections: float64(total) / float64(n),
		density:        (float64(total) / 2) / maxEdges,
	}
}

func (g *GraphOfThoughts) enhance(doc *document.Document, graph *thoughtGraph, analysis graphAnalysis) *document.Document {
	enhanced := doc.DeepCopy()

	props, _ := enhanced.Extensions[graphPropertiesKey].(map[string]any)
	if props == nil {
		props = make(map[string]any)
	}
	props["is_graph_data"] = true
	props["node_count"] = graph.nodeCount()
	props["avg_degree"] = analysis.avgConnections
	props["density"] = analysis.density
	enhanced.SetExtension(graphPropertiesKey, props)

	enhanced.EnsureConstraints()
	enhanced.AddTextConstraint("Maintain graph connectivity")
	enhanced.AddTextConstraint("Preserve degree distribution")
	enhanced.AddTextConstraint("Ensure bidirectional edges")

	enhanced.EnsureQuality()["graph_consistency"] = true

	return enhanced
}

func (g *GraphOfThoughts) confidence(analysis graphAnalysis, doc *document.Document) float64 {
	score := 0.5
	if _, ok := doc.Extension(graphPropertiesKey); ok {
		score += 0.2
	}
	if analysis.avgConnections > 1 {
		score += 0.15
	}
	if analysis.density > 0.1 {
		score += 0.15
	}
	return min(1.0, score)
}

// Describe implements strategy.Strategy.
func (g *GraphOfThoughts) Describe() strategy.Metadata {
	return strategy.Metadata{
		Name:        strategy.MethodGraphOfThoughts,
		Description: "Graph of Thoughts - Reasons about data as interconnected graphs",
		UseCases: []string{
			"Network data generation",
			"Social graph generation",
			"Knowledge graph creation",
			"Relationship-heavy data",
		},
		Parameters: map[string]any{},
		Strengths: []string{
			"Excellent for graph data",
			"Identifies hidden relationships",
			"Maintains graph properties",
			"Good for network analysis",
		},
		Limitations: []string{
			"Overhead for non-graph data",
			"Requires relationship information",
			"More complex analysis",
		},
	}
}

var _ strategy.Strategy = (*GraphOfThoughts)(nil)
