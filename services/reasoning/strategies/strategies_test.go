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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

// =============================================================================
// Fixtures
// =============================================================================

func seeded(seed int64) strategy.Option {
	return strategy.WithRand(strategy.NewSeededSource(seed))
}

func richDocument() *document.Document {
	size := 5
	return &document.Document{
		DataType: "trading transactions",
		Domain:   "financial",
		Fields: []document.Field{
			{Name: "id", Type: "integer"},
			{Name: "account_id", Type: "integer"},
			{Name: "amount", Type: "number", Constraints: map[string]any{"min": 0}},
			{Name: "trade_time"},
			{Name: "age", Type: "integer"},
		},
		Constraints: []document.Constraint{
			document.TextConstraint("Amounts must be positive"),
			document.RuleConstraint(map[string]any{"type": "range", "field": "amount"}),
		},
		Relationships: []document.Relationship{
			{From: "account_id", To: "account.id", Type: "foreign_key"},
		},
		QualityRequirements: map[string]any{"null_percentage": 0.01},
		Size:                &size,
		Extensions:          map[string]any{"owner": map[string]any{"team": "risk"}},
	}
}

// =============================================================================
// Contract tests across every strategy
// =============================================================================

func TestAllStrategies_Contract(t *testing.T) {
	docs := map[string]*document.Document{
		"rich":  richDocument(),
		"empty": document.New(),
		"nil":   nil,
	}

	for _, s := range NewAll(DefaultConfig(), seeded(1)) {
		for docName, doc := range docs {
			t.Run(s.Name()+"/"+docName, func(t *testing.T) {
				var before *document.Document
				if doc != nil {
					before = doc.DeepCopy()
				}

				res, err := s.Reason(context.Background(), doc, nil)
				require.NoError(t, err)
				require.NotNil(t, res)
				require.NotNil(t, res.Enhanced)

				assert.NotEmpty(t, res.Steps)
				assert.GreaterOrEqual(t, res.Confidence, 0.0)
				assert.LessOrEqual(t, res.Confidence, 1.0)
				assert.Contains(t, res.Steps[len(res.Steps)-1], "confidence")

				if doc != nil {
					assert.Equal(t, before, doc, "input must not be mutated")
				}
			})
		}
	}
}

func TestAllStrategies_DescribeMatchesName(t *testing.T) {
	for _, s := range NewAll(DefaultConfig()) {
		meta := s.Describe()
		assert.Equal(t, s.Name(), meta.Name)
		assert.NotEmpty(t, meta.Description)
		assert.NotEmpty(t, meta.UseCases)
		assert.NotEmpty(t, meta.Strengths)
		assert.NotEmpty(t, meta.Limitations)
		assert.NotNil(t, meta.Parameters)
	}
}

// =============================================================================
// Registry
// =============================================================================

func TestNewAll_Order(t *testing.T) {
	all := NewAll(DefaultConfig())
	names := make([]string, 0, len(all))
	for _, s := range all {
		names = append(names, s.Name())
	}
	assert.Equal(t, strategy.AllMethods(), names)
}

func TestNew(t *testing.T) {
	s, err := New(strategy.MethodAStar, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, strategy.MethodAStar, s.Name())

	_, err = New("nonexistent", DefaultConfig())
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestConfig_ZeroValuesUseDefaults(t *testing.T) {
	m := NewMCTS(MCTSConfig{})
	assert.Equal(t, DefaultMCTSConfig().Iterations, m.Describe().Parameters["iterations"])

	b := NewBeamSearch(BeamSearchConfig{BeamWidth: 2})
	assert.Equal(t, 2, b.Describe().Parameters["beam_width"])
	assert.Equal(t, 3, b.Describe().Parameters["max_depth"])
}

// =============================================================================
// MCTS
// =============================================================================

func TestMCTS_SameSeedSameOutput(t *testing.T) {
	doc := richDocument()

	a, err := NewMCTS(DefaultMCTSConfig(), seeded(7)).Reason(context.Background(), doc, nil)
	require.NoError(t, err)
	b, err := NewMCTS(DefaultMCTSConfig(), seeded(7)).Reason(context.Background(), doc, nil)
	require.NoError(t, err)

	assert.Equal(t, a.Enhanced, b.Enhanced)
	assert.Equal(t, a.Confidence, b.Confidence)
	assert.Equal(t, a.Steps, b.Steps)
	assert.Equal(t, a.Metadata, b.Metadata)
}

func TestMCTS_SingleIterationKeepsRoot(t *testing.T) {
	doc := richDocument()
	res, err := NewMCTS(MCTSConfig{Iterations: 1}, seeded(3)).Reason(context.Background(), doc, nil)
	require.NoError(t, err)

	assert.Equal(t, doc, res.Enhanced)
	assert.Equal(t, 0, res.Metadata["nodes_explored"])
	assert.Equal(t, 1, res.Metadata["tree_size"])
}

func TestMCTS_WidensRootBeforeDescending(t *testing.T) {
	tests := []struct {
		name        string
		iterations  int
		maxChildren int
		explored    int
	}{
		{name: "root still widening", iterations: 3, maxChildren: 3, explored: 2},
		{name: "root full then descend", iterations: 6, maxChildren: 3, explored: 3},
		{name: "single child chain", iterations: 6, maxChildren: 1, explored: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := MCTSConfig{Iterations: tt.iterations, MaxChildren: tt.maxChildren}
			res, err := NewMCTS(cfg, seeded(5)).Reason(context.Background(), richDocument(), nil)
			require.NoError(t, err)

			assert.Equal(t, tt.explored, res.Metadata["nodes_explored"])
			assert.Equal(t, tt.iterations, res.Metadata["tree_size"])
		})
	}
}

func TestMCTS_VariationAddsQualityHints(t *testing.T) {
	res, err := NewMCTS(DefaultMCTSConfig(), seeded(11)).Reason(context.Background(), richDocument(), nil)
	require.NoError(t, err)

	q := res.Enhanced.QualityRequirements
	assert.Contains(t, []any{"high", "very_high"}, q["precision"])
	assert.Equal(t, true, q["referential_integrity"])
	assert.Equal(t, 3, res.Metadata["nodes_explored"])
	assert.Contains(t, res.Steps, "Completed 20/100 simulations")
}

// =============================================================================
// A*
// =============================================================================

func TestAStar_DrainsFiniteStateSpace(t *testing.T) {
	res, err := NewAStar(DefaultAStarConfig()).Reason(context.Background(), &document.Document{DataType: "jobs"}, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Metadata["nodes_explored"])
	assert.InDelta(t, 0.6, res.Confidence, 1e-9)
	assert.True(t, res.Enhanced.HasTextConstraint("Optimize for efficiency"))
	assert.Equal(t, "high", res.Enhanced.QualityRequirements["optimization_level"])
	assert.Equal(t, "Node 1: f=1.000 (g=0.000, h=1.000)", res.Steps[2])
}

func TestAStar_ResourceFieldsLowerHeuristic(t *testing.T) {
	doc := &document.Document{Fields: []document.Field{{Name: "resource_pool"}, {Name: "capacity"}}}
	res, err := NewAStar(DefaultAStarConfig()).Reason(context.Background(), doc, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.2, res.Metadata["final_h_score"].(float64), 1e-9)
	assert.InDelta(t, 0.8, res.Confidence, 1e-9)
}

func TestAStar_MaxNodesBoundsSearch(t *testing.T) {
	res, err := NewAStar(AStarConfig{MaxNodes: 2}).Reason(context.Background(), document.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Metadata["nodes_explored"])
}

// =============================================================================
// Best-First Search
// =============================================================================

func TestBestFirst_TemporalDocument(t *testing.T) {
	doc := &document.Document{Fields: []document.Field{{Name: "event_time", Type: "datetime"}}}
	res, err := NewBestFirst(DefaultBestFirstConfig()).Reason(context.Background(), doc, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Metadata["nodes_explored"])
	assert.Equal(t, 2, res.Metadata["final_depth"])
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)
	assert.True(t, res.Enhanced.HasTextConstraint("Maintain temporal ordering"))
	assert.Equal(t, true, res.Enhanced.QualityRequirements["temporal_consistency"])
}

func TestBestFirst_SingleNodeEvaluatesRoot(t *testing.T) {
	res, err := NewBestFirst(BestFirstConfig{MaxNodes: 1}).Reason(context.Background(), document.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Metadata["nodes_explored"])
	assert.InDelta(t, 0.3, res.Confidence, 1e-9)
}

// =============================================================================
// Beam Search
// =============================================================================

func TestBeamSearch_PicksDescribedHighQualityVariant(t *testing.T) {
	doc := &document.Document{Fields: []document.Field{{Name: "sku", Type: "string"}}}
	res, err := NewBeamSearch(DefaultBeamSearchConfig()).Reason(context.Background(), doc, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.65, res.Metadata["best_score"].(float64), 1e-9)
	assert.Equal(t, 5, res.Metadata["final_candidates"])
	assert.Equal(t, "Enhanced description for sku", res.Enhanced.Fields[0].Description)
	assert.Equal(t, "high", res.Enhanced.QualityRequirements["quality_level"])

	vp, ok := res.Enhanced.Extension("variation_params")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"diversity": "high"}, vp)
}

func TestBeamSearch_RootIsScored(t *testing.T) {
	doc := document.New()
	doc.EnsureQuality()["quality_level"] = "high"
	doc.AddTextConstraint("No duplicate orders")

	// Zero rounds leaves the seed candidate as the only result.
	b := &BeamSearch{Base: strategy.NewBase(strategy.MethodBeamSearch), cfg: BeamSearchConfig{BeamWidth: 5}}
	res, err := b.Reason(context.Background(), doc, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.35, res.Metadata["best_score"].(float64), 1e-9)
	assert.InDelta(t, 0.35, res.Confidence, 1e-9)
	assert.Equal(t, doc, res.Enhanced)
}

func TestBeamSearch_PresetsAreNotShared(t *testing.T) {
	cfg := DefaultBeamSearchConfig()
	s := NewBeamSearch(cfg)

	res, err := s.Reason(context.Background(), document.New(), nil)
	require.NoError(t, err)
	res.Enhanced.QualityRequirements["quality_level"] = "mutated"

	assert.Equal(t, "high", DefaultBeamSearchConfig().QualityPresets[0]["quality_level"])
	assert.Equal(t, "high", cfg.QualityPresets[0]["quality_level"])
}

// =============================================================================
// Tree of Thoughts
// =============================================================================

func TestTreeOfThoughts_FullTree(t *testing.T) {
	res, err := NewTreeOfThoughts(DefaultTreeOfThoughtsConfig()).Reason(context.Background(), document.New(), nil)
	require.NoError(t, err)

	assert.Equal(t, 27, res.Metadata["paths_explored"])
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)
	assert.NotEmpty(t, res.Enhanced.Relationships)
	assert.NotEmpty(t, res.Enhanced.Constraints)

	rules, ok := res.Enhanced.Extension("cascade_rules")
	require.True(t, ok)
	assert.Equal(t, "cascade", rules.(map[string]any)["on_delete"])
}

func TestTreeOfThoughts_MarksIdentityFieldsUnique(t *testing.T) {
	doc := &document.Document{Fields: []document.Field{{Name: "Email"}, {Name: "bio"}}}
	s := NewTreeOfThoughts(TreeOfThoughtsConfig{Branches: 2, MaxDepth: 1})

	branch := s.branch(doc, 1)
	assert.True(t, branch.Fields[0].Unique)
	assert.False(t, branch.Fields[1].Unique)
	assert.False(t, doc.Fields[0].Unique)
}

// =============================================================================
// Graph of Thoughts
// =============================================================================

func TestGraphOfThoughts_SharedTokensLinkFields(t *testing.T) {
	doc := &document.Document{Fields: []document.Field{
		{Name: "customer_id"}, {Name: "customer_name"}, {Name: "order_id"}, {Name: "amount"},
	}}
	res, err := NewGraphOfThoughts().Reason(context.Background(), doc, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Metadata["graph_nodes"])
	assert.Equal(t, 2, res.Metadata["connected_components"])
	assert.InDelta(t, 1.0, res.Metadata["avg_connections"].(float64), 1e-9)
	assert.InDelta(t, 1.0/3.0, res.Metadata["density"].(float64), 1e-9)
	assert.InDelta(t, 0.85, res.Confidence, 1e-9)

	assert.True(t, res.Enhanced.HasTextConstraint("Ensure bidirectional edges"))
	assert.Equal(t, true, res.Enhanced.QualityRequirements["graph_consistency"])
}

func TestGraphOfThoughts_DeclaredRelationship(t *testing.T) {
	doc := &document.Document{
		Fields:        []document.Field{{Name: "follower"}, {Name: "user"}},
		Relationships: []document.Relationship{{From: "follower", To: "user.id"}},
	}
	g := buildThoughtGraph(doc)
	assert.Equal(t, 1, g.degree("field_follower"))
	assert.Equal(t, 1, g.degree("field_user"))
}

func TestGraphOfThoughts_EmptyGraph(t *testing.T) {
	a := analyzeGraph(buildThoughtGraph(nil))
	assert.Equal(t, graphAnalysis{}, a)
}

// =============================================================================
// Chain of Thought
// =============================================================================

func TestChainOfThought_Healthcare(t *testing.T) {
	doc := &document.Document{
		Domain: "healthcare",
		Fields: []document.Field{
			{Name: "patient_id", Type: "integer"},
			{Name: "age", Type: "integer"},
			{Name: "visit_count", Type: "integer"},
			{Name: "name"},
		},
	}
	res, err := NewChainOfThought(DefaultChainOfThoughtConfig()).Reason(context.Background(), doc, nil)
	require.NoError(t, err)

	e := res.Enhanced
	assert.True(t, e.HasTextConstraint("HIPAA compliance required"))
	assert.True(t, e.HasTextConstraint("PHI data must be anonymizable"))
	assert.Equal(t, map[string]any{"min": 0, "max": 120}, e.Fields[1].Constraints)
	assert.Equal(t, map[string]any{"min": 0}, e.Fields[2].Constraints)
	assert.True(t, e.Fields[3].Required)
	assert.True(t, e.Fields[3].Unique)

	require.Len(t, e.Relationships, 1)
	assert.Equal(t, "patient.id", e.Relationships[0].To)

	assert.Equal(t, "very_high", e.QualityRequirements["quality_level"])
	assert.Equal(t, true, e.QualityRequirements["validation_required"])

	assert.Contains(t, res.Steps, "Step 1: Identified domain as 'healthcare'")
	assert.Contains(t, res.Steps, "  ⚠ Fields missing type specification: name")
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)
	assert.Equal(t, len(res.Steps), res.Metadata["steps_count"])
}

func TestChainOfThought_GeneralDefaultsKeepExisting(t *testing.T) {
	size := 3
	doc := &document.Document{QualityRequirements: map[string]any{"quality_level": "medium"}, Size: &size}
	res, err := NewChainOfThought(DefaultChainOfThoughtConfig()).Reason(context.Background(), doc, nil)
	require.NoError(t, err)

	assert.Equal(t, "medium", res.Enhanced.QualityRequirements["quality_level"])
	assert.Equal(t, 0.05, res.Enhanced.QualityRequirements["null_percentage"])
	assert.Contains(t, res.Steps, "Step 1: Identified domain as 'general'")
	assert.Contains(t, res.Steps, "  ⚠ Small dataset size may not show pattern diversity")
}

// =============================================================================
// Reflexion
// =============================================================================

func TestReflexion_FixesThenStops(t *testing.T) {
	doc := &document.Document{Fields: []document.Field{{Name: "email"}}}
	res, err := NewReflexion(DefaultReflexionConfig()).Reason(context.Background(), doc, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Metadata["iterations"])
	assert.InDelta(t, 0.75, res.Confidence, 1e-9)
	assert.Equal(t, "email", res.Enhanced.Fields[0].Type)
	assert.Equal(t, "Auto-generated description for email", res.Enhanced.Fields[0].Description)
	assert.Equal(t, "high", res.Enhanced.QualityRequirements["quality_level"])
	assert.True(t, res.Enhanced.HasTextConstraint("Data must be valid and consistent"))
	assert.Contains(t, res.Steps, "✓ No issues found, requirements are optimal")
}

func TestReflexion_NoIssuesFirstRound(t *testing.T) {
	doc := &document.Document{
		Fields:              []document.Field{{Name: "a", Type: "string", Description: "d"}},
		QualityRequirements: map[string]any{"quality_level": "high"},
		Constraints:         []document.Constraint{document.TextConstraint("x")},
	}
	res, err := NewReflexion(DefaultReflexionConfig()).Reason(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Metadata["iterations"])
	assert.InDelta(t, 0.5, res.Confidence, 1e-9)
}

func TestReflexion_NotImprovingIssue(t *testing.T) {
	r := NewReflexion(DefaultReflexionConfig())
	doc := &document.Document{Fields: []document.Field{{Name: "a"}}}

	issues := r.reflect(doc, []reflection{{iteration: 1, issues: 1}})
	assert.True(t, hasIssue(issues, issueNotImproving))
}

// =============================================================================
// Iterative Refinement
// =============================================================================

func TestIterativeRefinement_ConvergesEarly(t *testing.T) {
	doc := &document.Document{
		Fields:      []document.Field{{Name: "a", Type: "string", Description: "d"}},
		Constraints: []document.Constraint{document.TextConstraint("x")},
	}
	res, err := NewIterativeRefinement(DefaultIterativeRefinementConfig()).Reason(context.Background(), doc, nil)
	require.NoError(t, err)

	assert.Equal(t, true, res.Metadata["converged"])
	assert.Equal(t, 2, res.Metadata["refinement_passes"])
	assert.InDelta(t, 0.7, res.Confidence, 1e-9)
	assert.Contains(t, res.Steps, "✓ Converged - quality improvement minimal")
}

func TestIterativeRefinement_AllPasses(t *testing.T) {
	doc := &document.Document{Fields: []document.Field{{Name: "customer_id"}}}
	res, err := NewIterativeRefinement(DefaultIterativeRefinementConfig()).Reason(context.Background(), doc, nil)
	require.NoError(t, err)

	e := res.Enhanced
	assert.Equal(t, "string", e.Fields[0].Type)
	assert.Equal(t, "Field for customer_id", e.Fields[0].Description)
	assert.Equal(t, "customer.id", e.Relationships[0].To)

	meta, ok := e.Extension("metadata")
	require.True(t, ok)
	assert.Equal(t, true, meta.(map[string]any)["complete"])

	// The polish pass leaves the score unchanged, so the last pass converges.
	assert.Equal(t, true, res.Metadata["converged"])
	assert.Equal(t, 5, res.Metadata["refinement_passes"])
	assert.Len(t, res.Metadata["quality_progression"], 5)
}

// =============================================================================
// Self-Consistency
// =============================================================================

func TestSelfConsistency_SameSeedSameOutput(t *testing.T) {
	doc := richDocument()
	a, err := NewSelfConsistency(DefaultSelfConsistencyConfig(), seeded(5)).Reason(context.Background(), doc, nil)
	require.NoError(t, err)
	b, err := NewSelfConsistency(DefaultSelfConsistencyConfig(), seeded(5)).Reason(context.Background(), doc, nil)
	require.NoError(t, err)

	assert.Equal(t, a.Enhanced, b.Enhanced)
	assert.Equal(t, a.Metadata["sample_order"], b.Metadata["sample_order"])
	assert.Equal(t, a.Confidence, b.Confidence)
}

func TestSelfConsistency_Confidence(t *testing.T) {
	res, err := NewSelfConsistency(DefaultSelfConsistencyConfig(), seeded(9)).Reason(context.Background(), document.New(), nil)
	require.NoError(t, err)

	// Three even samples and two odd ones: the result agrees fully with its
	// own parity and on quality with the rest.
	order := res.Metadata["sample_order"].([]int)
	want := 4.0 / 5.0
	if order[0]%2 == 0 {
		want = (3 + 2*(2.0/3.0)) / 5.0
	}
	assert.InDelta(t, want, res.Confidence, 1e-9)
	assert.Equal(t, []any{"audit_trail_required"}, res.Enhanced.Extensions["compliance"])
	assert.Equal(t, "high", res.Enhanced.QualityRequirements["quality_level"])
}

func TestMajority(t *testing.T) {
	v, ok := majority([]any{"a", "b", "b"})
	require.True(t, ok)
	assert.Equal(t, "b", v)

	v, ok = majority([]any{"a", "b"})
	require.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = majority(nil)
	assert.False(t, ok)
}

// =============================================================================
// ReAct
// =============================================================================

func TestReAct_InfersTypesAndValidates(t *testing.T) {
	doc := &document.Document{Fields: []document.Field{
		{Name: "id"}, {Name: "signup_date"}, {Name: "email"}, {Name: "age"},
	}}
	res, err := NewReAct().Reason(context.Background(), doc, nil)
	require.NoError(t, err)

	e := res.Enhanced
	assert.Equal(t, "string", e.Fields[0].Type)
	assert.True(t, e.Fields[0].Unique)
	assert.True(t, e.Fields[0].Required)
	assert.Equal(t, "datetime", e.Fields[1].Type)
	assert.Equal(t, "email", e.Fields[2].Type)
	assert.Equal(t, "integer", e.Fields[3].Type)

	assert.Contains(t, res.Steps, "  ✓ Real-time validation enabled")
	assert.Contains(t, res.Steps, "  ✓ Quality level set to high")
	assert.Contains(t, res.Steps, "Thought 4: Requirements validated and finalized")
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)
	assert.Equal(t, 3, res.Metadata["cycles"])
}

// =============================================================================
// Meta-Prompting
// =============================================================================

func TestMetaPrompting_Focus(t *testing.T) {
	tests := []struct {
		name       string
		doc        *document.Document
		focus      string
		complexity string
		confidence float64
	}{
		{
			name:       "empty is balanced",
			doc:        document.New(),
			focus:      FocusBalanced,
			complexity: "low",
			confidence: 0.8,
		},
		{
			name:       "quality present",
			doc:        &document.Document{Domain: "financial", QualityRequirements: map[string]any{"x": 1}},
			focus:      FocusQuality,
			complexity: "low",
			confidence: 0.9,
		},
		{
			name: "more constraints than fields",
			doc: &document.Document{Constraints: []document.Constraint{
				document.TextConstraint("a"), document.TextConstraint("b"),
			}},
			focus:      FocusConstraint,
			complexity: "low",
			confidence: 0.8,
		},
		{
			name: "relationships",
			doc: &document.Document{
				Fields:        []document.Field{{Name: "a_id"}},
				Relationships: []document.Relationship{{From: "a_id", To: "a.id"}},
			},
			focus:      FocusRelationship,
			complexity: "medium",
			confidence: 0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewMetaPrompting().Reason(context.Background(), tt.doc, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.focus, res.Metadata["strategy_used"])
			assert.Equal(t, tt.complexity, res.Metadata["complexity"])
			assert.InDelta(t, tt.confidence, res.Confidence, 1e-9)

			gm, ok := res.Enhanced.Extension("generation_metadata")
			require.True(t, ok)
			assert.Equal(t, tt.focus, gm.(map[string]any)["strategy"])
		})
	}
}
