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

import "math"

// MCTSConfig configures Monte-Carlo Tree Search.
type MCTSConfig struct {
	// Iterations is the number of select/expand/simulate/backpropagate rounds.
	Iterations int `json:"iterations" yaml:"iterations"`

	// ExplorationFactor is the UCB1 exploration constant.
	ExplorationFactor float64 `json:"exploration_factor" yaml:"exploration_factor"`

	// MaxChildren is the number of variants a node may have before
	// selection descends through it.
	MaxChildren int `json:"max_children" yaml:"max_children"`

	// PrecisionChoices are the candidate quality precision levels.
	PrecisionChoices []string `json:"precision_choices" yaml:"precision_choices"`

	// DistributionChoices are the candidate numeric field distributions.
	DistributionChoices []string `json:"distribution_choices" yaml:"distribution_choices"`
}

// DefaultMCTSConfig returns the default MCTS configuration.
func DefaultMCTSConfig() MCTSConfig {
	return MCTSConfig{
		Iterations:          100,
		ExplorationFactor:   math.Sqrt2,
		MaxChildren:         3,
		PrecisionChoices:    []string{"high", "very_high"},
		DistributionChoices: []string{"normal", "lognormal", "uniform"},
	}
}

func (c MCTSConfig) withDefaults() MCTSConfig {
	d := DefaultMCTSConfig()
	if c.Iterations <= 0 {
		c.Iterations = d.Iterations
	}
	if c.ExplorationFactor <= 0 {
		c.ExplorationFactor = d.ExplorationFactor
	}
	if c.MaxChildren <= 0 {
		c.MaxChildren = d.MaxChildren
	}
	if len(c.PrecisionChoices) == 0 {
		c.PrecisionChoices = d.PrecisionChoices
	}
	if len(c.DistributionChoices) == 0 {
		c.DistributionChoices = d.DistributionChoices
	}
	return c
}

// AStarConfig configures A* search.
type AStarConfig struct {
	MaxNodes      int     `json:"max_nodes" yaml:"max_nodes"`
	GoalThreshold float64 `json:"goal_threshold" yaml:"goal_threshold"`
}

// DefaultAStarConfig returns the default A* configuration.
func DefaultAStarConfig() AStarConfig {
	return AStarConfig{MaxNodes: 30, GoalThreshold: 0.1}
}

func (c AStarConfig) withDefaults() AStarConfig {
	d := DefaultAStarConfig()
	if c.MaxNodes <= 0 {
		c.MaxNodes = d.MaxNodes
	}
	if c.GoalThreshold <= 0 {
		c.GoalThreshold = d.GoalThreshold
	}
	return c
}

// BestFirstConfig configures best-first search.
type BestFirstConfig struct {
	MaxNodes int `json:"max_nodes" yaml:"max_nodes"`
	MaxDepth int `json:"max_depth" yaml:"max_depth"`
}

// DefaultBestFirstConfig returns the default best-first configuration.
func DefaultBestFirstConfig() BestFirstConfig {
	return BestFirstConfig{MaxNodes: 20, MaxDepth: 5}
}

func (c BestFirstConfig) withDefaults() BestFirstConfig {
	d := DefaultBestFirstConfig()
	if c.MaxNodes <= 0 {
		c.MaxNodes = d.MaxNodes
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	return c
}

// BeamSearchConfig configures beam search.
type BeamSearchConfig struct {
	BeamWidth int `json:"beam_width" yaml:"beam_width"`
	MaxDepth  int `json:"max_depth" yaml:"max_depth"`

	// QualityPresets are the quality_requirements alternatives tried at depth 1.
	QualityPresets []map[string]any `json:"quality_presets" yaml:"quality_presets"`

	// VariationPresets are the variation_params alternatives tried at depth 2.
	VariationPresets []map[string]any `json:"variation_presets" yaml:"variation_presets"`
}

// DefaultBeamSearchConfig returns the default beam search configuration.
func DefaultBeamSearchConfig() BeamSearchConfig {
	return BeamSearchConfig{
		BeamWidth: 5,
		MaxDepth:  3,
		QualityPresets: []map[string]any{
			{"null_percentage": 0.0, "duplicate_percentage": 0.0, "quality_level": "high"},
			{"null_percentage": 0.05, "duplicate_percentage": 0.02, "quality_level": "medium"},
		},
		VariationPresets: []map[string]any{
			{"diversity": "high"},
			{"diversity": "low", "realistic": true},
		},
	}
}

func (c BeamSearchConfig) withDefaults() BeamSearchConfig {
	d := DefaultBeamSearchConfig()
	if c.BeamWidth <= 0 {
		c.BeamWidth = d.BeamWidth
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if len(c.QualityPresets) == 0 {
		c.QualityPresets = d.QualityPresets
	}
	if len(c.VariationPresets) == 0 {
		c.VariationPresets = d.VariationPresets
	}
	return c
}

// TreeOfThoughtsConfig configures tree of thoughts.
type TreeOfThoughtsConfig struct {
	Branches int `json:"branches" yaml:"branches"`
	MaxDepth int `json:"max_depth" yaml:"max_depth"`
}

// DefaultTreeOfThoughtsConfig returns the default tree of thoughts configuration.
func DefaultTreeOfThoughtsConfig() TreeOfThoughtsConfig {
	return TreeOfThoughtsConfig{Branches: 3, MaxDepth: 3}
}

func (c TreeOfThoughtsConfig) withDefaults() TreeOfThoughtsConfig {
	d := DefaultTreeOfThoughtsConfig()
	if c.Branches <= 0 {
		c.Branches = d.Branches
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	return c
}

// ChainOfThoughtConfig configures chain of thought.
type ChainOfThoughtConfig struct {
	// MaxSteps is reported in metadata; the phase list is fixed.
	MaxSteps int `json:"max_steps" yaml:"max_steps"`
}

// DefaultChainOfThoughtConfig returns the default chain of thought configuration.
func DefaultChainOfThoughtConfig() ChainOfThoughtConfig {
	return ChainOfThoughtConfig{MaxSteps: 10}
}

func (c ChainOfThoughtConfig) withDefaults() ChainOfThoughtConfig {
	if c.MaxSteps <= 0 {
		c.MaxSteps = DefaultChainOfThoughtConfig().MaxSteps
	}
	return c
}

// ReflexionConfig configures reflexion.
type ReflexionConfig struct {
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
}

// DefaultReflexionConfig returns the default reflexion configuration.
func DefaultReflexionConfig() ReflexionConfig {
	return ReflexionConfig{MaxIterations: 3}
}

func (c ReflexionConfig) withDefaults() ReflexionConfig {
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultReflexionConfig().MaxIterations
	}
	return c
}

// IterativeRefinementConfig configures iterative refinement.
type IterativeRefinementConfig struct {
	MaxIterations        int     `json:"max_iterations" yaml:"max_iterations"`
	ConvergenceThreshold float64 `json:"convergence_threshold" yaml:"convergence_threshold"`
}

// DefaultIterativeRefinementConfig returns the default iterative refinement configuration.
func DefaultIterativeRefinementConfig() IterativeRefinementConfig {
	return IterativeRefinementConfig{MaxIterations: 5, ConvergenceThreshold: 0.01}
}

func (c IterativeRefinementConfig) withDefaults() IterativeRefinementConfig {
	d := DefaultIterativeRefinementConfig()
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.ConvergenceThreshold <= 0 {
		c.ConvergenceThreshold = d.ConvergenceThreshold
	}
	return c
}

// SelfConsistencyConfig configures self-consistency.
type SelfConsistencyConfig struct {
	Samples int `json:"samples" yaml:"samples"`
}

// DefaultSelfConsistencyConfig returns the default self-consistency configuration.
func DefaultSelfConsistencyConfig() SelfConsistencyConfig {
	return SelfConsistencyConfig{Samples: 5}
}

func (c SelfConsistencyConfig) withDefaults() SelfConsistencyConfig {
	if c.Samples <= 0 {
		c.Samples = DefaultSelfConsistencyConfig().Samples
	}
	return c
}
