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
	"errors"
	"fmt"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

// ErrUnknownStrategy is returned by New for a name outside the closed set.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Config groups the tunables of every configurable strategy.
type Config struct {
	MCTS                MCTSConfig                `json:"mcts" yaml:"mcts"`
	AStar               AStarConfig               `json:"astar" yaml:"astar"`
	BestFirst           BestFirstConfig           `json:"best_first_search" yaml:"best_first_search"`
	BeamSearch          BeamSearchConfig          `json:"beam_search" yaml:"beam_search"`
	TreeOfThoughts      TreeOfThoughtsConfig      `json:"tree_of_thoughts" yaml:"tree_of_thoughts"`
	ChainOfThought      ChainOfThoughtConfig      `json:"chain_of_thought" yaml:"chain_of_thought"`
	Reflexion           ReflexionConfig           `json:"reflexion" yaml:"reflexion"`
	IterativeRefinement IterativeRefinementConfig `json:"iterative_refinement" yaml:"iterative_refinement"`
	SelfConsistency     SelfConsistencyConfig     `json:"self_consistency" yaml:"self_consistency"`
}

// DefaultConfig returns every strategy's defaults.
func DefaultConfig() Config {
	return Config{
		MCTS:                DefaultMCTSConfig(),
		AStar:               DefaultAStarConfig(),
		BestFirst:           DefaultBestFirstConfig(),
		BeamSearch:          DefaultBeamSearchConfig(),
		TreeOfThoughts:      DefaultTreeOfThoughtsConfig(),
		ChainOfThought:      DefaultChainOfThoughtConfig(),
		Reflexion:           DefaultReflexionConfig(),
		IterativeRefinement: DefaultIterativeRefinementConfig(),
		SelfConsistency:     DefaultSelfConsistencyConfig(),
	}
}

type constructor func(cfg Config, opts ...strategy.Option) strategy.Strategy

var constructors = map[string]constructor{
	strategy.MethodMCTS: func(c Config, o ...strategy.Option) strategy.Strategy {
		return NewMCTS(c.MCTS, o...)
	},
	strategy.MethodBeamSearch: func(c Config, o ...strategy.Option) strategy.Strategy {
		return NewBeamSearch(c.BeamSearch, o...)
	},
	strategy.MethodChainOfThought: func(c Config, o ...strategy.Option) strategy.Strategy {
		return NewChainOfThought(c.ChainOfThought, o...)
	},
	strategy.MethodTreeOfThoughts: func(c Config, o ...strategy.Option) strategy.Strategy {
		return NewTreeOfThoughts(c.TreeOfThoughts, o...)
	},
	strategy.MethodSelfConsistency: func(c Config, o ...strategy.Option) strategy.Strategy {
		return NewSelfConsistency(c.SelfConsistency, o...)
	},
	strategy.MethodReAct: func(_ Config, o ...strategy.Option) strategy.Strategy {
		return NewReAct(o...)
	},
	strategy.MethodReflexion: func(c Config, o ...strategy.Option) strategy.Strategy {
		return NewReflexion(c.Reflexion, o...)
	},
	strategy.MethodBestFirstSearch: func(c Config, o ...strategy.Option) strategy.Strategy {
		return NewBestFirst(c.BestFirst, o...)
	},
	strategy.MethodAStar: func(c Config, o ...strategy.Option) strategy.Strategy {
		return NewAStar(c.AStar, o...)
	},
	strategy.MethodMetaPrompting: func(_ Config, o ...strategy.Option) strategy.Strategy {
		return NewMetaPrompting(o...)
	},
	strategy.MethodIterativeRefinement: func(c Config, o ...strategy.Option) strategy.Strategy {
		return NewIterativeRefinement(c.IterativeRefinement, o...)
	},
	strategy.MethodGraphOfThoughts: func(_ Config, o ...strategy.Option) strategy.Strategy {
		return NewGraphOfThoughts(o...)
	},
}

// New builds the strategy registered under name.
func New(name string, cfg Config, opts ...strategy.Option) (strategy.Strategy, error) {
	build, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}
	return build(cfg, opts...), nil
}

// NewAll builds every strategy in strategy.AllMethods order. The options are
// shared, so a seeded RandSource makes the whole set reproducible.
func NewAll(cfg Config, opts ...strategy.Option) []strategy.Strategy {
	names := strategy.AllMethods()
	out := make([]strategy.Strategy, 0, len(names))
	for _, name := range names {
		out = append(out, constructors[name](cfg, opts...))
	}
	return out
}
