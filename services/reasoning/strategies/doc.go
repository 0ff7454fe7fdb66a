// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package strategies implements the twelve requirement-enhancement algorithms.
//
// Every algorithm works over the same document type and differs in search
// discipline:
//
//	mcts                  UCB1 tree search over document variants
//	astar                 f = g + h over optimization signals
//	best_first_search     promise-ordered search with a separate evaluation
//	beam_search           fixed-width beam over depth-specific successors
//	tree_of_thoughts      full tree, branch index picks the enhancement family
//	graph_of_thoughts     field graph analysis in a single pass
//	chain_of_thought      six ordered phases
//	reflexion             reflect, fix, stop when nothing improves
//	iterative_refinement  one phase per pass until the quality score converges
//	self_consistency      N samples reconciled by majority vote
//	react                 three thought/action cycles
//	meta_prompting        classify, then apply one enhancement bundle
//
// Each algorithm is bounded by a fixed budget, so none needs cancellation
// mid-run. Budgets come from the *Config structs in config.go; zero values
// fall back to the documented defaults.
package strategies
