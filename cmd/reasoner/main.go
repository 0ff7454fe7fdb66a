// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command reasoner enhances specification documents with reasoning
// strategies before synthetic data generation.
//
// Usage:
//
//	reasoner list [--domain financial]
//	reasoner describe beam_search
//	reasoner detect -f requirements.yaml
//	reasoner run mcts -f requirements.yaml
//	reasoner auto -f requirements.yaml --use-case "fraud detection"
//	reasoner compare mcts,beam_search,self_consistency -f requirements.yaml
//	reasoner serve --config reasoner.yaml
//
// Example requests against serve:
//
//	# Health check
//	curl http://localhost:8090/v1/reasoning/health
//
//	# Auto-select and run a strategy
//	curl -X POST http://localhost:8090/v1/reasoning/auto \
//	  -H "Content-Type: application/json" \
//	  -d '{"requirements": {"domain": "financial", "fields": [{"name": "amount", "type": "float"}]}}'
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
