// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"log/slog"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/dispatcher"
)

// DispatcherOptions maps the configuration onto dispatcher options.
// Callers append their own (collector, tracer provider) after these.
func (c Config) DispatcherOptions(logger *slog.Logger) []dispatcher.Option {
	opts := []dispatcher.Option{
		dispatcher.WithStrategyConfig(c.Config),
		dispatcher.WithSelectorConfig(c.Selector),
		dispatcher.WithLogger(logger),
	}
	if c.Seed != nil {
		opts = append(opts, dispatcher.WithSeed(*c.Seed))
	}
	return opts
}
