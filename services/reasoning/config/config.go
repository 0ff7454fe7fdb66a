// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the reasoner configuration with priority
// env > file > defaults, and watches the file for changes.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianSynth/pkg/logging"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/selector"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategies"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/telemetry"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the top-level reasoner configuration.
//
// The per-strategy sections (mcts, astar, beam_search, ...) sit at the top
// level of the file. A section or key absent from the file keeps its
// default.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after creation.
type Config struct {
	strategies.Config `yaml:",inline"`

	Selector selector.Config `json:"selector" yaml:"selector"`

	// Seed makes every sampling strategy reproducible. Nil seeds from the clock.
	Seed *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	Logging   LoggingConfig    `json:"logging" yaml:"logging"`
	Telemetry telemetry.Config `json:"telemetry" yaml:"telemetry"`
	Server    ServerConfig     `json:"server" yaml:"server"`
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Dir   string `json:"dir" yaml:"dir"`
	JSON  bool   `json:"json" yaml:"json"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" validate:"required"`

	// RequestsPerSecond is the sustained rate allowed by the limiter.
	// Zero disables rate limiting.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" validate:"gte=0"`
	Burst             int     `json:"burst" yaml:"burst" validate:"gte=0"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Config:    strategies.DefaultConfig(),
		Selector:  selector.DefaultConfig(),
		Logging:   LoggingConfig{Level: "info"},
		Telemetry: telemetry.DefaultConfig(),
		Server: ServerConfig{
			Addr:              ":8090",
			RequestsPerSecond: 20,
			Burst:             40,
		},
	}
}

// Load loads configuration with priority: env > file > defaults.
//
// Inputs:
//
//	path - YAML or JSON file. Optional; empty or missing means defaults.
//
// Outputs:
//
//	Config - The merged configuration.
//	error - Non-nil if the file exists but cannot be parsed, or if the
//	        merged result fails validation (ErrInvalidConfig).
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	loadEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	// Try YAML first, then JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadEnv(cfg *Config) {
	envInt("REASONING_MCTS_ITERATIONS", &cfg.MCTS.Iterations)
	envFloat("REASONING_MCTS_EXPLORATION_FACTOR", &cfg.MCTS.ExplorationFactor)
	envInt("REASONING_MCTS_MAX_CHILDREN", &cfg.MCTS.MaxChildren)
	envInt("REASONING_ASTAR_MAX_NODES", &cfg.AStar.MaxNodes)
	envFloat("REASONING_ASTAR_GOAL_THRESHOLD", &cfg.AStar.GoalThreshold)
	envInt("REASONING_BEST_FIRST_MAX_NODES", &cfg.BestFirst.MaxNodes)
	envInt("REASONING_BEST_FIRST_MAX_DEPTH", &cfg.BestFirst.MaxDepth)
	envInt("REASONING_BEAM_WIDTH", &cfg.BeamSearch.BeamWidth)
	envInt("REASONING_BEAM_MAX_DEPTH", &cfg.BeamSearch.MaxDepth)
	envInt("REASONING_TOT_BRANCHES", &cfg.TreeOfThoughts.Branches)
	envInt("REASONING_TOT_MAX_DEPTH", &cfg.TreeOfThoughts.MaxDepth)
	envInt("REASONING_COT_MAX_STEPS", &cfg.ChainOfThought.MaxSteps)
	envInt("REASONING_REFLEXION_MAX_ITERATIONS", &cfg.Reflexion.MaxIterations)
	envInt("REASONING_REFINEMENT_MAX_ITERATIONS", &cfg.IterativeRefinement.MaxIterations)
	envFloat("REASONING_REFINEMENT_CONVERGENCE_THRESHOLD", &cfg.IterativeRefinement.ConvergenceThreshold)
	envInt("REASONING_SELF_CONSISTENCY_SAMPLES", &cfg.SelfConsistency.Samples)
	envFloat("REASONING_CONFIDENCE_THRESHOLD", &cfg.Selector.ConfidenceThreshold)

	if v := os.Getenv("REASONING_SEED"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = &i
		}
	}

	// Logging
	if v := os.Getenv("REASONING_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("REASONING_LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := os.Getenv("REASONING_LOG_JSON"); v != "" {
		cfg.Logging.JSON = v == "true" || v == "1"
	}

	// Server
	if v := os.Getenv("REASONING_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	envFloat("REASONING_SERVER_RPS", &cfg.Server.RequestsPerSecond)
	envInt("REASONING_SERVER_BURST", &cfg.Server.Burst)

	// Telemetry uses the standard OTel variable names.
	if v := os.Getenv("OTEL_TRACES_EXPORTER"); v != "" {
		cfg.Telemetry.TraceExporter = v
	}
	if v := os.Getenv("OTEL_METRICS_EXPORTER"); v != "" {
		cfg.Telemetry.MetricExporter = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
	if v := os.Getenv("ALEUTIAN_ENV"); v != "" {
		cfg.Telemetry.Environment = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

// =============================================================================
// Validation
// =============================================================================

var configValidate = validator.New()

// Validate checks the tagged sections with the validator and the strategy
// tunables by hand.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q (value %v)", ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	checks := []struct {
		ok  bool
		msg string
	}{
		{c.MCTS.Iterations >= 1, "mcts.iterations must be >= 1"},
		{c.MCTS.ExplorationFactor > 0, "mcts.exploration_factor must be > 0"},
		{c.MCTS.MaxChildren >= 1, "mcts.max_children must be >= 1"},
		{c.AStar.MaxNodes >= 1, "astar.max_nodes must be >= 1"},
		{c.AStar.GoalThreshold > 0 && c.AStar.GoalThreshold <= 1, "astar.goal_threshold must be in (0,1]"},
		{c.BestFirst.MaxNodes >= 1, "best_first_search.max_nodes must be >= 1"},
		{c.BestFirst.MaxDepth >= 1, "best_first_search.max_depth must be >= 1"},
		{c.BeamSearch.BeamWidth >= 1, "beam_search.beam_width must be >= 1"},
		{c.BeamSearch.MaxDepth >= 1, "beam_search.max_depth must be >= 1"},
		{c.TreeOfThoughts.Branches >= 1, "tree_of_thoughts.branches must be >= 1"},
		{c.TreeOfThoughts.MaxDepth >= 1, "tree_of_thoughts.max_depth must be >= 1"},
		{c.ChainOfThought.MaxSteps >= 1, "chain_of_thought.max_steps must be >= 1"},
		{c.Reflexion.MaxIterations >= 1, "reflexion.max_iterations must be >= 1"},
		{c.IterativeRefinement.MaxIterations >= 1, "iterative_refinement.max_iterations must be >= 1"},
		{c.IterativeRefinement.ConvergenceThreshold > 0, "iterative_refinement.convergence_threshold must be > 0"},
		{c.SelfConsistency.Samples >= 1, "self_consistency.samples must be >= 1"},
	}
	for _, check := range checks {
		if !check.ok {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, check.msg)
		}
	}
	return nil
}

// LoggerConfig converts the logging section for pkg/logging.
func (c Config) LoggerConfig(service string) logging.Config {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	return logging.Config{
		Level:   level,
		LogDir:  c.Logging.Dir,
		Service: service,
		JSON:    c.Logging.JSON,
	}
}
