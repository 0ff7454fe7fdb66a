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
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianSynth/pkg/logging"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategies"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, strategies.DefaultConfig(), cfg.Config)
	assert.InDelta(t, 0.75, cfg.Selector.ConfidenceThreshold, 1e-9)
	assert.Nil(t, cfg.Seed)
	assert.Equal(t, ":8090", cfg.Server.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLPartialOverride(t *testing.T) {
	path := writeFile(t, t.TempDir(), "reasoner.yaml", `
mcts:
  iterations: 25
beam_search:
  beam_width: 5
selector:
  confidence_threshold: 0.6
seed: 99
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	def := strategies.DefaultConfig()
	assert.Equal(t, 25, cfg.MCTS.Iterations)
	assert.Equal(t, def.MCTS.ExplorationFactor, cfg.MCTS.ExplorationFactor)
	assert.Equal(t, 5, cfg.BeamSearch.BeamWidth)
	assert.Equal(t, def.BeamSearch.MaxDepth, cfg.BeamSearch.MaxDepth)
	assert.Equal(t, def.AStar, cfg.AStar)
	assert.InDelta(t, 0.6, cfg.Selector.ConfidenceThreshold, 1e-9)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(99), *cfg.Seed)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "reasoner.json",
		`{"self_consistency": {"samples": 9}, "server": {"addr": ":9999"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.SelfConsistency.Samples)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoad_Unparseable(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "mcts: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "reasoner.yaml", "mcts:\n  iterations: 25\n")
	t.Setenv("REASONING_MCTS_ITERATIONS", "7")
	t.Setenv("REASONING_CONFIDENCE_THRESHOLD", "0.5")
	t.Setenv("REASONING_SEED", "1234")
	t.Setenv("REASONING_LOG_LEVEL", "WARN")
	t.Setenv("REASONING_SERVER_ADDR", "127.0.0.1:7000")
	t.Setenv("OTEL_TRACES_EXPORTER", "stdout")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MCTS.Iterations)
	assert.InDelta(t, 0.5, cfg.Selector.ConfidenceThreshold, 1e-9)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(1234), *cfg.Seed)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
}

func TestLoad_EnvIgnoresGarbage(t *testing.T) {
	t.Setenv("REASONING_MCTS_ITERATIONS", "lots")
	t.Setenv("REASONING_SEED", "x")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, strategies.DefaultConfig().MCTS.Iterations, cfg.MCTS.Iterations)
	assert.Nil(t, cfg.Seed)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero iterations", func(c *Config) { c.MCTS.Iterations = 0 }, "mcts.iterations"},
		{"goal threshold above one", func(c *Config) { c.AStar.GoalThreshold = 1.5 }, "astar.goal_threshold"},
		{"zero beam", func(c *Config) { c.BeamSearch.BeamWidth = 0 }, "beam_search.beam_width"},
		{"zero samples", func(c *Config) { c.SelfConsistency.Samples = 0 }, "self_consistency.samples"},
		{"threshold out of range", func(c *Config) { c.Selector.ConfidenceThreshold = 2 }, "ConfidenceThreshold"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "Level"},
		{"bad exporter", func(c *Config) { c.Telemetry.TraceExporter = "zipkin" }, "TraceExporter"},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, "Addr"},
		{"negative burst", func(c *Config) { c.Server.Burst = -1 }, "Burst"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_InvalidFileValue(t *testing.T) {
	path := writeFile(t, t.TempDir(), "reasoner.yaml", "reflexion:\n  max_iterations: 0\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.Logging = LoggingConfig{Level: "debug", Dir: "/tmp/logs", JSON: true}

	lc := cfg.LoggerConfig("reasoner")
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, "/tmp/logs", lc.LogDir)
	assert.Equal(t, "reasoner", lc.Service)
	assert.True(t, lc.JSON)

	cfg.Logging.Level = ""
	assert.Equal(t, logging.LevelInfo, cfg.LoggerConfig("x").Level)
}

func TestDispatcherOptions(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.DispatcherOptions(nil), 3)

	seed := int64(5)
	cfg.Seed = &seed
	assert.Len(t, cfg.DispatcherOptions(nil), 4)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reasoner.yaml", "mcts:\n  iterations: 10\n")

	var latest atomic.Int64
	w, err := NewWatcher(path, func(c Config) {
		latest.Store(int64(c.MCTS.Iterations))
	}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	writeFile(t, dir, "reasoner.yaml", "mcts:\n  iterations: 42\n")

	require.Eventually(t, func() bool { return latest.Load() == 42 },
		3*time.Second, 20*time.Millisecond)
}

func TestWatcher_KeepsPreviousOnInvalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reasoner.yaml", "mcts:\n  iterations: 10\n")

	var calls atomic.Int32
	w, err := NewWatcher(path, func(Config) { calls.Add(1) }, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	writeFile(t, dir, "reasoner.yaml", "mcts:\n  iterations: 0\n")
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reasoner.yaml", "mcts:\n  iterations: 10\n")

	var calls atomic.Int32
	w, err := NewWatcher(path, func(Config) { calls.Add(1) }, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	writeFile(t, dir, "other.yaml", "mcts:\n  iterations: 3\n")
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcher_SerializesReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reasoner.yaml", "mcts:\n  iterations: 10\n")

	var active, peak, calls atomic.Int32
	w, err := NewWatcher(path, func(Config) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(80 * time.Millisecond)
		active.Add(-1)
		calls.Add(1)
	}, WithDebounce(5*time.Millisecond))
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	for i := 11; i < 15; i++ {
		writeFile(t, dir, "reasoner.yaml", fmt.Sprintf("mcts:\n  iterations: %d\n", i))
		time.Sleep(25 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return calls.Load() >= 2 },
		3*time.Second, 20*time.Millisecond)
	assert.Equal(t, int32(1), peak.Load())
}

func TestWatcher_CloseWaitsForReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reasoner.yaml", "mcts:\n  iterations: 10\n")

	started := make(chan struct{}, 1)
	var finished atomic.Bool
	w, err := NewWatcher(path, func(Config) {
		select {
		case started <- struct{}{}:
		default:
		}
		time.Sleep(150 * time.Millisecond)
		finished.Store(true)
	}, WithDebounce(5*time.Millisecond))
	require.NoError(t, err)

	writeFile(t, dir, "reasoner.yaml", "mcts:\n  iterations: 11\n")

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("reload did not start")
	}
	require.NoError(t, w.Close())
	assert.True(t, finished.Load())
}

func TestWatcher_CloseIdempotent(t *testing.T) {
	path := writeFile(t, t.TempDir(), "reasoner.yaml", "")
	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, w.Path())
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
