// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/config"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/dispatcher"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/selector"
)

const fraudDoc = `data_type: trading fraud detection transactions
fields:
  - name: amount
    type: float
  - name: account_id
    type: string
`

// execute runs the CLI with args and returns stdout and the error.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeDoc(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestList_JSON(t *testing.T) {
	out, err := execute(t, "", "list", "-o", "json")
	require.NoError(t, err)

	var methods []selector.MethodInfo
	require.NoError(t, json.Unmarshal([]byte(out), &methods))
	assert.Len(t, methods, 12)
	assert.Equal(t, "mcts", methods[0].Method)
}

func TestList_DomainFilter(t *testing.T) {
	out, err := execute(t, "", "list", "--domain", "healthcare", "-o", "json")
	require.NoError(t, err)

	var methods []selector.MethodInfo
	require.NoError(t, json.Unmarshal([]byte(out), &methods))
	require.NotEmpty(t, methods)
	for _, m := range methods {
		assert.Contains(t, m.Domains, "healthcare")
	}
}

func TestList_TextMachine(t *testing.T) {
	out, err := execute(t, "", "list", "-o", "text", "--personality", "machine")
	require.NoError(t, err)
	assert.Contains(t, out, "1. MCTS")
	assert.NotContains(t, out, "Available Reasoning Methods")
}

func TestRun_FromFile(t *testing.T) {
	path := writeDoc(t, "req.yaml", fraudDoc)
	out, err := execute(t, "", "run", "mcts", "-f", path, "-o", "json")
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "mcts", res["method_used"])
	conf, ok := res["confidence"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, conf, 0.0)
	assert.LessOrEqual(t, conf, 1.0)
}

func TestRun_FromStdin(t *testing.T) {
	out, err := execute(t, `{"domain": "healthcare", "fields": [{"name": "patient_name"}]}`,
		"run", "chain_of_thought", "-f", "-", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"method_used": "chain_of_thought"`)
}

func TestRun_UnknownMethod(t *testing.T) {
	_, err := execute(t, "", "run", "nonexistent")
	require.Error(t, err)
	assert.ErrorIs(t, err, dispatcher.ErrInvalidMethod)
	assert.Contains(t, err.Error(), "Available: ")
}

func TestRun_InvalidDocument(t *testing.T) {
	path := writeDoc(t, "bad.yaml", "confidence: 3\n")
	_, err := execute(t, "", "run", "mcts", "-f", path)
	require.Error(t, err)
}

func TestRun_BadFormat(t *testing.T) {
	_, err := execute(t, "", "run", "mcts", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestRun_SeedFromConfigIsReproducible(t *testing.T) {
	cfgPath := writeDoc(t, "reasoner.yaml", "seed: 7\n")
	docPath := writeDoc(t, "req.yaml", fraudDoc)

	run := func() map[string]any {
		out, err := execute(t, "", "run", "self_consistency", "-f", docPath, "-c", cfgPath, "-o", "json")
		require.NoError(t, err)
		var res map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		return res
	}
	first, second := run(), run()
	assert.Equal(t, first["enhanced_requirements"], second["enhanced_requirements"])
	assert.Equal(t, first["confidence"], second["confidence"])
}

func TestRun_InvalidConfig(t *testing.T) {
	cfgPath := writeDoc(t, "reasoner.yaml", "mcts:\n  iterations: 0\n")
	_, err := execute(t, "", "list", "-c", cfgPath)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestAuto_Text(t *testing.T) {
	path := writeDoc(t, "req.yaml", fraudDoc)
	out, err := execute(t, "", "auto", "-f", path, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Reasoning Strategy Recommendation")
	assert.Contains(t, out, "financial")
	assert.Contains(t, out, "Raw:")
}

func TestRun_TextOnPipeIsNotMachine(t *testing.T) {
	path := writeDoc(t, "req.yaml", fraudDoc)
	out, err := execute(t, "", "run", "mcts", "-f", path, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Reasoning Result: Mcts")
	assert.NotContains(t, out, "confidence=")

	idx := strings.LastIndex(out, "Raw:")
	require.GreaterOrEqual(t, idx, 0)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out[idx+len("Raw:"):]), &res))
	assert.Equal(t, "mcts", res["method_used"])
}

func TestDetect_UseCaseHint(t *testing.T) {
	out, err := execute(t, "", "detect", "--use-case", "healthcare", "-o", "json")
	require.NoError(t, err)

	var det selector.Detection
	require.NoError(t, json.Unmarshal([]byte(out), &det))
	assert.Equal(t, "healthcare", det.DetectedDomain)
	assert.Equal(t, "chain_of_thought", det.Recommended)
}

func TestDetect_EmptyDocument(t *testing.T) {
	out, err := execute(t, "", "detect", "-o", "json")
	require.NoError(t, err)

	var det selector.Detection
	require.NoError(t, json.Unmarshal([]byte(out), &det))
	assert.Equal(t, "iterative_refinement", det.Recommended)
	assert.Equal(t, "general", det.DetectedDomain)
}

func TestCompare(t *testing.T) {
	path := writeDoc(t, "req.yaml", fraudDoc)
	out, err := execute(t, "", "compare", "mcts, beam_search,react", "-f", path, "-o", "json")
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)
	assert.Equal(t, "mcts", results[0]["method_used"])
	assert.Equal(t, "beam_search", results[1]["method_used"])
	assert.Equal(t, "react", results[2]["method_used"])
}

func TestCompare_NoMethods(t *testing.T) {
	_, err := execute(t, "", "compare", " , ")
	assert.ErrorIs(t, err, dispatcher.ErrNoMethods)
}

func TestDescribe(t *testing.T) {
	out, err := execute(t, "", "describe", "beam_search", "-o", "json")
	require.NoError(t, err)

	var md map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &md))
	assert.Equal(t, "beam_search", md["name"])
	assert.Contains(t, md, "parameters")

	_, err = execute(t, "", "describe", "bogus")
	assert.ErrorIs(t, err, dispatcher.ErrInvalidMethod)
}

func TestArgsValidation(t *testing.T) {
	_, err := execute(t, "", "run")
	assert.Error(t, err)

	_, err = execute(t, "", "detect", "extra")
	assert.Error(t, err)
}
