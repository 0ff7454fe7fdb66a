// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name     string
		doc      *document.Document
		expected string
	}{
		{"nil", nil, ""},
		{"explicit wins", &document.Document{Domain: "HealthCare", DataType: "payment"}, "healthcare"},
		{"financial keyword", &document.Document{DataType: "Trading Ledger"}, "financial"},
		{"healthcare keyword", &document.Document{DataType: "patient visits"}, "healthcare"},
		{"ecommerce keyword", &document.Document{DataType: "retail orders"}, "ecommerce"},
		{"network keyword", &document.Document{DataType: "social graph"}, "network"},
		{"first match wins", &document.Document{DataType: "payment for product"}, "financial"},
		{"no match", &document.Document{DataType: "weather"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractDomain(tt.doc))
		})
	}
}

func TestBaseValidate(t *testing.T) {
	b := NewBase("test")

	assert.False(t, b.Validate(nil))
	assert.False(t, b.Validate(document.New()))
	assert.False(t, b.Validate(&document.Document{Domain: "financial"}))
	assert.True(t, b.Validate(&document.Document{DataType: "orders"}))
	assert.True(t, b.Validate(&document.Document{Fields: []document.Field{}}))
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := NewSeededSource(42)
	b := NewSeededSource(42)

	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.IntN(7), b.IntN(7))
	}

	u := a.Uniform(-0.1, 0.1)
	assert.GreaterOrEqual(t, u, -0.1)
	assert.Less(t, u, 0.1)
}

func TestChoice(t *testing.T) {
	r := NewSeededSource(1)
	assert.Equal(t, "", Choice(r, nil))
	assert.Contains(t, []string{"a", "b"}, Choice(r, []string{"a", "b"}))
}

func TestForeignKeyFor(t *testing.T) {
	rel, ok := ForeignKeyFor("customer_id")
	assert.True(t, ok)
	assert.Equal(t, "customer.id", rel.To)
	assert.Equal(t, "foreign_key", rel.Type)

	_, ok = ForeignKeyFor("id")
	assert.False(t, ok)
	_, ok = ForeignKeyFor("amount")
	assert.False(t, ok)
}

func TestTitleAndClamp(t *testing.T) {
	assert.Equal(t, "Beam Search", Title("beam_search"))
	assert.Equal(t, "Mcts", Title("mcts"))
	assert.Equal(t, 0.0, Clamp01(-2))
	assert.Equal(t, 1.0, Clamp01(3))
	assert.Equal(t, 0.4, Clamp01(0.4))
}

func TestRecordPhase_NoSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordPhase(context.Background(), "phase")
		RecordPhase(nil, "phase") //nolint:staticcheck
	})
}

func TestResultFailed(t *testing.T) {
	var nilResult *Result
	assert.True(t, nilResult.Failed())
	assert.False(t, NewResult(nil, []string{"ok"}, 1, nil).Failed())
	assert.True(t, NewResult(nil, []string{"x"}, 0, map[string]any{"error": "boom"}).Failed())
}
