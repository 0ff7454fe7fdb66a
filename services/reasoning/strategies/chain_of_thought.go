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
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

// domainConstraints are the implicit constraints added per regulated domain.
var domainConstraints = map[string]struct {
	constraints []string
	insight     string
}{
	"healthcare": {
		constraints: []string{"HIPAA compliance required", "PHI data must be anonymizable"},
		insight:     "  → Added healthcare compliance constraints",
	},
	"financial": {
		constraints: []string{"Transactions must balance", "Amounts must have 2 decimal precision"},
		insight:     "  → Added financial integrity constraints",
	},
	"legal": {
		constraints: []string{"All fields must be auditable"},
		insight:     "  → Added legal auditability constraint",
	},
}

// isRegulatedDomain reports whether domain gets the strict quality profile.
func isRegulatedDomain(domain string) bool {
	switch domain {
	case "healthcare", "legal", "financial":
		return true
	}
	return false
}

// =============================================================================
// Chain of Thought
// =============================================================================

// ChainOfThought enhances a document through six fixed, explained phases.
//
// Description:
//
//	Domain identification, field analysis, implicit constraints, foreign key
//	detection, quality requirements and a consistency check. Every change is
//	narrated in the trace.
//
// Thread Safety: Safe for concurrent use.
type ChainOfThought struct {
	strategy.Base
	cfg ChainOfThoughtConfig
}

// NewChainOfThought creates the chain of thought strategy.
func NewChainOfThought(cfg ChainOfThoughtConfig, opts ...strategy.Option) *ChainOfThought {
	return &ChainOfThought{
		Base: strategy.NewBase(strategy.MethodChainOfThought, opts...),
		cfg:  cfg.withDefaults(),
	}
}

// Reason implements strategy.Strategy.
func (c *ChainOfThought) Reason(ctx context.Context, doc *document.Document, _ strategy.Hints) (*strategy.Result, error) {
	c.Logger().Info("Starting Chain of Thought reasoning")

	enhanced := doc.DeepCopy()
	steps := []string{"Starting Chain of Thought analysis"}

	domain := strategy.ExtractDomain(enhanced)
	shown := domain
	if shown == "" {
		shown = "general"
	}
	steps = append(steps, fmt.Sprintf("Step 1: Identified domain as '%s'", shown))

	if enhanced.HasFields() {
		steps = append(steps, "Step 2: Analyzing field requirements")
		steps = append(steps, c.analyzeFields(enhanced)...)
	}

	steps = append(steps, "Step 3: Identifying implicit constraints")
	steps = append(steps, c.identifyConstraints(enhanced, domain)...)

	steps = append(steps, "Step 4: Determining field relationships")
	steps = append(steps, c.determineRelationships(enhanced)...)

	steps = append(steps, "Step 5: Establishing quality requirements")
	steps = append(steps, c.addQuality(enhanced, domain)...)

	steps = append(steps, "Step 6: Validating requirement consistency")
	steps = append(steps, c.checkConsistency(enhanced)...)

	strategy.RecordPhase(ctx, "chain_of_thought.phases_completed", attribute.String("domain", shown))

	confidence := c.confidence(enhanced)
	steps = append(steps, fmt.Sprintf("Completed Chain of Thought reasoning with confidence: %.2f", confidence))

	c.Logger().Info("Chain of Thought completed",
		slog.Int("steps", len(steps)),
		slog.Float64("confidence", confidence))

	return strategy.NewResult(enhanced, steps, confidence, map[string]any{
		"steps_count": len(steps),
		"domain":      domain,
		"max_steps":   c.cfg.MaxSteps,
	}), nil
}

// analyzeFields infers numeric ranges and identity flags.
func (c *ChainOfThought) analyzeFields(doc *document.Document) []string {
	var insights []string

	for i := range doc.Fields {
		f := &doc.Fields[i]
		name := f.Name
		if name == "" {
			name = "unknown"
		}
		lower := strings.ToLower(name)

		if f.IsNumeric() {
			if f.Constraints == nil {
				f.Constraints = make(map[string]any)
			}
			_, hasMin := f.Constraints["min"]
			_, hasMax := f.Constraints["max"]
			if !hasMin && !hasMax {
				switch {
				case strings.Contains(lower, "age"):
					f.Constraints["min"] = 0
					f.Constraints["max"] = 120
					insights = append(insights, fmt.Sprintf("  → Inferred age range (0-120) for field '%s'", name))
				case strings.Contains(lower, "count"), strings.Contains(lower, "quantity"):
					f.Constraints["min"] = 0
					insights = append(insights, fmt.Sprintf("  → Set minimum 0 for count field '%s'", name))
				}
			}
		}

		switch lower {
		case "id", "identifier", "name":
			f.Required = true
			f.Unique = true
			insights = append(insights, fmt.Sprintf("  → Marked '%s' as required and unique", name))
		}
	}

	return insights
}

func (c *ChainOfThought) identifyConstraints(doc *document.Document, domain string) []string {
	doc.EnsureConstraints()

	entry, ok := domainConstraints[domain]
	if !ok {
		return nil
	}
	for _, text := range entry.constraints {
		doc.AddTextConstraint(text)
	}
	return []string{entry.insight}
}

func (c *ChainOfThought) determineRelationships(doc *document.Document) []string {
	doc.EnsureRelationships()

	var insights []string
	for _, name := range doc.FieldNames() {
		rel, ok := strategy.ForeignKeyFor(name)
		if !ok {
			continue
		}
		doc.Relationships = append(doc.Relationships, rel)
		insights = append(insights, fmt.Sprintf("  → Detected foreign key relationship: %s → %s", rel.From, rel.To))
	}
	return insights
}

func (c *ChainOfThought) addQuality(doc *document.Document, domain string) []string {
	quality := doc.EnsureQuality()

	if isRegulatedDomain(domain) {
		quality["null_percentage"] = 0.0
		quality["quality_level"] = "very_high"
		quality["validation_required"] = true
		return []string{fmt.Sprintf("  → Set very high quality standards for %s domain", domain)}
	}

	if _, ok := quality["null_percentage"]; !ok {
		quality["null_percentage"] = 0.05
	}
	if _, ok := quality["quality_level"]; !ok {
		quality["quality_level"] = "high"
	}
	return []string{"  → Applied standard quality requirements"}
}

func (c *ChainOfThought) checkConsistency(doc *document.Document) []string {
	var checks []string

	if doc.Size != nil {
		switch size := *doc.Size; {
		case size > 1_000_000:
			checks = append(checks, "  ⚠ Large dataset size may impact generation time")
		case size < 10:
			checks = append(checks, "  ⚠ Small dataset size may not show pattern diversity")
		}
	}

	var missing []string
	for i := range doc.Fields {
		if !doc.Fields[i].HasType() {
			name := doc.Fields[i].Name
			if name == "" {
				name = "unknown"
			}
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		checks = append(checks, "  ⚠ Fields missing type specification: "+strings.Join(missing, ", "))
	} else {
		checks = append(checks, "  ✓ All fields have type specifications")
	}

	return checks
}

func (c *ChainOfThought) confidence(doc *document.Document) float64 {
	score := 0.5
	if len(doc.Fields) > 0 {
		score += 0.2
	}
	if doc.HasQuality() {
		score += 0.1
	}
	if len(doc.Relationships) > 0 {
		score += 0.1
	}
	if len(doc.Constraints) > 0 {
		score += 0.1
	}
	return min(1.0, score)
}

// Describe implements strategy.Strategy.
func (c *ChainOfThought) Describe() strategy.Metadata {
	return strategy.Metadata{
		Name:        strategy.MethodChainOfThought,
		Description: "Chain of Thought - Step-by-step reasoning for complex constrained data",
		UseCases: []string{
			"Healthcare data with HIPAA compliance",
			"Legal documents with auditability",
			"Educational data with complex rules",
			"Any domain with intricate constraints",
		},
		Parameters: map[string]any{
			"max_steps": c.cfg.MaxSteps,
		},
		Strengths: []string{
			"Excellent for complex constraints",
			"Clear reasoning trail",
			"Domain-aware enhancements",
			"Good explainability",
		},
		Limitations: []string{
			"Can be verbose",
			"May over-constrain simple cases",
			"Requires good domain knowledge",
		},
	}
}

var _ strategy.Strategy = (*ChainOfThought)(nil)
