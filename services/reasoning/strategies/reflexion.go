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

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

// issueKind classifies a reflection finding so fixes need not match on text.
type issueKind int

const (
	issueMissingType issueKind = iota
	issueMissingDescription
	issueNoQuality
	issueNoQualityLevel
	issueNoConstraints
	issueNotImproving
)

type reflectionIssue struct {
	kind issueKind
	text string
}

type reflection struct {
	iteration int
	issues    int
}

// =============================================================================
// Reflexion
// =============================================================================

// Reflexion reflects on a document, fixes what it finds and repeats.
//
// Description:
//
//	Each round lists issues (untyped or undescribed fields, missing
//	quality, missing constraints). Fixes are applied and the round is
//	recorded. The loop stops when no issues remain, when the issue count
//	failed to drop since the previous round, or at MaxIterations.
//
// Thread Safety: Safe for concurrent use.
type Reflexion struct {
	strategy.Base
	cfg ReflexionConfig
}

// NewReflexion creates the reflexion strategy.
func NewReflexion(cfg ReflexionConfig, opts ...strategy.Option) *Reflexion {
	return &Reflexion{
		Base: strategy.NewBase(strategy.MethodReflexion, opts...),
		cfg:  cfg.withDefaults(),
	}
}

// Reason implements strategy.Strategy.
func (r *Reflexion) Reason(_ context.Context, doc *document.Document, _ strategy.Hints) (*strategy.Result, error) {
	r.Logger().Info("Starting Reflexion reasoning", slog.Int("max_iterations", r.cfg.MaxIterations))

	current := doc.DeepCopy()
	steps := []string{
		"Starting Reflexion (Self-Reflection) reasoning",
		fmt.Sprintf("Maximum iterations: %d", r.cfg.MaxIterations),
	}

	var history []reflection
	stalled := false

	for i := 0; i < r.cfg.MaxIterations; i++ {
		steps = append(steps,
			fmt.Sprintf("--- Iteration %d ---", i+1),
			"Generating with current requirements",
			"Reflecting on requirements quality",
		)

		issues := r.reflect(current, history)
		if len(issues) == 0 {
			steps = append(steps, "✓ No issues found, requirements are optimal")
			break
		}
		for _, issue := range issues {
			steps = append(steps, issue.text)
		}

		if hasIssue(issues, issueNotImproving) {
			steps = append(steps, "Stopping: no net improvement over previous iteration")
			stalled = true
			break
		}

		steps = append(steps, "Learning from reflection, improving requirements")
		current = r.improve(current, issues)
		history = append(history, reflection{iteration: i + 1, issues: len(issues)})
		steps = append(steps, fmt.Sprintf("Completed iteration %d", i+1))
	}

	confidence := r.confidence(history)
	steps = append(steps,
		fmt.Sprintf("Completed %d reflection cycles", len(history)),
		"Final requirements optimized",
		fmt.Sprintf("Completed Reflexion reasoning with confidence: %.2f", confidence),
	)

	r.Logger().Info("Reflexion completed",
		slog.Int("iterations", len(history)),
		slog.Float64("confidence", confidence))

	return strategy.NewResult(current, steps, confidence, map[string]any{
		"iterations":        len(history),
		"max_iterations":    r.cfg.MaxIterations,
		"improvements_made": len(history),
		"stalled":           stalled,
	}), nil
}

// reflect lists the issues found in doc.
func (r *Reflexion) reflect(doc *document.Document, history []reflection) []reflectionIssue {
	var issues []reflectionIssue

	for i := range doc.Fields {
		f := &doc.Fields[i]
		name := f.Name
		if name == "" {
			name = "unknown"
		}
		if !f.HasType() {
			issues = append(issues, reflectionIssue{issueMissingType,
				fmt.Sprintf("  ⚠ Field '%s' missing type specification", name)})
		}
		if !f.HasDescription() {
			issues = append(issues, reflectionIssue{issueMissingDescription,
				fmt.Sprintf("  ⚠ Field '%s' missing description", name)})
		}
	}

	if !doc.HasQuality() {
		issues = append(issues, reflectionIssue{issueNoQuality, "  ⚠ No quality requirements specified"})
	} else if _, ok := doc.QualityRequirements["quality_level"]; !ok {
		issues = append(issues, reflectionIssue{issueNoQualityLevel, "  ⚠ Quality level not specified"})
	}

	if len(doc.Constraints) == 0 {
		issues = append(issues, reflectionIssue{issueNoConstraints, "  ⚠ No constraints defined"})
	}

	if len(history) > 0 && len(issues) > 0 && len(issues) >= history[len(history)-1].issues {
		issues = append(issues, reflectionIssue{issueNotImproving, "  ⚠ Not improving from previous iteration"})
	}

	return issues
}

// improve returns a copy of doc with the issues fixed.
func (r *Reflexion) improve(doc *document.Document, issues []reflectionIssue) *document.Document {
	improved := doc.DeepCopy()

	if hasIssue(issues, issueMissingType) {
		for i := range improved.Fields {
			f := &improved.Fields[i]
			if f.HasType() {
				continue
			}
			lower := strings.ToLower(f.Name)
			switch {
			case strings.Contains(lower, "email"):
				f.Type = "email"
			case strings.Contains(lower, "age"):
				f.Type = "integer"
			default:
				f.Type = "string"
			}
		}
	}

	if hasIssue(issues, issueMissingDescription) {
		for i := range improved.Fields {
			f := &improved.Fields[i]
			if !f.HasDescription() {
				f.Description = "Auto-generated description for " + f.Name
			}
		}
	}

	if hasIssue(issues, issueNoQuality) {
		improved.QualityRequirements = map[string]any{
			"quality_level":   "high",
			"null_percentage": 0.0,
		}
	}
	if hasIssue(issues, issueNoQualityLevel) {
		improved.EnsureQuality()["quality_level"] = "high"
	}

	if hasIssue(issues, issueNoConstraints) {
		improved.Constraints = []document.Constraint{
			document.TextConstraint("Data must be valid and consistent"),
		}
	}

	return improved
}

// confidence grows with completed rounds, with a bonus for stopping early.
func (r *Reflexion) confidence(history []reflection) float64 {
	if len(history) == 0 {
		return 0.5
	}
	bonus := float64(len(history)) * 0.15
	if len(history) < r.cfg.MaxIterations {
		bonus += 0.1
	}
	return min(1.0, 0.5+bonus)
}

func hasIssue(issues []reflectionIssue, kind issueKind) bool {
	for _, issue := range issues {
		if issue.kind == kind {
			return true
		}
	}
	return false
}

// Describe implements strategy.Strategy.
func (r *Reflexion) Describe() strategy.Metadata {
	return strategy.Metadata{
		Name:        strategy.MethodReflexion,
		Description: "Reflexion - Learns from mistakes and iteratively improves requirements",
		UseCases: []string{
			"Iterative quality improvement",
			"Learning from previous attempts",
			"Continuous optimization",
			"Quality-focused generation",
		},
		Parameters: map[string]any{
			"max_iterations": r.cfg.MaxIterations,
		},
		Strengths: []string{
			"Continuous improvement",
			"Learns from mistakes",
			"Self-correcting",
			"Good for quality focus",
		},
		Limitations: []string{
			"Requires multiple iterations",
			"May converge slowly",
			"Overhead of reflection",
		},
	}
}

var _ strategy.Strategy = (*Reflexion)(nil)
