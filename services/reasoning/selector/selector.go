// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package selector recommends a reasoning strategy for a specification
// document by classifying its domain.
package selector

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

const tracerName = "aleutian.reasoning.selector"

// GeneralDomain labels a detection where no domain matched.
const GeneralDomain = "general"

// Hint keys read by Detect.
const (
	HintUseCase = "use_case"
	HintQuery   = "query"
)

// Config configures the selector.
type Config struct {
	// ConfidenceThreshold is the confidence below which a detection asks
	// the caller to confirm the recommendation.
	ConfidenceThreshold float64 `json:"confidence_threshold" yaml:"confidence_threshold" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the default selector configuration.
func DefaultConfig() Config {
	return Config{ConfidenceThreshold: 0.75}
}

// Detection is the outcome of one Detect call.
type Detection struct {
	Recommended       string             `json:"recommended"`
	Confidence        float64            `json:"confidence"`
	Explanation       string             `json:"reason"`
	Alternatives      []string           `json:"alternatives"`
	DetectedDomain    string             `json:"detected_domain"`
	Scores            map[string]float64 `json:"scores,omitempty"`
	NeedsConfirmation bool               `json:"needs_confirmation"`
}

// domainScore is one ranked domain.
type domainScore struct {
	domain string
	score  float64
}

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets the selector's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracerProvider sets the provider spans are started from. The default
// is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Selector) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

// =============================================================================
// Selector
// =============================================================================

// Selector classifies documents and maps the winning domain to a strategy.
//
// Description:
//
//	Detection runs in this order:
//	  1. An explicit reasoning_method naming a known strategy is
//	     recommended with confidence 1.0. Unknown names are logged and
//	     ignored.
//	  2. The use_case hint, else the document's domain, that names a
//	     routable domain scores 1.0.
//	  3. Otherwise the document's text is matched against the keyword
//	     table. A domain scores min(1, matches/keywords*5); the highest
//	     wins and ties go to table order.
//	No match recommends iterative_refinement with confidence 0 and
//	domain "general".
//
// Thread Safety: Safe for concurrent use.
type Selector struct {
	cfg    Config
	logger *slog.Logger
	tracer trace.Tracer
	known  map[string]struct{}
}

// New creates a selector. Zero config values take their defaults.
func New(cfg Config, opts ...Option) *Selector {
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = DefaultConfig().ConfidenceThreshold
	}
	s := &Selector{
		cfg:    cfg,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
		known:  make(map[string]struct{}),
	}
	for _, m := range strategy.AllMethods() {
		s.known[m] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Detect recommends a strategy for doc.
//
// Inputs:
//
//	ctx - Carries the parent span.
//	doc - The document. Nil is treated as empty.
//	hints - Optional. use_case overrides the domain; query joins the corpus.
//
// Outputs:
//
//	Detection - Always populated; Alternatives never contains Recommended.
func (s *Selector) Detect(ctx context.Context, doc *document.Document, hints strategy.Hints) Detection {
	_, span := s.tracer.Start(ctx, "selector.Selector.Detect")
	defer span.End()

	if doc == nil {
		doc = document.New()
	}

	ranked := s.rank(doc, hints)

	d := Detection{
		Recommended:    strategy.MethodIterativeRefinement,
		DetectedDomain: GeneralDomain,
		Scores:         make(map[string]float64, len(ranked)),
	}
	for _, r := range ranked {
		d.Scores[r.domain] = r.score
	}

	detected := ""
	if len(ranked) > 0 {
		detected = ranked[0].domain
		d.DetectedDomain = detected
		d.Confidence = ranked[0].score
		if m, ok := domainMethod[detected]; ok {
			d.Recommended = m
		}
	}

	if explicit := strings.ToLower(strings.TrimSpace(doc.ReasoningMethod)); explicit != "" {
		if _, ok := s.known[explicit]; ok {
			d.Recommended = explicit
			d.Confidence = 1.0
		} else {
			s.logger.Warn("Ignoring unknown reasoning_method",
				slog.String("reasoning_method", doc.ReasoningMethod))
		}
	}

	d.Alternatives = alternatives(d.Recommended, ranked)
	d.Explanation = explain(d.Recommended, detected)
	d.NeedsConfirmation = d.Confidence < s.cfg.ConfidenceThreshold

	span.SetAttributes(
		attribute.String("selector.recommended", d.Recommended),
		attribute.String("selector.domain", d.DetectedDomain),
		attribute.Float64("selector.confidence", d.Confidence),
	)

	s.logger.Info("Strategy detection completed",
		slog.String("recommended", d.Recommended),
		slog.Float64("confidence", d.Confidence),
		slog.String("detected_domain", d.DetectedDomain))

	return d
}

// Methods returns the method catalogue, optionally restricted to methods
// that list domain.
func (s *Selector) Methods(domain string) []MethodInfo {
	domain = normalizeDomain(domain)
	out := make([]MethodInfo, 0, len(catalogue))
	for _, info := range catalogue {
		info.Domains = domainsFor(info)
		if domain != "" && !slices.Contains(info.Domains, domain) {
			continue
		}
		out = append(out, info)
	}
	return out
}

// Threshold returns the confirmation threshold in effect.
func (s *Selector) Threshold() float64 {
	return s.cfg.ConfidenceThreshold
}

// rank scores domains, best first.
func (s *Selector) rank(doc *document.Document, hints strategy.Hints) []domainScore {
	explicit := hints.String(HintUseCase)
	if explicit == "" {
		explicit = doc.Domain
	}
	if d := normalizeDomain(explicit); d != "" {
		if _, ok := domainMethod[d]; ok {
			return []domainScore{{domain: d, score: 1.0}}
		}
		s.logger.Debug("Explicit domain is not routable; scanning keywords", slog.String("domain", d))
	}

	text := corpus(doc, hints)
	var ranked []domainScore
	for _, row := range domainKeywords {
		matches := 0
		for _, kw := range row.keywords {
			if strings.Contains(text, kw) {
				matches++
			}
		}
		if matches > 0 {
			score := min(1.0, float64(matches)/float64(len(row.keywords))*5)
			ranked = append(ranked, domainScore{domain: row.domain, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > 0 {
		s.logger.Debug("Domain detection results",
			slog.String("top_domain", ranked[0].domain),
			slog.Float64("top_score", ranked[0].score),
			slog.Int("matched_domains", len(ranked)))
	}
	return ranked
}

// corpus joins every textual surface of doc into one lower-cased string.
func corpus(doc *document.Document, hints strategy.Hints) string {
	var parts []string

	if doc.DataType != "" {
		parts = append(parts, doc.DataType)
	}
	for i := range doc.Fields {
		f := &doc.Fields[i]
		parts = append(parts, f.Name, f.Description, f.Type)
	}
	for _, c := range doc.Constraints {
		parts = append(parts, c.Values()...)
	}
	for _, rel := range doc.Relationships {
		parts = append(parts, rel.From, rel.To, rel.Type)
		for _, v := range rel.Extra {
			parts = append(parts, fmt.Sprint(v))
		}
	}
	if q := hints.String(HintQuery); q != "" {
		parts = append(parts, q)
	}

	return strings.ToLower(strings.Join(parts, " "))
}

// alternatives lists up to three other methods: the next best domains
// first, then the general-purpose fallbacks.
func alternatives(recommended string, ranked []domainScore) []string {
	out := make([]string, 0, 3)
	add := func(m string) {
		if m != recommended && !slices.Contains(out, m) {
			out = append(out, m)
		}
	}

	for i, r := range ranked {
		if i >= 4 {
			break
		}
		if m, ok := domainMethod[r.domain]; ok {
			add(m)
		}
	}
	for _, m := range fallbackAlternatives {
		if len(out) >= 3 {
			break
		}
		add(m)
	}

	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// explain renders the templated explanation.
func explain(method, domain string) string {
	base, ok := explanations[method]
	if !ok {
		base = strategy.Title(method) + " reasoning strategy"
	}
	if domain != "" {
		return fmt.Sprintf("%s domain detected. %s", strategy.Title(domain), base)
	}
	return base + " This is a general-purpose approach suitable for various data types."
}

// normalizeDomain lower-cases and joins words with underscores,
// e.g. "Fraud Detection" -> "fraud_detection".
func normalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(d)
}
