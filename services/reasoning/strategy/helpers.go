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
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
)

// dataTypeDomains maps data_type keywords to a domain, checked in order.
var dataTypeDomains = []struct {
	domain   string
	keywords []string
}{
	{"financial", []string{"financial", "transaction", "payment", "trading"}},
	{"healthcare", []string{"patient", "medical", "healthcare", "diagnosis"}},
	{"ecommerce", []string{"product", "order", "ecommerce", "retail"}},
	{"network", []string{"network", "graph", "social", "connection"}},
}

// ExtractDomain infers the document's domain.
//
// Description:
//
//	An explicit domain wins (lower-cased). Otherwise the data_type is
//	scanned for keywords of the financial, healthcare, ecommerce and
//	network domains, in that order.
//
// Outputs:
//
//	string - The domain, or "" when nothing matched.
func ExtractDomain(doc *document.Document) string {
	if doc == nil {
		return ""
	}
	if doc.Domain != "" {
		return strings.ToLower(doc.Domain)
	}
	dataType := strings.ToLower(doc.DataType)
	if dataType == "" {
		return ""
	}
	for _, entry := range dataTypeDomains {
		for _, kw := range entry.keywords {
			if strings.Contains(dataType, kw) {
				return entry.domain
			}
		}
	}
	return ""
}

// Clamp01 limits v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ForeignKeyFor returns the relationship implied by a field name of the form
// "<parent>_id", and false when the name does not imply one.
func ForeignKeyFor(name string) (document.Relationship, bool) {
	lower := strings.ToLower(name)
	if !strings.Contains(lower, "_id") || lower == "id" {
		return document.Relationship{}, false
	}
	parent := strings.ReplaceAll(strings.ReplaceAll(name, "_id", ""), "_ID", "")
	return document.Relationship{
		Type: "foreign_key",
		From: name,
		To:   parent + ".id",
	}, true
}

// Title converts a method identifier to a display title,
// e.g. "beam_search" -> "Beam Search".
func Title(method string) string {
	words := strings.Fields(strings.ReplaceAll(method, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// RecordPhase adds a span event for a named phase of a strategy run.
// It is a no-op when ctx carries no recording span.
func RecordPhase(ctx context.Context, phase string, attrs ...attribute.KeyValue) {
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(phase, trace.WithAttributes(attrs...))
}
