// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"github.com/AleutianAI/AleutianSynth/services/reasoning/metrics"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/selector"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

// ExecuteRequest is the body of POST /v1/reasoning/execute.
type ExecuteRequest struct {
	// Method is the strategy to run.
	Method string `json:"method" binding:"required"`

	// Requirements is the open specification document. Absent means empty.
	Requirements map[string]any `json:"requirements"`

	// Hints carries caller context such as use_case or query.
	Hints map[string]any `json:"hints"`
}

// DocumentRequest is the body of POST /v1/reasoning/auto and /detect.
type DocumentRequest struct {
	Requirements map[string]any `json:"requirements"`
	Hints        map[string]any `json:"hints"`
}

// CompareRequest is the body of POST /v1/reasoning/compare.
type CompareRequest struct {
	Methods      []string       `json:"methods" binding:"required,min=1,dive,required"`
	Requirements map[string]any `json:"requirements"`
	Hints        map[string]any `json:"hints"`
}

// AutoResponse pairs the detection with the result it produced.
type AutoResponse struct {
	Detection selector.Detection `json:"detection"`
	Result    *strategy.Result   `json:"result"`
}

// CompareResponse holds results in request order.
type CompareResponse struct {
	Results []*strategy.Result `json:"results"`
}

// StrategiesResponse is the body of GET /v1/reasoning/strategies.
type StrategiesResponse struct {
	Methods []selector.MethodInfo `json:"methods"`
	Count   int                   `json:"count"`
}

// SummaryResponse is the body of GET /v1/reasoning/metrics/summary.
type SummaryResponse struct {
	Summary  metrics.Summary            `json:"summary"`
	ByMethod map[string]metrics.Summary `json:"by_method,omitempty"`
}

// HealthResponse is the body of GET /v1/reasoning/health.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Strategies int    `json:"strategies"`
}

// ErrorResponse is returned for every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}
