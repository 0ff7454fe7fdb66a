// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api exposes the reasoning dispatcher over HTTP with gin.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/dispatcher"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/telemetry"
)

// ServiceVersion is the reasoning API version.
const ServiceVersion = "0.1.0"

// Source yields the dispatcher to serve a request with.
type Source interface {
	Dispatcher() *dispatcher.Dispatcher
}

// Holder is a Source whose dispatcher can be swapped while serving, for
// config reloads. In-flight requests keep the dispatcher they started with.
//
// Thread Safety: Safe for concurrent use.
type Holder struct {
	p atomic.Pointer[dispatcher.Dispatcher]
}

// NewHolder creates a holder serving d.
func NewHolder(d *dispatcher.Dispatcher) *Holder {
	h := &Holder{}
	h.p.Store(d)
	return h
}

// Dispatcher returns the current dispatcher.
func (h *Holder) Dispatcher() *dispatcher.Dispatcher {
	return h.p.Load()
}

// Store swaps in d.
func (h *Holder) Store(d *dispatcher.Dispatcher) {
	h.p.Store(d)
}

// Handlers contains the HTTP handlers for the reasoning API.
type Handlers struct {
	src    Source
	logger *slog.Logger
}

// NewHandlers creates handlers backed by src.
func NewHandlers(src Source, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{src: src, logger: logger}
}

func (h *Handlers) requestLogger(c *gin.Context, handler string) *slog.Logger {
	return telemetry.LoggerWithRequest(c.Request.Context(), h.logger, GetRequestID(c)).
		With(slog.String("handler", handler))
}

// HandleExecute handles POST /v1/reasoning/execute.
//
// Response:
//
//	200 OK: strategy.Result (strategy faults are reported inside the result)
//	400 Bad Request: INVALID_REQUEST, INVALID_DOCUMENT or INVALID_METHOD
func (h *Handlers) HandleExecute(c *gin.Context) {
	logger := h.requestLogger(c, "HandleExecute")

	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", slog.String("error", err.Error()))
		h.fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	doc, ok := h.parseDocument(c, logger, req.Requirements)
	if !ok {
		return
	}

	res, err := h.src.Dispatcher().Execute(c.Request.Context(), req.Method, doc, strategy.Hints(req.Hints))
	if err != nil {
		h.dispatchError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleAuto handles POST /v1/reasoning/auto.
func (h *Handlers) HandleAuto(c *gin.Context) {
	logger := h.requestLogger(c, "HandleAuto")

	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", slog.String("error", err.Error()))
		h.fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	doc, ok := h.parseDocument(c, logger, req.Requirements)
	if !ok {
		return
	}

	res, det, err := h.src.Dispatcher().AutoExecute(c.Request.Context(), doc, strategy.Hints(req.Hints))
	if err != nil {
		h.dispatchError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, AutoResponse{Detection: det, Result: res})
}

// HandleDetect handles POST /v1/reasoning/detect.
func (h *Handlers) HandleDetect(c *gin.Context) {
	logger := h.requestLogger(c, "HandleDetect")

	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", slog.String("error", err.Error()))
		h.fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	doc, ok := h.parseDocument(c, logger, req.Requirements)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.src.Dispatcher().Detect(c.Request.Context(), doc, strategy.Hints(req.Hints)))
}

// HandleCompare handles POST /v1/reasoning/compare.
func (h *Handlers) HandleCompare(c *gin.Context) {
	logger := h.requestLogger(c, "HandleCompare")

	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", slog.String("error", err.Error()))
		h.fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	doc, ok := h.parseDocument(c, logger, req.Requirements)
	if !ok {
		return
	}

	results, err := h.src.Dispatcher().Compare(c.Request.Context(), req.Methods, doc, strategy.Hints(req.Hints))
	if err != nil {
		h.dispatchError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, CompareResponse{Results: results})
}

// HandleListStrategies handles GET /v1/reasoning/strategies[?domain=].
func (h *Handlers) HandleListStrategies(c *gin.Context) {
	methods := h.src.Dispatcher().Methods(c.Query("domain"))
	c.JSON(http.StatusOK, StrategiesResponse{Methods: methods, Count: len(methods)})
}

// HandleDescribe handles GET /v1/reasoning/strategies/:name.
func (h *Handlers) HandleDescribe(c *gin.Context) {
	md, err := h.src.Dispatcher().Describe(c.Param("name"))
	if err != nil {
		h.dispatchError(c, h.requestLogger(c, "HandleDescribe"), err)
		return
	}
	c.JSON(http.StatusOK, md)
}

// HandleMetricsSummary handles GET /v1/reasoning/metrics/summary[?method=].
// Without a method filter the per-method breakdown is included.
func (h *Handlers) HandleMetricsSummary(c *gin.Context) {
	d := h.src.Dispatcher()
	method := c.Query("method")

	resp := SummaryResponse{Summary: d.MetricsSummary(method)}
	if method == "" {
		resp.ByMethod = d.Metrics().ByMethod()
	}
	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /v1/reasoning/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:     "healthy",
		Version:    ServiceVersion,
		Strategies: len(h.src.Dispatcher().ListStrategies()),
	})
}

// parseDocument converts and validates the request document. It writes the
// 400 response itself and reports false on failure.
func (h *Handlers) parseDocument(c *gin.Context, logger *slog.Logger, raw map[string]any) (*document.Document, bool) {
	doc, err := document.FromMap(raw)
	if err == nil {
		err = doc.Validate()
	}
	if err != nil {
		logger.Warn("Invalid requirements document", slog.String("error", err.Error()))
		h.fail(c, http.StatusBadRequest, "INVALID_DOCUMENT", err.Error())
		return nil, false
	}
	return doc, true
}

func (h *Handlers) dispatchError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, dispatcher.ErrInvalidMethod):
		logger.Warn("Unknown reasoning method", slog.String("error", err.Error()))
		h.fail(c, http.StatusBadRequest, "INVALID_METHOD", err.Error())
	case errors.Is(err, dispatcher.ErrNoMethods):
		h.fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	default:
		logger.Error("Reasoning failed", slog.String("error", err.Error()))
		h.fail(c, http.StatusInternalServerError, "REASONING_FAILED", err.Error())
	}
}

func (h *Handlers) fail(c *gin.Context, status int, code, msg string) {
	c.JSON(status, ErrorResponse{Error: msg, Code: code, RequestID: GetRequestID(c)})
}
