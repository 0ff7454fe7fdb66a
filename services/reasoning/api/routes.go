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
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"
)

// RegisterRoutes registers the reasoning routes under rg.
//
// Endpoints:
//
//	POST /reasoning/execute
//	POST /reasoning/auto
//	POST /reasoning/detect
//	POST /reasoning/compare
//	GET  /reasoning/strategies
//	GET  /reasoning/strategies/:name
//	GET  /reasoning/metrics/summary
//	GET  /reasoning/health
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	r := rg.Group("/reasoning")
	{
		r.POST("/execute", h.HandleExecute)
		r.POST("/auto", h.HandleAuto)
		r.POST("/detect", h.HandleDetect)
		r.POST("/compare", h.HandleCompare)
		r.GET("/strategies", h.HandleListStrategies)
		r.GET("/strategies/:name", h.HandleDescribe)
		r.GET("/metrics/summary", h.HandleMetricsSummary)
		r.GET("/health", h.HandleHealth)
	}
}

// RouterConfig configures NewRouter.
type RouterConfig struct {
	// ServiceName names the otelgin server spans.
	ServiceName string

	// Limiter throttles /v1 routes. Nil disables limiting.
	Limiter *rate.Limiter

	// Gatherer backs GET /metrics. Nil means the default registry.
	Gatherer prometheus.Gatherer

	Logger *slog.Logger
}

// NewRouter builds the full engine: recovery, tracing, request IDs and
// access logs on every route, rate limiting on /v1, and /metrics.
func NewRouter(cfg RouterConfig, h *Handlers) *gin.Engine {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "reasoning-service"
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(RequestID())
	router.Use(AccessLog(cfg.Logger))

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	v1.Use(RateLimit(cfg.Limiter))
	RegisterRoutes(v1, h)
	return router
}
