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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianSynth/services/reasoning/api"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/config"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/dispatcher"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/metrics"
)

const shutdownTimeout = 10 * time.Second

// runServe serves the API until the command context is cancelled. When a
// config file is given, edits to it rebuild the dispatcher in place; the
// metrics history and Prometheus series carry over.
func (a *app) runServe(cmd *cobra.Command, addr string) error {
	ctx := commandContext(cmd)
	logger := a.logger.Slog()

	if !a.verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	agg := metrics.NewAggregator(metrics.WithLogger(logger))
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	build := func(cfg config.Config) *dispatcher.Dispatcher {
		opts := append(cfg.DispatcherOptions(logger), dispatcher.WithCollector(collector))
		return dispatcher.New(agg, opts...)
	}
	holder := api.NewHolder(build(a.cfg))

	if a.configPath != "" {
		w, err := config.NewWatcher(a.configPath, func(cfg config.Config) {
			holder.Store(build(cfg))
			logger.Info("Dispatcher rebuilt from config", slog.String("path", a.configPath))
		}, config.WithWatcherLogger(logger))
		if err != nil {
			logger.Warn("Config hot reload disabled", slog.String("error", err.Error()))
		} else {
			defer func() { _ = w.Close() }()
		}
	}

	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	router := api.NewRouter(api.RouterConfig{
		ServiceName: a.cfg.Telemetry.ServiceName,
		Limiter:     api.NewLimiter(a.cfg.Server.RequestsPerSecond, a.cfg.Server.Burst),
		Logger:      logger,
	}, api.NewHandlers(holder, logger))

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting reasoning server", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down reasoning server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
