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
	"io"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianSynth/pkg/logging"
	"github.com/AleutianAI/AleutianSynth/pkg/ux"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/config"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/dispatcher"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/document"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/metrics"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/render"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/selector"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/telemetry"
)

const serviceName = "reasoner"

// app holds flags and the per-invocation state built in setup.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// Persistent flags
	configPath  string
	format      string
	personality string
	verbose     bool

	// Document flags
	file    string
	useCase string
	query   string

	cfg       config.Config
	logger    *logging.Logger
	level     ux.PersonalityLevel
	shutdowns []func(context.Context) error
}

// setup loads config, then builds the logger, telemetry and UX level.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	lc := cfg.LoggerConfig(serviceName)
	lc.Output = a.errOut
	if !a.verbose && cmd.Name() != "serve" {
		lc.Quiet = true
	}
	a.logger = logging.New(lc)

	shutdown, err := telemetry.Init(commandContext(cmd), cfg.Telemetry, telemetry.WithWriter(a.errOut))
	if err != nil {
		_ = a.logger.Close()
		return fmt.Errorf("init telemetry: %w", err)
	}
	a.shutdowns = append(a.shutdowns, shutdown)

	if a.personality != "" {
		a.level = ux.ParsePersonalityLevel(a.personality)
	} else {
		a.level = ux.DetectPersonality(a.out)
	}
	ux.SetPersonalityLevel(a.level)
	return nil
}

// teardown flushes telemetry and closes the log file.
func (a *app) teardown(cmd *cobra.Command, _ []string) error {
	var errs []error
	for _, shutdown := range a.shutdowns {
		errs = append(errs, shutdown(context.WithoutCancel(commandContext(cmd))))
	}
	a.shutdowns = nil
	if a.logger != nil {
		errs = append(errs, a.logger.Close())
	}
	return errors.Join(errs...)
}

// newDispatcher builds a dispatcher from the loaded config.
func (a *app) newDispatcher(agg *metrics.Aggregator, opts ...dispatcher.Option) *dispatcher.Dispatcher {
	base := a.cfg.DispatcherOptions(a.logger.Slog())
	return dispatcher.New(agg, append(base, opts...)...)
}

// readDocument loads -f (a path, or "-" for stdin). No -f means an empty
// document.
func (a *app) readDocument() (*document.Document, error) {
	var (
		doc *document.Document
		err error
	)
	switch a.file {
	case "":
		return document.New(), nil
	case "-":
		data, rerr := io.ReadAll(a.in)
		if rerr != nil {
			return nil, fmt.Errorf("read stdin: %w", rerr)
		}
		doc, err = document.Parse(data)
	default:
		doc, err = document.Load(a.file)
	}
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (a *app) hints() strategy.Hints {
	h := strategy.Hints{}
	if a.useCase != "" {
		h[selector.HintUseCase] = a.useCase
	}
	if a.query != "" {
		h[selector.HintQuery] = a.query
	}
	return h
}

// renderer builds the output renderer. An explicit -o text on a non-TTY
// writer gets minimal styling unless --personality says otherwise.
func (a *app) renderer() (*render.Renderer, error) {
	f, err := render.ParseFormat(a.format)
	if err != nil {
		return nil, err
	}
	level := a.level
	if f == render.FormatText && a.personality == "" && level == ux.PersonalityMachine {
		level = ux.PersonalityMinimal
	}
	return render.New(a.out, f, level), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
