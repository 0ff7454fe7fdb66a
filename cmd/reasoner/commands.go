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
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// newRootCmd wires every subcommand to one app.
func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "reasoner",
		Short: "Enhance data-generation requirements with reasoning strategies",
		Long: `reasoner runs one of twelve reasoning strategies over a requirements
document and returns an enhanced document plus a trace of the reasoning.
It can pick the strategy itself from the document's domain.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (YAML or JSON)")
	pf.StringVarP(&a.format, "output", "o", "auto", "output format: auto, text or json")
	pf.StringVar(&a.personality, "personality", "", "text styling: full, minimal or machine")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log to stderr")

	docFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVarP(&a.file, "file", "f", "", "requirements document (.yaml, .json, or - for stdin)")
		cmd.Flags().StringVar(&a.useCase, "use-case", "", "use case hint, e.g. \"fraud detection\"")
		cmd.Flags().StringVar(&a.query, "query", "", "free-text query hint")
	}

	runCmd := &cobra.Command{
		Use:   "run <method>",
		Short: "Run one reasoning strategy",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runRun,
	}
	docFlags(runCmd)

	autoCmd := &cobra.Command{
		Use:   "auto",
		Short: "Detect the best strategy and run it",
		Args:  cobra.NoArgs,
		RunE:  a.runAuto,
	}
	docFlags(autoCmd)

	detectCmd := &cobra.Command{
		Use:   "detect",
		Short: "Recommend a strategy without running it",
		Args:  cobra.NoArgs,
		RunE:  a.runDetect,
	}
	docFlags(detectCmd)

	compareCmd := &cobra.Command{
		Use:   "compare <method,method,...>",
		Short: "Run several strategies on the same document",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runCompare,
	}
	docFlags(compareCmd)

	var domain string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List reasoning methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runList(domain)
		},
	}
	listCmd.Flags().StringVar(&domain, "domain", "", "only methods suited to this domain")

	describeCmd := &cobra.Command{
		Use:   "describe <method>",
		Short: "Show a strategy's description and parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runDescribe,
	}

	var addr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reasoning HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd, addr)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	rootCmd.AddCommand(runCmd, autoCmd, detectCmd, compareCmd, listCmd, describeCmd, serveCmd)
	return rootCmd
}

func (a *app) runRun(cmd *cobra.Command, args []string) error {
	r, err := a.renderer()
	if err != nil {
		return err
	}
	doc, err := a.readDocument()
	if err != nil {
		return err
	}

	res, err := a.newDispatcher(nil).Execute(commandContext(cmd), args[0], doc, a.hints())
	if err != nil {
		return err
	}
	return r.Result(res)
}

func (a *app) runAuto(cmd *cobra.Command, _ []string) error {
	r, err := a.renderer()
	if err != nil {
		return err
	}
	doc, err := a.readDocument()
	if err != nil {
		return err
	}

	res, det, err := a.newDispatcher(nil).AutoExecute(commandContext(cmd), doc, a.hints())
	if err != nil {
		return err
	}
	return r.AutoResult(res, det)
}

func (a *app) runDetect(cmd *cobra.Command, _ []string) error {
	r, err := a.renderer()
	if err != nil {
		return err
	}
	doc, err := a.readDocument()
	if err != nil {
		return err
	}
	return r.Detection(a.newDispatcher(nil).Detect(commandContext(cmd), doc, a.hints()))
}

func (a *app) runCompare(cmd *cobra.Command, args []string) error {
	r, err := a.renderer()
	if err != nil {
		return err
	}
	doc, err := a.readDocument()
	if err != nil {
		return err
	}

	var names []string
	for _, n := range strings.Split(args[0], ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}

	results, err := a.newDispatcher(nil).Compare(commandContext(cmd), names, doc, a.hints())
	if err != nil {
		return err
	}
	return r.Comparison(results)
}

func (a *app) runList(domain string) error {
	r, err := a.renderer()
	if err != nil {
		return err
	}
	return r.Methods(a.newDispatcher(nil).Methods(domain))
}

func (a *app) runDescribe(_ *cobra.Command, args []string) error {
	r, err := a.renderer()
	if err != nil {
		return err
	}
	md, err := a.newDispatcher(nil).Describe(args[0])
	if err != nil {
		return err
	}
	return r.Metadata(md)
}
