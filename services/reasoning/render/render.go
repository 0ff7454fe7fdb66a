// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package render formats reasoning output for tools and terminals.
//
// Text output is a human-readable section followed by a "Raw" block holding
// the same value as indented JSON, so a caller can show the text and parse
// the block. JSON output is the raw value alone.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianSynth/pkg/ux"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/metrics"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/selector"
	"github.com/AleutianAI/AleutianSynth/services/reasoning/strategy"
)

// Format selects the output shape.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown output format")

// maxAlternatives bounds the alternatives listed in text output.
const maxAlternatives = 3

// ParseFormat parses "auto", "text" or "json". Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q (want auto, text or json)", ErrUnknownFormat, s)
	}
}

// Resolve turns auto into text on a terminal and json elsewhere.
func (f Format) Resolve(w io.Writer) Format {
	if f != FormatAuto {
		return f
	}
	if ux.IsTerminal(w) {
		return FormatText
	}
	return FormatJSON
}

// Renderer writes results, detections and catalogues to one writer.
//
// Thread Safety: Not safe for concurrent use.
type Renderer struct {
	w       io.Writer
	format  Format
	printer *ux.Printer
}

// New creates a renderer. FormatAuto is resolved against w. In text mode
// the personality level controls styling; JSON mode ignores it.
func New(w io.Writer, format Format, level ux.PersonalityLevel) *Renderer {
	return &Renderer{
		w:       w,
		format:  format.Resolve(w),
		printer: ux.NewPrinter(w, w, level),
	}
}

// Format returns the resolved output format.
func (r *Renderer) Format() Format {
	return r.format
}

// Result renders one reasoning result.
func (r *Renderer) Result(res *strategy.Result) error {
	if r.format == FormatJSON {
		return r.raw(res)
	}
	r.resultText(res)
	return r.rawBlock(res)
}

// AutoResult renders a detection followed by the result it led to.
func (r *Renderer) AutoResult(res *strategy.Result, det selector.Detection) error {
	payload := struct {
		Detection selector.Detection `json:"detection"`
		Result    *strategy.Result   `json:"result"`
	}{det, res}

	if r.format == FormatJSON {
		return r.raw(payload)
	}
	r.detectionText(det)
	fmt.Fprintln(r.w)
	r.resultText(res)
	return r.rawBlock(payload)
}

// Detection renders a strategy recommendation.
func (r *Renderer) Detection(det selector.Detection) error {
	if r.format == FormatJSON {
		return r.raw(det)
	}
	r.detectionText(det)
	return r.rawBlock(det)
}

// Methods renders the method catalogue.
func (r *Renderer) Methods(methods []selector.MethodInfo) error {
	if r.format == FormatJSON {
		return r.raw(methods)
	}

	p := r.printer
	p.Title("Available Reasoning Methods")
	if len(methods) == 0 {
		p.Info("No methods match.")
	}
	for i, m := range methods {
		fmt.Fprintf(r.w, "%d. %s\n", i+1, ux.Styles.Bold.Render(m.Name))
		fmt.Fprintf(r.w, "   %s\n", m.Description)
		if len(m.Domains) > 0 {
			fmt.Fprintf(r.w, "   Use Cases: %s\n", strings.Join(firstN(m.Domains, 3), ", "))
		}
	}
	return r.rawBlock(methods)
}

// Metadata renders one strategy's description.
func (r *Renderer) Metadata(md strategy.Metadata) error {
	if r.format == FormatJSON {
		return r.raw(md)
	}

	p := r.printer
	p.Title(md.Name)
	p.Info(md.Description)
	list := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		p.KeyValue(label, "")
		for _, item := range items {
			fmt.Fprintf(r.w, "  %s %s\n", ux.IconBullet.Render(), item)
		}
	}
	list("Use Cases", md.UseCases)
	list("Strengths", md.Strengths)
	list("Limitations", md.Limitations)
	if len(md.Parameters) > 0 {
		p.KeyValue("Parameters", "")
		for _, k := range sortedKeys(md.Parameters) {
			fmt.Fprintf(r.w, "  %s = %v\n", k, md.Parameters[k])
		}
	}
	return r.rawBlock(md)
}

// Comparison renders several results side by side, best confidence first
// in the table and in request order in the raw block.
func (r *Renderer) Comparison(results []*strategy.Result) error {
	if r.format == FormatJSON {
		return r.raw(results)
	}

	p := r.printer
	p.Title("Strategy Comparison")

	ranked := make([]*strategy.Result, 0, len(results))
	for _, res := range results {
		if res != nil {
			ranked = append(ranked, res)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	for i, res := range ranked {
		status := ux.IconSuccess
		if res.Failed() {
			status = ux.IconError
		}
		fmt.Fprintf(r.w, "%d. %s %-24s %s  %s  %d steps\n",
			i+1, status.Render(), strategy.Title(res.Method),
			ux.ConfidenceBar(res.Confidence, 20, p.Level()),
			res.ExecutionTime.Round(time.Microsecond), len(res.Steps))
	}
	return r.rawBlock(results)
}

// Summary renders aggregate metrics, overall and per method.
func (r *Renderer) Summary(overall metrics.Summary, byMethod map[string]metrics.Summary) error {
	payload := struct {
		Overall  metrics.Summary            `json:"overall"`
		ByMethod map[string]metrics.Summary `json:"by_method,omitempty"`
	}{overall, byMethod}

	if r.format == FormatJSON {
		return r.raw(payload)
	}

	p := r.printer
	title := "Reasoning Metrics"
	if overall.MethodName != "" {
		title += " (" + overall.MethodName + ")"
	}
	p.Title(title)
	summaryText(p, overall)
	if len(byMethod) > 0 {
		names := make([]string, 0, len(byMethod))
		for name := range byMethod {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			s := byMethod[name]
			fmt.Fprintf(r.w, "  %-22s runs=%d success=%.0f%% avg_conf=%.2f avg_time=%s\n",
				name, s.TotalRuns, s.SuccessRate*100, s.AvgConfidence, s.AvgExecutionTime)
		}
	}
	return r.rawBlock(payload)
}

func summaryText(p *ux.Printer, s metrics.Summary) {
	p.KeyValue("Total Runs", fmt.Sprintf("%d", s.TotalRuns))
	p.KeyValue("Success Rate", fmt.Sprintf("%.0f%%", s.SuccessRate*100))
	p.KeyValue("Avg Confidence", fmt.Sprintf("%.2f", s.AvgConfidence))
	p.KeyValue("Avg Execution Time", s.AvgExecutionTime.String())
}

func (r *Renderer) resultText(res *strategy.Result) {
	p := r.printer
	if res == nil {
		p.Warning("No result.")
		return
	}

	p.Title("Reasoning Result: " + strategy.Title(res.Method))
	p.KeyValue("Confidence", ux.ConfidenceBar(res.Confidence, 20, p.Level()))
	p.KeyValue("Execution Time", res.ExecutionTime.String())
	if res.RunID != "" {
		p.KeyValue("Run ID", res.RunID)
	}
	if msg, ok := res.Metadata["error"]; ok {
		p.Error(fmt.Sprintf("%v", msg))
	}

	fmt.Fprintln(r.w)
	p.KeyValue("Reasoning Steps", "")
	for i, step := range res.Steps {
		fmt.Fprintf(r.w, "  %d. %s\n", i+1, step)
	}
	if res.Enhanced != nil {
		fmt.Fprintln(r.w)
		p.KeyValue("Enhanced Requirements", res.Enhanced.Summary())
	}
}

func (r *Renderer) detectionText(det selector.Detection) {
	p := r.printer
	p.Title("Reasoning Strategy Recommendation")
	p.KeyValue("Recommended Method", strategy.Title(det.Recommended))
	p.KeyValue("Confidence", fmt.Sprintf("%.0f%%", det.Confidence*100))
	p.KeyValue("Detected Domain", det.DetectedDomain)
	fmt.Fprintln(r.w)
	p.KeyValue("Explanation", "")
	fmt.Fprintf(r.w, "  %s\n", det.Explanation)

	if len(det.Alternatives) > 0 {
		fmt.Fprintln(r.w)
		p.KeyValue("Alternative Methods", "")
		for i, alt := range firstN(det.Alternatives, maxAlternatives) {
			fmt.Fprintf(r.w, "  %d. %s\n", i+1, strategy.Title(alt))
		}
	}
	if det.NeedsConfirmation {
		fmt.Fprintln(r.w)
		p.Warning("Low confidence: confirm the method or choose an alternative.")
	}
}

// raw writes v as indented JSON.
func (r *Renderer) raw(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// rawBlock writes the "Raw:" separator and v as indented JSON. The
// separator is printed at every personality level so the JSON stays
// locatable in text output.
func (r *Renderer) rawBlock(v any) error {
	fmt.Fprintln(r.w)
	if r.printer.Machine() {
		r.printer.Raw("Raw:")
	} else {
		r.printer.Muted("Raw:")
	}
	return r.raw(v)
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
