// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Aggregator
// =============================================================================

func TestAggregator_SummaryEmpty(t *testing.T) {
	a := NewAggregator()

	assert.Equal(t, Summary{}, a.Summary(""))
	assert.Equal(t, Summary{MethodName: "mcts"}, a.Summary("mcts"))
}

func TestAggregator_Summary(t *testing.T) {
	a := NewAggregator()
	a.Record(Record{Method: "mcts", ExecutionTime: 10 * time.Millisecond, Confidence: 0.8, Success: true})
	a.Record(Record{Method: "mcts", ExecutionTime: 30 * time.Millisecond, Confidence: 0.6, Success: true})
	a.Record(Record{Method: "mcts", ExecutionTime: 20 * time.Millisecond, Confidence: 0, Success: false, Error: "boom"})
	a.Record(Record{Method: "react", ExecutionTime: 40 * time.Millisecond, Confidence: 1.0, Success: true})

	s := a.Summary("mcts")
	assert.Equal(t, 3, s.TotalRuns)
	assert.InDelta(t, 2.0/3.0, s.SuccessRate, 1e-9)
	assert.Equal(t, 20*time.Millisecond, s.AvgExecutionTime)
	assert.InDelta(t, 1.4/3.0, s.AvgConfidence, 1e-9)
	assert.Equal(t, "mcts", s.MethodName)

	all := a.Summary("")
	assert.Equal(t, 4, all.TotalRuns)
	assert.InDelta(t, 0.75, all.SuccessRate, 1e-9)
	assert.Equal(t, 25*time.Millisecond, all.AvgExecutionTime)

	assert.Equal(t, 0, a.Summary("astar").TotalRuns)
}

func TestAggregator_ResetAndRecords(t *testing.T) {
	a := NewAggregator()
	a.Record(Record{Method: "mcts", Success: true})

	recs := a.Records()
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Timestamp.IsZero())

	recs[0].Method = "mutated"
	assert.Equal(t, "mcts", a.Records()[0].Method)

	a.Reset()
	assert.Equal(t, 0, a.Summary("").TotalRuns)
	assert.Equal(t, 0, a.Len())
	assert.Empty(t, a.Records())
}

func TestAggregator_ByMethod(t *testing.T) {
	a := NewAggregator()
	a.Record(Record{Method: "mcts", Success: true, Confidence: 0.5})
	a.Record(Record{Method: "react", Success: false})

	by := a.ByMethod()
	require.Len(t, by, 2)
	assert.Equal(t, 1.0, by["mcts"].SuccessRate)
	assert.Equal(t, 0.0, by["react"].SuccessRate)
}

func TestAggregator_Percentile(t *testing.T) {
	a := NewAggregator()
	assert.Equal(t, time.Duration(0), a.Percentile("", 50))

	for i := 1; i <= 10; i++ {
		a.Record(Record{Method: "mcts", ExecutionTime: time.Duration(i) * time.Millisecond})
	}
	a.Record(Record{Method: "react", ExecutionTime: time.Second})

	tests := []struct {
		p    float64
		want time.Duration
	}{
		{0, 1 * time.Millisecond},
		{50, 5 * time.Millisecond},
		{90, 9 * time.Millisecond},
		{95, 10 * time.Millisecond},
		{100, 10 * time.Millisecond},
		{150, 10 * time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.Percentile("mcts", tt.p), "p=%v", tt.p)
	}
	assert.Equal(t, time.Second, a.Percentile("", 100))
}

func TestAggregator_ConcurrentRecord(t *testing.T) {
	a := NewAggregator()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Record(Record{Method: "mcts", Success: true})
			_ = a.Summary("mcts")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, a.Summary("mcts").TotalRuns)
}

// =============================================================================
// Collector
// =============================================================================

func TestCollector_ObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveRun("mcts", true, 5*time.Millisecond, 0.8)
	c.ObserveRun("mcts", false, 5*time.Millisecond, 0)
	c.ObserveRecord(Record{Method: "react", Success: true, Confidence: 1})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("mcts", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("mcts", StatusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues("react", StatusSuccess)))
	assert.Equal(t, 2, testutil.CollectAndCount(c.duration))
	assert.Equal(t, 2, testutil.CollectAndCount(c.confidence))
}

func TestCollector_ObserveDetection(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveDetection("mcts", "financial")
	c.ObserveDetection("mcts", "financial")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.detections.WithLabelValues("mcts", "financial")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "reasoning_selector_detections_total")
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveRun("mcts", true, time.Millisecond, 1)
		c.ObserveRecord(Record{Method: "mcts"})
		c.ObserveDetection("mcts", "financial")
	})
}
