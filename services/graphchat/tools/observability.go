// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tools

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

// toolsTracer is the shared OTel tracer for all graph query tools.
var toolsTracer = otel.Tracer("graphchat.tools")

// Package-level Prometheus metrics for tool executions.
// Auto-registered via promauto so no explicit registry wiring is needed.
var (
	// toolDuration measures the duration of tool executions.
	//
	// Labels:
	//   - tool: registered tool name
	//   - status: "success" or "error"
	toolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gitnexus",
			Subsystem: "tools",
			Name:      "execution_duration_seconds",
			Help:      "Duration of graph tool executions in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"tool", "status"},
	)

	// toolCallsTotal counts tool executions.
	//
	// Labels:
	//   - tool: registered tool name
	//   - status: "success" or "error"
	toolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gitnexus",
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Total number of graph tool executions.",
		},
		[]string{"tool", "status"},
	)
)

// recordToolMetrics records one execution's metrics.
func recordToolMetrics(tool string, start time.Time, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	toolDuration.WithLabelValues(tool, status).Observe(time.Since(start).Seconds())
	toolCallsTotal.WithLabelValues(tool, status).Inc()
}
