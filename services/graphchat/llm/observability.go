// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

// llmTracer is the shared OTel tracer for all chat model clients.
var llmTracer = otel.Tracer("graphchat.llm")

// Package-level Prometheus metrics for chat model calls.
// Auto-registered via promauto so no explicit registry wiring is needed.
var (
	// llmCallDuration measures the duration of model API calls.
	//
	// Labels:
	//   - provider: "openai", "ollama", "anthropic"
	//   - status: "success" or "error"
	llmCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gitnexus",
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Duration of chat model API calls in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider", "status"},
	)

	// llmCallsTotal counts model API calls.
	//
	// Labels:
	//   - provider: "openai", "ollama", "anthropic"
	//   - status: "success" or "error"
	llmCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gitnexus",
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Total number of chat model API calls.",
		},
		[]string{"provider", "status"},
	)

	// llmTokensTotal counts tokens consumed by model calls.
	//
	// Labels:
	//   - provider: "openai", "ollama", "anthropic"
	//   - direction: "input" or "output"
	llmTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gitnexus",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Total tokens consumed by chat model calls.",
		},
		[]string{"provider", "direction"},
	)

	// llmErrorsTotal counts model errors by type.
	//
	// Labels:
	//   - provider: "openai", "ollama", "anthropic"
	//   - error_type: "timeout", "auth", "rate_limit", "server", "unknown"
	llmErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gitnexus",
			Subsystem: "llm",
			Name:      "errors_total",
			Help:      "Total chat model errors by type.",
		},
		[]string{"provider", "error_type"},
	)
)

// classifyError maps an error to a label-safe error type string. Raw
// error messages would be high-cardinality label values.
//
// Thread Safety: Safe for concurrent use.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "context canceled") ||
		strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "returned 401") ||
		strings.Contains(msg, "returned 403") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "authentication") ||
		strings.Contains(msg, "api key"):
		return "auth"
	case strings.Contains(msg, "returned 429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests"):
		return "rate_limit"
	case strings.Contains(msg, "returned 500") ||
		strings.Contains(msg, "returned 502") ||
		strings.Contains(msg, "returned 503") ||
		strings.Contains(msg, "server error") ||
		strings.Contains(msg, "internal error"):
		return "server"
	default:
		return "unknown"
	}
}

// recordLLMMetrics records metrics for a completed model call. Records
// duration, call count, token counts (on success), and error type (on
// failure).
//
// Thread Safety: Safe for concurrent use.
func recordLLMMetrics(provider string, duration time.Duration, inputTokens, outputTokens int, err error) {
	status := "success"
	if err != nil {
		status = "error"
		llmErrorsTotal.WithLabelValues(provider, classifyError(err)).Inc()
	}

	llmCallDuration.WithLabelValues(provider, status).Observe(duration.Seconds())
	llmCallsTotal.WithLabelValues(provider, status).Inc()

	if err == nil {
		llmTokensTotal.WithLabelValues(provider, "input").Add(float64(inputTokens))
		llmTokensTotal.WithLabelValues(provider, "output").Add(float64(outputTokens))
	}
}
