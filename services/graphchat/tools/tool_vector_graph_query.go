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
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/PurpleNewNew/GitNexus/services/graphchat"
)

// =============================================================================
// vector_graph_query Tool
// =============================================================================

// vectorGraphQueryTool runs a Cypher query with an embedded vector
// literal substituted for the {{VECTOR}} placeholder.
//
// Description:
//
//	Combines free-form graph querying with semantic similarity: the model
//	writes Cypher containing {{VECTOR}}, names the text to embed, and the
//	tool injects the literal before execution. Both preconditions
//	(embedding readiness, placeholder presence) fail soft with guidance
//	text, and a missing placeholder never triggers an embedding call.
//
// Thread Safety: Safe for concurrent use. All operations are read-only.
type vectorGraphQueryTool struct {
	executor graphchat.QueryExecutor
	embedder graphchat.EmbeddingService
	logger   *slog.Logger
}

// NewVectorGraphQueryTool creates the vector_graph_query tool.
func NewVectorGraphQueryTool(executor graphchat.QueryExecutor, embedder graphchat.EmbeddingService, logger *slog.Logger) Tool {
	if logger == nil {
		logger = slog.Default()
	}
	return &vectorGraphQueryTool{executor: executor, embedder: embedder, logger: logger}
}

func (t *vectorGraphQueryTool) Name() string { return "vector_graph_query" }

func (t *vectorGraphQueryTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name: "vector_graph_query",
		Description: "Execute a Cypher query that ranks or filters by semantic similarity. " +
			"The query must contain the {{VECTOR}} placeholder, which is replaced with " +
			"the embedding of the 'query' text before execution.",
		Parameters: map[string]ParamDef{
			"query": {
				Type:        "string",
				Description: "Natural-language text to embed for the similarity comparison.",
				Required:    true,
			},
			"cypher": {
				Type:        "string",
				Description: "The Cypher query containing the {{VECTOR}} placeholder.",
				Required:    true,
			},
		},
	}
}

func (t *vectorGraphQueryTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	start := time.Now()
	ctx, span := toolsTracer.Start(ctx, "tools.vector_graph_query")
	defer span.End()

	text, ok := parseStringParam(params["query"])
	if !ok || text == "" {
		recordToolMetrics(t.Name(), start, false)
		return &Result{
			Success:  false,
			Output:   "Error: the 'query' parameter is required and must be a string.",
			Duration: time.Since(start),
		}, nil
	}
	cypher, ok := parseStringParam(params["cypher"])
	if !ok || cypher == "" {
		recordToolMetrics(t.Name(), start, false)
		return &Result{
			Success:  false,
			Output:   "Error: the 'cypher' parameter is required and must be a string.",
			Duration: time.Since(start),
		}, nil
	}

	if !t.embedder.Ready() {
		recordToolMetrics(t.Name(), start, false)
		return &Result{
			Success: false,
			Output: "Semantic search is not available: the embedding service is not ready. " +
				"Use graph_query for structural queries instead.",
			Duration: time.Since(start),
		}, nil
	}

	// Placeholder precondition is checked before any embedding work.
	if !strings.Contains(cypher, graphchat.VectorPlaceholder) {
		recordToolMetrics(t.Name(), start, false)
		return &Result{
			Success: false,
			Output: "Error: the cypher query must contain the {{VECTOR}} placeholder " +
				"where the embedding vector should be substituted. " +
				"Example: ORDER BY array_distance(n.embedding, {{VECTOR}}) LIMIT 5",
			Duration: time.Since(start),
		}, nil
	}

	injected, err := graphchat.InjectVector(ctx, cypher, text, t.embedder.Embed)
	if err != nil {
		t.logger.Warn("vector injection failed",
			slog.String("tool", t.Name()),
			slog.String("error", err.Error()))
		span.RecordError(err)
		recordToolMetrics(t.Name(), start, false)
		return &Result{
			Success:  false,
			Output:   "Embedding failed: " + err.Error() + "\n\nTry graph_query for a structural query instead.",
			Duration: time.Since(start),
		}, nil
	}

	rows, err := t.executor.ExecuteQuery(ctx, injected)
	if err != nil {
		t.logger.Warn("vector graph query failed",
			slog.String("tool", t.Name()),
			slog.String("error", err.Error()))
		span.RecordError(err)
		recordToolMetrics(t.Name(), start, false)
		return &Result{
			Success:  false,
			Output:   renderQueryFailure(err),
			Duration: time.Since(start),
		}, nil
	}

	span.SetAttributes(attribute.Int("result.rows", len(rows)))
	recordToolMetrics(t.Name(), start, true)
	return &Result{
		Success:  true,
		Output:   graphchat.FormatRows(rows, graphchat.DefaultDisplayCap),
		Duration: time.Since(start),
	}, nil
}
