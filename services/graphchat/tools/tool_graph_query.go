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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/PurpleNewNew/GitNexus/services/graphchat"
)

// =============================================================================
// graph_query Tool
// =============================================================================

// graphQueryTool runs a raw Cypher read query against the knowledge graph.
//
// Description:
//
//	The model's general-purpose escape hatch: any read query the schema
//	supports. Backend failures are rendered into observation text with a
//	retry hint rather than surfaced as errors, so a syntax mistake costs
//	one loop iteration, not the conversation.
//
// Thread Safety: Safe for concurrent use. All operations are read-only.
type graphQueryTool struct {
	executor graphchat.QueryExecutor
	logger   *slog.Logger
}

// NewGraphQueryTool creates the graph_query tool.
func NewGraphQueryTool(executor graphchat.QueryExecutor, logger *slog.Logger) Tool {
	if logger == nil {
		logger = slog.Default()
	}
	return &graphQueryTool{executor: executor, logger: logger}
}

func (t *graphQueryTool) Name() string { return "graph_query" }

func (t *graphQueryTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name: "graph_query",
		Description: "Execute a read-only Cypher query against the code knowledge graph. " +
			"Use get_schema first to learn the node and relationship tables. " +
			"Results are capped at 50 rows.",
		Parameters: map[string]ParamDef{
			"query": {
				Type:        "string",
				Description: "The Cypher query to execute.",
				Required:    true,
			},
		},
	}
}

func (t *graphQueryTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	start := time.Now()
	ctx, span := toolsTracer.Start(ctx, "tools.graph_query")
	defer span.End()

	query, ok := parseStringParam(params["query"])
	if !ok || query == "" {
		recordToolMetrics(t.Name(), start, false)
		return &Result{
			Success:  false,
			Output:   "Error: the 'query' parameter is required and must be a string.",
			Duration: time.Since(start),
		}, nil
	}
	span.SetAttributes(attribute.Int("query.length", len(query)))

	rows, err := t.executor.ExecuteQuery(ctx, query)
	if err != nil {
		t.logger.Warn("graph query failed",
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

// renderQueryFailure turns a backend failure into observation text that
// names the failure kind and nudges the model toward a corrected query.
func renderQueryFailure(err error) string {
	kind := "Query execution failed"
	msg := err.Error()
	var qe *graphchat.QueryError
	if errors.As(err, &qe) {
		kind = qe.Kind
		msg = qe.Message
	}
	return fmt.Sprintf("%s: %s\n\nPlease check your query syntax and try again.", kind, msg)
}
