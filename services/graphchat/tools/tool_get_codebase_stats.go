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
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/PurpleNewNew/GitNexus/services/graphchat"
)

// =============================================================================
// get_codebase_stats Tool
// =============================================================================

// getCodebaseStatsTool summarizes the indexed codebase.
//
// Description:
//
//	Runs the two aggregate queries (node counts by kind, relationship
//	counts by type) concurrently and folds in embedding readiness so the
//	model knows up front whether semantic tools will work.
//
// Thread Safety: Safe for concurrent use. All operations are read-only.
type getCodebaseStatsTool struct {
	executor graphchat.QueryExecutor
	embedder graphchat.EmbeddingService
	logger   *slog.Logger
}

// NewGetCodebaseStatsTool creates the get_codebase_stats tool.
func NewGetCodebaseStatsTool(executor graphchat.QueryExecutor, embedder graphchat.EmbeddingService, logger *slog.Logger) Tool {
	if logger == nil {
		logger = slog.Default()
	}
	return &getCodebaseStatsTool{executor: executor, embedder: embedder, logger: logger}
}

func (t *getCodebaseStatsTool) Name() string { return "get_codebase_stats" }

func (t *getCodebaseStatsTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name: "get_codebase_stats",
		Description: "Summarize the indexed codebase: entity counts by kind, relationship " +
			"counts by type, and whether semantic search is available.",
		Parameters: map[string]ParamDef{},
	}
}

func (t *getCodebaseStatsTool) Execute(ctx context.Context, _ map[string]any) (*Result, error) {
	start := time.Now()
	ctx, span := toolsTracer.Start(ctx, "tools.get_codebase_stats")
	defer span.End()

	var nodeRows, relRows []graphchat.Row
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nodeRows, err = t.executor.ExecuteQuery(gctx,
			"MATCH (n:CodeNode) RETURN n.kind, count(n) ORDER BY count(n) DESC")
		return err
	})
	g.Go(func() error {
		var err error
		relRows, err = t.executor.ExecuteQuery(gctx,
			"MATCH ()-[r]->() RETURN label(r), count(r) ORDER BY count(r) DESC")
		return err
	})
	if err := g.Wait(); err != nil {
		t.logger.Warn("stats query failed",
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

	var sb strings.Builder
	sb.WriteString("Codebase statistics:\n\nEntities by kind:\n")
	writeCountRows(&sb, nodeRows, "kind")
	sb.WriteString("\nRelationships by type:\n")
	writeCountRows(&sb, relRows, "type")
	if t.embedder.Ready() {
		sb.WriteString("\nSemantic search: available\n")
	} else {
		sb.WriteString("\nSemantic search: unavailable (embedding service not ready)\n")
	}

	recordToolMetrics(t.Name(), start, true)
	return &Result{Success: true, Output: sb.String(), Duration: time.Since(start)}, nil
}

// writeCountRows renders (label, count) aggregate rows as a bullet list.
func writeCountRows(sb *strings.Builder, rows []graphchat.Row, what string) {
	if len(rows) == 0 {
		fmt.Fprintf(sb, "  (no %s data)\n", what)
		return
	}
	for _, row := range rows {
		label := row.StringField("kind", 0)
		count, _ := row.FloatField("count", 1)
		fmt.Fprintf(sb, "  %s: %d\n", label, int64(count))
	}
}
