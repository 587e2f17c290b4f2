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
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/PurpleNewNew/GitNexus/services/graphchat"
)

// =============================================================================
// get_code_content Tool
// =============================================================================

// getCodeContentTool retrieves the stored source text for a graph node.
//
// Description:
//
//	Two soft failure modes: an unknown node id produces a "not found"
//	observation, and a node indexed without captured source produces a
//	structured summary of its metadata so the model still learns where
//	the entity lives.
//
// Thread Safety: Safe for concurrent use. All operations are read-only.
type getCodeContentTool struct {
	store  graphchat.ContentStore
	logger *slog.Logger
}

// NewGetCodeContentTool creates the get_code_content tool.
func NewGetCodeContentTool(store graphchat.ContentStore, logger *slog.Logger) Tool {
	if logger == nil {
		logger = slog.Default()
	}
	return &getCodeContentTool{store: store, logger: logger}
}

func (t *getCodeContentTool) Name() string { return "get_code_content" }

func (t *getCodeContentTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name: "get_code_content",
		Description: "Retrieve the source code of a specific entity by its graph node id " +
			"(as returned by graph_query or semantic_search).",
		Parameters: map[string]ParamDef{
			"nodeId": {
				Type:        "string",
				Description: "The graph node id of the entity.",
				Required:    true,
			},
		},
	}
}

func (t *getCodeContentTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	start := time.Now()
	ctx, span := toolsTracer.Start(ctx, "tools.get_code_content")
	defer span.End()

	nodeID, ok := parseStringParam(params["nodeId"])
	if !ok || nodeID == "" {
		recordToolMetrics(t.Name(), start, false)
		return &Result{
			Success:  false,
			Output:   "Error: the 'nodeId' parameter is required and must be a string.",
			Duration: time.Since(start),
		}, nil
	}
	span.SetAttributes(attribute.String("node.id", nodeID))

	content, err := t.store.NodeContent(ctx, nodeID)
	if err != nil {
		t.logger.Warn("content lookup failed",
			slog.String("tool", t.Name()),
			slog.String("node_id", nodeID),
			slog.String("error", err.Error()))
		span.RecordError(err)
		recordToolMetrics(t.Name(), start, false)
		return &Result{
			Success:  false,
			Output:   "Error retrieving code content: " + err.Error(),
			Duration: time.Since(start),
		}, nil
	}
	if content == nil {
		recordToolMetrics(t.Name(), start, false)
		return &Result{
			Success: false,
			Output: fmt.Sprintf("No node found with id %q. "+
				"Use graph_query or semantic_search to find valid node ids.", nodeID),
			Duration: time.Since(start),
		}, nil
	}

	recordToolMetrics(t.Name(), start, true)
	if content.Source == "" {
		// Indexed without captured source; summarize what we do know.
		return &Result{
			Success: true,
			Output: fmt.Sprintf("%s %q at %s (lines %d-%d)\n"+
				"No source text was stored for this node. Inspect the file directly.",
				content.Kind, content.Name, content.FilePath,
				content.StartLine, content.EndLine),
			Duration: time.Since(start),
		}, nil
	}
	return &Result{
		Success: true,
		Output: fmt.Sprintf("%s %q at %s (lines %d-%d):\n\n```\n%s\n```",
			content.Kind, content.Name, content.FilePath,
			content.StartLine, content.EndLine, content.Source),
		Duration: time.Since(start),
	}, nil
}
