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

	"go.opentelemetry.io/otel/attribute"

	"github.com/PurpleNewNew/GitNexus/services/graphchat"
)

// =============================================================================
// semantic_search Tool
// =============================================================================

// semanticSearchDefaultLimit is the result count when the model omits
// the limit parameter.
const semanticSearchDefaultLimit = 10

// semanticSearchMaxDistance filters out matches whose embedding distance
// exceeds this threshold; beyond it, similarity is noise.
const semanticSearchMaxDistance = 0.5

// semanticSearchTool finds code entities by meaning rather than name.
//
// Thread Safety: Safe for concurrent use. All operations are read-only.
type semanticSearchTool struct {
	searcher graphchat.SemanticSearcher
	embedder graphchat.EmbeddingService
	logger   *slog.Logger
}

// NewSemanticSearchTool creates the semantic_search tool.
func NewSemanticSearchTool(searcher graphchat.SemanticSearcher, embedder graphchat.EmbeddingService, logger *slog.Logger) Tool {
	if logger == nil {
		logger = slog.Default()
	}
	return &semanticSearchTool{searcher: searcher, embedder: embedder, logger: logger}
}

func (t *semanticSearchTool) Name() string { return "semantic_search" }

func (t *semanticSearchTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name: "semantic_search",
		Description: "Find code entities by meaning. Describe what the code does " +
			"(e.g. 'parse configuration from environment variables') and get the " +
			"closest matching functions, classes, and methods with relevance scores.",
		Parameters: map[string]ParamDef{
			"query": {
				Type:        "string",
				Description: "Natural-language description of the code to find.",
				Required:    true,
			},
			"limit": {
				Type:        "integer",
				Description: "Maximum number of matches to return.",
				Required:    false,
				Default:     semanticSearchDefaultLimit,
			},
		},
	}
}

func (t *semanticSearchTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	start := time.Now()
	ctx, span := toolsTracer.Start(ctx, "tools.semantic_search")
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
	limit := clampInt(intParamOr(params, "limit", semanticSearchDefaultLimit), 1, 50)

	// Readiness is checked before touching the search capability at all.
	if !t.embedder.Ready() {
		recordToolMetrics(t.Name(), start, false)
		return &Result{
			Success: false,
			Output: "Semantic search is not available: the embedding service is not ready. " +
				"Use graph_query to search by exact names instead.",
			Duration: time.Since(start),
		}, nil
	}

	matches, err := t.searcher.Search(ctx, query, limit, semanticSearchMaxDistance)
	if err != nil {
		t.logger.Warn("semantic search failed",
			slog.String("tool", t.Name()),
			slog.String("error", err.Error()))
		span.RecordError(err)
		recordToolMetrics(t.Name(), start, false)
		return &Result{
			Success:  false,
			Output:   "Semantic search failed: " + err.Error(),
			Duration: time.Since(start),
		}, nil
	}

	span.SetAttributes(attribute.Int("result.matches", len(matches)))
	recordToolMetrics(t.Name(), start, true)
	return &Result{
		Success:  true,
		Output:   renderMatches(matches),
		Duration: time.Since(start),
	}, nil
}

// renderMatches formats semantic matches with relevance scores.
func renderMatches(matches []graphchat.SemanticMatch) string {
	if len(matches) == 0 {
		return graphchat.NoResultsMessage
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d matches:\n", len(matches))
	for i, m := range matches {
		fmt.Fprintf(&sb, "%d. %s (%s) at %s:%d [relevance: %.2f]\n",
			i+1, m.Name, m.Kind, m.FilePath, m.StartLine, 1-m.Distance)
	}
	return sb.String()
}
