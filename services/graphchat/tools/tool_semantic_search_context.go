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
// semantic_search_with_context Tool
// =============================================================================

const (
	// contextSearchDefaultLimit is the match count when the model omits
	// the limit parameter. Smaller than plain semantic_search because
	// each match fans out into its graph neighborhood.
	contextSearchDefaultLimit = 5

	// contextSearchDefaultHops is the default expansion depth.
	contextSearchDefaultHops = 2

	// contextSearchMaxHops bounds the expansion depth.
	contextSearchMaxHops = 3

	// contextConnectionCap is the maximum connections rendered per match.
	contextConnectionCap = 15
)

// contextSearchTool combines semantic search with graph neighborhood
// expansion.
//
// Description:
//
//	The searcher does the finding and expanding; it returns flattened
//	rows (one row per match/connection pair). This tool groups them
//	back by match, preserving the order matches first appear, and caps
//	the connections shown per match.
//
// Thread Safety: Safe for concurrent use. All operations are read-only.
type contextSearchTool struct {
	searcher graphchat.SemanticSearcher
	embedder graphchat.EmbeddingService
	logger   *slog.Logger
}

// NewSemanticSearchWithContextTool creates the semantic_search_with_context tool.
func NewSemanticSearchWithContextTool(searcher graphchat.SemanticSearcher, embedder graphchat.EmbeddingService, logger *slog.Logger) Tool {
	if logger == nil {
		logger = slog.Default()
	}
	return &contextSearchTool{searcher: searcher, embedder: embedder, logger: logger}
}

func (t *contextSearchTool) Name() string { return "semantic_search_with_context" }

func (t *contextSearchTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name: "semantic_search_with_context",
		Description: "Find code entities by meaning and include their graph neighborhood: " +
			"callers, callees, containing types, and related entities up to a few hops away. " +
			"Use this when you need to understand how matching code connects to the rest of " +
			"the codebase.",
		Parameters: map[string]ParamDef{
			"query": {
				Type:        "string",
				Description: "Natural-language description of the code to find.",
				Required:    true,
			},
			"limit": {
				Type:        "integer",
				Description: "Maximum number of matches to expand.",
				Required:    false,
				Default:     contextSearchDefaultLimit,
			},
			"hops": {
				Type:        "integer",
				Description: "Expansion depth in relationship hops (1-3).",
				Required:    false,
				Default:     contextSearchDefaultHops,
			},
		},
	}
}

func (t *contextSearchTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	start := time.Now()
	ctx, span := toolsTracer.Start(ctx, "tools.semantic_search_with_context")
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
	limit := clampInt(intParamOr(params, "limit", contextSearchDefaultLimit), 1, 20)
	hops := clampInt(intParamOr(params, "hops", contextSearchDefaultHops), 1, contextSearchMaxHops)
	span.SetAttributes(attribute.Int("search.hops", hops))

	if !t.embedder.Ready() {
		recordToolMetrics(t.Name(), start, false)
		return &Result{
			Success: false,
			Output: "Semantic search is not available: the embedding service is not ready. " +
				"Use graph_query to search by exact names instead.",
			Duration: time.Since(start),
		}, nil
	}

	matches, rows, err := t.searcher.SearchWithContext(ctx, query, limit, hops, semanticSearchMaxDistance)
	if err != nil {
		t.logger.Warn("context search failed",
			slog.String("tool", t.Name()),
			slog.String("error", err.Error()))
		span.RecordError(err)
		recordToolMetrics(t.Name(), start, false)
		if len(matches) > 0 {
			// The search itself succeeded; degrade to the bare matches.
			return &Result{
				Success:  false,
				Output:   renderMatches(matches) + "\n(Graph context expansion failed: " + err.Error() + ")",
				Duration: time.Since(start),
			}, nil
		}
		return &Result{
			Success:  false,
			Output:   "Semantic search failed: " + err.Error(),
			Duration: time.Since(start),
		}, nil
	}
	if len(matches) == 0 {
		recordToolMetrics(t.Name(), start, true)
		return &Result{Success: true, Output: graphchat.NoResultsMessage, Duration: time.Since(start)}, nil
	}

	recordToolMetrics(t.Name(), start, true)
	return &Result{
		Success:  true,
		Output:   renderGroupedContext(matches, rows),
		Duration: time.Since(start),
	}, nil
}

// renderGroupedContext groups flattened expansion rows back under their
// matches. Grouping key is the row's match id, read name-first with a
// positional fallback; groups appear in the order their id first occurs
// in the row stream, and each group shows at most contextConnectionCap
// connections.
func renderGroupedContext(matches []graphchat.SemanticMatch, rows []graphchat.Row) string {
	byID := make(map[string]graphchat.SemanticMatch, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}

	order := make([]string, 0, len(matches))
	grouped := make(map[string][]string)
	for _, row := range rows {
		id := row.StringField("id", 0)
		if id == "" {
			continue
		}
		if _, seen := grouped[id]; !seen {
			order = append(order, id)
		}
		name := row.StringField("name", 1)
		kind := row.StringField("kind", 2)
		file := row.StringField("file_path", 3)
		conn := name
		if kind != "" {
			conn = fmt.Sprintf("%s (%s)", name, kind)
		}
		if file != "" {
			conn += " at " + file
		}
		grouped[id] = append(grouped[id], conn)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d matches with graph context:\n", len(matches))
	n := 0
	writeGroup := func(id string, conns []string) {
		n++
		if m, known := byID[id]; known {
			fmt.Fprintf(&sb, "\n%d. %s (%s) at %s:%d [relevance: %.2f]\n",
				n, m.Name, m.Kind, m.FilePath, m.StartLine, 1-m.Distance)
		} else {
			fmt.Fprintf(&sb, "\n%d. %s\n", n, id)
		}
		if len(conns) == 0 {
			sb.WriteString("   No graph connections found.\n")
			return
		}
		shown := conns
		if len(conns) > contextConnectionCap {
			shown = conns[:contextConnectionCap]
		}
		for _, c := range shown {
			sb.WriteString("   - " + c + "\n")
		}
		if extra := len(conns) - len(shown); extra > 0 {
			fmt.Fprintf(&sb, "   ... and %d more\n", extra)
		}
	}

	for _, id := range order {
		writeGroup(id, grouped[id])
	}
	// Matches the expansion returned no rows for still get an entry so
	// the model sees every hit it asked about.
	for _, m := range matches {
		if _, hasRows := grouped[m.ID]; !hasRows {
			writeGroup(m.ID, nil)
		}
	}
	return sb.String()
}
