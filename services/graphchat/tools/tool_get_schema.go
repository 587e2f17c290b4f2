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
	"time"

	"github.com/PurpleNewNew/GitNexus/services/graphchat"
)

// =============================================================================
// get_schema Tool
// =============================================================================

// getSchemaTool serves the static graph schema description.
//
// Description:
//
//	Pure and deterministic: no collaborators, no I/O, byte-identical
//	output on every call. The model is told to call this before writing
//	Cypher so it never guesses at table names.
//
// Thread Safety: Safe for concurrent use.
type getSchemaTool struct{}

// NewGetSchemaTool creates the get_schema tool.
func NewGetSchemaTool() Tool { return getSchemaTool{} }

func (getSchemaTool) Name() string { return "get_schema" }

func (getSchemaTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name: "get_schema",
		Description: "Return the code knowledge graph schema: node tables, relationship " +
			"tables, and example queries. Call this before writing graph_query Cypher.",
		Parameters: map[string]ParamDef{},
	}
}

func (getSchemaTool) Execute(_ context.Context, _ map[string]any) (*Result, error) {
	start := time.Now()
	recordToolMetrics("get_schema", start, true)
	return &Result{
		Success:  true,
		Output:   graphchat.SchemaDescription,
		Duration: time.Since(start),
	}, nil
}
