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
	"log/slog"

	"github.com/PurpleNewNew/GitNexus/services/graphchat"
)

// NewDefaultRegistry wires the full graph tool set in its canonical
// order. The order is deliberate: Definitions() presents tools to the
// model in registration order, cheapest and most general first.
func NewDefaultRegistry(
	executor graphchat.QueryExecutor,
	searcher graphchat.SemanticSearcher,
	embedder graphchat.EmbeddingService,
	store graphchat.ContentStore,
	logger *slog.Logger,
) *Registry {
	r := NewRegistry(logger)
	r.Register(NewGetSchemaTool())
	r.Register(NewGraphQueryTool(executor, logger))
	r.Register(NewVectorGraphQueryTool(executor, embedder, logger))
	r.Register(NewSemanticSearchTool(searcher, embedder, logger))
	r.Register(NewSemanticSearchWithContextTool(searcher, embedder, logger))
	r.Register(NewGetCodeContentTool(store, logger))
	r.Register(NewGetCodebaseStatsTool(executor, embedder, logger))
	return r
}
