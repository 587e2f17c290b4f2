// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graphchat

import "context"

// =============================================================================
// External Capabilities
// =============================================================================
//
// The mediation layer owns none of the heavy machinery. The graph engine,
// the semantic index, and the embedding backend are collaborators reached
// through the narrow interfaces below; anything satisfying them plugs in.

// QueryExecutor runs read queries against the code knowledge graph.
type QueryExecutor interface {
	// ExecuteQuery runs a single read query and returns its rows.
	// Failures should be returned as *QueryError where the engine
	// provides a classification.
	ExecuteQuery(ctx context.Context, query string) ([]Row, error)
}

// SemanticMatch is one hit from the semantic index.
type SemanticMatch struct {
	// ID is the graph node identifier of the matched entity.
	ID string

	// Name is the entity's declared name.
	Name string

	// Kind is the entity kind (function, class, method, ...).
	Kind string

	// FilePath locates the entity's source file.
	FilePath string

	// StartLine is the first line of the entity's definition.
	StartLine int

	// Distance is the vector distance from the query embedding.
	// Lower is closer; relevance is 1 - Distance.
	Distance float64
}

// SemanticSearcher finds graph entities by embedding similarity.
type SemanticSearcher interface {
	// Search returns up to limit matches within maxDistance of the
	// query text's embedding, closest first.
	Search(ctx context.Context, text string, limit int, maxDistance float64) ([]SemanticMatch, error)

	// SearchWithContext runs Search and then expands each match's graph
	// neighborhood up to hops relationship hops. The expansion comes
	// back flattened: one row per (match, connection) pair with the
	// match id in the first column. When the expansion fails after a
	// successful search, the matches are returned alongside the error
	// so callers can degrade to them.
	SearchWithContext(ctx context.Context, text string, limit, hops int, maxDistance float64) ([]SemanticMatch, []Row, error)
}

// EmbeddingService produces embedding vectors for query text.
//
// Implementations initialize once (possibly with a backend fallback) and
// then report readiness; a failed Embed call must never flip Ready back
// to false.
type EmbeddingService interface {
	// Init prepares the service. Safe to call once per process start.
	Init(ctx context.Context) error

	// Ready reports whether embeddings can currently be produced.
	Ready() bool

	// Embed converts text into an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ContentStore retrieves stored source snippets for graph nodes.
type ContentStore interface {
	// NodeContent returns the node's metadata row (with its stored
	// source text when present). A nil row with a nil error means the
	// node does not exist.
	NodeContent(ctx context.Context, nodeID string) (*NodeContent, error)
}

// NodeContent is the stored detail for a single graph node.
type NodeContent struct {
	ID        string
	Name      string
	Kind      string
	FilePath  string
	StartLine int
	EndLine   int

	// Source is the captured snippet text; empty when the indexer did
	// not store content for this node.
	Source string
}
