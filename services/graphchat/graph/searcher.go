// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/PurpleNewNew/GitNexus/services/graphchat"
)

// Searcher implements graphchat.SemanticSearcher as a vector query over
// the graph's embedding column.
//
// Description:
//
//	Built on the same two primitives the tools use: vector injection and
//	query execution. The search text is embedded once, substituted into
//	a distance-ordered query template, and the resulting rows are mapped
//	back to matches.
//
// Thread Safety: Safe for concurrent use.
type Searcher struct {
	executor graphchat.QueryExecutor
	embedder graphchat.EmbeddingService
}

// NewSearcher wires a Searcher over an executor and embedder.
func NewSearcher(executor graphchat.QueryExecutor, embedder graphchat.EmbeddingService) *Searcher {
	return &Searcher{executor: executor, embedder: embedder}
}

// searchTemplate orders embedded nodes by distance to {{VECTOR}}.
// %d placeholders: maxDistance is inlined as %f, limit as %d.
const searchTemplate = "MATCH (n:CodeNode) WHERE n.embedding IS NOT NULL " +
	"WITH n, array_distance(n.embedding, {{VECTOR}}) AS dist " +
	"WHERE dist <= %f " +
	"RETURN n.id, n.name, n.kind, n.file_path, n.start_line, dist " +
	"ORDER BY dist LIMIT %d"

// Search implements graphchat.SemanticSearcher.
func (s *Searcher) Search(ctx context.Context, text string, limit int, maxDistance float64) ([]graphchat.SemanticMatch, error) {
	template := fmt.Sprintf(searchTemplate, maxDistance, limit)
	query, err := graphchat.InjectVector(ctx, template, text, s.embedder.Embed)
	if err != nil {
		return nil, err
	}

	rows, err := s.executor.ExecuteQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	matches := make([]graphchat.SemanticMatch, 0, len(rows))
	for _, row := range rows {
		line, _ := row.FloatField("start_line", 4)
		dist, _ := row.FloatField("dist", 5)
		matches = append(matches, graphchat.SemanticMatch{
			ID:        row.StringField("id", 0),
			Name:      row.StringField("name", 1),
			Kind:      row.StringField("kind", 2),
			FilePath:  row.StringField("file_path", 3),
			StartLine: int(line),
			Distance:  dist,
		})
	}
	return matches, nil
}

// maxExpansionHops bounds neighborhood expansion depth regardless of
// what the caller asks for.
const maxExpansionHops = 3

// SearchWithContext implements graphchat.SemanticSearcher.
//
// Description:
//
//	Search followed by one neighborhood query over all match ids. The
//	engine flattens the expansion to one row per (match, connection)
//	pair, match id first. An expansion failure after a successful
//	search returns the matches with the error so the caller can still
//	use them.
func (s *Searcher) SearchWithContext(ctx context.Context, text string, limit, hops int, maxDistance float64) ([]graphchat.SemanticMatch, []graphchat.Row, error) {
	matches, err := s.Search(ctx, text, limit, maxDistance)
	if err != nil {
		return nil, nil, err
	}
	if len(matches) == 0 {
		return matches, nil, nil
	}

	rows, err := s.executor.ExecuteQuery(ctx, expansionQuery(matches, hops))
	if err != nil {
		return matches, nil, err
	}
	return matches, rows, nil
}

// expansionQuery builds the neighborhood query for a set of matches.
func expansionQuery(matches []graphchat.SemanticMatch, hops int) string {
	if hops < 1 {
		hops = 1
	}
	if hops > maxExpansionHops {
		hops = maxExpansionHops
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, fmt.Sprintf("'%s'", strings.ReplaceAll(m.ID, "'", "\\'")))
	}
	return fmt.Sprintf(
		"MATCH (a:CodeNode)-[r*1..%d]-(b:CodeNode) WHERE a.id IN [%s] "+
			"RETURN a.id, b.name, b.kind, b.file_path",
		hops, strings.Join(ids, ", "))
}
