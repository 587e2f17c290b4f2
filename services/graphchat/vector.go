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

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// Vector Placeholder Injection
// =============================================================================

// VectorPlaceholder is the exact token a vector query template must
// contain. Every occurrence is replaced with the embedded vector literal.
const VectorPlaceholder = "{{VECTOR}}"

// EmbedFunc converts natural-language text into an embedding vector.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// InjectVector embeds search text and substitutes the resulting vector
// literal into a query template.
//
// Description:
//
//	Validates that the template contains VectorPlaceholder before doing
//	any embedding work; a malformed template never costs an embedding
//	call. On success every occurrence of the placeholder is replaced with
//	the same typed literal of the form:
//
//	    CAST([v1,v2,...] AS FLOAT[dim])
//
//	where dim is the length of the embedding.
//
// Inputs:
//   - ctx: Context for cancellation. Must not be nil.
//   - template: Query text containing one or more placeholders.
//   - text: Natural-language search text to embed.
//   - embed: Embedding function. Must not be nil.
//
// Outputs:
//   - string: The executable query with all placeholders substituted.
//   - error: ErrInvalidTemplate when the placeholder is missing;
//     ErrEmbeddingUnavailable (wrapped) when embedding fails.
//
// Thread Safety: Safe for concurrent use.
func InjectVector(ctx context.Context, template, text string, embed EmbedFunc) (string, error) {
	if !strings.Contains(template, VectorPlaceholder) {
		return "", ErrInvalidTemplate
	}

	vec, err := embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(vec) == 0 {
		return "", fmt.Errorf("%w: embedding backend returned an empty vector", ErrEmbeddingUnavailable)
	}

	return strings.ReplaceAll(template, VectorPlaceholder, VectorLiteral(vec)), nil
}

// VectorLiteral renders an embedding as a typed query literal the graph
// engine can consume directly: CAST([v1,v2,...] AS FLOAT[dim]).
//
// Components are formatted with the shortest representation that
// round-trips at float32 precision, so [1, 2] renders as "[1,2]" rather
// than "[1.000000,2.000000]".
func VectorLiteral(vec []float32) string {
	var sb strings.Builder
	sb.WriteString("CAST([")
	for i, v := range vec {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	fmt.Fprintf(&sb, "] AS FLOAT[%d])", len(vec))
	return sb.String()
}
