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
	"errors"
	"strings"
	"testing"
)

// countingEmbed returns a stub EmbedFunc that records how often it was
// called.
func countingEmbed(vec []float32, err error) (EmbedFunc, *int) {
	calls := 0
	return func(_ context.Context, _ string) ([]float32, error) {
		calls++
		return vec, err
	}, &calls
}

func TestInjectVectorMissingPlaceholderFailsBeforeEmbed(t *testing.T) {
	embed, calls := countingEmbed([]float32{1, 2}, nil)

	_, err := InjectVector(context.Background(), "MATCH (n) RETURN n", "query text", embed)
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Fatalf("err = %v, want ErrInvalidTemplate", err)
	}
	if *calls != 0 {
		t.Errorf("embed called %d times for invalid template, want 0", *calls)
	}
}

func TestInjectVectorLiteralShape(t *testing.T) {
	embed, calls := countingEmbed([]float32{1, 2}, nil)

	got, err := InjectVector(context.Background(),
		"ORDER BY array_distance(n.embedding, {{VECTOR}}) LIMIT 5", "find parsers", embed)
	if err != nil {
		t.Fatalf("InjectVector: %v", err)
	}
	want := "ORDER BY array_distance(n.embedding, CAST([1,2] AS FLOAT[2])) LIMIT 5"
	if got != want {
		t.Errorf("injected = %q, want %q", got, want)
	}
	if *calls != 1 {
		t.Errorf("embed called %d times, want 1", *calls)
	}
}

func TestInjectVectorReplacesEveryOccurrence(t *testing.T) {
	embed, _ := countingEmbed([]float32{0.5}, nil)

	template := "WHERE d({{VECTOR}}) < 1 ORDER BY d({{VECTOR}}), e({{VECTOR}})"
	got, err := InjectVector(context.Background(), template, "q", embed)
	if err != nil {
		t.Fatalf("InjectVector: %v", err)
	}
	if strings.Contains(got, VectorPlaceholder) {
		t.Errorf("placeholder survived substitution: %q", got)
	}
	if n := strings.Count(got, "CAST([0.5] AS FLOAT[1])"); n != 3 {
		t.Errorf("literal appears %d times, want 3", n)
	}
}

func TestInjectVectorEmbedFailure(t *testing.T) {
	embed, _ := countingEmbed(nil, errors.New("connection refused"))

	_, err := InjectVector(context.Background(), "RETURN {{VECTOR}}", "q", embed)
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("err = %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestInjectVectorEmptyVector(t *testing.T) {
	embed, _ := countingEmbed([]float32{}, nil)

	_, err := InjectVector(context.Background(), "RETURN {{VECTOR}}", "q", embed)
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("err = %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestVectorLiteralFormatting(t *testing.T) {
	tests := []struct {
		name string
		vec  []float32
		want string
	}{
		{"integers stay short", []float32{1, 2}, "CAST([1,2] AS FLOAT[2])"},
		{"fractions", []float32{0.25, -0.5}, "CAST([0.25,-0.5] AS FLOAT[2])"},
		{"single", []float32{3}, "CAST([3] AS FLOAT[1])"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VectorLiteral(tt.vec); got != tt.want {
				t.Errorf("VectorLiteral = %q, want %q", got, tt.want)
			}
		})
	}
}
