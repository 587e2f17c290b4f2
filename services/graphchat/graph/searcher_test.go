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
	"errors"
	"strings"
	"testing"

	"github.com/PurpleNewNew/GitNexus/services/graphchat"
)

type fakeExecutor struct {
	lastQuery string
	rows      []graphchat.Row
	err       error
}

func (f *fakeExecutor) ExecuteQuery(_ context.Context, query string) ([]graphchat.Row, error) {
	f.lastQuery = query
	return f.rows, f.err
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Init(context.Context) error { return nil }
func (f *fakeEmbedder) Ready() bool                { return true }
func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return f.vec, f.err
}

func TestSearchMapsRowsToMatches(t *testing.T) {
	exec := &fakeExecutor{rows: []graphchat.Row{
		{Values: []any{"fn_1", "ParseConfig", "function", "internal/config/config.go", float64(42), 0.12}},
	}}
	s := NewSearcher(exec, &fakeEmbedder{vec: []float32{1, 2, 3}})

	matches, err := s.Search(context.Background(), "config parsing", 10, 0.5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.ID != "fn_1" || m.Name != "ParseConfig" || m.StartLine != 42 || m.Distance != 0.12 {
		t.Errorf("match = %+v", m)
	}
}

func TestSearchQueryShape(t *testing.T) {
	exec := &fakeExecutor{}
	s := NewSearcher(exec, &fakeEmbedder{vec: []float32{1, 2}})

	if _, err := s.Search(context.Background(), "anything", 7, 0.5); err != nil {
		t.Fatalf("Search: %v", err)
	}
	q := exec.lastQuery
	if strings.Contains(q, graphchat.VectorPlaceholder) {
		t.Errorf("placeholder survived injection: %q", q)
	}
	if !strings.Contains(q, "CAST([1,2] AS FLOAT[2])") {
		t.Errorf("query missing vector literal: %q", q)
	}
	if !strings.Contains(q, "LIMIT 7") {
		t.Errorf("query missing limit: %q", q)
	}
}

func TestSearchEmbedFailure(t *testing.T) {
	exec := &fakeExecutor{}
	s := NewSearcher(exec, &fakeEmbedder{err: errors.New("backend down")})

	_, err := s.Search(context.Background(), "anything", 10, 0.5)
	if !errors.Is(err, graphchat.ErrEmbeddingUnavailable) {
		t.Errorf("err = %v, want ErrEmbeddingUnavailable", err)
	}
	if exec.lastQuery != "" {
		t.Errorf("executor ran %q despite embedding failure", exec.lastQuery)
	}
}

// scriptedExecutor answers each ExecuteQuery call from the next step
// and records every query it sees.
type scriptedExecutor struct {
	steps   []execStep
	queries []string
}

type execStep struct {
	rows []graphchat.Row
	err  error
}

func (s *scriptedExecutor) ExecuteQuery(_ context.Context, query string) ([]graphchat.Row, error) {
	s.queries = append(s.queries, query)
	if len(s.steps) == 0 {
		return nil, nil
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	return step.rows, step.err
}

func searchRow(id string) graphchat.Row {
	return graphchat.Row{Values: []any{id, "ParseConfig", "function", "internal/config/config.go", float64(42), 0.12}}
}

func TestSearchWithContextExpansionQuery(t *testing.T) {
	exec := &scriptedExecutor{steps: []execStep{
		{rows: []graphchat.Row{searchRow("fn_1"), searchRow("fn_2")}},
		{rows: []graphchat.Row{{Values: []any{"fn_1", "helper", "function", "h.go"}}}},
	}}
	s := NewSearcher(exec, &fakeEmbedder{vec: []float32{1, 2}})

	matches, rows, err := s.SearchWithContext(context.Background(), "config", 10, 9, 0.5)
	if err != nil {
		t.Fatalf("SearchWithContext: %v", err)
	}
	if len(matches) != 2 || len(rows) != 1 {
		t.Fatalf("got %d matches, %d rows", len(matches), len(rows))
	}
	if len(exec.queries) != 2 {
		t.Fatalf("executor ran %d queries, want 2", len(exec.queries))
	}
	q := exec.queries[1]
	if !strings.Contains(q, "[r*1..3]") {
		t.Errorf("expansion query = %q, want hops clamped to 3", q)
	}
	if !strings.Contains(q, "a.id IN ['fn_1', 'fn_2']") {
		t.Errorf("expansion query = %q, want quoted id list", q)
	}
}

func TestSearchWithContextDegradesOnExpansionFailure(t *testing.T) {
	exec := &scriptedExecutor{steps: []execStep{
		{rows: []graphchat.Row{searchRow("fn_1")}},
		{err: errors.New("engine overloaded")},
	}}
	s := NewSearcher(exec, &fakeEmbedder{vec: []float32{1, 2}})

	matches, rows, err := s.SearchWithContext(context.Background(), "config", 10, 2, 0.5)
	if err == nil {
		t.Fatal("want expansion error")
	}
	if len(matches) != 1 {
		t.Errorf("got %d matches alongside the error, want 1", len(matches))
	}
	if rows != nil {
		t.Errorf("rows = %v, want nil on expansion failure", rows)
	}
}

func TestSearchWithContextSkipsExpansionWithoutMatches(t *testing.T) {
	exec := &scriptedExecutor{steps: []execStep{{rows: nil}}}
	s := NewSearcher(exec, &fakeEmbedder{vec: []float32{1, 2}})

	matches, rows, err := s.SearchWithContext(context.Background(), "nothing here", 10, 2, 0.5)
	if err != nil {
		t.Fatalf("SearchWithContext: %v", err)
	}
	if len(matches) != 0 || rows != nil {
		t.Errorf("matches = %v, rows = %v, want empty", matches, rows)
	}
	if len(exec.queries) != 1 {
		t.Errorf("executor ran %d queries, want only the search", len(exec.queries))
	}
}
