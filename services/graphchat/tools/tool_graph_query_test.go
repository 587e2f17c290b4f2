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
	"errors"
	"strings"
	"testing"

	"github.com/PurpleNewNew/GitNexus/services/graphchat"
)

func TestGraphQueryFormatsRows(t *testing.T) {
	exec := &stubExecutor{rows: []graphchat.Row{
		{Values: []any{"parseConfig", "function"}},
	}}
	tool := NewGraphQueryTool(exec, nil)

	res, err := tool.Execute(context.Background(), map[string]any{"query": "MATCH (n) RETURN n"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Success {
		t.Error("Success = false for a clean query")
	}
	if !strings.Contains(res.Output, "Row 1: parseConfig, function") {
		t.Errorf("Output = %q, want formatted row", res.Output)
	}
}

func TestGraphQueryEmptyRowsSentinel(t *testing.T) {
	exec := &stubExecutor{rows: nil}
	tool := NewGraphQueryTool(exec, nil)

	res, err := tool.Execute(context.Background(), map[string]any{"query": "MATCH (n) RETURN n"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Output != graphchat.NoResultsMessage {
		t.Errorf("Output = %q, want %q", res.Output, graphchat.NoResultsMessage)
	}
}

func TestGraphQueryRendersBackendFailure(t *testing.T) {
	exec := &stubExecutor{err: &graphchat.QueryError{
		Kind:    "Binder exception",
		Message: "table Foo does not exist",
	}}
	tool := NewGraphQueryTool(exec, nil)

	res, err := tool.Execute(context.Background(), map[string]any{"query": "MATCH (f:Foo) RETURN f"})
	if err != nil {
		t.Fatalf("Execute must not surface backend errors, got %v", err)
	}
	want := "Binder exception: table Foo does not exist\n\nPlease check your query syntax and try again."
	if res.Output != want {
		t.Errorf("Output = %q, want %q", res.Output, want)
	}
	if res.Success {
		t.Error("Success = true for a failed query")
	}
}

func TestGraphQueryGenericFailureKind(t *testing.T) {
	exec := &stubExecutor{err: errors.New("connection reset")}
	tool := NewGraphQueryTool(exec, nil)

	res, _ := tool.Execute(context.Background(), map[string]any{"query": "MATCH (n) RETURN n"})
	if !strings.HasPrefix(res.Output, "Query execution failed: connection reset") {
		t.Errorf("Output = %q, want generic kind prefix", res.Output)
	}
	if !strings.Contains(res.Output, "Please check your query syntax and try again.") {
		t.Errorf("Output = %q, want retry hint", res.Output)
	}
}

func TestGraphQueryMissingParam(t *testing.T) {
	tool := NewGraphQueryTool(&stubExecutor{}, nil)

	tests := []map[string]any{
		{},
		{"query": ""},
		{"query": 42},
	}
	for _, params := range tests {
		res, err := tool.Execute(context.Background(), params)
		if err != nil {
			t.Fatalf("Execute(%v): %v", params, err)
		}
		if res.Success || !strings.Contains(res.Output, "'query' parameter") {
			t.Errorf("Execute(%v) output = %q, want parameter error text", params, res.Output)
		}
	}
}
