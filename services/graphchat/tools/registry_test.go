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
	"time"
)

// failingTool returns a programming error from Execute.
type failingTool struct{}

func (failingTool) Name() string { return "failing" }
func (failingTool) Definition() ToolDefinition {
	return ToolDefinition{Name: "failing", Parameters: map[string]ParamDef{}}
}
func (failingTool) Execute(_ context.Context, _ map[string]any) (*Result, error) {
	return nil, errors.New("nil dependency")
}

func TestRegistryDispatchUnknownTool(t *testing.T) {
	r := NewRegistry(nil)
	got := r.Dispatch(context.Background(), "nonexistent", nil)
	if !strings.Contains(got, `unknown tool "nonexistent"`) {
		t.Errorf("Dispatch = %q, want unknown-tool text", got)
	}
}

func TestRegistryDispatchRecoversToolError(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(failingTool{})

	got := r.Dispatch(context.Background(), "failing", nil)
	if !strings.Contains(got, "Error executing failing") || !strings.Contains(got, "nil dependency") {
		t.Errorf("Dispatch = %q, want recovered error text", got)
	}
}

func TestRegistryDefinitionsOrder(t *testing.T) {
	r := NewDefaultRegistry(&stubExecutor{}, &stubSearcher{}, &stubEmbedder{}, &stubStore{}, nil)

	defs := r.Definitions()
	want := []string{
		"get_schema",
		"graph_query",
		"vector_graph_query",
		"semantic_search",
		"semantic_search_with_context",
		"get_code_content",
		"get_codebase_stats",
	}
	if len(defs) != len(want) {
		t.Fatalf("got %d definitions, want %d", len(defs), len(want))
	}
	for i, name := range want {
		if defs[i].Name != name {
			t.Errorf("defs[%d].Name = %q, want %q", i, defs[i].Name, name)
		}
	}
}

func TestRegistryGet(t *testing.T) {
	r := NewDefaultRegistry(&stubExecutor{}, &stubSearcher{}, &stubEmbedder{}, &stubStore{}, nil)
	if _, ok := r.Get("graph_query"); !ok {
		t.Error("Get(graph_query) = false, want registered tool")
	}
	if _, ok := r.Get("nope"); ok {
		t.Error("Get(nope) = true, want false")
	}
}

func TestRegistryReplaceKeepsPosition(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(NewGetSchemaTool())
	r.Register(NewGraphQueryTool(&stubExecutor{}, nil))
	r.Register(NewGetSchemaTool()) // re-register

	defs := r.Definitions()
	if len(defs) != 2 || defs[0].Name != "get_schema" {
		t.Errorf("definitions = %+v, want get_schema kept first", defs)
	}
}

func TestDispatchResultDurationSet(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(NewGetSchemaTool())

	tool, _ := r.Get("get_schema")
	res, err := tool.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Duration < 0 || res.Duration > time.Minute {
		t.Errorf("Duration = %v, want a plausible wall-clock value", res.Duration)
	}
}
