// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestArgumentsMap(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		key  string
		want any
	}{
		{"plain object", `{"query": "MATCH (n) RETURN n"}`, "query", "MATCH (n) RETURN n"},
		{"double-encoded string", `"{\"limit\": 5}"`, "limit", float64(5)},
		{"numeric value", `{"limit": 10}`, "limit", float64(10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := ToolCallResponse{Arguments: json.RawMessage(tt.raw)}
			got := tc.ArgumentsMap()
			if got == nil {
				t.Fatal("ArgumentsMap returned nil")
			}
			if got[tt.key] != tt.want {
				t.Errorf("ArgumentsMap()[%q] = %v, want %v", tt.key, got[tt.key], tt.want)
			}
		})
	}
}

func TestArgumentsMapNeverNil(t *testing.T) {
	for _, raw := range []string{"", "not json", "[1,2,3]"} {
		tc := ToolCallResponse{Arguments: json.RawMessage(raw)}
		if got := tc.ArgumentsMap(); got == nil {
			t.Errorf("ArgumentsMap() with %q = nil, want empty map", raw)
		}
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("context deadline exceeded"), "timeout"},
		{errors.New("openai: API returned status 401: unauthorized"), "auth"},
		{errors.New("anthropic: API returned 429: rate limit exceeded"), "rate_limit"},
		{errors.New("ollama: API returned 500"), "server"},
		{errors.New("something exploded"), "unknown"},
	}
	for _, tt := range tests {
		if got := classifyError(tt.err); got != tt.want {
			t.Errorf("classifyError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
