// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package stream

import (
	"context"
	"errors"
	"io"
	"testing"
)

// sliceSource replays a fixed event list, then fails with final.
type sliceSource struct {
	events []AgentEvent
	final  error
	pos    int
}

func (s *sliceSource) Next(_ context.Context) (AgentEvent, error) {
	if s.pos >= len(s.events) {
		return AgentEvent{}, s.final
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

func collect(t *testing.T, src EventSource) []Chunk {
	t.Helper()
	var chunks []Chunk
	for c := range NewTranslator(nil).Run(context.Background(), src) {
		chunks = append(chunks, c)
	}
	return chunks
}

func TestTranslatorPreservesOrder(t *testing.T) {
	src := &sliceSource{
		events: []AgentEvent{
			{Type: EventToken, Text: "thinking "},
			{Type: EventToolStart, CallID: "tc1", ToolName: "graph_query", Args: map[string]any{"query": "MATCH (n) RETURN n"}},
			{Type: EventToolEnd, CallID: "tc1", ToolName: "graph_query", Output: "Row 1: x"},
			{Type: EventToken, Text: "done"},
		},
		final: io.EOF,
	}
	chunks := collect(t, src)

	wantTypes := []ChunkType{ChunkContent, ChunkToolCall, ChunkToolResult, ChunkContent, ChunkDone}
	if len(chunks) != len(wantTypes) {
		t.Fatalf("got %d chunks, want %d: %+v", len(chunks), len(wantTypes), chunks)
	}
	for i, want := range wantTypes {
		if chunks[i].Type != want {
			t.Errorf("chunk[%d].Type = %q, want %q", i, chunks[i].Type, want)
		}
	}
	if chunks[1].ToolCall.Status != StatusRunning {
		t.Errorf("tool_call status = %q, want %q", chunks[1].ToolCall.Status, StatusRunning)
	}
	if chunks[2].ToolCall.Status != StatusCompleted {
		t.Errorf("tool_result status = %q, want %q", chunks[2].ToolCall.Status, StatusCompleted)
	}
	if chunks[2].ToolCall.Result != "Row 1: x" {
		t.Errorf("tool_result result = %q, want %q", chunks[2].ToolCall.Result, "Row 1: x")
	}
}

func TestTranslatorExactlyOneTerminal(t *testing.T) {
	tests := []struct {
		name  string
		final error
		want  ChunkType
	}{
		{"clean exhaustion", io.EOF, ChunkDone},
		{"source failure", errors.New("upstream broke"), ChunkError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &sliceSource{
				events: []AgentEvent{{Type: EventToken, Text: "hi"}},
				final:  tt.final,
			}
			chunks := collect(t, src)

			terminals := 0
			for _, c := range chunks {
				if c.Terminal() {
					terminals++
				}
			}
			if terminals != 1 {
				t.Fatalf("got %d terminal chunks, want exactly 1: %+v", terminals, chunks)
			}
			last := chunks[len(chunks)-1]
			if last.Type != tt.want {
				t.Errorf("last chunk type = %q, want %q", last.Type, tt.want)
			}
			if !last.Terminal() {
				t.Error("terminal chunk is not last")
			}
		})
	}
}

func TestTranslatorErrorCarriesMessage(t *testing.T) {
	src := &sliceSource{final: errors.New("model exploded")}
	chunks := collect(t, src)
	if len(chunks) != 1 || chunks[0].Type != ChunkError {
		t.Fatalf("chunks = %+v, want single error chunk", chunks)
	}
	if chunks[0].Error != "model exploded" {
		t.Errorf("error = %q, want %q", chunks[0].Error, "model exploded")
	}
}

func TestTranslatorDropsNonStringTokens(t *testing.T) {
	src := &sliceSource{
		events: []AgentEvent{
			{Type: EventToken, Text: map[string]any{"structured": true}},
			{Type: EventToken, Text: 42},
			{Type: EventToken, Text: ""},
			{Type: EventToken, Text: "kept"},
		},
		final: io.EOF,
	}
	chunks := collect(t, src)

	var contents []string
	for _, c := range chunks {
		if c.Type == ChunkContent {
			contents = append(contents, c.Content)
		}
	}
	if len(contents) != 1 || contents[0] != "kept" {
		t.Errorf("content chunks = %v, want [kept]", contents)
	}
}

func TestTranslatorSynthesizesCallIDs(t *testing.T) {
	src := &sliceSource{
		events: []AgentEvent{
			{Type: EventToolStart, ToolName: "get_schema"},
			{Type: EventToolEnd, ToolName: "get_schema", Output: "schema"},
		},
		final: io.EOF,
	}
	chunks := collect(t, src)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	startID := chunks[0].ToolCall.ID
	endID := chunks[1].ToolCall.ID
	if startID == "" || endID == "" {
		t.Fatal("translator left a call id empty")
	}
	if startID == endID {
		t.Errorf("per-event fallback ids collided: %q", startID)
	}
}

func TestTranslatorKeepsUpstreamCallIDs(t *testing.T) {
	src := &sliceSource{
		events: []AgentEvent{
			{Type: EventToolStart, CallID: "call_abc", ToolName: "graph_query"},
		},
		final: io.EOF,
	}
	chunks := collect(t, src)
	if chunks[0].ToolCall.ID != "call_abc" {
		t.Errorf("call id = %q, want upstream id call_abc", chunks[0].ToolCall.ID)
	}
}

func TestTranslatorSkipsUnknownEvents(t *testing.T) {
	src := &sliceSource{
		events: []AgentEvent{
			{Type: EventType("mystery")},
			{Type: EventToken, Text: "ok"},
		},
		final: io.EOF,
	}
	chunks := collect(t, src)
	if len(chunks) != 2 || chunks[0].Type != ChunkContent {
		t.Errorf("chunks = %+v, want content then done", chunks)
	}
}

func TestTranslatorContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	blocked := make(chan struct{})
	src := blockingSource{unblock: blocked}

	out := NewTranslator(nil).Run(ctx, src)
	cancel()

	// The channel must close without a terminal chunk being forced
	// through a cancelled consumer.
	for range out {
	}
	close(blocked)
}

// blockingSource blocks in Next until the context is cancelled.
type blockingSource struct {
	unblock chan struct{}
}

func (s blockingSource) Next(ctx context.Context) (AgentEvent, error) {
	select {
	case <-ctx.Done():
		return AgentEvent{}, ctx.Err()
	case <-s.unblock:
		return AgentEvent{}, io.EOF
	}
}
