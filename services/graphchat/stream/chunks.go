// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package stream defines the uniform chunk protocol delivered to chat
// consumers and the translator that produces it from raw agent events.
package stream

// =============================================================================
// Consumer-Facing Chunk Protocol
// =============================================================================

// ChunkType discriminates the chunk union.
type ChunkType string

const (
	// ChunkContent carries a fragment of assistant text.
	ChunkContent ChunkType = "content"

	// ChunkToolCall announces a tool invocation that has started.
	ChunkToolCall ChunkType = "tool_call"

	// ChunkToolResult carries a completed tool invocation's output.
	ChunkToolResult ChunkType = "tool_result"

	// ChunkError is a terminal chunk reporting stream failure.
	ChunkError ChunkType = "error"

	// ChunkDone is a terminal chunk marking normal completion.
	ChunkDone ChunkType = "done"
)

// CallStatus tracks a tool invocation's lifecycle.
type CallStatus string

const (
	StatusPending   CallStatus = "pending"
	StatusRunning   CallStatus = "running"
	StatusCompleted CallStatus = "completed"
	StatusError     CallStatus = "error"
)

// ToolCallRecord describes one tool invocation as seen by the consumer.
type ToolCallRecord struct {
	// ID identifies the invocation. Synthesized by the translator when
	// the upstream event carries none.
	ID string `json:"id"`

	// Name is the tool's registered name.
	Name string `json:"name"`

	// Args is the invocation's argument map. Empty on result chunks:
	// upstream completion events do not echo arguments back.
	Args map[string]any `json:"args,omitempty"`

	// Result is the stringified tool output. Only set on tool_result.
	Result string `json:"result,omitempty"`

	// Status is the invocation lifecycle state.
	Status CallStatus `json:"status"`
}

// Chunk is one element of the uniform stream handed to consumers.
// Exactly one of Content, ToolCall, or Error is meaningful, selected by
// Type; ChunkDone carries no payload.
type Chunk struct {
	Type ChunkType `json:"type"`

	// Content is the text fragment for ChunkContent.
	Content string `json:"content,omitempty"`

	// ToolCall is the invocation record for ChunkToolCall / ChunkToolResult.
	ToolCall *ToolCallRecord `json:"tool_call,omitempty"`

	// Error is the failure description for ChunkError.
	Error string `json:"error,omitempty"`
}

// Terminal reports whether the chunk ends the stream.
func (c Chunk) Terminal() bool {
	return c.Type == ChunkDone || c.Type == ChunkError
}

// =============================================================================
// Upstream Agent Events
// =============================================================================

// EventType discriminates raw events emitted by the agent loop.
type EventType string

const (
	// EventToken is a model output fragment. Text holds the payload.
	EventToken EventType = "token"

	// EventToolStart marks the beginning of a tool invocation.
	EventToolStart EventType = "tool_start"

	// EventToolEnd marks the completion of a tool invocation.
	EventToolEnd EventType = "tool_end"
)

// AgentEvent is one raw event from the agent loop. The fields populated
// depend on Type; unknown combinations are tolerated and skipped.
type AgentEvent struct {
	Type EventType

	// Text is the token payload. Declared as any because upstream
	// providers occasionally emit structured token payloads; only
	// non-empty strings are forwarded, everything else is dropped.
	Text any

	// CallID is the upstream invocation id, empty when the provider
	// assigns none.
	CallID string

	// ToolName names the tool for tool_start / tool_end events.
	ToolName string

	// Args is the invocation argument map for tool_start events.
	Args map[string]any

	// Output is the tool's observation text for tool_end events.
	Output any
}
