// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm contains the provider-agnostic chat model contract and the
// wire-level clients implementing it.
package llm

import (
	"context"
	"encoding/json"
)

// ToolDef is the generic tool definition used as input to ChatWithTools
// for all providers. Follows the OpenAI function calling schema.
//
// Description:
//
//	Provides a provider-agnostic way to define tools. Each provider's
//	ChatWithTools method converts ToolDef into its wire format
//	(Anthropic input_schema, OpenAI function, Ollama tools).
//
// Thread Safety: ToolDef is immutable and safe for concurrent read access.
type ToolDef struct {
	// Type is the tool type. Always "function" for function calling.
	Type string `json:"type"`

	// Function contains the function definition.
	Function ToolFunction `json:"function"`
}

// ToolFunction contains the function name, description, and parameter schema.
type ToolFunction struct {
	// Name is the function name the model will call.
	Name string `json:"name"`

	// Description explains what the function does.
	Description string `json:"description"`

	// Parameters defines the JSON Schema for function parameters.
	Parameters ToolParameters `json:"parameters"`
}

// ToolParameters defines the JSON Schema for tool parameters.
type ToolParameters struct {
	// Type is the JSON Schema type. Always "object" for tool parameters.
	Type string `json:"type"`

	// Properties maps parameter names to their definitions.
	Properties map[string]ToolParamDef `json:"properties,omitempty"`

	// Required lists parameter names that must be provided.
	Required []string `json:"required,omitempty"`
}

// ToolParamDef defines a single parameter in JSON Schema format.
type ToolParamDef struct {
	// Type is the JSON Schema type (string, integer, boolean, number).
	Type string `json:"type"`

	// Description explains what the parameter is for.
	Description string `json:"description,omitempty"`

	// Default is the default value if not provided.
	Default any `json:"default,omitempty"`
}

// ChatMessage is a chat message that carries tool call metadata.
//
// Description:
//
//	Regular messages use Role + Content. Tool results include ToolCallID.
//	Assistant messages with tool calls include ToolCalls.
//
// Thread Safety: ChatMessage is safe for concurrent read access.
type ChatMessage struct {
	// Role is the message role: "system", "user", "assistant", or "tool".
	Role string `json:"role"`

	// Content is the text content of the message.
	Content string `json:"content,omitempty"`

	// ToolCalls contains tool invocations (for assistant messages).
	ToolCalls []ToolCallResponse `json:"tool_calls,omitempty"`

	// ToolCallID links this message back to a specific tool call (for
	// tool result messages).
	ToolCallID string `json:"tool_call_id,omitempty"`

	// ToolName is the tool name for tool result messages.
	ToolName string `json:"tool_name,omitempty"`
}

// ToolCallResponse represents a tool call from any LLM provider.
//
// Description:
//
//	Provider-agnostic representation of a tool call. Each provider's
//	ChatWithTools method populates this from its native response format:
//	- Anthropic: tool_use content blocks
//	- OpenAI: tool_calls array
//	- Ollama: message.tool_calls (no IDs; synthetic ones are generated
//	  downstream when missing)
//
// Thread Safety: ToolCallResponse is safe for concurrent read access.
type ToolCallResponse struct {
	// ID is the unique identifier for this tool call. May be empty for
	// providers that do not assign ids.
	ID string `json:"id"`

	// Name is the function name to call.
	Name string `json:"name"`

	// Arguments is the raw JSON arguments for the function.
	Arguments json.RawMessage `json:"arguments"`
}

// ArgumentsMap decodes the arguments into a parameter map.
//
// Outputs:
//   - map[string]any: The decoded arguments, never nil.
//
// Thread Safety: Safe for concurrent use.
func (t *ToolCallResponse) ArgumentsMap() map[string]any {
	out := make(map[string]any)
	if len(t.Arguments) == 0 {
		return out
	}
	raw := t.Arguments
	// Some providers double-encode: a JSON string containing JSON.
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			raw = json.RawMessage(s)
		}
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

// ChatResult is the provider-agnostic result from ChatWithTools.
//
// Thread Safety: ChatResult is safe for concurrent read access.
type ChatResult struct {
	// Content is the text response (may be empty if only tool calls).
	Content string

	// ToolCalls contains tool calls from the model.
	ToolCalls []ToolCallResponse

	// StopReason indicates why generation stopped.
	// Values: "end" (normal completion) or "tool_use" (tool calls present).
	StopReason string

	// InputTokens and OutputTokens are usage counts when the provider
	// reports them; zero otherwise.
	InputTokens  int
	OutputTokens int
}

// TokenCallback receives streamed output fragments as they arrive.
// Providers without streaming support deliver the full content once.
type TokenCallback func(token string)

// ChatModel is the contract every provider client satisfies.
type ChatModel interface {
	// ChatWithTools runs one model turn with function calling enabled.
	// onToken may be nil when the caller does not want streaming.
	ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDef, onToken TokenCallback) (*ChatResult, error)

	// Name identifies the provider ("openai", "ollama", "anthropic").
	Name() string

	// Model returns the configured model identifier.
	Model() string
}
