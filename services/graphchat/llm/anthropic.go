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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion        = "2023-06-01"
	anthropicMaxTokens      = 4096
)

// =============================================================================
// Wire Types (Anthropic Messages API)
// =============================================================================

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Tools     []anthropicTool    `json:"tools,omitempty"`
}

type anthropicMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

// contentBlock is the Anthropic content union: text, tool_use, or
// tool_result depending on Type.
type contentBlock struct {
	Type string `json:"type"`

	// Text payload for type "text".
	Text string `json:"text,omitempty"`

	// tool_use fields.
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result fields.
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema ToolParameters `json:"input_schema"`
}

type anthropicResponse struct {
	Content    []contentBlock  `json:"content"`
	StopReason string          `json:"stop_reason"`
	Usage      *anthropicUsage `json:"usage,omitempty"`
	Error      *anthropicError `json:"error,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// =============================================================================
// Client Implementation
// =============================================================================

// AnthropicClient implements ChatModel for Claude models using raw net/http.
//
// Description:
//
//	Uses the Anthropic Messages REST API directly. System messages are
//	lifted into the top-level system field; tool results travel as
//	tool_result content blocks inside user-role messages, per the API's
//	conversation shape. Responses are not streamed; the full text is
//	delivered to the token callback once.
//
// Thread Safety: AnthropicClient is safe for concurrent use.
type AnthropicClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// NewAnthropicClient creates an AnthropicClient with explicit
// configuration. An empty baseURL uses the public API endpoint.
func NewAnthropicClient(apiKey, model, baseURL string) *AnthropicClient {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &AnthropicClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
	}
}

func (a *AnthropicClient) Name() string  { return "anthropic" }
func (a *AnthropicClient) Model() string { return a.model }

// ChatWithTools implements the ChatModel interface.
func (a *AnthropicClient) ChatWithTools(ctx context.Context, messages []ChatMessage,
	tools []ToolDef, onToken TokenCallback) (*ChatResult, error) {

	start := time.Now()
	ctx, span := llmTracer.Start(ctx, "anthropic.chat_with_tools")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", a.model),
		attribute.Int("llm.messages", len(messages)),
		attribute.Int("llm.tools", len(tools)),
	)

	slog.Debug("ChatWithTools via Anthropic",
		slog.String("model", a.model),
		slog.Int("messages", len(messages)),
		slog.Int("tools", len(tools)),
	)

	system := ""
	antMessages := make([]anthropicMessage, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			system = msg.Content
		case "tool":
			antMessages = append(antMessages, anthropicMessage{
				Role: "user",
				Content: []contentBlock{{
					Type:      "tool_result",
					ToolUseID: msg.ToolCallID,
					Content:   msg.Content,
				}},
			})
		case "assistant":
			blocks := []contentBlock{}
			if msg.Content != "" {
				blocks = append(blocks, contentBlock{Type: "text", Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				blocks = append(blocks, contentBlock{
					Type:  "tool_use",
					ID:    tc.ID,
					Name:  tc.Name,
					Input: tc.Arguments,
				})
			}
			antMessages = append(antMessages, anthropicMessage{Role: "assistant", Content: blocks})
		default:
			antMessages = append(antMessages, anthropicMessage{
				Role:    "user",
				Content: []contentBlock{{Type: "text", Text: msg.Content}},
			})
		}
	}

	antTools := make([]anthropicTool, 0, len(tools))
	for _, td := range tools {
		antTools = append(antTools, anthropicTool{
			Name:        td.Function.Name,
			Description: td.Function.Description,
			InputSchema: td.Function.Parameters,
		})
	}

	reqBody, err := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: anthropicMaxTokens,
		System:    system,
		Messages:  antMessages,
		Tools:     antTools,
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.baseURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("anthropic: creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		recordLLMMetrics(a.Name(), time.Since(start), 0, 0, err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("anthropic: HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		recordLLMMetrics(a.Name(), time.Since(start), 0, 0, err)
		return nil, fmt.Errorf("anthropic: reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("anthropic: API returned status %d: %s", resp.StatusCode, SafeLogString(string(bodyBytes)))
		recordLLMMetrics(a.Name(), time.Since(start), 0, 0, err)
		span.SetStatus(codes.Error, "non-200 status")
		return nil, err
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		recordLLMMetrics(a.Name(), time.Since(start), 0, 0, err)
		return nil, fmt.Errorf("anthropic: parsing response JSON: %w", err)
	}
	if apiResp.Error != nil {
		err := fmt.Errorf("anthropic: API error: %s - %s", apiResp.Error.Type, SafeLogString(apiResp.Error.Message))
		recordLLMMetrics(a.Name(), time.Since(start), 0, 0, err)
		return nil, err
	}

	result := &ChatResult{}
	for _, block := range apiResp.Content {
		switch block.Type {
		case "text":
			result.Content += block.Text
		case "tool_use":
			result.ToolCalls = append(result.ToolCalls, ToolCallResponse{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: block.Input,
			})
		}
	}
	if len(result.ToolCalls) > 0 {
		result.StopReason = "tool_use"
	} else {
		result.StopReason = "end"
	}
	if apiResp.Usage != nil {
		result.InputTokens = apiResp.Usage.InputTokens
		result.OutputTokens = apiResp.Usage.OutputTokens
	}

	if onToken != nil && result.Content != "" {
		onToken(result.Content)
	}

	recordLLMMetrics(a.Name(), time.Since(start), result.InputTokens, result.OutputTokens, nil)
	return result, nil
}
