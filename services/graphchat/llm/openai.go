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

const defaultOpenAIBaseURL = "https://api.openai.com/v1/chat/completions"

// =============================================================================
// Wire Types (OpenAI Chat Completions API)
// =============================================================================

type openaiRequest struct {
	Model    string          `json:"model"`
	Messages []openaiMessage `json:"messages"`
	Tools    []openaiTool    `json:"tools,omitempty"`
}

type openaiMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []openaiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

type openaiTool struct {
	Type     string         `json:"type"`
	Function openaiFunction `json:"function"`
}

type openaiFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

type openaiToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function openaiCallFunction `json:"function"`
}

type openaiCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   *openaiUsage   `json:"usage,omitempty"`
	Error   *openaiError   `json:"error,omitempty"`
}

type openaiChoice struct {
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type openaiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// =============================================================================
// Client Implementation
// =============================================================================

// OpenAIClient implements ChatModel for OpenAI models using raw net/http.
//
// Description:
//
//	Uses the OpenAI Chat Completions REST API directly without third-party
//	SDKs. Responses are not streamed; the full content is delivered to the
//	token callback once.
//
// Thread Safety: OpenAIClient is safe for concurrent use.
type OpenAIClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// NewOpenAIClient creates an OpenAIClient with explicit configuration.
// An empty baseURL uses the public API endpoint.
func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
	}
}

func (o *OpenAIClient) Name() string  { return "openai" }
func (o *OpenAIClient) Model() string { return o.model }

// ChatWithTools implements the ChatModel interface.
func (o *OpenAIClient) ChatWithTools(ctx context.Context, messages []ChatMessage,
	tools []ToolDef, onToken TokenCallback) (*ChatResult, error) {

	start := time.Now()
	ctx, span := llmTracer.Start(ctx, "openai.chat_with_tools")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", o.model),
		attribute.Int("llm.messages", len(messages)),
		attribute.Int("llm.tools", len(tools)),
	)

	slog.Debug("ChatWithTools via OpenAI",
		slog.String("model", o.model),
		slog.Int("messages", len(messages)),
		slog.Int("tools", len(tools)),
	)

	oaiMessages := make([]openaiMessage, 0, len(messages))
	for _, msg := range messages {
		oaiMsg := openaiMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
		if msg.Role == "tool" && msg.ToolCallID != "" {
			oaiMsg.ToolCallID = msg.ToolCallID
		}
		if msg.Role == "assistant" && len(msg.ToolCalls) > 0 {
			for _, tc := range msg.ToolCalls {
				oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, openaiToolCall{
					ID:   tc.ID,
					Type: "function",
					Function: openaiCallFunction{
						Name:      tc.Name,
						Arguments: string(tc.Arguments),
					},
				})
			}
		}
		oaiMessages = append(oaiMessages, oaiMsg)
	}

	oaiTools := make([]openaiTool, 0, len(tools))
	for _, td := range tools {
		oaiTools = append(oaiTools, openaiTool{
			Type: "function",
			Function: openaiFunction{
				Name:        td.Function.Name,
				Description: td.Function.Description,
				Parameters:  td.Function.Parameters,
			},
		})
	}

	reqBody, err := json.Marshal(openaiRequest{
		Model:    o.model,
		Messages: oaiMessages,
		Tools:    oaiTools,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("openai: creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		recordLLMMetrics(o.Name(), time.Since(start), 0, 0, err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("openai: HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		recordLLMMetrics(o.Name(), time.Since(start), 0, 0, err)
		return nil, fmt.Errorf("openai: reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("openai: API returned status %d: %s", resp.StatusCode, SafeLogString(string(bodyBytes)))
		recordLLMMetrics(o.Name(), time.Since(start), 0, 0, err)
		span.SetStatus(codes.Error, "non-200 status")
		return nil, err
	}

	var apiResp openaiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		recordLLMMetrics(o.Name(), time.Since(start), 0, 0, err)
		return nil, fmt.Errorf("openai: parsing response JSON: %w", err)
	}
	if apiResp.Error != nil {
		err := fmt.Errorf("openai: API error: %s - %s", apiResp.Error.Type, SafeLogString(apiResp.Error.Message))
		recordLLMMetrics(o.Name(), time.Since(start), 0, 0, err)
		return nil, err
	}
	if len(apiResp.Choices) == 0 {
		err := fmt.Errorf("openai: returned no choices")
		recordLLMMetrics(o.Name(), time.Since(start), 0, 0, err)
		return nil, err
	}

	choice := apiResp.Choices[0]
	result := &ChatResult{Content: choice.Message.Content}
	for _, tc := range choice.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, ToolCallResponse{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	if len(result.ToolCalls) > 0 {
		result.StopReason = "tool_use"
	} else {
		result.StopReason = "end"
	}
	if apiResp.Usage != nil {
		result.InputTokens = apiResp.Usage.PromptTokens
		result.OutputTokens = apiResp.Usage.CompletionTokens
	}

	if onToken != nil && result.Content != "" {
		onToken(result.Content)
	}

	recordLLMMetrics(o.Name(), time.Since(start), result.InputTokens, result.OutputTokens, nil)
	return result, nil
}
