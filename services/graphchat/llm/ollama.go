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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// =============================================================================
// Wire Types (Ollama /api/chat)
// =============================================================================

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Tools    []ToolDef       `json:"tools,omitempty"`
	Stream   bool            `json:"stream"`
}

type ollamaMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []ollamaToolCall `json:"tool_calls,omitempty"`
}

type ollamaToolCall struct {
	Function ollamaCallFunction `json:"function"`
}

type ollamaCallFunction struct {
	Name string `json:"name"`
	// Arguments arrive as a JSON object, not a string.
	Arguments json.RawMessage `json:"arguments"`
}

// ollamaChatChunk is one NDJSON line of the streamed response.
type ollamaChatChunk struct {
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	Error           string        `json:"error,omitempty"`
}

// =============================================================================
// Client Implementation
// =============================================================================

// OllamaClient implements ChatModel against a local Ollama server.
//
// Description:
//
//	Talks to the /api/chat endpoint with streaming enabled: each NDJSON
//	line's content fragment is forwarded to the token callback as it
//	arrives, and tool calls are accumulated until the final line.
//
// Thread Safety: OllamaClient is safe for concurrent use.
type OllamaClient struct {
	httpClient *http.Client
	model      string
	baseURL    string
}

// NewOllamaClient creates an OllamaClient. An empty baseURL uses the
// local default.
func NewOllamaClient(model, baseURL string) *OllamaClient {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &OllamaClient{
		httpClient: &http.Client{Timeout: 300 * time.Second},
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (o *OllamaClient) Name() string  { return "ollama" }
func (o *OllamaClient) Model() string { return o.model }

// ChatWithTools implements the ChatModel interface.
func (o *OllamaClient) ChatWithTools(ctx context.Context, messages []ChatMessage,
	tools []ToolDef, onToken TokenCallback) (*ChatResult, error) {

	start := time.Now()
	ctx, span := llmTracer.Start(ctx, "ollama.chat_with_tools")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", o.model),
		attribute.Int("llm.messages", len(messages)),
		attribute.Int("llm.tools", len(tools)),
	)

	slog.Debug("ChatWithTools via Ollama",
		slog.String("model", o.model),
		slog.Int("messages", len(messages)),
		slog.Int("tools", len(tools)),
	)

	olMessages := make([]ollamaMessage, 0, len(messages))
	for _, msg := range messages {
		olMsg := ollamaMessage{Role: msg.Role, Content: msg.Content}
		for _, tc := range msg.ToolCalls {
			olMsg.ToolCalls = append(olMsg.ToolCalls, ollamaToolCall{
				Function: ollamaCallFunction{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		olMessages = append(olMessages, olMsg)
	}

	reqBody, err := json.Marshal(ollamaChatRequest{
		Model:    o.model,
		Messages: olMessages,
		Tools:    tools,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/api/chat", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("ollama: creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		recordLLMMetrics(o.Name(), time.Since(start), 0, 0, err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("ollama: HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("ollama: API returned status %d", resp.StatusCode)
		recordLLMMetrics(o.Name(), time.Since(start), 0, 0, err)
		span.SetStatus(codes.Error, "non-200 status")
		return nil, err
	}

	result := &ChatResult{}
	var content strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var chunk ollamaChatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			recordLLMMetrics(o.Name(), time.Since(start), 0, 0, err)
			return nil, fmt.Errorf("ollama: parsing stream line: %w", err)
		}
		if chunk.Error != "" {
			err := fmt.Errorf("ollama: API error: %s", chunk.Error)
			recordLLMMetrics(o.Name(), time.Since(start), 0, 0, err)
			return nil, err
		}
		if chunk.Message.Content != "" {
			content.WriteString(chunk.Message.Content)
			if onToken != nil {
				onToken(chunk.Message.Content)
			}
		}
		for _, tc := range chunk.Message.ToolCalls {
			result.ToolCalls = append(result.ToolCalls, ToolCallResponse{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		if chunk.Done {
			result.InputTokens = chunk.PromptEvalCount
			result.OutputTokens = chunk.EvalCount
		}
	}
	if err := scanner.Err(); err != nil {
		recordLLMMetrics(o.Name(), time.Since(start), 0, 0, err)
		return nil, fmt.Errorf("ollama: reading stream: %w", err)
	}

	result.Content = content.String()
	if len(result.ToolCalls) > 0 {
		result.StopReason = "tool_use"
	} else {
		result.StopReason = "end"
	}

	recordLLMMetrics(o.Name(), time.Since(start), result.InputTokens, result.OutputTokens, nil)
	return result, nil
}
