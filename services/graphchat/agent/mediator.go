// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package agent drives the loop between the chat model and the graph
// tools, exposing streaming and blocking entry points.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/PurpleNewNew/GitNexus/services/graphchat/llm"
	"github.com/PurpleNewNew/GitNexus/services/graphchat/stream"
	"github.com/PurpleNewNew/GitNexus/services/graphchat/tools"
)

var mediatorTracer = otel.Tracer("graphchat.agent")

// NoResponseMessage is returned by Ask when the model produced neither
// text nor tool calls.
const NoResponseMessage = "No response generated."

// DefaultMaxSteps bounds the agent loop. Each step is one model turn;
// a run that has not converged by then is cut off rather than left to
// burn tokens.
const DefaultMaxSteps = 10

const systemPrompt = `You are a code analysis assistant with access to a code knowledge graph.
Answer questions about the indexed codebase using the available tools.
Call get_schema before writing Cypher queries. Prefer semantic_search when
the user describes behavior rather than names. Cite file paths and line
numbers in your answers when the tools provide them.`

// Mediator drives the agent loop between the chat model and the graph
// tools, exposing both a streaming and a blocking entry point.
//
// Description:
//
//	Each turn the model is offered the full tool set; tool calls are
//	dispatched through the registry (which never lets a failure escape
//	as an error), observations are appended to the conversation, and the
//	loop continues until the model answers in plain text or the step
//	bound is hit.
//
// Thread Safety: Safe for concurrent use; each Stream/Ask call owns its
// conversation state.
type Mediator struct {
	model      llm.ChatModel
	registry   *tools.Registry
	translator *stream.Translator
	logger     *slog.Logger
	maxSteps   int
}

// NewMediator wires a mediator. A nil logger uses slog.Default; a
// maxSteps < 1 falls back to DefaultMaxSteps.
func NewMediator(model llm.ChatModel, registry *tools.Registry, logger *slog.Logger, maxSteps int) *Mediator {
	if logger == nil {
		logger = slog.Default()
	}
	if maxSteps < 1 {
		maxSteps = DefaultMaxSteps
	}
	return &Mediator{
		model:      model,
		registry:   registry,
		translator: stream.NewTranslator(logger),
		logger:     logger,
		maxSteps:   maxSteps,
	}
}

// Stream answers a question as a chunk stream.
//
// Description:
//
//	The loop starts immediately but publishes over an unbuffered
//	channel, so an abandoned consumer stalls it after at most one model
//	turn and cancelling ctx stops it outright; in-flight model and tool
//	work observes the cancellation through the same context. The
//	returned channel always ends with exactly one terminal chunk and is
//	then closed.
//
// Thread Safety: Safe for concurrent use.
func (m *Mediator) Stream(ctx context.Context, question string, history []llm.ChatMessage) <-chan stream.Chunk {
	src := newLoopSource()
	go m.runLoop(ctx, question, history, src)
	return m.translator.Run(ctx, src)
}

// Ask answers a question, blocking until the agent loop completes.
//
// Outputs:
//   - string: The final answer text only. Commentary the model streams
//     before a tool call is intermediate narration, not the answer, so
//     the accumulator resets at each tool call. NoResponseMessage when
//     the run produced no content.
//   - error: Non-nil when the stream terminated with an error chunk.
//
// Thread Safety: Safe for concurrent use.
func (m *Mediator) Ask(ctx context.Context, question string) (string, error) {
	var sb strings.Builder
	for chunk := range m.Stream(ctx, question, nil) {
		switch chunk.Type {
		case stream.ChunkContent:
			sb.WriteString(chunk.Content)
		case stream.ChunkToolCall:
			sb.Reset()
		case stream.ChunkError:
			return "", errors.New(chunk.Error)
		}
	}
	if sb.Len() == 0 {
		return NoResponseMessage, nil
	}
	return sb.String(), nil
}

// runLoop is the agent loop body. It publishes raw events to src and
// finishes it exactly once (io.EOF on success, the failure otherwise).
func (m *Mediator) runLoop(ctx context.Context, question string, history []llm.ChatMessage, src *loopSource) {
	ctx, span := mediatorTracer.Start(ctx, "mediator.run")
	defer span.End()

	messages := make([]llm.ChatMessage, 0, len(history)+2)
	messages = append(messages, llm.ChatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.ChatMessage{Role: "user", Content: question})

	defs := toolDefs(m.registry.Definitions())

	for step := 0; step < m.maxSteps; step++ {
		if ctx.Err() != nil {
			src.finish(ctx.Err())
			return
		}

		result, err := m.model.ChatWithTools(ctx, messages, defs, func(token string) {
			src.publish(ctx, stream.AgentEvent{Type: stream.EventToken, Text: token})
		})
		if err != nil {
			m.logger.Error("model turn failed",
				slog.String("provider", m.model.Name()),
				slog.Int("step", step),
				slog.String("error", err.Error()))
			span.RecordError(err)
			src.finish(err)
			return
		}

		if len(result.ToolCalls) == 0 {
			span.SetAttributes(attribute.Int("agent.steps", step+1))
			src.finish(io.EOF)
			return
		}

		// Providers without call ids get synthetic ones so tool result
		// messages stay correlated in the conversation.
		for i := range result.ToolCalls {
			if result.ToolCalls[i].ID == "" {
				result.ToolCalls[i].ID = "call_" + uuid.NewString()[:8]
			}
		}
		messages = append(messages, llm.ChatMessage{
			Role:      "assistant",
			Content:   result.Content,
			ToolCalls: result.ToolCalls,
		})

		for _, tc := range result.ToolCalls {
			args := tc.ArgumentsMap()
			src.publish(ctx, stream.AgentEvent{
				Type:     stream.EventToolStart,
				CallID:   tc.ID,
				ToolName: tc.Name,
				Args:     args,
			})

			observation := m.registry.Dispatch(ctx, tc.Name, args)

			src.publish(ctx, stream.AgentEvent{
				Type:     stream.EventToolEnd,
				CallID:   tc.ID,
				ToolName: tc.Name,
				Output:   observation,
			})
			messages = append(messages, llm.ChatMessage{
				Role:       "tool",
				Content:    observation,
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
			})
		}
	}

	m.logger.Warn("agent loop hit step bound",
		slog.Int("max_steps", m.maxSteps))
	src.publish(ctx, stream.AgentEvent{
		Type: stream.EventToken,
		Text: fmt.Sprintf("\n(Stopped after %d tool steps without a final answer.)", m.maxSteps),
	})
	src.finish(io.EOF)
}

// toolDefs converts registry definitions to the provider wire contract.
func toolDefs(defs []tools.ToolDefinition) []llm.ToolDef {
	out := make([]llm.ToolDef, 0, len(defs))
	for _, d := range defs {
		props := make(map[string]llm.ToolParamDef, len(d.Parameters))
		var required []string
		for name, p := range d.Parameters {
			props[name] = llm.ToolParamDef{
				Type:        p.Type,
				Description: p.Description,
				Default:     p.Default,
			}
			if p.Required {
				required = append(required, name)
			}
		}
		out = append(out, llm.ToolDef{
			Type: "function",
			Function: llm.ToolFunction{
				Name:        d.Name,
				Description: d.Description,
				Parameters: llm.ToolParameters{
					Type:       "object",
					Properties: props,
					Required:   required,
				},
			},
		})
	}
	return out
}

// loopSource is a channel-backed stream.EventSource fed by runLoop.
type loopSource struct {
	events chan stream.AgentEvent
	done   chan struct{}
	err    error
}

func newLoopSource() *loopSource {
	return &loopSource{
		events: make(chan stream.AgentEvent),
		done:   make(chan struct{}),
	}
}

// publish delivers one event unless the context is cancelled.
func (s *loopSource) publish(ctx context.Context, ev stream.AgentEvent) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

// finish ends the source. io.EOF marks clean completion.
func (s *loopSource) finish(err error) {
	s.err = err
	close(s.done)
}

// Next implements stream.EventSource.
func (s *loopSource) Next(ctx context.Context) (stream.AgentEvent, error) {
	select {
	case ev := <-s.events:
		return ev, nil
	case <-s.done:
		// Drain events racing with finish.
		select {
		case ev := <-s.events:
			return ev, nil
		default:
		}
		return stream.AgentEvent{}, s.err
	case <-ctx.Done():
		return stream.AgentEvent{}, ctx.Err()
	}
}
