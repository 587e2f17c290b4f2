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
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var translatorTracer = otel.Tracer("graphchat.stream")

// EventSource yields raw agent events one at a time.
//
// Next returns io.EOF when the source is exhausted; any other error is a
// stream failure and terminates translation with an error chunk.
type EventSource interface {
	Next(ctx context.Context) (AgentEvent, error)
}

// Translator converts heterogeneous agent events into the uniform chunk
// protocol.
//
// Description:
//
//	A single forward pass over the source: events are translated in
//	arrival order with no buffering or reordering, and every run emits
//	exactly one terminal chunk (ChunkDone on clean exhaustion, ChunkError
//	on any other failure) as its final element.
//
// Thread Safety: A Translator value is safe for concurrent use; each Run
// call owns its own state.
type Translator struct {
	logger *slog.Logger
}

// NewTranslator creates a Translator. A nil logger uses slog.Default.
func NewTranslator(logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{logger: logger}
}

// Run translates events from src until exhaustion, failure, or context
// cancellation, delivering chunks on the returned channel. The channel
// is closed after the terminal chunk.
func (t *Translator) Run(ctx context.Context, src EventSource) <-chan Chunk {
	out := make(chan Chunk)
	go func() {
		defer close(out)
		ctx, span := translatorTracer.Start(ctx, "translator.run")
		defer span.End()

		// Per-run fallback id prefix; upstream events that carry no
		// call id get "tc_<prefix>_<n>" so consumers can still pair
		// start and progress chunks visually.
		idPrefix := uuid.NewString()[:8]
		seq := 0
		emitted := 0

		emit := func(c Chunk) bool {
			select {
			case out <- c:
				emitted++
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			ev, err := src.Next(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					span.SetAttributes(attribute.Int("chunks.emitted", emitted))
					emit(Chunk{Type: ChunkDone})
					return
				}
				t.logger.Error("agent event source failed",
					slog.String("error", err.Error()))
				span.RecordError(err)
				emit(Chunk{Type: ChunkError, Error: err.Error()})
				return
			}

			switch ev.Type {
			case EventToken:
				// Only non-empty string payloads are forwarded;
				// structured or empty payloads are dropped silently.
				if s, ok := ev.Text.(string); ok && s != "" {
					if !emit(Chunk{Type: ChunkContent, Content: s}) {
						return
					}
				}

			case EventToolStart:
				seq++
				id := ev.CallID
				if id == "" {
					id = fmt.Sprintf("tc_%s_%d", idPrefix, seq)
				}
				if !emit(Chunk{Type: ChunkToolCall, ToolCall: &ToolCallRecord{
					ID:     id,
					Name:   ev.ToolName,
					Args:   ev.Args,
					Status: StatusRunning,
				}}) {
					return
				}

			case EventToolEnd:
				seq++
				id := ev.CallID
				if id == "" {
					id = fmt.Sprintf("tc_%s_%d", idPrefix, seq)
				}
				if !emit(Chunk{Type: ChunkToolResult, ToolCall: &ToolCallRecord{
					ID:     id,
					Name:   ev.ToolName,
					Result: stringifyOutput(ev.Output),
					Status: StatusCompleted,
				}}) {
					return
				}

			default:
				t.logger.Debug("skipping unrecognized agent event",
					slog.String("type", string(ev.Type)))
			}
		}
	}()
	return out
}

// stringifyOutput renders a tool output payload for the consumer.
func stringifyOutput(v any) string {
	switch o := v.(type) {
	case nil:
		return ""
	case string:
		return o
	case error:
		return o.Error()
	default:
		return fmt.Sprintf("%v", o)
	}
}
