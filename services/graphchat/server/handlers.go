// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package server exposes the chat mediator over HTTP: JSON, SSE, and
// websocket surfaces plus health and metrics endpoints.
package server

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/PurpleNewNew/GitNexus/services/graphchat/agent"
	"github.com/PurpleNewNew/GitNexus/services/graphchat/llm"
	"github.com/PurpleNewNew/GitNexus/services/graphchat/stream"
)

// chatRequest is the request body for both chat endpoints.
type chatRequest struct {
	// Question is the user's message. Required.
	Question string `json:"question" binding:"required"`

	// History is the prior conversation, oldest first. Optional.
	History []llm.ChatMessage `json:"history,omitempty"`
}

// chatResponse is the blocking endpoint's reply.
type chatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

// Handlers serves the chat API.
//
// Thread Safety: Safe for concurrent use.
type Handlers struct {
	mediator *agent.Mediator
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandlers creates the handler set. A nil logger uses slog.Default.
func NewHandlers(mediator *agent.Mediator, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		mediator: mediator,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// HandleChat answers a question in one blocking round-trip.
//
// POST /v1/chat
func (h *Handlers) HandleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	answer, err := h.mediator.Ask(c.Request.Context(), req.Question)
	if err != nil {
		h.logger.Error("chat request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chatResponse{
		SessionID: uuid.NewString(),
		Answer:    answer,
	})
}

// HandleChatStream answers a question as a server-sent event stream.
// Each event's data is one JSON-encoded chunk; the stream ends after
// the terminal chunk.
//
// POST /v1/chat/stream
func (h *Handlers) HandleChatStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	chunks := h.mediator.Stream(c.Request.Context(), req.Question, req.History)
	c.Stream(func(w io.Writer) bool {
		chunk, ok := <-chunks
		if !ok {
			return false
		}
		c.SSEvent("chunk", chunk)
		return !chunk.Terminal()
	})
}

// HandleChatWS answers questions over a websocket. Each text message
// from the client is a chatRequest; each reply message is one
// JSON-encoded chunk. The socket stays open across questions.
//
// GET /v1/chat/ws
func (h *Handlers) HandleChatWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read ended", slog.String("error", err.Error()))
			}
			return
		}
		if req.Question == "" {
			if err := conn.WriteJSON(stream.Chunk{Type: stream.ChunkError, Error: "question is required"}); err != nil {
				return
			}
			continue
		}

		for chunk := range h.mediator.Stream(c.Request.Context(), req.Question, req.History) {
			if err := conn.WriteJSON(chunk); err != nil {
				h.logger.Debug("websocket write failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}

// HandleHealth reports liveness.
//
// GET /v1/health
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
