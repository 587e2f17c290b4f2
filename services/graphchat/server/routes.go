// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers the chat API with the router.
//
// Endpoints:
//
//	POST /v1/chat        - Blocking question/answer
//	POST /v1/chat/stream - SSE chunk stream
//	GET  /v1/chat/ws     - Websocket chunk stream
//	GET  /v1/health      - Liveness check
//	GET  /metrics        - Prometheus metrics
func RegisterRoutes(router *gin.Engine, handlers *Handlers) {
	v1 := router.Group("/v1")
	{
		v1.POST("/chat", handlers.HandleChat)
		v1.POST("/chat/stream", handlers.HandleChatStream)
		v1.GET("/chat/ws", handlers.HandleChatWS)
		v1.GET("/health", handlers.HandleHealth)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
