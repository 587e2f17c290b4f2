// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph is the HTTP client for the external graph engine.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PurpleNewNew/GitNexus/services/graphchat"
)

// queryRequest is the engine's /query request body.
type queryRequest struct {
	Query string `json:"query"`
}

// queryResponse is the engine's /query response body. The engine
// returns keyed rows, positional rows, or both depending on the query.
type queryResponse struct {
	Rows []struct {
		Fields map[string]any `json:"fields,omitempty"`
		Values []any          `json:"values,omitempty"`
	} `json:"rows"`
	Error *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// nodeResponse is the engine's /node/{id} response body.
type nodeResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Source    string `json:"source,omitempty"`
}

// Client talks to the graph engine's read API.
//
// Description:
//
//	Implements graphchat.QueryExecutor and graphchat.ContentStore over
//	the engine's HTTP surface. Engine-reported query failures are
//	surfaced as *graphchat.QueryError so tools can render the kind.
//
// Thread Safety: Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a graph engine client. An empty baseURL falls back
// to GRAPH_ENGINE_URL, then to the local default.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = os.Getenv("GRAPH_ENGINE_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:9080"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// ExecuteQuery implements graphchat.QueryExecutor.
func (c *Client) ExecuteQuery(ctx context.Context, query string) ([]graphchat.Row, error) {
	reqBody, err := json.Marshal(queryRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("graph: marshaling query: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/query", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("graph: creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, graphchat.NewQueryError("Query execution failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("graph: reading response: %w", err)
	}

	var parsed queryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, graphchat.NewQueryError("Query execution failed",
			fmt.Errorf("engine returned status %d with unparseable body", resp.StatusCode))
	}
	if parsed.Error != nil {
		kind := parsed.Error.Kind
		if kind == "" {
			kind = "Query execution failed"
		}
		return nil, &graphchat.QueryError{Kind: kind, Message: parsed.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, graphchat.NewQueryError("Query execution failed",
			fmt.Errorf("engine returned status %d", resp.StatusCode))
	}

	rows := make([]graphchat.Row, 0, len(parsed.Rows))
	for _, r := range parsed.Rows {
		rows = append(rows, graphchat.Row{Fields: r.Fields, Values: r.Values})
	}
	return rows, nil
}

// NodeContent implements graphchat.ContentStore. A 404 from the engine
// maps to (nil, nil): the node simply does not exist.
func (c *Client) NodeContent(ctx context.Context, nodeID string) (*graphchat.NodeContent, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/node/"+nodeID, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: creating request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("graph: node lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph: node lookup returned status %d", resp.StatusCode)
	}

	var parsed nodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("graph: parsing node response: %w", err)
	}
	return &graphchat.NodeContent{
		ID:        parsed.ID,
		Name:      parsed.Name,
		Kind:      parsed.Kind,
		FilePath:  parsed.FilePath,
		StartLine: parsed.StartLine,
		EndLine:   parsed.EndLine,
		Source:    parsed.Source,
	}, nil
}
