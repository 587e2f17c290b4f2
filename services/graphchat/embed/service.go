// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/PurpleNewNew/GitNexus/services/graphchat"
)

// DefaultModel is the embedding model used when EMBEDDING_MODEL is not
// set. 384 dimensions, matching the graph's embedding columns.
const DefaultModel = "all-minilm:l6-v2"

// embedReq is the /api/embed request body.
type embedReq struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// embedResp is the /api/embed response body.
type embedResp struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Service produces embedding vectors over HTTP.
//
// Description:
//
//	Implements graphchat.EmbeddingService. Init probes the accelerated
//	endpoint first and, if that endpoint specifically is unavailable,
//	falls back exactly once to the generic backend; any other failure is
//	re-raised untouched. The readiness flag is owned by Init alone: a
//	failed Embed call afterwards never flips the service back to
//	not-ready, it just surfaces the error to that caller.
//
// Thread Safety: Safe for concurrent use after Init.
type Service struct {
	acceleratedURL string
	genericURL     string
	activeURL      atomic.Value // string
	model          string
	client         *http.Client
	store          *VectorStore
	logger         *slog.Logger
	ready          atomic.Bool
}

// NewService creates an uninitialized Service.
//
// Description:
//
//	Reads EMBEDDING_ACCELERATED_URL, EMBEDDING_SERVICE_URL, and
//	EMBEDDING_MODEL from the environment. The store may be nil to
//	disable persistence.
//
// Thread Safety: The returned service is safe for concurrent use after
// Init completes.
func NewService(store *VectorStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	accelerated := os.Getenv("EMBEDDING_ACCELERATED_URL")
	generic := os.Getenv("EMBEDDING_SERVICE_URL")
	if generic == "" {
		generic = "http://localhost:11434/api/embed"
	}
	model := os.Getenv("EMBEDDING_MODEL")
	if model == "" {
		model = DefaultModel
	}
	return &Service{
		acceleratedURL: accelerated,
		genericURL:     generic,
		model:          model,
		client:         &http.Client{Timeout: 30 * time.Second},
		store:          store,
		logger:         logger,
	}
}

// Init probes the embedding backend and marks the service ready.
//
// Description:
//
//	When an accelerated endpoint is configured it is tried first. If it
//	is unavailable (connection failure or 404), Init falls back to the
//	generic backend exactly once; the fallback never cascades further.
//	Any other error from the accelerated probe (auth, bad model, server
//	fault) is re-raised as-is so misconfiguration stays visible.
//
// Thread Safety: Call once at startup, before concurrent Embed use.
func (s *Service) Init(ctx context.Context) error {
	if s.acceleratedURL != "" {
		err := s.probe(ctx, s.acceleratedURL)
		if err == nil {
			s.activeURL.Store(s.acceleratedURL)
			s.ready.Store(true)
			s.logger.Info("embedding service ready",
				slog.String("endpoint", "accelerated"),
				slog.String("model", s.model))
			return nil
		}
		if !errors.Is(err, graphchat.ErrAcceleratedUnavailable) {
			return err
		}
		s.logger.Warn("accelerated embedding endpoint unavailable, falling back",
			slog.String("error", err.Error()))
	}

	if err := s.probe(ctx, s.genericURL); err != nil {
		return fmt.Errorf("%w: %v", graphchat.ErrEmbeddingUnavailable, err)
	}
	s.activeURL.Store(s.genericURL)
	s.ready.Store(true)
	s.logger.Info("embedding service ready",
		slog.String("endpoint", "generic"),
		slog.String("model", s.model))
	return nil
}

// Ready reports whether Init completed successfully.
func (s *Service) Ready() bool {
	return s.ready.Load()
}

// Embed converts text into an embedding vector, consulting the
// persistent cache first.
//
// Thread Safety: Safe for concurrent use after Init.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if !s.ready.Load() {
		return nil, graphchat.ErrEmbeddingUnavailable
	}
	if vec := s.store.Get(s.model, text); vec != nil {
		return vec, nil
	}

	url, _ := s.activeURL.Load().(string)
	vec, err := s.call(ctx, url, text)
	if err != nil {
		// Readiness is untouched: one failed call is not an outage.
		return nil, err
	}
	s.store.Put(s.model, text, vec)
	return vec, nil
}

// probe verifies an endpoint can embed at all. Transport failures and
// 404s from the accelerated endpoint are classified as
// ErrAcceleratedUnavailable so Init can fall back; everything else is
// returned untouched.
func (s *Service) probe(ctx context.Context, url string) error {
	_, err := s.call(ctx, url, "ping")
	if err == nil {
		return nil
	}
	if url == s.acceleratedURL {
		var statusErr *statusError
		if !errors.As(err, &statusErr) || statusErr.code == http.StatusNotFound {
			return fmt.Errorf("%w: %v", graphchat.ErrAcceleratedUnavailable, err)
		}
	}
	return err
}

// statusError carries an HTTP status for probe classification.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("embed service returned %d: %s", e.code, e.body)
}

// call performs one embedding round-trip against url.
func (s *Service) call(ctx context.Context, url, text string) ([]float32, error) {
	reqBody, err := json.Marshal(embedReq{Model: s.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed HTTP call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, body: string(body)}
	}

	var parsed embedResp
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse embed response: %w", err)
	}
	if len(parsed.Embeddings) == 0 || len(parsed.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("embed service returned empty vector")
	}
	return parsed.Embeddings[0], nil
}
