// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tools

import (
	"context"

	"github.com/PurpleNewNew/GitNexus/services/graphchat"
)

// stubExecutor serves canned rows or a canned error and records the
// queries it received.
type stubExecutor struct {
	rows    []graphchat.Row
	err     error
	queries []string
}

func (s *stubExecutor) ExecuteQuery(_ context.Context, query string) ([]graphchat.Row, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

// stubSearcher serves canned matches and expansion rows and counts
// invocations.
type stubSearcher struct {
	matches []graphchat.SemanticMatch
	rows    []graphchat.Row
	err     error
	ctxErr  error
	calls   int
	gotHops int
}

func (s *stubSearcher) Search(_ context.Context, _ string, _ int, _ float64) ([]graphchat.SemanticMatch, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.matches, nil
}

func (s *stubSearcher) SearchWithContext(_ context.Context, _ string, _, hops int, _ float64) ([]graphchat.SemanticMatch, []graphchat.Row, error) {
	s.calls++
	s.gotHops = hops
	if s.err != nil {
		return nil, nil, s.err
	}
	if s.ctxErr != nil {
		return s.matches, nil, s.ctxErr
	}
	return s.matches, s.rows, nil
}

// stubEmbedder reports fixed readiness and counts Embed calls.
type stubEmbedder struct {
	ready      bool
	vec        []float32
	err        error
	embedCalls int
}

func (s *stubEmbedder) Init(_ context.Context) error { return nil }
func (s *stubEmbedder) Ready() bool                  { return s.ready }

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	s.embedCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vec, nil
}

// stubStore serves one canned node.
type stubStore struct {
	content *graphchat.NodeContent
	err     error
}

func (s *stubStore) NodeContent(_ context.Context, _ string) (*graphchat.NodeContent, error) {
	return s.content, s.err
}
