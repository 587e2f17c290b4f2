// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graphchat

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Taxonomy
// =============================================================================

var (
	// ErrInvalidTemplate indicates a vector query template that does not
	// contain the required {{VECTOR}} placeholder. Raised before any
	// embedding work is attempted.
	ErrInvalidTemplate = errors.New("query template must contain a {{VECTOR}} placeholder")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// initialized or the embedding backend could not be reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrUnsupportedProvider indicates a provider kind outside the closed
	// set of supported chat model providers.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrAcceleratedUnavailable indicates the accelerated embedding
	// endpoint is not reachable. Callers may fall back to the generic
	// backend exactly once per initialization attempt.
	ErrAcceleratedUnavailable = errors.New("accelerated embedding endpoint unavailable")
)

// QueryError wraps a failure from the graph query engine with a stable
// kind so tools can render it without inspecting backend internals.
//
// Thread Safety: Immutable after construction.
type QueryError struct {
	// Kind is a short classification such as "Query execution failed"
	// or "Binder exception".
	Kind string

	// Message is the backend's error text.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Message == "" {
		return e.Kind
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is / errors.As chains.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError builds a QueryError around a backend failure.
func NewQueryError(kind string, err error) *QueryError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &QueryError{Kind: kind, Message: msg, Err: err}
}
