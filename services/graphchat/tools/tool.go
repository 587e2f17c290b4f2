// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tools implements the graph query tools exposed to the chat
// model and the registry that dispatches them.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// =============================================================================
// Tool Contract
// =============================================================================

// ParamDef describes one tool parameter for the model.
type ParamDef struct {
	// Type is the JSON schema type ("string", "integer", "number").
	Type string `json:"type"`

	// Description explains the parameter to the model.
	Description string `json:"description"`

	// Required marks the parameter as mandatory.
	Required bool `json:"required"`

	// Default is the value used when the model omits the parameter.
	Default any `json:"default,omitempty"`
}

// ToolDefinition is the model-facing description of a tool.
type ToolDefinition struct {
	// Name is the tool's registered name.
	Name string `json:"name"`

	// Description tells the model what the tool does and when to use it.
	Description string `json:"description"`

	// Parameters maps parameter names to their definitions.
	Parameters map[string]ParamDef `json:"parameters"`
}

// Result is the outcome of a single tool execution.
type Result struct {
	// Success is false when the tool recovered an internal failure into
	// observation text.
	Success bool

	// Output is the observation handed back to the model. Never empty.
	Output string

	// Duration is the wall-clock execution time.
	Duration time.Duration
}

// Tool is a single capability the model can invoke.
//
// Execute never surfaces errors to the agent loop: every failure mode is
// rendered into the Result's observation text so the model can react,
// retry, or explain. The error return exists for programming errors only
// (nil dependencies, malformed registry wiring) and the registry recovers
// it into text as a last resort.
type Tool interface {
	// Name returns the tool's registered name.
	Name() string

	// Definition returns the model-facing description.
	Definition() ToolDefinition

	// Execute runs the tool with JSON-decoded parameters.
	Execute(ctx context.Context, params map[string]any) (*Result, error)
}

// =============================================================================
// Registry
// =============================================================================

// Registry holds the tool set exposed to the model and dispatches
// invocations by name.
//
// Thread Safety: Safe for concurrent use after registration completes.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	order  []string
	logger *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger uses slog.Default.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger,
	}
}

// Register adds a tool. Re-registering a name replaces the previous tool
// but keeps its original position.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Definitions returns all tool definitions in registration order.
func (r *Registry) Definitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Dispatch executes a tool by name and always produces observation text.
//
// Description:
//
//	The agent loop's single entry point. Unknown tool names and tool
//	programming errors are rendered into descriptive text rather than
//	propagated, so one bad invocation never aborts the conversation.
//
// Thread Safety: Safe for concurrent use.
func (r *Registry) Dispatch(ctx context.Context, name string, params map[string]any) string {
	t, ok := r.Get(name)
	if !ok {
		r.logger.Warn("model requested unknown tool", slog.String("tool", name))
		return fmt.Sprintf("Error: unknown tool %q. Use get_schema to see what is available.", name)
	}

	res, err := t.Execute(ctx, params)
	if err != nil {
		r.logger.Error("tool execution error",
			slog.String("tool", name),
			slog.String("error", err.Error()))
		return fmt.Sprintf("Error executing %s: %s", name, err.Error())
	}
	if res == nil || res.Output == "" {
		return fmt.Sprintf("Tool %s produced no output.", name)
	}
	return res.Output
}
