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
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// Query Result Rows and LLM-Facing Formatting
// =============================================================================

// NoResultsMessage is the canonical observation for an empty result set.
// Tools return this constant rather than an empty string so the model
// always receives a meaningful observation.
const NoResultsMessage = "No results found."

// DefaultDisplayCap is the maximum number of rows rendered into a single
// observation before truncation. Query engines may return far more; the
// model only ever sees this many.
const DefaultDisplayCap = 50

// Row is a single result row from the graph query engine.
//
// Description:
//
//	Rows arrive in one of two shapes depending on the backend driver:
//	keyed (column name -> value) or positional (ordered values only).
//	Either field may be nil. Rendering and field access handle both.
//
// Thread Safety: Not safe for concurrent mutation; treat as immutable
// once produced by a query.
type Row struct {
	// Fields maps column names to values. Nil for positional rows.
	Fields map[string]any

	// Values holds ordered column values. Nil for keyed rows.
	Values []any
}

// Field reads a column by name, falling back to the positional index when
// the row carries no keyed fields or the name is absent.
//
// Outputs:
//   - any: The value, or nil when neither access path yields one.
//   - bool: False when the column could not be resolved at all.
//
// Thread Safety: Safe for concurrent use on an immutable row.
func (r Row) Field(name string, idx int) (any, bool) {
	if r.Fields != nil {
		if v, ok := r.Fields[name]; ok {
			return v, true
		}
	}
	if idx >= 0 && idx < len(r.Values) {
		return r.Values[idx], true
	}
	return nil, false
}

// StringField reads a column via Field and renders it as a string.
// Non-string values are formatted with %v; unresolved columns yield "".
func (r Row) StringField(name string, idx int) string {
	v, ok := r.Field(name, idx)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// FloatField reads a column via Field and coerces it to float64.
// Handles float64, float32, int, and int64 (JSON decoding and driver
// layers disagree on numeric types).
func (r Row) FloatField(name string, idx int) (float64, bool) {
	v, ok := r.Field(name, idx)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// FormatRows renders query result rows into the observation text handed
// back to the model.
//
// Description:
//
//	An empty or nil slice produces NoResultsMessage. Otherwise rows are
//	numbered from 1. Positional rows are joined with ", "; keyed rows are
//	rendered as a compact map literal with sorted keys so output is
//	deterministic. When more than displayCap rows exist, exactly
//	displayCap are rendered followed by a truncation note carrying the
//	count of omitted rows.
//
// Inputs:
//   - rows: Result rows. May be nil or empty.
//   - displayCap: Maximum rows to render. Values < 1 fall back to
//     DefaultDisplayCap.
//
// Outputs:
//   - string: Never empty. Never panics regardless of row shape.
//
// Thread Safety: Safe for concurrent use.
func FormatRows(rows []Row, displayCap int) string {
	if len(rows) == 0 {
		return NoResultsMessage
	}
	if displayCap < 1 {
		displayCap = DefaultDisplayCap
	}

	shown := rows
	truncated := 0
	if len(rows) > displayCap {
		shown = rows[:displayCap]
		truncated = len(rows) - displayCap
	}

	var sb strings.Builder
	for i, row := range shown {
		sb.WriteString(fmt.Sprintf("Row %d: %s\n", i+1, formatRow(row)))
	}
	if truncated > 0 {
		sb.WriteString(fmt.Sprintf("... (%d more results truncated)\n", truncated))
	}
	return sb.String()
}

// formatRow renders a single row in its natural shape.
func formatRow(row Row) string {
	if row.Fields != nil {
		keys := make([]string, 0, len(row.Fields))
		for k := range row.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", k, row.Fields[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	parts := make([]string, 0, len(row.Values))
	for _, v := range row.Values {
		parts = append(parts, fmt.Sprintf("%v", v))
	}
	return strings.Join(parts, ", ")
}
