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

// =============================================================================
// Shared Parameter Parsing Helpers
// =============================================================================
//
// Tool parameters arrive JSON-decoded, so numbers are float64 and the
// model occasionally sends integers where strings were asked for. These
// helpers normalize the common cases.

// parseStringParam extracts a string from a parameter value.
//
// Thread Safety: Safe for concurrent use.
func parseStringParam(value any) (string, bool) {
	if s, ok := value.(string); ok {
		return s, true
	}
	return "", false
}

// parseIntParam extracts an integer from a parameter value.
//
// Handles both int and float64 (from JSON unmarshaling).
//
// Thread Safety: Safe for concurrent use.
func parseIntParam(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// intParamOr reads an integer parameter, falling back to def when the
// parameter is absent or unparseable.
func intParamOr(params map[string]any, name string, def int) int {
	if v, ok := params[name]; ok {
		if n, ok := parseIntParam(v); ok {
			return n
		}
	}
	return def
}

// clampInt clamps a value between min and max bounds.
//
// Thread Safety: Safe for concurrent use.
func clampInt(value, minVal, maxVal int) int {
	if value < minVal {
		return minVal
	}
	if value > maxVal {
		return maxVal
	}
	return value
}
