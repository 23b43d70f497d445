// Package schema converts tool parameter schemas from the ordering
// service's JSON-Schema convention into the casing Gemini's
// function-calling interface expects.
package schema

import "strings"

// typeNames are the JSON-Schema type markers that get case-normalized.
// Any other scalar passes through unchanged.
var typeNames = map[string]struct{}{
	"object":  {},
	"string":  {},
	"number":  {},
	"integer": {},
	"boolean": {},
	"array":   {},
	"null":    {},
}

// ConversionError means a tool's declared parameters could not be adapted.
// The caller skips that one tool and continues; a malformed descriptor
// must not abort startup.
type ConversionError struct {
	Tool string
}

func (e *ConversionError) Error() string {
	return "schema: cannot convert input schema for tool " + e.Tool
}

// Adapt rewrites a tool's input schema for Gemini: known type names are
// upper-cased recursively, and a missing top-level type defaults to
// OBJECT since tool parameters are always keyword-structured.
// Adapting an already-adapted schema is a no-op.
func Adapt(tool string, raw map[string]any) (map[string]any, error) {
	if raw == nil {
		return nil, &ConversionError{Tool: tool}
	}

	out := normalize(raw).(map[string]any)

	switch t := out["type"].(type) {
	case string:
		out["type"] = strings.ToUpper(t)
	case nil:
		out["type"] = "OBJECT"
	}
	return out, nil
}

// normalize walks maps, slices, and scalars, upper-casing recognized
// type names. It copies as it goes; the input is never mutated.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case string:
		if _, ok := typeNames[strings.ToLower(val)]; ok {
			return strings.ToUpper(val)
		}
		return val
	default:
		return v
	}
}
