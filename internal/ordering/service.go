// Package ordering talks to the remote restaurant-ordering service.
//
// The service is consumed through the Model Context Protocol: a tool
// catalog fetched at connection start and per-tool invocations. Raw
// responses are decoded here, once, into typed results; downstream
// components never re-inspect wire shapes.
package ordering

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Vatsa10/Zomatooo/internal/domain"
)

// Service is the ordering-side collaborator boundary. The production
// implementation is the MCP client; tests use Mock.
type Service interface {
	// Tools returns the tool catalog advertised by the service.
	Tools(ctx context.Context) ([]domain.ToolDescriptor, error)

	// Call invokes one tool with structured arguments.
	Call(ctx context.Context, name string, args map[string]any) (*Result, error)

	// Close releases the connection.
	Close() error
}

// Result is the decoded outcome of a tool invocation.
type Result struct {
	Text    string // concatenated text content
	IsError bool   // remote flagged the call as failed

	// TotalResults is the structured result count for search-style
	// payloads, or nil when the payload does not carry one.
	TotalResults *int
}

// Empty reports whether the result is a structurally valid zero-result
// response. The count field is authoritative when present; the legacy
// serialized-text sentinel is kept as a fallback because some catalog
// versions omit the field.
func (r *Result) Empty() bool {
	if r.TotalResults != nil {
		return *r.TotalResults == 0
	}
	return strings.Contains(r.Text, `"total_results": 0`) ||
		strings.Contains(r.Text, `"total_results":0`)
}

// decodeResult builds a Result from raw text content, extracting the
// structured count when the payload is JSON.
func decodeResult(text string, isError bool) *Result {
	res := &Result{Text: text, IsError: isError}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err == nil {
		if v, ok := payload["total_results"].(float64); ok {
			n := int(v)
			res.TotalResults = &n
		}
	}
	return res
}
