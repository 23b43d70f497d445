package ordering

import (
	"context"

	"github.com/Vatsa10/Zomatooo/internal/domain"
)

// Mock is a test double for Service.
type Mock struct {
	ToolsFunc func(ctx context.Context) ([]domain.ToolDescriptor, error)
	CallFunc  func(ctx context.Context, name string, args map[string]any) (*Result, error)

	// Calls records every Call invocation for assertions.
	Calls []MockCall
}

// MockCall is one recorded tool invocation.
type MockCall struct {
	Name string
	Args map[string]any
}

func (m *Mock) Tools(ctx context.Context) ([]domain.ToolDescriptor, error) {
	if m.ToolsFunc != nil {
		return m.ToolsFunc(ctx)
	}
	return nil, nil
}

func (m *Mock) Call(ctx context.Context, name string, args map[string]any) (*Result, error) {
	m.Calls = append(m.Calls, MockCall{Name: name, Args: args})
	if m.CallFunc != nil {
		return m.CallFunc(ctx, name, args)
	}
	return &Result{Text: "Success."}, nil
}

func (m *Mock) Close() error { return nil }

// DecodeResult exposes result decoding for tests and for transports
// that receive raw text outside the MCP path.
func DecodeResult(text string, isError bool) *Result {
	return decodeResult(text, isError)
}
