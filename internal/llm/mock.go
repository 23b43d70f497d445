package llm

import "context"

// MockClient is a test double for Client.
type MockClient struct {
	ProviderName string
	GenerateFunc func(ctx context.Context, req GenerateRequest) (*GenerateResult, error)

	// Requests records every Generate call for assertions.
	Requests []GenerateRequest
}

func (m *MockClient) Name() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

func (m *MockClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	m.Requests = append(m.Requests, req)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &GenerateResult{Text: "mock response"}, nil
}
