// Package llm defines the model client interface and the Gemini
// function-calling provider.
//
// Given a system instruction, conversation history, and a tool catalog,
// a provider returns either free text or a structured function-call
// request. Providers are registered in a Registry so the conversation
// loop can fail over between models.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Role constants for conversation turns, in the provider's convention.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is a single turn sent to the model. A turn carries either
// text or a function response, never both.
type Message struct {
	Role             string            `json:"role"`
	Text             string            `json:"text,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

// FunctionCall is the model's request to invoke a tool.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// FunctionResponse feeds a tool result back into the conversation.
type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// FunctionDeclaration describes a tool to the model. Parameters is the
// adapted schema (see the schema package).
type FunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// GenerateRequest is the input to a Generate call.
type GenerateRequest struct {
	Model           string                `json:"model,omitempty"`
	System          string                `json:"system,omitempty"`
	Messages        []Message             `json:"messages"`
	Tools           []FunctionDeclaration `json:"tools,omitempty"`
	Temperature     *float64              `json:"temperature,omitempty"`
	MaxOutputTokens int                   `json:"maxOutputTokens,omitempty"`
}

// GenerateResult is the model's reply: free text, a function call, or
// both (text preceding the call).
type GenerateResult struct {
	Text         string        `json:"text"`
	FunctionCall *FunctionCall `json:"functionCall,omitempty"`
	Model        string        `json:"model,omitempty"`
	FinishReason string        `json:"finishReason,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
}

// Client is the interface all model providers implement.
type Client interface {
	// Generate sends the conversation and returns the model's reply.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)

	// Name returns the provider name (e.g., "gemini").
	Name() string
}

// ProviderError is returned when a provider fails.
type ProviderError struct {
	Provider string
	Message  string
	Code     int // HTTP-like status code (401, 429, 500, etc.)
}

func (e *ProviderError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s: %d %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}
