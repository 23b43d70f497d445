package domain

// ToolDescriptor is one tool advertised by the ordering service: a named
// remote operation with a declared parameter schema. Immutable once
// fetched at connection start.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}
