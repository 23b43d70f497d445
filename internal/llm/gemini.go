package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient is a direct HTTP client for the Gemini generateContent
// API with native function calling.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiClient creates a Gemini client for the given model.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// WithBaseURL overrides the API base URL (used by tests).
func (g *GeminiClient) WithBaseURL(u string) *GeminiClient {
	g.baseURL = strings.TrimRight(u, "/")
	return g
}

// WithTimeout overrides the per-request timeout.
func (g *GeminiClient) WithTimeout(d time.Duration) *GeminiClient {
	g.client.Timeout = d
	return g
}

// Name returns the provider name.
func (g *GeminiClient) Name() string { return "gemini" }

// Generate sends a generateContent request and decodes the reply.
func (g *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = g.model
	}

	payload, err := json.Marshal(g.buildRequestBody(req))
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.baseURL, model, url.QueryEscape(g.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: "gemini", Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider: "gemini",
			Code:     resp.StatusCode,
			Message:  string(body),
		}
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ProviderError{Provider: "gemini", Message: "unparseable response: " + err.Error()}
	}

	return g.toResult(&result, model, time.Since(start)), nil
}

func (g *GeminiClient) buildRequestBody(req GenerateRequest) map[string]any {
	contents := make([]map[string]any, 0, len(req.Messages))
	for _, msg := range req.Messages {
		var part map[string]any
		if msg.FunctionResponse != nil {
			part = map[string]any{
				"functionResponse": map[string]any{
					"name":     msg.FunctionResponse.Name,
					"response": msg.FunctionResponse.Response,
				},
			}
		} else {
			part = map[string]any{"text": msg.Text}
		}
		contents = append(contents, map[string]any{
			"role":  msg.Role,
			"parts": []map[string]any{part},
		})
	}

	genCfg := map[string]any{}
	if req.MaxOutputTokens > 0 {
		genCfg["maxOutputTokens"] = req.MaxOutputTokens
	}
	if req.Temperature != nil {
		genCfg["temperature"] = *req.Temperature
	}

	body := map[string]any{
		"contents":         contents,
		"generationConfig": genCfg,
	}

	if req.System != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []map[string]any{{"text": req.System}},
		}
	}

	if len(req.Tools) > 0 {
		decls := make([]map[string]any, 0, len(req.Tools))
		for _, t := range req.Tools {
			d := map[string]any{
				"name":        t.Name,
				"description": t.Description,
			}
			if t.Parameters != nil {
				d["parameters"] = t.Parameters
			}
			decls = append(decls, d)
		}
		body["tools"] = []map[string]any{{"functionDeclarations": decls}}
	}

	return body
}

func (g *GeminiClient) toResult(resp *geminiResponse, model string, dur time.Duration) *GenerateResult {
	out := &GenerateResult{Model: model, Duration: dur}

	if len(resp.Candidates) == 0 {
		return out
	}

	cand := resp.Candidates[0]
	out.FinishReason = cand.FinishReason

	var text strings.Builder
	for _, part := range cand.Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if part.FunctionCall != nil && out.FunctionCall == nil {
			out.FunctionCall = &FunctionCall{
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			}
		}
	}
	out.Text = text.String()
	return out
}

// Wire structures for the Gemini API.

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content struct {
		Parts []geminiPart `json:"parts"`
		Role  string       `json:"role"`
	} `json:"content"`
	FinishReason string `json:"finishReason"`
}

type geminiPart struct {
	Text         string `json:"text,omitempty"`
	FunctionCall *struct {
		Name string         `json:"name"`
		Args map[string]any `json:"args"`
	} `json:"functionCall,omitempty"`
}
