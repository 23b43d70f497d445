package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiGenerateText(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": "Here are some options."}},
				},
				"finishReason": "STOP",
			}},
		})
	}))
	defer srv.Close()

	temp := 0.7
	client := NewGeminiClient("test-key", "gemini-2.0-flash").WithBaseURL(srv.URL)
	res, err := client.Generate(context.Background(), GenerateRequest{
		System:          "You are a food ordering assistant.",
		Messages:        []Message{{Role: RoleUser, Text: "find pizza"}},
		Temperature:     &temp,
		MaxOutputTokens: 1024,
		Tools: []FunctionDeclaration{{
			Name:        "get_restaurants_for_keyword",
			Description: "search restaurants",
			Parameters:  map[string]any{"type": "OBJECT"},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Here are some options.", res.Text)
	assert.Nil(t, res.FunctionCall)
	assert.Equal(t, "STOP", res.FinishReason)

	// Request body carries the system instruction, config, and tools.
	assert.Contains(t, captured, "systemInstruction")
	genCfg := captured["generationConfig"].(map[string]any)
	assert.Equal(t, 0.7, genCfg["temperature"])
	assert.Equal(t, float64(1024), genCfg["maxOutputTokens"])
	tools := captured["tools"].([]any)
	require.Len(t, tools, 1)
}

func TestGeminiGenerateFunctionCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role": "model",
					"parts": []map[string]any{{
						"functionCall": map[string]any{
							"name": "get_restaurants_for_keyword",
							"args": map[string]any{"keyword": "pizza"},
						},
					}},
				},
			}},
		})
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", "gemini-2.0-flash").WithBaseURL(srv.URL)
	res, err := client.Generate(context.Background(), GenerateRequest{
		Messages: []Message{{Role: RoleUser, Text: "find pizza"}},
	})
	require.NoError(t, err)
	require.NotNil(t, res.FunctionCall)
	assert.Equal(t, "get_restaurants_for_keyword", res.FunctionCall.Name)
	assert.Equal(t, "pizza", res.FunctionCall.Args["keyword"])
}

func TestGeminiFunctionResponseTurn(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{"candidates": []map[string]any{}})
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", "gemini-2.0-flash").WithBaseURL(srv.URL)
	_, err := client.Generate(context.Background(), GenerateRequest{
		Messages: []Message{
			{Role: RoleUser, Text: "find pizza"},
			{Role: RoleModel, FunctionResponse: &FunctionResponse{
				Name:     "get_restaurants_for_keyword",
				Response: map[string]any{"result": "12 places found"},
			}},
		},
	})
	require.NoError(t, err)

	contents := captured["contents"].([]any)
	require.Len(t, contents, 2)
	second := contents[1].(map[string]any)
	parts := second["parts"].([]any)
	fr := parts[0].(map[string]any)["functionResponse"].(map[string]any)
	assert.Equal(t, "get_restaurants_for_keyword", fr["name"])
}

func TestGeminiAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", "gemini-2.0-flash").WithBaseURL(srv.URL)
	_, err := client.Generate(context.Background(), GenerateRequest{
		Messages: []Message{{Role: RoleUser, Text: "hi"}},
	})

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusTooManyRequests, provErr.Code)
}

func TestRegistryResolution(t *testing.T) {
	log := testLogger()
	reg := NewRegistry(log)
	mock := &MockClient{ProviderName: "gemini"}
	reg.Register("gemini", mock)
	reg.Alias("gemini-2.0-flash-exp", "gemini")
	reg.SetFallback("gemini")

	byName, err := reg.Resolve("gemini")
	require.NoError(t, err)
	assert.Same(t, mock, byName)

	byAlias, err := reg.Resolve("gemini-2.0-flash-exp")
	require.NoError(t, err)
	assert.Same(t, mock, byAlias)

	byFallback, err := reg.Resolve("unknown-model")
	require.NoError(t, err)
	assert.Same(t, mock, byFallback)
}

func TestRegistryEmpty(t *testing.T) {
	reg := NewRegistry(testLogger())
	_, err := reg.Resolve("anything")
	assert.Error(t, err)
}
