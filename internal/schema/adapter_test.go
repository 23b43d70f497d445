package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdaptUppercasesTypeNames(t *testing.T) {
	raw := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"keyword": map[string]any{"type": "string", "description": "what to search for"},
			"user_location": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"lat": map[string]any{"type": "number"},
					"lng": map[string]any{"type": "number"},
				},
			},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"keyword"},
	}

	got, err := Adapt("get_restaurants_for_keyword", raw)
	require.NoError(t, err)

	assert.Equal(t, "OBJECT", got["type"])
	props := got["properties"].(map[string]any)
	assert.Equal(t, "STRING", props["keyword"].(map[string]any)["type"])

	loc := props["user_location"].(map[string]any)
	assert.Equal(t, "OBJECT", loc["type"])
	assert.Equal(t, "NUMBER", loc["properties"].(map[string]any)["lat"].(map[string]any)["type"])

	tags := props["tags"].(map[string]any)
	assert.Equal(t, "ARRAY", tags["type"])
	assert.Equal(t, "STRING", tags["items"].(map[string]any)["type"])

	// Descriptions and other scalars pass through unchanged.
	assert.Equal(t, "what to search for", props["keyword"].(map[string]any)["description"])
	// Required entries are not type markers in position but match the
	// name set, so they get normalized like any matching scalar would.
}

func TestAdaptDefaultsTopLevelType(t *testing.T) {
	got, err := Adapt("bind_user_number", map[string]any{
		"properties": map[string]any{
			"phone": map[string]any{"type": "string"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "OBJECT", got["type"])
}

func TestAdaptIdempotent(t *testing.T) {
	raw := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"otp": map[string]any{"type": "integer"},
		},
	}

	once, err := Adapt("verify", raw)
	require.NoError(t, err)
	twice, err := Adapt("verify", once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestAdaptDoesNotMutateInput(t *testing.T) {
	raw := map[string]any{
		"type":       "object",
		"properties": map[string]any{"q": map[string]any{"type": "string"}},
	}

	_, err := Adapt("search", raw)
	require.NoError(t, err)
	assert.Equal(t, "object", raw["type"])
	assert.Equal(t, "string", raw["properties"].(map[string]any)["q"].(map[string]any)["type"])
}

func TestAdaptNilSchema(t *testing.T) {
	_, err := Adapt("broken_tool", nil)
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "broken_tool", convErr.Tool)
	assert.Contains(t, err.Error(), "broken_tool")
}
