package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vatsa10/Zomatooo/internal/domain"
	"github.com/Vatsa10/Zomatooo/internal/llm"
	"github.com/Vatsa10/Zomatooo/internal/ordering"
	"github.com/Vatsa10/Zomatooo/internal/session"
)

func testCatalog() *Catalog {
	return catalogFromDescriptors([]domain.ToolDescriptor{
		{
			Name:        ToolKeywordSearch,
			Description: "Search restaurants by keyword",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"keyword":       map[string]any{"type": "string"},
					"user_location": map[string]any{"type": "object"},
				},
			},
		},
		{
			Name:        ToolAllRestaurants,
			Description: "List all restaurants near a location",
			InputSchema: map[string]any{"type": "object"},
		},
		{
			Name:        ordering.ToolVerifyPhone,
			Description: "Verify the OTP",
			InputSchema: map[string]any{"type": "object"},
		},
	})
}

func testLoop(model *llm.MockClient, svc *ordering.Mock) *Loop {
	log := testLogger()
	reg := llm.NewRegistry(log)
	reg.Register("gemini", model)
	reg.SetFallback("gemini")

	return NewLoop(
		LoopConfig{Model: "gemini-2.0-flash-exp", MaxOutputTokens: 1024},
		reg,
		session.NewMemoryStore(),
		svc,
		testCatalog(),
		log,
	)
}

// emptyAddressService returns an ordering mock whose saved-address
// fetch yields an empty list.
func emptyAddressService() *ordering.Mock {
	return &ordering.Mock{
		CallFunc: func(ctx context.Context, name string, args map[string]any) (*ordering.Result, error) {
			if name == ordering.ToolSavedAddresses {
				return ordering.DecodeResult(`{"addresses": []}`, false), nil
			}
			return ordering.DecodeResult("Success.", false), nil
		},
	}
}

func TestLoop_FreshSessionAwaitsLocationThenResolves(t *testing.T) {
	model := &llm.MockClient{}
	loop := testLoop(model, emptyAddressService())

	// First contact with no saved addresses: a clarifying prompt, no
	// model call.
	res := loop.Turn(context.Background(), "", "hello")
	require.NotEmpty(t, res.SessionID)
	assert.Equal(t, domain.StateAwaitingLocation, res.State)
	assert.Contains(t, res.Reply, "city")
	assert.Empty(t, model.Requests)

	// A location-bearing utterance resolves and flips to ready.
	res2 := loop.Turn(context.Background(), res.SessionID, "I live in Vadodara")
	assert.Equal(t, domain.StateReady, res2.State)
	assert.Contains(t, res2.Reply, "Vadodara")
	assert.Empty(t, model.Requests)
}

func TestLoop_SavedAddressResolvesAtBootstrap(t *testing.T) {
	svc := &ordering.Mock{
		CallFunc: func(ctx context.Context, name string, args map[string]any) (*ordering.Result, error) {
			if name == ordering.ToolSavedAddresses {
				return ordering.DecodeResult(`{"addresses": [{"name": "Home", "short_name": "Home", "lat": 18.5, "lng": 73.8}]}`, false), nil
			}
			return ordering.DecodeResult("Success.", false), nil
		},
	}
	model := &llm.MockClient{
		GenerateFunc: func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResult, error) {
			return &llm.GenerateResult{Text: "Welcome back! What are you craving?"}, nil
		},
	}
	loop := testLoop(model, svc)

	res := loop.Turn(context.Background(), "sess-1", "hello")
	assert.Equal(t, domain.StateReady, res.State)
	assert.Equal(t, "Welcome back! What are you craving?", res.Reply)

	// The system prompt carries the resolved location.
	require.Len(t, model.Requests, 1)
	assert.Contains(t, model.Requests[0].System, "Home")
}

func TestLoop_ToolCallWithFallbackAndFollowUp(t *testing.T) {
	// Scenario: resolved location, model asks for a keyword search,
	// the search returns zero results, the broader search runs once,
	// and the follow-up generation produces the final reply.
	svc := &ordering.Mock{
		CallFunc: func(ctx context.Context, name string, args map[string]any) (*ordering.Result, error) {
			switch name {
			case ordering.ToolSavedAddresses:
				return ordering.DecodeResult(`{"addresses": []}`, false), nil
			case ToolKeywordSearch:
				return ordering.DecodeResult(`{"total_results": 0}`, false), nil
			case ToolAllRestaurants:
				return ordering.DecodeResult(`{"total_results": 8, "restaurants": ["Pizza Palace"]}`, false), nil
			}
			return ordering.DecodeResult("Success.", false), nil
		},
	}
	model := &llm.MockClient{
		GenerateFunc: func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResult, error) {
			// First call requests the tool; the follow-up sees the
			// function response and replies with text.
			last := req.Messages[len(req.Messages)-1]
			if last.FunctionResponse != nil {
				return &llm.GenerateResult{Text: "No pizza places matched, but nearby options include Pizza Palace."}, nil
			}
			return &llm.GenerateResult{
				FunctionCall: &llm.FunctionCall{Name: ToolKeywordSearch, Args: map[string]any{"keyword": "pizza"}},
			}, nil
		},
	}
	loop := testLoop(model, svc)

	// Resolve first.
	res := loop.Turn(context.Background(), "sess-2", "order pizza from Pune")
	require.Equal(t, domain.StateReady, res.State)

	res = loop.Turn(context.Background(), "sess-2", "find pizza")

	assert.Equal(t, ToolKeywordSearch, res.ToolUsed)
	assert.Contains(t, res.Reply, "Pizza Palace")

	// Exactly two generations: the tool request and one follow-up.
	assert.Len(t, model.Requests, 2)

	// Calls: address bootstrap, keyword search, single fallback.
	require.Len(t, svc.Calls, 3)
	assert.Equal(t, ToolKeywordSearch, svc.Calls[1].Name)
	assert.Equal(t, map[string]any{"name": "Pune"}, svc.Calls[1].Args["user_location"])
	assert.Equal(t, ToolAllRestaurants, svc.Calls[2].Name)

	// The function response rode back on a model turn.
	followUp := model.Requests[1]
	last := followUp.Messages[len(followUp.Messages)-1]
	require.NotNil(t, last.FunctionResponse)
	assert.Equal(t, ToolKeywordSearch, last.FunctionResponse.Name)
}

func TestLoop_GenerationFailureLeavesSessionUntouched(t *testing.T) {
	model := &llm.MockClient{
		GenerateFunc: func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResult, error) {
			return nil, &llm.ProviderError{Provider: "gemini", Message: "bad gateway", Code: 502}
		},
	}
	loop := testLoop(model, emptyAddressService())

	res := loop.Turn(context.Background(), "sess-3", "in Vadodara")
	require.Equal(t, domain.StateReady, res.State)

	sess := loop.sessions.Get("sess-3")
	before := len(sess.Messages)

	res = loop.Turn(context.Background(), "sess-3", "find pizza")
	assert.Equal(t, replyApology, res.Reply)

	// No history mutation from the failed generation.
	assert.Len(t, sess.Messages, before)
}

func TestLoop_QuitEndsWithoutModelCall(t *testing.T) {
	model := &llm.MockClient{}
	loop := testLoop(model, emptyAddressService())

	res := loop.Turn(context.Background(), "sess-4", "quit")
	assert.True(t, res.Ended)
	assert.Equal(t, replyGoodbye, res.Reply)
	assert.Empty(t, model.Requests)
}

func TestLoop_VerifyPhoneSuccessSetsBound(t *testing.T) {
	svc := &ordering.Mock{
		CallFunc: func(ctx context.Context, name string, args map[string]any) (*ordering.Result, error) {
			switch name {
			case ordering.ToolSavedAddresses:
				return ordering.DecodeResult(`{"addresses": []}`, false), nil
			case ordering.ToolVerifyPhone:
				return ordering.DecodeResult("Verification success! Number bound.", false), nil
			}
			return ordering.DecodeResult("Success.", false), nil
		},
	}
	calls := 0
	model := &llm.MockClient{
		GenerateFunc: func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResult, error) {
			calls++
			if calls == 2 {
				return &llm.GenerateResult{
					FunctionCall: &llm.FunctionCall{Name: ordering.ToolVerifyPhone, Args: map[string]any{"otp": "123456"}},
				}, nil
			}
			return &llm.GenerateResult{Text: "Done."}, nil
		},
	}
	loop := testLoop(model, svc)

	loop.Turn(context.Background(), "sess-5", "I live in Pune")
	loop.Turn(context.Background(), "sess-5", "hi")
	res := loop.Turn(context.Background(), "sess-5", "my otp is 123456")

	require.NotNil(t, res)
	sess := loop.sessions.Get("sess-5")
	assert.True(t, sess.PhoneBound)
}

func TestLoop_ResolvedLocationIsMonotonic(t *testing.T) {
	model := &llm.MockClient{
		GenerateFunc: func(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResult, error) {
			return &llm.GenerateResult{Text: "ok"}, nil
		},
	}
	loop := testLoop(model, emptyAddressService())

	loop.Turn(context.Background(), "sess-6", "I live in Vadodara")
	sess := loop.sessions.Get("sess-6")
	require.NotNil(t, sess.Location)
	assert.Equal(t, "Vadodara", sess.Location.Name)

	// Later turns never unset the location.
	loop.Turn(context.Background(), "sess-6", "actually show me burgers")
	loop.Turn(context.Background(), "sess-6", "something with no city at all")
	require.NotNil(t, sess.Location)
	assert.Equal(t, "Vadodara", sess.Location.Name)
}
