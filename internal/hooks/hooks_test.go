package hooks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Vatsa10/Zomatooo/internal/logging"
)

func testManager() *Manager {
	return NewManager(logging.New(nil, "silent"))
}

func TestManager_On_And_Emit(t *testing.T) {
	m := testManager()

	var called bool
	m.On(EventServerStart, "test", func(_ context.Context, p Payload) error {
		called = true
		assert.Equal(t, EventServerStart, p.Event)
		return nil
	})

	m.Emit(context.Background(), EventServerStart, nil)
	assert.True(t, called)
}

func TestManager_Emit_MultipleHandlersInOrder(t *testing.T) {
	m := testManager()

	var order []string
	m.On(EventTurnReceived, "first", func(_ context.Context, _ Payload) error {
		order = append(order, "first")
		return nil
	})
	m.On(EventTurnReceived, "second", func(_ context.Context, _ Payload) error {
		order = append(order, "second")
		return nil
	})

	m.Emit(context.Background(), EventTurnReceived, nil)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestManager_Emit_WithData(t *testing.T) {
	m := testManager()

	var gotData map[string]any
	m.On(EventToolInvoked, "test", func(_ context.Context, p Payload) error {
		gotData = p.Data
		return nil
	})

	m.Emit(context.Background(), EventToolInvoked, map[string]any{
		"tool":      "get_restaurants_for_keyword",
		"sessionId": "s1",
	})

	assert.Equal(t, "get_restaurants_for_keyword", gotData["tool"])
	assert.Equal(t, "s1", gotData["sessionId"])
}

func TestManager_Emit_HandlerErrorDoesNotStopOthers(t *testing.T) {
	m := testManager()

	var secondCalled bool
	m.On(EventServerStop, "failing", func(_ context.Context, _ Payload) error {
		return errors.New("handler broke")
	})
	m.On(EventServerStop, "second", func(_ context.Context, _ Payload) error {
		secondCalled = true
		return nil
	})

	m.Emit(context.Background(), EventServerStop, nil)
	assert.True(t, secondCalled)
}

func TestManager_Off(t *testing.T) {
	m := testManager()

	m.On(EventReplySending, "target", func(_ context.Context, _ Payload) error { return nil })
	m.On(EventReplySending, "keep", func(_ context.Context, _ Payload) error { return nil })
	assert.Equal(t, 2, m.Count(EventReplySending))

	m.Off(EventReplySending, "target")
	assert.Equal(t, 1, m.Count(EventReplySending))
}

func TestManager_EmitAsync(t *testing.T) {
	m := testManager()

	var count atomic.Int32
	m.On(EventSessionEnd, "a", func(_ context.Context, _ Payload) error {
		count.Add(1)
		return nil
	})
	m.On(EventSessionEnd, "b", func(_ context.Context, _ Payload) error {
		count.Add(1)
		return nil
	})

	m.EmitAsync(context.Background(), EventSessionEnd, nil)

	assert.Eventually(t, func() bool {
		return count.Load() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestManager_Events(t *testing.T) {
	m := testManager()
	assert.Empty(t, m.Events())

	m.On(EventTurnReceived, "h", func(_ context.Context, _ Payload) error { return nil })
	assert.Equal(t, []string{EventTurnReceived}, m.Events())
}
