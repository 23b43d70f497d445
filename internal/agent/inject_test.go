package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vatsa10/Zomatooo/internal/domain"
)

func resolvedSession(city string) *domain.Session {
	sess := &domain.Session{ID: "s1"}
	sess.Resolve(domain.FromName(city))
	return sess
}

func TestInject_SearchToolGetsLocationAndKeyword(t *testing.T) {
	sess := resolvedSession("Pune")

	out := Inject(ToolKeywordSearch, map[string]any{"keyword": "pizza"}, sess, "find pizza")

	assert.Equal(t, "pizza", out["keyword"])
	assert.Equal(t, map[string]any{"name": "Pune"}, out["user_location"])
}

func TestInject_DerivesKeywordWhenOmitted(t *testing.T) {
	sess := resolvedSession("Pune")

	out := Inject(ToolKeywordSearch, map[string]any{}, sess, "find me some Pizza please")
	assert.Equal(t, "pizza", out["keyword"])

	// Nothing food-related in the utterance falls back to the generic term.
	out = Inject(ToolKeywordSearch, map[string]any{}, sess, "I am hungry")
	assert.Equal(t, "pizza", out["keyword"])
}

func TestInject_DominosKeywordFormatting(t *testing.T) {
	sess := resolvedSession("Pune")

	out := Inject(ToolKeywordSearch, map[string]any{"keyword": "dominos"}, sess, "")
	assert.Equal(t, "dominos from dominos", out["keyword"])

	// Already formatted keywords are left alone.
	out = Inject(ToolKeywordSearch, map[string]any{"keyword": "pizza from dominos"}, sess, "")
	assert.Equal(t, "pizza from dominos", out["keyword"])
}

func TestInject_LocationToolsGetLocationOnly(t *testing.T) {
	sess := resolvedSession("Surat")

	for _, tool := range []string{ToolAllRestaurants, ToolSearchFilters, ToolOrderHistory} {
		out := Inject(tool, map[string]any{"page": float64(2)}, sess, "show more")
		assert.Equal(t, map[string]any{"name": "Surat"}, out["user_location"], tool)
		assert.Equal(t, float64(2), out["page"], tool)
		_, hasKeyword := out["keyword"]
		assert.False(t, hasKeyword, tool)
	}
}

func TestInject_SavedAddressShapePassedThrough(t *testing.T) {
	addr := map[string]any{"name": "Home", "short_name": "Home", "lat": 18.52, "lng": 73.85}
	sess := &domain.Session{ID: "s1"}
	sess.Resolve(domain.FromAddress(addr))

	out := Inject(ToolAllRestaurants, map[string]any{}, sess, "")
	assert.Equal(t, addr, out["user_location"])
}

func TestInject_NoOpWhenUnresolved(t *testing.T) {
	sess := &domain.Session{ID: "s1"}

	in := map[string]any{"keyword": "pizza"}
	out := Inject(ToolKeywordSearch, in, sess, "find pizza")

	assert.Equal(t, in, out)
	_, hasLoc := out["user_location"]
	assert.False(t, hasLoc)
}

func TestInject_OtherToolsPassThrough(t *testing.T) {
	sess := resolvedSession("Pune")

	in := map[string]any{"restaurant_id": "r1"}
	out := Inject("get_menu_items_listing", in, sess, "show the menu")
	assert.Equal(t, in, out)
}

func TestInject_DoesNotMutateInput(t *testing.T) {
	sess := resolvedSession("Pune")

	in := map[string]any{}
	out := Inject(ToolKeywordSearch, in, sess, "find pizza")

	require.NotNil(t, out["user_location"])
	assert.Empty(t, in)
}
