package location

import (
	"testing"

	"github.com/Vatsa10/Zomatooo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromUtterancePrepositional(t *testing.T) {
	r := New()

	tests := []struct {
		text string
		want string
	}{
		{"I live in Vadodara", "Vadodara"},
		{"order pizza from Pune", "Pune"},
		{"somewhere near Navi Mumbai", "Navi Mumbai"},
	}

	for _, tt := range tests {
		loc, ok := r.FromUtterance(tt.text)
		require.True(t, ok, tt.text)
		assert.Equal(t, tt.want, loc.Name, tt.text)
	}
}

func TestFromUtteranceLastTokenFallback(t *testing.T) {
	r := New()

	loc, ok := r.FromUtterance("please deliver to surat")
	require.True(t, ok)
	assert.Equal(t, "Surat", loc.Name)
}

func TestFromUtteranceNoMatch(t *testing.T) {
	r := New()

	// Two words: too short for the fallback guess.
	_, ok := r.FromUtterance("hello there")
	assert.False(t, ok)

	// Final token is not alphabetic.
	_, ok = r.FromUtterance("my pincode is 390001")
	assert.False(t, ok)
}

func TestFromUtteranceYieldsBareName(t *testing.T) {
	r := New()

	loc, ok := r.FromUtterance("I live in Vadodara")
	require.True(t, ok)
	assert.Nil(t, loc.Raw)
	assert.Equal(t, map[string]any{"name": "Vadodara"}, loc.Argument())
}

func TestFromSaved(t *testing.T) {
	r := New()

	_, ok := r.FromSaved(nil)
	assert.False(t, ok)

	home := domain.FromAddress(map[string]any{"short_name": "Home", "lat": 22.3, "lng": 73.2})
	work := domain.FromAddress(map[string]any{"short_name": "Work"})

	loc, ok := r.FromSaved([]domain.Location{home, work})
	require.True(t, ok)
	assert.Equal(t, "Home", loc.Name)
	assert.NotNil(t, loc.Raw)
}
