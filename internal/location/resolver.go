// Package location establishes the delivery location for a session.
//
// Resolution prefers a saved address from the ordering service; failing
// that, a best-effort pattern match pulls a city name out of free-text
// input. The heuristic lives behind Resolver so it can be swapped for a
// real geocoding collaborator without touching the conversation loop.
package location

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Vatsa10/Zomatooo/internal/domain"
)

// cityRe matches a prepositional city mention like "in Vadodara" or
// "live in Navi Mumbai".
var cityRe = regexp.MustCompile(`(?i)(?:in|from|near|live in)\s+([A-Z][a-z]+(?:\s[A-Z][a-z]+)?)`)

// Resolver extracts delivery locations from saved addresses and text.
type Resolver struct{}

// New creates a Resolver.
func New() *Resolver {
	return &Resolver{}
}

// FromSaved picks the default location from a saved-address list: the
// first entry wins. Returns false for an empty list.
func (r *Resolver) FromSaved(addrs []domain.Location) (domain.Location, bool) {
	if len(addrs) == 0 {
		return domain.Location{}, false
	}
	return addrs[0], true
}

// FromUtterance scans user text for a city mention. If no prepositional
// pattern matches but the utterance has more than two words and ends in
// an alphabetic token, that token is taken as a fallback guess.
func (r *Resolver) FromUtterance(text string) (domain.Location, bool) {
	if m := cityRe.FindStringSubmatch(text); m != nil {
		return domain.FromName(m[1]), true
	}

	words := strings.Fields(text)
	if len(words) > 2 {
		last := strings.Trim(words[len(words)-1], ".,!?")
		if isAlpha(last) {
			return domain.FromName(capitalize(last)), true
		}
	}
	return domain.Location{}, false
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
