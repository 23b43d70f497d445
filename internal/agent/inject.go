package agent

import (
	"regexp"
	"strings"

	"github.com/Vatsa10/Zomatooo/internal/domain"
)

// Search and discovery tools on the ordering service.
const (
	ToolKeywordSearch  = "get_restaurants_for_keyword"
	ToolAllRestaurants = "get_all_restaurants"
	ToolSearchFilters  = "get_dynamic_search_filters"
	ToolOrderHistory   = "get_search_order_history"
)

// locationTools take a user_location argument but no keyword.
var locationTools = map[string]bool{
	ToolAllRestaurants: true,
	ToolSearchFilters:  true,
	ToolOrderHistory:   true,
}

// keywordRe scans an utterance for a food-related search term.
var keywordRe = regexp.MustCompile(`(?i)(pizza|dominos?|order\s+\w+)`)

// Inject rewrites a tool call's arguments using session state. Search
// tools get the resolved location and, when the model omitted one, a
// keyword derived from the user's utterance. Location-bearing discovery
// tools get the location only. Everything else passes through
// untouched, as does every call while the location is unresolved.
//
// The input map is never mutated; session state is read, never written.
func Inject(toolName string, args map[string]any, sess *domain.Session, utterance string) map[string]any {
	if sess.Location == nil {
		return args
	}

	switch {
	case toolName == ToolKeywordSearch:
		out := copyArgs(args)
		kw, _ := out["keyword"].(string)
		if kw == "" {
			kw = deriveKeyword(utterance)
		}
		// The catalog docs want branded searches phrased as
		// "<term> from dominos".
		if strings.Contains(strings.ToLower(kw), "dominos") && !strings.Contains(strings.ToLower(kw), "from dominos") {
			kw = kw + " from dominos"
		}
		out["keyword"] = kw
		out["user_location"] = sess.Location.Argument()
		return out

	case locationTools[toolName]:
		out := copyArgs(args)
		out["user_location"] = sess.Location.Argument()
		return out
	}

	return args
}

// deriveKeyword pulls a search term out of the utterance, defaulting to
// a generic one when nothing food-related matches.
func deriveKeyword(utterance string) string {
	if m := keywordRe.FindStringSubmatch(utterance); m != nil {
		return strings.ToLower(m[1])
	}
	return "pizza"
}

func copyArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args)+2)
	for k, v := range args {
		out[k] = v
	}
	return out
}
