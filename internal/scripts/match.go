package scripts

import (
	"slices"
	"strings"
)

// Match finds scripts whose name or description contains the query.
// Matching is case-insensitive and an empty query returns everything.
// Results are ordered by match quality: exact name matches first, then
// prefix matches, then substring matches, then description-only matches.
func Match(scripts []Script, query string) []Script {
	query = strings.ToLower(query)

	var results []Script
	for _, s := range scripts {
		if query == "" || matchesQuery(s, query) {
			results = append(results, s)
		}
	}

	// Stable sort keeps the file name order within equal scores.
	slices.SortStableFunc(results, func(a, b Script) int {
		return scoreMatch(b, query) - scoreMatch(a, query)
	})

	return results
}

// matchesQuery checks the query against a script's name and description.
func matchesQuery(s Script, query string) bool {
	name := strings.ToLower(s.Name)
	desc := strings.ToLower(s.Description)
	return strings.Contains(name, query) || strings.Contains(desc, query)
}

// scoreMatch returns a score indicating match quality.
// Higher scores indicate better matches.
//
// Scoring:
//   - 100: Exact name match
//   - 75: Name starts with query (prefix match)
//   - 50: Name contains query
//   - 25: Description contains query (but name doesn't)
//   - 0: No match or empty query
func scoreMatch(s Script, query string) int {
	if query == "" {
		return 0
	}

	name := strings.ToLower(s.Name)
	desc := strings.ToLower(s.Description)

	if name == query {
		return 100
	}
	if strings.HasPrefix(name, query) {
		return 75
	}
	if strings.Contains(name, query) {
		return 50
	}
	if strings.Contains(desc, query) {
		return 25
	}
	return 0
}
