package suggest

import "slices"

// Rank orders suggestions High, Medium, Low keeping the original order within a priority,
// drops repeated titles and truncates to limit. A non-positive limit keeps everything.
func Rank(suggestions []Suggestion, limit int) []Suggestion {
	seen := make(map[string]bool, len(suggestions))
	ranked := make([]Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if seen[s.Title] {
			continue
		}
		seen[s.Title] = true
		ranked = append(ranked, s)
	}
	slices.SortStableFunc(ranked, func(a, b Suggestion) int {
		return a.Priority.rank() - b.Priority.rank()
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
