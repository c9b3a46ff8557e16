package sikola

import (
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
)

// minSuggestionScore is the lowest Jaro-Winkler similarity still worth showing.
const minSuggestionScore = 0.7

type Suggestion struct {
	Course CourseRef
	Score  float64
}

// Suggest ranks courses by how similar their titles are to query, keeping at
// most `limit` distinct titles.
func Suggest(query string, courses []CourseRef, limit int) []Suggestion {
	if limit <= 0 || query == "" {
		return nil
	}
	query = strings.ToLower(query)

	var result []Suggestion
	seen := map[string]struct{}{}
	for _, c := range courses {
		key := strings.ToLower(c.Title)
		_, duplicate := seen[key]
		if duplicate {
			continue
		}
		seen[key] = struct{}{}

		score := matchr.JaroWinkler(query, key, false)
		if score < minSuggestionScore {
			continue
		}
		result = append(result, Suggestion{Course: c, Score: score})
	}

	slices.SortStableFunc(result, func(a, b Suggestion) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}
