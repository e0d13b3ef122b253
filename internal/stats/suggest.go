package stats

import (
	"sort"
	"strings"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/normalize"
)

// DefaultSuggestionLimit caps Suggest when no limit is given.
const DefaultSuggestionLimit = 10

// Suggest returns the exercises whose name contains query, most recently
// used first, then most used.
func Suggest(all map[string]domain.ExerciseStats, query string, limit int) []domain.ExerciseStats {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	q := normalize.Name(query)

	out := make([]domain.ExerciseStats, 0, len(all))
	for _, s := range all {
		if q != "" && !strings.Contains(s.NormalizedName, q) && !strings.Contains(normalize.Name(s.DisplayName), q) {
			continue
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		li, lj := lastUnix(out[i]), lastUnix(out[j])
		if li != lj {
			return li > lj
		}
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].NormalizedName < out[j].NormalizedName
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Top returns the most used exercise.
func Top(all map[string]domain.ExerciseStats) (domain.ExerciseStats, bool) {
	var best domain.ExerciseStats
	found := false
	for _, s := range all {
		if !found || s.UsageCount > best.UsageCount ||
			(s.UsageCount == best.UsageCount && s.NormalizedName < best.NormalizedName) {
			best, found = s, true
		}
	}
	return best, found
}

func lastUnix(s domain.ExerciseStats) int64 {
	if s.LastDate == nil {
		return 0
	}
	return s.LastDate.UnixMilli()
}
