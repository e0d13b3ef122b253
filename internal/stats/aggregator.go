// Package stats folds finalized sessions into per-exercise running statistics.
package stats

import (
	"time"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/normalize"
)

// ApplyFinalizedSession folds every exercise of s into prev and returns the
// updated map together with the records it touched, in session order.
// prev is not modified.
func ApplyFinalizedSession(s domain.Session, prev map[string]domain.ExerciseStats) (map[string]domain.ExerciseStats, []domain.ExerciseStats) {
	next := make(map[string]domain.ExerciseStats, len(prev)+len(s.Exercises))
	for k, v := range prev {
		next[k] = v
	}

	touched := make([]domain.ExerciseStats, 0, len(s.Exercises))
	for _, ex := range s.Exercises {
		key := normalize.Name(ex.Name)
		if key == "" {
			continue
		}
		old, seen := next[key]
		rec := fold(old, seen, key, normalize.Display(ex.Name), ex.Sets, s.EndedAt)
		next[key] = rec
		touched = append(touched, rec)
	}
	return next, touched
}

func fold(old domain.ExerciseStats, seen bool, key, display string, sets []domain.Set, endedAt *time.Time) domain.ExerciseStats {
	rec := old
	rec.NormalizedName = key
	if !seen || rec.DisplayName == "" {
		rec.DisplayName = display
	}
	if endedAt != nil {
		at := *endedAt
		rec.LastDate = &at
	}

	if last, ok := lastPerformance(sets); ok {
		w, r := last.WeightKg, last.Reps
		rec.LastWeight, rec.LastReps = &w, &r
	}

	if w, r, ok := bestPerformance(sets, old.BestWeight, old.BestReps); ok {
		rec.BestWeight, rec.BestReps = &w, &r
	}

	rec.UsageCount = old.UsageCount + 1
	return rec
}

func qualifies(s domain.Set) bool {
	return s.WeightKg > 0 && s.Reps > 0
}

// lastPerformance picks the last completed qualifying set, falling back to
// the last qualifying set of any state.
func lastPerformance(sets []domain.Set) (domain.Set, bool) {
	for i := len(sets) - 1; i >= 0; i-- {
		if sets[i].Completed && qualifies(sets[i]) {
			return sets[i], true
		}
	}
	for i := len(sets) - 1; i >= 0; i-- {
		if qualifies(sets[i]) {
			return sets[i], true
		}
	}
	return domain.Set{}, false
}

// bestPerformance reduces the candidate pool over the prior best using
// weight first, reps as the tie-break. ok is false when neither a prior best
// nor a candidate exists.
func bestPerformance(sets []domain.Set, priorWeight *float64, priorReps *int) (float64, int, bool) {
	pool := make([]domain.Set, 0, len(sets))
	for _, s := range sets {
		if s.Completed && qualifies(s) {
			pool = append(pool, s)
		}
	}
	if len(pool) == 0 {
		for _, s := range sets {
			if qualifies(s) {
				pool = append(pool, s)
			}
		}
	}

	bestW, bestR := -1.0, -1
	have := false
	if priorWeight != nil {
		bestW, have = *priorWeight, true
		if priorReps != nil {
			bestR = *priorReps
		}
	}
	for _, s := range pool {
		if s.WeightKg > bestW || (s.WeightKg == bestW && s.Reps > bestR) {
			bestW, bestR, have = s.WeightKg, s.Reps, true
		}
	}
	if !have || bestR < 0 {
		return 0, 0, false
	}
	return bestW, bestR, true
}
