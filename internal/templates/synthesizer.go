// Package templates derives workout templates from finalized sessions and
// keeps the template collection unique by normalized name.
package templates

import (
	"errors"
	"sort"
	"time"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/normalize"
)

var (
	ErrEmptyName     = errors.New("template name is empty")
	ErrDuplicateName = errors.New("another template already uses this name")
	ErrNotFound      = errors.New("template not found")
)

// Derive builds the template a finalized session implies. The returned
// template has no ID; Upsert assigns or preserves one.
func Derive(s domain.Session) domain.WorkoutTemplate {
	tpl := domain.WorkoutTemplate{
		NormalizedName: normalize.Name(s.Name),
		DisplayName:    s.Name,
		Exercises:      make([]domain.TemplateExercise, 0, len(s.Exercises)),
	}
	if s.IsFinalized() {
		tpl.UpdatedAt = *s.EndedAt
	}

	for _, ex := range s.Exercises {
		te := domain.TemplateExercise{
			NormalizedName: normalize.Name(ex.Name),
			DisplayName:    normalize.Display(ex.Name),
			TargetSets:     max(1, usedSets(ex.Sets)),
		}
		if reps, ok := targetReps(ex.Sets); ok {
			te.TargetReps = &reps
		}
		tpl.Exercises = append(tpl.Exercises, te)
	}
	return tpl
}

// usedSets counts the sets that carry any data; an untouched trailing set
// is not a target.
func usedSets(sets []domain.Set) int {
	n := 0
	for _, s := range sets {
		if s.Completed || s.WeightKg > 0 || s.Reps > 0 {
			n++
		}
	}
	return n
}

// targetReps is the most frequent positive reps value, ties going to the
// smaller value. Sets with no positive reps leave the target unset.
func targetReps(sets []domain.Set) (int, bool) {
	freq := make(map[int]int, len(sets))
	for _, s := range sets {
		if s.Reps > 0 {
			freq[s.Reps]++
		}
	}

	mode, best := 0, 0
	for reps, n := range freq {
		if n > best || (n == best && reps < mode) {
			mode, best = reps, n
		}
	}
	return mode, best > 0
}

// Upsert inserts tpl into list keyed by normalized name. An existing template
// with the same normalized name keeps its ID and position and has its name,
// exercises and UpdatedAt replaced. A new template gets newID() and is
// prepended. list is not modified.
func Upsert(list []domain.WorkoutTemplate, tpl domain.WorkoutTemplate, newID func() string) ([]domain.WorkoutTemplate, domain.WorkoutTemplate, bool) {
	tpl.NormalizedName = normalize.Name(tpl.DisplayName)

	for i, existing := range list {
		if existing.NormalizedName != tpl.NormalizedName {
			continue
		}
		tpl.ID = existing.ID
		out := append([]domain.WorkoutTemplate(nil), list...)
		out[i] = tpl
		return out, tpl, false
	}

	tpl.ID = newID()
	out := make([]domain.WorkoutTemplate, 0, len(list)+1)
	out = append(out, tpl)
	out = append(out, list...)
	return out, tpl, true
}

// Replace updates the template with tpl.ID in place, allowing a rename as
// long as the new name does not collide with another live template.
func Replace(list []domain.WorkoutTemplate, tpl domain.WorkoutTemplate) ([]domain.WorkoutTemplate, domain.WorkoutTemplate, error) {
	tpl.NormalizedName = normalize.Name(tpl.DisplayName)
	idx := -1
	for i, existing := range list {
		if existing.ID == tpl.ID {
			idx = i
			continue
		}
		if existing.NormalizedName == tpl.NormalizedName {
			return nil, domain.WorkoutTemplate{}, ErrDuplicateName
		}
	}
	if idx < 0 {
		return nil, domain.WorkoutTemplate{}, ErrNotFound
	}
	out := append([]domain.WorkoutTemplate(nil), list...)
	out[idx] = tpl
	return out, tpl, nil
}

// Remove drops the template with the given id.
func Remove(list []domain.WorkoutTemplate, id string) ([]domain.WorkoutTemplate, bool) {
	for i, t := range list {
		if t.ID == id {
			out := make([]domain.WorkoutTemplate, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...), true
		}
	}
	return list, false
}

// FindByName returns the live template whose display name normalizes to the
// same key as name.
func FindByName(list []domain.WorkoutTemplate, name string) (domain.WorkoutTemplate, bool) {
	for _, t := range list {
		if normalize.Equal(t.DisplayName, name) {
			return t, true
		}
	}
	return domain.WorkoutTemplate{}, false
}

// SortByUpdated orders templates most recently updated first.
func SortByUpdated(list []domain.WorkoutTemplate) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
}

func touch(tpl *domain.WorkoutTemplate, now time.Time) {
	tpl.UpdatedAt = now
}
