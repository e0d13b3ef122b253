package templates

import (
	"strings"
	"time"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/normalize"
)

// Builder defaults for exercises added by hand.
const (
	DefaultTargetSets  = 3
	DefaultTargetReps  = 8
	DefaultRestSeconds = 120
)

// ExerciseDraft is an exercise as entered in the manual builder. Nil fields
// take the builder defaults.
type ExerciseDraft struct {
	Name        string
	TargetSets  *int
	TargetReps  *int
	RestSeconds *int
}

// Build cleans a manual template: names are collapsed and normalized, blank
// and repeated exercises dropped, and targetSets clamped to at least 1.
func Build(name string, drafts []ExerciseDraft, now time.Time) (domain.WorkoutTemplate, error) {
	display := normalize.Display(name)
	if display == "" {
		return domain.WorkoutTemplate{}, ErrEmptyName
	}

	tpl := domain.WorkoutTemplate{
		NormalizedName: normalize.Name(display),
		DisplayName:    display,
		Exercises:      make([]domain.TemplateExercise, 0, len(drafts)),
	}
	touch(&tpl, now)

	seen := make(map[string]struct{}, len(drafts))
	for _, d := range drafts {
		key := normalize.Name(d.Name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		te := domain.TemplateExercise{
			NormalizedName: key,
			DisplayName:    normalize.Display(d.Name),
			TargetSets:     DefaultTargetSets,
			TargetReps:     intPtr(DefaultTargetReps),
			RestSeconds:    intPtr(DefaultRestSeconds),
		}
		if d.TargetSets != nil {
			te.TargetSets = max(1, *d.TargetSets)
		}
		if d.TargetReps != nil {
			te.TargetReps = intPtr(*d.TargetReps)
		}
		if d.RestSeconds != nil {
			te.RestSeconds = intPtr(*d.RestSeconds)
		}
		tpl.Exercises = append(tpl.Exercises, te)
	}
	return tpl, nil
}

// Filter returns the templates, newest first, whose name or any exercise
// name contains query.
func Filter(list []domain.WorkoutTemplate, query string) []domain.WorkoutTemplate {
	out := append([]domain.WorkoutTemplate(nil), list...)
	SortByUpdated(out)

	q := normalize.Name(query)
	if q == "" {
		return out
	}
	filtered := out[:0]
	for _, t := range out {
		if matches(t, q) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func matches(t domain.WorkoutTemplate, q string) bool {
	if strings.Contains(normalize.Name(t.DisplayName), q) {
		return true
	}
	for _, ex := range t.Exercises {
		if strings.Contains(normalize.Name(ex.DisplayName), q) {
			return true
		}
	}
	return false
}

func intPtr(v int) *int { return &v }
