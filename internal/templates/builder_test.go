package templates_test

import (
	"testing"
	"time"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/templates"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	zero := 0
	five := 5

	tpl, err := templates.Build("  Upper   Power ", []templates.ExerciseDraft{
		{Name: "Supino  Reto"},
		{Name: "supino reto"},
		{Name: "   "},
		{Name: "Remada", TargetSets: &zero, TargetReps: &five},
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "Upper Power", tpl.DisplayName)
	assert.Equal(t, "upper power", tpl.NormalizedName)
	assert.True(t, tpl.UpdatedAt.Equal(now))
	require.Len(t, tpl.Exercises, 2)

	first := tpl.Exercises[0]
	assert.Equal(t, "Supino Reto", first.DisplayName)
	assert.Equal(t, templates.DefaultTargetSets, first.TargetSets)
	assert.Equal(t, templates.DefaultTargetReps, *first.TargetReps)
	assert.Equal(t, templates.DefaultRestSeconds, *first.RestSeconds)

	second := tpl.Exercises[1]
	assert.Equal(t, 1, second.TargetSets)
	assert.Equal(t, 5, *second.TargetReps)
}

func TestBuild_EmptyName(t *testing.T) {
	_, err := templates.Build("  ", nil, time.Now())
	assert.ErrorIs(t, err, templates.ErrEmptyName)
}

func TestFilter(t *testing.T) {
	base := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	list := []domain.WorkoutTemplate{
		{ID: "1", DisplayName: "Push", UpdatedAt: base, Exercises: []domain.TemplateExercise{{DisplayName: "Supino"}}},
		{ID: "2", DisplayName: "Legs", UpdatedAt: base.Add(time.Hour), Exercises: []domain.TemplateExercise{{DisplayName: "Agachamento"}}},
		{ID: "3", DisplayName: "Pull", UpdatedAt: base.Add(2 * time.Hour)},
	}

	all := templates.Filter(list, "")
	require.Len(t, all, 3)
	assert.Equal(t, []string{"3", "2", "1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	byExercise := templates.Filter(list, "SUPÍNO")
	require.Len(t, byExercise, 1)
	assert.Equal(t, "1", byExercise[0].ID)

	assert.Equal(t, "1", list[0].ID, "input order untouched")
}
