package calendar_test

import (
	"testing"
	"time"

	"alcyxob/overload/internal/calendar"
	"alcyxob/overload/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByDay_SameLocalDayNewestFirst(t *testing.T) {
	// 23:30 here is already the next day in UTC.
	loc := time.FixedZone("UTC-3", -3*3600)

	morning := time.Date(2026, 3, 10, 8, 0, 0, 0, loc)
	evening := time.Date(2026, 3, 10, 23, 30, 0, 0, loc)
	nextDay := time.Date(2026, 3, 11, 0, 15, 0, 0, loc)

	days := calendar.GroupByDay([]domain.Session{
		{ID: "morning", StartedAt: morning.UTC()},
		{ID: "next", StartedAt: nextDay.UTC()},
		{ID: "evening", StartedAt: evening.UTC()},
	}, loc)

	require.Len(t, days["2026-03-10"], 2)
	assert.Equal(t, "evening", days["2026-03-10"][0].ID)
	assert.Equal(t, "morning", days["2026-03-10"][1].ID)
	require.Len(t, days["2026-03-11"], 1)
	assert.Equal(t, "next", days["2026-03-11"][0].ID)
}

func TestMonthGrid_MondayFirstAndPadded(t *testing.T) {
	// March 2026 starts on a Sunday.
	grid := calendar.MonthGrid(2026, time.March, time.UTC)

	for _, week := range grid {
		assert.Len(t, week, 7)
	}
	require.Len(t, grid, 6)
	for i := 0; i < 6; i++ {
		assert.True(t, grid[0][i].Blank())
	}
	assert.Equal(t, 1, grid[0][6].Day)
	assert.Equal(t, "2026-03-01", grid[0][6].Key)
	assert.Equal(t, 2, grid[1][0].Day, "Monday opens the second week")

	days := 0
	for _, week := range grid {
		for _, c := range week {
			if !c.Blank() {
				days++
			}
		}
	}
	assert.Equal(t, 31, days)
}

func TestMonthGrid_FebruaryStartingMonday(t *testing.T) {
	// February 2027 starts on a Monday and has 28 days: exactly four rows.
	grid := calendar.MonthGrid(2027, time.February, time.UTC)
	require.Len(t, grid, 4)
	assert.Equal(t, 1, grid[0][0].Day)
	assert.Equal(t, 28, grid[3][6].Day)
}

func TestIndex(t *testing.T) {
	d := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ix := calendar.NewIndex([]domain.Session{
		{ID: "a", StartedAt: d},
		{ID: "b", StartedAt: d.Add(time.Hour)},
	}, time.UTC)

	day := ix.Day("2026-03-10")
	require.Len(t, day, 2)
	assert.Equal(t, "b", day[0].ID)
	assert.Empty(t, ix.Day("2026-03-11"))

	s, ok := ix.Find("a")
	require.True(t, ok)
	assert.Equal(t, "a", s.ID)
	_, ok = ix.Find("zzz")
	assert.False(t, ok)

	grid := ix.Month(2026, time.March)
	var tenth calendar.Cell
	for _, week := range grid {
		for _, c := range week {
			if c.Key == "2026-03-10" {
				tenth = c
			}
		}
	}
	assert.Equal(t, 2, tenth.Sessions)
}

func TestMonthRecap(t *testing.T) {
	d := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	dur1, dur2 := 3570, 1800
	sessions := []domain.Session{
		{
			StartedAt:       d,
			DurationSeconds: &dur1,
			Addons:          &domain.Addons{Abs: true},
			Exercises:       []domain.SessionExercise{{Sets: make([]domain.Set, 3)}, {Sets: make([]domain.Set, 2)}},
		},
		{
			StartedAt:       d.AddDate(0, 0, 5),
			DurationSeconds: &dur2,
			Addons:          &domain.Addons{Abs: true, Cardio: true},
			Exercises:       []domain.SessionExercise{{Sets: make([]domain.Set, 4)}},
		},
		{StartedAt: d.AddDate(0, 1, 0), Exercises: []domain.SessionExercise{{Sets: make([]domain.Set, 9)}}},
	}

	r := calendar.MonthRecap(sessions, 2026, time.March, time.UTC)
	assert.Equal(t, 2, r.Sessions)
	assert.Equal(t, 9, r.TotalSets)
	assert.Equal(t, 90, r.TotalMinutes)
	assert.Equal(t, 2, r.AbsCount)
	assert.Equal(t, 1, r.CardioCount)
}
