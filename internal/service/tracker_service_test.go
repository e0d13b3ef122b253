package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/repository"
	"alcyxob/overload/internal/repository/memory"
	"alcyxob/overload/internal/session"
	"alcyxob/overload/internal/templates"
)

const uid = "user-1"

func sessionPatch(weight float64, reps int, completed bool) session.SetPatch {
	return session.SetPatch{WeightKg: floatPtr(weight), Reps: intPtr(reps), Completed: boolPtr(completed)}
}

func TestTracker_BlankWorkoutScenario(t *testing.T) {
	f := newFixture(t)

	st, err := f.tracker.StartBlank(f.ctx, uid, "")
	require.NoError(t, err)
	require.True(t, st.Active)
	assert.Equal(t, "MORNING SESSION", st.Session.Name)
	assert.Equal(t, session.ViewTrain, st.View)

	m, err := f.tracker.AddExercise(f.ctx, uid, "Supino")
	require.NoError(t, err)
	require.True(t, m.Applied)

	m, err = f.tracker.AddSet(f.ctx, uid, 0)
	require.NoError(t, err)
	require.True(t, m.Applied)
	sets := m.State.Session.Exercises[0].Sets
	require.Len(t, sets, 2)
	assert.Equal(t, 0.0, sets[1].WeightKg)
	assert.Equal(t, 0, sets[1].Reps)

	f.logSet(uid, 0, 0, 60, 10)

	timer, err := f.tracker.Timer(f.ctx, uid)
	require.NoError(t, err)
	assert.True(t, timer.Running)
	assert.Equal(t, 90, timer.RemainingSeconds)

	f.clock.Advance(40 * time.Minute)
	res, err := f.tracker.Finish(f.ctx, uid, domain.Addons{})
	require.NoError(t, err)

	assert.Equal(t, session.ViewCalendar, res.View)
	require.NotNil(t, res.Session.DurationSeconds)
	assert.Equal(t, 2400, *res.Session.DurationSeconds)
	assert.Empty(t, res.Session.Addons.Notes)

	require.Len(t, res.Stats, 1)
	supino := res.Stats[0]
	assert.Equal(t, "supino", supino.NormalizedName)
	assert.Equal(t, 60.0, *supino.LastWeight)
	assert.Equal(t, 10, *supino.LastReps)
	assert.Equal(t, 60.0, *supino.BestWeight)
	assert.Equal(t, 10, *supino.BestReps)
	assert.Equal(t, 1, supino.UsageCount)

	assert.True(t, res.TemplateCreated)
	assert.Equal(t, "MORNING SESSION", res.Template.DisplayName)
	require.Len(t, res.Template.Exercises, 1)
	te := res.Template.Exercises[0]
	assert.Equal(t, "supino", te.NormalizedName)
	assert.Equal(t, 1, te.TargetSets)
	require.NotNil(t, te.TargetReps)
	assert.Equal(t, 10, *te.TargetReps)
	assert.Nil(t, te.RestSeconds)

	cur, err := f.tracker.Current(f.ctx, uid)
	require.NoError(t, err)
	assert.False(t, cur.Active)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CounterSessionsFinalized))
}

func TestTracker_ReloadReconstructsState(t *testing.T) {
	store := memory.NewStore()
	f := newFixtureWithStore(t, store)

	_, err := f.tracker.StartBlank(f.ctx, uid, "Legs")
	require.NoError(t, err)
	_, err = f.tracker.AddExercise(f.ctx, uid, "Agachamento")
	require.NoError(t, err)
	f.logSet(uid, 0, 0, 100, 5)
	_, err = f.tracker.Finish(f.ctx, uid, domain.Addons{Cardio: true, Notes: "  heavy  "})
	require.NoError(t, err)
	f.flush()

	wantSessions, err := f.tracker.ListSessions(f.ctx, uid)
	require.NoError(t, err)
	wantStats, err := f.exercises.ListStats(f.ctx, uid)
	require.NoError(t, err)
	wantTemplates, err := f.templates.List(f.ctx, uid, "")
	require.NoError(t, err)

	reloaded := newFixtureWithStore(t, store)
	gotSessions, err := reloaded.tracker.ListSessions(reloaded.ctx, uid)
	require.NoError(t, err)
	gotStats, err := reloaded.exercises.ListStats(reloaded.ctx, uid)
	require.NoError(t, err)
	gotTemplates, err := reloaded.templates.List(reloaded.ctx, uid, "")
	require.NoError(t, err)

	assert.Equal(t, wantSessions, gotSessions)
	assert.Equal(t, wantStats, gotStats)
	assert.Equal(t, wantTemplates, gotTemplates)
	assert.Equal(t, "heavy", gotSessions[0].Addons.Notes)
}

func TestTracker_FinishedSessionUpdatesSavedTemplateInPlace(t *testing.T) {
	f := newFixture(t)

	saved, created, err := f.templates.Save(f.ctx, uid, "Push A", []templates.ExerciseDraft{{Name: "Supino"}})
	require.NoError(t, err)
	require.True(t, created)

	_, err = f.tracker.StartBlank(f.ctx, uid, "push a ")
	require.NoError(t, err)
	_, err = f.tracker.AddExercise(f.ctx, uid, "Supino")
	require.NoError(t, err)
	f.logSet(uid, 0, 0, 70, 8)
	res, err := f.tracker.Finish(f.ctx, uid, domain.Addons{})
	require.NoError(t, err)

	assert.False(t, res.TemplateCreated)
	assert.Equal(t, saved.ID, res.Template.ID)

	list, err := f.templates.List(f.ctx, uid, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)
}

func TestTracker_BestSurvivesLighterSession(t *testing.T) {
	f := newFixture(t)

	for _, set := range []struct {
		weight float64
		reps   int
	}{{100, 5}, {90, 8}} {
		_, err := f.tracker.StartBlank(f.ctx, uid, "Bench day")
		require.NoError(t, err)
		_, err = f.tracker.AddExercise(f.ctx, uid, "Supino")
		require.NoError(t, err)
		f.logSet(uid, 0, 0, set.weight, set.reps)
		_, err = f.tracker.Finish(f.ctx, uid, domain.Addons{})
		require.NoError(t, err)
		f.clock.Advance(24 * time.Hour)
	}

	all, err := f.exercises.ListStats(f.ctx, uid)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 100.0, *all[0].BestWeight)
	assert.Equal(t, 5, *all[0].BestReps)
	assert.Equal(t, 90.0, *all[0].LastWeight)
	assert.Equal(t, 2, all[0].UsageCount)
}

func TestTracker_LifecycleErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker.Finish(f.ctx, uid, domain.Addons{})
	assert.ErrorIs(t, err, ErrNoActiveWorkout)

	m, err := f.tracker.AddExercise(f.ctx, uid, "Supino")
	require.NoError(t, err)
	assert.False(t, m.Applied, "mutations without a workout are ignored")

	_, err = f.tracker.StartBlank(f.ctx, uid, "A")
	require.NoError(t, err)
	_, err = f.tracker.StartBlank(f.ctx, uid, "B")
	assert.ErrorIs(t, err, ErrWorkoutInProgress)

	_, err = f.tracker.StartFromTemplate(f.ctx, uid, "missing")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	m, err = f.tracker.AddExercise(f.ctx, uid, "   ")
	require.NoError(t, err)
	assert.False(t, m.Applied)

	discarded, err := f.tracker.Discard(f.ctx, uid)
	require.NoError(t, err)
	assert.True(t, discarded)

	list, err := f.tracker.ListSessions(f.ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, list, "discarded workouts are not recorded")
}

func TestTracker_RestFromTemplateHint(t *testing.T) {
	f := newFixture(t)

	tpl, _, err := f.templates.Save(f.ctx, uid, "Push A", []templates.ExerciseDraft{
		{Name: "Supino", TargetSets: intPtr(2), TargetReps: intPtr(10), RestSeconds: intPtr(150)},
	})
	require.NoError(t, err)

	st, err := f.tracker.StartFromTemplate(f.ctx, uid, tpl.ID)
	require.NoError(t, err)
	require.Len(t, st.Session.Exercises, 1)
	assert.Equal(t, "SUPINO", st.Session.Exercises[0].Name)
	assert.Len(t, st.Session.Exercises[0].Sets, 2)
	assert.Equal(t, 10, st.Session.Exercises[0].Sets[0].Reps)

	f.logSet(uid, 0, 0, 60, 10)
	timer, err := f.tracker.Timer(f.ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 150, timer.RemainingSeconds)

	f.clock.Advance(10 * time.Second)
	timer, err = f.tracker.ExtendTimer(f.ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 155, timer.RemainingSeconds)

	timer, err = f.tracker.StopTimer(f.ctx, uid)
	require.NoError(t, err)
	assert.False(t, timer.Running)
	assert.Equal(t, 0, timer.RemainingSeconds)
}

func TestTracker_HistoryCalendarAndSummary(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker.StartBlank(f.ctx, uid, "Pull")
	require.NoError(t, err)
	_, err = f.tracker.AddExercise(f.ctx, uid, "Remada")
	require.NoError(t, err)
	f.logSet(uid, 0, 0, 50, 12)
	f.clock.Advance(45 * time.Minute)
	res, err := f.tracker.Finish(f.ctx, uid, domain.Addons{Abs: true})
	require.NoError(t, err)

	got, err := f.tracker.GetSession(f.ctx, uid, res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pull", got.Name)

	day, err := f.tracker.Day(f.ctx, uid, "2026-03-10")
	require.NoError(t, err)
	require.Len(t, day, 1)

	_, err = f.tracker.Day(f.ctx, uid, "10/03/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)

	month, err := f.tracker.Month(f.ctx, uid, 2026, time.March)
	require.NoError(t, err)
	found := false
	for _, week := range month.Weeks {
		for _, c := range week {
			if c.Key == "2026-03-10" {
				found = true
				assert.Equal(t, 1, c.Sessions)
			}
		}
	}
	assert.True(t, found)

	_, err = f.tracker.Month(f.ctx, uid, 2026, 13)
	assert.ErrorIs(t, err, ErrInvalidMonth)

	sum, err := f.tracker.Summary(f.ctx, uid, 2026, time.March)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Sessions)
	assert.Equal(t, 1, sum.TotalSets)
	assert.Equal(t, 45, sum.TotalMinutes)
	assert.Equal(t, 1, sum.AbsCount)
	require.NotNil(t, sum.TopExercise)
	assert.Equal(t, "remada", sum.TopExercise.NormalizedName)

	require.NoError(t, f.tracker.DeleteSession(f.ctx, uid, res.Session.ID))
	assert.ErrorIs(t, f.tracker.DeleteSession(f.ctx, uid, res.Session.ID), ErrSessionNotFound)

	tpls, err := f.templates.List(f.ctx, uid, "")
	require.NoError(t, err)
	assert.Len(t, tpls, 1, "deleting a session keeps its template")
	st, err := f.exercises.ListStats(f.ctx, uid)
	require.NoError(t, err)
	assert.Len(t, st, 1)

	f.flush()
	stored, err := f.store.Sessions.ListByUser(f.ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

type flakySessions struct {
	repository.SessionRepository
	mu   sync.Mutex
	down bool
}

func (r *flakySessions) setDown(down bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.down = down
}

func (r *flakySessions) Upsert(ctx context.Context, userID string, s domain.Session) error {
	r.mu.Lock()
	down := r.down
	r.mu.Unlock()
	if down {
		return errors.New("store unavailable")
	}
	return r.SessionRepository.Upsert(ctx, userID, s)
}

func TestTracker_FailedWritesCanBeRetried(t *testing.T) {
	store := memory.NewStore()
	flaky := &flakySessions{SessionRepository: store.Sessions, down: true}
	store.Sessions = flaky
	f := newFixtureWithStore(t, store)

	_, err := f.tracker.StartBlank(f.ctx, uid, "Push")
	require.NoError(t, err)
	_, err = f.tracker.AddExercise(f.ctx, uid, "Supino")
	require.NoError(t, err)
	f.logSet(uid, 0, 0, 60, 10)
	res, err := f.tracker.Finish(f.ctx, uid, domain.Addons{})
	require.NoError(t, err)
	f.flush()

	failures := f.tracker.SyncFailures(uid)
	require.Len(t, failures, 1)
	assert.Equal(t, repository.CollectionSessions, failures[0].Collection)
	assert.Equal(t, res.Session.ID, failures[0].RecordID)

	// stats and template writes are independent of the failed session write
	storedStats, err := store.ExerciseStats.ListByUser(f.ctx, uid)
	require.NoError(t, err)
	assert.Len(t, storedStats, 1)

	// in-memory history is not rolled back
	list, err := f.tracker.ListSessions(f.ctx, uid)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	flaky.setDown(false)
	assert.Equal(t, 1, f.tracker.RetrySync(uid))
	f.flush()

	assert.Empty(t, f.tracker.SyncFailures(uid))
	stored, err := store.Sessions.ListByUser(f.ctx, uid)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, res.Session.ID, stored[0].ID)
}

func TestWorkspaces_PanicsWithoutUser(t *testing.T) {
	f := newFixture(t)
	assert.Panics(t, func() { _, _ = f.tracker.Current(f.ctx, "") })
}

func TestWorkspaces_LoadErrorIsReturned(t *testing.T) {
	store := memory.NewStore()
	store.Templates = failingTemplates{}
	f := newFixtureWithStore(t, store)

	_, err := f.tracker.Current(f.ctx, uid)
	assert.ErrorContains(t, err, "load templates")
}

type failingTemplates struct{ repository.TemplateRepository }

func (failingTemplates) ListByUser(context.Context, string) ([]domain.WorkoutTemplate, error) {
	return nil, errors.New("boom")
}
