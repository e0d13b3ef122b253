package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"alcyxob/overload/internal/metrics"
	"alcyxob/overload/internal/persist"
	"alcyxob/overload/internal/repository"
	"alcyxob/overload/internal/repository/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	clock   *fakeClock
	store   *repository.Store
	queue   *persist.Queue
	metrics *metrics.Manager
	ws      *Workspaces

	tracker   TrackerService
	templates TemplateService
	exercises ExerciseService
	weights   WeightService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithStore(t, memory.NewStore())
}

func newFixtureWithStore(t *testing.T, store *repository.Store) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		ctx:     context.Background(),
		clock:   &fakeClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
		store:   store,
		metrics: metrics.NewTestManager(),
	}
	f.queue = persist.NewQueue(persist.Config{MaxAttempts: 1, RetryBackoff: time.Millisecond}, f.metrics)
	t.Cleanup(func() { _ = f.queue.Close(context.Background()) })

	n := 0
	var idMu sync.Mutex
	f.ws = NewWorkspaces(Deps{
		Store:    store,
		Queue:    f.queue,
		Metrics:  f.metrics,
		Location: time.UTC,
		Now:      f.clock.Now,
		NewID: func() string {
			idMu.Lock()
			defer idMu.Unlock()
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	f.tracker = NewTrackerService(f.ws)
	f.templates = NewTemplateService(f.ws)
	f.exercises = NewExerciseService(f.ws)
	f.weights = NewWeightService(f.ws)
	return f
}

// flush waits until every job queued so far has settled.
func (f *fixture) flush() {
	f.t.Helper()
	done := make(chan struct{})
	require.NoError(f.t, f.queue.Submit(persist.Job{
		Run:       func(context.Context) error { return nil },
		OnSuccess: func(persist.Job) { close(done) },
	}))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		f.t.Fatal("persist queue did not drain")
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

// logSet fills and completes one set.
func (f *fixture) logSet(uid string, exIdx, setIdx int, weight float64, reps int) {
	f.t.Helper()
	m, err := f.tracker.UpdateSet(f.ctx, uid, exIdx, setIdx, sessionPatch(weight, reps, true))
	require.NoError(f.t, err)
	require.True(f.t, m.Applied)
}
