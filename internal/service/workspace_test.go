package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/repository"
	"alcyxob/overload/internal/repository/memory"
)

func TestStoreClock_TruncatesToUTCMillis(t *testing.T) {
	sp := time.FixedZone("BRT", -3*60*60)
	now := StoreClock(func() time.Time { return time.Date(2026, 3, 10, 6, 0, 0, 123_456_789, sp) })()

	assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 123_000_000, time.UTC), now)
}

// Finished records go through BSON unchanged even when the wall clock has
// sub-millisecond precision.
func TestTracker_FinishedRecordsSurviveBSON(t *testing.T) {
	f := newFixture(t)
	f.clock.now = time.Date(2026, 3, 10, 9, 0, 0, 123_456_789, time.UTC)

	_, err := f.tracker.StartBlank(f.ctx, uid, "Push")
	require.NoError(t, err)
	_, err = f.tracker.AddExercise(f.ctx, uid, "Supino")
	require.NoError(t, err)
	f.logSet(uid, 0, 0, 60, 10)
	f.clock.Advance(40*time.Minute + 987*time.Microsecond)
	res, err := f.tracker.Finish(f.ctx, uid, domain.Addons{Abs: true})
	require.NoError(t, err)

	roundTrip := func(in, out any) {
		t.Helper()
		raw, err := bson.Marshal(in)
		require.NoError(t, err)
		require.NoError(t, bson.Unmarshal(raw, out))
	}

	var s domain.Session
	roundTrip(res.Session, &s)
	assert.Equal(t, res.Session, s)

	require.Len(t, res.Stats, 1)
	var st domain.ExerciseStats
	roundTrip(res.Stats[0], &st)
	assert.Equal(t, res.Stats[0], st)

	var tpl domain.WorkoutTemplate
	roundTrip(res.Template, &tpl)
	assert.Equal(t, res.Template, tpl)
}

func TestWorkspaces_EvictsIdleAndReloads(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker.StartBlank(f.ctx, uid, "Legs")
	require.NoError(t, err)
	_, err = f.tracker.AddExercise(f.ctx, uid, "Agachamento")
	require.NoError(t, err)
	f.logSet(uid, 0, 0, 100, 5)
	_, err = f.tracker.Finish(f.ctx, uid, domain.Addons{})
	require.NoError(t, err)
	f.flush()

	want, err := f.tracker.ListSessions(f.ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.GaugeActiveWorkspaces))

	f.clock.Advance(10 * time.Minute)
	assert.Zero(t, f.ws.Evict(30*time.Minute), "recently used")

	f.clock.Advance(31 * time.Minute)
	assert.Equal(t, 1, f.ws.Evict(30*time.Minute))
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.GaugeActiveWorkspaces))

	got, err := f.tracker.ListSessions(f.ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWorkspaces_KeepsWorkoutInProgress(t *testing.T) {
	f := newFixture(t)

	_, err := f.tracker.StartBlank(f.ctx, uid, "Push")
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	assert.Zero(t, f.ws.Evict(30*time.Minute))

	cur, err := f.tracker.Current(f.ctx, uid)
	require.NoError(t, err)
	assert.True(t, cur.Active)
}

func TestWorkspaces_KeepsFailedWrites(t *testing.T) {
	store := memory.NewStore()
	flaky := &flakySessions{SessionRepository: store.Sessions, down: true}
	store.Sessions = flaky
	f := newFixtureWithStore(t, store)

	_, err := f.tracker.StartBlank(f.ctx, uid, "Push")
	require.NoError(t, err)
	_, err = f.tracker.Finish(f.ctx, uid, domain.Addons{})
	require.NoError(t, err)
	f.flush()
	require.Len(t, f.tracker.SyncFailures(uid), 1)

	f.clock.Advance(time.Hour)
	assert.Zero(t, f.ws.Evict(30*time.Minute))
	assert.Len(t, f.tracker.SyncFailures(uid), 1)
}

type gatedSessions struct {
	repository.SessionRepository
	gate chan struct{}
}

func (r gatedSessions) Upsert(ctx context.Context, userID string, s domain.Session) error {
	<-r.gate
	return r.SessionRepository.Upsert(ctx, userID, s)
}

func TestWorkspaces_KeepsQueuedWrites(t *testing.T) {
	store := memory.NewStore()
	gated := gatedSessions{SessionRepository: store.Sessions, gate: make(chan struct{})}
	store.Sessions = gated
	f := newFixtureWithStore(t, store)

	_, err := f.tracker.StartBlank(f.ctx, uid, "Push")
	require.NoError(t, err)
	_, err = f.tracker.Finish(f.ctx, uid, domain.Addons{})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	assert.Zero(t, f.ws.Evict(30*time.Minute), "session write still queued")

	close(gated.gate)
	f.flush()
	assert.Equal(t, 1, f.ws.Evict(30*time.Minute))

	list, err := f.tracker.ListSessions(f.ctx, uid)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestWorkspaces_RunEvictionStopsWithContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.ws.RunEviction(ctx, time.Millisecond, time.Minute)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("eviction loop did not stop")
	}
}
