package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/metrics"
	"alcyxob/overload/internal/persist"
	"alcyxob/overload/internal/repository"
	"alcyxob/overload/internal/resttimer"
	"alcyxob/overload/internal/session"
	"alcyxob/overload/internal/templates"
)

// Deps are shared by every workspace.
type Deps struct {
	Store              *repository.Store
	Queue              *persist.Queue
	Metrics            *metrics.Manager
	Location           *time.Location
	DefaultRestSeconds int
	Now                func() time.Time
	NewID              func() string
}

// Workspace is one user's in-memory state: finalized history, per-exercise
// stats, templates, body weights and the workout in progress. All access goes
// through the workspace mutex, so one user's operations never interleave.
type Workspace struct {
	userID string

	mu        sync.Mutex
	loaded    bool
	sessions  []domain.Session // newest start first
	stats     map[string]domain.ExerciseStats
	templates []domain.WorkoutTemplate
	weights   []domain.WeightEntry
	manager   *session.Manager
	timer     *resttimer.Timer

	// lastUsed and evicted are guarded by mu.
	lastUsed time.Time
	evicted  bool

	syncMu   sync.Mutex
	failures map[string]syncFailure
	inFlight int // queued jobs not yet settled
}

// Workspaces lazily loads and caches one Workspace per user.
type Workspaces struct {
	deps Deps

	mu    sync.Mutex
	byUID map[string]*Workspace
}

// NewWorkspaces validates deps and fills in clock, id and zone defaults.
func NewWorkspaces(deps Deps) *Workspaces {
	if deps.Store == nil || deps.Queue == nil {
		panic("service: store and queue are required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	deps.Now = StoreClock(deps.Now)
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	return &Workspaces{deps: deps, byUID: map[string]*Workspace{}}
}

// StoreClock rounds now to UTC milliseconds, the resolution of a BSON
// datetime, so records reloaded from the store equal the ones written.
func StoreClock(now func() time.Time) func() time.Time {
	return func() time.Time { return now().UTC().Truncate(time.Millisecond) }
}

// get returns the user's workspace. A missing user id is a programming error.
func (w *Workspaces) get(userID string) *Workspace {
	if userID == "" {
		panic("service: workspace requested without a user id")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	ws, ok := w.byUID[userID]
	if !ok {
		ws = &Workspace{
			userID:   userID,
			stats:    map[string]domain.ExerciseStats{},
			failures: map[string]syncFailure{},
		}
		ws.timer = resttimer.New(w.deps.Now)
		ws.manager = session.NewManager(session.Options{
			Now:                w.deps.Now,
			NewID:              w.deps.NewID,
			Rest:               ws.timer,
			DefaultRestSeconds: w.deps.DefaultRestSeconds,
			Templates: func(name string) (domain.WorkoutTemplate, bool) {
				return templates.FindByName(ws.templates, name)
			},
		})
		w.byUID[userID] = ws
		w.reportSizeLocked()
	}
	return ws
}

func (w *Workspaces) reportSizeLocked() {
	if w.deps.Metrics != nil {
		w.deps.Metrics.GaugeActiveWorkspaces.Set(float64(len(w.byUID)))
	}
}

// with runs fn holding the user's workspace lock, loading the four
// collections first if this is the user's first request.
func (w *Workspaces) with(ctx context.Context, userID string, fn func(ws *Workspace) error) error {
	ws := w.get(userID)
	ws.mu.Lock()
	for ws.evicted {
		ws.mu.Unlock()
		ws = w.get(userID)
		ws.mu.Lock()
	}
	defer ws.mu.Unlock()
	ws.lastUsed = w.deps.Now()
	if !ws.loaded {
		if err := w.load(ctx, ws); err != nil {
			return err
		}
	}
	return fn(ws)
}

func (w *Workspaces) load(ctx context.Context, ws *Workspace) error {
	var (
		sessions  []domain.Session
		stats     []domain.ExerciseStats
		tpls      []domain.WorkoutTemplate
		weights   []domain.WeightEntry
		store     = w.deps.Store
		g, gctx   = errgroup.WithContext(ctx)
		startedAt = time.Now()
	)

	g.Go(func() (err error) {
		sessions, err = store.Sessions.ListByUser(gctx, ws.userID)
		return wrapLoad(repository.CollectionSessions, err)
	})
	g.Go(func() (err error) {
		stats, err = store.ExerciseStats.ListByUser(gctx, ws.userID)
		return wrapLoad(repository.CollectionExerciseStats, err)
	})
	g.Go(func() (err error) {
		tpls, err = store.Templates.ListByUser(gctx, ws.userID)
		return wrapLoad(repository.CollectionTemplates, err)
	})
	g.Go(func() (err error) {
		weights, err = store.Weights.ListByUser(gctx, ws.userID)
		return wrapLoad(repository.CollectionWeights, err)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].StartedAt.After(sessions[j].StartedAt) })
	templates.SortByUpdated(tpls)
	sortWeights(weights)

	ws.sessions = sessions
	ws.templates = tpls
	ws.weights = weights
	ws.stats = make(map[string]domain.ExerciseStats, len(stats))
	for _, st := range stats {
		ws.stats[st.NormalizedName] = st
	}
	ws.loaded = true

	log.WithFields(log.Fields{
		"user":      ws.userID,
		"sessions":  len(sessions),
		"stats":     len(stats),
		"templates": len(tpls),
		"weights":   len(weights),
		"took":      time.Since(startedAt),
	}).Debug("workspace loaded")
	return nil
}

func wrapLoad(collection string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load %s: %w", collection, err)
}

func sortWeights(list []domain.WeightEntry) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date > list[j].Date })
}

// Evict drops workspaces unused for at least idle that have no workout in
// progress, no queued writes and no failed writes. They are reloaded from the
// store on the next request. It returns how many were dropped.
func (w *Workspaces) Evict(idle time.Duration) int {
	cutoff := w.deps.Now().Add(-idle)

	w.mu.Lock()
	candidates := make([]*Workspace, 0, len(w.byUID))
	for _, ws := range w.byUID {
		candidates = append(candidates, ws)
	}
	w.mu.Unlock()

	n := 0
	for _, ws := range candidates {
		if !ws.mu.TryLock() {
			continue
		}
		if ws.lastUsed.After(cutoff) || ws.manager.Active() || !ws.settled() {
			ws.mu.Unlock()
			continue
		}
		w.mu.Lock()
		if w.byUID[ws.userID] == ws {
			delete(w.byUID, ws.userID)
			ws.evicted = true
			n++
		}
		w.reportSizeLocked()
		w.mu.Unlock()
		ws.mu.Unlock()
	}
	if n > 0 {
		log.WithField("evicted", n).Debug("idle workspaces evicted")
	}
	return n
}

// RunEviction calls Evict every interval until ctx is done.
func (w *Workspaces) RunEviction(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Evict(idle)
		}
	}
}

func (ws *Workspace) settled() bool {
	ws.syncMu.Lock()
	defer ws.syncMu.Unlock()
	return ws.inFlight == 0 && len(ws.failures) == 0
}
