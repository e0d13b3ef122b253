package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/persist"
	"alcyxob/overload/internal/repository"
)

// Persistence ops.
const (
	opUpsert = "upsert"
	opDelete = "delete"
)

// SyncFailure is a write that exhausted its retries. In-memory state is kept;
// the write can be re-submitted.
type SyncFailure struct {
	Collection string    `json:"collection"`
	RecordID   string    `json:"recordId"`
	Op         string    `json:"op"`
	Error      string    `json:"error"`
	FailedAt   time.Time `json:"failedAt"`
}

type syncFailure struct {
	SyncFailure
	job persist.Job
}

func failureKey(collection, recordID string) string {
	return collection + "/" + recordID
}

// submit hands jobs to the queue in order, tracking failures on ws.
func (w *Workspaces) submit(ws *Workspace, jobs ...persist.Job) {
	for i := range jobs {
		jobs[i].UserID = ws.userID
		jobs[i].OnSuccess = func(j persist.Job) {
			ws.syncMu.Lock()
			ws.inFlight--
			delete(ws.failures, failureKey(j.Collection, j.RecordID))
			ws.syncMu.Unlock()
		}
		jobs[i].OnFailure = func(j persist.Job, err error) {
			ws.syncMu.Lock()
			ws.inFlight--
			ws.failures[failureKey(j.Collection, j.RecordID)] = syncFailure{
				SyncFailure: SyncFailure{
					Collection: j.Collection,
					RecordID:   j.RecordID,
					Op:         j.Op,
					Error:      err.Error(),
					FailedAt:   w.deps.Now(),
				},
				job: j,
			}
			ws.syncMu.Unlock()
		}
	}
	ws.syncMu.Lock()
	ws.inFlight += len(jobs)
	ws.syncMu.Unlock()
	if err := w.deps.Queue.Submit(jobs...); err != nil {
		for _, j := range jobs {
			j.OnFailure(j, err)
		}
	}
}

func (w *Workspaces) sessionUpsert(userID string, s domain.Session) persist.Job {
	repo := w.deps.Store.Sessions
	return persist.Job{
		Collection: repository.CollectionSessions, RecordID: s.ID, Op: opUpsert,
		Run: func(ctx context.Context) error { return repo.Upsert(ctx, userID, s) },
	}
}

func (w *Workspaces) sessionDelete(userID, id string) persist.Job {
	repo := w.deps.Store.Sessions
	return persist.Job{
		Collection: repository.CollectionSessions, RecordID: id, Op: opDelete,
		Run: func(ctx context.Context) error { return ignoreNotFound(repo.Delete(ctx, userID, id)) },
	}
}

func (w *Workspaces) statsUpsert(userID string, st domain.ExerciseStats) persist.Job {
	repo := w.deps.Store.ExerciseStats
	return persist.Job{
		Collection: repository.CollectionExerciseStats, RecordID: st.NormalizedName, Op: opUpsert,
		Run: func(ctx context.Context) error { return repo.Upsert(ctx, userID, st) },
	}
}

func (w *Workspaces) templateUpsert(userID string, tpl domain.WorkoutTemplate) persist.Job {
	repo := w.deps.Store.Templates
	return persist.Job{
		Collection: repository.CollectionTemplates, RecordID: tpl.ID, Op: opUpsert,
		Run: func(ctx context.Context) error { return repo.Upsert(ctx, userID, tpl) },
	}
}

func (w *Workspaces) templateDelete(userID, id string) persist.Job {
	repo := w.deps.Store.Templates
	return persist.Job{
		Collection: repository.CollectionTemplates, RecordID: id, Op: opDelete,
		Run: func(ctx context.Context) error { return ignoreNotFound(repo.Delete(ctx, userID, id)) },
	}
}

func (w *Workspaces) weightUpsert(userID string, e domain.WeightEntry) persist.Job {
	repo := w.deps.Store.Weights
	return persist.Job{
		Collection: repository.CollectionWeights, RecordID: e.ID, Op: opUpsert,
		Run: func(ctx context.Context) error { return repo.Upsert(ctx, userID, e) },
	}
}

func (w *Workspaces) weightDelete(userID, id string) persist.Job {
	repo := w.deps.Store.Weights
	return persist.Job{
		Collection: repository.CollectionWeights, RecordID: id, Op: opDelete,
		Run: func(ctx context.Context) error { return ignoreNotFound(repo.Delete(ctx, userID, id)) },
	}
}

// deleting a record that never reached the store is not a failure
func ignoreNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// SyncFailures lists the user's writes that gave up, oldest first.
func (w *Workspaces) SyncFailures(userID string) []SyncFailure {
	ws := w.get(userID)
	ws.syncMu.Lock()
	defer ws.syncMu.Unlock()
	out := make([]SyncFailure, 0, len(ws.failures))
	for _, f := range ws.failures {
		out = append(out, f.SyncFailure)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FailedAt.Before(out[j].FailedAt) })
	return out
}

// RetrySync re-submits every failed write and returns how many were queued.
func (w *Workspaces) RetrySync(userID string) int {
	ws := w.get(userID)
	ws.syncMu.Lock()
	pending := make([]syncFailure, 0, len(ws.failures))
	for _, f := range ws.failures {
		pending = append(pending, f)
	}
	ws.syncMu.Unlock()

	sort.Slice(pending, func(i, j int) bool { return pending[i].FailedAt.Before(pending[j].FailedAt) })
	jobs := make([]persist.Job, 0, len(pending))
	for _, f := range pending {
		jobs = append(jobs, f.job)
	}
	if len(jobs) > 0 {
		w.submit(ws, jobs...)
	}
	return len(jobs)
}
