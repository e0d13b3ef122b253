package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"alcyxob/overload/internal/calendar"
	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/persist"
	"alcyxob/overload/internal/resttimer"
	"alcyxob/overload/internal/session"
	"alcyxob/overload/internal/stats"
	"alcyxob/overload/internal/templates"
)

var (
	ErrNoActiveWorkout   = errors.New("no workout in progress")
	ErrWorkoutInProgress = errors.New("a workout is already in progress")
	ErrSessionNotFound   = errors.New("session not found")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrInvalidDate       = errors.New("invalid date, want YYYY-MM-DD")
	ErrInvalidMonth      = errors.New("invalid month")
)

// WorkoutState is the workout in progress as seen by a client.
type WorkoutState struct {
	Active         bool            `json:"active"`
	Session        *domain.Session `json:"session,omitempty"`
	ElapsedSeconds int             `json:"elapsedSeconds"`
	View           session.View    `json:"view"`
	Timer          TimerState      `json:"timer"`
}

// Mutation is the outcome of an edit of the workout in progress. Applied is
// false for ignored input such as a blank or duplicate exercise name.
type Mutation struct {
	Applied bool         `json:"applied"`
	State   WorkoutState `json:"state"`
}

// FinishResult is everything a finalize produced.
type FinishResult struct {
	Session         domain.Session         `json:"session"`
	Stats           []domain.ExerciseStats `json:"stats"`
	Template        domain.WorkoutTemplate `json:"template"`
	TemplateCreated bool                   `json:"templateCreated"`
	View            session.View           `json:"view"`
}

// TimerState is the rest countdown.
type TimerState struct {
	Running          bool `json:"running"`
	RemainingSeconds int  `json:"remainingSeconds"`
}

// MonthView is the calendar grid of one month.
type MonthView struct {
	Year  int               `json:"year"`
	Month time.Month        `json:"month"`
	Weeks [][]calendar.Cell `json:"weeks"`
}

// Summary is the home screen recap.
type Summary struct {
	calendar.Recap
	TopExercise *domain.ExerciseStats `json:"topExercise,omitempty"`
}

// TrackerService drives the workout lifecycle and the history views.
type TrackerService interface {
	Current(ctx context.Context, userID string) (WorkoutState, error)
	StartBlank(ctx context.Context, userID, name string) (WorkoutState, error)
	StartFromTemplate(ctx context.Context, userID, templateID string) (WorkoutState, error)
	AddExercise(ctx context.Context, userID, name string) (Mutation, error)
	AddSet(ctx context.Context, userID string, exIdx int) (Mutation, error)
	UpdateSet(ctx context.Context, userID string, exIdx, setIdx int, patch session.SetPatch) (Mutation, error)
	Finish(ctx context.Context, userID string, addons domain.Addons) (FinishResult, error)
	Discard(ctx context.Context, userID string) (bool, error)

	ListSessions(ctx context.Context, userID string) ([]domain.Session, error)
	GetSession(ctx context.Context, userID, id string) (domain.Session, error)
	DeleteSession(ctx context.Context, userID, id string) error
	Month(ctx context.Context, userID string, year int, month time.Month) (MonthView, error)
	Day(ctx context.Context, userID, dateKey string) ([]domain.Session, error)
	Summary(ctx context.Context, userID string, year int, month time.Month) (Summary, error)

	Timer(ctx context.Context, userID string) (TimerState, error)
	ExtendTimer(ctx context.Context, userID string) (TimerState, error)
	StopTimer(ctx context.Context, userID string) (TimerState, error)

	SyncFailures(userID string) []SyncFailure
	RetrySync(userID string) int
}

type trackerService struct {
	*Workspaces
}

// NewTrackerService creates a TrackerService over the shared workspaces.
func NewTrackerService(ws *Workspaces) TrackerService {
	return &trackerService{Workspaces: ws}
}

func (s *trackerService) state(ws *Workspace) WorkoutState {
	st := WorkoutState{View: ws.manager.View(), Timer: timerState(ws.timer)}
	if cur, ok := ws.manager.Current(); ok {
		st.Active = true
		st.Session = &cur
		st.ElapsedSeconds = ws.manager.Elapsed()
	}
	return st
}

func timerState(t *resttimer.Timer) TimerState {
	remaining := t.Remaining()
	return TimerState{Running: remaining > 0, RemainingSeconds: remaining}
}

func (s *trackerService) Current(ctx context.Context, userID string) (st WorkoutState, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		st = s.state(ws)
		return nil
	})
	return st, err
}

func (s *trackerService) StartBlank(ctx context.Context, userID, name string) (st WorkoutState, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		if _, err := ws.manager.StartBlank(name); err != nil {
			return mapSessionErr(err)
		}
		st = s.state(ws)
		return nil
	})
	return st, err
}

func (s *trackerService) StartFromTemplate(ctx context.Context, userID, templateID string) (st WorkoutState, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		tpl, ok := findTemplate(ws.templates, templateID)
		if !ok {
			return ErrTemplateNotFound
		}
		if _, err := ws.manager.StartFromTemplate(tpl); err != nil {
			return mapSessionErr(err)
		}
		st = s.state(ws)
		return nil
	})
	return st, err
}

func (s *trackerService) mutate(ctx context.Context, userID string, fn func(m *session.Manager) bool) (out Mutation, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		out.Applied = fn(ws.manager)
		out.State = s.state(ws)
		return nil
	})
	return out, err
}

func (s *trackerService) AddExercise(ctx context.Context, userID, name string) (Mutation, error) {
	return s.mutate(ctx, userID, func(m *session.Manager) bool { return m.AddExercise(name) })
}

func (s *trackerService) AddSet(ctx context.Context, userID string, exIdx int) (Mutation, error) {
	return s.mutate(ctx, userID, func(m *session.Manager) bool { return m.AddSet(exIdx) })
}

func (s *trackerService) UpdateSet(ctx context.Context, userID string, exIdx, setIdx int, patch session.SetPatch) (Mutation, error) {
	return s.mutate(ctx, userID, func(m *session.Manager) bool { return m.UpdateSet(exIdx, setIdx, patch) })
}

// Finish finalizes the workout, folds it into stats and templates, and queues
// the session, stats and template writes in that order.
func (s *trackerService) Finish(ctx context.Context, userID string, addons domain.Addons) (res FinishResult, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		finalized, err := ws.manager.Finalize(addons)
		if err != nil {
			return mapSessionErr(err)
		}

		ws.sessions = append([]domain.Session{finalized}, ws.sessions...)

		var touched []domain.ExerciseStats
		ws.stats, touched = stats.ApplyFinalizedSession(finalized, ws.stats)

		var tpl domain.WorkoutTemplate
		var created bool
		ws.templates, tpl, created = templates.Upsert(ws.templates, templates.Derive(finalized), s.deps.NewID)

		jobs := make([]persist.Job, 0, len(touched)+2)
		jobs = append(jobs, s.sessionUpsert(userID, finalized))
		for _, st := range touched {
			jobs = append(jobs, s.statsUpsert(userID, st))
		}
		jobs = append(jobs, s.templateUpsert(userID, tpl))
		s.submit(ws, jobs...)

		if s.deps.Metrics != nil {
			s.deps.Metrics.CounterSessionsFinalized.Inc()
		}
		log.WithFields(log.Fields{
			"user":      userID,
			"session":   finalized.ID,
			"exercises": len(finalized.Exercises),
			"template":  tpl.ID,
			"created":   created,
		}).Info("workout finalized")

		res = FinishResult{
			Session:         finalized,
			Stats:           touched,
			Template:        tpl,
			TemplateCreated: created,
			View:            ws.manager.View(),
		}
		return nil
	})
	return res, err
}

func (s *trackerService) Discard(ctx context.Context, userID string) (discarded bool, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		discarded = ws.manager.Discard()
		if discarded {
			ws.timer.Stop()
		}
		return nil
	})
	return discarded, err
}

func (s *trackerService) ListSessions(ctx context.Context, userID string) (out []domain.Session, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		out = cloneSessions(ws.sessions)
		return nil
	})
	return out, err
}

func (s *trackerService) GetSession(ctx context.Context, userID, id string) (out domain.Session, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		found, ok := calendar.NewIndex(ws.sessions, s.deps.Location).Find(id)
		if !ok {
			return ErrSessionNotFound
		}
		out = found.Clone()
		return nil
	})
	return out, err
}

// DeleteSession removes a session from history. Stats and templates derived
// from it are left as they are.
func (s *trackerService) DeleteSession(ctx context.Context, userID, id string) error {
	return s.with(ctx, userID, func(ws *Workspace) error {
		for i, sess := range ws.sessions {
			if sess.ID != id {
				continue
			}
			ws.sessions = append(ws.sessions[:i:i], ws.sessions[i+1:]...)
			s.submit(ws, s.sessionDelete(userID, id))
			return nil
		}
		return ErrSessionNotFound
	})
}

func (s *trackerService) Month(ctx context.Context, userID string, year int, month time.Month) (out MonthView, err error) {
	if month < time.January || month > time.December {
		return out, ErrInvalidMonth
	}
	err = s.with(ctx, userID, func(ws *Workspace) error {
		out = MonthView{
			Year:  year,
			Month: month,
			Weeks: calendar.NewIndex(ws.sessions, s.deps.Location).Month(year, month),
		}
		return nil
	})
	return out, err
}

func (s *trackerService) Day(ctx context.Context, userID, dateKey string) (out []domain.Session, err error) {
	if _, perr := time.Parse(calendar.DateKeyLayout, dateKey); perr != nil {
		return nil, ErrInvalidDate
	}
	err = s.with(ctx, userID, func(ws *Workspace) error {
		out = cloneSessions(calendar.NewIndex(ws.sessions, s.deps.Location).Day(dateKey))
		return nil
	})
	return out, err
}

func (s *trackerService) Summary(ctx context.Context, userID string, year int, month time.Month) (out Summary, err error) {
	if month < time.January || month > time.December {
		return out, ErrInvalidMonth
	}
	err = s.with(ctx, userID, func(ws *Workspace) error {
		out.Recap = calendar.MonthRecap(ws.sessions, year, month, s.deps.Location)
		if top, ok := stats.Top(ws.stats); ok {
			out.TopExercise = &top
		}
		return nil
	})
	return out, err
}

func (s *trackerService) Timer(ctx context.Context, userID string) (out TimerState, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		out = timerState(ws.timer)
		return nil
	})
	return out, err
}

func (s *trackerService) ExtendTimer(ctx context.Context, userID string) (out TimerState, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		ws.timer.Extend(resttimer.ExtendStep)
		out = timerState(ws.timer)
		return nil
	})
	return out, err
}

func (s *trackerService) StopTimer(ctx context.Context, userID string) (out TimerState, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		ws.timer.Stop()
		out = timerState(ws.timer)
		return nil
	})
	return out, err
}

func mapSessionErr(err error) error {
	switch {
	case errors.Is(err, session.ErrSessionInProgress):
		return ErrWorkoutInProgress
	case errors.Is(err, session.ErrNoActiveSession):
		return ErrNoActiveWorkout
	default:
		return fmt.Errorf("workout: %w", err)
	}
}

func findTemplate(list []domain.WorkoutTemplate, id string) (domain.WorkoutTemplate, bool) {
	for _, t := range list {
		if t.ID == id {
			return t, true
		}
	}
	return domain.WorkoutTemplate{}, false
}

func cloneSessions(in []domain.Session) []domain.Session {
	out := make([]domain.Session, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
