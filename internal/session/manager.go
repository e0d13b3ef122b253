// Package session owns the in-progress workout of one user: starting it,
// mutating it set by set, and finalizing it into an immutable Session.
package session

import (
	"errors"
	"strings"
	"time"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/normalize"
)

var (
	ErrNoActiveSession   = errors.New("no workout in progress")
	ErrSessionInProgress = errors.New("a workout is already in progress")
)

// DefaultRestSeconds is the rest countdown used when no template hint applies.
const DefaultRestSeconds = 90

// View is the screen the user should be looking at after an operation.
type View string

const (
	ViewHome     View = "home"
	ViewTrain    View = "train"
	ViewCalendar View = "calendar"
)

// RestStarter is started when a set is marked completed.
type RestStarter interface {
	StartSeconds(seconds int)
}

// TemplateLookup finds the live template whose display name normalizes like
// name.
type TemplateLookup func(name string) (domain.WorkoutTemplate, bool)

// SetPatch is a partial update of one set. Nil fields are left untouched.
type SetPatch struct {
	WeightKg  *float64 `json:"weightKg,omitempty"`
	Reps      *int     `json:"reps,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
}

// Options configure a Manager. Zero values fall back to sane defaults.
type Options struct {
	Now                func() time.Time
	NewID              func() string
	Rest               RestStarter
	Templates          TemplateLookup
	DefaultRestSeconds int
}

// Manager is not safe for concurrent use; the owner serializes calls.
type Manager struct {
	now         func() time.Time
	newID       func() string
	rest        RestStarter
	templates   TemplateLookup
	restSeconds int

	current *domain.Session
	view    View
}

// NewManager returns a Manager with no workout in progress.
func NewManager(opts Options) *Manager {
	m := &Manager{
		now:         opts.Now,
		newID:       opts.NewID,
		rest:        opts.Rest,
		templates:   opts.Templates,
		restSeconds: opts.DefaultRestSeconds,
		view:        ViewHome,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		panic("session: NewID is required")
	}
	if m.restSeconds <= 0 {
		m.restSeconds = DefaultRestSeconds
	}
	return m
}

// Current returns a copy of the workout in progress.
func (m *Manager) Current() (domain.Session, bool) {
	if m.current == nil {
		return domain.Session{}, false
	}
	return m.current.Clone(), true
}

// Active reports whether a workout is in progress.
func (m *Manager) Active() bool { return m.current != nil }

// View returns the view the last operation switched to.
func (m *Manager) View() View { return m.view }

// StartBlank starts an empty workout. An empty name gets a time-of-day name.
func (m *Manager) StartBlank(name string) (domain.Session, error) {
	if m.current != nil {
		return domain.Session{}, ErrSessionInProgress
	}
	now := m.now()
	name = normalize.Display(name)
	if name == "" {
		name = defaultName(now)
	}
	m.begin(name, now, nil)
	return m.current.Clone(), nil
}

// StartFromTemplate starts a workout seeded with the template's exercises:
// max(1, targetSets) empty sets each, reps pre-filled with targetReps.
func (m *Manager) StartFromTemplate(tpl domain.WorkoutTemplate) (domain.Session, error) {
	if m.current != nil {
		return domain.Session{}, ErrSessionInProgress
	}
	exercises := make([]domain.SessionExercise, 0, len(tpl.Exercises))
	for _, te := range tpl.Exercises {
		reps := 0
		if te.TargetReps != nil {
			reps = *te.TargetReps
		}
		sets := make([]domain.Set, max(1, te.TargetSets))
		for i := range sets {
			sets[i] = domain.Set{ID: m.newID(), Reps: reps}
		}
		exercises = append(exercises, domain.SessionExercise{
			ID:         m.newID(),
			ExerciseID: te.NormalizedName,
			Name:       strings.ToUpper(te.DisplayName),
			Sets:       sets,
		})
	}
	m.begin(tpl.DisplayName, m.now(), exercises)
	return m.current.Clone(), nil
}

func (m *Manager) begin(name string, now time.Time, exercises []domain.SessionExercise) {
	if exercises == nil {
		exercises = []domain.SessionExercise{}
	}
	m.current = &domain.Session{
		ID:        m.newID(),
		Name:      name,
		StartedAt: now,
		Exercises: exercises,
		Addons:    &domain.Addons{},
	}
	m.view = ViewTrain
}

// AddExercise appends an exercise with one empty set. Blank names and names
// already in the workout are ignored.
func (m *Manager) AddExercise(name string) bool {
	if m.current == nil {
		return false
	}
	key := normalize.Name(name)
	if key == "" {
		return false
	}
	for _, ex := range m.current.Exercises {
		if normalize.Name(ex.Name) == key {
			return false
		}
	}
	m.current.Exercises = append(m.current.Exercises, domain.SessionExercise{
		ID:         m.newID(),
		ExerciseID: key,
		Name:       strings.ToUpper(normalize.Display(name)),
		Sets:       []domain.Set{{ID: m.newID()}},
	})
	return true
}

// AddSet appends a set to the exercise, carrying the previous set's weight
// and reps forward.
func (m *Manager) AddSet(exIdx int) bool {
	ex := m.exercise(exIdx)
	if ex == nil {
		return false
	}
	next := domain.Set{ID: m.newID()}
	if n := len(ex.Sets); n > 0 {
		next.WeightKg = ex.Sets[n-1].WeightKg
		next.Reps = ex.Sets[n-1].Reps
	}
	ex.Sets = append(ex.Sets, next)
	return true
}

// UpdateSet applies patch to one set. Completing a set starts the rest timer.
func (m *Manager) UpdateSet(exIdx, setIdx int, patch SetPatch) bool {
	ex := m.exercise(exIdx)
	if ex == nil || setIdx < 0 || setIdx >= len(ex.Sets) {
		return false
	}
	s := &ex.Sets[setIdx]
	if patch.WeightKg != nil {
		s.WeightKg = max(0, *patch.WeightKg)
	}
	if patch.Reps != nil {
		s.Reps = max(0, *patch.Reps)
	}
	if patch.Completed != nil {
		s.Completed = *patch.Completed
		if *patch.Completed && m.rest != nil {
			m.rest.StartSeconds(m.RestSecondsFor(ex.Name))
		}
	}
	return true
}

// RestSecondsFor resolves the rest countdown for an exercise of the current
// workout: the positive restSeconds of the matching template exercise, or the
// default.
func (m *Manager) RestSecondsFor(exerciseName string) int {
	if m.current == nil || m.templates == nil {
		return m.restSeconds
	}
	tpl, ok := m.templates(m.current.Name)
	if !ok {
		return m.restSeconds
	}
	te, ok := tpl.Exercise(normalize.Name(exerciseName))
	if !ok || te.RestSeconds == nil || *te.RestSeconds <= 0 {
		return m.restSeconds
	}
	return *te.RestSeconds
}

// Elapsed returns the whole seconds since the workout started.
func (m *Manager) Elapsed() int {
	if m.current == nil {
		return 0
	}
	return wholeSeconds(m.current.StartedAt, m.now())
}

// Finalize ends the workout and returns it. The manager goes back to having
// no workout and switches to the calendar view.
func (m *Manager) Finalize(addons domain.Addons) (domain.Session, error) {
	if m.current == nil {
		return domain.Session{}, ErrNoActiveSession
	}
	ended := m.now()
	duration := wholeSeconds(m.current.StartedAt, ended)

	s := m.current.Clone()
	s.EndedAt = &ended
	s.DurationSeconds = &duration
	s.Addons = &domain.Addons{
		Abs:    addons.Abs,
		Cardio: addons.Cardio,
		Notes:  strings.TrimSpace(addons.Notes),
	}

	m.current = nil
	m.view = ViewCalendar
	return s, nil
}

// Discard drops the workout in progress without recording anything.
func (m *Manager) Discard() bool {
	if m.current == nil {
		return false
	}
	m.current = nil
	m.view = ViewHome
	return true
}

func (m *Manager) exercise(idx int) *domain.SessionExercise {
	if m.current == nil || idx < 0 || idx >= len(m.current.Exercises) {
		return nil
	}
	return &m.current.Exercises[idx]
}

func wholeSeconds(from, to time.Time) int {
	return max(0, int(to.Sub(from)/time.Second))
}

func defaultName(now time.Time) string {
	if now.Hour() < 12 {
		return "MORNING SESSION"
	}
	return "AFTERNOON SESSION"
}
