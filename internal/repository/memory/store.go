// Package memory is an in-process repository backend for tests and
// single-node runs without a database.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/repository"
)

// NewStore returns a Store whose repositories share nothing but the process.
func NewStore() *repository.Store {
	return &repository.Store{
		Users:         NewUserRepository(),
		Profiles:      NewProfileRepository(),
		Sessions:      NewSessionRepository(),
		ExerciseStats: NewExerciseStatsRepository(),
		Templates:     NewTemplateRepository(),
		Weights:       NewWeightRepository(),
	}
}

// table holds records per user, keyed by record id.
type table[T any] struct {
	mu   sync.RWMutex
	rows map[string]map[string]T
	idOf func(T) string
}

func newTable[T any](idOf func(T) string) *table[T] {
	return &table[T]{rows: map[string]map[string]T{}, idOf: idOf}
}

func (t *table[T]) list(userID string, less func(a, b T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.rows[userID]))
	for _, rec := range t.rows[userID] {
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (t *table[T]) upsert(userID string, rec T) error {
	id := t.idOf(rec)
	if userID == "" || id == "" {
		return errors.New("user id and record id are required")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rows[userID] == nil {
		t.rows[userID] = map[string]T{}
	}
	t.rows[userID][id] = rec
	return nil
}

func (t *table[T]) delete(userID, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[userID][id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.rows[userID], id)
	return nil
}

type sessionRepository struct{ t *table[domain.Session] }

func NewSessionRepository() repository.SessionRepository {
	return &sessionRepository{t: newTable(func(s domain.Session) string { return s.ID })}
}

func (r *sessionRepository) ListByUser(_ context.Context, userID string) ([]domain.Session, error) {
	list := r.t.list(userID, func(a, b domain.Session) bool { return a.StartedAt.After(b.StartedAt) })
	for i := range list {
		list[i] = list[i].Clone()
	}
	return list, nil
}

func (r *sessionRepository) Upsert(_ context.Context, userID string, s domain.Session) error {
	return r.t.upsert(userID, s.Clone())
}

func (r *sessionRepository) Delete(_ context.Context, userID, id string) error {
	return r.t.delete(userID, id)
}

type templateRepository struct {
	t *table[domain.WorkoutTemplate]
}

func NewTemplateRepository() repository.TemplateRepository {
	return &templateRepository{t: newTable(func(tpl domain.WorkoutTemplate) string { return tpl.ID })}
}

func (r *templateRepository) ListByUser(_ context.Context, userID string) ([]domain.WorkoutTemplate, error) {
	return r.t.list(userID, func(a, b domain.WorkoutTemplate) bool { return a.UpdatedAt.After(b.UpdatedAt) }), nil
}

func (r *templateRepository) Upsert(_ context.Context, userID string, tpl domain.WorkoutTemplate) error {
	tpl.Exercises = append([]domain.TemplateExercise(nil), tpl.Exercises...)
	return r.t.upsert(userID, tpl)
}

func (r *templateRepository) Delete(_ context.Context, userID, id string) error {
	return r.t.delete(userID, id)
}

type weightRepository struct{ t *table[domain.WeightEntry] }

func NewWeightRepository() repository.WeightRepository {
	return &weightRepository{t: newTable(func(w domain.WeightEntry) string { return w.ID })}
}

func (r *weightRepository) ListByUser(_ context.Context, userID string) ([]domain.WeightEntry, error) {
	return r.t.list(userID, func(a, b domain.WeightEntry) bool { return a.Date > b.Date }), nil
}

func (r *weightRepository) Upsert(_ context.Context, userID string, w domain.WeightEntry) error {
	return r.t.upsert(userID, w)
}

func (r *weightRepository) Delete(_ context.Context, userID, id string) error {
	return r.t.delete(userID, id)
}

type exerciseStatsRepository struct{ t *table[domain.ExerciseStats] }

func NewExerciseStatsRepository() repository.ExerciseStatsRepository {
	return &exerciseStatsRepository{t: newTable(func(st domain.ExerciseStats) string { return st.NormalizedName })}
}

func (r *exerciseStatsRepository) ListByUser(_ context.Context, userID string) ([]domain.ExerciseStats, error) {
	return r.t.list(userID, func(a, b domain.ExerciseStats) bool { return a.NormalizedName < b.NormalizedName }), nil
}

func (r *exerciseStatsRepository) Upsert(_ context.Context, userID string, st domain.ExerciseStats) error {
	return r.t.upsert(userID, st)
}

func (r *exerciseStatsRepository) Delete(_ context.Context, userID, normalizedName string) error {
	return r.t.delete(userID, normalizedName)
}

func (r *exerciseStatsRepository) TopByExercise(_ context.Context, normalizedName string, limit int) ([]repository.UserStats, error) {
	r.t.mu.RLock()
	var rows []repository.UserStats
	for userID, recs := range r.t.rows {
		st, ok := recs[normalizedName]
		if !ok || st.BestWeight == nil {
			continue
		}
		rows = append(rows, repository.UserStats{UserID: userID, Stats: st})
	}
	r.t.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].Stats, rows[j].Stats
		if *a.BestWeight != *b.BestWeight {
			return *a.BestWeight > *b.BestWeight
		}
		if ra, rb := repsOf(a), repsOf(b); ra != rb {
			return ra > rb
		}
		return rows[i].UserID < rows[j].UserID
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func repsOf(st domain.ExerciseStats) int {
	if st.BestReps == nil {
		return -1
	}
	return *st.BestReps
}

type userRepository struct {
	mu    sync.RWMutex
	byID  map[primitive.ObjectID]domain.User
	email map[string]primitive.ObjectID
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{
		byID:  map[primitive.ObjectID]domain.User{},
		email: map[string]primitive.ObjectID{},
	}
}

func (r *userRepository) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("user email and password hash are required")
	}
	key := strings.ToLower(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.email[key]; taken {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.byID[user.ID] = *user
	r.email[key] = user.ID
	return user.ID, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.email[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *userRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

type profileRepository struct {
	mu   sync.RWMutex
	rows map[string]domain.Profile
}

func NewProfileRepository() repository.ProfileRepository {
	return &profileRepository{rows: map[string]domain.Profile{}}
}

func (r *profileRepository) Get(_ context.Context, userID string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.rows[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *profileRepository) Upsert(_ context.Context, p domain.Profile) error {
	if p.UserID == "" {
		return errors.New("profile user id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[p.UserID] = p
	return nil
}

func (r *profileRepository) GetMany(_ context.Context, userIDs []string) (map[string]domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]domain.Profile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := r.rows[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}
