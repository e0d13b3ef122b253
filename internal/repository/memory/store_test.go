package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/repository"
)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

func TestSessionRepository_UpsertIsIdempotentAndScoped(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	s := domain.Session{ID: "s1", Name: "A", StartedAt: t0}
	require.NoError(t, repo.Upsert(ctx, "u1", s))
	s.Name = "A2"
	require.NoError(t, repo.Upsert(ctx, "u1", s))
	require.NoError(t, repo.Upsert(ctx, "u1", domain.Session{ID: "s2", StartedAt: t0.Add(time.Hour)}))
	require.NoError(t, repo.Upsert(ctx, "u2", domain.Session{ID: "s1", StartedAt: t0}))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s2", list[0].ID)
	assert.Equal(t, "A2", list[1].Name)

	require.NoError(t, repo.Delete(ctx, "u1", "s1"))
	assert.ErrorIs(t, repo.Delete(ctx, "u1", "s1"), repository.ErrNotFound)

	other, err := repo.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestSessionRepository_StoresCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	s := domain.Session{ID: "s1", Exercises: []domain.SessionExercise{{ID: "e", Sets: []domain.Set{{ID: "x", Reps: 5}}}}}
	require.NoError(t, repo.Upsert(ctx, "u1", s))

	s.Exercises[0].Sets[0].Reps = 99
	list, _ := repo.ListByUser(ctx, "u1")
	assert.Equal(t, 5, list[0].Exercises[0].Sets[0].Reps)
}

func TestExerciseStatsRepository_TopByExercise(t *testing.T) {
	ctx := context.Background()
	repo := NewExerciseStatsRepository()
	require.NoError(t, repo.Upsert(ctx, "a", domain.ExerciseStats{NormalizedName: "supino", BestWeight: ptrF(80), BestReps: ptrI(10)}))
	require.NoError(t, repo.Upsert(ctx, "b", domain.ExerciseStats{NormalizedName: "supino", BestWeight: ptrF(100), BestReps: ptrI(3)}))
	require.NoError(t, repo.Upsert(ctx, "c", domain.ExerciseStats{NormalizedName: "supino", BestWeight: ptrF(80), BestReps: ptrI(12)}))
	require.NoError(t, repo.Upsert(ctx, "d", domain.ExerciseStats{NormalizedName: "supino"}))
	require.NoError(t, repo.Upsert(ctx, "a", domain.ExerciseStats{NormalizedName: "remada", BestWeight: ptrF(200)}))

	rows, err := repo.TopByExercise(ctx, "supino", 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].UserID)
	assert.Equal(t, "c", rows[1].UserID)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	id, err := repo.Create(ctx, &domain.User{Email: "Ana@x.io", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Email: "ana@x.io", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana@x.io", u.Email)

	_, err = repo.GetByEmail(ctx, "nobody@x.io")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProfileRepository_GetMany(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository()
	require.NoError(t, repo.Upsert(ctx, domain.Profile{UserID: "a", DisplayName: "Ana"}))

	got, err := repo.GetMany(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Profile{"a": {UserID: "a", DisplayName: "Ana"}}, got)
}
