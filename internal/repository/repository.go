// Package repository declares the persistence gateway. Every workout record
// is scoped by an opaque user id; writes are idempotent upserts keyed by the
// record's stable id.
package repository

import (
	"context"

	"alcyxob/overload/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Collection names shared by every backend.
const (
	CollectionUsers         = "users"
	CollectionProfiles      = "profiles"
	CollectionSessions      = "sessions"
	CollectionExerciseStats = "exerciseStats"
	CollectionTemplates     = "templates"
	CollectionWeights       = "weights"
)

// UserRepository stores sign-in accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ProfileRepository stores one public profile per user.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Upsert(ctx context.Context, profile domain.Profile) error
	GetMany(ctx context.Context, userIDs []string) (map[string]domain.Profile, error)
}

// SessionRepository stores finalized sessions.
type SessionRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Session, error)
	Upsert(ctx context.Context, userID string, s domain.Session) error
	Delete(ctx context.Context, userID, id string) error
}

// UserStats is one user's stats record, as returned by cross-user queries.
type UserStats struct {
	UserID string
	Stats  domain.ExerciseStats
}

// ExerciseStatsRepository stores one stats record per (user, normalized name).
type ExerciseStatsRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.ExerciseStats, error)
	Upsert(ctx context.Context, userID string, st domain.ExerciseStats) error
	Delete(ctx context.Context, userID, normalizedName string) error
	// TopByExercise returns the records of every user for one exercise that
	// carry a best weight, best weight then best reps descending.
	TopByExercise(ctx context.Context, normalizedName string, limit int) ([]UserStats, error)
}

// TemplateRepository stores workout templates.
type TemplateRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.WorkoutTemplate, error)
	Upsert(ctx context.Context, userID string, tpl domain.WorkoutTemplate) error
	Delete(ctx context.Context, userID, id string) error
}

// WeightRepository stores body-weight entries.
type WeightRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.WeightEntry, error)
	Upsert(ctx context.Context, userID string, w domain.WeightEntry) error
	Delete(ctx context.Context, userID, id string) error
}

// Store bundles the repositories one backend provides.
type Store struct {
	Users         UserRepository
	Profiles      ProfileRepository
	Sessions      SessionRepository
	ExerciseStats ExerciseStatsRepository
	Templates     TemplateRepository
	Weights       WeightRepository
}
