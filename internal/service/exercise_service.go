package service

import (
	"context"
	"fmt"
	"sort"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/normalize"
	"alcyxob/overload/internal/repository"
	"alcyxob/overload/internal/stats"
)

// DefaultRankingLimit caps ranking rows when the caller passes no limit.
const DefaultRankingLimit = 20

// ExerciseService exposes per-exercise stats: the user's own records,
// name suggestions while typing, and the cross-user ranking.
type ExerciseService interface {
	ListStats(ctx context.Context, userID string) ([]domain.ExerciseStats, error)
	Suggestions(ctx context.Context, userID, query string) ([]domain.ExerciseStats, error)
	Ranking(ctx context.Context, exerciseName string, limit int) ([]domain.RankingRow, error)
}

type exerciseService struct {
	*Workspaces
	statsRepo   repository.ExerciseStatsRepository
	profileRepo repository.ProfileRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(ws *Workspaces) ExerciseService {
	return &exerciseService{
		Workspaces:  ws,
		statsRepo:   ws.deps.Store.ExerciseStats,
		profileRepo: ws.deps.Store.Profiles,
	}
}

// ListStats returns the user's stats, most used first.
func (s *exerciseService) ListStats(ctx context.Context, userID string) (out []domain.ExerciseStats, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		out = make([]domain.ExerciseStats, 0, len(ws.stats))
		for _, st := range ws.stats {
			out = append(out, st)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].NormalizedName < out[j].NormalizedName
	})
	return out, err
}

func (s *exerciseService) Suggestions(ctx context.Context, userID, query string) (out []domain.ExerciseStats, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		out = stats.Suggest(ws.stats, query, stats.DefaultSuggestionLimit)
		return nil
	})
	return out, err
}

// Ranking reads committed stats of every user, so it lags behind writes still
// in the persistence queue.
func (s *exerciseService) Ranking(ctx context.Context, exerciseName string, limit int) ([]domain.RankingRow, error) {
	key := normalize.Name(exerciseName)
	if key == "" {
		return nil, fmt.Errorf("%w: exercise name is required", ErrValidationFailed)
	}
	if limit <= 0 {
		limit = DefaultRankingLimit
	}

	top, err := s.statsRepo.TopByExercise(ctx, key, limit)
	if err != nil {
		return nil, fmt.Errorf("ranking %q: %w", key, err)
	}

	ids := make([]string, 0, len(top))
	for _, row := range top {
		ids = append(ids, row.UserID)
	}
	profiles, err := s.profileRepo.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("ranking profiles: %w", err)
	}

	rows := make([]domain.RankingRow, 0, len(top))
	for _, row := range top {
		name := anonymousName(row.UserID)
		if p, ok := profiles[row.UserID]; ok && p.DisplayName != "" {
			name = p.DisplayName
		}
		rows = append(rows, domain.RankingRow{
			UserID:      row.UserID,
			DisplayName: name,
			BestWeight:  row.Stats.BestWeight,
			BestReps:    row.Stats.BestReps,
		})
	}
	return rows, nil
}
