package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/overload/internal/calendar"
	"alcyxob/overload/internal/domain"
)

var ErrWeightNotFound = errors.New("weight entry not found")

// WeightService keeps the body-weight log.
type WeightService interface {
	List(ctx context.Context, userID string) ([]domain.WeightEntry, error)
	Add(ctx context.Context, userID, date string, weightKg float64, note string) (domain.WeightEntry, error)
	Delete(ctx context.Context, userID, id string) error
}

type weightService struct {
	*Workspaces
}

func NewWeightService(ws *Workspaces) WeightService {
	return &weightService{Workspaces: ws}
}

func (s *weightService) List(ctx context.Context, userID string) (out []domain.WeightEntry, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		out = append([]domain.WeightEntry(nil), ws.weights...)
		return nil
	})
	return out, err
}

// Add records a weight. An empty date means today in the configured zone.
func (s *weightService) Add(ctx context.Context, userID, date string, weightKg float64, note string) (out domain.WeightEntry, err error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = calendar.DateKey(s.deps.Now(), s.deps.Location)
	}
	if _, perr := time.Parse(calendar.DateKeyLayout, date); perr != nil {
		return out, ErrInvalidDate
	}
	if weightKg <= 0 {
		return out, fmt.Errorf("%w: weight must be positive", ErrValidationFailed)
	}

	out = domain.WeightEntry{
		ID:       s.deps.NewID(),
		Date:     date,
		WeightKg: weightKg,
		Note:     strings.TrimSpace(note),
	}
	err = s.with(ctx, userID, func(ws *Workspace) error {
		ws.weights = append(ws.weights, out)
		sortWeights(ws.weights)
		s.submit(ws, s.weightUpsert(userID, out))
		return nil
	})
	return out, err
}

func (s *weightService) Delete(ctx context.Context, userID, id string) error {
	return s.with(ctx, userID, func(ws *Workspace) error {
		for i, w := range ws.weights {
			if w.ID != id {
				continue
			}
			ws.weights = append(ws.weights[:i:i], ws.weights[i+1:]...)
			s.submit(ws, s.weightDelete(userID, id))
			return nil
		}
		return ErrWeightNotFound
	})
}
