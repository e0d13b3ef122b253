package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/storage"
)

var ErrExportDisabled = errors.New("export storage is not configured")

// Snapshot is the exported state of one user.
type Snapshot struct {
	UserID        string                   `json:"uid"`
	ExportedAt    time.Time                `json:"exportedAt"`
	Sessions      []domain.Session         `json:"sessions"`
	ExerciseStats []domain.ExerciseStats   `json:"exerciseStats"`
	Templates     []domain.WorkoutTemplate `json:"templates"`
	Weights       []domain.WeightEntry     `json:"weights"`
}

// ExportResult points at an uploaded snapshot.
type ExportResult struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ExportService uploads JSON snapshots of a user's data to object storage.
type ExportService interface {
	Snapshot(ctx context.Context, userID string) (Snapshot, error)
	Export(ctx context.Context, userID string) (ExportResult, error)
}

type exportService struct {
	*Workspaces
	store     storage.ObjectStore
	urlExpiry time.Duration
}

// NewExportService creates an ExportService. A nil store disables Export.
func NewExportService(ws *Workspaces, store storage.ObjectStore, urlExpiry time.Duration) ExportService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &exportService{Workspaces: ws, store: store, urlExpiry: urlExpiry}
}

func (s *exportService) Snapshot(ctx context.Context, userID string) (snap Snapshot, err error) {
	err = s.with(ctx, userID, func(ws *Workspace) error {
		snap = Snapshot{
			UserID:        userID,
			ExportedAt:    s.deps.Now().UTC(),
			Sessions:      cloneSessions(ws.sessions),
			ExerciseStats: make([]domain.ExerciseStats, 0, len(ws.stats)),
			Templates:     append([]domain.WorkoutTemplate(nil), ws.templates...),
			Weights:       append([]domain.WeightEntry(nil), ws.weights...),
		}
		for _, st := range ws.stats {
			snap.ExerciseStats = append(snap.ExerciseStats, st)
		}
		return nil
	})
	return snap, err
}

func (s *exportService) Export(ctx context.Context, userID string) (ExportResult, error) {
	if s.store == nil {
		return ExportResult{}, ErrExportDisabled
	}
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return ExportResult{}, err
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return ExportResult{}, fmt.Errorf("encode snapshot: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", userID, snap.ExportedAt.Format("20060102T150405Z"))
	if err := s.store.PutObject(ctx, key, "application/json", body); err != nil {
		return ExportResult{}, fmt.Errorf("upload snapshot: %w", err)
	}
	url, err := s.store.GeneratePresignedDownloadURL(ctx, key, s.urlExpiry)
	if err != nil {
		return ExportResult{}, fmt.Errorf("presign snapshot: %w", err)
	}

	log.WithFields(log.Fields{"user": userID, "key": key, "bytes": len(body)}).Info("export uploaded")
	return ExportResult{
		ObjectKey:   key,
		DownloadURL: url,
		ExpiresAt:   snap.ExportedAt.Add(s.urlExpiry),
	}, nil
}
