package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/repository"
)

type mongoSessionRepository struct {
	records scopedCollection[domain.Session]
}

// NewMongoSessionRepository creates a new Session repository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		records: newScopedCollection(db, repository.CollectionSessions, "id",
			func(s domain.Session) string { return s.ID }),
	}
}

// ListByUser returns the user's sessions, newest start first.
func (r *mongoSessionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	return r.records.listByUser(ctx, userID, options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}}))
}

func (r *mongoSessionRepository) Upsert(ctx context.Context, userID string, s domain.Session) error {
	return r.records.upsert(ctx, userID, s)
}

func (r *mongoSessionRepository) Delete(ctx context.Context, userID, id string) error {
	return r.records.delete(ctx, userID, id)
}
