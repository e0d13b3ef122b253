package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/repository"
)

type mongoWeightRepository struct {
	records scopedCollection[domain.WeightEntry]
}

// NewMongoWeightRepository creates a new body-weight repository.
func NewMongoWeightRepository(db *mongo.Database) repository.WeightRepository {
	return &mongoWeightRepository{
		records: newScopedCollection(db, repository.CollectionWeights, "id",
			func(w domain.WeightEntry) string { return w.ID }),
	}
}

// ListByUser returns entries newest date first.
func (r *mongoWeightRepository) ListByUser(ctx context.Context, userID string) ([]domain.WeightEntry, error) {
	return r.records.listByUser(ctx, userID, options.Find().SetSort(bson.D{{Key: "dateIso", Value: -1}}))
}

func (r *mongoWeightRepository) Upsert(ctx context.Context, userID string, w domain.WeightEntry) error {
	return r.records.upsert(ctx, userID, w)
}

func (r *mongoWeightRepository) Delete(ctx context.Context, userID, id string) error {
	return r.records.delete(ctx, userID, id)
}
