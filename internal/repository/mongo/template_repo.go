package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/repository"
)

type mongoTemplateRepository struct {
	records scopedCollection[domain.WorkoutTemplate]
}

// NewMongoTemplateRepository creates a new WorkoutTemplate repository.
func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		records: newScopedCollection(db, repository.CollectionTemplates, "id",
			func(t domain.WorkoutTemplate) string { return t.ID }),
	}
}

// ListByUser returns the user's templates, most recently updated first.
func (r *mongoTemplateRepository) ListByUser(ctx context.Context, userID string) ([]domain.WorkoutTemplate, error) {
	return r.records.listByUser(ctx, userID, options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
}

func (r *mongoTemplateRepository) Upsert(ctx context.Context, userID string, tpl domain.WorkoutTemplate) error {
	return r.records.upsert(ctx, userID, tpl)
}

func (r *mongoTemplateRepository) Delete(ctx context.Context, userID, id string) error {
	return r.records.delete(ctx, userID, id)
}
