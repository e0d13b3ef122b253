package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/repository"
)

type mongoExerciseStatsRepository struct {
	records scopedCollection[domain.ExerciseStats]
}

// NewMongoExerciseStatsRepository creates a new ExerciseStats repository.
// Stats records are keyed by their normalized exercise name.
func NewMongoExerciseStatsRepository(db *mongo.Database) repository.ExerciseStatsRepository {
	return &mongoExerciseStatsRepository{
		records: newScopedCollection(db, repository.CollectionExerciseStats, "normalizedName",
			func(st domain.ExerciseStats) string { return st.NormalizedName }),
	}
}

func (r *mongoExerciseStatsRepository) ListByUser(ctx context.Context, userID string) ([]domain.ExerciseStats, error) {
	return r.records.listByUser(ctx, userID)
}

func (r *mongoExerciseStatsRepository) Upsert(ctx context.Context, userID string, st domain.ExerciseStats) error {
	return r.records.upsert(ctx, userID, st)
}

func (r *mongoExerciseStatsRepository) Delete(ctx context.Context, userID, normalizedName string) error {
	return r.records.delete(ctx, userID, normalizedName)
}

func (r *mongoExerciseStatsRepository) TopByExercise(ctx context.Context, normalizedName string, limit int) ([]repository.UserStats, error) {
	filter := bson.M{
		"normalizedName": normalizedName,
		"bestWeight":     bson.M{"$exists": true},
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "bestWeight", Value: -1}, {Key: "bestReps", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.records.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []scopedDoc[domain.ExerciseStats]
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	rows := make([]repository.UserStats, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, repository.UserStats{UserID: d.UserID, Stats: d.Record})
	}
	return rows, nil
}

func ensureRankingIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(repository.CollectionExerciseStats).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "normalizedName", Value: 1},
			{Key: "bestWeight", Value: -1},
			{Key: "bestReps", Value: -1},
		},
		Options: options.Index().SetName("exercise_ranking"),
	})
	return err
}
