package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"alcyxob/overload/internal/repository"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewStore wires every repository against db.
func NewStore(db *mongo.Database) *repository.Store {
	return &repository.Store{
		Users:         NewMongoUserRepository(db),
		Profiles:      NewMongoProfileRepository(db),
		Sessions:      NewMongoSessionRepository(db),
		ExerciseStats: NewMongoExerciseStatsRepository(db),
		Templates:     NewMongoTemplateRepository(db),
		Weights:       NewMongoWeightRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection. Failures are
// returned together so startup can log them without aborting.
func EnsureIndexes(ctx context.Context, db *mongo.Database) []error {
	var errs []error
	for _, f := range []func(context.Context, *mongo.Database) error{
		ensureUserIndexes,
		ensureProfileIndexes,
		ensureUserScopedIndexes(repository.CollectionSessions, "id"),
		ensureUserScopedIndexes(repository.CollectionTemplates, "id"),
		ensureUserScopedIndexes(repository.CollectionWeights, "id"),
		ensureUserScopedIndexes(repository.CollectionExerciseStats, "normalizedName"),
		ensureRankingIndexes,
	} {
		if err := f(ctx, db); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
