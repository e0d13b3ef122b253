package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/overload/internal/domain"
	"alcyxob/overload/internal/repository"
)

type mongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a new Profile repository.
func NewMongoProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &mongoProfileRepository{
		collection: db.Collection(repository.CollectionProfiles),
	}
}

func (r *mongoProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *mongoProfileRepository) Upsert(ctx context.Context, p domain.Profile) error {
	if p.UserID == "" {
		return errors.New("profile user id is required")
	}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"userId": p.UserID}, p, options.Replace().SetUpsert(true))
	return err
}

// GetMany returns the profiles that exist among userIDs, keyed by user id.
func (r *mongoProfileRepository) GetMany(ctx context.Context, userIDs []string) (map[string]domain.Profile, error) {
	out := make(map[string]domain.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"userId": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []domain.Profile
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.UserID] = p
	}
	return out, nil
}

func ensureProfileIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(repository.CollectionProfiles).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
