package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/overload/internal/repository"
)

// scopedDoc is the stored shape of a user-owned record: the record's own
// fields inlined next to the owning user id.
type scopedDoc[T any] struct {
	UserID string `bson:"userId"`
	Record T      `bson:",inline"`
}

// scopedCollection holds records of one type, keyed by (userId, idKey).
type scopedCollection[T any] struct {
	collection *mongo.Collection
	idKey      string
	idOf       func(T) string
}

func newScopedCollection[T any](db *mongo.Database, name, idKey string, idOf func(T) string) scopedCollection[T] {
	return scopedCollection[T]{
		collection: db.Collection(name),
		idKey:      idKey,
		idOf:       idOf,
	}
}

func (c scopedCollection[T]) listByUser(ctx context.Context, userID string, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := c.collection.Find(ctx, bson.M{"userId": userID}, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []scopedDoc[T]
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Record)
	}
	return out, nil
}

// upsert replaces the whole document, so fields absent from rec are absent
// from the stored record too.
func (c scopedCollection[T]) upsert(ctx context.Context, userID string, rec T) error {
	id := c.idOf(rec)
	if userID == "" || id == "" {
		return fmt.Errorf("%s upsert: user id and record id are required", c.collection.Name())
	}
	filter := bson.M{"userId": userID, c.idKey: id}
	_, err := c.collection.ReplaceOne(ctx, filter, scopedDoc[T]{UserID: userID, Record: rec}, options.Replace().SetUpsert(true))
	return err
}

func (c scopedCollection[T]) delete(ctx context.Context, userID, id string) error {
	result, err := c.collection.DeleteOne(ctx, bson.M{"userId": userID, c.idKey: id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func ensureUserScopedIndexes(name, idKey string) func(context.Context, *mongo.Database) error {
	return func(ctx context.Context, db *mongo.Database) error {
		_, err := db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: idKey, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("indexes for %s: %w", name, err)
		}
		return nil
	}
}
