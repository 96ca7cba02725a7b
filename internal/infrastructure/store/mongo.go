package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buybuddy/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const savedProductsCollection = "saved_products"

// MongoStore is the MongoDB-backed SavedProductRepository. Records are
// documents keyed by their generated id, queryable by owner.
type MongoStore struct {
	collection *mongo.Collection
}

// Connect opens a MongoDB connection and pings it. The returned close
// function disconnects the client.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}

	closeFn := func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = client.Disconnect(shutdownCtx)
	}

	return client.Database(database), closeFn, nil
}

// NewMongoStore creates a store over the saved_products collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: db.Collection(savedProductsCollection),
	}
}

// EnsureIndexes creates the owner/savedAt index backing the list query.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner_id", Value: 1},
			{Key: "saved_at", Value: -1},
		},
	})
	if err != nil {
		return fmt.Errorf("create saved_products index: %w", err)
	}
	return nil
}

// Insert stores a new saved product document. Duplicate ids are rejected by
// the _id constraint, never merged.
func (s *MongoStore) Insert(ctx context.Context, saved *domain.SavedProduct) error {
	if _, err := s.collection.InsertOne(ctx, saved); err != nil {
		return fmt.Errorf("insert saved product: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's documents ordered by saved_at descending.
func (s *MongoStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.SavedProduct, error) {
	filter := bson.M{"owner_id": ownerID}
	opts := options.Find().SetSort(bson.D{{Key: "saved_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list saved products: %w", err)
	}
	defer cursor.Close(ctx)

	results := []*domain.SavedProduct{}
	for cursor.Next(ctx) {
		var saved domain.SavedProduct
		if err := cursor.Decode(&saved); err != nil {
			return nil, fmt.Errorf("decode saved product: %w", err)
		}
		results = append(results, &saved)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("saved products cursor: %w", err)
	}

	return results, nil
}

// Delete removes the document only when id and owner match in a single
// conditional delete, so racing deletes cannot both succeed. When the
// conditional delete matches nothing, a second lookup classifies the
// failure as ErrNotFound or ErrNotOwner.
func (s *MongoStore) Delete(ctx context.Context, id, requesterID string) error {
	err := s.collection.FindOneAndDelete(ctx, bson.M{"_id": id, "owner_id": requesterID}).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("delete saved product: %w", err)
	}

	lookupErr := s.collection.FindOne(ctx, bson.M{"_id": id}).Err()
	switch {
	case errors.Is(lookupErr, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case lookupErr != nil:
		return fmt.Errorf("classify delete failure: %w", lookupErr)
	default:
		return domain.ErrNotOwner
	}
}
