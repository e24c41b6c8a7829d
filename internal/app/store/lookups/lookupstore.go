// internal/app/store/lookups/lookupstore.go
package lookupstore

import (
	"context"
	"errors"

	"github.com/Sherifrax/speakup-sub001/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a lookup key has never been seeded.
var ErrNotFound = errors.New("lookup not found")

// Store provides the key/value lists behind the getFilters endpoints.
type Store struct {
	c *mongo.Collection
}

// New creates a new lookup store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("lookups")}
}

// EnsureIndexes creates the unique key index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_key"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Get loads one lookup list by key.
func (s *Store) Get(ctx context.Context, key string) (*models.Lookup, error) {
	var l models.Lookup
	if err := s.c.FindOne(ctx, bson.M{"key": key}).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// Replace upserts the full item list for a key. Used by seeding; the lists
// are reference data, not user-editable.
func (s *Store) Replace(ctx context.Context, key string, items []models.LookupItem) error {
	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$set": bson.M{"items": items}},
		opts,
	)
	return err
}

// SeedIfEmpty writes the item list only when the key does not exist yet, so
// operator-tuned lists survive restarts.
func (s *Store) SeedIfEmpty(ctx context.Context, key string, items []models.LookupItem) error {
	_, err := s.Get(ctx, key)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.Replace(ctx, key, items)
}
