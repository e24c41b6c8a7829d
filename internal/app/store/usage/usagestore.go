// Package usage provides storage for dashboard API usage statistics with a
// configurable bucket duration. The dashboard's usage charts are drawn from
// these buckets.
package usage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for usage statistics.
const CollectionName = "usage_stats"

// StatType identifies the type of API operation being tracked.
type StatType string

const (
	StatAPIKeySearch  StatType = "apikeys_search"
	StatAPIKeySave    StatType = "apikeys_save"
	StatSpeakUpSearch StatType = "speakup_search"
	StatSpeakUpSave   StatType = "speakup_save"
	StatSpeakUpExport StatType = "speakup_export"
)

// Bucket represents a time bucket of aggregated request statistics.
type Bucket struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Bucket         time.Time          `bson:"bucket" json:"bucket"`                   // bucket start time
	BucketDuration string             `bson:"bucket_duration" json:"bucketDuration"` // e.g. "1h", "15m"
	StatType       StatType           `bson:"stat_type" json:"statType"`
	Requests       int64              `bson:"requests" json:"requests"`
	Errors         int64              `bson:"errors" json:"errors"` // 4xx and 5xx responses
	TotalMs        int64              `bson:"total_ms" json:"-"`
	MinMs          int64              `bson:"min_ms" json:"minMs"`
	MaxMs          int64              `bson:"max_ms" json:"maxMs"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"-"`
}

// AvgMs returns the average response time in milliseconds.
func (b *Bucket) AvgMs() float64 {
	if b.Requests == 0 {
		return 0
	}
	return float64(b.TotalMs) / float64(b.Requests)
}

// Store provides usage statistics persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a new usage stats store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// EnsureIndexes creates indexes for efficient queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "bucket", Value: 1},
				{Key: "stat_type", Value: 1},
				{Key: "bucket_duration", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("idx_bucket_type_duration"),
		},
		{
			Keys: bson.D{
				{Key: "stat_type", Value: 1},
				{Key: "bucket", Value: 1},
			},
			Options: options.Index().SetName("idx_type_bucket"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// TruncateToBucket truncates a time to the start of its bucket.
func TruncateToBucket(t time.Time, duration time.Duration) time.Time {
	return t.UTC().Truncate(duration)
}

// Record records a single API request's statistics.
// This atomically updates the appropriate bucket, creating it if needed.
func (s *Store) Record(ctx context.Context, statType StatType, bucketDuration time.Duration, durationMs int64, isError bool) error {
	now := time.Now().UTC()
	bucket := TruncateToBucket(now, bucketDuration)
	durationStr := bucketDuration.String()

	// $min and $max handle both the insert and update cases, so min_ms and
	// max_ms must not also appear in $setOnInsert (that would conflict).
	update := bson.M{
		"$inc": bson.M{
			"requests": 1,
			"total_ms": durationMs,
		},
		"$set": bson.M{
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":             primitive.NewObjectID(),
			"bucket":          bucket,
			"bucket_duration": durationStr,
			"stat_type":       statType,
		},
		"$min": bson.M{
			"min_ms": durationMs,
		},
		"$max": bson.M{
			"max_ms": durationMs,
		},
	}

	if isError {
		update["$inc"].(bson.M)["errors"] = 1
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{
		"bucket":          bucket,
		"stat_type":       statType,
		"bucket_duration": durationStr,
	}, update, opts)
	return err
}

// GetRange retrieves buckets for a time range and stat type, oldest first.
// If bucketDuration is empty, all resolutions are returned.
func (s *Store) GetRange(ctx context.Context, statType StatType, startTime, endTime time.Time, bucketDuration string) ([]Bucket, error) {
	filter := bson.M{
		"stat_type": statType,
		"bucket": bson.M{
			"$gte": startTime.UTC(),
			"$lte": endTime.UTC(),
		},
	}
	if bucketDuration != "" {
		filter["bucket_duration"] = bucketDuration
	}

	opts := options.Find().SetSort(bson.D{{Key: "bucket", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var buckets []Bucket
	if err := cur.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// GetRangeAllTypes retrieves buckets for every stat type in a time range,
// ordered by bucket then type. Used by the dashboard's combined chart.
func (s *Store) GetRangeAllTypes(ctx context.Context, startTime, endTime time.Time, bucketDuration string) ([]Bucket, error) {
	filter := bson.M{
		"bucket": bson.M{
			"$gte": startTime.UTC(),
			"$lte": endTime.UTC(),
		},
	}
	if bucketDuration != "" {
		filter["bucket_duration"] = bucketDuration
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "bucket", Value: 1},
		{Key: "stat_type", Value: 1},
	})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var buckets []Bucket
	if err := cur.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}
