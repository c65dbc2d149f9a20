package database

import (
	"context"
	"fmt"
	"time"

	"nfl-pickem-go/logging"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const lastUpdateDocID = "scores-last-update"

// ScheduleCacheTTL bounds how long cached upstream events are served
const ScheduleCacheTTL = 7 * 24 * time.Hour

// SyncMarker is the cooldown marker written after each successful score
// refresh. It is the only coordination between concurrent runs: staleness
// causes redundant work, never corruption, so no lock is taken.
type SyncMarker struct {
	ID        string    `bson:"_id"`
	Timestamp time.Time `bson:"timestamp"`
	Week      int       `bson:"week"`
	Year      int       `bson:"year"`
}

type scheduleCacheEntry struct {
	ID        string    `bson:"_id"`
	Events    []byte    `bson:"events"`
	Timestamp time.Time `bson:"timestamp"`
	ExpiresAt time.Time `bson:"expires_at"`
	Week      int       `bson:"week"`
	Year      int       `bson:"year"`
}

// MongoSyncStateRepository stores the cooldown marker and the per-week
// schedule cache in the sync_state collection.
type MongoSyncStateRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoSyncStateRepository creates the repository
func NewMongoSyncStateRepository(db *MongoDB) *MongoSyncStateRepository {
	return &MongoSyncStateRepository{
		collection: db.GetCollection("sync_state"),
		logger:     logging.WithPrefix("mongo_sync_repo"),
	}
}

// GetLastUpdate returns the cooldown marker, or nil when no run has completed
func (r *MongoSyncStateRepository) GetLastUpdate(ctx context.Context) (*SyncMarker, error) {
	var marker SyncMarker
	err := r.collection.FindOne(ctx, bson.M{"_id": lastUpdateDocID}).Decode(&marker)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sync marker: %w", err)
	}
	return &marker, nil
}

// MarkUpdated writes the cooldown marker after a successful run
func (r *MongoSyncStateRepository) MarkUpdated(ctx context.Context, at time.Time, year, week int) error {
	marker := SyncMarker{
		ID:        lastUpdateDocID,
		Timestamp: at,
		Week:      week,
		Year:      year,
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": lastUpdateDocID}, marker, opts); err != nil {
		return fmt.Errorf("failed to write sync marker: %w", err)
	}
	return nil
}

// GetCachedSchedule returns raw cached upstream events for a week, or nil
// when the cache entry is missing or expired
func (r *MongoSyncStateRepository) GetCachedSchedule(ctx context.Context, year, week int, now time.Time) ([]byte, error) {
	id := fmt.Sprintf("schedule-%d-%d", year, week)

	var entry scheduleCacheEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read schedule cache: %w", err)
	}

	if now.After(entry.ExpiresAt) {
		return nil, nil
	}
	return entry.Events, nil
}

// SetCachedSchedule stores raw upstream events for a week
func (r *MongoSyncStateRepository) SetCachedSchedule(ctx context.Context, year, week int, events []byte, now time.Time) error {
	entry := scheduleCacheEntry{
		ID:        fmt.Sprintf("schedule-%d-%d", year, week),
		Events:    events,
		Timestamp: now,
		ExpiresAt: now.Add(ScheduleCacheTTL),
		Week:      week,
		Year:      year,
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": entry.ID}, entry, opts); err != nil {
		return fmt.Errorf("failed to write schedule cache: %w", err)
	}

	r.logger.Debugf("Cached schedule for year %d week %d (%d bytes)", year, week, len(events))
	return nil
}
