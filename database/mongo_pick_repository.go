package database

import (
	"context"
	"fmt"
	"time"

	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPickRepository stores picks in the hierarchical layout, flattened to
// a picks collection with a unique (user_id, year, week, game_id) key. The
// legacy_picks collection is the old flat users/{u}/picks/{g} layout and is
// read only by the migration service.
type MongoPickRepository struct {
	collection *mongo.Collection
	legacy     *mongo.Collection
	logger     *logging.Logger
}

// PickResultUpdate is one pick's reconciliation outcome, applied as part of
// a per-game batch.
type PickResultUpdate struct {
	UserID      string
	Result      models.PickResult
	ProcessedAt time.Time
}

// NewMongoPickRepository creates the repository and ensures indexes
func NewMongoPickRepository(db *MongoDB) *MongoPickRepository {
	collection := db.GetCollection("picks")
	logger := logging.WithPrefix("mongo_pick_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "year", Value: 1},
				{Key: "week", Value: 1},
				{Key: "game_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "game_id", Value: 1}},
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Errorf("Failed to create indexes on picks collection: %v", err)
	}

	return &MongoPickRepository{
		collection: collection,
		legacy:     db.GetCollection("legacy_picks"),
		logger:     logger,
	}
}

// Upsert creates or replaces a user's pick for a game. The service layer has
// already verified the pick is editable.
func (r *MongoPickRepository) Upsert(ctx context.Context, pick *models.Pick) error {
	filter := bson.M{
		"user_id": pick.UserID,
		"year":    pick.Year,
		"week":    pick.Week,
		"game_id": pick.GameID,
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, filter, pick, opts); err != nil {
		return fmt.Errorf("failed to upsert pick for user %s game %s: %w", pick.UserID, pick.GameID, err)
	}
	return nil
}

// FindByUserWeek returns one user's picks for a week
func (r *MongoPickRepository) FindByUserWeek(ctx context.Context, userID string, year, week int) ([]*models.Pick, error) {
	filter := bson.M{"user_id": userID, "year": year, "week": week}
	return r.find(ctx, filter)
}

// FindByUserYear returns one user's picks for a whole season
func (r *MongoPickRepository) FindByUserYear(ctx context.Context, userID string, year int) ([]*models.Pick, error) {
	return r.find(ctx, bson.M{"user_id": userID, "year": year})
}

// FindByGame returns every user's pick referencing one game
func (r *MongoPickRepository) FindByGame(ctx context.Context, year, week int, gameID string) ([]*models.Pick, error) {
	filter := bson.M{"year": year, "week": week, "game_id": gameID}
	return r.find(ctx, filter)
}

// FindByWeek returns all users' picks for a week
func (r *MongoPickRepository) FindByWeek(ctx context.Context, year, week int) ([]*models.Pick, error) {
	return r.find(ctx, bson.M{"year": year, "week": week})
}

func (r *MongoPickRepository) find(ctx context.Context, filter bson.M) ([]*models.Pick, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find picks: %w", err)
	}
	defer cursor.Close(ctx)

	var picks []*models.Pick
	if err := cursor.All(ctx, &picks); err != nil {
		return nil, fmt.Errorf("failed to decode picks: %w", err)
	}
	return picks, nil
}

// ApplyGameResults applies all reconciliation outcomes for one game as a
// single unordered bulk write - the atomic unit of the pipeline. Rerunning
// with the same inputs writes the same values, so the batch is idempotent.
func (r *MongoPickRepository) ApplyGameResults(ctx context.Context, year, week int, gameID string, updates []PickResultUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	var operations []mongo.WriteModel
	for _, u := range updates {
		filter := bson.M{
			"user_id": u.UserID,
			"year":    year,
			"week":    week,
			"game_id": gameID,
		}
		update := bson.M{"$set": bson.M{
			"result":       u.Result,
			"locked":       true,
			"processed_at": u.ProcessedAt,
		}}
		operations = append(operations, mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(update))
	}

	opts := options.BulkWrite().SetOrdered(false)
	result, err := r.collection.BulkWrite(ctx, operations, opts)
	if err != nil {
		return fmt.Errorf("failed to apply results for game %s: %w", gameID, err)
	}

	r.logger.Infof("Applied results for game %s: %d picks matched, %d modified",
		gameID, result.MatchedCount, result.ModifiedCount)
	return nil
}

// FindLegacyByUser returns a user's picks from the old flat layout
func (r *MongoPickRepository) FindLegacyByUser(ctx context.Context, userID string) ([]*models.LegacyPick, error) {
	cursor, err := r.legacy.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to find legacy picks for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var picks []*models.LegacyPick
	if err := cursor.All(ctx, &picks); err != nil {
		return nil, fmt.Errorf("failed to decode legacy picks: %w", err)
	}
	return picks, nil
}
