package database

import (
	"context"
	"fmt"

	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoGameRepository stores canonical game records in the games collection
type MongoGameRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoGameRepository creates the repository and ensures indexes
func NewMongoGameRepository(db *MongoDB) *MongoGameRepository {
	collection := db.GetCollection("games")
	logger := logging.WithPrefix("mongo_game_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "year", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Errorf("Failed to create index on games collection: %v", err)
	}

	return &MongoGameRepository{
		collection: collection,
		logger:     logger,
	}
}

// FindByEventID returns the stored game for an upstream event ID, or nil when absent
func (r *MongoGameRepository) FindByEventID(ctx context.Context, eventID string) (*models.Game, error) {
	var game models.Game
	err := r.collection.FindOne(ctx, bson.M{"event_id": eventID}).Decode(&game)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find game %s: %w", eventID, err)
	}
	return &game, nil
}

// FindByWeek returns all games for a season week, ordered by start time
func (r *MongoGameRepository) FindByWeek(ctx context.Context, year, week int) ([]*models.Game, error) {
	filter := bson.M{"year": year, "week": week}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "home.name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find games for year %d week %d: %w", year, week, err)
	}
	defer cursor.Close(ctx)

	var games []*models.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	return games, nil
}

// FindFinalByYear returns every completed game for a season
func (r *MongoGameRepository) FindFinalByYear(ctx context.Context, year int) ([]*models.Game, error) {
	filter := bson.M{"year": year, "status.state": models.GameStateFinal}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find final games for year %d: %w", year, err)
	}
	defer cursor.Close(ctx)

	var games []*models.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	return games, nil
}

// BulkUpsertGames writes a batch of games as one unordered bulk operation.
// The caller has already filtered out unchanged games; this applies full
// $set updates keyed by (event_id, year).
func (r *MongoGameRepository) BulkUpsertGames(ctx context.Context, games []*models.Game) error {
	if len(games) == 0 {
		return nil
	}

	var operations []mongo.WriteModel
	for _, game := range games {
		filter := bson.M{"event_id": game.EventID, "year": game.Year}
		update := bson.M{"$set": bson.M{
			"event_id":     game.EventID,
			"date":         game.Date,
			"week":         game.Week,
			"year":         game.Year,
			"away":         game.Away,
			"home":         game.Home,
			"status":       game.Status,
			"last_updated": game.LastUpdated,
		}}

		operations = append(operations, mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(update).
			SetUpsert(true))
	}

	opts := options.BulkWrite().SetOrdered(false)
	result, err := r.collection.BulkWrite(ctx, operations, opts)
	if err != nil {
		return fmt.Errorf("bulk upsert of %d games failed: %w", len(games), err)
	}

	r.logger.Infof("Processed %d games: %d upserted, %d modified",
		len(games), result.UpsertedCount, result.ModifiedCount)
	return nil
}
