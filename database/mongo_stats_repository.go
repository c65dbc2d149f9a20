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

// MongoStatsRepository stores the derived week and season aggregates. Both
// are written with merge-style upserts; the aggregator always recomputes
// them from picks, so overwriting in place is safe.
type MongoStatsRepository struct {
	weekStats   *mongo.Collection
	seasonStats *mongo.Collection
	logger      *logging.Logger
}

// NewMongoStatsRepository creates the repository and ensures indexes
func NewMongoStatsRepository(db *MongoDB) *MongoStatsRepository {
	weekStats := db.GetCollection("week_stats")
	seasonStats := db.GetCollection("season_stats")
	logger := logging.WithPrefix("mongo_stats_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	weekIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "year", Value: 1},
			{Key: "week", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	if _, err := weekStats.Indexes().CreateOne(ctx, weekIndex); err != nil {
		logger.Errorf("Failed to create index on week_stats: %v", err)
	}

	seasonIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "year", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := seasonStats.Indexes().CreateOne(ctx, seasonIndex); err != nil {
		logger.Errorf("Failed to create index on season_stats: %v", err)
	}

	return &MongoStatsRepository{
		weekStats:   weekStats,
		seasonStats: seasonStats,
		logger:      logger,
	}
}

// UpsertWeekStats writes a week aggregate
func (r *MongoStatsRepository) UpsertWeekStats(ctx context.Context, ws *models.WeekStats) error {
	filter := bson.M{"user_id": ws.UserID, "year": ws.Year, "week": ws.Week}
	update := bson.M{"$set": bson.M{
		"wins":         ws.Wins,
		"losses":       ws.Losses,
		"pending":      ws.Pending,
		"total":        ws.Total,
		"last_updated": ws.LastUpdated,
	}}

	opts := options.Update().SetUpsert(true)
	if _, err := r.weekStats.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert week stats for user %s year %d week %d: %w",
			ws.UserID, ws.Year, ws.Week, err)
	}
	return nil
}

// FindWeekStatsByUserYear returns a user's week aggregates for a season,
// ordered by week
func (r *MongoStatsRepository) FindWeekStatsByUserYear(ctx context.Context, userID string, year int) ([]*models.WeekStats, error) {
	filter := bson.M{"user_id": userID, "year": year}
	opts := options.Find().SetSort(bson.D{{Key: "week", Value: 1}})

	cursor, err := r.weekStats.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find week stats: %w", err)
	}
	defer cursor.Close(ctx)

	var stats []*models.WeekStats
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode week stats: %w", err)
	}
	return stats, nil
}

// UpsertSeasonStats writes a season aggregate
func (r *MongoStatsRepository) UpsertSeasonStats(ctx context.Context, ss *models.SeasonStats) error {
	filter := bson.M{"user_id": ss.UserID, "year": ss.Year}
	update := bson.M{"$set": bson.M{
		"total_wins":     ss.TotalWins,
		"total_losses":   ss.TotalLosses,
		"total_games":    ss.TotalGames,
		"weekly_records": ss.WeeklyRecords,
		"last_updated":   ss.LastUpdated,
	}}

	opts := options.Update().SetUpsert(true)
	if _, err := r.seasonStats.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert season stats for user %s year %d: %w", ss.UserID, ss.Year, err)
	}

	r.logger.Debugf("Upserted season stats for user %s year %d: %d-%d",
		ss.UserID, ss.Year, ss.TotalWins, ss.TotalLosses)
	return nil
}

// FindSeasonStats returns one user's season aggregate, or nil when absent
func (r *MongoStatsRepository) FindSeasonStats(ctx context.Context, userID string, year int) (*models.SeasonStats, error) {
	var stats models.SeasonStats
	err := r.seasonStats.FindOne(ctx, bson.M{"user_id": userID, "year": year}).Decode(&stats)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find season stats: %w", err)
	}
	return &stats, nil
}

// FindSeasonStatsByUser returns every season aggregate for one user,
// ordered by year
func (r *MongoStatsRepository) FindSeasonStatsByUser(ctx context.Context, userID string) ([]*models.SeasonStats, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.D{{Key: "year", Value: 1}})

	cursor, err := r.seasonStats.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find season stats for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var stats []*models.SeasonStats
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode season stats: %w", err)
	}
	return stats, nil
}

// FindSeasonLeaderboard returns all season aggregates for a year, sorted by
// wins descending then losses ascending
func (r *MongoStatsRepository) FindSeasonLeaderboard(ctx context.Context, year int) ([]*models.SeasonStats, error) {
	filter := bson.M{"year": year}
	opts := options.Find().SetSort(bson.D{
		{Key: "total_wins", Value: -1},
		{Key: "total_losses", Value: 1},
	})

	cursor, err := r.seasonStats.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find season leaderboard: %w", err)
	}
	defer cursor.Close(ctx)

	var stats []*models.SeasonStats
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode season stats: %w", err)
	}
	return stats, nil
}
