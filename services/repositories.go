package services

import (
	"context"
	"time"

	"nfl-pickem-go/database"
	"nfl-pickem-go/models"
)

// Repository interfaces consumed by the service layer. The database package
// provides the Mongo implementations; tests substitute in-memory fakes.

// GameRepository stores canonical game records
type GameRepository interface {
	FindByEventID(ctx context.Context, eventID string) (*models.Game, error)
	FindByWeek(ctx context.Context, year, week int) ([]*models.Game, error)
	FindFinalByYear(ctx context.Context, year int) ([]*models.Game, error)
	BulkUpsertGames(ctx context.Context, games []*models.Game) error
}

// PickRepository stores picks in the hierarchical layout
type PickRepository interface {
	Upsert(ctx context.Context, pick *models.Pick) error
	FindByUserWeek(ctx context.Context, userID string, year, week int) ([]*models.Pick, error)
	FindByUserYear(ctx context.Context, userID string, year int) ([]*models.Pick, error)
	FindByGame(ctx context.Context, year, week int, gameID string) ([]*models.Pick, error)
	FindByWeek(ctx context.Context, year, week int) ([]*models.Pick, error)
	ApplyGameResults(ctx context.Context, year, week int, gameID string, updates []database.PickResultUpdate) error
	FindLegacyByUser(ctx context.Context, userID string) ([]*models.LegacyPick, error)
}

// StatsRepository stores the derived week and season aggregates
type StatsRepository interface {
	UpsertWeekStats(ctx context.Context, ws *models.WeekStats) error
	FindWeekStatsByUserYear(ctx context.Context, userID string, year int) ([]*models.WeekStats, error)
	UpsertSeasonStats(ctx context.Context, ss *models.SeasonStats) error
	FindSeasonStats(ctx context.Context, userID string, year int) (*models.SeasonStats, error)
	FindSeasonStatsByUser(ctx context.Context, userID string) ([]*models.SeasonStats, error)
	FindSeasonLeaderboard(ctx context.Context, year int) ([]*models.SeasonStats, error)
}

// UserRepository stores user documents
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateLegacyStats(ctx context.Context, userID string, year int, season, allTime models.SeasonRecord) error
}

// SyncStateRepository stores the cooldown marker and schedule cache
type SyncStateRepository interface {
	GetLastUpdate(ctx context.Context) (*database.SyncMarker, error)
	MarkUpdated(ctx context.Context, at time.Time, year, week int) error
	GetCachedSchedule(ctx context.Context, year, week int, now time.Time) ([]byte, error)
	SetCachedSchedule(ctx context.Context, year, week int, events []byte, now time.Time) error
}
