package services

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"
)

// MigrationService copies picks from the legacy flat layout into the
// hierarchical one. A legacy pick only carries the game ID, so the year and
// week are recovered from the stored game; picks whose game is unknown are
// skipped and counted.
type MigrationService struct {
	pickRepo PickRepository
	gameRepo GameRepository
	stats    *StatsService
	userRepo UserRepository
	clock    clockwork.Clock
	logger   *logging.Logger
}

// MigrationResult reports what a migration run did
type MigrationResult struct {
	Users    int `json:"users"`
	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped"`
}

func NewMigrationService(pickRepo PickRepository, gameRepo GameRepository, stats *StatsService,
	userRepo UserRepository, clock clockwork.Clock) *MigrationService {
	return &MigrationService{
		pickRepo: pickRepo,
		gameRepo: gameRepo,
		stats:    stats,
		userRepo: userRepo,
		clock:    clock,
		logger:   logging.WithPrefix("migration"),
	}
}

// MigrateUser moves one user's legacy picks and rebuilds their aggregates
func (s *MigrationService) MigrateUser(ctx context.Context, userID string) (*MigrationResult, error) {
	legacy, err := s.pickRepo.FindLegacyByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load legacy picks for user %s: %w", userID, err)
	}

	result := &MigrationResult{Users: 1}
	now := s.clock.Now()
	years := make(map[int]bool)

	for _, lp := range legacy {
		game, err := s.gameRepo.FindByEventID(ctx, lp.GameID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up game %s: %w", lp.GameID, err)
		}
		if game == nil {
			s.logger.Warnf("Legacy pick for user %s references unknown game %s, skipping", userID, lp.GameID)
			result.Skipped++
			continue
		}

		pick := &models.Pick{
			UserID:        userID,
			Year:          game.Year,
			Week:          game.Week,
			GameID:        game.EventID,
			SelectedTeam:  game.SideTeamID(lp.SelectedTeam),
			Timestamp:     lp.Timestamp,
			Result:        lp.Result,
			Locked:        game.HasStarted(now),
			GameStartTime: game.Date,
		}
		if pick.Result == "" {
			pick.Result = models.PickResultPending
		}

		if err := s.pickRepo.Upsert(ctx, pick); err != nil {
			return nil, fmt.Errorf("failed to write migrated pick: %w", err)
		}
		result.Migrated++
		years[game.Year] = true
	}

	for year := range years {
		if err := s.stats.RecalcUserSeason(ctx, userID, year); err != nil {
			s.logger.Errorf("Failed to rebuild stats for user %s year %d: %v", userID, year, err)
		}
	}

	s.logger.Infof("Migrated %d picks for user %s (%d skipped)", result.Migrated, userID, result.Skipped)
	return result, nil
}

// MigrateAll runs the migration for every registered user
func (s *MigrationService) MigrateAll(ctx context.Context) (*MigrationResult, error) {
	users, err := s.userRepo.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	total := &MigrationResult{}
	for _, user := range users {
		res, err := s.MigrateUser(ctx, user.ID)
		if err != nil {
			s.logger.Errorf("Migration failed for user %s: %v", user.ID, err)
			continue
		}
		total.Users++
		total.Migrated += res.Migrated
		total.Skipped += res.Skipped
	}
	return total, nil
}
