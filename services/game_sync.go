package services

import (
	"context"
	"fmt"
	"time"

	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"
)

// GameSyncService merges normalized games into the store. It only writes
// documents that are new or whose score/state differ from what is stored,
// and it never lets a game's state move backwards.
type GameSyncService struct {
	gameRepo GameRepository
	logger   *logging.Logger
}

// SyncResult reports what one sync pass did
type SyncResult struct {
	Written    int
	Skipped    int
	Rejected   int
	NewlyFinal []*models.Game
}

func NewGameSyncService(gameRepo GameRepository) *GameSyncService {
	return &GameSyncService{
		gameRepo: gameRepo,
		logger:   logging.WithPrefix("game_sync"),
	}
}

// SyncGames compares each incoming game against the stored document and
// bulk-writes the ones that changed. Games that reached final state during
// this pass are returned so the caller can settle the picks on them.
func (s *GameSyncService) SyncGames(ctx context.Context, games []*models.Game, now time.Time) (*SyncResult, error) {
	result := &SyncResult{}
	var toWrite []*models.Game

	for _, game := range games {
		prev, err := s.gameRepo.FindByEventID(ctx, game.EventID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up game %s: %w", game.EventID, err)
		}

		if prev != nil && !prev.CanTransitionTo(game.Status.State) {
			s.logger.Warnf("Rejecting backward transition for game %s: %s -> %s",
				game.EventID, prev.Status.State, game.Status.State)
			result.Rejected++
			continue
		}

		if !game.ChangedFrom(prev) {
			result.Skipped++
			continue
		}

		game.LastUpdated = now
		toWrite = append(toWrite, game)

		if game.IsFinal() && (prev == nil || !prev.IsFinal()) {
			result.NewlyFinal = append(result.NewlyFinal, game)
		}
	}

	if len(toWrite) > 0 {
		if err := s.gameRepo.BulkUpsertGames(ctx, toWrite); err != nil {
			return nil, fmt.Errorf("failed to write games: %w", err)
		}
	}
	result.Written = len(toWrite)

	s.logger.Debugf("Sync pass: %d written, %d unchanged, %d rejected, %d newly final",
		result.Written, result.Skipped, result.Rejected, len(result.NewlyFinal))
	return result, nil
}
