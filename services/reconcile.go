package services

import (
	"context"
	"fmt"
	"time"

	"nfl-pickem-go/database"
	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"
)

// ReconciliationService settles the picks on finished games. Settlement for
// one game is a single bulk write, so re-running it produces the same
// documents and partially settled games converge on the next pass.
type ReconciliationService struct {
	pickRepo PickRepository
	gameRepo GameRepository
	logger   *logging.Logger
}

func NewReconciliationService(pickRepo PickRepository, gameRepo GameRepository) *ReconciliationService {
	return &ReconciliationService{
		pickRepo: pickRepo,
		gameRepo: gameRepo,
		logger:   logging.WithPrefix("reconcile"),
	}
}

// ReconcileGame grades every pick on a final game and locks them. Tied games
// have no winner, so their picks are left pending and unlocked. Returns the
// user IDs whose picks were settled.
func (s *ReconciliationService) ReconcileGame(ctx context.Context, game *models.Game, now time.Time) ([]string, error) {
	if !game.IsFinal() {
		return nil, fmt.Errorf("game %s is not final", game.EventID)
	}

	winnerID, ok := game.WinnerID()
	if !ok {
		s.logger.Infof("Game %s ended in a tie, leaving picks pending", game.EventID)
		return nil, nil
	}

	picks, err := s.pickRepo.FindByGame(ctx, game.Year, game.Week, game.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks for game %s: %w", game.EventID, err)
	}
	if len(picks) == 0 {
		return nil, nil
	}

	updates := make([]database.PickResultUpdate, 0, len(picks))
	users := make([]string, 0, len(picks))
	for _, pick := range picks {
		selected := game.SideTeamID(pick.SelectedTeam)
		result := models.PickResultLoss
		if selected == winnerID {
			result = models.PickResultWin
		}
		updates = append(updates, database.PickResultUpdate{
			UserID:      pick.UserID,
			Result:      result,
			ProcessedAt: now,
		})
		users = append(users, pick.UserID)
	}

	if err := s.pickRepo.ApplyGameResults(ctx, game.Year, game.Week, game.EventID, updates); err != nil {
		return nil, fmt.Errorf("failed to settle picks for game %s: %w", game.EventID, err)
	}

	s.logger.Infof("Settled %d picks for game %s (winner %s)", len(updates), game.EventID, winnerID)
	return users, nil
}

// ReconcileSeason re-grades every final game of a season. Settlement writes
// the same values each time, so this is safe to run over already settled
// picks; it exists to repair picks the live pipeline missed. Returns the
// user IDs touched.
func (s *ReconciliationService) ReconcileSeason(ctx context.Context, year int, now time.Time) ([]string, error) {
	games, err := s.gameRepo.FindFinalByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load final games for year %d: %w", year, err)
	}

	affected := make(map[string]bool)
	for _, game := range games {
		users, err := s.ReconcileGame(ctx, game, now)
		if err != nil {
			s.logger.Errorf("Failed to settle picks for game %s: %v", game.EventID, err)
			continue
		}
		for _, userID := range users {
			affected[userID] = true
		}
	}

	out := make([]string, 0, len(affected))
	for userID := range affected {
		out = append(out, userID)
	}
	s.logger.Infof("Season %d sweep: %d final games, %d users touched", year, len(games), len(out))
	return out, nil
}
