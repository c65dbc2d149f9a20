package services

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"
)

// StatsService recomputes the derived aggregates. Every recalculation is a
// full recount from picks rather than an increment, so the aggregates can
// always be rebuilt and a repeated run converges on the same numbers.
type StatsService struct {
	pickRepo  PickRepository
	statsRepo StatsRepository
	userRepo  UserRepository
	clock     clockwork.Clock
	logger    *logging.Logger
}

func NewStatsService(pickRepo PickRepository, statsRepo StatsRepository, userRepo UserRepository, clock clockwork.Clock) *StatsService {
	return &StatsService{
		pickRepo:  pickRepo,
		statsRepo: statsRepo,
		userRepo:  userRepo,
		clock:     clock,
		logger:    logging.WithPrefix("stats"),
	}
}

// RecalcWeek recounts one user's picks for a week and writes the aggregate
func (s *StatsService) RecalcWeek(ctx context.Context, userID string, year, week int) (*models.WeekStats, error) {
	picks, err := s.pickRepo.FindByUserWeek(ctx, userID, year, week)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks for user %s week %d: %w", userID, week, err)
	}

	ws := &models.WeekStats{
		UserID:      userID,
		Year:        year,
		Week:        week,
		LastUpdated: s.clock.Now(),
	}
	ws.Recount(picks)

	if err := s.statsRepo.UpsertWeekStats(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// RecalcSeason rolls the stored week aggregates up into the season aggregate
// and refreshes the flat per-season record on the user document
func (s *StatsService) RecalcSeason(ctx context.Context, userID string, year int) (*models.SeasonStats, error) {
	weeks, err := s.statsRepo.FindWeekStatsByUserYear(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	ss := &models.SeasonStats{
		UserID:      userID,
		Year:        year,
		LastUpdated: s.clock.Now(),
	}
	ss.Accumulate(weeks)

	if err := s.statsRepo.UpsertSeasonStats(ctx, ss); err != nil {
		return nil, err
	}

	if err := s.updateUserRecords(ctx, userID, year, ss); err != nil {
		s.logger.Warnf("Failed to refresh records on user %s: %v", userID, err)
	}
	return ss, nil
}

// updateUserRecords mirrors the season totals onto the user document and
// recomputes the all-time record across every stored season
func (s *StatsService) updateUserRecords(ctx context.Context, userID string, year int, season *models.SeasonStats) error {
	all, err := s.statsRepo.FindSeasonStatsByUser(ctx, userID)
	if err != nil {
		return err
	}

	var allTime models.SeasonRecord
	for _, ss := range all {
		allTime.Wins += ss.TotalWins
		allTime.Losses += ss.TotalLosses
	}
	if total := allTime.Wins + allTime.Losses; total > 0 {
		allTime.WinPercentage = float64(allTime.Wins) / float64(total) * 100
	}

	seasonRecord := models.SeasonRecord{
		Wins:          season.TotalWins,
		Losses:        season.TotalLosses,
		WinPercentage: season.WinPercentage(),
	}
	return s.userRepo.UpdateLegacyStats(ctx, userID, year, seasonRecord, allTime)
}

// RecalcUserSeason rebuilds every week a user picked in and then the season
func (s *StatsService) RecalcUserSeason(ctx context.Context, userID string, year int) error {
	picks, err := s.pickRepo.FindByUserYear(ctx, userID, year)
	if err != nil {
		return fmt.Errorf("failed to load picks for user %s year %d: %w", userID, year, err)
	}

	weeks := make(map[int]bool)
	for _, pick := range picks {
		weeks[pick.Week] = true
	}

	for week := range weeks {
		if _, err := s.RecalcWeek(ctx, userID, year, week); err != nil {
			return err
		}
	}

	_, err = s.RecalcSeason(ctx, userID, year)
	return err
}

// RecalcAllUsers rebuilds a full season for every registered user
func (s *StatsService) RecalcAllUsers(ctx context.Context, year int) error {
	users, err := s.userRepo.GetAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	for _, user := range users {
		if err := s.RecalcUserSeason(ctx, user.ID, year); err != nil {
			s.logger.Errorf("Failed to recalculate stats for user %s: %v", user.ID, err)
			continue
		}
	}

	s.logger.Infof("Recalculated season %d stats for %d users", year, len(users))
	return nil
}
