package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"nfl-pickem-go/logging"
	"nfl-pickem-go/models"
)

// EventSource is the upstream scoreboard the updater pulls from
type EventSource interface {
	GetCurrentWeek(ctx context.Context) (*WeekInfo, error)
	GetWeekEvents(ctx context.Context, year, week int) ([]ESPNEvent, error)
}

// ScoreUpdater drives the ingestion pipeline on a timer. Each run resolves
// the current week, fetches the scoreboard, syncs games into the store, and
// settles picks on games that just finished.
type ScoreUpdater struct {
	source     EventSource
	gameSync   *GameSyncService
	reconciler *ReconciliationService
	stats      *StatsService
	syncRepo   SyncStateRepository
	clock      clockwork.Clock
	interval   time.Duration
	cooldown   time.Duration
	logger     *logging.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// RunSummary reports what one update pass did
type RunSummary struct {
	Year         int         `json:"year"`
	Week         int         `json:"week"`
	SeasonType   int         `json:"seasonType"`
	Skipped      bool        `json:"skipped"`
	SkipReason   string      `json:"skipReason,omitempty"`
	Events       int         `json:"events"`
	Malformed    int         `json:"malformed"`
	Sync         *SyncResult `json:"-"`
	GamesWritten int         `json:"gamesWritten"`
	SettledGames int         `json:"settledGames"`
	UsersUpdated int         `json:"usersUpdated"`
}

func NewScoreUpdater(source EventSource, gameSync *GameSyncService, reconciler *ReconciliationService,
	stats *StatsService, syncRepo SyncStateRepository, clock clockwork.Clock,
	interval, cooldown time.Duration) *ScoreUpdater {
	return &ScoreUpdater{
		source:     source,
		gameSync:   gameSync,
		reconciler: reconciler,
		stats:      stats,
		syncRepo:   syncRepo,
		clock:      clock,
		interval:   interval,
		cooldown:   cooldown,
		logger:     logging.WithPrefix("score_updater"),
	}
}

// Start launches the background update loop
func (u *ScoreUpdater) Start() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.running {
		return
	}
	u.running = true
	u.stopCh = make(chan struct{})
	u.doneCh = make(chan struct{})

	go u.loop()
	u.logger.Infof("Score updater started (interval %v, cooldown %v)", u.interval, u.cooldown)
}

// Stop halts the background loop and waits for the current pass to finish
func (u *ScoreUpdater) Stop() {
	u.mu.Lock()
	if !u.running {
		u.mu.Unlock()
		return
	}
	u.running = false
	close(u.stopCh)
	done := u.doneCh
	u.mu.Unlock()

	<-done
	u.logger.Info("Score updater stopped")
}

func (u *ScoreUpdater) loop() {
	defer close(u.doneCh)

	ticker := u.clock.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-u.stopCh:
			return
		case <-ticker.Chan():
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			if _, err := u.RunOnce(ctx, false); err != nil {
				u.logger.Errorf("Update pass failed: %v", err)
			}
			cancel()
		}
	}
}

// RunOnce performs one full update pass. Unless forced, it is a no-op while
// the last successful pass is still within the cooldown window.
func (u *ScoreUpdater) RunOnce(ctx context.Context, force bool) (*RunSummary, error) {
	now := u.clock.Now()

	year, week, seasonType := u.resolveWeek(ctx, now)
	summary := &RunSummary{Year: year, Week: week, SeasonType: seasonType}

	if seasonType != SeasonTypeRegular && seasonType != SeasonTypePostseason {
		u.logger.Infof("Season type %d is not regular or postseason, skipping update", seasonType)
		summary.Skipped = true
		summary.SkipReason = "offseason"
		return summary, nil
	}

	if !force {
		marker, err := u.syncRepo.GetLastUpdate(ctx)
		if err != nil {
			u.logger.Warnf("Failed to read last update marker: %v", err)
		} else if marker != nil && now.Sub(marker.Timestamp) < u.cooldown {
			u.logger.Debugf("Last update %v ago, within cooldown", now.Sub(marker.Timestamp))
			summary.Skipped = true
			summary.SkipReason = "cooldown"
			return summary, nil
		}
	}

	events, err := u.source.GetWeekEvents(ctx, year, week)
	if err != nil {
		return nil, err
	}
	summary.Events = len(events)

	if raw, err := json.Marshal(events); err == nil {
		if err := u.syncRepo.SetCachedSchedule(ctx, year, week, raw, now); err != nil {
			u.logger.Warnf("Failed to cache schedule for week %d: %v", week, err)
		}
	}

	games := make([]*models.Game, 0, len(events))
	for i := range events {
		game, err := NormalizeEvent(&events[i], year, week)
		if err != nil {
			u.logger.Warnf("Skipping malformed event %s: %v", events[i].ID, err)
			summary.Malformed++
			continue
		}
		games = append(games, game)
	}

	syncResult, err := u.gameSync.SyncGames(ctx, games, now)
	if err != nil {
		return nil, err
	}
	summary.Sync = syncResult
	summary.GamesWritten = syncResult.Written

	affected := make(map[string]bool)
	for _, game := range syncResult.NewlyFinal {
		users, err := u.reconciler.ReconcileGame(ctx, game, now)
		if err != nil {
			u.logger.Errorf("Failed to settle picks for game %s: %v", game.EventID, err)
			continue
		}
		summary.SettledGames++
		for _, userID := range users {
			affected[userID] = true
		}
	}

	for userID := range affected {
		if _, err := u.stats.RecalcWeek(ctx, userID, year, week); err != nil {
			u.logger.Errorf("Failed to recalculate week stats for user %s: %v", userID, err)
			continue
		}
		if _, err := u.stats.RecalcSeason(ctx, userID, year); err != nil {
			u.logger.Errorf("Failed to recalculate season stats for user %s: %v", userID, err)
			continue
		}
		summary.UsersUpdated++
	}

	if err := u.syncRepo.MarkUpdated(ctx, now, year, week); err != nil {
		u.logger.Warnf("Failed to write update marker: %v", err)
	}

	u.logger.Infof("Update pass complete: week %d/%d, %d events, %d written, %d settled, %d users updated",
		week, year, summary.Events, summary.GamesWritten, summary.SettledGames, summary.UsersUpdated)
	return summary, nil
}

// resolveWeek determines which week to fetch. The upstream answer wins, with
// a date-based override in January and February because the scoreboard's
// week numbering lags during the playoffs. When the upstream call fails the
// week is estimated from the calendar.
func (u *ScoreUpdater) resolveWeek(ctx context.Context, now time.Time) (year, week, seasonType int) {
	info, err := u.source.GetCurrentWeek(ctx)
	if err != nil {
		u.logger.Warnf("Failed to fetch current week, estimating from date: %v", err)
		year = SeasonYearFor(now)
		week = FallbackWeek(now)
		seasonType = SeasonTypeRegular
		if week > RegularSeasonWeeks {
			seasonType = SeasonTypePostseason
		}
		return year, week, seasonType
	}

	year = info.Year
	week = info.Week
	seasonType = info.SeasonType

	if override, ok := postseasonWeekFor(now, year); ok {
		week = override
		seasonType = SeasonTypePostseason
	}
	return year, week, seasonType
}

const (
	SeasonTypeRegular    = 2
	SeasonTypePostseason = 3

	RegularSeasonWeeks = 18
)

// SeasonYearFor maps a calendar date to the NFL season it belongs to. Games
// played in January and February count toward the prior year's season.
func SeasonYearFor(now time.Time) int {
	if now.Month() >= time.August {
		return now.Year()
	}
	return now.Year() - 1
}

// FallbackWeek estimates the week from the calendar: weeks elapsed since
// September 1 of the season year, clamped to the regular season range, with
// the playoff rounds resolved by date in January and February.
func FallbackWeek(now time.Time) int {
	seasonYear := SeasonYearFor(now)
	if week, ok := postseasonWeekFor(now, seasonYear); ok {
		return week
	}

	start := time.Date(seasonYear, time.September, 1, 0, 0, 0, 0, time.UTC)
	week := int(now.Sub(start).Hours()/(24*7)) + 1
	if week < 1 {
		week = 1
	}
	if week > RegularSeasonWeeks {
		week = RegularSeasonWeeks
	}
	return week
}

// postseasonWeekFor resolves the playoff round for dates in January and
// February of the year after the season year. Wild Card weekend runs
// through the 17th, the Divisional round through the 24th, then the
// Conference championships; the Super Bowl is in February.
func postseasonWeekFor(now time.Time, seasonYear int) (int, bool) {
	if now.Year() != seasonYear+1 {
		return 0, false
	}
	switch now.Month() {
	case time.January:
		switch {
		case now.Day() <= 17:
			return RegularSeasonWeeks + 1, true
		case now.Day() <= 24:
			return RegularSeasonWeeks + 2, true
		default:
			return RegularSeasonWeeks + 3, true
		}
	case time.February:
		return RegularSeasonWeeks + 4, true
	}
	return 0, false
}
