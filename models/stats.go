package models

import (
	"fmt"
	"time"
)

// WeekStats is the derived win/loss/pending aggregate for one user in one
// week. It is never authoritative: it must always equal a direct recount of
// the picks underneath it, and the aggregator recomputes it from scratch.
type WeekStats struct {
	UserID      string    `json:"userId" bson:"user_id"`
	Year        int       `json:"year" bson:"year"`
	Week        int       `json:"week" bson:"week"`
	Wins        int       `json:"wins" bson:"wins"`
	Losses      int       `json:"losses" bson:"losses"`
	Pending     int       `json:"pending" bson:"pending"`
	Total       int       `json:"total" bson:"total"`
	LastUpdated time.Time `json:"lastUpdated" bson:"last_updated"`
}

// Recount rebuilds the aggregate from the full set of picks for the week.
// Picks that were never reconciled count as pending.
func (ws *WeekStats) Recount(picks []*Pick) {
	ws.Wins, ws.Losses, ws.Pending = 0, 0, 0
	for _, p := range picks {
		switch p.Result {
		case PickResultWin:
			ws.Wins++
		case PickResultLoss:
			ws.Losses++
		default:
			ws.Pending++
		}
	}
	ws.Total = ws.Wins + ws.Losses + ws.Pending
}

// Record returns the "{wins}-{losses}" summary string for the week
func (ws *WeekStats) Record() string {
	return fmt.Sprintf("%d-%d", ws.Wins, ws.Losses)
}

// SeasonStats is the derived aggregate for one user in one year: sums of the
// per-week counts plus a per-week record string.
type SeasonStats struct {
	UserID        string         `json:"userId" bson:"user_id"`
	Year          int            `json:"year" bson:"year"`
	TotalWins     int            `json:"totalWins" bson:"total_wins"`
	TotalLosses   int            `json:"totalLosses" bson:"total_losses"`
	TotalGames    int            `json:"totalGames" bson:"total_games"`
	WeeklyRecords map[int]string `json:"weeklyRecords" bson:"weekly_records"`
	LastUpdated   time.Time      `json:"lastUpdated" bson:"last_updated"`
}

// Accumulate folds all week aggregates for the season into the totals.
// Pending picks are excluded from totalGames: only settled picks count.
func (ss *SeasonStats) Accumulate(weeks []*WeekStats) {
	ss.TotalWins, ss.TotalLosses, ss.TotalGames = 0, 0, 0
	ss.WeeklyRecords = make(map[int]string, len(weeks))
	for _, ws := range weeks {
		ss.TotalWins += ws.Wins
		ss.TotalLosses += ws.Losses
		ss.TotalGames += ws.Wins + ws.Losses
		ss.WeeklyRecords[ws.Week] = ws.Record()
	}
}

// WinPercentage returns the season win rate in the 0-100 range
func (ss *SeasonStats) WinPercentage() float64 {
	if ss.TotalGames == 0 {
		return 0
	}
	return float64(ss.TotalWins) / float64(ss.TotalGames) * 100
}
