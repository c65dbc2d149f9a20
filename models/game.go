package models

import (
	"fmt"
	"time"
)

// GameState represents the current state of a game
type GameState string

const (
	GameStatePre   GameState = "pre"
	GameStateLive  GameState = "live"
	GameStateFinal GameState = "final"
)

// rank orders states for the monotonic transition rule (pre -> live -> final)
func (s GameState) rank() int {
	switch s {
	case GameStatePre:
		return 0
	case GameStateLive:
		return 1
	case GameStateFinal:
		return 2
	default:
		return -1
	}
}

// TeamSide is one participant in a game, home or away
type TeamSide struct {
	ID     string `json:"id" bson:"id"`
	Name   string `json:"name" bson:"name"`
	Logo   string `json:"logo,omitempty" bson:"logo,omitempty"`
	Record string `json:"record,omitempty" bson:"record,omitempty"`
	Score  *int   `json:"score,omitempty" bson:"score,omitempty"`
}

// ScoreOrZero returns the side's score, treating a missing score as 0
func (t *TeamSide) ScoreOrZero() int {
	if t.Score == nil {
		return 0
	}
	return *t.Score
}

// GameStatus describes where a game is in its lifecycle plus display strings for the UI
type GameStatus struct {
	State       GameState `json:"state" bson:"state"`
	DisplayText string    `json:"displayText" bson:"displayText"`
	Detail      string    `json:"detail,omitempty" bson:"detail,omitempty"`
}

// Game represents one NFL game as stored in the games collection.
// EventID is the upstream provider's stable identifier.
type Game struct {
	EventID     string     `json:"eventId" bson:"event_id"`
	Date        time.Time  `json:"date" bson:"date"`
	Week        int        `json:"week" bson:"week"`
	Year        int        `json:"year" bson:"year"`
	Away        TeamSide   `json:"away" bson:"away"`
	Home        TeamSide   `json:"home" bson:"home"`
	Status      GameStatus `json:"status" bson:"status"`
	LastUpdated time.Time  `json:"lastUpdated,omitempty" bson:"last_updated,omitempty"`
}

// IsFinal returns true if the game is finished
func (g *Game) IsFinal() bool {
	return g.Status.State == GameStateFinal
}

// IsLive returns true if the game is currently being played
func (g *Game) IsLive() bool {
	return g.Status.State == GameStateLive
}

// HasStarted returns true once the game's scheduled start time has passed
func (g *Game) HasStarted(now time.Time) bool {
	return !now.Before(g.Date)
}

// WinnerID returns the team ID of the winning side. The second return is
// false for a tie (or when the game is not final) - there is no winner then,
// and callers must not invent one.
func (g *Game) WinnerID() (string, bool) {
	if !g.IsFinal() {
		return "", false
	}
	home := g.Home.ScoreOrZero()
	away := g.Away.ScoreOrZero()
	switch {
	case home > away:
		return g.Home.ID, true
	case away > home:
		return g.Away.ID, true
	default:
		return "", false
	}
}

// SideTeamID translates a "home"/"away" side token into that side's team ID.
// Any other value is returned unchanged (it is already a team ID).
func (g *Game) SideTeamID(selection string) string {
	switch selection {
	case "home":
		return g.Home.ID
	case "away":
		return g.Away.ID
	default:
		return selection
	}
}

// ScoreLine returns the "away–home" score string used in status display text
func (g *Game) ScoreLine() string {
	return fmt.Sprintf("%d–%d", g.Away.ScoreOrZero(), g.Home.ScoreOrZero())
}

// ChangedFrom reports whether this game differs from a previously stored
// version in a way that warrants a write: either side's score changed or the
// state changed. Display strings alone never trigger a write.
func (g *Game) ChangedFrom(prev *Game) bool {
	if prev == nil {
		return true
	}
	return g.Away.ScoreOrZero() != prev.Away.ScoreOrZero() ||
		g.Home.ScoreOrZero() != prev.Home.ScoreOrZero() ||
		g.Status.State != prev.Status.State
}

// CanTransitionTo enforces the monotonic state machine: pre -> live -> final,
// never backward. Equal states are fine (scores can change within a state).
func (g *Game) CanTransitionTo(next GameState) bool {
	return next.rank() >= g.Status.State.rank()
}
