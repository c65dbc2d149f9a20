package models

import "time"

// PickResult represents the outcome of a pick
type PickResult string

const (
	PickResultPending PickResult = "pending"
	PickResultWin     PickResult = "win"
	PickResultLoss    PickResult = "loss"
)

// Pick represents one user's prediction for one game, stored in the picks
// collection keyed by (user_id, year, week, game_id). This is the flattened
// equivalent of the users/{u}/seasons/{y}/weeks/{w}/picks/{g} hierarchy.
//
// SelectedTeam is normally a team ID. Historically it could also be the
// side token "home" or "away"; the reconciler still accepts those.
type Pick struct {
	UserID        string     `json:"userId" bson:"user_id"`
	Year          int        `json:"year" bson:"year"`
	Week          int        `json:"week" bson:"week"`
	GameID        string     `json:"gameId" bson:"game_id"`
	SelectedTeam  string     `json:"selectedTeam" bson:"selected_team"`
	Timestamp     time.Time  `json:"timestamp" bson:"timestamp"`
	Result        PickResult `json:"result" bson:"result"`
	Locked        bool       `json:"locked" bson:"locked"`
	GameStartTime time.Time  `json:"gameStartTime" bson:"game_start_time"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty" bson:"processed_at,omitempty"`
}

// IsSettled returns true once the pick has a final win/loss result
func (p *Pick) IsSettled() bool {
	return p.Result == PickResultWin || p.Result == PickResultLoss
}

// Editable reports whether the owning user may still change this pick.
// Locked picks and picks whose game has started are immutable.
func (p *Pick) Editable(now time.Time) bool {
	if p.Locked {
		return false
	}
	return now.Before(p.GameStartTime)
}

// LegacyPick is the old flat users/{userId}/picks/{gameId} layout. It exists
// only as a migration source; nothing reads it at request time.
type LegacyPick struct {
	UserID       string     `json:"userId" bson:"user_id"`
	GameID       string     `json:"gameId" bson:"game_id"`
	SelectedTeam string     `json:"selectedTeam" bson:"selected_team"`
	Timestamp    time.Time  `json:"timestamp" bson:"timestamp"`
	Result       PickResult `json:"result,omitempty" bson:"result,omitempty"`
}

// PickWithUser is a pick annotated with the owner's public profile, as
// returned by the all-picks endpoint.
type PickWithUser struct {
	UserID       string     `json:"userId"`
	DisplayName  string     `json:"displayName"`
	PhotoURL     string     `json:"photoURL"`
	SelectedTeam string     `json:"selectedTeam"`
	Result       PickResult `json:"result"`
}
