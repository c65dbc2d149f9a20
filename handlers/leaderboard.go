package handlers

import (
	"net/http"

	"nfl-pickem-go/models"
	"nfl-pickem-go/services"
)

// LeaderboardHandler serves the season standings
type LeaderboardHandler struct {
	statsRepo     services.StatsRepository
	userRepo      services.UserRepository
	currentSeason int
}

// LeaderboardEntry is one row of the standings
type LeaderboardEntry struct {
	UserID        string         `json:"userId"`
	DisplayName   string         `json:"displayName"`
	PhotoURL      string         `json:"photoUrl,omitempty"`
	TotalWins     int            `json:"totalWins"`
	TotalLosses   int            `json:"totalLosses"`
	TotalGames    int            `json:"totalGames"`
	WinPercentage float64        `json:"winPercentage"`
	WeeklyRecords map[int]string `json:"weeklyRecords"`
}

func NewLeaderboardHandler(statsRepo services.StatsRepository, userRepo services.UserRepository, currentSeason int) *LeaderboardHandler {
	return &LeaderboardHandler{
		statsRepo:     statsRepo,
		userRepo:      userRepo,
		currentSeason: currentSeason,
	}
}

// GetLeaderboard handles GET /api/leaderboard?year=
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	year, _, err := queryInt(r, "year", h.currentSeason)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid year parameter")
		return
	}

	stats, err := h.statsRepo.FindSeasonLeaderboard(r.Context(), year)
	if err != nil {
		logger.Errorf("Failed to load leaderboard for year %d: %v", year, err)
		respondError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	users, err := h.userRepo.GetAllUsers(r.Context())
	if err != nil {
		logger.Errorf("Failed to load users: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	usersByID := make(map[string]*models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	entries := make([]LeaderboardEntry, 0, len(stats))
	for _, ss := range stats {
		entry := LeaderboardEntry{
			UserID:        ss.UserID,
			TotalWins:     ss.TotalWins,
			TotalLosses:   ss.TotalLosses,
			TotalGames:    ss.TotalGames,
			WinPercentage: ss.WinPercentage(),
			WeeklyRecords: ss.WeeklyRecords,
		}
		if u, ok := usersByID[ss.UserID]; ok {
			entry.DisplayName = u.DisplayName
			entry.PhotoURL = u.PhotoURL
		}
		entries = append(entries, entry)
	}

	respondJSON(w, http.StatusOK, entries)
}
