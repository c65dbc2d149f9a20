package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jonboulle/clockwork"

	"nfl-pickem-go/models"
	"nfl-pickem-go/services"
)

// GamesHandler serves game data for the frontend
type GamesHandler struct {
	gameRepo      services.GameRepository
	source        services.EventSource
	syncRepo      services.SyncStateRepository
	clock         clockwork.Clock
	currentSeason int
}

func NewGamesHandler(gameRepo services.GameRepository, source services.EventSource,
	syncRepo services.SyncStateRepository, clock clockwork.Clock, currentSeason int) *GamesHandler {
	return &GamesHandler{
		gameRepo:      gameRepo,
		source:        source,
		syncRepo:      syncRepo,
		clock:         clock,
		currentSeason: currentSeason,
	}
}

// GetGames handles GET /api/games?week=&year=
func (h *GamesHandler) GetGames(w http.ResponseWriter, r *http.Request) {
	week, present, err := queryInt(r, "week", 0)
	if err != nil || !present {
		respondError(w, http.StatusBadRequest, "week parameter is required")
		return
	}
	year, _, err := queryInt(r, "year", h.currentSeason)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid year parameter")
		return
	}

	games, err := h.gameRepo.FindByWeek(r.Context(), year, week)
	if err != nil {
		logger.Errorf("Failed to load games for week %d/%d: %v", week, year, err)
		respondError(w, http.StatusInternalServerError, "failed to load games")
		return
	}

	if len(games) == 0 {
		games, err = h.fetchScheduleFallback(r, year, week)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to fetch schedule")
			return
		}
	}

	respondJSON(w, http.StatusOK, games)
}

// fetchScheduleFallback serves a week the updater has not ingested yet,
// preferring the cached raw schedule over a live upstream call
func (h *GamesHandler) fetchScheduleFallback(r *http.Request, year, week int) ([]*models.Game, error) {
	var events []services.ESPNEvent

	cached, err := h.syncRepo.GetCachedSchedule(r.Context(), year, week, h.clock.Now())
	if err != nil {
		logger.Warnf("Failed to read schedule cache for week %d/%d: %v", week, year, err)
	}
	if cached != nil {
		if err := json.Unmarshal(cached, &events); err != nil {
			logger.Warnf("Discarding unreadable schedule cache for week %d/%d: %v", week, year, err)
			events = nil
		}
	}

	if events == nil {
		events, err = h.source.GetWeekEvents(r.Context(), year, week)
		if err != nil {
			logger.Errorf("Schedule fallback fetch failed for week %d/%d: %v", week, year, err)
			return nil, err
		}
		if raw, err := json.Marshal(events); err == nil {
			if err := h.syncRepo.SetCachedSchedule(r.Context(), year, week, raw, h.clock.Now()); err != nil {
				logger.Warnf("Failed to cache schedule for week %d/%d: %v", week, year, err)
			}
		}
	}

	games := make([]*models.Game, 0, len(events))
	for i := range events {
		game, err := services.NormalizeEvent(&events[i], year, week)
		if err != nil {
			logger.Warnf("Skipping malformed event %s: %v", events[i].ID, err)
			continue
		}
		games = append(games, game)
	}
	return games, nil
}

// GetCurrentWeek handles GET /api/current-week
func (h *GamesHandler) GetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	info, err := h.source.GetCurrentWeek(r.Context())
	if err != nil {
		logger.Errorf("Failed to fetch current week: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch current week")
		return
	}
	respondJSON(w, http.StatusOK, info)
}
