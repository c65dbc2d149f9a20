package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jonboulle/clockwork"

	"nfl-pickem-go/middleware"
	"nfl-pickem-go/models"
	"nfl-pickem-go/services"
)

// PicksHandler serves pick reads and writes
type PicksHandler struct {
	pickRepo      services.PickRepository
	gameRepo      services.GameRepository
	userRepo      services.UserRepository
	clock         clockwork.Clock
	currentSeason int
}

func NewPicksHandler(pickRepo services.PickRepository, gameRepo services.GameRepository,
	userRepo services.UserRepository, clock clockwork.Clock, currentSeason int) *PicksHandler {
	return &PicksHandler{
		pickRepo:      pickRepo,
		gameRepo:      gameRepo,
		userRepo:      userRepo,
		clock:         clock,
		currentSeason: currentSeason,
	}
}

// GetPicks handles GET /api/picks?week=&year= for the authenticated user
func (h *PicksHandler) GetPicks(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

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

	picks, err := h.pickRepo.FindByUserWeek(r.Context(), user.ID, year, week)
	if err != nil {
		logger.Errorf("Failed to load picks for user %s: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "failed to load picks")
		return
	}
	respondJSON(w, http.StatusOK, picks)
}

type submitPickRequest struct {
	GameID       string `json:"gameId"`
	SelectedTeam string `json:"selectedTeam"`
}

// SubmitPick handles POST /api/picks
func (h *PicksHandler) SubmitPick(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req submitPickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GameID == "" || req.SelectedTeam == "" {
		respondError(w, http.StatusBadRequest, "gameId and selectedTeam are required")
		return
	}

	game, err := h.gameRepo.FindByEventID(r.Context(), req.GameID)
	if err != nil {
		logger.Errorf("Failed to look up game %s: %v", req.GameID, err)
		respondError(w, http.StatusInternalServerError, "failed to look up game")
		return
	}
	if game == nil {
		respondError(w, http.StatusNotFound, "game not found")
		return
	}

	now := h.clock.Now()
	if game.HasStarted(now) {
		respondError(w, http.StatusConflict, "game has already started")
		return
	}

	existing, err := h.pickRepo.FindByUserWeek(r.Context(), user.ID, game.Year, game.Week)
	if err != nil {
		logger.Errorf("Failed to load existing picks for user %s: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "failed to load picks")
		return
	}
	for _, p := range existing {
		if p.GameID == game.EventID && p.Locked {
			respondError(w, http.StatusConflict, "pick is locked")
			return
		}
	}

	pick := &models.Pick{
		UserID:        user.ID,
		Year:          game.Year,
		Week:          game.Week,
		GameID:        game.EventID,
		SelectedTeam:  game.SideTeamID(req.SelectedTeam),
		Timestamp:     now,
		Result:        models.PickResultPending,
		Locked:        false,
		GameStartTime: game.Date,
	}

	if err := h.pickRepo.Upsert(r.Context(), pick); err != nil {
		logger.Errorf("Failed to save pick for user %s game %s: %v", user.ID, game.EventID, err)
		respondError(w, http.StatusInternalServerError, "failed to save pick")
		return
	}

	respondJSON(w, http.StatusOK, pick)
}

// GetAllPicks handles GET /api/picks/all?week=&year=. Picks for games that
// have not kicked off are withheld so nobody can copy selections before
// lock.
func (h *PicksHandler) GetAllPicks(w http.ResponseWriter, r *http.Request) {
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

	picks, err := h.pickRepo.FindByWeek(r.Context(), year, week)
	if err != nil {
		logger.Errorf("Failed to load picks for week %d/%d: %v", week, year, err)
		respondError(w, http.StatusInternalServerError, "failed to load picks")
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

	now := h.clock.Now()
	started := make(map[string]bool, len(games))
	for _, g := range games {
		started[g.EventID] = g.HasStarted(now)
	}

	grouped := make(map[string][]models.PickWithUser)
	for _, p := range picks {
		if !started[p.GameID] {
			continue
		}
		entry := models.PickWithUser{
			UserID:       p.UserID,
			SelectedTeam: p.SelectedTeam,
			Result:       p.Result,
		}
		if u, ok := usersByID[p.UserID]; ok {
			entry.DisplayName = u.DisplayName
			entry.PhotoURL = u.PhotoURL
		}
		grouped[p.GameID] = append(grouped[p.GameID], entry)
	}

	respondJSON(w, http.StatusOK, grouped)
}
