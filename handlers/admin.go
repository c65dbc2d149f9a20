package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jonboulle/clockwork"

	"nfl-pickem-go/services"
)

// AdminHandler exposes the maintenance operations
type AdminHandler struct {
	updater       *services.ScoreUpdater
	stats         *services.StatsService
	reconciler    *services.ReconciliationService
	migration     *services.MigrationService
	clock         clockwork.Clock
	currentSeason int
}

func NewAdminHandler(updater *services.ScoreUpdater, stats *services.StatsService,
	reconciler *services.ReconciliationService, migration *services.MigrationService,
	clock clockwork.Clock, currentSeason int) *AdminHandler {
	return &AdminHandler{
		updater:       updater,
		stats:         stats,
		reconciler:    reconciler,
		migration:     migration,
		clock:         clock,
		currentSeason: currentSeason,
	}
}

// Refresh handles POST /api/admin/refresh, running a score update pass with
// the cooldown bypassed
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	summary, err := h.updater.RunOnce(r.Context(), true)
	if err != nil {
		logger.Errorf("Forced refresh failed: %v", err)
		respondError(w, http.StatusInternalServerError, "refresh failed")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

type recalculateRequest struct {
	UserID string `json:"userId"`
	Year   int    `json:"year"`
}

// Recalculate handles POST /api/admin/recalculate for one user or all users
func (h *AdminHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	var req recalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	year := req.Year
	if year == 0 {
		year = h.currentSeason
	}

	// sweep the season's final games first so the recount sees every result
	if _, err := h.reconciler.ReconcileSeason(r.Context(), year, h.clock.Now()); err != nil {
		logger.Errorf("Season sweep failed for year %d: %v", year, err)
		respondError(w, http.StatusInternalServerError, "recalculation failed")
		return
	}

	if req.UserID != "" {
		if err := h.stats.RecalcUserSeason(r.Context(), req.UserID, year); err != nil {
			logger.Errorf("Recalculation failed for user %s: %v", req.UserID, err)
			respondError(w, http.StatusInternalServerError, "recalculation failed")
			return
		}
	} else {
		if err := h.stats.RecalcAllUsers(r.Context(), year); err != nil {
			logger.Errorf("Full recalculation failed: %v", err)
			respondError(w, http.StatusInternalServerError, "recalculation failed")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "year": year})
}

type migrateRequest struct {
	UserID string `json:"userId"`
}

// MigratePicks handles POST /api/admin/migrate-picks
func (h *AdminHandler) MigratePicks(w http.ResponseWriter, r *http.Request) {
	var req migrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var result *services.MigrationResult
	var err error
	if req.UserID != "" {
		result, err = h.migration.MigrateUser(r.Context(), req.UserID)
	} else {
		result, err = h.migration.MigrateAll(r.Context())
	}
	if err != nil {
		logger.Errorf("Pick migration failed: %v", err)
		respondError(w, http.StatusInternalServerError, "migration failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
