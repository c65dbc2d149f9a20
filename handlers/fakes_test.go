package handlers

import (
	"context"
	"time"

	"nfl-pickem-go/database"
	"nfl-pickem-go/models"
	"nfl-pickem-go/services"
)

// Minimal in-memory stand-ins for the handler tests.

type stubGameRepo struct {
	games []*models.Game
}

func (r *stubGameRepo) FindByEventID(ctx context.Context, eventID string) (*models.Game, error) {
	for _, g := range r.games {
		if g.EventID == eventID {
			return g, nil
		}
	}
	return nil, nil
}

func (r *stubGameRepo) FindByWeek(ctx context.Context, year, week int) ([]*models.Game, error) {
	var out []*models.Game
	for _, g := range r.games {
		if g.Year == year && g.Week == week {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *stubGameRepo) FindFinalByYear(ctx context.Context, year int) ([]*models.Game, error) {
	return nil, nil
}

func (r *stubGameRepo) BulkUpsertGames(ctx context.Context, games []*models.Game) error {
	r.games = append(r.games, games...)
	return nil
}

type stubPickRepo struct {
	picks    []*models.Pick
	upserted []*models.Pick
}

func (r *stubPickRepo) Upsert(ctx context.Context, pick *models.Pick) error {
	r.upserted = append(r.upserted, pick)
	r.picks = append(r.picks, pick)
	return nil
}

func (r *stubPickRepo) FindByUserWeek(ctx context.Context, userID string, year, week int) ([]*models.Pick, error) {
	var out []*models.Pick
	for _, p := range r.picks {
		if p.UserID == userID && p.Year == year && p.Week == week {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubPickRepo) FindByUserYear(ctx context.Context, userID string, year int) ([]*models.Pick, error) {
	return nil, nil
}

func (r *stubPickRepo) FindByGame(ctx context.Context, year, week int, gameID string) ([]*models.Pick, error) {
	return nil, nil
}

func (r *stubPickRepo) FindByWeek(ctx context.Context, year, week int) ([]*models.Pick, error) {
	var out []*models.Pick
	for _, p := range r.picks {
		if p.Year == year && p.Week == week {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubPickRepo) ApplyGameResults(ctx context.Context, year, week int, gameID string, updates []database.PickResultUpdate) error {
	return nil
}

func (r *stubPickRepo) FindLegacyByUser(ctx context.Context, userID string) ([]*models.LegacyPick, error) {
	return nil, nil
}

type stubUserRepo struct {
	users []*models.User
}

func (r *stubUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	r.users = append(r.users, user)
	return nil
}

func (r *stubUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return r.users, nil
}

func (r *stubUserRepo) UpdateLegacyStats(ctx context.Context, userID string, year int, season, allTime models.SeasonRecord) error {
	return nil
}

type stubSyncRepo struct {
	schedule []byte
}

func (r *stubSyncRepo) GetLastUpdate(ctx context.Context) (*database.SyncMarker, error) {
	return nil, nil
}

func (r *stubSyncRepo) MarkUpdated(ctx context.Context, at time.Time, year, week int) error {
	return nil
}

func (r *stubSyncRepo) GetCachedSchedule(ctx context.Context, year, week int, now time.Time) ([]byte, error) {
	return r.schedule, nil
}

func (r *stubSyncRepo) SetCachedSchedule(ctx context.Context, year, week int, events []byte, now time.Time) error {
	r.schedule = events
	return nil
}

type stubEventSource struct {
	weekInfo  *services.WeekInfo
	events    []services.ESPNEvent
	sourceErr error
}

func (s *stubEventSource) GetCurrentWeek(ctx context.Context) (*services.WeekInfo, error) {
	if s.sourceErr != nil {
		return nil, s.sourceErr
	}
	return s.weekInfo, nil
}

func (s *stubEventSource) GetWeekEvents(ctx context.Context, year, week int) ([]services.ESPNEvent, error) {
	if s.sourceErr != nil {
		return nil, s.sourceErr
	}
	return s.events, nil
}
