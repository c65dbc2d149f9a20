package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"nfl-pickem-go/database"
	"nfl-pickem-go/models"
)

// In-memory repository fakes shared by the service tests.

type fakeGameRepo struct {
	games       map[string]*models.Game
	bulkWrites  int
	lookupError error
	writeError  error
}

func newFakeGameRepo(games ...*models.Game) *fakeGameRepo {
	repo := &fakeGameRepo{games: make(map[string]*models.Game)}
	for _, g := range games {
		repo.games[g.EventID] = g
	}
	return repo
}

func (r *fakeGameRepo) FindByEventID(ctx context.Context, eventID string) (*models.Game, error) {
	if r.lookupError != nil {
		return nil, r.lookupError
	}
	return r.games[eventID], nil
}

func (r *fakeGameRepo) FindByWeek(ctx context.Context, year, week int) ([]*models.Game, error) {
	var out []*models.Game
	for _, g := range r.games {
		if g.Year == year && g.Week == week {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakeGameRepo) FindFinalByYear(ctx context.Context, year int) ([]*models.Game, error) {
	var out []*models.Game
	for _, g := range r.games {
		if g.Year == year && g.IsFinal() {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeGameRepo) BulkUpsertGames(ctx context.Context, games []*models.Game) error {
	if r.writeError != nil {
		return r.writeError
	}
	r.bulkWrites++
	for _, g := range games {
		r.games[g.EventID] = g
	}
	return nil
}

type pickKey struct {
	userID string
	year   int
	week   int
	gameID string
}

type fakePickRepo struct {
	picks       map[pickKey]*models.Pick
	legacy      map[string][]*models.LegacyPick
	bulkApplies int
}

func newFakePickRepo(picks ...*models.Pick) *fakePickRepo {
	repo := &fakePickRepo{
		picks:  make(map[pickKey]*models.Pick),
		legacy: make(map[string][]*models.LegacyPick),
	}
	for _, p := range picks {
		repo.put(p)
	}
	return repo
}

func (r *fakePickRepo) put(p *models.Pick) {
	cp := *p
	r.picks[pickKey{p.UserID, p.Year, p.Week, p.GameID}] = &cp
}

func (r *fakePickRepo) Upsert(ctx context.Context, pick *models.Pick) error {
	r.put(pick)
	return nil
}

func (r *fakePickRepo) FindByUserWeek(ctx context.Context, userID string, year, week int) ([]*models.Pick, error) {
	var out []*models.Pick
	for _, p := range r.picks {
		if p.UserID == userID && p.Year == year && p.Week == week {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePickRepo) FindByUserYear(ctx context.Context, userID string, year int) ([]*models.Pick, error) {
	var out []*models.Pick
	for _, p := range r.picks {
		if p.UserID == userID && p.Year == year {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePickRepo) FindByGame(ctx context.Context, year, week int, gameID string) ([]*models.Pick, error) {
	var out []*models.Pick
	for _, p := range r.picks {
		if p.Year == year && p.Week == week && p.GameID == gameID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *fakePickRepo) FindByWeek(ctx context.Context, year, week int) ([]*models.Pick, error) {
	var out []*models.Pick
	for _, p := range r.picks {
		if p.Year == year && p.Week == week {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePickRepo) ApplyGameResults(ctx context.Context, year, week int, gameID string, updates []database.PickResultUpdate) error {
	r.bulkApplies++
	for _, u := range updates {
		key := pickKey{u.UserID, year, week, gameID}
		p, ok := r.picks[key]
		if !ok {
			return fmt.Errorf("no pick for user %s game %s", u.UserID, gameID)
		}
		processed := u.ProcessedAt
		p.Result = u.Result
		p.Locked = true
		p.ProcessedAt = &processed
	}
	return nil
}

func (r *fakePickRepo) FindLegacyByUser(ctx context.Context, userID string) ([]*models.LegacyPick, error) {
	return r.legacy[userID], nil
}

func (r *fakePickRepo) get(userID string, year, week int, gameID string) *models.Pick {
	return r.picks[pickKey{userID, year, week, gameID}]
}

type fakeStatsRepo struct {
	weekStats   map[string]*models.WeekStats
	seasonStats map[string]*models.SeasonStats
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{
		weekStats:   make(map[string]*models.WeekStats),
		seasonStats: make(map[string]*models.SeasonStats),
	}
}

func (r *fakeStatsRepo) UpsertWeekStats(ctx context.Context, ws *models.WeekStats) error {
	cp := *ws
	r.weekStats[fmt.Sprintf("%s/%d/%d", ws.UserID, ws.Year, ws.Week)] = &cp
	return nil
}

func (r *fakeStatsRepo) FindWeekStatsByUserYear(ctx context.Context, userID string, year int) ([]*models.WeekStats, error) {
	var out []*models.WeekStats
	for _, ws := range r.weekStats {
		if ws.UserID == userID && ws.Year == year {
			out = append(out, ws)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out, nil
}

func (r *fakeStatsRepo) UpsertSeasonStats(ctx context.Context, ss *models.SeasonStats) error {
	cp := *ss
	r.seasonStats[fmt.Sprintf("%s/%d", ss.UserID, ss.Year)] = &cp
	return nil
}

func (r *fakeStatsRepo) FindSeasonStats(ctx context.Context, userID string, year int) (*models.SeasonStats, error) {
	return r.seasonStats[fmt.Sprintf("%s/%d", userID, year)], nil
}

func (r *fakeStatsRepo) FindSeasonStatsByUser(ctx context.Context, userID string) ([]*models.SeasonStats, error) {
	var out []*models.SeasonStats
	for _, ss := range r.seasonStats {
		if ss.UserID == userID {
			out = append(out, ss)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

func (r *fakeStatsRepo) FindSeasonLeaderboard(ctx context.Context, year int) ([]*models.SeasonStats, error) {
	var out []*models.SeasonStats
	for _, ss := range r.seasonStats {
		if ss.Year == year {
			out = append(out, ss)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalWins != out[j].TotalWins {
			return out[i].TotalWins > out[j].TotalWins
		}
		return out[i].TotalLosses < out[j].TotalLosses
	})
	return out, nil
}

type fakeUserRepo struct {
	users       map[string]*models.User
	legacyStats map[string]models.SeasonRecord
	allTime     map[string]models.SeasonRecord
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		users:       make(map[string]*models.User),
		legacyStats: make(map[string]models.SeasonRecord),
		allTime:     make(map[string]models.SeasonRecord),
	}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) UpdateLegacyStats(ctx context.Context, userID string, year int, season, allTime models.SeasonRecord) error {
	r.legacyStats[fmt.Sprintf("%s/%d", userID, year)] = season
	r.allTime[userID] = allTime
	return nil
}

type fakeSyncRepo struct {
	marker    *database.SyncMarker
	schedules map[string][]byte
}

func newFakeSyncRepo() *fakeSyncRepo {
	return &fakeSyncRepo{schedules: make(map[string][]byte)}
}

func (r *fakeSyncRepo) GetLastUpdate(ctx context.Context) (*database.SyncMarker, error) {
	return r.marker, nil
}

func (r *fakeSyncRepo) MarkUpdated(ctx context.Context, at time.Time, year, week int) error {
	r.marker = &database.SyncMarker{Timestamp: at, Year: year, Week: week}
	return nil
}

func (r *fakeSyncRepo) GetCachedSchedule(ctx context.Context, year, week int, now time.Time) ([]byte, error) {
	return r.schedules[fmt.Sprintf("%d/%d", year, week)], nil
}

func (r *fakeSyncRepo) SetCachedSchedule(ctx context.Context, year, week int, events []byte, now time.Time) error {
	r.schedules[fmt.Sprintf("%d/%d", year, week)] = events
	return nil
}

type fakeEventSource struct {
	weekInfo     *WeekInfo
	weekInfoErr  error
	events       []ESPNEvent
	eventsErr    error
	eventsCalled int
}

func (s *fakeEventSource) GetCurrentWeek(ctx context.Context) (*WeekInfo, error) {
	if s.weekInfoErr != nil {
		return nil, s.weekInfoErr
	}
	return s.weekInfo, nil
}

func (s *fakeEventSource) GetWeekEvents(ctx context.Context, year, week int) ([]ESPNEvent, error) {
	s.eventsCalled++
	if s.eventsErr != nil {
		return nil, s.eventsErr
	}
	return s.events, nil
}
