package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nfl-pickem-go/models"
)

func TestMigrateUser(t *testing.T) {
	now := time.Date(2025, 11, 23, 22, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)

	started := finalTestGame(24, 27)
	started.Date = now.Add(-3 * time.Hour)
	upcoming := &models.Game{
		EventID: "401547402",
		Year:    2025,
		Week:    13,
		Date:    now.Add(48 * time.Hour),
		Away:    models.TeamSide{ID: "21"},
		Home:    models.TeamSide{ID: "6"},
		Status:  models.GameStatus{State: models.GameStatePre},
	}
	gameRepo := newFakeGameRepo(started, upcoming)

	pickRepo := newFakePickRepo()
	pickRepo.legacy["alice"] = []*models.LegacyPick{
		{UserID: "alice", GameID: "401547401", SelectedTeam: "home", Result: models.PickResultWin},
		{UserID: "alice", GameID: "401547402", SelectedTeam: "21"},
		{UserID: "alice", GameID: "401999999", SelectedTeam: "1"},
	}

	statsRepo := newFakeStatsRepo()
	userRepo := newFakeUserRepo(&models.User{ID: "alice"})
	stats := NewStatsService(pickRepo, statsRepo, userRepo, clock)
	svc := NewMigrationService(pickRepo, gameRepo, stats, userRepo, clock)

	result, err := svc.MigrateUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Migrated)
	assert.Equal(t, 1, result.Skipped)

	// the started game's pick kept its result, resolved its side token and locked
	migrated := pickRepo.get("alice", 2025, 12, "401547401")
	require.NotNil(t, migrated)
	assert.Equal(t, "4", migrated.SelectedTeam)
	assert.Equal(t, models.PickResultWin, migrated.Result)
	assert.True(t, migrated.Locked)

	// the upcoming game's pick stays open and pending
	future := pickRepo.get("alice", 2025, 13, "401547402")
	require.NotNil(t, future)
	assert.Equal(t, models.PickResultPending, future.Result)
	assert.False(t, future.Locked)
	assert.Equal(t, upcoming.Date, future.GameStartTime)

	// aggregates were rebuilt from the migrated picks
	require.NotNil(t, statsRepo.weekStats["alice/2025/12"])
	assert.Equal(t, 1, statsRepo.weekStats["alice/2025/12"].Wins)
	assert.Equal(t, 1, statsRepo.weekStats["alice/2025/13"].Pending)
	assert.Equal(t, 1, statsRepo.seasonStats["alice/2025"].TotalWins)
}

func TestMigrateUserNoLegacyPicks(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pickRepo := newFakePickRepo()
	statsRepo := newFakeStatsRepo()
	userRepo := newFakeUserRepo(&models.User{ID: "alice"})
	stats := NewStatsService(pickRepo, statsRepo, userRepo, clock)
	svc := NewMigrationService(pickRepo, newFakeGameRepo(), stats, userRepo, clock)

	result, err := svc.MigrateUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Zero(t, result.Migrated)
	assert.Zero(t, result.Skipped)
}

func TestMigrateAll(t *testing.T) {
	clock := clockwork.NewFakeClock()
	game := finalTestGame(14, 10)
	gameRepo := newFakeGameRepo(game)

	pickRepo := newFakePickRepo()
	pickRepo.legacy["alice"] = []*models.LegacyPick{{UserID: "alice", GameID: game.EventID, SelectedTeam: "13"}}
	pickRepo.legacy["bob"] = []*models.LegacyPick{{UserID: "bob", GameID: game.EventID, SelectedTeam: "4"}}

	statsRepo := newFakeStatsRepo()
	userRepo := newFakeUserRepo(&models.User{ID: "alice"}, &models.User{ID: "bob"})
	stats := NewStatsService(pickRepo, statsRepo, userRepo, clock)
	svc := NewMigrationService(pickRepo, gameRepo, stats, userRepo, clock)

	result, err := svc.MigrateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Users)
	assert.Equal(t, 2, result.Migrated)

	assert.NotNil(t, pickRepo.get("alice", 2025, 12, game.EventID))
	assert.NotNil(t, pickRepo.get("bob", 2025, 12, game.EventID))
}
