package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nfl-pickem-go/models"
)

func intPtr(v int) *int { return &v }

func finalTestGame(awayScore, homeScore int) *models.Game {
	return &models.Game{
		EventID: "401547401",
		Year:    2025,
		Week:    12,
		Away:    models.TeamSide{ID: "13", Name: "Buffalo Bills", Score: intPtr(awayScore)},
		Home:    models.TeamSide{ID: "4", Name: "Kansas City Chiefs", Score: intPtr(homeScore)},
		Status:  models.GameStatus{State: models.GameStateFinal},
	}
}

func pendingPick(userID, selected string) *models.Pick {
	return &models.Pick{
		UserID:       userID,
		Year:         2025,
		Week:         12,
		GameID:       "401547401",
		SelectedTeam: selected,
		Result:       models.PickResultPending,
	}
}

func TestReconcileGame(t *testing.T) {
	game := finalTestGame(24, 27)
	pickRepo := newFakePickRepo(
		pendingPick("alice", "4"),
		pendingPick("bob", "13"),
		pendingPick("carol", "home"),
		pendingPick("dave", "away"),
	)
	svc := NewReconciliationService(pickRepo, newFakeGameRepo())
	now := time.Date(2025, 11, 23, 21, 30, 0, 0, time.UTC)

	users, err := svc.ReconcileGame(context.Background(), game, now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob", "carol", "dave"}, users)

	alice := pickRepo.get("alice", 2025, 12, "401547401")
	assert.Equal(t, models.PickResultWin, alice.Result)
	assert.True(t, alice.Locked)
	require.NotNil(t, alice.ProcessedAt)
	assert.Equal(t, now, *alice.ProcessedAt)

	assert.Equal(t, models.PickResultLoss, pickRepo.get("bob", 2025, 12, "401547401").Result)
	// legacy side tokens grade the same as the team IDs they stand for
	assert.Equal(t, models.PickResultWin, pickRepo.get("carol", 2025, 12, "401547401").Result)
	assert.Equal(t, models.PickResultLoss, pickRepo.get("dave", 2025, 12, "401547401").Result)
}

func TestReconcileGameIdempotent(t *testing.T) {
	game := finalTestGame(31, 17)
	pickRepo := newFakePickRepo(pendingPick("alice", "13"))
	svc := NewReconciliationService(pickRepo, newFakeGameRepo())
	now := time.Now()

	_, err := svc.ReconcileGame(context.Background(), game, now)
	require.NoError(t, err)
	first := *pickRepo.get("alice", 2025, 12, "401547401")

	_, err = svc.ReconcileGame(context.Background(), game, now)
	require.NoError(t, err)
	second := *pickRepo.get("alice", 2025, 12, "401547401")

	assert.Equal(t, first.Result, second.Result)
	assert.Equal(t, first.Locked, second.Locked)
	assert.Equal(t, *first.ProcessedAt, *second.ProcessedAt)
	assert.Equal(t, 2, pickRepo.bulkApplies)
}

func TestReconcileGameTie(t *testing.T) {
	game := finalTestGame(20, 20)
	pickRepo := newFakePickRepo(pendingPick("alice", "4"))
	svc := NewReconciliationService(pickRepo, newFakeGameRepo())

	users, err := svc.ReconcileGame(context.Background(), game, time.Now())
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Zero(t, pickRepo.bulkApplies)

	// a tied game never settles its picks
	pick := pickRepo.get("alice", 2025, 12, "401547401")
	assert.Equal(t, models.PickResultPending, pick.Result)
	assert.False(t, pick.Locked)
	assert.Nil(t, pick.ProcessedAt)
}

func TestReconcileGameNotFinal(t *testing.T) {
	game := finalTestGame(14, 10)
	game.Status.State = models.GameStateLive
	svc := NewReconciliationService(newFakePickRepo(), newFakeGameRepo())

	_, err := svc.ReconcileGame(context.Background(), game, time.Now())
	assert.Error(t, err)
}

func TestReconcileSeason(t *testing.T) {
	early := finalTestGame(24, 27)
	early.EventID = "401547100"
	early.Week = 3
	late := finalTestGame(31, 17)

	live := finalTestGame(7, 3)
	live.EventID = "401547999"
	live.Status.State = models.GameStateLive

	gameRepo := newFakeGameRepo(early, late, live)
	pickRepo := newFakePickRepo(
		pendingPick("alice", "4"),
		pendingPick("bob", "13"),
	)
	for _, p := range []*models.Pick{
		{UserID: "alice", Year: 2025, Week: 3, GameID: "401547100", SelectedTeam: "13", Result: models.PickResultPending},
	} {
		pickRepo.put(p)
	}
	svc := NewReconciliationService(pickRepo, gameRepo)
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	users, err := svc.ReconcileSeason(context.Background(), 2025, now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, users)

	assert.Equal(t, models.PickResultLoss, pickRepo.get("alice", 2025, 3, "401547100").Result)
	assert.Equal(t, models.PickResultLoss, pickRepo.get("alice", 2025, 12, "401547401").Result)
	assert.Equal(t, models.PickResultWin, pickRepo.get("bob", 2025, 12, "401547401").Result)
	assert.Equal(t, 2, pickRepo.bulkApplies)
}

func TestReconcileGameNoPicks(t *testing.T) {
	svc := NewReconciliationService(newFakePickRepo(), newFakeGameRepo())

	users, err := svc.ReconcileGame(context.Background(), finalTestGame(3, 7), time.Now())
	require.NoError(t, err)
	assert.Empty(t, users)
}
