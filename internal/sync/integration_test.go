package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mafia-stats/gomafia-sync/internal/alert"
	"github.com/mafia-stats/gomafia-sync/internal/config"
	"github.com/mafia-stats/gomafia-sync/internal/db"
	"github.com/mafia-stats/gomafia-sync/internal/models"
)

// scriptedFetcher serves a fixed two-page club listing and single pages
// for the remaining kinds. failPhase makes the named phase's first fetch
// fail once, simulating a mid-run outage.
type scriptedFetcher struct {
	failPhase models.PhaseName
	failures  int
}

func (f *scriptedFetcher) failOnce(phase models.PhaseName) error {
	if f.failPhase == phase {
		f.failPhase = ""
		f.failures++
		return errors.New("simulated outage")
	}
	return nil
}

func (f *scriptedFetcher) FetchClubsPage(ctx context.Context, page int) ([]*models.ClubCandidate, int, error) {
	if err := f.failOnce(models.PhaseClubs); err != nil {
		return nil, 0, err
	}
	clubs := []*models.ClubCandidate{
		{GomafiaID: fmt.Sprintf("club-%d-a", page), Name: fmt.Sprintf("Клуб %dа", page), MembersCount: 10},
		{GomafiaID: fmt.Sprintf("club-%d-b", page), Name: fmt.Sprintf("Клуб %dб", page), MembersCount: 20},
		// The listing repeats an entry on the same page; only the first
		// occurrence may be inserted.
		{GomafiaID: fmt.Sprintf("club-%d-a", page), Name: fmt.Sprintf("Клуб %dа", page), MembersCount: 10},
	}
	return clubs, 2, nil
}

func (f *scriptedFetcher) FetchPlayersPage(ctx context.Context, page int) ([]*models.PlayerCandidate, int, error) {
	if err := f.failOnce(models.PhasePlayers); err != nil {
		return nil, 0, err
	}
	players := []*models.PlayerCandidate{
		{GomafiaID: "player-1", Nickname: "Доктор", TotalGames: 10, Wins: 6, Losses: 4},
		{GomafiaID: "player-2", Nickname: "Кира", TotalGames: 4, Wins: 2, Losses: 2},
		// Invalid: wins and losses do not add up. Skipped, not fatal.
		{GomafiaID: "player-3", Nickname: "Фантом", TotalGames: 9, Wins: 6, Losses: 4},
	}
	return players, 1, nil
}

func (f *scriptedFetcher) FetchTournamentsPage(ctx context.Context, page int) ([]*models.TournamentCandidate, int, error) {
	if err := f.failOnce(models.PhaseTournaments); err != nil {
		return nil, 0, err
	}
	tournaments := []*models.TournamentCandidate{
		{GomafiaID: "t-77", Name: "Кубок Москвы", PlayersCount: 60, Status: models.TournamentStatusFinished},
	}
	return tournaments, 1, nil
}

func (f *scriptedFetcher) FetchGamesPage(ctx context.Context, page int) ([]*models.GameCandidate, int, error) {
	if err := f.failOnce(models.PhaseGames); err != nil {
		return nil, 0, err
	}
	games := []*models.GameCandidate{
		{GomafiaID: "g-1", TournamentGomafiaID: "t-77", TableNumber: 1, GameNumber: 1, WinnerSide: models.WinnerSideCity},
	}
	return games, 1, nil
}

func (f *scriptedFetcher) FetchJudgesPage(ctx context.Context, page int) ([]*models.JudgeCandidate, int, error) {
	if err := f.failOnce(models.PhaseJudges); err != nil {
		return nil, 0, err
	}
	judges := []*models.JudgeCandidate{
		{GomafiaID: "j-9", Nickname: "Арбитр", TournamentsCount: 12},
	}
	return judges, 1, nil
}

func (f *scriptedFetcher) FetchClub(ctx context.Context, gomafiaID string) (*models.ClubCandidate, error) {
	panic("not used by the import")
}

func (f *scriptedFetcher) FetchPlayer(ctx context.Context, gomafiaID string) (*models.PlayerCandidate, error) {
	panic("not used by the import")
}

func (f *scriptedFetcher) FetchTournament(ctx context.Context, gomafiaID string) (*models.TournamentCandidate, error) {
	panic("not used by the import")
}

func setupIntegration(t *testing.T, fetcher *scriptedFetcher) (*Orchestrator, *db.PostgresStore, func()) {
	connString := os.Getenv("TEST_DB_CONNECTION_STRING")
	if connString == "" {
		t.Skip("TEST_DB_CONNECTION_STRING not set, skipping database tests")
	}

	store, err := db.NewPostgresStore(connString)
	require.NoError(t, err)
	require.NoError(t, store.Migrate())

	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil))

	lock := db.NewAdvisoryLock(store.DB(), logger)
	orchestrator := NewOrchestrator(store, fetcher, lock, alert.NewLogSink(logger), config.DefaultSyncConfig(), logger)

	cleanup := func() {
		_, err := store.DB().Exec(`
			TRUNCATE games, judges, tournaments, players, clubs,
				sync_status, sync_checkpoint, data_integrity_reports
			RESTART IDENTITY CASCADE;
		`)
		require.NoError(t, err)
		store.DB().Close()
	}

	return orchestrator, store, cleanup
}

func countRows(t *testing.T, store *db.PostgresStore, table string) int {
	var count int
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&count))
	return count
}

func TestImportRun(t *testing.T) {
	orchestrator, store, cleanup := setupIntegration(t, &scriptedFetcher{})
	defer cleanup()

	ctx := context.Background()

	result, err := orchestrator.Execute(ctx, models.SyncTypeFull, false)
	require.NoError(t, err)
	assert.True(t, result.Success)

	// Two club pages of two plus an in-page repeat, two valid players,
	// one tournament, one game, one judge.
	assert.Equal(t, 4, countRows(t, store, "clubs"))
	assert.Equal(t, 2, countRows(t, store, "players"))
	assert.Equal(t, 1, countRows(t, store, "tournaments"))
	assert.Equal(t, 1, countRows(t, store, "games"))
	assert.Equal(t, 1, countRows(t, store, "judges"))

	// The invalid player surfaced as an accumulated error.
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "player-3")

	status, err := orchestrator.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStateCompleted, status.State)
	assert.False(t, status.IsRunning)

	cp, err := store.GetCheckpoint(ctx)
	require.NoError(t, err)
	assert.Nil(t, cp, "completed run must leave no checkpoint")

	t.Run("re-running inserts nothing new", func(t *testing.T) {
		result, err := orchestrator.Execute(ctx, models.SyncTypeFull, false)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 0, result.RecordsProcessed)
		assert.Equal(t, 4, countRows(t, store, "clubs"))
		assert.Equal(t, 2, countRows(t, store, "players"))
	})
}

func TestImportResumeAfterFailure(t *testing.T) {
	fetcher := &scriptedFetcher{failPhase: models.PhasePlayers}
	orchestrator, store, cleanup := setupIntegration(t, fetcher)
	defer cleanup()

	ctx := context.Background()

	result, err := orchestrator.Execute(ctx, models.SyncTypeFull, false)
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, fetcher.failures)

	// Clubs committed before the outage; the checkpoint survives it.
	assert.Equal(t, 4, countRows(t, store, "clubs"))
	assert.Equal(t, 0, countRows(t, store, "players"))

	cp, err := store.GetCheckpoint(ctx)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, models.PhaseClubs, cp.Phase)

	status, err := orchestrator.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStateFailed, status.State)

	// The resumed run skips the completed clubs phase and picks up at
	// players without duplicating anything.
	result, err = orchestrator.Execute(ctx, models.SyncTypeFull, false)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 4, countRows(t, store, "clubs"))
	assert.Equal(t, 2, countRows(t, store, "players"))
	assert.Equal(t, 1, countRows(t, store, "judges"))
}
