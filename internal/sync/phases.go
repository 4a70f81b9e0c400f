package sync

import (
	"context"
	"database/sql"

	"github.com/mafia-stats/gomafia-sync/internal/gomafia"
	"github.com/mafia-stats/gomafia-sync/internal/models"
)

// The five concrete phases, in their fixed execution order. Each one
// binds the shared batch loop to its entity kind's fetcher, validator
// and store operations.

type clubsPhase struct {
	env     *phaseEnv
	fetcher gomafia.Fetcher
}

func (p *clubsPhase) Name() models.PhaseName { return models.PhaseClubs }

func (p *clubsPhase) Execute(ctx context.Context) (*PhaseResult, error) {
	return runPhase(ctx, p.env, phaseSpec[*models.ClubCandidate]{
		name:     models.PhaseClubs,
		fetch:    p.fetcher.FetchClubsPage,
		validate: validateClub,
		exists:   p.env.store.ClubExists,
		insert: func(ctx context.Context, tx *sql.Tx, c *models.ClubCandidate) error {
			return p.env.store.InsertClubTx(ctx, tx, &models.Club{
				GomafiaID:    c.GomafiaID,
				Name:         c.Name,
				City:         c.City,
				MembersCount: c.MembersCount,
			})
		},
		idOf: func(c *models.ClubCandidate) string { return c.GomafiaID },
	})
}

type playersPhase struct {
	env     *phaseEnv
	fetcher gomafia.Fetcher
}

func (p *playersPhase) Name() models.PhaseName { return models.PhasePlayers }

func (p *playersPhase) Execute(ctx context.Context) (*PhaseResult, error) {
	return runPhase(ctx, p.env, phaseSpec[*models.PlayerCandidate]{
		name:     models.PhasePlayers,
		fetch:    p.fetcher.FetchPlayersPage,
		validate: validatePlayer,
		exists:   p.env.store.PlayerExists,
		insert: func(ctx context.Context, tx *sql.Tx, c *models.PlayerCandidate) error {
			return p.env.store.InsertPlayerTx(ctx, tx, &models.Player{
				GomafiaID:     c.GomafiaID,
				Nickname:      c.Nickname,
				RealName:      c.RealName,
				Region:        c.Region,
				ClubGomafiaID: c.ClubGomafiaID,
				TotalGames:    c.TotalGames,
				Wins:          c.Wins,
				Losses:        c.Losses,
			})
		},
		idOf: func(c *models.PlayerCandidate) string { return c.GomafiaID },
	})
}

type tournamentsPhase struct {
	env     *phaseEnv
	fetcher gomafia.Fetcher
}

func (p *tournamentsPhase) Name() models.PhaseName { return models.PhaseTournaments }

func (p *tournamentsPhase) Execute(ctx context.Context) (*PhaseResult, error) {
	return runPhase(ctx, p.env, phaseSpec[*models.TournamentCandidate]{
		name:     models.PhaseTournaments,
		fetch:    p.fetcher.FetchTournamentsPage,
		validate: validateTournament,
		exists:   p.env.store.TournamentExists,
		insert: func(ctx context.Context, tx *sql.Tx, c *models.TournamentCandidate) error {
			return p.env.store.InsertTournamentTx(ctx, tx, &models.Tournament{
				GomafiaID:    c.GomafiaID,
				Name:         c.Name,
				City:         c.City,
				StartDate:    c.StartDate,
				EndDate:      c.EndDate,
				PrizeFund:    c.PrizeFund,
				PlayersCount: c.PlayersCount,
				Status:       c.Status,
			})
		},
		idOf: func(c *models.TournamentCandidate) string { return c.GomafiaID },
	})
}

type gamesPhase struct {
	env     *phaseEnv
	fetcher gomafia.Fetcher
}

func (p *gamesPhase) Name() models.PhaseName { return models.PhaseGames }

func (p *gamesPhase) Execute(ctx context.Context) (*PhaseResult, error) {
	return runPhase(ctx, p.env, phaseSpec[*models.GameCandidate]{
		name:     models.PhaseGames,
		fetch:    p.fetcher.FetchGamesPage,
		validate: validateGame,
		exists:   p.env.store.GameExists,
		insert: func(ctx context.Context, tx *sql.Tx, c *models.GameCandidate) error {
			return p.env.store.InsertGameTx(ctx, tx, &models.Game{
				GomafiaID:           c.GomafiaID,
				TournamentGomafiaID: c.TournamentGomafiaID,
				TableNumber:         c.TableNumber,
				GameNumber:          c.GameNumber,
				WinnerSide:          c.WinnerSide,
				PlayedAt:            c.PlayedAt,
			})
		},
		idOf: func(c *models.GameCandidate) string { return c.GomafiaID },
	})
}

type judgesPhase struct {
	env     *phaseEnv
	fetcher gomafia.Fetcher
}

func (p *judgesPhase) Name() models.PhaseName { return models.PhaseJudges }

func (p *judgesPhase) Execute(ctx context.Context) (*PhaseResult, error) {
	return runPhase(ctx, p.env, phaseSpec[*models.JudgeCandidate]{
		name:     models.PhaseJudges,
		fetch:    p.fetcher.FetchJudgesPage,
		validate: validateJudge,
		exists:   p.env.store.JudgeExists,
		insert: func(ctx context.Context, tx *sql.Tx, c *models.JudgeCandidate) error {
			return p.env.store.InsertJudgeTx(ctx, tx, &models.Judge{
				GomafiaID:        c.GomafiaID,
				Nickname:         c.Nickname,
				Region:           c.Region,
				Category:         c.Category,
				TournamentsCount: c.TournamentsCount,
			})
		},
		idOf: func(c *models.JudgeCandidate) string { return c.GomafiaID },
	})
}
