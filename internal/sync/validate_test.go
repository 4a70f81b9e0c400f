package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mafia-stats/gomafia-sync/internal/models"
)

func TestValidateClub(t *testing.T) {
	valid := &models.ClubCandidate{GomafiaID: "42", Name: "Мафия СПб", MembersCount: 20}
	assert.True(t, validateClub(valid))

	assert.False(t, validateClub(nil))
	assert.False(t, validateClub(&models.ClubCandidate{Name: "Мафия СПб"}))
	assert.False(t, validateClub(&models.ClubCandidate{GomafiaID: "42", Name: "X"}))
	assert.False(t, validateClub(&models.ClubCandidate{GomafiaID: "42", Name: "Мафия", MembersCount: -1}))
}

func TestValidatePlayer(t *testing.T) {
	valid := &models.PlayerCandidate{
		GomafiaID:  "1001",
		Nickname:   "Доктор",
		TotalGames: 120,
		Wins:       70,
		Losses:     50,
	}
	assert.True(t, validatePlayer(valid))

	t.Run("wins and losses must add up to total games", func(t *testing.T) {
		p := *valid
		p.Wins = 80
		assert.False(t, validatePlayer(&p))
	})

	t.Run("negative counters are rejected", func(t *testing.T) {
		p := *valid
		p.Losses = -1
		p.TotalGames = 69
		assert.False(t, validatePlayer(&p))
	})

	assert.False(t, validatePlayer(&models.PlayerCandidate{GomafiaID: "1001", Nickname: "Я"}))
	assert.False(t, validatePlayer(&models.PlayerCandidate{Nickname: "Доктор"}))
}

func TestValidateTournament(t *testing.T) {
	start := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	valid := &models.TournamentCandidate{
		GomafiaID:    "77",
		Name:         "Кубок Москвы",
		StartDate:    &start,
		EndDate:      &end,
		PlayersCount: 60,
	}
	assert.True(t, validateTournament(valid))

	t.Run("end date before start date is rejected", func(t *testing.T) {
		tc := *valid
		tc.StartDate = &end
		tc.EndDate = &start
		assert.False(t, validateTournament(&tc))
	})

	t.Run("missing dates are allowed", func(t *testing.T) {
		tc := *valid
		tc.StartDate = nil
		tc.EndDate = nil
		assert.True(t, validateTournament(&tc))
	})

	assert.False(t, validateTournament(&models.TournamentCandidate{GomafiaID: "77", Name: "К"}))
}

func TestValidateGame(t *testing.T) {
	valid := &models.GameCandidate{
		GomafiaID:           "g-1",
		TournamentGomafiaID: "77",
		TableNumber:         1,
		GameNumber:          3,
		WinnerSide:          models.WinnerSideCity,
	}
	assert.True(t, validateGame(valid))

	t.Run("unknown winner side is rejected", func(t *testing.T) {
		g := *valid
		g.WinnerSide = "aliens"
		assert.False(t, validateGame(&g))
	})

	t.Run("game must belong to a tournament", func(t *testing.T) {
		g := *valid
		g.TournamentGomafiaID = ""
		assert.False(t, validateGame(&g))
	})
}

func TestValidateJudge(t *testing.T) {
	assert.True(t, validateJudge(&models.JudgeCandidate{GomafiaID: "j-9", Nickname: "Арбитр", TournamentsCount: 12}))
	assert.False(t, validateJudge(&models.JudgeCandidate{GomafiaID: "j-9", Nickname: "Арбитр", TournamentsCount: -1}))
	assert.False(t, validateJudge(&models.JudgeCandidate{Nickname: "Арбитр"}))
}
