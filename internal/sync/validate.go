package sync

import (
	"github.com/mafia-stats/gomafia-sync/internal/models"
)

// Structural and domain validity checks for candidate records. All of
// them return false rather than erroring so a bad record is skippable
// instead of fatal to its batch.

const minNameLength = 2

func validateClub(c *models.ClubCandidate) bool {
	if c == nil || c.GomafiaID == "" {
		return false
	}
	if len([]rune(c.Name)) < minNameLength {
		return false
	}
	return c.MembersCount >= 0
}

func validatePlayer(p *models.PlayerCandidate) bool {
	if p == nil || p.GomafiaID == "" {
		return false
	}
	if len([]rune(p.Nickname)) < minNameLength {
		return false
	}
	if p.TotalGames < 0 || p.Wins < 0 || p.Losses < 0 {
		return false
	}
	// Wins and losses partition the played games exactly.
	return p.Wins+p.Losses == p.TotalGames
}

func validateTournament(t *models.TournamentCandidate) bool {
	if t == nil || t.GomafiaID == "" {
		return false
	}
	if len([]rune(t.Name)) < minNameLength {
		return false
	}
	if t.PlayersCount < 0 {
		return false
	}
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return false
	}
	return true
}

func validateGame(g *models.GameCandidate) bool {
	if g == nil || g.GomafiaID == "" || g.TournamentGomafiaID == "" {
		return false
	}
	switch g.WinnerSide {
	case models.WinnerSideCity, models.WinnerSideMafia, models.WinnerSideDraw:
	default:
		return false
	}
	return g.TableNumber >= 0 && g.GameNumber >= 0
}

func validateJudge(j *models.JudgeCandidate) bool {
	if j == nil || j.GomafiaID == "" {
		return false
	}
	if len([]rune(j.Nickname)) < minNameLength {
		return false
	}
	return j.TournamentsCount >= 0
}
