package verify

import (
	"time"

	"github.com/mafia-stats/gomafia-sync/internal/models"
)

// Field-by-field comparison of a stored record against its freshly
// fetched counterpart. Both sides went through the same normalizers, so
// plain equality is enough.

func clubMatches(local *models.Club, remote *models.ClubCandidate) bool {
	if remote == nil {
		return false
	}
	return local.GomafiaID == remote.GomafiaID &&
		local.Name == remote.Name &&
		local.City == remote.City &&
		local.MembersCount == remote.MembersCount
}

func playerMatches(local *models.Player, remote *models.PlayerCandidate) bool {
	if remote == nil {
		return false
	}
	if local.GomafiaID != remote.GomafiaID ||
		local.Nickname != remote.Nickname ||
		local.RealName != remote.RealName ||
		local.Region != remote.Region {
		return false
	}
	if local.TotalGames != remote.TotalGames ||
		local.Wins != remote.Wins ||
		local.Losses != remote.Losses {
		return false
	}
	return stringPtrEqual(local.ClubGomafiaID, remote.ClubGomafiaID)
}

func tournamentMatches(local *models.Tournament, remote *models.TournamentCandidate) bool {
	if remote == nil {
		return false
	}
	if local.GomafiaID != remote.GomafiaID ||
		local.Name != remote.Name ||
		local.City != remote.City ||
		local.PlayersCount != remote.PlayersCount ||
		local.Status != remote.Status {
		return false
	}
	if (local.PrizeFund == nil) != (remote.PrizeFund == nil) {
		return false
	}
	if local.PrizeFund != nil && !local.PrizeFund.Equal(*remote.PrizeFund) {
		return false
	}
	return timePtrEqual(local.StartDate, remote.StartDate) &&
		timePtrEqual(local.EndDate, remote.EndDate)
}

func stringPtrEqual(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || a.Equal(*b)
}
