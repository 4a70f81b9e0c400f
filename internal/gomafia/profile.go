package gomafia

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mafia-stats/gomafia-sync/internal/models"
	"github.com/mafia-stats/gomafia-sync/internal/normalize"
)

// Profile pages carry the same fields as listing rows inside a single
// .profile container. The verification service fetches these to compare
// a stored record against the live source.

func profileRoot(doc *goquery.Document, page string) (*goquery.Selection, string, error) {
	root := doc.Find("div.profile").First()
	if root.Length() == 0 {
		return nil, "", NewParseError(page, "profile container not found", nil)
	}
	id, ok := root.Attr("data-id")
	if !ok || strings.TrimSpace(id) == "" {
		return nil, "", NewParseError(page, "profile without data-id", nil)
	}
	return root, strings.TrimSpace(id), nil
}

// ParseClubProfile extracts a club candidate from a club profile page
func ParseClubProfile(doc *goquery.Document) (*models.ClubCandidate, error) {
	root, id, err := profileRoot(doc, "club profile")
	if err != nil {
		return nil, err
	}

	members, err := parseIntCell(root, ".profile-members")
	if err != nil {
		return nil, NewParseError("club profile", "invalid members count for club "+id, err)
	}

	return &models.ClubCandidate{
		GomafiaID:    id,
		Name:         strings.TrimSpace(root.Find(".profile-name").Text()),
		City:         normalize.Region(root.Find(".profile-city").Text()),
		MembersCount: members,
	}, nil
}

// ParsePlayerProfile extracts a player candidate from a player profile page
func ParsePlayerProfile(doc *goquery.Document) (*models.PlayerCandidate, error) {
	root, id, err := profileRoot(doc, "player profile")
	if err != nil {
		return nil, err
	}

	games, err := parseIntCell(root, ".profile-games")
	if err != nil {
		return nil, NewParseError("player profile", "invalid games count for player "+id, err)
	}
	wins, err := parseIntCell(root, ".profile-wins")
	if err != nil {
		return nil, NewParseError("player profile", "invalid wins count for player "+id, err)
	}
	losses, err := parseIntCell(root, ".profile-losses")
	if err != nil {
		return nil, NewParseError("player profile", "invalid losses count for player "+id, err)
	}

	player := &models.PlayerCandidate{
		GomafiaID:  id,
		Nickname:   strings.TrimSpace(root.Find(".profile-nickname").Text()),
		RealName:   strings.TrimSpace(root.Find(".profile-realname").Text()),
		Region:     normalize.Region(root.Find(".profile-region").Text()),
		TotalGames: games,
		Wins:       wins,
		Losses:     losses,
	}
	if clubID, ok := root.Find(".profile-club").Attr("data-club-id"); ok && strings.TrimSpace(clubID) != "" {
		trimmed := strings.TrimSpace(clubID)
		player.ClubGomafiaID = &trimmed
	}
	return player, nil
}

// ParseTournamentProfile extracts a tournament candidate from a
// tournament profile page
func ParseTournamentProfile(doc *goquery.Document) (*models.TournamentCandidate, error) {
	root, id, err := profileRoot(doc, "tournament profile")
	if err != nil {
		return nil, err
	}

	tournament := &models.TournamentCandidate{
		GomafiaID: id,
		Name:      strings.TrimSpace(root.Find(".profile-name").Text()),
		City:      normalize.Region(root.Find(".profile-city").Text()),
		Status:    strings.TrimSpace(root.Find(".profile-status").AttrOr("data-status", models.TournamentStatusFinished)),
	}

	start, end, err := parseDateRange(root.Find(".profile-dates").Text())
	if err != nil {
		return nil, NewParseError("tournament profile", "invalid dates for tournament "+id, err)
	}
	tournament.StartDate = start
	tournament.EndDate = end

	prize, err := normalize.Currency(root.Find(".profile-prize").Text())
	if err != nil {
		return nil, NewParseError("tournament profile", "invalid prize fund for tournament "+id, err)
	}
	tournament.PrizeFund = prize

	players, err := parseIntCell(root, ".profile-players")
	if err != nil {
		return nil, NewParseError("tournament profile", "invalid players count for tournament "+id, err)
	}
	tournament.PlayersCount = players

	return tournament, nil
}
