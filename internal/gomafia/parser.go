package gomafia

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/mafia-stats/gomafia-sync/internal/models"
	"github.com/mafia-stats/gomafia-sync/internal/normalize"
)

const gomafiaDateLayout = "02.01.2006"

// winnerSides maps the winner label rendered on game rows to the stored
// side identifier
var winnerSides = map[string]string{
	"Город":  models.WinnerSideCity,
	"Мафия":  models.WinnerSideMafia,
	"Ничья":  models.WinnerSideDraw,
	"city":   models.WinnerSideCity,
	"mafia":  models.WinnerSideMafia,
	"draw":   models.WinnerSideDraw,
}

// parseTotalPages reads the pagination block of a listing page. A page
// without pagination is a single-page listing.
func parseTotalPages(doc *goquery.Document) int {
	last := doc.Find(".pagination a.page-link").Last().Text()
	total, err := strconv.Atoi(strings.TrimSpace(last))
	if err != nil || total < 1 {
		return 1
	}
	return total
}

func parseIntCell(s *goquery.Selection, selector string) (int, error) {
	text := strings.TrimSpace(s.Find(selector).Text())
	if text == "" || text == "-" || text == "–" || text == "—" {
		return 0, nil
	}
	// The site groups digits with regular, non-breaking or narrow spaces.
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	return strconv.Atoi(stripped)
}

// ParseClubsPage extracts club candidates and the total page count from
// a club listing page
func ParseClubsPage(doc *goquery.Document) ([]*models.ClubCandidate, int, error) {
	var clubs []*models.ClubCandidate
	var parseErr error

	doc.Find("table.club-list tr.club-row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		id, ok := row.Attr("data-id")
		if !ok || strings.TrimSpace(id) == "" {
			parseErr = NewParseError("clubs", "club row without data-id", nil)
			return false
		}

		members, err := parseIntCell(row, ".club-members")
		if err != nil {
			parseErr = NewParseError("clubs", "invalid members count for club "+id, err)
			return false
		}

		clubs = append(clubs, &models.ClubCandidate{
			GomafiaID:    strings.TrimSpace(id),
			Name:         strings.TrimSpace(row.Find(".club-name").Text()),
			City:         normalize.Region(row.Find(".club-city").Text()),
			MembersCount: members,
		})
		return true
	})

	if parseErr != nil {
		return nil, 0, parseErr
	}
	return clubs, parseTotalPages(doc), nil
}

// ParsePlayersPage extracts player candidates and the total page count
// from a rating page
func ParsePlayersPage(doc *goquery.Document) ([]*models.PlayerCandidate, int, error) {
	var players []*models.PlayerCandidate
	var parseErr error

	doc.Find("table.rating-table tr.player-row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		id, ok := row.Attr("data-id")
		if !ok || strings.TrimSpace(id) == "" {
			parseErr = NewParseError("players", "player row without data-id", nil)
			return false
		}

		games, err := parseIntCell(row, ".player-games")
		if err == nil {
			var wins, losses int
			wins, err = parseIntCell(row, ".player-wins")
			if err == nil {
				losses, err = parseIntCell(row, ".player-losses")
				if err == nil {
					player := &models.PlayerCandidate{
						GomafiaID:  strings.TrimSpace(id),
						Nickname:   strings.TrimSpace(row.Find(".player-nickname").Text()),
						RealName:   strings.TrimSpace(row.Find(".player-name").Text()),
						Region:     normalize.Region(row.Find(".player-region").Text()),
						TotalGames: games,
						Wins:       wins,
						Losses:     losses,
					}
					if clubID, ok := row.Find(".player-club").Attr("data-club-id"); ok && strings.TrimSpace(clubID) != "" {
						trimmed := strings.TrimSpace(clubID)
						player.ClubGomafiaID = &trimmed
					}
					players = append(players, player)
					return true
				}
			}
		}

		parseErr = NewParseError("players", "invalid stats for player "+id, err)
		return false
	})

	if parseErr != nil {
		return nil, 0, parseErr
	}
	return players, parseTotalPages(doc), nil
}

// ParseTournamentsPage extracts tournament candidates and the total page
// count from a tournament listing page
func ParseTournamentsPage(doc *goquery.Document) ([]*models.TournamentCandidate, int, error) {
	var tournaments []*models.TournamentCandidate
	var parseErr error

	doc.Find("div.tournament-card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		id, ok := card.Attr("data-id")
		if !ok || strings.TrimSpace(id) == "" {
			parseErr = NewParseError("tournaments", "tournament card without data-id", nil)
			return false
		}

		tournament := &models.TournamentCandidate{
			GomafiaID: strings.TrimSpace(id),
			Name:      strings.TrimSpace(card.Find(".tournament-title").Text()),
			City:      normalize.Region(card.Find(".tournament-city").Text()),
			Status:    strings.TrimSpace(card.Find(".tournament-status").AttrOr("data-status", models.TournamentStatusFinished)),
		}

		start, end, err := parseDateRange(card.Find(".tournament-dates").Text())
		if err != nil {
			parseErr = NewParseError("tournaments", "invalid dates for tournament "+id, err)
			return false
		}
		tournament.StartDate = start
		tournament.EndDate = end

		prize, err := normalize.Currency(card.Find(".tournament-prize").Text())
		if err != nil {
			parseErr = NewParseError("tournaments", "invalid prize fund for tournament "+id, err)
			return false
		}
		tournament.PrizeFund = prize

		players, err := parseIntCell(card, ".tournament-players")
		if err != nil {
			parseErr = NewParseError("tournaments", "invalid players count for tournament "+id, err)
			return false
		}
		tournament.PlayersCount = players

		tournaments = append(tournaments, tournament)
		return true
	})

	if parseErr != nil {
		return nil, 0, parseErr
	}
	return tournaments, parseTotalPages(doc), nil
}

// parseDateRange parses "02.03.2024 – 03.03.2024" or a single date.
// Blank input yields no dates.
func parseDateRange(s string) (*time.Time, *time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "-" || trimmed == "–" || trimmed == "—" {
		return nil, nil, nil
	}

	parts := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '–' || r == '—' || r == '-'
	})
	if len(parts) == 0 {
		return nil, nil, errors.New("no dates in range " + strconv.Quote(trimmed))
	}

	start, err := time.Parse(gomafiaDateLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, nil, err
	}
	if len(parts) == 1 {
		return &start, nil, nil
	}

	end, err := time.Parse(gomafiaDateLayout, strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return nil, nil, err
	}
	return &start, &end, nil
}

// ParseGamesPage extracts game candidates and the total page count from
// a games listing page
func ParseGamesPage(doc *goquery.Document) ([]*models.GameCandidate, int, error) {
	var games []*models.GameCandidate
	var parseErr error

	doc.Find("table.games-table tr.game-row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		id, ok := row.Attr("data-id")
		if !ok || strings.TrimSpace(id) == "" {
			parseErr = NewParseError("games", "game row without data-id", nil)
			return false
		}
		tournamentID, ok := row.Attr("data-tournament-id")
		if !ok || strings.TrimSpace(tournamentID) == "" {
			parseErr = NewParseError("games", "game row without data-tournament-id for game "+id, nil)
			return false
		}

		winnerLabel := strings.TrimSpace(row.Find(".game-winner").Text())
		winner, ok := winnerSides[winnerLabel]
		if !ok {
			parseErr = NewParseError("games", "unknown winner side "+strconv.Quote(winnerLabel)+" for game "+id, nil)
			return false
		}

		tableNum, err := parseIntCell(row, ".game-table-num")
		if err != nil {
			parseErr = NewParseError("games", "invalid table number for game "+id, err)
			return false
		}
		gameNum, err := parseIntCell(row, ".game-num")
		if err != nil {
			parseErr = NewParseError("games", "invalid game number for game "+id, err)
			return false
		}

		game := &models.GameCandidate{
			GomafiaID:           strings.TrimSpace(id),
			TournamentGomafiaID: strings.TrimSpace(tournamentID),
			TableNumber:         tableNum,
			GameNumber:          gameNum,
			WinnerSide:          winner,
		}

		if dateText := strings.TrimSpace(row.Find(".game-date").Text()); dateText != "" {
			playedAt, err := time.Parse(gomafiaDateLayout, dateText)
			if err != nil {
				parseErr = NewParseError("games", "invalid date for game "+id, err)
				return false
			}
			game.PlayedAt = &playedAt
		}

		games = append(games, game)
		return true
	})

	if parseErr != nil {
		return nil, 0, parseErr
	}
	return games, parseTotalPages(doc), nil
}

// ParseJudgesPage extracts judge candidates and the total page count
// from a judges listing page
func ParseJudgesPage(doc *goquery.Document) ([]*models.JudgeCandidate, int, error) {
	var judges []*models.JudgeCandidate
	var parseErr error

	doc.Find("table.judges-table tr.judge-row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		id, ok := row.Attr("data-id")
		if !ok || strings.TrimSpace(id) == "" {
			parseErr = NewParseError("judges", "judge row without data-id", nil)
			return false
		}

		tournaments, err := parseIntCell(row, ".judge-tournaments")
		if err != nil {
			parseErr = NewParseError("judges", "invalid tournaments count for judge "+id, err)
			return false
		}

		judges = append(judges, &models.JudgeCandidate{
			GomafiaID:        strings.TrimSpace(id),
			Nickname:         strings.TrimSpace(row.Find(".judge-nickname").Text()),
			Region:           normalize.Region(row.Find(".judge-region").Text()),
			Category:         strings.TrimSpace(row.Find(".judge-category").Text()),
			TournamentsCount: tournaments,
		})
		return true
	})

	if parseErr != nil {
		return nil, 0, parseErr
	}
	return judges, parseTotalPages(doc), nil
}
