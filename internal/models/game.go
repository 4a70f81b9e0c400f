package models

import "time"

// Winning sides of a single game
const (
	WinnerSideCity  = "city"
	WinnerSideMafia = "mafia"
	WinnerSideDraw  = "draw"
)

// Game is a single table game within a tournament
type Game struct {
	BaseModel
	GomafiaID           string     `json:"gomafia_id"`
	TournamentGomafiaID string     `json:"tournament_gomafia_id"`
	TableNumber         int        `json:"table_number"`
	GameNumber          int        `json:"game_number"`
	WinnerSide          string     `json:"winner_side"`
	PlayedAt            *time.Time `json:"played_at,omitempty"`
}

// GameCandidate is the parser output for a game before validation
type GameCandidate struct {
	GomafiaID           string     `json:"gomafia_id"`
	TournamentGomafiaID string     `json:"tournament_gomafia_id"`
	TableNumber         int        `json:"table_number"`
	GameNumber          int        `json:"game_number"`
	WinnerSide          string     `json:"winner_side"`
	PlayedAt            *time.Time `json:"played_at,omitempty"`
}
