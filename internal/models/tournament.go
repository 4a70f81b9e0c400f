package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tournament statuses as reported by the remote source
const (
	TournamentStatusAnnounced = "announced"
	TournamentStatusActive    = "active"
	TournamentStatusFinished  = "finished"
)

// Tournament is a mafia tournament as stored locally
type Tournament struct {
	BaseModel
	GomafiaID    string           `json:"gomafia_id"`
	Name         string           `json:"name"`
	City         string           `json:"city,omitempty"`
	StartDate    *time.Time       `json:"start_date,omitempty"`
	EndDate      *time.Time       `json:"end_date,omitempty"`
	PrizeFund    *decimal.Decimal `json:"prize_fund,omitempty"`
	PlayersCount int              `json:"players_count"`
	Status       string           `json:"status"`
}

// TournamentCandidate is the parser output for a tournament before validation
type TournamentCandidate struct {
	GomafiaID    string           `json:"gomafia_id"`
	Name         string           `json:"name"`
	City         string           `json:"city,omitempty"`
	StartDate    *time.Time       `json:"start_date,omitempty"`
	EndDate      *time.Time       `json:"end_date,omitempty"`
	PrizeFund    *decimal.Decimal `json:"prize_fund,omitempty"`
	PlayersCount int              `json:"players_count"`
	Status       string           `json:"status"`
}
