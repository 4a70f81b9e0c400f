package models

// Club is a mafia club as stored locally. GomafiaID is the natural key
// assigned by the remote source; ID is never exposed back to it.
type Club struct {
	BaseModel
	GomafiaID    string `json:"gomafia_id"`
	Name         string `json:"name"`
	City         string `json:"city,omitempty"`
	MembersCount int    `json:"members_count"`
}

// ClubCandidate is the parser output for a club before validation and
// deduplication. Never persisted directly.
type ClubCandidate struct {
	GomafiaID    string `json:"gomafia_id"`
	Name         string `json:"name"`
	City         string `json:"city,omitempty"`
	MembersCount int    `json:"members_count"`
}
