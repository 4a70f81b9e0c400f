package models

// Judge is a certified tournament judge
type Judge struct {
	BaseModel
	GomafiaID        string `json:"gomafia_id"`
	Nickname         string `json:"nickname"`
	Region           string `json:"region,omitempty"`
	Category         string `json:"category,omitempty"`
	TournamentsCount int    `json:"tournaments_count"`
}

// JudgeCandidate is the parser output for a judge before validation
type JudgeCandidate struct {
	GomafiaID        string `json:"gomafia_id"`
	Nickname         string `json:"nickname"`
	Region           string `json:"region,omitempty"`
	Category         string `json:"category,omitempty"`
	TournamentsCount int    `json:"tournaments_count"`
}
