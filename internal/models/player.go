package models

// Player is a tournament player as stored locally
type Player struct {
	BaseModel
	GomafiaID     string  `json:"gomafia_id"`
	Nickname      string  `json:"nickname"`
	RealName      string  `json:"real_name,omitempty"`
	Region        string  `json:"region,omitempty"`
	ClubGomafiaID *string `json:"club_gomafia_id,omitempty"`
	TotalGames    int     `json:"total_games"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
}

// PlayerCandidate is the parser output for a player before validation
type PlayerCandidate struct {
	GomafiaID     string  `json:"gomafia_id"`
	Nickname      string  `json:"nickname"`
	RealName      string  `json:"real_name,omitempty"`
	Region        string  `json:"region,omitempty"`
	ClubGomafiaID *string `json:"club_gomafia_id,omitempty"`
	TotalGames    int     `json:"total_games"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
}
