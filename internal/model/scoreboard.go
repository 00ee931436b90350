package model

// ScoreboardRow is one ranked participant in a session
type ScoreboardRow struct {
	Rank            int     `json:"rank"`
	UserID          UserID  `json:"user_id"`
	Username        string  `json:"username"`
	Score           int     `json:"score"`
	AvgResponseMs   float64 `json:"avg_response_ms"`
	TotalResponseMs int64   `json:"total_response_ms"`
	Correct         int     `json:"correct"`
	Wrong           int     `json:"wrong"`
}
