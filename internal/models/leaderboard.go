package models

// LeaderboardRow is one ranked entry of `/api/leaderboard/{assignmentId}`.
type LeaderboardRow struct {
	Rank            int     `json:"rank"`
	StudentID       int64   `json:"studentId"`
	StudentName     string  `json:"studentName"`
	BestScore       float64 `json:"bestScore"`
	LastSubmittedAt string  `json:"lastSubmittedAt"`
}
