package model

// MeritEntry is one row of the ranked merit list. Entries are derived on
// demand from responses and evaluations, never persisted; rank is the 1-based
// position in the returned slice.
type MeritEntry struct {
	UserID           int64   `json:"user_id"`
	FullName         string  `json:"full_name"`
	Handle           string  `json:"handle"`
	TotalScore       float64 `json:"total_score"`
	TotalTimeSpent   int     `json:"total_time_spent"`
	EvaluationStatus string  `json:"evaluation_status"`
}

// Merit evaluation status summary values.
const (
	MeritStatusCompleted = "completed"
	MeritStatusPending   = "pending"
)
