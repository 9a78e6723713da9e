package model

import "time"

// Response is one stored answer, unique per (session, question). Later saves
// for the same pair overwrite the row instead of duplicating it.
type Response struct {
	ID          int64     `json:"id"`
	SessionID   int64     `json:"session_id"`
	QuestionID  int64     `json:"question_id"`
	Answer      string    `json:"answer"`
	TimeSpent   int       `json:"time_spent"`
	SubmittedAt time.Time `json:"submitted_at"`
}
