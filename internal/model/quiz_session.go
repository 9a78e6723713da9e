package model

import "time"

// SessionStatus enumerates quiz session states.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusAbandoned  SessionStatus = "abandoned"
)

// QuizSession represents one participant's single quiz attempt.
// At most one session per user may be in_progress at a time (enforced by a
// partial unique index); a completed session blocks new attempts.
type QuizSession struct {
	ID             int64         `json:"id"`
	UserID         int64         `json:"user_id"`
	StartedAt      time.Time     `json:"started_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
	TotalTimeSpent *int          `json:"total_time_spent,omitempty"`
	Status         SessionStatus `json:"status"`
}

// CheckSessionRequest asks whether a user may start or must resume a quiz.
type CheckSessionRequest struct {
	UserID int64  `json:"user_id" binding:"required,min=1"`
	Handle string `json:"handle" binding:"omitempty,max=120"`
}

// StartSessionRequest is the payload for starting a new attempt.
type StartSessionRequest struct {
	UserID int64 `json:"user_id" binding:"required,min=1"`
}

// ResumeSessionRequest is the payload for resuming an in-progress attempt.
type ResumeSessionRequest struct {
	SessionID int64 `json:"session_id" binding:"required,min=1"`
}

// SaveProgressRequest is the payload for persisting one answer mid-attempt.
// Answer may legitimately be empty (question timed out untouched).
type SaveProgressRequest struct {
	SessionID  int64  `json:"session_id" binding:"required,min=1"`
	QuestionID int64  `json:"question_id" binding:"required,min=1"`
	Answer     string `json:"answer" binding:"max=10000"`
	TimeSpent  int    `json:"time_spent" binding:"min=0"`
}

// ResponseInput is one (question, answer, time) tuple inside a submit payload.
type ResponseInput struct {
	QuestionID int64  `json:"question_id" binding:"required,min=1"`
	Answer     string `json:"answer" binding:"max=10000"`
	TimeSpent  int    `json:"time_spent" binding:"min=0"`
}

// SubmitQuizRequest is the payload for finalizing an attempt.
type SubmitQuizRequest struct {
	SessionID      int64           `json:"session_id" binding:"required,min=1"`
	Responses      []ResponseInput `json:"responses" binding:"required,dive"`
	TotalTimeSpent int             `json:"total_time_spent" binding:"min=0"`
}
