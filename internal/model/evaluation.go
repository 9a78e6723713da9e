package model

import "time"

// EvaluationStatus is the reviewer's verdict on a response.
type EvaluationStatus string

const (
	EvaluationStatusCorrect   EvaluationStatus = "correct"
	EvaluationStatusIncorrect EvaluationStatus = "incorrect"
	EvaluationStatusPartial   EvaluationStatus = "partial"
)

// Evaluation is the grading of one response, at most one per response.
// Re-grading updates the row in place and bumps the timestamp.
type Evaluation struct {
	ID          int64            `json:"id"`
	ResponseID  int64            `json:"response_id"`
	Score       float64          `json:"score"`
	Status      EvaluationStatus `json:"status"`
	AdminNotes  *string          `json:"admin_notes,omitempty"`
	EvaluatedBy string           `json:"evaluated_by"`
	EvaluatedAt time.Time        `json:"evaluated_at"`
}

// EvaluateRequest is the payload for grading a response. Scores are bounded
// to the 0-10 scale the review UI uses.
type EvaluateRequest struct {
	ResponseID int64    `json:"response_id" binding:"required,min=1"`
	Score      *float64 `json:"score" binding:"required,min=0,max=10"`
	Status     string   `json:"status" binding:"required,oneof=correct incorrect partial"`
	AdminNotes *string  `json:"admin_notes" binding:"omitempty,max=2000"`
}
