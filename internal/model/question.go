package model

import "time"

// QuestionType distinguishes free-text from multiple-choice questions.
type QuestionType string

const (
	QuestionTypeText           QuestionType = "text"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
)

// Question is one content unit of the quiz, presented in id order.
type Question struct {
	ID           int64            `json:"id"`
	QuestionText string           `json:"question_text"`
	QuestionType QuestionType     `json:"question_type"`
	TimeLimit    int              `json:"time_limit"`
	ImageURL     *string          `json:"image_url,omitempty"`
	IsActive     bool             `json:"is_active"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Options      []QuestionOption `json:"options,omitempty"`
}

// QuestionOption is one choice of a multiple-choice question, ordered by position.
type QuestionOption struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
	Position   int    `json:"position"`
}

// QuestionOptionInput is one option in a save-question payload.
type QuestionOptionInput struct {
	OptionText string `json:"option_text" binding:"required,min=1,max=500"`
	IsCorrect  bool   `json:"is_correct"`
}

// SaveQuestionRequest is the payload for creating or updating a question.
// Option-set validation (>=2 options, exactly one correct) happens in the
// service, not here, because it depends on the question type.
type SaveQuestionRequest struct {
	QuestionText string                `json:"question_text" binding:"required,min=1,max=2000"`
	QuestionType string                `json:"question_type" binding:"required,oneof=text multiple_choice"`
	TimeLimit    int                   `json:"time_limit" binding:"required,min=5,max=3600"`
	ImageURL     *string               `json:"image_url" binding:"omitempty,max=500"`
	Options      []QuestionOptionInput `json:"options" binding:"omitempty,dive"`
}
