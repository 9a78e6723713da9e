package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bfcb/quizmerit-backend/internal/model"
)

// Sentinel errors for question management.
var (
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidOptionSet is returned when a multiple-choice question does
	// not carry at least two options with exactly one marked correct.
	ErrInvalidOptionSet = errors.New("invalid option set for multiple-choice question")
)

// QuestionStore is the persistence surface for the question catalog.
// *repository.QuestionRepository implements it.
type QuestionStore interface {
	ListActive(ctx context.Context) ([]model.Question, error)
	ListAll(ctx context.Context) ([]model.Question, error)
	GetByID(ctx context.Context, id int64) (*model.Question, error)
	CreateWithOptions(ctx context.Context, q *model.Question) error
	UpdateWithOptions(ctx context.Context, q *model.Question) error
	HasResponses(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
	Deactivate(ctx context.Context, id int64) error
}

// QuestionService handles catalog business logic: write-time validation of
// option sets and the soft-deactivate rule for referenced questions.
type QuestionService struct {
	questions QuestionStore
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions QuestionStore) *QuestionService {
	return &QuestionService{questions: questions}
}

// ListActive returns the questions a participant sees, in id order.
func (s *QuestionService) ListActive(ctx context.Context) ([]model.Question, error) {
	return s.questions.ListActive(ctx)
}

// ListAll returns every question, including deactivated ones, for the admin.
func (s *QuestionService) ListAll(ctx context.Context) ([]model.Question, error) {
	return s.questions.ListAll(ctx)
}

// Create validates and stores a new question with its options.
func (s *QuestionService) Create(ctx context.Context, req *model.SaveQuestionRequest) (*model.Question, error) {
	q, err := buildQuestion(req)
	if err != nil {
		return nil, err
	}
	q.IsActive = true

	if err := s.questions.CreateWithOptions(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// Update validates and replaces an existing question and its option set.
func (s *QuestionService) Update(ctx context.Context, id int64, req *model.SaveQuestionRequest) (*model.Question, error) {
	q, err := buildQuestion(req)
	if err != nil {
		return nil, err
	}
	q.ID = id

	if err := s.questions.UpdateWithOptions(ctx, q); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("update question: %w", err)
	}
	return q, nil
}

// Delete removes a question. A question already referenced by responses is
// deactivated instead, so stored answers keep their join target.
func (s *QuestionService) Delete(ctx context.Context, id int64) error {
	if _, err := s.questions.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("get question: %w", err)
	}

	referenced, err := s.questions.HasResponses(ctx, id)
	if err != nil {
		return fmt.Errorf("check references: %w", err)
	}

	if referenced {
		return s.questions.Deactivate(ctx, id)
	}
	return s.questions.Delete(ctx, id)
}

// buildQuestion turns a validated request into a model, enforcing the
// option-set invariant that the store itself does not.
func buildQuestion(req *model.SaveQuestionRequest) (*model.Question, error) {
	q := &model.Question{
		QuestionText: req.QuestionText,
		QuestionType: model.QuestionType(req.QuestionType),
		TimeLimit:    req.TimeLimit,
		ImageURL:     req.ImageURL,
	}

	switch q.QuestionType {
	case model.QuestionTypeText:
		// Free-text questions carry no options; any submitted are dropped.
	case model.QuestionTypeMultipleChoice:
		if len(req.Options) < 2 {
			return nil, ErrInvalidOptionSet
		}
		correct := 0
		for _, o := range req.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return nil, ErrInvalidOptionSet
		}
		q.Options = make([]model.QuestionOption, len(req.Options))
		for i, o := range req.Options {
			q.Options[i] = model.QuestionOption{
				OptionText: o.OptionText,
				IsCorrect:  o.IsCorrect,
				Position:   i,
			}
		}
	}

	return q, nil
}
