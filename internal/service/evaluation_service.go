package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bfcb/quizmerit-backend/internal/model"
	"github.com/bfcb/quizmerit-backend/internal/repository"
)

// ErrResponseNotFound is returned when grading targets a response that does
// not exist.
var ErrResponseNotFound = errors.New("response not found")

// EvaluationStore is the persistence surface for grading.
// *repository.EvaluationRepository implements it.
type EvaluationStore interface {
	Upsert(ctx context.Context, e *model.Evaluation) error
	GetByResponse(ctx context.Context, responseID int64) (*model.Evaluation, error)
}

// ReviewStore supplies the joined rows the grading screen lists.
// *repository.ResponseRepository implements it.
type ReviewStore interface {
	ListForReview(ctx context.Context) ([]repository.ReviewRow, error)
}

// EvaluationService maintains exactly one evaluation per response:
// first grading inserts, re-grading overwrites.
type EvaluationService struct {
	evaluations EvaluationStore
	responses   ResponseStore
	reviews     ReviewStore
}

// NewEvaluationService creates a new EvaluationService.
func NewEvaluationService(evaluations EvaluationStore, responses ResponseStore, reviews ReviewStore) *EvaluationService {
	return &EvaluationService{evaluations: evaluations, responses: responses, reviews: reviews}
}

// ListReviewFeed returns every stored response with participant, question
// and grading context, newest first.
func (s *EvaluationService) ListReviewFeed(ctx context.Context) ([]repository.ReviewRow, error) {
	rows, err := s.reviews.ListForReview(ctx)
	if err != nil {
		return nil, fmt.Errorf("list review feed: %w", err)
	}
	if rows == nil {
		rows = []repository.ReviewRow{}
	}
	return rows, nil
}

// Evaluate upserts the grading for a response, stamping the evaluator and
// the evaluation time.
func (s *EvaluationService) Evaluate(ctx context.Context, req *model.EvaluateRequest, evaluatedBy string) (*model.Evaluation, error) {
	if _, err := s.responses.GetByID(ctx, req.ResponseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("get response: %w", err)
	}

	e := &model.Evaluation{
		ResponseID:  req.ResponseID,
		Score:       *req.Score,
		Status:      model.EvaluationStatus(req.Status),
		AdminNotes:  req.AdminNotes,
		EvaluatedBy: evaluatedBy,
	}
	if err := s.evaluations.Upsert(ctx, e); err != nil {
		return nil, fmt.Errorf("upsert evaluation: %w", err)
	}
	return e, nil
}
