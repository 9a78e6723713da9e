package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bfcb/quizmerit-backend/internal/model"
)

// EvaluationRepository handles grading data access.
type EvaluationRepository struct {
	pool *pgxpool.Pool
}

// NewEvaluationRepository creates a new EvaluationRepository.
func NewEvaluationRepository(pool *pgxpool.Pool) *EvaluationRepository {
	return &EvaluationRepository{pool: pool}
}

// Upsert creates or replaces the evaluation for a response. The unique
// constraint on response_id guarantees at most one row per response;
// re-grading overwrites score, status and notes and bumps the timestamp.
func (r *EvaluationRepository) Upsert(ctx context.Context, e *model.Evaluation) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO evaluations (response_id, score, status, admin_notes, evaluated_by, evaluated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (response_id) DO UPDATE
		 SET score = EXCLUDED.score, status = EXCLUDED.status,
		     admin_notes = EXCLUDED.admin_notes, evaluated_by = EXCLUDED.evaluated_by,
		     evaluated_at = NOW()
		 RETURNING id, evaluated_at`,
		e.ResponseID, e.Score, e.Status, e.AdminNotes, e.EvaluatedBy,
	).Scan(&e.ID, &e.EvaluatedAt)
}

// GetByResponse retrieves the evaluation for a response, if any.
func (r *EvaluationRepository) GetByResponse(ctx context.Context, responseID int64) (*model.Evaluation, error) {
	e := &model.Evaluation{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, response_id, score, status, admin_notes, evaluated_by, evaluated_at
		 FROM evaluations WHERE response_id = $1`, responseID,
	).Scan(&e.ID, &e.ResponseID, &e.Score, &e.Status, &e.AdminNotes, &e.EvaluatedBy, &e.EvaluatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}
