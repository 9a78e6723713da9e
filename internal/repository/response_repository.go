package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bfcb/quizmerit-backend/internal/model"
)

// ResponseRepository handles stored answer data access.
type ResponseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository creates a new ResponseRepository.
func NewResponseRepository(pool *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{pool: pool}
}

// Upsert inserts or overwrites the answer for (session, question). Auto-save
// and explicit advance both land here, so the conflict target is what keeps
// repeated saves from duplicating rows.
func (r *ResponseRepository) Upsert(ctx context.Context, resp *model.Response) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO responses (session_id, question_id, answer, time_spent, submitted_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET answer = EXCLUDED.answer, time_spent = EXCLUDED.time_spent, submitted_at = NOW()
		 RETURNING id, submitted_at`,
		resp.SessionID, resp.QuestionID, resp.Answer, resp.TimeSpent,
	).Scan(&resp.ID, &resp.SubmittedAt)
}

// ListBySession retrieves all responses recorded for a session, in question order.
func (r *ResponseRepository) ListBySession(ctx context.Context, sessionID int64) ([]model.Response, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, question_id, answer, time_spent, submitted_at
		 FROM responses
		 WHERE session_id = $1
		 ORDER BY question_id`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []model.Response
	for rows.Next() {
		var resp model.Response
		if err := rows.Scan(&resp.ID, &resp.SessionID, &resp.QuestionID,
			&resp.Answer, &resp.TimeSpent, &resp.SubmittedAt); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// GetByID retrieves a single response.
func (r *ResponseRepository) GetByID(ctx context.Context, id int64) (*model.Response, error) {
	resp := &model.Response{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, session_id, question_id, answer, time_spent, submitted_at
		 FROM responses WHERE id = $1`, id,
	).Scan(&resp.ID, &resp.SessionID, &resp.QuestionID,
		&resp.Answer, &resp.TimeSpent, &resp.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ReviewRow is one response joined with its participant, question text and
// any evaluation, as consumed by the admin review feed.
type ReviewRow struct {
	ResponseID   int64                   `json:"response_id"`
	SessionID    int64                   `json:"session_id"`
	QuestionID   int64                   `json:"question_id"`
	QuestionText string                  `json:"question_text"`
	FullName     string                  `json:"full_name"`
	Handle       string                  `json:"handle"`
	Answer       string                  `json:"answer"`
	TimeSpent    int                     `json:"time_spent"`
	SubmittedAt  time.Time               `json:"submitted_at"`
	Score        *float64                `json:"score,omitempty"`
	Status       *model.EvaluationStatus `json:"status,omitempty"`
	AdminNotes   *string                 `json:"admin_notes,omitempty"`
}

// ListForReview retrieves every response with user, question and evaluation
// context, newest submissions first.
func (r *ResponseRepository) ListForReview(ctx context.Context) ([]ReviewRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.session_id, r.question_id, q.question_text,
		        u.full_name, u.handle, r.answer, r.time_spent, r.submitted_at,
		        e.score, e.status, e.admin_notes
		 FROM responses r
		 JOIN quiz_sessions s ON s.id = r.session_id
		 JOIN users u ON u.id = s.user_id
		 JOIN questions q ON q.id = r.question_id
		 LEFT JOIN evaluations e ON e.response_id = r.id
		 ORDER BY r.submitted_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ReviewRow
	for rows.Next() {
		var row ReviewRow
		if err := rows.Scan(&row.ResponseID, &row.SessionID, &row.QuestionID, &row.QuestionText,
			&row.FullName, &row.Handle, &row.Answer, &row.TimeSpent, &row.SubmittedAt,
			&row.Score, &row.Status, &row.AdminNotes); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
