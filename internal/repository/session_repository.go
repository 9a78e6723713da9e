package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bfcb/quizmerit-backend/internal/model"
)

// SessionRepository handles quiz session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// GetByID retrieves a session by id.
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*model.QuizSession, error) {
	s := &model.QuizSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, started_at, completed_at, total_time_spent, status
		 FROM quiz_sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.StartedAt, &s.CompletedAt, &s.TotalTimeSpent, &s.Status)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// LatestQualifying retrieves the user's most recent session among
// in_progress and completed. Abandoned sessions never block a new attempt,
// so they are excluded here.
func (r *SessionRepository) LatestQualifying(ctx context.Context, userID int64) (*model.QuizSession, error) {
	s := &model.QuizSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, started_at, completed_at, total_time_spent, status
		 FROM quiz_sessions
		 WHERE user_id = $1 AND status IN ($2, $3)
		 ORDER BY started_at DESC
		 LIMIT 1`,
		userID, model.SessionStatusInProgress, model.SessionStatusCompleted,
	).Scan(&s.ID, &s.UserID, &s.StartedAt, &s.CompletedAt, &s.TotalTimeSpent, &s.Status)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new in_progress session. The partial unique index on
// (user_id) WHERE status = 'in_progress' makes a concurrent duplicate start
// come back as pgx.ErrNoRows (DO NOTHING yields no row); the caller recovers
// by fetching the surviving session.
func (r *SessionRepository) Create(ctx context.Context, s *model.QuizSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quiz_sessions (user_id, status)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) WHERE status = 'in_progress' DO NOTHING
		 RETURNING id, started_at`,
		s.UserID, model.SessionStatusInProgress,
	).Scan(&s.ID, &s.StartedAt)
}

// GetInProgressByUser retrieves the user's current in_progress session.
func (r *SessionRepository) GetInProgressByUser(ctx context.Context, userID int64) (*model.QuizSession, error) {
	s := &model.QuizSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, started_at, completed_at, total_time_spent, status
		 FROM quiz_sessions
		 WHERE user_id = $1 AND status = $2`,
		userID, model.SessionStatusInProgress,
	).Scan(&s.ID, &s.UserID, &s.StartedAt, &s.CompletedAt, &s.TotalTimeSpent, &s.Status)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// MarkAbandoned flips an in_progress session to abandoned. The status guard
// keeps a completed session immutable even if a stale reap races a finalize.
func (r *SessionRepository) MarkAbandoned(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quiz_sessions SET status = $1
		 WHERE id = $2 AND status = $3`,
		model.SessionStatusAbandoned, id, model.SessionStatusInProgress)
	return err
}

// ReapStale flips every in_progress session started before the cutoff to
// abandoned, returning how many were reclaimed.
func (r *SessionRepository) ReapStale(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quiz_sessions SET status = $1
		 WHERE status = $2 AND started_at < $3`,
		model.SessionStatusAbandoned, model.SessionStatusInProgress, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Finalize upserts the submitted responses and completes the session in one
// transaction, so the status never flips with responses missing. The
// (session_id, question_id) upsert makes the whole operation safe to retry.
func (r *SessionRepository) Finalize(ctx context.Context, sessionID int64, responses []model.ResponseInput, totalTimeSpent int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, in := range responses {
		if _, err := tx.Exec(ctx,
			`INSERT INTO responses (session_id, question_id, answer, time_spent, submitted_at)
			 VALUES ($1, $2, $3, $4, NOW())
			 ON CONFLICT (session_id, question_id) DO UPDATE
			 SET answer = EXCLUDED.answer, time_spent = EXCLUDED.time_spent, submitted_at = NOW()`,
			sessionID, in.QuestionID, in.Answer, in.TimeSpent,
		); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE quiz_sessions
		 SET status = $1, completed_at = NOW(), total_time_spent = $2
		 WHERE id = $3`,
		model.SessionStatusCompleted, totalTimeSpent, sessionID,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// MonitorEntry is one in-progress attempt as shown on the live admin monitor.
type MonitorEntry struct {
	SessionID     int64     `json:"session_id"`
	UserID        int64     `json:"user_id"`
	FullName      string    `json:"full_name"`
	Handle        string    `json:"handle"`
	StartedAt     time.Time `json:"started_at"`
	AnsweredCount int       `json:"answered_count"`
}

// ListInProgress retrieves all running attempts with participant info and
// how many answers each has stored so far.
func (r *SessionRepository) ListInProgress(ctx context.Context) ([]MonitorEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, u.id, u.full_name, u.handle, s.started_at, COUNT(r.id)
		 FROM quiz_sessions s
		 JOIN users u ON u.id = s.user_id
		 LEFT JOIN responses r ON r.session_id = s.id
		 WHERE s.status = $1
		 GROUP BY s.id, u.id, u.full_name, u.handle, s.started_at
		 ORDER BY s.started_at`,
		model.SessionStatusInProgress,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []MonitorEntry
	for rows.Next() {
		var e MonitorEntry
		if err := rows.Scan(&e.SessionID, &e.UserID, &e.FullName, &e.Handle, &e.StartedAt, &e.AnsweredCount); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
