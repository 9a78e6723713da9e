package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bfcb/quizmerit-backend/internal/model"
)

// QuestionRepository handles question and option data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListActive retrieves active questions ordered by id, with options attached.
func (r *QuestionRepository) ListActive(ctx context.Context) ([]model.Question, error) {
	return r.list(ctx, true)
}

// ListAll retrieves every question regardless of the active flag, for the
// admin management view.
func (r *QuestionRepository) ListAll(ctx context.Context) ([]model.Question, error) {
	return r.list(ctx, false)
}

func (r *QuestionRepository) list(ctx context.Context, activeOnly bool) ([]model.Question, error) {
	query := `SELECT id, question_text, question_type, time_limit, image_url, is_active, created_at, updated_at
		 FROM questions`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.QuestionText, &q.QuestionType, &q.TimeLimit,
			&q.ImageURL, &q.IsActive, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachOptions(ctx, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// attachOptions loads options for the given questions in one query.
func (r *QuestionRepository) attachOptions(ctx context.Context, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}

	ids := make([]int64, len(questions))
	index := make(map[int64]*model.Question, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
		index[questions[i].ID] = &questions[i]
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, question_id, option_text, is_correct, position
		 FROM question_options
		 WHERE question_id = ANY($1)
		 ORDER BY question_id, position`, ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var o model.QuestionOption
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.OptionText, &o.IsCorrect, &o.Position); err != nil {
			return err
		}
		if q, ok := index[o.QuestionID]; ok {
			q.Options = append(q.Options, o)
		}
	}
	return rows.Err()
}

// GetByID retrieves a single question with its options.
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, question_text, question_type, time_limit, image_url, is_active, created_at, updated_at
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.QuestionText, &q.QuestionType, &q.TimeLimit,
		&q.ImageURL, &q.IsActive, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}

	questions := []model.Question{*q}
	if err := r.attachOptions(ctx, questions); err != nil {
		return nil, err
	}
	return &questions[0], nil
}

// CreateWithOptions inserts a question and its options in one transaction,
// so a failed option insert never leaves an orphaned question row.
func (r *QuestionRepository) CreateWithOptions(ctx context.Context, q *model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO questions (question_text, question_type, time_limit, image_url, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		q.QuestionText, q.QuestionType, q.TimeLimit, q.ImageURL, q.IsActive,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range q.Options {
		o := &q.Options[i]
		o.QuestionID = q.ID
		o.Position = i
		err = tx.QueryRow(ctx,
			`INSERT INTO question_options (question_id, option_text, is_correct, position)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			o.QuestionID, o.OptionText, o.IsCorrect, o.Position,
		).Scan(&o.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// UpdateWithOptions updates a question and replaces its option set in one
// transaction.
func (r *QuestionRepository) UpdateWithOptions(ctx context.Context, q *model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`UPDATE questions
		 SET question_text = $1, question_type = $2, time_limit = $3, image_url = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING created_at, updated_at`,
		q.QuestionText, q.QuestionType, q.TimeLimit, q.ImageURL, q.ID,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM question_options WHERE question_id = $1`, q.ID); err != nil {
		return err
	}

	for i := range q.Options {
		o := &q.Options[i]
		o.QuestionID = q.ID
		o.Position = i
		err = tx.QueryRow(ctx,
			`INSERT INTO question_options (question_id, option_text, is_correct, position)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			o.QuestionID, o.OptionText, o.IsCorrect, o.Position,
		).Scan(&o.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// HasResponses reports whether any stored response references the question.
func (r *QuestionRepository) HasResponses(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM responses WHERE question_id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

// Delete removes a question; options go with it via ON DELETE CASCADE.
func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// Deactivate soft-removes a question that is still referenced by responses.
func (r *QuestionRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return err
}
