package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard:
// active questions, distinct participants with a completed attempt, and how
// many responses still await / have received an evaluation.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (totalQuestions, totalParticipants, pendingReviews, completedReviews int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM questions WHERE is_active = TRUE),
			(SELECT COUNT(DISTINCT user_id) FROM quiz_sessions WHERE status = 'completed'),
			(SELECT COUNT(*) FROM responses r
			  WHERE NOT EXISTS (SELECT 1 FROM evaluations e WHERE e.response_id = r.id)),
			(SELECT COUNT(*) FROM responses r
			  WHERE EXISTS (SELECT 1 FROM evaluations e WHERE e.response_id = r.id))`,
	).Scan(&totalQuestions, &totalParticipants, &pendingReviews, &completedReviews)
	return
}
