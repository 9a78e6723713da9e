package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MeritAggregate is the raw per-user rollup the merit service ranks.
// ResponseTime is the sum of per-response time_spent; SessionTime is the
// session's recorded total, used as a fallback when the per-response sum is
// unavailable.
type MeritAggregate struct {
	UserID         int64
	FullName       string
	Handle         string
	TotalScore     float64
	ResponseTime   int
	SessionTime    *int
	ResponseCount  int
	EvaluatedCount int
}

// MeritRepository computes merit aggregates from source tables on demand.
type MeritRepository struct {
	pool *pgxpool.Pool
}

// NewMeritRepository creates a new MeritRepository.
func NewMeritRepository(pool *pgxpool.Pool) *MeritRepository {
	return &MeritRepository{pool: pool}
}

// CollectAggregates returns one unordered aggregate per user with at least
// one stored response. Unevaluated responses contribute zero score.
func (r *MeritRepository) CollectAggregates(ctx context.Context) ([]MeritAggregate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.full_name, u.handle,
		        COALESCE(SUM(e.score), 0),
		        COALESCE(SUM(resp.time_spent), 0),
		        MAX(s.total_time_spent),
		        COUNT(resp.id),
		        COUNT(e.id)
		 FROM users u
		 JOIN quiz_sessions s ON s.user_id = u.id
		 JOIN responses resp ON resp.session_id = s.id
		 LEFT JOIN evaluations e ON e.response_id = resp.id
		 GROUP BY u.id, u.full_name, u.handle`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggregates []MeritAggregate
	for rows.Next() {
		var a MeritAggregate
		if err := rows.Scan(&a.UserID, &a.FullName, &a.Handle, &a.TotalScore,
			&a.ResponseTime, &a.SessionTime, &a.ResponseCount, &a.EvaluatedCount); err != nil {
			return nil, err
		}
		aggregates = append(aggregates, a)
	}
	return aggregates, rows.Err()
}
