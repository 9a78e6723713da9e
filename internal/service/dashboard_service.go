package service

import (
	"context"
	"fmt"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalQuestions    int `json:"total_questions"`
	TotalParticipants int `json:"total_participants"`
	PendingReviews    int `json:"pending_reviews"`
	CompletedReviews  int `json:"completed_reviews"`
}

// StatsStore supplies the dashboard counts.
// *repository.DashboardRepository implements it.
type StatsStore interface {
	GetSummaryCounts(ctx context.Context) (totalQuestions, totalParticipants, pendingReviews, completedReviews int, err error)
}

// DashboardService assembles the admin overview numbers.
type DashboardService struct {
	stats StatsStore
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(stats StatsStore) *DashboardService {
	return &DashboardService{stats: stats}
}

// GetStats returns the dashboard summary counts.
func (s *DashboardService) GetStats(ctx context.Context) (*Stats, error) {
	questions, participants, pending, completed, err := s.stats.GetSummaryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary counts: %w", err)
	}
	return &Stats{
		TotalQuestions:    questions,
		TotalParticipants: participants,
		PendingReviews:    pending,
		CompletedReviews:  completed,
	}, nil
}
