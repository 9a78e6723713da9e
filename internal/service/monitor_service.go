package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bfcb/quizmerit-backend/internal/config"
	"github.com/bfcb/quizmerit-backend/internal/repository"
)

// MonitorStore lists the attempts currently running.
// *repository.SessionRepository implements it.
type MonitorStore interface {
	ListInProgress(ctx context.Context) ([]repository.MonitorEntry, error)
}

// MonitorSnapshotEntry is one running attempt with its latest answers as
// seen by the admin live view.
type MonitorSnapshotEntry struct {
	repository.MonitorEntry
	Answers map[string]string `json:"answers,omitempty"`
}

// MonitorService builds point-in-time views of running attempts for the
// admin live monitor. Postgres gives the attempt list; the per-session
// Redis answer hash fills in what each participant has typed so far.
type MonitorService struct {
	sessions MonitorStore
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(sessions MonitorStore, rdb *redis.Client, log zerolog.Logger) *MonitorService {
	return &MonitorService{
		sessions: sessions,
		rdb:      rdb,
		log:      log.With().Str("component", "monitor_service").Logger(),
	}
}

// Snapshot returns every in_progress attempt with its cached answers. A
// missing or unreachable answer hash degrades to the bare attempt row.
func (s *MonitorService) Snapshot(ctx context.Context) ([]MonitorSnapshotEntry, error) {
	entries, err := s.sessions.ListInProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("list in-progress sessions: %w", err)
	}

	snapshot := make([]MonitorSnapshotEntry, 0, len(entries))
	for _, e := range entries {
		item := MonitorSnapshotEntry{MonitorEntry: e}

		answersKey := config.CacheKey.SessionAnswersKey(e.SessionID)
		answers, err := s.rdb.HGetAll(ctx, answersKey).Result()
		if err != nil {
			s.log.Warn().Err(err).Int64("session_id", e.SessionID).
				Msg("Failed to read cached answers")
		} else if len(answers) > 0 {
			item.Answers = answers
		}

		snapshot = append(snapshot, item)
	}

	return snapshot, nil
}
