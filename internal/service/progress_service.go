package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bfcb/quizmerit-backend/internal/config"
	"github.com/bfcb/quizmerit-backend/internal/model"
)

// ProgressService durably records one answer at a time as the participant
// advances. The (session, question) upsert makes the operation idempotent:
// the debounced auto-save and the advance-time save can land in any order
// without ever duplicating a row.
type ProgressService struct {
	sessions  SessionStore
	responses ResponseStore
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewProgressService creates a new ProgressService.
func NewProgressService(sessions SessionStore, responses ResponseStore, rdb *redis.Client, log zerolog.Logger) *ProgressService {
	return &ProgressService{
		sessions:  sessions,
		responses: responses,
		rdb:       rdb,
		log:       log.With().Str("component", "progress_service").Logger(),
	}
}

// SaveProgress upserts the answer for (session, question) and returns the
// stored response. The session must still be in_progress. A store failure is
// surfaced to the caller and touches nothing else; the client retries or
// tolerates losing the last few seconds of typing.
func (s *ProgressService) SaveProgress(ctx context.Context, sessionID, questionID int64, answer string, timeSpent int) (*model.Response, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.Status != model.SessionStatusInProgress {
		return nil, ErrSessionNotFound
	}

	resp := &model.Response{
		SessionID:  sessionID,
		QuestionID: questionID,
		Answer:     answer,
		TimeSpent:  timeSpent,
	}
	if err := s.responses.Upsert(ctx, resp); err != nil {
		return nil, fmt.Errorf("upsert response: %w", err)
	}

	// Mirror into the hot answer hash for the resume path and the admin
	// monitor. Best-effort: Postgres already has the row.
	answersKey := config.CacheKey.SessionAnswersKey(sessionID)
	if err := s.rdb.HSet(ctx, answersKey, fmt.Sprintf("%d", questionID), answer).Err(); err != nil {
		s.log.Warn().Err(err).Int64("session_id", sessionID).
			Int64("question_id", questionID).
			Msg("Failed to cache answer")
	}

	return resp, nil
}
