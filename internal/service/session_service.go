package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bfcb/quizmerit-backend/internal/config"
	"github.com/bfcb/quizmerit-backend/internal/model"
)

// ErrSessionNotFound is returned when a session does not exist or is no
// longer in_progress (expired, abandoned, or completed under the caller).
var ErrSessionNotFound = errors.New("session not found or not in progress")

// CheckReason explains why a new attempt was blocked.
type CheckReason string

const (
	ReasonAlreadyCompleted CheckReason = "already_completed"
	ReasonSessionActive    CheckReason = "session_active"
)

// CheckResult is the decision returned by CheckSession. A blocked result is
// not an error: the caller presents resume/restart choices based on Reason.
type CheckResult struct {
	Allowed   bool        `json:"allowed"`
	Reason    CheckReason `json:"reason,omitempty"`
	SessionID *int64      `json:"session_id,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// SessionStore is the persistence surface the session manager needs.
// *repository.SessionRepository implements it.
type SessionStore interface {
	GetByID(ctx context.Context, id int64) (*model.QuizSession, error)
	LatestQualifying(ctx context.Context, userID int64) (*model.QuizSession, error)
	Create(ctx context.Context, s *model.QuizSession) error
	GetInProgressByUser(ctx context.Context, userID int64) (*model.QuizSession, error)
	MarkAbandoned(ctx context.Context, id int64) error
	Finalize(ctx context.Context, sessionID int64, responses []model.ResponseInput, totalTimeSpent int) error
}

// ResponseStore is the stored-answer surface used when resuming.
// *repository.ResponseRepository implements it.
type ResponseStore interface {
	Upsert(ctx context.Context, resp *model.Response) error
	ListBySession(ctx context.Context, sessionID int64) ([]model.Response, error)
	GetByID(ctx context.Context, id int64) (*model.Response, error)
}

// SessionService enforces the one-attempt-per-participant policy: creating,
// resuming, reclaiming and finalizing quiz sessions.
type SessionService struct {
	sessions   SessionStore
	responses  ResponseStore
	rdb        *redis.Client
	staleAfter time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessions SessionStore, responses ResponseStore, rdb *redis.Client, staleAfter time.Duration, log zerolog.Logger) *SessionService {
	return &SessionService{
		sessions:   sessions,
		responses:  responses,
		rdb:        rdb,
		staleAfter: staleAfter,
		log:        log.With().Str("component", "session_service").Logger(),
		now:        time.Now,
	}
}

// CheckSession decides whether the user may start a fresh attempt. A
// completed session blocks permanently; a live in_progress session offers a
// resume; an in_progress session older than the staleness window is flipped
// to abandoned and a fresh start is allowed.
func (s *SessionService) CheckSession(ctx context.Context, userID int64) (*CheckResult, error) {
	latest, err := s.sessions.LatestQualifying(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &CheckResult{Allowed: true}, nil
		}
		return nil, fmt.Errorf("latest session: %w", err)
	}

	if latest.Status == model.SessionStatusCompleted {
		return &CheckResult{
			Allowed: false,
			Reason:  ReasonAlreadyCompleted,
			Message: "You have already completed the quiz. Multiple attempts are not allowed.",
		}, nil
	}

	if s.now().Sub(latest.StartedAt) > s.staleAfter {
		if err := s.sessions.MarkAbandoned(ctx, latest.ID); err != nil {
			return nil, fmt.Errorf("abandon stale session: %w", err)
		}
		s.dropSessionCache(ctx, latest.ID)
		s.log.Info().Int64("session_id", latest.ID).Int64("user_id", userID).
			Msg("Stale session reclaimed")
		return &CheckResult{Allowed: true}, nil
	}

	sessionID := latest.ID
	return &CheckResult{
		Allowed:   false,
		Reason:    ReasonSessionActive,
		SessionID: &sessionID,
		Message:   "You have an active quiz session. Please complete it first.",
	}, nil
}

// StartSession creates a new in_progress session for the user. Eligibility
// is expected to have been confirmed via CheckSession; a concurrent start
// that loses the insert race recovers by returning the surviving session.
func (s *SessionService) StartSession(ctx context.Context, userID int64) (*model.QuizSession, error) {
	session := &model.QuizSession{
		UserID: userID,
		Status: model.SessionStatusInProgress,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Concurrent start detected: the partial unique index rejected
			// the insert, so another in_progress session already exists.
			existing, fetchErr := s.sessions.GetInProgressByUser(ctx, userID)
			if fetchErr != nil {
				return nil, fmt.Errorf("concurrent start detected, but fetch failed: %w", fetchErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	startKey := config.CacheKey.SessionStartKey(session.ID)
	if err := s.rdb.Set(ctx, startKey, session.StartedAt.Unix(), 0).Err(); err != nil {
		s.log.Warn().Err(err).Int64("session_id", session.ID).
			Msg("Failed to cache session start time")
	}

	return session, nil
}

// ResumeSession returns an in_progress session together with every response
// recorded so far, so the client can seed its resume point. Sessions that do
// not exist or are not in_progress yield ErrSessionNotFound.
func (s *SessionService) ResumeSession(ctx context.Context, sessionID int64) (*model.QuizSession, []model.Response, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("get session: %w", err)
	}

	if session.Status != model.SessionStatusInProgress {
		return nil, nil, ErrSessionNotFound
	}

	responses, err := s.responses.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("list responses: %w", err)
	}
	if responses == nil {
		responses = []model.Response{}
	}

	return session, responses, nil
}

// FinalizeSession upserts the full response set and transitions the session
// to completed, atomically. The per-answer saves during the attempt make the
// batch a safety net rather than the primary write path. Re-finalizing an
// already completed session succeeds without rewriting anything, so a client
// retrying after a lost response sees the same outcome.
func (s *SessionService) FinalizeSession(ctx context.Context, sessionID int64, responses []model.ResponseInput, totalTimeSpent int) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("get session: %w", err)
	}

	switch session.Status {
	case model.SessionStatusCompleted:
		return nil
	case model.SessionStatusAbandoned:
		return ErrSessionNotFound
	}

	if err := s.sessions.Finalize(ctx, sessionID, responses, totalTimeSpent); err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}

	s.dropSessionCache(ctx, sessionID)
	return nil
}

// dropSessionCache clears the Redis assists for a session that is no longer
// in_progress. Best-effort: the database is the source of truth.
func (s *SessionService) dropSessionCache(ctx context.Context, sessionID int64) {
	keys := []string{
		config.CacheKey.SessionStartKey(sessionID),
		config.CacheKey.SessionAnswersKey(sessionID),
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn().Err(err).Int64("session_id", sessionID).
			Msg("Failed to drop session cache")
	}
}
