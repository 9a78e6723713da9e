package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bfcb/quizmerit-backend/internal/config"
	"github.com/bfcb/quizmerit-backend/internal/model"
)

func TestSaveProgressUpsertsAnswer(t *testing.T) {
	mr, client := newTestRedis(t)
	sessions := newFakeSessionStore()
	responses := newFakeResponseStore()
	svc := NewProgressService(sessions, responses, client, testLogger())

	session := &model.QuizSession{UserID: 7, Status: model.SessionStatusInProgress}
	if err := sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	first, err := svc.SaveProgress(context.Background(), session.ID, 3, "draft answer", 10)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	// Saving the same question again overwrites, it never duplicates.
	second, err := svc.SaveProgress(context.Background(), session.ID, 3, "final answer", 25)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same response row, got %d then %d", first.ID, second.ID)
	}

	stored, err := responses.ListBySession(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("list responses: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected one response, got %d", len(stored))
	}
	if stored[0].Answer != "final answer" || stored[0].TimeSpent != 25 {
		t.Fatalf("expected latest answer to win, got %+v", stored[0])
	}

	cached := mr.HGet(config.CacheKey.SessionAnswersKey(session.ID), "3")
	if cached != "final answer" {
		t.Fatalf("expected cached answer %q, got %q", "final answer", cached)
	}
}

func TestSaveProgressAllowsEmptyAnswer(t *testing.T) {
	_, client := newTestRedis(t)
	sessions := newFakeSessionStore()
	responses := newFakeResponseStore()
	svc := NewProgressService(sessions, responses, client, testLogger())

	session := &model.QuizSession{UserID: 7, Status: model.SessionStatusInProgress}
	if err := sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	// A question that timed out untouched still records its time.
	resp, err := svc.SaveProgress(context.Background(), session.ID, 4, "", 30)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if resp.Answer != "" || resp.TimeSpent != 30 {
		t.Fatalf("expected empty answer with time 30, got %+v", resp)
	}
}

func TestSaveProgressRejectsNonRunningSession(t *testing.T) {
	_, client := newTestRedis(t)
	sessions := newFakeSessionStore()
	responses := newFakeResponseStore()
	svc := NewProgressService(sessions, responses, client, testLogger())

	if _, err := svc.SaveProgress(context.Background(), 999, 1, "x", 5); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for unknown session, got %v", err)
	}

	session := &model.QuizSession{UserID: 7}
	if err := sessions.Create(context.Background(), session); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := sessions.Finalize(context.Background(), session.ID, nil, 10); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if _, err := svc.SaveProgress(context.Background(), session.ID, 1, "late", 5); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for completed session, got %v", err)
	}
}
