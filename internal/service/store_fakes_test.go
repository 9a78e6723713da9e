package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bfcb/quizmerit-backend/internal/model"
	"github.com/bfcb/quizmerit-backend/internal/repository"
)

// newTestRedis spins up an in-process Redis and a client wired to it.
func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// fakeSessionStore is an in-memory SessionStore mirroring the partial
// unique index semantics: one in_progress session per user.
type fakeSessionStore struct {
	nextID   int64
	sessions map[int64]*model.QuizSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{nextID: 1, sessions: make(map[int64]*model.QuizSession)}
}

func (f *fakeSessionStore) GetByID(_ context.Context, id int64) (*model.QuizSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionStore) LatestQualifying(_ context.Context, userID int64) (*model.QuizSession, error) {
	var latest *model.QuizSession
	for _, s := range f.sessions {
		if s.UserID != userID || s.Status == model.SessionStatusAbandoned {
			continue
		}
		if latest == nil || s.StartedAt.After(latest.StartedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, pgx.ErrNoRows
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.QuizSession) error {
	for _, existing := range f.sessions {
		if existing.UserID == s.UserID && existing.Status == model.SessionStatusInProgress {
			return pgx.ErrNoRows
		}
	}
	s.ID = f.nextID
	f.nextID++
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	copied := *s
	f.sessions[s.ID] = &copied
	return nil
}

func (f *fakeSessionStore) GetInProgressByUser(_ context.Context, userID int64) (*model.QuizSession, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.Status == model.SessionStatusInProgress {
			copied := *s
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSessionStore) MarkAbandoned(_ context.Context, id int64) error {
	s, ok := f.sessions[id]
	if !ok || s.Status != model.SessionStatusInProgress {
		return nil
	}
	s.Status = model.SessionStatusAbandoned
	return nil
}

func (f *fakeSessionStore) Finalize(_ context.Context, sessionID int64, responses []model.ResponseInput, totalTimeSpent int) error {
	s, ok := f.sessions[sessionID]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	s.Status = model.SessionStatusCompleted
	s.CompletedAt = &now
	s.TotalTimeSpent = &totalTimeSpent
	return nil
}

// fakeResponseStore is an in-memory ResponseStore with the
// (session, question) upsert rule.
type fakeResponseStore struct {
	nextID    int64
	responses []*model.Response
}

func newFakeResponseStore() *fakeResponseStore {
	return &fakeResponseStore{nextID: 1}
}

func (f *fakeResponseStore) Upsert(_ context.Context, resp *model.Response) error {
	for _, existing := range f.responses {
		if existing.SessionID == resp.SessionID && existing.QuestionID == resp.QuestionID {
			existing.Answer = resp.Answer
			existing.TimeSpent = resp.TimeSpent
			existing.SubmittedAt = time.Now()
			resp.ID = existing.ID
			resp.SubmittedAt = existing.SubmittedAt
			return nil
		}
	}
	resp.ID = f.nextID
	f.nextID++
	resp.SubmittedAt = time.Now()
	copied := *resp
	f.responses = append(f.responses, &copied)
	return nil
}

func (f *fakeResponseStore) ListBySession(_ context.Context, sessionID int64) ([]model.Response, error) {
	var out []model.Response
	for _, r := range f.responses {
		if r.SessionID == sessionID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeResponseStore) GetByID(_ context.Context, id int64) (*model.Response, error) {
	for _, r := range f.responses {
		if r.ID == id {
			copied := *r
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// fakeQuestionStore is an in-memory QuestionStore.
type fakeQuestionStore struct {
	nextID     int64
	questions  map[int64]*model.Question
	referenced map[int64]bool
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{
		nextID:     1,
		questions:  make(map[int64]*model.Question),
		referenced: make(map[int64]bool),
	}
}

func (f *fakeQuestionStore) ListActive(_ context.Context) ([]model.Question, error) {
	var out []model.Question
	for id := int64(1); id < f.nextID; id++ {
		if q, ok := f.questions[id]; ok && q.IsActive {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) ListAll(_ context.Context) ([]model.Question, error) {
	var out []model.Question
	for id := int64(1); id < f.nextID; id++ {
		if q, ok := f.questions[id]; ok {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) GetByID(_ context.Context, id int64) (*model.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *q
	return &copied, nil
}

func (f *fakeQuestionStore) CreateWithOptions(_ context.Context, q *model.Question) error {
	q.ID = f.nextID
	f.nextID++
	copied := *q
	f.questions[q.ID] = &copied
	return nil
}

func (f *fakeQuestionStore) UpdateWithOptions(_ context.Context, q *model.Question) error {
	if _, ok := f.questions[q.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *q
	f.questions[q.ID] = &copied
	return nil
}

func (f *fakeQuestionStore) HasResponses(_ context.Context, id int64) (bool, error) {
	return f.referenced[id], nil
}

func (f *fakeQuestionStore) Delete(_ context.Context, id int64) error {
	delete(f.questions, id)
	return nil
}

func (f *fakeQuestionStore) Deactivate(_ context.Context, id int64) error {
	q, ok := f.questions[id]
	if !ok {
		return pgx.ErrNoRows
	}
	q.IsActive = false
	return nil
}

// fakeEvaluationStore is an in-memory EvaluationStore keyed by response.
type fakeEvaluationStore struct {
	nextID      int64
	evaluations map[int64]*model.Evaluation
}

func newFakeEvaluationStore() *fakeEvaluationStore {
	return &fakeEvaluationStore{nextID: 1, evaluations: make(map[int64]*model.Evaluation)}
}

func (f *fakeEvaluationStore) Upsert(_ context.Context, e *model.Evaluation) error {
	if existing, ok := f.evaluations[e.ResponseID]; ok {
		existing.Score = e.Score
		existing.Status = e.Status
		existing.AdminNotes = e.AdminNotes
		existing.EvaluatedBy = e.EvaluatedBy
		existing.EvaluatedAt = time.Now()
		e.ID = existing.ID
		e.EvaluatedAt = existing.EvaluatedAt
		return nil
	}
	e.ID = f.nextID
	f.nextID++
	e.EvaluatedAt = time.Now()
	copied := *e
	f.evaluations[e.ResponseID] = &copied
	return nil
}

func (f *fakeEvaluationStore) GetByResponse(_ context.Context, responseID int64) (*model.Evaluation, error) {
	e, ok := f.evaluations[responseID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *e
	return &copied, nil
}

// fakeReviewStore returns a canned review feed.
type fakeReviewStore struct {
	rows []repository.ReviewRow
}

func (f *fakeReviewStore) ListForReview(_ context.Context) ([]repository.ReviewRow, error) {
	return f.rows, nil
}

// fakeMeritStore returns canned aggregates.
type fakeMeritStore struct {
	aggregates []repository.MeritAggregate
}

func (f *fakeMeritStore) CollectAggregates(_ context.Context) ([]repository.MeritAggregate, error) {
	return f.aggregates, nil
}

// testLogger returns a silenced zerolog logger.
func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
