package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bfcb/quizmerit-backend/internal/model"
)

type savedAnswer struct {
	questionID int64
	answer     string
	timeSpent  int
}

type fakeSaver struct {
	saves []savedAnswer
	err   error
}

func (f *fakeSaver) SaveProgress(_ context.Context, _, questionID int64, answer string, timeSpent int) error {
	f.saves = append(f.saves, savedAnswer{questionID: questionID, answer: answer, timeSpent: timeSpent})
	return f.err
}

type fakeFinalizer struct {
	calls     int
	responses []model.ResponseInput
	totalTime int
	err       error
}

func (f *fakeFinalizer) FinalizeSession(_ context.Context, _ int64, responses []model.ResponseInput, totalTimeSpent int) error {
	f.calls++
	f.responses = responses
	f.totalTime = totalTimeSpent
	return f.err
}

func testQuestions(limits ...int) []model.Question {
	qs := make([]model.Question, len(limits))
	for i, limit := range limits {
		qs[i] = model.Question{ID: int64(i + 1), TimeLimit: limit}
	}
	return qs
}

func newTestRunner(questions []model.Question) (*Runner, *fakeSaver, *fakeFinalizer, *time.Time) {
	saver := &fakeSaver{}
	finalizer := &fakeFinalizer{}
	r := New(42, questions, saver, finalizer)

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }
	return r, saver, finalizer, &clock
}

func TestTimeoutSavesEmptyAnswerAndAdvances(t *testing.T) {
	r, saver, _, _ := newTestRunner(testQuestions(3, 60))
	r.Start(context.Background(), nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		r.Tick(ctx)
	}

	if len(saver.saves) != 1 {
		t.Fatalf("expected one save on timeout, got %d", len(saver.saves))
	}
	got := saver.saves[0]
	if got.questionID != 1 || got.answer != "" || got.timeSpent != 3 {
		t.Fatalf("expected empty answer with full elapsed time, got %+v", got)
	}
	if r.QuestionIndex() != 1 {
		t.Fatalf("expected advance to question 2, got index %d", r.QuestionIndex())
	}
	if r.TimeLeft() != 60 {
		t.Fatalf("expected fresh countdown 60, got %d", r.TimeLeft())
	}
}

func TestNextSavesTypedAnswerWithElapsed(t *testing.T) {
	r, saver, _, _ := newTestRunner(testQuestions(30, 30))
	r.Start(context.Background(), nil)

	ctx := context.Background()
	r.Tick(ctx)
	r.Tick(ctx)
	if err := r.Type("Mars"); err != nil {
		t.Fatalf("type: %v", err)
	}
	if err := r.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}

	if len(saver.saves) != 1 {
		t.Fatalf("expected one save, got %d", len(saver.saves))
	}
	got := saver.saves[0]
	if got.answer != "Mars" || got.timeSpent != 2 {
		t.Fatalf("expected Mars after 2s, got %+v", got)
	}
	if r.QuestionIndex() != 1 {
		t.Fatalf("expected index 1, got %d", r.QuestionIndex())
	}
}

func TestTypingDebounce(t *testing.T) {
	r, saver, _, clock := newTestRunner(testQuestions(300))
	r.Start(context.Background(), nil)

	ctx := context.Background()
	if err := r.Type("dra"); err != nil {
		t.Fatalf("type: %v", err)
	}

	// One second later: still inside the quiet window, no save.
	*clock = clock.Add(time.Second)
	r.Tick(ctx)
	if len(saver.saves) != 0 {
		t.Fatalf("expected no save inside debounce window, got %d", len(saver.saves))
	}

	// Typing again re-arms the window.
	if err := r.Type("draft"); err != nil {
		t.Fatalf("type: %v", err)
	}
	*clock = clock.Add(time.Second)
	r.Tick(ctx)
	if len(saver.saves) != 0 {
		t.Fatalf("expected re-armed debounce to suppress save, got %d", len(saver.saves))
	}

	// Two quiet seconds later the latest text is flushed.
	*clock = clock.Add(2 * time.Second)
	r.Tick(ctx)
	if len(saver.saves) != 1 {
		t.Fatalf("expected debounced save, got %d", len(saver.saves))
	}
	if saver.saves[0].answer != "draft" {
		t.Fatalf("expected latest text saved, got %q", saver.saves[0].answer)
	}

	// No further saves while idle.
	*clock = clock.Add(5 * time.Second)
	r.Tick(ctx)
	if len(saver.saves) != 1 {
		t.Fatalf("expected no save while clean, got %d", len(saver.saves))
	}
}

func TestResumeSeeksFirstUnanswered(t *testing.T) {
	r, _, _, _ := newTestRunner(testQuestions(60, 60, 60))
	r.Start(context.Background(), []model.Response{
		{QuestionID: 1, Answer: "done", TimeSpent: 20},
		{QuestionID: 2, Answer: "", TimeSpent: 60},
	})

	if r.State() != StateInProgress {
		t.Fatalf("expected in_progress, got %q", r.State())
	}
	// Question 2 was stored with an empty answer, so it is the resume point.
	if r.QuestionIndex() != 1 {
		t.Fatalf("expected resume at index 1, got %d", r.QuestionIndex())
	}
}

func TestResumeAllAnsweredRestartsAtFirst(t *testing.T) {
	r, _, _, _ := newTestRunner(testQuestions(60, 60))
	r.Start(context.Background(), []model.Response{
		{QuestionID: 1, Answer: "a", TimeSpent: 10},
		{QuestionID: 2, Answer: "b", TimeSpent: 10},
	})

	if r.QuestionIndex() != 0 {
		t.Fatalf("expected restart at index 0, got %d", r.QuestionIndex())
	}
}

func TestSaveFailureDoesNotBlockAdvance(t *testing.T) {
	r, saver, _, _ := newTestRunner(testQuestions(30, 30))
	saver.err = errors.New("network down")
	r.Start(context.Background(), nil)

	ctx := context.Background()
	if err := r.Type("lost answer"); err != nil {
		t.Fatalf("type: %v", err)
	}
	if err := r.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}

	if r.QuestionIndex() != 1 {
		t.Fatalf("expected advance despite save failure, got index %d", r.QuestionIndex())
	}
	if r.State() != StateInProgress {
		t.Fatalf("expected in_progress, got %q", r.State())
	}
}

func TestSubmitAfterLastQuestion(t *testing.T) {
	r, _, finalizer, _ := newTestRunner(testQuestions(30, 30))
	r.Start(context.Background(), nil)

	ctx := context.Background()
	r.Tick(ctx)
	_ = r.Type("first")
	_ = r.Next(ctx)

	r.Tick(ctx)
	r.Tick(ctx)
	_ = r.Type("second")
	_ = r.Next(ctx)

	if r.State() != StateDone {
		t.Fatalf("expected done, got %q", r.State())
	}
	if finalizer.calls != 1 {
		t.Fatalf("expected one finalize call, got %d", finalizer.calls)
	}
	if len(finalizer.responses) != 2 {
		t.Fatalf("expected both responses submitted, got %d", len(finalizer.responses))
	}
	if finalizer.responses[0].Answer != "first" || finalizer.responses[0].TimeSpent != 1 {
		t.Fatalf("unexpected first response %+v", finalizer.responses[0])
	}
	if finalizer.responses[1].Answer != "second" || finalizer.responses[1].TimeSpent != 2 {
		t.Fatalf("unexpected second response %+v", finalizer.responses[1])
	}
	if finalizer.totalTime != 3 {
		t.Fatalf("expected total time 3, got %d", finalizer.totalTime)
	}
}

func TestSubmitFailureAllowsRetry(t *testing.T) {
	r, _, finalizer, _ := newTestRunner(testQuestions(30))
	finalizer.err = errors.New("server unavailable")
	r.Start(context.Background(), nil)

	ctx := context.Background()
	_ = r.Type("answer")
	_ = r.Next(ctx)

	if r.State() != StateSubmitting {
		t.Fatalf("expected submitting after failure, got %q", r.State())
	}
	if r.Err() == nil {
		t.Fatalf("expected submit error recorded")
	}

	// Inputs are rejected while submitting.
	if err := r.Type("late edit"); err == nil {
		t.Fatalf("expected typing to be rejected while submitting")
	}

	finalizer.err = nil
	if err := r.Retry(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if r.State() != StateDone {
		t.Fatalf("expected done after retry, got %q", r.State())
	}
	if finalizer.calls != 2 {
		t.Fatalf("expected two finalize calls, got %d", finalizer.calls)
	}
}

func TestStartWithEmptyCatalogFinalizesImmediately(t *testing.T) {
	r, saver, finalizer, _ := newTestRunner(nil)
	r.Start(context.Background(), nil)

	if r.State() != StateDone {
		t.Fatalf("expected done with no questions, got %q", r.State())
	}
	if finalizer.calls != 1 {
		t.Fatalf("expected one finalize call, got %d", finalizer.calls)
	}
	if len(finalizer.responses) != 0 || finalizer.totalTime != 0 {
		t.Fatalf("expected empty submission, got %d responses, total %d",
			len(finalizer.responses), finalizer.totalTime)
	}
	if len(saver.saves) != 0 {
		t.Fatalf("expected no progress saves, got %d", len(saver.saves))
	}
	if err := r.Type("late"); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected typing rejected after empty start, got %v", err)
	}
}
