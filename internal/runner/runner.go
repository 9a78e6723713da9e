// Package runner drives a participant through the quiz: one countdown per
// question, debounced auto-save of typed input, auto-advance on expiry, and
// a single finalize at the end. The machine is cooperative and
// single-threaded: the owner delivers Tick once per second and all other
// transitions from the same goroutine, mirroring a browser event loop. The
// save paths compete only at the store, where the (session, question)
// upsert makes the race benign.
package runner

import (
	"context"
	"errors"
	"time"

	"github.com/bfcb/quizmerit-backend/internal/model"
)

// State enumerates the runner's lifecycle.
type State string

const (
	StateLoading    State = "loading"
	StateInProgress State = "in_progress"
	StateSubmitting State = "submitting"
	StateDone       State = "done"
)

// DebounceQuiet is how long typing must pause before the dirty answer is
// auto-saved.
const DebounceQuiet = 2 * time.Second

// ProgressSaver persists one answer. *service.ProgressService satisfies the
// shape via a thin adapter; tests plug in fakes.
type ProgressSaver interface {
	SaveProgress(ctx context.Context, sessionID, questionID int64, answer string, timeSpent int) error
}

// Finalizer completes the attempt with the full response set.
type Finalizer interface {
	FinalizeSession(ctx context.Context, sessionID int64, responses []model.ResponseInput, totalTimeSpent int) error
}

// ErrNotInProgress is returned for inputs delivered outside InProgress.
var ErrNotInProgress = errors.New("runner is not in progress")

// Runner is the per-attempt state machine.
type Runner struct {
	sessionID int64
	questions []model.Question
	saver     ProgressSaver
	finalizer Finalizer
	now       func() time.Time

	state    State
	index    int
	timeLeft int

	answers []string
	spent   []int

	dirty   bool
	dirtyAt time.Time

	submitErr error
}

// New creates a Runner in Loading state for one session over the given
// question sequence.
func New(sessionID int64, questions []model.Question, saver ProgressSaver, finalizer Finalizer) *Runner {
	return &Runner{
		sessionID: sessionID,
		questions: questions,
		saver:     saver,
		finalizer: finalizer,
		now:       time.Now,
		state:     StateLoading,
		answers:   make([]string, len(questions)),
		spent:     make([]int, len(questions)),
	}
}

// Start seeds the machine from previously stored responses and enters
// InProgress. The resume point is the first question without a non-empty
// stored answer; when every question already has one, the attempt restarts
// at the first question. An empty catalog skips straight to submit: there
// is nothing to ask, so the attempt finalizes with no responses.
func (r *Runner) Start(ctx context.Context, prior []model.Response) {
	if len(r.questions) == 0 {
		r.submit(ctx)
		return
	}

	byQuestion := make(map[int64]model.Response, len(prior))
	for _, p := range prior {
		byQuestion[p.QuestionID] = p
	}

	resumeAt := -1
	for i, q := range r.questions {
		p, ok := byQuestion[q.ID]
		if ok {
			r.answers[i] = p.Answer
			r.spent[i] = p.TimeSpent
		}
		if resumeAt == -1 && (!ok || p.Answer == "") {
			resumeAt = i
		}
	}
	if resumeAt == -1 {
		resumeAt = 0
	}

	r.index = resumeAt
	r.timeLeft = r.questions[r.index].TimeLimit
	r.state = StateInProgress
}

// Tick advances the countdown by one second. It fires the debounced save
// when the quiet period has elapsed and auto-advances when the countdown
// reaches zero.
func (r *Runner) Tick(ctx context.Context) {
	if r.state != StateInProgress {
		return
	}

	r.timeLeft--

	if r.dirty && r.now().Sub(r.dirtyAt) >= DebounceQuiet {
		r.save(ctx)
	}

	if r.timeLeft <= 0 {
		r.timeLeft = 0
		r.advance(ctx)
	}
}

// Type records typed input for the current question, marking the state
// dirty and (re)arming the debounce.
func (r *Runner) Type(answer string) error {
	if r.state != StateInProgress {
		return ErrNotInProgress
	}
	r.answers[r.index] = answer
	r.dirty = true
	r.dirtyAt = r.now()
	return nil
}

// Next is the explicit advance action: the current answer is persisted and
// the machine moves to the next question, or to Submitting past the last.
func (r *Runner) Next(ctx context.Context) error {
	if r.state != StateInProgress {
		return ErrNotInProgress
	}
	r.advance(ctx)
	return nil
}

// Retry re-invokes finalize after a failed submit. Finalize is idempotent
// server-side, so repeating it is safe.
func (r *Runner) Retry(ctx context.Context) error {
	if r.state != StateSubmitting {
		return errors.New("runner is not submitting")
	}
	r.submit(ctx)
	return r.submitErr
}

func (r *Runner) advance(ctx context.Context) {
	limit := r.questions[r.index].TimeLimit
	elapsed := limit - r.timeLeft
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > limit {
		elapsed = limit
	}
	r.spent[r.index] = elapsed

	r.save(ctx)

	r.index++
	if r.index >= len(r.questions) {
		r.index = len(r.questions) - 1
		r.submit(ctx)
		return
	}
	r.timeLeft = r.questions[r.index].TimeLimit
}

// save persists the current answer through the idempotent upsert. Failures
// are swallowed: losing a few seconds of typing beats halting the attempt,
// and the next save path retries the same row anyway.
func (r *Runner) save(ctx context.Context) {
	limit := r.questions[r.index].TimeLimit
	elapsed := limit - r.timeLeft
	if elapsed < 0 {
		elapsed = 0
	}
	_ = r.saver.SaveProgress(ctx, r.sessionID, r.questions[r.index].ID, r.answers[r.index], elapsed)
	r.dirty = false
}

func (r *Runner) submit(ctx context.Context) {
	r.state = StateSubmitting

	responses := make([]model.ResponseInput, len(r.questions))
	total := 0
	for i, q := range r.questions {
		responses[i] = model.ResponseInput{
			QuestionID: q.ID,
			Answer:     r.answers[i],
			TimeSpent:  r.spent[i],
		}
		total += r.spent[i]
	}

	if err := r.finalizer.FinalizeSession(ctx, r.sessionID, responses, total); err != nil {
		r.submitErr = err
		return
	}
	r.submitErr = nil
	r.state = StateDone
}

// State returns the current lifecycle state.
func (r *Runner) State() State { return r.state }

// QuestionIndex returns the zero-based index of the current question.
func (r *Runner) QuestionIndex() int { return r.index }

// TimeLeft returns the seconds remaining on the current question.
func (r *Runner) TimeLeft() int { return r.timeLeft }

// Err returns the error from the last failed finalize, if any.
func (r *Runner) Err() error { return r.submitErr }
