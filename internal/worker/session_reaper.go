package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// StaleSessionStore flips in_progress sessions older than the cutoff to
// abandoned. *repository.SessionRepository implements it.
type StaleSessionStore interface {
	ReapStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionReaper periodically abandons attempts whose browser went away
// without ever calling back. The same staleness rule runs lazily on
// check-session; the reaper keeps the admin monitor and the session table
// honest for participants who never return.
type SessionReaper struct {
	sessions   StaleSessionStore
	staleAfter time.Duration
	interval   time.Duration
	log        zerolog.Logger
}

// NewSessionReaper creates a new SessionReaper.
func NewSessionReaper(sessions StaleSessionStore, staleAfter, interval time.Duration, log zerolog.Logger) *SessionReaper {
	return &SessionReaper{
		sessions:   sessions,
		staleAfter: staleAfter,
		interval:   interval,
		log:        log.With().Str("component", "session_reaper").Logger(),
	}
}

// Start runs the reap loop until ctx is cancelled.
func (w *SessionReaper) Start(ctx context.Context) {
	w.log.Info().Dur("stale_after", w.staleAfter).Dur("interval", w.interval).
		Msg("SessionReaper started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("SessionReaper stopped")
			return
		case <-ticker.C:
			w.reap(ctx)
		}
	}
}

func (w *SessionReaper) reap(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)

	reaped, err := w.sessions.ReapStale(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Failed to reap stale sessions")
		}
		return
	}

	if reaped > 0 {
		w.log.Info().Int64("count", reaped).Msg("Abandoned stale sessions")
	}
}
