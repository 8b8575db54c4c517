package workers

import (
	"context"
	"log/slog"
	"time"
)

type SessionStore interface {
	Sweep(now time.Time) int
}

// SessionSweeper periodically drops idle scan sessions.
type SessionSweeper struct {
	sessions SessionStore
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

func NewSessionSweeper(sessions SessionStore, logger *slog.Logger, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionSweeper{sessions: sessions, logger: logger, interval: interval, now: time.Now}
}

func (s *SessionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Sweep(s.now()); n > 0 {
				s.logger.Info("idle sessions dropped", slog.Int("count", n))
			}
		}
	}
}
