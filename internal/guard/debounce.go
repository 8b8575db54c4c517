package guard

import (
	"context"
	"fmt"
	"time"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"
)

//go:generate mockgen -source=debounce.go -destination=mocks/mock.go
type LatestEventReader interface {
	Latest(ctx context.Context, actorID string, key domain.TargetKey) (*domain.AttendanceEvent, error)
}

type DebounceResult struct {
	OK        bool
	SinceLast *time.Duration // nil when the actor has no event at the target
	Remaining time.Duration
}

func (r DebounceResult) MinutesSinceLast() *float64 {
	if r.SinceLast == nil {
		return nil
	}
	m := r.SinceLast.Minutes()
	return &m
}

// Err converts a failed result into an *e.TooSoonError.
func (r DebounceResult) Err() error {
	if r.OK {
		return nil
	}
	var since time.Duration
	if r.SinceLast != nil {
		since = *r.SinceLast
	}
	return &e.TooSoonError{SinceLast: since, Remaining: r.Remaining}
}

// Debounce enforces a minimum spacing between two events of the same actor
// at the same target, whatever their event types.
type Debounce struct {
	events LatestEventReader
	now    func() time.Time
}

func NewDebounce(events LatestEventReader, now func() time.Time) *Debounce {
	if now == nil {
		now = time.Now
	}
	return &Debounce{events: events, now: now}
}

func (d *Debounce) Check(ctx context.Context, actorID string, key domain.TargetKey, minInterval time.Duration) (DebounceResult, error) {
	const op = "guard.Debounce.Check"

	last, err := d.events.Latest(ctx, actorID, key)
	if err != nil {
		return DebounceResult{}, fmt.Errorf("%s: %w: %w", op, e.ErrStoreFailure, err)
	}
	if last == nil {
		return DebounceResult{OK: true}, nil
	}

	elapsed := d.now().Sub(last.OccurredAt)
	if elapsed >= minInterval {
		return DebounceResult{OK: true, SinceLast: &elapsed}, nil
	}

	return DebounceResult{OK: false, SinceLast: &elapsed, Remaining: minInterval - elapsed}, nil
}
