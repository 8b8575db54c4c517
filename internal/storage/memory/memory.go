// Package memory holds in-process Directory and EventStore implementations
// used by the memory storage driver and by tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"
)

type Directory struct {
	mu      sync.RWMutex
	records map[domain.TargetKey]domain.DirectoryRecord
}

func NewDirectory(records ...domain.DirectoryRecord) *Directory {
	d := &Directory{records: make(map[domain.TargetKey]domain.DirectoryRecord, len(records))}
	for _, r := range records {
		d.records[r.Key()] = r
	}
	return d
}

func (d *Directory) Put(rec domain.DirectoryRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.records[rec.Key()] = rec
}

func (d *Directory) Lookup(ctx context.Context, key domain.TargetKey) (*domain.DirectoryRecord, error) {
	const op = "memory.Directory.Lookup"

	if err := ctx.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.records[key]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", op, key, e.ErrNotFound)
	}
	return &rec, nil
}

// EventStore keeps events in append order and stamps OccurredAt with its
// clock.
type EventStore struct {
	mu     sync.RWMutex
	events []domain.AttendanceEvent
	now    func() time.Time
}

func NewEventStore(now func() time.Time) *EventStore {
	if now == nil {
		now = time.Now
	}
	return &EventStore{now: now}
}

func (s *EventStore) Append(ctx context.Context, ev domain.AttendanceEvent) (*domain.AttendanceEvent, error) {
	const op = "memory.EventStore.Append"

	if err := ctx.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.events {
		if existing.ID == ev.ID {
			return nil, fmt.Errorf("%s %s: %w", op, ev.ID, e.ErrUniqueViolation)
		}
	}

	ev.OccurredAt = s.now().UTC()
	s.events = append(s.events, ev)
	return &ev, nil
}

func (s *EventStore) Latest(ctx context.Context, actorID string, key domain.TargetKey) (*domain.AttendanceEvent, error) {
	const op = "memory.EventStore.Latest"

	if err := ctx.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.AttendanceEvent
	for i := range s.events {
		ev := s.events[i]
		if ev.ActorID != actorID || ev.TargetKey != key {
			continue
		}
		if latest == nil || !ev.OccurredAt.Before(latest.OccurredAt) {
			latest = &ev
		}
	}
	return latest, nil
}

// List returns the actor's events, newest first.
func (s *EventStore) List(actorID string) []domain.AttendanceEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AttendanceEvent, 0)
	for _, ev := range s.events {
		if ev.ActorID == actorID {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return out
}
