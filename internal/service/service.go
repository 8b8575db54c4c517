package service

import (
	"context"
	"time"

	"fieldcheck/internal/domain"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go

// Directory resolves a target key to its directory record. A miss is
// reported as e.ErrNotFound.
type Directory interface {
	Lookup(ctx context.Context, key domain.TargetKey) (*domain.DirectoryRecord, error)
}

// EventStore is the append-only attendance log.
type EventStore interface {
	// Latest returns nil, nil when the actor has no event at the target.
	Latest(ctx context.Context, actorID string, key domain.TargetKey) (*domain.AttendanceEvent, error)
	// Append stores ev and returns the stored record with OccurredAt set.
	Append(ctx context.Context, ev domain.AttendanceEvent) (*domain.AttendanceEvent, error)
}

// EventNotifier is told about every stored event. Errors are logged by the
// caller and never fail a registration.
type EventNotifier interface {
	Name() string
	Notify(ctx context.Context, ev domain.AttendanceEvent) error
}

// HintCache keeps a device-local, non-authoritative record of the last
// validated target per actor. A missing hint is e.ErrNotFound.
type HintCache interface {
	Save(ctx context.Context, hint domain.SessionHint) error
	Load(ctx context.Context, actorID string) (*domain.SessionHint, error)
	Clear(ctx context.Context, actorID string) error
}

// NotificationQueue is the source the webhook sender drains.
type NotificationQueue interface {
	Pop(ctx context.Context, timeout time.Duration) (domain.EventNotification, error)
}
