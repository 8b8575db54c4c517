package postgres

import (
	"context"
	"errors"
	"log/slog"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EventStore is the append-only attendance_events table.
type EventStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewEventStore(pool *pgxpool.Pool, logger *slog.Logger) *EventStore {
	return &EventStore{pool: pool, logger: logger}
}

func (s *EventStore) Append(ctx context.Context, ev domain.AttendanceEvent) (*domain.AttendanceEvent, error) {
	const op = "postgres.EventStore.Append"

	const query = `
INSERT INTO attendance_events (
    id, actor_id, primary_key, secondary_key, event_type,
    target_lat, target_lng, device_lat, device_lng,
    distance_meters, accuracy_meters
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING occurred_at
`

	err := s.pool.QueryRow(ctx, query,
		ev.ID,
		ev.ActorID,
		ev.TargetKey.PrimaryKey,
		ev.TargetKey.SecondaryKey,
		string(ev.EventType),
		ev.TargetCoordinates.Lat,
		ev.TargetCoordinates.Lng,
		ev.DeviceCoordinates.Lat,
		ev.DeviceCoordinates.Lng,
		ev.DistanceMeters,
		ev.AccuracyMeters,
	).Scan(&ev.OccurredAt)
	if err != nil {
		s.logger.Error("db insert failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return &ev, nil
}

func (s *EventStore) Latest(ctx context.Context, actorID string, key domain.TargetKey) (*domain.AttendanceEvent, error) {
	const op = "postgres.EventStore.Latest"

	const query = `
SELECT id, actor_id, primary_key, secondary_key, event_type,
       target_lat, target_lng, device_lat, device_lng,
       distance_meters, accuracy_meters, occurred_at
FROM attendance_events
WHERE actor_id = $1 AND primary_key = $2 AND secondary_key = $3
ORDER BY occurred_at DESC
LIMIT 1
`

	var (
		ev        domain.AttendanceEvent
		eventType string
	)
	err := s.pool.QueryRow(ctx, query, actorID, key.PrimaryKey, key.SecondaryKey).Scan(
		&ev.ID,
		&ev.ActorID,
		&ev.TargetKey.PrimaryKey,
		&ev.TargetKey.SecondaryKey,
		&eventType,
		&ev.TargetCoordinates.Lat,
		&ev.TargetCoordinates.Lng,
		&ev.DeviceCoordinates.Lat,
		&ev.DeviceCoordinates.Lng,
		&ev.DistanceMeters,
		&ev.AccuracyMeters,
		&ev.OccurredAt,
	)
	if err != nil {
		wrapped := e.WrapError(ctx, op, err)
		if errorsIsNotFound(wrapped) {
			return nil, nil
		}
		s.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, wrapped
	}
	ev.EventType = domain.EventType(eventType)
	return &ev, nil
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, e.ErrNotFound)
}
