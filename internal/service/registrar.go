package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"fieldcheck/internal/domain"
	"fieldcheck/internal/guard"
	"fieldcheck/internal/metrics"
	"fieldcheck/internal/session"
	"fieldcheck/pkg/e"
)

type RegistrarConfig struct {
	MaxMeters      float64
	MinInterval    time.Duration
	PositionMaxAge time.Duration
	// NotifyTimeout bounds each notifier call after the event is stored.
	NotifyTimeout time.Duration
}

const defaultNotifyTimeout = 5 * time.Second

// StoreFailureError is returned when the event store could not be read or
// written. Validated is the scan the attempt was made for, so the caller can
// retry Registrar.Register with the same state.
type StoreFailureError struct {
	Validated domain.ValidatedScan
	Err       error
}

func (err *StoreFailureError) Error() string {
	return fmt.Sprintf("register at %s: %v", err.Validated.Target.Key, err.Err)
}

func (err *StoreFailureError) Unwrap() []error { return []error{e.ErrStoreFailure, err.Err} }

// Registrar re-checks every guard against the current observation and
// appends the attendance event.
type Registrar struct {
	logger    *slog.Logger
	cfg       RegistrarConfig
	events    EventStore
	debounce  *guard.Debounce
	notifiers []EventNotifier
	metrics   *metrics.Collector
	now       func() time.Time
}

func NewRegistrar(
	logger *slog.Logger,
	cfg RegistrarConfig,
	events EventStore,
	collector *metrics.Collector,
	now func() time.Time,
	notifiers ...EventNotifier,
) *Registrar {
	if now == nil {
		now = time.Now
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}
	return &Registrar{
		logger:    logger,
		cfg:       cfg,
		events:    events,
		debounce:  guard.NewDebounce(events, now),
		notifiers: notifiers,
		metrics:   collector,
		now:       now,
	}
}

func (r *Registrar) Register(
	ctx context.Context,
	validated domain.ValidatedScan,
	obs session.Observation,
	actorID string,
	eventType domain.EventType,
) (*domain.AttendanceEvent, error) {
	const op = "service.Registrar.Register"

	if err := validateRegisterInput(actorID, eventType); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	current, err := obs.Current(r.now(), r.cfg.PositionMaxAge)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	prox, err := guard.CheckDistance(current.Coordinates, validated.Target.Coordinates, r.cfg.MaxMeters)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.metrics.ObserveDistance(e.CheckpointRegister, prox.DistanceMeters)
	if !prox.OK {
		return nil, fmt.Errorf("%s: %w", op, prox.Err(e.CheckpointRegister, r.cfg.MaxMeters))
	}

	deb, err := r.debounce.Check(ctx, actorID, validated.Target.Key, r.cfg.MinInterval)
	if err != nil {
		return nil, &StoreFailureError{Validated: validated, Err: err}
	}
	if !deb.OK {
		return nil, fmt.Errorf("%s: %w", op, deb.Err())
	}

	stored, err := r.events.Append(ctx, domain.AttendanceEvent{
		ID:                uuid.New(),
		ActorID:           actorID,
		TargetKey:         validated.Target.Key,
		EventType:         eventType,
		TargetCoordinates: validated.Target.Coordinates,
		DeviceCoordinates: current.Coordinates,
		DistanceMeters:    prox.DistanceMeters,
		AccuracyMeters:    current.AccuracyMeters,
	})
	if err != nil {
		return nil, &StoreFailureError{Validated: validated, Err: fmt.Errorf("%s: %w", op, err)}
	}

	r.logger.Info("attendance event stored",
		slog.String("event_id", stored.ID.String()),
		slog.String("actor_id", actorID),
		slog.String("target", stored.TargetKey.String()),
		slog.String("event_type", string(stored.EventType)),
		slog.Float64("distance_meters", stored.DistanceMeters),
	)

	r.notify(ctx, *stored)
	return stored, nil
}

// notify ignores the caller's cancellation; each call is bounded by
// NotifyTimeout instead.
func (r *Registrar) notify(ctx context.Context, ev domain.AttendanceEvent) {
	if len(r.notifiers) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.NotifyTimeout)
	defer cancel()

	for _, n := range r.notifiers {
		err := n.Notify(ctx, ev)
		r.metrics.RecordNotification(n.Name(), err)
		if err != nil {
			r.logger.Warn("event notification failed",
				slog.String("notifier", n.Name()),
				slog.String("event_id", ev.ID.String()),
				slog.Any("error", err),
			)
		}
	}
}

func validateRegisterInput(actorID string, eventType domain.EventType) error {
	if strings.TrimSpace(actorID) == "" {
		return fmt.Errorf("empty actor id: %w", e.ErrInvalidInput)
	}
	if !eventType.Valid() {
		return fmt.Errorf("event type %q: %w", eventType, e.ErrInvalidInput)
	}
	return nil
}
