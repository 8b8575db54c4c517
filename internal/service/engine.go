package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"fieldcheck/internal/domain"
	"fieldcheck/internal/geo"
	"fieldcheck/internal/guard"
	"fieldcheck/internal/metrics"
	"fieldcheck/internal/scan"
	"fieldcheck/internal/session"
	"fieldcheck/pkg/e"
)

type EngineConfig struct {
	ScanMaxMeters     float64
	RegisterMaxMeters float64
	MinInterval       time.Duration
	DebounceAtScan    bool
	PositionMaxAge    time.Duration
	SessionIdleTTL    time.Duration
	NotifyTimeout     time.Duration
}

// ScanOutcome is what a successful scan validated.
type ScanOutcome struct {
	State          domain.SessionState
	Target         domain.Target
	DistanceMeters float64
	ValidatedAt    time.Time
}

type Option func(*Engine)

func WithNotifiers(n ...EventNotifier) Option {
	return func(en *Engine) { en.notifiers = append(en.notifiers, n...) }
}

func WithHintCache(h HintCache) Option {
	return func(en *Engine) { en.hints = h }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(en *Engine) { en.metrics = c }
}

func WithClock(now func() time.Time) Option {
	return func(en *Engine) { en.now = now }
}

// Engine owns one ScanSession per actor and runs the scan and register
// pipelines against them.
type Engine struct {
	logger    *slog.Logger
	cfg       EngineConfig
	directory Directory
	events    EventStore
	hints     HintCache
	notifiers []EventNotifier
	metrics   *metrics.Collector
	now       func() time.Time

	registrar *Registrar
	debounce  *guard.Debounce

	mu       sync.Mutex
	sessions map[string]*session.ScanSession
}

func NewEngine(logger *slog.Logger, cfg EngineConfig, directory Directory, events EventStore, opts ...Option) *Engine {
	en := &Engine{
		logger:    logger,
		cfg:       cfg,
		directory: directory,
		events:    events,
		now:       time.Now,
		sessions:  make(map[string]*session.ScanSession),
	}
	for _, opt := range opts {
		opt(en)
	}

	en.debounce = guard.NewDebounce(events, en.now)
	en.registrar = NewRegistrar(logger, RegistrarConfig{
		MaxMeters:      cfg.RegisterMaxMeters,
		MinInterval:    cfg.MinInterval,
		PositionMaxAge: cfg.PositionMaxAge,
		NotifyTimeout:  cfg.NotifyTimeout,
	}, events, en.metrics, en.now, en.notifiers...)

	return en
}

// Registrar exposes the registrar so a caller holding a StoreFailureError
// can retry with the same validated scan.
func (en *Engine) Registrar() *Registrar { return en.registrar }

// UpdatePosition records the newest sample for actorID. It never blocks on
// an in-flight scan or register.
func (en *Engine) UpdatePosition(actorID string, sample domain.PositionSample) bool {
	if sample.Timestamp.IsZero() {
		sample.Timestamp = en.now()
	}
	accepted := en.session(actorID).UpdatePosition(sample)
	en.metrics.RecordPositionUpdate(accepted)
	return accepted
}

func (en *Engine) SetPermission(actorID string, p domain.Permission) {
	en.session(actorID).SetPermission(p)
}

// Scan parses payload, resolves the target and checks the device is close
// enough. The session is cleared first and is VALIDATED only on success.
func (en *Engine) Scan(ctx context.Context, actorID, payload string) (out *ScanOutcome, err error) {
	const op = "service.Engine.Scan"

	defer func() { en.metrics.RecordScan(e.Reason(err)) }()

	if strings.TrimSpace(actorID) == "" {
		return nil, fmt.Errorf("%s: empty actor id: %w", op, e.ErrInvalidInput)
	}

	sess := en.session(actorID)
	flight, err := sess.BeginScan()
	if err != nil {
		return nil, err
	}
	defer flight.End()

	en.clearHint(ctx, actorID)

	key, err := scan.Parse(payload)
	if err != nil {
		return nil, err
	}

	target, err := en.lookup(ctx, key)
	if err != nil {
		return nil, err
	}

	current, err := sess.Observe().Current(en.now(), en.cfg.PositionMaxAge)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	prox, err := guard.CheckDistance(current.Coordinates, target.Coordinates, en.cfg.ScanMaxMeters)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	en.metrics.ObserveDistance(e.CheckpointScan, prox.DistanceMeters)
	if !prox.OK {
		return nil, fmt.Errorf("%s: %w", op, prox.Err(e.CheckpointScan, en.cfg.ScanMaxMeters))
	}

	if en.cfg.DebounceAtScan {
		deb, err := en.debounce.Check(ctx, actorID, target.Key, en.cfg.MinInterval)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !deb.OK {
			return nil, fmt.Errorf("%s: %w", op, deb.Err())
		}
	}

	validated := domain.ValidatedScan{
		Target:         target,
		Position:       current,
		DistanceMeters: prox.DistanceMeters,
		ValidatedAt:    en.now(),
	}
	if err := flight.Validate(validated); err != nil {
		return nil, err
	}

	en.saveHint(ctx, actorID, validated)

	en.logger.Debug("scan validated",
		slog.String("actor_id", actorID),
		slog.String("target", target.Key.String()),
		slog.Float64("distance_meters", prox.DistanceMeters),
	)

	return &ScanOutcome{
		State:          domain.SessionValidated,
		Target:         target,
		DistanceMeters: prox.DistanceMeters,
		ValidatedAt:    validated.ValidatedAt,
	}, nil
}

// Refresh discards the validated target. A scan still in flight will not
// validate the session.
func (en *Engine) Refresh(ctx context.Context, actorID string) {
	if sess := en.existing(actorID); sess != nil {
		sess.Refresh()
	}
	en.clearHint(ctx, actorID)
}

// Register records an event for the validated target. Whatever the outcome
// the session is EMPTY afterwards.
func (en *Engine) Register(ctx context.Context, actorID string, eventType domain.EventType) (ev *domain.AttendanceEvent, err error) {
	const op = "service.Engine.Register"

	defer func() {
		label := string(eventType)
		if !eventType.Valid() {
			label = "invalid"
		}
		en.metrics.RecordRegister(label, e.Reason(err))
	}()

	if err := validateRegisterInput(actorID, eventType); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess := en.existing(actorID)
	if sess == nil {
		return nil, fmt.Errorf("%s %s: %w", op, actorID, e.ErrNoValidatedTarget)
	}

	flight, validated, err := sess.BeginRegister()
	if err != nil {
		return nil, err
	}
	defer flight.End()

	ev, err = en.registrar.Register(ctx, validated, sess.Observe(), actorID, eventType)
	en.clearHint(ctx, actorID)
	if err != nil {
		en.logger.Info("register rejected",
			slog.String("actor_id", actorID),
			slog.String("target", validated.Target.Key.String()),
			slog.String("reason", e.Reason(err)),
		)
		return nil, err
	}
	return ev, nil
}

func (en *Engine) State(actorID string) domain.SessionView {
	if sess := en.existing(actorID); sess != nil {
		return sess.View()
	}
	return domain.SessionView{
		ActorID:    actorID,
		State:      domain.SessionEmpty,
		Permission: domain.PermissionUnknown,
	}
}

// End drops the actor's session.
func (en *Engine) End(ctx context.Context, actorID string) {
	en.mu.Lock()
	delete(en.sessions, actorID)
	n := len(en.sessions)
	en.mu.Unlock()

	en.metrics.SetActiveSessions(n)
	en.clearHint(ctx, actorID)
}

// Sweep drops sessions idle for longer than SessionIdleTTL and returns how
// many were dropped.
func (en *Engine) Sweep(now time.Time) int {
	if en.cfg.SessionIdleTTL <= 0 {
		return 0
	}

	en.mu.Lock()
	dropped := 0
	for id, sess := range en.sessions {
		if sess.Idle(now, en.cfg.SessionIdleTTL) {
			delete(en.sessions, id)
			dropped++
		}
	}
	n := len(en.sessions)
	en.mu.Unlock()

	en.metrics.SetActiveSessions(n)
	return dropped
}

// Hint returns the restart hint for actorID. It is informational only and
// never restores a VALIDATED session.
func (en *Engine) Hint(ctx context.Context, actorID string) (*domain.SessionHint, error) {
	const op = "service.Engine.Hint"

	if en.hints == nil {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	h, err := en.hints.Load(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return h, nil
}

func (en *Engine) lookup(ctx context.Context, key domain.TargetKey) (domain.Target, error) {
	const op = "service.Engine.lookup"

	rec, err := en.directory.Lookup(ctx, key)
	switch {
	case errors.Is(err, e.ErrNotFound):
		return domain.Target{}, fmt.Errorf("%s %s: %w", op, key, e.ErrTargetNotFound)
	case err != nil:
		return domain.Target{}, fmt.Errorf("%s %s: %w: %w", op, key, e.ErrDirectoryFailure, err)
	case rec == nil || rec.Key() != key:
		return domain.Target{}, fmt.Errorf("%s %s: %w", op, key, e.ErrTargetNotFound)
	}

	target, err := geo.ResolveTarget(*rec)
	if err != nil {
		return domain.Target{}, fmt.Errorf("%s %s: %w", op, key, err)
	}
	return target, nil
}

func (en *Engine) session(actorID string) *session.ScanSession {
	en.mu.Lock()
	sess, ok := en.sessions[actorID]
	if !ok {
		sess = session.New(actorID, en.now)
		en.sessions[actorID] = sess
	}
	n := len(en.sessions)
	en.mu.Unlock()

	if !ok {
		en.metrics.SetActiveSessions(n)
	}
	return sess
}

func (en *Engine) existing(actorID string) *session.ScanSession {
	en.mu.Lock()
	defer en.mu.Unlock()

	return en.sessions[actorID]
}

func (en *Engine) saveHint(ctx context.Context, actorID string, v domain.ValidatedScan) {
	if en.hints == nil {
		return
	}
	err := en.hints.Save(ctx, domain.SessionHint{
		ActorID:     actorID,
		TargetKey:   v.Target.Key,
		DisplayName: v.Target.DisplayName,
		ValidatedAt: v.ValidatedAt,
	})
	if err != nil {
		en.logger.Warn("save session hint failed", slog.String("actor_id", actorID), slog.Any("error", err))
	}
}

func (en *Engine) clearHint(ctx context.Context, actorID string) {
	if en.hints == nil {
		return
	}
	if err := en.hints.Clear(ctx, actorID); err != nil {
		en.logger.Warn("clear session hint failed", slog.String("actor_id", actorID), slog.Any("error", err))
	}
}
