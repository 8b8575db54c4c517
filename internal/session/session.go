// Package session holds the per-actor scan state between a successful scan
// and the register attempt that follows it.
//
// States: EMPTY -> VALIDATED -> REGISTERING -> EMPTY. One operation may be in
// flight at a time. Refresh bumps a generation counter so a scan whose
// lookup resolves after the refresh cannot validate the session again.
package session

import (
	"fmt"
	"sync"
	"time"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"
)

type ScanSession struct {
	mu sync.Mutex

	actorID      string
	state        domain.SessionState
	validated    *domain.ValidatedScan
	lastPosition *domain.PositionSample
	permission   domain.Permission
	generation   uint64
	inFlight     bool
	lastActivity time.Time

	now func() time.Time
}

func New(actorID string, now func() time.Time) *ScanSession {
	if now == nil {
		now = time.Now
	}
	return &ScanSession{
		actorID:      actorID,
		state:        domain.SessionEmpty,
		permission:   domain.PermissionUnknown,
		lastActivity: now(),
		now:          now,
	}
}

func (s *ScanSession) ActorID() string { return s.actorID }

// Flight is the single-flight slot held by one scan or register call.
type Flight struct {
	s          *ScanSession
	generation uint64
	register   bool
	once       sync.Once
}

// BeginScan takes the flight slot and clears any previously validated target.
func (s *ScanSession) BeginScan() (*Flight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return nil, fmt.Errorf("session.BeginScan %s: %w", s.actorID, e.ErrBusy)
	}
	s.inFlight = true
	s.clearLocked()
	s.touchLocked()

	return &Flight{s: s, generation: s.generation}, nil
}

// BeginRegister takes the flight slot and moves a VALIDATED session to
// REGISTERING. The returned snapshot is what the scan validated.
func (s *ScanSession) BeginRegister() (*Flight, domain.ValidatedScan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return nil, domain.ValidatedScan{}, fmt.Errorf("session.BeginRegister %s: %w", s.actorID, e.ErrBusy)
	}
	if s.state != domain.SessionValidated || s.validated == nil {
		return nil, domain.ValidatedScan{}, fmt.Errorf("session.BeginRegister %s: %w", s.actorID, e.ErrNoValidatedTarget)
	}

	s.inFlight = true
	s.state = domain.SessionRegistering
	s.touchLocked()

	return &Flight{s: s, generation: s.generation, register: true}, *s.validated, nil
}

// Validate moves the session to VALIDATED unless it was refreshed since the
// flight began.
func (f *Flight) Validate(v domain.ValidatedScan) error {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != f.generation {
		return fmt.Errorf("session.Validate %s: %w", s.actorID, e.ErrSessionReset)
	}
	s.state = domain.SessionValidated
	s.validated = &v
	return nil
}

// End releases the flight slot. A register flight always leaves the session
// EMPTY, whatever its outcome. Calling End more than once is a no-op.
func (f *Flight) End() {
	f.once.Do(func() {
		s := f.s
		s.mu.Lock()
		defer s.mu.Unlock()

		s.inFlight = false
		if f.register {
			s.clearLocked()
		}
		s.touchLocked()
	})
}

// Refresh discards the validated target. It is allowed while a scan is in
// flight; the scan's late result is then ignored.
func (s *ScanSession) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	registering := s.state == domain.SessionRegistering
	s.clearLocked()
	if registering {
		s.state = domain.SessionRegistering
	}
	s.touchLocked()
}

// UpdatePosition records sample unless a newer one is already held. Device
// timestamps ahead of the session clock are clamped to it, so a skewed or
// forged clock cannot pin a position.
func (s *ScanSession) UpdatePosition(sample domain.PositionSample) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touchLocked()
	if now := s.lastActivity; sample.Timestamp.After(now) {
		sample.Timestamp = now
	}
	if s.lastPosition != nil && sample.Timestamp.Before(s.lastPosition.Timestamp) {
		return false
	}
	s.lastPosition = &sample
	return true
}

func (s *ScanSession) SetPermission(p domain.Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.permission = p
	s.touchLocked()
}

// Observe returns the latest position and permission as seen right now.
func (s *ScanSession) Observe() Observation {
	s.mu.Lock()
	defer s.mu.Unlock()

	obs := Observation{Permission: s.permission}
	if s.lastPosition != nil {
		p := *s.lastPosition
		obs.Position = &p
	}
	return obs
}

func (s *ScanSession) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *ScanSession) View() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := domain.SessionView{
		ActorID:        s.actorID,
		State:          s.state,
		Permission:     s.permission,
		LastActivityAt: s.lastActivity,
	}
	if s.lastPosition != nil {
		p := *s.lastPosition
		v.LastPosition = &p
	}
	if s.validated != nil {
		target := s.validated.Target
		pos := s.validated.Position
		at := s.validated.ValidatedAt
		v.Target = &target
		v.ScanPosition = &pos
		v.ScanDistance = s.validated.DistanceMeters
		v.ValidatedAt = &at
	}
	return v
}

// Idle reports whether the session has seen no device update, scan,
// register or refresh for longer than ttl and has nothing in flight.
func (s *ScanSession) Idle(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return !s.inFlight && now.Sub(s.lastActivity) > ttl
}

func (s *ScanSession) clearLocked() {
	s.state = domain.SessionEmpty
	s.validated = nil
	s.generation++
}

func (s *ScanSession) touchLocked() {
	s.lastActivity = s.now()
}
