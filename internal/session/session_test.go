package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"
)

type ScanSessionSuite struct {
	suite.Suite
	now     time.Time
	session *ScanSession
}

func TestScanSessionSuite(t *testing.T) {
	suite.Run(t, new(ScanSessionSuite))
}

func (s *ScanSessionSuite) SetupTest() {
	s.now = time.Date(2025, 12, 23, 12, 0, 0, 0, time.UTC)
	s.session = New("actor-1", func() time.Time { return s.now })
}

func (s *ScanSessionSuite) validated() domain.ValidatedScan {
	return domain.ValidatedScan{
		Target: domain.Target{
			Key:         domain.TargetKey{PrimaryKey: "P", SecondaryKey: "S"},
			Coordinates: domain.Coordinate{Lat: 9.93, Lng: -84.09},
		},
		Position:       domain.PositionSample{Coordinates: domain.Coordinate{Lat: 9.93, Lng: -84.09}, Timestamp: s.now},
		DistanceMeters: 12,
		ValidatedAt:    s.now,
	}
}

func (s *ScanSessionSuite) TestStartsEmpty() {
	s.Equal(domain.SessionEmpty, s.session.State())
	v := s.session.View()
	s.Nil(v.Target)
	s.Equal(domain.PermissionUnknown, v.Permission)
}

func (s *ScanSessionSuite) TestScanThenRegister() {
	f, err := s.session.BeginScan()
	s.Require().NoError(err)
	s.Require().NoError(f.Validate(s.validated()))
	f.End()
	s.Equal(domain.SessionValidated, s.session.State())

	rf, snap, err := s.session.BeginRegister()
	s.Require().NoError(err)
	s.Equal(s.validated(), snap)
	s.Equal(domain.SessionRegistering, s.session.State())

	rf.End()
	s.Equal(domain.SessionEmpty, s.session.State())
	s.Nil(s.session.View().Target)
}

func (s *ScanSessionSuite) TestFailedScanLeavesEmpty() {
	f, err := s.session.BeginScan()
	s.Require().NoError(err)
	s.Require().NoError(f.Validate(s.validated()))
	f.End()

	f, err = s.session.BeginScan()
	s.Require().NoError(err)
	s.Equal(domain.SessionEmpty, s.session.State(), "a new scan clears the previous target")
	f.End()
	s.Equal(domain.SessionEmpty, s.session.State())
}

func (s *ScanSessionSuite) TestSingleFlight() {
	f, err := s.session.BeginScan()
	s.Require().NoError(err)

	_, err = s.session.BeginScan()
	s.ErrorIs(err, e.ErrBusy)

	_, _, err = s.session.BeginRegister()
	s.ErrorIs(err, e.ErrBusy)

	f.End()
	f.End()

	_, err = s.session.BeginScan()
	s.NoError(err)
}

func (s *ScanSessionSuite) TestRegisterWithoutValidatedTarget() {
	_, _, err := s.session.BeginRegister()
	s.ErrorIs(err, e.ErrNoValidatedTarget)

	_, err = s.session.BeginScan()
	s.NoError(err, "failed register must not hold the flight slot")
}

func (s *ScanSessionSuite) TestRefreshDuringScanDiscardsLateResult() {
	f, err := s.session.BeginScan()
	s.Require().NoError(err)

	s.session.Refresh()

	s.ErrorIs(f.Validate(s.validated()), e.ErrSessionReset)
	f.End()
	s.Equal(domain.SessionEmpty, s.session.State())
}

func (s *ScanSessionSuite) TestRefreshClearsValidated() {
	f, err := s.session.BeginScan()
	s.Require().NoError(err)
	s.Require().NoError(f.Validate(s.validated()))
	f.End()

	s.session.Refresh()
	s.Equal(domain.SessionEmpty, s.session.State())

	_, _, err = s.session.BeginRegister()
	s.ErrorIs(err, e.ErrNoValidatedTarget)
}

func (s *ScanSessionSuite) TestRefreshDuringRegisterStillEndsEmpty() {
	f, _ := s.session.BeginScan()
	s.Require().NoError(f.Validate(s.validated()))
	f.End()

	rf, _, err := s.session.BeginRegister()
	s.Require().NoError(err)
	s.session.Refresh()
	s.Equal(domain.SessionRegistering, s.session.State())
	rf.End()
	s.Equal(domain.SessionEmpty, s.session.State())
}

func (s *ScanSessionSuite) TestUpdatePositionKeepsNewest() {
	newer := domain.PositionSample{Coordinates: domain.Coordinate{Lat: 1, Lng: 1}, Timestamp: s.now}
	older := domain.PositionSample{Coordinates: domain.Coordinate{Lat: 2, Lng: 2}, Timestamp: s.now.Add(-time.Second)}

	s.True(s.session.UpdatePosition(newer))
	s.False(s.session.UpdatePosition(older))

	obs := s.session.Observe()
	s.Require().NotNil(obs.Position)
	s.Equal(newer, *obs.Position)
}

func (s *ScanSessionSuite) TestUpdatePositionClampsFutureTimestamp() {
	forged := domain.PositionSample{Coordinates: domain.Coordinate{Lat: 1, Lng: 1}, Timestamp: s.now.Add(24 * time.Hour)}
	s.True(s.session.UpdatePosition(forged))

	obs := s.session.Observe()
	s.Require().NotNil(obs.Position)
	s.Equal(s.now, obs.Position.Timestamp)

	s.now = s.now.Add(time.Minute)
	honest := domain.PositionSample{Coordinates: domain.Coordinate{Lat: 2, Lng: 2}, Timestamp: s.now}
	s.True(s.session.UpdatePosition(honest), "a later honest sample must replace the clamped one")

	obs = s.session.Observe()
	s.Require().NotNil(obs.Position)
	s.Equal(honest, *obs.Position)
}

func (s *ScanSessionSuite) TestDeviceUpdatesKeepSessionActive() {
	for i := 0; i < 120; i++ {
		s.now = s.now.Add(time.Minute)
		s.session.UpdatePosition(domain.PositionSample{Coordinates: domain.Coordinate{Lat: 1, Lng: 1}, Timestamp: s.now})
	}
	s.False(s.session.Idle(s.now.Add(time.Minute), 30*time.Minute))

	s.now = s.now.Add(time.Hour)
	s.True(s.session.Idle(s.now, 30*time.Minute))
	s.session.SetPermission(domain.PermissionGranted)
	s.False(s.session.Idle(s.now, 30*time.Minute))
}

func (s *ScanSessionSuite) TestIdle() {
	s.False(s.session.Idle(s.now.Add(time.Minute), time.Hour))
	s.True(s.session.Idle(s.now.Add(2*time.Hour), time.Hour))

	f, _ := s.session.BeginScan()
	s.False(s.session.Idle(s.now.Add(2*time.Hour), time.Hour), "in-flight session is never idle")
	f.End()
}

func (s *ScanSessionSuite) TestConcurrentBeginScan() {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.session.BeginScan(); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(1, wins)
}

func TestObservation_Current(t *testing.T) {
	now := time.Date(2025, 12, 23, 12, 0, 0, 0, time.UTC)
	good := &domain.PositionSample{Coordinates: domain.Coordinate{Lat: 9.93, Lng: -84.09}, Timestamp: now.Add(-10 * time.Second)}

	cases := []struct {
		name   string
		obs    Observation
		maxAge time.Duration
		ok     bool
	}{
		{"granted with sample", Observation{Position: good, Permission: domain.PermissionGranted}, 0, true},
		{"fresh enough", Observation{Position: good, Permission: domain.PermissionGranted}, time.Minute, true},
		{"stale", Observation{Position: good, Permission: domain.PermissionGranted}, 5 * time.Second, false},
		{"denied", Observation{Position: good, Permission: domain.PermissionDenied}, 0, false},
		{"prompt", Observation{Position: good, Permission: domain.PermissionPrompt}, 0, false},
		{"unknown", Observation{Position: good}, 0, false},
		{"no sample", Observation{Permission: domain.PermissionGranted}, 0, false},
		{"invalid sample", Observation{Position: &domain.PositionSample{Coordinates: domain.Coordinate{Lat: 100}}, Permission: domain.PermissionGranted}, 0, false},
	}

	for _, tc := range cases {
		_, err := tc.obs.Current(now, tc.maxAge)
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected err: %v", tc.name, err)
		}
		if !tc.ok && !errorsIs(err, e.ErrPositionUnavailable) {
			t.Fatalf("%s: expected ErrPositionUnavailable got %v", tc.name, err)
		}
	}
}

func errorsIs(err, target error) bool {
	return err != nil && errors.Is(err, target)
}
