package guard_test

import (
	"errors"
	"math"
	"testing"

	"fieldcheck/internal/domain"
	"fieldcheck/internal/geo"
	"fieldcheck/internal/guard"
	"fieldcheck/pkg/e"
)

func north(c domain.Coordinate, d float64) domain.Coordinate {
	return domain.Coordinate{Lat: c.Lat + d/geo.EarthRadiusMeters*180/math.Pi, Lng: c.Lng}
}

var clinic = domain.Coordinate{Lat: 9.9281, Lng: -84.0907}

func TestCheckDistance_Boundary(t *testing.T) {
	t.Parallel()

	const max = 100.0

	cases := []struct {
		name   string
		offset float64
		ok     bool
	}{
		{"same point", 0, true},
		{"M-1", max - 1, true},
		{"M+1", max + 1, false},
		{"1km", 1000, false},
	}

	for _, tc := range cases {
		res, err := guard.CheckDistance(north(clinic, tc.offset), clinic, max)
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", tc.name, err)
		}
		if res.OK != tc.ok {
			t.Fatalf("%s: expected ok=%v got %+v", tc.name, tc.ok, res)
		}
		if math.Abs(res.DistanceMeters-tc.offset) > 0.01 {
			t.Fatalf("%s: expected distance %.2f got %.2f", tc.name, tc.offset, res.DistanceMeters)
		}
	}
}

func TestCheckDistance_ExactlyAtThresholdPasses(t *testing.T) {
	t.Parallel()

	res, err := guard.CheckDistance(clinic, clinic, 0)
	if err != nil || !res.OK {
		t.Fatalf("expected ok at distance == threshold, got %+v err=%v", res, err)
	}
}

func TestCheckDistance_InvalidCoordinates(t *testing.T) {
	t.Parallel()

	_, err := guard.CheckDistance(domain.Coordinate{Lat: 95, Lng: 0}, clinic, 100)
	if !errors.Is(err, e.ErrPositionUnavailable) {
		t.Fatalf("expected ErrPositionUnavailable got %v", err)
	}

	_, err = guard.CheckDistance(clinic, domain.Coordinate{Lat: 0, Lng: math.NaN()}, 100)
	if !errors.Is(err, e.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates got %v", err)
	}
}

func TestProximityResult_Err(t *testing.T) {
	t.Parallel()

	if err := (guard.ProximityResult{OK: true, DistanceMeters: 3}).Err(e.CheckpointScan, 100); err != nil {
		t.Fatalf("expected nil got %v", err)
	}

	err := (guard.ProximityResult{OK: false, DistanceMeters: 1000}).Err(e.CheckpointRegister, 100)
	var oor *e.OutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("expected *OutOfRangeError got %T", err)
	}
	if oor.Checkpoint != e.CheckpointRegister || oor.DistanceMeters != 1000 || oor.MaxMeters != 100 {
		t.Fatalf("unexpected error fields: %+v", oor)
	}
	if !errors.Is(err, e.ErrOutOfRange) {
		t.Fatalf("expected errors.Is ErrOutOfRange")
	}
}
