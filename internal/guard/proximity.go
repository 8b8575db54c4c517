package guard

import (
	"fmt"

	"fieldcheck/internal/domain"
	"fieldcheck/internal/geo"
	"fieldcheck/pkg/e"
)

type ProximityResult struct {
	OK             bool
	DistanceMeters float64
}

// CheckDistance rejects only when the distance is strictly greater than
// maxMeters. Both coordinates must be valid; an invalid one never reaches the
// distance computation.
func CheckDistance(current, target domain.Coordinate, maxMeters float64) (ProximityResult, error) {
	if !current.Valid() {
		return ProximityResult{}, fmt.Errorf("guard.CheckDistance: device position: %w", e.ErrPositionUnavailable)
	}
	if !target.Valid() {
		return ProximityResult{}, fmt.Errorf("guard.CheckDistance: target: %w", e.ErrInvalidCoordinates)
	}

	d := geo.Distance(current, target)
	return ProximityResult{OK: !(d > maxMeters), DistanceMeters: d}, nil
}

// Err converts a failed result into an *e.OutOfRangeError for checkpoint.
func (r ProximityResult) Err(checkpoint string, maxMeters float64) error {
	if r.OK {
		return nil
	}
	return &e.OutOfRangeError{Checkpoint: checkpoint, DistanceMeters: r.DistanceMeters, MaxMeters: maxMeters}
}
