package session

import (
	"fmt"
	"time"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"
)

// Observation is the position and permission observed at the moment a guard
// runs.
type Observation struct {
	Position   *domain.PositionSample
	Permission domain.Permission
}

// Current returns the sample a guard may use. Permission must be granted and
// the sample must exist, be valid, and, when maxAge > 0, be no older than
// maxAge.
func (o Observation) Current(now time.Time, maxAge time.Duration) (domain.PositionSample, error) {
	const op = "session.Observation.Current"

	if o.Permission != domain.PermissionGranted {
		return domain.PositionSample{}, fmt.Errorf("%s: permission %s: %w", op, o.Permission, e.ErrPositionUnavailable)
	}
	if o.Position == nil {
		return domain.PositionSample{}, fmt.Errorf("%s: no sample yet: %w", op, e.ErrPositionUnavailable)
	}
	if !o.Position.Coordinates.Valid() {
		return domain.PositionSample{}, fmt.Errorf("%s: invalid sample: %w", op, e.ErrPositionUnavailable)
	}
	if maxAge > 0 && now.Sub(o.Position.Timestamp) > maxAge {
		return domain.PositionSample{}, fmt.Errorf("%s: sample older than %s: %w", op, maxAge, e.ErrPositionUnavailable)
	}
	return *o.Position, nil
}
