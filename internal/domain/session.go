package domain

import "time"

type SessionState string

const (
	SessionEmpty       SessionState = "EMPTY"
	SessionValidated   SessionState = "VALIDATED"
	SessionRegistering SessionState = "REGISTERING"
)

// SessionView is a read-only copy of a scan session.
type SessionView struct {
	ActorID        string          `json:"actor_id"`
	State          SessionState    `json:"state"`
	Target         *Target         `json:"target,omitempty"`
	ScanPosition   *PositionSample `json:"scan_position,omitempty"`
	ScanDistance   float64         `json:"scan_distance_meters,omitempty"`
	LastPosition   *PositionSample `json:"last_position,omitempty"`
	Permission     Permission      `json:"permission"`
	ValidatedAt    *time.Time      `json:"validated_at,omitempty"`
	LastActivityAt time.Time       `json:"last_activity_at"`
}

// SessionHint is a device-local, non-authoritative reminder of the last
// validated target. It never restores a validated session.
type SessionHint struct {
	ActorID     string    `json:"actor_id"`
	TargetKey   TargetKey `json:"target_key"`
	DisplayName string    `json:"display_name"`
	ValidatedAt time.Time `json:"validated_at"`
}

// ValidatedScan is what a successful scan leaves behind: the target and the
// position snapshot the scan-time proximity check used.
type ValidatedScan struct {
	Target         Target         `json:"target"`
	Position       PositionSample `json:"position"`
	DistanceMeters float64        `json:"distance_meters"`
	ValidatedAt    time.Time      `json:"validated_at"`
}
