package domain

import "time"

// Permission is the location permission state reported by the device.
type Permission string

const (
	PermissionUnknown Permission = "unknown"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionPrompt  Permission = "prompt"
)

func ParsePermission(s string) (Permission, bool) {
	switch p := Permission(s); p {
	case PermissionGranted, PermissionDenied, PermissionPrompt, PermissionUnknown:
		return p, true
	default:
		return PermissionUnknown, false
	}
}

// PositionSample is one reading from the position source.
type PositionSample struct {
	Coordinates    Coordinate `json:"coordinates"`
	Timestamp      time.Time  `json:"timestamp"`
	AccuracyMeters float64    `json:"accuracy_meters"`
}

// DeviceUpdate is one message from the position source: a sample, a
// permission change, or both.
type DeviceUpdate struct {
	ActorID    string
	Sample     *PositionSample
	Permission *Permission
}
