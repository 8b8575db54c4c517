package domain

import "time"

type PositionRequest struct {
	Lat            float64    `json:"lat" validate:"lat"`
	Lng            float64    `json:"lng" validate:"lng"`
	AccuracyMeters float64    `json:"accuracy_meters" validate:"gte=0"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}

type PermissionRequest struct {
	State string `json:"state" validate:"required,permission"`
}

type ScanRequest struct {
	Payload string `json:"payload" validate:"required,max=4096"`
}

type RegisterRequest struct {
	EventType EventType `json:"event_type" validate:"required,event_type"`
}

type ScanResponse struct {
	State          SessionState `json:"state"`
	Target         Target       `json:"target"`
	DistanceMeters float64      `json:"distance_meters"`
}

type RegisterResponse struct {
	State SessionState    `json:"state"`
	Event AttendanceEvent `json:"event"`
}

type ErrorResponse struct {
	Error            string   `json:"error"`
	Message          string   `json:"message"`
	Checkpoint       string   `json:"checkpoint,omitempty"`
	DistanceMeters   *float64 `json:"distance_meters,omitempty"`
	MaxMeters        *float64 `json:"max_meters,omitempty"`
	MinutesRemaining *float64 `json:"minutes_remaining,omitempty"`
}
