package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	CheckIn  EventType = "CHECK_IN"
	CheckOut EventType = "CHECK_OUT"
)

func (t EventType) Valid() bool {
	return t == CheckIn || t == CheckOut
}

// AttendanceEvent is an immutable record in the event store.
// OccurredAt is assigned by the store on append.
type AttendanceEvent struct {
	ID                uuid.UUID  `json:"id"`
	ActorID           string     `json:"actor_id"`
	TargetKey         TargetKey  `json:"target_key"`
	EventType         EventType  `json:"event_type"`
	TargetCoordinates Coordinate `json:"target_coordinates"`
	DeviceCoordinates Coordinate `json:"device_coordinates"`
	DistanceMeters    float64    `json:"distance_meters"`
	AccuracyMeters    float64    `json:"accuracy_meters"`
	OccurredAt        time.Time  `json:"occurred_at"`
}

// EventNotification is what gets pushed to webhooks and streams after a
// successful registration.
type EventNotification struct {
	EventID     uuid.UUID `json:"event_id"`
	ActorID     string    `json:"actor_id"`
	TargetKey   TargetKey `json:"target_key"`
	EventType   EventType `json:"event_type"`
	Distance    float64   `json:"distance_meters"`
	OccurredAt  time.Time `json:"occurred_at"`
	DeliveredAt time.Time `json:"delivered_at,omitempty"`
}

func NewEventNotification(ev AttendanceEvent) EventNotification {
	return EventNotification{
		EventID:    ev.ID,
		ActorID:    ev.ActorID,
		TargetKey:  ev.TargetKey,
		EventType:  ev.EventType,
		Distance:   ev.DistanceMeters,
		OccurredAt: ev.OccurredAt,
	}
}
