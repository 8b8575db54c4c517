package service_test

import (
	"time"

	"fieldcheck/internal/domain"
	"fieldcheck/internal/session"
)

func sessionObservation(at domain.Coordinate, ts time.Time) session.Observation {
	return session.Observation{
		Position:   &domain.PositionSample{Coordinates: at, Timestamp: ts},
		Permission: domain.PermissionGranted,
	}
}
