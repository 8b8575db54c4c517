package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"
)

// ParseCoordinate parses a comma-joined "lat,lng" pair. Unparsable or
// out-of-range input yields e.ErrInvalidCoordinates.
func ParseCoordinate(s string) (domain.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return domain.Coordinate{}, fmt.Errorf("geo.ParseCoordinate %q: %w", s, e.ErrInvalidCoordinates)
	}

	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err := errors.Join(errLat, errLng); err != nil {
		return domain.Coordinate{}, fmt.Errorf("geo.ParseCoordinate %q: %w", s, e.ErrInvalidCoordinates)
	}

	c := domain.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return domain.Coordinate{}, fmt.Errorf("geo.ParseCoordinate %q: %w", s, e.ErrInvalidCoordinates)
	}
	return c, nil
}

// FormatCoordinate is the inverse of ParseCoordinate.
func FormatCoordinate(c domain.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// ResolveTarget turns a raw directory record into a Target. A structured
// lat/lng pair takes precedence over the comma-joined string.
func ResolveTarget(rec domain.DirectoryRecord) (domain.Target, error) {
	var (
		c   domain.Coordinate
		err error
	)
	switch {
	case rec.Lat != nil && rec.Lng != nil:
		c = domain.Coordinate{Lat: *rec.Lat, Lng: *rec.Lng}
		if !c.Valid() {
			err = fmt.Errorf("geo.ResolveTarget %s: %w", rec.Key(), e.ErrInvalidCoordinates)
		}
	default:
		c, err = ParseCoordinate(rec.Coordinates)
	}
	if err != nil {
		return domain.Target{}, err
	}

	return domain.Target{
		Key:         rec.Key(),
		Coordinates: c,
		DisplayName: rec.DisplayName,
		Metadata:    rec.Metadata,
	}, nil
}
