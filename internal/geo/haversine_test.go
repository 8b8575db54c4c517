package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldcheck/internal/domain"
)

// north returns the point d meters due north of c. Along a meridian the
// haversine distance is exactly R*dLat.
func north(c domain.Coordinate, d float64) domain.Coordinate {
	return domain.Coordinate{Lat: c.Lat + d/EarthRadiusMeters*180/math.Pi, Lng: c.Lng}
}

func TestDistance_Golden(t *testing.T) {
	a := domain.Coordinate{Lat: 9.9281, Lng: -84.0907}
	b := domain.Coordinate{Lat: 9.9300, Lng: -84.0900}

	assert.InDelta(t, 224.75, Distance(a, b), 1.0)
}

func TestDistance_KnownReference(t *testing.T) {
	// one degree of longitude on the equator
	got := Distance(domain.Coordinate{Lat: 0, Lng: 0}, domain.Coordinate{Lat: 0, Lng: 1})
	assert.InDelta(t, 111194.93, got, 0.5)
}

func TestDistance_SymmetricAndZero(t *testing.T) {
	points := []domain.Coordinate{
		{Lat: 9.9281, Lng: -84.0907},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 55.75, Lng: 37.61},
		{Lat: 89.9, Lng: 179.9},
		{Lat: -89.9, Lng: -179.9},
		{Lat: 0, Lng: 0},
	}

	for _, a := range points {
		assert.Zero(t, Distance(a, a))
		for _, b := range points {
			assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-6)
		}
	}
}

func TestDistance_MeridianOffsets(t *testing.T) {
	origin := domain.Coordinate{Lat: 9.9281, Lng: -84.0907}
	for _, d := range []float64{1, 49, 50, 51, 99, 100, 101, 1000, 9999} {
		require.InDelta(t, d, Distance(origin, north(origin, d)), 0.01, "offset %v", d)
	}
}
