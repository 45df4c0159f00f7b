package assign

import (
	"EmberWatch/internal/geo"
	"EmberWatch/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func station(id uint, name string, lat, lng float64) models.Station {
	return models.Station{ID: id, Name: name, Latitude: ptr(lat), Longitude: ptr(lng)}
}

func TestNearestPicksClosestStation(t *testing.T) {
	// A(13.1,123.7) vs B(13.15,123.76) for a report at (13.14,123.75):
	// B is ~1.7 km away, A ~6.9 km, so B must win.
	a := station(1, "Station A", 13.1, 123.7)
	b := station(2, "Station B", 13.15, 123.76)
	target := geo.Coordinate{Lat: 13.14, Lng: 123.75}

	distA := geo.Distance(target, geo.Coordinate{Lat: 13.1, Lng: 123.7})
	distB := geo.Distance(target, geo.Coordinate{Lat: 13.15, Lng: 123.76})
	require.Less(t, distB, distA)

	got, err := Nearest(target, []models.Station{a, b})
	require.NoError(t, err)
	assert.Equal(t, "Station B", got.Name)

	// input order must not matter
	got, err = Nearest(target, []models.Station{b, a})
	require.NoError(t, err)
	assert.Equal(t, "Station B", got.Name)
}

func TestNearestResultMinimizesDistance(t *testing.T) {
	stations := []models.Station{
		station(1, "north", 14.0, 123.0),
		station(2, "east", 13.0, 124.5),
		station(3, "near", 13.2, 123.8),
		station(4, "far", 18.0, 120.0),
	}
	target := geo.Coordinate{Lat: 13.14, Lng: 123.75}

	got, err := Nearest(target, stations)
	require.NoError(t, err)

	winning := geo.Distance(target, geo.Coordinate{Lat: *got.Latitude, Lng: *got.Longitude})
	for _, st := range stations {
		d := geo.Distance(target, geo.Coordinate{Lat: *st.Latitude, Lng: *st.Longitude})
		assert.LessOrEqual(t, winning, d)
	}
}

func TestNearestSkipsIneligibleStations(t *testing.T) {
	missing := models.Station{ID: 1, Name: "no coords"}
	partial := models.Station{ID: 2, Name: "half", Latitude: ptr(13.14)}
	eligible := station(3, "whole", 15.0, 120.0)

	got, err := Nearest(geo.Coordinate{Lat: 13.14, Lng: 123.75}, []models.Station{missing, partial, eligible})
	require.NoError(t, err)
	assert.Equal(t, "whole", got.Name)
}

func TestNearestEmptyDirectory(t *testing.T) {
	_, err := Nearest(geo.Coordinate{Lat: 13.14, Lng: 123.75}, nil)
	assert.ErrorIs(t, err, ErrNoStationAvailable)

	onlyIneligible := []models.Station{{ID: 1, Name: "no coords"}}
	_, err = Nearest(geo.Coordinate{Lat: 13.14, Lng: 123.75}, onlyIneligible)
	assert.ErrorIs(t, err, ErrNoStationAvailable)
}

func TestNearestTieKeepsEarliestScanned(t *testing.T) {
	// two stations at the same point: first in slice order wins
	first := station(1, "first", 13.2, 123.8)
	second := station(2, "second", 13.2, 123.8)

	got, err := Nearest(geo.Coordinate{Lat: 13.14, Lng: 123.75}, []models.Station{first, second})
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)
}
