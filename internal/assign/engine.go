package assign

import (
	"EmberWatch/internal/geo"
	"EmberWatch/internal/models"
	"errors"
)

// ErrNoStationAvailable means the directory held zero eligible stations. It
// is a soft outcome: the report is still created, just unassigned.
var ErrNoStationAvailable = errors.New("no eligible station available")

// Nearest returns the eligible station closest to target. Stations missing
// either coordinate are skipped. Ties keep the earliest-scanned record, so
// callers wanting deterministic ties must hand in a stably ordered slice
// (the directory orders by station ID).
func Nearest(target geo.Coordinate, stations []models.Station) (models.Station, error) {
	var (
		nearest models.Station
		found   bool
		minDist float64
	)

	for _, st := range stations {
		if !st.Eligible() {
			continue
		}
		d := geo.Distance(target, geo.Coordinate{Lat: *st.Latitude, Lng: *st.Longitude})
		if !found || d < minDist {
			nearest = st
			minDist = d
			found = true
		}
	}

	if !found {
		return models.Station{}, ErrNoStationAvailable
	}
	return nearest, nil
}
