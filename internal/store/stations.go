package store

import (
	"context"
	"encoding/json"
	"time"

	"EmberWatch/internal/models"
	"EmberWatch/pkg/cache"
	"EmberWatch/pkg/errors"

	"gorm.io/gorm"
)

const directoryCacheKey = "directory:eligible"

// StationDirectory reads the station records eligible for assignment. The
// pipeline never mutates it. Snapshots are ordered by station ID so the
// engine's first-smallest-wins tie-break is stable across runs.
type StationDirectory struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
}

// NewStationDirectory creates a directory reader. cache may be nil to always
// hit the database.
func NewStationDirectory(db *gorm.DB, c cache.Cache, ttl time.Duration) *StationDirectory {
	return &StationDirectory{db: db, cache: c, ttl: ttl}
}

// Eligible returns the current snapshot of assignable stations.
func (d *StationDirectory) Eligible(ctx context.Context) ([]models.Station, error) {
	if d.cache != nil {
		if value, ok := d.cache.Get(ctx, directoryCacheKey); ok {
			if stations, ok := decodeStations(value); ok {
				return stations, nil
			}
		}
	}
	return d.Refresh(ctx)
}

// decodeStations recovers a snapshot from the cache backend. The local
// backend hands the slice back as stored; the redis backend JSON round-trips
// it, so anything else is re-decoded through JSON.
func decodeStations(value interface{}) ([]models.Station, bool) {
	switch v := value.(type) {
	case []models.Station:
		return v, true
	case string:
		var stations []models.Station
		if err := json.Unmarshal([]byte(v), &stations); err != nil {
			return nil, false
		}
		return stations, true
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, false
		}
		var stations []models.Station
		if err := json.Unmarshal(raw, &stations); err != nil {
			return nil, false
		}
		return stations, true
	}
}

// Refresh reloads the snapshot from the database and repopulates the cache.
// The cron scheduler calls this periodically; Eligible calls it on miss.
func (d *StationDirectory) Refresh(ctx context.Context) ([]models.Station, error) {
	var stations []models.Station
	err := d.db.WithContext(ctx).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Order("id").
		Find(&stations).Error
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDirectoryUnavailable, "failed to load station directory")
	}

	if d.cache != nil {
		_ = d.cache.Set(ctx, directoryCacheKey, stations, d.ttl)
	}
	return stations, nil
}

// All returns every station record, eligible or not, for the dashboard.
func (d *StationDirectory) All(ctx context.Context) ([]models.Station, error) {
	var stations []models.Station
	if err := d.db.WithContext(ctx).Order("id").Find(&stations).Error; err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDirectoryUnavailable, "failed to list stations")
	}
	return stations, nil
}
