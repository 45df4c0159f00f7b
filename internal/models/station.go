package models

import (
	"strconv"
	"time"
)

// Station is one directory record. Provisioning is administrative and
// external; the pipeline only ever reads these.
type Station struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Name        string   `gorm:"index" json:"name"`
	Email       string   `gorm:"index" json:"email"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	AdminUserID string   `gorm:"index" json:"adminUserId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Eligible reports whether the station can participate in nearest-station
// search: both coordinates must be present.
func (s Station) Eligible() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// RecipientID is the room identity station notifications are emitted to: the
// owning admin account when known, otherwise the station's own record ID.
func (s Station) RecipientID() string {
	if s.AdminUserID != "" {
		return s.AdminUserID
	}
	return "station-" + strconv.FormatUint(uint64(s.ID), 10)
}

// Snapshot copies the station identity for embedding into a report.
func (s Station) Snapshot() *StationSnapshot {
	snap := &StationSnapshot{
		Name:    s.Name,
		Email:   s.Email,
		Address: s.Address,
	}
	if s.Latitude != nil {
		snap.Latitude = *s.Latitude
	}
	if s.Longitude != nil {
		snap.Longitude = *s.Longitude
	}
	return snap
}
