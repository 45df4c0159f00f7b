package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report statuses. The backend knows exactly two states; richer vocabularies
// in dashboard mockups are presentation-only.
const (
	StatusActive   = "Active"
	StatusResolved = "Resolved"
)

// Known emergency types. Unrecognized submissions keep their raw value.
const (
	TypeFire       = "Fire"
	TypeFlood      = "Flood"
	TypeEarthquake = "Earthquake"
	TypeAccident   = "Accident"
	TypeLandslide  = "Landslide"
	TypeUnknown    = "Unknown"
)

// ValidStatus reports whether s is a backend-known report status.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusResolved
}

// StationSnapshot is the station identity copied onto a report at assignment
// time. It is deliberately a copy, not a reference: later station edits must
// not change what a report was assigned to.
type StationSnapshot struct {
	Name      string  `gorm:"index" json:"name"`
	Email     string  `gorm:"index" json:"email"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Report is a citizen emergency submission routed to its nearest station.
type Report struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	UserID      string `gorm:"index" json:"userId,omitempty"`
	Name        string `json:"name"`
	Message     string `json:"message"`
	Type        string `gorm:"index" json:"type"`
	Level       string `json:"level"`
	Description string `json:"description"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`

	Status string `gorm:"index;default:Active" json:"status"`

	// nil when no eligible station existed at intake time
	AssignedStation *StationSnapshot `gorm:"embedded;embeddedPrefix:assigned_station_" json:"assignedStation"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AfterFind normalizes an unassigned snapshot back to nil so callers and
// JSON see assignedStation as null rather than an empty object.
func (r *Report) AfterFind(tx *gorm.DB) error {
	if r.AssignedStation != nil && *r.AssignedStation == (StationSnapshot{}) {
		r.AssignedStation = nil
	}
	return nil
}

// BeforeCreate fills generated fields.
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Name == "" {
		r.Name = "Unnamed"
	}
	if r.Type == "" {
		r.Type = TypeUnknown
	}
	if r.Status == "" {
		r.Status = StatusActive
	}
	return nil
}
