package intake

import (
	"context"
	"math"
	"time"

	"EmberWatch/internal/assign"
	"EmberWatch/internal/geo"
	"EmberWatch/internal/geocode"
	"EmberWatch/internal/models"
	"EmberWatch/internal/relay"
	"EmberWatch/pkg/errors"
	"EmberWatch/pkg/metrics"
	"EmberWatch/pkg/websocket"

	"go.uber.org/zap"
)

// Directory is the read-only station directory view the pipeline consumes.
type Directory interface {
	Eligible(ctx context.Context) ([]models.Station, error)
}

// ReportStore is the persistence surface the pipeline needs.
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	Get(ctx context.Context, id string) (models.Report, error)
	UpdateStatus(ctx context.Context, id, status string) (models.Report, error)
}

// Location is the nested coordinate object mobile clients send. Top-level
// latitude/longitude fields are accepted too.
type Location struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Submission is a raw citizen report before validation.
type Submission struct {
	Name        string    `json:"name"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	Level       string    `json:"level"`
	Description string    `json:"description"`
	UserID      string    `json:"userId"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Location    *Location `json:"location"`
}

// coordinates returns the effective coordinates, preferring the nested
// location object when the client sent one.
func (s Submission) coordinates() (lat, lng *float64) {
	if s.Location != nil {
		return s.Location.Latitude, s.Location.Longitude
	}
	return s.Latitude, s.Longitude
}

// Pipeline turns submissions into persisted, routed, notified reports and
// owns the report status transitions.
type Pipeline struct {
	directory      Directory
	geocoder       geocode.Geocoder
	reports        ReportStore
	relay          relay.Relay
	geocodeTimeout time.Duration
	log            *zap.Logger
	metrics        *metrics.Metrics
}

// NewPipeline wires the intake pipeline. geocoder may be nil (always fall
// back) and relay may be nil (no notifications).
func NewPipeline(
	directory Directory,
	geocoder geocode.Geocoder,
	reports ReportStore,
	r relay.Relay,
	geocodeTimeout time.Duration,
	log *zap.Logger,
	m *metrics.Metrics,
) *Pipeline {
	if r == nil {
		r = relay.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if geocodeTimeout <= 0 {
		geocodeTimeout = 5 * time.Second
	}
	return &Pipeline{
		directory:      directory,
		geocoder:       geocoder,
		reports:        reports,
		relay:          r,
		geocodeTimeout: geocodeTimeout,
		log:            log,
		metrics:        m,
	}
}

// Submit validates, assigns, geocodes, persists and notifies. Validation
// failure aborts before any side effect. Geocode failure and an empty
// directory are soft: the report is still created. A store failure surfaces
// as a persistence error and no notification fires.
func (p *Pipeline) Submit(ctx context.Context, sub Submission) (models.Report, error) {
	lat, lng, err := coordinatesOf(sub)
	if err != nil {
		return models.Report{}, err
	}
	target := geo.Coordinate{Lat: lat, Lng: lng}

	// geocoding has no data dependency on assignment; run it alongside
	addrCh := make(chan string, 1)
	go func() {
		addrCh <- p.resolveAddress(ctx, target)
	}()

	stations, err := p.directory.Eligible(ctx)
	if err != nil {
		return models.Report{}, err
	}

	var snapshot *models.StationSnapshot
	var recipient string
	nearest, err := assign.Nearest(target, stations)
	switch {
	case err == nil:
		snapshot = nearest.Snapshot()
		recipient = nearest.RecipientID()
		p.count(func(m *metrics.Metrics) { m.StationAssignment("assigned") })
	case err == assign.ErrNoStationAvailable:
		p.log.Warn("no eligible station for report, creating unassigned",
			zap.Float64("lat", target.Lat), zap.Float64("lng", target.Lng))
		p.count(func(m *metrics.Metrics) { m.StationAssignment("none") })
	default:
		return models.Report{}, err
	}

	address := <-addrCh

	report := models.Report{
		UserID:          sub.UserID,
		Name:            sub.Name,
		Message:         sub.Message,
		Type:            sub.Type,
		Level:           sub.Level,
		Description:     sub.Description,
		Latitude:        target.Lat,
		Longitude:       target.Lng,
		Address:         address,
		Status:          models.StatusActive,
		AssignedStation: snapshot,
	}
	if err := p.reports.Create(ctx, &report); err != nil {
		return models.Report{}, err
	}
	p.count(func(m *metrics.Metrics) { m.ReportCreated(report.Type) })

	// persistence happened before this point; only now may subscribers hear
	// about the report
	if snapshot != nil {
		p.emit(recipient, websocket.EventNewReport, map[string]interface{}{
			"message": "New report assigned to " + snapshot.Name,
			"report":  report,
		})
	}

	return report, nil
}

// UpdateStatus transitions a report between the two backend states. On a
// transition to Resolved the submitter, when known, is told help is coming.
func (p *Pipeline) UpdateStatus(ctx context.Context, id, status string) (models.Report, error) {
	if !models.ValidStatus(status) {
		return models.Report{}, errors.WithCodef(errors.CodeValidation, "invalid status %q", status)
	}

	report, err := p.reports.UpdateStatus(ctx, id, status)
	if err != nil {
		return models.Report{}, err
	}

	if status == models.StatusResolved && report.UserID != "" {
		p.emit(report.UserID, websocket.EventHelpOnWay, map[string]interface{}{
			"reportId": report.ID,
			"message":  "Help is on the way",
			"report":   report,
		})
	}

	return report, nil
}

// Resolve is shorthand for UpdateStatus(id, Resolved).
func (p *Pipeline) Resolve(ctx context.Context, id string) (models.Report, error) {
	return p.UpdateStatus(ctx, id, models.StatusResolved)
}

// NotifyViewLocation tells the submitter an admin is looking at their
// location. Reports without a submitter reference skip the emit silently.
func (p *Pipeline) NotifyViewLocation(ctx context.Context, id string) error {
	report, err := p.reports.Get(ctx, id)
	if err != nil {
		return err
	}

	if report.UserID != "" {
		p.emit(report.UserID, websocket.EventViewLocation, map[string]interface{}{
			"reportId": report.ID,
			"message":  "Admin is viewing your location",
			"location": geo.Coordinate{Lat: report.Latitude, Lng: report.Longitude},
		})
	}
	return nil
}

// resolveAddress geocodes with a bounded timeout and falls back to the raw
// coordinate string. It never fails.
func (p *Pipeline) resolveAddress(ctx context.Context, target geo.Coordinate) string {
	if p.geocoder == nil {
		return geocode.FallbackAddress(target.Lat, target.Lng)
	}

	gctx, cancel := context.WithTimeout(ctx, p.geocodeTimeout)
	defer cancel()

	address, err := p.geocoder.ReverseGeocode(gctx, target.Lat, target.Lng)
	if err != nil || address == "" {
		if err != nil {
			p.log.Warn("reverse geocoding failed, using coordinate fallback",
				zap.Float64("lat", target.Lat), zap.Float64("lng", target.Lng), zap.Error(err))
		}
		p.count(func(m *metrics.Metrics) { m.GeocodeFallback() })
		return geocode.FallbackAddress(target.Lat, target.Lng)
	}
	return address
}

func (p *Pipeline) emit(room, event string, payload interface{}) {
	p.relay.EmitToRoom(room, event, payload)
	p.count(func(m *metrics.Metrics) { m.NotificationEmitted(event) })
}

func (p *Pipeline) count(record func(*metrics.Metrics)) {
	if p.metrics != nil {
		record(p.metrics)
	}
}

func coordinatesOf(sub Submission) (float64, float64, error) {
	lat, lng := sub.coordinates()
	if lat == nil || lng == nil {
		return 0, 0, errors.WithCode(errors.CodeValidation, "missing location coordinates")
	}
	if math.IsNaN(*lat) || math.IsNaN(*lng) ||
		math.IsInf(*lat, 0) || math.IsInf(*lng, 0) {
		return 0, 0, errors.WithCode(errors.CodeValidation, "coordinates must be finite numbers")
	}
	return *lat, *lng, nil
}
