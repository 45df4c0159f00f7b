package store

import (
	"context"
	stderrors "errors"
	"time"

	"EmberWatch/internal/models"
	"EmberWatch/pkg/errors"

	"gorm.io/gorm"
)

// ReportFilter narrows report listings to one station's view.
type ReportFilter struct {
	StationName string
	AdminEmail  string
}

// TypeSummary is one row of the per-type aggregate.
type TypeSummary struct {
	Type       string    `json:"type"`
	Total      int64     `json:"total"`
	Active     int64     `json:"active"`
	Resolved   int64     `json:"resolved"`
	LastReport time.Time `json:"lastReport"`
}

// ReportStore persists reports and their status transitions.
type ReportStore struct {
	db *gorm.DB
}

// NewReportStore creates a report store.
func NewReportStore(db *gorm.DB) *ReportStore {
	return &ReportStore{db: db}
}

// Create persists a new report.
func (s *ReportStore) Create(ctx context.Context, report *models.Report) error {
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return errors.WrapWithCode(err, errors.CodePersistence, "failed to persist report")
	}
	return nil
}

// Get loads one report by ID.
func (s *ReportStore) Get(ctx context.Context, id string) (models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return models.Report{}, errors.WithCodef(errors.CodeNotFound, "report %s not found", id)
		}
		return models.Report{}, errors.WrapWithCode(err, errors.CodePersistence, "failed to load report")
	}
	return report, nil
}

// UpdateStatus sets the report status and returns the updated record.
func (s *ReportStore) UpdateStatus(ctx context.Context, id, status string) (models.Report, error) {
	report, err := s.Get(ctx, id)
	if err != nil {
		return models.Report{}, err
	}

	report.Status = status
	if err := s.db.WithContext(ctx).Model(&models.Report{ID: id}).Update("status", status).Error; err != nil {
		return models.Report{}, errors.WrapWithCode(err, errors.CodePersistence, "failed to update report status")
	}
	report.UpdatedAt = time.Now()
	return report, nil
}

// List returns reports newest first, optionally narrowed to one station by
// snapshot name or admin contact email.
func (s *ReportStore) List(ctx context.Context, filter ReportFilter) ([]models.Report, error) {
	query := s.db.WithContext(ctx).Model(&models.Report{})

	if filter.AdminEmail != "" {
		query = query.Where("assigned_station_email = ?", filter.AdminEmail)
	} else if filter.StationName != "" {
		query = query.Where("assigned_station_name = ?", filter.StationName)
	}

	var reports []models.Report
	if err := query.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, errors.WrapWithCode(err, errors.CodePersistence, "failed to list reports")
	}
	return reports, nil
}

// summaryRow is the raw aggregate row. MAX(created_at) loses the column's
// time type on sqlite and comes back as driver-formatted text, so it is
// scanned as a string and parsed afterwards.
type summaryRow struct {
	Type       string
	Total      int64
	Active     int64
	Resolved   int64
	LastReport string
}

// aggregateTimeLayouts covers the text forms the supported drivers hand back
// for a time aggregate: sqlite's stored format, mysql datetime, and the
// database/sql conversion of a native timestamp.
var aggregateTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
}

func parseAggregateTime(s string) time.Time {
	for _, layout := range aggregateTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// Summary aggregates reports by type with active/resolved counts, most
// frequent type first.
func (s *ReportStore) Summary(ctx context.Context) ([]TypeSummary, error) {
	var rows []summaryRow
	err := s.db.WithContext(ctx).
		Model(&models.Report{}).
		Select("type, COUNT(*) AS total, " +
			"SUM(CASE WHEN status = 'Active' THEN 1 ELSE 0 END) AS active, " +
			"SUM(CASE WHEN status = 'Resolved' THEN 1 ELSE 0 END) AS resolved, " +
			"MAX(created_at) AS last_report").
		Group("type").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodePersistence, "failed to build report summary")
	}

	summary := make([]TypeSummary, 0, len(rows))
	for _, row := range rows {
		summary = append(summary, TypeSummary{
			Type:       row.Type,
			Total:      row.Total,
			Active:     row.Active,
			Resolved:   row.Resolved,
			LastReport: parseAggregateTime(row.LastReport),
		})
	}
	return summary, nil
}
