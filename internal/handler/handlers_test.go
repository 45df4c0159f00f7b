package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"EmberWatch/internal/intake"
	"EmberWatch/internal/models"
	"EmberWatch/internal/store"
	"EmberWatch/pkg/cache"
	"EmberWatch/pkg/config"
	"EmberWatch/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func ptr(f float64) *float64 { return &f }

type staticGeocoder struct{ address string }

func (g staticGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	return g.address, nil
}

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.GlobalConfig = &config.Config{APIPrefix: "/api"}

	db, err := store.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, store.AutoMigrate(db))

	c := cache.NewGoCache(cache.LocalConfig{})
	directory := store.NewStationDirectory(db, c, time.Minute)
	reports := store.NewReportStore(db)
	pipeline := intake.NewPipeline(directory, staticGeocoder{address: "Legazpi City, Albay"},
		reports, nil, time.Second, nil, nil)

	h := NewHandlers(db, pipeline, reports, directory, nil)
	engine := gin.New()
	h.Register(engine)
	return engine, db
}

func seedStations(t *testing.T, db *gorm.DB) {
	t.Helper()
	stations := []models.Station{
		{Name: "Station A", Email: "a@bfp.gov.ph", AdminUserID: "admin-a",
			Latitude: ptr(13.1), Longitude: ptr(123.7)},
		{Name: "Station B", Email: "b@bfp.gov.ph", AdminUserID: "admin-b",
			Latitude: ptr(13.15), Longitude: ptr(123.76)},
		{Name: "No Coordinates", Email: "void@bfp.gov.ph"},
	}
	require.NoError(t, db.Create(&stations).Error)
}

func doJSON(engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) response.Body {
	t.Helper()
	var body response.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func createReport(t *testing.T, engine *gin.Engine) models.Report {
	t.Helper()
	w := doJSON(engine, http.MethodPost, "/api/reports", gin.H{
		"name":      "Juan",
		"message":   "kitchen fire",
		"type":      models.TypeFire,
		"userId":    "citizen-1",
		"latitude":  13.14,
		"longitude": 123.75,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	raw, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var report models.Report
	require.NoError(t, json.Unmarshal(raw, &report))
	return report
}

func TestCreateReportAssignsNearestStation(t *testing.T) {
	engine, db := newTestServer(t)
	seedStations(t, db)

	report := createReport(t, engine)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, models.StatusActive, report.Status)
	assert.Equal(t, "Legazpi City, Albay", report.Address)
	require.NotNil(t, report.AssignedStation)
	assert.Equal(t, "Station B", report.AssignedStation.Name)
}

func TestCreateReportNestedLocation(t *testing.T) {
	engine, db := newTestServer(t)
	seedStations(t, db)

	w := doJSON(engine, http.MethodPost, "/api/reports", gin.H{
		"name":    "Juan",
		"message": "kitchen fire",
		"type":    models.TypeFire,
		"userId":  "citizen-1",
		"location": gin.H{
			"latitude":  13.14,
			"longitude": 123.75,
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	raw, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var report models.Report
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, 13.14, report.Latitude)
	require.NotNil(t, report.AssignedStation)
	assert.Equal(t, "Station B", report.AssignedStation.Name)
}

func TestCreateReportWithoutStationsStaysUnassigned(t *testing.T) {
	engine, _ := newTestServer(t)

	report := createReport(t, engine)
	assert.Nil(t, report.AssignedStation)
	assert.Equal(t, models.StatusActive, report.Status)
}

func TestCreateReportValidation(t *testing.T) {
	engine, _ := newTestServer(t)

	w := doJSON(engine, http.MethodPost, "/api/reports", gin.H{
		"message":  "no coordinates",
		"latitude": 13.14,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/reports", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetReport(t *testing.T) {
	engine, db := newTestServer(t)
	seedStations(t, db)
	report := createReport(t, engine)

	w := doJSON(engine, http.MethodGet, "/api/reports/"+report.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(engine, http.MethodGet, "/api/reports/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListReportsFilters(t *testing.T) {
	engine, db := newTestServer(t)
	seedStations(t, db)
	createReport(t, engine)
	createReport(t, engine)

	w := doJSON(engine, http.MethodGet, "/api/reports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	list, ok := body.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, list, 2)

	w = doJSON(engine, http.MethodGet, "/api/reports?stationName=Station+B", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Len(t, body.Data, 2)

	w = doJSON(engine, http.MethodGet, "/api/reports?adminEmail=nobody@bfp.gov.ph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Empty(t, body.Data)
}

func TestUpdateReportStatus(t *testing.T) {
	engine, db := newTestServer(t)
	seedStations(t, db)
	report := createReport(t, engine)

	w := doJSON(engine, http.MethodPatch, "/api/reports/"+report.ID+"/status",
		gin.H{"status": models.StatusResolved})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(engine, http.MethodPatch, "/api/reports/"+report.ID+"/status",
		gin.H{"status": "Dispatched"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(engine, http.MethodPatch, "/api/reports/does-not-exist/status",
		gin.H{"status": models.StatusResolved})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResolveReport(t *testing.T) {
	engine, db := newTestServer(t)
	seedStations(t, db)
	report := createReport(t, engine)

	w := doJSON(engine, http.MethodPatch, "/api/reports/"+report.ID+"/resolve", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(engine, http.MethodGet, "/api/reports/"+report.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.StatusResolved)
}

func TestNotifyViewLocation(t *testing.T) {
	engine, db := newTestServer(t)
	seedStations(t, db)
	report := createReport(t, engine)

	w := doJSON(engine, http.MethodPost, "/api/reports/"+report.ID+"/notify-view-location", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(engine, http.MethodPost, "/api/reports/does-not-exist/notify-view-location", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportSummary(t *testing.T) {
	engine, db := newTestServer(t)
	seedStations(t, db)
	createReport(t, engine)
	report := createReport(t, engine)

	w := doJSON(engine, http.MethodPatch, "/api/reports/"+report.ID+"/resolve", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(engine, http.MethodGet, "/api/reports/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	raw, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var summary []store.TypeSummary
	require.NoError(t, json.Unmarshal(raw, &summary))
	require.Len(t, summary, 1)
	assert.Equal(t, models.TypeFire, summary[0].Type)
	assert.Equal(t, int64(2), summary[0].Total)
	assert.Equal(t, int64(1), summary[0].Active)
	assert.Equal(t, int64(1), summary[0].Resolved)
}

func TestListStations(t *testing.T) {
	engine, db := newTestServer(t)
	seedStations(t, db)

	w := doJSON(engine, http.MethodGet, "/api/stations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	list, ok := body.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, list, 3)
}

func TestHealthCheck(t *testing.T) {
	engine, _ := newTestServer(t)

	w := doJSON(engine, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
