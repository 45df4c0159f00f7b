package handlers

import (
	"EmberWatch/internal/intake"
	"EmberWatch/internal/store"
	"EmberWatch/pkg/config"
	ws "EmberWatch/pkg/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handlers struct {
	db        *gorm.DB
	pipeline  *intake.Pipeline
	reports   *store.ReportStore
	directory *store.StationDirectory
	hub       *ws.Hub
}

func NewHandlers(db *gorm.DB, pipeline *intake.Pipeline, reports *store.ReportStore, directory *store.StationDirectory, hub *ws.Hub) *Handlers {
	return &Handlers{
		db:        db,
		pipeline:  pipeline,
		reports:   reports,
		directory: directory,
		hub:       hub,
	}
}

func (h *Handlers) Register(engine *gin.Engine) {
	r := engine.Group(config.GlobalConfig.APIPrefix)

	// System Module Routes
	h.registerSystemRoutes(r)

	// Business Module Routes
	h.registerReportRoutes(r)
	h.registerStationRoutes(r)

	engine.GET("/ws", h.HandleWS)
}

func (h *Handlers) registerSystemRoutes(r *gin.RouterGroup) {
	r.GET("/health", h.HealthCheck)
}

func (h *Handlers) registerReportRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.POST("", h.handleCreateReport)

		reports.GET("", h.handleListReports)

		reports.GET("/summary", h.handleReportSummary)

		reports.GET("/:id", h.handleGetReport)

		reports.PATCH("/:id/status", h.handleUpdateReportStatus)

		reports.PATCH("/:id/resolve", h.handleResolveReport)

		reports.POST("/:id/notify-view-location", h.handleNotifyViewLocation)
	}
}

func (h *Handlers) registerStationRoutes(r *gin.RouterGroup) {
	stations := r.Group("/stations")
	{
		stations.GET("", h.handleListStations)
	}
}
