package handlers

import (
	"EmberWatch/internal/intake"
	"EmberWatch/internal/store"
	"EmberWatch/pkg/errors"
	"EmberWatch/pkg/response"

	"github.com/gin-gonic/gin"
)

// handleCreateReport accepts a citizen report, runs it through the intake
// pipeline and returns the persisted record.
func (h *Handlers) handleCreateReport(c *gin.Context) {
	var sub intake.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}

	report, err := h.pipeline.Submit(c.Request.Context(), sub)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Created(c, "report created", report)
}

func (h *Handlers) handleListReports(c *gin.Context) {
	filter := store.ReportFilter{
		StationName: c.Query("stationName"),
		AdminEmail:  c.Query("adminEmail"),
	}

	reports, err := h.reports.List(c.Request.Context(), filter)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, "reports fetched", reports)
}

func (h *Handlers) handleGetReport(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, "report fetched", report)
}

func (h *Handlers) handleUpdateReportStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Fail(c, "invalid request body", nil)
		return
	}

	report, err := h.pipeline.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, "report status updated", report)
}

func (h *Handlers) handleResolveReport(c *gin.Context) {
	report, err := h.pipeline.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, "report resolved", report)
}

func (h *Handlers) handleNotifyViewLocation(c *gin.Context) {
	if err := h.pipeline.NotifyViewLocation(c.Request.Context(), c.Param("id")); err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, "submitter notified", nil)
}

func (h *Handlers) handleReportSummary(c *gin.Context) {
	summary, err := h.reports.Summary(c.Request.Context())
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, "summary fetched", summary)
}

// failWithError maps the pipeline and store error codes onto HTTP statuses.
func failWithError(c *gin.Context, err error) {
	response.FailWithStatus(c, errors.StatusOf(err), errors.GetMessage(err))
}
