package handlers

import (
	"EmberWatch/pkg/response"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) handleListStations(c *gin.Context) {
	stations, err := h.directory.All(c.Request.Context())
	if err != nil {
		failWithError(c, err)
		return
	}
	response.Success(c, "stations fetched", stations)
}
