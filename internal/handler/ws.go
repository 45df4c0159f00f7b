package handlers

import (
	ws "EmberWatch/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// HandleWS upgrades the connection and hands it to the hub. The userId query
// parameter identifies the caller's notification room; anonymous listeners
// connect without one and only receive broadcasts.
func (h *Handlers) HandleWS(c *gin.Context) {
	ws.HandleWebSocket(h.hub, c.Writer, c.Request, c.Query("userId"))
}
