package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentdesk/internal/alerting"
	"rentdesk/internal/logging"
)

type Handler struct {
	engine *alerting.Engine
	hub    *Hub
	logger *logging.Logger
}

func NewHandler(engine *alerting.Engine, hub *Hub, logger *logging.Logger) *Handler {
	return &Handler{engine: engine, hub: hub, logger: logger}
}

// GetAlerts returns the current read model.
func (h *Handler) GetAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

// MarkRead marks one alert read.
func (h *Handler) MarkRead(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing alert id"})
		return
	}
	h.engine.MarkRead(id)
	h.logger.Debugf("Marked alert read: %s", id)
	c.JSON(http.StatusOK, gin.H{"message": "marked read"})
}

// MarkAllRead marks every currently listed alert read.
func (h *Handler) MarkAllRead(c *gin.Context) {
	h.engine.MarkAllRead()
	c.JSON(http.StatusOK, gin.H{"message": "all marked read"})
}

// Refresh queues an on-demand poll cycle. The trigger is dropped if a cycle
// is already running.
func (h *Handler) Refresh(c *gin.Context) {
	h.engine.RefreshNow()
	c.JSON(http.StatusAccepted, gin.H{"message": "refresh queued"})
}

// Health reports service liveness and the engine's cycle phase.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"engine": h.engine.State().String(),
	})
}

// WS upgrades to the dashboard WebSocket.
func (h *Handler) WS(c *gin.Context) {
	h.hub.Serve(c.Writer, c.Request)
}
