package api

import (
	"github.com/gin-gonic/gin"

	"rentdesk/internal/config"
	"rentdesk/internal/logging"
)

func NewRouter(logger *logging.Logger, cfg config.Config, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group(cfg.API.BasePath)
	{
		api.GET("/alerts", h.GetAlerts)
		api.POST("/alerts/:id/read", h.MarkRead)
		api.POST("/alerts/read-all", h.MarkAllRead)
		api.POST("/refresh", h.Refresh)
	}

	r.GET("/health", h.Health)
	r.GET("/ws", h.WS)

	return r
}
