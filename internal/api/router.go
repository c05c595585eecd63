// Package api exposes the notification feed and marketplace event ingestion
// over HTTP.
package api

import (
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine for h.
func NewRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	e := gin.New()
	e.Use(recovery(h.log))
	e.Use(requestID())
	e.Use(requestLogger(h.log))
	if h.metrics != nil {
		e.Use(instrument(h.metrics))
		e.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	{
		n := api.Group("/notifications")
		n.GET("", h.List)
		n.POST("", h.Create)
		n.DELETE("", h.ClearAll)
		n.GET("/unread-count", h.UnreadCount)
		n.POST("/read-all", h.MarkAllRead)
		n.POST("/:id/read", h.MarkRead)
		n.DELETE("/:id", h.Remove)

		api.POST("/events", h.PublishEvent)
		api.GET("/ws/badge", h.Badge)
	}

	return e
}
