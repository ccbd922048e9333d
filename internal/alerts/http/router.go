package http

import "github.com/gin-gonic/gin"

// Register attaches alert routes to the authenticated API group.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.GET("/settings/alerts", h.getSettings)
	api.PUT("/settings/alerts", h.updateSettings)
	api.POST("/settings/alerts/test", h.testAlert)
	api.POST("/audits/:audit_id/alerts", h.dispatch)
}
