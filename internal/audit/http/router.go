package http

import "github.com/gin-gonic/gin"

// Register attaches audit routes to the authenticated API group.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.GET("/audits", h.list)
	api.GET("/audits/:audit_id", h.get)
	api.GET("/audits/:audit_id/findings", h.findings)
	api.GET("/audits/:audit_id/summary", h.summary)
	api.GET("/history", h.listHistory)
	api.POST("/scans", h.startScan)
}
