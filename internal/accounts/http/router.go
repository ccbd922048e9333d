package http

import "github.com/gin-gonic/gin"

// Register attaches account routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.DELETE("/:account_id", h.delete)
	rg.POST("/:account_id/verify", h.verify)
}
