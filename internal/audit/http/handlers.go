package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
	"github.com/cloudguard-dev/cloudguard-backend/internal/auth"
)

func providerFromQuery(c *gin.Context) (domain.Provider, bool) {
	p, ok := domain.ParseProvider(c.Query("provider"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "provider query parameter must be aws, gcp or azure"})
		return "", false
	}
	return p, true
}

func (h *Handler) list(c *gin.Context) {
	provider, ok := providerFromQuery(c)
	if !ok {
		return
	}

	items, err := h.repo.ListAudits(c.Request.Context(), auth.UserDBID(c), provider)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "audits": items})
}

func (h *Handler) get(c *gin.Context) {
	provider, ok := providerFromQuery(c)
	if !ok {
		return
	}

	a, err := h.repo.GetAudit(c.Request.Context(), auth.UserDBID(c), provider, c.Param("audit_id"))
	if err != nil {
		if errors.Is(err, domain.ErrAuditNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "audit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "audit": a})
}

func (h *Handler) findings(c *gin.Context) {
	provider, ok := providerFromQuery(c)
	if !ok {
		return
	}

	items, err := h.repo.ListFindings(c.Request.Context(), auth.UserDBID(c), provider, c.Param("audit_id"))
	if err != nil {
		if errors.Is(err, domain.ErrAuditNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "audit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "findings": items})
}

func (h *Handler) summary(c *gin.Context) {
	provider, ok := providerFromQuery(c)
	if !ok {
		return
	}

	sum, err := h.repo.GetSummary(c.Request.Context(), auth.UserDBID(c), provider, c.Param("audit_id"))
	if err != nil {
		if errors.Is(err, domain.ErrAuditNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "audit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "summary": sum})
}

type historyItem struct {
	AuditID   string          `json:"audit_id"`
	Provider  domain.Provider `json:"provider"`
	Critical  int             `json:"critical"`
	High      int             `json:"high"`
	Medium    int             `json:"medium"`
	Low       int             `json:"low"`
	Total     int             `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

func (h *Handler) listHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "history store not configured"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	snaps, err := h.history.ListRecent(auth.UserDBID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	items := make([]historyItem, 0, len(snaps))
	for _, s := range snaps {
		items = append(items, historyItem{
			AuditID:   s.AuditID,
			Provider:  s.Provider,
			Critical:  s.Critical,
			High:      s.High,
			Medium:    s.Medium,
			Low:       s.Low,
			Total:     s.Total,
			CreatedAt: s.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "history": items})
}

type scanReq struct {
	AccountID string `json:"account_id"`
}

func (h *Handler) startScan(c *gin.Context) {
	var req scanReq
	if err := c.ShouldBindJSON(&req); err != nil || req.AccountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	audit, sum, err := h.scan.RunScan(c.Request.Context(), auth.UserDBID(c), req.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "audit": audit, "summary": sum})
}
