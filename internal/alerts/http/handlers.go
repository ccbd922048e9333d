package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cloudguard-dev/cloudguard-backend/internal/alerts"
	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
	"github.com/cloudguard-dev/cloudguard-backend/internal/auth"
)

func (h *Handler) getSettings(c *gin.Context) {
	userID := auth.UserDBID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
		return
	}

	s, err := h.settings.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if s == nil {
		// No row yet: surface the defaults the UI shows before first save.
		s = &alerts.Settings{AlertOnCritical: true, AlertOnHigh: true}
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "settings": s})
}

type updateSettingsReq struct {
	WebhookURL      string `json:"webhook_url"`
	Enabled         bool   `json:"enabled"`
	AlertOnCritical bool   `json:"alert_on_critical"`
	AlertOnHigh     bool   `json:"alert_on_high"`
	EmailAddress    string `json:"email_address"`
	EmailEnabled    bool   `json:"email_enabled"`
	SlackWebhookURL string `json:"slack_webhook_url"`
	SlackEnabled    bool   `json:"slack_enabled"`
}

func (h *Handler) updateSettings(c *gin.Context) {
	userID := auth.UserDBID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
		return
	}

	var req updateSettingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if req.WebhookURL != "" && !validWebhookURL(req.WebhookURL) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "webhook_url must be an http(s) URL"})
		return
	}

	s, err := h.settings.Upsert(c.Request.Context(), userID, alerts.Settings{
		WebhookURL:      strings.TrimSpace(req.WebhookURL),
		Enabled:         req.Enabled,
		AlertOnCritical: req.AlertOnCritical,
		AlertOnHigh:     req.AlertOnHigh,
		EmailAddress:    strings.TrimSpace(req.EmailAddress),
		EmailEnabled:    req.EmailEnabled,
		SlackWebhookURL: strings.TrimSpace(req.SlackWebhookURL),
		SlackEnabled:    req.SlackEnabled,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "settings": s})
}

type testAlertReq struct {
	WebhookURL string `json:"webhook_url"`
}

func (h *Handler) testAlert(c *gin.Context) {
	userID := auth.UserDBID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
		return
	}

	var req testAlertReq
	if err := c.ShouldBindJSON(&req); err != nil || !validWebhookURL(req.WebhookURL) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "webhook_url must be an http(s) URL"})
		return
	}

	delivered := h.svc.SendTest(c.Request.Context(), strings.TrimSpace(req.WebhookURL))
	c.JSON(http.StatusOK, gin.H{"ok": true, "delivered": delivered})
}

type dispatchReq struct {
	Provider        string `json:"provider"`
	IncludeFindings bool   `json:"include_findings"`
}

func (h *Handler) dispatch(c *gin.Context) {
	userID := auth.UserDBID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
		return
	}

	var req dispatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	provider, ok := domain.ParseProvider(req.Provider)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown provider"})
		return
	}

	res, err := h.svc.DispatchAudit(c.Request.Context(), userID, provider, c.Param("audit_id"), req.IncludeFindings)
	if err != nil {
		if errors.Is(err, domain.ErrAuditNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "audit not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "result": res})
}

func validWebhookURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
