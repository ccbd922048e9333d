package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cloudguard-dev/cloudguard-backend/internal/accounts"
	"github.com/cloudguard-dev/cloudguard-backend/internal/accounts/verify"
	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
	"github.com/cloudguard-dev/cloudguard-backend/internal/auth"
)

type createReq struct {
	Provider string `json:"provider"`
	Name     string `json:"name"`

	AWSAccessKeyID string `json:"aws_access_key_id"`
	AWSSecretKey   string `json:"aws_secret_key"`
	AWSRegion      string `json:"aws_region"`

	GCPProjectID       string `json:"gcp_project_id"`
	GCPCredentialsJSON string `json:"gcp_credentials_json"`

	AzureTenantID       string `json:"azure_tenant_id"`
	AzureClientID       string `json:"azure_client_id"`
	AzureClientSecret   string `json:"azure_client_secret"`
	AzureSubscriptionID string `json:"azure_subscription_id"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	provider, ok := domain.ParseProvider(req.Provider)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown provider"})
		return
	}

	a := &accounts.Account{
		UserID:   auth.UserDBID(c),
		Provider: provider,
		Name:     strings.TrimSpace(req.Name),

		AWSAccessKeyID: req.AWSAccessKeyID,
		AWSSecretKey:   req.AWSSecretKey,
		AWSRegion:      req.AWSRegion,

		GCPProjectID:       req.GCPProjectID,
		GCPCredentialsJSON: req.GCPCredentialsJSON,

		AzureTenantID:       req.AzureTenantID,
		AzureClientID:       req.AzureClientID,
		AzureClientSecret:   req.AzureClientSecret,
		AzureSubscriptionID: req.AzureSubscriptionID,
	}
	if err := h.repo.Create(c.Request.Context(), a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "account": a})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context(), auth.UserDBID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "accounts": items})
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.repo.Delete(c.Request.Context(), auth.UserDBID(c), c.Param("account_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "account not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// verify re-checks the stored credential against the provider and flips the
// verified flag on success. A provider-side rejection is reported in the
// response body, not as a 5xx.
func (h *Handler) verify(c *gin.Context) {
	userID := auth.UserDBID(c)

	a, err := h.repo.Get(c.Request.Context(), userID, c.Param("account_id"))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	v, err := verify.ForProvider(a.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	identity, err := v.Verify(c.Request.Context(), *a)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "verified": false, "error": err.Error()})
		return
	}

	if err := h.repo.MarkVerified(c.Request.Context(), userID, a.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "verified": true, "identity": identity})
}
