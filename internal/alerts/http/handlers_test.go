package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudguard-dev/cloudguard-backend/internal/alerts"
	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
	"github.com/cloudguard-dev/cloudguard-backend/internal/auth"
)

type fakeSettingsPort struct {
	stored *alerts.Settings
	getErr error
}

func (f *fakeSettingsPort) Get(context.Context, string) (*alerts.Settings, error) {
	return f.stored, f.getErr
}

func (f *fakeSettingsPort) Upsert(_ context.Context, _ string, s alerts.Settings) (*alerts.Settings, error) {
	f.stored = &s
	return &s, nil
}

type fakeDispatchPort struct {
	testDelivered bool
	testURL       string
	result        *alerts.DispatchResult
	err           error
	gotProvider   domain.Provider
	gotAuditID    string
	gotFindings   bool
}

func (f *fakeDispatchPort) SendTest(_ context.Context, url string) bool {
	f.testURL = url
	return f.testDelivered
}

func (f *fakeDispatchPort) DispatchAudit(_ context.Context, _ string, provider domain.Provider, auditID string, includeFindings bool) (*alerts.DispatchResult, error) {
	f.gotProvider = provider
	f.gotAuditID = auditID
	f.gotFindings = includeFindings
	return f.result, f.err
}

func newTestRouter(settings *fakeSettingsPort, svc *fakeDispatchPort, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(auth.CtxUserDBID, userID)
		}
	})
	New(settings, svc).Register(api)
	return r
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetSettings(t *testing.T) {
	t.Run("no saved row surfaces defaults", func(t *testing.T) {
		r := newTestRouter(&fakeSettingsPort{}, &fakeDispatchPort{}, "user-1")

		w := doJSON(r, http.MethodGet, "/api/v1/settings/alerts", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			OK       bool            `json:"ok"`
			Settings alerts.Settings `json:"settings"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.OK)
		assert.True(t, resp.Settings.AlertOnCritical)
		assert.True(t, resp.Settings.AlertOnHigh)
		assert.False(t, resp.Settings.Enabled)
	})

	t.Run("saved settings returned as is", func(t *testing.T) {
		port := &fakeSettingsPort{stored: &alerts.Settings{WebhookURL: "https://hooks.example.com/a", Enabled: true}}
		r := newTestRouter(port, &fakeDispatchPort{}, "user-1")

		w := doJSON(r, http.MethodGet, "/api/v1/settings/alerts", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "hooks.example.com")
	})

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		r := newTestRouter(&fakeSettingsPort{}, &fakeDispatchPort{}, "")

		w := doJSON(r, http.MethodGet, "/api/v1/settings/alerts", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUpdateSettings(t *testing.T) {
	t.Run("valid update persists", func(t *testing.T) {
		port := &fakeSettingsPort{}
		r := newTestRouter(port, &fakeDispatchPort{}, "user-1")

		w := doJSON(r, http.MethodPut, "/api/v1/settings/alerts", gin.H{
			"webhook_url":       " https://hooks.example.com/x ",
			"enabled":           true,
			"alert_on_critical": true,
			"alert_on_high":     false,
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, port.stored)
		assert.Equal(t, "https://hooks.example.com/x", port.stored.WebhookURL)
		assert.False(t, port.stored.AlertOnHigh)
	})

	t.Run("non-http webhook url is rejected", func(t *testing.T) {
		port := &fakeSettingsPort{}
		r := newTestRouter(port, &fakeDispatchPort{}, "user-1")

		for _, bad := range []string{"ftp://example.com/x", "not a url", "https://"} {
			w := doJSON(r, http.MethodPut, "/api/v1/settings/alerts", gin.H{"webhook_url": bad})
			assert.Equal(t, http.StatusBadRequest, w.Code, "url %q", bad)
		}
		assert.Nil(t, port.stored)
	})

	t.Run("empty webhook url is allowed to clear the integration", func(t *testing.T) {
		port := &fakeSettingsPort{}
		r := newTestRouter(port, &fakeDispatchPort{}, "user-1")

		w := doJSON(r, http.MethodPut, "/api/v1/settings/alerts", gin.H{"webhook_url": "", "enabled": false})
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, port.stored)
		assert.Empty(t, port.stored.WebhookURL)
	})
}

func TestTestAlert(t *testing.T) {
	t.Run("reports delivery outcome without failing the request", func(t *testing.T) {
		svc := &fakeDispatchPort{testDelivered: false}
		r := newTestRouter(&fakeSettingsPort{}, svc, "user-1")

		w := doJSON(r, http.MethodPost, "/api/v1/settings/alerts/test", gin.H{"webhook_url": "https://hooks.example.com/t"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"delivered":false`)
		assert.Equal(t, "https://hooks.example.com/t", svc.testURL)
	})

	t.Run("invalid url is rejected before sending", func(t *testing.T) {
		svc := &fakeDispatchPort{}
		r := newTestRouter(&fakeSettingsPort{}, svc, "user-1")

		w := doJSON(r, http.MethodPost, "/api/v1/settings/alerts/test", gin.H{"webhook_url": "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, svc.testURL)
	})
}

func TestDispatch(t *testing.T) {
	t.Run("forwards provider, audit id and include flag", func(t *testing.T) {
		svc := &fakeDispatchPort{result: &alerts.DispatchResult{SummarySent: true, FindingsSent: 2}}
		r := newTestRouter(&fakeSettingsPort{}, svc, "user-1")

		w := doJSON(r, http.MethodPost, "/api/v1/audits/a1/alerts", gin.H{"provider": "aws", "include_findings": true})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, domain.ProviderAWS, svc.gotProvider)
		assert.Equal(t, "a1", svc.gotAuditID)
		assert.True(t, svc.gotFindings)
		assert.Contains(t, w.Body.String(), `"findings_sent":2`)
	})

	t.Run("unknown provider is a bad request", func(t *testing.T) {
		r := newTestRouter(&fakeSettingsPort{}, &fakeDispatchPort{}, "user-1")

		w := doJSON(r, http.MethodPost, "/api/v1/audits/a1/alerts", gin.H{"provider": "oracle"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing audit maps to 404", func(t *testing.T) {
		svc := &fakeDispatchPort{err: domain.ErrAuditNotFound}
		r := newTestRouter(&fakeSettingsPort{}, svc, "user-1")

		w := doJSON(r, http.MethodPost, "/api/v1/audits/missing/alerts", gin.H{"provider": "gcp"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unconfigured integration reported as skipped", func(t *testing.T) {
		svc := &fakeDispatchPort{result: &alerts.DispatchResult{Skipped: true, Reason: "webhook integration not configured"}}
		r := newTestRouter(&fakeSettingsPort{}, svc, "user-1")

		w := doJSON(r, http.MethodPost, "/api/v1/audits/a1/alerts", gin.H{"provider": "azure"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"skipped":true`)
	})
}
