package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/cloudguard-dev/cloudguard-backend/internal/auth"
)

func newValidationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) { c.Set(auth.CtxUserDBID, "user-1") })
	New(nil, nil, nil).Register(api)
	return r
}

func TestProviderQueryValidation(t *testing.T) {
	r := newValidationRouter()

	paths := []string{
		"/api/v1/audits",
		"/api/v1/audits/a1",
		"/api/v1/audits/a1/findings",
		"/api/v1/audits/a1/summary",
	}

	t.Run("missing provider", func(t *testing.T) {
		for _, path := range paths {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code, path)
			assert.Contains(t, w.Body.String(), "aws, gcp or azure")
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/audits?provider=oracle", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListHistoryWithoutStore(t *testing.T) {
	r := newValidationRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStartScanValidation(t *testing.T) {
	r := newValidationRouter()

	for name, body := range map[string]string{
		"empty body":         "",
		"malformed json":     "{",
		"missing account id": `{"account_id":""}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
