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
	group := r.Group("/api/v1/accounts")
	group.Use(func(c *gin.Context) { c.Set(auth.CtxUserDBID, "user-1") })
	New(nil).Register(group)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateValidation(t *testing.T) {
	r := newValidationRouter()

	t.Run("missing name", func(t *testing.T) {
		w := postJSON(r, "/api/v1/accounts", `{"provider":"aws","name":"  "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid body")
	})

	t.Run("malformed json", func(t *testing.T) {
		w := postJSON(r, "/api/v1/accounts", `{`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown provider", func(t *testing.T) {
		w := postJSON(r, "/api/v1/accounts", `{"provider":"digitalocean","name":"prod"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "unknown provider")
	})
}
