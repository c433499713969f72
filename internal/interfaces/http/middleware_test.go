package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetops/backend/internal/infrastructure/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGuardedRouter(verifier *auth.TokenVerifier) *gin.Engine {
	router := gin.New()
	router.Use(RequestContext(zap.NewNop()))
	router.GET("/ops/ping", RequireSuperAdmin(verifier), func(c *gin.Context) {
		principal := currentPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"subject": principal.Subject})
	})
	return router
}

func TestRequireSuperAdmin(t *testing.T) {
	verifier := auth.NewTokenVerifier("test-secret", "fleetops-auth")
	router := newGuardedRouter(verifier)

	t.Run("admits a platform operator", func(t *testing.T) {
		token, err := verifier.Issue(auth.Principal{Subject: "ops-1", SuperAdmin: true}, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/ops/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ops-1")
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ops/ping", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ops/ping", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("forbids a tenant-scoped caller", func(t *testing.T) {
		token, err := verifier.Issue(auth.Principal{Subject: "user-1", TenantID: uuid.New()}, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/ops/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRequestContext(t *testing.T) {
	router := gin.New()
	router.Use(RequestContext(zap.NewNop()))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("propagates the caller's request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	})

	t.Run("generates one when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})
}
