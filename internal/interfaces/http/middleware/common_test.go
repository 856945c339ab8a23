package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/webstack/backend/internal/infrastructure/config"
	"github.com/webstack/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/customers", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/customers", nil))

		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("keeps the client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", w.Body.String())
	})

	t.Run("replaces an oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", MaxRequestIDLength+1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Len(t, w.Body.String(), 36)
	})
}

func TestCORS(t *testing.T) {
	newRouter := func(origins ...string) *gin.Engine {
		router := gin.New()
		router.Use(CORS(config.HTTPConfig{CORSAllowOrigins: origins}))
		router.GET("/customers", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	t.Run("no origins configured sets no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		req.Header.Set("Origin", "http://malicious.com")
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allows a listed origin with credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		newRouter("http://localhost:3000").ServeHTTP(w, req)

		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("rejects an unlisted origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		req.Header.Set("Origin", "http://evil.com")
		w := httptest.NewRecorder()
		newRouter("http://localhost:3000").ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("answers preflight requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/customers", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
		w := httptest.NewRecorder()
		newRouter("http://localhost:3000").ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
	})

	t.Run("wildcard allows any origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		req.Header.Set("Origin", "http://anywhere.example")
		w := httptest.NewRecorder()
		newRouter("*").ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSecureHeaders(t *testing.T) {
	serveWith := func(cfg HeadersConfig) http.Header {
		router := gin.New()
		router.Use(SecureHeaders(cfg))
		router.GET("/h2", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/h2", nil))
		return w.Header()
	}

	t.Run("frame options disabled by default", func(t *testing.T) {
		h := serveWith(DefaultHeadersConfig())

		assert.Empty(t, h.Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
		assert.NotEmpty(t, h.Get("Permissions-Policy"))
		assert.Empty(t, h.Get("Strict-Transport-Security"))
	})

	t.Run("frame options from security config", func(t *testing.T) {
		h := serveWith(HeadersConfigFrom(config.SecurityConfig{FrameOptions: "sameorigin"}))
		assert.Equal(t, "SAMEORIGIN", h.Get("X-Frame-Options"))

		h = serveWith(HeadersConfigFrom(config.SecurityConfig{FrameOptions: "DISABLED"}))
		assert.Empty(t, h.Get("X-Frame-Options"))
	})

	t.Run("hsts", func(t *testing.T) {
		cfg := DefaultHeadersConfig()
		cfg.HSTSEnabled = true
		cfg.HSTSMaxAge = 600
		h := serveWith(cfg)

		assert.Equal(t, "max-age=600; includeSubDomains", h.Get("Strict-Transport-Security"))
	})
}

func TestNoRouteAndNoMethod(t *testing.T) {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(RequestID())
	router.NoRoute(NoRoute())
	router.NoMethod(NoMethod())
	router.GET("/customers", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	assert.NotEmpty(t, resp.RequestID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/customers", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
