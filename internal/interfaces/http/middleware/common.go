// Package middleware provides the HTTP middleware of the webstack server.
package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/webstack/backend/internal/infrastructure/config"
	"github.com/webstack/backend/internal/interfaces/http/dto"
)

// Context keys shared with the handlers and the access log
const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// MaxRequestIDLength bounds a client supplied request id
const MaxRequestIDLength = 128

// GetRequestID returns the id assigned by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// abortWithError writes the error envelope and stops the chain
func abortWithError(c *gin.Context, code, message string) {
	code = dto.NormalizeErrorCode(code)
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message, GetRequestID(c)))
}

// RequestID adds a unique request ID to each request.
// A client supplied X-Request-ID is kept when it is short enough.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > MaxRequestIDLength {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Next()
	}
}

// CORS builds the cross-origin middleware from the HTTP settings.
// With no allowed origins the middleware is a no-op.
func CORS(cfg config.HTTPConfig) gin.HandlerFunc {
	if len(cfg.CORSAllowOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	corsCfg := cors.Config{
		AllowMethods:  cfg.CORSAllowMethods,
		AllowHeaders:  cfg.CORSAllowHeaders,
		ExposeHeaders: []string{RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}
	if len(corsCfg.AllowMethods) == 0 {
		corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(corsCfg.AllowHeaders) == 0 {
		corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader}
	}
	for _, o := range cfg.CORSAllowOrigins {
		if o == "*" {
			corsCfg.AllowAllOrigins = true
			break
		}
	}
	if !corsCfg.AllowAllOrigins {
		corsCfg.AllowOrigins = cfg.CORSAllowOrigins
		corsCfg.AllowCredentials = true
	}
	return cors.New(corsCfg)
}

// FrameOptionsDisabled turns the X-Frame-Options header off
const FrameOptionsDisabled = "disabled"

// HeadersConfig holds configuration for security headers
type HeadersConfig struct {
	// FrameOptions is DENY, SAMEORIGIN or disabled
	FrameOptions string

	HSTSEnabled           bool
	HSTSMaxAge            int // in seconds
	HSTSIncludeSubdomains bool

	PermissionsPolicy string
}

// DefaultHeadersConfig keeps frames allowed so the database console can be embedded
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		FrameOptions:          FrameOptionsDisabled,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		PermissionsPolicy:     "accelerometer=(), camera=(), geolocation=(), gyroscope=(), magnetometer=(), microphone=(), payment=(), usb=()",
	}
}

// HeadersConfigFrom applies the security settings on top of the defaults
func HeadersConfigFrom(cfg config.SecurityConfig) HeadersConfig {
	h := DefaultHeadersConfig()
	if cfg.FrameOptions != "" {
		h.FrameOptions = cfg.FrameOptions
	}
	return h
}

// SecureHeaders adds security headers to responses
func SecureHeaders(cfg HeadersConfig) gin.HandlerFunc {
	frameOptions := strings.ToUpper(cfg.FrameOptions)
	if strings.EqualFold(cfg.FrameOptions, FrameOptionsDisabled) {
		frameOptions = ""
	}

	var hstsValue string
	if cfg.HSTSEnabled {
		hstsValue = fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hstsValue += "; includeSubDomains"
		}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if frameOptions != "" {
			h.Set("X-Frame-Options", frameOptions)
		}
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if hstsValue != "" {
			h.Set("Strict-Transport-Security", hstsValue)
		}
		if cfg.PermissionsPolicy != "" {
			h.Set("Permissions-Policy", cfg.PermissionsPolicy)
		}
		c.Next()
	}
}

// NoRoute answers unknown routes with the error envelope
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithError(c, dto.ErrCodeNotFound, fmt.Sprintf("No route for %s %s", c.Request.Method, c.Request.URL.Path))
	}
}

// NoMethod answers known routes called with the wrong method
func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed,
			dto.NewErrorResponse(dto.ErrCodeBadRequest, "Method not allowed", GetRequestID(c)))
	}
}
