package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// Health states
const (
	StatusUp   = "up"
	StatusDown = "down"
)

// Pinger checks a backing store
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx context.Context) error

// Ping calls f
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// SystemHandler handles health and build information endpoints
type SystemHandler struct {
	BaseHandler
	startTime    time.Time
	version      string
	checks       map[string]Pinger
	cacheBackend string
	timeout      time.Duration
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(version, cacheBackend string, checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{
		startTime:    time.Now(),
		version:      version,
		checks:       checks,
		cacheBackend: cacheBackend,
		timeout:      2 * time.Second,
	}
}

// HealthResponse reports the state of each backing store
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Cache     string            `json:"cache"`
	Version   string            `json:"version"`
	GoVersion string            `json:"goVersion"`
	Uptime    string            `json:"uptime"`
}

// Health pings every backing store. Any failure turns the answer into a 503.
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:    StatusUp,
		Checks:    make(map[string]string, len(h.checks)),
		Cache:     h.cacheBackend,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			resp.Checks[name] = StatusDown + ": " + err.Error()
			resp.Status = StatusDown
			continue
		}
		resp.Checks[name] = StatusUp
	}

	status := http.StatusOK
	if resp.Status != StatusUp {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
