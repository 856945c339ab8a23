package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// UnmatchedRoute labels requests that hit no registered route
const UnmatchedRoute = "unmatched"

// HTTPMetrics records request level metrics
type HTTPMetrics interface {
	RequestStarted() func()
	ObserveRequest(method, route string, status int, duration time.Duration)
}

// Metrics returns a Gin middleware that records request count, latency and in-flight requests.
// The route pattern is used as label to keep cardinality bounded.
func Metrics(m HTTPMetrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		done := m.RequestStarted()
		start := time.Now()

		c.Next()

		done()
		m.ObserveRequest(c.Request.Method, routePattern(c), c.Writer.Status(), time.Since(start))
	}
}

func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return UnmatchedRoute
}
