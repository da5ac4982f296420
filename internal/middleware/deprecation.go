package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var deprecatedRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "deprecated_api_requests_total",
		Help: "Requests served by the legacy v1 routes",
	},
	[]string{"method", "route"},
)

// DeprecationConfig configures the deprecation middleware
type DeprecationConfig struct {
	// SunsetDate is the date when the API will be removed (RFC 1123 format)
	SunsetDate string
	// Link to migration guide
	MigrationGuideURL string
}

// Deprecation marks every response of the group as deprecated and counts who still calls it.
// See: https://datatracker.ietf.org/doc/html/draft-ietf-httpapi-deprecation-header
func Deprecation(cfg DeprecationConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Deprecation", "true")
		if cfg.SunsetDate != "" {
			c.Header("Sunset", cfg.SunsetDate)
		}
		if cfg.MigrationGuideURL != "" {
			c.Header("Link", fmt.Sprintf(`<%s>; rel="deprecation"`, cfg.MigrationGuideURL))
		}
		deprecatedRequestsTotal.WithLabelValues(c.Request.Method, routeLabel(c)).Inc()
		c.Next()
	}
}

// routeLabel is the matched route template, never the raw path
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
