package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling label names.
const (
	ProfilingLabelMethod     = "method"
	ProfilingLabelRoute      = "route"
	ProfilingLabelController = "controller"
	ProfilingLabelRole       = "role"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled   bool
	SkipPaths []string
}

// DefaultProfilingConfig skips the health probes.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:   true,
		SkipPaths: []string{"/health", "/health/live", "/health/ready"},
	}
}

// Profiling tags the goroutine handling a request with Pyroscope labels so
// CPU and allocation profiles can be split by route and role. Run it after
// AccessGate so the role is known.
func Profiling(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		labels := profilingLabels(c)
		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(labels...), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// profilingLabels returns key/value pairs for pyroscope.Labels.
func profilingLabels(c *gin.Context) []string {
	labels := []string{ProfilingLabelMethod, c.Request.Method}
	if route := c.FullPath(); route != "" {
		labels = append(labels, ProfilingLabelRoute, route)
		if controller := controllerFromRoute(route); controller != "" {
			labels = append(labels, ProfilingLabelController, controller)
		}
	}
	if session := GetSession(c); session != nil {
		labels = append(labels, ProfilingLabelRole, session.Role.String())
	}
	return labels
}

// controllerFromRoute names the resource a route serves:
// "/dashboard/spb/:id/print" -> "spb", "/dashboard" -> "dashboard",
// "/api/v1/auth/refresh" -> "auth".
func controllerFromRoute(route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	for i, part := range parts {
		if part == "" || strings.HasPrefix(part, ":") || strings.HasPrefix(part, "*") {
			continue
		}
		if part == "api" || isVersionSegment(part) {
			continue
		}
		if part == "dashboard" && i+1 < len(parts) {
			continue
		}
		return part
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}
