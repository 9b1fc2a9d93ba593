package middleware

import (
	"context"

	"github.com/erp/vendorledger/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling tags CPU samples taken while serving a request with its route and
// method. Paths in skipPaths are served without labels.
func Profiling(enabled bool, skipPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled || skipped(c.Request.URL.Path, skipPaths) {
			c.Next()
			return
		}
		labels := map[string]string{
			"route":  c.FullPath(),
			"method": c.Request.Method,
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
