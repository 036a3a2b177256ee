package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/roundbet/internal/logger"
	"github.com/joefazee/roundbet/internal/metrics"
)

// Context keys set by the auth middleware.
const (
	ContextUserID      = "userID"
	ContextPermissions = "permissions"
)

func Can(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		permissionsValue, exists := c.Get(ContextPermissions)
		if !exists {
			ForbiddenResponse(c, "Access Denied: Permissions not found in context")
			c.Abort()
			return
		}

		permissions, ok := permissionsValue.([]string)
		if !ok {
			ForbiddenResponse(c, "Access Denied: Invalid permissions data in context")
			c.Abort()
			return
		}

		for _, p := range permissions {
			if p == permission {
				c.Next()
				return
			}
		}

		ForbiddenResponse(c, "Access Denied: You do not have the required permission")
		c.Abort()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), elapsed)

		props := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        route,
			"status":      c.Writer.Status(),
			"duration_ms": elapsed.Milliseconds(),
			"client_ip":   c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			l.Error(c.Errors.Last(), props)
			return
		}
		l.Debug("request", props)
	}
}
