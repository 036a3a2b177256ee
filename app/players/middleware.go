package players

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/roundbet/app/api"
	"github.com/joefazee/roundbet/internal/security"
	"github.com/joefazee/roundbet/models"
)

const (
	AuthorizationHeaderKey  = "Authorization"
	AuthorizationTypeBearer = "Bearer"
)

// AuthMiddleware verifies the bearer token and puts the subject and its
// permissions on the context.
func AuthMiddleware(tokenMaker security.Maker, authService AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeaderKey)
		if authHeader == "" {
			api.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 || fields[0] != AuthorizationTypeBearer {
			api.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		payload, err := tokenMaker.VerifyToken(fields[1])
		if err != nil {
			api.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		permissions, err := authService.GetPermissions(c.Request.Context(), payload.UserID)
		if err != nil {
			if errors.Is(err, models.ErrPlayerInactive) {
				api.ForbiddenResponse(c, "Account is inactive")
			} else {
				api.ForbiddenResponse(c, "Could not retrieve user permissions")
			}
			c.Abort()
			return
		}

		c.Set(api.ContextUserID, payload.UserID)
		c.Set(api.ContextPermissions, permissions)
		c.Next()
	}
}
