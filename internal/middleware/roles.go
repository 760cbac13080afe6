package middleware

import (
	"net/http"

	"github.com/contactdesk/contactdesk/internal/model"
	"github.com/contactdesk/contactdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequireRoles rejects requests whose authenticated user does not hold
// one of the allowed roles. Must run after RequireAuth.
func RequireRoles(allowed ...model.Role) gin.HandlerFunc {
	roles := make(map[model.Role]bool, len(allowed))
	for _, role := range allowed {
		roles[role] = true
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "could not validate credentials",
			})
			c.Abort()
			return
		}

		if !roles[user.Role] {
			logger.GetLogger().Warn("Role check failed",
				zap.String("email", user.Email),
				zap.String("role", string(user.Role)),
				zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusForbidden, gin.H{
				"message": "operation not permitted",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
