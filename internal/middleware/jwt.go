package middleware

import (
	"net/http"
	"strings"

	"github.com/contactdesk/contactdesk/internal/model"
	"github.com/contactdesk/contactdesk/internal/service"
	"github.com/contactdesk/contactdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextKeyUser is the gin context key the authenticated user is stored under
const ContextKeyUser = "current_user"

type JWTMiddleware struct {
	auth *service.AuthService
}

func NewJWTMiddleware(auth *service.AuthService) *JWTMiddleware {
	return &JWTMiddleware{auth: auth}
}

// RequireAuth validates the bearer access token and stores the resolved
// user in the gin context.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.GetLogger().Warn("Missing Authorization header",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "could not validate credentials",
			})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
			logger.GetLogger().Warn("Invalid Authorization header format",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "could not validate credentials",
			})
			c.Abort()
			return
		}

		user, err := m.auth.CurrentUser(c.Request.Context(), tokenParts[1])
		if err != nil {
			logger.GetLogger().Warn("Token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "could not validate credentials",
			})
			c.Abort()
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// CurrentUser reads the authenticated user placed in the context by
// RequireAuth. The second return is false when the route ran without it.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}
