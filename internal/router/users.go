package router

import (
	"time"

	"github.com/contactdesk/contactdesk/internal/middleware"
	"github.com/gin-gonic/gin"
)

func (r *Router) userRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	{
		users.Use(r.jwtMw.RequireAuth())

		// Profile reads and avatar writes carry a much tighter per-IP
		// limit than the rest of the API, one window per route.
		profileWindow := time.Duration(r.Config.RateLimit.ProfileDuration) * time.Second
		{
			users.GET("/me",
				middleware.RateLimit(r.Config.RateLimit.ProfileRequest, profileWindow),
				r.userHandler.Me)
			users.PATCH("/avatar",
				middleware.RateLimit(r.Config.RateLimit.ProfileRequest, profileWindow),
				r.userHandler.UpdateAvatar)
		}
	}
}
