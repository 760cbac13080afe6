package router

import (
	"github.com/contactdesk/contactdesk/internal/middleware"
	"github.com/contactdesk/contactdesk/internal/model"
	"github.com/gin-gonic/gin"
)

func (r *Router) contactRoutes(api *gin.RouterGroup) {
	contacts := api.Group("/contacts")
	{
		contacts.Use(r.jwtMw.RequireAuth())
		{
			contacts.GET("", r.contactHandler.List)
			contacts.POST("", r.contactHandler.Create)

			// Every user's contacts, moderators and admins only
			contacts.GET("/all",
				middleware.RequireRoles(model.RoleModerator, model.RoleAdmin),
				r.contactHandler.ListAll)

			contacts.GET("/search/:query", r.contactHandler.Search)
			contacts.GET("/birthdays", r.contactHandler.UpcomingBirthdays)

			contacts.GET("/:id", r.contactHandler.Get)
			contacts.PUT("/:id", r.contactHandler.Update)
			contacts.DELETE("/:id", r.contactHandler.Delete)
		}
	}
}
