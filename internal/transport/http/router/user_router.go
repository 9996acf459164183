package router

import (
	"github.com/bravo68web/scribe/internal/domain/models"
	"github.com/bravo68web/scribe/internal/transport/http/handler"
)

func (r *Router) userRouter() {
	users := handler.NewUserHandler(r.Deps.UserService)
	groups := handler.NewGroupHandler(r.Deps.GroupService)

	manageUsers := r.auth.RequirePermission(models.PermissionManageUsers)

	api := r.server.Group("/api")
	{
		api.GET("/users/me", r.auth.RequireAuth(), users.Me)
		api.DELETE("/users/me", r.auth.RequireAuth(), users.DeleteMe)

		api.GET("/users", manageUsers, users.ListUsers)
		api.DELETE("/users/:id", manageUsers, users.DeleteUser)
		api.POST("/users/groups/:id", manageUsers, users.AddToGroup)
		api.DELETE("/users/groups/:id", manageUsers, users.RemoveFromGroup)

		api.GET("/groups", manageUsers, groups.ListGroups)
		api.POST("/groups", manageUsers, groups.CreateGroup)
		api.DELETE("/groups/:id", manageUsers, groups.DeleteGroup)
		api.PUT("/groups/:id/permissions", manageUsers, groups.ReplacePermissions)
	}
}
