package router

import (
	"github.com/bravo68web/scribe/internal/domain/models"
	"github.com/bravo68web/scribe/internal/transport/http/handler"
)

func (r *Router) repoRouter() {
	h := handler.NewRepoHandler(r.Deps.RepoService)

	api := r.server.Group("/api")
	{
		api.GET("/branches", r.auth.RequireAuth(), h.ListBranches)
		api.PUT("/checkout/branches/:name", r.auth.RequireAuth(), h.Checkout)
		api.POST("/pull/:branch", r.auth.RequirePermission(models.PermissionManageContent), h.Pull)
		api.GET("/current-branch", r.auth.RequireAuth(), h.CurrentBranch)

		// Rebuilding the clone discards local state, admin territory
		api.POST("/reclone", r.auth.RequirePermission(models.PermissionManageUsers), h.Reclone)
	}
}
