package router

import (
	"github.com/bravo68web/scribe/internal/domain/models"
	"github.com/bravo68web/scribe/internal/transport/http/handler"
)

func (r *Router) pullRouter() {
	h := handler.NewPullRequestHandler(r.Deps.PullRequestService)

	api := r.server.Group("/api")
	{
		api.POST("/pulls", r.auth.RequirePermission(models.PermissionManageContent), h.CreatePull)
		api.PUT("/pulls/update", r.auth.RequirePermission(models.PermissionManageContent), h.UpdatePull)

		// Close authorization (author or Admin) lives in the service
		api.POST("/pull-requests/:number/close", r.auth.RequireAuth(), h.ClosePull)

		api.GET("/issues/:state", r.auth.RequireAuth(), h.ListIssues)
	}
}
