package router

import (
	"github.com/bravo68web/scribe/internal/transport/http/handler"
)

func (r *Router) webhookRouter() {
	h := handler.NewWebhookHandler(
		r.Deps.RepoService,
		r.server.Config.GitHub.WebhookSecret,
		r.server.Config.GitHub.WatchedBranches,
	)

	// Authenticated by signature, not by session
	r.server.POST("/api/hooks/github", h.Handle)
}
