package router

import (
	"github.com/bravo68web/scribe/internal/transport/http/handler"
)

func (r *Router) authRouter() {
	h := handler.NewAuthHandler(r.Deps.AuthService, !r.server.Config.IsDevelopment())

	api := r.server.Group("/api")
	{
		api.GET("/oauth/url", h.OAuthURL)
		api.GET("/oauth", h.OAuthCallback)
		api.GET("/logout", h.Logout)
	}
}
