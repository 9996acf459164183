package router

import (
	"github.com/bravo68web/scribe/internal/transport/http/handler"
)

func (r *Router) healthRouter() {
	r.server.GET("/health", handler.HealthHandler())
}
