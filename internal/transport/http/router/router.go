package router

import (
	"github.com/gin-contrib/cors"

	"github.com/bravo68web/scribe/internal/injectable"
	"github.com/bravo68web/scribe/internal/server"
	"github.com/bravo68web/scribe/internal/transport/http/middleware"
)

type Router struct {
	server *server.Server
	Deps   *injectable.Dependencies

	auth *middleware.AuthMiddleware
}

// NewRouter creates a new Router instance.
func NewRouter(s *server.Server, deps *injectable.Dependencies) *Router {
	return &Router{
		server: s,
		Deps:   deps,
		auth:   middleware.NewAuthMiddleware(deps.AuthService, deps.PermissionService),
	}
}

// RegisterRoutes sets up the routes and middleware for the server.
func (r *Router) RegisterRoutes() {
	r.server.Use(middleware.RecoveryMiddleware())
	r.server.Use(middleware.LoggerMiddleware())

	// Credentials (the session cookie) cannot be combined with a wildcard
	// origin, so origins are reflected instead
	r.server.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.healthRouter()
	r.authRouter()
	r.repoRouter()
	r.contentRouter()
	r.pullRouter()
	r.webhookRouter()
	r.userRouter()
}
