package server

import (
	"github.com/gin-gonic/gin"

	"github.com/bravo68web/scribe/internal/config"
	"github.com/bravo68web/scribe/internal/infrastructure/database"
)

type Server struct {
	*gin.Engine

	Config *config.Config
	DB     *database.Database
}

// New creates the HTTP server shell around an already-initialized
// configuration and database
func New(cfg *config.Config, db *database.Database) *Server {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	return &Server{
		Engine: gin.New(),
		Config: cfg,
		DB:     db,
	}
}
