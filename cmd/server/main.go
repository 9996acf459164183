package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/bravo68web/scribe/internal/config"
	"github.com/bravo68web/scribe/internal/infrastructure/database"
	"github.com/bravo68web/scribe/internal/injectable"
	"github.com/bravo68web/scribe/internal/server"
	"github.com/bravo68web/scribe/internal/transport/http/router"
	"github.com/bravo68web/scribe/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cmd := &cli.Command{
		Name:  "scribe",
		Usage: "Git-backed documentation editing server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the configuration file",
				Sources: cli.EnvVars("SCRIBE_CONFIG"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd.String("config"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.IsDevelopment(),
		AddCaller:   true,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.SyncGlobal()

	log := logger.Get()

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	deps, err := injectable.LoadDependencies(ctx, cfg, db)
	if err != nil {
		return err
	}

	srv := server.New(cfg, db)
	router.NewRouter(srv, deps).RegisterRoutes()

	httpServer := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           srv.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", logger.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Info("Shutting down...", logger.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info("Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
