package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bravo68web/scribe/internal/config"
	"github.com/bravo68web/scribe/pkg/logger"
)

// Connection pool settings. SQLite serializes writers, so the pool is
// kept deliberately small.
const (
	maxIdleConns    = 2
	maxOpenConns    = 4
	connMaxLifetime = time.Hour
)

// Database wraps the GORM database connection
type Database struct {
	db     *gorm.DB
	config *config.DatabaseConfig
	log    *logger.Logger
}

// NewDatabase opens the embedded SQLite database, creating the parent
// directory and the file on first run
func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	log := logger.Get().WithFields(logger.Component("database"))

	log.Info("Initializing database connection...",
		logger.String("path", cfg.Path),
	)

	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Keep GORM quiet; application logging happens at the repository layer
	gormLogger := gormlogger.Default.LogMode(gormlogger.Silent)

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", cfg.Path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		log.Error("Failed to open database",
			logger.Error(err),
			logger.String("path", cfg.Path),
		)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	database := &Database{
		db:     db,
		config: cfg,
		log:    log,
	}

	if err := database.Ping(context.Background()); err != nil {
		log.Error("Failed to ping database",
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established successfully",
		logger.String("path", cfg.Path),
	)

	return database, nil
}

// NewDatabaseInMemory opens a throwaway in-memory database, used by tests
func NewDatabaseInMemory() (*Database, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	// A second connection would see a different empty in-memory database
	sqlDB.SetMaxOpenConns(1)

	return &Database{
		db:     db,
		config: &config.DatabaseConfig{Path: ":memory:"},
		log:    logger.Get().WithFields(logger.Component("database")),
	}, nil
}

// DB returns the underlying GORM database instance
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Ping checks the database connection
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		d.log.Error("Database ping failed",
			logger.Error(err),
		)
		return err
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	d.log.Info("Closing database connection...")

	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		d.log.Error("Failed to close database connection",
			logger.Error(err),
		)
		return err
	}

	return nil
}
