package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bravo68web/shipyard/internal/config"
	"github.com/bravo68web/shipyard/pkg/logger"
)

// Connection pool settings
const (
	maxIdleConns    = 10
	maxOpenConns    = 100
	connMaxLifetime = time.Hour
	connMaxIdleTime = 10 * time.Minute
)

// Database wraps the GORM database connection
type Database struct {
	db     *gorm.DB
	config *config.DatabaseConfig
	log    *logger.Logger
}

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	log := logger.Get().WithFields(logger.Component("database"))

	log.Info("Initializing database connection...",
		logger.String("target", cfg.Target()),
		logger.Bool("from_url", cfg.ConnURL != ""),
	)

	gormLogger := gormlogger.Default.LogMode(gormlogger.Silent)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: true,
		// maps unique violations to gorm.ErrDuplicatedKey for the repositories
		TranslateError: true,
	})
	if err != nil {
		log.Error("Failed to connect to database",
			logger.Error(err),
			logger.String("target", cfg.Target()),
		)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Debug("Database connection established, configuring connection pool...")

	// Get underlying SQL DB and configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Failed to get underlying SQL DB",
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	log.Debug("Connection pool configured",
		logger.Int("max_idle_conns", maxIdleConns),
		logger.Int("max_open_conns", maxOpenConns),
		logger.Duration("conn_max_lifetime", connMaxLifetime),
		logger.Duration("conn_max_idle_time", connMaxIdleTime),
	)

	database := &Database{
		db:     db,
		config: cfg,
		log:    log,
	}

	// Verify connection
	log.Debug("Verifying database connection with ping...")
	if err := database.Ping(context.Background()); err != nil {
		log.Error("Failed to ping database",
			logger.Error(err),
		)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established successfully",
		logger.String("target", cfg.Target()),
	)

	return database, nil
}

// DB returns the underlying GORM database instance
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Ping checks the database connection
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		d.log.Error("Failed to get underlying SQL DB for ping",
			logger.Error(err),
		)
		return fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		d.log.Error("Database ping failed",
			logger.Error(err),
		)
		return err
	}

	d.log.Debug("Database ping successful")
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	d.log.Info("Closing database connection...")

	sqlDB, err := d.db.DB()
	if err != nil {
		d.log.Error("Failed to get underlying SQL DB for close",
			logger.Error(err),
		)
		return fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		d.log.Error("Failed to close database connection",
			logger.Error(err),
		)
		return err
	}

	d.log.Info("Database connection closed successfully")
	return nil
}
