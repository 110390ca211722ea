package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bravo68web/shipyard/internal/domain/models"
	"github.com/bravo68web/shipyard/pkg/logger"
)

// AutoMigrate creates or updates the schema straight from the models.
// It is meant for development; production schemas go through Migrator.
func (d *Database) AutoMigrate(ctx context.Context) error {
	d.log.Info("Running GORM auto-migration")

	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// gen_random_uuid() lives in pgcrypto before PostgreSQL 13
		if err := tx.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
			return fmt.Errorf("failed to enable pgcrypto: %w", err)
		}

		if err := tx.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("failed to auto-migrate models: %w", err)
		}

		d.log.Info("Auto-migration completed",
			logger.Int("models", len(models.All())),
		)
		return nil
	})
}
