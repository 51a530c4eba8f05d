package migrate

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/ivdgroup/medlab-backend/pkg/config"
	"github.com/ivdgroup/medlab-backend/pkg/db"
	"github.com/ivdgroup/medlab-backend/pkg/logger"
)

// Up applies all pending SQL migrations from dir.
func Up(ctx context.Context, client *db.Client, dir string) error {
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// MaybeRunDev applies migrations at boot when the auto-migrate flag is set.
// Intended for development; production runs the migrate command explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if logg != nil {
		logg.Info(ctx, "running startup migrations")
	}
	return Up(ctx, client, "migrations")
}
