package db

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Leganyst/field-booking/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate приводит схему к актуальной версии.
// Postgres: через goose (частичные индексы и exclusion constraint),
// sqlite: через AutoMigrate моделей.
func Migrate(ctx context.Context, gormDB *gorm.DB, logger *zap.Logger) error {
	if gormDB.Dialector.Name() != "postgres" {
		logger.Info("applying gorm auto-migrations", zap.String("dialect", gormDB.Dialector.Name()))
		if err := model.AutoMigrate(gormDB.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("sql DB: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	logger.Info("applying database migrations")
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}
	logger.Info("migrations applied", zap.Int64("version", version))
	return nil
}
