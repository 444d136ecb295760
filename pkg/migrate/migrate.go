package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/pkg/config"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

const dir = "migrations"

// Run executes a goose command (up, down, status, version, redo, reset)
// against the embedded Postgres migrations.
func Run(ctx context.Context, db *sql.DB, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// Up brings the schema to the latest version. SQLite databases (dev and
// tests) are migrated from the GORM models instead of the SQL files.
func Up(ctx context.Context, db *gorm.DB, driver string) error {
	if driver == config.DriverSQLite {
		return AutoMigrate(ctx, db)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	return Run(ctx, sqlDB, "up")
}

func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
