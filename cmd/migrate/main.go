// Command migrate runs goose against the configured Postgres database.
//
//	migrate [up|down|status|version|redo|reset] [args...]
package main

import (
	"context"
	"database/sql"
	"os"

	"go-flowershop-admin/pkg/config"
	"go-flowershop-admin/pkg/logger"
	"go-flowershop-admin/pkg/migrate"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	logg := logger.New(logger.Options{ServiceName: "flowershop-migrate", Console: true})
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "load config", err)
		os.Exit(1)
	}
	if cfg.DB.Driver != config.DriverPostgres {
		logg.Warn(ctx, "goose migrations target postgres; sqlite databases migrate on API start")
		os.Exit(1)
	}

	command := "up"
	var args []string
	if len(os.Args) > 1 {
		command, args = os.Args[1], os.Args[2:]
	}

	db, err := sql.Open("pgx", cfg.DB.DSN)
	if err != nil {
		logg.Error(ctx, "open database", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrate.Run(ctx, db, command, args...); err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "command", command), "migration finished")
}
