// Command reset-password sets a staff account's password and ends its
// sessions.
//
//	reset-password <username-or-email> <new-password>
package main

import (
	"context"
	"os"

	"go-flowershop-admin/internal/repository"
	"go-flowershop-admin/internal/service"
	"go-flowershop-admin/pkg/config"
	"go-flowershop-admin/pkg/database"
	"go-flowershop-admin/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	logg := logger.New(logger.Options{ServiceName: "flowershop-reset-password", Console: true})
	ctx := context.Background()

	if len(os.Args) != 3 {
		logg.Warn(ctx, "usage: reset-password <username-or-email> <new-password>")
		os.Exit(2)
	}
	login, password := os.Args[1], os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "load config", err)
		os.Exit(1)
	}
	db, err := database.Open(cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "open database", err)
		os.Exit(1)
	}

	users := service.NewUserService(
		repository.NewUserRepo(db),
		repository.NewPrivilegeRepo(db),
		repository.NewRoleRepo(db),
		logg,
	)
	user, err := users.ResetPassword(ctx, login, password)
	if err != nil {
		logg.Error(logg.WithField(ctx, "login", login), "reset password", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "username", user.Username), "password reset, existing sessions ended")
}
