package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-flowershop-admin/internal/server"
	"go-flowershop-admin/internal/ws"
	"go-flowershop-admin/pkg/clock"
	"go-flowershop-admin/pkg/config"
	"go-flowershop-admin/pkg/database"
	"go-flowershop-admin/pkg/jwt"
	"go-flowershop-admin/pkg/logger"
	"go-flowershop-admin/pkg/migrate"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: "flowershop-api"}).Error(context.Background(), "load config", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "flowershop-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Console:     cfg.App.IsDev(),
	})
	ctx := context.Background()
	if envErr != nil {
		logg.Debug(ctx, ".env file not found, relying on process environment")
	}

	loc, err := cfg.App.Location()
	if err != nil {
		logg.Error(ctx, "load time zone", err)
		os.Exit(1)
	}

	// 2. Setup Database
	db, err := database.Open(cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "open database", err)
		os.Exit(1)
	}
	migrateFn := func() error { return migrate.Up(ctx, db, cfg.DB.Driver) }
	if cfg.DB.AutoMigrate {
		migrateFn = func() error { return migrate.AutoMigrate(ctx, db) }
	}
	if err := migrateFn(); err != nil {
		logg.Error(ctx, "migrate database", err)
		os.Exit(1)
	}

	// 3. Live feed
	hub := ws.NewHub(logg)
	go hub.Run()

	// 4. Wiring
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	clk := clock.Real{}
	srv := server.New(server.Options{
		DB:               db,
		Log:              logg,
		Clock:            clk,
		Location:         loc,
		Tokens:           jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL, clk.Now),
		AccessLog:        true,
		Registry:         registry,
		MetricsNamespace: cfg.Metrics.Namespace,
		Hub:              hub,
	})

	// 5. Seed privileges, roles and the admin account
	if err := srv.Services.Users.SeedAccounts(ctx, cfg.Admin); err != nil {
		logg.Error(ctx, "seed accounts", err)
		os.Exit(1)
	}

	// 6. Serve with graceful shutdown
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "http server listening")
		if err := srv.App.Listen(":" + cfg.App.Port); err != nil {
			logg.Error(ctx, "http server stopped", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info(ctx, "shutting down server")
	if err := srv.App.ShutdownWithTimeout(10 * time.Second); err != nil {
		logg.Error(ctx, "server forced to shutdown", err)
	}
	hub.Stop()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logg.Info(ctx, "server exited")
}
