package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/diewo77/go-bookstore/auth"
	"github.com/diewo77/go-bookstore/internal/config"
	"github.com/diewo77/go-bookstore/internal/db"
	"github.com/diewo77/go-bookstore/internal/logging"
	"github.com/diewo77/go-bookstore/internal/policy"
	"github.com/diewo77/go-bookstore/internal/server"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Caller: cfg.Log.Caller})
	auth.SetSecret(cfg.App.SessionSecret)

	dbConn, err := db.Open(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.Migrate(dbConn, cfg.Database, cfg.App.Migrations); err != nil {
		logging.Fatal().Err(err).Msg("migration failed")
	}
	if *migrateOnlyFlag {
		logging.Info().Msg("migrations completed")
		return
	}

	if *seedOnlyFlag || cfg.App.Seed {
		if err := db.Seed(dbConn); err != nil {
			logging.Fatal().Err(err).Msg("seeding failed")
		}
		logging.Info().Msg("seeding completed")
		if *seedOnlyFlag {
			return
		}
	}

	routerCfg := policy.NewRouterConfig(dbConn, cfg)
	app := server.NewApp(dbConn, cfg, routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logging.Info().Str("port", cfg.Server.Port).Bool("dev", cfg.App.Dev).Str("driver", cfg.Database.Driver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("error during shutdown")
	}
	if sqlDB, err := dbConn.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logging.Info().Msg("server stopped")
}
