package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/matchday/internal/config"
	"github.com/AdamBeresnev/matchday/internal/db"
	"github.com/AdamBeresnev/matchday/internal/logging"
	"github.com/AdamBeresnev/matchday/internal/middleware"
	"github.com/AdamBeresnev/matchday/internal/store"
	"github.com/cockroachdb/errors"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Default().Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	logger := logging.NewStdout(cfg.LogLevel)
	logging.SetDefault(logger)
	defer logger.Sync()

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}

	app := newApplication(cfg, database, store.NewSQLiteStore(database))
	defer app.hub.Close()
	app.providers = middleware.InitAuth(*cfg)

	if cfg.AdminUsername != "" {
		if err := app.users.SeedAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return errors.Wrap(err, "failed to seed admin")
		}
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      newRouter(app),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting", "address", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server failed")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Websocket connections are hijacked, so Shutdown does not wait for them
		app.hub.Close()
		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return errors.Wrap(err, "graceful shutdown failed")
		}
	}

	logger.Info("server stopped")
	return nil
}
