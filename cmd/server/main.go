package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/api"
	"github.com/cisnerospos/posgw/internal/auth"
	"github.com/cisnerospos/posgw/internal/backend"
	"github.com/cisnerospos/posgw/internal/config"
	"github.com/cisnerospos/posgw/internal/repository/postgres"
	"github.com/cisnerospos/posgw/internal/service"
	"github.com/cisnerospos/posgw/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, "migrations"); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repos := postgres.NewRepositories(db, logger)
	client := backend.NewClient(cfg.Backend, logger)
	sessions := session.NewRegistry(logger)
	tokens := auth.NewTokenService(cfg.Session.JWTSecret, cfg.Session.TokenTTL)
	checkouts := service.NewCheckoutService(client, repos, logger)
	reports := service.NewReportService(client, logger)

	router := api.NewRouter(api.Deps{
		Config:    cfg,
		Client:    client,
		Sessions:  sessions,
		Tokens:    tokens,
		Repos:     repos,
		Checkouts: checkouts,
		Reports:   reports,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting POS gateway",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("backend", cfg.Backend.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gateway")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
	logger.Info("Gateway stopped")
}
