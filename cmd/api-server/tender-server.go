package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"tenderlink/db"
	"tenderlink/db/migrations"
	"tenderlink/internal/archiver"
	"tenderlink/internal/auth"
	"tenderlink/internal/config"
	"tenderlink/internal/handlers"
	"tenderlink/internal/logger"
	"tenderlink/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	dbConn, err := sqlx.Connect("postgres", cfg.DBConn)
	if err != nil {
		return fmt.Errorf("cannot connect to DB: %w", err)
	}
	defer dbConn.Close()

	if err := migrations.Run(dbConn.DB); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	store := db.NewStorage(dbConn)
	svc := service.New(store, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Admin.Enabled() {
		created, err := svc.EnsureAdmin(ctx, service.AdminSeed{
			Name:     cfg.Admin.Name,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		})
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if !created {
			log.Info("admin account already present, seed skipped")
		}
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	h := handlers.NewHandler(svc, tokens, log)
	mw := auth.NewMiddleware(tokens, h.WriteError)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           handlers.NewRouter(h, mw, cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sweep := archiver.New(svc, cfg.ArchiveInterval, log)
	sweep.Start(ctx)
	defer sweep.Stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.ServerAddress), zap.Bool("production", cfg.IsProduction()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, failed := <-serveErr:
		if failed {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
