package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"exit_poll/internal/config"
	"exit_poll/internal/controllers"
	"exit_poll/internal/logger"
	"exit_poll/internal/metrics"
	"exit_poll/internal/middleware"
	"exit_poll/internal/routes"
	"exit_poll/internal/services"
	"exit_poll/internal/storage"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd.Context(), configFrom(cmd))
		},
	}
}

// openDB sets up logging and opens the migrated database.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := config.OpenDB(cfg.Database, logger.GormLogger())
	if err != nil {
		return nil, err
	}
	if err := config.Migrate(db); err != nil {
		return nil, err
	}
	logrus.WithField("driver", cfg.Database.Driver).Info("database connected")
	return db, nil
}

func newStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, func(), error) {
	switch cfg.Driver {
	case "gcs":
		gcs, err := storage.NewGCS(ctx,
			storage.WithBucket(cfg.Bucket),
			storage.WithCredentialsFile(cfg.CredentialsFile),
			storage.WithPublicRead(cfg.PublicRead),
		)
		if err != nil {
			return nil, nil, err
		}
		return gcs, func() { _ = gcs.Close() }, nil
	default:
		local, err := storage.NewLocal(cfg.LocalDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return local, func() {}, nil
	}
}

func serveRun(ctx context.Context, cfg *config.Config) error {
	logWriter := logger.Setup(cfg.Log)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	auth := middleware.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	svc := services.New(db, store,
		services.WithMetrics(metrics.New(reg)),
		services.WithTokenIssuer(auth),
	)

	deps := routes.Deps{
		Controller:  controllers.New(svc, cfg.Server.TempDir),
		Auth:        auth,
		Gatherer:    reg,
		LogWriter:   logWriter,
		MaxUploadMB: cfg.Server.MaxUploadMB,
		Health: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if cfg.Storage.Driver != "gcs" {
		deps.UploadDir = cfg.Storage.LocalDir
	}
	r := routes.SetupRouter(deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           middleware.EnableCORS(cfg.Server.CORSOrigins, r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("server running at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
