package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BruksfildServices01/studio-scheduler/internal/audit"
	"github.com/BruksfildServices01/studio-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/studio-scheduler/internal/db"
	infraRepo "github.com/BruksfildServices01/studio-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/studio-scheduler/internal/logging"
	"github.com/BruksfildServices01/studio-scheduler/internal/maintenance"
	"github.com/BruksfildServices01/studio-scheduler/internal/metrics"
	"github.com/BruksfildServices01/studio-scheduler/internal/routes"
	"github.com/BruksfildServices01/studio-scheduler/internal/storage"
)

func main() {

	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}

	// redis fora do ar não impede o start: lock e cache degradam para local/banco
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("redis unavailable, running without shared cache")
		_ = rdb.Close()
		rdb = nil
	}
	cancelPing()

	var s3Client storage.S3API
	if cfg.StorageEnabled() {
		s3Client = storage.NewS3Client(cfg)
	}
	store := storage.NewStore(s3Client, cfg, log)

	m := metrics.New(prometheus.DefaultRegisterer)

	auditDispatcher := audit.NewDispatcher(audit.New(db), log)

	maint := maintenance.New(infraRepo.NewCheckoutGormRepository(db), log, cfg.StaleCommandAfter)
	if err := maint.Start(cfg.MaintenanceCron); err != nil {
		log.WithError(err).Fatal("invalid maintenance schedule")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	routes.RegisterRoutes(r, routes.Deps{
		DB:             db,
		Config:         cfg,
		Log:            log,
		Redis:          rdb,
		Metrics:        m,
		Audit:          auditDispatcher,
		Storage:        store,
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	maint.Stop()
	auditDispatcher.Close()
	if rdb != nil {
		_ = rdb.Close()
	}

	log.Info("server stopped")
}
