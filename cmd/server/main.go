package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"alcyxob/overload/internal/api"
	"alcyxob/overload/internal/config"
	"alcyxob/overload/internal/logging"
	"alcyxob/overload/internal/metrics"
	"alcyxob/overload/internal/persist"
	"alcyxob/overload/internal/repository"
	"alcyxob/overload/internal/repository/memory"
	"alcyxob/overload/internal/repository/mongo"
	"alcyxob/overload/internal/service"
	"alcyxob/overload/internal/storage"
)

// @title Overload API
// @version 1.0
// @description Personal workout tracker: sessions, templates, body weight and history.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.Stdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	log.Infof("starting overload server, database driver %q", cfg.Database.Driver)

	loc, err := cfg.App.Location()
	if err != nil {
		log.Fatalf("invalid app.timezone: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsManager := metrics.NewManager("overload", "server", reg)

	store, closeStore := openStore(cfg.Database)
	defer closeStore()

	queue := persist.NewQueue(persist.Config{
		MaxAttempts:  cfg.Persist.MaxAttempts,
		RetryBackoff: cfg.Persist.RetryBackoff,
		Buffer:       cfg.Persist.Buffer,
	}, metricsManager)

	var objectStore storage.ObjectStore
	if cfg.S3.Enabled {
		objectStore, err = storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			log.Fatalf("failed to initialize S3 storage: %v", err)
		}
	} else {
		log.Info("s3 disabled, export uploads are off")
	}

	workspaces := service.NewWorkspaces(service.Deps{
		Store:              store,
		Queue:              queue,
		Metrics:            metricsManager,
		Location:           loc,
		DefaultRestSeconds: cfg.App.DefaultRestSeconds,
		Now:                time.Now,
		NewID:              uuid.NewString,
	})

	evictCtx, stopEviction := context.WithCancel(context.Background())
	defer stopEviction()
	if cfg.App.WorkspaceIdle > 0 && cfg.App.EvictionInterval > 0 {
		go workspaces.RunEviction(evictCtx, cfg.App.EvictionInterval, cfg.App.WorkspaceIdle)
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	api.SetupRoutes(router, api.Services{
		Auth:     service.NewAuthService(store.Users, cfg.JWT.Secret, cfg.JWT.Expiration),
		Profile:  service.NewProfileService(store.Profiles, store.Users, service.StoreClock(time.Now)),
		Tracker:  service.NewTrackerService(workspaces),
		Template: service.NewTemplateService(workspaces),
		Exercise: service.NewExerciseService(workspaces),
		Weight:   service.NewWeightService(workspaces),
		Export:   service.NewExportService(workspaces, objectStore, cfg.S3.URLExpiration),
	}, api.RouteOptions{
		JWTSecret: cfg.JWT.Secret,
		Metrics:   metricsManager,
		Gatherer:  reg,
		Location:  loc,
		Now:       time.Now,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}
	// Pending writes are flushed after the last request is served.
	if err := queue.Close(ctxShutdown); err != nil {
		log.Errorf("persist queue not drained: %v", err)
	}

	log.Info("server exiting")
}

// openStore connects the configured backend. The returned func releases it.
func openStore(cfg config.DatabaseConfig) (*repository.Store, func()) {
	if cfg.Driver == config.DriverMemory {
		log.Warn("using the in-memory store, data is lost on restart")
		return memory.NewStore(), func() {}
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		log.Fatalf("could not connect to MongoDB: %v", err)
	}
	db := client.Database(cfg.Name)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	for _, err := range mongo.EnsureIndexes(ctx, db) {
		log.Errorf("ensure index: %v", err)
	}

	return mongo.NewStore(db), func() {
		log.Info("disconnecting MongoDB...")
		if err := mongo.DisconnectDB(client); err != nil {
			log.Errorf("failed to disconnect MongoDB: %v", err)
		}
	}
}
