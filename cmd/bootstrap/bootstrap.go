package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nexus-hospital/config"
	"nexus-hospital/internal/adapter/filestore"
	"nexus-hospital/internal/adapter/kv"
	"nexus-hospital/internal/assist"
	deliveryHttp "nexus-hospital/internal/delivery/http"
	"nexus-hospital/internal/delivery/http/handler"
	"nexus-hospital/internal/delivery/http/middleware"
	"nexus-hospital/internal/domain/entity"
	"nexus-hospital/internal/metrics"
	"nexus-hospital/internal/store"
	"nexus-hospital/pkg/jwt"
	"nexus-hospital/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	KVStore     kv.Store
	DomainStore *store.DomainStore
	Server      *http.Server

	cancelWatch context.CancelFunc
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	setupLogger()
	log := logrus.StandardLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	log.Info("Configuration loaded successfully")

	redisClient, err := kv.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	kvStore := kv.NewRedisStore(redisClient, log)
	app.KVStore = kvStore
	log.Info("Redis connected successfully")

	// File-backed patient record store, shared with external writers.
	patientFile := filestore.New(afero.NewOsFs(), cfg.Store.PatientFile, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	domainStore := store.New(kvStore, patientFile, m, log, cfg.Store.KeyPrefix)

	ctx := context.Background()
	if err := domainStore.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load domain store: %w", err)
	}
	if err := domainStore.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start domain store: %w", err)
	}
	app.DomainStore = domainStore

	// Follow external rewrites of the patient file.
	watchCtx, cancelWatch := context.WithCancel(ctx)
	app.cancelWatch = cancelWatch
	go func() {
		err := patientFile.Watch(watchCtx, func(patients []entity.Patient) {
			domainStore.RefreshPatients(watchCtx, patients)
		})
		if err != nil && watchCtx.Err() == nil {
			log.Warnf("Patient file watcher stopped: %+v", err)
		}
	}()

	app.Server = initializeServer(cfg, kvStore, domainStore, m, registry, log)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, kvStore kv.Store, domainStore *store.DomainStore, m *metrics.Metrics, registry *prometheus.Registry, log *logrus.Logger) *http.Server {
	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	assistService := assist.NewSimulated(cfg.Assist.SafetyDelay, cfg.Assist.SummaryDelay)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(domainStore, customValidator, jwtService, kvStore, log)
	patientHandler := handler.NewPatientHandler(domainStore, customValidator)
	actionHandler := handler.NewActionHandler(domainStore, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(domainStore, customValidator)
	userHandler := handler.NewUserHandler(domainStore, customValidator)
	analyticsHandler := handler.NewAnalyticsHandler(domainStore)
	assistHandler := handler.NewAssistHandler(assistService, assistService, customValidator, log)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, kvStore)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		patientHandler,
		actionHandler,
		appointmentHandler,
		userHandler,
		analyticsHandler,
		assistHandler,
		authMiddleware,
		corsMiddleware,
		m,
		registry,
	)
	httpRouter := router.Setup()

	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close stops the watchers and closes all connections
func (app *App) Close() {
	if app.cancelWatch != nil {
		app.cancelWatch()
	}

	if app.DomainStore != nil {
		app.DomainStore.Close()
	}

	if app.KVStore != nil {
		app.KVStore.Close()
	}
}
