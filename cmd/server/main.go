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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cabgo/rider-web/internal/application"
	"github.com/cabgo/rider-web/internal/backend"
	"github.com/cabgo/rider-web/internal/common/kafka"
	"github.com/cabgo/rider-web/internal/common/logger"
	"github.com/cabgo/rider-web/internal/common/middleware"
	"github.com/cabgo/rider-web/internal/config"
	"github.com/cabgo/rider-web/internal/domain/booking"
	riderEvents "github.com/cabgo/rider-web/internal/events"
	"github.com/cabgo/rider-web/internal/handler"
	"github.com/cabgo/rider-web/internal/location"
	"github.com/cabgo/rider-web/internal/mapselect"
	"github.com/cabgo/rider-web/internal/session"
	"github.com/cabgo/rider-web/internal/tracking"
)

const serviceName = "rider-web"

// finishedRideRetention is how long completed or cancelled rides stay viewable.
const finishedRideRetention = 6 * time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting rider-web",
		zap.String("port", cfg.Port),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, log.Named("backend"))

	// Place resolution cache
	var (
		cache        location.Cache = location.NoopCache{}
		healthChecks []handler.HealthCheck
	)
	if cfg.Redis.URL != "" {
		redisCache, err := location.NewRedisCache(ctx, cfg.Redis.URL, cfg.Redis.PlaceTTL)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisCache.Close() }()
		cache = redisCache
		healthChecks = append(healthChecks, handler.HealthCheck{Name: "redis", Check: redisCache.Ping})
		log.Info("place cache enabled")
	}
	resolver := location.NewResolver(api, cache, cfg.Geolocation.Timeout, log.Named("location"))

	// Live tracking
	hub := tracking.NewHub(log.Named("tracking"))
	trackingService := application.NewTrackingService(hub, log)

	// Kafka: ride events in, rider analytics out
	var publisher application.EventPublisher = application.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		publisher = riderEvents.NewAnalyticsPublisher(kafkaProducer)

		groupID := cfg.Kafka.GroupPrefix + serviceName
		rideConsumer := riderEvents.NewRideEventConsumer(cfg.Kafka.Brokers, groupID, trackingService, log)
		defer func() { _ = rideConsumer.Close() }()

		go func() {
			log.Info("starting ride event consumer")
			if err := rideConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("ride event consumer error", zap.Error(err))
			}
		}()
	} else {
		log.Info("kafka not configured, live tracking updates and analytics disabled")
	}

	// Rider sessions
	defaultCenter := booking.Coordinates{Lat: cfg.Map.DefaultCenterLat, Lng: cfg.Map.DefaultCenterLng}
	sessions := session.NewStore(func(id string) *session.Session {
		return &session.Session{
			Wizard:    application.NewWizardService(id, api, api, trackingService, publisher, cfg.TimeZone, log.Named("wizard")),
			Modal:     mapselect.NewModal(resolver, defaultCenter),
			Suggester: location.NewSuggester(api, location.SystemClock{}, cfg.Search.Debounce, cfg.Search.MinChars, log.Named("search")),
		}
	}, cfg.Session.IdleTTL, log)

	go sessions.RunJanitor(ctx, cfg.Session.SweepInterval, func(now time.Time) {
		if n := trackingService.Prune(now.Add(-finishedRideRetention)); n > 0 {
			log.Debug("pruned finished rides", zap.Int("count", n))
		}
	})

	// Application services
	authService := application.NewAuthService(api, log)
	pricingService := application.NewPricingService(api, log)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins, session.HeaderName))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.MetricsMiddleware())

	// Register health check and metrics routes
	handler.NewHealthHandler(serviceName, healthChecks...).RegisterRoutes(router)

	// Register rider routes
	v1 := router.Group("/api/v1")
	v1.Use(handler.SessionMiddleware(sessions))
	handler.NewWizardHandler(resolver).RegisterRoutes(v1)
	handler.NewPlacesHandler(resolver).RegisterRoutes(v1)
	handler.NewMapHandler().RegisterRoutes(v1)
	handler.NewAuthHandler(authService).RegisterRoutes(v1)
	handler.NewTrackingHandler(trackingService, hub, log).RegisterRoutes(v1)
	handler.NewAdminPricingHandler(pricingService).RegisterRoutes(v1)

	// Create HTTP server. Suggest requests wait for the debounce, so the write timeout
	// must cover it plus a backend round trip.
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.Timeout + cfg.Search.Debounce + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down rider-web...")

	// Stop the consumer and janitor
	cancel()
	hub.CloseAll()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("rider-web stopped")
}
