package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"EmberWatch/internal/geocode"
	handlers "EmberWatch/internal/handler"
	"EmberWatch/internal/intake"
	"EmberWatch/internal/store"
	"EmberWatch/pkg/cache"
	"EmberWatch/pkg/config"
	"EmberWatch/pkg/logger"
	"EmberWatch/pkg/metrics"
	"EmberWatch/pkg/middleware"
	"EmberWatch/pkg/scheduler"
	ws "EmberWatch/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1) Configuration and logging
	if err := config.Load(); err != nil {
		panic(err)
	}
	cfg := config.GlobalConfig

	if err := logger.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.L()

	// 2) Database
	db, err := store.Open(cfg.DBDriver, cfg.DSN)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	if err := store.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate schema", zap.Error(err))
	}

	// 3) Cache backend (shared by the station directory and the geocoder)
	cacheBackend, err := cache.NewCache(cfg.Cache)
	if err != nil {
		log.Fatal("failed to initialize cache", zap.Error(err))
	}
	defer cacheBackend.Close()

	// 4) Websocket hub
	hub := ws.NewHub(ws.ConfigFromEnv())
	defer hub.Close()

	// 5) Domain wiring: directory, geocoder, intake pipeline
	directory := store.NewStationDirectory(db, cacheBackend, cfg.DirectoryCacheTTL)
	reports := store.NewReportStore(db)

	var geocoder geocode.Geocoder
	if cfg.GoogleMapsAPIKey != "" {
		geocoder = geocode.NewCachedGeocoder(
			geocode.NewClient(cfg.GoogleMapsAPIKey, cfg.GeocodeTimeout),
			cacheBackend, cfg.GeocodeCacheTTL)
	} else {
		log.Warn("no Google Maps API key configured, addresses fall back to raw coordinates")
	}

	m := metrics.Default()
	pipeline := intake.NewPipeline(directory, geocoder, reports, hub, cfg.GeocodeTimeout, log, m)

	// 6) Background jobs: keep the eligible-station snapshot warm
	cr := scheduler.NewCron(nil)
	if _, err := cr.AddWithCtx(cfg.DirectoryRefreshCron, func(ctx context.Context) {
		if _, err := directory.Refresh(ctx); err != nil {
			log.Warn("station directory refresh failed", zap.Error(err))
		}
	}); err != nil {
		log.Fatal("invalid directory refresh schedule", zap.Error(err))
	}
	cr.Start()
	defer cr.Stop()

	// 7) HTTP surface
	gin.SetMode(cfg.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(metrics.Middleware(m))
	engine.Use(middleware.RateLimiter(middleware.RateLimiterConfig{
		Rate:      cfg.RateLimit,
		SkipPaths: []string{"/metrics", cfg.APIPrefix + "/health"},
	}))
	engine.GET("/metrics", metrics.Handler())

	handlers.NewHandlers(db, pipeline, reports, directory, hub).Register(engine)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: engine,
	}
	go func() {
		log.Info("server listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 8) Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
}
