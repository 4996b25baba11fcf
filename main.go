package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shadowcrawler/internal/catalog"
	"shadowcrawler/internal/crawler"
	"shadowcrawler/internal/logging"
	"shadowcrawler/internal/metrics"
	"shadowcrawler/internal/middleware"
	"shadowcrawler/internal/probe"
	"shadowcrawler/internal/server"
	"shadowcrawler/internal/startup"
	"shadowcrawler/internal/storage"
	"shadowcrawler/internal/workers"
)

const maxLanes = 8

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	// Initialize catalog store
	storeStart := time.Now()
	store, err := catalog.New(context.Background(), config.DatabasePath)
	if err != nil {
		logging.Fatal("Failed to initialize catalog store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warn("Failed to close catalog store: %v", err)
		}
	}()
	startup.LogCatalogInit(time.Since(storeStart))

	// Initialize metadata extractor and check external tools
	startup.LogProbeInit(config.ThumbnailsEnabled)
	thumbnailDir := config.ThumbnailDir
	if !config.ThumbnailsEnabled {
		thumbnailDir = ""
	}
	extractor := probe.NewExtractor(thumbnailDir)

	// Initialize crawler
	lanes := config.IndexLanes
	if lanes < 1 {
		lanes = workers.Lanes(maxLanes)
	}
	startup.LogCrawlerInit(lanes)
	c := crawler.New(store, extractor, lanes)

	// Initialize storage analyzer
	analyzer := storage.NewAnalyzer(extractor, storage.NewCache(config.StatsCachePath))

	// Report build info and connection stats
	info := startup.GetBuildInfo()
	metrics.SetAppInfo(info.Version, info.Commit, info.GoVersion)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		for range ticker.C {
			store.UpdateConnMetrics()
		}
	}()

	// Setup router
	h := server.New(store, c, analyzer, config)
	router := h.Router(config.MetricsEnabled)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(router)

	// Apply metrics middleware
	handler := middleware.Metrics(middleware.DefaultMetricsConfig())(loggedHandler)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Initial crawl in the background so the API is available immediately
	go func() {
		count, err := c.Crawl(context.Background(), config.MediaDir)
		if err != nil {
			logging.Error("Initial crawl failed: %v", err)
			return
		}
		logging.Info("Initial crawl finished with %d records", count)
	}()

	go handleShutdown(srv, store)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func handleShutdown(srv *http.Server, store *catalog.Store) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Closing catalog store")
	if err := store.Close(); err != nil {
		logging.Warn("Catalog store close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Catalog store closed")
	}

	startup.LogShutdownComplete()
}
