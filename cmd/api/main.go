// Package main provides the entrypoint for the AirSentry API server.
package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/airsentry/airsentry/internal/advect"
	"github.com/airsentry/airsentry/internal/api"
	"github.com/airsentry/airsentry/internal/api/handler"
	"github.com/airsentry/airsentry/internal/api/middleware"
	"github.com/airsentry/airsentry/internal/database"
	"github.com/airsentry/airsentry/internal/forecast"
	"github.com/airsentry/airsentry/internal/history"
	"github.com/airsentry/airsentry/internal/hotspot"
	"github.com/airsentry/airsentry/internal/influence"
	"github.com/airsentry/airsentry/internal/ingest"
	"github.com/airsentry/airsentry/internal/ingest/openaq"
	"github.com/airsentry/airsentry/internal/ingest/sentinel"
	"github.com/airsentry/airsentry/internal/ingest/waqi"
	"github.com/airsentry/airsentry/internal/pollution"
	"github.com/airsentry/airsentry/internal/predict"
	"github.com/airsentry/airsentry/internal/telemetry"
	"github.com/airsentry/airsentry/internal/weather"
	"github.com/airsentry/airsentry/internal/weather/openmeteo"
	"github.com/airsentry/airsentry/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "airsentry-api"

	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AirSentry API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	clock := clockwork.NewRealClock()

	// History backing: Postgres when reachable, otherwise in-memory. The
	// API stays up either way; only /v1/data/recent durability differs.
	var historyRepo history.Repository
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable, using in-memory history")
		historyRepo = history.NewMemoryRepository()
	} else {
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")
		historyRepo = history.NewPostgresRepository(pool)
	}

	// Upstream sources; each one is optional and configured via env.
	var sources []ingest.Source
	if token := os.Getenv("WAQI_TOKEN"); token != "" {
		sources = append(sources, waqi.NewClient(waqi.ClientConfig{
			Token:  token,
			Clock:  clock,
			Logger: log,
		}))
		log.Info().Msg("WAQI source configured")
	}
	if apiKey := os.Getenv("OPENAQ_API_KEY"); apiKey != "" {
		sources = append(sources, openaq.NewClient(openaq.ClientConfig{
			APIKey: apiKey,
			Clock:  clock,
			Logger: log,
		}))
		log.Info().Msg("OpenAQ source configured")
	}
	if baseURL := os.Getenv("SENTINEL_BASE_URL"); baseURL != "" {
		sources = append(sources, sentinel.NewClient(sentinel.ClientConfig{
			BaseURL: baseURL,
			Clock:   clock,
			Logger:  log,
		}))
		log.Info().Msg("Sentinel-5P source configured")
	}

	// Synthetic fallback keeps a tokenless dev environment usable. It only
	// fires on cycles where every real source came back empty.
	syntheticFallback := os.Getenv("SYNTHETIC_FALLBACK") == "true"
	if len(sources) == 0 {
		log.Warn().Msg("no upstream sources configured, enabling synthetic fallback")
		syntheticFallback = true
	}
	var synthetic ingest.Source
	if syntheticFallback {
		synthetic = ingest.NewSyntheticSource(clock, rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	}

	collector := ingest.NewCollector(ingest.CollectorConfig{
		Sources: sources,
		Logger:  log,
	})

	fuser, err := ingest.NewFuser(ingest.FuserConfig{Logger: log})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize fuser")
	}

	store := pollution.NewStore(log)

	// Hotspot models persist across restarts when MODEL_DIR is set.
	var modelStore hotspot.ModelStore
	if dir := os.Getenv("MODEL_DIR"); dir != "" {
		fileStore, fsErr := hotspot.NewFileModelStore(dir)
		if fsErr != nil {
			log.Fatal().Err(fsErr).Str("dir", dir).Msg("failed to initialize model store")
		}
		modelStore = fileStore
	} else {
		modelStore = hotspot.NewMemoryModelStore()
	}

	detector := hotspot.NewDetector(hotspot.DetectorConfig{
		Models: modelStore,
		Logger: log,
	})

	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: openmeteo.NewClient(openmeteo.ClientConfig{}),
		Logger:   log,
	})

	predictor := predict.NewIDW(predict.IDWConfig{Logger: log})
	forecaster := forecast.NewForecaster(forecast.ForecasterConfig{Clock: clock, Logger: log})
	tracker := advect.NewTracker(advect.TrackerConfig{Logger: log})
	ranker := influence.NewRanker(influence.RankerConfig{Logger: log})

	accumulator := history.NewAccumulator(history.AccumulatorConfig{
		Repository: historyRepo,
		Logger:     log,
	})

	// The API process runs the refresh pipeline itself: the snapshot store
	// is in-process memory, so the data has to be produced where it is
	// served. The worker binary is for deployments that trigger refreshes
	// over Pub/Sub instead.
	refreshConfig := worker.DefaultRefreshConfig()
	refreshConfig.SyntheticFallback = syntheticFallback
	if interval := os.Getenv("REFRESH_INTERVAL"); interval != "" {
		if d, parseErr := time.ParseDuration(interval); parseErr == nil {
			refreshConfig.Interval = d
		} else {
			log.Warn().Str("value", interval).Msg("invalid REFRESH_INTERVAL, using default")
		}
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:         refreshConfig,
		Logger:         log,
		Collector:      collector,
		Fuser:          fuser,
		Store:          store,
		Synthetic:      synthetic,
		Accumulator:    accumulator,
		Detector:       detector,
		WeatherService: weatherService,
		Tracker:        tracker,
	})

	pipelineCtx, stopPipeline := context.WithCancel(ctx)
	defer stopPipeline()
	go job.RunPeriodic(pipelineCtx)
	log.Info().
		Dur("interval", refreshConfig.Interval).
		Int("sources", len(sources)).
		Msg("refresh pipeline started")

	cities := make([]handler.CityPoint, 0, len(refreshConfig.WeatherPoints))
	for _, wp := range refreshConfig.WeatherPoints {
		cities = append(cities, handler.CityPoint{Name: wp.Name, Lat: wp.Lat, Lon: wp.Lon})
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:       Version,
		BuildTime:     BuildTime,
		Logger:        log,
		ServiceName:   serviceName,
		Metrics:       metrics,
		Store:         store,
		History:       historyRepo,
		Detector:      detector,
		Predictor:     predictor,
		Forecaster:    forecaster,
		Tracker:       tracker,
		Ranker:        ranker,
		Weather:       weatherService,
		WeatherCities: cities,
		Pipeline:      job,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	stopPipeline()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
