// Package main provides the entrypoint for the AirSentry refresh worker.
// It runs the same pipeline as the API process, but triggered over Pub/Sub
// (with an optional periodic fallback) and persisting history to Postgres.
package main

import (
	"context"
	"encoding/json"
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
	"github.com/airsentry/airsentry/internal/database"
	"github.com/airsentry/airsentry/internal/history"
	"github.com/airsentry/airsentry/internal/hotspot"
	"github.com/airsentry/airsentry/internal/ingest"
	"github.com/airsentry/airsentry/internal/ingest/openaq"
	"github.com/airsentry/airsentry/internal/ingest/sentinel"
	"github.com/airsentry/airsentry/internal/ingest/waqi"
	"github.com/airsentry/airsentry/internal/pollution"
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
	const serviceName = "airsentry-worker"

	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AirSentry worker")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewRealClock()

	// The worker exists to persist history and retrain models, so Postgres
	// is required here, unlike the API which can fall back to memory.
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	historyRepo := history.NewPostgresRepository(pool)

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
	if len(sources) == 0 {
		log.Warn().Msg("no upstream sources configured, refresh cycles will rely on synthetic fallback if enabled")
	}

	syntheticFallback := os.Getenv("SYNTHETIC_FALLBACK") == "true"
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

	accumulator := history.NewAccumulator(history.AccumulatorConfig{
		Repository: historyRepo,
		Logger:     log,
	})

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
		Tracker:        advect.NewTracker(advect.TrackerConfig{Logger: log}),
	})

	// Pub/Sub trigger: preferred in production so Cloud Scheduler controls
	// the cadence. Without a project configured the worker falls back to
	// its own periodic loop.
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")

	if projectID != "" && subscription != "" {
		pubsubHandler, psErr := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			RefreshJob:       job,
			Logger:           log,
		})
		if psErr != nil {
			log.Fatal().Err(psErr).Msg("failed to initialize pubsub handler")
		}
		defer func() {
			if closeErr := pubsubHandler.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub client")
			}
		}()

		go func() {
			if recvErr := pubsubHandler.Start(ctx); recvErr != nil && ctx.Err() == nil {
				log.Fatal().Err(recvErr).Msg("pubsub receive failed")
			}
		}()
		log.Info().
			Str("project", projectID).
			Str("subscription", subscription).
			Msg("listening for refresh triggers")
	} else {
		go job.RunPeriodic(ctx)
		log.Info().
			Dur("interval", refreshConfig.Interval).
			Msg("no pubsub configured, running periodic refresh loop")
	}

	// Health endpoint for the platform's liveness probes.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "OK",
			"version": Version,
		})
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(job.MetricsSnapshot())
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if srvErr := server.ListenAndServe(); srvErr != nil && srvErr != http.ErrServerClosed {
			log.Fatal().Err(srvErr).Msg("health server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
