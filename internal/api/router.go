// Package api provides the HTTP API for AirSentry.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/airsentry/airsentry/internal/advect"
	"github.com/airsentry/airsentry/internal/api/handler"
	"github.com/airsentry/airsentry/internal/api/middleware"
	"github.com/airsentry/airsentry/internal/forecast"
	"github.com/airsentry/airsentry/internal/history"
	"github.com/airsentry/airsentry/internal/hotspot"
	"github.com/airsentry/airsentry/internal/influence"
	"github.com/airsentry/airsentry/internal/pollution"
	"github.com/airsentry/airsentry/internal/predict"
	"github.com/airsentry/airsentry/internal/weather"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	Store      *pollution.Store
	History    history.Repository
	Detector   *hotspot.Detector
	Predictor  *predict.IDW
	Forecaster *forecast.Forecaster
	Tracker    *advect.Tracker
	Ranker     *influence.Ranker

	Weather       *weather.Service
	WeatherCities []handler.CityPoint

	// Pipeline exposes refresh metrics on the ops surface; nil when this
	// process does not run the refresh pipeline.
	Pipeline handler.PipelineStats
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "airsentry-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.CORS)                 // Anonymous read-only API, open CORS
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Store, cfg.Pipeline)
	dataHandler := handler.NewDataHandler(cfg.Store, cfg.History)
	statsHandler := handler.NewStatsHandler(cfg.Store)
	hotspotsHandler := handler.NewHotspotsHandler(cfg.Store, cfg.Detector)
	predictHandler := handler.NewPredictHandler(cfg.Store, cfg.Predictor)
	forecastHandler := handler.NewForecastHandler(cfg.Store, cfg.Forecaster)
	weatherHandler := handler.NewWeatherHandler(cfg.Weather, cfg.WeatherCities)
	trackingHandler := handler.NewTrackingHandler(cfg.Store, cfg.Tracker, weatherHandler)
	warningsHandler := handler.NewWarningsHandler(cfg.Store, cfg.Ranker, weatherHandler)
	pollutantsHandler := handler.NewPollutantsHandler()

	// Rate limit tiers
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (unthrottled so probes never see a 429)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/metrics", opsHandler.PipelineMetrics)
		})

		// Data and stats endpoints - standard rate limiting
		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/data/current", dataHandler.GetCurrent)
			r.Get("/data/recent", dataHandler.GetRecent)
			r.Get("/stats", statsHandler.GetStats)
			r.Get("/stats/all", statsHandler.GetAllStats)
			r.Get("/stats/sources", statsHandler.GetSourceStats)
			r.Get("/pollutants", pollutantsHandler.ListPollutants)
			r.Get("/weather/current", weatherHandler.GetCurrent)
			r.Get("/warnings", warningsHandler.GetWarnings)
		})

		// Analytic endpoints - expensive compute, strict rate limiting
		r.Group(func(r chi.Router) {
			r.Use(expensiveRateLimit)
			r.Get("/hotspots", hotspotsHandler.GetHotspots)
			r.Get("/predict", predictHandler.GetPrediction)
			r.Get("/forecast", forecastHandler.GetForecast)
			r.Get("/tracking", trackingHandler.GetTracking)
		})
	})

	return r
}
