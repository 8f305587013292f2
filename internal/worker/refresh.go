package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsentry/airsentry/internal/advect"
	"github.com/airsentry/airsentry/internal/history"
	"github.com/airsentry/airsentry/internal/hotspot"
	"github.com/airsentry/airsentry/internal/ingest"
	"github.com/airsentry/airsentry/internal/pollution"
	"github.com/airsentry/airsentry/internal/weather"
)

// RefreshJob runs one full refresh cycle: collect every source in parallel,
// fuse the batches, publish the snapshot, then fold side effects (history,
// model retraining, weather) that must never fail the publish.
type RefreshJob struct {
	config RefreshConfig
	logger zerolog.Logger

	collector *ingest.Collector
	fuser     *ingest.Fuser
	store     *pollution.Store

	// Optional collaborators; nil disables their stage.
	synthetic      ingest.Source
	accumulator    *history.Accumulator
	detector       *hotspot.Detector
	weatherService *weather.Service
	tracker        *advect.Tracker

	metrics *RefreshMetrics
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config    RefreshConfig
	Logger    zerolog.Logger
	Collector *ingest.Collector
	Fuser     *ingest.Fuser
	Store     *pollution.Store

	Synthetic      ingest.Source
	Accumulator    *history.Accumulator
	Detector       *hotspot.Detector
	WeatherService *weather.Service
	Tracker        *advect.Tracker
}

// NewRefreshJob creates a refresh job.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		config:         cfg.Config.withDefaults(),
		logger:         cfg.Logger,
		collector:      cfg.Collector,
		fuser:          cfg.Fuser,
		store:          cfg.Store,
		synthetic:      cfg.Synthetic,
		accumulator:    cfg.Accumulator,
		detector:       cfg.Detector,
		weatherService: cfg.WeatherService,
		tracker:        cfg.Tracker,
		metrics:        &RefreshMetrics{},
	}
}

// RefreshMetrics tracks refresh cycle statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalCycles      int64
	EmptyCycles      int64
	SyntheticCycles  int64
	SourcesFailed    int64
	RowsPublished    int64
	HistoryRecords   int64
	RetrainFailures  int64
	WeatherFailures  int64
	LastCycleAt      time.Time
	LastCycleElapsed time.Duration
}

// RefreshResult summarizes one cycle.
type RefreshResult struct {
	StartTime     time.Time
	Duration      time.Duration
	SourcesOK     int
	SourcesFailed int
	RowsFused     int
	Synthetic     bool
	HistoryRows   int
}

// Run executes one refresh cycle. It never returns an error: a bad cycle
// publishes whatever survived fusion (possibly nothing) and reports the
// damage in the result and the metrics.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	start := time.Now()
	result := &RefreshResult{StartTime: start}

	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	j.logger.Info().Msg("starting refresh cycle")

	batches := j.collector.Collect(ctx)
	for _, b := range batches {
		if b.Err != nil {
			result.SourcesFailed++
		} else {
			result.SourcesOK++
		}
	}

	fused := j.fuser.Fuse(batches)

	// Synthetic fallback fires only when explicitly enabled AND no real
	// source produced a single row. Generated data never mixes with real
	// data.
	if len(fused) == 0 && j.config.SyntheticFallback && j.synthetic != nil {
		j.logger.Warn().Msg("all sources empty, generating synthetic fallback data")
		rows, err := j.synthetic.Fetch(ctx)
		if err == nil {
			fused = j.fuser.Fuse([]ingest.Batch{{Source: j.synthetic.Name(), Measurements: rows}})
			result.Synthetic = true
		}
	}

	j.store.Publish(fused, ingest.FetchedAt(fused, time.Now().UTC()))
	result.RowsFused = len(fused)

	// Side effects below must not unpublish a good snapshot; each failure
	// is logged and counted, and the cycle continues.
	if !result.Synthetic && len(fused) > 0 {
		if j.config.AccumulateHistory && j.accumulator != nil {
			n, err := j.accumulator.Accumulate(ctx, filterPollutant(fused, pollution.PM25))
			if err != nil {
				j.logger.Error().Err(err).Msg("history accumulation failed")
			} else {
				result.HistoryRows = n
			}
		}

		if j.config.RetrainHotspots && j.detector != nil {
			if err := j.detector.Retrain(ctx, fused, pollution.PM25); err != nil {
				j.logger.Error().Err(err).Msg("hotspot retrain failed")
				j.metrics.add(func(m *RefreshMetrics) { m.RetrainFailures++ })
			}
		}
	}

	if j.config.RefreshWeather && j.weatherService != nil {
		j.refreshWeather(ctx)
	}

	result.Duration = time.Since(start)
	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("sources_ok", result.SourcesOK).
		Int("sources_failed", result.SourcesFailed).
		Int("rows", result.RowsFused).
		Bool("synthetic", result.Synthetic).
		Msg("refresh cycle completed")

	return result
}

// RunPeriodic runs cycles at the configured interval until the context is
// canceled. The first cycle runs immediately.
func (j *RefreshJob) RunPeriodic(ctx context.Context) {
	j.Run(ctx)

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("periodic refresh stopped")
			return
		case <-ticker.C:
			j.Run(ctx)
		}
	}
}

// CurrentWeather returns the latest observation per configured city, for
// the advection and influence consumers. Entries may be nil when a city's
// weather is unavailable.
func (j *RefreshJob) CurrentWeather(ctx context.Context) []*weather.Observation {
	if j.weatherService == nil {
		return nil
	}
	points := make([]weather.Point, len(j.config.WeatherPoints))
	for i, wp := range j.config.WeatherPoints {
		points[i] = weather.Point{Lat: wp.Lat, Lon: wp.Lon}
	}
	return j.weatherService.GetWeatherForPoints(ctx, points)
}

func (j *RefreshJob) refreshWeather(ctx context.Context) {
	failed := 0
	for _, wp := range j.config.WeatherPoints {
		if _, err := j.weatherService.GetCurrentWeather(ctx, wp.Lat, wp.Lon); err != nil {
			failed++
		}
	}
	if failed > 0 {
		j.logger.Warn().
			Int("failed", failed).
			Int("total", len(j.config.WeatherPoints)).
			Msg("some weather points failed to refresh")
		j.metrics.add(func(m *RefreshMetrics) { m.WeatherFailures += int64(failed) })
	}
}

func filterPollutant(ms []pollution.Measurement, p pollution.Pollutant) []pollution.Measurement {
	var out []pollution.Measurement
	for _, m := range ms {
		if m.Pollutant == p {
			out = append(out, m)
		}
	}
	return out
}

func (m *RefreshMetrics) add(fn func(*RefreshMetrics)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m)
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.add(func(m *RefreshMetrics) {
		m.TotalCycles++
		if result.RowsFused == 0 {
			m.EmptyCycles++
		}
		if result.Synthetic {
			m.SyntheticCycles++
		}
		m.SourcesFailed += int64(result.SourcesFailed)
		m.RowsPublished += int64(result.RowsFused)
		m.HistoryRecords += int64(result.HistoryRows)
		m.LastCycleAt = result.StartTime.Add(result.Duration)
		m.LastCycleElapsed = result.Duration
	})
}

// MetricsSnapshot returns the current metrics as a map for the ops surface.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return map[string]interface{}{
		"total_cycles":       j.metrics.TotalCycles,
		"empty_cycles":       j.metrics.EmptyCycles,
		"synthetic_cycles":   j.metrics.SyntheticCycles,
		"sources_failed":     j.metrics.SourcesFailed,
		"rows_published":     j.metrics.RowsPublished,
		"history_records":    j.metrics.HistoryRecords,
		"retrain_failures":   j.metrics.RetrainFailures,
		"weather_failures":   j.metrics.WeatherFailures,
		"last_cycle_at":      j.metrics.LastCycleAt,
		"last_cycle_elapsed": j.metrics.LastCycleElapsed.String(),
	}
}
