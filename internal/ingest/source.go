// Package ingest collects raw per-source payloads, normalizes them into the
// canonical measurement schema, and fuses them into one working dataset.
package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsentry/airsentry/internal/pollution"
)

// Ingestion errors.
var (
	// ErrSchema indicates a raw payload is missing required fields
	// (coordinates or value) wholesale. Individual bad rows never raise it.
	ErrSchema = errors.New("raw payload missing required fields")

	// ErrSourceUnavailable indicates a source fetch failed. The collector
	// absorbs it; it never propagates as a fatal pipeline error.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// Source is one upstream measurement provider. Fetch returns a normalized
// batch; a failed source returns an error and contributes an empty batch.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]pollution.Measurement, error)
}

// Batch is the outcome of one source fetch.
type Batch struct {
	Source       string
	Measurements []pollution.Measurement
	Err          error
}

// CollectorConfig holds configuration for parallel source collection.
type CollectorConfig struct {
	Sources []Source
	Logger  zerolog.Logger

	// FetchTimeout bounds each individual source fetch (default: 60s).
	FetchTimeout time.Duration
}

// Collector fans fetches out to every configured source and fans results
// back in. Each source writes to its own batch, so no shared state is
// mutated before the single-threaded fusion step.
type Collector struct {
	sources      []Source
	logger       zerolog.Logger
	fetchTimeout time.Duration
}

// NewCollector creates a collector over the configured sources.
func NewCollector(cfg CollectorConfig) *Collector {
	timeout := cfg.FetchTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Collector{
		sources:      cfg.Sources,
		logger:       cfg.Logger,
		fetchTimeout: timeout,
	}
}

// Collect fetches all sources concurrently. A failing source yields a Batch
// with Err set and no measurements; sibling fetches are unaffected.
func (c *Collector) Collect(ctx context.Context) []Batch {
	batches := make([]Batch, len(c.sources))

	var wg sync.WaitGroup
	for i, src := range c.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
			defer cancel()

			start := time.Now()
			measurements, err := src.Fetch(fetchCtx)
			if err != nil {
				c.logger.Warn().
					Str("source", src.Name()).
					Dur("elapsed", time.Since(start)).
					Err(err).
					Msg("source fetch failed, continuing without it")
				batches[i] = Batch{Source: src.Name(), Err: err}
				return
			}

			c.logger.Info().
				Str("source", src.Name()).
				Int("rows", len(measurements)).
				Dur("elapsed", time.Since(start)).
				Msg("source fetch completed")
			batches[i] = Batch{Source: src.Name(), Measurements: measurements}
		}(i, src)
	}
	wg.Wait()

	return batches
}
