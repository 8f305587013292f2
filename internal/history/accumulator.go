package history

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsentry/airsentry/internal/pollution"
)

// AccumulatorConfig holds configuration for the history accumulator.
type AccumulatorConfig struct {
	Repository Repository
	Logger     zerolog.Logger
}

// Accumulator folds each fused snapshot into the daily history. Within one
// batch the last row per (station, pollutant, day) wins, matching the
// replace semantics of the repository.
type Accumulator struct {
	repo   Repository
	logger zerolog.Logger
}

// NewAccumulator creates an accumulator over a repository.
func NewAccumulator(cfg AccumulatorConfig) *Accumulator {
	return &Accumulator{repo: cfg.Repository, logger: cfg.Logger}
}

// Accumulate converts measurements to daily records and upserts them.
// Rows without a station identifier get a synthetic one derived from their
// coordinates so nearby refreshes keep hitting the same key.
func (a *Accumulator) Accumulate(ctx context.Context, measurements []pollution.Measurement) (int, error) {
	deduped := make(map[Key]Record, len(measurements))
	for _, m := range measurements {
		rec := toRecord(m)
		deduped[rec.Key()] = rec
	}

	records := make([]Record, 0, len(deduped))
	for _, rec := range deduped {
		records = append(records, rec)
	}

	if err := a.repo.Upsert(ctx, records); err != nil {
		return 0, fmt.Errorf("upsert history: %w", err)
	}

	a.logger.Info().
		Int("rows_in", len(measurements)).
		Int("records", len(records)).
		Msg("history accumulated")

	return len(records), nil
}

func toRecord(m pollution.Measurement) Record {
	uid := m.StationID
	if uid == "" {
		uid = fmt.Sprintf("%s:%.3f,%.3f", m.Source, m.Lat, m.Lon)
	}

	date := m.Timestamp.UTC().Truncate(24 * time.Hour)

	return Record{
		StationUID: uid,
		Pollutant:  string(m.Pollutant),
		Date:       date,
		Value:      m.Value,
		Location:   m.Location,
		Lat:        m.Lat,
		Lon:        m.Lon,
	}
}
