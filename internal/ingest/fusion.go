package ingest

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsentry/airsentry/internal/pollution"
)

// FuserConfig holds configuration for the fusion step.
type FuserConfig struct {
	// Bounds is the geographic area of interest. Rows outside it are
	// discarded. Defaults to the India box.
	Bounds pollution.Bounds

	Logger zerolog.Logger
}

// Fuser merges per-source batches into one validated dataset. Fusion never
// fails: the worst outcome of a refresh cycle is an empty dataset.
type Fuser struct {
	bounds pollution.Bounds
	logger zerolog.Logger
}

// NewFuser creates a fuser. Invalid bounds are a configuration error and the
// only way fusion setup can fail.
func NewFuser(cfg FuserConfig) (*Fuser, error) {
	bounds := cfg.Bounds
	if bounds == (pollution.Bounds{}) {
		bounds = pollution.IndiaBounds()
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	return &Fuser{bounds: bounds, logger: cfg.Logger}, nil
}

// Fuse concatenates all batches and applies the validation gauntlet: finite
// coordinates inside the area of interest, finite positive values, and the
// per-pollutant plausible range. Implausible rows are dropped, never clamped.
func (f *Fuser) Fuse(batches []Batch) []pollution.Measurement {
	var total int
	for _, b := range batches {
		total += len(b.Measurements)
	}

	fused := make([]pollution.Measurement, 0, total)
	dropped := map[string]int{}
	for _, b := range batches {
		for _, m := range b.Measurements {
			if reason := f.reject(m); reason != "" {
				dropped[reason]++
				continue
			}
			fused = append(fused, m)
		}
	}

	if len(dropped) > 0 {
		ev := f.logger.Warn().Int("kept", len(fused))
		for reason, n := range dropped {
			ev = ev.Int(reason, n)
		}
		ev.Msg("fusion dropped rows")
	}

	return fused
}

// reject returns a non-empty reason label when a measurement fails
// validation.
func (f *Fuser) reject(m pollution.Measurement) string {
	if math.IsNaN(m.Lat) || math.IsInf(m.Lat, 0) ||
		math.IsNaN(m.Lon) || math.IsInf(m.Lon, 0) {
		return "bad_coordinates"
	}
	if !f.bounds.Contains(m.Lat, m.Lon) {
		return "outside_bounds"
	}
	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return "bad_value"
	}
	if m.Value <= 0 {
		return "non_positive"
	}
	if !pollution.InPlausibleRange(m.Pollutant, m.Value) {
		return "implausible"
	}
	return ""
}

// FetchedAt picks the dataset timestamp for a set of batches: the latest
// measurement time, or now when the dataset is empty.
func FetchedAt(measurements []pollution.Measurement, now time.Time) time.Time {
	latest := time.Time{}
	for _, m := range measurements {
		if m.Timestamp.After(latest) {
			latest = m.Timestamp
		}
	}
	if latest.IsZero() {
		return now
	}
	return latest
}
