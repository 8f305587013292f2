// Package influence scores locations by how far their pollution reaches:
// concentration amplified by wind transport, damped by rain washout. The
// ranked output drives the warnings surface.
package influence

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/airsentry/airsentry/internal/pollution"
	"github.com/airsentry/airsentry/internal/weather"
)

const (
	// windNorm is the wind speed (km/h) that doubles a location's reach.
	windNorm = 15.0

	// washoutFactor controls how hard precipitation (mm/h) cuts the score.
	washoutFactor = 5.0

	// materialityThreshold is the minimum mean concentration worth
	// warning about.
	materialityThreshold = 50.0

	// DefaultTopN is the number of ranked warnings produced.
	DefaultTopN = 4
)

// Warning is one ranked influence entry with the weather context that
// shaped its score.
type Warning struct {
	Location      string
	MeanValue     float64
	Score         float64
	WindSpeed     float64 // km/h
	WindDirection float64
	Precipitation float64
	Severity      string
	Message       string
}

// RankerConfig holds configuration for the ranker.
type RankerConfig struct {
	Logger zerolog.Logger

	// TopN caps the ranked output (default: 4).
	TopN int
}

// Ranker produces ranked influence warnings from the current snapshot and
// the representative weather observation.
type Ranker struct {
	logger zerolog.Logger
	topN   int
}

// NewRanker creates a ranker.
func NewRanker(cfg RankerConfig) *Ranker {
	topN := cfg.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Ranker{logger: cfg.Logger, topN: topN}
}

// Score computes the influence score for one concentration under given wind
// (km/h) and precipitation (mm/h). Faster wind spreads the impact further;
// rain washes particles out.
func Score(value, windKmh, precipitation float64) float64 {
	windMult := 1.0 + windKmh/windNorm
	rainMult := 1.0 / (1.0 + precipitation*washoutFactor)
	return value * windMult * rainMult
}

// Rank groups the snapshot's primary-pollutant rows by location, scores each
// location against the weather observation, and returns the top entries by
// score. Locations below the materiality threshold are ignored. A nil
// observation means calm dry conditions.
func (r *Ranker) Rank(snap *pollution.Snapshot, obs *weather.Observation) []Warning {
	if snap.Empty() {
		return nil
	}

	var windKmh, windDir, precip float64
	if obs != nil {
		windKmh = obs.WindSpeed * 3.6
		windDir = obs.WindDirection
		precip = obs.Precipitation
	}

	type agg struct {
		sum   float64
		count int
	}
	byLocation := make(map[string]*agg)
	for _, m := range snap.Measurements {
		if m.Pollutant != pollution.PM25 || m.Location == "" {
			continue
		}
		a, ok := byLocation[m.Location]
		if !ok {
			a = &agg{}
			byLocation[m.Location] = a
		}
		a.sum += m.Value
		a.count++
	}

	warnings := make([]Warning, 0, len(byLocation))
	for location, a := range byLocation {
		mean := a.sum / float64(a.count)
		if mean <= materialityThreshold {
			continue
		}

		score := Score(mean, windKmh, precip)
		w := Warning{
			Location:      location,
			MeanValue:     mean,
			Score:         score,
			WindSpeed:     windKmh,
			WindDirection: windDir,
			Precipitation: precip,
			Severity:      severity(mean, score),
		}
		w.Message = buildMessage(w)
		warnings = append(warnings, w)
	}

	sort.Slice(warnings, func(i, j int) bool {
		if warnings[i].Score == warnings[j].Score {
			return warnings[i].Location < warnings[j].Location
		}
		return warnings[i].Score > warnings[j].Score
	})

	if len(warnings) > r.topN {
		warnings = warnings[:r.topN]
	}
	return warnings
}

func severity(mean, score float64) string {
	if mean > 150 || score > 200 {
		return "high"
	}
	return "medium"
}

// buildMessage renders the human-readable drift summary. Drift direction is
// where the plume goes, the opposite of where the wind comes from.
func buildMessage(w Warning) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pollution level %.1f µg/m³", w.MeanValue)
	if w.WindSpeed > 10 {
		fmt.Fprintf(&b, " is drifting %s (Influence Score: %.1f).",
			CardinalDirection(w.WindDirection+180), w.Score)
	} else {
		fmt.Fprintf(&b, " is stagnant (Influence Score: %.1f).", w.Score)
	}
	if w.Precipitation > 0.1 {
		b.WriteString(" Impact mitigated by active rainfall.")
	}
	return b.String()
}

var cardinals = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// CardinalDirection maps a bearing in degrees to an 8-point compass label.
func CardinalDirection(degrees float64) string {
	degrees = degrees - 360*float64(int(degrees/360))
	if degrees < 0 {
		degrees += 360
	}
	idx := int((degrees+22.5)/45) % 8
	return cardinals[idx]
}
