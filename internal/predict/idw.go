// Package predict estimates pollutant concentrations at arbitrary
// coordinates from the current snapshot using inverse distance weighting.
package predict

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/airsentry/airsentry/internal/pollution"
)

const (
	// neighborCount is how many nearest stations contribute to an
	// estimate.
	neighborCount = 5

	// distanceEpsilon keeps the weight w = 1/(d²+ε) finite when a query
	// lands on a station.
	distanceEpsilon = 0.01

	// clampMin and clampMax bound every estimate to a credible range.
	clampMin = 5.0
	clampMax = 400.0
)

// Prediction is one point estimate with the evidence behind it.
type Prediction struct {
	Lat       float64
	Lon       float64
	Pollutant pollution.Pollutant
	Value     float64
	Category  pollution.Category
	Color     string

	// StationsUsed is how many neighbors contributed. Zero means the
	// per-pollutant default was returned.
	StationsUsed int
}

// IDWConfig holds configuration for the predictor.
type IDWConfig struct {
	Logger zerolog.Logger
}

// IDW is an inverse-distance-weighted spatial predictor. Distances are
// planar in degree space, fine at city scale inside the area of interest.
type IDW struct {
	logger zerolog.Logger
}

// NewIDW creates a predictor.
func NewIDW(cfg IDWConfig) *IDW {
	return &IDW{logger: cfg.Logger}
}

// Predict estimates one pollutant at one coordinate. With no measurements
// for the pollutant it returns the per-pollutant default rather than
// failing: a map tile must always render something.
func (p *IDW) Predict(snap *pollution.Snapshot, lat, lon float64, pollutant pollution.Pollutant) Prediction {
	rows := snap.ForPollutant(pollutant)
	if len(rows) == 0 {
		value := pollution.Config(pollutant).PredictionDefault
		p.logger.Debug().
			Str("pollutant", string(pollutant)).
			Float64("default", value).
			Msg("no measurements, returning prediction default")
		return p.finish(lat, lon, pollutant, value, 0)
	}

	type neighbor struct {
		dist  float64
		value float64
	}
	neighbors := make([]neighbor, len(rows))
	for i, m := range rows {
		neighbors[i] = neighbor{
			dist:  math.Hypot(m.Lat-lat, m.Lon-lon),
			value: m.Value,
		}
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].dist < neighbors[j].dist })

	k := neighborCount
	if len(neighbors) < k {
		k = len(neighbors)
	}

	var weightSum, weightedValue float64
	for _, nb := range neighbors[:k] {
		w := 1.0 / (nb.dist*nb.dist + distanceEpsilon)
		weightSum += w
		weightedValue += w * nb.value
	}

	return p.finish(lat, lon, pollutant, weightedValue/weightSum, k)
}

func (p *IDW) finish(lat, lon float64, pollutant pollution.Pollutant, value float64, used int) Prediction {
	value = math.Min(math.Max(value, clampMin), clampMax)
	return Prediction{
		Lat:          lat,
		Lon:          lon,
		Pollutant:    pollutant,
		Value:        value,
		Category:     pollution.CategoryFor(pollutant, value),
		Color:        pollution.ColorFor(pollutant, value),
		StationsUsed: used,
	}
}
