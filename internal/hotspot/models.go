// Package hotspot locates sustained high-pollution areas in the current
// snapshot, either by grid aggregation or by a trained clustering model.
package hotspot

import (
	"errors"
	"time"

	"github.com/airsentry/airsentry/internal/pollution"
)

// Hotspot errors.
var (
	// ErrNoModel means no trained clustering model is available. The
	// detector degrades to an empty result rather than failing requests.
	ErrNoModel = errors.New("no trained hotspot model")

	// ErrCorruptModel means a persisted model failed to load or validate.
	ErrCorruptModel = errors.New("corrupt hotspot model")

	// ErrNotEnoughData means training was attempted on too few samples.
	ErrNotEnoughData = errors.New("not enough data to train hotspot model")
)

// Hotspot is one detected high-pollution area.
type Hotspot struct {
	Lat       float64
	Lon       float64
	Pollutant pollution.Pollutant
	Value     float64 // mean concentration over the area
	Count     int     // stations or cells backing the hotspot
	Rank      int     // 1 is worst
	ClusterID int
	Category  pollution.Category
	Color     string
	Location  string // most common location label, best effort
}

// Model is a trained clustering model: a feature standardizer plus K-means
// centroids in standardized (lat, lon, value) space. It serializes to JSON
// for the artifact store.
type Model struct {
	Pollutant pollution.Pollutant `json:"pollutant"`
	Means     []float64           `json:"means"`
	Stds      []float64           `json:"stds"`
	Centroids [][]float64         `json:"centroids"`
	Samples   int                 `json:"samples"`
	TrainedAt time.Time           `json:"trained_at"`
}

// Validate checks structural integrity after loading.
func (m *Model) Validate() error {
	if len(m.Means) != featureDim || len(m.Stds) != featureDim {
		return ErrCorruptModel
	}
	if len(m.Centroids) == 0 {
		return ErrCorruptModel
	}
	for _, c := range m.Centroids {
		if len(c) != featureDim {
			return ErrCorruptModel
		}
	}
	for _, s := range m.Stds {
		if s <= 0 {
			return ErrCorruptModel
		}
	}
	return nil
}

// standardize maps a raw feature vector into model space.
func (m *Model) standardize(features []float64) []float64 {
	out := make([]float64, len(features))
	for i, f := range features {
		out[i] = (f - m.Means[i]) / m.Stds[i]
	}
	return out
}

// assign returns the index of the nearest centroid.
func (m *Model) assign(features []float64) int {
	std := m.standardize(features)
	best, bestDist := 0, sqDist(std, m.Centroids[0])
	for i := 1; i < len(m.Centroids); i++ {
		if d := sqDist(std, m.Centroids[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
