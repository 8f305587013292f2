package hotspot

import (
	"math"
	"math/rand"
	"time"

	"github.com/airsentry/airsentry/internal/pollution"
)

const (
	// featureDim is (lat, lon, value).
	featureDim = 3

	// DefaultClusters is the K used for training.
	DefaultClusters = 5

	// maxIterations bounds Lloyd's algorithm.
	maxIterations = 100

	// minTrainingSamples is the floor below which training refuses to
	// produce a model.
	minTrainingSamples = 2 * DefaultClusters

	// trainSeed keeps retraining deterministic across workers.
	trainSeed = 42
)

// Train fits a standardizer and K-means centroids on the measurements of
// one pollutant. Initialization is k-means++ with a fixed seed, so the same
// data always yields the same model.
func Train(measurements []pollution.Measurement, pollutant pollution.Pollutant, k int) (*Model, error) {
	if k <= 0 {
		k = DefaultClusters
	}

	features := make([][]float64, 0, len(measurements))
	for _, m := range measurements {
		if m.Pollutant != pollutant {
			continue
		}
		features = append(features, []float64{m.Lat, m.Lon, m.Value})
	}
	if len(features) < minTrainingSamples || len(features) < k {
		return nil, ErrNotEnoughData
	}

	means, stds := fitStandardizer(features)
	standardized := make([][]float64, len(features))
	for i, f := range features {
		std := make([]float64, featureDim)
		for j := range f {
			std[j] = (f[j] - means[j]) / stds[j]
		}
		standardized[i] = std
	}

	rng := rand.New(rand.NewSource(trainSeed))
	centroids := seedCentroids(standardized, k, rng)

	assignments := make([]int, len(standardized))
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, p := range standardized {
			best, bestDist := 0, sqDist(p, centroids[0])
			for c := 1; c < k; c++ {
				if d := sqDist(p, centroids[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, featureDim)
		}
		for i, p := range standardized {
			c := assignments[i]
			counts[c]++
			for j := range p {
				sums[c][j] += p[j]
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// Re-seed an empty cluster on a random point.
				copy(centroids[c], standardized[rng.Intn(len(standardized))])
				continue
			}
			for j := 0; j < featureDim; j++ {
				centroids[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	return &Model{
		Pollutant: pollutant,
		Means:     means,
		Stds:      stds,
		Centroids: centroids,
		Samples:   len(features),
		TrainedAt: time.Now().UTC(),
	}, nil
}

// fitStandardizer computes per-feature mean and population std. A constant
// feature gets std 1 so standardization stays a no-op instead of dividing
// by zero.
func fitStandardizer(features [][]float64) (means, stds []float64) {
	n := float64(len(features))
	means = make([]float64, featureDim)
	stds = make([]float64, featureDim)

	for _, f := range features {
		for j := range f {
			means[j] += f[j]
		}
	}
	for j := range means {
		means[j] /= n
	}

	for _, f := range features {
		for j := range f {
			d := f[j] - means[j]
			stds[j] += d * d
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / n)
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	return means, stds
}

// seedCentroids picks k initial centroids with k-means++ weighting.
func seedCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := points[rng.Intn(len(points))]
	centroids = append(centroids, append([]float64(nil), first...))

	dists := make([]float64, len(points))
	for len(centroids) < k {
		var total float64
		for i, p := range points {
			best := math.MaxFloat64
			for _, c := range centroids {
				if d := sqDist(p, c); d < best {
					best = d
				}
			}
			dists[i] = best
			total += best
		}

		target := rng.Float64() * total
		idx := 0
		for i, d := range dists {
			target -= d
			if target <= 0 {
				idx = i
				break
			}
		}
		centroids = append(centroids, append([]float64(nil), points[idx]...))
	}
	return centroids
}
