package hotspot

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/airsentry/airsentry/internal/pollution"
)

const (
	// gridResolution is the cell size in degrees for the grid detector.
	gridResolution = 0.05

	// minCellCount is the minimum stations per grid cell; single-station
	// cells are noise, not hotspots.
	minCellCount = 2

	// rankChunk groups ranked cells into cluster ids.
	rankChunk = 5
)

// DetectorConfig holds configuration for the detector.
type DetectorConfig struct {
	Models ModelStore
	Logger zerolog.Logger
}

// Detector finds hotspots in a snapshot. The grid method needs no trained
// state; the clustering method consults the model store and degrades to an
// empty result when no usable model exists.
type Detector struct {
	models ModelStore
	logger zerolog.Logger
}

// NewDetector creates a detector.
func NewDetector(cfg DetectorConfig) *Detector {
	return &Detector{models: cfg.Models, logger: cfg.Logger}
}

// DetectGrid aggregates measurements into fixed cells and ranks cells by
// mean concentration, worst first. Cells backed by fewer than two stations
// are discarded.
func (d *Detector) DetectGrid(snap *pollution.Snapshot, pollutant pollution.Pollutant) []Hotspot {
	rows := snap.ForPollutant(pollutant)
	if len(rows) == 0 {
		return nil
	}

	type cellKey struct{ row, col int }
	type cellAgg struct {
		sumLat, sumLon, sumValue float64
		count                    int
		locations                map[string]int
	}

	cells := make(map[cellKey]*cellAgg)
	for _, m := range rows {
		key := cellKey{
			row: int(math.Floor(m.Lat / gridResolution)),
			col: int(math.Floor(m.Lon / gridResolution)),
		}
		agg, ok := cells[key]
		if !ok {
			agg = &cellAgg{locations: make(map[string]int)}
			cells[key] = agg
		}
		agg.sumLat += m.Lat
		agg.sumLon += m.Lon
		agg.sumValue += m.Value
		agg.count++
		if m.Location != "" {
			agg.locations[m.Location]++
		}
	}

	hotspots := make([]Hotspot, 0, len(cells))
	for _, agg := range cells {
		if agg.count < minCellCount {
			continue
		}
		n := float64(agg.count)
		value := agg.sumValue / n
		hotspots = append(hotspots, Hotspot{
			Lat:       agg.sumLat / n,
			Lon:       agg.sumLon / n,
			Pollutant: pollutant,
			Value:     value,
			Count:     agg.count,
			Category:  pollution.CategoryFor(pollutant, value),
			Color:     pollution.ColorFor(pollutant, value),
			Location:  topLocation(agg.locations),
		})
	}

	rank(hotspots, true)
	return hotspots
}

// DetectClusters assigns the snapshot to the trained model's clusters and
// ranks clusters by mean concentration. A missing or corrupt model is a
// degraded state, not an error: the caller gets an empty list and a warning
// is logged.
func (d *Detector) DetectClusters(ctx context.Context, snap *pollution.Snapshot, pollutant pollution.Pollutant) []Hotspot {
	rows := snap.ForPollutant(pollutant)
	if len(rows) == 0 {
		return nil
	}

	model, err := d.models.Load(ctx, pollutant)
	if err != nil {
		if errors.Is(err, ErrNoModel) {
			d.logger.Warn().
				Str("pollutant", string(pollutant)).
				Msg("no hotspot model trained yet, returning empty result")
		} else {
			d.logger.Warn().
				Str("pollutant", string(pollutant)).
				Err(err).
				Msg("hotspot model unusable, returning empty result")
		}
		return []Hotspot{}
	}

	type clusterAgg struct {
		sumLat, sumLon, sumValue float64
		count                    int
		locations                map[string]int
	}
	clusters := make(map[int]*clusterAgg)
	for _, m := range rows {
		id := model.assign([]float64{m.Lat, m.Lon, m.Value})
		agg, ok := clusters[id]
		if !ok {
			agg = &clusterAgg{locations: make(map[string]int)}
			clusters[id] = agg
		}
		agg.sumLat += m.Lat
		agg.sumLon += m.Lon
		agg.sumValue += m.Value
		agg.count++
		if m.Location != "" {
			agg.locations[m.Location]++
		}
	}

	hotspots := make([]Hotspot, 0, len(clusters))
	for id, agg := range clusters {
		if agg.count < minCellCount {
			continue
		}
		n := float64(agg.count)
		value := agg.sumValue / n
		hotspots = append(hotspots, Hotspot{
			Lat:       agg.sumLat / n,
			Lon:       agg.sumLon / n,
			Pollutant: pollutant,
			Value:     value,
			Count:     agg.count,
			ClusterID: id,
			Category:  pollution.CategoryFor(pollutant, value),
			Color:     pollution.ColorFor(pollutant, value),
			Location:  topLocation(agg.locations),
		})
	}

	rank(hotspots, false)
	return hotspots
}

// Retrain fits a fresh clustering model on the given measurements and
// persists it. Too little data keeps the previous model in place.
func (d *Detector) Retrain(ctx context.Context, measurements []pollution.Measurement, pollutant pollution.Pollutant) error {
	model, err := Train(measurements, pollutant, DefaultClusters)
	if err != nil {
		if errors.Is(err, ErrNotEnoughData) {
			d.logger.Warn().
				Str("pollutant", string(pollutant)).
				Msg("skipping hotspot retrain, not enough data")
			return nil
		}
		return err
	}

	if err := d.models.Save(ctx, model); err != nil {
		return err
	}

	d.logger.Info().
		Str("pollutant", string(pollutant)).
		Int("samples", model.Samples).
		Int("clusters", len(model.Centroids)).
		Msg("hotspot model retrained")
	return nil
}

// rank sorts worst-first and assigns dense ranks; equal means share a rank.
// With chunkIDs set, cluster ids group ranked cells in chunks of five; the
// clustering detector keeps the model's own cluster ids instead.
func rank(hotspots []Hotspot, chunkIDs bool) {
	sort.Slice(hotspots, func(i, j int) bool { return hotspots[i].Value > hotspots[j].Value })

	rankNum := 0
	var prev float64
	for i := range hotspots {
		if i == 0 || hotspots[i].Value != prev {
			rankNum++
			prev = hotspots[i].Value
		}
		hotspots[i].Rank = rankNum
		if chunkIDs {
			hotspots[i].ClusterID = (rankNum - 1) / rankChunk
		}
	}
}

func topLocation(counts map[string]int) string {
	best, bestCount := "", 0
	for loc, n := range counts {
		if n > bestCount || (n == bestCount && loc < best) {
			best, bestCount = loc, n
		}
	}
	return best
}
