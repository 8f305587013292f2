package handler

import (
	"errors"
	"math"
	"net/http"

	"github.com/airsentry/airsentry/internal/api/models"
	"github.com/airsentry/airsentry/internal/api/response"
	"github.com/airsentry/airsentry/internal/pollution"
)

// StatsHandler serves per-pollutant and per-source snapshot statistics.
type StatsHandler struct {
	store *pollution.Store
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(store *pollution.Store) *StatsHandler {
	return &StatsHandler{store: store}
}

// GetStats handles GET /v1/stats?gas= - one pollutant's summary.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	gas, ok := gasParam(w, r)
	if !ok {
		return
	}

	snap := h.store.Current()
	stats, err := snap.StatsFor(gas)
	if err != nil {
		if errors.Is(err, pollution.ErrNoData) {
			response.NoData(w, r, "no "+string(gas)+" measurements in the current snapshot")
			return
		}
		response.InternalError(w, r, "stats computation failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.StatsResponse{
		FetchedAt: models.Timestamp(snap.FetchedAt),
		Stats:     toGasStats(gas, stats),
	})
}

// GetAllStats handles GET /v1/stats/all - every pollutant with data.
func (h *StatsHandler) GetAllStats(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Current()
	if snap.Empty() {
		response.NoData(w, r, "the current snapshot is empty")
		return
	}

	all := make([]models.GasStats, 0, len(pollution.Pollutants()))
	for _, gas := range pollution.Pollutants() {
		stats, err := snap.StatsFor(gas)
		if err != nil {
			continue // pollutant absent from this snapshot
		}
		all = append(all, toGasStats(gas, stats))
	}

	response.JSON(w, r, http.StatusOK, models.AllStatsResponse{
		FetchedAt: models.Timestamp(snap.FetchedAt),
		Stats:     all,
	})
}

// GetSourceStats handles GET /v1/stats/sources - per-source contribution.
func (h *StatsHandler) GetSourceStats(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Current()
	if snap == nil {
		response.NoData(w, r, "no refresh cycle has completed yet")
		return
	}

	response.JSON(w, r, http.StatusOK, models.SourceStatsResponse{
		FetchedAt: models.Timestamp(snap.FetchedAt),
		Total:     len(snap.Measurements),
		Sources:   snap.SourceCounts,
	})
}

func toGasStats(gas pollution.Pollutant, stats pollution.Stats) models.GasStats {
	return models.GasStats{
		Pollutant: string(gas),
		Unit:      pollution.Config(gas).Unit,
		Count:     stats.Count,
		Mean:      round1(stats.Mean),
		Median:    round1(stats.Median),
		Min:       round1(stats.Min),
		Max:       round1(stats.Max),
		Std:       round1(stats.Std),
		Category:  string(pollution.CategoryFor(gas, stats.Mean)),
		Color:     pollution.ColorFor(gas, stats.Mean),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
