package handler

import (
	"net/http"

	"github.com/airsentry/airsentry/internal/api/models"
	"github.com/airsentry/airsentry/internal/api/response"
	"github.com/airsentry/airsentry/internal/influence"
	"github.com/airsentry/airsentry/internal/pollution"
	"github.com/airsentry/airsentry/internal/weather"
)

// WarningsHandler serves ranked influence warnings.
type WarningsHandler struct {
	store   *pollution.Store
	ranker  *influence.Ranker
	weather *WeatherHandler
}

// NewWarningsHandler creates a new WarningsHandler.
func NewWarningsHandler(store *pollution.Store, ranker *influence.Ranker, wh *WeatherHandler) *WarningsHandler {
	return &WarningsHandler{store: store, ranker: ranker, weather: wh}
}

// GetWarnings handles GET /v1/warnings. The first available city observation
// stands in for regional conditions; with no weather at all the ranker
// assumes calm air, which is the conservative direction for stagnation.
func (h *WarningsHandler) GetWarnings(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Current()
	if snap.Empty() {
		response.NoData(w, r, "the current snapshot is empty")
		return
	}

	var obs *weather.Observation
	if h.weather != nil && h.weather.service != nil {
		for _, o := range h.weather.observations(r) {
			if o != nil {
				obs = o
				break
			}
		}
	}

	warnings := h.ranker.Rank(snap, obs)

	out := make([]models.WarningDTO, len(warnings))
	for i, wrn := range warnings {
		out[i] = models.WarningDTO{
			Location:      wrn.Location,
			MeanValue:     round1(wrn.MeanValue),
			Score:         round1(wrn.Score),
			WindSpeed:     round1(wrn.WindSpeed),
			WindDirection: wrn.WindDirection,
			Precipitation: wrn.Precipitation,
			Severity:      wrn.Severity,
			Message:       wrn.Message,
		}
	}

	response.JSON(w, r, http.StatusOK, models.WarningsResponse{
		Count:    len(out),
		Warnings: out,
	})
}
