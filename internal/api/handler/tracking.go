package handler

import (
	"net/http"

	"github.com/airsentry/airsentry/internal/advect"
	"github.com/airsentry/airsentry/internal/api/models"
	"github.com/airsentry/airsentry/internal/api/response"
	"github.com/airsentry/airsentry/internal/pollution"
	"github.com/airsentry/airsentry/internal/weather"
)

// TrackingHandler serves wind-advected pollution trajectories.
type TrackingHandler struct {
	store   *pollution.Store
	tracker *advect.Tracker
	weather *WeatherHandler
}

// NewTrackingHandler creates a new TrackingHandler. The weather handler is
// reused as the wind field source so both endpoints see the same cache.
func NewTrackingHandler(store *pollution.Store, tracker *advect.Tracker, wh *WeatherHandler) *TrackingHandler {
	return &TrackingHandler{store: store, tracker: tracker, weather: wh}
}

// GetTracking handles GET /v1/tracking?gas=. An empty point list is a valid
// answer: it means no measurement sits within weather coverage.
func (h *TrackingHandler) GetTracking(w http.ResponseWriter, r *http.Request) {
	gas, ok := gasParam(w, r)
	if !ok {
		return
	}

	snap := h.store.Current()
	if snap.Empty() {
		response.NoData(w, r, "the current snapshot is empty")
		return
	}

	var observations []*weather.Observation
	if h.weather != nil && h.weather.service != nil {
		observations = h.weather.observations(r)
	}

	points := h.tracker.Track(snap.ForPollutant(gas), observations)

	out := make([]models.TrajectoryPointDTO, len(points))
	for i, p := range points {
		out[i] = models.TrajectoryPointDTO{
			Origin:        models.Point{Lat: p.OriginLat, Lon: p.OriginLon},
			Predicted:     models.Point{Lat: p.PredictedLat, Lon: p.PredictedLon},
			HoursAhead:    p.HoursAhead,
			Value:         p.Value,
			Pollutant:     string(p.Pollutant),
			WindSpeed:     p.WindSpeed,
			WindDirection: p.WindDirection,
		}
	}

	response.JSON(w, r, http.StatusOK, models.TrackingResponse{
		Pollutant: string(gas),
		Horizon:   h.tracker.Horizon(),
		Count:     len(out),
		Points:    out,
	})
}
