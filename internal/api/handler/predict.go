package handler

import (
	"net/http"

	"github.com/airsentry/airsentry/internal/api/models"
	"github.com/airsentry/airsentry/internal/api/response"
	"github.com/airsentry/airsentry/internal/pollution"
	"github.com/airsentry/airsentry/internal/predict"
)

// PredictHandler serves spatial point estimates.
type PredictHandler struct {
	store     *pollution.Store
	predictor *predict.IDW
}

// NewPredictHandler creates a new PredictHandler.
func NewPredictHandler(store *pollution.Store, predictor *predict.IDW) *PredictHandler {
	return &PredictHandler{store: store, predictor: predictor}
}

// GetPrediction handles GET /v1/predict?lat=&lon=&gas=. Always answers: with
// no nearby data the per-pollutant default is returned and stationsUsed is 0.
func (h *PredictHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	lat, ok := floatParam(w, r, "lat", -90, 90)
	if !ok {
		return
	}
	lon, ok := floatParam(w, r, "lon", -180, 180)
	if !ok {
		return
	}
	gas, ok := gasParam(w, r)
	if !ok {
		return
	}

	p := h.predictor.Predict(h.store.Current(), lat, lon, gas)

	response.JSON(w, r, http.StatusOK, models.PredictionResponse{
		Lat:          p.Lat,
		Lon:          p.Lon,
		Pollutant:    string(p.Pollutant),
		Value:        round1(p.Value),
		Unit:         pollution.Config(gas).Unit,
		Category:     string(p.Category),
		Color:        p.Color,
		StationsUsed: p.StationsUsed,
	})
}
