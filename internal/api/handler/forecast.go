package handler

import (
	"net/http"

	"github.com/airsentry/airsentry/internal/api/models"
	"github.com/airsentry/airsentry/internal/api/response"
	"github.com/airsentry/airsentry/internal/forecast"
	"github.com/airsentry/airsentry/internal/pollution"
)

// ForecastHandler serves 24-hour city projections.
type ForecastHandler struct {
	store      *pollution.Store
	forecaster *forecast.Forecaster
}

// NewForecastHandler creates a new ForecastHandler.
func NewForecastHandler(store *pollution.Store, forecaster *forecast.Forecaster) *ForecastHandler {
	return &ForecastHandler{store: store, forecaster: forecaster}
}

// GetForecast handles GET /v1/forecast?city=&gas=. Unknown cities get the
// regional baseline; there is always an answer.
func (h *ForecastHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		response.BadRequest(w, r, "city is required", []models.FieldError{
			{Field: "city", Message: "required", Code: "REQUIRED"},
		})
		return
	}
	gas, ok := gasParam(w, r)
	if !ok {
		return
	}

	result := h.forecaster.Forecast(h.store.Current(), city, gas)

	response.JSON(w, r, http.StatusOK, models.ForecastResponse{
		City:        result.City,
		Pollutant:   string(result.Pollutant),
		Labels:      result.Labels,
		Predictions: result.Predictions,
		Mode:        result.Mode,
		CurrentMean: result.CurrentMean,
		Note:        result.Note,
	})
}
