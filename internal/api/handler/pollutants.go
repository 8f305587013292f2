package handler

import (
	"net/http"

	"github.com/airsentry/airsentry/internal/api/models"
	"github.com/airsentry/airsentry/internal/api/response"
	"github.com/airsentry/airsentry/internal/pollution"
)

// PollutantsHandler serves pollutant metadata for client display.
type PollutantsHandler struct{}

// NewPollutantsHandler creates a new PollutantsHandler.
func NewPollutantsHandler() *PollutantsHandler {
	return &PollutantsHandler{}
}

// ListPollutants handles GET /v1/pollutants - supported gases and grading
// thresholds.
func (h *PollutantsHandler) ListPollutants(w http.ResponseWriter, r *http.Request) {
	out := make([]models.PollutantInfo, 0, len(pollution.Pollutants()))
	for _, gas := range pollution.Pollutants() {
		cfg := pollution.Config(gas)
		out = append(out, models.PollutantInfo{
			Pollutant: string(gas),
			Name:      cfg.Name,
			Unit:      cfg.Unit,
			MaxScale:  cfg.MaxScale,
			Thresholds: map[string]float64{
				string(pollution.CategoryGood):               cfg.Thresholds.Good,
				string(pollution.CategoryModerate):           cfg.Thresholds.Moderate,
				string(pollution.CategoryUnhealthySensitive): cfg.Thresholds.UnhealthySensitive,
				string(pollution.CategoryUnhealthy):          cfg.Thresholds.Unhealthy,
				string(pollution.CategoryVeryUnhealthy):      cfg.Thresholds.VeryUnhealthy,
			},
		})
	}

	response.JSON(w, r, http.StatusOK, models.PollutantsResponse{Pollutants: out})
}
