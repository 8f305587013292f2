package handler

import (
	"net/http"

	"github.com/airsentry/airsentry/internal/api/models"
	"github.com/airsentry/airsentry/internal/api/response"
	"github.com/airsentry/airsentry/internal/weather"
)

// CityPoint is one monitored city whose conditions the API serves and the
// advection/influence handlers consume.
type CityPoint struct {
	Name string
	Lat  float64
	Lon  float64
}

// WeatherHandler serves current conditions at the monitored cities.
type WeatherHandler struct {
	service *weather.Service
	cities  []CityPoint
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(service *weather.Service, cities []CityPoint) *WeatherHandler {
	return &WeatherHandler{service: service, cities: cities}
}

// GetCurrent handles GET /v1/weather/current. Cities whose provider call
// failed are omitted; an empty list means the provider is down wholesale.
func (h *WeatherHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		response.ServiceUnavailable(w, r, "weather service is not configured")
		return
	}

	observations := h.observations(r)

	out := make([]models.WeatherObservationDTO, 0, len(observations))
	for i, obs := range observations {
		if obs == nil {
			continue
		}
		out = append(out, models.WeatherObservationDTO{
			City:          h.cities[i].Name,
			Lat:           obs.Lat,
			Lon:           obs.Lon,
			Temperature:   obs.Temperature,
			Humidity:      obs.Humidity,
			WindSpeed:     obs.WindSpeed,
			WindDirection: obs.WindDirection,
			WindCategory:  string(obs.GetWindCategory()),
			Precipitation: obs.Precipitation,
			ObservedAt:    models.Timestamp(obs.ObservedAt),
		})
	}

	response.JSON(w, r, http.StatusOK, models.CurrentWeatherResponse{
		Count:        len(out),
		Observations: out,
	})
}

// observations fetches per-city conditions, aligned with h.cities; entries
// are nil where the provider failed.
func (h *WeatherHandler) observations(r *http.Request) []*weather.Observation {
	points := make([]weather.Point, len(h.cities))
	for i, c := range h.cities {
		points[i] = weather.Point{Lat: c.Lat, Lon: c.Lon}
	}
	return h.service.GetWeatherForPoints(r.Context(), points)
}
