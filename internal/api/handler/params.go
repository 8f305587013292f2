package handler

import (
	"net/http"
	"strconv"

	"github.com/airsentry/airsentry/internal/api/models"
	"github.com/airsentry/airsentry/internal/api/response"
	"github.com/airsentry/airsentry/internal/pollution"
)

// gasParam reads the ?gas= query parameter, defaulting to PM2.5, the primary
// pollutant. Writes a 400 problem and returns false on an unknown pollutant.
func gasParam(w http.ResponseWriter, r *http.Request) (pollution.Pollutant, bool) {
	raw := r.URL.Query().Get("gas")
	if raw == "" {
		return pollution.PM25, true
	}
	p, err := pollution.ParsePollutant(raw)
	if err != nil {
		response.BadRequest(w, r, "unknown pollutant", []models.FieldError{
			{Field: "gas", Message: "must be one of pm25, pm10, no2, so2, co, o3", Code: "INVALID_ENUM"},
		})
		return "", false
	}
	return p, true
}

// floatParam reads a required float query parameter within [min, max].
func floatParam(w http.ResponseWriter, r *http.Request, name string, min, max float64) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		response.BadRequest(w, r, name+" is required", []models.FieldError{
			{Field: name, Message: "required", Code: "REQUIRED"},
		})
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < min || v > max {
		response.BadRequest(w, r, name+" is out of range", []models.FieldError{
			{Field: name, Message: "must be a number between " +
				strconv.FormatFloat(min, 'f', -1, 64) + " and " +
				strconv.FormatFloat(max, 'f', -1, 64), Code: "OUT_OF_RANGE"},
		})
		return 0, false
	}
	return v, true
}

// intParam reads an optional positive integer query parameter.
func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
