package openmeteo_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsentry/airsentry/internal/weather/openmeteo"
)

func TestClient_GetCurrentWeather(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "ms", r.URL.Query().Get("wind_speed_unit"))
		assert.Contains(t, r.URL.Query().Get("current"), "wind_direction_10m")

		response := map[string]interface{}{
			"latitude":  28.6,
			"longitude": 77.2,
			"current": map[string]interface{}{
				"time":                 "2026-08-20T06:00",
				"temperature_2m":       34.5,
				"relative_humidity_2m": 62.0,
				"precipitation":        0.4,
				"wind_speed_10m":       3.8,
				"wind_direction_10m":   285.0,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	obs, err := client.GetCurrentWeather(context.Background(), 28.61, 77.21)
	require.NoError(t, err)
	assert.Equal(t, 3.8, obs.WindSpeed)
	assert.Equal(t, 285.0, obs.WindDirection)
	assert.Equal(t, 0.4, obs.Precipitation)
	assert.Equal(t, 34.5, obs.Temperature)
	assert.Equal(t, 6, obs.ObservedAt.Hour())
}

func TestClient_GetCurrentWeather_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	_, err := client.GetCurrentWeather(context.Background(), 28.61, 77.21)
	require.Error(t, err)
}
