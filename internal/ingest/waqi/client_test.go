package waqi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsentry/airsentry/internal/ingest"
	"github.com/airsentry/airsentry/internal/ingest/waqi"
	"github.com/airsentry/airsentry/internal/pollution"
)

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/map/bounds/", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))

		response := map[string]interface{}{
			"status": "ok",
			"data": []map[string]interface{}{
				{
					"lat": 28.6315, "lon": 77.2167, "uid": 2554, "aqi": "182",
					"station": map[string]string{"name": "Mandir Marg, Delhi", "time": "2026-08-20T06:00:00Z"},
				},
				{
					"lat": 19.1071, "lon": 72.8367, "uid": 11284, "aqi": "-",
					"station": map[string]string{"name": "Andheri, Mumbai", "time": "2026-08-20T06:00:00Z"},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := waqi.NewClient(waqi.ClientConfig{
		Token:      "test-token",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	rows, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1, "the '-' AQI station must be dropped")

	m := rows[0]
	assert.Equal(t, waqi.SourceName, m.Source)
	assert.Equal(t, pollution.PM25, m.Pollutant)
	assert.Equal(t, 182.0, m.Value)
	assert.Equal(t, "Mandir Marg, Delhi", m.Location)
	assert.Equal(t, "2554", m.StationID)
}

func TestClient_Fetch_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "error"})
	}))
	defer server.Close()

	client := waqi.NewClient(waqi.ClientConfig{
		Token:      "test-token",
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	_, err := client.Fetch(context.Background())
	require.ErrorIs(t, err, ingest.ErrSourceUnavailable)
}
