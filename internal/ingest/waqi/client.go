// Package waqi provides a client for the World Air Quality Index API.
package waqi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/airsentry/airsentry/internal/ingest"
	"github.com/airsentry/airsentry/internal/pollution"
	"github.com/airsentry/airsentry/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the WAQI API.
	DefaultBaseURL = "https://api.waqi.info"

	// SourceName identifies this source.
	SourceName = "waqi"
)

// ClientConfig holds configuration for the WAQI client.
type ClientConfig struct {
	// Token is the WAQI API token (required).
	Token string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// Bounds is the area of interest queried via the map/bounds endpoint.
	// Defaults to the India box.
	Bounds pollution.Bounds

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 15s).
	Timeout time.Duration

	Clock  clockwork.Clock
	Logger zerolog.Logger
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches station observations from WAQI. The map/bounds endpoint
// reports one AQI figure per station, which the source treats as PM2.5, the
// dominant pollutant across the area of interest.
type Client struct {
	token      string
	baseURL    string
	bounds     pollution.Bounds
	httpClient HTTPDoer
	normalizer *ingest.Normalizer
}

// NewClient creates a new WAQI client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	bounds := cfg.Bounds
	if bounds == (pollution.Bounds{}) {
		bounds = pollution.IndiaBounds()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            SourceName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
	}

	normalizer := ingest.NewNormalizer(ingest.Schema{
		Source:           SourceName,
		DefaultPollutant: pollution.PM25,
	}, cfg.Clock, cfg.Logger)

	return &Client{
		token:      cfg.Token,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		bounds:     bounds,
		httpClient: httpClient,
		normalizer: normalizer,
	}
}

// Name implements ingest.Source.
func (c *Client) Name() string { return SourceName }

// API response types (from the WAQI map/bounds endpoint).

type boundsResponse struct {
	Status string        `json:"status"`
	Data   []stationData `json:"data"`
}

type stationData struct {
	Lat     float64     `json:"lat"`
	Lon     float64     `json:"lon"`
	UID     int         `json:"uid"`
	AQI     string      `json:"aqi"`
	Station stationInfo `json:"station"`
}

type stationInfo struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

// Fetch retrieves all stations inside the configured bounds and normalizes
// them into canonical measurements. Stations reporting a non-numeric AQI
// ("-") are dropped by the normalizer.
func (c *Client) Fetch(ctx context.Context) ([]pollution.Measurement, error) {
	url := fmt.Sprintf("%s/map/bounds/?latlng=%f,%f,%f,%f&token=%s",
		c.baseURL, c.bounds.MinLat, c.bounds.MinLon, c.bounds.MaxLat, c.bounds.MaxLon, c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ingest.ErrSourceUnavailable, SourceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: unexpected status %d", ingest.ErrSourceUnavailable, SourceName, resp.StatusCode)
	}

	var result boundsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode bounds response: %w", err)
	}
	if result.Status != "ok" {
		return nil, fmt.Errorf("%w: %s: status %q", ingest.ErrSourceUnavailable, SourceName, result.Status)
	}

	rows := make([]map[string]any, 0, len(result.Data))
	for _, s := range result.Data {
		rows = append(rows, map[string]any{
			"latitude":   s.Lat,
			"longitude":  s.Lon,
			"value":      s.AQI,
			"location":   s.Station.Name,
			"station_id": s.UID,
			"timestamp":  s.Station.Time,
		})
	}

	normalized, err := c.normalizer.Normalize(rows)
	if err != nil {
		return nil, err
	}
	return normalized.Measurements, nil
}
