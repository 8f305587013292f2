// Package sentinel provides a client for a Sentinel-5P derived NO₂ product
// service. The upstream service samples the satellite column density over a
// bounding box and reports surface-level estimates on a coarse grid.
package sentinel

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

// SourceName identifies this source.
const SourceName = "sentinel"

// ClientConfig holds configuration for the Sentinel product client.
type ClientConfig struct {
	// BaseURL is the product service base URL (required; there is no
	// public default).
	BaseURL string

	// Bounds is the sampled area of interest. Defaults to the India box.
	Bounds pollution.Bounds

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 30s; satellite
	// product extraction is slow).
	Timeout time.Duration

	Clock  clockwork.Clock
	Logger zerolog.Logger
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches gridded NO₂ estimates. Every row is NO₂; the product
// carries no other parameter.
type Client struct {
	baseURL    string
	bounds     pollution.Bounds
	httpClient HTTPDoer
	normalizer *ingest.Normalizer
}

// NewClient creates a new Sentinel product client.
func NewClient(cfg ClientConfig) *Client {
	bounds := cfg.Bounds
	if bounds == (pollution.Bounds{}) {
		bounds = pollution.IndiaBounds()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            SourceName,
			Timeout:         timeout,
			MaxRetries:      2,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     10 * time.Second,
		})
	}

	normalizer := ingest.NewNormalizer(ingest.Schema{
		Source:           SourceName,
		DefaultPollutant: pollution.NO2,
		DefaultUnit:      "µg/m³",
	}, cfg.Clock, cfg.Logger)

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		bounds:     bounds,
		httpClient: httpClient,
		normalizer: normalizer,
	}
}

// Name implements ingest.Source.
func (c *Client) Name() string { return SourceName }

// API response types (from the product service grid endpoint).

type gridResponse struct {
	Cells []cellData `json:"cells"`
}

type cellData struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Value float64 `json:"value"`
	Time  string  `json:"time"`
}

// Fetch retrieves the latest NO₂ grid over the configured bounds.
func (c *Client) Fetch(ctx context.Context) ([]pollution.Measurement, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: %s: no base URL configured", ingest.ErrSourceUnavailable, SourceName)
	}

	url := fmt.Sprintf("%s/no2/grid?min_lat=%f&max_lat=%f&min_lon=%f&max_lon=%f",
		c.baseURL, c.bounds.MinLat, c.bounds.MaxLat, c.bounds.MinLon, c.bounds.MaxLon)
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

	var result gridResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode grid response: %w", err)
	}

	rows := make([]map[string]any, 0, len(result.Cells))
	for i, cell := range result.Cells {
		rows = append(rows, map[string]any{
			"latitude":   cell.Lat,
			"longitude":  cell.Lon,
			"value":      cell.Value,
			"timestamp":  cell.Time,
			"station_id": fmt.Sprintf("s5p-%d", i),
		})
	}

	normalized, err := c.normalizer.Normalize(rows)
	if err != nil {
		return nil, err
	}
	return normalized.Measurements, nil
}
