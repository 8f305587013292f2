// Package openaq provides a client for the OpenAQ API.
package openaq

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
	// DefaultBaseURL is the base URL for the OpenAQ API.
	DefaultBaseURL = "https://api.openaq.org"

	// SourceName identifies this source.
	SourceName = "openaq"

	// pageLimit is the per-page row limit requested from OpenAQ.
	pageLimit = 1000

	// maxPages caps pagination so one slow refresh cannot crawl the whole
	// archive.
	maxPages = 10
)

// ClientConfig holds configuration for the OpenAQ client.
type ClientConfig struct {
	// APIKey is sent as the X-API-Key header (required by OpenAQ v3).
	APIKey string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// Country filters results to one ISO country code (default: "IN").
	Country string

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

// Client fetches latest per-station readings from OpenAQ. Unlike WAQI it
// reports true concentrations per pollutant, so one station contributes one
// row per parameter it measures.
type Client struct {
	apiKey     string
	baseURL    string
	country    string
	httpClient HTTPDoer
	normalizer *ingest.Normalizer
}

// NewClient creates a new OpenAQ client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	country := cfg.Country
	if country == "" {
		country = "IN"
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

	normalizer := ingest.NewNormalizer(ingest.Schema{Source: SourceName}, cfg.Clock, cfg.Logger)

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		country:    country,
		httpClient: httpClient,
		normalizer: normalizer,
	}
}

// Name implements ingest.Source.
func (c *Client) Name() string { return SourceName }

// API response types (from the OpenAQ latest endpoint).

type latestResponse struct {
	Meta    metaInfo     `json:"meta"`
	Results []latestData `json:"results"`
}

type metaInfo struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Found int `json:"found"`
}

type latestData struct {
	Location     string            `json:"location"`
	Coordinates  coordinatesData   `json:"coordinates"`
	Measurements []measurementData `json:"measurements"`
}

type coordinatesData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type measurementData struct {
	Parameter   string  `json:"parameter"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	LastUpdated string  `json:"lastUpdated"`
}

// Fetch retrieves the latest readings for the configured country, page by
// page, and normalizes them into canonical measurements.
func (c *Client) Fetch(ctx context.Context) ([]pollution.Measurement, error) {
	var rows []map[string]any

	for page := 1; page <= maxPages; page++ {
		results, found, err := c.fetchLatestPage(ctx, page)
		if err != nil {
			return nil, err
		}

		for _, loc := range results {
			for _, m := range loc.Measurements {
				rows = append(rows, map[string]any{
					"latitude":  loc.Coordinates.Latitude,
					"longitude": loc.Coordinates.Longitude,
					"parameter": m.Parameter,
					"value":     m.Value,
					"unit":      m.Unit,
					"location":  loc.Location,
					"timestamp": m.LastUpdated,
				})
			}
		}

		if page*pageLimit >= found {
			break
		}
	}

	if len(rows) == 0 {
		return nil, nil
	}

	normalized, err := c.normalizer.Normalize(rows)
	if err != nil {
		return nil, err
	}
	return normalized.Measurements, nil
}

// fetchLatestPage fetches a single page of latest readings.
func (c *Client) fetchLatestPage(ctx context.Context, page int) ([]latestData, int, error) {
	url := fmt.Sprintf("%s/v2/latest?country=%s&limit=%d&page=%d", c.baseURL, c.country, pageLimit, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", ingest.ErrSourceUnavailable, SourceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("%w: %s: unexpected status %d", ingest.ErrSourceUnavailable, SourceName, resp.StatusCode)
	}

	var result latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, 0, fmt.Errorf("decode latest response: %w", err)
	}

	return result.Results, result.Meta.Found, nil
}
