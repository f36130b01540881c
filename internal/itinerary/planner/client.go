// Package planner provides a client for the trip planning service that owns
// itineraries. The planner is an external collaborator: this client only
// reads fully-populated itineraries keyed by trip identifier.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripsentry/tripsentry/internal/itinerary"
	"github.com/tripsentry/tripsentry/internal/resilience"
)

const (
	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	clientName = "planner"
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the planner client.
type ClientConfig struct {
	// BaseURL is the planner API base URL (required).
	BaseURL string

	// APIKey authenticates requests, sent as a header when set.
	APIKey string

	// HTTPClient is the HTTP client to use (optional). If nil, a resilient
	// client with defaults is used.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client fetches itineraries from the planner.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new planner client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(clientName)
		clientCfg.Timeout = timeout
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// GetItinerary retrieves the planned itinerary for a trip.
func (c *Client) GetItinerary(ctx context.Context, tripID string) (*itinerary.Itinerary, error) {
	url := fmt.Sprintf("%s/v1/trips/%s/itinerary", c.baseURL, tripID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	c.logger.Debug().Str("trip_id", tripID).Msg("requesting itinerary from planner")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching itinerary for trip %s: %w", tripID, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, itinerary.ErrItineraryNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck // best effort detail
		return nil, fmt.Errorf("planner returned status %d: %s", resp.StatusCode, string(body))
	}

	var wire wireItinerary
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding itinerary for trip %s: %w", tripID, err)
	}

	return wire.toItinerary(), nil
}

// Ensure Client implements itinerary.Source.
var _ itinerary.Source = (*Client)(nil)
