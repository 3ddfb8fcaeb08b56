// Package osrm provides a client for the OSRM HTTP routing API.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/flashdirex/flashdirex/internal/geo"
	"github.com/flashdirex/flashdirex/internal/provider/resilience"
	"github.com/flashdirex/flashdirex/internal/routing"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "osrm"

	// DefaultBaseURL is the public OSRM demo server.
	DefaultBaseURL = "https://router.project-osrm.org"

	// DefaultTimeout is the request timeout. Kept short: the local
	// fallback tiers are the designed recovery path, not retries.
	DefaultTimeout = 8 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OSRM client.
type ClientConfig struct {
	// BaseURL is the OSRM base URL (optional, defaults to the demo server).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with retries disabled.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 8s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OSRM API client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new OSRM client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		// Failures here hand off to the local graph tiers instead of
		// re-trying the remote.
		clientCfg.NoRetry = true
		if cfg.Registry != nil {
			clientCfg.Registry = cfg.Registry
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// BaseURL returns the configured base URL, for health reporting.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Route requests a drive route. OSRM declining to route (code != "Ok", or
// an empty route list) maps to routing.ErrNoRoute; transport and server
// faults map to routing.ErrRemoteUnavailable.
func (c *Client) Route(ctx context.Context, start, end geo.Coordinate) (*routing.RemoteRoute, error) {
	// OSRM takes lng,lat pairs.
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		c.baseURL, start.Lng, start.Lat, end.Lng, end.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach routing service",
			Err:      routing.ErrRemoteUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}

	var osrmResp routeResponse
	if err := json.Unmarshal(body, &osrmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if osrmResp.Code != "Ok" || len(osrmResp.Routes) == 0 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  fmt.Sprintf("osrm returned code %q with %d routes", osrmResp.Code, len(osrmResp.Routes)),
			Err:      routing.ErrNoRoute,
		}
	}

	route := osrmResp.Routes[0]
	geometry := make([]geo.Coordinate, 0, len(route.Geometry.Coordinates))
	for _, pair := range route.Geometry.Coordinates {
		if len(pair) < 2 {
			continue
		}
		geometry = append(geometry, geo.Coordinate{Lat: pair[1], Lng: pair[0]})
	}

	c.logger.Debug().
		Float64("meters", route.Distance).
		Float64("seconds", route.Duration).
		Int("points", len(geometry)).
		Msg("osrm route received")

	return &routing.RemoteRoute{
		Geometry: geometry,
		Meters:   route.Distance,
		Seconds:  route.Duration,
	}, nil
}

// handleErrorResponse maps OSRM HTTP errors to domain errors. OSRM uses
// 400 with a JSON code for unroutable inputs.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var osrmResp routeResponse
	if err := json.Unmarshal(body, &osrmResp); err == nil && osrmResp.Code != "" && osrmResp.Code != "Ok" {
		return &routing.Error{
			Provider: ProviderName,
			Code:     osrmResp.Code,
			Message:  osrmResp.Message,
			Err:      routing.ErrNoRoute,
		}
	}

	return &routing.Error{
		Provider: ProviderName,
		Code:     fmt.Sprintf("HTTP_%d", statusCode),
		Message:  fmt.Sprintf("routing service returned status %d", statusCode),
		Err:      routing.ErrRemoteUnavailable,
	}
}
