// Package osm fetches drivable road networks from the Overpass API and
// assembles them into routable graphs.
package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/flashdirex/flashdirex/internal/geo"
	"github.com/flashdirex/flashdirex/internal/provider/resilience"
	"github.com/flashdirex/flashdirex/internal/roadgraph"
)

const (
	// ProviderName identifies the Overpass provider.
	ProviderName = "overpass"

	// DefaultBaseURL is the public Overpass API instance.
	DefaultBaseURL = "https://overpass-api.de"

	// DefaultTimeout is the request timeout. Overpass extracts for a
	// metro-scale corridor can legitimately run for minutes.
	DefaultTimeout = 180 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Overpass client.
type ClientConfig struct {
	// BaseURL is the Overpass instance base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with 429 retries enabled.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 180s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Overpass API client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewClient creates a new Overpass client.
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
		// The public instance throttles aggressively; back off and retry
		// rather than failing the corridor build outright.
		clientCfg.RetryOn429 = true
		if cfg.Registry != nil {
			clientCfg.Registry = cfg.Registry
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		timeout:    timeout,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FetchBBox downloads the drive network inside a bounding box and builds
// a directed road graph from it.
func (c *Client) FetchBBox(ctx context.Context, b geo.BoundingBox) (*roadgraph.Graph, error) {
	query := bboxQuery(b, c.serverTimeoutSec())

	c.logger.Debug().
		Str("tile", b.TileKey()).
		Msg("fetching bbox extract from overpass")

	elements, err := c.execute(ctx, query)
	if err != nil {
		return nil, err
	}
	return buildGraph(elements), nil
}

// FetchPolygon downloads the drive network clipped to a polygon ring and
// builds a directed road graph from it.
func (c *Client) FetchPolygon(ctx context.Context, ring []geo.Coordinate) (*roadgraph.Graph, error) {
	query := polygonQuery(ring, c.serverTimeoutSec())

	c.logger.Debug().
		Int("ring_points", len(ring)).
		Msg("fetching polygon extract from overpass")

	elements, err := c.execute(ctx, query)
	if err != nil {
		return nil, err
	}
	return buildGraph(elements), nil
}

// serverTimeoutSec converts the client timeout to the [timeout:N] setting
// embedded in the Overpass QL so the server gives up before we do.
func (c *Client) serverTimeoutSec() int {
	sec := int(c.timeout / time.Second)
	if sec < 1 {
		sec = 1
	}
	return sec
}

// execute POSTs a QL query to the interpreter endpoint and decodes the
// element list.
func (c *Client) execute(ctx context.Context, query string) ([]overpassElement, error) {
	form := url.Values{"data": {query}}

	endpoint := strings.TrimSuffix(c.baseURL, "/") + "/api/interpreter"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading overpass response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass returned status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var envelope overpassEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding overpass response: %w", err)
	}

	// A remark with no elements means the query hit a server-side limit
	// (memory or runtime) rather than an empty area.
	if len(envelope.Elements) == 0 && envelope.Remark != "" {
		return nil, fmt.Errorf("overpass rejected query: %s", envelope.Remark)
	}

	c.logger.Debug().
		Int("elements", len(envelope.Elements)).
		Dur("elapsed", time.Since(start)).
		Msg("overpass extract complete")

	return envelope.Elements, nil
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
