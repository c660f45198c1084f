package geo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/movesmart/transit/internal/apperr"
	"github.com/movesmart/transit/internal/metrics"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// maxResponseBytes caps how much of an upstream response we buffer.
const maxResponseBytes = 1 << 20

// Query holds the supported geocoding parameters. Exactly one of Address,
// LatLng, or PlaceID must be set.
type Query struct {
	Address string
	LatLng  string
	PlaceID string
}

// Client proxies geocoding requests to the Google Maps API with an outbound
// rate limit so one chatty consumer cannot exhaust the upstream quota.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the upstream endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a geocoding client. rps bounds outbound requests per
// second; burst matches rps.
func NewClient(apiKey string, rps int, logger *slog.Logger, opts ...Option) *Client {
	if rps <= 0 {
		rps = 1
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(rps), rps),
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geocode forwards the query upstream and returns the raw JSON document.
func (c *Client) Geocode(ctx context.Context, q Query) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, apperr.Upstream("Geocoding is not configured")
	}
	params, err := buildParams(q)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.GeocodeUpstream.WithLabelValues("transport_error").Inc()
		if c.logger != nil {
			c.logger.Warn("geocode upstream unreachable", "error", err)
		}
		return nil, apperr.Upstream("Geocoding service unavailable").WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.GeocodeUpstream.WithLabelValues("transport_error").Inc()
		return nil, apperr.Upstream("Geocoding service unavailable").WithCause(err)
	}

	switch {
	case resp.StatusCode >= 500:
		metrics.GeocodeUpstream.WithLabelValues("upstream_error").Inc()
		if c.logger != nil {
			c.logger.Warn("geocode upstream error", "status", resp.StatusCode)
		}
		return nil, apperr.Upstream("Geocoding service unavailable")
	case resp.StatusCode >= 400:
		metrics.GeocodeUpstream.WithLabelValues("rejected").Inc()
		return nil, apperr.Validation("Geocoding request rejected by upstream")
	}
	metrics.GeocodeUpstream.WithLabelValues("ok").Inc()
	return json.RawMessage(body), nil
}

func buildParams(q Query) (url.Values, error) {
	params := url.Values{}
	set := 0
	if v := strings.TrimSpace(q.Address); v != "" {
		params.Set("address", v)
		set++
	}
	if v := strings.TrimSpace(q.LatLng); v != "" {
		params.Set("latlng", v)
		set++
	}
	if v := strings.TrimSpace(q.PlaceID); v != "" {
		params.Set("place_id", v)
		set++
	}
	if set == 0 {
		return nil, apperr.Validation("one of address, latlng, or place_id is required")
	}
	if set > 1 {
		return nil, apperr.Validation("only one of address, latlng, or place_id may be given")
	}
	return params, nil
}
