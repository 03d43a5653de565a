// Package places is the read-only gateway to the third-party places directory.
// It validates queries, issues one uncached request per call, and truncates
// results. It never rate-limits or retries; callers check their budget first.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/territory-leads/pkg/logging"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"
	DefaultTimeout = 10 * time.Second

	// APIKeySetting names the credential the gateway needs.
	APIKeySetting = "GOOGLE_PLACES_WEB_SERVICE_KEY"

	// detailFields is the complete field set ever requested for a place.
	detailFields = "place_id,name,formatted_address,formatted_phone_number,website,url"

	maxResponseBytes = 4 << 20
)

var placesTracer = otel.Tracer("territory.internal.places")

// Client calls the nearby-search and details endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint root (tests, proxies).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithTimeout bounds each upstream call. Values above DefaultTimeout are clamped.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 || d > DefaultTimeout {
			d = DefaultTimeout
		}
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the transport. Its timeout is clamped like WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		clone := *hc
		if clone.Timeout <= 0 || clone.Timeout > DefaultTimeout {
			clone.Timeout = DefaultTimeout
		}
		c.httpClient = &clone
	}
}

// NewClient creates a gateway client. An empty apiKey is accepted here and
// reported as a ConfigError on the first call.
func NewClient(apiKey string, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs a nearby search and returns at most min(params.MaxResults, 60) places.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if c.apiKey == "" {
		return nil, &ConfigError{Setting: APIKeySetting}
	}

	ctx, span := placesTracer.Start(ctx, "places.nearby_search")
	defer span.End()
	span.SetAttributes(
		attribute.Int("places.radius", params.Radius),
		attribute.Int("places.max_results", params.MaxResults),
	)

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("location", formatCoord(params.Lat)+","+formatCoord(params.Lng))
	q.Set("radius", strconv.Itoa(params.Radius))
	q.Set("keyword", params.Keyword)
	if params.Type != "" {
		q.Set("type", params.Type)
	}

	var out nearbySearchResponse
	if err := c.get(ctx, "search", "/nearbysearch/json", q, &out); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	limit := params.MaxResults
	if limit > MaxResultsCeiling {
		limit = MaxResultsCeiling
	}
	results := out.Results
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []PlaceSummary{}
	}

	span.SetAttributes(
		attribute.String("places.upstream_status", out.Status),
		attribute.Int("places.upstream_count", len(out.Results)),
		attribute.Int("places.result_count", len(results)),
	)
	if out.ErrorMessage != "" {
		c.logger.Warn("places search returned error message", "upstream_status", out.Status, "upstream_message", out.ErrorMessage)
	}

	return &SearchResult{Status: out.Status, Results: results}, nil
}

// Details fetches the fixed minimal field set for one place. The result is
// returned as the directory sent it; nil when the directory has no result.
func (c *Client) Details(ctx context.Context, placeID string) (*PlaceDetail, error) {
	if err := ValidatePlaceID(placeID); err != nil {
		return nil, err
	}
	if c.apiKey == "" {
		return nil, &ConfigError{Setting: APIKeySetting}
	}

	ctx, span := placesTracer.Start(ctx, "places.details")
	defer span.End()

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("place_id", placeID)
	q.Set("fields", detailFields)

	var out detailsResponse
	if err := c.get(ctx, "details", "/details/json", q, &out); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("places.upstream_status", out.Status))
	if out.ErrorMessage != "" {
		c.logger.Warn("places details returned error message", "upstream_status", out.Status, "upstream_message", out.ErrorMessage)
	}
	return out.Result, nil
}

func (c *Client) get(ctx context.Context, operation, path string, q url.Values, dest any) error {
	endpoint := c.baseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("places: build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Operation: operation, Err: redactKey(err, c.apiKey)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return &UpstreamError{Operation: operation, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dest); err != nil {
		return &UpstreamError{Operation: operation, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// redactKey keeps the credential out of errors that embed the request URL.
func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), url.QueryEscape(key), "REDACTED")
	msg = strings.ReplaceAll(msg, key, "REDACTED")
	if msg == err.Error() {
		return err
	}
	return errors.New(msg)
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
