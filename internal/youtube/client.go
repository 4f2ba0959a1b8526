// Package youtube is the metadata gateway: the only component that
// talks to the provider and the only place the API credential lives.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mkodama/tubemark/internal/domain"
	"github.com/mkodama/tubemark/internal/logger"
	"github.com/mkodama/tubemark/internal/metrics"
	"github.com/mkodama/tubemark/internal/utils"
)

// DefaultEndpoint is the provider's videos.list endpoint.
const DefaultEndpoint = "https://www.googleapis.com/youtube/v3/videos"

var (
	// ErrUnconfigured means no provider credential is available.
	ErrUnconfigured = errors.New("provider api key is not configured")

	// ErrQuotaExceeded covers the provider's access-denied/quota status.
	ErrQuotaExceeded = errors.New("provider quota exceeded or key rejected")

	// ErrNotFound means the provider returned zero matching items.
	ErrNotFound = errors.New("video not found")

	// ErrInvalidVideoID means the identifier failed the 11-character
	// contract and was rejected before any provider call.
	ErrInvalidVideoID = errors.New("invalid video id")
)

// ProviderError is any other non-success provider response.
type ProviderError struct {
	StatusCode int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d", e.StatusCode)
}

// Client fetches video metadata from the provider.
type Client struct {
	httpClient *http.Client
	apiKey     string
	endpoint   string
	logger     logger.Logger
	metrics    *metrics.Collector
}

// NewClient creates a gateway client. An empty endpoint selects
// DefaultEndpoint; tests point it at a local stub.
func NewClient(httpClient *http.Client, apiKey, endpoint string, log logger.Logger, mc *metrics.Collector) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		endpoint:   endpoint,
		logger:     log,
		metrics:    mc,
	}
}

// Configured reports whether a provider credential is available.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// FetchVideo returns the provider's raw item for videoID. Identifiers
// that are not exactly 11 characters of [A-Za-z0-9_-] are rejected
// before the provider is called; this backstops the extractor's
// lenient URL branch.
func (c *Client) FetchVideo(ctx context.Context, videoID string) (*VideoItem, error) {
	if !domain.IsValidVideoID(videoID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVideoID, videoID)
	}
	if c.apiKey == "" {
		c.record(metrics.OutcomeUnconfigured, 0)
		return nil, ErrUnconfigured
	}

	start := time.Now()
	item, err := c.fetch(ctx, videoID)
	c.record(outcomeFor(err), time.Since(start))

	if err != nil {
		c.logger.Warn("metadata fetch failed",
			logger.String("video_id", videoID),
			logger.Error(err))
		return nil, err
	}

	c.logger.Debug("metadata fetch succeeded",
		logger.String("video_id", videoID))
	return item, nil
}

func (c *Client) fetch(ctx context.Context, videoID string) (*VideoItem, error) {
	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse provider endpoint: %w", err)
	}

	q := reqURL.Query()
	q.Set("id", videoID)
	q.Set("key", c.apiKey)
	q.Set("part", "snippet,statistics")
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode == http.StatusForbidden {
		return nil, ErrQuotaExceeded
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	var list ListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	if len(list.Items) == 0 {
		return nil, ErrNotFound
	}

	// The provider is queried with a single id; the first item is the
	// expected-only match.
	return &list.Items[0], nil
}

func (c *Client) record(outcome string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordFetch(outcome, d)
	}
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrQuotaExceeded):
		return metrics.OutcomeQuota
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	default:
		var pe *ProviderError
		if errors.As(err, &pe) {
			return metrics.OutcomeProviderError
		}
		return metrics.OutcomeTransport
	}
}
