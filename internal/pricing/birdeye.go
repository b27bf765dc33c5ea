package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Birdeye client defaults.
const (
	DefaultBirdeyeBase       = "https://public-api.birdeye.so"
	DefaultBirdeyeTimeout    = 15 * time.Second
	DefaultBirdeyeMaxRetries = 2
	DefaultBirdeyeRetryDelay = 250 * time.Millisecond
	DefaultBirdeyeMaxDelay   = 5 * time.Second

	// candleWindow is the half-width of the OHLC range fetched around a
	// historical lookup instant.
	candleWindow = 30 * time.Minute
)

// BirdeyeClient implements Oracle against the Birdeye public API.
// Both lookups are best-effort and resolve to 0 on any failure.
type BirdeyeClient struct {
	base       string
	apiKey     string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	maxDelay   time.Duration
}

// BirdeyeOption configures BirdeyeClient.
type BirdeyeOption func(*BirdeyeClient)

// WithBirdeyeBase overrides the API base URL.
func WithBirdeyeBase(base string) BirdeyeOption {
	return func(c *BirdeyeClient) {
		c.base = strings.TrimRight(base, "/")
	}
}

// WithBirdeyeHTTPClient sets a custom http.Client.
func WithBirdeyeHTTPClient(client *http.Client) BirdeyeOption {
	return func(c *BirdeyeClient) {
		c.client = client
	}
}

// WithBirdeyeMaxRetries sets maximum retry attempts.
func WithBirdeyeMaxRetries(n int) BirdeyeOption {
	return func(c *BirdeyeClient) {
		c.maxRetries = n
	}
}

// NewBirdeyeClient creates a Birdeye price client.
func NewBirdeyeClient(apiKey string, opts ...BirdeyeOption) *BirdeyeClient {
	c := &BirdeyeClient{
		base:       DefaultBirdeyeBase,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: DefaultBirdeyeTimeout},
		maxRetries: DefaultBirdeyeMaxRetries,
		retryDelay: DefaultBirdeyeRetryDelay,
		maxDelay:   DefaultBirdeyeMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs an authenticated GET with retries and exponential backoff.
func (c *BirdeyeClient) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	rawURL := c.base + path
	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("X-API-KEY", c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("birdeye error %d: %s", resp.StatusCode, string(body))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("birdeye error %d: %s", resp.StatusCode, string(body))
		}

		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// spotResult is the raw /public/price response.
type spotResult struct {
	Data struct {
		Value float64 `json:"value"`
	} `json:"data"`
}

// Spot implements Oracle.
func (c *BirdeyeClient) Spot(ctx context.Context, mint string) float64 {
	params := url.Values{}
	params.Set("address", mint)

	var result spotResult
	if err := c.get(ctx, "/public/price", params, &result); err != nil {
		return 0
	}
	return result.Data.Value
}

// candlesResult is the raw /public/candles response.
type candlesResult struct {
	Data []candle `json:"data"`
}

type candle struct {
	Time  int64   `json:"time"` // Unix seconds
	Close float64 `json:"close"`
}

// Historical implements Oracle. It fetches 1-minute candles around the
// instant and returns the close of the latest candle at or before it.
func (c *BirdeyeClient) Historical(ctx context.Context, mint string, tsMs int64) float64 {
	bucket := MinuteBucket(tsMs)
	from := bucket - candleWindow.Milliseconds()
	to := bucket + candleWindow.Milliseconds()

	params := url.Values{}
	params.Set("address", mint)
	params.Set("interval", "1m")
	params.Set("startTime", strconv.FormatInt(from/1000, 10))
	params.Set("endTime", strconv.FormatInt(to/1000, 10))

	var result candlesResult
	if err := c.get(ctx, "/public/candles", params, &result); err != nil {
		return 0
	}

	var chosen *candle
	for i := range result.Data {
		cd := &result.Data[i]
		ctMs := cd.Time * 1000
		if ctMs > bucket {
			continue
		}
		if chosen == nil || ctMs > chosen.Time*1000 {
			chosen = cd
		}
	}
	if chosen == nil {
		return 0
	}
	return chosen.Close
}

// Ensure BirdeyeClient implements Oracle.
var _ Oracle = (*BirdeyeClient)(nil)
