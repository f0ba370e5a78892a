package trends

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/pkg/config"
	"github.com/wonny/radar/pkg/httputil"
	"github.com/wonny/radar/pkg/logger"
	"github.com/wonny/radar/pkg/redis"
)

// Client fetches interest-over-time observations from the trends source.
// The source accepts at most a handful of keywords per payload and is
// aggressively rate limited, so requests are batched and throttled.
//
// The client never coerces malformed values: they surface as
// Observations with a nil Trend and the signal engine applies the
// missing-value policy.
type Client struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	logger     *logger.Logger

	baseURL   string
	apiKey    string
	batchSize int
}

// NewClient creates a new trends client.
func NewClient(cfg config.TrendsConfig, httpClient *httputil.Client, cache *redis.Cache, log *logger.Logger) *Client {
	httpClient.WithRateLimit(cfg.RatePerSec, cfg.RateBurst)

	return &Client{
		httpClient: httpClient,
		cache:      cache,
		logger:     log.WithField("module", "trends_client"),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		batchSize:  cfg.BatchSize,
	}
}

// interestResponse is the wire format of the interest-over-time endpoint.
type interestResponse struct {
	Points []interestPoint `json:"points"`
}

type interestPoint struct {
	Date    string       `json:"date"`
	Keyword string       `json:"keyword"`
	Value   *json.Number `json:"value"`
	Partial bool         `json:"is_partial"`
}

// FetchInterest retrieves observations for all keywords, batching by the
// source payload limit. Batches that fail are skipped with a warning;
// the caller decides whether a partial result is acceptable.
func (c *Client) FetchInterest(ctx context.Context, keywords []string, geo, timeframe string) ([]contracts.Observation, error) {
	var out []contracts.Observation

	for start := 0; start < len(keywords); start += c.batchSize {
		end := start + c.batchSize
		if end > len(keywords) {
			end = len(keywords)
		}
		batch := keywords[start:end]

		observations, err := c.fetchBatch(ctx, batch, geo, timeframe)
		if err != nil {
			c.logger.WithFields(map[string]interface{}{
				"batch": batch,
				"error": err.Error(),
			}).Warn("Batch fetch failed, skipping")
			continue
		}

		out = append(out, observations...)
	}

	c.logger.WithFields(map[string]interface{}{
		"keywords":     len(keywords),
		"observations": len(out),
		"geo":          geo,
		"timeframe":    timeframe,
	}).Info("Interest fetch completed")

	return out, nil
}

// fetchBatch retrieves one keyword batch, consulting the cache first.
func (c *Client) fetchBatch(ctx context.Context, batch []string, geo, timeframe string) ([]contracts.Observation, error) {
	cacheKey := redis.ObservationsKey(geo, timeframe, batchHash(batch))

	if c.cache != nil {
		var cached []contracts.Observation
		if found, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && found {
			c.logger.WithField("batch", batch).Debug("Cache hit for batch")
			return cached, nil
		}
	}

	observations, err := c.requestBatch(ctx, batch, geo, timeframe)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, cacheKey, observations, redis.TTLDaily)
	}

	return observations, nil
}

// requestBatch performs the HTTP request and decodes the response.
func (c *Client) requestBatch(ctx context.Context, batch []string, geo, timeframe string) ([]contracts.Observation, error) {
	params := url.Values{}
	params.Set("keywords", strings.Join(batch, ","))
	params.Set("geo", geo)
	params.Set("timeframe", timeframe)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	fullURL := fmt.Sprintf("%s/interest?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("interest request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var decoded interestResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	observations := make([]contracts.Observation, 0, len(decoded.Points))
	for _, point := range decoded.Points {
		date, err := time.Parse("2006-01-02", point.Date)
		if err != nil {
			c.logger.WithFields(map[string]interface{}{
				"date":    point.Date,
				"keyword": point.Keyword,
			}).Warn("Skipping point with unparseable date")
			continue
		}

		obs := contracts.Observation{
			Date:    date,
			Keyword: point.Keyword,
		}

		// Malformed values stay missing; the engine owns coercion.
		if point.Value != nil {
			if v, err := point.Value.Float64(); err == nil {
				obs.Trend = &v
			}
		}

		observations = append(observations, obs)
	}

	return observations, nil
}

// batchHash builds a stable short identifier for a keyword batch.
func batchHash(batch []string) string {
	sum := sha256.Sum256([]byte(strings.Join(batch, "\x00")))
	return hex.EncodeToString(sum[:6])
}
