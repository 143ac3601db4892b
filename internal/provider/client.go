// Package provider fetches event odds from The Odds API with retries, rate
// limiting and a short-TTL coalescing cache.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/better-bets/internal/logger"
	"github.com/yourusername/better-bets/internal/metrics"
	"github.com/yourusername/better-bets/internal/models"
)

const (
	DefaultBaseURL     = "https://api.the-odds-api.com"
	DefaultMarkets     = "h2h,spreads,totals"
	DefaultRegions     = "us"
	OddsFormatAmerican = "american"
	OddsFormatDecimal  = "decimal"

	maxErrorBody = 64 << 10
)

// Request identifies one upstream odds query; it is also the cache key
type Request struct {
	Sport      string
	Markets    string
	Regions    string
	OddsFormat string
}

// WithDefaults fills empty fields with the standard markets, regions and format
func (r Request) WithDefaults() Request {
	if r.Markets == "" {
		r.Markets = DefaultMarkets
	}
	if r.Regions == "" {
		r.Regions = DefaultRegions
	}
	if r.OddsFormat == "" {
		r.OddsFormat = OddsFormatAmerican
	}
	return r
}

// Key returns the cache key for the request
func (r Request) Key() string {
	return strings.Join([]string{r.Sport, r.Markets, r.Regions, r.OddsFormat}, "|")
}

// RateLimits is the request quota reported by the upstream
type RateLimits struct {
	Remaining int
	Used      int
	Known     bool
}

// FetchResult is one upstream payload, decoded and raw
type FetchResult struct {
	Events    []models.Event
	Raw       json.RawMessage
	Limits    RateLimits
	FetchedAt time.Time
	Cached    bool
}

// Fetcher is anything that can return odds for a request
type Fetcher interface {
	FetchOdds(ctx context.Context, req Request) (*FetchResult, error)
}

// Doer performs HTTP requests
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client calls the Odds API v4 odds endpoint
type Client struct {
	httpClient Doer
	baseURL    string
	apiKey     string
	logger     *logrus.Entry
	now        func() time.Time
}

// NewClient creates a new Odds API client
func NewClient(httpClient Doer, baseURL, apiKey string, log *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.NewDiscardLogger()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     log.WithField("component", "provider"),
		now:        time.Now,
	}
}

// FetchOdds retrieves every event with odds for one sport
func (c *Client) FetchOdds(ctx context.Context, req Request) (*FetchResult, error) {
	req = req.WithDefaults()
	if req.Sport == "" {
		return nil, ErrMissingSport
	}

	start := time.Now()
	result, err := c.fetch(ctx, req)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		metrics.RecordProviderRequest("error", elapsed)
		c.logger.WithFields(logrus.Fields{
			"sport":   req.Sport,
			"markets": req.Markets,
		}).WithError(err).Warn("Odds fetch failed")
		return nil, err
	}

	metrics.RecordProviderRequest("success", elapsed)
	if result.Limits.Known {
		metrics.UpdateRequestsRemaining(result.Limits.Remaining)
	}
	c.logger.WithFields(logrus.Fields{
		"sport":              req.Sport,
		"events":             len(result.Events),
		"requests_remaining": result.Limits.Remaining,
		"duration_seconds":   elapsed,
	}).Debug("Odds fetched")

	return result, nil
}

func (c *Client) fetch(ctx context.Context, req Request) (*FetchResult, error) {
	endpoint := fmt.Sprintf("%s/v4/sports/%s/odds", c.baseURL, url.PathEscape(req.Sport))
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("markets", req.Markets)
	q.Set("regions", req.Regions)
	q.Set("oddsFormat", req.OddsFormat)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, httpReq)
	if err != nil {
		return nil, NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, NewStatusError(resp.StatusCode, string(body))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(fmt.Errorf("failed to read response: %w", err))
	}

	var events []models.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %v", ErrInvalidResponse, err)}
	}
	if events == nil {
		events = []models.Event{}
	}

	return &FetchResult{
		Events:    events,
		Raw:       json.RawMessage(bytes.TrimSpace(raw)),
		Limits:    parseRateLimits(resp.Header),
		FetchedAt: c.now(),
	}, nil
}

func parseRateLimits(h http.Header) RateLimits {
	remaining, errR := strconv.Atoi(strings.TrimSpace(h.Get("x-requests-remaining")))
	used, errU := strconv.Atoi(strings.TrimSpace(h.Get("x-requests-used")))
	if errR != nil && errU != nil {
		return RateLimits{}
	}
	return RateLimits{Remaining: remaining, Used: used, Known: errR == nil}
}
