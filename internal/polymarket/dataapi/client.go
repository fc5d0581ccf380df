// Package dataapi is a client for the Polymarket Data API. It serves two
// roles: the trade feed for ingestion, and the authoritative source for a
// wallet's true first-ever trade on the platform.
package dataapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/marketsentry/marketsentry/internal/config"
	"github.com/marketsentry/marketsentry/internal/metrics"
	"github.com/marketsentry/marketsentry/internal/ratelimit"
)

// Client handles communication with the Polymarket Data API
type Client struct {
	baseURL     string
	httpClient  *http.Client
	authMode    config.AuthMode
	bearerToken string
	apiKey      string

	tradesLimiter   *ratelimit.Limiter
	activityLimiter *ratelimit.Limiter
}

// NewClient creates a new Data API client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:         cfg.DataAPIBaseURL,
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		authMode:        cfg.DataAPIAuthMode,
		bearerToken:     cfg.DataAPIBearerToken,
		apiKey:          cfg.DataAPIAPIKey,
		tradesLimiter:   ratelimit.New(cfg.DataAPITradesRPS),
		activityLimiter: ratelimit.New(cfg.DataAPIActivityRPS),
	}
}

// TradeParams holds parameters for the GetTrades call
type TradeParams struct {
	Limit        int
	Offset       int
	TakerOnly    bool
	FilterType   string  // CASH
	FilterAmount float64 // minimum notional USD
	Market       string
	User         string
	Side         string // BUY, SELL
}

// GetTrades fetches trades from the Data API
func (c *Client) GetTrades(ctx context.Context, params TradeParams) (*TradesResponse, error) {
	if err := c.tradesLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u, err := url.Parse(c.baseURL + "/trades")
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	q := u.Query()
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}
	if params.TakerOnly {
		q.Set("takerOnly", "true")
	}
	if params.FilterType != "" {
		q.Set("filterType", params.FilterType)
	}
	if params.FilterAmount > 0 {
		q.Set("filterAmount", strconv.FormatFloat(params.FilterAmount, 'f', 2, 64))
	}
	if params.Market != "" {
		q.Set("market", params.Market)
	}
	if params.User != "" {
		q.Set("user", params.User)
	}
	if params.Side != "" {
		q.Set("side", params.Side)
	}
	u.RawQuery = q.Encode()

	start := time.Now()
	var trades []Trade
	err = c.getJSON(ctx, u.String(), &trades)
	metrics.RecordAPIRequest("data", "/trades", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return &TradesResponse{Trades: trades, Count: len(trades)}, nil
}

// FirstTradeAt returns the timestamp of a wallet's first-ever TRADE activity
// on the platform. Returns zero time with nil error when the wallet has no
// trade activity at all.
func (c *Client) FirstTradeAt(ctx context.Context, wallet string) (time.Time, error) {
	if err := c.activityLimiter.Wait(ctx); err != nil {
		return time.Time{}, fmt.Errorf("rate limit wait: %w", err)
	}

	u, err := url.Parse(c.baseURL + "/activity")
	if err != nil {
		return time.Time{}, fmt.Errorf("parse URL: %w", err)
	}

	q := u.Query()
	q.Set("user", wallet)
	q.Set("sortBy", "TIMESTAMP")
	q.Set("sortDirection", "ASC")
	q.Set("limit", "20")
	u.RawQuery = q.Encode()

	start := time.Now()
	var activities []ActivityEvent
	err = c.getJSON(ctx, u.String(), &activities)
	metrics.RecordAPIRequest("data", "/activity", time.Since(start), err)
	if err != nil {
		return time.Time{}, err
	}

	// The activity feed mixes trades with splits/merges/rewards; only a
	// TRADE event counts as trading history.
	for _, ev := range activities {
		if ev.EventType == "TRADE" {
			return time.Unix(ev.Timestamp, 0), nil
		}
	}
	return time.Time{}, nil
}

// IsTrulyFresh reports whether a wallet's first platform trade is within
// maxAgeHours of now, and the wallet's age in hours. A wallet with no trade
// history at all is maximally fresh (age 0).
func (c *Client) IsTrulyFresh(ctx context.Context, wallet string, maxAgeHours float64) (bool, float64, error) {
	first, err := c.FirstTradeAt(ctx, wallet)
	if err != nil {
		return false, 0, err
	}
	if first.IsZero() {
		return true, 0, nil
	}
	ageHours := time.Since(first).Hours()
	return ageHours <= maxAgeHours, ageHours, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("401 Unauthorized (auth_mode=%s) - check credentials", c.authMode)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	switch c.authMode {
	case config.AuthModeBearer:
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	case config.AuthModeAPIKey:
		req.Header.Set("X-API-KEY", c.apiKey)
	case config.AuthModeNone:
		// No auth headers
	}
}
