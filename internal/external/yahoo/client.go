package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/wonny/warrantscan/internal/contracts"
	"github.com/wonny/warrantscan/pkg/httputil"
	"github.com/wonny/warrantscan/pkg/logger"
	"github.com/wonny/warrantscan/pkg/metrics"
)

const (
	// DefaultBaseURL is the Yahoo Finance query host
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	// DefaultRateLimit is requests per second
	DefaultRateLimit = 4

	fxRange    = "5d"
	fxInterval = "1d"
)

// ErrNoData is returned when the feed has no usable result for a symbol
var ErrNoData = errors.New("yahoo: no data")

// Client handles communication with the Yahoo Finance chart API
// ⭐ SSOT: 시세/통화/환율 조회는 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	metrics    *metrics.Registry
	baseURL    string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker

	mu   sync.Mutex
	meta map[string]chartMeta // symbol → last seen metadata
}

// Option configures the Client
type Option func(*Client)

// WithBaseURL sets a custom base URL (tests)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithRateLimit sets requests per second
func WithRateLimit(requestsPerSecond int) Option {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithMetrics records fetch outcomes
func WithMetrics(m *metrics.Registry) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    DefaultBaseURL,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		breaker:    newBreaker("yahoo"),
		meta:       make(map[string]chartMeta),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newBreaker trips after 3 consecutive failures or a >5% failure rate over 20 requests
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 3 {
				return true
			}
			if counts.Requests < 20 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) > 0.05
		},
		// 데이터 없음은 장애가 아님
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoData)
		},
	})
}

// Chart fetches the chart endpoint for a symbol
func (c *Client) Chart(ctx context.Context, symbol, rangeParam, interval string) (*Chart, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("range", rangeParam)
	params.Set("interval", interval)
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchChart(ctx, reqURL)
	})
	if err != nil {
		c.metrics.Fetch("yahoo", "error")
		return nil, fmt.Errorf("chart %s: %w", symbol, err)
	}
	c.metrics.Fetch("yahoo", "ok")

	chart := out.(*Chart)
	c.mu.Lock()
	c.meta[symbol] = chartMeta{
		Symbol:      chart.Symbol,
		Currency:    chart.Currency,
		ShortName:   chart.ShortName,
		LongName:    chart.LongName,
		DisplayName: chart.Display,
	}
	c.mu.Unlock()

	return chart, nil
}

func (c *Client) fetchChart(ctx context.Context, reqURL string) (*Chart, error) {
	status, body, err := c.httpClient.GetBody(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, ErrNoData
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", status)
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode chart: %w", err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoData, resp.Chart.Error.Description)
	}

	chart := resp.toChart()
	if chart == nil {
		return nil, ErrNoData
	}
	return chart, nil
}

// History returns complete OHLCV bars for the ticker; incomplete bars are dropped
func (c *Client) History(ctx context.Context, ticker, period, interval string) ([]contracts.Bar, error) {
	chart, err := c.Chart(ctx, ticker, period, interval)
	if err != nil {
		return nil, err
	}

	bars := contracts.DropIncomplete(chart.Bars)

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"bars":   len(bars),
		"raw":    len(chart.Bars),
	}).Debug("Fetched price history")

	return bars, nil
}

// cachedMeta returns metadata seen by an earlier Chart call
func (c *Client) cachedMeta(symbol string) (chartMeta, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.meta[symbol]
	return m, ok
}

func (c *Client) metaFor(ctx context.Context, symbol string) (chartMeta, error) {
	if m, ok := c.cachedMeta(symbol); ok {
		return m, nil
	}
	if _, err := c.Chart(ctx, symbol, fxRange, fxInterval); err != nil {
		return chartMeta{}, err
	}
	m, _ := c.cachedMeta(symbol)
	return m, nil
}

// Currency returns the quote currency code of the ticker
func (c *Client) Currency(ctx context.Context, ticker string) (string, error) {
	m, err := c.metaFor(ctx, ticker)
	if err != nil {
		return "", err
	}
	return m.Currency, nil
}

// DisplayNames returns the known display names of the ticker (short, long, display)
func (c *Client) DisplayNames(ctx context.Context, ticker string) ([]string, error) {
	m, err := c.metaFor(ctx, ticker)
	if err != nil {
		return nil, err
	}
	chart := Chart{ShortName: m.ShortName, LongName: m.LongName, Display: m.DisplayName}
	return chart.Names(), nil
}

// FxSymbol returns the pair symbol, e.g. EURUSD=X
func FxSymbol(from, to string) string {
	return strings.ToUpper(from) + strings.ToUpper(to) + "=X"
}

// FxRate returns the latest close of the currency pair
func (c *Client) FxRate(ctx context.Context, from, to string) (float64, error) {
	chart, err := c.Chart(ctx, FxSymbol(from, to), fxRange, fxInterval)
	if err != nil {
		return 0, err
	}

	for i := len(chart.Bars) - 1; i >= 0; i-- {
		if v := chart.Bars[i].Close; !math.IsNaN(v) && v > 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("fx %s: %w", FxSymbol(from, to), ErrNoData)
}
