package onvista

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/warrantscan/internal/scanconfig"
	"github.com/wonny/warrantscan/pkg/httputil"
	"github.com/wonny/warrantscan/pkg/logger"
	"github.com/wonny/warrantscan/pkg/metrics"
)

var (
	// ErrNoTable means the listing page had no table
	ErrNoTable = errors.New("onvista: no table found")

	// ErrIdentityMismatch means extracted rows belong to another underlying
	ErrIdentityMismatch = errors.New("onvista: rows do not match expected underlying")
)

// RetryPolicy is the bounded retry loop of a listing fetch
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Backoff returns the wait after a failed attempt: base × 2^attempt
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(1<<uint(attempt))
}

// Client handles communication with the onvista warrant listing
// ⭐ SSOT: onvista 조회/파싱은 이 클라이언트에서만
type Client struct {
	httpClient  *httputil.Client
	logger      *logger.Logger
	metrics     *metrics.Registry
	siteURL     string
	search      scanconfig.Search
	retry       RetryPolicy
	politeDelay time.Duration
	debugPath   string
	details     *DetailCache
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new onvista client. httpClient should have its own
// retry disabled; the listing fetch owns the retry policy.
func NewClient(httpClient *httputil.Client, siteURL string, cfg *scanconfig.Config, log *logger.Logger) *Client {
	maxAttempts := cfg.HTTP.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		httpClient:  httpClient,
		logger:      log,
		siteURL:     strings.TrimRight(siteURL, "/"),
		search:      cfg.Search,
		retry:       RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: cfg.HTTP.RetryDelay()},
		politeDelay: cfg.HTTP.PoliteDelay(),
		details:     NewDetailCache(),
		now:         time.Now,
		sleep:       sleepCtx,
	}
}

// WithMetrics records fetch outcomes
func (c *Client) WithMetrics(m *metrics.Registry) *Client {
	c.metrics = m
	return c
}

// WithDebugDump writes every fetched listing page to path (last one wins)
func (c *Client) WithDebugDump(path string) *Client {
	c.debugPath = path
	return c
}

// PoliteDelay returns the pause after each listing fetch
func (c *Client) PoliteDelay() time.Duration {
	return c.politeDelay
}

// fetchDocument performs one GET and parses the HTML
func (c *Client) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, []byte, error) {
	status, body, err := c.httpClient.GetBody(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}
	if status != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status code: %d", status)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, body, nil
}

// FetchListing fetches a listing page under the retry policy.
// Pending → Done on a page with a table; Pending → Retry(n) → Pending on
// any failure; after the last attempt it gives up and returns nil.
func (c *Client) FetchListing(ctx context.Context, pageURL string) *goquery.Document {
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		doc, body, err := c.fetchDocument(ctx, pageURL)
		if err == nil && doc.Find("table").Length() == 0 {
			err = ErrNoTable
		}
		if body != nil {
			c.dumpDebug(body)
		}

		if err == nil {
			c.metrics.Fetch("onvista", "ok")
			if err := c.sleep(ctx, c.politeDelay); err != nil {
				return nil
			}
			return doc
		}
		c.metrics.Fetch("onvista", "error")

		if attempt+1 >= c.retry.MaxAttempts {
			c.logger.WithFields(map[string]interface{}{
				"url":      pageURL,
				"attempts": attempt + 1,
				"error":    err.Error(),
			}).Info("Listing fetch failed after retries")
			return nil
		}

		delay := c.retry.Backoff(attempt)
		c.logger.WithFields(map[string]interface{}{
			"attempt": attempt + 1,
			"delay":   delay,
			"error":   err.Error(),
		}).Debug("Retrying listing fetch")
		if err := c.sleep(ctx, delay); err != nil {
			return nil
		}
	}
	return nil
}

func (c *Client) dumpDebug(body []byte) {
	if c.debugPath == "" {
		return
	}
	if err := os.WriteFile(c.debugPath, body, 0o644); err != nil {
		c.logger.WithError(err).Debug("Debug HTML dump failed")
	}
}

// sleepCtx waits for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
