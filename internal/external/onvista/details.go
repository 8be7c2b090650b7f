package onvista

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/warrantscan/internal/contracts"
)

// Detail holds the values read from one warrant detail page.
// Zero values mean "not known".
type Detail struct {
	Ratio         float64
	RemainingDays int
	BreakEven     float64
	Currency      string
}

// DetailCache caches detail pages by URL for the lifetime of a run.
// A failed fetch is cached as an empty Detail and never retried.
type DetailCache struct {
	mu      sync.RWMutex
	entries map[string]Detail
}

// NewDetailCache creates an empty cache
func NewDetailCache() *DetailCache {
	return &DetailCache{entries: make(map[string]Detail)}
}

// Get returns the cached detail for url
func (c *DetailCache) Get(url string) (Detail, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.entries[url]
	return d, ok
}

// Put stores the detail for url
func (c *DetailCache) Put(url string, d Detail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = d
}

// Len returns the number of cached pages
func (c *DetailCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ExtractPairs collects label → value pairs from th/td table rows and
// dt/dd lists. Labels are lowercased with whitespace collapsed.
func ExtractPairs(doc *goquery.Document) map[string]string {
	pairs := make(map[string]string)
	add := func(label, value string) {
		label = strings.Join(strings.Fields(strings.ToLower(label)), " ")
		if label == "" {
			return
		}
		if _, dup := pairs[label]; !dup {
			pairs[label] = strings.Join(strings.Fields(value), " ")
		}
	}

	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		th := tr.Find("th").First()
		td := tr.Find("td").First()
		if th.Length() == 0 || td.Length() == 0 {
			return
		}
		add(th.Text(), td.Text())
	})

	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		dd := dt.NextFiltered("dd")
		if dd.Length() == 0 {
			return
		}
		add(dt.Text(), dd.Text())
	})
	return pairs
}

// ParseDetail maps detail-page pairs onto a Detail
func ParseDetail(pairs map[string]string) Detail {
	var d Detail
	for label, value := range pairs {
		switch {
		case strings.Contains(label, "bezugsverhältnis"):
			if v := ParseNumber(value); v > 0 {
				d.Ratio = v
			}
		case strings.Contains(label, "restlaufzeit"):
			if v := int(ParseNumber(value)); v > 0 {
				d.RemainingDays = v
			}
		case strings.Contains(label, "break even"),
			strings.Contains(label, "break-even"),
			strings.Contains(label, "breakeven"):
			if v := ParseNumber(value); v > 0 {
				d.BreakEven = v
			}
		case strings.Contains(label, "aktueller briefkurs"),
			strings.Contains(label, "aktueller geldkurs"):
			if d.Currency == "" {
				d.Currency = DetectCurrency(value)
			}
		}
	}
	return d
}

// Enricher adds detail-page values to listing rows
type Enricher struct {
	client *Client
	cache  *DetailCache
}

// NewEnricher creates an enricher sharing cache across assets of a run.
// A nil cache uses the client's, which also holds pages fetched for
// identity confirmation.
func NewEnricher(client *Client, cache *DetailCache) *Enricher {
	if cache == nil {
		cache = client.details
	}
	return &Enricher{client: client, cache: cache}
}

// Enrich fetches the detail page of each row (once per URL) and merges
// ratio, remaining days, break-even and, when the row has none, the quote
// currency. Rows without a detail URL pass through unchanged.
func (e *Enricher) Enrich(ctx context.Context, rows []contracts.ListingRow) []contracts.EnrichedListingRow {
	out := contracts.Enrich(rows)
	for i := range out {
		if ctx.Err() != nil {
			break
		}
		url := out[i].DetailURL
		if url == "" {
			continue
		}

		d, cached := e.cache.Get(url)
		e.client.metrics.Cache("detail", cached)
		if !cached {
			d = e.fetch(ctx, url)
			e.cache.Put(url, d)
			if err := e.client.sleep(ctx, e.client.politeDelay/2); err != nil {
				break
			}
		}

		out[i].Ratio = d.Ratio
		out[i].RemainingDays = d.RemainingDays
		out[i].BreakEven = d.BreakEven
		if out[i].QuoteCurrency == "" && d.Currency != "" {
			out[i].QuoteCurrency = d.Currency
		}
	}
	return out
}

func (e *Enricher) fetch(ctx context.Context, url string) Detail {
	_, d := e.client.fetchDetail(ctx, url)
	return d
}

// fetchDetail fetches and parses one detail page. doc is nil when the
// fetch failed; the Detail is then empty.
func (c *Client) fetchDetail(ctx context.Context, url string) (*goquery.Document, Detail) {
	start := time.Now()
	doc, _, err := c.fetchDocument(ctx, url)
	if err != nil {
		c.metrics.Fetch("onvista_detail", "error")
		c.logger.WithFields(map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		}).Debug("Detail fetch failed")
		return nil, Detail{}
	}
	c.metrics.Fetch("onvista_detail", "ok")
	c.metrics.ObserveStep("detail", start)
	return doc, ParseDetail(ExtractPairs(doc))
}
