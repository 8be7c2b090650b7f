package onvista

import (
	"context"
	"errors"

	"github.com/wonny/warrantscan/internal/contracts"
)

// ListingResult is the first validated, non-empty search result
type ListingResult struct {
	Rows       []contracts.ListingRow
	Underlying string // listing name that produced rows
	Variant    string // search variant label
}

// Scrape fetches one search URL and returns rows that belong to the
// expected underlying. Any failure yields no rows.
func (c *Client) Scrape(ctx context.Context, pageURL string, expected []string) []contracts.ListingRow {
	rows, err := c.scrape(ctx, pageURL, expected)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"url":   pageURL,
			"error": err.Error(),
		}).Debug("Listing discarded")
		return nil
	}
	return rows
}

func (c *Client) scrape(ctx context.Context, pageURL string, expected []string) ([]contracts.ListingRow, error) {
	doc := c.FetchListing(ctx, pageURL)
	if doc == nil {
		return nil, errors.New("fetch failed")
	}

	table, err := ExtractTable(doc, c.siteURL)
	if err != nil {
		return nil, err
	}
	if len(table.Rows) == 0 {
		return nil, nil
	}

	c.logger.WithFields(map[string]interface{}{
		"rows":     len(table.Rows),
		"strategy": table.Strategy,
		"identity": table.HasIdentity,
	}).Debug("Listing table extracted")

	return c.validateIdentity(ctx, table, expected)
}

// validateIdentity keeps rows whose underlying column matches the
// expected names. An unreliable identity column skips the check. Rows with
// a blank name are kept only once a named row has matched. When no named
// row matches, detail pages are consulted; without confirmation every row
// is discarded.
func (c *Client) validateIdentity(ctx context.Context, table *Table, expected []string) ([]contracts.ListingRow, error) {
	if !table.HasIdentity || len(expected) == 0 {
		return table.Rows, nil
	}
	if !identityColumnReliable(table.IdentityValues()) {
		c.logger.Debug("Identity column unreliable, skipping validation")
		return table.Rows, nil
	}

	expected = identityNames(expected)

	var matched []contracts.ListingRow
	for _, r := range table.Rows {
		if r.UnderlyingName == "" {
			continue
		}
		if MatchesAny(expected, r.UnderlyingName) {
			matched = append(matched, r)
		}
	}
	if len(matched) > 0 {
		// 이름이 비어있는 행은 같은 표의 나머지로 취급
		for _, r := range table.Rows {
			if r.UnderlyingName == "" {
				matched = append(matched, r)
			}
		}
		return matched, nil
	}

	if c.confirmViaDetails(ctx, table.Rows, expected) {
		return table.Rows, nil
	}
	return nil, ErrIdentityMismatch
}

// confirmViaDetails checks up to MaxConfirmPages detail pages for the
// expected name. Every fetched page lands in the detail cache, and each
// fetch is followed by half the polite delay.
func (c *Client) confirmViaDetails(ctx context.Context, rows []contracts.ListingRow, expected []string) bool {
	checked := 0
	for _, r := range rows {
		if checked >= MaxConfirmPages || ctx.Err() != nil {
			break
		}
		if r.DetailURL == "" {
			continue
		}
		checked++

		doc, d := c.fetchDetail(ctx, r.DetailURL)
		c.details.Put(r.DetailURL, d)
		if err := c.sleep(ctx, c.politeDelay/2); err != nil {
			return false
		}
		if doc == nil {
			continue
		}
		if pageMentions(doc.Text(), expected) {
			c.logger.WithField("wkn", r.Code).Debug("Underlying confirmed via detail page")
			return true
		}
	}
	return false
}

// FindListings tries each listing name with each search variant until one
// yields validated rows. ok is false when nothing matched.
func (c *Client) FindListings(ctx context.Context, listingNames []string, targetStrike float64) (ListingResult, bool) {
	strikeMin, strikeMax := StrikeWindow(targetStrike)

	for _, name := range listingNames {
		for _, v := range BuildSearchURLVariants(c.siteURL, name, strikeMin, strikeMax, c.search, c.now()) {
			if ctx.Err() != nil {
				return ListingResult{}, false
			}

			c.logger.WithFields(map[string]interface{}{
				"underlying": name,
				"variant":    v.Label,
			}).Info("Trying listing search")

			rows := c.Scrape(ctx, v.URL, listingNames)
			if len(rows) > 0 {
				return ListingResult{Rows: rows, Underlying: name, Variant: v.Label}, true
			}
		}
	}
	return ListingResult{}, false
}
