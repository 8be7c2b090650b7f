package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/warrantscan/internal/contracts"
	"github.com/wonny/warrantscan/internal/external/onvista"
	"github.com/wonny/warrantscan/internal/scanconfig"
	"github.com/wonny/warrantscan/pkg/logger"
	"github.com/wonny/warrantscan/pkg/metrics"
)

// AssetScreener screens one ticker
type AssetScreener interface {
	Check(ctx context.Context, ticker string) (*contracts.AssetSnapshot, bool)
}

// NameResolver returns the listing names to try for a ticker
type NameResolver interface {
	Resolve(ctx context.Context, ticker string) []string
}

// ListingFinder searches listings for the first name/variant with rows
type ListingFinder interface {
	FindListings(ctx context.Context, listingNames []string, targetStrike float64) (onvista.ListingResult, bool)
}

// RowEnricher adds detail-page data to rows
type RowEnricher interface {
	Enrich(ctx context.Context, rows []contracts.ListingRow) []contracts.EnrichedListingRow
}

// CandidateScorer scores rows and returns them best first
type CandidateScorer interface {
	ScoreAll(ctx context.Context, rows []contracts.EnrichedListingRow, snap contracts.AssetSnapshot, opt contracts.OptionType) []contracts.ScoredCandidate
}

// Options tune a run
type Options struct {
	OptionType      contracts.OptionType
	SpreadMin       float64
	SpreadMax       float64
	MaxDetailEnrich int           // 0 = enrich every prefiltered row
	AssetDelay      time.Duration // pause between assets with listings
}

// OptionsFromConfig derives run options from scanner settings
func OptionsFromConfig(cfg *scanconfig.Config) Options {
	return Options{
		OptionType:      contracts.ParseOptionType(cfg.Search.OptionType),
		SpreadMin:       cfg.Search.SpreadAskPctMin,
		SpreadMax:       cfg.Search.SpreadAskPctMax,
		MaxDetailEnrich: cfg.Enrichment.MaxDetailEnrich,
		AssetDelay:      time.Second,
	}
}

// RunResult holds the outcome of a run
type RunResult struct {
	RunID      string                      `json:"run_id"`
	OptionType contracts.OptionType        `json:"option_type"`
	StartedAt  time.Time                   `json:"started_at"`
	Duration   time.Duration               `json:"duration"`
	Snapshots  []contracts.AssetSnapshot   `json:"snapshots"`
	Assets     []contracts.AssetResult     `json:"assets"`
	Ranked     []contracts.RankedCandidate `json:"ranked"`
}

// Qualified returns the snapshots that passed the gate
func (r *RunResult) Qualified() []contracts.AssetSnapshot {
	var out []contracts.AssetSnapshot
	for _, s := range r.Snapshots {
		if s.Qualifies {
			out = append(out, s)
		}
	}
	return out
}

// Runner executes screen → resolve → search → prefilter → enrich → score
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Runner struct {
	screener AssetScreener
	resolver NameResolver
	finder   ListingFinder
	enricher RowEnricher
	scorer   CandidateScorer
	opts     Options
	logger   *logger.Logger
	metrics  *metrics.Registry
	sink     EventSink
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
}

// NewRunner creates a runner
func NewRunner(
	screener AssetScreener,
	resolver NameResolver,
	finder ListingFinder,
	enricher RowEnricher,
	scorer CandidateScorer,
	opts Options,
	log *logger.Logger,
) *Runner {
	return &Runner{
		screener: screener,
		resolver: resolver,
		finder:   finder,
		enricher: enricher,
		scorer:   scorer,
		opts:     opts,
		logger:   log,
		sleep:    sleepCtx,
		now:      time.Now,
	}
}

// WithMetrics records step durations
func (r *Runner) WithMetrics(m *metrics.Registry) *Runner {
	r.metrics = m
	return r
}

// WithEvents streams progress events to sink
func (r *Runner) WithEvents(sink EventSink) *Runner {
	r.sink = sink
	return r
}

// Screen evaluates every ticker and returns the snapshots that could be computed
func (r *Runner) Screen(ctx context.Context, runID string, tickers []string) []contracts.AssetSnapshot {
	var snaps []contracts.AssetSnapshot
	for _, t := range tickers {
		if ctx.Err() != nil {
			break
		}
		r.logger.WithTicker(t).Info("Checking asset")

		snap, ok := r.screener.Check(ctx, t)
		if !ok {
			r.emit(Event{Type: EventAssetSkipped, RunID: runID, Ticker: t, Message: "no snapshot"})
			continue
		}
		snaps = append(snaps, *snap)
		r.emit(Event{
			Type:    EventAssetScreened,
			RunID:   runID,
			Ticker:  t,
			Score:   float64(snap.Score),
			Message: qualifiedText(snap.Qualifies),
		})
	}
	return snaps
}

// Run executes the full pipeline over tickers. Per-asset failures never
// abort the run; they only leave that asset without candidates.
func (r *Runner) Run(ctx context.Context, tickers []string) (*RunResult, error) {
	result := &RunResult{
		RunID:      uuid.New().String(),
		OptionType: r.opts.OptionType,
		StartedAt:  r.now(),
	}

	r.logger.WithFields(map[string]interface{}{
		"run_id":      result.RunID,
		"tickers":     len(tickers),
		"option_type": r.opts.OptionType,
	}).Info("Starting scan run")
	r.emit(Event{Type: EventRunStarted, RunID: result.RunID, Count: len(tickers)})

	result.Snapshots = r.Screen(ctx, result.RunID, tickers)
	qualified := result.Qualified()

	r.logger.WithFields(map[string]interface{}{
		"screened":  len(result.Snapshots),
		"qualified": len(qualified),
	}).Info("Screening completed")

	for i, snap := range qualified {
		if ctx.Err() != nil {
			break
		}
		asset, ok := r.processAsset(ctx, result.RunID, snap)
		if !ok {
			continue
		}
		result.Assets = append(result.Assets, asset)

		// 자산 사이 1초 대기
		if i < len(qualified)-1 {
			if err := r.sleep(ctx, r.opts.AssetDelay); err != nil {
				break
			}
		}
	}

	result.Ranked = contracts.Flatten(result.Assets)
	result.Duration = time.Since(result.StartedAt)

	r.logger.WithFields(map[string]interface{}{
		"run_id":     result.RunID,
		"assets":     len(result.Assets),
		"candidates": len(result.Ranked),
		"duration":   result.Duration,
	}).Info("Scan run completed")
	r.emit(Event{Type: EventRunCompleted, RunID: result.RunID, Count: len(result.Ranked)})

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("scan interrupted: %w", err)
	}
	return result, nil
}

// processAsset finds, enriches and scores the listings of one qualified asset
func (r *Runner) processAsset(ctx context.Context, runID string, snap contracts.AssetSnapshot) (contracts.AssetResult, bool) {
	log := r.logger.WithTicker(snap.Ticker)
	log.Info("Finding options")

	resolveStart := time.Now()
	listingNames := r.resolver.Resolve(ctx, snap.Ticker)
	r.metrics.ObserveStep(contracts.StageResolve.String(), resolveStart)
	target := snap.TargetStrike(r.opts.OptionType)

	searchStart := time.Now()
	found, ok := r.finder.FindListings(ctx, listingNames, target)
	r.metrics.ObserveStep(contracts.StageSearch.String(), searchStart)
	if !ok {
		log.WithField("names", listingNames).Info("No listings found")
		r.emit(Event{Type: EventAssetSkipped, RunID: runID, Ticker: snap.Ticker, Message: "no listings"})
		return contracts.AssetResult{}, false
	}
	r.emit(Event{
		Type:    EventListingsFound,
		RunID:   runID,
		Ticker:  snap.Ticker,
		Count:   len(found.Rows),
		Message: found.Underlying + " / " + found.Variant,
	})

	rows := Prefilter(found.Rows, r.opts.SpreadMin, r.opts.SpreadMax)
	if n := r.opts.MaxDetailEnrich; n > 0 && len(rows) > n {
		rows = rows[:n]
	}

	enrichStart := time.Now()
	enriched := r.enricher.Enrich(ctx, rows)
	r.metrics.ObserveStep(contracts.StageEnrich.String(), enrichStart)

	scoreStart := time.Now()
	cands := r.scorer.ScoreAll(ctx, enriched, snap, r.opts.OptionType)
	r.metrics.ObserveStep(contracts.StageScore.String(), scoreStart)

	log.WithFields(map[string]interface{}{
		"underlying": found.Underlying,
		"variant":    found.Variant,
		"rows":       len(found.Rows),
		"scored":     len(cands),
	}).Info("Asset scored")

	ev := Event{Type: EventAssetScored, RunID: runID, Ticker: snap.Ticker, Count: len(cands)}
	if len(cands) > 0 {
		ev.Score = cands[0].TotalScore
	}
	r.emit(ev)

	return contracts.AssetResult{
		Snapshot:   snap,
		Names:      listingNames,
		Variant:    found.Variant,
		Candidates: cands,
	}, true
}

// Prefilter keeps rows with a positive ask and strike whose spread, when
// known, lies within [spreadMin, spreadMax]
func Prefilter(rows []contracts.ListingRow, spreadMin, spreadMax float64) []contracts.ListingRow {
	out := make([]contracts.ListingRow, 0, len(rows))
	for _, row := range rows {
		if row.Ask <= 0 || row.Strike <= 0 {
			continue
		}
		if row.SpreadPct > 0 && (row.SpreadPct < spreadMin || row.SpreadPct > spreadMax) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (r *Runner) emit(ev Event) {
	if r.sink == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = r.now()
	}
	r.sink(ev)
}

func qualifiedText(ok bool) string {
	if ok {
		return "qualified"
	}
	return "rejected"
}

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
