package names

import (
	"context"

	"github.com/wonny/warrantscan/pkg/logger"
)

// Source tells where a resolution came from
type Source string

const (
	SourceCache    Source = "cache"
	SourceDerived  Source = "derived"
	SourceStatic   Source = "static"
	SourceFallback Source = "fallback"
)

// NameSource provides the display names the market data feed knows for a ticker
type NameSource interface {
	DisplayNames(ctx context.Context, ticker string) ([]string, error)
}

// Resolution is the outcome of resolving a ticker
type Resolution struct {
	Ticker string   `json:"ticker"`
	Names  []string `json:"names"`
	Source Source   `json:"source"`
}

// Resolver maps a ticker to candidate listing names.
// Order: cached mapping, auto-derived variants (persisted), static table,
// bare ticker. Never returns an empty list.
type Resolver struct {
	store  *MappingStore
	source NameSource
	logger *logger.Logger
}

// NewResolver creates a new Resolver
func NewResolver(store *MappingStore, source NameSource, log *logger.Logger) *Resolver {
	return &Resolver{
		store:  store,
		source: source,
		logger: log,
	}
}

// Resolve returns the candidate listing names for ticker
func (r *Resolver) Resolve(ctx context.Context, ticker string) []string {
	return r.ResolveWithSource(ctx, ticker).Names
}

// ResolveWithSource returns names together with where they came from
func (r *Resolver) ResolveWithSource(ctx context.Context, ticker string) Resolution {
	log := r.logger.WithTicker(ticker)

	if cached, ok := r.store.Get(ticker); ok {
		return Resolution{Ticker: ticker, Names: cached, Source: SourceCache}
	}

	if derived := r.derive(ctx, ticker); len(derived) > 0 {
		if err := r.store.Put(ticker, derived); err != nil {
			log.WithError(err).Warn("Failed to persist name mapping")
		}
		log.WithField("names", derived).Debug("Derived listing names")
		return Resolution{Ticker: ticker, Names: derived, Source: SourceDerived}
	}

	if static, ok := StaticNames(ticker); ok {
		return Resolution{Ticker: ticker, Names: static, Source: SourceStatic}
	}

	return Resolution{Ticker: ticker, Names: []string{StripTickerSuffix(ticker)}, Source: SourceFallback}
}

// derive returns variants only when the feed knows at least one display name
func (r *Resolver) derive(ctx context.Context, ticker string) []string {
	if r.source == nil {
		return nil
	}
	display, err := r.source.DisplayNames(ctx, ticker)
	if err != nil {
		r.logger.WithTicker(ticker).WithError(err).Debug("Display name lookup failed")
		return nil
	}
	if len(display) == 0 {
		return nil
	}
	return GenerateVariants(ticker, display)
}
