package fx

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/wonny/warrantscan/internal/contracts"
	"github.com/wonny/warrantscan/pkg/logger"
	"github.com/wonny/warrantscan/pkg/metrics"
	"github.com/wonny/warrantscan/pkg/redis"
)

// RateSource fetches the latest rate for a pair from the market data feed
type RateSource interface {
	FxRate(ctx context.Context, from, to string) (float64, error)
}

// Provider converts amounts between currencies using cached rates.
// Entries live in process memory for ttl; an optional Redis tier
// shares them across processes.
// ⭐ SSOT: 환율 변환은 여기서만
type Provider struct {
	source  RateSource
	logger  *logger.Logger
	metrics *metrics.Registry
	shared  *redis.Cache
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	rates map[string]contracts.FxRate
}

// NewProvider creates an FX provider
func NewProvider(source RateSource, ttl time.Duration, log *logger.Logger) *Provider {
	return &Provider{
		source: source,
		logger: log,
		ttl:    ttl,
		now:    time.Now,
		rates:  make(map[string]contracts.FxRate),
	}
}

// WithSharedCache adds the Redis cache tier
func (p *Provider) WithSharedCache(cache *redis.Cache) *Provider {
	p.shared = cache
	return p
}

// WithMetrics records cache hits and misses
func (p *Provider) WithMetrics(m *metrics.Registry) *Provider {
	p.metrics = m
	return p
}

// Rate returns the from→to rate. ok is false when either code is empty
// or no rate could be obtained. Same-currency pairs return 1.0 without I/O.
func (p *Provider) Rate(ctx context.Context, from, to string) (float64, bool) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return 0, false
	}
	if from == to {
		return 1.0, true
	}

	pair := from + to
	now := p.now()

	p.mu.Lock()
	cached, found := p.rates[pair]
	p.mu.Unlock()
	if found && cached.Fresh(now, p.ttl) {
		p.metrics.Cache("fx", true)
		return cached.Rate, true
	}

	if rate, ok := p.fromShared(ctx, from, to, now); ok {
		p.metrics.Cache("fx", true)
		return rate, true
	}
	p.metrics.Cache("fx", false)

	rate, err := p.source.FxRate(ctx, from, to)
	if err != nil || rate <= 0 {
		p.logger.WithFields(map[string]interface{}{
			"pair":  pair,
			"error": errString(err),
		}).Debug("FX rate unavailable")
		return 0, false
	}

	entry := contracts.FxRate{Pair: pair, Rate: rate, FetchedAt: now}
	p.store(entry)
	if p.shared != nil {
		if err := p.shared.Set(ctx, redis.FxRateKey(from, to), entry, p.ttl); err != nil {
			p.logger.WithError(err).Debug("FX shared cache write failed")
		}
	}

	return rate, true
}

func (p *Provider) fromShared(ctx context.Context, from, to string, now time.Time) (float64, bool) {
	if p.shared == nil {
		return 0, false
	}
	var entry contracts.FxRate
	found, err := p.shared.Get(ctx, redis.FxRateKey(from, to), &entry)
	if err != nil || !found || entry.Rate <= 0 || !entry.Fresh(now, p.ttl) {
		return 0, false
	}
	p.store(entry)
	return entry.Rate, true
}

func (p *Provider) store(entry contracts.FxRate) {
	p.mu.Lock()
	p.rates[entry.Pair] = entry
	p.mu.Unlock()
}

// Convert converts amount from one currency to another.
// ok is false when no rate is available.
func (p *Provider) Convert(ctx context.Context, amount float64, from, to string) (float64, bool) {
	rate, ok := p.Rate(ctx, from, to)
	if !ok {
		return 0, false
	}
	return amount * rate, true
}

// Invalidate drops every in-process entry
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.rates = make(map[string]contracts.FxRate)
	p.mu.Unlock()
}

func errString(err error) string {
	if err == nil {
		return "non-positive rate"
	}
	return err.Error()
}
