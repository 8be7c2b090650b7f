package screener

import (
	"context"
	"time"

	"github.com/wonny/warrantscan/internal/contracts"
	"github.com/wonny/warrantscan/internal/indicators"
	"github.com/wonny/warrantscan/internal/scanconfig"
	"github.com/wonny/warrantscan/pkg/logger"
	"github.com/wonny/warrantscan/pkg/metrics"
)

const momentumLookback = 10

// HistorySource provides price history and quote currency for a ticker
type HistorySource interface {
	History(ctx context.Context, ticker, period, interval string) ([]contracts.Bar, error)
	Currency(ctx context.Context, ticker string) (string, error)
}

// Screener turns price history into AssetSnapshots
type Screener struct {
	source  HistorySource
	market  scanconfig.Market
	cfg     scanconfig.Screening
	logger  *logger.Logger
	metrics *metrics.Registry
}

// New creates a new Screener
func New(source HistorySource, market scanconfig.Market, cfg scanconfig.Screening, log *logger.Logger) *Screener {
	return &Screener{
		source: source,
		market: market,
		cfg:    cfg,
		logger: log,
	}
}

// WithMetrics records screening outcomes
func (s *Screener) WithMetrics(m *metrics.Registry) *Screener {
	s.metrics = m
	return s
}

// Check screens one ticker. ok is false when no snapshot could be built;
// that is the expected outcome for most tickers and never an error.
func (s *Screener) Check(ctx context.Context, ticker string) (*contracts.AssetSnapshot, bool) {
	start := time.Now()
	defer s.metrics.ObserveStep(contracts.StageScreen.String(), start)

	log := s.logger.WithTicker(ticker)

	bars, err := s.source.History(ctx, ticker, s.market.Period, s.market.Interval)
	if err != nil {
		log.WithError(err).Debug("No price history")
		s.metrics.Screened("no_snapshot")
		return nil, false
	}

	m, ok := ComputeMetrics(bars, s.cfg.MinRows)
	if !ok {
		log.WithField("bars", len(bars)).Debug("Insufficient history")
		s.metrics.Screened("no_snapshot")
		return nil, false
	}

	currency, err := s.source.Currency(ctx, ticker)
	if err != nil {
		log.WithError(err).Debug("Currency lookup failed")
		currency = ""
	}

	snap := Assess(ticker, currency, m, s.cfg)
	if snap.Qualifies {
		s.metrics.Screened("qualified")
	} else {
		s.metrics.Screened("rejected")
	}

	log.WithFields(map[string]interface{}{
		"score":     snap.Score,
		"qualifies": snap.Qualifies,
		"atr_pct":   snap.ATRPct,
		"rsi":       snap.RSI,
	}).Debug("Asset snapshot")

	return snap, true
}

// Evaluate builds a snapshot from bars without any I/O
func (s *Screener) Evaluate(ticker string, bars []contracts.Bar, currency string) (*contracts.AssetSnapshot, bool) {
	m, ok := ComputeMetrics(bars, s.cfg.MinRows)
	if !ok {
		return nil, false
	}
	return Assess(ticker, currency, m, s.cfg), true
}

// ComputeMetrics derives rule inputs from the latest bar whose indicators
// are all defined. ok is false with fewer than minRows bars or when no
// bar survives warm-up.
func ComputeMetrics(bars []contracts.Bar, minRows int) (Metrics, bool) {
	bars = contracts.DropIncomplete(bars)
	if len(bars) == 0 || len(bars) < minRows {
		return Metrics{}, false
	}

	closes := indicators.Closes(bars)
	volumes := indicators.Volumes(bars)

	sma20 := indicators.SMA(closes, 20)
	sma50 := indicators.SMA(closes, 50)
	atr14 := indicators.ATR(bars, 14)
	atr5 := indicators.ATR(bars, 5)
	rsi := indicators.RSI(closes, 14)
	volMean := indicators.SMA(volumes, 20)
	recentVol := indicators.RecentVolatility(closes, 14)

	first := indicators.FirstValid(sma20, sma50, atr14, atr5, rsi, volMean, recentVol)
	if first < 0 {
		return Metrics{}, false
	}

	// 최신 행이 유효해야 함
	last := len(bars) - 1
	if indicators.FirstValid(
		sma20[last:], sma50[last:], atr14[last:], atr5[last:],
		rsi[last:], volMean[last:], recentVol[last:],
	) != 0 {
		return Metrics{}, false
	}

	prev := first
	if last-first+1 >= momentumLookback+1 {
		prev = last - momentumLookback
	}

	high15 := indicators.Latest(indicators.RollingMax(indicators.Highs(bars), 15))
	low15 := indicators.Latest(indicators.RollingMin(indicators.Lows(bars), 15))

	px := closes[last]
	m := Metrics{
		Close:      px,
		PrevClose:  closes[prev],
		SMA20:      sma20[last],
		SMA50:      sma50[last],
		ATR14:      atr14[last],
		ATR5:       atr5[last],
		RSI:        rsi[last],
		RecentVol:  recentVol[last],
		Volume:     volumes[last],
		VolumeMean: volMean[last],
	}
	if px != 0 {
		m.Range15 = (high15 - low15) / px
	}
	return m, true
}
