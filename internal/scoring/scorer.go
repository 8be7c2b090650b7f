package scoring

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/wonny/warrantscan/internal/contracts"
	"github.com/wonny/warrantscan/pkg/logger"
	"github.com/wonny/warrantscan/pkg/metrics"
)

// Converter converts an amount between currencies. ok is false when no
// rate is available.
type Converter interface {
	Convert(ctx context.Context, amount float64, from, to string) (float64, bool)
}

var (
	maturityLayouts = []string{"02.01.2006", "02.01.06", "2.1.2006"}
	maturityDateRe  = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
)

// ParseDaysToMaturity parses a DD.MM.YYYY (or DD.MM.YY) label into whole
// days from now, clamped to ≥0. A date embedded in longer text is also
// found. ok is false for unparseable labels.
func ParseDaysToMaturity(label string, now time.Time) (int, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, false
	}

	for _, layout := range maturityLayouts {
		if t, err := time.ParseInLocation(layout, label, now.Location()); err == nil {
			return daysUntil(t, now), true
		}
	}

	if m := maturityDateRe.FindString(label); m != "" {
		if t, err := time.ParseInLocation("02.01.2006", m, now.Location()); err == nil {
			return daysUntil(t, now), true
		}
	}
	return 0, false
}

// daysUntil counts whole days, truncating partial days toward the past
func daysUntil(t, now time.Time) int {
	d := int(math.Floor(t.Sub(now).Hours() / 24))
	if d < 0 {
		return 0
	}
	return d
}

// Scorer computes per-unit economics and the eight factor scores of a
// warrant relative to its underlying
// ⭐ SSOT: 옵션 스코어링은 여기서만
type Scorer struct {
	fx      Converter
	logger  *logger.Logger
	metrics *metrics.Registry
	now     func() time.Time
}

// NewScorer creates a scorer
func NewScorer(fx Converter, log *logger.Logger) *Scorer {
	return &Scorer{
		fx:     fx,
		logger: log,
		now:    time.Now,
	}
}

// WithMetrics counts scored candidates
func (s *Scorer) WithMetrics(m *metrics.Registry) *Scorer {
	s.metrics = m
	return s
}

// Score scores one row against the asset snapshot
func (s *Scorer) Score(ctx context.Context, row contracts.EnrichedListingRow, snap contracts.AssetSnapshot, opt contracts.OptionType) contracts.ScoredCandidate {
	isCall := opt.IsCall()

	days := row.RemainingDays
	if days <= 0 {
		days, _ = ParseDaysToMaturity(row.Maturity, s.now())
	}

	ratio := row.EffectiveRatio()
	underlyingCcy := strings.ToUpper(strings.TrimSpace(snap.Currency))
	quoteCcy := strings.ToUpper(strings.TrimSpace(row.QuoteCurrency))

	// 프리미엄을 기초자산 통화로
	premium, premiumOK := row.Ask, true
	if underlyingCcy != "" && quoteCcy != "" && underlyingCcy != quoteCcy {
		premium, premiumOK = s.fx.Convert(ctx, row.Ask, quoteCcy, underlyingCcy)
	}

	var breakeven, move *float64
	switch {
	case row.BreakEven > 0:
		breakeven = ptr(row.BreakEven)
		if snap.Close > 0 {
			move = ptr(moveNeeded(row.BreakEven, snap.Close, isCall))
		}
	case premiumOK && snap.Close > 0:
		perUnit := premium / ratio
		be := row.Strike + perUnit
		if !isCall {
			be = row.Strike - perUnit
		}
		breakeven = ptr(be)
		move = ptr(moveNeeded(be, snap.Close, isCall))
	}

	var intrinsic, extrinsic, extrinsicPct *float64
	if underlyingCcy != "" {
		iv := math.Max(0, snap.Close-row.Strike) * ratio
		if !isCall {
			iv = math.Max(0, row.Strike-snap.Close) * ratio
		}

		ok := true
		if quoteCcy != "" && quoteCcy != underlyingCcy {
			iv, ok = s.fx.Convert(ctx, iv, underlyingCcy, quoteCcy)
		}
		if ok {
			ev := math.Max(0, row.Ask-iv)
			intrinsic, extrinsic = ptr(iv), ptr(ev)
			if row.Ask > 0 {
				extrinsicPct = ptr(ev / row.Ask * 100)
			}
		}
	}

	theta := 0.0
	if days > 0 && extrinsic != nil {
		accel := math.Sqrt(math.Max(1, float64(days-1))) / math.Sqrt(float64(days))
		theta = (*extrinsic / float64(days)) * accel
	}
	thetaPct := 0.0
	if row.Mid > 0 {
		thetaPct = theta / row.Mid * 100
	}

	distance := 1.0
	if target := snap.TargetStrike(opt); target != 0 {
		distance = math.Abs(row.Strike-target) / target
	}

	scores := contracts.SubScores{
		Spread:    ScoreSpread(row.SpreadPct),
		Omega:     ScoreOmega(row.Omega),
		Strike:    ScoreStrike(distance),
		Theta:     ScoreTheta(thetaPct),
		Vola:      ScoreVola(row.ImpliedVol),
		Premium:   ScorePremium(row.PremiumPct),
		Breakeven: ScoreBreakeven(move),
		Leverage:  ScoreLeverage(row.Leverage, row.Ask),
	}

	cand := contracts.ScoredCandidate{
		Row:            row,
		DaysToMaturity: days,
		ThetaPerDay:    round(theta, 6),
		ThetaPctPerDay: round(thetaPct, 3),
		Breakeven:      roundPtr(breakeven, 4),
		MoveNeededPct:  roundPtr(move, 4),
		IntrinsicValue: roundPtr(intrinsic, 6),
		ExtrinsicValue: roundPtr(extrinsic, 6),
		ExtrinsicPct:   roundPtr(extrinsicPct, 3),
		Scores:         scores,
		TotalScore:     round(float64(scores.Sum()), 2),
	}

	s.logger.WithFields(map[string]interface{}{
		"wkn":       row.Code,
		"days":      days,
		"theta_pct": cand.ThetaPctPerDay,
		"total":     cand.TotalScore,
	}).Debug("Scored candidate")

	return cand
}

// ScoreAll scores rows and returns them best first
func (s *Scorer) ScoreAll(ctx context.Context, rows []contracts.EnrichedListingRow, snap contracts.AssetSnapshot, opt contracts.OptionType) []contracts.ScoredCandidate {
	out := make([]contracts.ScoredCandidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, s.Score(ctx, r, snap, opt))
	}
	contracts.SortByTotal(out)
	s.metrics.Scored(len(out))
	return out
}

// moveNeeded is the underlying move in percent to reach break-even;
// positive means the underlying must rise for calls (fall for puts)
func moveNeeded(breakeven, px float64, isCall bool) float64 {
	if isCall {
		return (breakeven - px) / px * 100
	}
	return (px - breakeven) / px * 100
}

func ptr(v float64) *float64 {
	return &v
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func roundPtr(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	return ptr(round(*v, places))
}
