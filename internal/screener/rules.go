package screener

import (
	"fmt"
	"math"

	"github.com/wonny/warrantscan/internal/contracts"
	"github.com/wonny/warrantscan/internal/scanconfig"
)

// Rule points
const (
	trendPoints         = 4
	momentumConfirmed   = 3
	momentumUnconfirmed = 2
	volatilityIdeal     = 3
	volatilityATROnly   = 2
	volatilityExcessive = 1
	volumePoints        = 2
	sidewaysPenalty     = -5
	rsiBandLow          = 50.0
	rsiBandHigh         = 70.0
	strikeATRMultiple   = 1.5
)

// Metrics are the indicator values at the latest complete observation
type Metrics struct {
	Close      float64
	PrevClose  float64 // close 10 observations back
	SMA20      float64
	SMA50      float64
	ATR14      float64
	ATR5       float64
	RSI        float64
	RecentVol  float64 // percent
	Volume     float64
	VolumeMean float64
	Range15    float64 // 15-period high-low range as fraction of close
}

// ATRPct returns ATR14 / close
func (m Metrics) ATRPct() float64 {
	if m.Close == 0 {
		return 0
	}
	return m.ATR14 / m.Close
}

// Assess applies the scoring rules and the qualification gate
// ⭐ SSOT: 기초자산 점수 규칙은 여기서만
func Assess(ticker, currency string, m Metrics, cfg scanconfig.Screening) *contracts.AssetSnapshot {
	score := 0
	var reasons []string
	atrPct := m.ATRPct()

	// 추세
	if m.Close > m.SMA20 && m.SMA20 > m.SMA50 {
		score += trendPoints
		reasons = append(reasons, "✔ uptrend (close > SMA20 > SMA50)")
	} else {
		reasons = append(reasons, "✘ no clean uptrend")
	}

	// 모멘텀 + RSI 확인
	rose := m.Close > m.PrevClose
	switch {
	case rose && m.RSI > rsiBandLow && m.RSI < rsiBandHigh:
		score += momentumConfirmed
		reasons = append(reasons, fmt.Sprintf("✔ positive momentum confirmed by RSI(%.0f)", m.RSI))
	case rose:
		score += momentumUnconfirmed
		reasons = append(reasons, fmt.Sprintf("⚠ momentum ok but RSI(%.0f) warns", m.RSI))
	default:
		reasons = append(reasons, "✘ momentum not confirmed")
	}

	// 변동성
	atrInRange := atrPct >= cfg.ATRPctMin && atrPct <= cfg.ATRPctMax
	switch {
	case atrInRange && m.RecentVol >= cfg.RecentVolMin:
		score += volatilityIdeal
		reasons = append(reasons, fmt.Sprintf("✔ ATR ideal and recent volatility active (%.1f%%)", m.RecentVol))
	case atrInRange:
		score += volatilityATROnly
		reasons = append(reasons, fmt.Sprintf("⚠ ATR ok but recent volatility low (%.1f%%)", m.RecentVol))
	case atrPct > cfg.ATRPctMax:
		score += volatilityExcessive
		reasons = append(reasons, fmt.Sprintf("⚠ very high volatility (%.2f%%)", atrPct*100))
	default:
		reasons = append(reasons, fmt.Sprintf("✘ too little volatility (%.2f%%)", atrPct*100))
	}

	// 거래량
	if m.Volume > m.VolumeMean {
		score += volumePoints
		reasons = append(reasons, "✔ volume above average")
	} else {
		reasons = append(reasons, "✘ volume below average")
	}

	// 횡보장 페널티
	if m.Range15 < cfg.Range15Min {
		score += sidewaysPenalty
		reasons = append(reasons, "✘ sideways market (theta risk)")
	} else {
		reasons = append(reasons, "✔ enough range, not sideways")
	}

	qualifies := Qualifies(score, atrPct, m.Range15, cfg)
	if qualifies {
		reasons = append(reasons, "✅ warrant-suitable")
	} else {
		reasons = append(reasons, "❌ not warrant-suitable")
	}

	return &contracts.AssetSnapshot{
		Ticker:       ticker,
		Currency:     currency,
		Close:        round(m.Close, 4),
		ATRAbs:       round(m.ATR14, 4),
		ATRPct:       round(atrPct, 6),
		RecentVolPct: round(m.RecentVol, 4),
		RSI:          round(m.RSI, 3),
		RangePct:     round(m.Range15, 6),
		Score:        score,
		Qualifies:    qualifies,
		LongStrike:   round(m.Close+strikeATRMultiple*m.ATR5, 2),
		ShortStrike:  round(m.Close-strikeATRMultiple*m.ATR5, 2),
		Reasoning:    reasons,
	}
}

// Qualifies is the gate: score, ATR% and range must all reach their minimums
func Qualifies(score int, atrPct, range15 float64, cfg scanconfig.Screening) bool {
	return score >= cfg.MinAssetScore &&
		atrPct >= cfg.ATRPctMin &&
		range15 >= cfg.Range15Min
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
