package contracts

import "strings"

// OptionType selects call or put warrants
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// IsCall reports whether the option type is a call
func (t OptionType) IsCall() bool {
	return t != Put
}

// ParseOptionType parses "call"/"put" (case-insensitive), defaulting to call
func ParseOptionType(s string) OptionType {
	if strings.EqualFold(strings.TrimSpace(s), string(Put)) {
		return Put
	}
	return Call
}

// AssetSnapshot is the result of screening one underlying.
// Created once per screening pass and never mutated afterwards.
// ⭐ SSOT: 스크리너 → 검색/스코어링 전달
type AssetSnapshot struct {
	Ticker       string   `json:"ticker"`
	Currency     string   `json:"currency"`
	Close        float64  `json:"close"`
	ATRAbs       float64  `json:"atr_abs"`
	ATRPct       float64  `json:"atr_pct"` // fraction, 0.03 = 3%
	RecentVolPct float64  `json:"recent_vol_pct"`
	RSI          float64  `json:"rsi"`
	RangePct     float64  `json:"range_pct"` // 15-period high-low range / close
	Score        int      `json:"score"`
	Qualifies    bool     `json:"qualifies"`
	LongStrike   float64  `json:"long_strike"`
	ShortStrike  float64  `json:"short_strike"`
	Reasoning    []string `json:"reasoning"`
}

// TargetStrike returns the strike the listing search is centred on
func (s *AssetSnapshot) TargetStrike(t OptionType) float64 {
	if t.IsCall() {
		return s.LongStrike
	}
	return s.ShortStrike
}

// ReasoningText joins the rule outcomes the way reports print them
func (s *AssetSnapshot) ReasoningText() string {
	return strings.Join(s.Reasoning, " | ")
}
