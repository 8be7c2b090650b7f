package contracts

import "regexp"

var instrumentCodeRe = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// ValidInstrumentCode reports whether code is a 6-character alphanumeric WKN
func ValidInstrumentCode(code string) bool {
	return instrumentCodeRe.MatchString(code)
}

// ListingRow is one warrant extracted from the listing table
type ListingRow struct {
	Code           string  `json:"wkn"`
	Name           string  `json:"name"`
	UnderlyingName string  `json:"underlying_name,omitempty"` // identity column text, if detected
	Strike         float64 `json:"strike"`
	Maturity       string  `json:"maturity"` // raw label, e.g. 18.12.2026
	Bid            float64 `json:"bid"`
	Ask            float64 `json:"ask"`
	Mid            float64 `json:"mid"`
	Leverage       float64 `json:"leverage"`
	Omega          float64 `json:"omega"`
	ImpliedVol     float64 `json:"implied_vol"`
	SpreadPct      float64 `json:"spread_pct"`
	SpreadAbs      float64 `json:"spread_abs"`
	PremiumPct     float64 `json:"premium_pct"`
	ExerciseStyle  string  `json:"exercise_style"`
	Issuer         string  `json:"issuer"`
	DetailURL      string  `json:"detail_url,omitempty"`
	QuoteCurrency  string  `json:"quote_currency,omitempty"`
}

// Valid enforces the row invariants: 6-char code, positive ask and strike
func (r ListingRow) Valid() bool {
	return ValidInstrumentCode(r.Code) && r.Ask > 0 && r.Strike > 0
}

// EnrichedListingRow is a ListingRow plus values taken from the detail page.
// Zero values mean "not known".
type EnrichedListingRow struct {
	ListingRow
	Ratio         float64 `json:"ratio,omitempty"`
	RemainingDays int     `json:"remaining_days,omitempty"`
	BreakEven     float64 `json:"break_even,omitempty"`
}

// EffectiveRatio returns the contract ratio, defaulting to 1.0
func (r EnrichedListingRow) EffectiveRatio() float64 {
	if r.Ratio > 0 {
		return r.Ratio
	}
	return 1.0
}

// Enrich wraps listing rows without any detail data
func Enrich(rows []ListingRow) []EnrichedListingRow {
	out := make([]EnrichedListingRow, len(rows))
	for i, r := range rows {
		out[i] = EnrichedListingRow{ListingRow: r}
	}
	return out
}
