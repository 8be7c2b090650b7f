package contracts

import (
	"math"
	"time"
)

// Bar is one OHLCV observation. Missing values are NaN, never zero.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Complete reports whether every field of the bar is a real number
func (b Bar) Complete() bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// DropIncomplete removes bars with any missing field, keeping order
func DropIncomplete(bars []Bar) []Bar {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if b.Complete() {
			out = append(out, b)
		}
	}
	return out
}

// FxRate is a cached exchange rate for a currency pair
type FxRate struct {
	Pair      string    `json:"pair"` // e.g. EURUSD
	Rate      float64   `json:"rate"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Fresh reports whether the rate is still valid: now - FetchedAt < ttl
func (r FxRate) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.FetchedAt) < ttl
}

// NameMapping maps a ticker to ordered listing-site display names
// ⭐ SSOT: ticker → onvista 이름 매핑 형식
type NameMapping map[string][]string

// Clone returns a deep copy
func (m NameMapping) Clone() NameMapping {
	out := make(NameMapping, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}
