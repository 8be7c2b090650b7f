package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/warrantscan/internal/contracts"
	"github.com/wonny/warrantscan/pkg/logger"
)

// fakeFX converts with fixed pair rates; unknown pairs fail
type fakeFX struct {
	rates map[string]float64
	calls int
}

func (f *fakeFX) Convert(_ context.Context, amount float64, from, to string) (float64, bool) {
	f.calls++
	if from == to {
		return amount, true
	}
	r, ok := f.rates[from+to]
	if !ok {
		return 0, false
	}
	return amount * r, true
}

var testNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func newTestScorer(fx Converter) *Scorer {
	s := NewScorer(fx, logger.Nop())
	s.now = func() time.Time { return testNow }
	return s
}

func baseSnapshot() contracts.AssetSnapshot {
	return contracts.AssetSnapshot{
		Ticker:      "SAP.DE",
		Currency:    "EUR",
		Close:       100,
		LongStrike:  102,
		ShortStrike: 98,
	}
}

func baseRow() contracts.EnrichedListingRow {
	return contracts.EnrichedListingRow{
		ListingRow: contracts.ListingRow{
			Code:          "AB12CD",
			Strike:        100,
			Maturity:      "20.01.2026",
			Bid:           1.9,
			Ask:           2.0,
			Mid:           1.95,
			Leverage:      12,
			Omega:         8,
			ImpliedVol:    30,
			SpreadPct:     1.0,
			PremiumPct:    3,
			QuoteCurrency: "EUR",
		},
		RemainingDays: 10,
	}
}

func TestParseDaysToMaturity(t *testing.T) {
	tests := []struct {
		label  string
		want   int
		wantOK bool
	}{
		{"18.01.2026", 7, true},
		{"18.01.26", 7, true},
		{"Fälligkeit 18.01.2026 (Amerikanisch)", 7, true},
		{"05.01.2026", 0, true}, // 과거 날짜는 0
		{"unbekannt", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParseDaysToMaturity(tt.label, testNow)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScore_CallSameCurrency(t *testing.T) {
	fx := &fakeFX{}
	c := newTestScorer(fx).Score(context.Background(), baseRow(), baseSnapshot(), contracts.Call)

	assert.Equal(t, 10, c.DaysToMaturity)
	require.NotNil(t, c.Breakeven)
	assert.InDelta(t, 102.0, *c.Breakeven, 1e-9)
	require.NotNil(t, c.MoveNeededPct)
	assert.InDelta(t, 2.0, *c.MoveNeededPct, 1e-9)

	require.NotNil(t, c.IntrinsicValue)
	assert.Zero(t, *c.IntrinsicValue)
	assert.InDelta(t, 2.0, *c.ExtrinsicValue, 1e-9)
	assert.InDelta(t, 100.0, *c.ExtrinsicPct, 1e-9)

	// (2/10)·√9/√10
	assert.InDelta(t, 0.189737, c.ThetaPerDay, 1e-9)
	assert.InDelta(t, 9.730, c.ThetaPctPerDay, 1e-9)

	assert.Equal(t, contracts.SubScores{
		Spread: 20, Omega: 25, Strike: 20, Theta: 8, Vola: 10, Premium: 3, Breakeven: 10, Leverage: 2,
	}, c.Scores)
	assert.Equal(t, 98.0, c.TotalScore)
	assert.Zero(t, fx.calls, "same currency needs no conversion")
}

func TestScore_Put(t *testing.T) {
	c := newTestScorer(&fakeFX{}).Score(context.Background(), baseRow(), baseSnapshot(), contracts.Put)

	require.NotNil(t, c.Breakeven)
	assert.InDelta(t, 98.0, *c.Breakeven, 1e-9)
	assert.InDelta(t, 2.0, *c.MoveNeededPct, 1e-9)
	assert.Equal(t, 15, c.Scores.Strike, "|100-98|/98 is just over 2%")
}

func TestScore_ExplicitBreakEvenWins(t *testing.T) {
	row := baseRow()
	row.BreakEven = 103.5
	row.Ratio = 0.1

	c := newTestScorer(&fakeFX{}).Score(context.Background(), row, baseSnapshot(), contracts.Call)
	assert.InDelta(t, 103.5, *c.Breakeven, 1e-9)
	assert.InDelta(t, 3.5, *c.MoveNeededPct, 1e-9)
	assert.Equal(t, 8, c.Scores.Breakeven)
}

func TestScore_CurrencyConversion(t *testing.T) {
	snap := baseSnapshot()
	snap.Currency = "USD"
	fx := &fakeFX{rates: map[string]float64{"EURUSD": 1.1, "USDEUR": 1 / 1.1}}

	c := newTestScorer(fx).Score(context.Background(), baseRow(), snap, contracts.Call)

	require.NotNil(t, c.Breakeven)
	assert.InDelta(t, 102.2, *c.Breakeven, 1e-9)
	assert.InDelta(t, 2.2, *c.MoveNeededPct, 1e-9)
	require.NotNil(t, c.ExtrinsicValue)
	assert.InDelta(t, 2.0, *c.ExtrinsicValue, 1e-9)
	assert.Equal(t, 2, fx.calls)
}

func TestScore_ConversionUnavailable(t *testing.T) {
	snap := baseSnapshot()
	snap.Currency = "USD"

	c := newTestScorer(&fakeFX{}).Score(context.Background(), baseRow(), snap, contracts.Call)

	assert.Nil(t, c.Breakeven)
	assert.Nil(t, c.MoveNeededPct)
	assert.Nil(t, c.IntrinsicValue)
	assert.Nil(t, c.ExtrinsicValue)
	assert.Nil(t, c.ExtrinsicPct)
	assert.Zero(t, c.ThetaPerDay)
	assert.Equal(t, 0, c.Scores.Breakeven)
	assert.Equal(t, 15, c.Scores.Theta)
}

func TestScore_DaysFromMaturityLabel(t *testing.T) {
	row := baseRow()
	row.RemainingDays = 0
	row.Maturity = "18.01.2026"

	c := newTestScorer(&fakeFX{}).Score(context.Background(), row, baseSnapshot(), contracts.Call)
	assert.Equal(t, 7, c.DaysToMaturity)

	row.Maturity = "n/a"
	c = newTestScorer(&fakeFX{}).Score(context.Background(), row, baseSnapshot(), contracts.Call)
	assert.Equal(t, 0, c.DaysToMaturity)
	assert.Zero(t, c.ThetaPerDay)
}

func TestScore_ZeroTargetStrike(t *testing.T) {
	snap := baseSnapshot()
	snap.LongStrike = 0

	c := newTestScorer(&fakeFX{}).Score(context.Background(), baseRow(), snap, contracts.Call)
	assert.Equal(t, 5, c.Scores.Strike)
}

func TestScoreAll_TwoRowsOneUnenriched(t *testing.T) {
	enriched := baseRow()
	enriched.Ratio = 0.1
	plain := baseRow()
	plain.Code = "CD34EF"

	out := newTestScorer(&fakeFX{}).ScoreAll(context.Background(),
		[]contracts.EnrichedListingRow{enriched, plain}, baseSnapshot(), contracts.Call)
	require.Len(t, out, 2)

	byCode := map[string]contracts.ScoredCandidate{}
	for _, c := range out {
		byCode[c.Row.Code] = c
	}
	assert.InDelta(t, 120.0, *byCode["AB12CD"].Breakeven, 1e-9)
	assert.InDelta(t, 102.0, *byCode["CD34EF"].Breakeven, 1e-9)
	assert.InDelta(t, 1.0, byCode["CD34EF"].Row.EffectiveRatio(), 1e-9)

	assert.Equal(t, "CD34EF", out[0].Row.Code, "smaller move needed ranks first")
	assert.GreaterOrEqual(t, out[0].TotalScore, out[1].TotalScore)
}
