package contracts

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidInstrumentCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"AB12CD", true},
		{"HG3X7K", true},
		{"ab12cd", false},
		{"AB12C", false},
		{"AB12CDE", false},
		{"AB-2CD", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidInstrumentCode(tt.code))
		})
	}
}

func TestListingRow_Valid(t *testing.T) {
	row := ListingRow{Code: "AB12CD", Strike: 100, Ask: 0.5}
	assert.True(t, row.Valid())

	noAsk := row
	noAsk.Ask = 0
	assert.False(t, noAsk.Valid())

	noStrike := row
	noStrike.Strike = -1
	assert.False(t, noStrike.Valid())

	badCode := row
	badCode.Code = "AB12"
	assert.False(t, badCode.Valid())
}

func TestEnrichedListingRow_EffectiveRatio(t *testing.T) {
	assert.Equal(t, 1.0, EnrichedListingRow{}.EffectiveRatio())
	assert.Equal(t, 1.0, EnrichedListingRow{Ratio: -0.1}.EffectiveRatio())
	assert.Equal(t, 0.1, EnrichedListingRow{Ratio: 0.1}.EffectiveRatio())
}

func TestSubScores_Sum(t *testing.T) {
	max := SubScores{Spread: 25, Omega: 25, Strike: 20, Theta: 15, Vola: 10, Premium: 5, Breakeven: 10, Leverage: 5}
	assert.Equal(t, 115, max.Sum())
}

func TestSortByTotal(t *testing.T) {
	cands := []ScoredCandidate{
		{Row: EnrichedListingRow{ListingRow: ListingRow{Code: "AAAAAA"}}, TotalScore: 60},
		{Row: EnrichedListingRow{ListingRow: ListingRow{Code: "BBBBBB"}}, TotalScore: 90},
		{Row: EnrichedListingRow{ListingRow: ListingRow{Code: "CCCCCC"}}, TotalScore: 60},
	}

	SortByTotal(cands)

	assert.Equal(t, "BBBBBB", cands[0].Row.Code)
	assert.Equal(t, "AAAAAA", cands[1].Row.Code, "stable for ties")
	assert.Equal(t, "CCCCCC", cands[2].Row.Code)
}

func TestFxRate_Fresh(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	rate := FxRate{Pair: "EURUSD", Rate: 1.08, FetchedAt: now.Add(-30 * time.Minute)}

	assert.True(t, rate.Fresh(now, time.Hour))
	assert.False(t, rate.Fresh(now, 30*time.Minute), "boundary is exclusive")
}

func TestDropIncomplete(t *testing.T) {
	bars := []Bar{
		{Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100},
		{Open: 1, High: 2, Low: 0.5, Close: math.NaN(), Volume: 100},
		{Open: 1, High: 2, Low: 0.5, Close: 1.7, Volume: 120},
	}

	out := DropIncomplete(bars)
	assert.Len(t, out, 2)
	assert.Equal(t, 1.7, out[1].Close)
}

func TestAssetSnapshot_TargetStrike(t *testing.T) {
	snap := &AssetSnapshot{LongStrike: 104.5, ShortStrike: 95.5, Reasoning: []string{"a", "b"}}

	assert.Equal(t, 104.5, snap.TargetStrike(Call))
	assert.Equal(t, 95.5, snap.TargetStrike(Put))
	assert.Equal(t, "a | b", snap.ReasoningText())
	assert.Equal(t, Put, ParseOptionType("PUT"))
	assert.Equal(t, Call, ParseOptionType("anything"))
}

func TestNameMapping_Clone(t *testing.T) {
	m := NameMapping{"^GDAXI": {"DAX"}}
	c := m.Clone()
	c["^GDAXI"][0] = "changed"

	assert.Equal(t, "DAX", m["^GDAXI"][0])
}

func TestFlatten(t *testing.T) {
	results := []AssetResult{
		{
			Snapshot: AssetSnapshot{Ticker: "SAP.DE"},
			Candidates: []ScoredCandidate{
				{Row: EnrichedListingRow{ListingRow: ListingRow{Code: "AAAAA1"}}, TotalScore: 80},
				{Row: EnrichedListingRow{ListingRow: ListingRow{Code: "AAAAA2"}}, TotalScore: 60},
			},
		},
		{
			Snapshot: AssetSnapshot{Ticker: "^GDAXI"},
			Candidates: []ScoredCandidate{
				{Row: EnrichedListingRow{ListingRow: ListingRow{Code: "BBBBB1"}}, TotalScore: 90},
				{Row: EnrichedListingRow{ListingRow: ListingRow{Code: "BBBBB2"}}, TotalScore: 60},
			},
		},
	}

	out := Flatten(results)
	var codes []string
	for _, r := range out {
		codes = append(codes, r.Candidate.Row.Code)
	}
	assert.Equal(t, []string{"BBBBB1", "AAAAA1", "AAAAA2", "BBBBB2"}, codes)
	assert.Equal(t, "^GDAXI", out[0].Snapshot.Ticker)
	assert.Empty(t, Flatten(nil))
}

func TestStages(t *testing.T) {
	stages := AllStages()
	assert.Equal(t, StageScreen, stages[0])
	assert.Equal(t, StageScore, stages[len(stages)-1])

	for _, s := range stages {
		assert.True(t, IsValidStage(s.String()), s)
		assert.NotEqual(t, "unknown", s.Description(), s)
	}
	assert.False(t, IsValidStage("S0_DATA_QUALITY"))
	assert.Equal(t, "unknown", Stage("nope").Description())
}
