package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreTheta_PercentBands(t *testing.T) {
	tests := []struct {
		thetaPct float64
		want     int
	}{
		{0, 15},
		{4.9, 15},
		{5.0, 15},
		{5.01, 12},
		{6.5, 12},
		{7.0, 12},
		{9.9, 8},
		{10.0, 8},
		{10.01, 3},
		{12.0, 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2f", tt.thetaPct), func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreTheta(tt.thetaPct))
		})
	}
}

func TestBands(t *testing.T) {
	tests := []struct {
		name string
		got  int
		want int
	}{
		{"spread 0.8", ScoreSpread(0.8), 25},
		{"spread 1.2", ScoreSpread(1.2), 20},
		{"spread 1.8", ScoreSpread(1.8), 15},
		{"spread 2.5", ScoreSpread(2.5), 10},
		{"spread 2.6", ScoreSpread(2.6), 5},

		{"omega 6", ScoreOmega(6), 25},
		{"omega 10", ScoreOmega(10), 25},
		{"omega 11", ScoreOmega(11), 20},
		{"omega 4", ScoreOmega(4), 20},
		{"omega 3", ScoreOmega(3), 15},
		{"omega 15", ScoreOmega(15), 15},
		{"omega 16", ScoreOmega(16), 5},
		{"omega 0", ScoreOmega(0), 5},

		{"strike 2%", ScoreStrike(0.02), 20},
		{"strike 5%", ScoreStrike(0.05), 15},
		{"strike 10%", ScoreStrike(0.10), 10},
		{"strike 11%", ScoreStrike(0.11), 5},

		{"vola 20", ScoreVola(20), 10},
		{"vola 40", ScoreVola(40), 10},
		{"vola 15", ScoreVola(15), 7},
		{"vola 50", ScoreVola(50), 7},
		{"vola 60", ScoreVola(60), 4},

		{"premium 2", ScorePremium(2), 5},
		{"premium 5", ScorePremium(5), 3},
		{"premium 6", ScorePremium(6), 1},

		{"leverage 0.6", ScoreLeverage(6, 0.1), 5},
		{"leverage 0.4", ScoreLeverage(4, 0.1), 4},
		{"leverage 0.3", ScoreLeverage(3, 0.1), 2},
		{"leverage no premium", ScoreLeverage(10, 0), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestScoreBreakeven(t *testing.T) {
	v := func(f float64) *float64 { return &f }

	assert.Equal(t, 0, ScoreBreakeven(nil))
	assert.Equal(t, 10, ScoreBreakeven(v(3)))
	assert.Equal(t, 10, ScoreBreakeven(v(-3)))
	assert.Equal(t, 8, ScoreBreakeven(v(5)))
	assert.Equal(t, 5, ScoreBreakeven(v(-8)))
	assert.Equal(t, 2, ScoreBreakeven(v(8.1)))
}
