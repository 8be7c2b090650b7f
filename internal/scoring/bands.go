package scoring

import "math"

// ScoreSpread scores the bid/ask spread in percent
func ScoreSpread(spreadPct float64) int {
	switch {
	case spreadPct <= 0.8:
		return 25
	case spreadPct <= 1.2:
		return 20
	case spreadPct <= 1.8:
		return 15
	case spreadPct <= 2.5:
		return 10
	default:
		return 5
	}
}

// ScoreOmega scores effective leverage; 6..10 is the sweet spot
func ScoreOmega(omega float64) int {
	switch {
	case omega >= 6 && omega <= 10:
		return 25
	case omega >= 4 && omega <= 12:
		return 20
	case omega >= 3 && omega <= 15:
		return 15
	default:
		return 5
	}
}

// ScoreStrike scores the distance from the target strike as a fraction (0.02 = 2%)
func ScoreStrike(distance float64) int {
	switch {
	case distance <= 0.02:
		return 20
	case distance <= 0.05:
		return 15
	case distance <= 0.10:
		return 10
	default:
		return 5
	}
}

// ScoreTheta scores daily time decay as percent of the mid price
func ScoreTheta(thetaPct float64) int {
	switch {
	case thetaPct <= 5:
		return 15
	case thetaPct <= 7:
		return 12
	case thetaPct <= 10:
		return 8
	default:
		return 3
	}
}

// ScoreVola scores implied volatility in percent
func ScoreVola(impliedVol float64) int {
	switch {
	case impliedVol >= 20 && impliedVol <= 40:
		return 10
	case impliedVol >= 15 && impliedVol <= 50:
		return 7
	default:
		return 4
	}
}

// ScorePremium scores the premium (Aufgeld) in percent
func ScorePremium(premiumPct float64) int {
	switch {
	case premiumPct <= 2:
		return 5
	case premiumPct <= 5:
		return 3
	default:
		return 1
	}
}

// ScoreBreakeven scores the underlying move needed to break even.
// nil (unknown) scores 0.
func ScoreBreakeven(movePct *float64) int {
	if movePct == nil {
		return 0
	}
	m := math.Abs(*movePct)
	switch {
	case m <= 3:
		return 10
	case m <= 5:
		return 8
	case m <= 8:
		return 5
	default:
		return 2
	}
}

// ScoreLeverage rewards leverage per unit of premium paid: leverage/(premium×100)
func ScoreLeverage(leverage, premium float64) int {
	if premium <= 0 {
		return 2
	}
	ratio := leverage / (premium * 100)
	switch {
	case ratio > 0.5:
		return 5
	case ratio > 0.3:
		return 4
	default:
		return 2
	}
}
