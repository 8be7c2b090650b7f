// Package indicators computes technical indicators over OHLCV series.
// Every output is aligned to its input; windows without enough history,
// or containing a NaN, produce NaN.
package indicators

import (
	"math"

	"github.com/wonny/warrantscan/internal/contracts"
)

// Series is one indicator value per bar
type Series []float64

// Closes extracts the close column
func Closes(bars []contracts.Bar) Series {
	out := make(Series, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume column
func Volumes(bars []contracts.Bar) Series {
	out := make(Series, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}

// Highs extracts the high column
func Highs(bars []contracts.Bar) Series {
	out := make(Series, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low column
func Lows(bars []contracts.Bar) Series {
	out := make(Series, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

// rolling applies fn to each full window; warmup and NaN-containing windows are NaN
func rolling(x Series, window int, fn func(w Series) float64) Series {
	if window <= 0 {
		return nil
	}
	out := make(Series, len(x))
	for i := range x {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		w := x[i-window+1 : i+1]
		if hasNaN(w) {
			out[i] = math.NaN()
			continue
		}
		out[i] = fn(w)
	}
	return out
}

func hasNaN(w Series) bool {
	for _, v := range w {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// SMA is the simple moving average
func SMA(x Series, window int) Series {
	return rolling(x, window, mean)
}

// RollingMax is the highest value in each window
func RollingMax(x Series, window int) Series {
	return rolling(x, window, func(w Series) float64 {
		m := w[0]
		for _, v := range w[1:] {
			m = math.Max(m, v)
		}
		return m
	})
}

// RollingMin is the lowest value in each window
func RollingMin(x Series, window int) Series {
	return rolling(x, window, func(w Series) float64 {
		m := w[0]
		for _, v := range w[1:] {
			m = math.Min(m, v)
		}
		return m
	})
}

// RollingStd is the sample standard deviation (n-1) of each window
func RollingStd(x Series, window int) Series {
	return rolling(x, window, func(w Series) float64 {
		if len(w) < 2 {
			return math.NaN()
		}
		m := mean(w)
		var ss float64
		for _, v := range w {
			ss += (v - m) * (v - m)
		}
		return math.Sqrt(ss / float64(len(w)-1))
	})
}

func mean(w Series) float64 {
	var sum float64
	for _, v := range w {
		sum += v
	}
	return sum / float64(len(w))
}

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|).
// The first bar has no previous close and uses high-low.
func TrueRange(bars []contracts.Bar) Series {
	out := make(Series, len(bars))
	for i, b := range bars {
		hl := b.High - b.Low
		if i == 0 {
			out[i] = hl
			continue
		}
		prev := bars[i-1].Close
		out[i] = math.Max(hl, math.Max(math.Abs(b.High-prev), math.Abs(b.Low-prev)))
	}
	return out
}

// ATR is the rolling mean of the true range
func ATR(bars []contracts.Bar, window int) Series {
	return SMA(TrueRange(bars), window)
}

// RSI compares rolling mean gains to rolling mean losses of close deltas.
// A window with no losses saturates at 100.
func RSI(closes Series, window int) Series {
	gains := make(Series, len(closes))
	losses := make(Series, len(closes))
	for i := range closes {
		if i == 0 {
			gains[i], losses[i] = math.NaN(), math.NaN()
			continue
		}
		d := closes[i] - closes[i-1]
		switch {
		case math.IsNaN(d):
			gains[i], losses[i] = math.NaN(), math.NaN()
		case d > 0:
			gains[i] = d
		case d < 0:
			losses[i] = -d
		}
	}

	avgGain := SMA(gains, window)
	avgLoss := SMA(losses, window)

	out := make(Series, len(closes))
	for i := range out {
		g, l := avgGain[i], avgLoss[i]
		switch {
		case math.IsNaN(g) || math.IsNaN(l):
			out[i] = math.NaN()
		case l == 0 && g == 0:
			// 0/0: pandas yields NaN here
			out[i] = math.NaN()
		case l == 0:
			out[i] = 100
		default:
			out[i] = 100 - 100/(1+g/l)
		}
	}
	return out
}

// PctReturns is the fractional change to the previous value; index 0 is NaN
func PctReturns(x Series) Series {
	out := make(Series, len(x))
	for i := range x {
		if i == 0 || x[i-1] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = x[i]/x[i-1] - 1
	}
	return out
}

// RecentVolatility is the rolling std of percent returns, as a percentage
func RecentVolatility(closes Series, window int) Series {
	std := RollingStd(PctReturns(closes), window)
	for i := range std {
		std[i] *= 100
	}
	return std
}

// Latest returns the last value of the series, or NaN when empty
func Latest(x Series) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return x[len(x)-1]
}

// FirstValid returns the index from which every series is non-NaN, or -1
func FirstValid(series ...Series) int {
	if len(series) == 0 {
		return -1
	}
	n := len(series[0])
	for i := 0; i < n; i++ {
		ok := true
		for _, s := range series {
			if i >= len(s) || math.IsNaN(s[i]) {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}
