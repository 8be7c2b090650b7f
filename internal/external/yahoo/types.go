package yahoo

import (
	"math"
	"time"

	"github.com/wonny/warrantscan/internal/contracts"
)

// chartResponse is the v8 chart endpoint payload.
// Quote arrays contain nulls for missing observations.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta       chartMeta `json:"meta"`
			Timestamp  []int64   `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartMeta struct {
	Symbol      string `json:"symbol"`
	Currency    string `json:"currency"`
	ShortName   string `json:"shortName"`
	LongName    string `json:"longName"`
	DisplayName string `json:"displayName"`
}

// Chart is a decoded price history with its instrument metadata
type Chart struct {
	Symbol    string
	Currency  string
	ShortName string
	LongName  string
	Display   string
	Bars      []contracts.Bar
}

// Names returns the non-empty display names, short name first
func (c *Chart) Names() []string {
	var out []string
	for _, n := range []string{c.ShortName, c.LongName, c.Display} {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

func at(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return math.NaN()
	}
	return *vals[i]
}

func (r *chartResponse) toChart() *Chart {
	if len(r.Chart.Result) == 0 {
		return nil
	}
	res := r.Chart.Result[0]
	chart := &Chart{
		Symbol:    res.Meta.Symbol,
		Currency:  res.Meta.Currency,
		ShortName: res.Meta.ShortName,
		LongName:  res.Meta.LongName,
		Display:   res.Meta.DisplayName,
	}
	if len(res.Indicators.Quote) == 0 {
		return chart
	}

	q := res.Indicators.Quote[0]
	chart.Bars = make([]contracts.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		chart.Bars = append(chart.Bars, contracts.Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   at(q.Open, i),
			High:   at(q.High, i),
			Low:    at(q.Low, i),
			Close:  at(q.Close, i),
			Volume: at(q.Volume, i),
		})
	}
	return chart
}
