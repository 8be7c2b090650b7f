package onvista

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/warrantscan/internal/scanconfig"
)

const (
	searchPath = "/derivate/Optionsscheine/Optionsscheine-auf-"

	// listing columns requested from the site, in display order
	searchColumns = "instrument,strikeAbs,dateMaturity,quote.bid,quote.ask,leverage,omega,impliedVolatilityAsk,spreadAskPct,premiumAsk,nameExerciseStyle,issuer.name,theta"

	strikeWindowLow  = 0.90
	strikeWindowHigh = 1.10
	strikeWidenLow   = 0.85
	strikeWidenHigh  = 1.15
)

// SearchQuery is one listing search
type SearchQuery struct {
	Underlying string
	StrikeMin  int
	StrikeMax  int
	DaysMin    int
	DaysMax    int
	BrokerID   int // 0 = all brokers
	SpreadMin  float64
	SpreadMax  float64
}

// SearchVariant is a labelled search URL
type SearchVariant struct {
	Label string
	URL   string
}

// StrikeWindow returns the narrow strike range around a target strike
func StrikeWindow(target float64) (int, int) {
	return int(target * strikeWindowLow), int(target * strikeWindowHigh)
}

// BuildSearchURL renders a listing search URL. Maturity bounds are
// now+DaysMin and now+DaysMax as YYYY-MM-DD.
func BuildSearchURL(baseURL string, q SearchQuery, now time.Time) string {
	maturityMin := now.AddDate(0, 0, q.DaysMin).Format("2006-01-02")
	maturityMax := now.AddDate(0, 0, q.DaysMax).Format("2006-01-02")

	params := []string{
		"page=0",
		"cols=" + searchColumns,
		fmt.Sprintf("strikeAbsRange=%d;%d", q.StrikeMin, q.StrikeMax),
		fmt.Sprintf("dateMaturityRange=%s;%s", maturityMin, maturityMax),
		fmt.Sprintf("spreadAskPctRange=%s;%s", formatDecimal(q.SpreadMin), formatDecimal(q.SpreadMax)),
		"sort=spreadAskPct",
		"order=ASC",
	}
	if q.BrokerID > 0 {
		// brokerId는 page 바로 뒤
		params = append(params[:1], append([]string{fmt.Sprintf("brokerId=%d", q.BrokerID)}, params[1:]...)...)
	}

	return strings.TrimRight(baseURL, "/") + searchPath + url.PathEscape(q.Underlying) + "?" + strings.Join(params, "&")
}

// BuildSearchURLVariants returns the search variants in the order they are tried:
// broker-restricted, all brokers, wider day window, wider strikes + wider days.
func BuildSearchURLVariants(baseURL, underlying string, strikeMin, strikeMax int, cfg scanconfig.Search, now time.Time) []SearchVariant {
	base := SearchQuery{
		Underlying: underlying,
		StrikeMin:  strikeMin,
		StrikeMax:  strikeMax,
		DaysMin:    cfg.DaysMin,
		DaysMax:    cfg.DaysMax,
		BrokerID:   cfg.BrokerID,
		SpreadMin:  cfg.SpreadAskPctMin,
		SpreadMax:  cfg.SpreadAskPctMax,
	}

	allBrokers := base
	allBrokers.BrokerID = 0

	widerDays := allBrokers
	widerDays.DaysMin, widerDays.DaysMax = cfg.WideDaysMin, cfg.WideDaysMax

	widerStrikes := widerDays
	widerStrikes.StrikeMin = int(float64(strikeMin) * strikeWidenLow)
	widerStrikes.StrikeMax = int(float64(strikeMax) * strikeWidenHigh)

	variants := make([]SearchVariant, 0, 4)
	if cfg.BrokerID > 0 {
		variants = append(variants, SearchVariant{
			Label: fmt.Sprintf("Standard (broker %d, %d-%d days)", cfg.BrokerID, cfg.DaysMin, cfg.DaysMax),
			URL:   BuildSearchURL(baseURL, base, now),
		})
	}
	variants = append(variants,
		SearchVariant{
			Label: fmt.Sprintf("All brokers (%d-%d days)", cfg.DaysMin, cfg.DaysMax),
			URL:   BuildSearchURL(baseURL, allBrokers, now),
		},
		SearchVariant{
			Label: fmt.Sprintf("Wider days (all brokers, %d-%d days)", cfg.WideDaysMin, cfg.WideDaysMax),
			URL:   BuildSearchURL(baseURL, widerDays, now),
		},
		SearchVariant{
			Label: fmt.Sprintf("Wider strikes (all brokers, %d-%d days)", cfg.WideDaysMin, cfg.WideDaysMax),
			URL:   BuildSearchURL(baseURL, widerStrikes, now),
		},
	)
	return variants
}

// formatDecimal prints 3 as "3.0" and 0.3 as "0.3"
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
