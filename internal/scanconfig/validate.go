package scanconfig

import (
	"fmt"
	"strings"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Market ===
	if cfg.Market.Period == "" {
		return ValidationError{"market.period", "required"}
	}
	if cfg.Market.Interval == "" {
		return ValidationError{"market.interval", "required"}
	}

	// === Screening ===
	s := cfg.Screening
	if s.MinAssetScore < 0 {
		return ValidationError{"screening.min_asset_score", "must be >= 0"}
	}
	if s.MinRows <= 0 {
		return ValidationError{"screening.min_rows", "must be > 0"}
	}
	if s.ATRPctMin < 0 || s.ATRPctMax <= 0 {
		return ValidationError{"screening.atr_pct", "must be positive"}
	}
	if s.ATRPctMin > s.ATRPctMax {
		return ValidationError{"screening.atr_pct", "atr_pct_min must be <= atr_pct_max"}
	}
	if s.Range15Min < 0 {
		return ValidationError{"screening.range_15_min", "must be >= 0"}
	}
	if s.RecentVolMin < 0 {
		return ValidationError{"screening.recent_vol_min", "must be >= 0"}
	}

	// === Search ===
	q := cfg.Search
	if q.DaysMin < 0 || q.DaysMin > q.DaysMax {
		return ValidationError{"search.days", "need 0 <= days_min <= days_max"}
	}
	if q.WideDaysMin < 0 || q.WideDaysMin > q.WideDaysMax {
		return ValidationError{"search.wide_days", "need 0 <= wide_days_min <= wide_days_max"}
	}
	if q.SpreadAskPctMin < 0 || q.SpreadAskPctMin > q.SpreadAskPctMax {
		return ValidationError{"search.spread_ask_pct", "need 0 <= min <= max"}
	}
	if q.BrokerID < 0 {
		return ValidationError{"search.broker_id", "must be >= 0"}
	}
	switch strings.ToLower(q.OptionType) {
	case "call", "put":
	default:
		return ValidationError{"search.option_type", "must be call or put"}
	}

	// === HTTP ===
	if cfg.HTTP.RequestTimeoutSec <= 0 {
		return ValidationError{"http.request_timeout_sec", "must be > 0"}
	}
	if cfg.HTTP.MaxRetries < 0 {
		return ValidationError{"http.max_retries", "must be >= 0"}
	}
	if cfg.HTTP.RetryDelaySec < 0 || cfg.HTTP.PoliteDelaySec < 0 {
		return ValidationError{"http", "delays must be >= 0"}
	}

	// === Enrichment / FX / Mapping ===
	if cfg.Enrichment.MaxDetailEnrich < 0 {
		return ValidationError{"enrichment.max_detail_enrich", "must be >= 0"}
	}
	if cfg.FX.CacheTTLSec <= 0 {
		return ValidationError{"fx.cache_ttl_sec", "must be > 0"}
	}
	if cfg.Mapping.File == "" {
		return ValidationError{"mapping.file", "required"}
	}
	if cfg.Universe.Limit < 0 {
		return ValidationError{"universe.limit", "must be >= 0"}
	}

	return nil
}
