package scanconfig

import "time"

// Config는 워런트 스캔 전체 설정
type Config struct {
	Market     Market     `yaml:"market" json:"market"`
	Screening  Screening  `yaml:"screening" json:"screening"`
	Search     Search     `yaml:"search" json:"search"`
	HTTP       HTTP       `yaml:"http" json:"http"`
	Enrichment Enrichment `yaml:"enrichment" json:"enrichment"`
	FX         FX         `yaml:"fx" json:"fx"`
	Mapping    Mapping    `yaml:"mapping" json:"mapping"`
	Universe   Universe   `yaml:"universe" json:"universe"`
}

// Market 시세 데이터 윈도우
type Market struct {
	Period   string `yaml:"period" json:"period"`     // e.g. 6mo
	Interval string `yaml:"interval" json:"interval"` // e.g. 1d
}

// Screening 기초자산 필터
type Screening struct {
	MinRows       int     `yaml:"min_rows" json:"min_rows"`
	ATRPctMin     float64 `yaml:"atr_pct_min" json:"atr_pct_min"`
	ATRPctMax     float64 `yaml:"atr_pct_max" json:"atr_pct_max"`
	Range15Min    float64 `yaml:"range_15_min" json:"range_15_min"`
	MinAssetScore int     `yaml:"min_asset_score" json:"min_asset_score"`
	RecentVolMin  float64 `yaml:"recent_vol_min" json:"recent_vol_min"` // percent
}

// Search 리스팅 검색 파라미터
type Search struct {
	DaysMin         int     `yaml:"days_min" json:"days_min"`
	DaysMax         int     `yaml:"days_max" json:"days_max"`
	WideDaysMin     int     `yaml:"wide_days_min" json:"wide_days_min"`
	WideDaysMax     int     `yaml:"wide_days_max" json:"wide_days_max"`
	SpreadAskPctMin float64 `yaml:"spread_ask_pct_min" json:"spread_ask_pct_min"`
	SpreadAskPctMax float64 `yaml:"spread_ask_pct_max" json:"spread_ask_pct_max"`
	BrokerID        int     `yaml:"broker_id" json:"broker_id"` // 0 = no broker filter
	OptionType      string  `yaml:"option_type" json:"option_type"`
}

// HTTP 요청 정책
type HTTP struct {
	RequestTimeoutSec float64 `yaml:"request_timeout_sec" json:"request_timeout_sec"`
	MaxRetries        int     `yaml:"max_retries" json:"max_retries"`
	RetryDelaySec     float64 `yaml:"retry_delay_sec" json:"retry_delay_sec"`
	PoliteDelaySec    float64 `yaml:"polite_delay_sec" json:"polite_delay_sec"`
}

// RequestTimeout returns the per-request timeout
func (h HTTP) RequestTimeout() time.Duration {
	return seconds(h.RequestTimeoutSec)
}

// RetryDelay returns the base retry delay
func (h HTTP) RetryDelay() time.Duration {
	return seconds(h.RetryDelaySec)
}

// PoliteDelay returns the pause after each listing fetch
func (h HTTP) PoliteDelay() time.Duration {
	return seconds(h.PoliteDelaySec)
}

// Enrichment 상세 페이지 보강
type Enrichment struct {
	MaxDetailEnrich int `yaml:"max_detail_enrich" json:"max_detail_enrich"` // 0 = all
}

// FX 환율 캐시
type FX struct {
	CacheTTLSec int `yaml:"cache_ttl_sec" json:"cache_ttl_sec"`
}

// CacheTTL returns the FX cache entry lifetime
func (f FX) CacheTTL() time.Duration {
	return time.Duration(f.CacheTTLSec) * time.Second
}

// Mapping 이름 매핑 저장소
type Mapping struct {
	File string `yaml:"file" json:"file"`
}

// Universe 스캔 대상
type Universe struct {
	Tickers []string `yaml:"tickers" json:"tickers"` // empty = DefaultTickers()
	Limit   int      `yaml:"limit" json:"limit"`     // 0 = no limit
}

// Defaults returns the built-in scanner settings
func Defaults() *Config {
	return &Config{
		Market: Market{Period: "6mo", Interval: "1d"},
		Screening: Screening{
			MinRows:       80,
			ATRPctMin:     0.02,
			ATRPctMax:     0.05,
			Range15Min:    0.025,
			MinAssetScore: 12,
			RecentVolMin:  0.8,
		},
		Search: Search{
			DaysMin:         9,
			DaysMax:         16,
			WideDaysMin:     8,
			WideDaysMax:     20,
			SpreadAskPctMin: 0.3,
			SpreadAskPctMax: 3.0,
			BrokerID:        4,
			OptionType:      "call",
		},
		HTTP: HTTP{
			RequestTimeoutSec: 15,
			MaxRetries:        3,
			RetryDelaySec:     1.0,
			PoliteDelaySec:    2.0,
		},
		FX:      FX{CacheTTLSec: 3600},
		Mapping: Mapping{File: "onvista_mapping.json"},
	}
}

// Tickers returns the configured universe with the limit applied
func (c *Config) Tickers() []string {
	tickers := c.Universe.Tickers
	if len(tickers) == 0 {
		tickers = DefaultTickers()
	}
	if c.Universe.Limit > 0 && c.Universe.Limit < len(tickers) {
		tickers = tickers[:c.Universe.Limit]
	}
	return tickers
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
