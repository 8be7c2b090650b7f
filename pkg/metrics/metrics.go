package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics for the scanner.
// Every method is nil-safe so components can run without metrics.
// ⭐ SSOT: 메트릭 정의는 여기서만
type Registry struct {
	reg *prometheus.Registry

	FetchAttempts    *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	AssetsScreened   *prometheus.CounterVec
	CandidatesScored prometheus.Counter
	StepDuration     *prometheus.HistogramVec
}

// New creates a registry with all scanner metrics registered
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		FetchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warrantscan_fetch_attempts_total",
				Help: "Outbound fetch attempts by source and result",
			},
			[]string{"source", "result"},
		),

		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warrantscan_cache_lookups_total",
				Help: "Cache lookups by cache name and outcome (hit|miss)",
			},
			[]string{"cache", "outcome"},
		),

		AssetsScreened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "warrantscan_assets_screened_total",
				Help: "Screened assets by outcome (qualified|rejected|no_snapshot)",
			},
			[]string{"outcome"},
		),

		CandidatesScored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "warrantscan_candidates_scored_total",
				Help: "Number of warrant candidates scored",
			},
		),

		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "warrantscan_step_duration_seconds",
				Help:    "Duration of each pipeline step in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"step"},
		),
	}

	r.reg.MustRegister(
		r.FetchAttempts,
		r.CacheLookups,
		r.AssetsScreened,
		r.CandidatesScored,
		r.StepDuration,
	)

	return r
}

// Handler exposes the registry in Prometheus text format
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying registry (tests)
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Fetch records one fetch attempt
func (r *Registry) Fetch(source, result string) {
	if r == nil {
		return
	}
	r.FetchAttempts.WithLabelValues(source, result).Inc()
}

// Cache records a cache hit or miss
func (r *Registry) Cache(name string, hit bool) {
	if r == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	r.CacheLookups.WithLabelValues(name, outcome).Inc()
}

// Screened records an asset screening outcome
func (r *Registry) Screened(outcome string) {
	if r == nil {
		return
	}
	r.AssetsScreened.WithLabelValues(outcome).Inc()
}

// Scored adds n scored candidates
func (r *Registry) Scored(n int) {
	if r == nil {
		return
	}
	r.CandidatesScored.Add(float64(n))
}

// ObserveStep records the duration of a pipeline step since start
func (r *Registry) ObserveStep(step string, start time.Time) {
	if r == nil {
		return
	}
	r.StepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
}
