package commands

import (
	"context"
	"fmt"

	"github.com/wonny/warrantscan/internal/external/onvista"
	"github.com/wonny/warrantscan/internal/external/yahoo"
	"github.com/wonny/warrantscan/internal/fx"
	"github.com/wonny/warrantscan/internal/names"
	"github.com/wonny/warrantscan/internal/pipeline"
	"github.com/wonny/warrantscan/internal/results"
	"github.com/wonny/warrantscan/internal/scanconfig"
	"github.com/wonny/warrantscan/internal/scoring"
	"github.com/wonny/warrantscan/internal/screener"
	"github.com/wonny/warrantscan/pkg/config"
	"github.com/wonny/warrantscan/pkg/database"
	"github.com/wonny/warrantscan/pkg/httputil"
	"github.com/wonny/warrantscan/pkg/logger"
	"github.com/wonny/warrantscan/pkg/metrics"
	"github.com/wonny/warrantscan/pkg/redis"
)

const debugListingPath = "debug_listing.html"

// app holds the wired scanner stack shared by every command
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg     *config.Config
	scan    *scanconfig.Config
	log     *logger.Logger
	metrics *metrics.Registry

	redis *redis.Client
	db    *database.DB // nil when DATABASE_URL is unset

	yahoo    *yahoo.Client
	fx       *fx.Provider
	screener *screener.Screener
	store    *names.MappingStore
	resolver *names.Resolver
	onvista  *onvista.Client
	enricher *onvista.Enricher
	scorer   *scoring.Scorer
	repo     *results.Repository // nil without a database
}

// appOptions tweak the scanner settings before the stack is built
type appOptions struct {
	withDatabase bool
	tweak        func(*scanconfig.Config)
}

// newApp loads configuration and builds the stack
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Scanner settings
	path := cfg.ScannerConfigPath
	if scannerConfig != "" {
		path = scannerConfig
	}
	scan, err := scanconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load scanner config: %w", err)
	}
	if opts.tweak != nil {
		opts.tweak(scan)
		if err := scanconfig.Validate(scan); err != nil {
			return nil, fmt.Errorf("scanner config: %w", err)
		}
	}

	a := &app{cfg: cfg, scan: scan, log: log}
	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	// 4. Redis (optional shared tier)
	a.redis, err = redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without shared cache")
		a.redis = redis.NewFromRedis(nil)
	}

	// 5. Database (optional persistence)
	if opts.withDatabase && cfg.Database.Enabled() {
		a.db, err = database.New(cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.repo = results.NewRepository(a.db.Pool)
		if err := a.repo.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("Connected to database")
	}

	// 6. Market data feed
	feedHTTP := httputil.NewWithTimeout(cfg, log, scan.HTTP.RequestTimeout())
	a.yahoo = yahoo.NewClient(feedHTTP, log,
		yahoo.WithBaseURL(cfg.Yahoo.BaseURL),
		yahoo.WithRateLimit(cfg.Yahoo.RateLimit),
		yahoo.WithMetrics(a.metrics),
	)

	// 7. FX with the shared cache tier
	a.fx = fx.NewProvider(a.yahoo, scan.FX.CacheTTL(), log).
		WithSharedCache(redis.NewCache(a.redis, "warrantscan")).
		WithMetrics(a.metrics)

	// 8. Screener
	a.screener = screener.New(a.yahoo, scan.Market, scan.Screening, log).WithMetrics(a.metrics)

	// 9. Name mapping
	mappingPath := cfg.MappingFile
	if mappingFile != "" {
		mappingPath = mappingFile
	}
	if mappingPath == "" {
		mappingPath = scan.Mapping.File
	}
	a.store, err = names.LoadMappingStore(mappingPath)
	if err != nil {
		log.WithError(err).Warn("Mapping file unreadable, starting from the seed mapping")
	}
	a.resolver = names.NewResolver(a.store, a.yahoo, log)

	// 10. Listing site: own retry policy, shared rate limit
	siteHTTP := httputil.NewWithTimeout(cfg, log, scan.HTTP.RequestTimeout()).
		DisableRetry().
		WithHeader("Accept-Language", "de-DE,de;q=0.9").
		WithRateLimiter(redis.NewRateLimiter(a.redis, "warrantscan"), redis.OnvistaRateLimit)
	a.onvista = onvista.NewClient(siteHTTP, cfg.Onvista.BaseURL, scan, log).WithMetrics(a.metrics)
	if debug {
		a.onvista.WithDebugDump(debugListingPath)
	}
	a.enricher = onvista.NewEnricher(a.onvista, nil)

	// 11. Scorer
	a.scorer = scoring.NewScorer(a.fx, log).WithMetrics(a.metrics)

	return a, nil
}

// runner builds a pipeline runner over the stack
func (a *app) runner() *pipeline.Runner {
	return pipeline.NewRunner(
		a.screener,
		a.resolver,
		a.onvista,
		a.enricher,
		a.scorer,
		pipeline.OptionsFromConfig(a.scan),
		a.log,
	).WithMetrics(a.metrics)
}

// Close releases connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
