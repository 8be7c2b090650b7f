package jobs

import (
	"context"

	"github.com/wonny/warrantscan/pkg/logger"
)

// RateCache is a cache of conversion rates that can be dropped wholesale
type RateCache interface {
	Invalidate()
}

// FxRefreshJob drops cached FX rates so the next scan fetches fresh ones
type FxRefreshJob struct {
	cache  RateCache
	logger *logger.Logger
}

// NewFxRefreshJob creates a new FX refresh job
func NewFxRefreshJob(cache RateCache, log *logger.Logger) *FxRefreshJob {
	return &FxRefreshJob{
		cache:  cache,
		logger: log,
	}
}

// Name returns the job name
func (j *FxRefreshJob) Name() string {
	return "fx_refresh"
}

// Schedule returns the cron schedule (weekdays before the scan)
func (j *FxRefreshJob) Schedule() string {
	return "0 0 8 * * 1-5"
}

// Run executes the cache refresh
func (j *FxRefreshJob) Run(ctx context.Context) error {
	j.cache.Invalidate()
	j.logger.Debug("FX rate cache invalidated")
	return nil
}
