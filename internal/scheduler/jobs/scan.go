package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/wonny/warrantscan/internal/pipeline"
	"github.com/wonny/warrantscan/internal/report"
	"github.com/wonny/warrantscan/pkg/logger"
)

// ScanRunner runs one discovery pass over a ticker list
type ScanRunner interface {
	Run(ctx context.Context, tickers []string) (*pipeline.RunResult, error)
}

// RunStore persists finished runs
type RunStore interface {
	SaveRun(ctx context.Context, run *pipeline.RunResult) error
}

// ScanJob runs the warrant scan on a schedule
type ScanJob struct {
	runner   ScanRunner
	tickers  []string
	schedule string
	store    RunStore // nil = no persistence
	outDir   string   // "" = no CSV export
	logger   *logger.Logger

	mu     sync.RWMutex
	latest *pipeline.RunResult
}

// NewScanJob creates a new scan job
func NewScanJob(runner ScanRunner, tickers []string, schedule string, log *logger.Logger) *ScanJob {
	return &ScanJob{
		runner:   runner,
		tickers:  tickers,
		schedule: schedule,
		logger:   log,
	}
}

// WithStore persists every completed run
func (j *ScanJob) WithStore(store RunStore) *ScanJob {
	j.store = store
	return j
}

// WithExport writes a CSV per run into dir
func (j *ScanJob) WithExport(dir string) *ScanJob {
	j.outDir = dir
	return j
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return "warrant_scan"
}

// Schedule returns the cron schedule
func (j *ScanJob) Schedule() string {
	return j.schedule
}

// Latest returns the most recent successful run, or nil
func (j *ScanJob) Latest() *pipeline.RunResult {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.latest
}

// Run executes one scan
func (j *ScanJob) Run(ctx context.Context) error {
	j.logger.WithField("tickers", len(j.tickers)).Info("Starting scheduled warrant scan")

	run, err := j.runner.Run(ctx, j.tickers)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	j.mu.Lock()
	j.latest = run
	j.mu.Unlock()

	if j.store != nil {
		if err := j.store.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("save run %s: %w", run.RunID, err)
		}
	}

	if j.outDir != "" {
		path := filepath.Join(j.outDir, ExportFileName(string(run.OptionType), run.StartedAt))
		if err := report.WriteFile(path, run.Ranked); err != nil {
			return fmt.Errorf("export run %s: %w", run.RunID, err)
		}
		j.logger.WithField("path", path).Info("Scan results exported")
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":     run.RunID,
		"qualified":  len(run.Qualified()),
		"candidates": len(run.Ranked),
		"duration":   run.Duration,
	}).Info("Scheduled warrant scan completed")

	return nil
}

// ExportFileName names a run's CSV file, e.g. warrants_call_20260110_083000.csv
func ExportFileName(optionType string, startedAt time.Time) string {
	return fmt.Sprintf("warrants_%s_%s.csv", optionType, startedAt.Format("20060102_150405"))
}
