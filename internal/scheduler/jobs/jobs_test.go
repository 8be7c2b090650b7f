package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/warrantscan/internal/contracts"
	"github.com/wonny/warrantscan/internal/pipeline"
	"github.com/wonny/warrantscan/pkg/logger"
)

type fakeRunner struct {
	run     *pipeline.RunResult
	err     error
	tickers []string
}

func (f *fakeRunner) Run(ctx context.Context, tickers []string) (*pipeline.RunResult, error) {
	f.tickers = tickers
	return f.run, f.err
}

type fakeStore struct {
	saved []string
	err   error
}

func (f *fakeStore) SaveRun(ctx context.Context, run *pipeline.RunResult) error {
	f.saved = append(f.saved, run.RunID)
	return f.err
}

type fakeRateCache struct{ invalidated int }

func (f *fakeRateCache) Invalidate() { f.invalidated++ }

func sampleRun() *pipeline.RunResult {
	snap := contracts.AssetSnapshot{Ticker: "SAP.DE", Currency: "EUR", Close: 180, Score: 80, Qualifies: true}
	return &pipeline.RunResult{
		RunID:      "run-1",
		OptionType: contracts.Call,
		StartedAt:  time.Date(2026, 1, 12, 8, 30, 0, 0, time.UTC),
		Snapshots:  []contracts.AssetSnapshot{snap},
		Ranked: []contracts.RankedCandidate{
			{Snapshot: snap, Candidate: contracts.ScoredCandidate{
				Row:        contracts.EnrichedListingRow{ListingRow: contracts.ListingRow{Code: "AB12CD", Name: "Call SAP"}},
				TotalScore: 91,
			}},
		},
	}
}

func TestScanJob_RunPersistsAndExports(t *testing.T) {
	runner := &fakeRunner{run: sampleRun()}
	store := &fakeStore{}
	dir := t.TempDir()

	job := NewScanJob(runner, []string{"SAP.DE", "ADS.DE"}, "0 30 8 * * 1-5", logger.Nop()).
		WithStore(store).
		WithExport(dir)

	assert.Equal(t, "warrant_scan", job.Name())
	assert.Equal(t, "0 30 8 * * 1-5", job.Schedule())
	assert.Nil(t, job.Latest())

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, []string{"SAP.DE", "ADS.DE"}, runner.tickers)
	assert.Equal(t, []string{"run-1"}, store.saved)
	require.NotNil(t, job.Latest())
	assert.Equal(t, "run-1", job.Latest().RunID)

	data, err := os.ReadFile(filepath.Join(dir, "warrants_call_20260112_083000.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "AB12CD")
}

func TestScanJob_RunnerError(t *testing.T) {
	store := &fakeStore{}
	job := NewScanJob(&fakeRunner{err: context.Canceled}, nil, "@daily", logger.Nop()).WithStore(store)

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.saved)
	assert.Nil(t, job.Latest())
}

func TestScanJob_StoreError(t *testing.T) {
	job := NewScanJob(&fakeRunner{run: sampleRun()}, nil, "@daily", logger.Nop()).
		WithStore(&fakeStore{err: errors.New("connection refused")})

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run-1")
	assert.NotNil(t, job.Latest(), "the run itself succeeded")
}

func TestExportFileName(t *testing.T) {
	ts := time.Date(2026, 3, 5, 17, 4, 9, 0, time.UTC)
	assert.Equal(t, "warrants_put_20260305_170409.csv", ExportFileName("put", ts))
}

func TestFxRefreshJob(t *testing.T) {
	cache := &fakeRateCache{}
	job := NewFxRefreshJob(cache, logger.Nop())

	assert.Equal(t, "fx_refresh", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, cache.invalidated)
}
