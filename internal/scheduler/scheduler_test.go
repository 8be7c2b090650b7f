package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/warrantscan/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32 // fail this many times before succeeding
	calls    int32
	block    chan struct{}
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.calls, 1)
	if j.block != nil {
		<-j.block
	}
	if n <= j.failures {
		return errors.New("upstream unavailable")
	}
	return nil
}

func newJob(name string) *fakeJob {
	return &fakeJob{name: name, schedule: "0 30 8 * * 1-5"}
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(newJob("warrant_scan")))
	assert.Error(t, s.AddJob(newJob("warrant_scan")), "duplicate names are rejected")

	bad := newJob("broken")
	bad.schedule = "not a cron"
	assert.Error(t, s.AddJob(bad))

	assert.Equal(t, []string{"warrant_scan"}, s.GetAllJobs())
}

func TestRemoveJob(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(newJob("warrant_scan")))

	require.NoError(t, s.RemoveJob("warrant_scan"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("warrant_scan"))
	assert.Error(t, s.RunJob("warrant_scan"))
}

func TestRunJobSync_RetriesUntilSuccess(t *testing.T) {
	s := New(logger.Nop()).WithRetry(2, 0)
	job := newJob("warrant_scan")
	job.failures = 2
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync(context.Background(), "warrant_scan")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Empty(t, result.Error)
}

func TestRunJobSync_FailsAfterRetries(t *testing.T) {
	s := New(logger.Nop()).WithRetry(1, 0)
	job := newJob("warrant_scan")
	job.failures = 10
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync(context.Background(), "warrant_scan")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, "upstream unavailable", result.Error)

	stats := s.GetJobStats()["warrant_scan"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	assert.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
}

func TestRunJobSync_CancelledContextStopsRetrying(t *testing.T) {
	s := New(logger.Nop()).WithRetry(5, time.Hour)
	job := newJob("warrant_scan")
	job.failures = 10
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.RunJobSync(ctx, "warrant_scan")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
}

func TestRunJobSync_SkipsOverlappingRun(t *testing.T) {
	s := New(logger.Nop()).WithRetry(0, 0)
	job := newJob("warrant_scan")
	job.block = make(chan struct{})
	require.NoError(t, s.AddJob(job))

	done := make(chan JobResult)
	go func() {
		r, _ := s.RunJobSync(context.Background(), "warrant_scan")
		done <- r
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&job.calls) == 1
	}, time.Second, 5*time.Millisecond)

	skipped, err := s.RunJobSync(context.Background(), "warrant_scan")
	require.NoError(t, err)
	assert.True(t, skipped.Skipped)
	assert.True(t, s.GetJobStats()["warrant_scan"].Running)

	close(job.block)
	first := <-done
	assert.True(t, first.Success)

	history, err := s.GetJobHistory("warrant_scan")
	require.NoError(t, err)
	assert.Len(t, history.Results, 1, "skipped triggers are not recorded")
}

func TestNextRun(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(newJob("warrant_scan")))

	s.Start()
	defer s.Stop()

	next, err := s.NextRun("warrant_scan")
	require.NoError(t, err)
	assert.True(t, next.After(time.Now()))
	assert.Equal(t, 8, next.Hour())
	assert.Equal(t, 30, next.Minute())

	_, err = s.NextRun("missing")
	assert.Error(t, err)
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.GetSuccessRate())
	assert.Empty(t, h.GetLatestResults(5))

	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{JobName: "warrant_scan", Success: i%4 != 0, Attempts: i})
	}

	assert.Len(t, h.Results, historyLimit)
	assert.Equal(t, 20, h.Results[0].Attempts, "oldest entries are dropped")

	latest := h.GetLatestResults(3)
	require.Len(t, latest, 3)
	assert.Equal(t, historyLimit+19, latest[2].Attempts)

	assert.Len(t, h.GetFailedResults(), 25)
	assert.InDelta(t, 0.75, h.GetSuccessRate(), 1e-9)
}
