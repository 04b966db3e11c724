package scheduler

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerstats/wbsync/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	ran      chan struct{}
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }

func (j *stubJob) Run(ctx context.Context) error {
	select {
	case j.ran <- struct{}{}:
	default:
	}
	return nil
}

func newStubJob(name string) *stubJob {
	return &stubJob{name: name, schedule: "0 0 6 * * *", ran: make(chan struct{}, 1)}
}

func testScheduler() *Scheduler {
	return New(logger.NewWithWriter(io.Discard, "error"))
}

func TestAddJob(t *testing.T) {
	s := testScheduler()

	require.NoError(t, s.AddJob(newStubJob("sync_a")))
	require.NoError(t, s.AddJob(newStubJob("sync_b")))

	assert.ElementsMatch(t, []string{"sync_a", "sync_b"}, s.GetAllJobs())
}

func TestAddJobRejectsDuplicate(t *testing.T) {
	s := testScheduler()

	require.NoError(t, s.AddJob(newStubJob("sync_a")))
	assert.ErrorContains(t, s.AddJob(newStubJob("sync_a")), "already exists")
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := testScheduler()
	job := newStubJob("broken")
	job.schedule = "not a cron expression"

	assert.ErrorContains(t, s.AddJob(job), "failed to schedule")
}

func TestRunJobImmediately(t *testing.T) {
	s := testScheduler()
	job := newStubJob("sync_a")
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("sync_a"))

	select {
	case <-job.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}

	// History records the execution once the goroutine finishes.
	assert.Eventually(t, func() bool {
		history, err := s.GetJobHistory("sync_a")
		return err == nil && len(history.Results) == 1 && history.Results[0].Success
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunJobUnknown(t *testing.T) {
	assert.ErrorContains(t, testScheduler().RunJob("missing"), "not found")
}

func TestJobHistoryBounded(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "x", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, 100)
	assert.Len(t, h.GetLatestResults(10), 10)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 0.01)
}

func TestGetJobStats(t *testing.T) {
	s := testScheduler()
	job := newStubJob("sync_a")
	require.NoError(t, s.AddJob(job))

	s.mu.Lock()
	s.history["sync_a"].AddResult(JobResult{
		JobName:   "sync_a",
		StartTime: time.Now(),
		Success:   true,
	})
	s.mu.Unlock()

	stats := s.GetJobStats()
	require.Contains(t, stats, "sync_a")
	assert.Equal(t, 1, stats["sync_a"].TotalRuns)
	assert.Equal(t, 1, stats["sync_a"].SuccessCount)
	assert.NotNil(t, stats["sync_a"].LastSuccess)
}
