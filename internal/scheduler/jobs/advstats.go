package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/sellerstats/wbsync/internal/advstats"
	"github.com/sellerstats/wbsync/pkg/config"
	"github.com/sellerstats/wbsync/pkg/logger"
)

// AdvStatsJob syncs advertising statistics once a day.
//
// The window covers today and the previous 3 days so that late upstream
// corrections to recent days are picked up; the upsert makes the re-write
// idempotent.
type AdvStatsJob struct {
	pipeline *advstats.Pipeline
	config   *config.Config
	logger   *logger.Logger
}

// NewAdvStatsJob creates a new advertising stats job.
func NewAdvStatsJob(pipeline *advstats.Pipeline, cfg *config.Config, log *logger.Logger) *AdvStatsJob {
	return &AdvStatsJob{
		pipeline: pipeline,
		config:   cfg,
		logger:   log,
	}
}

// Name returns the job name.
func (j *AdvStatsJob) Name() string {
	return "adv_stats_sync"
}

// Schedule returns the cron schedule (every day at 6 AM, after the WB API
// has finalized the previous day).
func (j *AdvStatsJob) Schedule() string {
	return "0 0 6 * * *"
}

// Run executes the sync.
func (j *AdvStatsJob) Run(ctx context.Context) error {
	now := time.Now().In(j.config.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	begin := end.AddDate(0, 0, -3)

	result, err := j.pipeline.Run(ctx, begin, end)
	if err != nil {
		return fmt.Errorf("adv stats sync: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"records":    result.Written,
		"aggregated": result.Aggregated,
	}).Info("Scheduled adv stats sync completed")

	return nil
}
