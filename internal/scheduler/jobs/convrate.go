package jobs

import (
	"context"
	"fmt"

	"github.com/sellerstats/wbsync/internal/convrate"
	"github.com/sellerstats/wbsync/pkg/logger"
)

// ConvRateJob refreshes the conversion-rate snapshot every hour.
//
// The today record is overwritten all day long; the yesterday record
// stabilizes after the first run past midnight.
type ConvRateJob struct {
	pipeline *convrate.Pipeline
	logger   *logger.Logger
}

// NewConvRateJob creates a new conversion rate job.
func NewConvRateJob(pipeline *convrate.Pipeline, log *logger.Logger) *ConvRateJob {
	return &ConvRateJob{
		pipeline: pipeline,
		logger:   log,
	}
}

// Name returns the job name.
func (j *ConvRateJob) Name() string {
	return "cr_stats_sync"
}

// Schedule returns the cron schedule (every hour at minute 15).
func (j *ConvRateJob) Schedule() string {
	return "0 15 * * * *"
}

// Run executes the sync.
func (j *ConvRateJob) Run(ctx context.Context) error {
	result, err := j.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("cr stats sync: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"cards":     result.Cards,
		"today":     result.TodayWritten,
		"yesterday": result.YesterdayWritten,
	}).Info("Scheduled conversion rate sync completed")

	return nil
}
