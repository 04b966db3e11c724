package jobs

import (
	"context"
	"fmt"

	"github.com/sellerstats/wbsync/internal/products"
	"github.com/sellerstats/wbsync/pkg/logger"
)

// ProductsJob refreshes the product catalog once a day, ahead of the
// advertising stats sync that reads vendor codes from it.
type ProductsJob struct {
	pipeline *products.Pipeline
	logger   *logger.Logger
}

// NewProductsJob creates a new products job.
func NewProductsJob(pipeline *products.Pipeline, log *logger.Logger) *ProductsJob {
	return &ProductsJob{
		pipeline: pipeline,
		logger:   log,
	}
}

// Name returns the job name.
func (j *ProductsJob) Name() string {
	return "products_sync"
}

// Schedule returns the cron schedule (every day at 5 AM, one hour before the
// adv stats sync).
func (j *ProductsJob) Schedule() string {
	return "0 0 5 * * *"
}

// Run executes the sync.
func (j *ProductsJob) Run(ctx context.Context) error {
	result, err := j.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("products sync: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"products": result.ProductsWritten,
		"sizes":    result.SizesWritten,
	}).Info("Scheduled products sync completed")

	return nil
}
