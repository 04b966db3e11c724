package advstats

import (
	"context"
	"fmt"
	"time"

	"github.com/sellerstats/wbsync/internal/wbapi"
	"github.com/sellerstats/wbsync/pkg/config"
	"github.com/sellerstats/wbsync/pkg/logger"
	"github.com/sellerstats/wbsync/pkg/redis"
)

// Fetcher is the slice of the WB API client the pipeline needs.
type Fetcher interface {
	FetchPromotionCount(ctx context.Context) (*wbapi.PromotionCountResponse, error)
	FetchFullstatsBatch(ctx context.Context, ids []int64, begin, end time.Time, batchSize int, delay time.Duration) ([]wbapi.FullstatsCampaign, error)
}

// Store is the persistence surface of the pipeline.
type Store interface {
	VendorCodes(ctx context.Context) (map[int64]string, error)
	UpsertDailyStats(ctx context.Context, records []CampaignDailyStat) (int, error)
	CountByDateRange(ctx context.Context, from, to time.Time) (int, error)
}

// Pipeline runs one advertising-stats sync end to end.
type Pipeline struct {
	fetcher     Fetcher
	store       Store
	aggregator  ParamsAggregator
	transformer *Transformer
	cache       *redis.Cache
	logger      *logger.Logger
	cfg         *config.Config
}

// NewPipeline wires a pipeline.
func NewPipeline(fetcher Fetcher, store Store, agg ParamsAggregator, cache *redis.Cache, log *logger.Logger, cfg *config.Config) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		store:       store,
		aggregator:  agg,
		transformer: NewTransformer(log),
		cache:       cache,
		logger:      log,
		cfg:         cfg,
	}
}

// Result describes one completed sync run.
type Result struct {
	Campaigns  int
	Records    int
	Report     TransformReport
	Validation BatchResult
	Duplicates []string
	Written    int
	Aggregated int
	StoredRows int
	Summary    Summary
}

// Run fetches campaign statistics for [begin, end], transforms and validates
// them, upserts the records, and rolls them up into adv_params.
//
// Partial success: lookup misses and threshold drops only reduce the batch;
// structural errors and invalid records abort before any write.
func (p *Pipeline) Run(ctx context.Context, begin, end time.Time) (*Result, error) {
	result := &Result{}

	promo, err := p.fetcher.FetchPromotionCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("campaign list: %w", err)
	}

	ids := wbapi.ExtractCampaignIDs(promo, []int{
		wbapi.CampaignStatusDone,
		wbapi.CampaignStatusActive,
		wbapi.CampaignStatusPaused,
	})
	result.Campaigns = len(ids)
	if len(ids) == 0 {
		p.logger.Info("no campaigns to sync")
		return result, nil
	}

	p.logger.WithFields(map[string]interface{}{
		"campaigns": len(ids),
		"begin":     begin.Format("2006-01-02"),
		"end":       end.Format("2006-01-02"),
	}).Info("fetching campaign statistics")

	campaigns, err := p.fetcher.FetchFullstatsBatch(ctx, ids, begin, end,
		p.cfg.Sync.FullstatsBatchSize, p.cfg.Sync.FullstatsDelay)
	if err != nil {
		return nil, fmt.Errorf("fullstats: %w", err)
	}

	vendorCodes, err := p.vendorCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("vendor codes: %w", err)
	}

	records, report := p.transformer.Transform(campaigns, vendorCodes, p.cfg.Sync.MinViewsThreshold)
	result.Records = len(records)
	result.Report = report

	result.Validation = ValidateBatch(records, false)
	if !result.Validation.Valid {
		for _, verr := range result.Validation.Errors {
			p.logger.WithField("error", verr.Error()).Error("invalid record")
		}
		return result, fmt.Errorf("validation failed: %d of %d records invalid",
			result.Validation.InvalidCount, result.Validation.Total)
	}

	result.Duplicates = FindDuplicateKeys(records)
	for _, dup := range result.Duplicates {
		p.logger.WithField("key", dup).Warn("duplicate record key in batch")
	}

	result.Written, err = p.store.UpsertDailyStats(ctx, records)
	if err != nil {
		return result, fmt.Errorf("upsert: %w", err)
	}

	result.Aggregated, err = p.aggregator.Aggregate(ctx, begin, end)
	if err != nil {
		return result, fmt.Errorf("aggregation: %w", err)
	}

	result.StoredRows, err = p.store.CountByDateRange(ctx, begin, end)
	if err != nil {
		return result, fmt.Errorf("verification: %w", err)
	}
	if result.StoredRows < result.Written {
		p.logger.WithFields(map[string]interface{}{
			"written": result.Written,
			"stored":  result.StoredRows,
		}).Warn("stored row count below written count")
	}

	result.Summary = Summarize(records)

	p.logger.WithFields(map[string]interface{}{
		"campaigns":     result.Summary.UniqueCampaigns,
		"articles":      result.Summary.UniqueArticles,
		"records":       result.Written,
		"aggregated":    result.Aggregated,
		"lookup_misses": report.LookupMisses,
	}).Info("adv stats sync complete")

	return result, nil
}

// vendorCodes serves the lookup map from cache when possible. The map
// changes rarely, so a short TTL keeps repeated runs cheap without risking
// staleness across a business day.
func (p *Pipeline) vendorCodes(ctx context.Context) (map[int64]string, error) {
	var codes map[int64]string

	if p.cache != nil {
		hit, err := p.cache.Get(ctx, redis.VendorCodesKey, &codes)
		if err != nil {
			p.logger.WithError(err).Warn("vendor code cache read failed")
		} else if hit {
			return codes, nil
		}
	}

	codes, err := p.store.VendorCodes(ctx)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, redis.VendorCodesKey, codes, redis.TTLMedium); err != nil {
			p.logger.WithError(err).Warn("vendor code cache write failed")
		}
	}
	return codes, nil
}
