package products

import (
	"context"
	"fmt"

	"github.com/sellerstats/wbsync/internal/wbapi"
	"github.com/sellerstats/wbsync/pkg/config"
	"github.com/sellerstats/wbsync/pkg/logger"
	"github.com/sellerstats/wbsync/pkg/redis"
)

// Fetcher is the slice of the WB API client the pipeline needs.
type Fetcher interface {
	FetchAllContentCards(ctx context.Context) ([]wbapi.ContentCard, error)
}

// Store is the persistence surface of the pipeline.
type Store interface {
	UpsertProducts(ctx context.Context, records []Product) (int, error)
	UpsertSizes(ctx context.Context, records []ProductSize) (int, error)
	CountProducts(ctx context.Context) (int, error)
}

// Pipeline runs one product catalog sync end to end.
type Pipeline struct {
	fetcher    Fetcher
	store      Store
	normalizer *Normalizer
	cache      *redis.Cache
	logger     *logger.Logger
	cfg        *config.Config
}

// NewPipeline wires a pipeline.
func NewPipeline(fetcher Fetcher, store Store, cache *redis.Cache, log *logger.Logger, cfg *config.Config) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		store:      store,
		normalizer: NewNormalizer(log),
		cache:      cache,
		logger:     log,
		cfg:        cfg,
	}
}

// Result describes one completed sync run.
type Result struct {
	Cards           int
	Report          NormalizeReport
	ProductsWritten int
	SizesWritten    int
	StoredProducts  int
}

// Run fetches the seller's content cards and upserts the product catalog.
// The vendor-code cache is invalidated after a successful write so the next
// stats sync sees fresh codes.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	cards, err := p.fetcher.FetchAllContentCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("content cards: %w", err)
	}

	result := &Result{Cards: len(cards)}
	if result.Cards == 0 {
		p.logger.Info("content API returned no cards")
		return result, nil
	}

	products, sizes, report := p.normalizer.Normalize(cards, p.cfg.Sync.ExcludedNMIDs)
	result.Report = report

	result.ProductsWritten, err = p.store.UpsertProducts(ctx, products)
	if err != nil {
		return result, fmt.Errorf("upsert products: %w", err)
	}

	result.SizesWritten, err = p.store.UpsertSizes(ctx, sizes)
	if err != nil {
		return result, fmt.Errorf("upsert sizes: %w", err)
	}

	if p.cache != nil {
		if err := p.cache.Delete(ctx, redis.VendorCodesKey); err != nil {
			p.logger.WithError(err).Warn("vendor code cache invalidation failed")
		}
	}

	result.StoredProducts, err = p.store.CountProducts(ctx)
	if err != nil {
		return result, fmt.Errorf("verification: %w", err)
	}
	if result.StoredProducts < result.ProductsWritten {
		p.logger.WithFields(map[string]interface{}{
			"written": result.ProductsWritten,
			"stored":  result.StoredProducts,
		}).Warn("stored product count below written count")
	}

	p.logger.WithFields(map[string]interface{}{
		"cards":    result.Cards,
		"products": result.ProductsWritten,
		"sizes":    result.SizesWritten,
		"skipped":  report.SkippedCards,
		"excluded": report.ExcludedCards,
	}).Info("products sync complete")

	return result, nil
}
