package products

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerstats/wbsync/internal/wbapi"
	"github.com/sellerstats/wbsync/pkg/config"
	"github.com/sellerstats/wbsync/pkg/logger"
)

type fakeFetcher struct {
	cards []wbapi.ContentCard
	err   error
}

func (f *fakeFetcher) FetchAllContentCards(ctx context.Context) ([]wbapi.ContentCard, error) {
	return f.cards, f.err
}

type fakeStore struct {
	products   []Product
	sizes      []ProductSize
	productErr error
	sizeErr    error
}

func (s *fakeStore) UpsertProducts(ctx context.Context, records []Product) (int, error) {
	if s.productErr != nil {
		return 0, s.productErr
	}
	s.products = append(s.products, records...)
	return len(records), nil
}

func (s *fakeStore) UpsertSizes(ctx context.Context, records []ProductSize) (int, error) {
	if s.sizeErr != nil {
		return 0, s.sizeErr
	}
	s.sizes = append(s.sizes, records...)
	return len(records), nil
}

func (s *fakeStore) CountProducts(ctx context.Context) (int, error) {
	return len(s.products), nil
}

func newTestPipeline(fetcher Fetcher, store Store, cfg *config.Config) *Pipeline {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return NewPipeline(fetcher, store, nil, logger.NewWithWriter(io.Discard, "error"), cfg)
}

func TestPipelineRun(t *testing.T) {
	fetcher := &fakeFetcher{cards: []wbapi.ContentCard{
		card(555, "SKU-1", size("M", "b1", "b2")),
		card(556, "SKU-2", size("L", "b3")),
	}}
	store := &fakeStore{}

	result, err := newTestPipeline(fetcher, store, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Cards)
	assert.Equal(t, 2, result.ProductsWritten)
	assert.Equal(t, 3, result.SizesWritten)
	assert.Equal(t, 2, result.StoredProducts)
	require.Len(t, store.products, 2)
	assert.Equal(t, "SKU-1", store.products[0].VendorCode)
}

func TestPipelineNoCards(t *testing.T) {
	store := &fakeStore{}

	result, err := newTestPipeline(&fakeFetcher{}, store, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Cards)
	assert.Empty(t, store.products, "nothing written for an empty catalog")
}

func TestPipelineAppliesExclusions(t *testing.T) {
	fetcher := &fakeFetcher{cards: []wbapi.ContentCard{
		card(555, "SKU-1", size("M", "b1")),
		card(556, "SKU-2", size("M", "b2")),
	}}
	store := &fakeStore{}

	cfg := &config.Config{}
	cfg.Sync.ExcludedNMIDs = []int64{556}

	result, err := newTestPipeline(fetcher, store, cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.ProductsWritten)
	assert.Equal(t, 1, result.Report.ExcludedCards)
	require.Len(t, store.products, 1)
	assert.Equal(t, int64(555), store.products[0].NMID)
}

func TestPipelineAbortsOnFetchError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("quota exhausted")}
	store := &fakeStore{}

	_, err := newTestPipeline(fetcher, store, nil).Run(context.Background())
	assert.ErrorContains(t, err, "quota exhausted")
	assert.Empty(t, store.products)
}

func TestPipelineAbortsOnUpsertError(t *testing.T) {
	fetcher := &fakeFetcher{cards: []wbapi.ContentCard{card(555, "SKU-1", size("M", "b1"))}}
	store := &fakeStore{productErr: errors.New("connection lost")}

	result, err := newTestPipeline(fetcher, store, nil).Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "upsert products")
	assert.Equal(t, 1, result.Cards)
	assert.Empty(t, store.sizes, "sizes are not written when products fail")
}
