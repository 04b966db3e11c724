package convrate

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerstats/wbsync/internal/wbapi"
	"github.com/sellerstats/wbsync/pkg/logger"
)

type fakeFetcher struct {
	resp *wbapi.NMReportResponse
	err  error
}

func (f *fakeFetcher) FetchNMReport(ctx context.Context, loc *time.Location) (*wbapi.NMReportResponse, error) {
	return f.resp, f.err
}

type fakeStore struct {
	today     []SnapshotRecord
	yesterday []SnapshotRecord
	todayErr  error
}

func (s *fakeStore) UpsertToday(ctx context.Context, records []SnapshotRecord) (int, error) {
	if s.todayErr != nil {
		return 0, s.todayErr
	}
	s.today = append(s.today, records...)
	return len(records), nil
}

func (s *fakeStore) UpsertYesterday(ctx context.Context, records []SnapshotRecord) (int, error) {
	s.yesterday = append(s.yesterday, records...)
	return len(records), nil
}

func (s *fakeStore) CountByDate(ctx context.Context, date time.Time) (int, error) {
	return len(s.today), nil
}

func testPipeline(t *testing.T, fetcher Fetcher, store Store) *Pipeline {
	return NewPipeline(fetcher, store, logger.NewWithWriter(io.Discard, "error"), moscow(t))
}

func TestPipelineRun(t *testing.T) {
	store := &fakeStore{}
	p := testPipeline(t, &fakeFetcher{resp: response(card(555, "SKU-555"), card(556, "SKU-556"))}, store)

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Cards)
	assert.Equal(t, 2, result.TodayWritten)
	assert.Equal(t, 2, result.YesterdayWritten)
	assert.Equal(t, 2, result.StoredToday)

	require.Len(t, store.today, 2)
	require.Len(t, store.yesterday, 2)
	assert.NotNil(t, store.today[0].Stocks)
	assert.Nil(t, store.yesterday[0].Stocks)
	assert.True(t, store.yesterday[0].DateOfPeriod.Before(store.today[0].DateOfPeriod))
}

func TestPipelineNoCards(t *testing.T) {
	store := &fakeStore{}
	p := testPipeline(t, &fakeFetcher{resp: response()}, store)

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Cards)
	assert.Empty(t, store.today)
}

func TestPipelineNilData(t *testing.T) {
	// A structurally empty body decodes to a response without a data block.
	store := &fakeStore{}
	p := testPipeline(t, &fakeFetcher{resp: &wbapi.NMReportResponse{}}, store)

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Cards)
	assert.Empty(t, store.today)
}

func TestPipelineFetchError(t *testing.T) {
	p := testPipeline(t, &fakeFetcher{err: errors.New("status 401")}, &fakeStore{})

	_, err := p.Run(context.Background())
	assert.ErrorContains(t, err, "status 401")
}

func TestPipelineUpsertErrorStopsBeforeYesterday(t *testing.T) {
	store := &fakeStore{todayErr: errors.New("connection refused")}
	p := testPipeline(t, &fakeFetcher{resp: response(card(555, "SKU-555"))}, store)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "upsert today")
	assert.Empty(t, store.yesterday, "yesterday is not written after a today failure")
}
