package wbapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerstats/wbsync/pkg/httputil"
	"github.com/sellerstats/wbsync/pkg/logger"
)

func testClient(baseURL string) *Client {
	log := logger.NewWithWriter(io.Discard, "error")
	return &Client{
		fullstatsHTTP: httputil.New(log).DisableRetry(),
		promotionHTTP: httputil.New(log).DisableRetry(),
		reportHTTP:    httputil.New(log).DisableRetry(),
		contentHTTP:   httputil.New(log).DisableRetry(),

		logger:           log,
		token:            "test-token",
		advertBaseURL:    baseURL,
		analyticsBaseURL: baseURL,
		contentBaseURL:   baseURL,
	}
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestFetchFullstats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/adv/v3/fullstats", r.URL.Path)
		assert.Equal(t, "101,102", r.URL.Query().Get("ids"))
		assert.Equal(t, "2025-06-01", r.URL.Query().Get("beginDate"))
		assert.Equal(t, "2025-06-07", r.URL.Query().Get("endDate"))

		w.Write([]byte(`[
			{"advertId": 101, "days": [
				{"date": "2025-06-01T03:00:00+03:00", "orders": 5, "sum_price": "250.00", "apps": [
					{"appType": 1, "nms": [
						{"nmId": 555, "name": "Widget", "views": 10, "clicks": 2, "sum": "20.00", "cpc": 10.0}
					]}
				]}
			]}
		]`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	campaigns, err := client.FetchFullstats(context.Background(), []int64{101, 102}, day("2025-06-01"), day("2025-06-07"))
	require.NoError(t, err)
	require.Len(t, campaigns, 1)

	require.NotNil(t, campaigns[0].AdvertID)
	assert.Equal(t, int64(101), *campaigns[0].AdvertID)
	require.Len(t, campaigns[0].Days, 1)

	d := campaigns[0].Days[0]
	require.NotNil(t, d.SumPrice)
	assert.True(t, d.SumPrice.Equal(decimal.RequireFromString("250.00")))
	require.Len(t, d.Apps, 1)
	require.Len(t, d.Apps[0].NMs, 1)
	assert.Equal(t, int64(555), *d.Apps[0].NMs[0].NMID)
}

func TestFetchFullstatsNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	campaigns, err := testClient(srv.URL).FetchFullstats(context.Background(), []int64{1}, day("2025-06-01"), day("2025-06-01"))
	require.NoError(t, err)
	assert.Nil(t, campaigns)
}

func TestFetchFullstatsRejectsBadInput(t *testing.T) {
	client := testClient("http://unused")
	ctx := context.Background()

	t.Run("no IDs", func(t *testing.T) {
		_, err := client.FetchFullstats(ctx, nil, day("2025-06-01"), day("2025-06-02"))
		assert.ErrorContains(t, err, "no campaign IDs")
	})

	t.Run("too many IDs", func(t *testing.T) {
		ids := make([]int64, MaxFullstatsIDs+1)
		_, err := client.FetchFullstats(ctx, ids, day("2025-06-01"), day("2025-06-02"))
		assert.ErrorContains(t, err, "exceeds limit")
	})

	t.Run("end before begin", func(t *testing.T) {
		_, err := client.FetchFullstats(ctx, []int64{1}, day("2025-06-02"), day("2025-06-01"))
		assert.ErrorContains(t, err, "before begin date")
	})

	t.Run("period too long", func(t *testing.T) {
		_, err := client.FetchFullstats(ctx, []int64{1}, day("2025-06-01"), day("2025-07-02"))
		assert.ErrorContains(t, err, "exceeds limit")
	})

	t.Run("period at limit is accepted", func(t *testing.T) {
		// 31 days inclusive; the request fails only on the network.
		_, err := client.FetchFullstats(ctx, []int64{1}, day("2025-06-01"), day("2025-07-01"))
		assert.NotContains(t, err.Error(), "exceeds limit")
	})
}

func TestFetchFullstatsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchFullstats(context.Background(), []int64{1}, day("2025-06-01"), day("2025-06-01"))
	require.Error(t, err)
	assert.True(t, IsStructural(err))
}

func TestFetchFullstatsBatch(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		id := r.URL.Query().Get("ids")
		w.Write([]byte(`[{"advertId": ` + id[:1] + `, "days": []}]`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)

	campaigns, err := client.FetchFullstatsBatch(context.Background(),
		[]int64{1, 2, 3, 4, 5}, day("2025-06-01"), day("2025-06-01"), 2, 0)
	require.NoError(t, err)

	// 5 IDs with batch size 2 -> 3 requests, one campaign each.
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Len(t, campaigns, 3)
}

func TestFetchFullstatsBatchCancelBetweenChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := testClient(srv.URL)

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := client.FetchFullstatsBatch(ctx, []int64{1, 2}, day("2025-06-01"), day("2025-06-01"), 1, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
