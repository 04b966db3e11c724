package convrate

import (
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerstats/wbsync/internal/wbapi"
	"github.com/sellerstats/wbsync/pkg/logger"
)

func i64(v int64) *int64     { return &v }
func in(v int) *int          { return &v }
func str(v string) *string   { return &v }
func f64(v float64) *float64 { return &v }
func decP(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func moscow(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	return loc
}

func testBuilder(t *testing.T) *Builder {
	return NewBuilder(logger.NewWithWriter(io.Discard, "error"), moscow(t))
}

func card(nmID int64, vendorCode string) wbapi.NMReportCard {
	return wbapi.NMReportCard{
		NMID:       i64(nmID),
		VendorCode: str(vendorCode),
		Statistics: &wbapi.NMReportStatistics{
			SelectedPeriod: &wbapi.NMReportPeriod{
				OpenCardCount:  in(100),
				AddToCartCount: in(20),
				OrdersCount:    in(5),
				OrdersSumRub:   decP("2500.00"),
				CancelCount:    in(1),
				Conversions: &wbapi.NMReportConversions{
					AddToCartPercent:   f64(20.0),
					CartToOrderPercent: f64(25.0),
				},
			},
			PreviousPeriod: &wbapi.NMReportPeriod{
				OpenCardCount:  in(90),
				AddToCartCount: in(15),
				OrdersCount:    in(3),
				OrdersSumRub:   decP("1500.00"),
				Conversions: &wbapi.NMReportConversions{
					AddToCartPercent:   f64(16.7),
					CartToOrderPercent: f64(20.0),
				},
			},
		},
		Stocks: &wbapi.NMReportStocks{StocksMp: in(2), StocksWb: in(40)},
	}
}

func response(cards ...wbapi.NMReportCard) *wbapi.NMReportResponse {
	return &wbapi.NMReportResponse{Data: &wbapi.NMReportData{Cards: cards}}
}

func TestBuildSnapshots(t *testing.T) {
	// 2025-06-01 22:30 UTC is already 2025-06-02 in Moscow.
	now := time.Date(2025, 6, 1, 22, 30, 0, 0, time.UTC)

	today, yesterday, report := testBuilder(t).BuildSnapshots(response(card(555, "SKU-555")), now)
	require.Len(t, today, 1)
	require.Len(t, yesterday, 1)
	assert.Zero(t, report.SkippedCards)

	tr := today[0]
	assert.Equal(t, int64(555), tr.NMID)
	assert.Equal(t, "SKU-555", tr.VendorCode)
	assert.Equal(t, "2025-06-02", tr.DateOfPeriod.Format("2006-01-02"))
	assert.Equal(t, 100, tr.OpenCardCount)
	assert.Equal(t, 20, tr.AddToCartCount)
	assert.Equal(t, 5, tr.OrdersCount)
	assert.Equal(t, 1, tr.CancelCount)
	assert.True(t, tr.OrdersSumRub.Equal(decimal.RequireFromString("2500.00")))
	require.NotNil(t, tr.AddToCartPercent)
	assert.Equal(t, 20.0, *tr.AddToCartPercent)
	require.NotNil(t, tr.OrderPrice)
	assert.True(t, tr.OrderPrice.Equal(decimal.RequireFromString("500.00")))

	require.NotNil(t, tr.Stocks, "today carries the stock snapshot")
	assert.Equal(t, 2, tr.Stocks.Mp)
	assert.Equal(t, 40, tr.Stocks.Wb)

	yr := yesterday[0]
	assert.Equal(t, "2025-06-01", yr.DateOfPeriod.Format("2006-01-02"))
	assert.Equal(t, 90, yr.OpenCardCount)
	assert.Equal(t, 3, yr.OrdersCount)
	require.NotNil(t, yr.OrderPrice)
	assert.True(t, yr.OrderPrice.Equal(decimal.RequireFromString("500.00")))

	assert.Nil(t, yr.Stocks, "yesterday must never carry stocks")
}

func TestBuildSnapshotsBusinessDayBoundary(t *testing.T) {
	// 21:00 UTC on June 1 is 00:00 June 2 in Moscow; one second earlier it
	// is still June 1.
	b := testBuilder(t)

	before := time.Date(2025, 6, 1, 20, 59, 59, 0, time.UTC)
	today, _, _ := b.BuildSnapshots(response(card(555, "SKU-555")), before)
	assert.Equal(t, "2025-06-01", today[0].DateOfPeriod.Format("2006-01-02"))

	after := time.Date(2025, 6, 1, 21, 0, 0, 0, time.UTC)
	today, yesterday, _ := b.BuildSnapshots(response(card(555, "SKU-555")), after)
	assert.Equal(t, "2025-06-02", today[0].DateOfPeriod.Format("2006-01-02"))
	assert.Equal(t, "2025-06-01", yesterday[0].DateOfPeriod.Format("2006-01-02"))
}

func TestBuildSnapshotsOrderPriceUndefinedWithoutOrders(t *testing.T) {
	c := card(555, "SKU-555")
	c.Statistics.SelectedPeriod.OrdersCount = in(0)
	c.Statistics.SelectedPeriod.OrdersSumRub = decP("0.00")

	today, _, _ := testBuilder(t).BuildSnapshots(response(c), time.Now())
	require.Len(t, today, 1)
	assert.Nil(t, today[0].OrderPrice)
}

func TestBuildSnapshotsSkipsIncompleteCards(t *testing.T) {
	noID := card(0, "SKU-X")
	noID.NMID = nil

	noCode := card(556, "")
	noCode.VendorCode = nil

	noStats := card(557, "SKU-557")
	noStats.Statistics = nil

	noPeriods := card(558, "SKU-558")
	noPeriods.Statistics.SelectedPeriod = nil
	noPeriods.Statistics.PreviousPeriod = nil

	today, yesterday, report := testBuilder(t).BuildSnapshots(
		response(noID, noCode, noStats, noPeriods, card(555, "SKU-555")), time.Now())

	require.Len(t, today, 1)
	require.Len(t, yesterday, 1)
	assert.Equal(t, int64(555), today[0].NMID)
	assert.Equal(t, 4, report.SkippedCards)
}

func TestBuildSnapshotsPeriodsAreIndependent(t *testing.T) {
	// A card fresh to the catalog has no previous period yet; one retired
	// mid-day has no selected period. Each still yields its one record.
	onlyToday := card(558, "SKU-558")
	onlyToday.Statistics.PreviousPeriod = nil

	onlyYesterday := card(559, "SKU-559")
	onlyYesterday.Statistics.SelectedPeriod = nil

	today, yesterday, report := testBuilder(t).BuildSnapshots(
		response(onlyToday, onlyYesterday), time.Now())

	require.Len(t, today, 1)
	assert.Equal(t, int64(558), today[0].NMID)
	require.NotNil(t, today[0].Stocks)

	require.Len(t, yesterday, 1)
	assert.Equal(t, int64(559), yesterday[0].NMID)
	assert.Nil(t, yesterday[0].Stocks)

	assert.Zero(t, report.SkippedCards)
}

func TestBuildSnapshotsMissingStocksBlock(t *testing.T) {
	c := card(555, "SKU-555")
	c.Stocks = nil

	today, _, report := testBuilder(t).BuildSnapshots(response(c), time.Now())
	require.Len(t, today, 1)
	assert.Nil(t, today[0].Stocks)
	assert.Zero(t, report.SkippedCards, "missing stocks drops the snapshot, not the card")
}

func TestBuildSnapshotsEmptyResponse(t *testing.T) {
	today, yesterday, _ := testBuilder(t).BuildSnapshots(response(), time.Now())
	assert.Empty(t, today)
	assert.Empty(t, yesterday)

	today, yesterday, _ = testBuilder(t).BuildSnapshots(&wbapi.NMReportResponse{}, time.Now())
	assert.Empty(t, today)
	assert.Empty(t, yesterday)
}
