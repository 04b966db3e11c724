package convrate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerstats/wbsync/internal/advstats"
	"github.com/sellerstats/wbsync/internal/wbapi"
	"github.com/sellerstats/wbsync/pkg/logger"
)

// SnapshotRecord is one article's conversion funnel for one business day.
type SnapshotRecord struct {
	NMID         int64
	VendorCode   string
	DateOfPeriod time.Time // date component only, midnight UTC

	OpenCardCount  int
	AddToCartCount int
	OrdersCount    int
	CancelCount    int
	OrdersSumRub   decimal.Decimal

	// Funnel percentages carried verbatim from the API.
	AddToCartPercent   *float64
	CartToOrderPercent *float64

	// OrderPrice is derived; nil when no orders.
	OrderPrice *decimal.Decimal

	// Stocks is set only on today's record. Yesterday's funnel is final but
	// its stored stock columns must stay whatever today's snapshot wrote
	// when that day was current.
	Stocks *StockSnapshot
}

// StockSnapshot is the article's stock level at snapshot time.
type StockSnapshot struct {
	Mp int
	Wb int
}

// Builder turns nm-report responses into daily snapshot records.
type Builder struct {
	logger *logger.Logger
	loc    *time.Location
}

// NewBuilder creates a builder with the business-day timezone.
func NewBuilder(log *logger.Logger, loc *time.Location) *Builder {
	return &Builder{logger: log, loc: loc}
}

// BuildReport counts cards the builder dropped.
type BuildReport struct {
	SkippedCards int // missing nmID, vendorCode or statistics
}

// BuildSnapshots maps each card's selectedPeriod onto today's business date
// and its previousPeriod onto yesterday's. Today's record carries the card's
// current stocks; yesterday's record has none, because stocks describe the
// present moment and must not overwrite the level recorded when yesterday
// was the current day.
func (b *Builder) BuildSnapshots(resp *wbapi.NMReportResponse, now time.Time) (today, yesterday []SnapshotRecord, report BuildReport) {
	local := now.In(b.loc)
	todayDate := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	yesterdayDate := todayDate.AddDate(0, 0, -1)

	if resp.Data == nil {
		return nil, nil, report
	}

	for _, card := range resp.Data.Cards {
		if card.NMID == nil || card.VendorCode == nil || card.Statistics == nil {
			report.SkippedCards++
			b.logger.Warn("card missing identity or statistics, skipping")
			continue
		}
		stats := card.Statistics
		if stats.SelectedPeriod == nil && stats.PreviousPeriod == nil {
			report.SkippedCards++
			b.logger.WithField("nm_id", *card.NMID).Warn("card missing both periods, skipping")
			continue
		}

		// The periods are independent: a card with only one of them still
		// yields that day's record.
		if stats.SelectedPeriod != nil {
			todayRec := buildRecord(*card.NMID, *card.VendorCode, todayDate, stats.SelectedPeriod)
			if card.Stocks != nil {
				todayRec.Stocks = &StockSnapshot{
					Mp: intOrZero(card.Stocks.StocksMp),
					Wb: intOrZero(card.Stocks.StocksWb),
				}
			}
			today = append(today, todayRec)
		}

		if stats.PreviousPeriod != nil {
			yesterday = append(yesterday,
				buildRecord(*card.NMID, *card.VendorCode, yesterdayDate, stats.PreviousPeriod))
		}
	}

	return today, yesterday, report
}

func buildRecord(nmID int64, vendorCode string, date time.Time, period *wbapi.NMReportPeriod) SnapshotRecord {
	rec := SnapshotRecord{
		NMID:           nmID,
		VendorCode:     vendorCode,
		DateOfPeriod:   date,
		OpenCardCount:  intOrZero(period.OpenCardCount),
		AddToCartCount: intOrZero(period.AddToCartCount),
		OrdersCount:    intOrZero(period.OrdersCount),
		CancelCount:    intOrZero(period.CancelCount),
		OrdersSumRub:   decOrZero(period.OrdersSumRub),
	}

	if period.Conversions != nil {
		rec.AddToCartPercent = period.Conversions.AddToCartPercent
		rec.CartToOrderPercent = period.Conversions.CartToOrderPercent
	}

	rec.OrderPrice = advstats.AverageOrderPrice(rec.OrdersSumRub, rec.OrdersCount)
	return rec
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func decOrZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}
