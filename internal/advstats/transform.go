package advstats

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerstats/wbsync/internal/wbapi"
	"github.com/sellerstats/wbsync/pkg/logger"
)

// Transformer reshapes raw fullstats responses into flat per-article daily
// records.
type Transformer struct {
	logger *logger.Logger
}

// NewTransformer creates a transformer.
func NewTransformer(log *logger.Logger) *Transformer {
	return &Transformer{logger: log}
}

// TransformReport counts what the transformation dropped and why.
type TransformReport struct {
	SkippedCampaigns int // campaign entry without advertId
	SkippedDays      int // day entry without date
	LookupMisses     int // article with no vendor-code entry
	ThresholdDrops   int // article below the views threshold
}

// Transform flattens campaign -> day -> platform -> article into one record
// per (campaign, article, day).
//
// Campaigns without an ID and days without a date are skipped. Articles whose
// summed views fall below minViews are dropped silently; articles missing
// from vendorCodes are dropped with a warning. Day-level orders and order-sum
// are carried verbatim onto every record of that day.
func (t *Transformer) Transform(campaigns []wbapi.FullstatsCampaign, vendorCodes map[int64]string, minViews int) ([]CampaignDailyStat, TransformReport) {
	var records []CampaignDailyStat
	var report TransformReport

	for _, campaign := range campaigns {
		if campaign.AdvertID == nil {
			report.SkippedCampaigns++
			continue
		}
		advertID := *campaign.AdvertID

		for _, dayEntry := range campaign.Days {
			if dayEntry.Date == nil {
				report.SkippedDays++
				continue
			}
			date, err := parseDayDate(*dayEntry.Date)
			if err != nil {
				report.SkippedDays++
				t.logger.WithFields(map[string]interface{}{
					"advert_id": advertID,
					"date":      *dayEntry.Date,
				}).Warn("unparseable day date, skipping day")
				continue
			}

			orders := 0
			if dayEntry.Orders != nil {
				orders = *dayEntry.Orders
			}
			ordersSum := decimal.Zero
			if dayEntry.SumPrice != nil {
				ordersSum = *dayEntry.SumPrice
			}

			totals := aggregateByArticle(dayEntry.Apps)

			nmIDs := make([]int64, 0, len(totals))
			for nmID := range totals {
				nmIDs = append(nmIDs, nmID)
			}
			sort.Slice(nmIDs, func(i, j int) bool { return nmIDs[i] < nmIDs[j] })

			for _, nmID := range nmIDs {
				agg := totals[nmID]

				if agg.views < minViews {
					report.ThresholdDrops++
					continue
				}

				vendorCode, ok := vendorCodes[nmID]
				if !ok {
					report.LookupMisses++
					t.logger.WithFields(map[string]interface{}{
						"advert_id": advertID,
						"nm_id":     nmID,
						"name":      agg.name,
					}).Warn("article has no vendor code, dropping record")
					continue
				}

				records = append(records, CampaignDailyStat{
					AdvertID:   advertID,
					NMID:       nmID,
					VendorCode: vendorCode,
					Date:       date,
					Views:      agg.views,
					Clicks:     agg.clicks,
					Sum:        agg.spend,
					CPC:        CostPerClick(agg.spend, agg.clicks),
					CTR:        ClickThroughRate(agg.clicks, agg.views),
					CPM:        CostPerMille(agg.spend, agg.views),
					Orders:     orders,
					OrdersSum:  ordersSum,
				})
			}
		}
	}

	return records, report
}

// parseDayDate accepts both a plain date and an RFC3339 timestamp; the
// time-of-day of a timestamp is discarded.
func parseDayDate(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", s)
}

// Summary describes one transformed batch for operator output.
type Summary struct {
	TotalRecords    int
	UniqueCampaigns int
	UniqueArticles  int
	DateFrom        time.Time
	DateTo          time.Time
	TotalViews      int
	TotalOrders     int
}

// Summarize computes batch-level totals over transformed records.
func Summarize(records []CampaignDailyStat) Summary {
	s := Summary{TotalRecords: len(records)}
	if len(records) == 0 {
		return s
	}

	campaigns := make(map[int64]struct{})
	articles := make(map[int64]struct{})
	s.DateFrom = records[0].Date
	s.DateTo = records[0].Date

	for _, r := range records {
		campaigns[r.AdvertID] = struct{}{}
		articles[r.NMID] = struct{}{}
		if r.Date.Before(s.DateFrom) {
			s.DateFrom = r.Date
		}
		if r.Date.After(s.DateTo) {
			s.DateTo = r.Date
		}
		s.TotalViews += r.Views
		s.TotalOrders += r.Orders
	}

	s.UniqueCampaigns = len(campaigns)
	s.UniqueArticles = len(articles)
	return s
}
