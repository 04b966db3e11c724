package advstats

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CampaignDailyStat is one article's advertising performance inside one
// campaign on one calendar day. Records are value types: once emitted by the
// transformer they are never mutated.
type CampaignDailyStat struct {
	AdvertID   int64
	NMID       int64
	VendorCode string
	Date       time.Time // date component only, midnight UTC

	Views  int
	Clicks int
	Sum    decimal.Decimal // ad spend for this article on this day

	// Derived metrics. A nil pointer means the denominator was zero,
	// which is distinct from a computed zero.
	CPC *decimal.Decimal
	CTR *decimal.Decimal
	CPM *decimal.Decimal

	// Day-level order figures taken verbatim from the API. They include
	// cross-platform attribution and are never derived from article sums.
	Orders    int
	OrdersSum decimal.Decimal
}

// Key returns the upsert identity of the record.
func (s CampaignDailyStat) Key() string {
	return fmt.Sprintf("%d:%d:%s", s.AdvertID, s.NMID, s.Date.Format("2006-01-02"))
}
