package wbapi

import (
	"github.com/shopspring/decimal"
)

// Raw response types for the Wildberries seller API. Every field the
// upstream may omit is a pointer: a nested access is a presence check,
// never an assumed key.

// FullstatsCampaign is one campaign entry of the /adv/v3/fullstats response.
type FullstatsCampaign struct {
	AdvertID *int64         `json:"advertId"`
	Days     []FullstatsDay `json:"days"`
}

// FullstatsDay is one calendar day inside a campaign.
//
// Orders and SumPrice are day-level figures that already include
// cross-platform attribution resolved upstream; they must never be
// re-derived from the per-platform article sums.
type FullstatsDay struct {
	Date     *string             `json:"date"`
	Orders   *int                `json:"orders"`
	SumPrice *decimal.Decimal    `json:"sum_price"`
	Apps     []FullstatsPlatform `json:"apps"`
}

// FullstatsPlatform is one ad platform block (site, app, search, ...).
type FullstatsPlatform struct {
	AppType *int               `json:"appType"`
	NMs     []FullstatsArticle `json:"nms"`
}

// FullstatsArticle holds per-article metrics on one platform for one day.
type FullstatsArticle struct {
	NMID   *int64           `json:"nmId"`
	Name   *string          `json:"name"`
	Views  *int             `json:"views"`
	Clicks *int             `json:"clicks"`
	Sum    *decimal.Decimal `json:"sum"`
	CPC    *float64         `json:"cpc"`
}

// PromotionCountResponse is the /adv/v1/promotion/count response.
type PromotionCountResponse struct {
	All     *int          `json:"all"`
	Adverts []AdvertGroup `json:"adverts"`
}

// AdvertGroup groups campaigns sharing one (type, status) pair.
type AdvertGroup struct {
	Type       *int        `json:"type"`
	Status     *int        `json:"status"`
	Count      *int        `json:"count"`
	AdvertList []AdvertRef `json:"advert_list"`
}

// AdvertRef is a single campaign reference inside an AdvertGroup.
type AdvertRef struct {
	AdvertID   *int64  `json:"advertId"`
	ChangeTime *string `json:"changeTime"`
}

// Campaign status codes used by the advert API.
const (
	CampaignStatusDone   = 7  // finished
	CampaignStatusActive = 9  // running
	CampaignStatusPaused = 11 // paused
)

// NMReportResponse is the /api/v2/nm-report/detail response.
type NMReportResponse struct {
	Data             *NMReportData `json:"data"`
	Error            bool          `json:"error"`
	ErrorText        string        `json:"errorText"`
	AdditionalErrors []string      `json:"additionalErrors"`
}

// NMReportData carries the card list and pagination flags.
type NMReportData struct {
	Page       *int           `json:"page"`
	IsNextPage *bool          `json:"isNextPage"`
	Cards      []NMReportCard `json:"cards"`
}

// NMReportCard is one product card with its period statistics and stocks.
type NMReportCard struct {
	NMID       *int64              `json:"nmID"`
	VendorCode *string             `json:"vendorCode"`
	Statistics *NMReportStatistics `json:"statistics"`
	Stocks     *NMReportStocks     `json:"stocks"`
}

// NMReportStatistics holds the two comparison periods of one card.
type NMReportStatistics struct {
	SelectedPeriod *NMReportPeriod `json:"selectedPeriod"`
	PreviousPeriod *NMReportPeriod `json:"previousPeriod"`
}

// NMReportPeriod is one period's counters and conversion percentages.
type NMReportPeriod struct {
	Begin          *string               `json:"begin"`
	End            *string               `json:"end"`
	OpenCardCount  *int                  `json:"openCardCount"`
	AddToCartCount *int                  `json:"addToCartCount"`
	OrdersCount    *int                  `json:"ordersCount"`
	OrdersSumRub   *decimal.Decimal      `json:"ordersSumRub"`
	BuyoutsCount   *int                  `json:"buyoutsCount"`
	BuyoutsSumRub  *decimal.Decimal      `json:"buyoutsSumRub"`
	CancelCount    *int                  `json:"cancelCount"`
	CancelSumRub   *decimal.Decimal      `json:"cancelSumRub"`
	Conversions    *NMReportConversions  `json:"conversions"`
}

// NMReportConversions holds conversion percentages for one period.
type NMReportConversions struct {
	AddToCartPercent   *float64 `json:"addToCartPercent"`
	CartToOrderPercent *float64 `json:"cartToOrderPercent"`
	BuyoutsPercent     *float64 `json:"buyoutsPercent"`
}

// NMReportStocks is the current stock snapshot of one card.
type NMReportStocks struct {
	StocksMp *int `json:"stocksMp"`
	StocksWb *int `json:"stocksWb"`
}

// Validate checks the structural requirements of the nm-report response:
// data and cards must be present, and the first card (used as a template,
// matching the upstream contract for the whole list) must carry an article
// ID, both statistics periods with conversions, and a stocks block.
func (r *NMReportResponse) Validate() error {
	const ep = "nm-report/detail"

	if r.Error {
		return structuralErrorf(ep, "API error flag set: %s", r.ErrorText)
	}
	if r.Data == nil {
		return structuralErrorf(ep, "missing 'data'")
	}
	if r.Data.Cards == nil {
		return structuralErrorf(ep, "missing 'data.cards'")
	}
	if len(r.Data.Cards) == 0 {
		// An empty card list is valid: nothing sold today.
		return nil
	}

	card := r.Data.Cards[0]
	if card.NMID == nil {
		return structuralErrorf(ep, "card[0]: missing 'nmID'")
	}
	if card.VendorCode == nil {
		return structuralErrorf(ep, "card[0] (nmID=%d): missing 'vendorCode'", *card.NMID)
	}
	if card.Statistics == nil {
		return structuralErrorf(ep, "card[0] (nmID=%d): missing 'statistics'", *card.NMID)
	}
	if card.Statistics.SelectedPeriod == nil {
		return structuralErrorf(ep, "card[0] (nmID=%d): missing 'statistics.selectedPeriod'", *card.NMID)
	}
	if card.Statistics.PreviousPeriod == nil {
		return structuralErrorf(ep, "card[0] (nmID=%d): missing 'statistics.previousPeriod'", *card.NMID)
	}
	if card.Statistics.SelectedPeriod.Conversions == nil {
		return structuralErrorf(ep, "card[0] (nmID=%d): missing 'selectedPeriod.conversions'", *card.NMID)
	}
	if card.Statistics.PreviousPeriod.Conversions == nil {
		return structuralErrorf(ep, "card[0] (nmID=%d): missing 'previousPeriod.conversions'", *card.NMID)
	}
	if card.Stocks == nil {
		return structuralErrorf(ep, "card[0] (nmID=%d): missing 'stocks'", *card.NMID)
	}

	return nil
}
