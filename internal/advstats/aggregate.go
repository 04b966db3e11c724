package advstats

import (
	"github.com/shopspring/decimal"

	"github.com/sellerstats/wbsync/internal/wbapi"
)

// articleTotals accumulates one article's counters across all platform blocks
// of a single (campaign, day).
type articleTotals struct {
	name   string
	views  int
	clicks int
	spend  decimal.Decimal

	// Per-platform CPC values as reported upstream. Informational only:
	// the record-level CPC is always recomputed from the summed totals.
	platformCPCs []float64
}

// aggregateByArticle collapses the platform blocks of one day into summed
// per-article totals. Articles with a missing or zero ID are skipped; every
// sum is commutative so platform order never matters.
func aggregateByArticle(apps []wbapi.FullstatsPlatform) map[int64]*articleTotals {
	totals := make(map[int64]*articleTotals)

	for _, app := range apps {
		for _, nm := range app.NMs {
			if nm.NMID == nil || *nm.NMID == 0 {
				continue
			}

			agg, ok := totals[*nm.NMID]
			if !ok {
				agg = &articleTotals{spend: decimal.Zero}
				totals[*nm.NMID] = agg
			}

			if nm.Name != nil && agg.name == "" {
				agg.name = *nm.Name
			}
			if nm.Views != nil {
				agg.views += *nm.Views
			}
			if nm.Clicks != nil {
				agg.clicks += *nm.Clicks
			}
			if nm.Sum != nil {
				agg.spend = agg.spend.Add(*nm.Sum)
			}
			if nm.CPC != nil && *nm.CPC > 0 {
				agg.platformCPCs = append(agg.platformCPCs, *nm.CPC)
			}
		}
	}

	return totals
}
