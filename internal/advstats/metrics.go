package advstats

import (
	"github.com/shopspring/decimal"
)

// Derived-metric calculators. Every function returns nil when its denominator
// is zero: the metric is undefined there, not zero. Results are rounded to
// 2 decimal places, half away from zero.

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// CostPerClick returns spend/clicks.
func CostPerClick(spend decimal.Decimal, clicks int) *decimal.Decimal {
	if clicks == 0 {
		return nil
	}
	v := spend.Div(decimal.NewFromInt(int64(clicks))).Round(2)
	return &v
}

// ClickThroughRate returns clicks/views*100.
func ClickThroughRate(clicks, views int) *decimal.Decimal {
	if views == 0 {
		return nil
	}
	v := decimal.NewFromInt(int64(clicks)).
		Div(decimal.NewFromInt(int64(views))).
		Mul(hundred).
		Round(2)
	return &v
}

// CostPerMille returns spend/views*1000.
func CostPerMille(spend decimal.Decimal, views int) *decimal.Decimal {
	if views == 0 {
		return nil
	}
	v := spend.Div(decimal.NewFromInt(int64(views))).Mul(thousand).Round(2)
	return &v
}

// AverageOrderPrice returns orderSum/orders.
func AverageOrderPrice(orderSum decimal.Decimal, orders int) *decimal.Decimal {
	if orders == 0 {
		return nil
	}
	v := orderSum.Div(decimal.NewFromInt(int64(orders))).Round(2)
	return &v
}
