package advstats

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sellerstats/wbsync/pkg/logger"
)

// ParamsAggregator rolls campaign daily stats up into per-article daily
// totals in adv_params. Both strategies are deterministic and produce the
// same rows for the same input.
type ParamsAggregator interface {
	Name() string
	Aggregate(ctx context.Context, from, to time.Time) (int, error)
}

// SQLAggregator aggregates inside the database with a single
// INSERT .. SELECT .. ON CONFLICT statement.
type SQLAggregator struct {
	pool *pgxpool.Pool
}

// NewSQLAggregator creates the in-database strategy.
func NewSQLAggregator(pool *pgxpool.Pool) *SQLAggregator {
	return &SQLAggregator{pool: pool}
}

func (a *SQLAggregator) Name() string { return "sql" }

// Aggregate sums daily stats by (nm_id, date) across campaigns and upserts
// the totals. Derived metrics are recomputed from the summed counters with
// NULL where the denominator is zero, matching the calculator semantics.
func (a *SQLAggregator) Aggregate(ctx context.Context, from, to time.Time) (int, error) {
	query := `
		INSERT INTO adv_params (
			nm_id, vendor_code, date,
			views, clicks, sum, cpc, ctr, cpm,
			orders, orders_sum, updated_at
		)
		SELECT
			nm_id,
			MAX(vendor_code),
			date,
			SUM(views),
			SUM(clicks),
			SUM(sum),
			CASE WHEN SUM(clicks) > 0
				THEN ROUND(SUM(sum) / SUM(clicks), 2) END,
			CASE WHEN SUM(views) > 0
				THEN ROUND(SUM(clicks)::numeric / SUM(views) * 100, 2) END,
			CASE WHEN SUM(views) > 0
				THEN ROUND(SUM(sum) / SUM(views) * 1000, 2) END,
			SUM(orders),
			SUM(orders_sum),
			now()
		FROM adv_campaign_daily_stats
		WHERE date BETWEEN $1 AND $2
		GROUP BY nm_id, date
		ON CONFLICT (nm_id, date) DO UPDATE SET
			vendor_code = EXCLUDED.vendor_code,
			views       = EXCLUDED.views,
			clicks      = EXCLUDED.clicks,
			sum         = EXCLUDED.sum,
			cpc         = EXCLUDED.cpc,
			ctr         = EXCLUDED.ctr,
			cpm         = EXCLUDED.cpm,
			orders      = EXCLUDED.orders,
			orders_sum  = EXCLUDED.orders_sum,
			updated_at  = now()
	`

	tag, err := a.pool.Exec(ctx, query, from, to)
	if err != nil {
		return 0, fmt.Errorf("sql aggregation: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// MemoryAggregator reads daily stats, rolls them up with decimal arithmetic
// in Go, and upserts the totals row by row.
type MemoryAggregator struct {
	pool *pgxpool.Pool
}

// NewMemoryAggregator creates the in-process strategy.
func NewMemoryAggregator(pool *pgxpool.Pool) *MemoryAggregator {
	return &MemoryAggregator{pool: pool}
}

func (a *MemoryAggregator) Name() string { return "memory" }

type paramsRow struct {
	nmID       int64
	vendorCode string
	date       time.Time
	views      int
	clicks     int
	spend      decimal.Decimal
	orders     int
	ordersSum  decimal.Decimal
}

func (a *MemoryAggregator) Aggregate(ctx context.Context, from, to time.Time) (int, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT nm_id, vendor_code, date, views, clicks, sum, orders, orders_sum
		FROM adv_campaign_daily_stats
		WHERE date BETWEEN $1 AND $2
	`, from, to)
	if err != nil {
		return 0, fmt.Errorf("read daily stats: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]*paramsRow)
	for rows.Next() {
		var r paramsRow
		if err := rows.Scan(&r.nmID, &r.vendorCode, &r.date,
			&r.views, &r.clicks, &r.spend, &r.orders, &r.ordersSum); err != nil {
			return 0, fmt.Errorf("scan daily stat: %w", err)
		}

		key := fmt.Sprintf("%d:%s", r.nmID, r.date.Format("2006-01-02"))
		agg, ok := totals[key]
		if !ok {
			totals[key] = &r
			continue
		}
		agg.views += r.views
		agg.clicks += r.clicks
		agg.spend = agg.spend.Add(r.spend)
		agg.orders += r.orders
		agg.ordersSum = agg.ordersSum.Add(r.ordersSum)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("read daily stats: %w", err)
	}

	upsert := `
		INSERT INTO adv_params (
			nm_id, vendor_code, date,
			views, clicks, sum, cpc, ctr, cpm,
			orders, orders_sum, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (nm_id, date) DO UPDATE SET
			vendor_code = EXCLUDED.vendor_code,
			views       = EXCLUDED.views,
			clicks      = EXCLUDED.clicks,
			sum         = EXCLUDED.sum,
			cpc         = EXCLUDED.cpc,
			ctr         = EXCLUDED.ctr,
			cpm         = EXCLUDED.cpm,
			orders      = EXCLUDED.orders,
			orders_sum  = EXCLUDED.orders_sum,
			updated_at  = now()
	`

	written := 0
	for _, agg := range totals {
		_, err := a.pool.Exec(ctx, upsert,
			agg.nmID, agg.vendorCode, agg.date,
			agg.views, agg.clicks, agg.spend,
			CostPerClick(agg.spend, agg.clicks),
			ClickThroughRate(agg.clicks, agg.views),
			CostPerMille(agg.spend, agg.views),
			agg.orders, agg.ordersSum,
		)
		if err != nil {
			return written, fmt.Errorf("upsert params %d/%s: %w", agg.nmID, agg.date.Format("2006-01-02"), err)
		}
		written++
	}
	return written, nil
}

// FallbackAggregator runs the primary strategy and falls back to the
// secondary when the primary fails. The fallback is logged loudly: both
// strategies must produce identical rows, so a divergence in availability is
// an operational signal, not a silent detail.
type FallbackAggregator struct {
	primary   ParamsAggregator
	secondary ParamsAggregator
	logger    *logger.Logger
}

// NewFallbackAggregator wraps two strategies in priority order.
func NewFallbackAggregator(primary, secondary ParamsAggregator, log *logger.Logger) *FallbackAggregator {
	return &FallbackAggregator{primary: primary, secondary: secondary, logger: log}
}

func (a *FallbackAggregator) Name() string {
	return fmt.Sprintf("%s+%s", a.primary.Name(), a.secondary.Name())
}

func (a *FallbackAggregator) Aggregate(ctx context.Context, from, to time.Time) (int, error) {
	n, err := a.primary.Aggregate(ctx, from, to)
	if err == nil {
		return n, nil
	}

	a.logger.WithError(err).WithFields(map[string]interface{}{
		"primary":   a.primary.Name(),
		"secondary": a.secondary.Name(),
	}).Warn("primary aggregation failed, falling back")

	n, ferr := a.secondary.Aggregate(ctx, from, to)
	if ferr != nil {
		return 0, fmt.Errorf("both aggregation strategies failed: %s: %v; %s: %w",
			a.primary.Name(), err, a.secondary.Name(), ferr)
	}
	return n, nil
}
