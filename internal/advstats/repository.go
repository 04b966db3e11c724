package advstats

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists campaign daily stats and serves the vendor-code lookup.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// VendorCodes loads the nm_id -> vendor_code lookup map from the products
// table.
func (r *Repository) VendorCodes(ctx context.Context) (map[int64]string, error) {
	query := `
		SELECT nm_id, vendor_code
		FROM products
		WHERE vendor_code IS NOT NULL AND vendor_code <> ''
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load vendor codes: %w", err)
	}
	defer rows.Close()

	codes := make(map[int64]string)
	for rows.Next() {
		var nmID int64
		var code string
		if err := rows.Scan(&nmID, &code); err != nil {
			return nil, fmt.Errorf("scan vendor code: %w", err)
		}
		codes[nmID] = code
	}
	return codes, rows.Err()
}

// UpsertDailyStats writes records into adv_campaign_daily_stats, updating
// business columns on conflict. created_at is set once by the database and
// survives re-runs over the same period.
func (r *Repository) UpsertDailyStats(ctx context.Context, records []CampaignDailyStat) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO adv_campaign_daily_stats (
			advert_id, nm_id, vendor_code, date,
			views, clicks, sum, cpc, ctr, cpm,
			orders, orders_sum, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (advert_id, nm_id, date) DO UPDATE SET
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
	for _, rec := range records {
		_, err := r.pool.Exec(ctx, query,
			rec.AdvertID, rec.NMID, rec.VendorCode, rec.Date,
			rec.Views, rec.Clicks, rec.Sum, rec.CPC, rec.CTR, rec.CPM,
			rec.Orders, rec.OrdersSum,
		)
		if err != nil {
			return written, fmt.Errorf("upsert daily stat %s: %w", rec.Key(), err)
		}
		written++
	}
	return written, nil
}

// CountByDateRange returns the number of stored records with a date in
// [from, to], used for post-write verification.
func (r *Repository) CountByDateRange(ctx context.Context, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM adv_campaign_daily_stats
		WHERE date BETWEEN $1 AND $2
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("count daily stats: %w", err)
	}
	return count, nil
}
