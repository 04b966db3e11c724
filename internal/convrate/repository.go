package convrate

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists conversion-rate snapshots.
//
// Stock columns are written only by the today statement. The yesterday
// statement never names them, so re-running a sync after midnight cannot
// erase the stock level recorded while that day was still current.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertToday writes today's records including the stock snapshot.
func (r *Repository) UpsertToday(ctx context.Context, records []SnapshotRecord) (int, error) {
	query := `
		INSERT INTO cr_daily_stats (
			nm_id, vendor_code, date_of_period,
			open_card_count, add_to_cart_count, orders_count, cancel_count,
			orders_sum_rub, add_to_cart_percent, cart_to_order_percent,
			order_price, stocks_mp, stocks_wb, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())
		ON CONFLICT (nm_id, date_of_period) DO UPDATE SET
			vendor_code           = EXCLUDED.vendor_code,
			open_card_count       = EXCLUDED.open_card_count,
			add_to_cart_count     = EXCLUDED.add_to_cart_count,
			orders_count          = EXCLUDED.orders_count,
			cancel_count          = EXCLUDED.cancel_count,
			orders_sum_rub        = EXCLUDED.orders_sum_rub,
			add_to_cart_percent   = EXCLUDED.add_to_cart_percent,
			cart_to_order_percent = EXCLUDED.cart_to_order_percent,
			order_price           = EXCLUDED.order_price,
			stocks_mp             = EXCLUDED.stocks_mp,
			stocks_wb             = EXCLUDED.stocks_wb,
			updated_at            = now()
	`

	written := 0
	for _, rec := range records {
		var mp, wb *int
		if rec.Stocks != nil {
			mp, wb = &rec.Stocks.Mp, &rec.Stocks.Wb
		}

		_, err := r.pool.Exec(ctx, query,
			rec.NMID, rec.VendorCode, rec.DateOfPeriod,
			rec.OpenCardCount, rec.AddToCartCount, rec.OrdersCount, rec.CancelCount,
			rec.OrdersSumRub, rec.AddToCartPercent, rec.CartToOrderPercent,
			rec.OrderPrice, mp, wb,
		)
		if err != nil {
			return written, fmt.Errorf("upsert today snapshot nm_id=%d: %w", rec.NMID, err)
		}
		written++
	}
	return written, nil
}

// UpsertYesterday writes yesterday's records. Stock columns are absent from
// the statement on purpose; see the type comment.
func (r *Repository) UpsertYesterday(ctx context.Context, records []SnapshotRecord) (int, error) {
	query := `
		INSERT INTO cr_daily_stats (
			nm_id, vendor_code, date_of_period,
			open_card_count, add_to_cart_count, orders_count, cancel_count,
			orders_sum_rub, add_to_cart_percent, cart_to_order_percent,
			order_price, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (nm_id, date_of_period) DO UPDATE SET
			vendor_code           = EXCLUDED.vendor_code,
			open_card_count       = EXCLUDED.open_card_count,
			add_to_cart_count     = EXCLUDED.add_to_cart_count,
			orders_count          = EXCLUDED.orders_count,
			cancel_count          = EXCLUDED.cancel_count,
			orders_sum_rub        = EXCLUDED.orders_sum_rub,
			add_to_cart_percent   = EXCLUDED.add_to_cart_percent,
			cart_to_order_percent = EXCLUDED.cart_to_order_percent,
			order_price           = EXCLUDED.order_price,
			updated_at            = now()
	`

	written := 0
	for _, rec := range records {
		_, err := r.pool.Exec(ctx, query,
			rec.NMID, rec.VendorCode, rec.DateOfPeriod,
			rec.OpenCardCount, rec.AddToCartCount, rec.OrdersCount, rec.CancelCount,
			rec.OrdersSumRub, rec.AddToCartPercent, rec.CartToOrderPercent,
			rec.OrderPrice,
		)
		if err != nil {
			return written, fmt.Errorf("upsert yesterday snapshot nm_id=%d: %w", rec.NMID, err)
		}
		written++
	}
	return written, nil
}

// CountByDate returns the number of stored snapshots for one business day,
// used for post-write verification.
func (r *Repository) CountByDate(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM cr_daily_stats WHERE date_of_period = $1`, date,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return count, nil
}
