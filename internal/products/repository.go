package products

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the product catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertProducts writes products, updating business columns on conflict.
// created_at is set once by the database and survives re-runs.
func (r *Repository) UpsertProducts(ctx context.Context, records []Product) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO products (
			nm_id, imt_id, vendor_code, title, subject_name, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (nm_id) DO UPDATE SET
			imt_id       = EXCLUDED.imt_id,
			vendor_code  = EXCLUDED.vendor_code,
			title        = EXCLUDED.title,
			subject_name = EXCLUDED.subject_name,
			updated_at   = now()
	`

	written := 0
	for _, rec := range records {
		_, err := r.pool.Exec(ctx, query,
			rec.NMID, rec.ImtID, rec.VendorCode, rec.Title, rec.SubjectName,
		)
		if err != nil {
			return written, fmt.Errorf("upsert product %d: %w", rec.NMID, err)
		}
		written++
	}
	return written, nil
}

// UpsertSizes writes size rows keyed by barcode. A barcode that moved to a
// different article is reassigned on conflict.
func (r *Repository) UpsertSizes(ctx context.Context, records []ProductSize) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO product_sizes (
			barcode, nm_id, tech_size, updated_at
		)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (barcode) DO UPDATE SET
			nm_id      = EXCLUDED.nm_id,
			tech_size  = EXCLUDED.tech_size,
			updated_at = now()
	`

	written := 0
	for _, rec := range records {
		_, err := r.pool.Exec(ctx, query, rec.Barcode, rec.NMID, rec.TechSize)
		if err != nil {
			return written, fmt.Errorf("upsert size %s: %w", rec.Barcode, err)
		}
		written++
	}
	return written, nil
}

// CountProducts returns the number of stored products, used for post-write
// verification.
func (r *Repository) CountProducts(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}
