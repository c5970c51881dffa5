package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/food_order/internal/domain"
	"github.com/shopspring/decimal"
)

const discountColumns = `id, code, description, percent, max_discount_amount, min_order_amount,
	start_date, end_date, usage_limit, usage_count, is_active, created_at, updated_at`

func (r *Repository) CreateDiscount(ctx context.Context, d *domain.Discount) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO discounts (code, description, percent, max_discount_amount, min_order_amount,
		                       start_date, end_date, usage_limit, usage_count, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, NOW(), NOW())
		RETURNING id, usage_count, created_at, updated_at`,
		d.Code,
		d.Description,
		d.Percent,
		nullDecimal(d.MaxDiscountAmount),
		nullDecimal(d.MinOrderAmount),
		d.StartDate,
		d.EndDate,
		nullInt(d.UsageLimit),
		d.IsActive,
	).Scan(&d.ID, &d.UsageCount, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %s", ErrDiscountConstraint, constraintName(err))
		}
		return fmt.Errorf("insert discount: %w", err)
	}
	return nil
}

// UpdateDiscount rewrites the editable fields. usage_count is owned by checkout and never set here.
func (r *Repository) UpdateDiscount(ctx context.Context, d *domain.Discount) error {
	err := r.db.QueryRowContext(ctx, `
		UPDATE discounts
		SET code = $2, description = $3, percent = $4, max_discount_amount = $5, min_order_amount = $6,
		    start_date = $7, end_date = $8, usage_limit = $9, is_active = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING usage_count, created_at, updated_at`,
		d.ID,
		d.Code,
		d.Description,
		d.Percent,
		nullDecimal(d.MaxDiscountAmount),
		nullDecimal(d.MinOrderAmount),
		d.StartDate,
		d.EndDate,
		nullInt(d.UsageLimit),
		d.IsActive,
	).Scan(&d.UsageCount, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrDiscountNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %s", ErrDiscountConstraint, constraintName(err))
		}
		return fmt.Errorf("update discount: %w", err)
	}
	return nil
}

func (r *Repository) DeleteDiscount(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM discounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete discount: %w", err)
	}
	return expectOneRow(res, ErrDiscountNotFound)
}

func (r *Repository) GetDiscount(ctx context.Context, id int64) (*domain.Discount, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+discountColumns+` FROM discounts WHERE id = $1`, id)
	d, err := scanDiscount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiscountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query discount by id: %w", err)
	}
	return d, nil
}

// GetDiscountByCode expects an already normalized code.
func (r *Repository) GetDiscountByCode(ctx context.Context, code string) (*domain.Discount, error) {
	return getDiscountByCode(ctx, r.db, code, false)
}

func (r *Repository) ListDiscounts(ctx context.Context) ([]*domain.Discount, error) {
	return r.listDiscounts(ctx, `SELECT `+discountColumns+` FROM discounts ORDER BY created_at DESC, id DESC`)
}

// ListActiveDiscounts returns active discounts whose window contains now and that still have uses left.
func (r *Repository) ListActiveDiscounts(ctx context.Context, now time.Time) ([]*domain.Discount, error) {
	return r.listDiscounts(ctx, `SELECT `+discountColumns+` FROM discounts
		WHERE is_active AND start_date <= $1 AND end_date >= $1
		  AND (usage_limit IS NULL OR usage_count < usage_limit)
		ORDER BY end_date, id`, now)
}

func (r *Repository) listDiscounts(ctx context.Context, query string, args ...any) ([]*domain.Discount, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query discounts: %w", err)
	}
	defer rows.Close()

	var out []*domain.Discount
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan discount: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

func getDiscountByCode(ctx context.Context, q queryer, code string, forUpdate bool) (*domain.Discount, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE code = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	d, err := scanDiscount(q.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiscountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query discount by code: %w", err)
	}
	return d, nil
}

// incrementDiscountUsage only succeeds while the limit still has room.
func incrementDiscountUsage(ctx context.Context, q queryer, id int64) error {
	res, err := q.ExecContext(ctx, `
		UPDATE discounts SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE id = $1 AND (usage_limit IS NULL OR usage_count < usage_limit)`, id)
	if err != nil {
		return fmt.Errorf("increment discount usage: %w", err)
	}
	return expectOneRow(res, ErrUsageLimitReached)
}

func scanDiscount(row rowScanner) (*domain.Discount, error) {
	var d domain.Discount
	var maxAmount, minOrder decimal.NullDecimal
	var limit sql.NullInt64
	if err := row.Scan(
		&d.ID,
		&d.Code,
		&d.Description,
		&d.Percent,
		&maxAmount,
		&minOrder,
		&d.StartDate,
		&d.EndDate,
		&limit,
		&d.UsageCount,
		&d.IsActive,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if maxAmount.Valid {
		d.MaxDiscountAmount = &maxAmount.Decimal
	}
	if minOrder.Valid {
		d.MinOrderAmount = &minOrder.Decimal
	}
	if limit.Valid {
		v := int(limit.Int64)
		d.UsageLimit = &v
	}
	return &d, nil
}

func nullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
