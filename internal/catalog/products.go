package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/food_order/internal/domain"
)

const productColumns = `id, name, description, base_price, discount_price, image_url, category_id,
	is_available, sold_count, created_at, updated_at`

type ProductFilter struct {
	CategoryID    int64
	AvailableOnly bool
}

func (r *Repository) ListProducts(ctx context.Context, f ProductFilter) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1 = 1`
	var args []any
	if f.CategoryID > 0 {
		args = append(args, f.CategoryID)
		query += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	if f.AvailableOnly {
		query += ` AND is_available = 1`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

func (r *Repository) CreateProduct(ctx context.Context, p *domain.Product) error {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, base_price, discount_price, image_url, category_id, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		p.Name, p.Description, p.BasePrice, p.DiscountPrice, p.ImageURL, p.CategoryID, p.IsAvailable,
	).Scan(&id)
	if isForeignKeyViolation(err) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return r.reloadProduct(ctx, id, p)
}

// UpdateProduct rewrites the editable fields; sold_count is left alone.
func (r *Repository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, base_price = $4, discount_price = $5, image_url = $6,
		    category_id = $7, is_available = $8, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.BasePrice, p.DiscountPrice, p.ImageURL, p.CategoryID, p.IsAvailable,
	)
	if isForeignKeyViolation(err) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return r.reloadProduct(ctx, p.ID, p)
}

// reloadProduct copies the stored row into p so generated columns are populated.
func (r *Repository) reloadProduct(ctx context.Context, id int64, p *domain.Product) error {
	stored, err := r.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

// IncrementSoldCount adds the given quantity to each product's sold counter.
func (r *Repository) IncrementSoldCount(ctx context.Context, quantities map[int64]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for productID, qty := range quantities {
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET sold_count = sold_count + $2 WHERE id = $1`, productID, qty); err != nil {
			return fmt.Errorf("failed to increment sold count for product %d: %w", productID, err)
		}
	}
	return tx.Commit()
}

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.BasePrice,
		&p.DiscountPrice,
		&p.ImageURL,
		&p.CategoryID,
		&p.IsAvailable,
		&p.SoldCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
