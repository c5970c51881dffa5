package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/food_order/internal/domain"
)

const cartLineColumns = `id, product_id, size_id, topping_ids, quantity, unit_price, note,
	product_name, product_image, size_name, topping_names, added_at`

func (r *Repository) GetCart(ctx context.Context, key domain.SessionKey) (*domain.Cart, error) {
	cart := &domain.Cart{SessionKey: key}
	err := r.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM carts WHERE session_key = $1`, key,
	).Scan(&cart.CreatedAt, &cart.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}

	lines, err := loadCartLines(ctx, r.db, key)
	if err != nil {
		return nil, err
	}
	cart.Lines = lines
	return cart, nil
}

// AddLine inserts a priced line, or merges it into the line with the same configuration.
// On merge the stored unit price is kept and the quantity is capped at maxQuantity.
func (r *Repository) AddLine(ctx context.Context, key domain.SessionKey, line domain.CartLine, maxQuantity int) (*domain.CartLine, error) {
	var saved *domain.CartLine
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if err := touchCart(ctx, tx, key); err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx, `
			INSERT INTO cart_lines (session_key, product_id, size_id, topping_ids, quantity, unit_price, note,
			                        product_name, product_image, size_name, topping_names, added_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
			ON CONFLICT (session_key, product_id, size_id, topping_ids) DO UPDATE
			SET quantity = LEAST(cart_lines.quantity + EXCLUDED.quantity, $12),
			    note = CASE WHEN EXCLUDED.note <> '' THEN EXCLUDED.note ELSE cart_lines.note END
			RETURNING `+cartLineColumns,
			key,
			line.ProductID,
			sizeColumn(line.SizeID),
			line.ToppingIDs,
			line.Quantity,
			line.UnitPrice,
			line.Note,
			line.Snapshot.ProductName,
			line.Snapshot.ProductImage,
			line.Snapshot.SizeName,
			line.Snapshot.ToppingNames,
			maxQuantity,
		)
		l, err := scanCartLine(row)
		if err != nil {
			return fmt.Errorf("upsert cart line: %w", err)
		}
		saved = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *Repository) UpdateLineQuantity(ctx context.Context, key domain.SessionKey, lineID int64, quantity int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cart_lines SET quantity = $3 WHERE session_key = $1 AND id = $2`,
		key, lineID, quantity)
	if err != nil {
		return fmt.Errorf("update cart line quantity: %w", err)
	}
	if err := expectOneRow(res, ErrLineNotFound); err != nil {
		return err
	}
	return r.bumpCart(ctx, key)
}

func (r *Repository) RemoveLine(ctx context.Context, key domain.SessionKey, lineID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE session_key = $1 AND id = $2`, key, lineID)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	if err := expectOneRow(res, ErrLineNotFound); err != nil {
		return err
	}
	return r.bumpCart(ctx, key)
}

// ClearCart removes every line but keeps the cart row.
func (r *Repository) ClearCart(ctx context.Context, key domain.SessionKey) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE session_key = $1`, key); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return r.bumpCart(ctx, key)
}

func (r *Repository) bumpCart(ctx context.Context, key domain.SessionKey) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE session_key = $1`, key); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}

func touchCart(ctx context.Context, q queryer, key domain.SessionKey) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO carts (session_key, created_at, updated_at) VALUES ($1, NOW(), NOW())
		ON CONFLICT (session_key) DO UPDATE SET updated_at = NOW()`, key)
	if err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}
	return nil
}

func loadCartLines(ctx context.Context, q queryer, key domain.SessionKey) ([]domain.CartLine, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+cartLineColumns+` FROM cart_lines WHERE session_key = $1 ORDER BY id`, key)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		l, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCartLine(row rowScanner) (*domain.CartLine, error) {
	var l domain.CartLine
	var sizeID int64
	if err := row.Scan(
		&l.ID,
		&l.ProductID,
		&sizeID,
		&l.ToppingIDs,
		&l.Quantity,
		&l.UnitPrice,
		&l.Note,
		&l.Snapshot.ProductName,
		&l.Snapshot.ProductImage,
		&l.Snapshot.SizeName,
		&l.Snapshot.ToppingNames,
		&l.AddedAt,
	); err != nil {
		return nil, err
	}
	if sizeID > 0 {
		l.SizeID = &sizeID
	}
	return &l, nil
}

// size_id is stored as 0 when no size is chosen so it can take part in the unique key.
func sizeColumn(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
