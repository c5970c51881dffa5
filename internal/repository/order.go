package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/food_order/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const orderColumns = `id, user_id, session_key, customer_name, customer_phone, customer_email, shipping_address,
	note, source, status, payment_method, payment_status, subtotal, shipping_fee, discount_amount,
	discount_code, total_amount, items, idempotency_key, created_at, updated_at`

func (r *Repository) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return getOrder(ctx, r.db, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *Repository) GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return getOrder(ctx, r.db, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key)
}

func (r *Repository) ListOrders(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	return listOrders(ctx, r.db,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *Repository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	return listOrders(ctx, r.db,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *Repository) ListOrdersByStatus(ctx context.Context, statuses []domain.OrderStatus) ([]*domain.Order, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return listOrders(ctx, r.db,
		`SELECT `+orderColumns+` FROM orders WHERE status = ANY($1) ORDER BY created_at DESC`, pq.Array(names))
}

// UpdateOrderStatus applies the transition under a row lock and records a status event.
// changed is false when the order already had the requested status.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, next domain.OrderStatus) (order *domain.Order, changed bool, err error) {
	err = r.withTx(ctx, func(tx *sql.Tx) error {
		o, errGet := getOrder(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
		if errGet != nil {
			return errGet
		}
		previous := o.Status

		ch, errTr := o.TransitionTo(next)
		if errTr != nil {
			return errTr
		}
		order, changed = o, ch
		if !ch {
			return nil
		}

		if errUpd := tx.QueryRowContext(ctx, `
			UPDATE orders SET status = $2, payment_status = $3, updated_at = NOW()
			WHERE id = $1 RETURNING updated_at`,
			o.ID, o.Status, o.PaymentStatus,
		).Scan(&o.UpdatedAt); errUpd != nil {
			return fmt.Errorf("update order status: %w", errUpd)
		}

		return insertOutboxEvent(ctx, tx, o.ID.String(), domain.OrderEventStatusChanged, statusChangedPayload(o, previous))
	})
	if err != nil {
		return nil, false, err
	}
	return order, changed, nil
}

func insertOrder(ctx context.Context, q queryer, o *domain.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	idem := sql.NullString{String: o.IdempotencyKey, Valid: o.IdempotencyKey != ""}
	err = q.QueryRowContext(ctx, `
		INSERT INTO orders (id, user_id, session_key, customer_name, customer_phone, customer_email,
		                    shipping_address, note, source, status, payment_method, payment_status,
		                    subtotal, shipping_fee, discount_amount, discount_code, total_amount, items,
		                    idempotency_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW(), NOW())
		RETURNING created_at, updated_at`,
		o.ID,
		o.UserID,
		o.SessionKey,
		o.Customer.Name,
		o.Customer.Phone,
		o.Customer.Email,
		o.Customer.ShippingAddress,
		o.Note,
		o.Source,
		o.Status,
		o.PaymentMethod,
		o.PaymentStatus,
		o.Subtotal,
		o.ShippingFee,
		o.DiscountAmount,
		o.DiscountCode,
		o.TotalAmount,
		itemsJSON,
		idem,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func getOrder(ctx context.Context, q queryer, query string, args ...any) (*domain.Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return o, nil
}

func listOrders(ctx context.Context, q queryer, query string, args ...any) ([]*domain.Order, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var itemsJSON []byte
	var idem sql.NullString
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.SessionKey,
		&o.Customer.Name,
		&o.Customer.Phone,
		&o.Customer.Email,
		&o.Customer.ShippingAddress,
		&o.Note,
		&o.Source,
		&o.Status,
		&o.PaymentMethod,
		&o.PaymentStatus,
		&o.Subtotal,
		&o.ShippingFee,
		&o.DiscountAmount,
		&o.DiscountCode,
		&o.TotalAmount,
		&itemsJSON,
		&idem,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	o.IdempotencyKey = idem.String
	return &o, nil
}
