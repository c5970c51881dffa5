package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/food_order/internal/domain"
)

// OrderBuilder turns the locked lines and discount row into the order to persist.
// discount is nil when no code was given or the code does not exist.
type OrderBuilder func(lines []domain.CartLine, discount *domain.Discount) (*domain.Order, error)

type OrderCommit struct {
	// SessionKey selects the cart to check out. Its lines are cleared on success.
	SessionKey domain.SessionKey
	// Lines are used instead of a cart when SessionKey is empty.
	Lines []domain.CartLine
	// DiscountCode must already be normalized.
	DiscountCode string
}

// CommitOrder creates an order in one transaction: the cart and discount rows are locked,
// the order is inserted, discount usage is incremented with a limit check, the cart is
// cleared and an order.created event is queued. Any failure leaves no trace.
func (r *Repository) CommitOrder(ctx context.Context, req OrderCommit, build OrderBuilder) (*domain.Order, error) {
	var order *domain.Order
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		lines := req.Lines
		if req.SessionKey != "" {
			var locked string
			errLock := tx.QueryRowContext(ctx,
				`SELECT session_key FROM carts WHERE session_key = $1 FOR UPDATE`, req.SessionKey,
			).Scan(&locked)
			if errors.Is(errLock, sql.ErrNoRows) {
				return domain.ErrEmptyCart
			}
			if errLock != nil {
				return fmt.Errorf("lock cart: %w", errLock)
			}

			cartLines, errLines := loadCartLines(ctx, tx, req.SessionKey)
			if errLines != nil {
				return errLines
			}
			lines = cartLines
		}
		if len(lines) == 0 {
			return domain.ErrEmptyCart
		}

		var discount *domain.Discount
		if req.DiscountCode != "" {
			d, errDisc := getDiscountByCode(ctx, tx, req.DiscountCode, true)
			if errDisc != nil && !errors.Is(errDisc, ErrDiscountNotFound) {
				return errDisc
			}
			discount = d
		}

		o, errBuild := build(lines, discount)
		if errBuild != nil {
			return fmt.Errorf("build order: %w", errBuild)
		}

		if errIns := insertOrder(ctx, tx, o); errIns != nil {
			return errIns
		}

		if o.DiscountCode != "" {
			if discount == nil || discount.Code != o.DiscountCode {
				return fmt.Errorf("%w: order references discount %q that was not resolved", domain.ErrValidation, o.DiscountCode)
			}
			if errInc := incrementDiscountUsage(ctx, tx, discount.ID); errInc != nil {
				return errInc
			}
		}

		if req.SessionKey != "" {
			if _, errClr := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE session_key = $1`, req.SessionKey); errClr != nil {
				return fmt.Errorf("clear cart: %w", errClr)
			}
			if _, errTouch := tx.ExecContext(ctx, `UPDATE carts SET updated_at = NOW() WHERE session_key = $1`, req.SessionKey); errTouch != nil {
				return fmt.Errorf("touch cart: %w", errTouch)
			}
		}

		if errOut := insertOutboxEvent(ctx, tx, o.ID.String(), domain.OrderEventCreated, orderCreatedPayload(o)); errOut != nil {
			return errOut
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransactionFailed, err)
	}
	return order, nil
}
