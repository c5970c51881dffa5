package service

import (
	"fmt"

	"github.com/fjod/food_order/internal/domain"
)

var (
	ErrForbidden       = fmt.Errorf("%w: caller may not perform this action", domain.ErrForbidden)
	ErrMissingSession  = fmt.Errorf("%w: session key is required", domain.ErrValidation)
	ErrMissingCustomer = fmt.Errorf("%w: customer name and phone are required", domain.ErrValidation)
	ErrMissingAddress  = fmt.Errorf("%w: shipping address is required for delivery", domain.ErrValidation)

	ErrIdempotencyKeyInUse = fmt.Errorf("%w: idempotency key belongs to another session", domain.ErrConflict)
)
