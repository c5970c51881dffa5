package pricing

import (
	"errors"
	"fmt"
)

// ErrDiscountNotApplicable is the parent of every gate failure in discount resolution.
var ErrDiscountNotApplicable = errors.New("discount not applicable")

var (
	ErrDiscountNotFound    = fmt.Errorf("%w: code not found", ErrDiscountNotApplicable)
	ErrDiscountInactive    = fmt.Errorf("%w: discount is inactive", ErrDiscountNotApplicable)
	ErrDiscountNotYetValid = fmt.Errorf("%w: discount is not yet valid", ErrDiscountNotApplicable)
	ErrDiscountExpired     = fmt.Errorf("%w: discount has expired", ErrDiscountNotApplicable)
	ErrDiscountExhausted   = fmt.Errorf("%w: usage limit reached", ErrDiscountNotApplicable)
	ErrMinimumOrderNotMet  = fmt.Errorf("%w: minimum order amount not met", ErrDiscountNotApplicable)
)
