package domain

import (
	"errors"
	"fmt"
	"strings"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusConfirmed  OrderStatus = "Confirmed"
	OrderStatusPreparing  OrderStatus = "Preparing"
	OrderStatusReady      OrderStatus = "Ready"
	OrderStatusDelivering OrderStatus = "Delivering"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

var (
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// position in the fulfilment pipeline; Cancelled sits outside it.
var statusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusConfirmed:  1,
	OrderStatusPreparing:  2,
	OrderStatusReady:      3,
	OrderStatusDelivering: 4,
	OrderStatusCompleted:  5,
}

// PendingBoardStatuses are the statuses shown on the POS pending board.
var PendingBoardStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
}

// ParseOrderStatus matches s case-insensitively against the fixed status set.
func ParseOrderStatus(s string) (OrderStatus, error) {
	trimmed := strings.TrimSpace(s)
	for st := range statusRank {
		if strings.EqualFold(trimmed, string(st)) {
			return st, nil
		}
	}
	if strings.EqualFold(trimmed, string(OrderStatusCancelled)) {
		return OrderStatusCancelled, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s OrderStatus) IsValid() bool {
	_, ok := statusRank[s]
	return ok || s == OrderStatusCancelled
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo allows forward moves (skips included) and cancellation of any open order.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() || !next.IsValid() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}
