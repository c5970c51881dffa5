package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/food_order/internal/domain"
)

type OutboxEvent struct {
	ID          int
	AggregateId string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

type orderCreatedEvent struct {
	OrderID        string             `json:"order_id"`
	UserID         string             `json:"user_id"`
	SessionKey     domain.SessionKey  `json:"session_key,omitempty"`
	Source         domain.OrderSource `json:"source"`
	Status         domain.OrderStatus `json:"status"`
	Subtotal       string             `json:"subtotal"`
	ShippingFee    string             `json:"shipping_fee"`
	DiscountAmount string             `json:"discount_amount"`
	DiscountCode   string             `json:"discount_code"`
	TotalAmount    string             `json:"total_amount"`
	Items          []domain.OrderItem `json:"items"`
	CreatedAt      time.Time          `json:"created_at"`
}

type statusChangedEvent struct {
	OrderID        string               `json:"order_id"`
	PreviousStatus domain.OrderStatus   `json:"previous_status"`
	Status         domain.OrderStatus   `json:"status"`
	PaymentStatus  domain.PaymentStatus `json:"payment_status"`
	ChangedAt      time.Time            `json:"changed_at"`
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox_events
		WHERE processed_at IS NULL
		ORDER BY id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		e := &OutboxEvent{}
		if err := rows.Scan(&e.ID, &e.AggregateId, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox_events SET processed_at = NOW() WHERE id = $1 AND processed_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("mark outbox event processed: %w", err)
	}
	return expectOneRow(res, fmt.Errorf("outbox event %d %w", id, domain.ErrNotFound))
}

func insertOutboxEvent(ctx context.Context, q queryer, aggregateID, eventType string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO outbox_events (aggregate_id, event_type, payload, created_at) VALUES ($1, $2, $3, NOW())`,
		aggregateID, eventType, payloadJSON)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func orderCreatedPayload(o *domain.Order) orderCreatedEvent {
	return orderCreatedEvent{
		OrderID:        o.ID.String(),
		UserID:         o.UserID,
		SessionKey:     o.SessionKey,
		Source:         o.Source,
		Status:         o.Status,
		Subtotal:       o.Subtotal.String(),
		ShippingFee:    o.ShippingFee.String(),
		DiscountAmount: o.DiscountAmount.String(),
		DiscountCode:   o.DiscountCode,
		TotalAmount:    o.TotalAmount.String(),
		Items:          o.Items,
		CreatedAt:      o.CreatedAt,
	}
}

func statusChangedPayload(o *domain.Order, previous domain.OrderStatus) statusChangedEvent {
	return statusChangedEvent{
		OrderID:        o.ID.String(),
		PreviousStatus: previous,
		Status:         o.Status,
		PaymentStatus:  o.PaymentStatus,
		ChangedAt:      o.UpdatedAt,
	}
}
