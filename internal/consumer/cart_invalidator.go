package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fjod/food_order/internal/cache"
	"github.com/fjod/food_order/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// CartInvalidator evicts cached carts of sessions that just checked out. The request path
// already invalidates, but a read-through Set racing the commit can put the old cart back.
// The cache is shared, so one consumer group is enough.
type CartInvalidator struct {
	reader messageReader
	cache  cache.CartCache
	log    *zap.Logger
}

func NewCartInvalidator(c cache.CartCache, topic, groupID string, log *zap.Logger, brokers ...string) *CartInvalidator {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return newCartInvalidator(reader, c, log)
}

func newCartInvalidator(reader messageReader, c cache.CartCache, log *zap.Logger) *CartInvalidator {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartInvalidator{reader: reader, cache: c, log: log.Named("cart_invalidator")}
}

func (ci *CartInvalidator) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		ci.handleNext(ctx)
	}
}

func (ci *CartInvalidator) Close() error {
	return ci.reader.Close()
}

func (ci *CartInvalidator) handleNext(ctx context.Context) {
	m, err := ci.reader.ReadMessage(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			ci.log.Warn("error reading message", zap.Error(err))
		}
		return
	}

	if eventType(m) != domain.OrderEventCreated {
		return
	}

	var payload struct {
		OrderID    string            `json:"order_id"`
		SessionKey domain.SessionKey `json:"session_key"`
	}
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		ci.log.Warn("error parsing message", zap.Int64("offset", m.Offset), zap.Error(err))
		return
	}
	// POS orders have no cart
	if payload.SessionKey == "" {
		return
	}

	if err := ci.cache.Delete(ctx, payload.SessionKey); err != nil {
		ci.log.Warn("failed to delete cached cart",
			zap.String("session", payload.SessionKey.String()),
			zap.String("order_id", payload.OrderID),
			zap.Error(err))
	}
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}
