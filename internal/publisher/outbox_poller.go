package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/food_order/internal/circuitbreaker"
	r "github.com/fjod/food_order/internal/repository"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	DefaultTopic   = "order-events"
	eventBatchSize = 100
)

// OutboxStore is the part of the repository the poller drains.
type OutboxStore interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*r.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Options struct {
	Brokers    []string
	Topic      string
	PollPeriod time.Duration
	Breaker    circuitbreaker.Settings
}

// OutboxPoller relays committed outbox rows to Kafka.
type OutboxPoller struct {
	timeout   time.Duration
	eventTick time.Duration
	repo      OutboxStore
	writer    messageWriter
	breaker   *circuitbreaker.Breaker
	log       *zap.Logger
}

func NewOutboxPoller(repo OutboxStore, opts Options, log *zap.Logger) *OutboxPoller {
	if opts.Topic == "" {
		opts.Topic = DefaultTopic
	}
	if opts.PollPeriod <= 0 {
		opts.PollPeriod = time.Second
	}
	if opts.Breaker.Name == "" {
		opts.Breaker.Name = "kafka-" + opts.Topic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(opts.Brokers...),
		Topic:                  opts.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return newOutboxPoller(repo, w, opts, log)
}

func newOutboxPoller(repo OutboxStore, w messageWriter, opts Options, log *zap.Logger) *OutboxPoller {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PollPeriod <= 0 {
		opts.PollPeriod = time.Second
	}
	return &OutboxPoller{
		timeout:   5 * time.Second,
		eventTick: opts.PollPeriod,
		repo:      repo,
		writer:    w,
		breaker:   circuitbreaker.New(opts.Breaker, log),
		log:       log.Named("outbox"),
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	defer eventTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}
	return nil
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, eventBatchSize)
	if err != nil {
		p.log.Error("failed to fetch outbox events", zap.Error(err))
		return
	}

	for _, event := range events {
		errPublish := p.breaker.Do(func() error {
			return p.publishToKafka(ctx, event)
		})
		if circuitbreaker.IsOpen(errPublish) {
			// the rest of the batch is retried on a later tick
			p.log.Warn("kafka circuit open, skipping batch", zap.Int("pending", len(events)))
			return
		}
		if errPublish != nil {
			p.log.Error("failed to publish event",
				zap.Int("event_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.Error(errPublish))
			continue
		}

		if errMark := p.repo.MarkEventAsProcessed(ctx, event.ID); errMark != nil {
			p.log.Error("failed to mark event as processed", zap.Int("event_id", event.ID), zap.Error(errMark))
			continue
		}
		p.log.Debug("event published",
			zap.Int("event_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("order_id", event.AggregateId))
	}
}

func (p *OutboxPoller) publishToKafka(ctx context.Context, event *r.OutboxEvent) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.AggregateId), // order id keeps per-order ordering
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
