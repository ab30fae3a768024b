package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	DefaultTopic   = "order-placed"
	DefaultGroupID = "storefront-cart"

	defaultReadBackoff = time.Second
	maxReadBackoff     = 30 * time.Second
)

var ErrMissingSessionID = errors.New("missing session_id")

// OrderPlacedEvent is published by the payment flow once an order is paid.
type OrderPlacedEvent struct {
	SessionID string `json:"session_id"`
	OrderID   string `json:"order_id,omitempty"`
}

// OrderHandler reacts to a placed order.
type OrderHandler interface {
	OrderPlaced(ctx context.Context, sessionID string) error
}

type Config struct {
	Brokers     []string
	Topic       string
	GroupID     string
	ReadBackoff time.Duration // first pause after a failed read, doubled up to 30s
}

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	handler OrderHandler
	reader  messageReader
	logger  *zap.Logger

	backoff    time.Duration
	maxBackoff time.Duration
}

func NewConsumer(handler OrderHandler, cfg Config, logger *zap.Logger) *Consumer {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.GroupID == "" {
		cfg.GroupID = DefaultGroupID
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MaxBytes: 10e6, // 10MB
	})
	return newConsumer(handler, reader, cfg.ReadBackoff, logger.With(zap.String("topic", cfg.Topic)))
}

func newConsumer(handler OrderHandler, reader messageReader, backoff time.Duration, logger *zap.Logger) *Consumer {
	if backoff <= 0 {
		backoff = defaultReadBackoff
	}
	return &Consumer{
		handler:    handler,
		reader:     reader,
		logger:     logger,
		backoff:    backoff,
		maxBackoff: max(backoff, maxReadBackoff),
	}
}

// Run consumes until ctx is canceled. Consecutive read failures, such as an
// unreachable broker, are retried with exponential backoff.
func (c *Consumer) Run(ctx context.Context) {
	wait := c.backoff
	for {
		if ctx.Err() != nil {
			return
		}
		if c.processMessage(ctx) {
			wait = c.backoff
			continue
		}
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		wait = min(wait*2, c.maxBackoff)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Warn("error closing kafka reader", zap.Error(err))
	}
}

// processMessage reads and handles one message. It reports false when the
// read itself failed.
func (c *Consumer) processMessage(ctx context.Context) bool {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.Warn("error reading message", zap.Error(err))
		}
		return false
	}

	if err := c.handleMessage(ctx, m.Value); err != nil {
		c.logger.Warn("skipping order-placed message",
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.Error(err))
	}
	return true
}

func (c *Consumer) handleMessage(ctx context.Context, value []byte) error {
	var event OrderPlacedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("parse event: %w", err)
	}
	if event.SessionID == "" {
		return ErrMissingSessionID
	}

	if err := c.handler.OrderPlaced(ctx, event.SessionID); err != nil {
		return fmt.Errorf("order placed for session %s: %w", event.SessionID, err)
	}
	c.logger.Info("order placed",
		zap.String("session_id", event.SessionID),
		zap.String("order_id", event.OrderID))
	return nil
}
