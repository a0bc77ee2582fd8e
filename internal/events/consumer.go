package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CartClearer removes the cart lines an order was placed from. Lines added
// after placedAt must survive so a redelivered event is harmless.
type CartClearer interface {
	ClearOrderedItems(ctx context.Context, userID primitive.ObjectID, placedAt time.Time) error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// errMalformed marks events that can never be handled. They are committed
// and skipped instead of retried.
var errMalformed = errors.New("malformed order event")

const (
	minRetryBackoff = 100 * time.Millisecond
	maxRetryBackoff = 5 * time.Second
)

// CartConsumer clears carts when an order.placed event arrives. Offsets are
// committed only after the cart was cleared, so delivery is at least once.
type CartConsumer struct {
	reader     messageReader
	carts      CartClearer
	log        *zap.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewCartConsumer(carts CartClearer, topic, groupID string, log *zap.Logger, brokers ...string) *CartConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return newCartConsumer(reader, carts, log)
}

func newCartConsumer(reader messageReader, carts CartClearer, log *zap.Logger) *CartConsumer {
	return &CartConsumer{
		reader:     reader,
		carts:      carts,
		log:        log,
		minBackoff: minRetryBackoff,
		maxBackoff: maxRetryBackoff,
	}
}

// Run reads until ctx is cancelled.
func (c *CartConsumer) Run(ctx context.Context) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			c.log.Error("error reading message", zap.Error(err))
			continue
		}

		if err := c.handleWithRetry(ctx, m); err != nil {
			if ctx.Err() != nil {
				// Left uncommitted; the group redelivers it after restart.
				return nil
			}
			c.log.Warn("order event skipped",
				zap.Int64("offset", m.Offset),
				zap.Error(err))
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error("commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

// handleWithRetry retries transient failures with capped exponential backoff
// until the message is handled or ctx ends. Malformed events return at once.
func (c *CartConsumer) handleWithRetry(ctx context.Context, m kafka.Message) error {
	backoff := c.minBackoff
	for {
		err := c.handleMessage(ctx, m)
		if err == nil || errors.Is(err, errMalformed) {
			return err
		}

		c.log.Warn("order event failed, retrying",
			zap.Int64("offset", m.Offset),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, c.maxBackoff)
	}
}

func (c *CartConsumer) handleMessage(ctx context.Context, m kafka.Message) error {
	if t := eventType(m); t != "" && t != EventTypeOrderPlaced {
		return nil
	}

	var event OrderPlacedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		return fmt.Errorf("%w: parse message: %v", errMalformed, err)
	}

	userID, err := primitive.ObjectIDFromHex(event.UserID)
	if err != nil {
		return fmt.Errorf("%w: invalid user_id %q", errMalformed, event.UserID)
	}
	if event.PlacedAt.IsZero() {
		return fmt.Errorf("%w: order %s has no placed_at", errMalformed, event.OrderID)
	}

	if err := c.carts.ClearOrderedItems(ctx, userID, event.PlacedAt); err != nil {
		return fmt.Errorf("clear cart for order %s: %w", event.OrderID, err)
	}

	c.log.Debug("ordered items cleared from cart",
		zap.String("order_id", event.OrderID),
		zap.String("user_id", event.UserID),
		zap.Time("placed_at", event.PlacedAt))
	return nil
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == headerEventType {
			return string(h.Value)
		}
	}
	return ""
}

func (c *CartConsumer) Close() error {
	return c.reader.Close()
}
