package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/Amit9DeV/NexiCart-sub001/internal/domain"
)

const (
	EventTypeOrderPlaced = "order.placed"
	headerEventType      = "event_type"
)

type OrderPlacedItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderPlacedEvent struct {
	OrderID    string            `json:"order_id"`
	UserID     string            `json:"user_id"`
	Items      []OrderPlacedItem `json:"items"`
	TotalPrice float64           `json:"total_price"`
	PlacedAt   time.Time         `json:"placed_at"`
}

func NewOrderPlacedEvent(order *domain.Order) OrderPlacedEvent {
	items := make([]OrderPlacedItem, len(order.Items))
	for i, it := range order.Items {
		items[i] = OrderPlacedItem{
			ProductID: it.ProductID.Hex(),
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		}
	}
	return OrderPlacedEvent{
		OrderID:    order.ID.Hex(),
		UserID:     order.UserID.Hex(),
		Items:      items,
		TotalPrice: order.TotalPrice,
		PlacedAt:   order.CreatedAt,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes order events to Kafka. Writes go through a circuit
// breaker so a dead broker fails fast instead of stalling checkout.
type KafkaPublisher struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker[struct{}]
	timeout time.Duration
	log     *zap.Logger
}

func NewKafkaPublisher(topic string, log *zap.Logger, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
	}
	return newKafkaPublisher(w, log)
}

func newKafkaPublisher(w messageWriter, log *zap.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		writer:  w,
		timeout: 5 * time.Second,
		log:     log,
	}
	p.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "kafka-publisher",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return p
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	payload, err := json.Marshal(NewOrderPlacedEvent(order))
	if err != nil {
		return fmt.Errorf("marshal order event failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.UserID.Hex()), // user_id keeps a user's events ordered
		Value: payload,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(EventTypeOrderPlaced)},
		},
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return struct{}{}, p.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("publish %s failed: %w", EventTypeOrderPlaced, err)
	}
	return nil
}

// State reports the breaker state for the debug endpoint.
func (p *KafkaPublisher) State() gobreaker.State {
	return p.breaker.State()
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, *domain.Order) error {
	return nil
}
