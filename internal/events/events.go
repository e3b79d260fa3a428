// Package events publishes order lifecycle notifications for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/logger"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
	TypeOrderDeleted       = "order.deleted"
)

type Event struct {
	Type       string           `json:"type"`
	OrderID    string           `json:"orderId"`
	AccountID  string           `json:"accountId,omitempty"`
	Status     string           `json:"status,omitempty"`
	TotalPrice *decimal.Decimal `json:"totalPrice,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Kafka writes events to a single topic keyed by order id, so every event of an
// order lands on the same partition.
type Kafka struct {
	w *kafka.Writer
}

func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{w: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}}
}

func (k *Kafka) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return k.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.OrderID),
		Value: payload,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	})
}

func (k *Kafka) Close() error { return k.w.Close() }

// Log records events in the application log when no broker is configured.
type Log struct {
	log *logger.Logger
}

func NewLog(log *logger.Logger) *Log {
	return &Log{log: log.With("component", "events")}
}

func (l *Log) Publish(_ context.Context, e Event) error {
	l.log.Info("event", "type", e.Type, "order_id", e.OrderID, "account_id", e.AccountID, "status", e.Status)
	return nil
}

func (l *Log) Close() error { return nil }

// Recorder keeps published events in memory. A non-nil Err is returned by every Publish.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Close() error { return nil }
