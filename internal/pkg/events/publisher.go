package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher announces payroll lifecycle changes. Events are sent after the
// change is committed; a failed publish never undoes it.
type Publisher interface {
	PublishMonthClosed(ctx context.Context, event MonthClosedEvent) error
	PublishMonthReopened(ctx context.Context, event MonthReopenedEvent) error
}

type NoopPublisher struct{}

func (NoopPublisher) PublishMonthClosed(context.Context, MonthClosedEvent) error {
	return nil
}

func (NoopPublisher) PublishMonthReopened(context.Context, MonthReopenedEvent) error {
	return nil
}

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// NewWriter builds a writer that routes each message by its Topic field.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

func (p *KafkaPublisher) PublishMonthClosed(ctx context.Context, event MonthClosedEvent) error {
	event.EventType = EventTypeMonthClosed
	return p.publish(ctx, MonthClosedTopic, event.EventType, periodKey(event.TenantID, event.Year, event.Month), event)
}

func (p *KafkaPublisher) PublishMonthReopened(ctx context.Context, event MonthReopenedEvent) error {
	event.EventType = EventTypeMonthReopened
	return p.publish(ctx, MonthReopenedTopic, event.EventType, periodKey(event.TenantID, event.Year, event.Month), event)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, eventType, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", eventType, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

// Events of one tenant-month share a partition so consumers see close and
// reopen in order.
func periodKey(tenantID string, year, month int) string {
	return fmt.Sprintf("%s:%d-%02d", tenantID, year, month)
}
