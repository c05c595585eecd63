package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/handsandhope/hope/internal/core/config"
	"github.com/handsandhope/hope/internal/core/eventbus"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer is the subset of *kafkago.Writer used by Producer.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewWriter returns a synchronous writer for cfg.Topic.
func NewWriter(cfg config.KafkaConfig) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireOne,
	}
}

// Producer publishes events in the RawEvent wire format.
type Producer struct {
	w Writer
}

// NewProducer wraps w.
func NewProducer(w Writer) *Producer {
	return &Producer{w: w}
}

// Publish writes one event keyed by its name.
func (p *Producer) Publish(ctx context.Context, event eventbus.Event, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	value, err := json.Marshal(eventbus.RawEvent{Type: string(event), Payload: body})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event, err)
	}
	msg := kafkago.Message{
		Key:   []byte(event),
		Value: value,
		Time:  time.Now(),
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", event, err)
	}
	return nil
}

// Close closes the writer.
func (p *Producer) Close() error {
	return p.w.Close()
}
