// Package kafka feeds marketplace events from a kafka topic into the event
// bus and publishes events to that topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/handsandhope/hope/internal/core/config"
	"github.com/handsandhope/hope/internal/core/eventbus"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader is the subset of *kafkago.Reader used by Consumer.
type Reader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher receives decoded events.
type Publisher interface {
	Publish(event eventbus.Event, payload any) error
}

// NewReader returns a consumer-group reader for cfg.
func NewReader(cfg config.KafkaConfig) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
		MaxWait:  time.Second,
	})
}

// Consumer reads RawEvent messages and publishes them on the bus.
// Malformed messages are logged and committed so they are not redelivered.
type Consumer struct {
	reader     Reader
	bus        Publisher
	log        zerolog.Logger
	newBackOff func() backoff.BackOff
}

// NewConsumer returns a Consumer. Fetch errors are retried with
// exponential backoff until ctx is cancelled.
func NewConsumer(reader Reader, bus Publisher, logger zerolog.Logger) *Consumer {
	return &Consumer{
		reader: reader,
		bus:    bus,
		log:    logger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = 0
			return b
		},
	}
}

// Run consumes until ctx is cancelled or the backoff gives up. It closes
// the reader on return.
func (c *Consumer) Run(ctx context.Context) error {
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.log.Warn().Err(err).Msg("failed to close kafka reader")
		}
	}()

	b := c.newBackOff()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			wait := b.NextBackOff()
			if wait == backoff.Stop {
				return fmt.Errorf("fetch kafka message: %w", err)
			}
			c.log.Warn().Err(err).Dur("retry_in", wait).Msg("kafka fetch failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
			continue
		}
		b.Reset()

		if err := c.handle(msg); err != nil {
			c.log.Warn().Err(err).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("skipping kafka message")
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
			c.log.Warn().Err(err).Int64("offset", msg.Offset).Msg("failed to commit kafka message")
		}
	}
}

func (c *Consumer) handle(msg kafkago.Message) error {
	var raw eventbus.RawEvent
	if err := json.Unmarshal(msg.Value, &raw); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	event, payload, err := raw.Decode()
	if err != nil {
		return err
	}
	if err := c.bus.Publish(event, payload); err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}
	c.log.Debug().Str("event", string(event)).Int64("offset", msg.Offset).Msg("kafka event received")
	return nil
}
