package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/handsandhope/hope/internal/core/eventbus"
	"github.com/handsandhope/hope/internal/core/eventbus/testbus"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchResult struct {
	msg kafkago.Message
	err error
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []fetchResult
	committed []int64
	closed    bool
	drained   chan struct{}
	once      sync.Once
}

func newFakeReader(results ...fetchResult) *fakeReader {
	return &fakeReader{queue: results, drained: make(chan struct{})}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		next := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return next.msg, next.err
	}
	r.mu.Unlock()
	r.once.Do(func() { close(r.drained) })
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) Committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(event eventbus.Event, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Events() []eventbus.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]eventbus.Event(nil), p.events...)
}

func message(offset int64, value string) fetchResult {
	return fetchResult{msg: kafkago.Message{Offset: offset, Value: []byte(value)}}
}

func runUntilDrained(t *testing.T, c *Consumer, r *fakeReader) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	select {
	case <-r.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("reader was not drained")
	}
	cancel()
	require.NoError(t, <-errc)
}

func TestConsumer_PublishesAndSkipsMalformed(t *testing.T) {
	r := newFakeReader(
		message(1, `{"type":"order.placed","payload":{"order_id":"o-1","items":2}}`),
		message(2, `not json`),
		message(3, `{"type":"order.refunded","payload":{}}`),
		message(4, `{"type":"product.low-stock","payload":{"remaining":"few"}}`),
		message(5, `{"type":"inquiry.received","payload":{"product_name":"Quilt"}}`),
	)
	pub := &recordingPublisher{}
	c := NewConsumer(r, pub, zerolog.Nop())

	runUntilDrained(t, c, r)

	assert.Equal(t, []eventbus.Event{eventbus.EventOrderPlaced, eventbus.EventInquiryReceived}, pub.Events())
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, r.Committed(), "malformed messages are committed")
	assert.True(t, r.closed)
}

func TestConsumer_RetriesFetchErrors(t *testing.T) {
	r := newFakeReader(
		fetchResult{err: errors.New("broker unavailable")},
		fetchResult{err: errors.New("broker unavailable")},
		message(7, `{"type":"account.verified","payload":{"user_id":"u-1"}}`),
	)
	pub := &recordingPublisher{}
	c := NewConsumer(r, pub, zerolog.Nop())
	c.newBackOff = func() backoff.BackOff { return backoff.NewConstantBackOff(time.Millisecond) }

	runUntilDrained(t, c, r)

	assert.Equal(t, []eventbus.Event{eventbus.EventAccountVerified}, pub.Events())
}

func TestConsumer_GivesUpWhenBackoffStops(t *testing.T) {
	r := newFakeReader(fetchResult{err: errors.New("auth failed")})
	c := NewConsumer(r, &recordingPublisher{}, zerolog.Nop())
	c.newBackOff = func() backoff.BackOff { return &backoff.StopBackOff{} }

	err := c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth failed")
	assert.True(t, r.closed)
}

func TestConsumer_FeedsEventBus(t *testing.T) {
	bus := testbus.New(t)
	r := newFakeReader(message(1, `{"type":"product.approved","payload":{"product_name":"Scarf"}}`))
	c := NewConsumer(r, bus, zerolog.Nop())

	runUntilDrained(t, c, r)

	bus.AssertPublished(t, eventbus.EventProductApproved)
}

type fakeWriter struct {
	msgs []kafkago.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducer(w)

	err := p.Publish(context.Background(), eventbus.EventOrderShipped, eventbus.OrderShippedPayload{OrderID: "o-3", Carrier: "USPS"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "order.shipped", string(w.msgs[0].Key))

	var raw eventbus.RawEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &raw))
	event, payload, err := raw.Decode()
	require.NoError(t, err)
	assert.Equal(t, eventbus.EventOrderShipped, event)
	assert.Equal(t, eventbus.OrderShippedPayload{OrderID: "o-3", Carrier: "USPS"}, payload)

	w.err = errors.New("leader not available")
	assert.Error(t, p.Publish(context.Background(), eventbus.EventOrderShipped, eventbus.OrderShippedPayload{}))
}
