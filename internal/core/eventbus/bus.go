package eventbus

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus delivers events to subscribers on a single dispatch goroutine.
// Publishing never blocks: when the buffer is full the event is dropped and
// the OnDrop hooks run.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New returns a bus with the given buffer size. Start must be called to
// begin delivery.
func New(buffer int) *EventBus {
	if buffer < 1 {
		buffer = 1
	}
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

// Publish enqueues a payload decoded elsewhere (HTTP, kafka). The payload's
// type must match the event.
func (bus *EventBus) Publish(event Event, payload any) error {
	want, ok := Events[event]
	if !ok {
		return fmt.Errorf("unknown event %q", event)
	}
	if reflect.TypeOf(want) != reflect.TypeOf(payload) {
		return fmt.Errorf("event %q expects %T, got %T", event, want, payload)
	}
	bus.send(event, payload)
	return nil
}

// SubscribeAll registers fn for every known event.
func (bus *EventBus) SubscribeAll(fn func(Event, any)) {
	for event := range Events {
		bus.subscribe(event, func(p any) { fn(event, p) })
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()

	for _, h := range snapshot(&bus.hooks.mu, &bus.hooks.onSubscribe) {
		h(event)
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		bus.call(env, fn)
	}
}

func (bus *EventBus) call(env envelope, fn func(any)) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(env.event, env.payload, r)
		}
	}()
	fn(env.payload)
}

// PublishAccountVerified enqueues an account.verified event.
func (bus *EventBus) PublishAccountVerified(p AccountVerifiedPayload) {
	bus.send(EventAccountVerified, p)
}

// SubscribeAccountVerified registers fn for account.verified events.
func (bus *EventBus) SubscribeAccountVerified(fn func(AccountVerifiedPayload)) {
	bus.subscribe(EventAccountVerified, func(p any) { fn(p.(AccountVerifiedPayload)) })
}

// PublishInquiryReceived enqueues an inquiry.received event.
func (bus *EventBus) PublishInquiryReceived(p InquiryReceivedPayload) {
	bus.send(EventInquiryReceived, p)
}

// SubscribeInquiryReceived registers fn for inquiry.received events.
func (bus *EventBus) SubscribeInquiryReceived(fn func(InquiryReceivedPayload)) {
	bus.subscribe(EventInquiryReceived, func(p any) { fn(p.(InquiryReceivedPayload)) })
}

// PublishNotificationPublished enqueues a notification.published event.
func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

// SubscribeNotificationPublished registers fn for notification.published events.
func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	bus.subscribe(EventNotificationPublished, func(p any) { fn(p.(NotificationPublishedPayload)) })
}

// PublishOrderPlaced enqueues an order.placed event.
func (bus *EventBus) PublishOrderPlaced(p OrderPlacedPayload) {
	bus.send(EventOrderPlaced, p)
}

// SubscribeOrderPlaced registers fn for order.placed events.
func (bus *EventBus) SubscribeOrderPlaced(fn func(OrderPlacedPayload)) {
	bus.subscribe(EventOrderPlaced, func(p any) { fn(p.(OrderPlacedPayload)) })
}

// PublishOrderShipped enqueues an order.shipped event.
func (bus *EventBus) PublishOrderShipped(p OrderShippedPayload) {
	bus.send(EventOrderShipped, p)
}

// SubscribeOrderShipped registers fn for order.shipped events.
func (bus *EventBus) SubscribeOrderShipped(fn func(OrderShippedPayload)) {
	bus.subscribe(EventOrderShipped, func(p any) { fn(p.(OrderShippedPayload)) })
}

// PublishProductApproved enqueues a product.approved event.
func (bus *EventBus) PublishProductApproved(p ProductApprovedPayload) {
	bus.send(EventProductApproved, p)
}

// SubscribeProductApproved registers fn for product.approved events.
func (bus *EventBus) SubscribeProductApproved(fn func(ProductApprovedPayload)) {
	bus.subscribe(EventProductApproved, func(p any) { fn(p.(ProductApprovedPayload)) })
}

// PublishProductLowStock enqueues a product.low-stock event.
func (bus *EventBus) PublishProductLowStock(p ProductLowStockPayload) {
	bus.send(EventProductLowStock, p)
}

// SubscribeProductLowStock registers fn for product.low-stock events.
func (bus *EventBus) SubscribeProductLowStock(fn func(ProductLowStockPayload)) {
	bus.subscribe(EventProductLowStock, func(p any) { fn(p.(ProductLowStockPayload)) })
}
