package commands

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/handsandhope/hope/internal/core/config"
	"github.com/handsandhope/hope/internal/core/eventbus"
	"github.com/handsandhope/hope/internal/core/logging"
	"github.com/handsandhope/hope/internal/integration/kafka"
)

// startPipeline builds the event bus with notification routing and starts
// dispatch plus, when brokers are configured, the kafka consumer. Everything
// stops when ctx is done.
func startPipeline(ctx context.Context, cfg *config.Config) *eventbus.EventBus {
	bus := eventbus.New(cfg.Notifications.BusBuffer)
	eventbus.NewNotificationRouter(bus, cfg.Notifications.Events, logging.Component("router")).Register()
	eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))

	go bus.Start(ctx)

	if cfg.Kafka.Enabled() {
		log := logging.Component("kafka")
		consumer := kafka.NewConsumer(kafka.NewReader(cfg.Kafka), bus, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("kafka consumer stopped")
			}
		}()
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("consuming marketplace events")
	}

	return bus
}

// demoEvents are published in a loop by --demo.
var demoEvents = []struct {
	event   eventbus.Event
	payload any
}{
	{eventbus.EventOrderPlaced, eventbus.OrderPlacedPayload{OrderID: "1042", BuyerID: "b-7", SellerID: "s-3", Items: 2, Total: 48.5}},
	{eventbus.EventInquiryReceived, eventbus.InquiryReceivedPayload{InquiryID: "q-19", ProductID: "p-88", ProductName: "Woven basket", FromName: "Amara"}},
	{eventbus.EventProductLowStock, eventbus.ProductLowStockPayload{ProductID: "p-88", ProductName: "Woven basket", Remaining: 2}},
	{eventbus.EventOrderShipped, eventbus.OrderShippedPayload{OrderID: "1042", BuyerID: "b-7", Carrier: "DHL", TrackingNumber: "JD014600"}},
	{eventbus.EventProductApproved, eventbus.ProductApprovedPayload{ProductID: "p-91", ProductName: "Beaded necklace", SellerID: "s-3"}},
	{eventbus.EventAccountVerified, eventbus.AccountVerifiedPayload{UserID: "s-3", Role: "seller"}},
}

// runDemo publishes demoEvents every interval until ctx is done.
func runDemo(ctx context.Context, bus *eventbus.EventBus, interval time.Duration, log zerolog.Logger) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			ev := demoEvents[i%len(demoEvents)]
			if err := bus.Publish(ev.event, ev.payload); err != nil {
				log.Warn().Err(err).Str("event", string(ev.event)).Msg("demo publish failed")
			}
		}
	}
}
