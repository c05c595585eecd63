package eventbus

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/handsandhope/hope/internal/core/notify"
	"github.com/rs/zerolog"
)

// NotificationRouter maps marketplace events to user-facing notifications.
// Only events whose names match one of the configured glob patterns are
// routed; "**" routes everything.
type NotificationRouter struct {
	bus      *EventBus
	patterns []string
	log      zerolog.Logger
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus, patterns []string, logger zerolog.Logger) *NotificationRouter {
	return &NotificationRouter{bus: bus, patterns: patterns, log: logger}
}

// Allowed reports whether event matches a configured pattern.
func (r *NotificationRouter) Allowed(event Event) bool {
	for _, p := range r.patterns {
		ok, err := doublestar.Match(p, string(event))
		if err != nil {
			r.log.Warn().Err(err).Str("pattern", p).Msg("invalid event pattern")
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeOrderPlaced(func(p OrderPlacedPayload) {
		r.route(EventOrderPlaced, notify.KindSuccess, "New Order",
			&notify.Action{Label: "View order", Target: "orders"},
			"Order %s placed: %d item(s), $%.2f", p.OrderID, p.Items, p.Total)
	})

	r.bus.SubscribeOrderShipped(func(p OrderShippedPayload) {
		msg := "Your order %s has shipped"
		args := []any{p.OrderID}
		if p.Carrier != "" {
			msg += " via %s"
			args = append(args, p.Carrier)
		}
		r.route(EventOrderShipped, notify.KindInfo, "Order Shipped",
			&notify.Action{Label: "Track order", Target: "orders"}, msg, args...)
	})

	r.bus.SubscribeInquiryReceived(func(p InquiryReceivedPayload) {
		from := p.FromName
		if from == "" {
			from = "A buyer"
		}
		r.route(EventInquiryReceived, notify.KindActivity, "New Inquiry",
			&notify.Action{Label: "Open inquiries", Target: "inquiries"},
			"%s asked about %s", from, p.ProductName)
	})

	r.bus.SubscribeProductApproved(func(p ProductApprovedPayload) {
		r.route(EventProductApproved, notify.KindSuccess, "Product Approved",
			&notify.Action{Label: "View products", Target: "products"},
			"%q is now live in the marketplace", p.ProductName)
	})

	r.bus.SubscribeProductLowStock(func(p ProductLowStockPayload) {
		r.route(EventProductLowStock, notify.KindWarning, "Low Stock",
			&notify.Action{Label: "Manage products", Target: "products"},
			"%q has %d left in stock", p.ProductName, p.Remaining)
	})

	r.bus.SubscribeAccountVerified(func(p AccountVerifiedPayload) {
		role := p.Role
		if role == "" {
			role = "marketplace"
		}
		r.route(EventAccountVerified, notify.KindSuccess, "Account Verified",
			&notify.Action{Label: "View profile", Target: "profile"},
			"Your %s account has been verified", role)
	})
}

func (r *NotificationRouter) route(event Event, kind notify.Kind, title string, action *notify.Action, format string, args ...any) {
	if !r.Allowed(event) {
		return
	}
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Title:   title,
		Message: fmt.Sprintf(format, args...),
		Kind:    kind,
		Action:  action,
	})
}
