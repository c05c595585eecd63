// Package eventbus provides a typed publish/subscribe event bus for
// marketplace events flowing into the notification center.
package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/handsandhope/hope/internal/core/notify"
)

// Event names a marketplace event.
type Event string

// Keep list sorted A-Z
const (
	EventAccountVerified       Event = "account.verified"
	EventInquiryReceived       Event = "inquiry.received"
	EventNotificationPublished Event = "notification.published"
	EventOrderPlaced           Event = "order.placed"
	EventOrderShipped          Event = "order.shipped"
	EventProductApproved       Event = "product.approved"
	EventProductLowStock       Event = "product.low-stock"
)

// Events maps every event to a zero value of its payload.
var Events = map[Event]any{
	EventAccountVerified:       AccountVerifiedPayload{},
	EventInquiryReceived:       InquiryReceivedPayload{},
	EventNotificationPublished: NotificationPublishedPayload{},
	EventOrderPlaced:           OrderPlacedPayload{},
	EventOrderShipped:          OrderShippedPayload{},
	EventProductApproved:       ProductApprovedPayload{},
	EventProductLowStock:       ProductLowStockPayload{},
}

// OrderPlacedPayload is emitted when a buyer places an order.
type OrderPlacedPayload struct {
	OrderID  string  `json:"order_id"`
	BuyerID  string  `json:"buyer_id"`
	SellerID string  `json:"seller_id"`
	Items    int     `json:"items"`
	Total    float64 `json:"total"`
}

// OrderShippedPayload is emitted when a seller ships an order.
type OrderShippedPayload struct {
	OrderID        string `json:"order_id"`
	BuyerID        string `json:"buyer_id"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

// InquiryReceivedPayload is emitted when a buyer asks a seller about a product.
type InquiryReceivedPayload struct {
	InquiryID   string `json:"inquiry_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	FromName    string `json:"from_name"`
}

// ProductApprovedPayload is emitted when an admin approves a listing.
type ProductApprovedPayload struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	SellerID    string `json:"seller_id"`
}

// ProductLowStockPayload is emitted when a listing's stock drops below its threshold.
type ProductLowStockPayload struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Remaining   int    `json:"remaining"`
}

// AccountVerifiedPayload is emitted when a user's account is verified.
type AccountVerifiedPayload struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// NotificationPublishedPayload carries a routed notification.
type NotificationPublishedPayload struct {
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Kind    notify.Kind    `json:"kind"`
	Action  *notify.Action `json:"action,omitempty"`
}

// ParseEvent returns the Event named name.
func ParseEvent(name string) (Event, bool) {
	e := Event(name)
	_, ok := Events[e]
	return e, ok
}

// DecodePayload unmarshals raw JSON into the payload type of event.
func DecodePayload(event Event, raw json.RawMessage) (any, error) {
	var (
		payload any
		err     error
	)

	switch event {
	case EventAccountVerified:
		payload, err = decode[AccountVerifiedPayload](raw)
	case EventInquiryReceived:
		payload, err = decode[InquiryReceivedPayload](raw)
	case EventNotificationPublished:
		payload, err = decode[NotificationPublishedPayload](raw)
	case EventOrderPlaced:
		payload, err = decode[OrderPlacedPayload](raw)
	case EventOrderShipped:
		payload, err = decode[OrderShippedPayload](raw)
	case EventProductApproved:
		payload, err = decode[ProductApprovedPayload](raw)
	case EventProductLowStock:
		payload, err = decode[ProductLowStockPayload](raw)
	default:
		return nil, fmt.Errorf("unknown event %q", event)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", event, err)
	}
	return payload, nil
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	err := json.Unmarshal(raw, &v)
	return v, err
}

// RawEvent is the wire form of an event accepted over HTTP and kafka.
type RawEvent struct {
	Type    string          `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload"`
}

// Decode resolves the event name and unmarshals the payload.
func (r RawEvent) Decode() (Event, any, error) {
	event, ok := ParseEvent(r.Type)
	if !ok {
		return "", nil, fmt.Errorf("unknown event %q", r.Type)
	}
	payload, err := DecodePayload(event, r.Payload)
	if err != nil {
		return "", nil, err
	}
	return event, payload, nil
}
