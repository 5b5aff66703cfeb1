// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package models

// EventType is the discriminator tag carried by every event on the wire
type EventType string

const (
	EventTypeCustom             EventType = "custom_event"
	EventTypeProductAction      EventType = "product_action"
	EventTypePushSubscription   EventType = "push_subscription"
	EventTypePushMessageOpen    EventType = "push_message_open"
	EventTypePushMessageReceipt EventType = "push_message_receipt"
	EventTypeUserIdentityChange EventType = "user_identity_change"
)

// Event is the interface shared by all event kinds in a batch
type Event interface {
	Type() EventType
	EventID() string
	TimestampMillis() int64
}

// EventHeader carries the fields common to every event kind
type EventHeader struct {
	ID          string `json:"id"`
	TimestampMs int64  `json:"timestamp_ms"`
}

// EventID returns the event's optional stable identifier
func (h EventHeader) EventID() string {
	return h.ID
}

// TimestampMillis returns the event timestamp in epoch millis
func (h EventHeader) TimestampMillis() int64 {
	return h.TimestampMs
}

// TimestampSeconds returns the event timestamp truncated to epoch
// seconds, the granularity Iterable expects for createdAt
func (h EventHeader) TimestampSeconds() int64 {
	return h.TimestampMs / 1000
}

// CustomEvent is an application-defined event with a name and a
// loosely-typed attribute map
type CustomEvent struct {
	EventHeader
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes"`
}

// Type implements Event
func (e *CustomEvent) Type() EventType {
	return EventTypeCustom
}

// ProductAction enumerates commerce actions on a product action event
type ProductAction string

// ProductActionPurchase is the only action the engine forwards
const ProductActionPurchase ProductAction = "purchase"

// Product is one commerce item attached to a product action event
type Product struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Category   string            `json:"category"`
	Price      float64           `json:"price"`
	Quantity   float64           `json:"quantity"`
	Attributes map[string]string `json:"attributes"`
}

// ProductActionEvent is a commerce event carrying a product list and
// the action performed on it
type ProductActionEvent struct {
	EventHeader
	Action      ProductAction `json:"action"`
	TotalAmount float64       `json:"total_amount"`
	Products    []Product     `json:"products"`
}

// Type implements Event
func (e *ProductActionEvent) Type() EventType {
	return EventTypeProductAction
}

// PushSubscriptionAction enumerates push subscription changes
type PushSubscriptionAction string

const (
	PushSubscriptionActionSubscribe   PushSubscriptionAction = "subscribe"
	PushSubscriptionActionUnsubscribe PushSubscriptionAction = "unsubscribe"
)

// PushSubscriptionEvent signals a device's push token being registered
// or revoked
type PushSubscriptionEvent struct {
	EventHeader
	Action PushSubscriptionAction `json:"action"`
	Token  string                 `json:"token"`
}

// Type implements Event
func (e *PushSubscriptionEvent) Type() EventType {
	return EventTypePushSubscription
}

// PushMessageOpenEvent signals a push notification being opened; its
// payload is the platform-encoded notification JSON
type PushMessageOpenEvent struct {
	EventHeader
	Payload string `json:"payload"`
}

// Type implements Event
func (e *PushMessageOpenEvent) Type() EventType {
	return EventTypePushMessageOpen
}

// PushMessageReceiptEvent signals a push notification being received
type PushMessageReceiptEvent struct {
	EventHeader
	Payload string `json:"payload"`
}

// Type implements Event
func (e *PushMessageReceiptEvent) Type() EventType {
	return EventTypePushMessageReceipt
}

// UserIdentityChangeEvent carries identity add/remove pairs for the
// batch's user
type UserIdentityChangeEvent struct {
	EventHeader
	Added   []UserIdentity `json:"added"`
	Removed []UserIdentity `json:"removed"`
}

// Type implements Event
func (e *UserIdentityChangeEvent) Type() EventType {
	return EventTypeUserIdentityChange
}

// IsPushKind reports whether an event kind is handled on-device when a
// bundled vendor SDK is present
func IsPushKind(eType EventType) bool {
	switch eType {
	case EventTypePushSubscription, EventTypePushMessageOpen, EventTypePushMessageReceipt:
		return true
	default:
		return false
	}
}
