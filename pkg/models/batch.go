// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package models

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
)

// IntegrationAttributeSDKVersion is set in a batch's integration
// attributes when the Iterable client SDK is bundled with the app, in
// which case push token registration and push open tracking are already
// handled on-device
const IntegrationAttributeSDKVersion = "Iterable.sdkVersion"

// EventBatch is one invocation's worth of events for a single user
// context, together with the identity, attribute and account state the
// translators need
type EventBatch struct {
	ID                     string              `json:"id"`
	Account                Account             `json:"account"`
	UserIdentities         []UserIdentity      `json:"user_identities"`
	UserAttributes         map[string]string   `json:"user_attributes"`
	IntegrationAttributes  map[string]string   `json:"integration_attributes"`
	RuntimeEnvironment     *RuntimeEnvironment `json:"runtime_environment"`
	DeviceApplicationStamp string              `json:"device_application_stamp"`
	MpID                   string              `json:"mpid"`

	Events []Event `json:"-"`
}

// eventEnvelope is the wire shape of one entry in the events array; the
// type tag selects the concrete event struct the raw fields decode into
type eventEnvelope struct {
	Type EventType `json:"type"`
}

// batchAlias avoids recursing into EventBatch.UnmarshalJSON while still
// decoding the envelope fields in one pass
type batchAlias EventBatch

type batchEnvelope struct {
	batchAlias
	Events []json.RawMessage `json:"events"`
}

// UnmarshalJSON decodes the batch envelope, dispatching each entry of
// the events array on its type tag. Events with an unrecognized tag are
// dropped rather than failing the batch.
func (b *EventBatch) UnmarshalJSON(data []byte) error {
	var envelope batchEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	*b = EventBatch(envelope.batchAlias)

	for _, raw := range envelope.Events {
		event, err := decodeEvent(raw)
		if err != nil {
			return err
		}
		if event != nil {
			b.Events = append(b.Events, event)
		}
	}
	return nil
}

func decodeEvent(raw json.RawMessage) (Event, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Wrap(err, "Failed to decode event envelope")
	}

	var event Event
	switch envelope.Type {
	case EventTypeCustom:
		event = &CustomEvent{}
	case EventTypeProductAction:
		event = &ProductActionEvent{}
	case EventTypePushSubscription:
		event = &PushSubscriptionEvent{}
	case EventTypePushMessageOpen:
		event = &PushMessageOpenEvent{}
	case EventTypePushMessageReceipt:
		event = &PushMessageReceiptEvent{}
	case EventTypeUserIdentityChange:
		event = &UserIdentityChangeEvent{}
	default:
		return nil, nil
	}

	if err := json.Unmarshal(raw, event); err != nil {
		return nil, errors.Wrapf(err, "Failed to decode %s event", envelope.Type)
	}
	return event, nil
}

// HasEmailIdentity reports whether the batch carries at least one EMAIL
// identity
func (b *EventBatch) HasEmailIdentity() bool {
	return FirstIdentity(b.UserIdentities, IdentityTypeEmail) != ""
}

// HasBundledSDK reports whether the batch was produced by an app with
// the Iterable client SDK installed
func (b *EventBatch) HasBundledSDK() bool {
	if b.IntegrationAttributes == nil {
		return false
	}
	return b.IntegrationAttributes[IntegrationAttributeSDKVersion] != ""
}

// SortEventsByTimestamp stable-sorts the batch's events by ascending
// timestamp. Events sharing a timestamp keep their original relative
// order; identity-change events must be applied before dependent
// translations that reference the new identity.
func (b *EventBatch) SortEventsByTimestamp() {
	sort.SliceStable(b.Events, func(i, j int) bool {
		return b.Events[i].TimestampMillis() < b.Events[j].TimestampMillis()
	})
}
