// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEventBatch_UnmarshalJSON tests that the envelope decodes and each
// events entry dispatches on its type tag
func TestEventBatch_UnmarshalJSON(t *testing.T) {
	assert := assert.New(t)

	raw := `{
		"id": "batch-1",
		"account": {
			"account_id": 42,
			"account_settings": {"apiKey": "key"}
		},
		"user_identities": [
			{"type": "email", "value": "user@example.com"}
		],
		"user_attributes": {"tier": "gold"},
		"integration_attributes": {"Iterable.sdkVersion": "6.2.0"},
		"runtime_environment": {"type": "android", "is_sandboxed": false},
		"device_application_stamp": "stamp-1",
		"mpid": "8675309",
		"events": [
			{"type": "custom_event", "id": "e1", "timestamp_ms": 2000, "name": "signup"},
			{"type": "product_action", "id": "e2", "timestamp_ms": 1000, "action": "purchase"},
			{"type": "something_new", "id": "e3", "timestamp_ms": 3000}
		]
	}`

	var batch EventBatch
	assert.Nil(json.Unmarshal([]byte(raw), &batch))

	assert.Equal("batch-1", batch.ID)
	assert.Equal(int64(42), batch.Account.AccountID)
	assert.Equal("8675309", batch.MpID)
	assert.Equal("stamp-1", batch.DeviceApplicationStamp)
	assert.True(batch.HasEmailIdentity())
	assert.True(batch.HasBundledSDK())
	assert.True(batch.RuntimeEnvironment.IsAndroid())

	// The unrecognized third event is dropped, not an error
	assert.Equal(2, len(batch.Events))

	custom, ok := batch.Events[0].(*CustomEvent)
	assert.True(ok)
	assert.Equal("signup", custom.Name)
	assert.Equal("e1", custom.EventID())

	batch.SortEventsByTimestamp()
	assert.Equal("e2", batch.Events[0].EventID())
	assert.Equal("e1", batch.Events[1].EventID())
}

// TestEventBatch_SortStable tests that events sharing a timestamp keep
// their original relative order
func TestEventBatch_SortStable(t *testing.T) {
	assert := assert.New(t)

	batch := EventBatch{
		Events: []Event{
			&CustomEvent{EventHeader: EventHeader{ID: "a", TimestampMs: 100}},
			&CustomEvent{EventHeader: EventHeader{ID: "b", TimestampMs: 100}},
			&CustomEvent{EventHeader: EventHeader{ID: "c", TimestampMs: 50}},
		},
	}
	batch.SortEventsByTimestamp()

	assert.Equal("c", batch.Events[0].EventID())
	assert.Equal("a", batch.Events[1].EventID())
	assert.Equal("b", batch.Events[2].EventID())
}

func TestEventBatch_HasBundledSDK(t *testing.T) {
	assert := assert.New(t)

	assert.False((&EventBatch{}).HasBundledSDK())
	assert.False((&EventBatch{IntegrationAttributes: map[string]string{"Other.sdkVersion": "1"}}).HasBundledSDK())
	assert.True((&EventBatch{IntegrationAttributes: map[string]string{"Iterable.sdkVersion": "6.2.0"}}).HasBundledSDK())
}

func TestEventHeader_TimestampSeconds(t *testing.T) {
	assert := assert.New(t)

	header := EventHeader{TimestampMs: 1650000000999}
	assert.Equal(int64(1650000000999), header.TimestampMillis())
	assert.Equal(int64(1650000000), header.TimestampSeconds())
}

func TestIsPushKind(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsPushKind(EventTypePushSubscription))
	assert.True(IsPushKind(EventTypePushMessageOpen))
	assert.True(IsPushKind(EventTypePushMessageReceipt))
	assert.False(IsPushKind(EventTypeCustom))
	assert.False(IsPushKind(EventTypeUserIdentityChange))
}
