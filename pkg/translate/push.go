// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package translate

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"

	"github.com/Iterable/firehose-iterable/pkg/models"
	"github.com/Iterable/firehose-iterable/pkg/target"
)

// itblPayloadKey is the field of the push payload carrying Iterable's
// campaign metadata
const itblPayloadKey = "itbl"

// PushSubscriptionEvent translates a push token registration into a
// registerDeviceToken request. Unsubscribe actions produce no dispatch;
// the platform and application name come from the runtime environment
// and the matching account setting.
func PushSubscriptionEvent(ctx *Context, event *models.PushSubscriptionEvent) (Result, error) {
	if event.Action == models.PushSubscriptionActionUnsubscribe {
		return skip("push unsubscribe actions are not forwarded")
	}

	env := ctx.Batch.RuntimeEnvironment

	var device target.Device
	switch {
	case env != nil && env.Type == models.RuntimeIOS:
		if env.IsSandboxed {
			device.Platform = target.PlatformAPNSSandbox
			device.ApplicationName = ctx.Config.APNSSandboxIntegrationName
		} else {
			device.Platform = target.PlatformAPNS
			device.ApplicationName = ctx.Config.APNSProdIntegrationName
		}
	case env != nil && env.Type == models.RuntimeAndroid:
		device.Platform = target.PlatformGCM
		device.ApplicationName = ctx.Config.GCMIntegrationName
	default:
		return Result{}, errors.New("cannot register push token for unknown runtime environment")
	}
	device.Token = event.Token

	email := models.FirstIdentity(ctx.Batch.UserIdentities, models.IdentityTypeEmail)
	if email == "" {
		return Result{}, errors.New("cannot register push token - user has no email")
	}

	return dispatch(target.RegisterDeviceTokenRequest{
		UserFields: target.UserFields{Email: email},
		Device:     device,
	})
}

// PushMessageEvent translates a push open or receipt into a
// trackPushOpen request. The payload's inner itbl field is platform
// encoded - a JSON string literal on Android, a nested object on
// iOS/tvOS - so decoding branches once on the runtime environment tag.
// A campaignId or templateId of zero marks a proof send and suppresses
// the dispatch entirely.
func PushMessageEvent(ctx *Context, header models.EventHeader, payload string) (Result, error) {
	if payload == "" || len(ctx.Batch.UserIdentities) == 0 {
		return skip("push message has no payload or user identities")
	}
	if ctx.User.Empty() {
		return Result{}, errors.New("cannot track push open - user has no email or customer id")
	}

	itbl, err := decodeItblPayload(ctx.Batch.RuntimeEnvironment, payload)
	if err != nil {
		return Result{}, err
	}
	if itbl == nil {
		return skip("push payload carries no Iterable metadata")
	}

	campaignID := payloadFieldToInt(itbl[campaignIDKey])
	templateID := payloadFieldToInt(itbl[templateIDKey])
	if campaignID == 0 || templateID == 0 {
		// Proof sends don't have a campaignId
		return skip("push payload is a proof send")
	}

	messageID, _ := itbl["messageId"].(string)

	return dispatch(target.TrackPushOpenRequest{
		UserFields: ctx.User,
		CampaignID: campaignID,
		TemplateID: templateID,
		MessageID:  messageID,
		CreatedAt:  header.TimestampSeconds(),
	})
}

// decodeItblPayload extracts the itbl object from a push payload. A
// missing itbl field returns nil with no error.
func decodeItblPayload(env *models.RuntimeEnvironment, payload string) (map[string]interface{}, error) {
	var outer map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &outer); err != nil {
		return nil, errors.Wrap(err, "Failed to decode push payload")
	}

	raw, ok := outer[itblPayloadKey]
	if !ok {
		return nil, nil
	}

	if env.IsAndroid() {
		encoded, ok := raw.(string)
		if !ok {
			return nil, errors.New("Android push payload itbl field is not a JSON string literal")
		}
		var itbl map[string]interface{}
		if err := json.Unmarshal([]byte(encoded), &itbl); err != nil {
			return nil, errors.Wrap(err, "Failed to decode Android push payload itbl field")
		}
		return itbl, nil
	}

	itbl, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.New("push payload itbl field is not an object")
	}
	return itbl, nil
}

// payloadFieldToInt maps a decoded payload field to an int. Only whole
// JSON numbers count; anything else collapses to zero, which callers
// treat as a proof send.
func payloadFieldToInt(field interface{}) int {
	number, ok := field.(float64)
	if !ok {
		return 0
	}
	if math.Trunc(number) != number {
		return 0
	}
	return int(number)
}
