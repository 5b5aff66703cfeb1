// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package translate

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Iterable/firehose-iterable/pkg/models"
	"github.com/Iterable/firehose-iterable/pkg/target"
	"github.com/Iterable/firehose-iterable/pkg/transform"
)

// updateSubscriptionsEventName is the reserved custom event name that
// is intercepted before generic translation and mapped to an
// updateSubscriptions request instead of a track call
const updateSubscriptionsEventName = "subscriptionsUpdated"

// Attribute keys recognized on the reserved subscription event
const (
	emailListIDsKey            = "emailListIds"
	unsubscribedChannelIDsKey  = "unsubscribedChannelIds"
	unsubscribedMessageTypeKey = "unsubscribedMessageTypeIds"
	campaignIDKey              = "campaignId"
	templateIDKey              = "templateId"
)

// CustomEvent translates a custom event into a track request, or into
// an updateSubscriptions request when the reserved event name matches.
// Event attributes are always coerced to scalars; the account-level
// coercion setting only governs user attributes.
func CustomEvent(ctx *Context, event *models.CustomEvent) (Result, error) {
	if strings.EqualFold(event.Name, updateSubscriptionsEventName) {
		return subscriptionUpdate(ctx, event)
	}

	if ctx.User.Empty() {
		return skip("custom event has no email or userId to attach to")
	}

	return dispatch(target.TrackRequest{
		UserFields: ctx.User,
		EventName:  event.Name,
		ID:         event.ID,
		CreatedAt:  event.TimestampSeconds(),
		DataFields: transform.CoerceTypes(event.Attributes),
	})
}

// subscriptionUpdate maps the reserved event's attributes onto an
// updateSubscriptions request. Malformed tokens in the list attributes
// fail loudly since the lists are required for correctness; malformed
// campaignId/templateId values are silently ignored.
func subscriptionUpdate(ctx *Context, event *models.CustomEvent) (Result, error) {
	if ctx.User.Empty() {
		return skip("subscription update has no email or userId to attach to")
	}

	req := target.UpdateSubscriptionsRequest{UserFields: ctx.User}

	var err error
	if req.EmailListIDs, err = ParseIntList(event.Attributes[emailListIDsKey]); err != nil {
		return Result{}, errors.Wrapf(err, "Malformed '%s' attribute on subscription update", emailListIDsKey)
	}
	if req.UnsubscribedChannelIDs, err = ParseIntList(event.Attributes[unsubscribedChannelIDsKey]); err != nil {
		return Result{}, errors.Wrapf(err, "Malformed '%s' attribute on subscription update", unsubscribedChannelIDsKey)
	}
	if req.UnsubscribedMessageTypeIDs, err = ParseIntList(event.Attributes[unsubscribedMessageTypeKey]); err != nil {
		return Result{}, errors.Wrapf(err, "Malformed '%s' attribute on subscription update", unsubscribedMessageTypeKey)
	}

	if raw := event.Attributes[campaignIDKey]; raw != "" {
		if campaignID, convErr := strconv.Atoi(strings.TrimSpace(raw)); convErr == nil {
			req.CampaignID = campaignID
		}
	}
	if raw := event.Attributes[templateIDKey]; raw != "" {
		if templateID, convErr := strconv.Atoi(strings.TrimSpace(raw)); convErr == nil {
			req.TemplateID = templateID
		}
	}

	return dispatch(req)
}

// ParseIntList parses a comma-separated integer list, trimming
// whitespace around each token. An empty string parses to an empty
// list; a malformed token is an error.
func ParseIntList(csv string) ([]int, error) {
	if csv == "" {
		return []int{}, nil
	}

	var list []int
	for _, token := range strings.Split(csv, ",") {
		value, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			return nil, errors.Wrapf(err, "Invalid integer list token '%s'", token)
		}
		list = append(list, value)
	}
	return list, nil
}
