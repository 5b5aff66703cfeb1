// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package translate

import (
	"fmt"

	"github.com/Iterable/firehose-iterable/pkg/models"
	"github.com/Iterable/firehose-iterable/pkg/target"
)

// Context carries the per-batch state every translator needs: the batch
// itself, the decoded account settings, the user fields resolved once
// per batch, and the placeholder email when one was synthesized for
// this invocation.
type Context struct {
	Batch            *models.EventBatch
	Config           *models.AccountConfig
	PlaceholderEmail string
	User             target.UserFields
}

// Result is the product of translating one event: either an outbound
// request, or an intentional skip with its reason
type Result struct {
	Request    target.Request
	Skip       bool
	SkipReason string
}

func skip(format string, args ...interface{}) (Result, error) {
	return Result{Skip: true, SkipReason: fmt.Sprintf(format, args...)}, nil
}

func dispatch(req target.Request) (Result, error) {
	return Result{Request: req}, nil
}

// Event translates one event into its outbound request. A returned
// error is an engine-side construction failure (ProcessingFailure); a
// skipped result is an intentional no-dispatch.
func Event(ctx *Context, event models.Event) (Result, error) {
	switch e := event.(type) {
	case *models.CustomEvent:
		return CustomEvent(ctx, e)
	case *models.ProductActionEvent:
		return ProductActionEvent(ctx, e)
	case *models.PushSubscriptionEvent:
		return PushSubscriptionEvent(ctx, e)
	case *models.PushMessageOpenEvent:
		return PushMessageEvent(ctx, e.EventHeader, e.Payload)
	case *models.PushMessageReceiptEvent:
		return PushMessageEvent(ctx, e.EventHeader, e.Payload)
	case *models.UserIdentityChangeEvent:
		return UserIdentityChangeEvent(ctx, e)
	default:
		return skip("no translator for event type '%s'", event.Type())
	}
}
