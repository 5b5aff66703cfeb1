// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package translate

import (
	"github.com/Iterable/firehose-iterable/pkg/models"
	"github.com/Iterable/firehose-iterable/pkg/target"
)

// UserIdentityChangeEvent translates an identity change into an
// updateEmail request. Only two shapes are recognized:
//
// (a) an EMAIL identity added with nothing removed, while a placeholder
//     email was synthesized for this batch - the placeholder is renamed
//     to the new address
// (b) an EMAIL identity added and an old value removed in the same
//     change - the old address is renamed to the new one
//
// Every other identity-change shape produces no dispatch.
func UserIdentityChangeEvent(ctx *Context, event *models.UserIdentityChangeEvent) (Result, error) {
	if len(event.Added) == 0 || event.Added[0].Type != models.IdentityTypeEmail || event.Added[0].Value == "" {
		return skip("identity change does not add an email")
	}
	newEmail := event.Added[0].Value

	if len(event.Removed) == 0 {
		if ctx.PlaceholderEmail == "" {
			return skip("email added but no placeholder email exists to rename")
		}
		return dispatch(target.UpdateEmailRequest{
			CurrentEmail: ctx.PlaceholderEmail,
			NewEmail:     newEmail,
		})
	}

	oldEmail := event.Removed[0].Value
	if oldEmail == "" {
		return skip("identity change removes an empty email")
	}

	return dispatch(target.UpdateEmailRequest{
		CurrentEmail: oldEmail,
		NewEmail:     newEmail,
	})
}
