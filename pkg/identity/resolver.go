// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package identity

import (
	"github.com/pkg/errors"

	"github.com/Iterable/firehose-iterable/pkg/models"
)

// PlaceholderEmailDomain is the fixed suffix appended to a synthesized
// identifier so it satisfies Iterable's email-shaped identity model.
// See https://support.iterable.com/hc/en-us/articles/208499956
const PlaceholderEmailDomain = "@placeholder.email"

// ErrNoIdentifiableUser is returned when no candidate exists from which
// to synthesize a placeholder email
var ErrNoIdentifiableUser = errors.New("no email and unable to construct placeholder - user has no identifiable fields")

// PlaceholderEmail synthesizes an email-shaped identifier for a batch
// with no real EMAIL identity. Candidates in priority order:
//
// 1. MPID, when the account selects it as the user id field
// 2. Platform device identifiers (IDFV > IDFA on iOS/tvOS, GAID >
//    ANDROID_ID on Android)
// 3. Customer identity
// 4. Device application stamp
//
// The winning candidate is suffixed with the placeholder domain. When
// none exists ErrNoIdentifiableUser is returned.
func PlaceholderEmail(batch *models.EventBatch, cfg *models.AccountConfig) (string, error) {
	var id string

	if cfg.UseMPID() {
		id = batch.MpID
	} else {
		env := batch.RuntimeEnvironment
		if env.IsApple() {
			id = env.DeviceIdentityValue(models.DeviceIdentityIOSVendorID)
			if id == "" {
				id = env.DeviceIdentityValue(models.DeviceIdentityIOSAdvertisingID)
			}
		} else if env.IsAndroid() {
			id = env.DeviceIdentityValue(models.DeviceIdentityGoogleAdvertisingID)
			if id == "" {
				id = env.DeviceIdentityValue(models.DeviceIdentityAndroidID)
			}
		}

		if id == "" {
			id = models.FirstIdentity(batch.UserIdentities, models.IdentityTypeCustomer)
		}
		if id == "" {
			id = batch.DeviceApplicationStamp
		}
	}

	if id == "" {
		return "", ErrNoIdentifiableUser
	}
	return id + PlaceholderEmailDomain, nil
}

// ResolveUserFields maps an identity set into the (email, userId) pair
// every outbound request carries. The EMAIL identity wins for email;
// the customer identity maps to userId unless the account selects MPID,
// in which case userId is the MPID and a missing email falls back to
// the MPID-derived placeholder. First match wins on duplicate types.
func ResolveUserFields(identities []models.UserIdentity, cfg *models.AccountConfig, mpID string) (email string, userID string) {
	email = models.FirstIdentity(identities, models.IdentityTypeEmail)

	if cfg.UseMPID() {
		userID = mpID
		if email == "" && mpID != "" {
			email = mpID + PlaceholderEmailDomain
		}
		return email, userID
	}

	userID = models.FirstIdentity(identities, models.IdentityTypeCustomer)
	return email, userID
}

// InsertPlaceholderEmail synthesizes and injects a placeholder EMAIL
// identity into a batch that has none, returning the placeholder value.
// Batches that already carry an email are left untouched.
func InsertPlaceholderEmail(batch *models.EventBatch, cfg *models.AccountConfig) (string, error) {
	if batch.HasEmailIdentity() {
		return "", nil
	}
	placeholder, err := PlaceholderEmail(batch, cfg)
	if err != nil {
		return "", err
	}
	batch.UserIdentities = append(batch.UserIdentities, models.UserIdentity{
		Type:  models.IdentityTypeEmail,
		Value: placeholder,
	})
	return placeholder, nil
}
