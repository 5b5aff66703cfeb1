// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Iterable/firehose-iterable/pkg/models"
)

func customerIDConfig() *models.AccountConfig {
	return &models.AccountConfig{
		APIKey:      "key",
		UserIDField: models.UserIDFieldCustomerID,
	}
}

func mpidConfig() *models.AccountConfig {
	return &models.AccountConfig{
		APIKey:      "key",
		UserIDField: models.UserIDFieldMPID,
	}
}

// TestPlaceholderEmail_MPID tests that an MPID-keyed account always
// derives the placeholder from the MPID
func TestPlaceholderEmail_MPID(t *testing.T) {
	assert := assert.New(t)

	batch := &models.EventBatch{
		MpID: "8675309",
		RuntimeEnvironment: &models.RuntimeEnvironment{
			Type: models.RuntimeIOS,
			Identities: []models.DeviceIdentity{
				{Type: models.DeviceIdentityIOSVendorID, Value: "idfv-1"},
			},
		},
	}

	email, err := PlaceholderEmail(batch, mpidConfig())
	assert.Nil(err)
	assert.Equal("8675309@placeholder.email", email)
}

// TestPlaceholderEmail_ApplePriority tests that IDFV beats IDFA on
// Apple runtimes
func TestPlaceholderEmail_ApplePriority(t *testing.T) {
	assert := assert.New(t)

	batch := &models.EventBatch{
		RuntimeEnvironment: &models.RuntimeEnvironment{
			Type: models.RuntimeIOS,
			Identities: []models.DeviceIdentity{
				{Type: models.DeviceIdentityIOSAdvertisingID, Value: "idfa-1"},
				{Type: models.DeviceIdentityIOSVendorID, Value: "idfv-1"},
			},
		},
	}

	email, err := PlaceholderEmail(batch, customerIDConfig())
	assert.Nil(err)
	assert.Equal("idfv-1@placeholder.email", email)

	batch.RuntimeEnvironment.Identities = []models.DeviceIdentity{
		{Type: models.DeviceIdentityIOSAdvertisingID, Value: "idfa-1"},
	}
	email, err = PlaceholderEmail(batch, customerIDConfig())
	assert.Nil(err)
	assert.Equal("idfa-1@placeholder.email", email)
}

// TestPlaceholderEmail_AndroidPriority tests that GAID beats the
// Android hardware id
func TestPlaceholderEmail_AndroidPriority(t *testing.T) {
	assert := assert.New(t)

	batch := &models.EventBatch{
		RuntimeEnvironment: &models.RuntimeEnvironment{
			Type: models.RuntimeAndroid,
			Identities: []models.DeviceIdentity{
				{Type: models.DeviceIdentityAndroidID, Value: "android-1"},
				{Type: models.DeviceIdentityGoogleAdvertisingID, Value: "gaid-1"},
			},
		},
	}

	email, err := PlaceholderEmail(batch, customerIDConfig())
	assert.Nil(err)
	assert.Equal("gaid-1@placeholder.email", email)
}

// TestPlaceholderEmail_Fallbacks tests the customer id and device
// application stamp fallbacks
func TestPlaceholderEmail_Fallbacks(t *testing.T) {
	assert := assert.New(t)

	batch := &models.EventBatch{
		UserIdentities: []models.UserIdentity{
			{Type: models.IdentityTypeCustomer, Value: "cust-1"},
		},
		DeviceApplicationStamp: "stamp-1",
	}

	email, err := PlaceholderEmail(batch, customerIDConfig())
	assert.Nil(err)
	assert.Equal("cust-1@placeholder.email", email)

	batch.UserIdentities = nil
	email, err = PlaceholderEmail(batch, customerIDConfig())
	assert.Nil(err)
	assert.Equal("stamp-1@placeholder.email", email)
}

func TestPlaceholderEmail_NoCandidate(t *testing.T) {
	assert := assert.New(t)

	_, err := PlaceholderEmail(&models.EventBatch{}, customerIDConfig())
	assert.Equal(ErrNoIdentifiableUser, err)
}

// TestResolveUserFields tests the email/userId pairing under both
// account user id modes
func TestResolveUserFields(t *testing.T) {
	assert := assert.New(t)

	identities := []models.UserIdentity{
		{Type: models.IdentityTypeCustomer, Value: "cust-1"},
		{Type: models.IdentityTypeEmail, Value: "user@example.com"},
		{Type: models.IdentityTypeEmail, Value: "second@example.com"},
	}

	// First email wins, customer id maps to userId
	email, userID := ResolveUserFields(identities, customerIDConfig(), "8675309")
	assert.Equal("user@example.com", email)
	assert.Equal("cust-1", userID)

	// MPID mode swaps the userId source
	email, userID = ResolveUserFields(identities, mpidConfig(), "8675309")
	assert.Equal("user@example.com", email)
	assert.Equal("8675309", userID)

	// MPID mode with no email falls back to the derived placeholder
	email, userID = ResolveUserFields(nil, mpidConfig(), "8675309")
	assert.Equal("8675309@placeholder.email", email)
	assert.Equal("8675309", userID)
}

// TestInsertPlaceholderEmail tests the mutating injection and that
// batches with a real email are left untouched
func TestInsertPlaceholderEmail(t *testing.T) {
	assert := assert.New(t)

	batch := &models.EventBatch{
		UserIdentities: []models.UserIdentity{
			{Type: models.IdentityTypeCustomer, Value: "cust-1"},
		},
	}

	placeholder, err := InsertPlaceholderEmail(batch, customerIDConfig())
	assert.Nil(err)
	assert.Equal("cust-1@placeholder.email", placeholder)
	assert.True(batch.HasEmailIdentity())

	withEmail := &models.EventBatch{
		UserIdentities: []models.UserIdentity{
			{Type: models.IdentityTypeEmail, Value: "user@example.com"},
		},
	}
	placeholder, err = InsertPlaceholderEmail(withEmail, customerIDConfig())
	assert.Nil(err)
	assert.Equal("", placeholder)
	assert.Equal(1, len(withEmail.UserIdentities))
}
