// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package models

// IdentityType is the type tag carried by a user identity in a batch
type IdentityType string

const (
	IdentityTypeEmail    IdentityType = "email"
	IdentityTypeCustomer IdentityType = "customer"
)

// UserIdentity is one (type, value) pair from the batch's identity set.
// The source does not guarantee uniqueness per type so consumers must
// tolerate duplicates; first match wins.
type UserIdentity struct {
	Type  IdentityType `json:"type"`
	Value string       `json:"value"`
}

// DeviceIdentityType is the type tag carried by a device identity in a
// runtime environment
type DeviceIdentityType string

const (
	DeviceIdentityIOSVendorID         DeviceIdentityType = "ios_vendor_id"
	DeviceIdentityIOSAdvertisingID    DeviceIdentityType = "ios_advertising_id"
	DeviceIdentityGoogleAdvertisingID DeviceIdentityType = "google_advertising_id"
	DeviceIdentityAndroidID           DeviceIdentityType = "android_id"
)

// DeviceIdentity is one (type, value) pair from a runtime environment's
// device identity list
type DeviceIdentity struct {
	Type  DeviceIdentityType `json:"type"`
	Value string             `json:"value"`
}

// FirstIdentity returns the value of the first identity of the given
// type in the set, or an empty string when none is present
func FirstIdentity(identities []UserIdentity, iType IdentityType) string {
	for _, identity := range identities {
		if identity.Type == iType {
			return identity.Value
		}
	}
	return ""
}
