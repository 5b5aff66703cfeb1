// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package models

// RuntimeType tags the platform a batch originated from
type RuntimeType string

const (
	RuntimeAndroid RuntimeType = "android"
	RuntimeIOS     RuntimeType = "ios"
	RuntimeTVOS    RuntimeType = "tvos"
	RuntimeWeb     RuntimeType = "web"
	RuntimeUnknown RuntimeType = "unknown"
)

// RuntimeEnvironment describes the platform context of a batch along
// with any platform-specific device identifiers
type RuntimeEnvironment struct {
	Type        RuntimeType      `json:"type"`
	IsSandboxed bool             `json:"is_sandboxed"`
	Identities  []DeviceIdentity `json:"identities"`
}

// DeviceIdentityValue returns the value of the first device identity of
// the given type, or an empty string when none is present
func (r *RuntimeEnvironment) DeviceIdentityValue(dType DeviceIdentityType) string {
	if r == nil {
		return ""
	}
	for _, identity := range r.Identities {
		if identity.Type == dType {
			return identity.Value
		}
	}
	return ""
}

// IsApple returns true for the iOS and tvOS runtimes which share both
// device identity semantics and push payload encoding
func (r *RuntimeEnvironment) IsApple() bool {
	return r != nil && (r.Type == RuntimeIOS || r.Type == RuntimeTVOS)
}

// IsAndroid returns true for the Android runtime
func (r *RuntimeEnvironment) IsAndroid() bool {
	return r != nil && r.Type == RuntimeAndroid
}
