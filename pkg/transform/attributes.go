// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package transform

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// mparticleReservedPhoneAttr is the platform-reserved phone number
	// key on inbound attribute maps
	mparticleReservedPhoneAttr = "$Mobile"

	// iterablePhoneAttr is the profile field Iterable expects phone
	// numbers under
	iterablePhoneAttr = "phoneNumber"
)

var phoneStripPattern = regexp.MustCompile(`[^0-9+]`)

// ConvertUserAttributes maps a raw user attribute map into the typed
// data fields sent to Iterable: reserved keys are remapped and, when
// the account opts in, string values are coerced to scalars. A nil
// input stays nil.
func ConvertUserAttributes(attributes map[string]string, coerceStringsToScalars bool) map[string]interface{} {
	if attributes == nil {
		return nil
	}
	remapped := convertReservedAttributes(attributes)

	if coerceStringsToScalars {
		return CoerceTypes(remapped)
	}

	converted := make(map[string]interface{}, len(remapped))
	for key, value := range remapped {
		converted[key] = value
	}
	return converted
}

// convertReservedAttributes renames platform-reserved keys to their
// Iterable equivalents; the phone number value is stripped down to
// digits and a leading plus
func convertReservedAttributes(attributes map[string]string) map[string]string {
	converted := make(map[string]string, len(attributes))
	for key, value := range attributes {
		converted[key] = value
	}
	if phone, ok := converted[mparticleReservedPhoneAttr]; ok {
		converted[iterablePhoneAttr] = phoneStripPattern.ReplaceAllString(phone, "")
		delete(converted, mparticleReservedPhoneAttr)
	}
	return converted
}

// CoerceTypes makes a best-effort attempt to coerce each string value
// to a bool, int or float. The inbound API only carries strings whereas
// Iterable accepts typed fields; coercion lets campaigns aggregate on
// numeric attributes. A nil input stays nil.
func CoerceTypes(attributes map[string]string) map[string]interface{} {
	if attributes == nil {
		return nil
	}
	converted := make(map[string]interface{}, len(attributes))
	for key, value := range attributes {
		converted[key] = coerceValue(value)
	}
	return converted
}

// coerceValue pins the coercion rules: empty strings stay strings,
// "true"/"false" in any case become bools, whole numbers become ints
// only when the literal is a valid base-10 integer (so "1.0" stays a
// string), any other parseable number becomes a float
func coerceValue(value string) interface{} {
	if value == "" {
		return value
	}

	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	if math.Trunc(floatValue) == floatValue {
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return value
		}
		return intValue
	}
	return floatValue
}
