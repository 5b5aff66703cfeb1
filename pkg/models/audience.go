// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package models

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// settingListID is the audience subscription setting naming the target
// Iterable list
const settingListID = "listId"

// AudienceAction tags a membership change as an addition or a removal
type AudienceAction string

const (
	AudienceActionAdd    AudienceAction = "add"
	AudienceActionDelete AudienceAction = "delete"
)

// Audience is one membership change action against a named segment
type Audience struct {
	AudienceID           int               `json:"audience_id"`
	AudienceName         string            `json:"audience_name"`
	Action               AudienceAction    `json:"audience_action"`
	SubscriptionSettings map[string]string `json:"audience_subscription_settings"`
}

// ListID parses the target Iterable list ID out of the audience's
// subscription settings
func (a *Audience) ListID() (int, error) {
	raw := a.SubscriptionSettings[settingListID]
	if raw == "" {
		return 0, errors.Errorf("Audience %d is missing subscription setting '%s'", a.AudienceID, settingListID)
	}
	listID, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.Wrapf(err, "Audience %d has malformed subscription setting '%s'", a.AudienceID, settingListID)
	}
	return listID, nil
}

// AudienceProfile is one user's identity set plus the membership
// actions to apply for them
type AudienceProfile struct {
	MpID           string         `json:"mpid"`
	UserIdentities []UserIdentity `json:"user_identities"`
	Audiences      []Audience     `json:"audiences"`
}

// AudienceChangeRequest is the batch of per-user membership changes
// delivered by the host platform
type AudienceChangeRequest struct {
	ID           string            `json:"id"`
	Account      Account           `json:"account"`
	UserProfiles []AudienceProfile `json:"user_profiles"`
}
