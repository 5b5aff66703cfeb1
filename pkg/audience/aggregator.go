// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package audience

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/Iterable/firehose-iterable/pkg/identity"
	"github.com/Iterable/firehose-iterable/pkg/models"
	"github.com/Iterable/firehose-iterable/pkg/target"
)

// Diff holds per-list-ID subscriber buckets produced from a membership
// change request; one subscribe and one unsubscribe call is dispatched
// per populated bucket, not per user
type Diff struct {
	Additions map[int][]target.APIUser
	Removals  map[int][]target.APIUser
}

// Aggregate partitions each profile's membership actions into per-list
// addition and removal buckets. The profile's (email, userId) pair is
// resolved once; a user without an email is excluded entirely. Actions
// with an unparseable list ID cannot succeed on redelivery either, so
// they are collected as invalid rather than failing the batch.
func Aggregate(req *models.AudienceChangeRequest, cfg *models.AccountConfig) (*Diff, []error) {
	diff := &Diff{
		Additions: map[int][]target.APIUser{},
		Removals:  map[int][]target.APIUser{},
	}
	var invalid []error

	for _, profile := range req.UserProfiles {
		email, userID := identity.ResolveUserFields(profile.UserIdentities, cfg, profile.MpID)
		if email == "" {
			continue
		}
		subscriber := target.APIUser{Email: email, UserID: userID}

		for _, aud := range profile.Audiences {
			listID, err := aud.ListID()
			if err != nil {
				invalid = append(invalid, errors.Wrapf(err, "Skipping audience action for '%s'", email))
				continue
			}

			switch aud.Action {
			case models.AudienceActionAdd:
				diff.Additions[listID] = append(diff.Additions[listID], subscriber)
			case models.AudienceActionDelete:
				diff.Removals[listID] = append(diff.Removals[listID], subscriber)
			}
		}
	}

	return diff, invalid
}

// Requests flattens the diff into the subscribe and unsubscribe calls
// to dispatch, ordered by list ID so redeliveries replay in the same
// order
func (d *Diff) Requests() ([]target.SubscribeRequest, []target.UnsubscribeRequest) {
	subscribes := make([]target.SubscribeRequest, 0, len(d.Additions))
	for _, listID := range sortedListIDs(d.Additions) {
		subscribes = append(subscribes, target.SubscribeRequest{
			ListID:      listID,
			Subscribers: d.Additions[listID],
		})
	}

	unsubscribes := make([]target.UnsubscribeRequest, 0, len(d.Removals))
	for _, listID := range sortedListIDs(d.Removals) {
		unsubscribes = append(unsubscribes, target.UnsubscribeRequest{
			ListID:      listID,
			Subscribers: d.Removals[listID],
		})
	}

	return subscribes, unsubscribes
}

func sortedListIDs(buckets map[int][]target.APIUser) []int {
	listIDs := make([]int, 0, len(buckets))
	for listID := range buckets {
		listIDs = append(listIDs, listID)
	}
	sort.Ints(listIDs)
	return listIDs
}
