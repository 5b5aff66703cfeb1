// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package processor

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/Iterable/firehose-iterable/pkg/models"
	"github.com/Iterable/firehose-iterable/pkg/target"
	"github.com/Iterable/firehose-iterable/pkg/testutil"
)

func testLogger() *log.Entry {
	return log.WithFields(log.Fields{"test": true})
}

// panickingTarget blows up on its first Send and succeeds afterwards
type panickingTarget struct {
	calls int
}

func (p *panickingTarget) Send(req target.Request) (*target.Response, error) {
	p.calls++
	if p.calls == 1 {
		panic("dispatch blew up")
	}
	return testutil.SuccessResponse(), nil
}

func (p *panickingTarget) Open() {}

func (p *panickingTarget) Close() {}

func (p *panickingTarget) GetID() string {
	return "panicking"
}

// TestProcess tests a full batch: the user profile upsert goes out
// first, then each event in timestamp order
func TestProcess(t *testing.T) {
	assert := assert.New(t)

	mock := &testutil.MockTarget{}
	batch := testutil.TestBatch(
		&models.CustomEvent{
			EventHeader: models.EventHeader{ID: "e2", TimestampMs: 2000},
			Name:        "second",
		},
		&models.CustomEvent{
			EventHeader: models.EventHeader{ID: "e1", TimestampMs: 1000},
			Name:        "first",
		},
	)
	batch.UserAttributes = map[string]string{"tier": "gold"}

	result := New(mock).Process(batch, testLogger())

	assert.Equal(int64(3), result.Sent)
	assert.Equal(int64(0), result.Dropped)
	assert.False(result.Retriable)
	assert.Equal(3, len(mock.Sent))

	_, ok := mock.Sent[0].(target.UserUpdateRequest)
	assert.True(ok)

	firstTrack := mock.Sent[1].(target.TrackRequest)
	assert.Equal("first", firstTrack.EventName)
	secondTrack := mock.Sent[2].(target.TrackRequest)
	assert.Equal("second", secondTrack.EventName)
}

// TestProcess_NoUserAttributes tests that no profile upsert goes out
// for a batch without attributes
func TestProcess_NoUserAttributes(t *testing.T) {
	assert := assert.New(t)

	mock := &testutil.MockTarget{}
	batch := testutil.TestBatch(
		&models.CustomEvent{EventHeader: models.EventHeader{ID: "e1"}, Name: "signup"},
	)

	result := New(mock).Process(batch, testLogger())

	assert.Equal(int64(1), result.Sent)
	assert.Equal(1, len(mock.Sent))
	_, ok := mock.Sent[0].(target.TrackRequest)
	assert.True(ok)
}

func TestProcess_InvalidAccountSettings(t *testing.T) {
	assert := assert.New(t)

	mock := &testutil.MockTarget{}
	batch := testutil.TestBatch()
	batch.Account.AccountSettings = map[string]string{}

	result := New(mock).Process(batch, testLogger())

	assert.Equal(int64(1), result.Dropped)
	assert.Equal(0, len(mock.Sent))
	assert.False(result.Retriable)
}

func TestProcess_NoIdentifiableUser(t *testing.T) {
	assert := assert.New(t)

	mock := &testutil.MockTarget{}
	batch := testutil.TestBatch()
	batch.UserIdentities = nil

	result := New(mock).Process(batch, testLogger())

	assert.Equal(int64(1), result.Dropped)
	assert.Equal(0, len(mock.Sent))
	assert.False(result.Retriable)
}

// TestProcess_RetriableAbort tests that the first retriable failure
// stops the batch so later events are not dispatched
func TestProcess_RetriableAbort(t *testing.T) {
	assert := assert.New(t)

	mock := &testutil.MockTarget{
		Responses: []testutil.MockResponse{
			{Response: testutil.FailureResponse(429, `{}`)},
		},
	}
	batch := testutil.TestBatch(
		&models.CustomEvent{EventHeader: models.EventHeader{ID: "e1", TimestampMs: 1000}, Name: "first"},
		&models.CustomEvent{EventHeader: models.EventHeader{ID: "e2", TimestampMs: 2000}, Name: "second"},
	)

	result := New(mock).Process(batch, testLogger())

	assert.True(result.Retriable)
	assert.Equal(models.OutcomeRetriable, result.Disposition())
	assert.Equal(1, len(mock.Sent))
}

// TestProcess_NonRetriableContinues tests that deterministic rejections
// drop the event but keep the batch going
func TestProcess_NonRetriableContinues(t *testing.T) {
	assert := assert.New(t)

	mock := &testutil.MockTarget{
		Responses: []testutil.MockResponse{
			{Response: testutil.FailureResponse(400, `{"code":"InvalidEmailAddressError"}`)},
			{Response: testutil.SuccessResponse()},
		},
	}
	batch := testutil.TestBatch(
		&models.CustomEvent{EventHeader: models.EventHeader{ID: "e1", TimestampMs: 1000}, Name: "first"},
		&models.CustomEvent{EventHeader: models.EventHeader{ID: "e2", TimestampMs: 2000}, Name: "second"},
	)

	result := New(mock).Process(batch, testLogger())

	assert.False(result.Retriable)
	assert.Equal(int64(1), result.Sent)
	assert.Equal(int64(1), result.Dropped)
	assert.Equal(2, len(mock.Sent))
}

// TestProcess_PanicDuringDispatchIsSwallowed tests that a panic while
// dispatching one event is recorded as an unexpected drop and the rest
// of the batch still runs - it must never crash the invocation and
// trap the message in a redelivery loop
func TestProcess_PanicDuringDispatchIsSwallowed(t *testing.T) {
	assert := assert.New(t)

	mock := &panickingTarget{}
	batch := testutil.TestBatch(
		&models.CustomEvent{EventHeader: models.EventHeader{ID: "e1", TimestampMs: 1000}, Name: "first"},
		&models.CustomEvent{EventHeader: models.EventHeader{ID: "e2", TimestampMs: 2000}, Name: "second"},
	)

	var result *models.BatchResult
	assert.NotPanics(func() {
		result = New(mock).Process(batch, testLogger())
	})

	assert.Equal(int64(1), result.Dropped)
	assert.Equal(int64(1), result.Sent)
	assert.False(result.Retriable)
	assert.Equal(2, mock.calls)
	assert.Contains(result.Failures().Error(), "unexpected_failure")
}

// TestProcess_PanicOutsideEventLoopIsSwallowed tests the batch-level
// backstop for panics raised before the event loop starts
func TestProcess_PanicOutsideEventLoopIsSwallowed(t *testing.T) {
	assert := assert.New(t)

	// User attributes force the profile upsert, whose dispatch panics
	mock := &panickingTarget{}
	batch := testutil.TestBatch(
		&models.CustomEvent{EventHeader: models.EventHeader{ID: "e1", TimestampMs: 1000}, Name: "first"},
	)
	batch.UserAttributes = map[string]string{"tier": "gold"}

	var result *models.BatchResult
	assert.NotPanics(func() {
		result = New(mock).Process(batch, testLogger())
	})

	assert.Equal(int64(1), result.Dropped)
	assert.False(result.Retriable)
	assert.Equal(models.OutcomeSuccess, result.Disposition())
}

// TestProcess_BundledSDKSkipsPush tests that push kinds are skipped
// when the Iterable client SDK reports itself in the batch
func TestProcess_BundledSDKSkipsPush(t *testing.T) {
	assert := assert.New(t)

	mock := &testutil.MockTarget{}
	batch := testutil.TestBatch(
		&models.PushSubscriptionEvent{
			EventHeader: models.EventHeader{ID: "e1", TimestampMs: 1000},
			Action:      models.PushSubscriptionActionSubscribe,
			Token:       "token-1",
		},
		&models.CustomEvent{EventHeader: models.EventHeader{ID: "e2", TimestampMs: 2000}, Name: "signup"},
	)
	batch.IntegrationAttributes = map[string]string{"Iterable.sdkVersion": "6.2.0"}
	batch.RuntimeEnvironment = &models.RuntimeEnvironment{Type: models.RuntimeAndroid}

	result := New(mock).Process(batch, testLogger())

	assert.Equal(int64(1), result.Sent)
	assert.Equal(int64(1), result.Skipped)
	assert.Equal(1, len(mock.Sent))
	_, ok := mock.Sent[0].(target.TrackRequest)
	assert.True(ok)
}

// TestProcess_ProofSendSkipped tests the proof send suppression end to
// end through the dispatch loop
func TestProcess_ProofSendSkipped(t *testing.T) {
	assert := assert.New(t)

	mock := &testutil.MockTarget{}
	batch := testutil.TestBatch(
		&models.PushMessageOpenEvent{
			EventHeader: models.EventHeader{ID: "e1", TimestampMs: 1000},
			Payload:     `{"itbl":{"campaignId":0,"templateId":54321,"messageId":"m1"}}`,
		},
	)
	batch.RuntimeEnvironment = &models.RuntimeEnvironment{Type: models.RuntimeIOS}

	result := New(mock).Process(batch, testLogger())

	assert.Equal(int64(1), result.Skipped)
	assert.Equal(int64(0), result.Sent)
	assert.Equal(0, len(mock.Sent))
}

// TestProcess_PlaceholderRename tests the identity change flow against
// a placeholder synthesized in the same invocation
func TestProcess_PlaceholderRename(t *testing.T) {
	assert := assert.New(t)

	mock := &testutil.MockTarget{}
	batch := testutil.TestBatch(
		&models.UserIdentityChangeEvent{
			EventHeader: models.EventHeader{ID: "e1", TimestampMs: 1000},
			Added: []models.UserIdentity{
				{Type: models.IdentityTypeEmail, Value: "real@example.com"},
			},
		},
	)
	batch.UserIdentities = []models.UserIdentity{
		{Type: models.IdentityTypeCustomer, Value: "cust-1"},
	}

	result := New(mock).Process(batch, testLogger())

	assert.Equal(int64(1), result.Sent)
	assert.Equal(1, len(mock.Sent))

	rename := mock.Sent[0].(target.UpdateEmailRequest)
	assert.Equal("cust-1@placeholder.email", rename.CurrentEmail)
	assert.Equal("real@example.com", rename.NewEmail)
}

// TestProcessAudience tests bucketed list dispatch including the
// informational fail count staying a success
func TestProcessAudience(t *testing.T) {
	assert := assert.New(t)

	mock := &testutil.MockTarget{
		Responses: []testutil.MockResponse{
			{Response: testutil.FailureResponse(200, `{"successCount":1,"failCount":1}`)},
		},
	}

	req := &models.AudienceChangeRequest{
		ID: "req-1",
		Account: models.Account{
			AccountSettings: testutil.AccountSettings(nil),
		},
		UserProfiles: []models.AudienceProfile{
			{
				UserIdentities: []models.UserIdentity{
					{Type: models.IdentityTypeEmail, Value: "a@example.com"},
				},
				Audiences: []models.Audience{
					{
						AudienceID:           1,
						Action:               models.AudienceActionAdd,
						SubscriptionSettings: map[string]string{"listId": "100"},
					},
					{
						AudienceID:           2,
						Action:               models.AudienceActionDelete,
						SubscriptionSettings: map[string]string{"listId": "200"},
					},
				},
			},
		},
	}

	result := New(mock).ProcessAudience(req, testLogger())

	assert.Equal(int64(2), result.Sent)
	assert.False(result.Retriable)
	assert.Equal(2, len(mock.Sent))

	subscribe := mock.Sent[0].(target.SubscribeRequest)
	assert.Equal(100, subscribe.ListID)
	unsubscribe := mock.Sent[1].(target.UnsubscribeRequest)
	assert.Equal(200, unsubscribe.ListID)
}

// TestProcessAudience_RetriableAbort tests that a retriable list
// failure stops further dispatches
func TestProcessAudience_RetriableAbort(t *testing.T) {
	assert := assert.New(t)

	mock := &testutil.MockTarget{
		Responses: []testutil.MockResponse{
			{Response: testutil.FailureResponse(502, ``)},
		},
	}

	req := &models.AudienceChangeRequest{
		ID: "req-1",
		Account: models.Account{
			AccountSettings: testutil.AccountSettings(nil),
		},
		UserProfiles: []models.AudienceProfile{
			{
				UserIdentities: []models.UserIdentity{
					{Type: models.IdentityTypeEmail, Value: "a@example.com"},
				},
				Audiences: []models.Audience{
					{
						AudienceID:           1,
						Action:               models.AudienceActionAdd,
						SubscriptionSettings: map[string]string{"listId": "100"},
					},
					{
						AudienceID:           2,
						Action:               models.AudienceActionAdd,
						SubscriptionSettings: map[string]string{"listId": "200"},
					},
				},
			},
		},
	}

	result := New(mock).ProcessAudience(req, testLogger())

	assert.True(result.Retriable)
	assert.Equal(1, len(mock.Sent))
}

// TestProcessAudience_MalformedListID tests that invalid actions are
// recorded as drops without failing the request
func TestProcessAudience_MalformedListID(t *testing.T) {
	assert := assert.New(t)

	mock := &testutil.MockTarget{}

	req := &models.AudienceChangeRequest{
		ID: "req-1",
		Account: models.Account{
			AccountSettings: testutil.AccountSettings(nil),
		},
		UserProfiles: []models.AudienceProfile{
			{
				UserIdentities: []models.UserIdentity{
					{Type: models.IdentityTypeEmail, Value: "a@example.com"},
				},
				Audiences: []models.Audience{
					{
						AudienceID:           1,
						Action:               models.AudienceActionAdd,
						SubscriptionSettings: map[string]string{"listId": "banana"},
					},
				},
			},
		},
	}

	result := New(mock).ProcessAudience(req, testLogger())

	assert.Equal(int64(1), result.Dropped)
	assert.False(result.Retriable)
	assert.Equal(0, len(mock.Sent))
}
