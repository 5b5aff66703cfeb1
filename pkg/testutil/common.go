// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package testutil

import (
	"github.com/Iterable/firehose-iterable/pkg/models"
	"github.com/Iterable/firehose-iterable/pkg/target"
)

// MockTarget records every dispatched request and replays scripted
// responses, for driving the orchestrator in tests
type MockTarget struct {
	// Sent holds every request dispatched through the target in order
	Sent []target.Request

	// Responses are replayed in order; when exhausted, SuccessResponse
	// is returned
	Responses []MockResponse
}

// MockResponse is one scripted Send result
type MockResponse struct {
	Response *target.Response
	Err      error
}

// SuccessResponse is a 200 with the API-level success flag set
func SuccessResponse() *target.Response {
	return &target.Response{
		StatusCode: 200,
		Body:       []byte(`{"msg":"","code":"Success","params":null}`),
	}
}

// FailureResponse builds a response with the given status and body
func FailureResponse(statusCode int, body string) *target.Response {
	return &target.Response{
		StatusCode: statusCode,
		Body:       []byte(body),
	}
}

// Send implements targetiface.Target
func (m *MockTarget) Send(req target.Request) (*target.Response, error) {
	index := len(m.Sent)
	m.Sent = append(m.Sent, req)

	if index < len(m.Responses) {
		scripted := m.Responses[index]
		return scripted.Response, scripted.Err
	}
	return SuccessResponse(), nil
}

// Open implements targetiface.Target
func (m *MockTarget) Open() {}

// Close implements targetiface.Target
func (m *MockTarget) Close() {}

// GetID implements targetiface.Target
func (m *MockTarget) GetID() string {
	return "mock"
}

// AccountSettings returns a settings map with the required apiKey plus
// any overrides
func AccountSettings(overrides map[string]string) map[string]string {
	settings := map[string]string{
		"apiKey": "test-api-key",
	}
	for key, value := range overrides {
		settings[key] = value
	}
	return settings
}

// TestBatch returns a minimal batch with the required account settings
// and an email identity
func TestBatch(events ...models.Event) *models.EventBatch {
	return &models.EventBatch{
		ID: "batch-1",
		Account: models.Account{
			AccountID:       42,
			AccountSettings: AccountSettings(nil),
		},
		UserIdentities: []models.UserIdentity{
			{Type: models.IdentityTypeEmail, Value: "user@example.com"},
		},
		Events: events,
	}
}
