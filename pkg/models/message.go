// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package models

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// MessageType discriminates the inbound wire envelopes the connector
// receives from the host platform
type MessageType string

const (
	MessageTypeEventProcessing MessageType = "event_processing_request"
	MessageTypeAudienceChange  MessageType = "audience_membership_change_request"

	messageTypeEventProcessingResponse MessageType = "event_processing_response"
	messageTypeAudienceChangeResponse  MessageType = "audience_membership_change_response"
)

type messageEnvelope struct {
	Type MessageType `json:"type"`
	ID   string      `json:"id"`
}

// ParseMessage decodes one inbound wire message into either an
// *EventBatch or an *AudienceChangeRequest. Message types the engine
// does not process return an error.
func ParseMessage(data []byte) (interface{}, error) {
	var envelope messageEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, errors.Wrap(err, "Failed to decode message envelope")
	}

	switch envelope.Type {
	case MessageTypeEventProcessing:
		var batch EventBatch
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, errors.Wrap(err, "Failed to decode event processing request")
		}
		return &batch, nil
	case MessageTypeAudienceChange:
		var req AudienceChangeRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, errors.Wrap(err, "Failed to decode audience membership change request")
		}
		return &req, nil
	default:
		return nil, errors.Errorf("Unsupported message type '%s'", envelope.Type)
	}
}

// AckResponse builds the minimal acknowledgement envelope the host
// platform expects from the ingress endpoint, echoing the request id
func AckResponse(data []byte) ([]byte, error) {
	var envelope messageEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, errors.Wrap(err, "Failed to decode message envelope")
	}

	var responseType MessageType
	switch envelope.Type {
	case MessageTypeEventProcessing:
		responseType = messageTypeEventProcessingResponse
	case MessageTypeAudienceChange:
		responseType = messageTypeAudienceChangeResponse
	default:
		return nil, errors.Errorf("Unsupported message type '%s'", envelope.Type)
	}

	return json.Marshal(map[string]string{
		"type": string(responseType),
		"id":   envelope.ID,
	})
}
