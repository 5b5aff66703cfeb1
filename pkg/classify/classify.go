// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package classify

import (
	"fmt"
	"net"

	"github.com/Iterable/firehose-iterable/pkg/models"
	"github.com/Iterable/firehose-iterable/pkg/target"
)

// retriableStatusCodes are treated as transient regardless of the
// response body
var retriableStatusCodes = map[int]bool{
	429: true,
	502: true,
	504: true,
}

// Response classifies the outcome of one standard API dispatch:
//
// - transport errors (timeouts included) are retriable
// - HTTP 429/502/504 are retriable regardless of body
// - HTTP success with the API-level success flag set is Success
// - anything else is a deterministic rejection and is not retried
func Response(resp *target.Response, err error, eventID string) models.Outcome {
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return models.RetriableOutcome(eventID, 0, fmt.Sprintf("timeout sending request to Iterable: %s", err))
		}
		// Connection resets, DNS blips and the like are as transient
		// as a 5xx.
		return models.RetriableOutcome(eventID, 0, fmt.Sprintf("transport error sending request to Iterable: %s", err))
	}

	if retriableStatusCodes[resp.StatusCode] {
		return models.RetriableOutcome(eventID, resp.StatusCode, "retriable HTTP status from Iterable")
	}

	api := resp.API()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 && api.Success() {
		return models.SuccessOutcome(eventID)
	}

	return models.NonRetriableOutcome(eventID, resp.StatusCode, api.Code, "Iterable rejected the request")
}

// ListResponse classifies the outcome of a list subscribe/unsubscribe
// dispatch. HTTP-level handling matches Response, but a non-zero fail
// count alongside HTTP success stays Success; the fail count is
// returned so the caller can log the sub-user partial failure.
func ListResponse(resp *target.Response, err error, requestID string) (models.Outcome, int) {
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return models.RetriableOutcome(requestID, 0, fmt.Sprintf("timeout sending list request to Iterable: %s", err)), 0
		}
		return models.RetriableOutcome(requestID, 0, fmt.Sprintf("transport error sending list request to Iterable: %s", err)), 0
	}

	if retriableStatusCodes[resp.StatusCode] {
		return models.RetriableOutcome(requestID, resp.StatusCode, "retriable HTTP status from Iterable"), 0
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return models.SuccessOutcome(requestID), resp.List().FailCount
	}

	return models.NonRetriableOutcome(requestID, resp.StatusCode, resp.API().Code, "Iterable rejected the list request"), 0
}
