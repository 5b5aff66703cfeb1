// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package models

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// OutcomeStatus classifies the result of one dispatched request
type OutcomeStatus string

const (
	// OutcomeSuccess means the request was accepted by Iterable
	OutcomeSuccess OutcomeStatus = "success"

	// OutcomeRetriable means a transient condition was hit and the
	// inbound message should be left for redelivery
	OutcomeRetriable OutcomeStatus = "retriable_failure"

	// OutcomeNonRetriable means Iterable rejected the request
	// deterministically; it is logged and dropped
	OutcomeNonRetriable OutcomeStatus = "non_retriable_failure"

	// OutcomeProcessing means the engine could not construct a valid
	// request; it is logged and the event skipped
	OutcomeProcessing OutcomeStatus = "processing_failure"

	// OutcomeUnexpected covers unclassified failures; by policy these
	// are logged and swallowed so they cannot force redelivery loops
	OutcomeUnexpected OutcomeStatus = "unexpected_failure"
)

// Outcome is the classification attached to one dispatched request
type Outcome struct {
	Status     OutcomeStatus
	Reason     string
	HTTPStatus int
	APICode    string
	EventID    string
}

// Retriable reports whether the outcome should abort the batch and
// leave the inbound message for redelivery
func (o Outcome) Retriable() bool {
	return o.Status == OutcomeRetriable
}

// Success reports whether the request was accepted
func (o Outcome) Success() bool {
	return o.Status == OutcomeSuccess
}

func (o Outcome) String() string {
	return fmt.Sprintf("Status:%s,HTTPStatus:%d,APICode:%s,EventID:%s,Reason:%s",
		o.Status, o.HTTPStatus, o.APICode, o.EventID, o.Reason)
}

// SuccessOutcome builds a Success outcome for an event
func SuccessOutcome(eventID string) Outcome {
	return Outcome{Status: OutcomeSuccess, EventID: eventID}
}

// RetriableOutcome builds a RetriableFailure outcome
func RetriableOutcome(eventID string, httpStatus int, reason string) Outcome {
	return Outcome{Status: OutcomeRetriable, EventID: eventID, HTTPStatus: httpStatus, Reason: reason}
}

// NonRetriableOutcome builds a NonRetriableFailure outcome
func NonRetriableOutcome(eventID string, httpStatus int, apiCode string, reason string) Outcome {
	return Outcome{Status: OutcomeNonRetriable, EventID: eventID, HTTPStatus: httpStatus, APICode: apiCode, Reason: reason}
}

// ProcessingOutcome builds a ProcessingFailure outcome
func ProcessingOutcome(eventID string, reason string) Outcome {
	return Outcome{Status: OutcomeProcessing, EventID: eventID, Reason: reason}
}

// UnexpectedOutcome builds an UnexpectedFailure outcome
func UnexpectedOutcome(eventID string, reason string) Outcome {
	return Outcome{Status: OutcomeUnexpected, EventID: eventID, Reason: reason}
}

// BatchResult aggregates per-request outcomes into the batch-level
// disposition
type BatchResult struct {
	// Sent counts requests accepted by Iterable
	Sent int64

	// Dropped counts requests rejected deterministically or failed
	// during construction; these are swallowed after logging
	Dropped int64

	// Skipped counts events that intentionally produced no dispatch
	Skipped int64

	// Retriable is set once any outcome aborts the batch
	Retriable bool

	failures error
}

// Record folds one outcome into the result
func (r *BatchResult) Record(o Outcome) {
	switch o.Status {
	case OutcomeSuccess:
		r.Sent++
	case OutcomeRetriable:
		r.Retriable = true
		r.failures = multierror.Append(r.failures, fmt.Errorf("retriable failure: %s", o))
	default:
		r.Dropped++
		r.failures = multierror.Append(r.failures, fmt.Errorf("%s: %s", o.Status, o))
	}
}

// Skip counts an event that intentionally produced no dispatch
func (r *BatchResult) Skip() {
	r.Skipped++
}

// Failures returns the accumulated non-success outcomes as a single
// error, or nil when every dispatch succeeded
func (r *BatchResult) Failures() error {
	return r.failures
}

// Disposition rolls the result up to the batch level: RetriableFailure
// when any aborting failure occurred, Success otherwise (dropped and
// skipped requests are swallowed after logging)
func (r *BatchResult) Disposition() OutcomeStatus {
	if r.Retriable {
		return OutcomeRetriable
	}
	return OutcomeSuccess
}

// Total returns the number of events that reached a terminal state
func (r *BatchResult) Total() int64 {
	return r.Sent + r.Dropped + r.Skipped
}
