// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package processor

import (
	"fmt"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/Iterable/firehose-iterable/pkg/audience"
	"github.com/Iterable/firehose-iterable/pkg/classify"
	"github.com/Iterable/firehose-iterable/pkg/identity"
	"github.com/Iterable/firehose-iterable/pkg/models"
	"github.com/Iterable/firehose-iterable/pkg/target"
	"github.com/Iterable/firehose-iterable/pkg/target/targetiface"
	"github.com/Iterable/firehose-iterable/pkg/transform"
	"github.com/Iterable/firehose-iterable/pkg/translate"
)

// Processor drives one batch through translation and delivery. Events
// are dispatched strictly sequentially in sorted order - later events
// may depend on identity state mutated by earlier ones - and the first
// retriable failure aborts the batch so the queue redelivers it.
type Processor struct {
	target targetiface.Target
}

// New creates a Processor that dispatches through the given target
func New(t targetiface.Target) *Processor {
	return &Processor{target: t}
}

// Process runs one event batch to its final disposition. The logging
// context is created fresh per invocation by the caller and threaded
// through explicitly.
func (p *Processor) Process(batch *models.EventBatch, logger *log.Entry) (result *models.BatchResult) {
	result = &models.BatchResult{}
	defer recoverUnexpected(batch.ID, logger, result)

	cfg, err := batch.Account.Config()
	if err != nil {
		// A batch without usable settings can never succeed; drop it.
		logger.WithFields(log.Fields{"error": err}).Error("Dropping batch with invalid account settings")
		result.Record(models.ProcessingOutcome("", err.Error()))
		return result
	}

	batch.SortEventsByTimestamp()

	placeholder, err := identity.InsertPlaceholderEmail(batch, cfg)
	if err != nil {
		// No identifiable user at all; redelivery cannot fix this, so
		// the batch is logged and dropped.
		logger.WithFields(log.Fields{"error": err}).Error("Dropping batch with no identifiable user")
		result.Record(models.ProcessingOutcome("", err.Error()))
		return result
	}

	email, userID := identity.ResolveUserFields(batch.UserIdentities, cfg, batch.MpID)
	ctx := &translate.Context{
		Batch:            batch,
		Config:           cfg,
		PlaceholderEmail: placeholder,
		User:             target.UserFields{Email: email, UserID: userID},
	}

	if outcome, aborted := p.updateUser(ctx, logger, result); aborted {
		logger.WithFields(log.Fields{"outcome": outcome}).Warn("Aborting batch on retriable user update failure")
		return result
	}

	skipPushEvents := batch.HasBundledSDK()

	for _, event := range batch.Events {
		if skipPushEvents && models.IsPushKind(event.Type()) {
			// The bundled client SDK already registers tokens and
			// tracks opens on-device.
			result.Skip()
			continue
		}

		outcome, skipped := p.processEvent(ctx, event, logger)
		if skipped {
			result.Skip()
			continue
		}
		if outcome.Retriable() {
			logger.WithFields(log.Fields{"outcome": outcome}).Warn("Aborting batch on retriable failure, leaving message for redelivery")
			result.Record(outcome)
			return result
		}
		if outcome.Status == models.OutcomeNonRetriable {
			logger.WithFields(log.Fields{"outcome": outcome}).Error("Dropping event after non-retriable failure")
		}
		result.Record(outcome)
	}

	return result
}

// recoverUnexpected converts a panic during batch processing into a
// logged UnexpectedFailure drop. An unclassified failure must never
// crash the invocation: that would leave the message on the queue and
// trap a poison batch in a redelivery loop.
func recoverUnexpected(id string, logger *log.Entry, result *models.BatchResult) {
	if r := recover(); r != nil {
		outcome := models.UnexpectedOutcome(id, fmt.Sprintf("%v", r))
		logger.WithFields(log.Fields{"outcome": outcome, "stack": string(debug.Stack())}).Error("Swallowing unexpected failure during batch processing")
		result.Record(outcome)
	}
}

// processEvent translates and dispatches a single event, classifying
// its outcome. The second return is true for intentional skips, which
// produce no dispatch and no outcome. A panic during translation or
// dispatch is recovered into an UnexpectedFailure so the rest of the
// batch still runs.
func (p *Processor) processEvent(ctx *translate.Context, event models.Event, logger *log.Entry) (outcome models.Outcome, skipped bool) {
	defer func() {
		if r := recover(); r != nil {
			outcome = models.UnexpectedOutcome(event.EventID(), fmt.Sprintf("%v", r))
			skipped = false
			logger.WithFields(log.Fields{"outcome": outcome, "event_type": event.Type(), "stack": string(debug.Stack())}).Error("Swallowing unexpected failure during event dispatch")
		}
	}()

	res, err := translate.Event(ctx, event)
	if err != nil {
		outcome := models.ProcessingOutcome(event.EventID(), err.Error())
		logger.WithFields(log.Fields{"outcome": outcome, "event_type": event.Type()}).Error("Skipping event the engine could not translate")
		return outcome, false
	}
	if res.Skip {
		logger.WithFields(log.Fields{"event_type": event.Type(), "reason": res.SkipReason}).Debug("Event produced no dispatch")
		return models.Outcome{}, true
	}

	resp, sendErr := p.target.Send(res.Request)
	return classify.Response(resp, sendErr, event.EventID()), false
}

// updateUser performs the once-per-batch user profile upsert, when any
// identifiable user fields exist and attributes are present. Returns
// the outcome and whether the batch must abort.
func (p *Processor) updateUser(ctx *translate.Context, logger *log.Entry, result *models.BatchResult) (models.Outcome, bool) {
	if ctx.User.Empty() || len(ctx.Batch.UserAttributes) == 0 {
		return models.SuccessOutcome(""), false
	}

	req := target.UserUpdateRequest{
		UserFields: ctx.User,
		DataFields: transform.ConvertUserAttributes(ctx.Batch.UserAttributes, ctx.Config.CoerceStringsToScalars),
	}

	resp, err := p.target.Send(req)
	outcome := classify.Response(resp, err, ctx.Batch.ID)
	if outcome.Retriable() {
		result.Record(outcome)
		return outcome, true
	}
	if !outcome.Success() {
		logger.WithFields(log.Fields{"outcome": outcome}).Error("User update rejected, continuing with batch")
	}
	result.Record(outcome)
	return outcome, false
}

// ProcessAudience runs one audience membership change request to its
// final disposition: one subscribe/unsubscribe dispatch per populated
// list bucket, aborting on the first retriable failure.
func (p *Processor) ProcessAudience(req *models.AudienceChangeRequest, logger *log.Entry) (result *models.BatchResult) {
	result = &models.BatchResult{}
	defer recoverUnexpected(req.ID, logger, result)

	cfg, err := req.Account.Config()
	if err != nil {
		logger.WithFields(log.Fields{"error": err}).Error("Dropping audience request with invalid account settings")
		result.Record(models.ProcessingOutcome(req.ID, err.Error()))
		return result
	}

	diff, invalid := audience.Aggregate(req, cfg)
	for _, invalidErr := range invalid {
		outcome := models.ProcessingOutcome(req.ID, invalidErr.Error())
		logger.WithFields(log.Fields{"outcome": outcome}).Error("Skipping malformed audience action")
		result.Record(outcome)
	}

	subscribes, unsubscribes := diff.Requests()
	for _, subscribe := range subscribes {
		if aborted := p.dispatchListRequest(subscribe, req.ID, logger, result); aborted {
			return result
		}
	}
	for _, unsubscribe := range unsubscribes {
		if aborted := p.dispatchListRequest(unsubscribe, req.ID, logger, result); aborted {
			return result
		}
	}

	return result
}

func (p *Processor) dispatchListRequest(req target.Request, requestID string, logger *log.Entry, result *models.BatchResult) bool {
	resp, err := p.target.Send(req)
	outcome, failCount := classify.ListResponse(resp, err, requestID)

	if failCount > 0 {
		// Informational sub-user partial failure; the outcome stays a
		// success.
		logger.WithFields(log.Fields{"fail_count": failCount, "path": req.Path()}).Warn("List subscribe or unsubscribe request reported failures")
	}

	if outcome.Retriable() {
		logger.WithFields(log.Fields{"outcome": outcome}).Warn("Aborting audience request on retriable failure, leaving message for redelivery")
		result.Record(outcome)
		return true
	}
	if !outcome.Success() {
		logger.WithFields(log.Fields{"outcome": outcome}).Error("Dropping list request after non-retriable failure")
	}
	result.Record(outcome)
	return false
}
