// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package cmd

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/twinj/uuid"

	"github.com/Iterable/firehose-iterable/config"
	"github.com/Iterable/firehose-iterable/pkg/models"
	"github.com/Iterable/firehose-iterable/pkg/processor"
	"github.com/Iterable/firehose-iterable/pkg/target/targetiface"
)

// ServerlessRequestHandler is a common function for all serverless
// implementations to leverage; it runs one inbound wire message to its
// final disposition. A non-nil return leaves the message on the queue
// for redelivery, so only retriable dispositions surface as errors.
func ServerlessRequestHandler(body []byte) error {
	cfg, sentryEnabled, err := Init()
	if err != nil {
		return err
	}
	if sentryEnabled {
		defer sentry.Flush(2 * time.Second)
	}

	logger := log.WithFields(log.Fields{
		"request_id": uuid.NewV4().String(),
	})

	msg, err := models.ParseMessage(body)
	if err != nil {
		// Redelivery cannot fix a message the engine cannot decode.
		logger.WithFields(log.Fields{"error": err}).Error("Dropping undecodable message")
		return nil
	}

	// --- Process the message

	start := time.Now().UTC()

	var res *models.BatchResult
	switch m := msg.(type) {
	case *models.EventBatch:
		p, buildErr := buildProcessor(cfg, m.Account)
		if buildErr != nil {
			logger.WithFields(log.Fields{"error": buildErr}).Error("Dropping batch with no usable delivery target")
			return nil
		}
		res = p.Process(m, logger.WithFields(log.Fields{"batch_id": m.ID}))
	case *models.AudienceChangeRequest:
		p, buildErr := buildProcessor(cfg, m.Account)
		if buildErr != nil {
			logger.WithFields(log.Fields{"error": buildErr}).Error("Dropping audience request with no usable delivery target")
			return nil
		}
		res = p.ProcessAudience(m, logger.WithFields(log.Fields{"request_id_wire": m.ID}))
	}

	// --- Report statistics

	sr, err := cfg.GetStatsReceiver()
	if err != nil {
		logger.WithFields(log.Fields{"error": err}).Error("Failed to build stats receiver")
	}
	if sr != nil {
		sr.ReportBatch(res.Sent, res.Dropped, res.Skipped, res.Retriable, time.Now().UTC().Sub(start))
	}

	if res.Retriable {
		return errors.Errorf("Batch hit a retriable failure, leaving message for redelivery: %s", res.Failures())
	}
	return nil
}

// buildProcessor constructs a processor whose target is bound to the
// API key found in the message's account settings
func buildProcessor(cfg *config.Config, account models.Account) (*processor.Processor, error) {
	t, err := buildTarget(cfg, account)
	if err != nil {
		return nil, err
	}
	t.Open()
	return processor.New(t), nil
}

func buildTarget(cfg *config.Config, account models.Account) (targetiface.Target, error) {
	acct, err := account.Config()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to decode account settings")
	}
	return cfg.GetTarget(acct.APIKey)
}
