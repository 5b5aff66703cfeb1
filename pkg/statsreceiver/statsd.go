// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package statsreceiver

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	statsd "github.com/smira/go-statsd"

	"github.com/Iterable/firehose-iterable/pkg/statsreceiver/statsreceiveriface"
)

// statsDStatsReceiver holds a client for writing delivery statistics to
// a StatsD server
type statsDStatsReceiver struct {
	client *statsd.Client
}

// NewStatsDStatsReceiver creates a client for writing metrics to StatsD
func NewStatsDStatsReceiver(address string, prefix string, tagsRaw string) (statsreceiveriface.StatsReceiver, error) {
	tagsMap := map[string]string{}
	err := json.Unmarshal([]byte(tagsRaw), &tagsMap)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to unmarshall STATSD_TAGS to map")
	}

	var tags []statsd.Tag
	for key, value := range tagsMap {
		tags = append(tags, statsd.StringTag(key, value))
	}

	client := statsd.NewClient(address,
		statsd.MaxPacketSize(1400),
		statsd.MetricPrefix(fmt.Sprintf("%s.", prefix)),
		statsd.TagStyle(statsd.TagFormatDatadog),
		statsd.DefaultTags(tags...),
		statsd.ReconnectInterval(60*time.Second),
	)

	return &statsDStatsReceiver{
		client: client,
	}, nil
}

// ReportBatch writes one batch's disposition counts and processing
// latency
func (s *statsDStatsReceiver) ReportBatch(sent int64, dropped int64, skipped int64, retried bool, duration time.Duration) {
	s.client.Incr("batch_processed", 1)
	s.client.Incr("requests_sent", sent)
	s.client.Incr("requests_dropped", dropped)
	s.client.Incr("events_skipped", skipped)
	if retried {
		s.client.Incr("batch_retried", 1)
	}
	s.client.PrecisionTiming("batch_latency", duration)
}
