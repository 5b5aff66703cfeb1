// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package config

import (
	"github.com/caarlos0/env/v6"

	"github.com/Iterable/firehose-iterable/pkg/queue"
	"github.com/Iterable/firehose-iterable/pkg/statsreceiver"
	"github.com/Iterable/firehose-iterable/pkg/statsreceiver/statsreceiveriface"
	"github.com/Iterable/firehose-iterable/pkg/target"
	"github.com/Iterable/firehose-iterable/pkg/target/targetiface"
)

// IterableConfig configures the connection to the Iterable API
type IterableConfig struct {
	APIURL            string `env:"ITERABLE_API_URL" envDefault:"https://api.iterable.com"`
	RequestTimeoutSec int    `env:"ITERABLE_REQUEST_TIMEOUT_SEC" envDefault:"60"`
}

// QueueConfig configures the SQS queue the ingress endpoint writes to
// and the lambda consumes from
type QueueConfig struct {
	Region   string `env:"QUEUE_REGION"`
	QueueURL string `env:"QUEUE_URL"`
}

// SentryConfig configures the Sentry error tracker
type SentryConfig struct {
	Dsn   string `env:"SENTRY_DSN"`
	Tags  string `env:"SENTRY_TAGS" envDefault:"{}"`
	Debug bool   `env:"SENTRY_DEBUG" envDefault:"false"`
}

// StatsDStatsReceiverConfig configures the stats metrics receiver
type StatsDStatsReceiverConfig struct {
	Address string `env:"STATS_RECEIVER_STATSD_ADDRESS"`
	Prefix  string `env:"STATS_RECEIVER_STATSD_PREFIX" envDefault:"iterable.firehose"`
	Tags    string `env:"STATS_RECEIVER_STATSD_TAGS" envDefault:"{}"`
}

// Config for holding all configuration details
type Config struct {
	Iterable      IterableConfig
	Queue         QueueConfig
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	Sentry        SentryConfig
	StatsReceiver string `env:"STATS_RECEIVER"`
	StatsD        StatsDStatsReceiverConfig
}

// NewConfig resolves the config from the environment
func NewConfig() (*Config, error) {
	cfg := Config{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetTarget builds and returns a delivery target bound to the given
// project API key; the key comes from the account settings on each
// request rather than the environment
func (c *Config) GetTarget(apiKey string) (targetiface.Target, error) {
	return target.NewIterableTarget(
		apiKey,
		c.Iterable.APIURL,
		c.Iterable.RequestTimeoutSec,
	)
}

// GetQueueWriter builds and returns the writer for the ingest queue
func (c *Config) GetQueueWriter() (*queue.Writer, error) {
	return queue.NewWriter(
		c.Queue.Region,
		c.Queue.QueueURL,
	)
}

// GetStatsReceiver builds and returns the stats receiver that is
// configured (or nil when no receiver is set)
func (c *Config) GetStatsReceiver() (statsreceiveriface.StatsReceiver, error) {
	switch c.StatsReceiver {
	case "statsd":
		return statsreceiver.NewStatsDStatsReceiver(
			c.StatsD.Address,
			c.StatsD.Prefix,
			c.StatsD.Tags,
		)
	default:
		return nil, nil
	}
}
