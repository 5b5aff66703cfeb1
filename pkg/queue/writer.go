// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package queue

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	retry "github.com/snowplow-devops/go-retry"
)

// Writer enqueues raw inbound messages onto the processing queue; the
// ingress endpoint must not drop a batch on a transient AWS API error
// so sends are retried with backoff before giving up
type Writer struct {
	client   sqsiface.SQSAPI
	queueURL string
	log      *log.Entry
}

// NewWriter creates a Writer for the given queue using the standard
// AWS credential chain
func NewWriter(region string, queueURL string) (*Writer, error) {
	if queueURL == "" {
		return nil, errors.New("Queue URL is required for queue writer")
	}

	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
		Config: aws.Config{
			Region: aws.String(region),
		},
	}))

	return NewWriterWithInterfaces(sqs.New(sess), queueURL), nil
}

// NewWriterWithInterfaces allows the SQS client to be provided directly
// for mocking and localstack usage
func NewWriterWithInterfaces(client sqsiface.SQSAPI, queueURL string) *Writer {
	return &Writer{
		client:   client,
		queueURL: queueURL,
		log:      log.WithFields(log.Fields{"queue": queueURL}),
	}
}

// Enqueue writes one raw message body onto the queue
func (w *Writer) Enqueue(message string) error {
	w.log.Debugf("Enqueueing message of %d bytes ...", len(message))

	return retry.Exponential(5, time.Second, "sqs.SendMessage", func() error {
		_, err := w.client.SendMessage(&sqs.SendMessageInput{
			QueueUrl:    aws.String(w.queueURL),
			MessageBody: aws.String(message),
		})
		return err
	})
}
