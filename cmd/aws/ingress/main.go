// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"

	"github.com/Iterable/firehose-iterable/cmd"
	"github.com/Iterable/firehose-iterable/pkg/models"
)

func main() {
	lambda.Start(HandleRequest)
}

// HandleRequest accepts one inbound wire message, queues it for the
// processing lambda and acknowledges it immediately. Delivery to
// Iterable happens asynchronously so the host platform never waits on
// the downstream API.
func HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	cfg, sentryEnabled, err := cmd.Init()
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: 500}, err
	}
	if sentryEnabled {
		defer sentry.Flush(2 * time.Second)
	}

	ack, err := models.AckResponse([]byte(request.Body))
	if err != nil {
		log.WithFields(log.Fields{"error": err}).Error("Rejecting undecodable message")
		return events.APIGatewayProxyResponse{StatusCode: 400}, nil
	}

	writer, err := cfg.GetQueueWriter()
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: 500}, err
	}

	if err := writer.Enqueue(request.Body); err != nil {
		log.WithFields(log.Fields{"error": err}).Error("Failed to queue message")
		return events.APIGatewayProxyResponse{StatusCode: 500}, err
	}

	return events.APIGatewayProxyResponse{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(ack),
	}, nil
}
