// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/hashicorp/go-multierror"

	"github.com/Iterable/firehose-iterable/cmd"
)

func main() {
	lambda.Start(HandleRequest)
}

// HandleRequest processes each queued wire message in the trigger; any
// retriable failure is returned so SQS redelivers the whole trigger
func HandleRequest(ctx context.Context, event events.SQSEvent) error {
	var errs *multierror.Error

	for _, record := range event.Records {
		if err := cmd.ServerlessRequestHandler([]byte(record.Body)); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	return errs.ErrorOrNil()
}
