// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package cmd

const (
	// AppVersion is the current version of the connector
	AppVersion = "1.6.0"

	// AppName is the name of the application to use in logging / places that require the artifact
	AppName = "firehose-iterable"
)
