// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package statsreceiveriface

import (
	"time"
)

// StatsReceiver reports batch delivery statistics after each invocation
type StatsReceiver interface {
	ReportBatch(sent int64, dropped int64, skipped int64, retried bool, duration time.Duration)
}
