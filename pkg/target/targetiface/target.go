// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package targetiface

import (
	"github.com/Iterable/firehose-iterable/pkg/target"
)

// Target describes the delivery client contract the orchestrator
// depends on
type Target interface {
	Send(req target.Request) (*target.Response, error)
	Open()
	Close()
	GetID() string
}
