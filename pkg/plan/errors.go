// Copyright 2024 Ant Group Co., Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package plan

import (
	"github.com/pkg/errors"
)

// Cross-reference failures. Each means the image is corrupt or was produced
// by an engine version this tool does not understand; none is recoverable.
var (
	ErrMissingRangeTableEntry = errors.New("range table entry not found")
	ErrMissingRelation        = errors.New("relation id not found in range table")
	ErrSubPlanOutOfRange      = errors.New("sub-plan id out of range")
	ErrSliceOutOfRange        = errors.New("slice index out of range")
	ErrNotSubPlan             = errors.New("expression is not a SubPlan")
	ErrBadEnum                = errors.New("unrecognized enumeration value")
	ErrExprTooLarge           = errors.New("expression tree exceeds node limit")
)
