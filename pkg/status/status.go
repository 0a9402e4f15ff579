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

package status

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/arenadata/plandump/pkg/accessor"
	"github.com/arenadata/plandump/pkg/accessor/image"
	"github.com/arenadata/plandump/pkg/archive"
	"github.com/arenadata/plandump/pkg/explain"
	"github.com/arenadata/plandump/pkg/nodetag"
	"github.com/arenadata/plandump/pkg/plan"
	"github.com/arenadata/plandump/pkg/sink"
)

// Code classifies why an invocation failed. Values double as process exit
// codes.
type Code int32

const (
	CodeOK Code = iota
	CodeInternal
	CodeInvalidArgument
	CodeBadImage
	CodeUnknownNodeTag
	CodeMissingField
	CodeBrokenReference
	CodePlanTooDeep
)

var codeNames = map[Code]string{
	CodeOK:              "OK",
	CodeInternal:        "INTERNAL",
	CodeInvalidArgument: "INVALID_ARGUMENT",
	CodeBadImage:        "BAD_IMAGE",
	CodeUnknownNodeTag:  "UNKNOWN_NODE_TAG",
	CodeMissingField:    "MISSING_FIELD",
	CodeBrokenReference: "BROKEN_REFERENCE",
	CodePlanTooDeep:     "PLAN_TOO_DEEP",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int32(c))
}

// ExitCode is the process exit status for c.
func (c Code) ExitCode() int {
	return int(c)
}

var _ error = &Status{}

type Status struct {
	code Code
	err  error
}

func (s *Status) Error() string {
	return fmt.Sprintf("Error: code=%v, msg=\"%v\"", s.code, s.err)
}

func (s *Status) Unwrap() error {
	return s.err
}

func (s *Status) Code() Code {
	return s.code
}

func (s *Status) Message() string {
	return s.err.Error()
}

func New(code Code, msg string) *Status {
	return &Status{code: code, err: errors.New(msg)}
}

func Wrap(code Code, err error) *Status {
	return &Status{code: code, err: err}
}

var sentinels = map[error]Code{
	image.ErrBadImage:              CodeBadImage,
	nodetag.ErrUnknown:             CodeUnknownNodeTag,
	accessor.ErrNoField:            CodeMissingField,
	accessor.ErrTypeMismatch:       CodeMissingField,
	accessor.ErrOutOfRange:         CodeMissingField,
	plan.ErrBadEnum:                CodeMissingField,
	plan.ErrMissingRangeTableEntry: CodeBrokenReference,
	plan.ErrMissingRelation:        CodeBrokenReference,
	plan.ErrSubPlanOutOfRange:      CodeBrokenReference,
	plan.ErrSliceOutOfRange:        CodeBrokenReference,
	plan.ErrNotSubPlan:             CodeBrokenReference,
	plan.ErrExprTooLarge:           CodePlanTooDeep,
	explain.ErrPlanTooDeep:         CodePlanTooDeep,
	archive.ErrNotFound:            CodeInvalidArgument,
	sink.ErrUnknownFormat:          CodeInvalidArgument,
}

// FromError returns err as a Status. A Status anywhere in the chain is
// kept as is; otherwise the root cause picks the code.
func FromError(err error) *Status {
	if err == nil {
		return nil
	}
	var s *Status
	if errors.As(err, &s) {
		return s
	}
	if code, ok := sentinels[pkgerrors.Cause(err)]; ok {
		return Wrap(code, err)
	}
	return Wrap(CodeInternal, err)
}
