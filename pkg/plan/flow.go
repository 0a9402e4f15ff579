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

	"github.com/arenadata/plandump/pkg/accessor"
)

// FlowType describes how a node's output rows are distributed.
type FlowType int

const (
	FlowUndefined FlowType = iota
	FlowSingleton
	FlowReplicated
	FlowPartitioned
)

var flowTypes = map[string]FlowType{
	"FLOW_UNDEFINED":   FlowUndefined,
	"FLOW_SINGLETON":   FlowSingleton,
	"FLOW_REPLICATED":  FlowReplicated,
	"FLOW_PARTITIONED": FlowPartitioned,
}

func (t FlowType) String() string {
	switch t {
	case FlowUndefined:
		return "undefined"
	case FlowSingleton:
		return "singleton"
	case FlowReplicated:
		return "replicated"
	case FlowPartitioned:
		return "partitioned"
	}
	return "???"
}

// LocusReplicated is the locus of a relation stored whole on every segment.
const LocusReplicated = "CdbLocusType_Replicated"

// Flow is the plan-level distribution annotation of a node.
type Flow struct {
	Type        FlowType
	Locus       string
	NumSegments int
}

// DecodeFlow decodes a flow; a nil node means the plan carries no flow.
func DecodeFlow(n accessor.Node) (*Flow, error) {
	if n == nil {
		return nil, nil
	}
	raw, err := accessor.Enum(n, "flotype")
	if err != nil {
		return nil, err
	}
	ft, ok := flowTypes[raw]
	if !ok {
		return nil, errors.Wrapf(ErrBadEnum, "flotype %q", raw)
	}
	f := &Flow{Type: ft}
	locus, err := accessor.Optional(n, "locustype")
	if err != nil {
		return nil, err
	}
	if !locus.IsNull() {
		if f.Locus, err = locus.Text(); err != nil {
			return nil, errors.Wrap(err, "locustype")
		}
	}
	segs, err := accessor.Int(n, "numsegments")
	if err != nil {
		return nil, err
	}
	f.NumSegments = int(segs)
	return f, nil
}
