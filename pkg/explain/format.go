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

package explain

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/arenadata/plandump/pkg/plan"
)

const unknownLabel = "???"

var aggLabels = map[string]string{
	"AGG_PLAIN":  "Aggregate",
	"AGG_SORTED": "GroupAggregate",
	"AGG_HASHED": "HashAggregate",
}

var setOpStrategies = map[string]string{
	"SETOP_SORTED": "SetOp",
	"SETOP_HASHED": "HashSetOp",
}

var setOpCommands = map[string]string{
	"SETOPCMD_INTERSECT":     "Intersect",
	"SETOPCMD_INTERSECT_ALL": "Intersect All",
	"SETOPCMD_EXCEPT":        "Except",
	"SETOPCMD_EXCEPT_ALL":    "Except All",
}

// formatter renders the one-line description of a plan node.
type formatter struct {
	stmt     *plan.PlannedStmt
	names    *Names
	slices   sliceContext
	dispatch *dispatchResolver
}

// line formats n running under cur. For a motion, cur is the sending
// slice.
func (f *formatter) line(n *plan.Node, cur *plan.Slice) (string, error) {
	kind := n.Tag.String()
	switch d := n.Detail.(type) {
	case *plan.Motion:
		return f.motion(n, d, cur)
	case *plan.Scan:
		return f.scan(kind, d, "")
	case *plan.IndexScan:
		return f.scan(kind, &d.Scan, fmt.Sprintf(" (used index, indexoid %d)", d.IndexID))
	case *plan.SubqueryScan:
		return f.scan(kind, &d.Scan, "")
	case *plan.Join:
		return fmt.Sprintf("%s %s Join", kind, d.TypeName()), nil
	case *plan.Agg:
		if label, ok := aggLabels[d.Strategy]; ok {
			return label, nil
		}
		return "Aggregate " + unknownLabel, nil
	case *plan.SetOp:
		strategy, ok := setOpStrategies[d.Strategy]
		if !ok {
			strategy = "SetOp " + unknownLabel
		}
		cmd, ok := setOpCommands[d.Command]
		if !ok {
			cmd = unknownLabel
		}
		return strategy + " " + cmd, nil
	case *plan.DML:
		return kind + " " + f.stmt.Command(), nil
	case *plan.ModifyTable:
		if len(d.ResultRelations) == 0 {
			return "", errors.Wrap(plan.ErrMissingRangeTableEntry, "ModifyTable has no result relations")
		}
		rel, err := f.names.Relation(d.ResultRelations[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s on %s", kind, f.stmt.Command(), rel), nil
	case *plan.ShareInputScan:
		sliceID := -1
		if cur != nil {
			sliceID = cur.Index
		}
		return fmt.Sprintf("ShareInputScan (share slice:id %d:%d)", sliceID, d.ShareID), nil
	case *plan.PartitionSelector:
		rel, err := f.names.RelationByID(d.RelID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("PartitionSelector for %s (dynamic scan id: %d)", rel, d.ScanID), nil
	}
	return kind, nil
}

func (f *formatter) scan(kind string, s *plan.Scan, suffix string) (string, error) {
	rel, err := f.names.Relation(s.RelIndex)
	if err != nil {
		return "", errors.Wrapf(err, "scanrelid of %s", kind)
	}
	return fmt.Sprintf("%s on %s%s", kind, rel, suffix), nil
}

func motionLabel(m *plan.Motion, outer *plan.Node) string {
	switch m.Type {
	case plan.MotionHash:
		return "Redistribute Motion"
	case plan.MotionFixed:
		if m.IsBroadcast {
			return "Broadcast Motion"
		}
		if outer != nil && outer.Flow != nil && outer.Flow.Locus == plan.LocusReplicated {
			return "Explicit Gather Motion"
		}
		return "Gather Motion"
	case plan.MotionExplicit:
		return "Explicit Redistribute Motion"
	}
	return unknownLabel
}

// motion renders "<label> <senders>:<receivers> <dispatch>".
func (f *formatter) motion(n *plan.Node, m *plan.Motion, sender *plan.Slice) (string, error) {
	var outer *plan.Node
	if n.Outer != nil {
		var err error
		if outer, err = plan.Decode(n.Outer); err != nil {
			return "", errors.Wrap(err, "outer child of Motion")
		}
	}
	receiver, err := f.slices.parent(sender)
	if err != nil {
		return "", err
	}

	snd, rcv := 0, 1
	if sender != nil {
		snd = sender.GangSize
	}
	if receiver != nil {
		rcv = receiver.GangSize
	}
	gather := m.Type == plan.MotionFixed && !m.IsBroadcast
	if gather {
		rcv = 1
	}

	if sender != nil && sender.DirectDispatch.Enabled {
		snd = len(sender.DirectDispatch.ContentIDs)
	} else if f.stmt.PlanGen == plan.PlanGenPlanner && outer != nil && outer.Flow != nil {
		if outer.Flow.Type == plan.FlowSingleton {
			snd = 1
		} else {
			snd = outer.Flow.NumSegments
		}
	}
	if f.stmt.PlanGen == plan.PlanGenPlanner && !gather && n.Flow != nil {
		rcv = n.Flow.NumSegments
	}

	info, err := f.dispatch.text(sender, n)
	if err != nil {
		return "", err
	}
	text := fmt.Sprintf("%s %d:%d %s", motionLabel(m, outer), snd, rcv, info)
	return strings.TrimRight(text, " "), nil
}
