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

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/arenadata/plandump/pkg/accessor"
	"github.com/arenadata/plandump/pkg/plan"
)

// dispatchResolver derives the number of segments taking part in a slice.
type dispatchResolver struct {
	gen      plan.PlanGen
	maxSteps int
}

// segments returns the participating segment count for node n running
// under slice s. ok is false when there is no slice to annotate.
//
// Rules in priority order: coordinator gangs count 0, direct dispatch
// counts its targets, non-planner statements use the static gang size,
// and planner statements take the nearest flow at or below n.
func (d *dispatchResolver) segments(s *plan.Slice, n *plan.Node) (count int, ok bool, err error) {
	if s == nil {
		return 0, false, nil
	}
	if !s.GangType.RunsOnSegments() {
		return 0, true, nil
	}
	if s.DirectDispatch.Enabled {
		return len(s.DirectDispatch.ContentIDs), true, nil
	}
	if d.gen != plan.PlanGenPlanner {
		return s.GangSize, true, nil
	}
	flow, err := d.findFlow(n)
	if err != nil {
		return 0, false, err
	}
	switch {
	case flow == nil:
		log.Warnf("no flow found below %s in slice %d, assuming 1 segment", n.Tag, s.Index)
		return 1, true, nil
	case flow.Type == plan.FlowSingleton:
		return 1, true, nil
	}
	return flow.NumSegments, true, nil
}

// text renders the dispatch annotation, empty when there is no slice.
func (d *dispatchResolver) text(s *plan.Slice, n *plan.Node) (string, error) {
	count, ok, err := d.segments(s, n)
	if err != nil || !ok {
		return "", err
	}
	return FormatDispatch(s.Index, count), nil
}

// FormatDispatch renders a slice id and its segment count.
func FormatDispatch(sliceID, segments int) string {
	if segments == 0 {
		return fmt.Sprintf("slice%d", sliceID)
	}
	return fmt.Sprintf("slice%d; segments %d", sliceID, segments)
}

// findFlow walks down the outer spine starting at n. Motions are stepped
// over since their own flow describes the receiving side. A node with
// neither flow nor outer child continues into its first member plan.
func (d *dispatchResolver) findFlow(n *plan.Node) (*plan.Flow, error) {
	cur := n
	for step := 0; ; step++ {
		if step > d.maxSteps {
			return nil, errors.Wrapf(ErrPlanTooDeep, "flow search below %s", n.Tag)
		}
		var next accessor.Node
		switch {
		case isMotion(cur):
			next = cur.Outer
		case cur.Flow != nil:
			return cur.Flow, nil
		case cur.Outer != nil:
			next = cur.Outer
		default:
			first, err := firstMember(cur)
			if err != nil {
				return nil, err
			}
			next = first
		}
		if next == nil {
			return nil, nil
		}
		decoded, err := plan.Decode(next)
		if err != nil {
			return nil, err
		}
		cur = decoded
	}
}

func isMotion(n *plan.Node) bool {
	_, ok := n.Detail.(*plan.Motion)
	return ok
}

func firstMember(n *plan.Node) (accessor.Node, error) {
	var members accessor.List
	switch d := n.Detail.(type) {
	case *plan.Combinator:
		members = d.Members
	case *plan.ModifyTable:
		members = d.Members
	default:
		return nil, nil
	}
	if members.Len() == 0 {
		return nil, nil
	}
	return accessor.NodeAt(members, 0)
}
