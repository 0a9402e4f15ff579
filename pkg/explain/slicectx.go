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
	"github.com/pkg/errors"

	"github.com/arenadata/plandump/pkg/plan"
)

// sliceContext computes the slice a node runs under. It never stores the
// current slice itself: callers pass it in and get the child scope's slice
// back, so a scope ends simply by dropping the returned value.
type sliceContext struct {
	table *plan.SliceTable
}

func newSliceContext(table *plan.SliceTable) sliceContext {
	return sliceContext{table: table}
}

// initial is the slice of the start node, or nil when the table is absent
// or its local index is out of range.
func (c sliceContext) initial() *plan.Slice {
	return c.table.Local()
}

// enterMotion returns the slice sending into a motion.
func (c sliceContext) enterMotion(m *plan.Motion) (*plan.Slice, error) {
	if c.table == nil {
		return nil, nil
	}
	s, err := c.table.At(m.ID)
	return s, errors.Wrapf(err, "motionID %d", m.ID)
}

// enterSubPlan returns the slice a sub-plan or init-plan runs under.
func (c sliceContext) enterSubPlan(cur *plan.Slice, ref *plan.SubPlanRef) (*plan.Slice, error) {
	if c.table == nil || !ref.HasDispatchSlice() {
		return cur, nil
	}
	s, err := c.table.At(ref.DispatchSliceID)
	return s, errors.Wrapf(err, "qDispSliceId %d of sub-plan %d", ref.DispatchSliceID, ref.ID)
}

// parent returns the receiving side of a motion slice.
func (c sliceContext) parent(s *plan.Slice) (*plan.Slice, error) {
	if c.table == nil || s == nil {
		return nil, nil
	}
	return c.table.Parent(s)
}
