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

// SubPlanTag is the expression tag of a correlated sub-plan reference.
const SubPlanTag = "T_SubPlan"

// DefaultMaxExprNodes bounds expression scans over a single plan node.
const DefaultMaxExprNodes = 100000

// SubPlanRef points from an expression into PlannedStmt sub-plans.
type SubPlanRef struct {
	// ID is 1-based.
	ID   int
	Name string
	// DispatchSliceID is meaningful only when positive.
	DispatchSliceID int
	IsInitPlan      bool
}

// HasDispatchSlice reports whether the sub-plan names its own slice.
func (r *SubPlanRef) HasDispatchSlice() bool {
	return r.DispatchSliceID > 0
}

// DecodeSubPlanRef decodes a T_SubPlan expression node.
func DecodeSubPlanRef(n accessor.Node) (*SubPlanRef, error) {
	if n == nil || n.Tag() != SubPlanTag {
		tag := "<nil>"
		if n != nil {
			tag = n.Tag()
		}
		return nil, errors.Wrapf(ErrNotSubPlan, "got %s", tag)
	}
	id, err := accessor.Int(n, "plan_id")
	if err != nil {
		return nil, err
	}
	ref := &SubPlanRef{ID: int(id)}
	name, err := accessor.Optional(n, "plan_name")
	if err != nil {
		return nil, err
	}
	if !name.IsNull() {
		if ref.Name, err = name.Text(); err != nil {
			return nil, errors.Wrap(err, "plan_name")
		}
	}
	slice, err := accessor.Optional(n, "qDispSliceId")
	if err != nil {
		return nil, err
	}
	if !slice.IsNull() {
		sid, err := slice.Int()
		if err != nil {
			return nil, errors.Wrap(err, "qDispSliceId")
		}
		ref.DispatchSliceID = int(sid)
	}
	initp, err := accessor.Optional(n, "is_initplan")
	if err != nil {
		return nil, err
	}
	if !initp.IsNull() {
		if ref.IsInitPlan, err = initp.Bool(); err != nil {
			return nil, errors.Wrap(err, "is_initplan")
		}
	}
	return ref, nil
}

// FindSubPlans scans expression trees depth first and returns every
// distinct non-init sub-plan reference in the order first seen. The scan
// does not look inside a SubPlan's own arguments, and gives up with
// ErrExprTooLarge after visiting maxNodes values.
func FindSubPlans(maxNodes int, exprs ...accessor.Value) ([]*SubPlanRef, error) {
	var (
		refs    []*SubPlanRef
		seen    = map[int]bool{}
		visited int
	)
	stack := make([]accessor.Value, 0, len(exprs))
	for i := len(exprs) - 1; i >= 0; i-- {
		stack = append(stack, exprs[i])
	}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited++
		if visited > maxNodes {
			return nil, errors.Wrapf(ErrExprTooLarge, "limit %d", maxNodes)
		}

		switch v.Kind() {
		case accessor.KindList:
			l, _ := v.List()
			for i := l.Len() - 1; i >= 0; i-- {
				item, err := l.At(i)
				if err != nil {
					return nil, err
				}
				stack = append(stack, item)
			}
		case accessor.KindNode:
			n, _ := v.Node()
			if n.Tag() == SubPlanTag {
				ref, err := DecodeSubPlanRef(n)
				if err != nil {
					return nil, err
				}
				if !ref.IsInitPlan && !seen[ref.ID] {
					seen[ref.ID] = true
					refs = append(refs, ref)
				}
				continue
			}
			names := n.FieldNames()
			for i := len(names) - 1; i >= 0; i-- {
				child, err := n.Field(names[i])
				if err != nil {
					return nil, errors.Wrapf(err, "field %q of %s", names[i], n.Tag())
				}
				if k := child.Kind(); k == accessor.KindNode || k == accessor.KindList {
					stack = append(stack, child)
				}
			}
		}
	}
	return refs, nil
}
