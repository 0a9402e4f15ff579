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
	log "github.com/sirupsen/logrus"

	"github.com/arenadata/plandump/pkg/accessor"
	"github.com/arenadata/plandump/pkg/plan"
)

const sharedOuterRef = "See first subplan of Hash Join"

// workItem is either a plan node still to be visited or a ready line.
type workItem struct {
	node  accessor.Node
	slice *plan.Slice
	depth int
	path  string

	kind LineKind
	text string
}

type walker struct {
	stmt         *plan.PlannedStmt
	slices       sliceContext
	format       *formatter
	maxDepth     int
	maxNodes     int
	maxExprNodes int

	visited int
	report  *Report
}

// run visits the tree below start depth first on an explicit stack. Each
// item carries the slice of its scope.
func (w *walker) run(start accessor.Node, slice *plan.Slice) error {
	stack := []workItem{{node: start, slice: slice, path: "planTree"}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.node == nil {
			w.report.add(it.depth, it.kind, it.text)
			continue
		}
		children, err := w.visit(it)
		if err != nil {
			return err
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return nil
}

func (w *walker) visit(it workItem) ([]workItem, error) {
	if it.depth >= w.maxDepth {
		return nil, errors.Wrapf(ErrPlanTooDeep, "limit %d at %s", w.maxDepth, it.path)
	}
	w.visited++
	if w.visited > w.maxNodes {
		return nil, errors.Wrapf(ErrPlanTooDeep, "more than %d nodes at %s", w.maxNodes, it.path)
	}
	n, err := plan.Decode(it.node)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", it.path)
	}
	cur := it.slice
	if m, ok := n.Detail.(*plan.Motion); ok {
		if cur, err = w.slices.enterMotion(m); err != nil {
			return nil, errors.Wrapf(err, "%s at %s", n.Tag, it.path)
		}
	}
	text, err := w.format.line(n, cur)
	if err != nil {
		return nil, errors.Wrapf(err, "%s at %s", n.Tag, it.path)
	}
	log.Debugf("%s%s [%s]", strings.Repeat("  ", it.depth), text, it.path)
	w.report.add(it.depth, LineNode, text)

	children, err := w.children(n, cur, it)
	return children, errors.Wrapf(err, "%s at %s", n.Tag, it.path)
}

// children lists what goes below n, in output order: init-plans, outer,
// inner, member plans, the wrapped subquery, then correlated sub-plans.
func (w *walker) children(n *plan.Node, cur *plan.Slice, it workItem) ([]workItem, error) {
	var out []workItem
	depth := it.depth + 1
	child := func(node accessor.Node, field string) {
		out = append(out, workItem{node: node, slice: cur, depth: depth, path: it.path + "." + field})
	}

	for i := 0; i < n.InitPlans.Len(); i++ {
		expr, err := accessor.NodeAt(n.InitPlans, i)
		if err != nil {
			return nil, errors.Wrapf(err, "initPlan[%d]", i)
		}
		ref, err := plan.DecodeSubPlanRef(expr)
		if err != nil {
			return nil, errors.Wrapf(err, "initPlan[%d]", i)
		}
		items, err := w.subPlan(ref, cur, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}

	if j, ok := n.Detail.(*plan.Join); ok && j.SharedOuter {
		out = append(out, workItem{depth: depth, kind: LineReference, text: sharedOuterRef})
	} else if n.Outer != nil {
		child(n.Outer, "lefttree")
	}
	if n.Inner != nil {
		child(n.Inner, "righttree")
	}

	var members accessor.List
	switch d := n.Detail.(type) {
	case *plan.Combinator:
		members = d.Members
	case *plan.ModifyTable:
		members = d.Members
	case *plan.SubqueryScan:
		child(d.SubPlan, "subplan")
	}
	if members != nil {
		field := n.Tag.MembersField()
		for i := 0; i < members.Len(); i++ {
			m, err := accessor.NodeAt(members, i)
			if err != nil {
				return nil, errors.Wrapf(err, "%s[%d]", field, i)
			}
			if m == nil {
				return nil, errors.Wrapf(accessor.ErrNoField, "%s[%d] is NULL", field, i)
			}
			child(m, fmt.Sprintf("%s[%d]", field, i))
		}
	}

	refs, err := plan.FindSubPlans(w.maxExprNodes, n.Qual, n.TargetList)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		items, err := w.subPlan(ref, cur, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

// subPlan emits a header naming the sub-plan, then its tree one level
// deeper, under the sub-plan's dispatch slice when it declares one.
func (w *walker) subPlan(ref *plan.SubPlanRef, cur *plan.Slice, depth int) ([]workItem, error) {
	slice, err := w.slices.enterSubPlan(cur, ref)
	if err != nil {
		return nil, err
	}
	root, err := w.stmt.SubPlan(ref.ID)
	if err != nil {
		return nil, err
	}
	return []workItem{
		{depth: depth, kind: LineHeader, text: subPlanTitle(ref)},
		{node: root, slice: slice, depth: depth + 1, path: fmt.Sprintf("subplans[%d]", ref.ID)},
	}, nil
}

func subPlanTitle(ref *plan.SubPlanRef) string {
	switch {
	case ref.Name != "":
		return ref.Name
	case ref.IsInitPlan:
		return fmt.Sprintf("InitPlan %d", ref.ID)
	}
	return fmt.Sprintf("SubPlan %d", ref.ID)
}
