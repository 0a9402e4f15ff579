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
	"strings"

	"github.com/pkg/errors"

	"github.com/arenadata/plandump/pkg/accessor"
)

// PlanGen records which optimizer produced a statement.
type PlanGen int

const (
	// PlanGenUnknown marks legacy statements without a generator field.
	PlanGenUnknown PlanGen = iota
	PlanGenPlanner
	PlanGenOptimizer
)

func (g PlanGen) String() string {
	switch g {
	case PlanGenPlanner:
		return "planner"
	case PlanGenOptimizer:
		return "optimizer"
	}
	return "legacy"
}

// RangeTblEntry is one entry of a statement's range table.
type RangeTblEntry struct {
	RelID int64
	Alias string
}

// PlannedStmt is the decoded top level of a query plan.
type PlannedStmt struct {
	CommandType string
	PlanGen     PlanGen
	PlanTree    accessor.Node
	RangeTable  []RangeTblEntry
	subPlans    accessor.List
}

// Command returns the command type without its CMD_ prefix.
func (p *PlannedStmt) Command() string {
	return strings.TrimPrefix(p.CommandType, "CMD_")
}

// NumSubPlans returns the length of the statement's sub-plan list.
func (p *PlannedStmt) NumSubPlans() int {
	return p.subPlans.Len()
}

// SubPlan returns the plan tree for a 1-based sub-plan id.
func (p *PlannedStmt) SubPlan(id int) (accessor.Node, error) {
	if id < 1 || id > p.subPlans.Len() {
		return nil, errors.Wrapf(ErrSubPlanOutOfRange, "plan_id %d, %d sub-plans", id, p.subPlans.Len())
	}
	n, err := accessor.NodeAt(p.subPlans, id-1)
	if err != nil {
		return nil, errors.Wrapf(err, "sub-plan %d", id)
	}
	if n == nil {
		return nil, errors.Wrapf(accessor.ErrNoField, "sub-plan %d is NULL", id)
	}
	return n, nil
}

// DecodePlannedStmt decodes the statement header and its range table.
// Plan trees stay undecoded until visited.
func DecodePlannedStmt(n accessor.Node) (*PlannedStmt, error) {
	if n == nil {
		return nil, errors.Wrap(accessor.ErrNoField, "planned statement is NULL")
	}
	cmd, err := accessor.Enum(n, "commandType")
	if err != nil {
		return nil, err
	}
	ps := &PlannedStmt{CommandType: cmd}

	gen, err := accessor.Optional(n, "planGen")
	if err != nil {
		return nil, err
	}
	if !gen.IsNull() {
		raw, err := gen.Text()
		if err != nil {
			return nil, errors.Wrap(err, "planGen")
		}
		switch raw {
		case "PLANGEN_PLANNER":
			ps.PlanGen = PlanGenPlanner
		case "PLANGEN_OPTIMIZER":
			ps.PlanGen = PlanGenOptimizer
		default:
			return nil, errors.Wrapf(ErrBadEnum, "planGen %q", raw)
		}
	}

	if ps.PlanTree, err = accessor.Struct(n, "planTree"); err != nil {
		return nil, err
	}
	if ps.subPlans, err = accessor.ListOf(n, "subplans"); err != nil {
		return nil, err
	}
	rtable, err := accessor.ListOf(n, "rtable")
	if err != nil {
		return nil, err
	}
	ps.RangeTable = make([]RangeTblEntry, 0, rtable.Len())
	for i := 0; i < rtable.Len(); i++ {
		rte, err := decodeRangeTblEntry(rtable, i)
		if err != nil {
			return nil, errors.Wrapf(err, "rtable entry %d", i+1)
		}
		ps.RangeTable = append(ps.RangeTable, rte)
	}
	return ps, nil
}

func decodeRangeTblEntry(l accessor.List, i int) (RangeTblEntry, error) {
	n, err := accessor.NodeAt(l, i)
	if err != nil {
		return RangeTblEntry{}, err
	}
	if n == nil {
		return RangeTblEntry{}, errors.Wrap(accessor.ErrNoField, "entry is NULL")
	}
	relid, err := accessor.Int(n, "relid")
	if err != nil {
		return RangeTblEntry{}, err
	}
	eref, err := accessor.Struct(n, "eref")
	if err != nil {
		return RangeTblEntry{}, err
	}
	alias, err := accessor.Enum(eref, "aliasname")
	if err != nil {
		return RangeTblEntry{}, err
	}
	return RangeTblEntry{RelID: relid, Alias: alias}, nil
}
