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

// Package explain renders a captured distributed query plan as an indented
// EXPLAIN-like report. It reads plan state only through package accessor,
// so it works the same on any exported process image.
package explain

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/arenadata/plandump/pkg/accessor"
	"github.com/arenadata/plandump/pkg/plan"
)

const (
	// DefaultMaxDepth bounds plan nesting.
	DefaultMaxDepth = 1000
	// DefaultMaxNodes bounds the number of plan nodes visited in one walk.
	DefaultMaxNodes = 100000
)

var ErrPlanTooDeep = errors.New("plan exceeds maximum depth")

// Input names the state to explain.
type Input struct {
	PlannedStmt accessor.Node
	// EState holds the runtime slice table. It may be nil.
	EState accessor.Node
	// Start defaults to the statement's plan tree.
	Start accessor.Node

	// MaxDepth defaults to DefaultMaxDepth.
	MaxDepth int
	// MaxNodes defaults to DefaultMaxNodes. Shared subtrees count once per visit.
	MaxNodes int
	// MaxExprNodes defaults to plan.DefaultMaxExprNodes.
	MaxExprNodes int
}

// FromQueryDesc locates the statement and execution state of a QueryDesc.
// When the descriptor has no estate, the plan state's is used.
func FromQueryDesc(qd accessor.Node) (Input, error) {
	stmt, err := accessor.Struct(qd, "plannedstmt")
	if err != nil {
		return Input{}, err
	}
	estate, err := accessor.Child(qd, "estate")
	if err != nil {
		return Input{}, err
	}
	if estate == nil {
		ps, err := accessor.Child(qd, "planstate")
		if err != nil {
			return Input{}, err
		}
		if ps != nil {
			if estate, err = accessor.Child(ps, "state"); err != nil {
				return Input{}, err
			}
		}
	}
	return Input{PlannedStmt: stmt, EState: estate}, nil
}

// Explain walks the plan and returns the complete report. Any error aborts
// the whole walk and no partial report is returned.
func Explain(in Input) (*Report, error) {
	stmt, err := plan.DecodePlannedStmt(in.PlannedStmt)
	if err != nil {
		return nil, errors.Wrap(err, "planned statement")
	}
	table, err := plan.SliceTableOf(in.EState)
	if err != nil {
		return nil, errors.Wrap(err, "slice table")
	}

	maxDepth := in.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	maxNodes := in.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	maxExpr := in.MaxExprNodes
	if maxExpr <= 0 {
		maxExpr = plan.DefaultMaxExprNodes
	}
	slices := newSliceContext(table)
	w := &walker{
		stmt:   stmt,
		slices: slices,
		format: &formatter{
			stmt:     stmt,
			names:    NewNames(stmt.RangeTable),
			slices:   slices,
			dispatch: &dispatchResolver{gen: stmt.PlanGen, maxSteps: maxDepth},
		},
		maxDepth:     maxDepth,
		maxNodes:     maxNodes,
		maxExprNodes: maxExpr,
		report: &Report{
			Command: stmt.Command(),
			PlanGen: stmt.PlanGen.String(),
		},
	}

	start := in.Start
	if start == nil {
		start = stmt.PlanTree
	}
	log.Debugf("explaining %s statement, %s plan, %d sub-plans",
		stmt.Command(), stmt.PlanGen, stmt.NumSubPlans())
	if err := w.run(start, slices.initial()); err != nil {
		return nil, err
	}
	return w.report, nil
}
