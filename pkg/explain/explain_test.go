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

package explain_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/arenadata/plandump/pkg/accessor/image"
	"github.com/arenadata/plandump/pkg/explain"
	"github.com/arenadata/plandump/pkg/nodetag"
	"github.com/arenadata/plandump/pkg/plan"
)

func explainImage(t *testing.T, src string) (*explain.Report, error) {
	img, err := image.Load(strings.NewReader(src))
	require.NoError(t, err)
	qd, err := img.Lookup("queryDesc")
	require.NoError(t, err)
	in, err := explain.FromQueryDesc(qd)
	require.NoError(t, err)
	return explain.Explain(in)
}

func mustExplain(t *testing.T, src string) *explain.Report {
	rep, err := explainImage(t, src)
	require.NoError(t, err)
	return rep
}

// queryDesc wraps a plan tree into a single statement image with a
// coordinator slice and one three-segment reader slice.
func queryDesc(planGen, planTree string) string {
	gen := ""
	if planGen != "" {
		gen = "\n    planGen: " + planGen
	}
	return `
queryDesc:
  type: T_QueryDesc
  plannedstmt:
    type: T_PlannedStmt
    commandType: CMD_SELECT` + gen + `
    planTree: ` + planTree + `
    rtable:
      - {type: T_RangeTblEntry, relid: 16384, eref: {aliasname: t}}
  estate:
    type: T_EState
    es_sliceTable:
      type: T_SliceTable
      localSlice: 0
      slices:
        - {type: T_Slice, sliceIndex: 0, parentIndex: -1, gangType: GANGTYPE_UNALLOCATED, gangSize: 0}
        - {type: T_Slice, sliceIndex: 1, parentIndex: 0, gangType: GANGTYPE_PRIMARY_READER, gangSize: 3}
`
}

func TestScanOnly(t *testing.T) {
	r := require.New(t)

	rep := mustExplain(t, `
queryDesc:
  plannedstmt:
    commandType: CMD_SELECT
    planTree: {type: T_SeqScan, scanrelid: 1}
    rtable:
      - {relid: 16384, eref: {aliasname: t}}
  estate:
    es_sliceTable:
      localSlice: 0
      slices:
        - {sliceIndex: 0, parentIndex: -1, gangType: GANGTYPE_PRIMARY_READER, gangSize: 3}
`)
	r.Equal([]explain.Line{{Depth: 0, Kind: explain.LineNode, Text: "SeqScan on t"}}, rep.Lines)
	r.Equal("-> SeqScan on t\n", rep.String())
	r.Equal("SELECT", rep.Command)
	r.Equal("legacy", rep.PlanGen)
}

func TestGatherMotion(t *testing.T) {
	tree := `
      type: T_Motion
      motionID: 1
      motionType: MOTIONTYPE_FIXED
      isBroadcast: false
      flow: {flotype: FLOW_SINGLETON, numsegments: 1}
      lefttree:
        type: T_SeqScan
        scanrelid: 1
        flow: {flotype: FLOW_PARTITIONED, locustype: CdbLocusType_Hashed, numsegments: 3}`
	want := "-> Gather Motion 3:1 slice1; segments 3\n\t-> SeqScan on t\n"
	for _, gen := range []string{"PLANGEN_PLANNER", "PLANGEN_OPTIMIZER", ""} {
		rep := mustExplain(t, queryDesc(gen, tree))
		require.Equal(t, want, rep.String(), gen)
	}
}

func TestHashAggregate(t *testing.T) {
	rep := mustExplain(t, queryDesc("", `{type: T_Agg, aggstrategy: AGG_HASHED}`))
	require.Equal(t, "-> HashAggregate\n", rep.String())
}

func TestUnknownTagAborts(t *testing.T) {
	r := require.New(t)

	rep, err := explainImage(t, queryDesc("PLANGEN_PLANNER", `
      type: T_Limit
      lefttree:
        type: T_Sort
        lefttree: {type: T_Frobnicate}`))
	r.Nil(rep)
	r.Equal(nodetag.ErrUnknown, errors.Cause(err))
	r.Contains(err.Error(), "T_Frobnicate")
	r.Contains(err.Error(), "planTree.lefttree.lefttree")
}

const multiSliceImage = `
queryDesc:
  type: T_QueryDesc
  plannedstmt:
    type: T_PlannedStmt
    commandType: CMD_SELECT
    planGen: PLANGEN_PLANNER
    rtable:
      - {type: T_RangeTblEntry, relid: 16384, eref: {aliasname: t1}}
      - {type: T_RangeTblEntry, relid: 16385, eref: {aliasname: t2}}
      - {type: T_RangeTblEntry, relid: 0, eref: {aliasname: sub}}
    subplans:
      - type: T_Agg
        aggstrategy: AGG_PLAIN
        lefttree:
          type: T_Append
          appendplans:
            - {type: T_SeqScan, scanrelid: 2}
            - {type: T_IndexScan, scanrelid: 2, indexid: 777}
            - {type: T_ShareInputScan, share_id: 5}
      - type: T_SubqueryScan
        scanrelid: 3
        subplan: {type: T_Result}
    planTree:
      type: T_Result
      initPlan:
        - {type: T_SubPlan, plan_id: 1, plan_name: InitPlan 1 (returns $0), is_initplan: true, qDispSliceId: 3}
      lefttree:
        type: T_Motion
        motionID: 1
        motionType: MOTIONTYPE_FIXED
        isBroadcast: false
        flow: {flotype: FLOW_SINGLETON, numsegments: 1}
        lefttree:
          type: T_HashJoin
          jointype: JOIN_INNER
          flow: {flotype: FLOW_PARTITIONED, numsegments: 3}
          qual:
            - type: T_OpExpr
              args:
                - {type: T_SubPlan, plan_id: 2, plan_name: SubPlan 2}
                - {type: T_Var}
          lefttree:
            type: T_Motion
            motionID: 2
            motionType: MOTIONTYPE_HASH
            isBroadcast: false
            flow: {flotype: FLOW_PARTITIONED, numsegments: 3}
            lefttree:
              type: T_SeqScan
              scanrelid: 1
              flow: {flotype: FLOW_PARTITIONED, numsegments: 3}
          righttree:
            type: T_Hash
            lefttree: {type: T_ShareInputScan, share_id: 0}
  estate:
    type: T_EState
    es_sliceTable:
      type: T_SliceTable
      localSlice: 0
      slices:
        - {sliceIndex: 0, parentIndex: -1, gangType: GANGTYPE_UNALLOCATED, gangSize: 0}
        - {sliceIndex: 1, parentIndex: 0, gangType: GANGTYPE_PRIMARY_READER, gangSize: 3}
        - sliceIndex: 2
          parentIndex: 1
          gangType: GANGTYPE_PRIMARY_READER
          gangSize: 3
          directDispatch: {isDirectDispatch: true, contentIds: [2]}
        - {sliceIndex: 3, parentIndex: 0, gangType: GANGTYPE_ENTRYDB_READER, gangSize: 1}
`

const multiSliceReport = `-> Result
	InitPlan 1 (returns $0)
		-> Aggregate
			-> Append
				-> SeqScan on t2
				-> IndexScan on t2 (used index, indexoid 777)
				-> ShareInputScan (share slice:id 3:5)
	-> Gather Motion 3:1 slice1; segments 3
		-> HashJoin INNER Join
			-> Redistribute Motion 1:3 slice2; segments 1
				-> SeqScan on t1
			-> Hash
				-> ShareInputScan (share slice:id 1:0)
			SubPlan 2
				-> SubqueryScan on sub
					-> Result
`

func TestMultiSlicePlan(t *testing.T) {
	r := require.New(t)

	rep := mustExplain(t, multiSliceImage)
	r.Equal(multiSliceReport, rep.String())
	r.Equal(explain.LineHeader, rep.Lines[1].Kind)
	r.Equal(explain.LineHeader, rep.Lines[13].Kind)
	r.Equal("planner", rep.PlanGen)
}

func TestDepthIsBalanced(t *testing.T) {
	rep := mustExplain(t, multiSliceImage)
	open := []int{}
	for i, l := range rep.Lines {
		if i == 0 {
			require.Equal(t, 0, l.Depth)
		} else {
			require.LessOrEqual(t, l.Depth, rep.Lines[i-1].Depth+1, "line %d", i)
		}
		open = append(open[:l.Depth], i)
		if l.Depth > 0 {
			parent := rep.Lines[open[l.Depth-1]]
			require.Equal(t, l.Depth-1, parent.Depth)
		}
	}
}

func TestExplainIsRepeatable(t *testing.T) {
	first := mustExplain(t, multiSliceImage)
	second := mustExplain(t, multiSliceImage)
	require.Equal(t, first, second)
}

func TestSharedOuter(t *testing.T) {
	rep := mustExplain(t, queryDesc("", `
      type: T_NestLoop
      jointype: JOIN_INNER
      shared_outer: true
      lefttree: {type: T_SeqScan, scanrelid: 1}
      righttree: {type: T_Material}`))
	require.Equal(t, "-> NestLoop INNER Join\n\t-> See first subplan of Hash Join\n\t-> Material\n", rep.String())
	require.Equal(t, explain.LineReference, rep.Lines[1].Kind)
}

func TestMotionLabels(t *testing.T) {
	tests := []struct {
		name string
		tree string
		want string
	}{
		{
			name: "explicit gather",
			tree: `{type: T_Motion, motionID: 1, motionType: MOTIONTYPE_FIXED, isBroadcast: false,
                lefttree: {type: T_Result, flow: {flotype: FLOW_REPLICATED, locustype: CdbLocusType_Replicated, numsegments: 3}}}`,
			want: "Explicit Gather Motion 3:1 slice1; segments 3",
		},
		{
			name: "broadcast",
			tree: `{type: T_Motion, motionID: 1, motionType: MOTIONTYPE_FIXED, isBroadcast: true,
                flow: {flotype: FLOW_REPLICATED, numsegments: 2},
                lefttree: {type: T_Result, flow: {flotype: FLOW_PARTITIONED, numsegments: 3}}}`,
			want: "Broadcast Motion 3:2 slice1; segments 3",
		},
		{
			name: "singleton sender",
			tree: `{type: T_Motion, motionID: 1, motionType: MOTIONTYPE_HASH, isBroadcast: false,
                flow: {flotype: FLOW_PARTITIONED, numsegments: 3},
                lefttree: {type: T_Result, flow: {flotype: FLOW_SINGLETON, numsegments: 3}}}`,
			want: "Redistribute Motion 1:3 slice1; segments 1",
		},
		{
			name: "explicit redistribute",
			tree: `{type: T_Motion, motionID: 1, motionType: MOTIONTYPE_EXPLICIT, isBroadcast: false,
                flow: {flotype: FLOW_PARTITIONED, numsegments: 3},
                lefttree: {type: T_Result, flow: {flotype: FLOW_PARTITIONED, numsegments: 3}}}`,
			want: "Explicit Redistribute Motion 3:3 slice1; segments 3",
		},
	}
	for _, tc := range tests {
		rep := mustExplain(t, queryDesc("PLANGEN_PLANNER", tc.tree))
		require.Equal(t, tc.want, rep.Lines[0].Text, tc.name)
	}
}

func TestMotionWithoutSliceTable(t *testing.T) {
	rep := mustExplain(t, `
queryDesc:
  plannedstmt:
    commandType: CMD_SELECT
    planGen: PLANGEN_PLANNER
    planTree:
      type: T_Motion
      motionID: 1
      motionType: MOTIONTYPE_FIXED
      isBroadcast: false
      lefttree: {type: T_ShareInputScan, share_id: 2, flow: {flotype: FLOW_PARTITIONED, numsegments: 4}}
`)
	require.Equal(t, "-> Gather Motion 4:1\n\t-> ShareInputScan (share slice:id -1:2)\n", rep.String())
}

func TestFatalReferences(t *testing.T) {
	tests := []struct {
		name string
		tree string
		err  error
	}{
		{"scan ordinal", `{type: T_SeqScan, scanrelid: 5}`, plan.ErrMissingRangeTableEntry},
		{"zero ordinal", `{type: T_BitmapHeapScan, scanrelid: 0}`, plan.ErrMissingRangeTableEntry},
		{"partition relid", `{type: T_PartitionSelector, relid: 99, scanId: 1}`, plan.ErrMissingRelation},
		{"motion slice", `{type: T_Motion, motionID: 7, motionType: MOTIONTYPE_HASH, isBroadcast: false}`, plan.ErrSliceOutOfRange},
		{"sub-plan id", `{type: T_Result, qual: [{type: T_SubPlan, plan_id: 3}]}`, plan.ErrSubPlanOutOfRange},
		{"init-plan slice", `{type: T_Result, initPlan: [{type: T_SubPlan, plan_id: 1, is_initplan: true, qDispSliceId: 9}]}`, plan.ErrSliceOutOfRange},
		{"init-plan expr", `{type: T_Result, initPlan: [{type: T_Const}]}`, plan.ErrNotSubPlan},
	}
	for _, tc := range tests {
		rep, err := explainImage(t, queryDesc("PLANGEN_PLANNER", tc.tree))
		require.Nil(t, rep, tc.name)
		require.Equal(t, tc.err, errors.Cause(err), tc.name)
	}
}

func TestDepthLimit(t *testing.T) {
	r := require.New(t)

	img, err := image.Load(strings.NewReader(queryDesc("", `
      type: T_Limit
      lefttree:
        type: T_Sort
        lefttree: {type: T_SeqScan, scanrelid: 1}`)))
	r.NoError(err)
	qd, err := img.Lookup("queryDesc")
	r.NoError(err)
	in, err := explain.FromQueryDesc(qd)
	r.NoError(err)

	in.MaxDepth = 2
	_, err = explain.Explain(in)
	r.Equal(explain.ErrPlanTooDeep, errors.Cause(err))

	in.MaxDepth = 3
	rep, err := explain.Explain(in)
	r.NoError(err)
	r.Len(rep.Lines, 3)
}

func TestSelfReferencingImage(t *testing.T) {
	_, err := explainImage(t, queryDesc("", `&loop
      type: T_Material
      lefttree: *loop`))
	require.Equal(t, explain.ErrPlanTooDeep, errors.Cause(err))
}

// joinLadder builds levels of hash joins whose outer and inner trees are the
// same node one level down.
func joinLadder(levels int) string {
	var b strings.Builder
	b.WriteString("\nladder:\n  - &n0 {type: T_SeqScan, scanrelid: 1}\n")
	for i := 1; i <= levels; i++ {
		fmt.Fprintf(&b, "  - &n%d {type: T_HashJoin, jointype: JOIN_INNER, lefttree: *n%d, righttree: *n%d}\n", i, i-1, i-1)
	}
	return b.String() + queryDesc("", fmt.Sprintf("*n%d", levels))
}

func TestSharedSubtreeBudget(t *testing.T) {
	r := require.New(t)

	load := func(levels int) explain.Input {
		img, err := image.Load(strings.NewReader(joinLadder(levels)))
		r.NoError(err)
		qd, err := img.Lookup("queryDesc")
		r.NoError(err)
		in, err := explain.FromQueryDesc(qd)
		r.NoError(err)
		return in
	}

	in := load(3)
	in.MaxNodes = 15
	rep, err := explain.Explain(in)
	r.NoError(err)
	r.Len(rep.Lines, 15)
	r.Equal("SeqScan on t", rep.Lines[3].Text)

	in.MaxNodes = 14
	_, err = explain.Explain(in)
	r.Equal(explain.ErrPlanTooDeep, errors.Cause(err))

	// 2^41 nodes unfolded, well under the depth limit
	in = load(40)
	in.MaxNodes = 1000
	rep, err = explain.Explain(in)
	r.Nil(rep)
	r.Equal(explain.ErrPlanTooDeep, errors.Cause(err))
	r.Contains(err.Error(), "more than 1000 nodes")
}

func TestSliceRestoredAfterInitPlan(t *testing.T) {
	r := require.New(t)

	src := queryDesc("PLANGEN_PLANNER", `
      type: T_Result
      initPlan:
        - {type: T_SubPlan, plan_id: 1, is_initplan: true, qDispSliceId: 1}
        - {type: T_SubPlan, plan_id: 2, is_initplan: true}
      qual:
        - {type: T_SubPlan, plan_id: 3}
      targetlist:
        - type: T_TargetEntry
          expr: {type: T_SubPlan, plan_id: 3}
      lefttree: {type: T_ShareInputScan, share_id: 9}`)
	src = strings.Replace(src, "    rtable:", `    subplans:
      - {type: T_ShareInputScan, share_id: 1}
      - {type: T_ShareInputScan, share_id: 2}
      - {type: T_ShareInputScan, share_id: 3}
    rtable:`, 1)

	rep := mustExplain(t, src)
	r.Equal(`-> Result
	InitPlan 1
		-> ShareInputScan (share slice:id 1:1)
	InitPlan 2
		-> ShareInputScan (share slice:id 0:2)
	-> ShareInputScan (share slice:id 0:9)
	SubPlan 3
		-> ShareInputScan (share slice:id 0:3)
`, rep.String())
	r.Equal(1, strings.Count(rep.String(), "SubPlan 3"))
}

func TestStartNode(t *testing.T) {
	r := require.New(t)

	img, err := image.Load(strings.NewReader(multiSliceImage))
	r.NoError(err)
	qd, err := img.Lookup("queryDesc")
	r.NoError(err)
	in, err := explain.FromQueryDesc(qd)
	r.NoError(err)
	in.Start, err = img.Lookup("queryDesc.plannedstmt.planTree.lefttree.lefttree.righttree")
	r.NoError(err)

	rep, err := explain.Explain(in)
	r.NoError(err)
	// the local slice is the coordinator, so the share scan reports slice 0
	r.Equal("-> Hash\n\t-> ShareInputScan (share slice:id 0:0)\n", rep.String())
}

func TestModifyTable(t *testing.T) {
	rep := mustExplain(t, strings.Replace(queryDesc("", `
      type: T_ModifyTable
      resultRelations: [1]
      plans:
        - {type: T_DML}
        - {type: T_SplitUpdate}`), "CMD_SELECT", "CMD_DELETE", 1))
	require.Equal(t, "-> ModifyTable DELETE on t\n\t-> DML DELETE\n\t-> SplitUpdate\n", rep.String())
}

func TestDumpGraphviz(t *testing.T) {
	rep := &explain.Report{Lines: []explain.Line{
		{Depth: 0, Kind: explain.LineNode, Text: "Result"},
		{Depth: 1, Kind: explain.LineHeader, Text: "InitPlan 1 (returns $0)"},
		{Depth: 2, Kind: explain.LineNode, Text: "Aggregate"},
		{Depth: 1, Kind: explain.LineNode, Text: `Gather "x"`},
	}}
	want := `digraph G {
0 [label="Result" shape=box]
1 [label="InitPlan 1 (returns $0)" shape=plaintext]
2 [label="Aggregate" shape=box]
3 [label="Gather \"x\"" shape=box]
0 -> 1
1 -> 2
0 -> 3
}`
	require.Equal(t, want, rep.DumpGraphviz())
}
