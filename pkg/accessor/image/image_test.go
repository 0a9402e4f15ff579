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

package image

import (
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/arenadata/plandump/pkg/accessor"
)

const testImage = `
queryDesc:
  type: T_QueryDesc
  plannedstmt:
    type: T_PlannedStmt
    commandType: CMD_SELECT
    planTree: &scan
      type: T_SeqScan
      scanrelid: 1
      flow: {type: T_Flow, flotype: FLOW_PARTITIONED, numsegments: 0x3}
      lefttree: null
    subplans:
      - *scan
      - null
  estate:
    type: T_EState
    es_sliceTable:
      type: T_SliceTable
      localSlice: 0
      slices:
        - {type: T_Slice, sliceIndex: 0, parentIndex: -1, gangType: GANGTYPE_UNALLOCATED, gangSize: 0,
           directDispatch: {isDirectDispatch: false, contentIds: [0, 2]}}
`

func TestLoadAndLookup(t *testing.T) {
	r := require.New(t)

	img, err := Load(strings.NewReader(testImage))
	r.NoError(err)
	r.Equal("<reader>", img.Source())

	stmt, err := img.Lookup("queryDesc.plannedstmt")
	r.NoError(err)
	r.Equal("T_PlannedStmt", stmt.Tag())
	r.Equal([]string{"commandType", "planTree", "subplans"}, stmt.FieldNames())

	cmd, err := accessor.Enum(stmt, "commandType")
	r.NoError(err)
	r.Equal("CMD_SELECT", cmd)

	tree, err := accessor.Struct(stmt, "planTree")
	r.NoError(err)
	r.Equal("T_SeqScan", tree.Tag())

	flow, err := accessor.Struct(tree, "flow")
	r.NoError(err)
	n, err := accessor.Int(flow, "numsegments")
	r.NoError(err)
	r.Equal(int64(3), n)

	left, err := accessor.Child(tree, "lefttree")
	r.NoError(err)
	r.Nil(left)

	subplans, err := accessor.ListOf(stmt, "subplans")
	r.NoError(err)
	r.Equal(2, subplans.Len())
	aliased, err := accessor.NodeAt(subplans, 0)
	r.NoError(err)
	r.Equal("T_SeqScan", aliased.Tag())
	missing, err := accessor.NodeAt(subplans, 1)
	r.NoError(err)
	r.Nil(missing)
	_, err = subplans.At(2)
	r.Equal(accessor.ErrOutOfRange, pkgerrors.Cause(err))

	slice, err := img.Lookup("queryDesc.estate.es_sliceTable")
	r.NoError(err)
	slices, err := accessor.ListOf(slice, "slices")
	r.NoError(err)
	first, err := accessor.NodeAt(slices, 0)
	r.NoError(err)
	parent, err := accessor.Int(first, "parentIndex")
	r.NoError(err)
	r.Equal(int64(-1), parent)
	dd, err := accessor.Struct(first, "directDispatch")
	r.NoError(err)
	r.Equal("", dd.Tag())
	isDD, err := accessor.Bool(dd, "isDirectDispatch")
	r.NoError(err)
	r.False(isDD)
	ids, err := accessor.ListOf(dd, "contentIds")
	r.NoError(err)
	id, err := accessor.IntAt(ids, 1)
	r.NoError(err)
	r.Equal(int64(2), id)
}

func TestLookupErrors(t *testing.T) {
	r := require.New(t)

	img, err := Load(strings.NewReader(testImage))
	r.NoError(err)

	_, err = img.Lookup("queryDesc.planstate")
	r.Error(err)
	r.Equal(accessor.ErrNoField, pkgerrors.Cause(err))

	_, err = img.Lookup("queryDesc.plannedstmt.planTree.lefttree")
	r.Equal(accessor.ErrNoField, pkgerrors.Cause(err))
}

func TestLoadJSON(t *testing.T) {
	r := require.New(t)

	img, err := Load(strings.NewReader(`{"queryDesc": {"type": "T_QueryDesc", "plannedstmt": {"type": "T_PlannedStmt", "planGen": "PLANGEN_PLANNER"}}}`))
	r.NoError(err)
	stmt, err := img.Lookup("queryDesc.plannedstmt")
	r.NoError(err)
	gen, err := accessor.Enum(stmt, "planGen")
	r.NoError(err)
	r.Equal("PLANGEN_PLANNER", gen)
}

func TestLoadMalformed(t *testing.T) {
	r := require.New(t)

	for _, doc := range []string{"", "- a\n- b\n", "a: [1, 2"} {
		_, err := Load(strings.NewReader(doc))
		r.Error(err, doc)
		r.Equal(ErrBadImage, pkgerrors.Cause(err), doc)
	}

	_, err := LoadFile("testdata/does-not-exist.yaml")
	r.Error(err)
}
