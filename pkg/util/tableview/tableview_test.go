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

package tableview

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arenadata/plandump/pkg/archive"
	"github.com/arenadata/plandump/pkg/plan"
)

func TestConvertSlicesToTable(t *testing.T) {
	r := require.New(t)

	st := &plan.SliceTable{LocalSlice: 0, Slices: []*plan.Slice{
		{Index: 0, ParentIndex: -1, GangType: plan.GangUnallocated},
		{Index: 1, ParentIndex: 0, GangType: plan.GangPrimaryReader, GangSize: 3,
			DirectDispatch: plan.DirectDispatch{Enabled: true, ContentIDs: []int{2, 0, 2}}},
	}}
	var buf bytes.Buffer
	table := NewTable(&buf)
	r.NoError(ConvertSlicesToTable(st, table))
	table.Render()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	r.Len(lines, 4)
	r.Contains(lines[0], "gang type")
	r.Regexp(`^\s*0\*\s*\|\s*-\s*\|\s*GANGTYPE_UNALLOCATED\s*\|\s*0\s*\|\s*-\s*$`, lines[2])
	r.Regexp(`^\s*1\s*\|\s*0\s*\|\s*GANGTYPE_PRIMARY_READER\s*\|\s*3\s*\|\s*0,2\s*$`, lines[3])

	r.Error(ConvertSlicesToTable(&plan.SliceTable{Slices: []*plan.Slice{nil}}, NewTable(&buf)))
	r.NoError(ConvertSlicesToTable(nil, NewTable(&buf)))
}

func TestConvertRangeTableToTable(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	table := NewTable(&buf)
	ConvertRangeTableToTable([]plan.RangeTblEntry{{RelID: 16384, Alias: "orders"}, {Alias: "*SELECT*"}}, table)
	table.Render()

	out := buf.String()
	r.Regexp(`1\s*\|\s*16384\s*\|\s*orders`, out)
	r.Regexp(`2\s*\|\s*-\s*\|\s*\*SELECT\*`, out)
}

func TestConvertReportsToTable(t *testing.T) {
	r := require.New(t)

	var buf bytes.Buffer
	table := NewTable(&buf)
	ConvertReportsToTable([]archive.Report{{
		ID:        "8d7c1c1e-0d7e-4a4c-9a6f-3f0a8f1d2b11",
		Source:    "core.yaml",
		Command:   "UPDATE",
		PlanGen:   "legacy",
		NumLines:  7,
		CreatedAt: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
	}}, table)
	table.Render()

	r.Regexp(`8d7c1c1e-0d7e-4a4c-9a6f-3f0a8f1d2b11\s*\|\s*2024-05-06 07:08:09\s*\|\s*UPDATE\s*\|\s*legacy\s*\|\s*7\s*\|\s*core.yaml`, buf.String())
}
