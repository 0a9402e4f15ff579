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
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/arenadata/plandump/pkg/archive"
	"github.com/arenadata/plandump/pkg/plan"
	"github.com/arenadata/plandump/pkg/util/sliceutil"
)

// ConvertSlicesToTable lists a slice table, one row per slice. The locally
// executing slice is starred.
func ConvertSlicesToTable(st *plan.SliceTable, table *tablewriter.Table) error {
	table.SetHeader([]string{"slice", "parent", "gang type", "gang size", "direct dispatch"})
	if st == nil {
		return nil
	}
	for i, s := range st.Slices {
		if s == nil {
			return fmt.Errorf("slice %d is nil", i)
		}
		index := strconv.Itoa(s.Index)
		if i == st.LocalSlice {
			index += "*"
		}
		parent := "-"
		if !s.IsRoot() {
			parent = strconv.Itoa(s.ParentIndex)
		}
		dispatch := "-"
		if s.DirectDispatch.Enabled {
			dispatch = sliceutil.Join(sliceutil.SliceDeDup(s.DirectDispatch.ContentIDs), ",")
		}
		table.Append([]string{index, parent, plan.GangTypeName(s.GangType), strconv.Itoa(s.GangSize), dispatch})
	}
	return nil
}

// ConvertRangeTableToTable lists range table entries by 1-based ordinal.
func ConvertRangeTableToTable(rtable []plan.RangeTblEntry, table *tablewriter.Table) {
	table.SetHeader([]string{"rti", "relid", "alias"})
	for i, rte := range rtable {
		relid := "-"
		if rte.RelID != 0 {
			relid = strconv.FormatInt(rte.RelID, 10)
		}
		table.Append([]string{strconv.Itoa(i + 1), relid, rte.Alias})
	}
}

// ConvertReportsToTable lists archived reports without their text.
func ConvertReportsToTable(rows []archive.Report, table *tablewriter.Table) {
	table.SetHeader([]string{"id", "created at", "command", "plan gen", "lines", "source"})
	for _, row := range rows {
		table.Append([]string{
			row.ID,
			row.CreatedAt.Format("2006-01-02 15:04:05"),
			row.Command,
			row.PlanGen,
			strconv.Itoa(row.NumLines),
			row.Source,
		})
	}
}

// NewTable returns a borderless ASCII table, the layout every listing uses.
func NewTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	return table
}
