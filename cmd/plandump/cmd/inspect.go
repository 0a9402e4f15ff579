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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arenadata/plandump/pkg/config"
	"github.com/arenadata/plandump/pkg/plan"
	"github.com/arenadata/plandump/pkg/status"
	"github.com/arenadata/plandump/pkg/util/tableview"
)

func newSlicesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "slices IMAGE",
		Short: "List the runtime slice table of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := root.loadInput(args[0])
			if err != nil {
				return err
			}
			st, err := plan.SliceTableOf(in.EState)
			if err != nil {
				return err
			}
			if st == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no slice table in image")
				return nil
			}
			table := tableview.NewTable(cmd.OutOrStdout())
			if err := tableview.ConvertSlicesToTable(st, table); err != nil {
				return err
			}
			table.Render()
			return nil
		},
	}
}

func newRangeTableCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rtable IMAGE",
		Aliases: []string{"rangetable"},
		Short:   "List the range table of the planned statement",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := root.loadInput(args[0])
			if err != nil {
				return err
			}
			stmt, err := plan.DecodePlannedStmt(in.PlannedStmt)
			if err != nil {
				return err
			}
			table := tableview.NewTable(cmd.OutOrStdout())
			tableview.ConvertRangeTableToTable(stmt.RangeTable, table)
			table.Render()
			return nil
		},
	}
}

func checkFormat(format string) error {
	switch format {
	case config.FormatText, config.FormatDot, config.FormatJSON:
		return nil
	}
	return status.New(status.CodeInvalidArgument, fmt.Sprintf("unsupported output format %q", format))
}
