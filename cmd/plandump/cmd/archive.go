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
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arenadata/plandump/pkg/archive"
	"github.com/arenadata/plandump/pkg/constant"
	"github.com/arenadata/plandump/pkg/sink"
	"github.com/arenadata/plandump/pkg/status"
	"github.com/arenadata/plandump/pkg/util/logutil"
	"github.com/arenadata/plandump/pkg/util/tableview"
)

func newArchiveCmd(root *rootOptions) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse reports stored by explain --archive",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List archived reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := archive.Open(&root.cfg.Archive.Storage)
			if err != nil {
				return err
			}
			defer store.Close()
			rows, err := store.List(limit)
			if err != nil {
				return err
			}
			table := tableview.NewTable(cmd.OutOrStdout())
			tableview.ConvertReportsToTable(rows, table)
			table.Render()
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "maximum number of reports, 0 lists all")

	var format string
	var colored bool
	showCmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print an archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = root.cfg.Output.Format
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			timeStart := time.Now()
			logEntry := &logutil.MonitorLogEntry{ActionName: constant.ActionNameArchiveShow}
			err := showArchived(root, args[0], sink.NewConsole(cmd.OutOrStdout(), format, colored), logEntry)
			logEntry.CostTime = time.Since(timeStart)
			if err != nil {
				logEntry.ErrorCode = status.FromError(err).Code().String()
				logEntry.ErrorMsg = err.Error()
				log.Error(logEntry)
				return err
			}
			log.Info(logEntry)
			return nil
		},
	}
	showCmd.Flags().StringVar(&format, "format", "", "output format: text, dot or json")
	showCmd.Flags().BoolVar(&colored, "color", false, "highlight motions and sub-plan headers")

	archiveCmd.AddCommand(listCmd, showCmd)
	return archiveCmd
}

func showArchived(root *rootOptions, id string, s sink.Sink, logEntry *logutil.MonitorLogEntry) error {
	store, err := archive.Open(&root.cfg.Archive.Storage)
	if err != nil {
		return err
	}
	defer store.Close()
	row, err := store.Get(id)
	if err != nil {
		return err
	}
	logEntry.Source = row.Source
	logEntry.QueryDesc = row.QueryDesc
	logEntry.Command = row.Command
	logEntry.Lines = row.NumLines
	rep, err := row.Explained()
	if err != nil {
		return err
	}
	return s.Write(rep)
}
