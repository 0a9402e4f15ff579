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
	"io"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arenadata/plandump/pkg/accessor/image"
	"github.com/arenadata/plandump/pkg/archive"
	"github.com/arenadata/plandump/pkg/config"
	"github.com/arenadata/plandump/pkg/constant"
	"github.com/arenadata/plandump/pkg/explain"
	"github.com/arenadata/plandump/pkg/sink"
	"github.com/arenadata/plandump/pkg/status"
	"github.com/arenadata/plandump/pkg/util/logutil"
	"github.com/arenadata/plandump/pkg/util/parallel"
)

type explainOptions struct {
	format  string
	output  string
	color   bool
	archive bool
	jobs    int
	start   string
}

func newExplainCmd(root *rootOptions) *cobra.Command {
	opts := &explainOptions{}
	cmd := &cobra.Command{
		Use:   "explain IMAGE...",
		Short: "Print the plan tree held by one or more images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			out := root.cfg.Output
			if flags.Changed("format") {
				out.Format = opts.format
			}
			if flags.Changed("output") {
				out.File = opts.output
			}
			if flags.Changed("color") {
				out.Color = opts.color
			}
			if flags.Changed("archive") {
				root.cfg.Archive.Enabled = opts.archive
			}
			if err := checkFormat(out.Format); err != nil {
				return err
			}
			if out.File != "" && len(args) > 1 {
				return status.New(status.CodeInvalidArgument, "--output takes a single image")
			}

			var store *archive.Store
			if root.cfg.Archive.Enabled {
				var err error
				if store, err = archive.Open(&root.cfg.Archive.Storage); err != nil {
					return err
				}
				defer store.Close()
			}
			newSink := func(path string) sink.Sink {
				var sinks sink.Multi
				if out.File != "" {
					sinks = append(sinks, sink.NewFile(out.File, out.Format))
				} else {
					sinks = append(sinks, sink.NewConsole(cmd.OutOrStdout(), out.Format, out.Color))
				}
				if store != nil {
					sinks = append(sinks, sink.NewArchive(store, path, root.cfg.QueryDesc))
				}
				return sinks
			}
			return runExplain(root, args, opts, cmd.OutOrStdout(), out, newSink)
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: text, dot or json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.color, "color", false, "highlight motions and sub-plan headers")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "store the report in the archive database")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", runtime.NumCPU(), "number of images explained concurrently")
	cmd.Flags().StringVar(&opts.start, "start", "", "dotted path of the plan node to start from, e.g. queryDesc.plannedstmt.planTree.lefttree")
	return cmd
}

// runExplain explains all images concurrently, then delivers the reports
// in argument order. Every image gets a monitor log entry. The first
// failing image decides the returned error.
func runExplain(root *rootOptions, paths []string, opts *explainOptions, stdout io.Writer, out config.OutputConf, newSink func(path string) sink.Sink) error {
	type result struct {
		rep      *explain.Report
		costTime time.Duration
	}
	results, errs := parallel.Run(paths, opts.jobs, func(path string) (result, error) {
		timeStart := time.Now()
		rep, err := explainImage(root, path, opts.start)
		return result{rep: rep, costTime: time.Since(timeStart)}, err
	})

	banner := len(paths) > 1 && out.File == "" && out.Format == config.FormatText
	for i, path := range paths {
		logEntry := &logutil.MonitorLogEntry{
			ActionName: constant.ActionNameExplain,
			Source:     path,
			QueryDesc:  root.cfg.QueryDesc,
			CostTime:   results[i].costTime,
		}
		err := errs[i]
		if err == nil {
			rep := results[i].rep
			logEntry.Command = rep.Command
			logEntry.Lines = len(rep.Lines)
			if banner {
				fmt.Fprintf(stdout, "==> %s <==\n", path)
			}
			err = newSink(path).Write(rep)
			errs[i] = err
		}
		if err != nil {
			logEntry.ErrorCode = status.FromError(err).Code().String()
			logEntry.ErrorMsg = err.Error()
			log.Error(logEntry)
			continue
		}
		log.Info(logEntry)
	}
	return parallel.FirstError(errs)
}

func explainImage(root *rootOptions, path, start string) (*explain.Report, error) {
	img, err := image.LoadFile(path)
	if err != nil {
		return nil, err
	}
	in, err := root.inputOf(img, start)
	if err != nil {
		return nil, err
	}
	return explain.Explain(in)
}
