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
	"strings"

	"github.com/influxdata/go-prompt"
	"github.com/spf13/cobra"

	"github.com/arenadata/plandump/pkg/accessor/image"
	"github.com/arenadata/plandump/pkg/explain"
	"github.com/arenadata/plandump/pkg/plan"
	"github.com/arenadata/plandump/pkg/sink"
	"github.com/arenadata/plandump/pkg/util/tableview"
)

var shellCommands = []prompt.Suggest{
	{Text: "explain", Description: "explain the plan, optionally from the node at a dotted path"},
	{Text: "slices", Description: "list the runtime slice table"},
	{Text: "rtable", Description: "list the range table"},
	{Text: "fields", Description: "list the fields of the node at a dotted path"},
	{Text: "format", Description: "set the output format: text, dot or json"},
	{Text: "help", Description: "show commands"},
	{Text: "exit", Description: "leave the shell"},
}

func newShellCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell IMAGE",
		Short: "Inspect an image interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := image.LoadFile(args[0])
			if err != nil {
				return err
			}
			s := &shell{root: root, img: img, out: cmd.OutOrStdout(), format: root.cfg.Output.Format, color: root.cfg.Output.Color}
			s.runPromptMode()
			return nil
		},
	}
}

// shell is an interactive session over one loaded image.
type shell struct {
	root   *rootOptions
	img    *image.Image
	out    io.Writer
	format string
	color  bool
	done   bool
}

func (s *shell) runPromptMode() {
	p := prompt.New(s.executor, s.completer,
		prompt.OptionPrefix("plandump> "),
		prompt.OptionTitle("plandump: "+s.img.Source()),
		prompt.OptionPrefixTextColor(prompt.Yellow),
	)
	for !s.done {
		for _, line := range strings.Split(p.Input(), ";") {
			s.executor(line)
			if s.done {
				break
			}
		}
	}
}

func (s *shell) executor(line string) {
	if err := s.execute(line); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
}

func (s *shell) completer(d prompt.Document) []prompt.Suggest {
	if strings.Contains(d.TextBeforeCursor(), " ") {
		return nil
	}
	return prompt.FilterHasPrefix(shellCommands, d.GetWordBeforeCursor(), true)
}

// execute runs one shell command line.
func (s *shell) execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	switch fields[0] {
	case "explain":
		in, err := s.root.inputOf(s.img, arg)
		if err != nil {
			return err
		}
		rep, err := explain.Explain(in)
		if err != nil {
			return err
		}
		return sink.NewConsole(s.out, s.format, s.color).Write(rep)
	case "slices":
		in, err := s.root.inputOf(s.img, "")
		if err != nil {
			return err
		}
		st, err := plan.SliceTableOf(in.EState)
		if err != nil {
			return err
		}
		table := tableview.NewTable(s.out)
		if err := tableview.ConvertSlicesToTable(st, table); err != nil {
			return err
		}
		table.Render()
	case "rtable":
		in, err := s.root.inputOf(s.img, "")
		if err != nil {
			return err
		}
		stmt, err := plan.DecodePlannedStmt(in.PlannedStmt)
		if err != nil {
			return err
		}
		table := tableview.NewTable(s.out)
		tableview.ConvertRangeTableToTable(stmt.RangeTable, table)
		table.Render()
	case "fields":
		n, err := s.img.Lookup(arg)
		if err != nil {
			return err
		}
		tag := n.Tag()
		if tag == "" {
			tag = "(untagged)"
		}
		fmt.Fprintf(s.out, "%s: %s\n", tag, strings.Join(n.FieldNames(), ", "))
	case "format":
		if err := checkFormat(arg); err != nil {
			return err
		}
		s.format = arg
	case "help":
		for _, c := range shellCommands {
			fmt.Fprintf(s.out, "%-8s %s\n", c.Text, c.Description)
		}
	case "exit", "quit":
		s.done = true
	default:
		return fmt.Errorf("unknown command %q, try help", fields[0])
	}
	return nil
}
