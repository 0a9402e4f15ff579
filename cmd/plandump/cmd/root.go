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
	"io"

	"github.com/spf13/cobra"

	"github.com/arenadata/plandump/pkg/accessor/image"
	"github.com/arenadata/plandump/pkg/config"
	"github.com/arenadata/plandump/pkg/explain"
	"github.com/arenadata/plandump/pkg/status"
	"github.com/arenadata/plandump/pkg/util/logutil"
)

var version string

type rootOptions struct {
	configPath string
	logLevel   string
	queryDesc  string

	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "plandump",
		Short: "Explain query plans found in Greenplum process images",
		Long: `Plandump reads a plan tree exported from a crashed or stopped Greenplum backend
and prints it the way EXPLAIN would, annotated with slices and dispatch info.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd.ErrOrStderr())
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to the plandump config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level, overrides the config file")
	flags.StringVar(&opts.queryDesc, "query-desc", "", "dotted path of the QueryDesc inside the image, overrides the config file")

	rootCmd.AddCommand(newExplainCmd(opts))
	rootCmd.AddCommand(newSlicesCmd(opts))
	rootCmd.AddCommand(newRangeTableCmd(opts))
	rootCmd.AddCommand(newArchiveCmd(opts))
	rootCmd.AddCommand(newShellCmd(opts))
	return rootCmd
}

func Execute() error {
	return NewRootCmd().Execute()
}

func SetVersion(v string) {
	version = v
}

func (o *rootOptions) setup(stderr io.Writer) error {
	var cfg *config.Config
	if o.configPath != "" {
		var err error
		if cfg, err = config.NewConfig(o.configPath); err != nil {
			return status.Wrap(status.CodeInvalidArgument, err)
		}
	} else {
		cfg = config.NewDefaultConfig()
		config.ApplyEnv(cfg)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.queryDesc != "" {
		cfg.QueryDesc = o.queryDesc
	}
	if err := config.CheckConfigValues(cfg); err != nil {
		return status.Wrap(status.CodeInvalidArgument, err)
	}
	if err := logutil.Setup(cfg, stderr); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

// loadInput reads the image at path and locates the configured QueryDesc.
func (o *rootOptions) loadInput(path string) (explain.Input, error) {
	img, err := image.LoadFile(path)
	if err != nil {
		return explain.Input{}, err
	}
	return o.inputOf(img, "")
}

// inputOf builds the explain input of img. A non-empty start is the dotted
// path of the plan node to start from.
func (o *rootOptions) inputOf(img *image.Image, start string) (explain.Input, error) {
	qd, err := img.Lookup(o.cfg.QueryDesc)
	if err != nil {
		return explain.Input{}, err
	}
	in, err := explain.FromQueryDesc(qd)
	if err != nil {
		return explain.Input{}, err
	}
	if start != "" {
		if in.Start, err = img.Lookup(start); err != nil {
			return explain.Input{}, err
		}
	}
	in.MaxDepth = o.cfg.MaxPlanDepth
	in.MaxNodes = o.cfg.MaxPlanNodes
	in.MaxExprNodes = o.cfg.MaxExprNodes
	return in, nil
}
