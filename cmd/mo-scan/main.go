// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/config"
	"github.com/matrixorigin/vecscan/pkg/logutil"
)

func rootCommand() *cobra.Command {
	var (
		opts       scanOptions
		configFile string
		delimiter  string
		chunkRows  uint32
	)
	cmd := &cobra.Command{
		Use:   "mo-scan <csv-file>",
		Short: "Filter a csv table with the vectorized scan",
		Long: "Load a csv file into an in-memory table and print the rows that pass the filter, " +
			"followed by the scan statistics",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			params := config.NewDefaultParameters()
			if configFile != "" {
				var err error
				if params, err = config.LoadParameters(ctx, configFile); err != nil {
					return err
				}
			}
			logutil.SetupMOLogger(&params.Log)
			ctx = context.WithValue(ctx, config.ParameterUnitKey, config.NewParameterUnit(params, nil))

			d := []rune(delimiter)
			if len(d) != 1 {
				return moerr.NewInvalidInput(ctx, "delimiter must be one character, got %q", delimiter)
			}
			opts.csvPath = args[0]
			opts.comma = d[0]
			opts.chunkRows = chunkRows

			report, err := runScan(ctx, opts, cmd.OutOrStdout())
			fmt.Fprintln(cmd.ErrOrStderr(), report.String())
			return err
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().StringVarP(&opts.schema, "schema", "s", "", "column list, e.g. \"id bigint not null, price double\"")
	cmd.Flags().StringVarP(&opts.where, "where", "w", "", "conjunctive filter, e.g. \"price > 10 AND name = 'x'\"")
	cmd.Flags().StringVarP(&opts.columns, "columns", "c", "", "comma separated output columns, all if empty")
	cmd.Flags().StringVarP(&opts.table, "table", "t", "t", "table name")
	cmd.Flags().StringVar(&configFile, "cfg", "", "toml configuration of the scan, defaults if empty")
	cmd.Flags().BoolVar(&opts.header, "header", false, "skip the first csv record")
	cmd.Flags().StringVar(&delimiter, "delimiter", ",", "csv field delimiter")
	cmd.Flags().Uint32Var(&chunkRows, "chunk-rows", 0, "rows per storage chunk")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "only print the statistics")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mo-scan: %v\n", err)
		stop()
		os.Exit(1)
	}
}
