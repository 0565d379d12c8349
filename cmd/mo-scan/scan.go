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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/config"
	"github.com/matrixorigin/vecscan/pkg/container/batch"
	"github.com/matrixorigin/vecscan/pkg/logutil"
	"github.com/matrixorigin/vecscan/pkg/sql/colexec/table_scan"
	"github.com/matrixorigin/vecscan/pkg/sql/plan"
	"github.com/matrixorigin/vecscan/pkg/vm"
	"github.com/matrixorigin/vecscan/pkg/vm/engine/memengine"
	"github.com/matrixorigin/vecscan/pkg/vm/pipeline"
	"github.com/matrixorigin/vecscan/pkg/vm/process"
)

const scanDB = "mo_scan"

type scanOptions struct {
	table   string
	schema  string
	csvPath string
	header  bool
	comma   rune
	where   string
	columns string
	// chunkRows is the memengine chunk capacity, default if 0.
	chunkRows uint32
	quiet     bool
}

// columnNDV is the estimated number of distinct non null values of a
// column of the loaded table.
type columnNDV struct {
	name string
	ndv  uint64
}

type ndvList []columnNDV

func (l ndvList) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, c := range l {
		enc.AddUint64(c.name, c.ndv)
	}
	return nil
}

// scanReport is what a scan prints after its rows.
type scanReport struct {
	process.AnalyzeInfo
	ndv ndvList
}

func (r *scanReport) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "input %d rows, output %d rows, chunks scanned %d, pruned %d, lanes %d, tail rows %d, %v",
		r.InputRows, r.OutputRows, r.ChunksScanned, r.ChunksPruned,
		r.Lanes, r.TailRows, time.Duration(r.TimeConsumed))
	if len(r.ndv) > 0 {
		buf.WriteString("\ndistinct values:")
		for i, c := range r.ndv {
			if i > 0 {
				buf.WriteByte(',')
			}
			fmt.Fprintf(&buf, " %s ~%d", c.name, c.ndv)
		}
	}
	return buf.String()
}

// runScan loads the csv into a fresh memory engine, scans it with the
// parameters of the unit in ctx and writes the selected rows to out, one
// tab separated line per row. Rows of different workers interleave by
// batch.
func runScan(ctx context.Context, opts scanOptions, out io.Writer) (scanReport, error) {
	eng := memengine.New(&memengine.Options{ChunkCapacity: opts.chunkRows})
	pu := config.NewParameterUnit(config.NewDefaultParameters(), eng)
	if v, ok := ctx.Value(config.ParameterUnitKey).(*config.ParameterUnit); ok {
		pu.SV = v.SV
	}
	ctx = context.WithValue(ctx, config.ParameterUnitKey, pu)

	var report scanReport
	if err := load(ctx, opts); err != nil {
		return report, err
	}

	rel, err := config.GetParameterUnit(ctx).StorageEngine.Relation(ctx, scanDB, opts.table)
	if err != nil {
		return report, err
	}
	for _, attr := range rel.TableDef().Attrs {
		report.ndv = append(report.ndv, columnNDV{name: attr.Name, ndv: rel.NDV(attr.Idx)})
	}
	logutil.Info("table stats", zap.String("table", opts.table),
		zap.Int64("rows", rel.Rows()), zap.Object("ndv", report.ndv))

	var filter plan.Expr
	if strings.TrimSpace(opts.where) != "" {
		if filter, err = plan.ParseWhere(ctx, rel.TableDef(), opts.where); err != nil {
			return report, err
		}
	}
	var columns []string
	if opts.columns != "" {
		for _, c := range strings.Split(opts.columns, ",") {
			columns = append(columns, strings.TrimSpace(c))
		}
	}

	params := pu.SV
	arg, err := table_scan.New(ctx, eng, scanDB, opts.table, filter, columns, params)
	if err != nil {
		return report, err
	}
	pred := "none"
	if arg.Predicate() != nil {
		pred = arg.Predicate().String()
	}
	logutil.Info("scan plan",
		zap.String("table", opts.table),
		zap.String("predicate", pred),
		zap.String("strategy", string(params.FilterStrategy)),
		zap.Int("workers", params.Parallelism))

	var mu sync.Mutex
	w := bufio.NewWriter(out)
	p := pipeline.New(params.Parallelism,
		func(worker, workers int) vm.Operator {
			return arg.Partition(worker, workers)
		},
		func(worker int) vm.Consumer {
			var line strings.Builder
			return vm.ConsumerFunc(func(proc *process.Process, bat *batch.RowBatch) error {
				if opts.quiet {
					return nil
				}
				accs := bat.Attributes()
				mu.Lock()
				defer mu.Unlock()
				var werr error
				bat.Iterate(func(tid uint32) bool {
					line.Reset()
					for i, acc := range accs {
						if i > 0 {
							line.WriteByte('\t')
						}
						line.WriteString(acc.Value(tid).Format(acc.Attr().Type.Oid.Family()))
					}
					line.WriteByte('\n')
					_, werr = w.WriteString(line.String())
					return werr == nil
				})
				if werr != nil {
					return moerr.ConvertGoError(proc.Ctx, werr)
				}
				return nil
			})
		})

	proc := process.New(ctx, params, eng.LatestSnapshot())
	defer proc.Cancel()
	logutil.Debug("scan pipeline", zap.String("pipeline", p.String()), zap.String("query", proc.QueryId()))
	err = p.Run(proc)
	report.AnalyzeInfo = proc.Analyze.Snapshot()
	if err != nil {
		return report, err
	}
	if err = w.Flush(); err != nil {
		return report, moerr.ConvertGoError(ctx, err)
	}
	return report, nil
}

func load(ctx context.Context, opts scanOptions) error {
	pu := config.GetParameterUnit(ctx)
	def, err := parseSchema(ctx, opts.table, opts.schema)
	if err != nil {
		return err
	}
	if err = pu.StorageEngine.Create(ctx, scanDB, opts.table, def); err != nil {
		return err
	}
	f, err := os.Open(opts.csvPath)
	if err != nil {
		return moerr.NewInvalidInput(ctx, "open %s: %v", opts.csvPath, err)
	}
	defer f.Close()

	eng := pu.StorageEngine.(*memengine.Engine)
	txn := eng.Begin()
	n, err := memengine.LoadCSV(ctx, txn, scanDB, opts.table, f, memengine.CSVOptions{
		Comma:  opts.comma,
		Header: opts.header,
	})
	if err != nil {
		_ = txn.Rollback(ctx)
		return err
	}
	if err = txn.Commit(ctx); err != nil {
		return err
	}
	logutil.Info("csv loaded", zap.String("file", opts.csvPath), zap.Int("rows", n))
	return nil
}
