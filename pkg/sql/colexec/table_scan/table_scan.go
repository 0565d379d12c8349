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

package table_scan

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/config"
	"github.com/matrixorigin/vecscan/pkg/container/batch"
	"github.com/matrixorigin/vecscan/pkg/sql/colexec/filter"
	"github.com/matrixorigin/vecscan/pkg/sql/plan"
	"github.com/matrixorigin/vecscan/pkg/txn/txnruntime"
	v2 "github.com/matrixorigin/vecscan/pkg/util/metric/v2"
	"github.com/matrixorigin/vecscan/pkg/vm"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
	"github.com/matrixorigin/vecscan/pkg/vm/process"
)

const argName = "table_scan"

// New resolves db.table, binds the filter and checks the parameters. A
// nil filter scans every visible row; nil attrs outputs every column.
func New(ctx context.Context, eng engine.Engine, db, table string,
	expr plan.Expr, attrs []string, params *config.ScanParameters) (*Argument, error) {
	if params == nil {
		params = config.NewDefaultParameters()
	}
	if err := params.Validate(ctx); err != nil {
		return nil, err
	}
	rel, err := eng.Relation(ctx, db, table)
	if err != nil {
		return nil, err
	}
	def := rel.TableDef()

	arg := &Argument{
		Db:      db,
		Table:   table,
		Workers: 1,
		params:  params,
		rel:     rel,
	}
	if len(attrs) == 0 {
		arg.attrs = def.Attrs
	}
	for _, name := range attrs {
		attr, ok := def.Attribute(name)
		if !ok {
			return nil, moerr.NewBadConfig(ctx, "column '%s' does not exist in table %s", name, table)
		}
		arg.attrs = append(arg.attrs, attr)
	}
	if expr != nil {
		if arg.expr, err = plan.Bind(ctx, def, expr); err != nil {
			return nil, err
		}
		arg.pred = plan.SplitPredicate(arg.expr)
	}
	// compile once so that a bad predicate fails here and not in a worker
	if err = arg.compile(ctx); err != nil {
		return nil, err
	}
	return arg, nil
}

// Partition returns the scan of partition worker of workers. It shares the
// bound table and predicate with arg and has its own execution state.
func (arg *Argument) Partition(worker, workers int) *Argument {
	return &Argument{
		Db:      arg.Db,
		Table:   arg.Table,
		Worker:  worker,
		Workers: workers,
		params:  arg.params,
		rel:     arg.rel,
		attrs:   arg.attrs,
		expr:    arg.expr,
		pred:    arg.pred,
	}
}

// Predicate returns the bound filter split into lane terms and residual,
// nil for a scan without filter.
func (arg *Argument) Predicate() *plan.Predicate {
	return arg.pred
}

func (arg *Argument) String(buf *bytes.Buffer) {
	if arg.pred != nil && len(arg.pred.SIMD) > 0 {
		buf.WriteString(fmt.Sprintf("Scan('%s', %d)", arg.Table, arg.params.LaneWidth))
		return
	}
	buf.WriteString(fmt.Sprintf("Scan('%s')", arg.Table))
}

func (arg *Argument) compile(ctx context.Context) (err error) {
	var terms []plan.SIMDTerm
	if arg.pred != nil {
		terms = arg.pred.SIMD
		if arg.pred.Residual != nil {
			if arg.scalar, err = filter.NewScalarEvaluator(ctx, arg.pred.Residual); err != nil {
				return err
			}
		}
	}
	arg.simd, err = filter.NewSIMDEvaluator(ctx, terms, arg.params.LaneWidth)
	return err
}

func (arg *Argument) Prepare(proc *process.Process) error {
	if arg.prepared {
		return nil
	}
	if arg.simd == nil {
		if err := arg.compile(proc.Ctx); err != nil {
			return err
		}
	}
	if arg.Workers < 1 {
		arg.Workers = 1
	}
	arg.pruner = newZoneMapPruner(arg.rel, arg.pred, arg.params.MaxZoneMapTerms)
	arg.sel = batch.NewSelectionVector(arg.params.BatchCapacity)
	arg.bat = batch.NewRowBatch(nil, 0, 0, arg.sel, true)
	for _, attr := range arg.attrs {
		arg.bat.AddAttribute(attr)
	}
	arg.sw = txnruntime.NewStopwatch(fmt.Sprintf("%s.%s predicate", arg.Db, arg.Table))
	arg.next = arg.Worker
	arg.started = time.Now()
	arg.prepared = true
	return nil
}

func (arg *Argument) Call(proc *process.Process) (vm.CallResult, error) {
	anal := proc.GetAnalyze()
	anal.Start()
	defer anal.Stop()

	result := vm.NewCallResult()
	if arg.done {
		result.Status = vm.ExecStop
		return result, nil
	}
	for {
		if _, isCancel := vm.CancelCheck(proc); isCancel {
			return vm.CancelResult, moerr.NewQueryInterrupted(proc.Ctx)
		}
		if arg.chunk == nil {
			ok, err := arg.nextChunk(anal)
			if err != nil {
				result.Status = vm.ExecStop
				return result, err
			}
			if !ok {
				arg.finish(proc)
				result.Status = vm.ExecStop
				return result, nil
			}
		}

		chunk, start := arg.chunk, arg.offset
		end := start + uint32(arg.params.BatchCapacity)
		if rows := chunk.Rows(); end >= rows {
			end = rows
			arg.chunk = nil
		}
		arg.offset = end

		if n := arg.filterRange(proc, anal, chunk, start, end); n > 0 {
			arg.outRows += n
			result.Batch = arg.bat
			return result, nil
		}
	}
}

// nextChunk moves to the next chunk of the partition that survives zone
// map pruning. It returns false once the partition is exhausted.
func (arg *Argument) nextChunk(anal process.Analyze) (bool, error) {
	for ; arg.next < arg.rel.Chunks(); arg.next += arg.Workers {
		chunk, err := arg.rel.Chunk(arg.next)
		if err != nil {
			return false, err
		}
		if chunk.Rows() == 0 {
			continue
		}
		if arg.pruner.skip(chunk.ID()) {
			anal.Chunk(true)
			v2.ScanPrunedChunkCounter.Inc()
			continue
		}
		anal.Chunk(false)
		v2.ScanScannedChunkCounter.Inc()
		arg.chunk, arg.offset = chunk, 0
		arg.next += arg.Workers
		return true, nil
	}
	return false, nil
}

// filterRange runs the filter stages on rows [start, end) of chunk in the
// configured order and returns the number of surviving rows.
func (arg *Argument) filterRange(proc *process.Process, anal process.Analyze,
	chunk engine.Chunk, start, end uint32) int {
	bat := arg.bat
	bat.Reset(chunk, start, end, true)
	arg.sel.SetFullRange()
	anal.Input(int(end - start))

	switch {
	case arg.pred == nil:
		arg.visibility(proc, chunk, start, end)
	case arg.params.FilterStrategy == config.VisibilityFirst:
		if arg.visibility(proc, chunk, start, end) > 0 {
			arg.predicate(anal)
		}
	default:
		if arg.predicate(anal) > 0 {
			arg.visibility(proc, chunk, start, end)
		}
	}

	bat.SetCompacted(true)
	n := bat.NumValidRows()
	anal.Output(n)
	return n
}

func (arg *Argument) predicate(anal process.Analyze) int {
	arg.sw.ClockStart()
	defer arg.sw.ClockPause()

	lanes, tail := arg.simd.Filter(arg.bat)
	anal.Lanes(lanes, tail)
	if arg.scalar != nil && arg.bat.NumValidRows() > 0 {
		arg.scalar.Filter(arg.bat)
	}
	return arg.bat.NumValidRows()
}

// visibility keeps the selected rows visible to the snapshot of proc. A
// range that is entirely visible keeps the full range selection.
func (arg *Argument) visibility(proc *process.Process, chunk engine.Chunk, start, end uint32) int {
	full := arg.sel.IsFullRange()
	n := proc.Runtime.PerformVectorizedRead(chunk, start, end, arg.sel.Buffer(), arg.sel.Count())
	if full && n == int(end-start) {
		arg.sel.SetFullRange()
		return n
	}
	arg.sel.SetCount(n)
	return n
}

func (arg *Argument) finish(proc *process.Process) {
	arg.done = true
	arg.sw.PrintClockDuration(proc.Ctx)
	v2.ScanPredicateDurationHistogram.Observe(arg.sw.Duration().Seconds())
	v2.ScanDurationHistogram.Observe(time.Since(arg.started).Seconds())
	v2.ScanOutputRowsCounter.Add(float64(arg.outRows))
	proc.Debug("table scan done",
		zap.String("table", arg.Db+"."+arg.Table),
		zap.Int("worker", arg.Worker),
		zap.Int("rows", arg.outRows),
		zap.Duration("predicate", arg.sw.Duration()))
}

// Reset rewinds the scan to the first chunk of its partition.
func (arg *Argument) Reset(proc *process.Process, pipelineFailed bool, err error) {
	if !arg.prepared {
		return
	}
	arg.next = arg.Worker
	arg.chunk = nil
	arg.offset = 0
	arg.outRows = 0
	arg.done = false
	arg.sw.Reset()
	arg.started = time.Now()
}

func (arg *Argument) Free(proc *process.Process, pipelineFailed bool, err error) {
	if pipelineFailed {
		proc.Debug("table scan failed", zap.String("table", arg.Table), zap.Error(err))
	}
	arg.ctr = ctr{}
}
