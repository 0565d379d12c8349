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
	"time"

	"github.com/matrixorigin/vecscan/pkg/config"
	"github.com/matrixorigin/vecscan/pkg/container/batch"
	"github.com/matrixorigin/vecscan/pkg/sql/colexec/filter"
	"github.com/matrixorigin/vecscan/pkg/sql/plan"
	"github.com/matrixorigin/vecscan/pkg/txn/txnruntime"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

// Argument is the producer of a vectorized table scan. It walks the chunks
// of its partition in physical order and emits one RowBatch per sub-range
// of at most BatchCapacity rows that still has rows after filtering.
//
// An Argument is driven by a single goroutine. Use Partition to get one
// per worker.
type Argument struct {
	Db    string
	Table string

	// Worker and Workers select the chunks i with i % Workers == Worker.
	Worker  int
	Workers int

	params *config.ScanParameters
	rel    engine.Relation
	attrs  []engine.Attribute
	expr   plan.Expr
	pred   *plan.Predicate

	ctr
}

// ctr is the per worker execution state.
type ctr struct {
	prepared bool
	simd     *filter.SIMDEvaluator
	scalar   *filter.ScalarEvaluator
	pruner   *zoneMapPruner
	sel      *batch.SelectionVector
	bat      *batch.RowBatch
	sw       *txnruntime.Stopwatch

	next   int
	chunk  engine.Chunk
	offset uint32

	started time.Time
	outRows int
	done    bool
}
