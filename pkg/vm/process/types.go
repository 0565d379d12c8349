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

package process

import (
	"context"

	"github.com/matrixorigin/vecscan/pkg/config"
	"github.com/matrixorigin/vecscan/pkg/txn/txnbase"
	"github.com/matrixorigin/vecscan/pkg/txn/txnruntime"
)

// AnalyzeInfo accumulates the execution statistics of one operator. It is
// shared by the workers of a parallel scan and updated atomically.
type AnalyzeInfo struct {
	InputRows     int64
	OutputRows    int64
	TimeConsumed  int64
	ChunksScanned int64
	ChunksPruned  int64
	Lanes         int64
	TailRows      int64
}

// Analyze records the work of one operator into its AnalyzeInfo.
type Analyze interface {
	Start()
	Stop()
	Input(rows int)
	Output(rows int)
	Chunk(pruned bool)
	Lanes(lanes, tail int)
}

type analyze struct {
	start    int64
	analInfo *AnalyzeInfo
}

// Process contains context used in query execution
// one or more pipeline will be generated for one query,
// and one pipeline has one process instance.
type Process struct {
	// Id, query id.
	Id string

	Ctx    context.Context
	Cancel context.CancelFunc

	// Snapshot the query reads at.
	Snapshot txnbase.Snapshot
	Runtime  *txnruntime.Runtime

	Params *config.ScanParameters

	Analyze *AnalyzeInfo

	UnixTime int64
}
