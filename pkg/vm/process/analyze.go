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
	"sync/atomic"
	"time"
)

func (a *analyze) Start() {
	a.start = time.Now().UnixNano()
}

func (a *analyze) Stop() {
	if a.analInfo != nil {
		atomic.AddInt64(&a.analInfo.TimeConsumed, time.Now().UnixNano()-a.start)
	}
}

// Input counts rows of a batch range entering the filters.
func (a *analyze) Input(rows int) {
	if a.analInfo != nil {
		atomic.AddInt64(&a.analInfo.InputRows, int64(rows))
	}
}

// Output counts rows handed to the consumer.
func (a *analyze) Output(rows int) {
	if a.analInfo != nil {
		atomic.AddInt64(&a.analInfo.OutputRows, int64(rows))
	}
}

func (a *analyze) Chunk(pruned bool) {
	if a.analInfo == nil {
		return
	}
	if pruned {
		atomic.AddInt64(&a.analInfo.ChunksPruned, 1)
	} else {
		atomic.AddInt64(&a.analInfo.ChunksScanned, 1)
	}
}

func (a *analyze) Lanes(lanes, tail int) {
	if a.analInfo != nil {
		atomic.AddInt64(&a.analInfo.Lanes, int64(lanes))
		atomic.AddInt64(&a.analInfo.TailRows, int64(tail))
	}
}

// Snapshot returns a consistent enough copy for reporting once the
// workers are done.
func (info *AnalyzeInfo) Snapshot() AnalyzeInfo {
	return AnalyzeInfo{
		InputRows:     atomic.LoadInt64(&info.InputRows),
		OutputRows:    atomic.LoadInt64(&info.OutputRows),
		TimeConsumed:  atomic.LoadInt64(&info.TimeConsumed),
		ChunksScanned: atomic.LoadInt64(&info.ChunksScanned),
		ChunksPruned:  atomic.LoadInt64(&info.ChunksPruned),
		Lanes:         atomic.LoadInt64(&info.Lanes),
		TailRows:      atomic.LoadInt64(&info.TailRows),
	}
}
