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

package txnruntime

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/matrixorigin/vecscan/pkg/logutil"
	"github.com/matrixorigin/vecscan/pkg/txn/txnbase"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

// Runtime is the transaction side of a scan.
type Runtime struct {
	snapshot txnbase.Snapshot
}

func New(snapshot txnbase.Snapshot) *Runtime {
	return &Runtime{snapshot: snapshot}
}

func (rt *Runtime) Snapshot() txnbase.Snapshot {
	return rt.snapshot
}

// PerformVectorizedRead keeps the rows of [start, end) of chunk that are
// visible to the snapshot. When n is FullRange (-1) every row of the range
// is checked and sels only receives the output; otherwise sels[:n] holds
// the candidate tuple ids. Visible tuple ids are written to the front of
// sels in order and their number is returned.
func (rt *Runtime) PerformVectorizedRead(chunk engine.Chunk, start, end uint32, sels []uint32, n int) int {
	out := 0
	if n < 0 {
		for tid := start; tid < end; tid++ {
			v := chunk.VersionAt(tid)
			if v.VisibleTo(rt.snapshot) {
				sels[out] = tid
				out++
			}
		}
		return out
	}
	for i := 0; i < n; i++ {
		tid := sels[i]
		v := chunk.VersionAt(tid)
		if v.VisibleTo(rt.snapshot) {
			sels[out] = tid
			out++
		}
	}
	return out
}

var now = time.Now

// Stopwatch accumulates the time spent between ClockStart and ClockPause
// calls.
type Stopwatch struct {
	name    string
	started time.Time
	running bool
	total   time.Duration
}

func NewStopwatch(name string) *Stopwatch {
	return &Stopwatch{name: name}
}

func (sw *Stopwatch) ClockStart() {
	if sw.running {
		return
	}
	sw.started = now()
	sw.running = true
}

func (sw *Stopwatch) ClockPause() {
	if !sw.running {
		return
	}
	sw.total += now().Sub(sw.started)
	sw.running = false
}

func (sw *Stopwatch) Duration() time.Duration {
	return sw.total
}

func (sw *Stopwatch) Reset() {
	sw.total = 0
	sw.running = false
}

// PrintClockDuration logs the accumulated time.
func (sw *Stopwatch) PrintClockDuration(ctx context.Context) {
	logutil.InfoCtx(ctx, "clock duration",
		zap.String("name", sw.name),
		zap.Duration("duration", sw.total))
}
