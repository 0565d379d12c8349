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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/txn/txnbase"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
	"github.com/matrixorigin/vecscan/pkg/vm/engine/memengine"
)

func TestPerformVectorizedRead(t *testing.T) {
	ctx := context.Background()
	e := memengine.NewTestEngine(16)
	require.NoError(t, memengine.CreateAndLoad(ctx, e, "db", "t",
		[]engine.Attribute{{Name: "x", Type: types.New(types.T_int64, 0, false)}},
		memengine.Int64Rows(0, 1, 2, 3, 4, 5)))
	s1 := e.LatestSnapshot()

	txn := e.Begin()
	require.NoError(t, txn.Delete(ctx, "db", "t", 0, 1))
	require.NoError(t, txn.Delete(ctx, "db", "t", 0, 4))
	require.NoError(t, txn.Append(ctx, "db", "t", memengine.Int64Rows(6)))
	require.NoError(t, txn.Commit(ctx))
	s2 := e.LatestSnapshot()

	rel, _ := e.Relation(ctx, "db", "t")
	chunk, _ := rel.Chunk(0)
	sels := make([]uint32, 16)

	n := New(s1).PerformVectorizedRead(chunk, 0, 7, sels, -1)
	require.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, sels[:n])

	n = New(s2).PerformVectorizedRead(chunk, 0, 7, sels, -1)
	require.Equal(t, []uint32{0, 2, 3, 5, 6}, sels[:n])

	copy(sels, []uint32{1, 3, 4, 6})
	n = New(s2).PerformVectorizedRead(chunk, 0, 7, sels, 4)
	require.Equal(t, []uint32{3, 6}, sels[:n])

	// nothing is visible to a snapshot before the load
	empty := txnbase.Snapshot{TxnID: uuid.New(), TS: types.BuildTS(1, 0)}
	n = New(empty).PerformVectorizedRead(chunk, 0, 7, sels, -1)
	require.Equal(t, 0, n)
	require.Equal(t, empty, New(empty).Snapshot())
}

func TestStopwatch(t *testing.T) {
	base := time.Unix(100, 0)
	cur := base
	stubs := gostub.Stub(&now, func() time.Time { return cur })
	defer stubs.Reset()

	sw := NewStopwatch("scan")
	sw.ClockStart()
	cur = cur.Add(time.Second)
	// a second start does not restart the clock
	sw.ClockStart()
	cur = cur.Add(time.Second)
	sw.ClockPause()
	sw.ClockPause()
	cur = cur.Add(time.Hour)
	sw.ClockStart()
	cur = cur.Add(3 * time.Millisecond)
	sw.ClockPause()
	require.Equal(t, 2*time.Second+3*time.Millisecond, sw.Duration())
	sw.PrintClockDuration(context.Background())

	sw.Reset()
	require.Equal(t, time.Duration(0), sw.Duration())
}
