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

package batch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/container/vector"
	"github.com/matrixorigin/vecscan/pkg/txn/txnbase"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

type testChunk struct {
	id      uint32
	vecs    []*vector.Vector
	fetches int
}

func (c *testChunk) ID() uint32 { return c.id }

func (c *testChunk) Rows() uint32 { return uint32(c.vecs[0].Length()) }

func (c *testChunk) Column(idx int) (*vector.Vector, error) {
	if idx >= len(c.vecs) {
		return nil, moerr.NewTAERead(moerr.Context())
	}
	c.fetches++
	return c.vecs[idx], nil
}

func (c *testChunk) VersionAt(uint32) txnbase.RowVersion { return txnbase.RowVersion{} }

func newTestChunk(t *testing.T, rows int) *testChunk {
	a := vector.NewVec(types.New(types.T_int32, 0, true))
	s := vector.NewVec(types.New(types.T_varchar, 0, false))
	for i := 0; i < rows; i++ {
		require.NoError(t, vector.Append(a, int32(i), i%5 == 4))
		require.NoError(t, vector.AppendBytes(s, []byte{byte('a' + i%26)}, false))
	}
	return &testChunk{vecs: []*vector.Vector{a, s}}
}

func TestSelectionVector(t *testing.T) {
	sv := NewSelectionVector(4)
	require.Equal(t, 4, sv.Capacity())
	require.Equal(t, 0, sv.Count())
	sv.Append(3)
	sv.Append(7)
	require.Equal(t, []uint32{3, 7}, sv.Sels())
	require.Equal(t, uint32(7), sv.Get(1))
	require.Equal(t, "Sel[3 7]", sv.String())

	sv.SetFullRange()
	require.True(t, sv.IsFullRange())
	require.Nil(t, sv.Sels())
	require.Equal(t, "Sel[*]", sv.String())
	require.Panics(t, func() { sv.Append(1) })

	sv.Materialize(10, 13)
	require.Equal(t, []uint32{10, 11, 12}, sv.Sels())
	sv.Materialize(0, 4)
	require.Equal(t, 3, sv.Count())

	sv.Reset()
	for i := 0; i < 4; i++ {
		sv.Append(uint32(i))
	}
	require.Panics(t, func() { sv.Append(4) })
	require.Panics(t, func() { sv.SetCount(5) })
	sv.SetFullRange()
	require.Panics(t, func() { sv.Materialize(0, 5) })

	require.Equal(t, DefaultVectorSize, NewSelectionVector(0).Capacity())
}

func TestRowBatchIterate(t *testing.T) {
	chunk := newTestChunk(t, 10)
	sel := NewSelectionVector(8)
	sel.SetFullRange()
	b := NewRowBatch(chunk, 2, 7, sel, true)
	require.Equal(t, 5, b.NumValidRows())

	var seen []uint32
	b.Iterate(func(tid uint32) bool {
		seen = append(seen, tid)
		return tid < 4
	})
	require.Equal(t, []uint32{2, 3, 4}, seen)

	n := b.Filter(func(tid uint32) bool { return tid%2 == 0 })
	require.Equal(t, 3, n)
	require.Equal(t, []uint32{2, 4, 6}, sel.Sels())
	require.Equal(t, 3, b.NumValidRows())

	// filtering is stable and idempotent
	n = b.Filter(func(tid uint32) bool { return tid%2 == 0 })
	require.Equal(t, 3, n)
	require.Equal(t, []uint32{2, 4, 6}, sel.Sels())

	seen = seen[:0]
	b.Iterate(func(tid uint32) bool {
		seen = append(seen, tid)
		return true
	})
	require.Equal(t, []uint32{2, 4, 6}, seen)
	require.Contains(t, b.String(), "Sel[2 4 6]")

	require.Panics(t, func() { b.Reset(chunk, 0, 9, true) })
	require.Panics(t, func() { b.Reset(chunk, 5, 4, true) })
}

func TestAttributeAccessor(t *testing.T) {
	chunk := newTestChunk(t, 40)
	sel := NewSelectionVector(64)
	sel.SetFullRange()
	b := NewRowBatch(chunk, 0, 40, sel, true)
	a := b.AddAttribute(engine.Attribute{Name: "a", Idx: 0, Type: types.New(types.T_int32, 0, true)})
	s := b.AddAttribute(engine.Attribute{Name: "s", Idx: 1, Type: types.New(types.T_varchar, 0, false)})
	require.Len(t, b.Attributes(), 2)

	// nothing is fetched before first use
	require.False(t, a.Bound())
	require.Equal(t, 0, chunk.fetches)

	require.Equal(t, int32(3), GetFixed[int32](a, 3))
	require.True(t, a.IsNull(4))
	require.True(t, a.Value(9).Null)
	require.Equal(t, types.IntDatum(8), a.Value(8))
	require.Equal(t, []int32{8, 0, 10, 11}, LaneWindow[int32](a, 8, 4))
	require.Equal(t, uint64(1<<1|1<<6), a.LaneNulls(8, 8))
	require.Equal(t, 1, chunk.fetches)

	require.Equal(t, []byte("c"), s.GetBytes(2))
	require.Equal(t, 2, chunk.fetches)

	// same chunk keeps the binding, a new chunk drops it
	b.Reset(chunk, 0, 8, true)
	require.True(t, a.Bound())
	other := newTestChunk(t, 8)
	b.Reset(other, 0, 8, true)
	require.False(t, a.Bound())

	// filters share output accessors and get hidden ones for other columns
	require.Same(t, a, b.Accessor(engine.Attribute{Name: "a", Idx: 0}))
	h := b.Accessor(engine.Attribute{Name: "h", Idx: 1, Type: types.New(types.T_varchar, 0, false)})
	require.NotSame(t, s, h)
	require.Same(t, h, b.Accessor(engine.Attribute{Name: "h", Idx: 1}))
	require.Len(t, b.Attributes(), 2)
	require.Equal(t, []byte("c"), h.GetBytes(2))
	b.Reset(chunk, 0, 8, true)
	require.False(t, h.Bound())

	bad := b.AddAttribute(engine.Attribute{Name: "x", Idx: 5})
	_, err := bad.Vector()
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrTAERead))
	require.Panics(t, func() { bad.Value(0) })
}

func TestVectorizedIterate(t *testing.T) {
	chunk := newTestChunk(t, 100)

	t.Run("full range", func(t *testing.T) {
		sel := NewSelectionVector(128)
		sel.SetFullRange()
		b := NewRowBatch(chunk, 0, 70, sel, true)
		require.Equal(t, uint32(64), b.Aligned(32))
		var actives []uint64
		lanes, tail := b.VectorizedIterate(32,
			func(lane uint32, active uint64) uint64 {
				actives = append(actives, active)
				// keep rows that are multiples of 8
				return 0x0101010101010101
			},
			func(tid uint32) bool { return tid == 69 })
		require.Equal(t, 2, lanes)
		require.Equal(t, 6, tail)
		require.Equal(t, []uint64{LaneMask(32), LaneMask(32)}, actives)
		require.Equal(t, []uint32{0, 8, 16, 24, 32, 40, 48, 56, 69}, sel.Sels())
	})

	t.Run("dense selection", func(t *testing.T) {
		sel := NewSelectionVector(128)
		for _, tid := range []uint32{10, 11, 20, 30, 31, 45, 47} {
			sel.Append(tid)
		}
		b := NewRowBatch(chunk, 10, 50, sel, true)
		var actives []uint64
		lanes, tail := b.VectorizedIterate(8,
			func(lane uint32, active uint64) uint64 {
				actives = append(actives, active)
				return ^uint64(0)
			},
			func(tid uint32) bool { return false })
		require.Equal(t, 5, lanes)
		require.Equal(t, 0, tail)
		// lanes 10, 18, 26, 34, 42; lane 34 has no selected row
		require.Equal(t, []uint64{0b11, 1 << 2, 1<<4 | 1<<5, 1<<3 | 1<<5}, actives)
		require.Equal(t, []uint32{10, 11, 20, 30, 31, 45, 47}, sel.Sels())
	})

	t.Run("tail of dense selection", func(t *testing.T) {
		sel := NewSelectionVector(64)
		for _, tid := range []uint32{0, 5, 32} {
			sel.Append(tid)
		}
		b := NewRowBatch(chunk, 0, 33, sel, true)
		lanes, tail := b.VectorizedIterate(32,
			func(lane uint32, active uint64) uint64 { return active &^ 1 },
			func(tid uint32) bool { return true })
		require.Equal(t, 1, lanes)
		require.Equal(t, 1, tail)
		require.Equal(t, []uint32{5, 32}, sel.Sels())
	})

	t.Run("lane width 64", func(t *testing.T) {
		sel := NewSelectionVector(128)
		sel.SetFullRange()
		b := NewRowBatch(chunk, 0, 64, sel, true)
		lanes, tail := b.VectorizedIterate(64,
			func(lane uint32, active uint64) uint64 {
				require.Equal(t, ^uint64(0), active)
				return 1 << 63
			},
			func(tid uint32) bool { return true })
		require.Equal(t, 1, lanes)
		require.Equal(t, 0, tail)
		require.Equal(t, []uint32{63}, sel.Sels())
		require.Panics(t, func() { b.VectorizedIterate(65, nil, nil) })
	})
}
