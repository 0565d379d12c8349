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
	"fmt"
	"math/bits"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

// NewRowBatch returns a batch over rows [start, end) of chunk. A compacted
// batch has a selection holding exactly the rows that passed every stage
// run so far.
func NewRowBatch(chunk engine.Chunk, start, end uint32, sel *SelectionVector, compacted bool) *RowBatch {
	b := &RowBatch{sel: sel}
	b.Reset(chunk, start, end, compacted)
	return b
}

// Reset moves the batch to rows [start, end) of chunk, keeping its
// selection buffer and accessors.
func (b *RowBatch) Reset(chunk engine.Chunk, start, end uint32, compacted bool) {
	if end < start || int(end-start) > b.sel.Capacity() {
		panic(moerr.NewInvalidStateNoCtx("batch range [%d, %d) with selection capacity %d",
			start, end, b.sel.Capacity()))
	}
	b.chunk = chunk
	b.start = start
	b.end = end
	b.compacted = compacted
	for _, acc := range b.attrs {
		acc.reset(chunk)
	}
	for _, acc := range b.hidden {
		acc.reset(chunk)
	}
}

// AddAttribute binds a lazy accessor for attr to the batch.
func (b *RowBatch) AddAttribute(attr engine.Attribute) *AttributeAccessor {
	acc := NewAttributeAccessor(attr)
	acc.reset(b.chunk)
	b.attrs = append(b.attrs, acc)
	return acc
}

// Accessor returns the accessor of column attr.Idx, binding a hidden one
// when the column is not among the output attributes. Hidden accessors are
// used by filters and are not part of Attributes.
func (b *RowBatch) Accessor(attr engine.Attribute) *AttributeAccessor {
	for _, acc := range b.attrs {
		if acc.attr.Idx == attr.Idx {
			return acc
		}
	}
	for _, acc := range b.hidden {
		if acc.attr.Idx == attr.Idx {
			return acc
		}
	}
	acc := NewAttributeAccessor(attr)
	acc.reset(b.chunk)
	b.hidden = append(b.hidden, acc)
	return acc
}

// Attributes returns the output accessors in the order they were added.
func (b *RowBatch) Attributes() []*AttributeAccessor {
	return b.attrs
}

func (b *RowBatch) Chunk() engine.Chunk {
	return b.chunk
}

func (b *RowBatch) ChunkID() uint32 {
	return b.chunk.ID()
}

func (b *RowBatch) Start() uint32 {
	return b.start
}

func (b *RowBatch) End() uint32 {
	return b.end
}

func (b *RowBatch) Sel() *SelectionVector {
	return b.sel
}

func (b *RowBatch) Compacted() bool {
	return b.compacted
}

func (b *RowBatch) SetCompacted(compacted bool) {
	b.compacted = compacted
}

// NumValidRows returns the number of selected rows.
func (b *RowBatch) NumValidRows() int {
	if b.sel.IsFullRange() {
		return int(b.end - b.start)
	}
	return b.sel.Count()
}

// Iterate calls fn for every selected row in order until fn returns false.
func (b *RowBatch) Iterate(fn func(tid uint32) bool) {
	if b.sel.IsFullRange() {
		for tid := b.start; tid < b.end; tid++ {
			if !fn(tid) {
				return
			}
		}
		return
	}
	for _, tid := range b.sel.Sels() {
		if !fn(tid) {
			return
		}
	}
}

// Filter keeps the selected rows for which keep returns true, compacting
// the selection in place and in order. It returns the new count.
func (b *RowBatch) Filter(keep func(tid uint32) bool) int {
	b.sel.Materialize(b.start, b.end)
	sels := b.sel.Buffer()
	n := b.sel.Count()
	out := 0
	for i := 0; i < n; i++ {
		if keep(sels[i]) {
			sels[out] = sels[i]
			out++
		}
	}
	b.sel.SetCount(out)
	return out
}

// Aligned returns the end of the lane aligned prefix of the batch for
// lanes of w rows.
func (b *RowBatch) Aligned(w int) uint32 {
	n := b.end - b.start
	return b.start + uint32(w)*(n/uint32(w))
}

// LaneMask returns the mask with the low w bits set.
func LaneMask(w int) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(w) - 1
}

// VectorizedIterate walks the lane aligned prefix of the batch in lanes of
// w rows. For each lane with at least one selected row it calls laneFn with
// the first row of the lane and the mask of selected rows, bit i for row
// lane+i. The bits of the returned mask, restricted to the selected ones,
// are the survivors of the lane. Selected rows past the aligned prefix are
// passed one by one to tailFn. The selection is compacted to the survivors
// in order. It returns the number of lanes in the aligned prefix and the
// number of tail rows visited.
func (b *RowBatch) VectorizedIterate(w int,
	laneFn func(lane uint32, active uint64) uint64,
	tailFn func(tid uint32) bool) (lanes, tail int) {
	if w <= 0 || w > 64 {
		panic(moerr.NewInvalidStateNoCtx("lane width %d", w))
	}
	align := b.Aligned(w)
	full := b.sel.IsFullRange()
	sels := b.sel.Buffer()
	n := b.sel.Count()
	cursor, out := 0, 0

	for lane := b.start; lane < align; lane += uint32(w) {
		var active uint64
		if full {
			active = LaneMask(w)
		} else {
			for cursor < n && sels[cursor] < lane+uint32(w) {
				active |= 1 << (sels[cursor] - lane)
				cursor++
			}
		}
		lanes++
		if active == 0 {
			continue
		}
		// out never passes cursor, so survivors overwrite consumed entries
		res := laneFn(lane, active) & active
		for res != 0 {
			bit := bits.TrailingZeros64(res)
			sels[out] = lane + uint32(bit)
			out++
			res &= res - 1
		}
	}

	if full {
		for tid := align; tid < b.end; tid++ {
			tail++
			if tailFn(tid) {
				sels[out] = tid
				out++
			}
		}
	} else {
		for ; cursor < n; cursor++ {
			tid := sels[cursor]
			tail++
			if tailFn(tid) {
				sels[out] = tid
				out++
			}
		}
	}
	b.sel.SetCount(out)
	return lanes, tail
}

func (b *RowBatch) String() string {
	return fmt.Sprintf("RowBatch[chunk %d, %d-%d, %s, compacted %v]",
		b.ChunkID(), b.start, b.end, b.sel, b.compacted)
}
