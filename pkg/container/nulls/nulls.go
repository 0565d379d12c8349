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

package nulls

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// Nulls marks the null rows of a column. A nil Nulls or a nil Np holds no
// null.
type Nulls struct {
	Np *roaring.Bitmap
}

func (nsp *Nulls) Clone() *Nulls {
	if nsp == nil {
		return nil
	}
	if nsp.Np == nil {
		return &Nulls{Np: nil}
	}
	return &Nulls{
		Np: nsp.Np.Clone(),
	}
}

func Build(rows ...uint32) *Nulls {
	nsp := &Nulls{}
	Add(nsp, rows...)
	return nsp
}

// Any returns true if any bit in the Nulls is set, otherwise it will return false.
func Any(nsp *Nulls) bool {
	if nsp == nil || nsp.Np == nil {
		return false
	}
	return !nsp.Np.IsEmpty()
}

// Length returns the number of integers contained in the Nulls
func Length(nsp *Nulls) int {
	if nsp == nil || nsp.Np == nil {
		return 0
	}
	return int(nsp.Np.GetCardinality())
}

func String(nsp *Nulls) string {
	if nsp == nil || nsp.Np == nil {
		return "[]"
	}
	return fmt.Sprintf("%v", nsp.Np.ToArray())
}

// Contains returns true if the integer is contained in the Nulls
func Contains(nsp *Nulls, row uint32) bool {
	return nsp != nil && nsp.Np != nil && nsp.Np.Contains(row)
}

func Add(nsp *Nulls, rows ...uint32) {
	if len(rows) == 0 {
		return
	}
	if nsp.Np == nil {
		nsp.Np = roaring.New()
	}
	nsp.Np.AddMany(rows)
}

// AddRange marks [start, end) null.
func AddRange(nsp *Nulls, start, end uint32) {
	if start >= end {
		return
	}
	if nsp.Np == nil {
		nsp.Np = roaring.New()
	}
	nsp.Np.AddRange(uint64(start), uint64(end))
}

func Del(nsp *Nulls, rows ...uint32) {
	if nsp == nil || nsp.Np == nil {
		return
	}
	for _, row := range rows {
		nsp.Np.Remove(row)
	}
}

// LaneMask returns the nulls of [start, start+w) as a bit mask, bit i for
// row start+i. w must not exceed 64.
func LaneMask(nsp *Nulls, start uint32, w int) uint64 {
	if !Any(nsp) {
		return 0
	}
	var mask uint64
	end := uint64(start) + uint64(w)
	it := nsp.Np.Iterator()
	it.AdvanceIfNeeded(start)
	for it.HasNext() {
		row := it.PeekNext()
		if uint64(row) >= end {
			break
		}
		mask |= 1 << (row - start)
		it.Next()
	}
	return mask
}

// Filter returns the nulls at positions sels, renumbered from zero.
func Filter(nsp *Nulls, sels []uint32) *Nulls {
	if !Any(nsp) {
		return &Nulls{}
	}
	ret := &Nulls{}
	for i, sel := range sels {
		if nsp.Np.Contains(sel) {
			Add(ret, uint32(i))
		}
	}
	return ret
}

func (nsp *Nulls) ToArray() []uint32 {
	if nsp == nil || nsp.Np == nil {
		return nil
	}
	return nsp.Np.ToArray()
}
