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

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
)

func NewSelectionVector(capacity int) *SelectionVector {
	if capacity <= 0 {
		capacity = DefaultVectorSize
	}
	return &SelectionVector{
		sels: make([]uint32, capacity),
	}
}

func (sv *SelectionVector) Capacity() int {
	return len(sv.sels)
}

// Count returns the number of selected tuple ids, or FullRange.
func (sv *SelectionVector) Count() int {
	return sv.n
}

func (sv *SelectionVector) IsFullRange() bool {
	return sv.n == FullRange
}

func (sv *SelectionVector) SetFullRange() {
	sv.n = FullRange
}

func (sv *SelectionVector) Reset() {
	sv.n = 0
}

// SetCount sets the number of valid entries after the buffer has been
// written through Buffer.
func (sv *SelectionVector) SetCount(n int) {
	if n < FullRange || n > len(sv.sels) {
		panic(moerr.NewInvalidStateNoCtx("selection count %d with capacity %d", n, len(sv.sels)))
	}
	sv.n = n
}

// Buffer returns the whole backing buffer, for stages that write tuple
// ids in place and then call SetCount.
func (sv *SelectionVector) Buffer() []uint32 {
	return sv.sels
}

func (sv *SelectionVector) Append(tid uint32) {
	if sv.n == FullRange {
		panic(moerr.NewInvalidStateNoCtx("append to a full range selection"))
	}
	if sv.n >= len(sv.sels) {
		panic(moerr.NewInvalidStateNoCtx("selection vector overflow, capacity %d", len(sv.sels)))
	}
	sv.sels[sv.n] = tid
	sv.n++
}

func (sv *SelectionVector) Get(i int) uint32 {
	return sv.sels[i]
}

// Sels returns the selected tuple ids. The slice aliases the buffer and is
// only valid until the selection changes.
func (sv *SelectionVector) Sels() []uint32 {
	if sv.n == FullRange {
		return nil
	}
	return sv.sels[:sv.n]
}

// Materialize turns a full range selection over [start, end) into the
// explicit list of its tuple ids.
func (sv *SelectionVector) Materialize(start, end uint32) {
	if sv.n != FullRange {
		return
	}
	if int(end-start) > len(sv.sels) {
		panic(moerr.NewInvalidStateNoCtx("range [%d, %d) exceeds selection capacity %d",
			start, end, len(sv.sels)))
	}
	for tid := start; tid < end; tid++ {
		sv.sels[tid-start] = tid
	}
	sv.n = int(end - start)
}

func (sv *SelectionVector) String() string {
	if sv.n == FullRange {
		return "Sel[*]"
	}
	return fmt.Sprintf("Sel%v", sv.sels[:sv.n])
}
