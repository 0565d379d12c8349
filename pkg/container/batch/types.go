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
	"github.com/matrixorigin/vecscan/pkg/container/vector"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

// DefaultVectorSize is the default capacity of a selection vector and the
// max number of rows of a RowBatch.
const DefaultVectorSize = 1024

// FullRange is the selection count meaning every row of the batch range is
// selected. No tuple ids are materialized in that state.
const FullRange = -1

// SelectionVector is an ordered list of tuple ids with a fixed capacity.
// The buffer is owned by one scan worker and reused across batches.
type SelectionVector struct {
	sels []uint32
	n    int
}

// AttributeAccessor reads one column of the chunk a RowBatch covers. The
// column vector is fetched from the chunk on first use and kept until the
// batch moves to another chunk.
type AttributeAccessor struct {
	attr  engine.Attribute
	chunk engine.Chunk
	vec   *vector.Vector
}

// RowBatch is the range [start, end) of one chunk together with the
// selection of rows in it that are still alive.
type RowBatch struct {
	chunk     engine.Chunk
	start     uint32
	end       uint32
	sel       *SelectionVector
	compacted bool
	attrs     []*AttributeAccessor
	hidden    []*AttributeAccessor
}
