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
	"github.com/matrixorigin/vecscan/pkg/container/nulls"
	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/container/vector"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

func NewAttributeAccessor(attr engine.Attribute) *AttributeAccessor {
	return &AttributeAccessor{attr: attr}
}

func (acc *AttributeAccessor) Attr() engine.Attribute {
	return acc.attr
}

// reset points the accessor at chunk, dropping the bound vector if the
// chunk changed.
func (acc *AttributeAccessor) reset(chunk engine.Chunk) {
	if acc.chunk != chunk {
		acc.chunk = chunk
		acc.vec = nil
	}
}

// Bound reports whether the column has been fetched for the current chunk.
func (acc *AttributeAccessor) Bound() bool {
	return acc.vec != nil
}

// Vector fetches the column from the chunk on first use.
func (acc *AttributeAccessor) Vector() (*vector.Vector, error) {
	if acc.vec == nil {
		vec, err := acc.chunk.Column(acc.attr.Idx)
		if err != nil {
			return nil, err
		}
		acc.vec = vec
	}
	return acc.vec, nil
}

func (acc *AttributeAccessor) mustVector() *vector.Vector {
	vec, err := acc.Vector()
	if err != nil {
		panic(err)
	}
	return vec
}

// Value returns row tid as a datum of the column family.
func (acc *AttributeAccessor) Value(tid uint32) types.Datum {
	return acc.mustVector().GetDatum(tid)
}

func (acc *AttributeAccessor) IsNull(tid uint32) bool {
	return acc.mustVector().IsNull(tid)
}

func (acc *AttributeAccessor) GetBytes(tid uint32) []byte {
	return acc.mustVector().GetBytesAt(tid)
}

func GetFixed[T types.FixedSizeT](acc *AttributeAccessor, tid uint32) T {
	return vector.GetFixedAt[T](acc.mustVector(), tid)
}

// LaneWindow returns rows [lane, lane+w) of a fixed length column. The
// slice aliases the column storage and must not be written.
func LaneWindow[T types.FixedSizeT](acc *AttributeAccessor, lane uint32, w int) []T {
	col := vector.MustFixedCol[T](acc.mustVector())
	return col[lane : lane+uint32(w)]
}

// LaneNulls returns the null bits of rows [lane, lane+w), bit i for row
// lane+i.
func (acc *AttributeAccessor) LaneNulls(lane uint32, w int) uint64 {
	return nulls.LaneMask(acc.mustVector().GetNulls(), lane, w)
}
