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

package vector

import (
	"fmt"
	"strings"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/container/nulls"
	"github.com/matrixorigin/vecscan/pkg/container/types"
)

// Vector represent a column
type Vector struct {
	// type represent the type of column
	typ types.Type
	nsp *nulls.Nulls // nulls list

	// data of fixed length element, a []T matching typ.Oid
	col any

	// varlen values: row i is area[offsets[i]:offsets[i+1]]
	offsets []uint32
	area    []byte

	length int
}

func NewVec(typ types.Type) *Vector {
	v := &Vector{
		typ: typ,
		nsp: &nulls.Nulls{},
	}
	switch typ.Oid {
	case types.T_bool:
		v.col = make([]bool, 0)
	case types.T_int8:
		v.col = make([]int8, 0)
	case types.T_int16:
		v.col = make([]int16, 0)
	case types.T_int32:
		v.col = make([]int32, 0)
	case types.T_int64:
		v.col = make([]int64, 0)
	case types.T_uint8:
		v.col = make([]uint8, 0)
	case types.T_uint16:
		v.col = make([]uint16, 0)
	case types.T_uint32:
		v.col = make([]uint32, 0)
	case types.T_uint64:
		v.col = make([]uint64, 0)
	case types.T_float32:
		v.col = make([]float32, 0)
	case types.T_float64:
		v.col = make([]float64, 0)
	case types.T_char, types.T_varchar:
		v.offsets = []uint32{0}
	default:
		panic(moerr.NewNotSupportedNoCtx("vector of type %s", typ))
	}
	return v
}

func (v *Vector) Length() int {
	return v.length
}

func (v *Vector) GetType() *types.Type {
	return &v.typ
}

func (v *Vector) GetNulls() *nulls.Nulls {
	return v.nsp
}

func (v *Vector) HasNull() bool {
	return nulls.Any(v.nsp)
}

func (v *Vector) IsNull(i uint32) bool {
	return nulls.Contains(v.nsp, i)
}

// MustFixedCol returns the backing slice of a fixed length vector. It panics
// if T does not match the vector type.
func MustFixedCol[T types.FixedSizeT](v *Vector) []T {
	return v.col.([]T)
}

func GetFixedAt[T types.FixedSizeT](v *Vector, i uint32) T {
	return v.col.([]T)[i]
}

// GetBytesAt returns the value of row i of a varlen vector, aliasing the
// vector area.
func (v *Vector) GetBytesAt(i uint32) []byte {
	return v.area[v.offsets[i]:v.offsets[i+1]]
}

func (v *Vector) GetStringAt(i uint32) string {
	return string(v.GetBytesAt(i))
}

// GetDatum loads row i into the datum field of the vector type family.
func (v *Vector) GetDatum(i uint32) types.Datum {
	if v.IsNull(i) {
		return types.NullDatum()
	}
	switch v.typ.Oid {
	case types.T_bool:
		return types.BoolDatum(GetFixedAt[bool](v, i))
	case types.T_int8:
		return types.IntDatum(int64(GetFixedAt[int8](v, i)))
	case types.T_int16:
		return types.IntDatum(int64(GetFixedAt[int16](v, i)))
	case types.T_int32:
		return types.IntDatum(int64(GetFixedAt[int32](v, i)))
	case types.T_int64:
		return types.IntDatum(GetFixedAt[int64](v, i))
	case types.T_uint8:
		return types.UintDatum(uint64(GetFixedAt[uint8](v, i)))
	case types.T_uint16:
		return types.UintDatum(uint64(GetFixedAt[uint16](v, i)))
	case types.T_uint32:
		return types.UintDatum(uint64(GetFixedAt[uint32](v, i)))
	case types.T_uint64:
		return types.UintDatum(GetFixedAt[uint64](v, i))
	case types.T_float32:
		return types.FloatDatum(float64(GetFixedAt[float32](v, i)))
	case types.T_float64:
		return types.FloatDatum(GetFixedAt[float64](v, i))
	case types.T_char, types.T_varchar:
		return types.BytesDatum(v.GetBytesAt(i))
	}
	panic(moerr.NewInvalidStateNoCtx("datum of vector type %s", v.typ))
}

func Append[T types.FixedSizeT](v *Vector, val T, isNull bool) error {
	col, ok := v.col.([]T)
	if !ok {
		return moerr.NewInternalErrorNoCtx("append %T to vector of type %s", val, v.typ)
	}
	if isNull {
		var zero T
		val = zero
		nulls.Add(v.nsp, uint32(v.length))
	}
	v.col = append(col, val)
	v.length++
	return nil
}

func AppendList[T types.FixedSizeT](v *Vector, ws []T, isNulls []bool) error {
	for i, w := range ws {
		if err := Append(v, w, len(isNulls) > 0 && isNulls[i]); err != nil {
			return err
		}
	}
	return nil
}

func AppendBytes(v *Vector, val []byte, isNull bool) error {
	if !v.typ.Oid.IsString() {
		return moerr.NewInternalErrorNoCtx("append bytes to vector of type %s", v.typ)
	}
	if isNull {
		nulls.Add(v.nsp, uint32(v.length))
	} else {
		v.area = append(v.area, val...)
	}
	v.offsets = append(v.offsets, uint32(len(v.area)))
	v.length++
	return nil
}

func AppendStringList(v *Vector, ws []string, isNulls []bool) error {
	for i, w := range ws {
		if err := AppendBytes(v, []byte(w), len(isNulls) > 0 && isNulls[i]); err != nil {
			return err
		}
	}
	return nil
}

// AppendDatum appends d, read in the family of the vector type.
func AppendDatum(v *Vector, d types.Datum) error {
	if d.Null && !v.typ.Nullable {
		return moerr.NewInvalidInputNoCtx("null value for column of type %s", v.typ)
	}
	switch v.typ.Oid {
	case types.T_bool:
		return Append(v, d.B, d.Null)
	case types.T_int8:
		return Append(v, int8(d.I), d.Null)
	case types.T_int16:
		return Append(v, int16(d.I), d.Null)
	case types.T_int32:
		return Append(v, int32(d.I), d.Null)
	case types.T_int64:
		return Append(v, d.I, d.Null)
	case types.T_uint8:
		return Append(v, uint8(d.U), d.Null)
	case types.T_uint16:
		return Append(v, uint16(d.U), d.Null)
	case types.T_uint32:
		return Append(v, uint32(d.U), d.Null)
	case types.T_uint64:
		return Append(v, d.U, d.Null)
	case types.T_float32:
		return Append(v, float32(d.F), d.Null)
	case types.T_float64:
		return Append(v, d.F, d.Null)
	case types.T_char, types.T_varchar:
		return AppendBytes(v, d.S, d.Null)
	}
	return moerr.NewNotSupportedNoCtx("append to vector of type %s", v.typ)
}

func (v *Vector) String() string {
	fam := v.typ.Oid.Family()
	vals := make([]string, v.length)
	for i := range vals {
		vals[i] = v.GetDatum(uint32(i)).Format(fam)
	}
	return fmt.Sprintf("[%s]", strings.Join(vals, " "))
}
