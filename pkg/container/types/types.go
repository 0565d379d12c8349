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

package types

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

type T uint8

const (
	// any family
	T_any T = 0

	// bool family
	T_bool T = 10

	// numeric/integer family
	T_int8   T = 20
	T_int16  T = 21
	T_int32  T = 22
	T_int64  T = 23
	T_uint8  T = 25
	T_uint16 T = 26
	T_uint32 T = 27
	T_uint64 T = 28

	// numeric/float family
	T_float32 T = 30
	T_float64 T = 31

	// string family
	T_char    T = 40
	T_varchar T = 41
)

// Family groups types whose values share one comparison domain once
// promoted. Values of a family travel as the matching Datum field.
type Family uint8

const (
	FamilyUnknown Family = iota
	FamilyBool
	FamilyInt
	FamilyUint
	FamilyFloat
	FamilyBytes
)

type Ints interface {
	constraints.Signed
}

type UInts interface {
	constraints.Unsigned
}

type Floats interface {
	constraints.Float
}

// Number is the element set of columns that can be loaded into lanes.
type Number interface {
	Ints | UInts | Floats
}

type FixedSizeT interface {
	bool | Number
}

// Type is the SQL type of a column or an expression together with its
// nullability.
type Type struct {
	Oid T

	// Size is the fixed width in bytes, 0 for variable length types.
	Size int32

	// Width is the declared max length of char/varchar.
	Width int32

	Nullable bool
}

func New(oid T, width int32, nullable bool) Type {
	return Type{
		Oid:      oid,
		Size:     int32(oid.FixedLength()),
		Width:    width,
		Nullable: nullable,
	}
}

func (t T) ToType() Type {
	return New(t, 0, false)
}

func (t Type) WithNullable(nullable bool) Type {
	t.Nullable = nullable
	return t
}

func (t Type) IsFixedLen() bool {
	return t.Oid.IsFixedLen()
}

func (t Type) Eq(b Type) bool {
	return t.Oid == b.Oid && t.Size == b.Size && t.Width == b.Width
}

func (t Type) String() string {
	s := t.Oid.String()
	if t.Oid.IsString() && t.Width > 0 {
		s = fmt.Sprintf("%s(%d)", s, t.Width)
	}
	if !t.Nullable {
		s += " NOT NULL"
	}
	return s
}

func (t T) String() string {
	switch t {
	case T_bool:
		return "BOOL"
	case T_int8:
		return "TINYINT"
	case T_int16:
		return "SMALLINT"
	case T_int32:
		return "INT"
	case T_int64:
		return "BIGINT"
	case T_uint8:
		return "TINYINT UNSIGNED"
	case T_uint16:
		return "SMALLINT UNSIGNED"
	case T_uint32:
		return "INT UNSIGNED"
	case T_uint64:
		return "BIGINT UNSIGNED"
	case T_float32:
		return "FLOAT"
	case T_float64:
		return "DOUBLE"
	case T_char:
		return "CHAR"
	case T_varchar:
		return "VARCHAR"
	}
	return fmt.Sprintf("unexpected type: %d", t)
}

// FixedLength returns the width in bytes of a fixed length type, -1 for
// variable length ones.
func (t T) FixedLength() int {
	switch t {
	case T_bool, T_int8, T_uint8:
		return 1
	case T_int16, T_uint16:
		return 2
	case T_int32, T_uint32, T_float32:
		return 4
	case T_int64, T_uint64, T_float64:
		return 8
	}
	return -1
}

func (t T) IsFixedLen() bool {
	return t.FixedLength() > 0
}

func (t T) IsSignedInt() bool {
	return t >= T_int8 && t <= T_int64
}

func (t T) IsUnsignedInt() bool {
	return t >= T_uint8 && t <= T_uint64
}

func (t T) IsInteger() bool {
	return t.IsSignedInt() || t.IsUnsignedInt()
}

func (t T) IsFloat() bool {
	return t == T_float32 || t == T_float64
}

// IsNumeric reports whether columns of t can be evaluated in lanes.
func (t T) IsNumeric() bool {
	return t.IsInteger() || t.IsFloat()
}

func (t T) IsString() bool {
	return t == T_char || t == T_varchar
}

func (t T) Family() Family {
	switch {
	case t == T_bool:
		return FamilyBool
	case t.IsSignedInt():
		return FamilyInt
	case t.IsUnsignedInt():
		return FamilyUint
	case t.IsFloat():
		return FamilyFloat
	case t.IsString():
		return FamilyBytes
	}
	return FamilyUnknown
}

// TypeByName maps the column type names accepted in schema strings.
func TypeByName(name string) (T, bool) {
	switch name {
	case "bool", "boolean":
		return T_bool, true
	case "tinyint", "int8":
		return T_int8, true
	case "smallint", "int16":
		return T_int16, true
	case "int", "int32":
		return T_int32, true
	case "bigint", "int64":
		return T_int64, true
	case "tinyint unsigned", "uint8":
		return T_uint8, true
	case "smallint unsigned", "uint16":
		return T_uint16, true
	case "int unsigned", "uint32":
		return T_uint32, true
	case "bigint unsigned", "uint64":
		return T_uint64, true
	case "float", "float32":
		return T_float32, true
	case "double", "float64":
		return T_float64, true
	case "char":
		return T_char, true
	case "varchar", "text":
		return T_varchar, true
	}
	return T_any, false
}
