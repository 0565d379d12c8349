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
	"bytes"
	"strconv"
	"strings"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
)

// Datum is one scalar value in the domain of its Family. Only the field of
// that family is meaningful; float32 values are kept widened in F.
type Datum struct {
	Null bool
	B    bool
	I    int64
	U    uint64
	F    float64
	S    []byte
}

func NullDatum() Datum {
	return Datum{Null: true}
}

func BoolDatum(v bool) Datum {
	return Datum{B: v}
}

func IntDatum(v int64) Datum {
	return Datum{I: v}
}

func UintDatum(v uint64) Datum {
	return Datum{U: v}
}

func FloatDatum(v float64) Datum {
	return Datum{F: v}
}

func BytesDatum(v []byte) Datum {
	return Datum{S: v}
}

// Convert widens d from family from into family to. It is only called with
// pairs produced by ComparisonTypes, all of which are lossless except the
// integer to double widening, which every evaluator performs identically.
func (d Datum) Convert(from, to Family) Datum {
	if d.Null || from == to {
		return d
	}
	switch to {
	case FamilyInt:
		if from == FamilyUint {
			return IntDatum(int64(d.U))
		}
	case FamilyUint:
		if from == FamilyInt {
			return UintDatum(uint64(d.I))
		}
	case FamilyFloat:
		switch from {
		case FamilyInt:
			return FloatDatum(float64(d.I))
		case FamilyUint:
			return FloatDatum(float64(d.U))
		}
	}
	panic(moerr.NewInvalidStateNoCtx("convert datum from family %d to %d", from, to))
}

// CompareDatum orders two non null datums of the same family. NaN compares
// as unordered and CompareDatum reports it as 2 so callers can treat every
// ordering predicate on it as false.
func CompareDatum(f Family, a, b Datum) int {
	switch f {
	case FamilyBool:
		switch {
		case a.B == b.B:
			return 0
		case !a.B:
			return -1
		}
		return 1
	case FamilyInt:
		return cmpOrdered(a.I, b.I)
	case FamilyUint:
		return cmpOrdered(a.U, b.U)
	case FamilyFloat:
		if a.F != a.F || b.F != b.F {
			return 2
		}
		return cmpOrdered(a.F, b.F)
	case FamilyBytes:
		return bytes.Compare(a.S, b.S)
	}
	panic(moerr.NewInvalidStateNoCtx("compare datum of family %d", f))
}

func cmpOrdered[T Number](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (d Datum) Format(f Family) string {
	if d.Null {
		return "NULL"
	}
	switch f {
	case FamilyBool:
		return strconv.FormatBool(d.B)
	case FamilyInt:
		return strconv.FormatInt(d.I, 10)
	case FamilyUint:
		return strconv.FormatUint(d.U, 10)
	case FamilyFloat:
		return strconv.FormatFloat(d.F, 'g', -1, 64)
	case FamilyBytes:
		return string(d.S)
	}
	return "?"
}

// ParseDatum parses the text form of a value of typ. "NULL" and "\N" parse
// to a null datum.
func ParseDatum(typ Type, s string) (Datum, error) {
	if s == "NULL" || s == `\N` {
		return NullDatum(), nil
	}
	switch typ.Oid.Family() {
	case FamilyBool:
		v, err := ParseBool(s)
		return BoolDatum(v), err
	case FamilyInt:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, typ.Oid.FixedLength()*8)
		if err != nil {
			return Datum{}, moerr.NewInvalidInputNoCtx("'%s' is not a valid %s", s, typ.Oid)
		}
		return IntDatum(v), nil
	case FamilyUint:
		v, err := strconv.ParseUint(strings.TrimSpace(s), 10, typ.Oid.FixedLength()*8)
		if err != nil {
			return Datum{}, moerr.NewInvalidInputNoCtx("'%s' is not a valid %s", s, typ.Oid)
		}
		return UintDatum(v), nil
	case FamilyFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), typ.Oid.FixedLength()*8)
		if err != nil {
			return Datum{}, moerr.NewInvalidInputNoCtx("'%s' is not a valid %s", s, typ.Oid)
		}
		return FloatDatum(v), nil
	case FamilyBytes:
		if typ.Width > 0 && len(s) > int(typ.Width) {
			return Datum{}, moerr.NewInvalidInputNoCtx("'%s' is longer than %s", s, typ)
		}
		return BytesDatum([]byte(s)), nil
	}
	return Datum{}, moerr.NewNotSupportedNoCtx("parse value of type %s", typ)
}

func ParseBool(s string) (bool, error) {
	// try to parse as a bool, we treat TuRe as true, therefore ToLower.
	v, err := strconv.ParseBool(strings.ToLower(s))
	if err == nil {
		return v, nil
	}

	// try to parse as a number.   We treat 0 as false, and other numbers as true.
	num, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return num != 0.0, nil
	}

	return false, moerr.NewInvalidInputNoCtx("'%s' is not a valid bool expression", s)
}
