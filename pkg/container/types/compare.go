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

import "github.com/matrixorigin/vecscan/pkg/common/moerr"

// ComparisonTypes returns the types both operands of a comparison are cast
// to before comparing. Each result keeps the nullability of its own input.
// Both results share one type except for a signed integer against uint64,
// which keeps int64 and uint64 and is ordered by CompareMixed. ok is false
// when the operands cannot be compared.
func ComparisonTypes(left, right Type) (Type, Type, bool) {
	lo, ro, ok := comparisonOids(left.Oid, right.Oid)
	if !ok {
		return Type{}, Type{}, false
	}
	lt, rt := New(lo, 0, left.Nullable), New(ro, 0, right.Nullable)
	if lo.IsString() {
		lt.Width, rt.Width = left.Width, right.Width
	}
	return lt, rt, true
}

func comparisonOids(l, r T) (T, T, bool) {
	switch {
	case l == r && l != T_any:
		return l, r, true
	case l.IsString() && r.IsString():
		return T_varchar, T_varchar, true
	case l.IsNumeric() && r.IsNumeric():
		if oid, ok := numericPromotion(l, r); ok {
			return oid, oid, true
		}
		if l.IsSignedInt() {
			return T_int64, T_uint64, true
		}
		return T_uint64, T_int64, true
	}
	return T_any, T_any, false
}

// numericPromotion widens to the smallest type holding every value of
// both sides. ok is false for a signed integer against uint64.
func numericPromotion(l, r T) (T, bool) {
	if l.IsFloat() || r.IsFloat() {
		return T_float64, true
	}
	if l.IsSignedInt() == r.IsSignedInt() {
		if l.FixedLength() >= r.FixedLength() {
			return l, true
		}
		return r, true
	}
	s, u := l, r
	if !s.IsSignedInt() {
		s, u = r, l
	}
	if s.FixedLength() > u.FixedLength() {
		return s, true
	}
	switch u.FixedLength() {
	case 1:
		return T_int16, true
	case 2:
		return T_int32, true
	case 4:
		return T_int64, true
	}
	return T_any, false
}

// CompareMixed orders a of family af against b of family bf. The families
// are equal or an int/uint pair, where a negative signed value is less
// than every unsigned one.
func CompareMixed(af Family, a Datum, bf Family, b Datum) int {
	switch {
	case af == bf:
		return CompareDatum(af, a, b)
	case af == FamilyInt && bf == FamilyUint:
		if a.I < 0 {
			return -1
		}
		return cmpOrdered(uint64(a.I), b.U)
	case af == FamilyUint && bf == FamilyInt:
		if b.I < 0 {
			return 1
		}
		return cmpOrdered(a.U, uint64(b.I))
	}
	panic(moerr.NewInvalidStateNoCtx("compare datum of family %d with %d", af, bf))
}
