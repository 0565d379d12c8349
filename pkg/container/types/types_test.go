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
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTSOrder(t *testing.T) {
	a := BuildTS(10, 1)
	b := BuildTS(10, 2)
	c := BuildTS(11, 0)
	require.True(t, a.Less(b))
	require.True(t, b.Less(c))
	require.True(t, a.LessEq(a))
	require.True(t, c.Greater(a))
	require.Equal(t, int64(10), a.Physical())
	require.Equal(t, uint32(1), a.Logical())
	require.Equal(t, b, a.Next())
	require.Equal(t, BuildTS(11, 0), BuildTS(10, math.MaxUint32).Next())
	require.True(t, TS{}.IsEmpty())
	require.True(t, c.Less(MaxTs()))
	require.Equal(t, "10-1", a.ToString())
}

func TestFixedEncoding(t *testing.T) {
	v := int32(-77)
	require.Equal(t, v, DecodeFixed[int32](EncodeFixed(v)))
	f := 3.25
	require.Equal(t, f, DecodeFixed[float64](EncodeFixed(f)))

	xs := []uint16{1, 2, 3}
	require.Equal(t, xs, DecodeSlice[uint16](EncodeSlice(xs)))
	require.Nil(t, EncodeSlice[int64](nil))
}

func TestComparisonTypes(t *testing.T) {
	cases := []struct {
		l, r         T
		wantL, wantR T
		ok           bool
	}{
		{T_int32, T_int32, T_int32, T_int32, true},
		{T_int8, T_int64, T_int64, T_int64, true},
		{T_uint16, T_uint8, T_uint16, T_uint16, true},
		{T_int8, T_uint8, T_int16, T_int16, true},
		{T_int64, T_uint32, T_int64, T_int64, true},
		{T_uint32, T_int32, T_int64, T_int64, true},
		{T_uint64, T_int8, T_uint64, T_int64, true},
		{T_int64, T_uint64, T_int64, T_uint64, true},
		{T_float32, T_uint64, T_float64, T_float64, true},
		{T_float32, T_int16, T_float64, T_float64, true},
		{T_float32, T_float32, T_float32, T_float32, true},
		{T_char, T_varchar, T_varchar, T_varchar, true},
		{T_bool, T_bool, T_bool, T_bool, true},
		{T_bool, T_int32, T_any, T_any, false},
		{T_varchar, T_int64, T_any, T_any, false},
	}
	for _, c := range cases {
		lt, rt, ok := ComparisonTypes(New(c.l, 0, true), New(c.r, 0, false))
		require.Equal(t, c.ok, ok, "%s vs %s", c.l, c.r)
		if !ok {
			continue
		}
		require.Equal(t, c.wantL, lt.Oid, "%s vs %s", c.l, c.r)
		require.Equal(t, c.wantR, rt.Oid, "%s vs %s", c.l, c.r)
		require.True(t, lt.Nullable)
		require.False(t, rt.Nullable)
	}
}

func TestCompareMixed(t *testing.T) {
	const big = uint64(1)<<53 + 1
	// neither side survives a round trip through float64
	require.Equal(t, float64(big), float64(big-1))
	require.Equal(t, 0, CompareMixed(FamilyInt, IntDatum(int64(big)), FamilyUint, UintDatum(big)))
	require.Equal(t, -1, CompareMixed(FamilyInt, IntDatum(int64(big-1)), FamilyUint, UintDatum(big)))
	require.Equal(t, 1, CompareMixed(FamilyUint, UintDatum(big), FamilyInt, IntDatum(int64(big-1))))
	require.Equal(t, -1, CompareMixed(FamilyInt, IntDatum(-1), FamilyUint, UintDatum(math.MaxUint64)))
	require.Equal(t, 1, CompareMixed(FamilyUint, UintDatum(0), FamilyInt, IntDatum(math.MinInt64)))
	require.Equal(t, -1, CompareMixed(FamilyInt, IntDatum(math.MaxInt64), FamilyUint, UintDatum(math.MaxInt64+1)))
	require.Equal(t, 1, CompareMixed(FamilyInt, IntDatum(3), FamilyInt, IntDatum(2)))
	require.Panics(t, func() { CompareMixed(FamilyInt, IntDatum(1), FamilyFloat, FloatDatum(1)) })
}

func TestDatum(t *testing.T) {
	require.Equal(t, -1, CompareDatum(FamilyInt, IntDatum(-3), IntDatum(2)))
	require.Equal(t, 1, CompareDatum(FamilyUint, UintDatum(9), UintDatum(2)))
	require.Equal(t, 0, CompareDatum(FamilyBytes, BytesDatum([]byte("ab")), BytesDatum([]byte("ab"))))
	require.Equal(t, -1, CompareDatum(FamilyBool, BoolDatum(false), BoolDatum(true)))
	require.Equal(t, 2, CompareDatum(FamilyFloat, FloatDatum(math.NaN()), FloatDatum(1)))

	require.Equal(t, FloatDatum(5), IntDatum(5).Convert(FamilyInt, FamilyFloat))
	require.Equal(t, IntDatum(7), UintDatum(7).Convert(FamilyUint, FamilyInt))
	require.True(t, NullDatum().Convert(FamilyInt, FamilyFloat).Null)
	require.Panics(t, func() { BytesDatum(nil).Convert(FamilyBytes, FamilyInt) })
}

func TestParseDatum(t *testing.T) {
	d, err := ParseDatum(New(T_int8, 0, true), "-12")
	require.NoError(t, err)
	require.Equal(t, int64(-12), d.I)

	_, err = ParseDatum(New(T_int8, 0, true), "300")
	require.Error(t, err)

	d, err = ParseDatum(New(T_float32, 0, true), "1.5")
	require.NoError(t, err)
	require.Equal(t, 1.5, d.F)

	d, err = ParseDatum(New(T_varchar, 3, true), "abc")
	require.NoError(t, err)
	require.Equal(t, "abc", d.Format(FamilyBytes))

	_, err = ParseDatum(New(T_varchar, 3, true), "abcd")
	require.Error(t, err)

	d, err = ParseDatum(New(T_uint32, 0, true), `\N`)
	require.NoError(t, err)
	require.True(t, d.Null)

	d, err = ParseDatum(New(T_bool, 0, true), "TRUE")
	require.NoError(t, err)
	require.True(t, d.B)
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "INT", New(T_int32, 0, true).String())
	require.Equal(t, "VARCHAR(10) NOT NULL", New(T_varchar, 10, false).String())
	require.Equal(t, 8, T_float64.FixedLength())
	require.Equal(t, -1, T_varchar.FixedLength())
	oid, ok := TypeByName("bigint unsigned")
	require.True(t, ok)
	require.Equal(t, T_uint64, oid)
	require.Equal(t, FamilyUint, oid.Family())
}
