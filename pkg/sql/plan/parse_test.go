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

package plan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/container/types"
)

func TestParseWhere(t *testing.T) {
	ctx := context.Background()
	def := testTableDef()
	kases := []struct {
		in  string
		out string
	}{
		{"a > 5", "a > 5"},
		{"a>=-3 and c = 'x y'", `a >= -3 AND c = "x y"`},
		{"b IS NULL AND d is not null", "b IS NULL AND NOT (d IS NULL)"},
		{"7 != a", "7 <> a"},
		{"b <= 1.5e-3 AND a <> b", "b <= 0.0015 AND a <> b"},
		{"a = NULL", "a = NULL"},
		// literals that do not fit the column keep their own type
		{"a < 5.5", "a < 5.5"},
		{"d > -1", "d > -1"},
		{"d = 300", "d = 300"},
		{"a <= 18446744073709551615", "a <= 18446744073709551615"},
	}
	for _, k := range kases {
		e, err := ParseWhere(ctx, def, k.in)
		require.NoError(t, err, k.in)
		require.Equal(t, k.out, e.String(), k.in)
		_, err = Bind(ctx, def, e)
		require.NoError(t, err, k.in)
	}
}

func TestParseWhereLiteralTypes(t *testing.T) {
	ctx := context.Background()
	def := testTableDef()
	kases := []struct {
		in   string
		typ  types.T
		cast types.T
	}{
		{"a > 5", types.T_int32, types.T_int32},
		{"a < 5.5", types.T_float64, types.T_float64},
		{"d > -1", types.T_int64, types.T_int64},
		{"d >= 3", types.T_uint8, types.T_uint8},
		{"a <= 18446744073709551615", types.T_uint64, types.T_int64},
		{"2.5 <= d", types.T_float64, types.T_float64},
	}
	for _, k := range kases {
		e, err := ParseWhere(ctx, def, k.in)
		require.NoError(t, err, k.in)
		bound, err := Bind(ctx, def, e)
		require.NoError(t, err, k.in)
		cmp := bound.(*Compare)
		lit := cmp.Right
		lt, _ := cmp.CastTypes()
		if _, ok := cmp.Left.(*Const); ok {
			lit = cmp.Left
			_, lt = cmp.CastTypes()
		}
		require.Equal(t, k.typ, lit.ExprType().Oid, k.in)
		require.Equal(t, k.cast, lt.Oid, k.in)
	}
}

func TestParseWhereErrors(t *testing.T) {
	ctx := context.Background()
	def := testTableDef()
	for _, in := range []string{
		"",
		"a >",
		"a ~ 5",
		"x = 1",
		"a = 'abc",
		"a = abc",
		"1 = 2",
		"a = 5 OR a = 6",
		"5 IS NULL",
		"a IS 5",
		"a = 5x",
		"e = 1.5",
	} {
		e, err := ParseWhere(ctx, def, in)
		if err == nil {
			// a column compared with a column that does not exist
			_, err = Bind(ctx, def, e)
			require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig), in)
			continue
		}
		require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidInput), "%s: %v", in, err)
	}
}
