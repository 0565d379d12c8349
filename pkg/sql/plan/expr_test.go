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
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

func testTableDef() *engine.TableDef {
	return engine.NewTableDef("t",
		engine.Attribute{Name: "a", Type: types.New(types.T_int32, 0, false)},
		engine.Attribute{Name: "b", Type: types.New(types.T_float64, 0, true)},
		engine.Attribute{Name: "c", Type: types.New(types.T_varchar, 8, true)},
		engine.Attribute{Name: "d", Type: types.New(types.T_uint8, 0, true)},
		engine.Attribute{Name: "e", Type: types.New(types.T_bool, 0, true)},
	)
}

func TestCompareOp(t *testing.T) {
	kases := []struct {
		op   CompareOp
		name string
		lt   bool
		eq   bool
		gt   bool
		nan  bool
	}{
		{EQ, "=", false, true, false, false},
		{NE, "<>", true, false, true, true},
		{LT, "<", true, false, false, false},
		{LE, "<=", true, true, false, false},
		{GT, ">", false, false, true, false},
		{GE, ">=", false, true, true, false},
	}
	for _, k := range kases {
		require.Equal(t, k.name, k.op.String())
		require.Equal(t, k.lt, k.op.Holds(-1), k.name)
		require.Equal(t, k.eq, k.op.Holds(0), k.name)
		require.Equal(t, k.gt, k.op.Holds(1), k.name)
		require.Equal(t, k.nan, k.op.Holds(2), k.name)
		// a op b == b op' a
		require.Equal(t, k.op.Holds(-1), k.op.Commute().Holds(1), k.name)
		require.Equal(t, k.op.Holds(0), k.op.Commute().Holds(0), k.name)
	}
}

func TestExprString(t *testing.T) {
	e := NewAnd(
		Gt(Col("a"), Int64(5)),
		NewOr(Eq(Col("c"), String("x")), NewIsNull(Col("b"))),
		NewNot(Le(Float64(1.5), Col("b"))),
		NewIsNotNull(Col("d")),
	)
	require.Equal(t, `a > 5 AND (c = "x" OR b IS NULL) AND NOT (1.5 <= b) AND NOT (d IS NULL)`, e.String())
	require.Equal(t, "NULL", Null(types.T_int32).String())
}

func TestBind(t *testing.T) {
	ctx := context.Background()
	def := testTableDef()

	src := NewAnd(Gt(Col("A"), Int64(5)), Ne(Col("b"), Col("d")))
	e, err := Bind(ctx, def, src)
	require.NoError(t, err)
	and := e.(*And)
	cmp := and.Args[0].(*Compare)
	col := cmp.Left.(*ColRef)
	require.True(t, col.Bound())
	require.Equal(t, "a", col.Name)
	require.Equal(t, 0, col.Attr.Idx)
	lt, rt := cmp.CastTypes()
	require.Equal(t, types.T_int64, lt.Oid)
	require.Equal(t, types.T_int64, rt.Oid)
	require.False(t, cmp.ExprType().Nullable)

	cmp = and.Args[1].(*Compare)
	lt, rt = cmp.CastTypes()
	require.Equal(t, types.T_float64, lt.Oid)
	require.True(t, lt.Nullable)
	require.Equal(t, types.T_float64, rt.Oid)
	require.True(t, cmp.ExprType().Nullable)
	require.True(t, e.ExprType().Nullable)

	// the source tree is not modified
	require.False(t, src.Args[0].(*Compare).Left.(*ColRef).Bound())

	_, err = Bind(ctx, def, NewIsNull(Col("e")))
	require.NoError(t, err)
	_, err = Bind(ctx, def, Col("e"))
	require.NoError(t, err)
}

func TestBindErrors(t *testing.T) {
	ctx := context.Background()
	def := testTableDef()
	kases := []Expr{
		Eq(Col("x"), Int64(1)),
		Eq(Col("a"), String("1")),
		Eq(Col("c"), Col("a")),
		Col("a"),
		NewAnd(Gt(Col("a"), Int64(1)), Col("b")),
		NewOr(),
		NewNot(Col("c")),
		NewCompare(CompareOp(9), Col("a"), Int64(1)),
		nil,
	}
	for _, k := range kases {
		_, err := Bind(ctx, def, k)
		require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig), "%v: %v", k, err)
	}
}
