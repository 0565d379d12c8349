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

package filter

import (
	"context"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/container/batch"
	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/sql/plan"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

// evalFn computes an expression for row tid. Boolean results are carried
// in Datum.B, with Null standing for UNKNOWN.
type evalFn func(tid uint32) types.Datum

// ScalarEvaluator evaluates a bound expression row by row with SQL three
// valued logic. Like SIMDEvaluator it binds per worker state.
type ScalarEvaluator struct {
	expr  plan.Expr
	root  evalFn
	slots []*columnSlot
	keep  func(tid uint32) bool
}

type columnSlot struct {
	attr engine.Attribute
	acc  *batch.AttributeAccessor
}

func NewScalarEvaluator(ctx context.Context, expr plan.Expr) (*ScalarEvaluator, error) {
	e := &ScalarEvaluator{expr: expr}
	root, err := e.compile(ctx, expr)
	if err != nil {
		return nil, err
	}
	if expr.ExprType().Oid != types.T_bool {
		return nil, moerr.NewBadConfig(ctx, "filter '%s' is not boolean", expr)
	}
	e.root = root
	e.keep = func(tid uint32) bool {
		d := e.root(tid)
		return !d.Null && d.B
	}
	return e, nil
}

func (e *ScalarEvaluator) String() string {
	return e.expr.String()
}

// Filter keeps the selected rows of b for which the expression is TRUE,
// compacting the selection in place. It returns the number of survivors.
func (e *ScalarEvaluator) Filter(b *batch.RowBatch) int {
	for _, s := range e.slots {
		s.acc = b.Accessor(s.attr)
	}
	return b.Filter(e.keep)
}

func (e *ScalarEvaluator) compile(ctx context.Context, expr plan.Expr) (evalFn, error) {
	switch ex := expr.(type) {
	case *plan.Const:
		d := ex.Value
		return func(uint32) types.Datum { return d }, nil

	case *plan.ColRef:
		if !ex.Bound() {
			return nil, moerr.NewBadConfig(ctx, "column '%s' is not bound", ex.Name)
		}
		slot := &columnSlot{attr: ex.Attr}
		e.slots = append(e.slots, slot)
		return func(tid uint32) types.Datum { return slot.acc.Value(tid) }, nil

	case *plan.Compare:
		return e.compileCompare(ctx, ex)

	case *plan.And:
		args, err := e.compileArgs(ctx, ex.Args)
		if err != nil {
			return nil, err
		}
		return func(tid uint32) types.Datum {
			res := types.BoolDatum(true)
			for _, arg := range args {
				d := arg(tid)
				if d.Null {
					res = types.NullDatum()
				} else if !d.B {
					return types.BoolDatum(false)
				}
			}
			return res
		}, nil

	case *plan.Or:
		args, err := e.compileArgs(ctx, ex.Args)
		if err != nil {
			return nil, err
		}
		return func(tid uint32) types.Datum {
			res := types.BoolDatum(false)
			for _, arg := range args {
				d := arg(tid)
				if d.Null {
					res = types.NullDatum()
				} else if d.B {
					return types.BoolDatum(true)
				}
			}
			return res
		}, nil

	case *plan.Not:
		arg, err := e.compile(ctx, ex.Arg)
		if err != nil {
			return nil, err
		}
		return func(tid uint32) types.Datum {
			d := arg(tid)
			if d.Null {
				return d
			}
			return types.BoolDatum(!d.B)
		}, nil

	case *plan.IsNull:
		arg, err := e.compile(ctx, ex.Arg)
		if err != nil {
			return nil, err
		}
		return func(tid uint32) types.Datum {
			return types.BoolDatum(arg(tid).Null)
		}, nil
	}
	return nil, moerr.NewBadConfig(ctx, "unsupported expression %T", expr)
}

func (e *ScalarEvaluator) compileArgs(ctx context.Context, exprs []plan.Expr) ([]evalFn, error) {
	fns := make([]evalFn, len(exprs))
	for i, arg := range exprs {
		fn, err := e.compile(ctx, arg)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	return fns, nil
}

func (e *ScalarEvaluator) compileCompare(ctx context.Context, cmp *plan.Compare) (evalFn, error) {
	left, err := e.compile(ctx, cmp.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.compile(ctx, cmp.Right)
	if err != nil {
		return nil, err
	}
	lt, rt := cmp.CastTypes()
	if lt.Oid == types.T_any {
		return nil, moerr.NewBadConfig(ctx, "comparison '%s' is not bound", cmp)
	}
	lf, rf := cmp.Left.ExprType().Oid.Family(), cmp.Right.ExprType().Oid.Family()
	lcf, rcf := lt.Oid.Family(), rt.Oid.Family()
	if lcf != rcf && !(lt.Oid.IsInteger() && rt.Oid.IsInteger()) {
		return nil, moerr.NewBadConfig(ctx, "comparison '%s' casts to %s and %s", cmp, lt, rt)
	}
	op := cmp.Op
	return func(tid uint32) types.Datum {
		l, r := left(tid), right(tid)
		if l.Null || r.Null {
			return types.NullDatum()
		}
		c := types.CompareMixed(lcf, l.Convert(lf, lcf), rcf, r.Convert(rf, rcf))
		return types.BoolDatum(op.Holds(c))
	}, nil
}
