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

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

// Bind resolves every column of expr against def and types every
// comparison. The input tree is left untouched; a bound copy is returned.
// A predicate that references an unknown column, compares incomparable
// operands or is not boolean fails with ErrBadConfig.
func Bind(ctx context.Context, def *engine.TableDef, expr Expr) (Expr, error) {
	b := &binder{ctx: ctx, def: def}
	bound, err := b.bind(expr)
	if err != nil {
		return nil, err
	}
	if bound.ExprType().Oid != types.T_bool {
		return nil, moerr.NewBadConfig(ctx, "predicate '%s' of table %s is %s, not boolean",
			expr, def.Name, bound.ExprType().Oid)
	}
	return bound, nil
}

type binder struct {
	ctx context.Context
	def *engine.TableDef
}

func (b *binder) bind(expr Expr) (Expr, error) {
	switch e := expr.(type) {
	case *Const:
		if e.Typ.Oid.Family() == types.FamilyUnknown {
			return nil, moerr.NewBadConfig(b.ctx, "constant %s has no type", e)
		}
		c := *e
		return &c, nil
	case *ColRef:
		attr, ok := b.def.Attribute(e.Name)
		if !ok {
			return nil, moerr.NewBadConfig(b.ctx, "column '%s' does not exist in table %s", e.Name, b.def.Name)
		}
		return &ColRef{Name: attr.Name, Attr: attr, bound: true}, nil
	case *Compare:
		return b.bindCompare(e)
	case *And:
		args, err := b.bindLogical(e.Args, "AND")
		if err != nil {
			return nil, err
		}
		return &And{Args: args}, nil
	case *Or:
		args, err := b.bindLogical(e.Args, "OR")
		if err != nil {
			return nil, err
		}
		return &Or{Args: args}, nil
	case *Not:
		args, err := b.bindLogical([]Expr{e.Arg}, "NOT")
		if err != nil {
			return nil, err
		}
		return &Not{Arg: args[0]}, nil
	case *IsNull:
		arg, err := b.bind(e.Arg)
		if err != nil {
			return nil, err
		}
		return &IsNull{Arg: arg}, nil
	case nil:
		return nil, moerr.NewBadConfig(b.ctx, "empty expression")
	}
	return nil, moerr.NewBadConfig(b.ctx, "unsupported expression %T", expr)
}

func (b *binder) bindCompare(e *Compare) (Expr, error) {
	if e.Op > GE {
		return nil, moerr.NewBadConfig(b.ctx, "unknown comparison %s", e.Op)
	}
	left, err := b.bind(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := b.bind(e.Right)
	if err != nil {
		return nil, err
	}
	lt, rt, ok := types.ComparisonTypes(left.ExprType(), right.ExprType())
	if !ok {
		return nil, moerr.NewBadConfig(b.ctx, "cannot compare %s and %s in '%s'",
			left.ExprType().Oid, right.ExprType().Oid, e)
	}
	return &Compare{Op: e.Op, Left: left, Right: right, lt: lt, rt: rt}, nil
}

func (b *binder) bindLogical(args []Expr, name string) ([]Expr, error) {
	if len(args) == 0 {
		return nil, moerr.NewBadConfig(b.ctx, "%s without arguments", name)
	}
	bound := make([]Expr, len(args))
	for i, arg := range args {
		e, err := b.bind(arg)
		if err != nil {
			return nil, err
		}
		if e.ExprType().Oid != types.T_bool {
			return nil, moerr.NewBadConfig(b.ctx, "argument '%s' of %s is not boolean", arg, name)
		}
		bound[i] = e
	}
	return bound, nil
}
