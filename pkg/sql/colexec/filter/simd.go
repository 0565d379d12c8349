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
	"fmt"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/container/batch"
	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/sql/plan"
	"github.com/matrixorigin/vecscan/pkg/vectorize/compare"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

// laneFunc evaluates one comparison on rows [lane, lane+n) and returns
// the bits of active that satisfy it. Null rows never satisfy.
type laneFunc func(lane uint32, n int, active uint64) uint64

// SIMDEvaluator runs an implicit conjunction of column comparisons over
// lanes of W rows. It owns lane buffers and must not be shared between
// scan workers.
type SIMDEvaluator struct {
	w       int
	terms   []plan.SIMDTerm
	fns     []laneFunc
	loaders []binder

	laneFn func(lane uint32, active uint64) uint64
	tailFn func(tid uint32) bool
}

// binder is a column operand that reads through the accessor of the batch
// being filtered.
type binder interface {
	bind(b *batch.RowBatch)
}

// ValidLaneWidth reports whether w is one of the supported lane widths.
func ValidLaneWidth(w int) bool {
	switch w {
	case 8, 16, 32, 64:
		return true
	}
	return false
}

func NewSIMDEvaluator(ctx context.Context, terms []plan.SIMDTerm, w int) (*SIMDEvaluator, error) {
	if !ValidLaneWidth(w) {
		return nil, moerr.NewBadConfig(ctx, "lane width %d, expect one of 8, 16, 32, 64", w)
	}
	e := &SIMDEvaluator{w: w, terms: terms}
	for i := range terms {
		fn, err := e.compile(ctx, &terms[i])
		if err != nil {
			return nil, err
		}
		e.fns = append(e.fns, fn)
	}
	e.laneFn = func(lane uint32, active uint64) uint64 {
		return e.eval(lane, e.w, active)
	}
	e.tailFn = func(tid uint32) bool {
		return e.eval(tid, 1, 1) != 0
	}
	return e, nil
}

func (e *SIMDEvaluator) Empty() bool {
	return len(e.fns) == 0
}

func (e *SIMDEvaluator) LaneWidth() int {
	return e.w
}

func (e *SIMDEvaluator) String() string {
	return fmt.Sprintf("simd(%d)%v", e.w, e.terms)
}

// Filter narrows the selection of b to the rows satisfying every term and
// leaves the batch marked not compacted. It returns the number of lanes and
// of tail rows it went through.
func (e *SIMDEvaluator) Filter(b *batch.RowBatch) (lanes, tail int) {
	if e.Empty() {
		return 0, 0
	}
	for _, l := range e.loaders {
		l.bind(b)
	}
	lanes, tail = b.VectorizedIterate(e.w, e.laneFn, e.tailFn)
	b.SetCompacted(false)
	return lanes, tail
}

func (e *SIMDEvaluator) eval(lane uint32, n int, active uint64) uint64 {
	for _, fn := range e.fns {
		if active = fn(lane, n, active); active == 0 {
			break
		}
	}
	return active
}

func (e *SIMDEvaluator) compile(ctx context.Context, t *plan.SIMDTerm) (laneFunc, error) {
	switch t.CmpType.Oid {
	case types.T_int8:
		return compileTerm[int8](ctx, e, t)
	case types.T_int16:
		return compileTerm[int16](ctx, e, t)
	case types.T_int32:
		return compileTerm[int32](ctx, e, t)
	case types.T_int64:
		return compileTerm[int64](ctx, e, t)
	case types.T_uint8:
		return compileTerm[uint8](ctx, e, t)
	case types.T_uint16:
		return compileTerm[uint16](ctx, e, t)
	case types.T_uint32:
		return compileTerm[uint32](ctx, e, t)
	case types.T_uint64:
		return compileTerm[uint64](ctx, e, t)
	case types.T_float32:
		return compileTerm[float32](ctx, e, t)
	case types.T_float64:
		return compileTerm[float64](ctx, e, t)
	}
	return nil, moerr.NewBadConfig(ctx, "comparison of %s cannot run in lanes", t.CmpType)
}

func compileTerm[C compare.Number](ctx context.Context, e *SIMDEvaluator, t *plan.SIMDTerm) (laneFunc, error) {
	kernel := kernelFor[C](t.Op)
	left, err := newColumnOperand[C](ctx, t.Left, e.w)
	if err != nil {
		return nil, err
	}
	e.loaders = append(e.loaders, left)

	if t.IsConst() {
		ys := compare.Splat(constValue[C](t.Const, t.CmpType.Oid.Family()), e.w)
		return func(lane uint32, n int, active uint64) uint64 {
			xs, nsp := left.load(lane, n, active)
			return kernel(xs, ys) & active &^ nsp
		}, nil
	}

	right, err := newColumnOperand[C](ctx, *t.Right, e.w)
	if err != nil {
		return nil, err
	}
	e.loaders = append(e.loaders, right)
	return func(lane uint32, n int, active uint64) uint64 {
		xs, lnsp := left.load(lane, n, active)
		ys, rnsp := right.load(lane, n, active)
		return kernel(xs, ys) & active &^ (lnsp | rnsp)
	}, nil
}

func kernelFor[C compare.Number](op plan.CompareOp) compare.LaneFunc[C] {
	switch op {
	case plan.EQ:
		return compare.Eq[C]()
	case plan.NE:
		return compare.Ne[C]()
	case plan.LT:
		return compare.Lt[C]()
	case plan.LE:
		return compare.Le[C]()
	case plan.GT:
		return compare.Gt[C]()
	case plan.GE:
		return compare.Ge[C]()
	}
	panic(moerr.NewInvalidStateNoCtx("comparison %s", op))
}

func constValue[C compare.Number](d types.Datum, f types.Family) C {
	switch f {
	case types.FamilyInt:
		return C(d.I)
	case types.FamilyUint:
		return C(d.U)
	case types.FamilyFloat:
		return C(d.F)
	}
	panic(moerr.NewInvalidStateNoCtx("lane constant of family %d", f))
}

// columnOperand loads lanes of one column in the comparison type C.
type columnOperand[C compare.Number] interface {
	binder
	// load returns rows [lane, lane+n) and their null bits. Entries of
	// lanes not in active are unspecified.
	load(lane uint32, n int, active uint64) ([]C, uint64)
}

func newColumnOperand[C compare.Number](ctx context.Context, attr engine.Attribute, w int) (columnOperand[C], error) {
	switch attr.Type.Oid {
	case types.T_int8:
		return newColumnLoader[int8, C](attr, w), nil
	case types.T_int16:
		return newColumnLoader[int16, C](attr, w), nil
	case types.T_int32:
		return newColumnLoader[int32, C](attr, w), nil
	case types.T_int64:
		return newColumnLoader[int64, C](attr, w), nil
	case types.T_uint8:
		return newColumnLoader[uint8, C](attr, w), nil
	case types.T_uint16:
		return newColumnLoader[uint16, C](attr, w), nil
	case types.T_uint32:
		return newColumnLoader[uint32, C](attr, w), nil
	case types.T_uint64:
		return newColumnLoader[uint64, C](attr, w), nil
	case types.T_float32:
		return newColumnLoader[float32, C](attr, w), nil
	case types.T_float64:
		return newColumnLoader[float64, C](attr, w), nil
	}
	return nil, moerr.NewBadConfig(ctx, "column %s of type %s cannot be loaded into lanes", attr.Name, attr.Type)
}

// columnLoader reads a column stored as S and compares it as C. When both
// are the same type the lane is the column window itself and nothing is
// copied.
type columnLoader[S types.Number, C compare.Number] struct {
	attr     engine.Attribute
	nullable bool
	direct   bool
	buf      []C
	acc      *batch.AttributeAccessor
}

func newColumnLoader[S types.Number, C compare.Number](attr engine.Attribute, w int) *columnLoader[S, C] {
	l := &columnLoader[S, C]{attr: attr, nullable: attr.Type.Nullable}
	if _, ok := any(S(0)).(C); ok {
		l.direct = true
	} else {
		l.buf = make([]C, w)
	}
	return l
}

func (l *columnLoader[S, C]) bind(b *batch.RowBatch) {
	l.acc = b.Accessor(l.attr)
}

func (l *columnLoader[S, C]) load(lane uint32, n int, active uint64) ([]C, uint64) {
	var nsp uint64
	if l.nullable {
		nsp = l.acc.LaneNulls(lane, n)
	}
	src := batch.LaneWindow[S](l.acc, lane, n)
	if l.direct {
		return any(src).([]C), nsp
	}
	dst := l.buf[:n]
	compare.CastMasked(dst, src, active)
	return dst, nsp
}
