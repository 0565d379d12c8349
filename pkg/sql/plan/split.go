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
	"bytes"
	"fmt"
	"math"

	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

// SIMDTerm is a conjunct that compares a fixed width numeric column with a
// constant or with another numeric column. Terms are normalized so the
// column is always on the left.
type SIMDTerm struct {
	Op   CompareOp
	Left engine.Attribute
	// Right is nil when the term compares against Const.
	Right *engine.Attribute
	// Const is already converted into the family of CmpType.
	Const types.Datum
	// CmpType is the common type of the comparison.
	CmpType types.Type

	expr *Compare
}

// IsConst reports whether the term compares a column against a constant.
func (t *SIMDTerm) IsConst() bool { return t.Right == nil }

// Expr returns the bound comparison the term was built from.
func (t *SIMDTerm) Expr() *Compare { return t.expr }

func (t *SIMDTerm) String() string {
	if t.IsConst() {
		return fmt.Sprintf("%s %s %s", t.Left.Name, t.Op, t.Const.Format(t.CmpType.Oid.Family()))
	}
	return fmt.Sprintf("%s %s %s", t.Left.Name, t.Op, t.Right.Name)
}

// Predicate is a bound predicate split into an implicit conjunction of
// lane evaluable terms and a residual evaluated row by row.
type Predicate struct {
	SIMD []SIMDTerm
	// Residual is nil when every conjunct is in SIMD.
	Residual Expr
}

// SplitPredicate splits a bound predicate. The top level AND is flattened
// left to right, nested ANDs expanded in place, and SIMD keeps that order.
// When no conjunct qualifies, Residual is expr itself.
func SplitPredicate(expr Expr) *Predicate {
	if expr == nil {
		return nil
	}
	conjuncts := flattenAnd(expr, nil)
	p := &Predicate{}
	var rest []Expr
	for _, c := range conjuncts {
		if term, ok := simdTerm(c); ok {
			p.SIMD = append(p.SIMD, term)
			continue
		}
		rest = append(rest, c)
	}
	switch {
	case len(p.SIMD) == 0:
		p.Residual = expr
	case len(rest) == 1:
		p.Residual = rest[0]
	case len(rest) > 1:
		p.Residual = &And{Args: rest}
	}
	return p
}

// LeadingConstTerms returns the first n column vs constant terms of the
// SIMD list.
func (p *Predicate) LeadingConstTerms(n int) []SIMDTerm {
	var terms []SIMDTerm
	for i := range p.SIMD {
		if len(terms) >= n {
			break
		}
		if p.SIMD[i].IsConst() {
			terms = append(terms, p.SIMD[i])
		}
	}
	return terms
}

func (p *Predicate) String() string {
	var buf bytes.Buffer
	buf.WriteString("simd[")
	for i := range p.SIMD {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(p.SIMD[i].String())
	}
	buf.WriteString("]")
	if p.Residual != nil {
		buf.WriteString(" residual[")
		buf.WriteString(p.Residual.String())
		buf.WriteString("]")
	}
	return buf.String()
}

func flattenAnd(expr Expr, dst []Expr) []Expr {
	and, ok := expr.(*And)
	if !ok {
		return append(dst, expr)
	}
	for _, arg := range and.Args {
		dst = flattenAnd(arg, dst)
	}
	return dst
}

func simdTerm(expr Expr) (SIMDTerm, bool) {
	cmp, ok := expr.(*Compare)
	if !ok || !cmp.lt.Oid.IsNumeric() {
		return SIMDTerm{}, false
	}
	op, left, right, lt, rt := cmp.Op, cmp.Left, cmp.Right, cmp.lt, cmp.rt
	if _, ok := left.(*Const); ok {
		op, left, right, lt, rt = op.Commute(), right, left, rt, lt
	}
	col, ok := left.(*ColRef)
	if !ok || !col.Attr.Type.Oid.IsNumeric() {
		return SIMDTerm{}, false
	}
	term := SIMDTerm{Op: op, Left: col.Attr, CmpType: types.New(lt.Oid, 0, false), expr: cmp}
	switch r := right.(type) {
	case *Const:
		if r.Value.Null {
			return SIMDTerm{}, false
		}
		c := r.Value.Convert(r.Typ.Oid.Family(), rt.Oid.Family())
		if lt.Oid != rt.Oid {
			term.Op, term.Const = clampMixed(op, lt.Oid, c)
		} else {
			term.Const = c
		}
	case *ColRef:
		// int64 against uint64 columns has no common lane type
		if lt.Oid != rt.Oid || !r.Attr.Type.Oid.IsNumeric() {
			return SIMDTerm{}, false
		}
		attr := r.Attr
		term.Right = &attr
	default:
		return SIMDTerm{}, false
	}
	return term, true
}

// clampMixed rewrites a column of type col compared with an integer
// constant of the opposite signedness into an equivalent comparison with a
// constant of type col. A constant outside the range of col becomes the
// range bound, with op turned into one that holds for every non null value
// or for none.
func clampMixed(op CompareOp, col types.T, c types.Datum) (CompareOp, types.Datum) {
	if col == types.T_int64 {
		if c.U <= math.MaxInt64 {
			return op, types.IntDatum(int64(c.U))
		}
		// every value is below c
		switch op {
		case EQ, GT, GE:
			return GT, types.IntDatum(math.MaxInt64)
		}
		return LE, types.IntDatum(math.MaxInt64)
	}
	if c.I >= 0 {
		return op, types.UintDatum(uint64(c.I))
	}
	// every value is above c
	switch op {
	case EQ, LT, LE:
		return LT, types.UintDatum(0)
	}
	return GE, types.UintDatum(0)
}
