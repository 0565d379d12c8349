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
	"fmt"
	"strconv"
	"strings"

	"github.com/matrixorigin/vecscan/pkg/container/types"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

// CompareOp is one of the six binary comparison operators.
type CompareOp uint8

const (
	EQ CompareOp = iota
	NE
	LT
	LE
	GT
	GE
)

var compareOpNames = [...]string{
	EQ: "=",
	NE: "<>",
	LT: "<",
	LE: "<=",
	GT: ">",
	GE: ">=",
}

func (op CompareOp) String() string {
	if int(op) < len(compareOpNames) {
		return compareOpNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// Commute returns the operator that gives the same result with its
// operands swapped.
func (op CompareOp) Commute() CompareOp {
	switch op {
	case LT:
		return GT
	case LE:
		return GE
	case GT:
		return LT
	case GE:
		return LE
	}
	return op
}

// Holds maps a three-way comparison result onto op. c == 2 is the
// unordered result of a NaN operand, which satisfies only NE.
func (op CompareOp) Holds(c int) bool {
	if c == 2 {
		return op == NE
	}
	switch op {
	case EQ:
		return c == 0
	case NE:
		return c != 0
	case LT:
		return c < 0
	case LE:
		return c <= 0
	case GT:
		return c > 0
	case GE:
		return c >= 0
	}
	return false
}

// Expr is a node of a scan predicate. The set of nodes is closed.
type Expr interface {
	fmt.Stringer
	ExprType() types.Type
	exprNode()
}

type Const struct {
	Typ   types.Type
	Value types.Datum
}

// ColRef names a column. Attr is filled in by Bind.
type ColRef struct {
	Name  string
	Attr  engine.Attribute
	bound bool
}

type Compare struct {
	Op          CompareOp
	Left, Right Expr

	// cast targets of both operands, set by Bind
	lt, rt types.Type
}

type And struct {
	Args []Expr
}

type Or struct {
	Args []Expr
}

type Not struct {
	Arg Expr
}

type IsNull struct {
	Arg Expr
}

func (*Const) exprNode()   {}
func (*ColRef) exprNode()  {}
func (*Compare) exprNode() {}
func (*And) exprNode()     {}
func (*Or) exprNode()      {}
func (*Not) exprNode()     {}
func (*IsNull) exprNode()  {}

func (c *Const) ExprType() types.Type { return c.Typ }

func (c *Const) String() string {
	if c.Value.Null {
		return "NULL"
	}
	s := c.Value.Format(c.Typ.Oid.Family())
	if c.Typ.Oid.IsString() {
		return strconv.Quote(s)
	}
	return s
}

func (c *ColRef) ExprType() types.Type { return c.Attr.Type }

func (c *ColRef) String() string { return c.Name }

// Bound reports whether the column was resolved against a table.
func (c *ColRef) Bound() bool { return c.bound }

func (c *Compare) ExprType() types.Type {
	return types.New(types.T_bool, 0, c.Left.ExprType().Nullable || c.Right.ExprType().Nullable)
}

func (c *Compare) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Op, c.Right)
}

// CastTypes returns the types both operands are compared in.
func (c *Compare) CastTypes() (types.Type, types.Type) {
	return c.lt, c.rt
}

func (a *And) ExprType() types.Type { return boolType(a.Args) }

func (a *And) String() string { return joinArgs(a.Args, " AND ") }

func (o *Or) ExprType() types.Type { return boolType(o.Args) }

func (o *Or) String() string { return joinArgs(o.Args, " OR ") }

func (n *Not) ExprType() types.Type {
	return types.New(types.T_bool, 0, n.Arg.ExprType().Nullable)
}

func (n *Not) String() string { return fmt.Sprintf("NOT (%s)", n.Arg) }

func (n *IsNull) ExprType() types.Type { return types.New(types.T_bool, 0, false) }

func (n *IsNull) String() string { return fmt.Sprintf("%s IS NULL", n.Arg) }

func boolType(args []Expr) types.Type {
	nullable := false
	for _, arg := range args {
		nullable = nullable || arg.ExprType().Nullable
	}
	return types.New(types.T_bool, 0, nullable)
}

func joinArgs(args []Expr, sep string) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
		switch arg.(type) {
		case *And, *Or:
			parts[i] = "(" + parts[i] + ")"
		}
	}
	return strings.Join(parts, sep)
}

func Col(name string) *ColRef {
	return &ColRef{Name: name}
}

func Int64(v int64) *Const {
	return &Const{Typ: types.T_int64.ToType(), Value: types.IntDatum(v)}
}

func Uint64(v uint64) *Const {
	return &Const{Typ: types.T_uint64.ToType(), Value: types.UintDatum(v)}
}

func Float64(v float64) *Const {
	return &Const{Typ: types.T_float64.ToType(), Value: types.FloatDatum(v)}
}

func String(s string) *Const {
	return &Const{Typ: types.T_varchar.ToType(), Value: types.BytesDatum([]byte(s))}
}

func Bool(v bool) *Const {
	return &Const{Typ: types.T_bool.ToType(), Value: types.BoolDatum(v)}
}

// Null is a typed NULL literal.
func Null(oid types.T) *Const {
	return &Const{Typ: types.New(oid, 0, true), Value: types.NullDatum()}
}

// Literal builds a constant of typ from its text form.
func Literal(typ types.Type, s string) (*Const, error) {
	d, err := types.ParseDatum(typ, s)
	if err != nil {
		return nil, err
	}
	typ.Nullable = d.Null
	return &Const{Typ: typ, Value: d}, nil
}

func NewCompare(op CompareOp, left, right Expr) *Compare {
	return &Compare{Op: op, Left: left, Right: right}
}

func Eq(left, right Expr) *Compare { return NewCompare(EQ, left, right) }
func Ne(left, right Expr) *Compare { return NewCompare(NE, left, right) }
func Lt(left, right Expr) *Compare { return NewCompare(LT, left, right) }
func Le(left, right Expr) *Compare { return NewCompare(LE, left, right) }
func Gt(left, right Expr) *Compare { return NewCompare(GT, left, right) }
func Ge(left, right Expr) *Compare { return NewCompare(GE, left, right) }

func NewAnd(args ...Expr) *And { return &And{Args: args} }

func NewOr(args ...Expr) *Or { return &Or{Args: args} }

func NewNot(arg Expr) *Not { return &Not{Arg: arg} }

func NewIsNull(arg Expr) *IsNull { return &IsNull{Arg: arg} }

// NewIsNotNull is sugar for NOT (arg IS NULL).
func NewIsNotNull(arg Expr) *Not { return NewNot(NewIsNull(arg)) }
