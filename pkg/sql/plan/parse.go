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
	"strconv"
	"strings"
	"unicode"

	"github.com/matrixorigin/vecscan/pkg/common/moerr"
	"github.com/matrixorigin/vecscan/pkg/vm/engine"
)

// ParseWhere parses a conjunctive filter of the form
//
//	a > 5 AND b = 'x' AND c IS NOT NULL AND d <= e
//
// against def. Literals take the type of the column they are compared with,
// or their own when the value does not fit it.
// The result is not bound.
func ParseWhere(ctx context.Context, def *engine.TableDef, s string) (Expr, error) {
	toks, err := lex(ctx, s)
	if err != nil {
		return nil, err
	}
	p := &whereParser{ctx: ctx, def: def, toks: toks}
	var conjuncts []Expr
	for {
		e, err := p.term()
		if err != nil {
			return nil, err
		}
		conjuncts = append(conjuncts, e)
		if p.done() {
			break
		}
		if !p.keyword("AND") {
			return nil, moerr.NewInvalidInput(ctx, "expected AND at '%s'", p.peek().text)
		}
	}
	if len(conjuncts) == 1 {
		return conjuncts[0], nil
	}
	return NewAnd(conjuncts...), nil
}

type tokenKind uint8

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokOp
)

type token struct {
	kind tokenKind
	text string
}

func lex(ctx context.Context, s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c == '\'':
			j := strings.IndexByte(s[i+1:], '\'')
			if j < 0 {
				return nil, moerr.NewInvalidInput(ctx, "unterminated string in '%s'", s)
			}
			toks = append(toks, token{kind: tokString, text: s[i+1 : i+1+j]})
			i += j + 2
		case strings.IndexByte("=<>!", c) >= 0:
			j := i + 1
			for j < len(s) && strings.IndexByte("=<>", s[j]) >= 0 {
				j++
			}
			toks = append(toks, token{kind: tokOp, text: s[i:j]})
			i = j
		case c == '-' || c == '+' || c == '.' || unicode.IsDigit(rune(c)):
			j := i + 1
			for j < len(s) && (isIdentByte(s[j]) || s[j] == '.' ||
				((s[j] == '-' || s[j] == '+') && (s[j-1] == 'e' || s[j-1] == 'E'))) {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: s[i:j]})
			i = j
		case isIdentByte(c):
			j := i + 1
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: s[i:j]})
			i = j
		default:
			return nil, moerr.NewInvalidInput(ctx, "unexpected '%c' in '%s'", c, s)
		}
	}
	if len(toks) == 0 {
		return nil, moerr.NewInvalidInput(ctx, "empty filter")
	}
	return toks, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))
}

var opByText = map[string]CompareOp{
	"=":  EQ,
	"!=": NE,
	"<>": NE,
	"<":  LT,
	"<=": LE,
	">":  GT,
	">=": GE,
}

type whereParser struct {
	ctx  context.Context
	def  *engine.TableDef
	toks []token
	pos  int
}

func (p *whereParser) done() bool { return p.pos >= len(p.toks) }

func (p *whereParser) peek() token {
	if p.done() {
		return token{text: "<end>"}
	}
	return p.toks[p.pos]
}

func (p *whereParser) keyword(kw string) bool {
	if t := p.peek(); t.kind == tokIdent && strings.EqualFold(t.text, kw) && !p.done() {
		p.pos++
		return true
	}
	return false
}

// term parses one of
//
//	operand op operand
//	col IS [NOT] NULL
func (p *whereParser) term() (Expr, error) {
	left := p.peek()
	if p.done() {
		return nil, moerr.NewInvalidInput(p.ctx, "unexpected end of filter")
	}
	p.pos++
	if p.keyword("IS") {
		if left.kind != tokIdent {
			return nil, moerr.NewInvalidInput(p.ctx, "IS NULL needs a column, got '%s'", left.text)
		}
		not := p.keyword("NOT")
		if !p.keyword("NULL") {
			return nil, moerr.NewInvalidInput(p.ctx, "expected NULL at '%s'", p.peek().text)
		}
		if not {
			return NewIsNotNull(Col(left.text)), nil
		}
		return NewIsNull(Col(left.text)), nil
	}
	opTok := p.peek()
	op, ok := opByText[opTok.text]
	if opTok.kind != tokOp || !ok {
		return nil, moerr.NewInvalidInput(p.ctx, "expected comparison at '%s'", opTok.text)
	}
	p.pos++
	if p.done() {
		return nil, moerr.NewInvalidInput(p.ctx, "missing right operand of '%s'", opTok.text)
	}
	right := p.peek()
	p.pos++

	// a literal takes the type of the column on the other side
	var col token
	switch {
	case left.kind == tokIdent && !strings.EqualFold(left.text, "NULL"):
		col = left
	case right.kind == tokIdent && !strings.EqualFold(right.text, "NULL"):
		col = right
	default:
		return nil, moerr.NewInvalidInput(p.ctx, "comparison %s %s %s has no column", left.text, opTok.text, right.text)
	}
	attr, ok := p.def.Attribute(col.text)
	if !ok {
		return nil, moerr.NewInvalidInput(p.ctx, "column '%s' does not exist in table %s", col.text, p.def.Name)
	}
	l, err := p.operand(left, attr)
	if err != nil {
		return nil, err
	}
	r, err := p.operand(right, attr)
	if err != nil {
		return nil, err
	}
	return NewCompare(op, l, r), nil
}

func (p *whereParser) operand(t token, attr engine.Attribute) (Expr, error) {
	if t.kind == tokIdent {
		if strings.EqualFold(t.text, "NULL") {
			return Null(attr.Type.Oid), nil
		}
		return Col(t.text), nil
	}
	if t.kind == tokOp {
		return nil, moerr.NewInvalidInput(p.ctx, "unexpected '%s'", t.text)
	}
	typ := attr.Type
	typ.Width = 0
	c, err := Literal(typ, t.text)
	if err != nil && attr.Type.Oid.IsNumeric() && t.kind == tokNumber {
		if nc, ok := numberLiteral(t.text); ok {
			return nc, nil
		}
	}
	if err != nil {
		return nil, moerr.NewInvalidInput(p.ctx, "bad literal for column %s: %v", attr.Name, err)
	}
	return c, nil
}

// numberLiteral types a number that does not fit the column it is compared
// with by its own form: int64, then uint64, then float64.
func numberLiteral(s string) (*Const, bool) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int64(v), true
	}
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return Uint64(v), true
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Float64(v), true
	}
	return nil, false
}
